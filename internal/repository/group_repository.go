package repository

import (
	"database/sql"

	"github.com/lib/pq"

	appErrors "github.com/redwoodtel/callwave-backend/internal/errors"
	"github.com/redwoodtel/callwave-backend/internal/model"
)

// GroupRepositoryInterface defines the group operations the resolvers and
// handlers need.
type GroupRepositoryInterface interface {
	Create(name string, callerID *string, phoneNumbers []string) (*model.ContactGroup, error)
	List() ([]*model.ContactGroup, error)
	Delete(name string) error

	// MemberNumbers returns the group's phone numbers in insertion order.
	MemberNumbers(name string) ([]string, error)
	// CountMembers returns the member count without loading the numbers.
	CountMembers(name string) (int, error)
}

// GroupRepository is the concrete implementation
type GroupRepository struct {
	DB *sql.DB
}

func (r *GroupRepository) Create(name string, callerID *string, phoneNumbers []string) (*model.ContactGroup, error) {
	g := &model.ContactGroup{Name: name, CallerID: callerID}

	query := `
        INSERT INTO contact_groups (name, caller_id)
        VALUES ($1, $2)
        RETURNING id, created_at
    `
	err := r.DB.QueryRow(query, name, callerID).Scan(&g.ID, &g.CreatedAt)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code.Name() == "unique_violation" {
			return nil, appErrors.NewDuplicateGroup(name)
		}
		return nil, err
	}

	for _, number := range phoneNumbers {
		_, err := r.DB.Exec(
			`INSERT INTO group_members (group_id, phone_number) VALUES ($1, $2)`,
			g.ID, number,
		)
		if err != nil {
			return nil, err
		}
	}
	g.MemberCount = len(phoneNumbers)

	return g, nil
}

func (r *GroupRepository) List() ([]*model.ContactGroup, error) {
	query := `
        SELECT cg.id, cg.name, cg.caller_id, cg.created_at, COUNT(gm.id) AS member_count
        FROM contact_groups cg
        LEFT JOIN group_members gm ON cg.id = gm.group_id
        GROUP BY cg.id
        ORDER BY cg.id
    `
	rows, err := r.DB.Query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	groups := []*model.ContactGroup{}
	for rows.Next() {
		g := &model.ContactGroup{}
		if err := rows.Scan(&g.ID, &g.Name, &g.CallerID, &g.CreatedAt, &g.MemberCount); err != nil {
			return nil, err
		}
		groups = append(groups, g)
	}
	return groups, rows.Err()
}

func (r *GroupRepository) Delete(name string) error {
	// Members go with the group via ON DELETE CASCADE.
	_, err := r.DB.Exec(`DELETE FROM contact_groups WHERE name=$1`, name)
	return err
}

func (r *GroupRepository) MemberNumbers(name string) ([]string, error) {
	query := `
        SELECT gm.phone_number
        FROM group_members gm
        JOIN contact_groups cg ON gm.group_id = cg.id
        WHERE cg.name = $1
        ORDER BY gm.id
    `
	rows, err := r.DB.Query(query, name)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	numbers := []string{}
	for rows.Next() {
		var n string
		if err := rows.Scan(&n); err != nil {
			return nil, err
		}
		numbers = append(numbers, n)
	}
	return numbers, rows.Err()
}

func (r *GroupRepository) CountMembers(name string) (int, error) {
	query := `
        SELECT COUNT(*)
        FROM group_members gm
        JOIN contact_groups cg ON gm.group_id = cg.id
        WHERE cg.name = $1
    `
	var count int
	if err := r.DB.QueryRow(query, name).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

var _ GroupRepositoryInterface = (*GroupRepository)(nil)
