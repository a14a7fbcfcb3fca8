// internal/service/recipient_resolver.go
package service

import (
	appErrors "github.com/redwoodtel/callwave-backend/internal/errors"
	"github.com/redwoodtel/callwave-backend/internal/repository"
)

// RecipientResolver expands a broadcast's destination set: the explicit
// number list first, then the named group's members in store order. There is
// no deduplication; a number present in both gets two calls.
type RecipientResolver struct {
	GroupRepo repository.GroupRepositoryInterface
}

// Resolve returns the ordered destination numbers for one broadcast. An
// empty result is an error: a broadcast must reach someone.
func (r *RecipientResolver) Resolve(broadcastID string, explicit []string, groupName string) ([]string, error) {
	numbers := make([]string, 0, len(explicit))
	numbers = append(numbers, explicit...)

	if groupName != "" {
		members, err := r.GroupRepo.MemberNumbers(groupName)
		if err != nil {
			return nil, err
		}
		numbers = append(numbers, members...)
	}

	if len(numbers) == 0 {
		return nil, appErrors.NewNoRecipients(broadcastID)
	}
	return numbers, nil
}

// Count computes the recipient count reported to the submitter and stored
// as total_numbers. It is computed exactly once, at submission, and never
// reconciled with the set the dispatch phase later resolves.
func (r *RecipientResolver) Count(explicit []string, groupName string) (int, error) {
	total := len(explicit)
	if groupName != "" {
		members, err := r.GroupRepo.CountMembers(groupName)
		if err != nil {
			return 0, err
		}
		total += members
	}
	return total, nil
}
