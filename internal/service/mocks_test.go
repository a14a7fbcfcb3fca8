package service_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/redwoodtel/callwave-backend/internal/model"
)

// --- Mock repositories ---

// memBroadcastRepo is an in-memory BroadcastRepositoryInterface that also
// checks the counter invariant (completed + failed + in_progress never
// exceeds total_numbers) on every update.
type memBroadcastRepo struct {
	mu         sync.Mutex
	nextID     int
	broadcasts map[string]*model.Broadcast
	order      []string
	violations []string
}

func newMemBroadcastRepo() *memBroadcastRepo {
	return &memBroadcastRepo{broadcasts: make(map[string]*model.Broadcast)}
}

func (r *memBroadcastRepo) Create(b *model.Broadcast) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	b.ID = r.nextID
	b.CreatedAt = time.Now()
	cp := *b
	r.broadcasts[b.BroadcastID] = &cp
	r.order = append(r.order, b.BroadcastID)
	return nil
}

func (r *memBroadcastRepo) GetByBroadcastID(id string) (*model.Broadcast, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.broadcasts[id]
	if !ok {
		return nil, fmt.Errorf("broadcast %s not found", id)
	}
	cp := *b
	return &cp, nil
}

func (r *memBroadcastRepo) ListRecent(limit int) ([]*model.Broadcast, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []*model.Broadcast{}
	for i := len(r.order) - 1; i >= 0 && len(out) < limit; i-- {
		cp := *r.broadcasts[r.order[i]]
		out = append(out, &cp)
	}
	return out, nil
}

func (r *memBroadcastRepo) UpdateStatus(id, status string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if b, ok := r.broadcasts[id]; ok {
		b.Status = status
	}
	return nil
}

func (r *memBroadcastRepo) MarkCompleted(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if b, ok := r.broadcasts[id]; ok {
		b.Status = model.BroadcastCompleted
		now := time.Now()
		b.CompletedAt = &now
	}
	return nil
}

func (r *memBroadcastRepo) update(id string, fn func(b *model.Broadcast)) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.broadcasts[id]
	if !ok {
		return nil
	}
	fn(b)
	if b.Completed+b.Failed+b.InProgress > b.TotalNumbers {
		r.violations = append(r.violations, fmt.Sprintf(
			"broadcast %s: completed=%d failed=%d in_progress=%d > total=%d",
			id, b.Completed, b.Failed, b.InProgress, b.TotalNumbers))
	}
	return nil
}

func (r *memBroadcastRepo) IncrementInProgress(id string) error {
	return r.update(id, func(b *model.Broadcast) { b.InProgress++ })
}

func (r *memBroadcastRepo) IncrementFailed(id string) error {
	return r.update(id, func(b *model.Broadcast) { b.Failed++ })
}

func (r *memBroadcastRepo) ApplyCallCompleted(id string) error {
	return r.update(id, func(b *model.Broadcast) { b.Completed++; b.InProgress-- })
}

func (r *memBroadcastRepo) ApplyCallFailed(id string) error {
	return r.update(id, func(b *model.Broadcast) { b.Failed++; b.InProgress-- })
}

// memCallRepo is an in-memory CallRepositoryInterface. It can fail creation
// for chosen phone numbers and it records the peak number of concurrent
// Create calls, which is how the dispatch concurrency bound is observed.
type memCallRepo struct {
	mu        sync.Mutex
	nextID    int
	calls     map[string]*model.Call
	order     []string
	failFor   map[string]bool
	hold      time.Duration
	active    int
	maxActive int
}

func newMemCallRepo() *memCallRepo {
	return &memCallRepo{calls: make(map[string]*model.Call), failFor: make(map[string]bool)}
}

func (r *memCallRepo) Create(c *model.Call) error {
	r.mu.Lock()
	if r.failFor[c.PhoneNumber] {
		r.mu.Unlock()
		return errors.New("store rejected call row")
	}
	r.active++
	if r.active > r.maxActive {
		r.maxActive = r.active
	}
	hold := r.hold
	r.mu.Unlock()

	if hold > 0 {
		time.Sleep(hold)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.active--
	r.nextID++
	c.ID = r.nextID
	c.StartedAt = time.Now()
	cp := *c
	r.calls[c.CallID] = &cp
	r.order = append(r.order, c.CallID)
	return nil
}

func (r *memCallRepo) GetByCallID(callID string) (*model.Call, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.calls[callID]
	if !ok {
		return nil, nil
	}
	cp := *c
	return &cp, nil
}

func (r *memCallRepo) ListRecent(limit int) ([]*model.Call, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []*model.Call{}
	for i := len(r.order) - 1; i >= 0 && len(out) < limit; i-- {
		cp := *r.calls[r.order[i]]
		out = append(out, &cp)
	}
	return out, nil
}

func (r *memCallRepo) MarkEnded(callID, status string, withDuration bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.calls[callID]
	if !ok {
		return nil
	}
	c.Status = status
	now := time.Now()
	c.EndedAt = &now
	if withDuration {
		d := int(now.Sub(c.StartedAt).Seconds())
		c.Duration = &d
	}
	return nil
}

func (r *memCallRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.calls)
}

// mockGroupRepo serves fixed group memberships.
type mockGroupRepo struct {
	members map[string][]string
}

func (m *mockGroupRepo) Create(name string, callerID *string, numbers []string) (*model.ContactGroup, error) {
	return &model.ContactGroup{ID: 1, Name: name}, nil
}

func (m *mockGroupRepo) List() ([]*model.ContactGroup, error) { return nil, nil }

func (m *mockGroupRepo) Delete(name string) error { return nil }

func (m *mockGroupRepo) MemberNumbers(name string) ([]string, error) {
	return m.members[name], nil
}

func (m *mockGroupRepo) CountMembers(name string) (int, error) {
	return len(m.members[name]), nil
}

// --- Stub tool runner ---

// stubRunner fakes the synthesizer and converter by writing marker bytes to
// the tool's output path. Tools listed in failOn return an error instead;
// tools in emptyOut produce a zero-byte file.
type stubRunner struct {
	failOn   map[string]bool
	emptyOut map[string]bool
}

func newStubRunner() *stubRunner {
	return &stubRunner{failOn: make(map[string]bool), emptyOut: make(map[string]bool)}
}

func (s *stubRunner) Run(ctx context.Context, name string, args ...string) error {
	if s.failOn[name] {
		return fmt.Errorf("%s exited with status 1", name)
	}

	// pico2wave-style tools take -w <out> <text>; converters take the
	// output path as the final argument.
	out := args[len(args)-1]
	for i, a := range args {
		if a == "-w" && i+1 < len(args) {
			out = args[i+1]
			break
		}
	}

	if s.emptyOut[name] {
		return os.WriteFile(out, nil, 0o644)
	}
	return os.WriteFile(out, []byte("RIFF fake audio"), 0o644)
}
