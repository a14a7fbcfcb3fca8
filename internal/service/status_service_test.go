package service_test

import (
	"testing"

	"github.com/redwoodtel/callwave-backend/internal/model"
	"github.com/redwoodtel/callwave-backend/internal/service"
)

func seedBroadcastCall(t *testing.T, broadcasts *memBroadcastRepo, calls *memCallRepo) (string, string) {
	t.Helper()

	broadcastID := "bcast1"
	if err := broadcasts.Create(&model.Broadcast{
		BroadcastID:  broadcastID,
		Name:         "seeded",
		Status:       model.BroadcastProcessing,
		TotalNumbers: 1,
	}); err != nil {
		t.Fatal(err)
	}

	callID := broadcastID + "_aabbccdd"
	if err := calls.Create(&model.Call{
		CallID:      callID,
		PhoneNumber: "+15550001",
		Status:      model.CallInitiated,
		BroadcastID: &broadcastID,
	}); err != nil {
		t.Fatal(err)
	}
	if err := broadcasts.IncrementInProgress(broadcastID); err != nil {
		t.Fatal(err)
	}

	return broadcastID, callID
}

func TestUnknownCallIDIsIgnored(t *testing.T) {
	broadcasts := newMemBroadcastRepo()
	calls := newMemCallRepo()
	s := &service.StatusService{Calls: calls, Broadcasts: broadcasts}

	known, err := s.Apply("never-dispatched", model.CallCompleted)
	if err != nil {
		t.Fatalf("unknown ids must not error: %v", err)
	}
	if known {
		t.Error("unknown id reported as known")
	}
	if len(broadcasts.broadcasts) != 0 || calls.count() != 0 {
		t.Error("unknown callback mutated state")
	}
}

func TestCompletedCallback(t *testing.T) {
	broadcasts := newMemBroadcastRepo()
	calls := newMemCallRepo()
	s := &service.StatusService{Calls: calls, Broadcasts: broadcasts}
	broadcastID, callID := seedBroadcastCall(t, broadcasts, calls)

	known, err := s.Apply(callID, model.CallCompleted)
	if err != nil {
		t.Fatalf("apply failed: %v", err)
	}
	if !known {
		t.Fatal("seeded call reported unknown")
	}

	call, _ := calls.GetByCallID(callID)
	if call.Status != model.CallCompleted {
		t.Errorf("expected completed call, got %s", call.Status)
	}
	if call.EndedAt == nil {
		t.Error("completed call must have ended_at")
	}
	if call.Duration == nil {
		t.Error("completed call must have a duration")
	}

	b, _ := broadcasts.GetByBroadcastID(broadcastID)
	if b.Completed != 1 || b.InProgress != 0 {
		t.Errorf("expected completed=1 in_progress=0, got completed=%d in_progress=%d",
			b.Completed, b.InProgress)
	}
}

func TestHangupCallback(t *testing.T) {
	broadcasts := newMemBroadcastRepo()
	calls := newMemCallRepo()
	s := &service.StatusService{Calls: calls, Broadcasts: broadcasts}
	broadcastID, callID := seedBroadcastCall(t, broadcasts, calls)

	if _, err := s.Apply(callID, model.CallHangup); err != nil {
		t.Fatalf("apply failed: %v", err)
	}

	call, _ := calls.GetByCallID(callID)
	if call.Status != model.CallHangup {
		t.Errorf("expected hangup, got %s", call.Status)
	}
	if call.Duration != nil {
		t.Error("hangup must not derive a duration")
	}

	b, _ := broadcasts.GetByBroadcastID(broadcastID)
	if b.Failed != 1 || b.InProgress != 0 {
		t.Errorf("expected failed=1 in_progress=0, got failed=%d in_progress=%d",
			b.Failed, b.InProgress)
	}
}

func TestStandaloneCallCallbackTouchesNoBroadcast(t *testing.T) {
	broadcasts := newMemBroadcastRepo()
	calls := newMemCallRepo()
	s := &service.StatusService{Calls: calls, Broadcasts: broadcasts}

	if err := calls.Create(&model.Call{CallID: "solo1", PhoneNumber: "+15550001", Status: model.CallInitiated}); err != nil {
		t.Fatal(err)
	}

	if _, err := s.Apply("solo1", model.CallCompleted); err != nil {
		t.Fatalf("apply failed: %v", err)
	}
	if len(broadcasts.broadcasts) != 0 {
		t.Error("standalone call callback touched broadcast state")
	}
}

func TestUnknownStatusValueRejected(t *testing.T) {
	broadcasts := newMemBroadcastRepo()
	calls := newMemCallRepo()
	s := &service.StatusService{Calls: calls, Broadcasts: broadcasts}
	_, callID := seedBroadcastCall(t, broadcasts, calls)

	if _, err := s.Apply(callID, "vaporized"); err == nil {
		t.Fatal("expected error for unknown status value")
	}
}

// Drains a full broadcast through dispatch and callbacks and checks that the
// counters settle with in_progress at zero while the invariant held at every
// step in between.
func TestCallbacksDrainInProgressToZero(t *testing.T) {
	f := newBroadcastFixture(t)
	s := &service.StatusService{Calls: f.calls, Broadcasts: f.broadcasts}

	result, err := f.svc.CreateBroadcast(service.BroadcastRequest{
		Name:         "drain",
		PhoneNumbers: []string{"+15550001", "+15550002", "+15550003"},
		Audio:        service.AudioSpec{Message: "hi"},
	})
	if err != nil {
		t.Fatalf("submission failed: %v", err)
	}
	f.svc.Tasks.Wait(result.BroadcastID)

	recent, _ := f.calls.ListRecent(10)
	statuses := []string{model.CallCompleted, model.CallHangup, model.CallFailed}
	for i, call := range recent {
		if _, err := s.Apply(call.CallID, statuses[i%len(statuses)]); err != nil {
			t.Fatalf("callback for %s failed: %v", call.CallID, err)
		}
	}

	b := f.get(t, result.BroadcastID)
	if b.InProgress != 0 {
		t.Errorf("expected in_progress 0 after all callbacks, got %d", b.InProgress)
	}
	if b.Completed+b.Failed != 3 {
		t.Errorf("expected 3 terminal calls, got completed=%d failed=%d", b.Completed, b.Failed)
	}
	if got := b.Completed + b.Failed + b.InProgress; got > b.TotalNumbers {
		t.Errorf("counters exceed total: %d > %d", got, b.TotalNumbers)
	}
	f.checkInvariant(t)

	// The broadcast was already terminal before the callbacks landed; the
	// callbacks only move counters, never status.
	if b.Status != model.BroadcastCompleted {
		t.Errorf("expected completed, got %s", b.Status)
	}
}
