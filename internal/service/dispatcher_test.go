package service_test

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	appErrors "github.com/redwoodtel/callwave-backend/internal/errors"
	"github.com/redwoodtel/callwave-backend/internal/model"
	"github.com/redwoodtel/callwave-backend/internal/service"
	"github.com/redwoodtel/callwave-backend/internal/spool"
)

func newTestDispatcher(t *testing.T, calls *memCallRepo) (*service.CallDispatcher, string) {
	t.Helper()
	spoolDir := t.TempDir()
	return &service.CallDispatcher{
		Calls:           calls,
		Spool:           spool.NewPublisher(t.TempDir(), spoolDir),
		Trunk:           "trunk_main",
		DefaultCallerID: "CallWave",
	}, spoolDir
}

func TestDispatchPublishesAndPersists(t *testing.T) {
	calls := newMemCallRepo()
	d, spoolDir := newTestDispatcher(t, calls)

	callID, err := d.Dispatch(service.DispatchRequest{
		PhoneNumber: "+15550001",
		AudioFile:   "tts_abc",
	})
	if err != nil {
		t.Fatalf("dispatch failed: %v", err)
	}

	content, err := os.ReadFile(filepath.Join(spoolDir, "call_"+callID+".call"))
	if err != nil {
		t.Fatalf("call file not in spool: %v", err)
	}
	text := string(content)
	if !strings.Contains(text, "Channel: SIP/trunk_main/+15550001\n") {
		t.Errorf("wrong channel line:\n%s", text)
	}
	if !strings.Contains(text, "CallerID: CallWave\n") {
		t.Errorf("expected default caller id fallback:\n%s", text)
	}
	if !strings.Contains(text, "MaxRetries: 3\n") {
		t.Errorf("expected default retry policy:\n%s", text)
	}
	if !strings.Contains(text, "Setvar: CALL_ID="+callID+"\n") {
		t.Errorf("call id variable missing:\n%s", text)
	}

	call, _ := calls.GetByCallID(callID)
	if call == nil {
		t.Fatal("call row not persisted")
	}
	if call.Status != model.CallInitiated {
		t.Errorf("expected initiated row, got %s", call.Status)
	}
	if call.Direction != "outbound" {
		t.Errorf("expected outbound direction, got %s", call.Direction)
	}
	if call.CallerID != nil {
		t.Errorf("caller id override should stay empty, got %v", *call.CallerID)
	}
	if call.BroadcastID != nil {
		t.Errorf("standalone call must not reference a broadcast")
	}
}

func TestDispatchCarriesOverrides(t *testing.T) {
	calls := newMemCallRepo()
	d, spoolDir := newTestDispatcher(t, calls)

	callID, err := d.Dispatch(service.DispatchRequest{
		PhoneNumber: "+15550002",
		AudioFile:   "greeting",
		CallerID:    "Alerts",
		GroupName:   "sales",
		BroadcastID: "bcast42",
		MaxRetries:  7,
	})
	if err != nil {
		t.Fatalf("dispatch failed: %v", err)
	}

	if !strings.HasPrefix(callID, "bcast42_") {
		t.Errorf("broadcast call id must be derived from the broadcast id, got %q", callID)
	}

	content, _ := os.ReadFile(filepath.Join(spoolDir, "call_"+callID+".call"))
	if !strings.Contains(string(content), "CallerID: Alerts\n") {
		t.Errorf("caller id override not honored:\n%s", content)
	}
	if !strings.Contains(string(content), "MaxRetries: 7\n") {
		t.Errorf("retry override not honored:\n%s", content)
	}

	call, _ := calls.GetByCallID(callID)
	if call.BroadcastID == nil || *call.BroadcastID != "bcast42" {
		t.Error("call row missing broadcast reference")
	}
	if call.GroupName == nil || *call.GroupName != "sales" {
		t.Error("call row missing group name")
	}
}

func TestConcurrentDispatchIDsAreUnique(t *testing.T) {
	calls := newMemCallRepo()
	d, _ := newTestDispatcher(t, calls)

	const n = 200
	ids := make([]string, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id, err := d.Dispatch(service.DispatchRequest{
				PhoneNumber: "+15550001",
				AudioFile:   "tts_abc",
				BroadcastID: "bcast1",
			})
			if err != nil {
				t.Errorf("dispatch %d failed: %v", i, err)
				return
			}
			ids[i] = id
		}(i)
	}
	wg.Wait()

	seen := map[string]bool{}
	for _, id := range ids {
		if id == "" {
			continue
		}
		if seen[id] {
			t.Fatalf("duplicate call id under concurrent dispatch: %s", id)
		}
		seen[id] = true
		if !strings.HasPrefix(id, "bcast1_") {
			t.Errorf("call id %q not derived from broadcast id", id)
		}
	}
	if len(seen) != n {
		t.Errorf("expected %d unique call ids, got %d", n, len(seen))
	}
}

func TestDispatchFailureLeavesNoRow(t *testing.T) {
	calls := newMemCallRepo()
	d := &service.CallDispatcher{
		Calls:           calls,
		Spool:           spool.NewPublisher(t.TempDir(), filepath.Join(t.TempDir(), "missing")),
		Trunk:           "trunk_main",
		DefaultCallerID: "CallWave",
	}

	_, err := d.Dispatch(service.DispatchRequest{PhoneNumber: "+15550003", AudioFile: "x"})

	var dispatchErr *appErrors.ErrDispatchFailed
	if !errors.As(err, &dispatchErr) {
		t.Fatalf("expected ErrDispatchFailed, got %v", err)
	}
	if dispatchErr.PhoneNumber != "+15550003" {
		t.Errorf("error should name the recipient, got %q", dispatchErr.PhoneNumber)
	}
	if calls.count() != 0 {
		t.Error("no call row may exist when the order was never published")
	}
}
