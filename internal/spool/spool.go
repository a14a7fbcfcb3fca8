// internal/spool/spool.go
package spool

import (
	"fmt"
	"os"
	"path/filepath"
)

// Descriptor is one call order for the telephony engine: which channel to
// ring, how patiently to retry, and the variables the dialplan consumes.
type Descriptor struct {
	Channel     string // e.g. SIP/trunk_main/+15550001
	CallerID    string
	MaxRetries  int
	RetryTime   int // seconds between retry attempts
	WaitTime    int // seconds to wait for an answer
	AudioFile   string
	CallID      string
	PhoneNumber string
}

// Render emits the descriptor in the engine's call-file format. The routing
// context and extension are fixed: every outbound call lands in the
// playback context.
func (d Descriptor) Render() string {
	return fmt.Sprintf(`Channel: %s
CallerID: %s
MaxRetries: %d
RetryTime: %d
WaitTime: %d
Context: outbound-playback
Extension: s
Priority: 1
Setvar: AUDIO_FILE=%s
Setvar: CALL_ID=%s
Setvar: PHONE_NUMBER=%s
`, d.Channel, d.CallerID, d.MaxRetries, d.RetryTime, d.WaitTime,
		d.AudioFile, d.CallID, d.PhoneNumber)
}

// Publisher drops call orders into the engine's watched intake directory.
// There is deliberately no read-back: once a file lands in the spool the
// engine owns it.
type Publisher struct {
	StagingDir string
	SpoolDir   string
}

func NewPublisher(stagingDir, spoolDir string) *Publisher {
	return &Publisher{StagingDir: stagingDir, SpoolDir: spoolDir}
}

// Publish writes the descriptor to the staging directory and renames it into
// the spool. The rename is the hand-off: the engine watches the spool and
// must never see a partially written file, so the content is fully flushed
// before anything appears at the watched path.
func (p *Publisher) Publish(d Descriptor) error {
	name := fmt.Sprintf("call_%s.call", d.CallID)

	tmp := filepath.Join(p.StagingDir, name)
	if err := os.WriteFile(tmp, []byte(d.Render()), 0o644); err != nil {
		return fmt.Errorf("stage call file: %w", err)
	}

	dst := filepath.Join(p.SpoolDir, name)
	if err := os.Rename(tmp, dst); err != nil {
		// Don't leave orphans in staging.
		os.Remove(tmp)
		return fmt.Errorf("publish call file: %w", err)
	}

	return nil
}
