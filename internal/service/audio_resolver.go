// internal/service/audio_resolver.go
package service

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	appErrors "github.com/redwoodtel/callwave-backend/internal/errors"
)

// AudioSpec carries at most one audio source for a call or broadcast.
// Precedence when several are set: TTS text, then recording file, then
// literal message.
type AudioSpec struct {
	TTSText       string
	RecordingFile string
	Message       string
}

// Runner executes an external tool. Seam for tests; production uses
// ExecRunner.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) error
}

// ExecRunner runs tools through os/exec.
type ExecRunner struct{}

func (ExecRunner) Run(ctx context.Context, name string, args ...string) error {
	path, err := exec.LookPath(name)
	if err != nil {
		return fmt.Errorf("command not found: %s", name)
	}
	cmd := exec.CommandContext(ctx, path, args...)
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("%s: %v: %s", name, err, strings.TrimSpace(string(out)))
	}
	return nil
}

// AudioResolver turns an AudioSpec into the single opaque audio reference
// the dispatcher hands to the engine. Synthesized speech is rendered with an
// external TTS tool and then normalized with an external converter to the
// engine's telephony format (8 kHz, mono, 16-bit) inside SoundsDir, which is
// on the engine's sound search path.
type AudioResolver struct {
	TTSCommand     string // e.g. pico2wave
	ConvertCommand string // e.g. sox
	StagingDir     string
	SoundsDir      string
	Runner         Runner
}

// Resolve picks the highest-precedence source and returns the audio
// reference. Callers treat the reference as opaque.
func (a *AudioResolver) Resolve(ctx context.Context, spec AudioSpec) (string, error) {
	switch {
	case spec.TTSText != "":
		return a.synthesize(ctx, spec.TTSText)
	case spec.RecordingFile != "":
		return spec.RecordingFile, nil
	case spec.Message != "":
		return spec.Message, nil
	}
	return "", appErrors.NewNoAudioSource()
}

func (a *AudioResolver) synthesize(ctx context.Context, text string) (string, error) {
	name := fmt.Sprintf("tts_%s", strings.ReplaceAll(uuid.New().String(), "-", ""))

	raw := filepath.Join(a.StagingDir, name+"_raw.wav")
	defer os.Remove(raw)

	if err := a.Runner.Run(ctx, a.TTSCommand, "-w", raw, text); err != nil {
		return "", appErrors.NewSynthesisFailed(err)
	}
	if empty(raw) {
		return "", appErrors.NewSynthesisFailed(fmt.Errorf("synthesizer produced no output"))
	}

	out := filepath.Join(a.SoundsDir, name+".wav")
	if err := a.Runner.Run(ctx, a.ConvertCommand, raw, "-r", "8000", "-c", "1", "-b", "16", out); err != nil {
		return "", appErrors.NewConversionFailed(err)
	}
	if empty(out) {
		return "", appErrors.NewConversionFailed(fmt.Errorf("converter produced no output"))
	}

	log.Println("🔊 Synthesized audio:", name)

	// The engine resolves sound references without the extension.
	return name, nil
}

func empty(path string) bool {
	info, err := os.Stat(path)
	return err != nil || info.Size() == 0
}
