package appErrors

import "fmt"

// ErrNoAudioSource means a request carried neither TTS text, a recording
// reference, nor a literal message.
type ErrNoAudioSource struct{}

func (e *ErrNoAudioSource) Error() string {
	return "no audio source provided"
}

func NewNoAudioSource() error {
	return &ErrNoAudioSource{}
}

// ErrSynthesisFailed means the external speech synthesizer rejected the text
// or produced no output.
type ErrSynthesisFailed struct {
	Cause error
}

func (e *ErrSynthesisFailed) Error() string {
	return fmt.Sprintf("speech synthesis failed: %v", e.Cause)
}

func (e *ErrSynthesisFailed) Unwrap() error { return e.Cause }

func NewSynthesisFailed(cause error) error {
	return &ErrSynthesisFailed{Cause: cause}
}

// ErrConversionFailed means the audio format converter rejected the
// synthesized audio or produced no output.
type ErrConversionFailed struct {
	Cause error
}

func (e *ErrConversionFailed) Error() string {
	return fmt.Sprintf("audio conversion failed: %v", e.Cause)
}

func (e *ErrConversionFailed) Unwrap() error { return e.Cause }

func NewConversionFailed(cause error) error {
	return &ErrConversionFailed{Cause: cause}
}

// ErrNoRecipients means a broadcast resolved to zero phone numbers.
type ErrNoRecipients struct {
	BroadcastID string
}

func (e *ErrNoRecipients) Error() string {
	return fmt.Sprintf("broadcast %s has no recipients", e.BroadcastID)
}

func NewNoRecipients(broadcastID string) error {
	return &ErrNoRecipients{BroadcastID: broadcastID}
}

// ErrDispatchFailed means one recipient's call order could not be placed.
// Sibling dispatches are unaffected.
type ErrDispatchFailed struct {
	PhoneNumber string
	Cause       error
}

func (e *ErrDispatchFailed) Error() string {
	return fmt.Sprintf("dispatch to %s failed: %v", e.PhoneNumber, e.Cause)
}

func (e *ErrDispatchFailed) Unwrap() error { return e.Cause }

func NewDispatchFailed(phoneNumber string, cause error) error {
	return &ErrDispatchFailed{PhoneNumber: phoneNumber, Cause: cause}
}

// ErrBroadcastNotFound is a sentinel error
type ErrBroadcastNotFound struct {
	BroadcastID string
}

func (e *ErrBroadcastNotFound) Error() string {
	return fmt.Sprintf("broadcast %s not found", e.BroadcastID)
}

func NewBroadcastNotFound(id string) error {
	return &ErrBroadcastNotFound{BroadcastID: id}
}

// ErrDuplicateGroup means a contact group with that name already exists.
type ErrDuplicateGroup struct {
	Name string
}

func (e *ErrDuplicateGroup) Error() string {
	return fmt.Sprintf("group %q already exists", e.Name)
}

func NewDuplicateGroup(name string) error {
	return &ErrDuplicateGroup{Name: name}
}
