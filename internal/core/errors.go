package core

import "errors"

// Error codes for domain errors.
const (
	ErrCodeBadRequest    = "bad_request"
	ErrCodeNotInRoom     = "not_in_room"
	ErrCodeSessionInUse  = "session_in_use"
	ErrCodeVoiceDisabled = "voice_disabled"
	ErrCodeVoiceError    = "voice_error"
)

var ErrHubStopped = errors.New("hub stopped")

// CoreError wraps a code and human-readable message.
type CoreError struct {
	Code    string
	Message string
}

func (e *CoreError) Error() string {
	return e.Message
}

func coreError(code, msg string) *CoreError {
	return &CoreError{Code: code, Message: msg}
}
