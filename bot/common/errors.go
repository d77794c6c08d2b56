package common

import "fmt"

// BotError pairs a message safe to show the invoking user with the
// underlying error kept for logs. Handlers return it when an operation
// fails in a way the user can act on.
type BotError struct {
	UserMessage string
	Err         error
}

func (e *BotError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.UserMessage, e.Err)
	}
	return e.UserMessage
}

func (e *BotError) Unwrap() error {
	return e.Err
}

// NewBotError creates a BotError wrapping err
func NewBotError(userMessage string, err error) *BotError {
	return &BotError{UserMessage: userMessage, Err: err}
}
