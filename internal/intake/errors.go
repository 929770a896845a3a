package intake

import (
	"errors"
	"fmt"
)

// ErrInvalidForm is returned when a required field is missing. Nothing is stored.
var ErrInvalidForm = errors.New("intake: invalid form")

// PersistenceFailure means the durable write failed. The submission is lost unless
// the visitor retries or uses the fallback channel; notification is never attempted.
type PersistenceFailure struct {
	Err error
}

func (e *PersistenceFailure) Error() string {
	return fmt.Sprintf("intake: persist lead: %v", e.Err)
}

func (e *PersistenceFailure) Unwrap() error { return e.Err }

// NotificationFailure means a secondary channel failed after the lead was stored.
// It is only ever logged.
type NotificationFailure struct {
	Channel string
	LeadID  string
	Err     error
}

func (e *NotificationFailure) Error() string {
	return fmt.Sprintf("intake: notify %s for lead %s: %v", e.Channel, e.LeadID, e.Err)
}

func (e *NotificationFailure) Unwrap() error { return e.Err }
