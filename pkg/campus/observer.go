package campus

import "time"

// Operation names reported to an Observer.
const (
	OpAdd      = "add"
	OpUpdate   = "update"
	OpDelete   = "delete"
	OpEnroll   = "enroll"
	OpUnenroll = "unenroll"
	OpReset    = "reset"
)

// Observer receives a callback after every store mutation.
// Callbacks run while the store lock is held and must not call back into the store.
type Observer interface {
	OnMutation(kind, op, id string, duration time.Duration)
	OnError(kind, op string, err error)
}

type nopObserver struct{}

func (nopObserver) OnMutation(string, string, string, time.Duration) {}
func (nopObserver) OnError(string, string, error)                    {}
