package broker

import (
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

// DoneToken is an mqtt.Token that has already completed. It stands in for the
// broker in tests and for operations that are resolved locally.
type DoneToken struct {
	err  error
	done chan struct{}
}

var _ mqtt.Token = (*DoneToken)(nil)

func NewDoneToken(err error) *DoneToken {
	done := make(chan struct{})
	close(done)
	return &DoneToken{err: err, done: done}
}

func (t *DoneToken) Wait() bool                     { return true }
func (t *DoneToken) WaitTimeout(time.Duration) bool { return true }
func (t *DoneToken) Done() <-chan struct{}          { return t.done }
func (t *DoneToken) Error() error                   { return t.err }
