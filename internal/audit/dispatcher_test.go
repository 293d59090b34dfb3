package audit

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

type recordingSink struct {
	mu     sync.Mutex
	events []Event
	fail   bool
}

func (s *recordingSink) Log(ctx context.Context, ev Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, ev)
	if s.fail {
		return errors.New("db down")
	}
	return nil
}

func TestDispatcherDeliversInOrder(t *testing.T) {
	sink := &recordingSink{}
	d := NewDispatcher(sink, nil)

	d.Dispatch(Event{Action: "appointment_booked"})
	d.Dispatch(Event{Action: "appointment_cancelled"})
	d.Close()

	assert.Len(t, sink.events, 2)
	assert.Equal(t, "appointment_booked", sink.events[0].Action)
	assert.Equal(t, "appointment_cancelled", sink.events[1].Action)
}

func TestDispatcherSurvivesSinkErrors(t *testing.T) {
	sink := &recordingSink{fail: true}
	d := NewDispatcher(sink, nil)

	d.Dispatch(Event{Action: "a"})
	d.Dispatch(Event{Action: "b"})
	d.Close()

	assert.Len(t, sink.events, 2)
}

func TestNilDispatcherIsNoop(t *testing.T) {
	var d *Dispatcher
	assert.NotPanics(t, func() {
		d.Dispatch(Event{Action: "x"})
		d.Close()
	})
}

func TestEncodeMetadata(t *testing.T) {
	assert.Equal(t, "", encodeMetadata(nil))
	assert.Equal(t, `{"reward":true}`, encodeMetadata(map[string]any{"reward": true}))
}
