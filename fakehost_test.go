package jsbridge

import (
	"fmt"
)

type fakeHandle uint64

func (h fakeHandle) HandleID() uint64 { return uint64(h) }

type fakeRegistration struct {
	dispatcher Dispatcher
	listener   fakeHandle
	event      string
	target     fakeHandle
}

// fakeHost records calls, and supports failure injection. Triggering
// dispatches to every live registration for the (target, event) pair, as a
// DOM would.
type fakeHost struct {
	registerErr   error
	unregisterErr error
	elements      map[string]fakeHandle
	registrations []*fakeRegistration
	registers     int
	unregisters   int
	nextID        uint64
}

func newFakeHost() *fakeHost {
	return &fakeHost{nextID: 100}
}

func (h *fakeHost) Register(target Handle, eventName string, dispatcher Dispatcher) (Handle, error) {
	h.registers++
	if h.registerErr != nil {
		return nil, h.registerErr
	}
	t, ok := target.(fakeHandle)
	if !ok {
		return nil, ErrForeignHandle
	}
	h.nextID++
	r := &fakeRegistration{
		dispatcher: dispatcher,
		listener:   fakeHandle(h.nextID),
		event:      eventName,
		target:     t,
	}
	h.registrations = append(h.registrations, r)
	return r.listener, nil
}

func (h *fakeHost) Unregister(target Handle, eventName string, listener Handle) error {
	h.unregisters++
	if h.unregisterErr != nil {
		return h.unregisterErr
	}
	for i, r := range h.registrations {
		if r.target == target && r.event == eventName && r.listener == listener {
			h.registrations = append(h.registrations[:i:i], h.registrations[i+1:]...)
			return nil
		}
	}
	return ErrListenerNotFound
}

func (h *fakeHost) Trigger(target Handle, eventName string) error {
	return h.fire(target, eventName, fakeHandle(1))
}

func (h *fakeHost) fire(target Handle, eventName string, payload Handle) error {
	live := make([]*fakeRegistration, len(h.registrations))
	copy(live, h.registrations)
	for _, r := range live {
		if r.target == target && r.event == eventName {
			r.dispatcher(payload)
		}
	}
	return nil
}

func (h *fakeHost) GetElementByID(id string) (Handle, error) {
	if v, ok := h.elements[id]; ok {
		return v, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrElementNotFound, id)
}

func (h *fakeHost) live(target Handle, eventName string) int {
	var n int
	for _, r := range h.registrations {
		if r.target == target && r.event == eventName {
			n++
		}
	}
	return n
}

type fakePayload struct {
	fakeHandle
	eventType string
}

func (p fakePayload) GetString(name string) (string, error) {
	if name == "type" {
		return p.eventType, nil
	}
	return "", fmt.Errorf("no property %q", name)
}

func (p fakePayload) GetObject(name string) (Object, error) {
	return nil, nil
}
