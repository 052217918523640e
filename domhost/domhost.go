// Copyright 2026 Joseph Cumines
//
// Permission to use, copy, modify, and distribute this software for any
// purpose with or without fee is hereby granted, provided that this copyright
// notice appears in all copies.

package domhost

import (
	"fmt"
	"sync/atomic"

	eventloop "github.com/joeycumines/go-eventloop"
	"github.com/joeycumines/go-jsbridge"
	"github.com/joeycumines/logiface"
)

var (
	// compile time assertions

	_ jsbridge.DOM    = (*Host)(nil)
	_ jsbridge.Object = (*Element)(nil)
	_ jsbridge.Object = (*Event)(nil)
	_ jsbridge.Handle = (*Listener)(nil)
)

// handleIDCounter is shared by all hosts, so handles are distinguishable
// across hosts.
var handleIDCounter atomic.Uint64

// Host is an in-memory DOM, implementing [jsbridge.DOM].
//
// Thread Safety:
// Host is NOT safe for concurrent use. It models a single-threaded host, and
// should only be used from one goroutine (e.g. the event loop goroutine).
type Host struct {
	logger   *logiface.Logger[logiface.Event]
	elements map[string]*Element
}

// Element is a host element. It is the [jsbridge.Handle] for the element.
type Element struct {
	host     *Host
	target   *eventloop.EventTarget
	attrs    map[string]string
	id       string
	tagName  string
	handleID uint64
}

// Listener is the handle returned by [Host.Register].
type Listener struct {
	element   *Element
	eventName string
	handleID  uint64
	id        eventloop.ListenerID
}

// Event is the payload handle delivered to dispatchers.
type Event struct {
	event    *eventloop.Event
	target   *Element
	handleID uint64
}

// New creates an empty Host.
func New(opts ...Option) (*Host, error) {
	cfg, err := resolveOptions(opts)
	if err != nil {
		return nil, err
	}
	return &Host{
		logger:   cfg.logger,
		elements: make(map[string]*Element),
	}, nil
}

// CreateElement adds an element with the given id and tag name.
func (h *Host) CreateElement(tagName, id string) (*Element, error) {
	if id == "" {
		return nil, fmt.Errorf("domhost: element id cannot be empty")
	}
	if _, ok := h.elements[id]; ok {
		return nil, fmt.Errorf("domhost: duplicate element id %q", id)
	}
	el := &Element{
		host:     h,
		target:   eventloop.NewEventTarget(),
		attrs:    make(map[string]string),
		id:       id,
		tagName:  tagName,
		handleID: handleIDCounter.Add(1),
	}
	h.elements[id] = el
	return el, nil
}

// Element returns the element with the given id, or nil.
func (h *Host) Element(id string) *Element {
	return h.elements[id]
}

// GetElementByID implements [jsbridge.DOM].
func (h *Host) GetElementByID(id string) (jsbridge.Handle, error) {
	if el, ok := h.elements[id]; ok {
		return el, nil
	}
	return nil, fmt.Errorf("%w: %q", jsbridge.ErrElementNotFound, id)
}

// Remove detaches the element with the given id, dropping its listeners.
// Releasing a listener of a removed element fails with
// [jsbridge.ErrListenerNotFound].
func (h *Host) Remove(id string) bool {
	el, ok := h.elements[id]
	if !ok {
		return false
	}
	delete(h.elements, id)
	el.target.RemoveAllEventListeners("")
	return true
}

// Register implements [jsbridge.Host], via [eventloop.EventTarget.AddEventListener].
func (h *Host) Register(target jsbridge.Handle, eventName string, dispatcher jsbridge.Dispatcher) (jsbridge.Handle, error) {
	el, err := h.element(target)
	if err != nil {
		return nil, err
	}
	if dispatcher == nil {
		return nil, fmt.Errorf("domhost: dispatcher cannot be nil")
	}

	id := el.target.AddEventListener(eventName, func(event *eventloop.Event) {
		dispatcher(&Event{event: event, target: el, handleID: handleIDCounter.Add(1)})
	})

	listener := &Listener{
		element:   el,
		eventName: eventName,
		handleID:  handleIDCounter.Add(1),
		id:        id,
	}

	h.logger.Debug().
		Str(`element`, el.id).
		Str(`event`, eventName).
		Uint64(`listener`, listener.handleID).
		Log(`addEventListener`)

	return listener, nil
}

// Unregister implements [jsbridge.Host], via
// [eventloop.EventTarget.RemoveEventListenerByID]. Unlike the DOM, a
// listener that does not match a live registration is reported, as
// [jsbridge.ErrListenerNotFound].
func (h *Host) Unregister(target jsbridge.Handle, eventName string, listener jsbridge.Handle) error {
	el, err := h.element(target)
	if err != nil {
		return err
	}
	l, ok := listener.(*Listener)
	if !ok || l == nil {
		return fmt.Errorf("%w: %T", jsbridge.ErrForeignHandle, listener)
	}
	if l.element != el || l.eventName != eventName {
		return fmt.Errorf("%w: listener %d was registered for %q on %q", jsbridge.ErrListenerNotFound, l.handleID, l.eventName, l.element.id)
	}
	if !el.target.RemoveEventListenerByID(eventName, l.id) {
		return fmt.Errorf("%w: listener %d", jsbridge.ErrListenerNotFound, l.handleID)
	}

	h.logger.Debug().
		Str(`element`, el.id).
		Str(`event`, eventName).
		Uint64(`listener`, l.handleID).
		Log(`removeEventListener`)

	return nil
}

// Trigger implements [jsbridge.EventTrigger], dispatching a new event
// synchronously.
func (h *Host) Trigger(target jsbridge.Handle, eventName string) error {
	el, err := h.element(target)
	if err != nil {
		return err
	}
	el.target.DispatchEvent(eventloop.NewEvent(eventName))
	return nil
}

// ListenerCount returns the number of host listeners for eventName on
// target.
func (h *Host) ListenerCount(target jsbridge.Handle, eventName string) int {
	el, err := h.element(target)
	if err != nil {
		return 0
	}
	return el.target.ListenerCount(eventName)
}

func (h *Host) element(target jsbridge.Handle) (*Element, error) {
	el, ok := target.(*Element)
	if !ok || el == nil || el.host != h {
		return nil, fmt.Errorf("%w: %T", jsbridge.ErrForeignHandle, target)
	}
	return el, nil
}

// HandleID implements [jsbridge.Handle].
func (x *Element) HandleID() uint64 { return x.handleID }

// ID returns the element id.
func (x *Element) ID() string { return x.id }

// SetAttribute sets an attribute, readable via GetString.
func (x *Element) SetAttribute(name, value string) { x.attrs[name] = value }

// GetAttribute returns an attribute, and whether it was set.
func (x *Element) GetAttribute(name string) (string, bool) {
	v, ok := x.attrs[name]
	return v, ok
}

// GetString implements [jsbridge.Object]. The properties "id" and "tagName"
// are supported, along with any attribute.
func (x *Element) GetString(name string) (string, error) {
	switch name {
	case "id":
		return x.id, nil
	case "tagName":
		return x.tagName, nil
	}
	if v, ok := x.attrs[name]; ok {
		return v, nil
	}
	return "", fmt.Errorf("domhost: element %q has no property %q", x.id, name)
}

// GetObject implements [jsbridge.Object]. Elements have no object
// properties.
func (x *Element) GetObject(name string) (jsbridge.Object, error) {
	return nil, nil
}

// HandleID implements [jsbridge.Handle].
func (x *Listener) HandleID() uint64 { return x.handleID }

// HandleID implements [jsbridge.Handle].
func (x *Event) HandleID() uint64 { return x.handleID }

// Raw returns the underlying event.
func (x *Event) Raw() *eventloop.Event { return x.event }

// GetString implements [jsbridge.Object]. Only "type" is supported.
func (x *Event) GetString(name string) (string, error) {
	if name == "type" {
		return x.event.Type, nil
	}
	return "", fmt.Errorf("domhost: event has no property %q", name)
}

// GetObject implements [jsbridge.Object]. Only "target" is supported.
func (x *Event) GetObject(name string) (jsbridge.Object, error) {
	if name == "target" {
		return x.target, nil
	}
	return nil, fmt.Errorf("domhost: event has no property %q", name)
}
