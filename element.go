// Copyright 2026 Joseph Cumines
//
// Permission to use, copy, modify, and distribute this software for any
// purpose with or without fee is hereby granted, provided that this copyright
// notice appears in all copies.

package jsbridge

import (
	"errors"
	"fmt"
	"sort"
)

// EventClick is the event name used by [Element.OnClick].
const EventClick = "click"

// Document wraps a [DOM] host, handing out [Element] wrappers.
type Document struct {
	dom  DOM
	opts []BridgeOption
}

// NewDocument returns a Document for dom. The options are applied to every
// bridge created by the elements of the document.
func NewDocument(dom DOM, opts ...BridgeOption) (*Document, error) {
	if dom == nil {
		return nil, fmt.Errorf("jsbridge: dom cannot be nil")
	}
	return &Document{dom: dom, opts: opts}, nil
}

// GetElementByID locates the element with the given id, and wraps it. Each
// call returns a new wrapper, with its own bridges.
func (d *Document) GetElementByID(id string) (*Element, error) {
	handle, err := d.dom.GetElementByID(id)
	if err != nil {
		return nil, err
	}
	if handle == nil {
		return nil, fmt.Errorf("%w: %q", ErrElementNotFound, id)
	}
	return &Element{doc: d, handle: handle, id: id}, nil
}

// Element wraps a host element, exposing its events as multi-subscriber
// Go events. It owns at most one [Bridge] per event name, so there is at most
// one host listener per event name, regardless of the number of subscribers.
type Element struct {
	doc     *Document
	handle  Handle
	bridges map[string]*Bridge[*Element]
	id      string
	closed  bool
}

// Handle returns the underlying host element.
func (e *Element) Handle() Handle { return e.handle }

// ID returns the id the element was located by.
func (e *Element) ID() string { return e.id }

// On returns the event for eventName, creating it on first use.
func (e *Element) On(eventName string) (*Bridge[*Element], error) {
	if b, ok := e.bridges[eventName]; ok {
		return b, nil
	}
	if e.closed {
		return nil, ErrClosed
	}

	b, err := NewBridge(e.doc.dom, e.handle, eventName, e, e.doc.opts...)
	if err != nil {
		return nil, err
	}
	if e.bridges == nil {
		e.bridges = make(map[string]*Bridge[*Element])
	}
	e.bridges[eventName] = b
	return b, nil
}

// OnClick returns the click event.
func (e *Element) OnClick() *Bridge[*Element] {
	b, err := e.On(EventClick)
	if err != nil {
		// only possible after Close, return an inert bridge
		b = &Bridge[*Element]{host: e.doc.dom, target: e.handle, eventName: EventClick, sender: e, closed: true}
	}
	return b
}

// Click fires a click event on the element, via the host.
func (e *Element) Click() error {
	return e.doc.dom.Trigger(e.handle, EventClick)
}

// Dispatch fires eventName on the element, via the host.
func (e *Element) Dispatch(eventName string) error {
	return e.doc.dom.Trigger(e.handle, eventName)
}

// Close closes every bridge of the element, releasing any host listeners.
func (e *Element) Close() error {
	if e.closed {
		return nil
	}
	e.closed = true

	names := make([]string, 0, len(e.bridges))
	for name := range e.bridges {
		names = append(names, name)
	}
	sort.Strings(names)

	var errs []error
	for _, name := range names {
		if err := e.bridges[name].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
