// Copyright 2026 Joseph Cumines
//
// Permission to use, copy, modify, and distribute this software for any
// purpose with or without fee is hereby granted, provided that this copyright
// notice appears in all copies.

package jsbridge

import (
	"errors"
	"fmt"
)

var (
	// ErrNilListener is returned when subscribing a nil listener, or a
	// listener without a callback.
	ErrNilListener = errors.New("jsbridge: nil listener")

	// ErrClosed is returned by [Bridge.Subscribe] after [Bridge.Close].
	ErrClosed = errors.New("jsbridge: bridge closed")

	// ErrListenerNotFound should be returned by [Host.Unregister] when the
	// listener handle does not identify a live registration.
	ErrListenerNotFound = errors.New("jsbridge: listener not registered")

	// ErrForeignHandle should be returned by hosts given a [Handle] they did
	// not mint.
	ErrForeignHandle = errors.New("jsbridge: handle not issued by this host")

	// ErrElementNotFound should be returned by [DOM.GetElementByID] when no
	// element has the requested id.
	ErrElementNotFound = errors.New("jsbridge: element not found")
)

// RegistrationError indicates the host failed to register the dispatcher,
// on the first subscription. The subscriber was not retained.
type RegistrationError struct {
	Err       error
	EventName string
}

func (e *RegistrationError) Error() string {
	return fmt.Sprintf("jsbridge: register %q listener: %v", e.EventName, e.Err)
}

func (e *RegistrationError) Unwrap() error {
	return e.Err
}

// UnregistrationError indicates the host failed to release a registration.
// The bridge has already discarded the listener handle, when this error is
// returned, so the bridge state remains consistent.
type UnregistrationError struct {
	Err       error
	EventName string
}

func (e *UnregistrationError) Error() string {
	return fmt.Sprintf("jsbridge: unregister %q listener: %v", e.EventName, e.Err)
}

func (e *UnregistrationError) Unwrap() error {
	return e.Err
}

// SubscriberError is reported, per subscriber, when a subscriber fails
// during dispatch. It is never returned to the host.
type SubscriberError struct {
	Err       error
	EventName string
	// Index is the position of the subscriber within the dispatch snapshot.
	Index int
}

func (e *SubscriberError) Error() string {
	return fmt.Sprintf("jsbridge: %q subscriber %d: %v", e.EventName, e.Index, e.Err)
}

func (e *SubscriberError) Unwrap() error {
	return e.Err
}

// PanicError wraps a value recovered from a panicking subscriber.
type PanicError struct {
	Value any
}

func (e PanicError) Error() string {
	return fmt.Sprintf("panic: %v", e.Value)
}

// Unwrap returns the panic value, if it is an error.
func (e PanicError) Unwrap() error {
	if err, ok := e.Value.(error); ok {
		return err
	}
	return nil
}
