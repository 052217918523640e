// Copyright 2026 Joseph Cumines
//
// Permission to use, copy, modify, and distribute this software for any
// purpose with or without fee is hereby granted, provided that this copyright
// notice appears in all copies.

package jsbridge

// Handle is an opaque reference to an object living in the host environment.
//
// Handles are minted by a [Host] implementation, and are only meaningful to
// the host that minted them. The HandleID is stable for the lifetime of the
// underlying host object, within a single host.
type Handle interface {
	HandleID() uint64
}

// Object is an optional capability of a [Handle], allowing property reads
// against the underlying host object.
//
// Event payloads delivered by the hosts in this module implement Object,
// exposing at least "type" (string) and "target" (Object).
type Object interface {
	Handle

	// GetString returns the named property, converted to a string.
	GetString(name string) (string, error)

	// GetObject returns the named property as an Object, or nil if the
	// property is null or undefined.
	GetObject(name string) (Object, error)
}

// Dispatcher is the single callback a [Bridge] registers with its [Host].
// The host calls it, on the host thread, each time the event fires.
//
// A Dispatcher never panics and never reports failure to the host.
type Dispatcher func(event Handle)

// Host is the event registration API of a host environment.
//
// Register must return a listener handle that, passed to Unregister with
// the same target and event name, removes exactly that registration.
// Unregister should return [ErrListenerNotFound] (possibly wrapped) if the
// listener handle does not identify a live registration.
type Host interface {
	Register(target Handle, eventName string, dispatcher Dispatcher) (listener Handle, err error)
	Unregister(target Handle, eventName string, listener Handle) error
}

// EventTrigger fires an event on a host object. It is never called by
// [Bridge], and exists to simulate host-side events.
type EventTrigger interface {
	Trigger(target Handle, eventName string) error
}

// DOM is a [Host] that also supports locating elements by id, and firing
// events on them. It is the host contract used by [Document] and [Element].
type DOM interface {
	Host
	EventTrigger
	GetElementByID(id string) (Handle, error)
}
