// Copyright 2026 Joseph Cumines
//
// Permission to use, copy, modify, and distribute this software for any
// purpose with or without fee is hereby granted, provided that this copyright
// notice appears in all copies.

package jsbridge

import (
	"errors"
	"fmt"

	"github.com/joeycumines/logiface"
)

var errNilListenerHandle = errors.New("host returned a nil listener handle")

// Listener is a subscriber of a [Bridge].
//
// The *Listener value is the identity used by [Bridge.Unsubscribe], since Go
// function values cannot be compared. The same *Listener may be subscribed
// more than once, in which case it is invoked once per subscription.
type Listener[S any] struct {
	fn func(sender S, event Handle) error
}

// NewListener wraps fn as a [Listener]. A returned error, or a panic, is
// reported by the bridge without interrupting the other subscribers.
func NewListener[S any](fn func(sender S, event Handle) error) *Listener[S] {
	return &Listener[S]{fn: fn}
}

// Bridge multiplexes any number of local subscribers over a single host
// event listener registration, for one (target, event name) pair.
//
// The host listener is registered on the first subscription, and released
// when the last subscriber is removed, or the bridge is closed. At all times,
// outside of calls to the host, the bridge holds a listener handle if and
// only if it has at least one subscriber.
//
// Thread Safety:
// Bridge is NOT safe for concurrent use. All methods, and all dispatch, must
// run on the host thread. Reentrant calls from within a subscriber are
// supported.
type Bridge[S any] struct {
	host        Host
	target      Handle
	sender      S
	logger      *logiface.Logger[logiface.Event]
	onError     func(err error)
	listener    Handle
	eventName   string
	subscribers []*Listener[S]
	// generation identifies the current registration, so dispatchers from
	// released registrations are inert
	generation uint64
	closed     bool
}

// NewBridge creates a Bridge for eventName on target. No host call is made
// until the first subscription.
//
// The sender is passed as the first argument to every subscriber, and is
// typically the wrapper object owning the bridge.
func NewBridge[S any](host Host, target Handle, eventName string, sender S, opts ...BridgeOption) (*Bridge[S], error) {
	if host == nil {
		return nil, fmt.Errorf("jsbridge: host cannot be nil")
	}
	if target == nil {
		return nil, fmt.Errorf("jsbridge: target cannot be nil")
	}
	if eventName == "" {
		return nil, fmt.Errorf("jsbridge: event name cannot be empty")
	}

	cfg, err := resolveBridgeOptions(opts)
	if err != nil {
		return nil, err
	}

	return &Bridge[S]{
		host:      host,
		target:    target,
		eventName: eventName,
		sender:    sender,
		logger:    cfg.logger,
		onError:   cfg.errorHandler,
	}, nil
}

// EventName returns the bridged event name.
func (b *Bridge[S]) EventName() string { return b.eventName }

// Target returns the bridged host object.
func (b *Bridge[S]) Target() Handle { return b.target }

// Len returns the number of subscriptions.
func (b *Bridge[S]) Len() int { return len(b.subscribers) }

// Registered reports whether a host listener is currently registered, which
// is true exactly when there is at least one subscriber.
func (b *Bridge[S]) Registered() bool { return len(b.subscribers) != 0 }

// Subscribe appends listener to the subscribers. The first subscriber
// causes the host listener to be registered; if that fails, the returned
// error is a [*RegistrationError], and listener is not retained.
func (b *Bridge[S]) Subscribe(listener *Listener[S]) error {
	if listener == nil || listener.fn == nil {
		return ErrNilListener
	}
	if b.closed {
		return ErrClosed
	}

	if len(b.subscribers) == 0 {
		if err := b.register(); err != nil {
			return err
		}
	}

	b.subscribers = append(b.subscribers, listener)
	return nil
}

// SubscribeFunc is a convenience wrapper of [NewListener] and
// [Bridge.Subscribe]. The returned listener is the token to unsubscribe with.
func (b *Bridge[S]) SubscribeFunc(fn func(sender S, event Handle) error) (*Listener[S], error) {
	listener := NewListener(fn)
	if err := b.Subscribe(listener); err != nil {
		return nil, err
	}
	return listener, nil
}

// Unsubscribe removes the first subscription of listener. Removing a
// listener that is not subscribed is a no-op.
//
// When the last subscriber is removed, the host listener is unregistered.
// The bridge discards its listener handle even if the host reports failure,
// in which case an [*UnregistrationError] is returned.
func (b *Bridge[S]) Unsubscribe(listener *Listener[S]) error {
	if listener == nil {
		return nil
	}

	i := b.indexOf(listener)
	if i < 0 {
		return nil
	}

	// allocate: dispatch snapshots may share the old backing array
	subscribers := make([]*Listener[S], 0, len(b.subscribers)-1)
	subscribers = append(subscribers, b.subscribers[:i]...)
	subscribers = append(subscribers, b.subscribers[i+1:]...)
	if len(subscribers) == 0 {
		subscribers = nil
	}
	b.subscribers = subscribers

	if len(b.subscribers) == 0 {
		return b.unregister()
	}
	return nil
}

// Close releases the host listener, if registered, and removes all
// subscribers. Subsequent calls to Subscribe fail with [ErrClosed]. Close is
// idempotent.
func (b *Bridge[S]) Close() error {
	if b.closed {
		return nil
	}
	b.closed = true

	if len(b.subscribers) == 0 {
		return nil
	}
	b.subscribers = nil
	return b.unregister()
}

func (b *Bridge[S]) indexOf(listener *Listener[S]) int {
	for i, v := range b.subscribers {
		if v == listener {
			return i
		}
	}
	return -1
}

func (b *Bridge[S]) register() error {
	generation := b.generation + 1

	listener, err := b.host.Register(b.target, b.eventName, func(event Handle) {
		b.dispatch(generation, event)
	})
	if err == nil && listener == nil {
		err = errNilListenerHandle
	}
	if err != nil {
		b.logger.Err().
			Err(err).
			Str(`event`, b.eventName).
			Log(`host listener registration failed`)
		return &RegistrationError{Err: err, EventName: b.eventName}
	}

	b.generation = generation
	b.listener = listener

	b.logger.Debug().
		Str(`event`, b.eventName).
		Uint64(`target`, b.target.HandleID()).
		Uint64(`listener`, listener.HandleID()).
		Log(`host listener registered`)

	return nil
}

func (b *Bridge[S]) unregister() error {
	listener := b.listener
	b.listener = nil
	// invalidate the dispatcher, the host may still hold it
	b.generation++

	if err := b.host.Unregister(b.target, b.eventName, listener); err != nil {
		b.logger.Warning().
			Err(err).
			Str(`event`, b.eventName).
			Uint64(`target`, b.target.HandleID()).
			Uint64(`listener`, listener.HandleID()).
			Log(`host listener unregistration failed`)
		return &UnregistrationError{Err: err, EventName: b.eventName}
	}

	b.logger.Debug().
		Str(`event`, b.eventName).
		Uint64(`target`, b.target.HandleID()).
		Uint64(`listener`, listener.HandleID()).
		Log(`host listener unregistered`)

	return nil
}

// dispatch is called by the host, via the registered Dispatcher.
func (b *Bridge[S]) dispatch(generation uint64, event Handle) {
	if generation != b.generation || b.listener == nil {
		return
	}

	// subscribers is never mutated in place, so this is a stable snapshot
	snapshot := b.subscribers

	for i, listener := range snapshot {
		if err := b.invoke(listener, event); err != nil {
			b.report(&SubscriberError{Err: err, EventName: b.eventName, Index: i})
		}
	}
}

func (b *Bridge[S]) invoke(listener *Listener[S], event Handle) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = PanicError{Value: r}
		}
	}()
	return listener.fn(b.sender, event)
}

func (b *Bridge[S]) report(err *SubscriberError) {
	b.logger.Err().
		Err(err.Err).
		Str(`event`, err.EventName).
		Int(`index`, err.Index).
		Log(`subscriber failed`)

	if b.onError == nil {
		return
	}

	defer func() {
		if r := recover(); r != nil {
			b.logger.Err().
				Any(`panic`, r).
				Str(`event`, err.EventName).
				Log(`error handler panicked`)
		}
	}()
	b.onError(err)
}
