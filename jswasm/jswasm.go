// Copyright 2026 Joseph Cumines
//
// Permission to use, copy, modify, and distribute this software for any
// purpose with or without fee is hereby granted, provided that this copyright
// notice appears in all copies.

//go:build js && wasm

package jswasm

import (
	"fmt"
	"syscall/js"

	"github.com/joeycumines/go-jsbridge"
	"github.com/joeycumines/logiface"
)

var (
	// compile time assertions

	_ jsbridge.DOM    = (*Host)(nil)
	_ jsbridge.Object = (*Object)(nil)
	_ jsbridge.Handle = (*Listener)(nil)
)

// Host implements [jsbridge.DOM] against the browser document, using
// syscall/js.
//
// Thread Safety:
// Host must only be used from the goroutine handling JavaScript callbacks.
// Dispatchers run synchronously, inside the browser's event dispatch.
type Host struct {
	logger    *logiface.Logger[logiface.Event]
	document  js.Value
	reflect   js.Value
	eventCtor js.Value
	idKey     js.Value
	listeners map[uint64]*Listener
	nextID    uint64
}

// Object is a handle to a JavaScript object.
type Object struct {
	host  *Host
	value js.Value
	id    uint64
}

// Listener is the handle returned by [Host.Register]. It owns the js.Func
// passed to addEventListener, which is released on unregistration.
type Listener struct {
	target    *Object
	eventName string
	fn        js.Func
	id        uint64
}

// New returns a Host for the global document.
func New(opts ...Option) (*Host, error) {
	cfg, err := resolveOptions(opts)
	if err != nil {
		return nil, err
	}
	global := js.Global()
	document := global.Get("document")
	if !isObject(document) {
		return nil, fmt.Errorf("jswasm: document is not available")
	}
	return &Host{
		logger:    cfg.logger,
		document:  document,
		reflect:   global.Get("Reflect"),
		eventCtor: global.Get("Event"),
		idKey:     global.Get("Symbol").Invoke("jsbridge.handle"),
		listeners: make(map[uint64]*Listener),
	}, nil
}

// Wrap returns a handle for a JavaScript object. Handles to the same object
// share the same HandleID.
func (h *Host) Wrap(value js.Value) *Object {
	if !isObject(value) {
		return nil
	}
	if v := h.reflect.Call("get", value, h.idKey); v.Type() == js.TypeNumber {
		return &Object{host: h, value: value, id: uint64(v.Int())}
	}
	h.nextID++
	id := h.nextID
	h.reflect.Call("defineProperty", value, h.idKey, map[string]any{
		"value":        id,
		"enumerable":   false,
		"writable":     false,
		"configurable": false,
	})
	return &Object{host: h, value: value, id: id}
}

// GetElementByID implements [jsbridge.DOM].
func (h *Host) GetElementByID(id string) (jsbridge.Handle, error) {
	v := h.document.Call("getElementById", id)
	if !isObject(v) {
		return nil, fmt.Errorf("%w: %q", jsbridge.ErrElementNotFound, id)
	}
	return h.Wrap(v), nil
}

// Register implements [jsbridge.Host].
func (h *Host) Register(target jsbridge.Handle, eventName string, dispatcher jsbridge.Dispatcher) (jsbridge.Handle, error) {
	el, err := h.object(target)
	if err != nil {
		return nil, err
	}
	if dispatcher == nil {
		return nil, fmt.Errorf("jswasm: dispatcher cannot be nil")
	}

	h.nextID++
	l := &Listener{
		target:    el,
		eventName: eventName,
		id:        h.nextID,
	}
	l.fn = js.FuncOf(func(this js.Value, args []js.Value) any {
		var event jsbridge.Handle
		if len(args) != 0 {
			if obj := h.Wrap(args[0]); obj != nil {
				event = obj
			}
		}
		dispatcher(event)
		return nil
	})

	el.value.Call("addEventListener", eventName, l.fn)
	h.listeners[l.id] = l

	h.logger.Debug().
		Uint64(`target`, el.id).
		Str(`event`, eventName).
		Uint64(`listener`, l.id).
		Log(`addEventListener`)

	return l, nil
}

// Unregister implements [jsbridge.Host]. The browser's removeEventListener
// ignores unknown listeners, so registrations are tracked, and a handle that
// does not match a live registration for target and eventName fails with
// [jsbridge.ErrListenerNotFound].
func (h *Host) Unregister(target jsbridge.Handle, eventName string, listener jsbridge.Handle) error {
	el, err := h.object(target)
	if err != nil {
		return err
	}
	l, ok := listener.(*Listener)
	if !ok || l == nil || h.listeners[l.id] != l {
		return fmt.Errorf("%w: %T for %q", jsbridge.ErrListenerNotFound, listener, eventName)
	}
	if l.target.id != el.id || l.eventName != eventName {
		return fmt.Errorf("%w: listener %d is not registered for %q on %d", jsbridge.ErrListenerNotFound, l.id, eventName, el.id)
	}

	el.value.Call("removeEventListener", eventName, l.fn)
	delete(h.listeners, l.id)
	l.fn.Release()

	h.logger.Debug().
		Uint64(`target`, el.id).
		Str(`event`, eventName).
		Uint64(`listener`, l.id).
		Log(`removeEventListener`)

	return nil
}

// Trigger implements [jsbridge.EventTrigger], dispatching a new Event.
func (h *Host) Trigger(target jsbridge.Handle, eventName string) error {
	el, err := h.object(target)
	if err != nil {
		return err
	}
	el.value.Call("dispatchEvent", h.eventCtor.New(eventName))
	return nil
}

// ListenerCount returns the number of listeners this host has registered,
// and not yet unregistered.
func (h *Host) ListenerCount() int {
	return len(h.listeners)
}

func (h *Host) object(handle jsbridge.Handle) (*Object, error) {
	obj, ok := handle.(*Object)
	if !ok || obj == nil || obj.host != h {
		return nil, fmt.Errorf("%w: %T", jsbridge.ErrForeignHandle, handle)
	}
	return obj, nil
}

func isObject(v js.Value) bool {
	switch v.Type() {
	case js.TypeObject, js.TypeFunction:
		return true
	default:
		return false
	}
}

// HandleID implements [jsbridge.Handle].
func (x *Object) HandleID() uint64 { return x.id }

// Value returns the underlying JavaScript value.
func (x *Object) Value() js.Value { return x.value }

// GetString implements [jsbridge.Object].
func (x *Object) GetString(name string) (string, error) {
	v := x.value.Get(name)
	switch v.Type() {
	case js.TypeUndefined, js.TypeNull:
		return "", fmt.Errorf("jswasm: property %q is not set", name)
	case js.TypeString:
		return v.String(), nil
	default:
		return js.Global().Get("String").Invoke(v).String(), nil
	}
}

// GetObject implements [jsbridge.Object].
func (x *Object) GetObject(name string) (jsbridge.Object, error) {
	v := x.value.Get(name)
	switch v.Type() {
	case js.TypeUndefined, js.TypeNull:
		return nil, nil
	}
	if !isObject(v) {
		return nil, fmt.Errorf("jswasm: property %q is not an object", name)
	}
	return x.host.Wrap(v), nil
}

// HandleID implements [jsbridge.Handle].
func (x *Listener) HandleID() uint64 { return x.id }
