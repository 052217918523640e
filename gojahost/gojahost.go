// Copyright 2026 Joseph Cumines
//
// Permission to use, copy, modify, and distribute this software for any
// purpose with or without fee is hereby granted, provided that this copyright
// notice appears in all copies.

package gojahost

import (
	_ "embed"
	"errors"
	"fmt"
	"strconv"

	"github.com/dop251/goja"
	"github.com/joeycumines/go-jsbridge"
	"github.com/joeycumines/logiface"
)

//go:embed shim.js
var shimSource string

var (
	// compile time assertions

	_ jsbridge.DOM    = (*Host)(nil)
	_ jsbridge.Object = (*Object)(nil)
)

// Host implements [jsbridge.DOM] on a goja runtime, via the EventsShim
// global installed by [New].
//
// Thread Safety:
// Like the goja runtime, Host is NOT safe for concurrent use. It should only
// be accessed from the goroutine that owns the runtime.
type Host struct {
	runtime *goja.Runtime
	logger  *logiface.Logger[logiface.Event]
	idKey   *goja.Symbol
	shim    shimFuncs
	nextID  uint64
}

type shimFuncs struct {
	getElementByID       goja.Callable
	createElement        goja.Callable
	subscribeEvent       goja.Callable
	unsubscribeEvent     goja.Callable
	subscribeEventByID   goja.Callable
	unsubscribeEventByID goja.Callable
	trigger              goja.Callable
	triggerClick         goja.Callable
}

// Object is a handle to a JavaScript object. Handles to the same object
// share the same HandleID.
type Object struct {
	host *Host
	obj  *goja.Object
	id   uint64
}

// New installs the events shim (globals EventsShim, document and Event) into
// runtime, and returns a Host using it.
func New(runtime *goja.Runtime, opts ...Option) (*Host, error) {
	if runtime == nil {
		return nil, fmt.Errorf("gojahost: runtime cannot be nil")
	}

	cfg, err := resolveOptions(opts)
	if err != nil {
		return nil, err
	}

	if _, err := runtime.RunScript("events_shim.js", shimSource); err != nil {
		return nil, fmt.Errorf("gojahost: failed to install shim: %w", err)
	}

	shimValue := runtime.Get("EventsShim")
	if shimValue == nil || goja.IsUndefined(shimValue) || goja.IsNull(shimValue) {
		return nil, fmt.Errorf("gojahost: EventsShim global missing")
	}
	shim := shimValue.ToObject(runtime)

	h := &Host{
		runtime: runtime,
		logger:  cfg.logger,
		idKey:   goja.NewSymbol("jsbridge.handle"),
	}

	for name, dst := range map[string]*goja.Callable{
		"GetElementById":       &h.shim.getElementByID,
		"CreateElement":        &h.shim.createElement,
		"SubscribeEvent":       &h.shim.subscribeEvent,
		"UnsubscribeEvent":     &h.shim.unsubscribeEvent,
		"SubscribeEventById":   &h.shim.subscribeEventByID,
		"UnsubscribeEventById": &h.shim.unsubscribeEventByID,
		"Trigger":              &h.shim.trigger,
		"TriggerClick":         &h.shim.triggerClick,
	} {
		fn, ok := goja.AssertFunction(shim.Get(name))
		if !ok {
			return nil, fmt.Errorf("gojahost: EventsShim.%s is not a function", name)
		}
		*dst = fn
	}

	return h, nil
}

// Runtime returns the goja runtime.
func (h *Host) Runtime() *goja.Runtime {
	return h.runtime
}

// RunString evaluates JavaScript source in the runtime.
func (h *Host) RunString(src string) (goja.Value, error) {
	return h.runtime.RunString(src)
}

// Wrap returns a handle for a JavaScript object, from this runtime.
func (h *Host) Wrap(obj *goja.Object) *Object {
	if obj == nil {
		return nil
	}
	if v := obj.GetSymbol(h.idKey); v != nil && !goja.IsUndefined(v) {
		return &Object{host: h, obj: obj, id: uint64(v.ToInteger())}
	}
	h.nextID++
	id := h.nextID
	// frozen objects get a fresh id per wrap
	_ = obj.DefineDataPropertySymbol(h.idKey, h.runtime.ToValue(int64(id)), goja.FLAG_FALSE, goja.FLAG_FALSE, goja.FLAG_FALSE)
	return &Object{host: h, obj: obj, id: id}
}

// CreateElement adds an element to the shim document.
func (h *Host) CreateElement(tagName, id string) (*Object, error) {
	v, err := h.shim.createElement(goja.Undefined(), h.runtime.ToValue(tagName), h.runtime.ToValue(id))
	if err != nil {
		return nil, fmt.Errorf("gojahost: CreateElement: %w", err)
	}
	return h.toObject(v, "CreateElement")
}

// GetElementByID implements [jsbridge.DOM].
func (h *Host) GetElementByID(id string) (jsbridge.Handle, error) {
	v, err := h.shim.getElementByID(goja.Undefined(), h.runtime.ToValue(id))
	if err != nil {
		return nil, fmt.Errorf("gojahost: GetElementById: %w", err)
	}
	if isNullish(v) {
		return nil, fmt.Errorf("%w: %q", jsbridge.ErrElementNotFound, id)
	}
	return h.toObject(v, "GetElementById")
}

// Register implements [jsbridge.Host]. The dispatcher is exposed to
// JavaScript as a function, wrapped by EventsShim.SubscribeEvent. The
// returned handle refers to the wrapper.
func (h *Host) Register(target jsbridge.Handle, eventName string, dispatcher jsbridge.Dispatcher) (jsbridge.Handle, error) {
	el, err := h.object(target)
	if err != nil {
		return nil, err
	}
	if dispatcher == nil {
		return nil, fmt.Errorf("gojahost: dispatcher cannot be nil")
	}

	listenerFunc := h.runtime.ToValue(func(call goja.FunctionCall) goja.Value {
		var event jsbridge.Handle
		if obj, ok := call.Argument(0).(*goja.Object); ok {
			event = h.Wrap(obj)
		}
		dispatcher(event)
		return goja.Undefined()
	})

	v, err := h.shim.subscribeEvent(goja.Undefined(), el.obj, h.runtime.ToValue(eventName), listenerFunc)
	if err != nil {
		return nil, fmt.Errorf("gojahost: SubscribeEvent: %w", err)
	}
	listener, err := h.toObject(v, "SubscribeEvent")
	if err != nil {
		return nil, err
	}

	h.logger.Debug().
		Uint64(`target`, el.id).
		Str(`event`, eventName).
		Uint64(`listener`, listener.id).
		Log(`SubscribeEvent`)

	return listener, nil
}

// Unregister implements [jsbridge.Host]. If the handle is not a registered
// listener, the removal fails with [jsbridge.ErrListenerNotFound], rather
// than silently doing nothing.
func (h *Host) Unregister(target jsbridge.Handle, eventName string, listener jsbridge.Handle) error {
	el, err := h.object(target)
	if err != nil {
		return err
	}
	l, err := h.object(listener)
	if err != nil {
		return err
	}

	v, err := h.shim.unsubscribeEvent(goja.Undefined(), el.obj, h.runtime.ToValue(eventName), l.obj)
	if err != nil {
		return fmt.Errorf("gojahost: UnsubscribeEvent: %w", err)
	}
	if !v.ToBoolean() {
		return fmt.Errorf("%w: listener %d for %q on %d", jsbridge.ErrListenerNotFound, l.id, eventName, el.id)
	}

	h.logger.Debug().
		Uint64(`target`, el.id).
		Str(`event`, eventName).
		Uint64(`listener`, l.id).
		Log(`UnsubscribeEvent`)

	return nil
}

// Trigger implements [jsbridge.EventTrigger].
func (h *Host) Trigger(target jsbridge.Handle, eventName string) error {
	el, err := h.object(target)
	if err != nil {
		return err
	}
	if _, err := h.shim.trigger(goja.Undefined(), el.obj, h.runtime.ToValue(eventName)); err != nil {
		return fmt.Errorf("gojahost: Trigger: %w", err)
	}
	return nil
}

// TriggerClick clicks the element with the given id.
func (h *Host) TriggerClick(elementID string) error {
	if _, err := h.shim.triggerClick(goja.Undefined(), h.runtime.ToValue(elementID)); err != nil {
		return fmt.Errorf("gojahost: TriggerClick: %w", err)
	}
	return nil
}

// SubscribeByID registers fn for eventName on the element with the given id,
// with the event decomposed to primitives (the event type and the target
// id). The returned handle must be passed to UnsubscribeByID.
//
// This is a direct registration, one per call: it does not use a bridge.
func (h *Host) SubscribeByID(elementID, eventName string, fn func(eventType, targetID string)) (*Object, error) {
	if fn == nil {
		return nil, jsbridge.ErrNilListener
	}
	v, err := h.shim.subscribeEventByID(goja.Undefined(), h.runtime.ToValue(elementID), h.runtime.ToValue(eventName), h.runtime.ToValue(fn))
	if err != nil {
		return nil, fmt.Errorf("gojahost: SubscribeEventById: %w", err)
	}
	return h.toObject(v, "SubscribeEventById")
}

// UnsubscribeByID removes a listener added by SubscribeByID.
func (h *Host) UnsubscribeByID(elementID, eventName string, listener *Object) error {
	l, err := h.object(listener)
	if err != nil {
		return err
	}
	v, err := h.shim.unsubscribeEventByID(goja.Undefined(), h.runtime.ToValue(elementID), h.runtime.ToValue(eventName), l.obj)
	if err != nil {
		return fmt.Errorf("gojahost: UnsubscribeEventById: %w", err)
	}
	if !v.ToBoolean() {
		return fmt.Errorf("%w: listener %d for %q on %q", jsbridge.ErrListenerNotFound, l.id, eventName, elementID)
	}
	return nil
}

// ListenerCount returns the number of JavaScript listeners for eventName on
// target.
func (h *Host) ListenerCount(target jsbridge.Handle, eventName string) int {
	el, err := h.object(target)
	if err != nil {
		return 0
	}
	fn, ok := goja.AssertFunction(el.obj.Get("listenerCount"))
	if !ok {
		return 0
	}
	v, err := fn(el.obj, h.runtime.ToValue(eventName))
	if err != nil {
		return 0
	}
	return int(v.ToInteger())
}

// Uncaught returns the exceptions thrown by JavaScript listeners during
// dispatch, which the shim collects rather than propagating.
func (h *Host) Uncaught() []error {
	shim := h.runtime.Get("EventsShim").ToObject(h.runtime)
	list, ok := shim.Get("uncaught").(*goja.Object)
	if !ok {
		return nil
	}
	n := int(list.Get("length").ToInteger())
	errs := make([]error, 0, n)
	for i := 0; i < n; i++ {
		errs = append(errs, errors.New(list.Get(strconv.Itoa(i)).String()))
	}
	return errs
}

func (h *Host) object(handle jsbridge.Handle) (*Object, error) {
	obj, ok := handle.(*Object)
	if !ok || obj == nil || obj.host != h {
		return nil, fmt.Errorf("%w: %T", jsbridge.ErrForeignHandle, handle)
	}
	return obj, nil
}

func (h *Host) toObject(v goja.Value, op string) (*Object, error) {
	obj, ok := v.(*goja.Object)
	if !ok {
		return nil, fmt.Errorf("gojahost: %s returned %v, expected an object", op, v)
	}
	return h.Wrap(obj), nil
}

func isNullish(v goja.Value) bool {
	return v == nil || goja.IsUndefined(v) || goja.IsNull(v)
}

// HandleID implements [jsbridge.Handle].
func (x *Object) HandleID() uint64 { return x.id }

// Value returns the underlying JavaScript object.
func (x *Object) Value() *goja.Object { return x.obj }

// GetString implements [jsbridge.Object]. It fails if the property is null
// or undefined.
func (x *Object) GetString(name string) (string, error) {
	v := x.obj.Get(name)
	if isNullish(v) {
		return "", fmt.Errorf("gojahost: property %q is not set", name)
	}
	return v.String(), nil
}

// GetObject implements [jsbridge.Object].
func (x *Object) GetObject(name string) (jsbridge.Object, error) {
	v := x.obj.Get(name)
	if isNullish(v) {
		return nil, nil
	}
	obj, ok := v.(*goja.Object)
	if !ok {
		return nil, fmt.Errorf("gojahost: property %q is not an object", name)
	}
	return x.host.Wrap(obj), nil
}
