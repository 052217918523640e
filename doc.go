// Package jsbridge bridges Go-side event subscribers to host (JavaScript /
// DOM) event listeners, registering at most one host listener per event.
//
// # Overview
//
// Crossing the host boundary is expensive: each host listener wraps a Go
// callback in a host function, and each registration is a host call. A
// [Bridge] presents a multi-subscriber event to Go code, while holding a
// single registration with the [Host], made when the first subscriber is
// added and released when the last is removed.
//
//	bridge, _ := jsbridge.NewBridge(host, button, "click", owner)
//
//	listener, _ := bridge.SubscribeFunc(func(owner *Owner, e jsbridge.Handle) error {
//	    fmt.Println("clicked")
//	    return nil
//	})
//
//	// ... host fires "click", the subscriber runs ...
//
//	_ = bridge.Unsubscribe(listener) // releases the host listener
//
// # Hosts
//
// The host contract is [Host] (register / unregister), optionally extended
// by [EventTrigger] and [DOM]. Implementations in this module:
//
//   - domhost: pure Go, backed by the go-eventloop EventTarget
//   - gojahost: a goja JavaScript runtime, with an embedded events shim
//   - jswasm: the browser, via syscall/js (js/wasm builds only)
//
// # Wrappers
//
// [Document] and [Element] show the intended shape of a wrapper: the
// wrapper owns one [Bridge] per event name, and is passed as the sender to
// each subscriber.
//
// # Errors
//
// A subscriber that returns an error, or panics, is reported via the
// configured logger and error handler ([WithLogger], [WithErrorHandler]).
// The remaining subscribers still run, and the host never observes the
// failure.
//
// # Thread Safety
//
// Hosts are single threaded. Everything in this package must be used from
// the host thread, e.g. the goroutine driving a goja runtime, or a
// go-eventloop loop.
package jsbridge
