// Package domhost implements an in-memory DOM host for [jsbridge], where each
// element is a go-eventloop [eventloop.EventTarget].
//
// It is intended for tests, and for Go programs that want DOM-style events
// without a JavaScript engine.
//
// [jsbridge]: github.com/joeycumines/go-jsbridge
// [eventloop.EventTarget]: github.com/joeycumines/go-eventloop
package domhost
