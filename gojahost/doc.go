// Package gojahost implements a [jsbridge] host on the [goja] JavaScript
// runtime.
//
// [New] installs an events shim into the runtime: a minimal document
// (getElementById, createElement), elements supporting addEventListener /
// removeEventListener / dispatchEvent / click, and the EventsShim global, the
// JavaScript half of the interop. Registration follows the usual recipe: the
// Go callback is wrapped in a JavaScript function, and the wrapper is
// returned, so it can later be passed to removeEventListener.
//
// # Usage
//
//	rt := goja.New()
//	host, _ := gojahost.New(rt)
//	_, _ = host.CreateElement("button", "btn3")
//
//	doc, _ := jsbridge.NewDocument(host)
//	el, _ := doc.GetElementByID("btn3")
//	_, _ = el.OnClick().SubscribeFunc(func(sender *jsbridge.Element, e jsbridge.Handle) error {
//	    return nil
//	})
//
//	_, _ = host.RunString(`document.getElementById("btn3").click()`)
//
// The runtime is not goroutine safe. To use it alongside timers and
// promises, drive it from a go-eventloop loop, via Loop.Submit.
//
// [jsbridge]: github.com/joeycumines/go-jsbridge
// [goja]: github.com/dop251/goja
package gojahost
