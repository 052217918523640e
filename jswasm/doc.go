// Package jswasm implements a [jsbridge] host for GOOS=js GOARCH=wasm,
// registering listeners on the browser document via syscall/js.
//
// Each registration holds one js.Func, released when the listener is
// unregistered. Used with [jsbridge.Bridge], an element therefore holds at
// most one js.Func per event name, however many Go subscribers it has.
//
//	host, err := jswasm.New()
//	if err != nil {
//		panic(err)
//	}
//	doc, _ := jsbridge.NewDocument(host)
//	button, err := doc.GetElementByID("btn3")
//	if err != nil {
//		panic(err)
//	}
//	l, _ := button.OnClick().SubscribeFunc(func(sender *jsbridge.Element, e jsbridge.Handle) error {
//		return nil
//	})
//	defer button.OnClick().Unsubscribe(l)
//
// [jsbridge]: github.com/joeycumines/go-jsbridge
package jswasm
