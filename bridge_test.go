package jsbridge

import (
	"bytes"
	"errors"
	"math/rand"
	"strings"
	"testing"

	"github.com/joeycumines/logiface"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type owner struct{ name string }

const testTarget = fakeHandle(7)

func newTestBridge(t *testing.T, host Host, opts ...BridgeOption) (*Bridge[*owner], *owner) {
	t.Helper()
	o := &owner{name: "btn3"}
	b, err := NewBridge(host, testTarget, "click", o, opts...)
	require.NoError(t, err)
	return b, o
}

// checkInvariant asserts the listener handle is held iff there are subscribers.
func checkInvariant[S any](t *testing.T, b *Bridge[S]) {
	t.Helper()
	if (b.listener != nil) != (len(b.subscribers) != 0) {
		t.Fatalf("invariant violated: listener=%v subscribers=%d", b.listener, len(b.subscribers))
	}
	if b.Registered() != (b.listener != nil) {
		t.Fatalf("Registered()=%v but listener=%v", b.Registered(), b.listener)
	}
}

func TestNewBridge_Validation(t *testing.T) {
	host := newFakeHost()
	if _, err := NewBridge[*owner](nil, testTarget, "click", nil); err == nil {
		t.Error("expected error for nil host")
	}
	if _, err := NewBridge[*owner](host, nil, "click", nil); err == nil {
		t.Error("expected error for nil target")
	}
	if _, err := NewBridge[*owner](host, testTarget, "", nil); err == nil {
		t.Error("expected error for empty event name")
	}
	b, err := NewBridge[*owner](host, testTarget, "click", nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "click", b.EventName())
	assert.Equal(t, Handle(testTarget), b.Target())
	assert.False(t, b.Registered())
	assert.Zero(t, host.registers, "construction must not register")
}

func TestBridge_Scenario(t *testing.T) {
	host := newFakeHost()
	b, o := newTestBridge(t, host)

	type call struct {
		name    string
		sender  *owner
		payload Handle
	}
	var calls []call
	record := func(name string) *Listener[*owner] {
		return NewListener(func(sender *owner, event Handle) error {
			calls = append(calls, call{name, sender, event})
			return nil
		})
	}
	a, bl := record("A"), record("B")

	require.NoError(t, b.Subscribe(a))
	checkInvariant(t, b)
	require.NoError(t, b.Subscribe(bl))
	checkInvariant(t, b)
	assert.Equal(t, 1, host.registers)

	p := fakeHandle(1001)
	require.NoError(t, host.fire(testTarget, "click", p))
	assert.Equal(t, []call{{"A", o, p}, {"B", o, p}}, calls)

	calls = nil
	require.NoError(t, b.Unsubscribe(a))
	checkInvariant(t, b)
	q := fakeHandle(1002)
	require.NoError(t, host.fire(testTarget, "click", q))
	assert.Equal(t, []call{{"B", o, q}}, calls)

	calls = nil
	require.NoError(t, b.Unsubscribe(bl))
	checkInvariant(t, b)
	assert.False(t, b.Registered())
	assert.Equal(t, 1, host.unregisters)
	assert.Zero(t, host.live(testTarget, "click"))
	require.NoError(t, host.Trigger(testTarget, "click"))
	assert.Empty(t, calls)
}

func TestBridge_DuplicateSubscription(t *testing.T) {
	host := newFakeHost()
	b, _ := newTestBridge(t, host)

	var n int
	a := NewListener(func(*owner, Handle) error { n++; return nil })
	require.NoError(t, b.Subscribe(a))
	require.NoError(t, b.Subscribe(a))
	assert.Equal(t, 1, host.registers, "only the first subscribe registers")
	assert.Equal(t, 2, b.Len())

	require.NoError(t, host.Trigger(testTarget, "click"))
	assert.Equal(t, 2, n)

	// removes one of the two
	require.NoError(t, b.Unsubscribe(a))
	assert.True(t, b.Registered())
	n = 0
	require.NoError(t, host.Trigger(testTarget, "click"))
	assert.Equal(t, 1, n)

	require.NoError(t, b.Unsubscribe(a))
	assert.False(t, b.Registered())
	assert.Equal(t, 1, host.unregisters)
}

func TestBridge_UnsubscribeUnknown(t *testing.T) {
	host := newFakeHost()
	b, _ := newTestBridge(t, host)

	unknown := NewListener(func(*owner, Handle) error { return nil })

	// empty
	require.NoError(t, b.Unsubscribe(unknown))
	require.NoError(t, b.Unsubscribe(nil))
	checkInvariant(t, b)
	assert.Zero(t, host.unregisters)

	a := NewListener(func(*owner, Handle) error { return nil })
	require.NoError(t, b.Subscribe(a))
	listener := b.listener

	require.NoError(t, b.Unsubscribe(unknown))
	checkInvariant(t, b)
	assert.Equal(t, 1, b.Len())
	assert.Equal(t, listener, b.listener)
	assert.Zero(t, host.unregisters)
}

func TestBridge_RemoveSelfDuringDispatch(t *testing.T) {
	host := newFakeHost()
	b, _ := newTestBridge(t, host)

	var order []string
	var self *Listener[*owner]
	first := NewListener(func(*owner, Handle) error { order = append(order, "first"); return nil })
	self = NewListener(func(*owner, Handle) error {
		order = append(order, "self")
		return b.Unsubscribe(self)
	})
	last := NewListener(func(*owner, Handle) error { order = append(order, "last"); return nil })

	for _, l := range []*Listener[*owner]{first, self, last} {
		require.NoError(t, b.Subscribe(l))
	}

	require.NoError(t, host.Trigger(testTarget, "click"))
	assert.Equal(t, []string{"first", "self", "last"}, order)
	checkInvariant(t, b)

	order = nil
	require.NoError(t, host.Trigger(testTarget, "click"))
	assert.Equal(t, []string{"first", "last"}, order)
}

func TestBridge_SubscribeDuringDispatch(t *testing.T) {
	host := newFakeHost()
	b, _ := newTestBridge(t, host)

	var order []string
	late := NewListener(func(*owner, Handle) error { order = append(order, "late"); return nil })
	adder := NewListener(func(*owner, Handle) error {
		order = append(order, "adder")
		return b.Subscribe(late)
	})
	require.NoError(t, b.Subscribe(adder))

	require.NoError(t, host.Trigger(testTarget, "click"))
	assert.Equal(t, []string{"adder"}, order)

	order = nil
	require.NoError(t, host.Trigger(testTarget, "click"))
	assert.Equal(t, []string{"adder", "late"}, order)
	assert.Equal(t, 3, b.Len())
}

func TestBridge_RemoveAllThenResubscribeDuringDispatch(t *testing.T) {
	host := newFakeHost()
	b, _ := newTestBridge(t, host)

	var order []string
	var a, c *Listener[*owner]
	a = NewListener(func(*owner, Handle) error {
		order = append(order, "a")
		if err := b.Unsubscribe(a); err != nil {
			return err
		}
		if err := b.Unsubscribe(c); err != nil {
			return err
		}
		return b.Subscribe(c)
	})
	c = NewListener(func(*owner, Handle) error { order = append(order, "c"); return nil })
	require.NoError(t, b.Subscribe(a))
	require.NoError(t, b.Subscribe(c))

	require.NoError(t, host.Trigger(testTarget, "click"))
	assert.Equal(t, []string{"a", "c"}, order)
	assert.Equal(t, 2, host.registers)
	assert.Equal(t, 1, host.unregisters)
	assert.Equal(t, 1, host.live(testTarget, "click"))
	checkInvariant(t, b)

	order = nil
	require.NoError(t, host.Trigger(testTarget, "click"))
	assert.Equal(t, []string{"c"}, order)
}

func TestBridge_SubscriberFailureIsolated(t *testing.T) {
	host := newFakeHost()
	var buf bytes.Buffer
	var reported []error
	b, _ := newTestBridge(t, host,
		WithLogger(NewLogger(&buf, logiface.LevelDebug)),
		WithErrorHandler(func(err error) { reported = append(reported, err) }),
	)

	boom := errors.New("boom")
	var ran []string
	require.NoError(t, b.Subscribe(NewListener(func(*owner, Handle) error { ran = append(ran, "1"); return boom })))
	require.NoError(t, b.Subscribe(NewListener(func(*owner, Handle) error { ran = append(ran, "2"); panic("kaboom") })))
	require.NoError(t, b.Subscribe(NewListener(func(*owner, Handle) error { ran = append(ran, "3"); return nil })))

	assert.NotPanics(t, func() {
		_ = host.Trigger(testTarget, "click")
	})
	assert.Equal(t, []string{"1", "2", "3"}, ran)

	require.Len(t, reported, 2)

	var se *SubscriberError
	require.ErrorAs(t, reported[0], &se)
	assert.Equal(t, 0, se.Index)
	assert.Equal(t, "click", se.EventName)
	assert.ErrorIs(t, reported[0], boom)

	require.ErrorAs(t, reported[1], &se)
	assert.Equal(t, 1, se.Index)
	var pe PanicError
	require.ErrorAs(t, reported[1], &pe)
	assert.Equal(t, "kaboom", pe.Value)

	out := buf.String()
	assert.Contains(t, out, `"msg":"subscriber failed"`)
	assert.Contains(t, out, `boom`)
	assert.Contains(t, out, `kaboom`)
}

func TestBridge_PanickingErrorHandler(t *testing.T) {
	host := newFakeHost()
	var ran int
	b, _ := newTestBridge(t, host, WithErrorHandler(func(error) { panic("handler") }))
	require.NoError(t, b.Subscribe(NewListener(func(*owner, Handle) error { ran++; return errors.New("x") })))
	require.NoError(t, b.Subscribe(NewListener(func(*owner, Handle) error { ran++; return nil })))
	assert.NotPanics(t, func() { _ = host.Trigger(testTarget, "click") })
	assert.Equal(t, 2, ran)
}

func TestBridge_RegistrationFailureRollsBack(t *testing.T) {
	host := newFakeHost()
	var buf bytes.Buffer
	b, _ := newTestBridge(t, host, WithLogger(NewLogger(&buf, logiface.LevelInformational)))

	hostErr := errors.New("addEventListener exploded")
	host.registerErr = hostErr

	a := NewListener(func(*owner, Handle) error { return nil })
	err := b.Subscribe(a)
	var re *RegistrationError
	require.ErrorAs(t, err, &re)
	assert.ErrorIs(t, err, hostErr)
	assert.Equal(t, "click", re.EventName)
	assert.Zero(t, b.Len())
	checkInvariant(t, b)
	assert.Contains(t, buf.String(), `host listener registration failed`)

	host.registerErr = nil
	require.NoError(t, b.Subscribe(a))
	checkInvariant(t, b)
	assert.Equal(t, 1, b.Len())
	assert.Equal(t, 1, host.live(testTarget, "click"))
}

type nilListenerHost struct{ fakeHost }

func (h *nilListenerHost) Register(Handle, string, Dispatcher) (Handle, error) {
	return nil, nil
}

func TestBridge_RegistrationNilHandle(t *testing.T) {
	b, _ := newTestBridge(t, &nilListenerHost{})
	err := b.Subscribe(NewListener(func(*owner, Handle) error { return nil }))
	var re *RegistrationError
	require.ErrorAs(t, err, &re)
	checkInvariant(t, b)
}

func TestBridge_UnregistrationFailure(t *testing.T) {
	host := newFakeHost()
	var buf bytes.Buffer
	b, _ := newTestBridge(t, host, WithLogger(NewLogger(&buf, logiface.LevelWarning)))

	a, err := b.SubscribeFunc(func(*owner, Handle) error { return nil })
	require.NoError(t, err)

	host.unregisterErr = ErrListenerNotFound
	err = b.Unsubscribe(a)
	var ue *UnregistrationError
	require.ErrorAs(t, err, &ue)
	assert.ErrorIs(t, err, ErrListenerNotFound)
	checkInvariant(t, b)
	assert.False(t, b.Registered())
	assert.True(t, strings.Contains(buf.String(), `"lvl":"warning"`), buf.String())
}

func TestBridge_StaleDispatcherIgnored(t *testing.T) {
	host := newFakeHost()
	b, _ := newTestBridge(t, host)

	var n int
	a, err := b.SubscribeFunc(func(*owner, Handle) error { n++; return nil })
	require.NoError(t, err)
	stale := host.registrations[0].dispatcher

	// the host fails to remove it, so it may still fire
	host.unregisterErr = errors.New("nope")
	_ = b.Unsubscribe(a)
	host.unregisterErr = nil

	stale(fakeHandle(1))
	assert.Zero(t, n)

	// a new registration does not revive the old dispatcher
	require.NoError(t, b.Subscribe(a))
	stale(fakeHandle(1))
	assert.Zero(t, n)
	host.registrations[len(host.registrations)-1].dispatcher(fakeHandle(1))
	assert.Equal(t, 1, n)
}

func TestBridge_Close(t *testing.T) {
	host := newFakeHost()
	b, _ := newTestBridge(t, host)

	a, err := b.SubscribeFunc(func(*owner, Handle) error { return nil })
	require.NoError(t, err)
	_, err = b.SubscribeFunc(func(*owner, Handle) error { return nil })
	require.NoError(t, err)

	require.NoError(t, b.Close())
	checkInvariant(t, b)
	assert.Equal(t, 1, host.unregisters)
	assert.Zero(t, host.live(testTarget, "click"))

	require.NoError(t, b.Close())
	assert.Equal(t, 1, host.unregisters, "release exactly once")

	assert.ErrorIs(t, b.Subscribe(a), ErrClosed)
	_, err = b.SubscribeFunc(func(*owner, Handle) error { return nil })
	assert.ErrorIs(t, err, ErrClosed)
	assert.NoError(t, b.Unsubscribe(a))
	assert.Equal(t, 1, host.unregisters)
}

func TestBridge_CloseUnregistered(t *testing.T) {
	host := newFakeHost()
	b, _ := newTestBridge(t, host)
	require.NoError(t, b.Close())
	assert.Zero(t, host.unregisters)
}

func TestBridge_NilListener(t *testing.T) {
	b, _ := newTestBridge(t, newFakeHost())
	assert.ErrorIs(t, b.Subscribe(nil), ErrNilListener)
	assert.ErrorIs(t, b.Subscribe(&Listener[*owner]{}), ErrNilListener)
	_, err := b.SubscribeFunc(nil)
	assert.ErrorIs(t, err, ErrNilListener)
	checkInvariant(t, b)
}

// TestBridge_RandomOperations checks the registration invariant, and the
// host registration count, over random subscribe / unsubscribe sequences.
func TestBridge_RandomOperations(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	host := newFakeHost()
	b, _ := newTestBridge(t, host)

	pool := make([]*Listener[*owner], 4)
	for i := range pool {
		pool[i] = NewListener(func(*owner, Handle) error { return nil })
	}

	for i := 0; i < 2000; i++ {
		l := pool[rng.Intn(len(pool))]
		if rng.Intn(2) == 0 {
			require.NoError(t, b.Subscribe(l))
		} else {
			require.NoError(t, b.Unsubscribe(l))
		}
		checkInvariant(t, b)
		want := 0
		if b.Registered() {
			want = 1
		}
		assert.Equal(t, want, host.live(testTarget, "click"))
		if host.registers-host.unregisters != host.live(testTarget, "click") {
			t.Fatalf("registers=%d unregisters=%d live=%d", host.registers, host.unregisters, host.live(testTarget, "click"))
		}
	}
}
