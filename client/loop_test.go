package client

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"gatherspace/layout"
	"gatherspace/protocol"
)

type fakeTransport struct {
	mu      sync.Mutex
	sent    []protocol.Message
	closed  bool
	sendErr error
	recv    chan protocol.Message
}

func newFakeTransport() *fakeTransport {
	return &fakeTransport{recv: make(chan protocol.Message, 16)}
}

func (f *fakeTransport) Send(m protocol.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.sendErr != nil {
		return f.sendErr
	}
	f.sent = append(f.sent, m)
	return nil
}

func (f *fakeTransport) Receive() <-chan protocol.Message { return f.recv }

func (f *fakeTransport) Close() error {
	f.mu.Lock()
	f.closed = true
	f.mu.Unlock()
	return nil
}

func (f *fakeTransport) events() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []string
	for _, m := range f.sent {
		out = append(out, m.Event)
	}
	return out
}

func runLoop(t *testing.T, l *Loop, p protocol.Player) (cancel func(), done <-chan error) {
	t.Helper()
	ctx, cancelFn := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() { errc <- l.Run(ctx, p) }()
	return cancelFn, errc
}

func waitFrame(t *testing.T, frames <-chan Frame, cond func(Frame) bool) Frame {
	t.Helper()
	timeout := time.After(2 * time.Second)
	for {
		select {
		case f := <-frames:
			if cond(f) {
				return f
			}
		case <-timeout:
			t.Fatalf("timed out waiting for frame")
		}
	}
}

func TestLoopJoinsMovesAndLeaves(t *testing.T) {
	tr := newFakeTransport()
	frames := make(chan Frame, 256)
	listeners := &Listeners{}
	listeners.Add(func(f Frame) {
		select {
		case frames <- f:
		default:
		}
	})

	l := &Loop{
		Transport: tr,
		Layout:    layout.Default(),
		RoomID:    "default",
		Input:     InputFunc(func() Intent { return Intent{Down: true} }),
		Listeners: listeners,
		Tick:      time.Millisecond,
	}
	cancel, done := runLoop(t, l, local(400, 300))

	tr.recv <- protocol.RoomState([]protocol.Player{local(400, 300), {ID: "other", X: 10, Y: 10}})
	waitFrame(t, frames, func(f Frame) bool {
		return len(f.Remote) == 1 && f.Local.Y > 310 && f.Connected
	})

	cancel()
	if err := <-done; err != nil {
		t.Fatalf("run: %v", err)
	}

	ev := tr.events()
	if len(ev) < 3 || ev[0] != protocol.EventJoinRoom || ev[len(ev)-1] != protocol.EventLeaveRoom {
		t.Fatalf("sent events = %v, want joinRoom, movePlayer..., leaveRoom", ev)
	}
	for _, e := range ev[1 : len(ev)-1] {
		if e != protocol.EventMovePlayer {
			t.Fatalf("unexpected event %s in %v", e, ev)
		}
	}
	if !tr.closed {
		t.Fatalf("transport not closed on teardown")
	}
	if listeners.Len() != 0 {
		t.Fatalf("listeners not released on teardown")
	}
}

func TestLoopKeepsSimulatingAfterDisconnect(t *testing.T) {
	tr := newFakeTransport()
	frames := make(chan Frame, 256)
	listeners := &Listeners{}
	listeners.Add(func(f Frame) {
		select {
		case frames <- f:
		default:
		}
	})
	l := &Loop{
		Transport: tr,
		Layout:    layout.Default(),
		RoomID:    "default",
		Input:     InputFunc(func() Intent { return Intent{Left: true} }),
		Listeners: listeners,
		Tick:      time.Millisecond,
	}
	cancel, done := runLoop(t, l, local(400, 300))

	close(tr.recv)
	f := waitFrame(t, frames, func(f Frame) bool { return !f.Connected })
	sentAtDisconnect := len(tr.events())
	waitFrame(t, frames, func(g Frame) bool { return g.Local.X < f.Local.X-10 })
	if n := len(tr.events()); n != sentAtDisconnect {
		t.Fatalf("moves sent while disconnected: %d -> %d", sentAtDisconnect, n)
	}

	cancel()
	<-done
	ev := tr.events()
	if ev[len(ev)-1] == protocol.EventLeaveRoom {
		t.Fatalf("leave should not be sent over a dead connection")
	}
	if !tr.closed {
		t.Fatalf("transport not closed")
	}
}

func TestLoopJoinFailureStillTearsDown(t *testing.T) {
	tr := newFakeTransport()
	tr.sendErr = errors.New("broken pipe")
	listeners := &Listeners{}
	listeners.Add(func(Frame) {})
	l := &Loop{Transport: tr, Layout: layout.Default(), RoomID: "default", Listeners: listeners}

	if err := l.Run(context.Background(), local(400, 300)); err == nil {
		t.Fatalf("expected join error")
	}
	if !tr.closed || listeners.Len() != 0 {
		t.Fatalf("teardown skipped: closed=%v listeners=%d", tr.closed, listeners.Len())
	}
}

func TestRegistrationReleaseIsIdempotent(t *testing.T) {
	var l Listeners
	calls := 0
	reg := l.Add(func(Frame) { calls++ })
	other := l.Add(func(Frame) { calls += 10 })
	l.Emit(Frame{})
	reg.Release()
	reg.Release()
	l.Emit(Frame{})
	if calls != 21 {
		t.Fatalf("calls = %d, want 21", calls)
	}
	other.Release()
	if l.Len() != 0 {
		t.Fatalf("listeners left: %d", l.Len())
	}
}
