package client

import (
	"context"
	"time"

	"go.uber.org/zap"

	"gatherspace/layout"
	"gatherspace/protocol"
)

// TicksPerSecond is the local simulation rate.
const TicksPerSecond = 60

// InputSource reports the directions held at the moment of sampling.
type InputSource interface {
	Intent() Intent
}

type InputFunc func() Intent

func (f InputFunc) Intent() Intent { return f() }

// Loop drives one participant session. A single goroutine (Run) owns the
// simulation state.
type Loop struct {
	Transport Transport
	Layout    *layout.SpaceLayout
	RoomID    string
	Input     InputSource
	Listeners *Listeners
	Log       *zap.SugaredLogger
	// Tick overrides the interval between simulation steps.
	Tick time.Duration
}

// Run joins the room as p and simulates until ctx is done. Whatever ends the
// loop, the leave notification is sent, the transport closed and the listeners
// released before local state is dropped. Losing the connection only clears the
// connected flag; the local simulation keeps running.
func (l *Loop) Run(ctx context.Context, p protocol.Player) error {
	if l.Log == nil {
		l.Log = zap.NewNop().Sugar()
	}
	if l.Listeners == nil {
		l.Listeners = &Listeners{}
	}
	tick := l.Tick
	if tick <= 0 {
		tick = time.Second / TicksPerSecond
	}

	state := NewState(p)
	defer func() {
		if state.Connected {
			if serr := l.Transport.Send(protocol.LeaveRoom(l.RoomID, state.Local.ID)); serr != nil {
				l.Log.Debugf("leave not delivered: %v", serr)
			}
		}
		if cerr := l.Transport.Close(); cerr != nil {
			l.Log.Debugf("close transport: %v", cerr)
		}
		l.Listeners.ReleaseAll()
		state = nil
		l.Log.Infof("session ended: room=%s player=%s", l.RoomID, p.ID)
	}()

	if err := l.Transport.Send(protocol.JoinRoom(l.RoomID, p)); err != nil {
		return err
	}
	state.Connected = true
	l.Log.Infof("joined room=%s as player=%s (%s)", l.RoomID, p.ID, p.Name)

	ticker := time.NewTicker(tick)
	defer ticker.Stop()

	inbound := l.Transport.Receive()
	for {
		select {
		case <-ctx.Done():
			return nil
		case m, ok := <-inbound:
			if !ok {
				state.Connected = false
				inbound = nil
				l.Log.Warnf("disconnected from server")
				continue
			}
			Apply(state, m)
		case <-ticker.C:
			var in Intent
			if l.Input != nil {
				in = l.Input.Intent()
			}
			if out := Step(state, in, l.Layout); out != nil {
				if err := l.Transport.Send(protocol.MovePlayer(*out)); err != nil {
					l.Log.Debugf("move not delivered: %v", err)
				}
			}
			l.Listeners.Emit(state.Frame(l.Layout))
		}
	}
}
