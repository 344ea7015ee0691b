// Package client runs a participant's local simulation: it samples input,
// resolves the avatar's movement against the layout, tracks the other
// participants reported by the server, and sends throttled position updates.
package client

import (
	"math/rand"
	"sort"

	"github.com/google/uuid"

	"gatherspace/layout"
	"gatherspace/movement"
	"gatherspace/protocol"
)

// EmitThreshold is how far the avatar must move from the last sent position
// before a new movePlayer is sent.
const EmitThreshold = 5.0

var Colors = []string{
	"#3b82f6", // blue
	"#ef4444", // red
	"#10b981", // green
	"#f59e0b", // yellow
	"#8b5cf6", // purple
	"#ec4899", // pink
	"#06b6d4", // cyan
	"#84cc16", // lime
}

// NewPlayer creates the local avatar with a fresh id and a random colour,
// standing in the middle of the layout.
func NewPlayer(name string, l *layout.SpaceLayout, rng *rand.Rand) protocol.Player {
	return protocol.Player{
		ID:    uuid.NewString(),
		Name:  name,
		X:     l.Width / 2,
		Y:     l.Height / 2,
		Color: Colors[rng.Intn(len(Colors))],
	}
}

// Intent is the set of movement directions held during a tick.
type Intent struct {
	Up, Down, Left, Right bool
}

// State is everything the local simulation carries from one tick to the next.
type State struct {
	Local     protocol.Player
	Remote    map[string]protocol.Player
	Nearby    []layout.InteractableArea
	Connected bool

	lastSentX, lastSentY float64
}

func NewState(local protocol.Player) *State {
	return &State{Local: local, Remote: make(map[string]protocol.Player)}
}

// Step advances the simulation by one tick. It returns the player to send when
// the avatar has moved more than EmitThreshold since the last send while
// connected, and nil otherwise.
func Step(s *State, in Intent, l *layout.SpaceLayout) *protocol.Player {
	x, y := s.Local.X, s.Local.Y
	if in.Up {
		y -= movement.PlayerSpeed
	}
	if in.Down {
		y += movement.PlayerSpeed
	}
	if in.Left {
		x -= movement.PlayerSpeed
	}
	if in.Right {
		x += movement.PlayerSpeed
	}

	s.Local.X, s.Local.Y = movement.Resolve(x, y, l.Obstacles, l.Width, l.Height)
	s.Nearby = movement.Nearby(s.Local.X, s.Local.Y, l.InteractableAreas, movement.InteractionDistance)

	if !s.Connected {
		return nil
	}
	if movement.Distance(s.Local.X, s.Local.Y, s.lastSentX, s.lastSentY) <= EmitThreshold {
		return nil
	}
	s.lastSentX, s.lastSentY = s.Local.X, s.Local.Y
	out := s.Local
	return &out
}

// Apply folds one server message into the remote roster. Messages about the
// local player are ignored.
func Apply(s *State, m protocol.Message) {
	switch m.Event {
	case protocol.EventRoomState:
		s.Remote = make(map[string]protocol.Player, len(m.Players))
		for _, p := range m.Players {
			if p.ID != s.Local.ID {
				s.Remote[p.ID] = p
			}
		}
	case protocol.EventPlayerJoined, protocol.EventPlayerMoved:
		if m.Player != nil && m.Player.ID != s.Local.ID {
			s.Remote[m.Player.ID] = *m.Player
		}
	case protocol.EventPlayerLeft:
		delete(s.Remote, m.PlayerID)
	}
}

// Frame is what the rendering layer gets each tick. It must not be mutated.
type Frame struct {
	Local     protocol.Player
	Remote    []protocol.Player
	Nearby    []layout.InteractableArea
	Layout    *layout.SpaceLayout
	Connected bool
}

func (s *State) Frame(l *layout.SpaceLayout) Frame {
	remote := make([]protocol.Player, 0, len(s.Remote))
	for _, p := range s.Remote {
		remote = append(remote, p)
	}
	sort.Slice(remote, func(i, j int) bool { return remote[i].ID < remote[j].ID })
	return Frame{
		Local:     s.Local,
		Remote:    remote,
		Nearby:    append([]layout.InteractableArea(nil), s.Nearby...),
		Layout:    l,
		Connected: s.Connected,
	}
}
