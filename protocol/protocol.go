// Package protocol defines the events exchanged between participants and the
// room server, and the codecs that put them on the wire.
package protocol

import (
	"errors"
	"math"
)

// Client to server events.
const (
	EventJoinRoom   = "joinRoom"
	EventLeaveRoom  = "leaveRoom"
	EventMovePlayer = "movePlayer"
)

// Server to client events.
const (
	EventRoomState    = "roomState"
	EventPlayerJoined = "playerJoined"
	EventPlayerLeft   = "playerLeft"
	EventPlayerMoved  = "playerMoved"
)

var ErrUnknownEvent = errors.New("unknown event")

// Player is a participant's avatar as reported by its own client.
type Player struct {
	ID    string  `json:"id" msgpack:"id"`
	Name  string  `json:"name" msgpack:"name"`
	X     float64 `json:"x" msgpack:"x"`
	Y     float64 `json:"y" msgpack:"y"`
	Color string  `json:"color" msgpack:"color"`
}

// Finite reports whether both coordinates are real numbers. JSON cannot carry
// NaN or infinities, so such a position must never reach a roster.
func (p Player) Finite() bool {
	return !math.IsNaN(p.X) && !math.IsInf(p.X, 0) && !math.IsNaN(p.Y) && !math.IsInf(p.Y, 0)
}

// Message is one frame on the connection. Which fields are set depends on Event.
type Message struct {
	Event    string   `json:"event" msgpack:"event"`
	RoomID   string   `json:"roomId,omitempty" msgpack:"roomId,omitempty"`
	PlayerID string   `json:"playerId,omitempty" msgpack:"playerId,omitempty"`
	Player   *Player  `json:"player,omitempty" msgpack:"player,omitempty"`
	Players  []Player `json:"players,omitempty" msgpack:"players,omitempty"`
}

func JoinRoom(roomID string, p Player) Message {
	return Message{Event: EventJoinRoom, RoomID: roomID, Player: &p}
}

func LeaveRoom(roomID, playerID string) Message {
	return Message{Event: EventLeaveRoom, RoomID: roomID, PlayerID: playerID}
}

func MovePlayer(p Player) Message {
	return Message{Event: EventMovePlayer, Player: &p}
}

func RoomState(players []Player) Message {
	return Message{Event: EventRoomState, Players: players}
}

func PlayerJoined(p Player) Message {
	return Message{Event: EventPlayerJoined, Player: &p}
}

func PlayerLeft(playerID string) Message {
	return Message{Event: EventPlayerLeft, PlayerID: playerID}
}

func PlayerMoved(p Player) Message {
	return Message{Event: EventPlayerMoved, Player: &p}
}

// Validate checks that the fields an event needs are present.
func (m Message) Validate() error {
	switch m.Event {
	case EventJoinRoom:
		if m.RoomID == "" || m.Player == nil || m.Player.ID == "" {
			return errors.New("joinRoom needs roomId and player")
		}
		if !m.Player.Finite() {
			return errors.New("joinRoom position is not finite")
		}
	case EventLeaveRoom:
		if m.RoomID == "" || m.PlayerID == "" {
			return errors.New("leaveRoom needs roomId and playerId")
		}
	case EventMovePlayer, EventPlayerJoined, EventPlayerMoved:
		if m.Player == nil || m.Player.ID == "" {
			return errors.New(m.Event + " needs player")
		}
		if !m.Player.Finite() {
			return errors.New(m.Event + " position is not finite")
		}
	case EventPlayerLeft:
		if m.PlayerID == "" {
			return errors.New("playerLeft needs playerId")
		}
	case EventRoomState:
	default:
		return ErrUnknownEvent
	}
	return nil
}
