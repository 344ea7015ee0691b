package protocol

import (
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/vmihailenco/msgpack/v5"
)

func TestEventNames(t *testing.T) {
	names := map[string]string{
		EventJoinRoom:     "joinRoom",
		EventLeaveRoom:    "leaveRoom",
		EventMovePlayer:   "movePlayer",
		EventRoomState:    "roomState",
		EventPlayerJoined: "playerJoined",
		EventPlayerLeft:   "playerLeft",
		EventPlayerMoved:  "playerMoved",
	}
	for got, want := range names {
		if got != want {
			t.Fatalf("event constant = %q, want %q", got, want)
		}
	}
}

func TestJSONWireShape(t *testing.T) {
	b, err := JSONCodec{}.Encode(JoinRoom("default", Player{ID: "a", Name: "Ann", X: 1, Y: 2, Color: "#fff"}))
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	want := `{"event":"joinRoom","roomId":"default","player":{"id":"a","name":"Ann","x":1,"y":2,"color":"#fff"}}`
	if string(b) != want {
		t.Fatalf("wire = %s\nwant  %s", b, want)
	}
}

func TestCodecsCarryEveryEvent(t *testing.T) {
	p := Player{ID: "a", Name: "Ann", X: 10.5, Y: 20.25, Color: "#3b82f6"}
	msgs := []Message{
		JoinRoom("r1", p),
		LeaveRoom("r1", "a"),
		MovePlayer(p),
		RoomState([]Player{p}),
		PlayerJoined(p),
		PlayerLeft("a"),
		PlayerMoved(p),
	}
	for _, c := range []Codec{JSONCodec{}, MsgpackCodec{}} {
		for _, m := range msgs {
			b, err := c.Encode(m)
			if err != nil {
				t.Fatalf("%s encode %s: %v", c.Name(), m.Event, err)
			}
			got, err := c.Decode(b)
			if err != nil {
				t.Fatalf("%s decode %s: %v", c.Name(), m.Event, err)
			}
			if got.Event != m.Event || got.RoomID != m.RoomID || got.PlayerID != m.PlayerID {
				t.Fatalf("%s %s: got %+v", c.Name(), m.Event, got)
			}
			if m.Player != nil && (got.Player == nil || *got.Player != *m.Player) {
				t.Fatalf("%s %s: player = %+v", c.Name(), m.Event, got.Player)
			}
			if len(got.Players) != len(m.Players) {
				t.Fatalf("%s %s: players = %+v", c.Name(), m.Event, got.Players)
			}
		}
	}
}

func TestDecodeRejectsBadFrames(t *testing.T) {
	c := JSONCodec{}
	if _, err := c.Decode(nil); err == nil {
		t.Fatalf("expected error for empty frame")
	}
	if _, err := c.Decode([]byte("{")); err == nil {
		t.Fatalf("expected error for truncated json")
	}
	if _, err := c.Decode([]byte(`{"event":"teleport"}`)); !errors.Is(err, ErrUnknownEvent) {
		t.Fatalf("err = %v, want ErrUnknownEvent", err)
	}
	_, err := c.Decode([]byte(`{"event":"joinRoom","roomId":"r1"}`))
	if err == nil || !strings.Contains(err.Error(), "joinRoom") {
		t.Fatalf("err = %v, want joinRoom validation error", err)
	}
}

func TestDecodeRejectsNonFinitePositions(t *testing.T) {
	c := MsgpackCodec{}
	for _, m := range []Message{
		{Event: EventJoinRoom, RoomID: "r1", Player: &Player{ID: "m", X: math.NaN(), Y: 10}},
		{Event: EventMovePlayer, Player: &Player{ID: "m", X: 10, Y: math.Inf(1)}},
		{Event: EventPlayerMoved, Player: &Player{ID: "m", X: math.Inf(-1), Y: 10}},
	} {
		// msgpack can carry NaN and infinities, so encode bypassing validation
		b, err := msgpack.Marshal(m)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		if _, err := c.Decode(b); err == nil || !strings.Contains(err.Error(), "not finite") {
			t.Fatalf("%s: err = %v, want non-finite rejection", m.Event, err)
		}
	}
	if !(Player{X: 1, Y: 2}).Finite() {
		t.Fatalf("finite player reported as non-finite")
	}
}

func TestCodecByName(t *testing.T) {
	for name, binary := range map[string]bool{"": false, "json": false, "msgpack": true} {
		c, err := CodecByName(name)
		if err != nil {
			t.Fatalf("CodecByName(%q): %v", name, err)
		}
		if c.Binary() != binary {
			t.Fatalf("CodecByName(%q).Binary() = %v", name, c.Binary())
		}
	}
	if _, err := CodecByName("xml"); err == nil {
		t.Fatalf("expected error for unsupported codec")
	}
}
