package server

import (
	"errors"
	"math"
	"testing"

	"gatherspace/layout"
	"gatherspace/protocol"
)

func newTestSession(g *Registry, connID string) (*Session, *fakeSub) {
	sub := newFakeSub(connID)
	return NewSession(sub, g, nil), sub
}

func lastMessage(t *testing.T, f *fakeSub) protocol.Message {
	t.Helper()
	msgs := f.received()
	if len(msgs) == 0 {
		t.Fatalf("%s received nothing", f.id)
	}
	return msgs[len(msgs)-1]
}

func TestSessionJoinBindsConnectionToPlayer(t *testing.T) {
	g := NewRegistry(nil)
	s, sub := newTestSession(g, "conn-1")
	if err := s.Handle(protocol.JoinRoom("r1", player("A", 10, 10))); err != nil {
		t.Fatalf("handle: %v", err)
	}
	room, pid, ok := s.Binding()
	if !ok || room != "r1" || pid != "A" {
		t.Fatalf("binding = %q %q %v", room, pid, ok)
	}
	if m := lastMessage(t, sub); m.Event != protocol.EventRoomState || len(m.Players) != 1 {
		t.Fatalf("reply = %+v", m)
	}
}

func TestSessionScenarioJoinMoveDisconnectLeave(t *testing.T) {
	g := NewRegistry(nil)
	sa, subA := newTestSession(g, "conn-a")
	sb, subB := newTestSession(g, "conn-b")

	sa.JoinRoom("r1", player("A", 100, 100))
	sb.JoinRoom("r1", player("B", 200, 200))

	if m := lastMessage(t, subA); m.Event != protocol.EventPlayerJoined || m.Player.ID != "B" {
		t.Fatalf("A got %+v, want playerJoined(B)", m)
	}
	if m := lastMessage(t, subB); m.Event != protocol.EventRoomState || len(m.Players) != 2 {
		t.Fatalf("B got %+v, want roomState with 2 players", m)
	}

	if !sb.MovePlayer(player("B", 210, 220)) {
		t.Fatalf("move rejected")
	}
	if m := lastMessage(t, subA); m.Event != protocol.EventPlayerMoved || m.Player.X != 210 {
		t.Fatalf("A got %+v, want playerMoved(B)", m)
	}

	sb.Disconnect()
	if m := lastMessage(t, subA); m.Event != protocol.EventPlayerLeft || m.PlayerID != "B" {
		t.Fatalf("A got %+v, want playerLeft(B)", m)
	}
	if _, ok := g.Get("r1"); !ok {
		t.Fatalf("room deleted while A remains")
	}

	sa.LeaveRoom("r1", "A")
	if _, ok := g.Get("r1"); ok {
		t.Fatalf("room should be deleted after last leave")
	}
	if _, _, ok := sa.Binding(); ok {
		t.Fatalf("binding kept after leave")
	}
}

func TestSessionDisconnectUsesPlayerIDNotConnectionID(t *testing.T) {
	g := NewRegistry(nil)
	sa, _ := newTestSession(g, "socket-123")
	sb, subB := newTestSession(g, "socket-456")
	sa.JoinRoom("r1", player("player-a", 1, 1))
	sb.JoinRoom("r1", player("player-b", 1, 1))

	sa.Disconnect()

	r, ok := g.Get("r1")
	if !ok || r.Len() != 1 {
		t.Fatalf("disconnect did not remove player-a")
	}
	if m := lastMessage(t, subB); m.PlayerID != "player-a" {
		t.Fatalf("playerLeft carried %q, want player-a", m.PlayerID)
	}
}

func TestSessionMoveBeforeJoinIsDropped(t *testing.T) {
	g := NewRegistry(nil)
	s, sub := newTestSession(g, "conn")
	if s.MovePlayer(player("A", 1, 1)) {
		t.Fatalf("move before join accepted")
	}
	if len(sub.received()) != 0 || g.Len() != 0 {
		t.Fatalf("move before join had side effects")
	}
	if g.metrics.MovesDropped != 1 {
		t.Fatalf("moves dropped = %d", g.metrics.MovesDropped)
	}
}

func TestSessionMoveForOtherPlayerIDIsDropped(t *testing.T) {
	g := NewRegistry(nil)
	sa, subA := newTestSession(g, "conn-a")
	sb, _ := newTestSession(g, "conn-b")
	sa.JoinRoom("r1", player("A", 1, 1))
	sb.JoinRoom("r1", player("B", 1, 1))
	before := len(subA.received())

	if sb.MovePlayer(player("stranger", 5, 5)) {
		t.Fatalf("move for non-member accepted")
	}
	if len(subA.received()) != before {
		t.Fatalf("dropped move was broadcast")
	}
}

func TestSessionJoiningAnotherRoomLeavesTheFirst(t *testing.T) {
	g := NewRegistry(nil)
	s, _ := newTestSession(g, "conn")
	s.JoinRoom("r1", player("A", 1, 1))
	s.JoinRoom("r2", player("A", 1, 1))
	if _, ok := g.Get("r1"); ok {
		t.Fatalf("r1 should be gone after switching rooms")
	}
	if r, ok := g.Get("r2"); !ok || r.Len() != 1 {
		t.Fatalf("r2 missing player")
	}
	if room, _, _ := s.Binding(); room != "r2" {
		t.Fatalf("binding = %q, want r2", room)
	}
}

func TestSessionLeaveStopsBroadcasts(t *testing.T) {
	g := NewRegistry(nil)
	sa, subA := newTestSession(g, "conn-a")
	sb, subB := newTestSession(g, "conn-b")
	sc, _ := newTestSession(g, "conn-c")
	sa.JoinRoom("r1", player("A", 1, 1))
	sb.JoinRoom("r1", player("B", 1, 1))
	sc.JoinRoom("r1", player("C", 1, 1))

	sb.LeaveRoom("r1", "B")
	before := len(subB.received())
	sc.MovePlayer(player("C", 9, 9))
	if len(subB.received()) != before {
		t.Fatalf("left connection still receives broadcasts")
	}
	if m := lastMessage(t, subA); m.Event != protocol.EventPlayerMoved {
		t.Fatalf("A got %+v", m)
	}
}

func TestSessionValidatesMovesAgainstLayout(t *testing.T) {
	g := NewRegistry(nil)
	sa, subA := newTestSession(g, "conn-a")
	sb, _ := newTestSession(g, "conn-b")
	sb.Layout = layout.Default()
	sa.JoinRoom("default", player("A", 400, 300))
	sb.JoinRoom("default", player("B", 400, 300))

	// off-canvas report gets clamped
	if !sb.MovePlayer(player("B", -100, 300)) {
		t.Fatalf("move rejected")
	}
	m := lastMessage(t, subA)
	if m.Player.X != 20 || m.Player.Y != 300 {
		t.Fatalf("broadcast position = (%g,%g), want (20,300)", m.Player.X, m.Player.Y)
	}
	if g.metrics.MovesCorrected != 1 {
		t.Fatalf("moves corrected = %d", g.metrics.MovesCorrected)
	}
}

func TestSessionHandleRejectsUnknownEvent(t *testing.T) {
	s, _ := newTestSession(NewRegistry(nil), "conn")
	if err := s.Handle(protocol.Message{Event: "teleport"}); !errors.Is(err, protocol.ErrUnknownEvent) {
		t.Fatalf("err = %v, want ErrUnknownEvent", err)
	}
}

func TestSessionRefusesNonFinitePositions(t *testing.T) {
	g := NewRegistry(nil)
	sa, _ := newTestSession(g, "conn-a")
	sb, subB := newTestSession(g, "conn-b")
	sb.Layout = layout.Default()

	if roster := sa.JoinRoom("r1", player("A", math.NaN(), 10)); roster != nil {
		t.Fatalf("join with NaN accepted: %+v", roster)
	}
	if _, _, ok := sa.Binding(); ok {
		t.Fatalf("session bound after refused join")
	}
	if err := sa.Handle(protocol.JoinRoom("r1", player("A", math.Inf(1), 10))); err == nil {
		t.Fatalf("expected error for infinite join position")
	}

	sa.JoinRoom("r1", player("A", 100, 100))
	sb.JoinRoom("r1", player("B", 200, 200))
	before := len(subB.received())

	if sa.MovePlayer(player("A", math.NaN(), 100)) {
		t.Fatalf("NaN move accepted")
	}
	if sb.MovePlayer(player("B", 200, math.Inf(-1))) {
		t.Fatalf("infinite move accepted with layout validation")
	}
	room, _ := g.Get("r1")
	for _, p := range room.Players() {
		if !p.Finite() {
			t.Fatalf("non-finite position stored: %+v", p)
		}
	}
	if n := len(subB.received()); n != before {
		t.Fatalf("B got %d messages for dropped moves", n-before)
	}
	if g.metrics.MovesDropped != 2 {
		t.Fatalf("moves dropped = %d, want 2", g.metrics.MovesDropped)
	}
}
