package server

import (
	"errors"

	"gatherspace/layout"
	"gatherspace/movement"
	"gatherspace/protocol"
)

// Session 将单个连接的消息转换为注册表操作
//
// 连接与所加入玩家的绑定显式保存：movePlayer 与断线清理据此定位房间，
// 断线时移除的是加入时记录的玩家 id，而不是连接 id。
//
// 会话由单个协程驱动，非并发安全
type Session struct {
	conn     Subscriber
	registry *Registry
	metrics  *Metrics
	// Layout 非空时，接受上报位置前先按布局重新裁决
	Layout *layout.SpaceLayout

	roomID   string
	playerID string
}

func NewSession(conn Subscriber, registry *Registry, metrics *Metrics) *Session {
	if metrics == nil {
		metrics = registry.metrics
	}
	return &Session{conn: conn, registry: registry, metrics: metrics}
}

// Binding 返回该连接当前绑定的房间与玩家
func (s *Session) Binding() (roomID, playerID string, ok bool) {
	return s.roomID, s.playerID, s.roomID != ""
}

// Handle 分发一条已解码的客户端消息
func (s *Session) Handle(msg protocol.Message) error {
	if err := msg.Validate(); err != nil {
		return err
	}
	switch msg.Event {
	case protocol.EventJoinRoom:
		if msg.Player == nil {
			return errors.New("joinRoom without player")
		}
		s.JoinRoom(msg.RoomID, *msg.Player)
	case protocol.EventLeaveRoom:
		s.LeaveRoom(msg.RoomID, msg.PlayerID)
	case protocol.EventMovePlayer:
		if msg.Player == nil {
			return errors.New("movePlayer without player")
		}
		s.MovePlayer(*msg.Player)
	default:
		return protocol.ErrUnknownEvent
	}
	return nil
}

// JoinRoom 将玩家加入房间。一个连接最多属于一个房间，已绑定其他房间或玩家时先离开；
// 坐标非有限值时拒绝加入并返回 nil
func (s *Session) JoinRoom(roomID string, p protocol.Player) []protocol.Player {
	if !p.Finite() {
		Log.Debugf("join refused: conn=%s player=%s position not finite", s.conn.ID(), p.ID)
		return nil
	}
	if s.roomID != "" && (s.roomID != roomID || s.playerID != p.ID) {
		s.LeaveRoom(s.roomID, s.playerID)
	}
	roster := s.registry.Join(roomID, p, s.conn)
	s.roomID, s.playerID = roomID, p.ID
	return roster
}

// LeaveRoom 将玩家移出房间；若为本连接自身的绑定，同时停止接收该房间广播
func (s *Session) LeaveRoom(roomID, playerID string) bool {
	own := roomID == s.roomID && playerID == s.playerID
	if own {
		s.registry.Unsubscribe(roomID, s.conn.ID())
		s.roomID, s.playerID = "", ""
	}
	return s.registry.Leave(roomID, playerID, s.conn)
}

// MovePlayer 更新玩家在所在房间中的位置
// 未入房、坐标非有限值或非成员的移动一律丢弃
func (s *Session) MovePlayer(p protocol.Player) bool {
	if !p.Finite() {
		s.metrics.IncMovesDropped()
		Log.Debugf("move dropped: conn=%s player=%s position not finite", s.conn.ID(), p.ID)
		return false
	}
	if s.roomID == "" {
		s.metrics.IncMovesDropped()
		Log.Debugf("move dropped: conn=%s player=%s not in a room", s.conn.ID(), p.ID)
		return false
	}
	if s.Layout != nil {
		x, y := movement.Resolve(p.X, p.Y, s.Layout.Obstacles, s.Layout.Width, s.Layout.Height)
		if x != p.X || y != p.Y {
			s.metrics.IncMovesCorrected()
			p.X, p.Y = x, y
		}
	}
	if !s.registry.Move(s.roomID, p, s.conn) {
		s.metrics.IncMovesDropped()
		Log.Debugf("move dropped: room=%s player=%s not a member", s.roomID, p.ID)
		return false
	}
	s.metrics.IncMovesAccepted()
	return true
}

// Disconnect 连接关闭时执行隐式离开
func (s *Session) Disconnect() {
	if s.roomID == "" {
		return
	}
	s.LeaveRoom(s.roomID, s.playerID)
}
