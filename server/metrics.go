package server

import (
	"sync/atomic"
)

// Metrics 记录房间注册表与连接的关键指标（用于 /metrics 监控与调试）
type Metrics struct {
	Connections     int64 // 当前打开的 WebSocket 连接数
	Joins           int64
	Leaves          int64 // 主动离开与断线清理中实际移除玩家的次数
	MovesAccepted   int64
	MovesDropped    int64 // 因非房间成员、未入房或坐标非法被丢弃的移动
	MovesCorrected  int64 // 经服务端裁决修正过的移动
	RoomsCreated    int64
	RoomsDeleted    int64
	Broadcasts      int64 // 成功压入对端队列的广播消息数
	QueueDiscarded  int64 // 因对端队列满被丢弃的消息数
	MalformedFrames int64
}

func (m *Metrics) IncJoins()           { atomic.AddInt64(&m.Joins, 1) }
func (m *Metrics) IncLeaves()          { atomic.AddInt64(&m.Leaves, 1) }
func (m *Metrics) IncMovesAccepted()   { atomic.AddInt64(&m.MovesAccepted, 1) }
func (m *Metrics) IncMovesDropped()    { atomic.AddInt64(&m.MovesDropped, 1) }
func (m *Metrics) IncMovesCorrected()  { atomic.AddInt64(&m.MovesCorrected, 1) }
func (m *Metrics) IncRoomsCreated()    { atomic.AddInt64(&m.RoomsCreated, 1) }
func (m *Metrics) IncRoomsDeleted()    { atomic.AddInt64(&m.RoomsDeleted, 1) }
func (m *Metrics) IncBroadcasts()      { atomic.AddInt64(&m.Broadcasts, 1) }
func (m *Metrics) IncQueueDiscarded()  { atomic.AddInt64(&m.QueueDiscarded, 1) }
func (m *Metrics) IncMalformedFrames() { atomic.AddInt64(&m.MalformedFrames, 1) }
func (m *Metrics) AddConnections(d int64) {
	atomic.AddInt64(&m.Connections, d)
}

// Snapshot 返回只读副本，便于 HTTP 输出
func (m *Metrics) Snapshot() map[string]any {
	return map[string]any{
		"connections":      atomic.LoadInt64(&m.Connections),
		"joins":            atomic.LoadInt64(&m.Joins),
		"leaves":           atomic.LoadInt64(&m.Leaves),
		"moves_accepted":   atomic.LoadInt64(&m.MovesAccepted),
		"moves_dropped":    atomic.LoadInt64(&m.MovesDropped),
		"moves_corrected":  atomic.LoadInt64(&m.MovesCorrected),
		"rooms_created":    atomic.LoadInt64(&m.RoomsCreated),
		"rooms_deleted":    atomic.LoadInt64(&m.RoomsDeleted),
		"broadcasts":       atomic.LoadInt64(&m.Broadcasts),
		"queue_discarded":  atomic.LoadInt64(&m.QueueDiscarded),
		"malformed_frames": atomic.LoadInt64(&m.MalformedFrames),
	}
}
