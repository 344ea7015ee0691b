package server

import (
	"sort"
	"sync"

	"gatherspace/protocol"
)

// DefaultMaxPlayers 每个房间对外公布的人数上限（不强制）
const DefaultMaxPlayers = 50

// Subscriber 单个连接的发送端
type Subscriber interface {
	// ID 标识连接而非玩家
	ID() string
	// Send 非阻塞入队，返回是否被接受
	Send(msg protocol.Message) bool
	Close() error
}

// Room 一个共享空间实例：所有修改及其触发的广播都在 mu 下完成，
// 保证各端看到的事件顺序与服务端应用顺序一致
type Room struct {
	ID         string
	Name       string
	MaxPlayers int

	mu          sync.Mutex
	players     map[string]protocol.Player
	subscribers map[string]Subscriber
	closed      bool // 房间清空并从注册表移除后置位
	metrics     *Metrics
}

func newRoom(id string, metrics *Metrics) *Room {
	return &Room{
		ID:          id,
		Name:        "Room " + id,
		MaxPlayers:  DefaultMaxPlayers,
		players:     make(map[string]protocol.Player),
		subscribers: make(map[string]Subscriber),
		metrics:     metrics,
	}
}

// Players 按玩家 id 排序返回名单副本
func (r *Room) Players() []protocol.Player {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rosterLocked()
}

// Len 返回房间内玩家数
func (r *Room) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.players)
}

func (r *Room) rosterLocked() []protocol.Player {
	out := make([]protocol.Player, 0, len(r.players))
	for _, p := range r.players {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// broadcastLocked 向除 senderID 外的所有订阅者发送消息（需持有 mu）
func (r *Room) broadcastLocked(senderID string, msg protocol.Message) {
	for id, sub := range r.subscribers {
		if id == senderID {
			continue
		}
		if sub.Send(msg) {
			r.metrics.IncBroadcasts()
		} else {
			r.metrics.IncQueueDiscarded()
			Log.Debugf("broadcast dropped: room=%s conn=%s event=%s", r.ID, id, msg.Event)
		}
	}
}

func subscriberID(s Subscriber) string {
	if s == nil {
		return ""
	}
	return s.ID()
}
