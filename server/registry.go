package server

import (
	"sort"
	"sync"

	"gatherspace/protocol"
)

// RoomInfo 管理接口使用的房间摘要
type RoomInfo struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Players    int    `json:"players"`
	MaxPlayers int    `json:"maxPlayers"`
}

// Registry 权威的房间集合：房间仅在至少有一名玩家时存在，首个加入时创建，最后一人离开时删除
//
// mu 只保护 rooms 映射；每个房间自行串行化修改，不同房间可并行。
// 加锁顺序：先房间后注册表，持有 mu 时不获取房间锁
type Registry struct {
	mu      sync.RWMutex
	rooms   map[string]*Room
	metrics *Metrics
}

func NewRegistry(metrics *Metrics) *Registry {
	if metrics == nil {
		metrics = &Metrics{}
	}
	return &Registry{
		rooms:   make(map[string]*Room),
		metrics: metrics,
	}
}

// GetOrCreate 获取或创建房间
func (g *Registry) GetOrCreate(id string) *Room {
	g.mu.Lock()
	defer g.mu.Unlock()
	r, ok := g.rooms[id]
	if !ok {
		r = newRoom(id, g.metrics)
		g.rooms[id] = r
		g.metrics.IncRoomsCreated()
		Log.Infof("room created: %s", id)
	}
	return r
}

func (g *Registry) Get(id string) (*Room, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	r, ok := g.rooms[id]
	return r, ok
}

// Len 返回存活房间数
func (g *Registry) Len() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.rooms)
}

// List 按 id 排序返回全部存活房间
func (g *Registry) List() []RoomInfo {
	g.mu.RLock()
	rooms := make([]*Room, 0, len(g.rooms))
	for _, r := range g.rooms {
		rooms = append(rooms, r)
	}
	g.mu.RUnlock()

	out := make([]RoomInfo, 0, len(rooms))
	for _, r := range rooms {
		out = append(out, RoomInfo{ID: r.ID, Name: r.Name, Players: r.Len(), MaxPlayers: r.MaxPlayers})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Join 将玩家加入房间（同 id 覆盖）并订阅 sender
// sender 收到包含自身的完整 roomState，其他订阅者收到 playerJoined；同时返回名单
func (g *Registry) Join(roomID string, p protocol.Player, sender Subscriber) []protocol.Player {
	for {
		r := g.GetOrCreate(roomID)
		r.mu.Lock()
		if r.closed {
			// 与清空房间的离开并发竞争失败，注册表中已可创建新房间
			r.mu.Unlock()
			continue
		}
		r.players[p.ID] = p
		if sender != nil {
			r.subscribers[sender.ID()] = sender
		}
		r.broadcastLocked(subscriberID(sender), protocol.PlayerJoined(p))
		roster := r.rosterLocked()
		if sender != nil && !sender.Send(protocol.RoomState(roster)) {
			r.metrics.IncQueueDiscarded()
		}
		r.mu.Unlock()

		g.metrics.IncJoins()
		Log.Infof("player joined: room=%s player=%s name=%q", roomID, p.ID, p.Name)
		return roster
	}
}

// Move 更新已在房间内的玩家位置并通知其他订阅者；房间不存在或非成员时丢弃
func (g *Registry) Move(roomID string, p protocol.Player, sender Subscriber) bool {
	r, ok := g.Get(roomID)
	if !ok {
		return false
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return false
	}
	if _, member := r.players[p.ID]; !member {
		return false
	}
	r.players[p.ID] = p
	r.broadcastLocked(subscriberID(sender), protocol.PlayerMoved(p))
	return true
}

// Leave 将玩家移出房间并通知剩余订阅者；最后一人离开时删除房间
// 房间或玩家不存在时不做任何处理
func (g *Registry) Leave(roomID, playerID string, sender Subscriber) bool {
	r, ok := g.Get(roomID)
	if !ok {
		return false
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return false
	}
	if _, member := r.players[playerID]; !member {
		return false
	}
	delete(r.players, playerID)
	r.broadcastLocked(subscriberID(sender), protocol.PlayerLeft(playerID))
	g.metrics.IncLeaves()
	Log.Infof("player left: room=%s player=%s", roomID, playerID)

	if len(r.players) == 0 {
		r.closed = true
		r.subscribers = make(map[string]Subscriber)
		g.mu.Lock()
		if g.rooms[roomID] == r {
			delete(g.rooms, roomID)
		}
		g.mu.Unlock()
		g.metrics.IncRoomsDeleted()
		Log.Infof("room deleted: %s", roomID)
	}
	return true
}

// Unsubscribe 停止向该连接投递房间广播
func (g *Registry) Unsubscribe(roomID, connID string) {
	r, ok := g.Get(roomID)
	if !ok {
		return
	}
	r.mu.Lock()
	delete(r.subscribers, connID)
	r.mu.Unlock()
}

// Close 丢弃所有房间并关闭全部订阅连接，仅在服务退出时调用一次
func (g *Registry) Close() {
	g.mu.Lock()
	rooms := g.rooms
	g.rooms = make(map[string]*Room)
	g.mu.Unlock()

	for _, r := range rooms {
		r.mu.Lock()
		r.closed = true
		subs := r.subscribers
		r.subscribers = make(map[string]Subscriber)
		r.mu.Unlock()
		for _, s := range subs {
			_ = s.Close()
		}
	}
	Log.Infof("registry closed: %d rooms dropped", len(rooms))
}
