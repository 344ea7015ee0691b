package server

import (
	"encoding/json"
	"net/http"

	"gatherspace/layout"
)

// Server 汇总 HTTP 处理器共享的状态
type Server struct {
	Registry *Registry
	Metrics  *Metrics
	Layout   *layout.SpaceLayout
	// ValidateMoves 为 true 时，服务端对上报位置重新做移动裁决
	ValidateMoves bool
}

// Routes 挂载 WebSocket 接入、管理与监控接口；staticDir 非空时同时托管前端静态资源
func (s *Server) Routes(staticDir string) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.HandleWS)
	mux.HandleFunc("/layout", s.HandleLayout)
	mux.HandleFunc("/admin/rooms", s.HandleAdminRooms)
	mux.HandleFunc("/metrics", s.HandleMetrics)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})
	if staticDir != "" {
		mux.Handle("/", http.FileServer(http.Dir(staticDir)))
	}
	return mux
}

// HandleAdminRooms 查询当前存活的房间
// GET /admin/rooms            列出全部房间
// GET /admin/rooms?room=r1    返回指定房间的玩家名单
func (s *Server) HandleAdminRooms(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	roomID := r.URL.Query().Get("room")
	if roomID == "" {
		writeJSON(w, s.Registry.List())
		return
	}
	room, ok := s.Registry.Get(roomID)
	if !ok {
		http.Error(w, "room not found", http.StatusNotFound)
		return
	}
	writeJSON(w, map[string]any{
		"id":         room.ID,
		"name":       room.Name,
		"maxPlayers": room.MaxPlayers,
		"players":    room.Players(),
	})
}

// HandleMetrics 输出房间注册表的运行指标
func (s *Server) HandleMetrics(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]any{
		"rooms":   s.Registry.Len(),
		"metrics": s.Metrics.Snapshot(),
	})
}

// HandleLayout 返回当前空间布局，客户端会话开始时拉取
func (s *Server) HandleLayout(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.Layout)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		Log.Warnf("write response: %v", err)
	}
}
