package server

import (
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"gatherspace/protocol"
)

const (
	writeWait      = 5 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = pongWait * 9 / 10
	maxMessageSize = 1 << 16
	sendQueueSize  = 64
)

// ClientConn 负责发送（写）数据到客户端的轻量包装：有界队列由 writePump 写出
type ClientConn struct {
	id    string
	ws    *websocket.Conn
	codec protocol.Codec
	send  chan []byte

	done      chan struct{}
	closeOnce sync.Once
}

func NewClientConn(ws *websocket.Conn, codec protocol.Codec) *ClientConn {
	return &ClientConn{
		id:    uuid.NewString(),
		ws:    ws,
		codec: codec,
		send:  make(chan []byte, sendQueueSize),
		done:  make(chan struct{}),
	}
}

func (c *ClientConn) ID() string { return c.id }

// Send 编码消息并压入队列（非阻塞，满则丢弃，后续更新会覆盖）
func (c *ClientConn) Send(msg protocol.Message) bool {
	b, err := c.codec.Encode(msg)
	if err != nil {
		Log.Warnf("encode %s for conn=%s: %v", msg.Event, c.id, err)
		return false
	}
	select {
	case <-c.done:
		return false
	default:
	}
	select {
	case c.send <- b:
		return true
	default:
		return false
	}
}

// Close 结束写协程并关闭底层连接，可重复调用
func (c *ClientConn) Close() error {
	var err error
	c.closeOnce.Do(func() {
		close(c.done)
		err = c.ws.Close()
	})
	return err
}

// writePump 独立协程，负责从 send 队列写出到 WS，并定时发送 ping 保活
func (c *ClientConn) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.Close()
	}()

	frame := websocket.TextMessage
	if c.codec.Binary() {
		frame = websocket.BinaryMessage
	}
	for {
		select {
		case <-c.done:
			return
		case msg := <-c.send:
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteMessage(frame, msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readPump 逐帧读取客户端消息交给会话处理；连接断开时先执行隐式离开再关闭连接
func (c *ClientConn) readPump(s *Session, metrics *Metrics) {
	defer func() {
		s.Disconnect()
		_ = c.Close()
		metrics.AddConnections(-1)
		Log.Infof("connection closed: conn=%s", c.id)
	}()
	c.ws.SetReadLimit(maxMessageSize)
	_ = c.ws.SetReadDeadline(time.Now().Add(pongWait))
	c.ws.SetPongHandler(func(string) error {
		return c.ws.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, payload, err := c.ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				Log.Debugf("read conn=%s: %v", c.id, err)
			}
			return
		}
		msg, err := c.codec.Decode(payload)
		if err != nil {
			metrics.IncMalformedFrames()
			if errors.Is(err, protocol.ErrUnknownEvent) {
				Log.Debugf("ignored event %q from conn=%s", msg.Event, c.id)
			} else {
				Log.Warnf("malformed frame from conn=%s: %v", c.id, err)
			}
			continue
		}
		if err := s.Handle(msg); err != nil {
			Log.Warnf("handle %s from conn=%s: %v", msg.Event, c.id, err)
		}
	}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// HandleWS WebSocket 接入：/ws?codec=json|msgpack
// 入房由客户端随后发送的 joinRoom 消息完成
func (s *Server) HandleWS(w http.ResponseWriter, r *http.Request) {
	codec, err := protocol.CodecByName(r.URL.Query().Get("codec"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	ws, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		Log.Warnf("upgrade error: %v", err)
		return
	}

	client := NewClientConn(ws, codec)
	session := NewSession(client, s.Registry, s.Metrics)
	if s.ValidateMoves {
		session.Layout = s.Layout
	}
	s.Metrics.AddConnections(1)
	Log.Infof("connection opened: conn=%s remote=%s codec=%s", client.ID(), r.RemoteAddr, codec.Name())

	go client.writePump()
	go client.readPump(session, s.Metrics)
}
