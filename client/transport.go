package client

import (
	"context"
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"gatherspace/protocol"
)

const writeWait = 5 * time.Second

// Transport is the client's event channel to the server.
type Transport interface {
	Send(protocol.Message) error
	// Receive yields decoded server messages. It is closed when the connection ends.
	Receive() <-chan protocol.Message
	Close() error
}

type wsTransport struct {
	conn  *websocket.Conn
	codec protocol.Codec
	recv  chan protocol.Message

	writeMu   sync.Mutex
	done      chan struct{}
	closeOnce sync.Once
}

// Dial connects to the server's websocket endpoint, e.g. ws://localhost:8080/ws,
// negotiating codec through the query string.
func Dial(ctx context.Context, endpoint string, codec protocol.Codec) (Transport, error) {
	u, err := url.Parse(endpoint)
	if err != nil {
		return nil, fmt.Errorf("parse endpoint: %w", err)
	}
	q := u.Query()
	q.Set("codec", codec.Name())
	u.RawQuery = q.Encode()

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", u.Redacted(), err)
	}
	t := &wsTransport{
		conn:  conn,
		codec: codec,
		recv:  make(chan protocol.Message, 64),
		done:  make(chan struct{}),
	}
	go t.readLoop()
	return t, nil
}

func (t *wsTransport) Receive() <-chan protocol.Message { return t.recv }

func (t *wsTransport) Send(m protocol.Message) error {
	b, err := t.codec.Encode(m)
	if err != nil {
		return err
	}
	frame := websocket.TextMessage
	if t.codec.Binary() {
		frame = websocket.BinaryMessage
	}
	t.writeMu.Lock()
	defer t.writeMu.Unlock()
	_ = t.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return t.conn.WriteMessage(frame, b)
}

func (t *wsTransport) Close() error {
	var err error
	t.closeOnce.Do(func() {
		close(t.done)
		t.writeMu.Lock()
		_ = t.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(writeWait))
		t.writeMu.Unlock()
		err = t.conn.Close()
	})
	return err
}

func (t *wsTransport) readLoop() {
	defer close(t.recv)
	for {
		_, b, err := t.conn.ReadMessage()
		if err != nil {
			return
		}
		m, err := t.codec.Decode(b)
		if err != nil {
			continue
		}
		select {
		case t.recv <- m:
		case <-t.done:
			return
		}
	}
}
