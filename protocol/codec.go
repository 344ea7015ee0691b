package protocol

import (
	"encoding/json"
	"fmt"

	"github.com/vmihailenco/msgpack/v5"
)

// Codec encodes messages for one connection. Binary codecs travel in binary
// websocket frames, the others in text frames.
type Codec interface {
	Name() string
	Binary() bool
	Encode(Message) ([]byte, error)
	Decode([]byte) (Message, error)
}

type JSONCodec struct{}

func (JSONCodec) Name() string { return "json" }
func (JSONCodec) Binary() bool { return false }

func (JSONCodec) Encode(m Message) ([]byte, error) {
	if m.Event == "" {
		return nil, fmt.Errorf("encode: empty event")
	}
	return json.Marshal(m)
}

func (JSONCodec) Decode(b []byte) (Message, error) {
	var m Message
	if len(b) == 0 {
		return m, fmt.Errorf("decode: empty frame")
	}
	if err := json.Unmarshal(b, &m); err != nil {
		return m, fmt.Errorf("decode: %w", err)
	}
	return m, m.Validate()
}

type MsgpackCodec struct{}

func (MsgpackCodec) Name() string { return "msgpack" }
func (MsgpackCodec) Binary() bool { return true }

func (MsgpackCodec) Encode(m Message) ([]byte, error) {
	if m.Event == "" {
		return nil, fmt.Errorf("encode: empty event")
	}
	return msgpack.Marshal(&m)
}

func (MsgpackCodec) Decode(b []byte) (Message, error) {
	var m Message
	if len(b) == 0 {
		return m, fmt.Errorf("decode: empty frame")
	}
	if err := msgpack.Unmarshal(b, &m); err != nil {
		return m, fmt.Errorf("decode: %w", err)
	}
	return m, m.Validate()
}

// CodecByName resolves the codec query parameter; empty means JSON.
func CodecByName(name string) (Codec, error) {
	switch name {
	case "", "json":
		return JSONCodec{}, nil
	case "msgpack":
		return MsgpackCodec{}, nil
	default:
		return nil, fmt.Errorf("unsupported codec %q", name)
	}
}
