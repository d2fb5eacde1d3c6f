// Package stream fans simulation events and snapshots out to websocket spectators.
package stream

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/Garsondee/Skirmish-Sense/internal/game"
)

// Codec selects the frame encoding of one client.
type Codec int

const (
	CodecJSON    Codec = iota // text frames
	CodecMsgpack              // binary frames
)

func (c Codec) String() string {
	if c == CodecMsgpack {
		return "msgpack"
	}
	return "json"
}

// ParseCodec maps a query value to a Codec. Anything unknown is JSON.
func ParseCodec(s string) Codec {
	if s == "msgpack" {
		return CodecMsgpack
	}
	return CodecJSON
}

// Frame types.
const (
	FrameHello    = "hello"
	FrameEvent    = "event"
	FrameSnapshot = "snapshot"
)

// Frame is one message to a spectator.
type Frame struct {
	Type     string         `json:"type" msgpack:"type"`
	Codec    string         `json:"codec,omitempty" msgpack:"codec,omitempty"`
	Event    *game.Event    `json:"event,omitempty" msgpack:"event,omitempty"`
	Snapshot *game.Snapshot `json:"snapshot,omitempty" msgpack:"snapshot,omitempty"`
}

// Encode renders f with the codec and returns the websocket message type.
func (c Codec) Encode(f Frame) ([]byte, int, error) {
	switch c {
	case CodecMsgpack:
		data, err := msgpack.Marshal(&f)
		if err != nil {
			return nil, 0, fmt.Errorf("msgpack frame: %w", err)
		}
		return data, websocket.BinaryMessage, nil
	default:
		data, err := json.Marshal(f)
		if err != nil {
			return nil, 0, fmt.Errorf("json frame: %w", err)
		}
		return data, websocket.TextMessage, nil
	}
}

// Decode parses a frame produced by Encode.
func (c Codec) Decode(data []byte) (Frame, error) {
	var f Frame
	var err error
	if c == CodecMsgpack {
		err = msgpack.Unmarshal(data, &f)
	} else {
		err = json.Unmarshal(data, &f)
	}
	return f, err
}

// SafeWriter serializes writes to one connection.
type SafeWriter struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

// NewSafeWriter wraps conn.
func NewSafeWriter(conn *websocket.Conn) *SafeWriter {
	return &SafeWriter{conn: conn}
}

// WriteFrame encodes and sends f.
func (w *SafeWriter) WriteFrame(c Codec, f Frame) error {
	data, kind, err := c.Encode(f)
	if err != nil {
		return err
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.conn.WriteMessage(kind, data)
}

// Close closes the connection.
func (w *SafeWriter) Close() error {
	return w.conn.Close()
}
