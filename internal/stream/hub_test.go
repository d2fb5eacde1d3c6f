package stream

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Garsondee/Skirmish-Sense/internal/game"
)

func dial(t *testing.T, srv *httptest.Server, query string) *websocket.Conn {
	t.Helper()
	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + query
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readFrame(t *testing.T, conn *websocket.Conn, c Codec) Frame {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	kind, data, err := conn.ReadMessage()
	require.NoError(t, err)
	if c == CodecMsgpack {
		assert.Equal(t, websocket.BinaryMessage, kind)
	} else {
		assert.Equal(t, websocket.TextMessage, kind)
	}
	f, err := c.Decode(data)
	require.NoError(t, err)
	return f
}

func TestHub_StreamsWorldEventsAsJSON(t *testing.T) {
	hub := NewHub(64)
	srv := httptest.NewServer(hub)
	defer srv.Close()
	defer hub.Close()

	conn := dial(t, srv, "")
	hello := readFrame(t, conn, CodecJSON)
	assert.Equal(t, FrameHello, hello.Type)
	assert.Equal(t, "json", hello.Codec)

	w := game.NewWorld(1, nil)
	hub.Attach(w.Bus())
	w.AddPlayer("P0", mgl64.Vec3{0, 0, 10}, game.NewHealth(100, 1))
	w.AddTurret("T0", mgl64.Vec3{}, game.DefaultTurretConfig())
	w.Step(0.5)

	f := readFrame(t, conn, CodecJSON)
	require.Equal(t, FrameEvent, f.Type)
	require.NotNil(t, f.Event)
	assert.Equal(t, game.EventSpawnRequested, f.Event.Kind)
	assert.Equal(t, "T0", f.Event.Source)
	assert.Equal(t, 1, f.Event.Tick)
	assert.False(t, f.Event.ID.IsZero())
}

func TestHub_MsgpackSnapshots(t *testing.T) {
	hub := NewHub(8)
	srv := httptest.NewServer(hub)
	defer srv.Close()
	defer hub.Close()

	conn := dial(t, srv, "?codec=msgpack")
	hello := readFrame(t, conn, CodecMsgpack)
	assert.Equal(t, "msgpack", hello.Codec)

	w := game.NewWorld(1, nil)
	w.AddPlayer("P0", mgl64.Vec3{1, 2, 3}, game.NewHealth(100, 1))
	hub.PublishSnapshot(w.Snapshot())

	f := readFrame(t, conn, CodecMsgpack)
	require.Equal(t, FrameSnapshot, f.Type)
	require.NotNil(t, f.Snapshot)
	require.Len(t, f.Snapshot.Actors, 1)
	assert.Equal(t, "P0", f.Snapshot.Actors[0].Label)
	assert.Equal(t, 1, f.Snapshot.Count("player"))
}

func TestHub_FullQueueDropsInsteadOfBlocking(t *testing.T) {
	hub := NewHub(2)
	c := &client{out: make(chan Frame, 2)}
	require.True(t, hub.add(c))

	done := make(chan struct{})
	go func() {
		for i := 0; i < 5; i++ {
			hub.OnEvent(game.Event{Kind: game.EventDamageApplied})
		}
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("broadcast blocked on a slow client")
	}
	assert.Equal(t, uint64(2), hub.Sent())
	assert.Equal(t, uint64(3), hub.Dropped())
}

func TestHub_ForgetsDisconnectedClients(t *testing.T) {
	hub := NewHub(8)
	srv := httptest.NewServer(hub)
	defer srv.Close()

	conn := dial(t, srv, "")
	readFrame(t, conn, CodecJSON)
	assert.Equal(t, 1, hub.Clients())

	require.NoError(t, conn.Close())
	assert.Eventually(t, func() bool { return hub.Clients() == 0 }, 2*time.Second, 10*time.Millisecond)

	hub.Close()
	assert.False(t, hub.add(&client{out: make(chan Frame, 1)}), "closed hub refuses clients")
}

func TestCodec_ParseAndEncode(t *testing.T) {
	assert.Equal(t, CodecMsgpack, ParseCodec("msgpack"))
	assert.Equal(t, CodecJSON, ParseCodec(""))
	assert.Equal(t, CodecJSON, ParseCodec("xml"))

	data, kind, err := CodecJSON.Encode(Frame{Type: FrameHello})
	require.NoError(t, err)
	assert.Equal(t, websocket.TextMessage, kind)
	assert.JSONEq(t, `{"type":"hello"}`, string(data))
}
