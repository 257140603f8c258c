package realtime

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	promtest "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"github.com/ufoundit-dev/ufoundit/internal/presence"
	"github.com/ufoundit-dev/ufoundit/pkg/metrics"
)

type testClient struct {
	conn *websocket.Conn
}

func (c *testClient) send(t *testing.T, event string, data any) {
	t.Helper()
	require.NoError(t, c.conn.WriteJSON(Envelope{Event: event, Data: data}))
}

func (c *testClient) read(t *testing.T) Envelope {
	t.Helper()
	require.NoError(t, c.conn.SetReadDeadline(time.Now().Add(5*time.Second)))

	var envelope Envelope
	require.NoError(t, c.conn.ReadJSON(&envelope))
	return envelope
}

func newHubServer(t *testing.T) (*Hub, *presence.Directory, *httptest.Server) {
	t.Helper()

	directory := presence.NewDirectory()
	hub := NewHub(directory)

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		hub.Serve(r.URL.Query().Get("user"), r.URL.Query().Get("name"), w, r)
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return hub, directory, server
}

func dial(t *testing.T, server *httptest.Server, userID, userName string) *testClient {
	t.Helper()

	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws?user=" + userID + "&name=" + userName
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return &testClient{conn: conn}
}

func waitForPresence(t *testing.T, directory *presence.Directory, userID string) {
	t.Helper()
	require.Eventually(t, func() bool {
		_, ok := directory.Lookup(userID)
		return ok
	}, 2*time.Second, 10*time.Millisecond)
}

func TestConnectRegistersPresence(t *testing.T) {
	hub, directory, server := newHubServer(t)

	dial(t, server, "alice", "Alice")
	waitForPresence(t, directory, "alice")
	require.Eventually(t, func() bool { return hub.ConnectionCount() == 1 },
		2*time.Second, 10*time.Millisecond)
}

func TestEmitToUserDeliversAndSkips(t *testing.T) {
	hub, directory, server := newHubServer(t)

	client := dial(t, server, "alice", "Alice")
	waitForPresence(t, directory, "alice")

	require.True(t, hub.EmitToUser("alice", EventNotification, map[string]any{"title": "hi"}))
	envelope := client.read(t)
	require.Equal(t, EventNotification, envelope.Event)

	require.False(t, hub.EmitToUser("nobody", EventNotification, nil))
}

func TestChatRelayAndEcho(t *testing.T) {
	_, directory, server := newHubServer(t)

	alice := dial(t, server, "alice", "Alice")
	bob := dial(t, server, "bob", "Bob")
	waitForPresence(t, directory, "alice")
	waitForPresence(t, directory, "bob")

	bob.send(t, EventSendMessage, map[string]any{
		"receiver_id":  "alice",
		"message_text": "found your wallet",
	})

	received := alice.read(t)
	require.Equal(t, EventNewMessage, received.Event)
	payload, ok := received.Data.(map[string]any)
	require.True(t, ok)
	require.Equal(t, "bob", payload["sender_id"])
	require.Equal(t, "Bob", payload["sender_name"])
	require.Equal(t, "found your wallet", payload["message_text"])

	echo := bob.read(t)
	require.Equal(t, EventMessageSent, echo.Event)
}

func TestTypingRelay(t *testing.T) {
	_, directory, server := newHubServer(t)

	alice := dial(t, server, "alice", "Alice")
	bob := dial(t, server, "bob", "Bob")
	waitForPresence(t, directory, "alice")
	waitForPresence(t, directory, "bob")

	bob.send(t, EventTyping, map[string]any{"receiver_id": "alice"})
	envelope := alice.read(t)
	require.Equal(t, EventUserTyping, envelope.Event)

	bob.send(t, EventStopTyping, map[string]any{"receiver_id": "alice"})
	envelope = alice.read(t)
	require.Equal(t, EventUserStopTyping, envelope.Event)
}

func TestEmitAllBroadcasts(t *testing.T) {
	hub, directory, server := newHubServer(t)

	alice := dial(t, server, "alice", "Alice")
	bob := dial(t, server, "bob", "Bob")
	waitForPresence(t, directory, "alice")
	waitForPresence(t, directory, "bob")

	hub.EmitAll(EventItemDeleted, ItemDeletedPayload{ID: "item-1"})

	require.Equal(t, EventItemDeleted, alice.read(t).Event)
	require.Equal(t, EventItemDeleted, bob.read(t).Event)
}

func TestDisconnectPrunesPresence(t *testing.T) {
	hub, directory, server := newHubServer(t)

	client := dial(t, server, "alice", "Alice")
	waitForPresence(t, directory, "alice")

	require.NoError(t, client.conn.Close())
	require.Eventually(t, func() bool {
		_, ok := directory.Lookup("alice")
		return !ok && hub.ConnectionCount() == 0
	}, 2*time.Second, 10*time.Millisecond)
}

// newDialedSocket returns a live client-side websocket backed by a server
// that holds the peer open until test cleanup.
func newDialedSocket(t *testing.T) *websocket.Conn {
	t.Helper()

	done := make(chan struct{})
	upgrader := websocket.Upgrader{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		<-done
		_ = conn.Close()
	}))
	t.Cleanup(server.Close)
	t.Cleanup(func() { close(done) })

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(server.URL, "http"), nil)
	require.NoError(t, err)
	return conn
}

func TestEnqueueAfterCloseDoesNotPanic(t *testing.T) {
	hub, directory, server := newHubServer(t)

	dial(t, server, "alice", "Alice")
	waitForPresence(t, directory, "alice")

	hub.mu.RLock()
	var conn *connection
	for _, c := range hub.conns {
		conn = c
	}
	hub.mu.RUnlock()
	require.NotNil(t, conn)

	// Disconnect completes between the conns lookup and the send attempt.
	conn.close()

	require.NotPanics(t, func() {
		require.False(t, hub.enqueue(conn, Envelope{Event: EventNotification}))
	})
	require.False(t, hub.EmitToUser("alice", EventNotification, nil))
}

func TestEmitAllCountsBackpressuredClientAsSkipped(t *testing.T) {
	hub := NewHub(presence.NewDirectory())

	// No write pump and a zero-capacity queue: the first enqueue stalls.
	conn := &connection{
		hub:        hub,
		socket:     newDialedSocket(t),
		endpointID: "ep-stalled",
		userID:     "stalled-user",
		send:       make(chan Envelope),
	}
	hub.register(conn)

	const event = "stalled_feed_event"
	skippedBefore := promtest.ToFloat64(metrics.RealtimePushes.WithLabelValues(event, "skipped"))
	deliveredBefore := promtest.ToFloat64(metrics.RealtimePushes.WithLabelValues(event, "delivered"))

	hub.EmitAll(event, nil)

	require.Equal(t, skippedBefore+1,
		promtest.ToFloat64(metrics.RealtimePushes.WithLabelValues(event, "skipped")))
	require.Equal(t, deliveredBefore,
		promtest.ToFloat64(metrics.RealtimePushes.WithLabelValues(event, "delivered")))
}

func TestReconnectLastRegistrationWins(t *testing.T) {
	hub, directory, server := newHubServer(t)

	dial(t, server, "alice", "Alice")
	waitForPresence(t, directory, "alice")
	firstEndpoint, _ := directory.Lookup("alice")

	second := dial(t, server, "alice", "Alice")
	require.Eventually(t, func() bool {
		endpoint, ok := directory.Lookup("alice")
		return ok && endpoint != firstEndpoint
	}, 2*time.Second, 10*time.Millisecond)

	// Pushes land on the new endpoint only.
	require.True(t, hub.EmitToUser("alice", EventNotification, map[string]any{"title": "hi"}))
	envelope := second.read(t)
	require.Equal(t, EventNotification, envelope.Event)
}
