package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/wiz0007/WeChat-server/domain"
	"github.com/wiz0007/WeChat-server/internal/mocks"
)

type hubFixture struct {
	hub      *Hub
	chatRepo *mocks.MockChatRepository
	server   *httptest.Server
}

func newHubFixture(t *testing.T) *hubFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	chatRepo := mocks.NewMockChatRepository()
	hub := NewHub(chatRepo, zap.NewNop())
	handler := NewHandler(hub, mocks.NewMockTokenService(), zap.NewNop())

	router := gin.New()
	router.GET("/ws", handler.Handle)
	server := httptest.NewServer(router)
	t.Cleanup(server.Close)

	return &hubFixture{hub: hub, chatRepo: chatRepo, server: server}
}

func (f *hubFixture) dial(t *testing.T, accountID uint) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(f.server.URL, "http") + fmt.Sprintf("/ws?token=token-%d", accountID)
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial failed: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func join(t *testing.T, conn *websocket.Conn, chatID uint) {
	t.Helper()
	if err := conn.WriteJSON(Command{Type: "join", ChatID: chatID}); err != nil {
		t.Fatalf("join write failed: %v", err)
	}
}

func readEvent(t *testing.T, conn *websocket.Conn) Event {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var ev Event
	if err := conn.ReadJSON(&ev); err != nil {
		t.Fatalf("read failed: %v", err)
	}
	return ev
}

func waitForRoomSize(t *testing.T, hub *Hub, chatID uint, want int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if hub.RoomSize(chatID) == want {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("room %d size = %d, want %d", chatID, hub.RoomSize(chatID), want)
}

func TestHandler_RejectsWithoutToken(t *testing.T) {
	f := newHubFixture(t)

	resp, err := http.Get(f.server.URL + "/ws")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", resp.StatusCode)
	}
}

func TestHandler_RejectsInvalidToken(t *testing.T) {
	f := newHubFixture(t)

	url := "ws" + strings.TrimPrefix(f.server.URL, "http") + "/ws?token=garbage"
	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	if err == nil {
		t.Fatal("dial succeeded with an invalid token")
	}
	if resp == nil || resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("handshake response = %v, want 401", resp)
	}
}

func TestHandler_AcceptsBearerHeader(t *testing.T) {
	f := newHubFixture(t)

	url := "ws" + strings.TrimPrefix(f.server.URL, "http") + "/ws"
	header := http.Header{"Authorization": []string{"Bearer token-7"}}
	conn, _, err := websocket.DefaultDialer.Dial(url, header)
	if err != nil {
		t.Fatalf("dial with bearer header failed: %v", err)
	}
	conn.Close()
}

func TestHub_JoinAndDeliver(t *testing.T) {
	f := newHubFixture(t)

	conn := f.dial(t, 1)
	join(t, conn, 10)
	waitForRoomSize(t, f.hub, 10, 1)

	msg := &domain.Message{ID: 1, ChatID: 10, SenderID: 2, Text: "hello", ReadBy: []uint{2}}
	f.hub.Publish(10, msg)

	ev := readEvent(t, conn)
	if ev.Type != "message" {
		t.Fatalf("event type = %q, want message", ev.Type)
	}
	if ev.Data == nil || ev.Data.ID != 1 || ev.Data.Text != "hello" {
		t.Errorf("event data = %+v, want the published message", ev.Data)
	}
}

func TestHub_DeliveryOrderMatchesPublishOrder(t *testing.T) {
	f := newHubFixture(t)

	conn := f.dial(t, 1)
	join(t, conn, 10)
	waitForRoomSize(t, f.hub, 10, 1)

	const n = 30
	for i := 1; i <= n; i++ {
		f.hub.Publish(10, &domain.Message{ID: uint(i), ChatID: 10, SenderID: 2, Text: fmt.Sprintf("msg-%d", i)})
	}

	for i := 1; i <= n; i++ {
		ev := readEvent(t, conn)
		if ev.Data == nil || ev.Data.ID != uint(i) {
			t.Fatalf("event %d carries message %+v, want ID %d", i, ev.Data, i)
		}
	}
}

func TestHub_JoinRequiresMembership(t *testing.T) {
	f := newHubFixture(t)
	f.chatRepo.IsParticipantFunc = func(ctx context.Context, chatID, accountID uint) (bool, error) {
		return false, nil
	}

	conn := f.dial(t, 3)
	join(t, conn, 10)

	ev := readEvent(t, conn)
	if ev.Type != "error" {
		t.Fatalf("event type = %q, want error", ev.Type)
	}
	if f.hub.RoomSize(10) != 0 {
		t.Errorf("room size = %d after refused join, want 0", f.hub.RoomSize(10))
	}

	// The refused join must not receive room traffic.
	f.hub.Publish(10, &domain.Message{ID: 1, ChatID: 10, SenderID: 1, Text: "secret"})
	conn.SetReadDeadline(time.Now().Add(200 * time.Millisecond))
	var stray Event
	if err := conn.ReadJSON(&stray); err == nil {
		t.Errorf("received event %+v without room membership", stray)
	}
}

func TestHub_PublishReachesOnlyJoinedRoom(t *testing.T) {
	f := newHubFixture(t)

	conn := f.dial(t, 1)
	join(t, conn, 10)
	waitForRoomSize(t, f.hub, 10, 1)

	f.hub.Publish(11, &domain.Message{ID: 1, ChatID: 11, SenderID: 2, Text: "other room"})
	f.hub.Publish(10, &domain.Message{ID: 2, ChatID: 10, SenderID: 2, Text: "this room"})

	ev := readEvent(t, conn)
	if ev.Data == nil || ev.Data.ChatID != 10 {
		t.Errorf("received %+v, want only chat 10 traffic", ev.Data)
	}
}

func TestHub_FanOutToBothParticipants(t *testing.T) {
	f := newHubFixture(t)

	connA := f.dial(t, 1)
	connB := f.dial(t, 2)
	join(t, connA, 10)
	join(t, connB, 10)
	waitForRoomSize(t, f.hub, 10, 2)

	f.hub.Publish(10, &domain.Message{ID: 1, ChatID: 10, SenderID: 1, Text: "hello"})

	for _, conn := range []*websocket.Conn{connA, connB} {
		ev := readEvent(t, conn)
		if ev.Data == nil || ev.Data.ID != 1 {
			t.Errorf("participant missed the event, got %+v", ev.Data)
		}
	}
}

func TestHub_Leave(t *testing.T) {
	f := newHubFixture(t)

	conn := f.dial(t, 1)
	join(t, conn, 10)
	waitForRoomSize(t, f.hub, 10, 1)

	if err := conn.WriteJSON(Command{Type: "leave", ChatID: 10}); err != nil {
		t.Fatalf("leave write failed: %v", err)
	}
	waitForRoomSize(t, f.hub, 10, 0)
}

func TestHub_DisconnectCleansRooms(t *testing.T) {
	f := newHubFixture(t)

	conn := f.dial(t, 1)
	join(t, conn, 10)
	join(t, conn, 11)
	waitForRoomSize(t, f.hub, 10, 1)
	waitForRoomSize(t, f.hub, 11, 1)

	conn.Close()
	waitForRoomSize(t, f.hub, 10, 0)
	waitForRoomSize(t, f.hub, 11, 0)

	// Publishing into the emptied room must not panic on a closed channel.
	f.hub.Publish(10, &domain.Message{ID: 1, ChatID: 10, SenderID: 2, Text: "after close"})
}

func TestClient_MalformedCommand(t *testing.T) {
	f := newHubFixture(t)

	conn := f.dial(t, 1)
	if err := conn.WriteMessage(websocket.TextMessage, []byte("{not json")); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	ev := readEvent(t, conn)
	if ev.Type != "error" {
		t.Errorf("event type = %q, want error", ev.Type)
	}
}

func TestClient_UnknownCommand(t *testing.T) {
	f := newHubFixture(t)

	conn := f.dial(t, 1)
	data, _ := json.Marshal(Command{Type: "subscribe", ChatID: 10})
	if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	ev := readEvent(t, conn)
	if ev.Type != "error" {
		t.Errorf("event type = %q, want error", ev.Type)
	}
}
