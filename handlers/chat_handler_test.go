package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/abujafor1924/newmilikoz/internal/cache"
	"github.com/abujafor1924/newmilikoz/internal/ws"
	"github.com/abujafor1924/newmilikoz/middleware"
	"github.com/abujafor1924/newmilikoz/models"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var chatDBSeq int

func newChatTestApp(t *testing.T) (*fiber.App, *gorm.DB, *ws.Service) {
	t.Helper()

	chatDBSeq++
	dsn := fmt.Sprintf("file:chattest%d?mode=memory&cache=shared", chatDBSeq)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.ChatRoom{},
		&models.ChatUser{},
		&models.Message{},
		&models.ActiveConnection{},
	))

	hub := ws.NewHub()
	svc := ws.NewService(db, hub, zerolog.Nop())
	h := NewChatHandler(hub, svc, db, cache.NewMemoryCache(), zerolog.Nop())

	app := fiber.New(fiber.Config{ErrorHandler: middleware.ErrorHandler(zerolog.Nop())})
	chat := app.Group("/api/chat")
	chat.Post("/users", h.CreateUser)
	chat.Post("/join", h.JoinRoom)
	chat.Get("/rooms", h.PublicRooms)
	chat.Post("/rooms", h.CreateRoom)
	chat.Get("/rooms/popular", h.PopularRooms)
	chat.Get("/rooms/:id", h.GetRoom)
	chat.Put("/rooms/:id", h.UpdateRoom)
	chat.Delete("/rooms/:id", h.DeleteRoom)
	chat.Get("/rooms/:id/stats", h.RoomStats)
	chat.Get("/rooms/:id/messages", h.RoomMessages)
	chat.Get("/rooms/:id/users", h.RoomUsers)
	chat.Get("/messages", h.ListMessages)
	chat.Get("/status", h.SystemStatus)

	return app, db, svc
}

func doJSON(t *testing.T, app *fiber.App, method, path string, body interface{}) (*http.Response, []byte) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, raw
}

func TestChat_CreateUser(t *testing.T) {
	app, db, _ := newChatTestApp(t)

	resp, raw := doJSON(t, app, http.MethodPost, "/api/chat/users", map[string]string{
		"username": "alice",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &body))
	assert.NotEmpty(t, body["user_id"])
	assert.NotEmpty(t, body["session_id"])
	assert.Equal(t, ws.DefaultColor, body["color"])

	var count int64
	db.Model(&models.ChatUser{}).Count(&count)
	assert.Equal(t, int64(1), count)

	// Username is required
	resp, _ = doJSON(t, app, http.MethodPost, "/api/chat/users", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestChat_JoinRoomReturnsWebsocketURL(t *testing.T) {
	app, db, _ := newChatTestApp(t)

	roomID := uuid.NewString()
	resp, raw := doJSON(t, app, http.MethodPost, "/api/chat/join", map[string]string{
		"room_id":  roomID,
		"username": "alice",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &body))
	assert.Equal(t, roomID, body["room_id"])
	assert.Contains(t, body["websocket_url"], "/ws/chat/"+roomID+"/")
	assert.Contains(t, body["websocket_url"], "session_id=")

	var room models.ChatRoom
	require.NoError(t, db.First(&room, "id = ?", roomID).Error)
	assert.True(t, room.IsPublic)

	// Joining the same room again reuses it
	resp, _ = doJSON(t, app, http.MethodPost, "/api/chat/join", map[string]string{
		"room_id":  roomID,
		"username": "bob",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var rooms int64
	db.Model(&models.ChatRoom{}).Count(&rooms)
	assert.Equal(t, int64(1), rooms)
}

func TestChat_RoomCRUD(t *testing.T) {
	app, _, _ := newChatTestApp(t)

	resp, raw := doJSON(t, app, http.MethodPost, "/api/chat/rooms", map[string]interface{}{
		"name":        "Lounge",
		"description": "Take a break",
		"max_users":   5,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var created struct {
		Data models.ChatRoom `json:"data"`
	}
	require.NoError(t, json.Unmarshal(raw, &created))
	roomID := created.Data.ID
	require.NotEmpty(t, roomID)
	assert.Equal(t, 5, created.Data.MaxUsers)

	resp, _ = doJSON(t, app, http.MethodGet, "/api/chat/rooms/"+roomID, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = doJSON(t, app, http.MethodPut, "/api/chat/rooms/"+roomID, map[string]interface{}{
		"name": "Lounge 2",
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = doJSON(t, app, http.MethodDelete, "/api/chat/rooms/"+roomID, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = doJSON(t, app, http.MethodGet, "/api/chat/rooms/"+roomID, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestChat_RoomStatsAndStatus(t *testing.T) {
	app, _, svc := newChatTestApp(t)

	sess, err := svc.Join(ws.JoinParams{
		RoomID: "room-1", Username: "alice", SessionID: "sess-a", ChannelName: "chan-1",
	})
	require.NoError(t, err)
	require.NoError(t, svc.HandleInbound(sess, []byte(`{"type":"message","content":"hi"}`)))

	resp, raw := doJSON(t, app, http.MethodGet, "/api/chat/rooms/room-1/stats", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var stats map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &stats))
	assert.Equal(t, float64(1), stats["online_users"])
	assert.Equal(t, float64(1), stats["total_messages"])
	assert.Equal(t, float64(100), stats["max_users"])

	resp, raw = doJSON(t, app, http.MethodGet, "/api/chat/status", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var status map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &status))
	assert.Equal(t, float64(1), status["total_rooms"])
	assert.Equal(t, float64(1), status["total_users"])
	assert.Equal(t, float64(1), status["total_messages"])
	assert.Equal(t, float64(1), status["online_users"])
	assert.Equal(t, float64(1), status["active_rooms"])

	// Unknown room is a 404
	resp, _ = doJSON(t, app, http.MethodGet, "/api/chat/rooms/nope/stats", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestChat_RoomMessagesAndUsers(t *testing.T) {
	app, _, svc := newChatTestApp(t)

	sess, err := svc.Join(ws.JoinParams{
		RoomID: "room-1", Username: "alice", SessionID: "sess-a", ChannelName: "chan-1",
	})
	require.NoError(t, err)
	for _, content := range []string{"one", "two", "three"} {
		require.NoError(t, svc.HandleInbound(sess,
			[]byte(`{"type":"message","content":"`+content+`"}`)))
	}

	resp, raw := doJSON(t, app, http.MethodGet, "/api/chat/rooms/room-1/messages", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var msgBody struct {
		Data []models.Message `json:"data"`
	}
	require.NoError(t, json.Unmarshal(raw, &msgBody))
	require.Len(t, msgBody.Data, 3)
	assert.Equal(t, "one", msgBody.Data[0].Content, "room history is chronological")

	resp, raw = doJSON(t, app, http.MethodGet, "/api/chat/rooms/room-1/users", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var usersBody struct {
		Data []ws.PresenceEntry `json:"data"`
	}
	require.NoError(t, json.Unmarshal(raw, &usersBody))
	require.Len(t, usersBody.Data, 1)
	assert.Equal(t, "alice", usersBody.Data[0].Username)
}

func TestChat_PublicRoomsOrderedByOnline(t *testing.T) {
	app, _, svc := newChatTestApp(t)

	// busy room with two occupants, quiet room with none
	for i := 0; i < 2; i++ {
		_, err := svc.Join(ws.JoinParams{
			RoomID:      "busy",
			SessionID:   fmt.Sprintf("sess-%d", i),
			ChannelName: fmt.Sprintf("chan-%d", i),
		})
		require.NoError(t, err)
	}
	_, raw := doJSON(t, app, http.MethodPost, "/api/chat/rooms", map[string]interface{}{
		"name": "Quiet",
	})
	_ = raw

	resp, raw := doJSON(t, app, http.MethodGet, "/api/chat/rooms", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var rooms []struct {
		ID          string `json:"id"`
		OnlineUsers int64  `json:"online_users"`
	}
	require.NoError(t, json.Unmarshal(raw, &rooms))
	require.Len(t, rooms, 2)
	assert.Equal(t, "busy", rooms[0].ID)
	assert.Equal(t, int64(2), rooms[0].OnlineUsers)

	// Popular listing is cached on the second read
	resp, _ = doJSON(t, app, http.MethodGet, "/api/chat/rooms/popular", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Empty(t, resp.Header.Get("X-Cache"))

	resp, _ = doJSON(t, app, http.MethodGet, "/api/chat/rooms/popular", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "HIT", resp.Header.Get("X-Cache"))
}
