package handlers

import (
	"context"
	"encoding/json"
	"sort"
	"time"

	"github.com/abujafor1924/newmilikoz/internal/cache"
	"github.com/abujafor1924/newmilikoz/internal/errs"
	"github.com/abujafor1924/newmilikoz/internal/ws"
	"github.com/abujafor1924/newmilikoz/models"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

const popularRoomsCacheKey = "chat:popular_rooms"

type ChatHandler struct {
	Hub     *ws.Hub
	Service *ws.Service
	DB      *gorm.DB
	Cache   cache.Cache
	Log     zerolog.Logger
}

func NewChatHandler(hub *ws.Hub, svc *ws.Service, db *gorm.DB, c cache.Cache, log zerolog.Logger) *ChatHandler {
	return &ChatHandler{
		Hub:     hub,
		Service: svc,
		DB:      db,
		Cache:   c,
		Log:     log,
	}
}

// WebSocketUpgradeMiddleware ensures the client is trying to upgrade to WebSocket
func (h *ChatHandler) WebSocketUpgradeMiddleware(c *fiber.Ctx) error {
	if websocket.IsWebSocketUpgrade(c) {
		c.Locals("allowed", true)
		return c.Next()
	}
	return fiber.ErrUpgradeRequired
}

// Handler returns the websocket handler for /ws/chat/:room_id. The full
// accept path runs before the first pump: join (with capacity check),
// hub registration, join notice and presence snapshot.
func (h *ChatHandler) Handler() fiber.Handler {
	return websocket.New(func(conn *websocket.Conn) {
		params := ws.JoinParams{
			RoomID:      conn.Params("room_id"),
			Username:    conn.Query("username"),
			Color:       conn.Query("color"),
			SessionID:   conn.Query("session_id"),
			ChannelName: uuid.NewString(),
		}

		sess, err := h.Service.Join(params)
		if err != nil {
			if errs.Is(err, errs.KindCapacity) {
				deadline := time.Now().Add(5 * time.Second)
				conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(ws.CloseRoomFull, "room is full"), deadline)
			} else {
				h.Log.Error().Err(err).Str("room_id", params.RoomID).Msg("websocket connect failed")
			}
			conn.Close()
			return
		}

		client := &ws.Client{
			Hub:         h.Hub,
			Conn:        conn,
			Send:        make(chan []byte, 256),
			RoomID:      sess.Room.ID,
			ChannelName: params.ChannelName,
			Session:     sess,
			Log:         h.Log,
		}

		h.Hub.Register(client)
		h.Service.AnnounceJoin(sess)

		go client.WritePump()
		client.ReadPump(h.Service)

		// Socket is gone: persist the leave and tell the room.
		h.Service.Leave(sess, params.ChannelName)
	})
}

// CreateUserRequest defines payload for making an ephemeral chat user
type CreateUserRequest struct {
	Username string `json:"username"`
	Color    string `json:"color"`
}

// CreateUser - POST /api/chat/users
func (h *ChatHandler) CreateUser(c *fiber.Ctx) error {
	var req CreateUserRequest
	if err := c.BodyParser(&req); err != nil {
		return errs.Validation("invalid input")
	}
	if req.Username == "" {
		return errs.Validation("username is required")
	}
	if req.Color == "" {
		req.Color = ws.DefaultColor
	}

	user := models.ChatUser{
		ID:        uuid.NewString(),
		SessionID: uuid.NewString(),
		Username:  req.Username,
		Color:     req.Color,
		IsOnline:  true,
		LastSeen:  time.Now(),
	}
	if err := h.DB.Create(&user).Error; err != nil {
		return errs.Internal("could not create user", err)
	}

	return c.JSON(fiber.Map{
		"user_id":    user.ID,
		"session_id": user.SessionID,
		"username":   user.Username,
		"color":      user.Color,
		"message":    "User created",
	})
}

// JoinRoomRequest defines payload for the join endpoint
type JoinRoomRequest struct {
	RoomID   string `json:"room_id"`
	Username string `json:"username"`
	Color    string `json:"color"`
}

// JoinRoom - POST /api/chat/join
// Gets or creates the room, mints a user with a fresh session and hands
// back the websocket URL to connect with.
func (h *ChatHandler) JoinRoom(c *fiber.Ctx) error {
	var req JoinRoomRequest
	if err := c.BodyParser(&req); err != nil {
		return errs.Validation("invalid input")
	}
	if req.RoomID == "" || req.Username == "" {
		return errs.Validation("room_id and username are required")
	}
	if req.Color == "" {
		req.Color = ws.DefaultColor
	}

	shortID := req.RoomID
	if len(shortID) > 8 {
		shortID = shortID[:8]
	}
	room := models.ChatRoom{
		ID:       req.RoomID,
		Name:     "Room " + shortID,
		IsPublic: true,
		MaxUsers: 100,
	}
	if err := h.DB.FirstOrCreate(&room, models.ChatRoom{ID: req.RoomID}).Error; err != nil {
		return errs.Internal("could not create room", err)
	}

	sessionID := uuid.NewString()
	user := models.ChatUser{
		ID:            uuid.NewString(),
		SessionID:     sessionID,
		Username:      req.Username,
		Color:         req.Color,
		IsOnline:      true,
		CurrentRoomID: &room.ID,
		LastSeen:      time.Now(),
	}
	if err := h.DB.Create(&user).Error; err != nil {
		return errs.Internal("could not create user", err)
	}

	return c.JSON(fiber.Map{
		"room_id":       room.ID,
		"room_name":     room.Name,
		"user_id":       user.ID,
		"session_id":    sessionID,
		"username":      user.Username,
		"color":         user.Color,
		"websocket_url": "ws://" + c.Hostname() + "/ws/chat/" + room.ID + "/?username=" + req.Username + "&color=" + req.Color + "&session_id=" + sessionID,
	})
}

// roomSummary is one row of the public rooms listing.
type roomSummary struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Description   string    `json:"description"`
	OnlineUsers   int64     `json:"online_users"`
	TotalMessages int64     `json:"total_messages"`
	MaxUsers      int       `json:"max_users"`
	CreatedAt     time.Time `json:"created_at"`
}

func (h *ChatHandler) publicRoomSummaries() ([]roomSummary, error) {
	var rooms []models.ChatRoom
	if err := h.DB.Where("is_public = ?", true).Find(&rooms).Error; err != nil {
		return nil, err
	}

	summaries := make([]roomSummary, 0, len(rooms))
	for _, room := range rooms {
		var online, msgs int64
		if err := h.DB.Model(&models.ActiveConnection{}).
			Where("room_id = ?", room.ID).Count(&online).Error; err != nil {
			return nil, err
		}
		if err := h.DB.Model(&models.Message{}).
			Where("room_id = ?", room.ID).Count(&msgs).Error; err != nil {
			return nil, err
		}
		summaries = append(summaries, roomSummary{
			ID:            room.ID,
			Name:          room.Name,
			Description:   room.Description,
			OnlineUsers:   online,
			TotalMessages: msgs,
			MaxUsers:      room.MaxUsers,
			CreatedAt:     room.CreatedAt,
		})
	}

	// Busiest first
	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].OnlineUsers > summaries[j].OnlineUsers
	})
	return summaries, nil
}

// PublicRooms - GET /api/chat/rooms
func (h *ChatHandler) PublicRooms(c *fiber.Ctx) error {
	summaries, err := h.publicRoomSummaries()
	if err != nil {
		return errs.Internal("could not list rooms", err)
	}
	return c.JSON(summaries)
}

// PopularRooms - GET /api/chat/rooms/popular
// Top ten public rooms by live connection count, cached briefly since the
// listing is hit by every lobby screen.
func (h *ChatHandler) PopularRooms(c *fiber.Ctx) error {
	ctx := context.Background()

	if cached, ok := h.Cache.Get(ctx, popularRoomsCacheKey); ok {
		c.Set("X-Cache", "HIT")
		c.Set("Content-Type", "application/json")
		return c.Send(cached)
	}

	summaries, err := h.publicRoomSummaries()
	if err != nil {
		return errs.Internal("could not list rooms", err)
	}
	if len(summaries) > 10 {
		summaries = summaries[:10]
	}

	payload, err := json.Marshal(summaries)
	if err != nil {
		return errs.Internal("could not encode rooms", err)
	}
	h.Cache.Set(ctx, popularRoomsCacheKey, payload, 30*time.Second)

	c.Set("Content-Type", "application/json")
	return c.Send(payload)
}

// CreateRoomRequest defines payload for explicit room creation
type CreateRoomRequest struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	IsPublic    *bool  `json:"is_public"`
	MaxUsers    int    `json:"max_users"`
}

// CreateRoom - POST /api/chat/rooms
func (h *ChatHandler) CreateRoom(c *fiber.Ctx) error {
	var req CreateRoomRequest
	if err := c.BodyParser(&req); err != nil {
		return errs.Validation("invalid input")
	}
	if req.Name == "" {
		return errs.Validation("name is required")
	}
	if req.ID == "" {
		req.ID = uuid.NewString()
	}
	if req.MaxUsers <= 0 {
		req.MaxUsers = 100
	}
	isPublic := true
	if req.IsPublic != nil {
		isPublic = *req.IsPublic
	}

	room := models.ChatRoom{
		ID:          req.ID,
		Name:        req.Name,
		Description: req.Description,
		IsPublic:    isPublic,
		MaxUsers:    req.MaxUsers,
	}
	if err := h.DB.Create(&room).Error; err != nil {
		return errs.Conflict("room already exists")
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": room})
}

// GetRoom - GET /api/chat/rooms/:id
func (h *ChatHandler) GetRoom(c *fiber.Ctx) error {
	var room models.ChatRoom
	if err := h.DB.First(&room, "id = ?", c.Params("id")).Error; err != nil {
		return errs.NotFound("room not found")
	}
	return c.JSON(fiber.Map{"data": room})
}

// UpdateRoom - PUT /api/chat/rooms/:id
func (h *ChatHandler) UpdateRoom(c *fiber.Ctx) error {
	var room models.ChatRoom
	if err := h.DB.First(&room, "id = ?", c.Params("id")).Error; err != nil {
		return errs.NotFound("room not found")
	}

	var req CreateRoomRequest
	if err := c.BodyParser(&req); err != nil {
		return errs.Validation("invalid input")
	}
	if req.Name != "" {
		room.Name = req.Name
	}
	room.Description = req.Description
	if req.IsPublic != nil {
		room.IsPublic = *req.IsPublic
	}
	if req.MaxUsers > 0 {
		room.MaxUsers = req.MaxUsers
	}

	if err := h.DB.Save(&room).Error; err != nil {
		return errs.Internal("could not update room", err)
	}
	return c.JSON(fiber.Map{"message": "Room updated", "data": room})
}

// DeleteRoom - DELETE /api/chat/rooms/:id
func (h *ChatHandler) DeleteRoom(c *fiber.Ctx) error {
	var room models.ChatRoom
	if err := h.DB.First(&room, "id = ?", c.Params("id")).Error; err != nil {
		return errs.NotFound("room not found")
	}
	if err := h.DB.Delete(&room).Error; err != nil {
		return errs.Internal("could not delete room", err)
	}
	return c.JSON(fiber.Map{"message": "Room deleted"})
}

// RoomStats - GET /api/chat/rooms/:id/stats
func (h *ChatHandler) RoomStats(c *fiber.Ctx) error {
	var room models.ChatRoom
	if err := h.DB.First(&room, "id = ?", c.Params("id")).Error; err != nil {
		return errs.NotFound("room not found")
	}

	var online, msgs int64
	h.DB.Model(&models.ActiveConnection{}).Where("room_id = ?", room.ID).Count(&online)
	h.DB.Model(&models.Message{}).Where("room_id = ?", room.ID).Count(&msgs)

	return c.JSON(fiber.Map{
		"room_id":        room.ID,
		"room_name":      room.Name,
		"online_users":   online,
		"total_messages": msgs,
		"max_users":      room.MaxUsers,
		"is_public":      room.IsPublic,
		"created_at":     room.CreatedAt,
	})
}

// RoomMessages - GET /api/chat/rooms/:id/messages
// Last 100 messages in chronological order.
func (h *ChatHandler) RoomMessages(c *fiber.Ctx) error {
	var room models.ChatRoom
	if err := h.DB.First(&room, "id = ?", c.Params("id")).Error; err != nil {
		return errs.NotFound("room not found")
	}

	var messages []models.Message
	if err := h.DB.Preload("User").Where("room_id = ?", room.ID).
		Order("created_at DESC").Limit(100).Find(&messages).Error; err != nil {
		return errs.Internal("could not fetch messages", err)
	}
	// Newest 100, flipped back to chronological order.
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}
	return c.JSON(fiber.Map{"data": messages})
}

// RoomUsers - GET /api/chat/rooms/:id/users
func (h *ChatHandler) RoomUsers(c *fiber.Ctx) error {
	var room models.ChatRoom
	if err := h.DB.First(&room, "id = ?", c.Params("id")).Error; err != nil {
		return errs.NotFound("room not found")
	}

	users, err := h.Service.OnlineUsers(room.ID)
	if err != nil {
		return errs.Internal("could not load users", err)
	}
	return c.JSON(fiber.Map{"data": users})
}

// ListMessages - GET /api/chat/messages?room_id=
// Last 100 messages, newest first.
func (h *ChatHandler) ListMessages(c *fiber.Ctx) error {
	query := h.DB.Preload("User").Order("created_at DESC").Limit(100)
	if roomID := c.Query("room_id"); roomID != "" {
		query = query.Where("room_id = ?", roomID)
	}

	var messages []models.Message
	if err := query.Find(&messages).Error; err != nil {
		return errs.Internal("could not fetch messages", err)
	}
	return c.JSON(fiber.Map{"data": messages})
}

// SystemStatus - GET /api/chat/status
func (h *ChatHandler) SystemStatus(c *fiber.Ctx) error {
	var totalRooms, totalUsers, totalMessages, onlineUsers, activeRooms int64
	h.DB.Model(&models.ChatRoom{}).Count(&totalRooms)
	h.DB.Model(&models.ChatUser{}).Count(&totalUsers)
	h.DB.Model(&models.Message{}).Count(&totalMessages)
	h.DB.Model(&models.ActiveConnection{}).Distinct("user_id").Count(&onlineUsers)
	h.DB.Model(&models.ActiveConnection{}).Distinct("room_id").Count(&activeRooms)

	return c.JSON(fiber.Map{
		"total_rooms":    totalRooms,
		"total_users":    totalUsers,
		"total_messages": totalMessages,
		"online_users":   onlineUsers,
		"active_rooms":   activeRooms,
		"status":         "active",
	})
}
