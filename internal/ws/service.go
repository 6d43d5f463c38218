package ws

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/abujafor1924/newmilikoz/internal/errs"
	"github.com/abujafor1924/newmilikoz/models"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Defaults applied when a client connects without identity parameters.
const (
	DefaultUsername = "guest"
	DefaultColor    = "#007bff"
)

// Service implements the chat room lifecycle: join with capacity check,
// inbound frame dispatch, presence snapshots and leave. All persistence
// goes through gorm; all fan-out goes through the hub.
type Service struct {
	db  *gorm.DB
	hub *Hub
	log zerolog.Logger
}

func NewService(db *gorm.DB, hub *Hub, log zerolog.Logger) *Service {
	return &Service{db: db, hub: hub, log: log}
}

// JoinParams carries everything the connect handshake supplies.
type JoinParams struct {
	RoomID      string
	Username    string
	Color       string
	SessionID   string
	ChannelName string
}

// Session binds the accepted connection to its user and room rows.
type Session struct {
	User *models.ChatUser
	Room *models.ChatRoom
}

// Join runs the accept path: get-or-create user and room, capacity check,
// mark online, persist the connection row. A capacity rejection resets the
// online flag the session upsert raised, so it leaves no presence state
// behind beyond the user row itself.
func (s *Service) Join(p JoinParams) (*Session, error) {
	if p.Username == "" {
		p.Username = DefaultUsername
	}
	if p.Color == "" {
		p.Color = DefaultColor
	}
	if p.SessionID == "" {
		p.SessionID = uuid.NewString()
	}

	user, err := s.getOrCreateUser(p.Username, p.Color, p.SessionID)
	if err != nil {
		return nil, err
	}

	room, err := s.getOrCreateRoom(p.RoomID)
	if err != nil {
		return nil, err
	}

	var online int64
	if err := s.db.Model(&models.ActiveConnection{}).
		Where("room_id = ?", room.ID).Count(&online).Error; err != nil {
		return nil, errs.Internal("failed to count connections", err)
	}
	if online >= int64(room.MaxUsers) {
		// The upsert above flagged the user online; a rejected join holds no
		// connection row, so the flag has to come back down.
		if err := s.db.Model(user).Updates(map[string]interface{}{
			"is_online":       false,
			"current_room_id": nil,
		}).Error; err != nil {
			s.log.Error().Err(err).Str("user_id", user.ID).Msg("failed to reset rejected user")
		}
		return nil, errs.Capacity("room is full")
	}

	updates := map[string]interface{}{
		"is_online":       true,
		"current_room_id": room.ID,
		"last_seen":       time.Now(),
	}
	if err := s.db.Model(user).Updates(updates).Error; err != nil {
		return nil, errs.Internal("failed to update user status", err)
	}
	user.IsOnline = true
	user.CurrentRoomID = &room.ID

	conn := models.ActiveConnection{
		UserID:      user.ID,
		RoomID:      room.ID,
		ChannelName: p.ChannelName,
	}
	if err := s.db.Create(&conn).Error; err != nil {
		return nil, errs.Internal("failed to save connection", err)
	}

	return &Session{User: user, Room: room}, nil
}

// AnnounceJoin broadcasts the system join notice followed by a fresh
// presence snapshot. Called after the client is registered with the hub so
// the joiner sees both frames too.
func (s *Service) AnnounceJoin(sess *Session) {
	s.hub.Publish(sess.Room.ID, systemFrame(
		sess.User.Username+" joined the room", sess.User.ID, sess.User.Username))
	s.broadcastUserList(sess.Room.ID)
}

// Leave runs the disconnect path: mark offline, delete the connection
// row(s) for this socket, broadcast the leave notice and a refreshed
// snapshot. Capacity-rejected connects never reach here.
func (s *Service) Leave(sess *Session, channelName string) {
	updates := map[string]interface{}{
		"is_online":       false,
		"current_room_id": nil,
		"last_seen":       time.Now(),
	}
	if err := s.db.Model(&models.ChatUser{}).Where("id = ?", sess.User.ID).
		Updates(updates).Error; err != nil {
		s.log.Error().Err(err).Str("user_id", sess.User.ID).Msg("failed to mark user offline")
	}

	if err := s.db.Where("user_id = ? AND channel_name = ?", sess.User.ID, channelName).
		Delete(&models.ActiveConnection{}).Error; err != nil {
		s.log.Error().Err(err).Str("user_id", sess.User.ID).Msg("failed to remove connection")
	}

	s.hub.Publish(sess.Room.ID, systemFrame(
		sess.User.Username+" left the room", sess.User.ID, sess.User.Username))
	s.broadcastUserList(sess.Room.ID)
}

// HandleInbound dispatches one frame from a client. Errors are returned to
// the read loop for logging; the socket stays open regardless.
func (s *Service) HandleInbound(sess *Session, raw []byte) error {
	var frame inboundFrame
	if err := json.Unmarshal(raw, &frame); err != nil {
		return errs.Validation("malformed frame")
	}

	switch frame.Type {
	case frameMessage:
		return s.handleChatMessage(sess, frame.Content)
	case frameTyping:
		s.hub.Publish(sess.Room.ID, typingFrame(sess.User.ID, sess.User.Username, frame.Typing))
		return nil
	case frameUserUpdate:
		return s.handleUserUpdate(sess, frame.Username, frame.Color)
	default:
		return errs.Validation("unknown frame type: " + frame.Type)
	}
}

func (s *Service) handleChatMessage(sess *Session, content string) error {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil
	}

	msg := models.Message{
		ID:          uuid.NewString(),
		RoomID:      sess.Room.ID,
		UserID:      sess.User.ID,
		Content:     content,
		MessageType: models.MessageTypeText,
	}
	if err := s.db.Create(&msg).Error; err != nil {
		return errs.Internal("failed to save message", err)
	}

	s.hub.Publish(sess.Room.ID, chatMessageFrame(
		content, sess.User.ID, sess.User.Username, sess.User.Color, msg.ID))
	return nil
}

func (s *Service) handleUserUpdate(sess *Session, newUsername, newColor string) error {
	newUsername = strings.TrimSpace(newUsername)

	renamed := newUsername != "" && newUsername != sess.User.Username
	recolored := newColor != "" && newColor != sess.User.Color
	if !renamed && !recolored {
		return nil
	}

	updates := map[string]interface{}{}
	if renamed {
		updates["username"] = newUsername
	}
	if recolored {
		updates["color"] = newColor
	}
	if err := s.db.Model(&models.ChatUser{}).Where("id = ?", sess.User.ID).
		Updates(updates).Error; err != nil {
		return errs.Internal("failed to update user", err)
	}

	oldUsername := sess.User.Username
	if renamed {
		sess.User.Username = newUsername
	}
	if recolored {
		sess.User.Color = newColor
	}

	// Color changes are silent; only a rename is announced.
	if renamed {
		s.hub.Publish(sess.Room.ID, systemFrame(
			oldUsername+" is now known as "+newUsername, sess.User.ID, newUsername))
		s.broadcastUserList(sess.Room.ID)
	}
	return nil
}

// OnlineUsers derives the presence snapshot from persisted connection rows,
// sorted by connect time for stable output.
func (s *Service) OnlineUsers(roomID string) ([]PresenceEntry, error) {
	var conns []models.ActiveConnection
	if err := s.db.Preload("User").Where("room_id = ?", roomID).
		Order("connected_at ASC").Find(&conns).Error; err != nil {
		return nil, errs.Internal("failed to load presence", err)
	}

	users := make([]PresenceEntry, 0, len(conns))
	for _, conn := range conns {
		users = append(users, PresenceEntry{
			ID:       conn.User.ID,
			Username: conn.User.Username,
			Color:    conn.User.Color,
			JoinedAt: conn.ConnectedAt.UTC().Format(time.RFC3339),
		})
	}
	return users, nil
}

func (s *Service) broadcastUserList(roomID string) {
	users, err := s.OnlineUsers(roomID)
	if err != nil {
		s.log.Error().Err(err).Str("room_id", roomID).Msg("failed to build user list")
		return
	}
	s.hub.Publish(roomID, userListFrame(users))
}

// getOrCreateUser is a conditional insert keyed on the session token. A
// reconnect under a known session rebinds username, color and online flag
// to the existing row.
func (s *Service) getOrCreateUser(username, color, sessionID string) (*models.ChatUser, error) {
	user := models.ChatUser{
		ID:        uuid.NewString(),
		SessionID: sessionID,
		Username:  username,
		Color:     color,
		IsOnline:  true,
		LastSeen:  time.Now(),
	}
	err := s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "session_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"username", "color", "is_online", "last_seen"}),
	}).Create(&user).Error
	if err != nil {
		return nil, errs.Internal("failed to upsert user", err)
	}

	// Re-read: when the session already existed the generated id above was
	// discarded in favor of the stored row.
	var out models.ChatUser
	if err := s.db.Where("session_id = ?", sessionID).First(&out).Error; err != nil {
		return nil, errs.Internal("failed to load user", err)
	}
	return &out, nil
}

// getOrCreateRoom allows clients to name arbitrary rooms: an unknown id is
// created on first join as a public room with default capacity.
func (s *Service) getOrCreateRoom(roomID string) (*models.ChatRoom, error) {
	shortID := roomID
	if len(shortID) > 8 {
		shortID = shortID[:8]
	}
	room := models.ChatRoom{
		ID:       roomID,
		Name:     "Room " + shortID,
		IsPublic: true,
		MaxUsers: 100,
	}
	if err := s.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&room).Error; err != nil {
		return nil, errs.Internal("failed to create room", err)
	}

	var out models.ChatRoom
	if err := s.db.First(&out, "id = ?", roomID).Error; err != nil {
		return nil, errs.Internal("failed to load room", err)
	}
	return &out, nil
}
