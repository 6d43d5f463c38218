package ws

import (
	"encoding/json"
	"time"
)

// Inbound frame types.
const (
	frameMessage    = "message"
	frameTyping     = "typing"
	frameUserUpdate = "user_update"
)

// CloseRoomFull is the close code sent when a room is at capacity.
const CloseRoomFull = 4001

// inboundFrame is the envelope for everything a client sends.
type inboundFrame struct {
	Type     string `json:"type"`
	Content  string `json:"content"`
	Typing   bool   `json:"typing"`
	Username string `json:"username"`
	Color    string `json:"color"`
}

// PresenceEntry is one user in a user_list snapshot.
type PresenceEntry struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Color    string `json:"color"`
	JoinedAt string `json:"joined_at"`
}

func now() string {
	return time.Now().UTC().Format(time.RFC3339)
}

func chatMessageFrame(content, userID, username, color, messageID string) []byte {
	frame, _ := json.Marshal(map[string]interface{}{
		"type":       "message",
		"message":    content,
		"user_id":    userID,
		"username":   username,
		"user_color": color,
		"message_id": messageID,
		"timestamp":  now(),
	})
	return frame
}

func systemFrame(message, userID, username string) []byte {
	frame, _ := json.Marshal(map[string]interface{}{
		"type":      "system",
		"message":   message,
		"user_id":   userID,
		"username":  username,
		"timestamp": now(),
	})
	return frame
}

func typingFrame(userID, username string, typing bool) []byte {
	frame, _ := json.Marshal(map[string]interface{}{
		"type":      "typing",
		"user_id":   userID,
		"username":  username,
		"typing":    typing,
		"timestamp": now(),
	})
	return frame
}

func userListFrame(users []PresenceEntry) []byte {
	frame, _ := json.Marshal(map[string]interface{}{
		"type":      "user_list",
		"users":     users,
		"timestamp": now(),
	})
	return frame
}
