package signal

import (
	"encoding/json"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/edurelay/liveclass/internal/app"
	"github.com/edurelay/liveclass/internal/domain"
)

// handleChat appends to the room's chat log before broadcasting, so the
// order later joiners read from chat-history matches what the room saw
// live. The broadcast includes the sender. The message body is opaque
// text, stored and relayed exactly as received.
func (rt *Router) handleChat(conn app.Conn, data []byte) {
	var p chatMessageMsg
	if err := json.Unmarshal(data, &p); err != nil {
		log.Debug().Err(err).Str("module", "signal").Msg("bad chat payload")
		return
	}
	m, ok := rt.sender(conn, p.RoomID)
	if !ok {
		return
	}
	if rt.chatLim != nil && !rt.chatLim.Allow(p.RoomID+"/"+m.UserID) {
		log.Warn().Str("module", "signal").Str("room", p.RoomID).
			Str("user", m.UserID).Msg("chat rate limited")
		return
	}

	msg := domain.ChatMessage{
		UserID:    m.UserID,
		UserName:  m.UserName,
		Message:   p.Message,
		Timestamp: time.Now().UTC(),
	}
	if !rt.reg.AppendChat(p.RoomID, msg) {
		return
	}
	rt.broadcast(rt.reg.Members(p.RoomID), chatMessageOut{
		Type:        TypeChatMessage,
		ChatMessage: msg,
	})
}
