package signal

import (
	"encoding/json"

	"github.com/rs/zerolog/log"

	"github.com/edurelay/liveclass/internal/app"
	"github.com/edurelay/liveclass/internal/domain"
)

func (rt *Router) handleJoin(conn app.Conn, data []byte) {
	var p joinRoomMsg
	if err := json.Unmarshal(data, &p); err != nil {
		log.Debug().Err(err).Str("module", "signal").Msg("bad join payload")
		return
	}
	if p.RoomID == "" || p.UserID == "" || !p.Role.Valid() {
		log.Debug().Str("module", "signal").Str("conn", conn.ID()).Msg("incomplete join payload")
		return
	}
	if !rt.gate.Admit(p.RoomID, p.UserID, p.Role) {
		log.Warn().Str("module", "signal").Str("room", p.RoomID).
			Str("user", p.UserID).Str("role", string(p.Role)).Msg("join rejected by gate")
		return
	}

	// One room per connection: joining while bound elsewhere performs
	// the full leave of the previous room first. Rejoining the room the
	// connection is already bound to with the same identity is not a
	// leave: AddParticipant replaces the entry in place and the room,
	// its chat log and the peers' view of the participant survive.
	if b, ok := rt.bound[conn.ID()]; ok && (b.roomID != p.RoomID || b.userID != p.UserID) {
		if userID, ok := rt.reg.FindByConn(b.roomID, conn.ID()); ok {
			rt.removeAndAnnounce(b.roomID, userID)
		}
	}

	m := &app.Member{
		Participant: domain.Participant{
			UserID:       p.UserID,
			UserName:     p.UserName,
			Role:         p.Role,
			AudioEnabled: true,
			VideoEnabled: true,
		},
		Conn: conn,
	}
	prev := rt.reg.AddParticipant(p.RoomID, m)
	rt.bound[conn.ID()] = binding{roomID: p.RoomID, userID: p.UserID}

	// Rejoin from a new connection replaces the old one, which is closed
	// here so its reader unblocks. Its disconnect event later resolves
	// to nobody and leaves the fresh entry alone.
	if prev != nil && prev.Conn.ID() != conn.ID() {
		log.Info().Str("module", "signal").Str("room", p.RoomID).
			Str("user", p.UserID).Str("conn", prev.Conn.ID()).Msg("closing replaced connection")
		_ = prev.Conn.Close()
	}

	log.Info().Str("module", "signal").Str("room", p.RoomID).
		Str("user", p.UserID).Str("conn", conn.ID()).Msg("join")

	rt.unicast(m, existingParticipantsOut{
		Type:         TypeExistingParticipants,
		Participants: rt.reg.OtherParticipants(p.RoomID, p.UserID),
	})
	rt.unicast(m, chatHistoryOut{
		Type:     TypeChatHistory,
		Messages: rt.reg.ChatHistory(p.RoomID),
	})
	rt.broadcast(rt.reg.OtherMembers(p.RoomID, p.UserID), userJoinedOut{
		Type:     TypeUserJoined,
		UserID:   p.UserID,
		UserName: p.UserName,
		Role:     p.Role,
	})
}

func (rt *Router) handleLeave(conn app.Conn, data []byte) {
	var p leaveRoomMsg
	if err := json.Unmarshal(data, &p); err != nil {
		log.Debug().Err(err).Str("module", "signal").Msg("bad leave payload")
		return
	}
	m, ok := rt.sender(conn, p.RoomID)
	if !ok {
		return
	}
	log.Info().Str("module", "signal").Str("room", p.RoomID).Str("user", m.UserID).Msg("leave")
	delete(rt.bound, conn.ID())
	rt.removeAndAnnounce(p.RoomID, m.UserID)
}
