package signal

import (
	"encoding/json"

	"github.com/rs/zerolog/log"

	"github.com/edurelay/liveclass/internal/app"
	"github.com/edurelay/liveclass/internal/domain"
)

func (rt *Router) handleToggleAudio(conn app.Conn, data []byte) {
	var p toggleMsg
	if err := json.Unmarshal(data, &p); err != nil {
		log.Debug().Err(err).Str("module", "signal").Msg("bad toggle-audio payload")
		return
	}
	m, ok := rt.sender(conn, p.RoomID)
	if !ok {
		return
	}
	rt.reg.SetAudioEnabled(p.RoomID, m.UserID, p.Enabled)
	rt.broadcast(rt.reg.OtherMembers(p.RoomID, m.UserID), toggleChangedOut{
		Type:    TypeAudioChanged,
		UserID:  m.UserID,
		Enabled: p.Enabled,
	})
}

func (rt *Router) handleToggleVideo(conn app.Conn, data []byte) {
	var p toggleMsg
	if err := json.Unmarshal(data, &p); err != nil {
		log.Debug().Err(err).Str("module", "signal").Msg("bad toggle-video payload")
		return
	}
	m, ok := rt.sender(conn, p.RoomID)
	if !ok {
		return
	}
	rt.reg.SetVideoEnabled(p.RoomID, m.UserID, p.Enabled)
	rt.broadcast(rt.reg.OtherMembers(p.RoomID, m.UserID), toggleChangedOut{
		Type:    TypeVideoChanged,
		UserID:  m.UserID,
		Enabled: p.Enabled,
	})
}

func (rt *Router) handleScreenShare(conn app.Conn, data []byte) {
	var p screenShareMsg
	if err := json.Unmarshal(data, &p); err != nil {
		log.Debug().Err(err).Str("module", "signal").Msg("bad screen-share payload")
		return
	}
	m, ok := rt.sender(conn, p.RoomID)
	if !ok {
		return
	}
	rt.reg.SetScreenSharing(p.RoomID, m.UserID, p.Sharing)
	rt.broadcast(rt.reg.OtherMembers(p.RoomID, m.UserID), screenShareChangedOut{
		Type:     TypeScreenShareChanged,
		UserID:   m.UserID,
		UserName: m.UserName,
		Sharing:  p.Sharing,
	})
}

func (rt *Router) handleRaiseHand(conn app.Conn, data []byte) {
	var p raiseHandMsg
	if err := json.Unmarshal(data, &p); err != nil {
		log.Debug().Err(err).Str("module", "signal").Msg("bad raise-hand payload")
		return
	}
	m, ok := rt.sender(conn, p.RoomID)
	if !ok {
		return
	}
	// Ephemeral: no registry state for raised hands.
	rt.broadcast(rt.reg.OtherMembers(p.RoomID, m.UserID), handRaisedOut{
		Type:     TypeHandRaised,
		UserID:   m.UserID,
		UserName: m.UserName,
		Raised:   p.Raised,
	})
}

// handleMute lets an instructor silence a participant. Anyone else
// issuing the command is ignored without a response: failing quiet
// avoids leaking room membership to unauthorized senders.
func (rt *Router) handleMute(conn app.Conn, data []byte) {
	var p muteParticipantMsg
	if err := json.Unmarshal(data, &p); err != nil {
		log.Debug().Err(err).Str("module", "signal").Msg("bad mute payload")
		return
	}
	m, ok := rt.sender(conn, p.RoomID)
	if !ok {
		return
	}
	if m.Role != domain.RoleInstructor {
		log.Warn().Str("module", "signal").Str("room", p.RoomID).
			Str("user", m.UserID).Str("target", p.TargetUserID).Msg("mute denied")
		return
	}
	target, ok := rt.reg.Member(p.RoomID, p.TargetUserID)
	if !ok {
		return
	}
	rt.reg.SetAudioEnabled(p.RoomID, target.UserID, false)
	log.Info().Str("module", "signal").Str("room", p.RoomID).
		Str("user", m.UserID).Str("target", target.UserID).Msg("force mute")
	rt.unicast(target, forceMuteOut{Type: TypeForceMute})
}
