package signal

import (
	"encoding/json"

	"github.com/rs/zerolog/log"

	"github.com/edurelay/liveclass/internal/app"
)

// Session-establishment relay. Offers, answers and candidates are
// forwarded byte-exact to the named target only, annotated with the
// sender's identity. A missing room or target drops the frame: a stale
// target is normal churn, not an error.

func (rt *Router) handleOffer(conn app.Conn, data []byte) {
	var p webrtcOfferMsg
	if err := json.Unmarshal(data, &p); err != nil {
		log.Debug().Err(err).Str("module", "signal").Msg("bad offer payload")
		return
	}
	from, target, ok := rt.relayPair(conn, p.RoomID, p.TargetUserID)
	if !ok {
		return
	}
	rt.unicast(target, webrtcOfferOut{
		Type:       TypeWebRTCOffer,
		FromUserID: from.UserID,
		Offer:      p.Offer,
	})
}

func (rt *Router) handleAnswer(conn app.Conn, data []byte) {
	var p webrtcAnswerMsg
	if err := json.Unmarshal(data, &p); err != nil {
		log.Debug().Err(err).Str("module", "signal").Msg("bad answer payload")
		return
	}
	from, target, ok := rt.relayPair(conn, p.RoomID, p.TargetUserID)
	if !ok {
		return
	}
	rt.unicast(target, webrtcAnswerOut{
		Type:       TypeWebRTCAnswer,
		FromUserID: from.UserID,
		Answer:     p.Answer,
	})
}

func (rt *Router) handleCandidate(conn app.Conn, data []byte) {
	var p iceCandidateMsg
	if err := json.Unmarshal(data, &p); err != nil {
		log.Debug().Err(err).Str("module", "signal").Msg("bad candidate payload")
		return
	}
	from, target, ok := rt.relayPair(conn, p.RoomID, p.TargetUserID)
	if !ok {
		return
	}
	rt.unicast(target, iceCandidateOut{
		Type:       TypeICECandidate,
		FromUserID: from.UserID,
		Candidate:  p.Candidate,
	})
}

func (rt *Router) relayPair(conn app.Conn, roomID, targetUserID string) (from, target *app.Member, ok bool) {
	from, ok = rt.sender(conn, roomID)
	if !ok {
		return nil, nil, false
	}
	target, ok = rt.reg.Member(roomID, targetUserID)
	if !ok {
		log.Debug().Str("module", "signal").Str("room", roomID).
			Str("target", targetUserID).Msg("relay target not present")
		return nil, nil, false
	}
	return from, target, true
}
