package signal

import (
	"encoding/json"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/edurelay/liveclass/internal/app"
	"github.com/edurelay/liveclass/internal/domain"
)

// JoinGate is consulted before a join-room claim is admitted. Identity
// and role arrive client-asserted; upstream authentication owns them, so
// the default gate admits everything. The composition root can inject a
// verifier that cross-checks the claim against the auth service.
type JoinGate interface {
	Admit(roomID, userID string, role domain.Role) bool
}

// AllowAllGate trusts every claim.
type AllowAllGate struct{}

func (AllowAllGate) Admit(string, string, domain.Role) bool { return true }

type binding struct {
	roomID string
	userID string
}

// Router is the single entry point for the signaling protocol: Handle
// dispatches one inbound frame to at most one registry mutation and the
// outbound unicasts/broadcasts it implies.
//
// Handle and Disconnect serialize on one mutex, so every event is
// processed to completion before the next one for any connection. All
// outbound sends are non-blocking, which keeps the critical section
// short and deadlock-free.
type Router struct {
	reg     *app.RoomRegistry
	gate    JoinGate
	chatLim *RateLimiter

	mu    sync.Mutex
	bound map[string]binding // conn id -> room+identity
}

func NewRouter(reg *app.RoomRegistry, gate JoinGate, chatLim *RateLimiter) *Router {
	if gate == nil {
		gate = AllowAllGate{}
	}
	return &Router{
		reg:     reg,
		gate:    gate,
		chatLim: chatLim,
		bound:   make(map[string]binding),
	}
}

// Handle processes one inbound frame from conn. Unknown types, frames
// that are not JSON and frames referencing rooms the connection is not
// bound to are dropped silently: the protocol is best-effort and never
// reports errors back to the sender.
func (rt *Router) Handle(conn app.Conn, data []byte) {
	rt.mu.Lock()
	defer rt.mu.Unlock()

	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		log.Debug().Err(err).Str("module", "signal").Str("conn", conn.ID()).Msg("bad json frame")
		return
	}

	switch env.Type {
	case TypeJoinRoom:
		rt.handleJoin(conn, data)
	case TypeWebRTCOffer:
		rt.handleOffer(conn, data)
	case TypeWebRTCAnswer:
		rt.handleAnswer(conn, data)
	case TypeICECandidate:
		rt.handleCandidate(conn, data)
	case TypeToggleAudio:
		rt.handleToggleAudio(conn, data)
	case TypeToggleVideo:
		rt.handleToggleVideo(conn, data)
	case TypeScreenShare:
		rt.handleScreenShare(conn, data)
	case TypeChatMessage:
		rt.handleChat(conn, data)
	case TypeRaiseHand:
		rt.handleRaiseHand(conn, data)
	case TypeMuteParticipant:
		rt.handleMute(conn, data)
	case TypeLeaveRoom:
		rt.handleLeave(conn, data)
	default:
		log.Warn().Str("module", "signal").Str("type", env.Type).Msg("unknown message type")
	}
}

// Disconnect is the transport-level close path. It resolves the
// connection to its identity through the registry's reverse lookup, so
// a connection that was replaced by a rejoin resolves to nobody and the
// cleanup is a no-op for the room.
func (rt *Router) Disconnect(conn app.Conn) {
	rt.mu.Lock()
	defer rt.mu.Unlock()

	b, ok := rt.bound[conn.ID()]
	delete(rt.bound, conn.ID())
	if !ok {
		return
	}
	userID, ok := rt.reg.FindByConn(b.roomID, conn.ID())
	if !ok {
		log.Debug().Str("module", "signal").Str("conn", conn.ID()).
			Str("room", b.roomID).Msg("disconnect of replaced connection")
		return
	}
	rt.removeAndAnnounce(b.roomID, userID)
}

// sender resolves the participant behind conn for an event claiming
// roomID. Identity always comes from the connection binding, never from
// the payload, so a sender cannot speak as someone else or act in a
// room it has not joined.
func (rt *Router) sender(conn app.Conn, roomID string) (*app.Member, bool) {
	b, ok := rt.bound[conn.ID()]
	if !ok || b.roomID != roomID {
		return nil, false
	}
	userID, ok := rt.reg.FindByConn(roomID, conn.ID())
	if !ok {
		return nil, false
	}
	return rt.reg.Member(roomID, userID)
}

// removeAndAnnounce is the shared tail of leave-room and disconnect:
// drop the participant (deleting the room if it empties) and tell the
// remaining members.
func (rt *Router) removeAndAnnounce(roomID, userID string) {
	m := rt.reg.RemoveParticipant(roomID, userID)
	if m == nil {
		return
	}
	rt.broadcast(rt.reg.Members(roomID), userLeftOut{
		Type:     TypeUserLeft,
		UserID:   m.UserID,
		UserName: m.UserName,
	})
}

func (rt *Router) unicast(m *app.Member, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("marshal outbound")
		return
	}
	if err := m.Conn.TrySend(b); err != nil {
		log.Warn().Err(err).Str("module", "signal").Str("user", m.UserID).Msg("dropped frame")
	}
}

func (rt *Router) broadcast(members []*app.Member, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("marshal outbound")
		return
	}
	for _, m := range members {
		if err := m.Conn.TrySend(b); err != nil {
			log.Warn().Err(err).Str("module", "signal").Str("user", m.UserID).Msg("dropped frame")
		}
	}
}
