package app

import (
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/edurelay/liveclass/internal/domain"
)

// Conn is the outbound side of one physical client connection.
// TrySend must not block: on a full buffer it returns an error and the
// frame is dropped, which is acceptable for best-effort signaling.
type Conn interface {
	ID() string
	TrySend(data []byte) error
	Close() error
}

// Member is a participant together with the connection currently bound
// to that identity. Participant fields other than the toggles are fixed
// at join time; toggles are only mutated through registry setters.
type Member struct {
	domain.Participant
	Conn Conn
}

type room struct {
	id        string
	createdAt time.Time
	members   map[string]*Member // keyed by userId
	chat      []domain.ChatMessage
}

// RoomRegistry owns all live rooms and their participants. It is the
// only shared mutable state in the relay; every access goes through its
// lock, so each operation is atomic from the caller's perspective.
//
// A room exists iff it has at least one member: rooms are created lazily
// by AddParticipant and deleted by RemoveParticipant when the last
// member goes.
type RoomRegistry struct {
	mu    sync.RWMutex
	rooms map[string]*room
}

func NewRoomRegistry() *RoomRegistry {
	return &RoomRegistry{rooms: make(map[string]*room)}
}

// AddParticipant inserts m into the room, creating the room if this is
// its first member. Insertion is idempotent by userId: a second join
// with the same identity replaces the entry in place, and the previous
// member is returned so the caller can retire its connection.
func (r *RoomRegistry) AddParticipant(roomID string, m *Member) (prev *Member) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rm, ok := r.rooms[roomID]
	if !ok {
		rm = &room{
			id:        roomID,
			createdAt: time.Now().UTC(),
			members:   make(map[string]*Member),
		}
		r.rooms[roomID] = rm
		log.Info().Str("module", "app.registry").Str("room", roomID).Msg("room created")
	}
	prev = rm.members[m.UserID]
	rm.members[m.UserID] = m
	log.Info().Str("module", "app.registry").Str("room", roomID).
		Str("user", m.UserID).Str("role", string(m.Role)).Msg("participant added")
	return prev
}

// RemoveParticipant removes and returns the entry for userId, or nil if
// absent. If the room becomes empty it is deleted in the same critical
// section, so callers never observe a zero-member room.
func (r *RoomRegistry) RemoveParticipant(roomID, userID string) *Member {
	r.mu.Lock()
	defer r.mu.Unlock()

	rm, ok := r.rooms[roomID]
	if !ok {
		return nil
	}
	m, ok := rm.members[userID]
	if !ok {
		return nil
	}
	delete(rm.members, userID)
	log.Info().Str("module", "app.registry").Str("room", roomID).Str("user", userID).Msg("participant removed")
	if len(rm.members) == 0 {
		delete(r.rooms, roomID)
		log.Info().Str("module", "app.registry").Str("room", roomID).Msg("room deleted")
	}
	return m
}

// Member returns the entry for userId in the room.
func (r *RoomRegistry) Member(roomID, userID string) (*Member, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rm, ok := r.rooms[roomID]
	if !ok {
		return nil, false
	}
	m, ok := rm.members[userID]
	return m, ok
}

// FindByConn is the reverse lookup used when a transport-level event
// carries only the connection, not the identity. It only matches the
// member whose bound connection is connID right now; a connection that
// was replaced by a rejoin no longer resolves to anyone.
func (r *RoomRegistry) FindByConn(roomID, connID string) (userID string, ok bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rm, ok := r.rooms[roomID]
	if !ok {
		return "", false
	}
	for id, m := range rm.members {
		if m.Conn != nil && m.Conn.ID() == connID {
			return id, true
		}
	}
	return "", false
}

// Members returns a snapshot of every member in the room, sender
// included. Used for chat broadcast.
func (r *RoomRegistry) Members(roomID string) []*Member {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rm, ok := r.rooms[roomID]
	if !ok {
		return nil
	}
	out := make([]*Member, 0, len(rm.members))
	for _, m := range rm.members {
		out = append(out, m)
	}
	return out
}

// OtherMembers returns a snapshot of every member except excludeUserID.
func (r *RoomRegistry) OtherMembers(roomID, excludeUserID string) []*Member {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rm, ok := r.rooms[roomID]
	if !ok {
		return nil
	}
	out := make([]*Member, 0, len(rm.members))
	for id, m := range rm.members {
		if id != excludeUserID {
			out = append(out, m)
		}
	}
	return out
}

// OtherParticipants is the state snapshot sent to a new joiner: copies
// of every participant record except the joiner's own.
func (r *RoomRegistry) OtherParticipants(roomID, excludeUserID string) []domain.Participant {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rm, ok := r.rooms[roomID]
	if !ok {
		return nil
	}
	out := make([]domain.Participant, 0, len(rm.members))
	for id, m := range rm.members {
		if id != excludeUserID {
			out = append(out, m.Participant)
		}
	}
	return out
}

// SetAudioEnabled updates the flag and reports whether the participant
// was found.
func (r *RoomRegistry) SetAudioEnabled(roomID, userID string, enabled bool) bool {
	return r.update(roomID, userID, func(m *Member) { m.AudioEnabled = enabled })
}

func (r *RoomRegistry) SetVideoEnabled(roomID, userID string, enabled bool) bool {
	return r.update(roomID, userID, func(m *Member) { m.VideoEnabled = enabled })
}

func (r *RoomRegistry) SetScreenSharing(roomID, userID string, sharing bool) bool {
	return r.update(roomID, userID, func(m *Member) { m.ScreenSharing = sharing })
}

func (r *RoomRegistry) update(roomID, userID string, fn func(*Member)) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	rm, ok := r.rooms[roomID]
	if !ok {
		return false
	}
	m, ok := rm.members[userID]
	if !ok {
		return false
	}
	fn(m)
	return true
}

// AppendChat appends msg to the room's chat log. Append order is the
// order later joiners see in their history.
func (r *RoomRegistry) AppendChat(roomID string, msg domain.ChatMessage) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	rm, ok := r.rooms[roomID]
	if !ok {
		return false
	}
	rm.chat = append(rm.chat, msg)
	return true
}

// ChatHistory returns a copy of the room's chat log in append order.
func (r *RoomRegistry) ChatHistory(roomID string) []domain.ChatMessage {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rm, ok := r.rooms[roomID]
	if !ok {
		return nil
	}
	out := make([]domain.ChatMessage, len(rm.chat))
	copy(out, rm.chat)
	return out
}

// RoomStat is the read-only view exposed over the HTTP API.
type RoomStat struct {
	RoomID       string    `json:"roomId"`
	Participants int       `json:"participants"`
	CreatedAt    time.Time `json:"createdAt"`
}

func (r *RoomRegistry) Stats() []RoomStat {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]RoomStat, 0, len(r.rooms))
	for id, rm := range r.rooms {
		out = append(out, RoomStat{
			RoomID:       id,
			Participants: len(rm.members),
			CreatedAt:    rm.createdAt,
		})
	}
	return out
}
