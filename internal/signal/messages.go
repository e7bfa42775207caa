package signal

import (
	"encoding/json"

	"github.com/edurelay/liveclass/internal/domain"
)

// Inbound message types. The set is closed: router.go dispatches on
// these tags and drops anything else.
const (
	TypeJoinRoom        = "join-room"
	TypeWebRTCOffer     = "webrtc-offer"
	TypeWebRTCAnswer    = "webrtc-answer"
	TypeICECandidate    = "ice-candidate"
	TypeToggleAudio     = "toggle-audio"
	TypeToggleVideo     = "toggle-video"
	TypeScreenShare     = "screen-share"
	TypeChatMessage     = "chat-message"
	TypeRaiseHand       = "raise-hand"
	TypeMuteParticipant = "mute-participant"
	TypeLeaveRoom       = "leave-room"
)

// Outbound message types.
const (
	TypeExistingParticipants = "existing-participants"
	TypeChatHistory          = "chat-history"
	TypeUserJoined           = "user-joined"
	TypeUserLeft             = "user-left"
	TypeAudioChanged         = "participant-audio-changed"
	TypeVideoChanged         = "participant-video-changed"
	TypeScreenShareChanged   = "participant-screen-share-changed"
	TypeHandRaised           = "hand-raised"
	TypeForceMute            = "force-mute"
)

// Messages are flat JSON objects tagged by "type". Field names are the
// externally visible contract and must stay exactly as written.

type envelope struct {
	Type string `json:"type"`
}

type joinRoomMsg struct {
	RoomID   string      `json:"roomId"`
	UserID   string      `json:"userId"`
	UserName string      `json:"userName"`
	Role     domain.Role `json:"role"`
}

// Offer, answer and candidate bodies are opaque: the relay forwards
// them byte-exact and never parses them.

type webrtcOfferMsg struct {
	RoomID       string          `json:"roomId"`
	TargetUserID string          `json:"targetUserId"`
	Offer        json.RawMessage `json:"offer"`
}

type webrtcAnswerMsg struct {
	RoomID       string          `json:"roomId"`
	TargetUserID string          `json:"targetUserId"`
	Answer       json.RawMessage `json:"answer"`
}

type iceCandidateMsg struct {
	RoomID       string          `json:"roomId"`
	TargetUserID string          `json:"targetUserId"`
	Candidate    json.RawMessage `json:"candidate"`
}

type toggleMsg struct {
	RoomID  string `json:"roomId"`
	Enabled bool   `json:"enabled"`
}

type screenShareMsg struct {
	RoomID  string `json:"roomId"`
	Sharing bool   `json:"sharing"`
}

type chatMessageMsg struct {
	RoomID  string `json:"roomId"`
	Message string `json:"message"`
}

type raiseHandMsg struct {
	RoomID string `json:"roomId"`
	Raised bool   `json:"raised"`
}

type muteParticipantMsg struct {
	RoomID       string `json:"roomId"`
	TargetUserID string `json:"targetUserId"`
}

type leaveRoomMsg struct {
	RoomID string `json:"roomId"`
}

// --- outbound ---

type existingParticipantsOut struct {
	Type         string               `json:"type"`
	Participants []domain.Participant `json:"participants"`
}

type chatHistoryOut struct {
	Type     string               `json:"type"`
	Messages []domain.ChatMessage `json:"messages"`
}

type userJoinedOut struct {
	Type     string      `json:"type"`
	UserID   string      `json:"userId"`
	UserName string      `json:"userName"`
	Role     domain.Role `json:"role"`
}

type userLeftOut struct {
	Type     string `json:"type"`
	UserID   string `json:"userId"`
	UserName string `json:"userName"`
}

type webrtcOfferOut struct {
	Type       string          `json:"type"`
	FromUserID string          `json:"fromUserId"`
	Offer      json.RawMessage `json:"offer"`
}

type webrtcAnswerOut struct {
	Type       string          `json:"type"`
	FromUserID string          `json:"fromUserId"`
	Answer     json.RawMessage `json:"answer"`
}

type iceCandidateOut struct {
	Type       string          `json:"type"`
	FromUserID string          `json:"fromUserId"`
	Candidate  json.RawMessage `json:"candidate"`
}

type toggleChangedOut struct {
	Type    string `json:"type"`
	UserID  string `json:"userId"`
	Enabled bool   `json:"enabled"`
}

type screenShareChangedOut struct {
	Type     string `json:"type"`
	UserID   string `json:"userId"`
	UserName string `json:"userName"`
	Sharing  bool   `json:"sharing"`
}

type chatMessageOut struct {
	Type string `json:"type"`
	domain.ChatMessage
}

type handRaisedOut struct {
	Type     string `json:"type"`
	UserID   string `json:"userId"`
	UserName string `json:"userName"`
	Raised   bool   `json:"raised"`
}

type forceMuteOut struct {
	Type string `json:"type"`
}
