package gateway

import (
	"encoding/json"

	"github.com/hireloop/sessiongate/internal/domain"
)

// Client-to-server event types.
const (
	evtJoinRoom  = "join-room"
	evtLeaveRoom = "leave-room"
	evtRoomCheck = "room-check"
	evtOffer     = "offer"
	evtAnswer    = "answer"
	evtCandidate = "ice-candidate"
	evtPing      = "ping"
)

// Server-to-client event types.
const (
	evtRoomJoined      = "room-joined"
	evtRoomLeft        = "room-left"
	evtPeerJoined      = "peer-joined"
	evtError           = "error"
	evtForceDisconnect = "force-disconnect"
	evtPong            = "pong"
)

// envelope is the routing shell of every inbound frame. Payload stays
// opaque; the gateway forwards it without looking inside.
type envelope struct {
	Type    string          `json:"type"`
	Room    int64           `json:"room,omitempty"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// signalEvent is a forwarded offer/answer/candidate, stamped with the
// sender so the receiving peer knows whom to answer.
type signalEvent struct {
	Type    string          `json:"type"`
	Room    int64           `json:"room"`
	From    int64           `json:"from"`
	Payload json.RawMessage `json:"payload"`
}

type errorEvent struct {
	Type   string `json:"type"`
	Reason string `json:"reason"`
}

type peerEvent struct {
	Type string          `json:"type"`
	Room int64           `json:"room"`
	User domain.Identity `json:"user"`
}

type roomCheckEvent struct {
	Type    string `json:"type"`
	Room    int64  `json:"room"`
	Allowed bool   `json:"allowed"`
}

type roomStateEvent struct {
	Type    string            `json:"type"`
	Room    int64             `json:"room"`
	Members []domain.Identity `json:"members"`
	Count   int               `json:"count"`
}
