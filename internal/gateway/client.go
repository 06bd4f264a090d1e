package gateway

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/hireloop/sessiongate/internal/domain"
	"github.com/hireloop/sessiongate/internal/relay"
	"github.com/hireloop/sessiongate/internal/track"
)

// connState tracks one connection through its lifecycle. Connecting is
// implicit: a client exists only after authentication succeeded.
type connState int

const (
	stateAuthenticated connState = iota
	stateJoined
	stateClosed
)

// client is the per-connection state machine. Message handling for one
// client is serialized by its read pump; handlers of different clients
// interleave freely, so shared components own their own locks and the
// client's fields are guarded here.
type client struct {
	id     domain.ConnID
	who    domain.Identity
	tr     transport
	cancel context.CancelFunc

	mu      sync.Mutex
	state   connState
	room    domain.InterviewID
	session track.SessionID
}

func (c *client) snapshot() (connState, domain.InterviewID, track.SessionID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state, c.room, c.session
}

// markJoined flips Authenticated → Joined. It fails if the connection
// closed while the join was in flight, so a dead connection is never
// added to a room.
func (c *client) markJoined(room domain.InterviewID, session track.SessionID) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == stateClosed {
		return false
	}
	c.state = stateJoined
	c.room = room
	c.session = session
	return true
}

// markLeft flips Joined → Authenticated and hands back what must be
// cleaned up. Idempotent for clients that were not joined.
func (c *client) markLeft() (room domain.InterviewID, session track.SessionID, wasJoined bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != stateJoined {
		return 0, 0, false
	}
	c.state = stateAuthenticated
	room, session = c.room, c.session
	c.room, c.session = 0, 0
	return room, session, true
}

// markClosed is terminal. Returns what was held at close time; the
// caller runs the cleanup sequence exactly once.
func (c *client) markClosed() (room domain.InterviewID, session track.SessionID, wasJoined, alreadyClosed bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == stateClosed {
		return 0, 0, false, true
	}
	wasJoined = c.state == stateJoined
	room, session = c.room, c.session
	c.state = stateClosed
	return room, session, wasJoined, false
}

func (c *client) send(v any) {
	b, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Str("module", "gateway").Str("conn", string(c.id)).Msg("marshal outbound event")
		return
	}
	if err := c.tr.TrySend(relay.Frame(b)); err != nil {
		log.Warn().Err(err).Str("module", "gateway").Str("conn", string(c.id)).Msg("drop outbound event")
	}
}

func (c *client) sendError(reason string) {
	c.send(errorEvent{Type: evtError, Reason: reason})
}
