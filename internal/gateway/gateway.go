// Package gateway is the composition root of the realtime core: it
// authenticates connections, runs the per-connection state machine and
// wires authorization, presence, session tracking and the relay
// together over one websocket endpoint.
package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/hireloop/sessiongate/internal/access"
	"github.com/hireloop/sessiongate/internal/auth"
	"github.com/hireloop/sessiongate/internal/domain"
	"github.com/hireloop/sessiongate/internal/metrics"
	"github.com/hireloop/sessiongate/internal/presence"
	"github.com/hireloop/sessiongate/internal/relay"
	"github.com/hireloop/sessiongate/internal/track"
)

type Gateway struct {
	auth     *auth.Authenticator
	access   *access.Authorizer
	presence *presence.Registry
	tracker  *track.Tracker
	relay    *relay.Relay

	joins *joinLimiter

	mu      sync.Mutex
	clients map[domain.ConnID]*client
}

func New(a *auth.Authenticator, az *access.Authorizer, pr *presence.Registry, tr *track.Tracker, rl *relay.Relay) *Gateway {
	return &Gateway{
		auth:     a,
		access:   az,
		presence: pr,
		tracker:  tr,
		relay:    rl,
		joins:    newJoinLimiter(10, time.Minute),
		clients:  make(map[domain.ConnID]*client),
	}
}

func (g *Gateway) register(c *client) {
	g.mu.Lock()
	g.clients[c.id] = c
	g.mu.Unlock()
	metrics.LiveConnections.Inc()
}

func (g *Gateway) lookup(id domain.ConnID) *client {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.clients[id]
}

func (g *Gateway) handleFrame(ctx context.Context, c *client, data []byte) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		log.Warn().Err(err).Str("module", "gateway").Str("conn", string(c.id)).Msg("bad frame")
		c.sendError("bad payload")
		return
	}

	switch env.Type {
	case evtJoinRoom:
		g.handleJoin(ctx, c, env)
	case evtLeaveRoom:
		g.handleLeave(ctx, c)
	case evtRoomCheck:
		g.handleRoomCheck(ctx, c, env)
	case evtOffer, evtAnswer, evtCandidate:
		g.handleSignal(c, env)
	case evtPing:
		c.send(map[string]string{"type": evtPong})
	default:
		log.Warn().Str("module", "gateway").Str("type", env.Type).Msg("unknown event")
	}
}

// handleJoin walks the Authenticated → Joined transition: authorize,
// acquire presence (evicting a sibling connection), open the session
// record, add to the relay. Any failed step leaves the connection in
// Authenticated with a specific error.
func (g *Gateway) handleJoin(ctx context.Context, c *client, env envelope) {
	room := domain.InterviewID(env.Room)
	if room == 0 {
		c.sendError("bad payload")
		return
	}
	if !g.joins.Allow(c.who.ID) {
		c.sendError("too many join attempts")
		return
	}

	// Joining while joined moves the connection: leave the old room
	// first, then run the full join sequence for the new one.
	if state, cur, _ := c.snapshot(); state == stateJoined {
		if cur == room {
			c.sendError("already joined")
			return
		}
		g.handleLeave(ctx, c)
	}

	if _, err := g.access.Authorize(ctx, c.who, room); err != nil {
		metrics.JoinsTotal.WithLabelValues("denied").Inc()
		c.sendError(denyReason(err))
		return
	}

	if evicted, ok := g.presence.Acquire(c.who.ID, c.id); ok {
		g.evict(ctx, evicted)
	}

	session, err := g.tracker.Open(ctx, c.who, room, c.id)
	if err != nil {
		g.presence.Release(c.who.ID, c.id)
		metrics.JoinsTotal.WithLabelValues("error").Inc()
		log.Error().Err(err).Str("module", "gateway").Str("conn", string(c.id)).Msg("open session")
		c.sendError("internal error")
		return
	}

	prior := g.relay.Join(room, c.id, c.who, c.tr)
	if !c.markJoined(room, session) {
		// Connection closed while the join was in flight; undo
		// instead of leaving a dead member in the room.
		g.relay.Leave(room, c.id)
		g.tracker.Close(ctx, session)
		g.presence.Release(c.who.ID, c.id)
		return
	}

	members := make([]domain.Identity, 0, len(prior))
	for _, p := range prior {
		members = append(members, p.Who)
	}
	metrics.JoinsTotal.WithLabelValues("ok").Inc()
	c.send(roomStateEvent{Type: evtRoomJoined, Room: int64(room), Members: members, Count: len(prior) + 1})

	// Only the members that were in the room first learn about the new
	// peer and initiate the offer; the joining side answers. The relay
	// hands out the prior set atomically with the insert, so for any
	// pair exactly one side is told to offer.
	if b, err := json.Marshal(peerEvent{Type: evtPeerJoined, Room: int64(room), User: c.who}); err == nil {
		for _, p := range prior {
			_ = g.relay.SendTo(room, p.Conn, b)
		}
	}
}

// handleLeave returns a joined connection to Authenticated. Cleanup is
// best-effort and ordered: session record, presence, membership.
func (g *Gateway) handleLeave(ctx context.Context, c *client) {
	room, session, wasJoined := c.markLeft()
	if !wasJoined {
		return
	}
	g.tracker.Close(ctx, session)
	g.presence.Release(c.who.ID, c.id)
	g.relay.Leave(room, c.id)
	c.send(map[string]string{"type": evtRoomLeft})
}

// handleRoomCheck gates time-sensitive activity (the question runner)
// on the interview's scheduled window plus buffer. Joining the video
// room itself is not time-gated.
func (g *Gateway) handleRoomCheck(ctx context.Context, c *client, env envelope) {
	room := domain.InterviewID(env.Room)
	if room == 0 {
		c.sendError("bad payload")
		return
	}
	if _, err := g.access.AuthorizeTimed(ctx, c.who, room); err != nil {
		c.sendError(denyReason(err))
		return
	}
	c.send(roomCheckEvent{Type: evtRoomCheck, Room: int64(room), Allowed: true})
}

// handleSignal forwards offer/answer/ice-candidate frames verbatim to
// every other member of the sender's room.
func (g *Gateway) handleSignal(c *client, env envelope) {
	state, room, _ := c.snapshot()
	if state != stateJoined {
		c.sendError("not joined")
		return
	}
	if env.Room != 0 && domain.InterviewID(env.Room) != room {
		c.sendError("not joined to this room")
		return
	}

	b, err := json.Marshal(signalEvent{Type: env.Type, Room: int64(room), From: int64(c.who.ID), Payload: env.Payload})
	if err != nil {
		log.Warn().Err(err).Str("module", "gateway").Str("conn", string(c.id)).Msg("drop malformed signal")
		return
	}
	res := g.relay.Broadcast(room, c.id, b)
	metrics.RelayedFramesTotal.Inc()
	if len(res.Dropped) > 0 {
		log.Warn().Str("module", "gateway").Int64("room", int64(room)).Int("dropped", len(res.Dropped)).Msg("backpressured members")
	}
}

// evict force-closes the prior connection of a user who just opened a
// new one. The old client gets a distinguishable notification before
// its transport closes, and its cleanup completes before the new join
// proceeds.
func (g *Gateway) evict(ctx context.Context, id domain.ConnID) {
	old := g.lookup(id)
	if old == nil {
		return
	}
	log.Info().Str("module", "gateway").Str("conn", string(id)).Msg("evicting superseded connection")
	old.send(errorEvent{Type: evtForceDisconnect, Reason: "signed in from another connection"})
	metrics.EvictionsTotal.Inc()
	g.teardown(ctx, old)
}

// teardown is the single Closed transition. Exactly one caller wins;
// every cleanup step is best-effort so a failing one never blocks the
// rest.
func (g *Gateway) teardown(ctx context.Context, c *client) {
	room, session, wasJoined, alreadyClosed := c.markClosed()
	if alreadyClosed {
		return
	}
	if wasJoined {
		g.tracker.Close(ctx, session)
		g.presence.Release(c.who.ID, c.id)
		g.relay.Leave(room, c.id)
	}

	g.mu.Lock()
	delete(g.clients, c.id)
	g.mu.Unlock()
	metrics.LiveConnections.Dec()

	if c.cancel != nil {
		c.cancel()
	}
	c.tr.Close()
	log.Info().Str("module", "gateway").Str("conn", string(c.id)).Int64("user", int64(c.who.ID)).Msg("connection closed")
}

func denyReason(err error) string {
	switch {
	case errors.Is(err, domain.ErrInterviewNotFound),
		errors.Is(err, domain.ErrNotParticipant),
		errors.Is(err, domain.ErrNotStarted),
		errors.Is(err, domain.ErrFinished):
		return err.Error()
	default:
		return "internal error"
	}
}
