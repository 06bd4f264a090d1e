// Package relay fans signaling frames out to room members.
//
// The relay never interprets payloads beyond routing fields; SDP and
// ICE contents pass through verbatim.
package relay

import (
	"errors"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/hireloop/sessiongate/internal/domain"
)

var ErrNotMember = errors.New("not a room member")

// Frame is a raw, already-encoded signaling message.
type Frame []byte

// Conn is the transport endpoint of one room member. Owned by the
// gateway; the relay never closes it.
type Conn interface {
	TrySend(Frame) error
}

type member struct {
	who  domain.Identity
	conn Conn
}

// Peer identifies one room member to callers.
type Peer struct {
	Conn domain.ConnID
	Who  domain.Identity
}

// PublishResult reports delivery stats and backpressured members.
type PublishResult struct {
	SentTo  int
	Dropped []domain.ConnID
}

// Relay owns the per-room membership sets. Fan-out goes to every
// member except the sender; rooms with more than two members are
// served the same way (N-way mesh, no pair cap).
type Relay struct {
	mu    sync.RWMutex
	rooms map[domain.InterviewID]map[domain.ConnID]member
}

func NewRelay() *Relay {
	return &Relay{rooms: make(map[domain.InterviewID]map[domain.ConnID]member)}
}

// Join adds the member and returns the members that were already in
// the room, in one critical section. Concurrent joiners therefore
// agree on who was there first: for any pair, exactly one side sees
// the other in its prior snapshot, so exactly one side gets announced
// to and initiates the offer.
func (r *Relay) Join(room domain.InterviewID, conn domain.ConnID, who domain.Identity, c Conn) []Peer {
	r.mu.Lock()
	defer r.mu.Unlock()
	members, ok := r.rooms[room]
	if !ok {
		members = make(map[domain.ConnID]member)
		r.rooms[room] = members
	}
	prior := make([]Peer, 0, len(members))
	for id, m := range members {
		prior = append(prior, Peer{Conn: id, Who: m.who})
	}
	members[conn] = member{who: who, conn: c}
	log.Info().Str("module", "relay").Int64("room", int64(room)).Str("conn", string(conn)).Int64("user", int64(who.ID)).Msg("member added")
	return prior
}

// SendTo delivers data to one member of room, if still present.
func (r *Relay) SendTo(room domain.InterviewID, to domain.ConnID, data Frame) error {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.rooms[room][to]
	if !ok {
		return ErrNotMember
	}
	return m.conn.TrySend(data)
}

func (r *Relay) Leave(room domain.InterviewID, conn domain.ConnID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	members, ok := r.rooms[room]
	if !ok {
		return
	}
	delete(members, conn)
	if len(members) == 0 {
		delete(r.rooms, room)
	}
	log.Info().Str("module", "relay").Int64("room", int64(room)).Str("conn", string(conn)).Msg("member removed")
}

// Broadcast forwards data to every member of room except from.
// Delivery is best-effort; backpressured members are reported, not
// retried.
func (r *Relay) Broadcast(room domain.InterviewID, from domain.ConnID, data Frame) PublishResult {
	r.mu.RLock()
	defer r.mu.RUnlock()
	res := PublishResult{}
	for id, m := range r.rooms[room] {
		if id == from {
			continue
		}
		if err := m.conn.TrySend(data); err != nil {
			res.Dropped = append(res.Dropped, id)
			continue
		}
		res.SentTo++
	}
	return res
}

// Members returns a snapshot of the identities currently in room.
func (r *Relay) Members(room domain.InterviewID) []domain.Identity {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.Identity, 0, len(r.rooms[room]))
	for _, m := range r.rooms[room] {
		out = append(out, m.who)
	}
	return out
}

func (r *Relay) MemberCount(room domain.InterviewID) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.rooms[room])
}
