package relay

import (
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/hireloop/sessiongate/internal/domain"
)

type fakeConn struct {
	frames []Frame
	fail   bool
}

func (c *fakeConn) TrySend(f Frame) error {
	if c.fail {
		return errors.New("backpressure")
	}
	c.frames = append(c.frames, f)
	return nil
}

func TestJoin_ReturnsPriorMembers(t *testing.T) {
	r := NewRelay()

	if prior := r.Join(7, "c1", domain.Identity{ID: 1}, &fakeConn{}); len(prior) != 0 {
		t.Errorf("first joiner saw prior = %v, want empty", prior)
	}
	prior := r.Join(7, "c2", domain.Identity{ID: 2}, &fakeConn{})
	if len(prior) != 1 || prior[0].Conn != "c1" || prior[0].Who.ID != 1 {
		t.Errorf("second joiner saw prior = %v, want [c1/user 1]", prior)
	}
}

func TestJoin_ConcurrentJoinersAgreeOnWhoWasFirst(t *testing.T) {
	// For every pair of members, exactly one must have seen the other
	// in its prior snapshot, or both sides would initiate an offer.
	const n = 16
	r := NewRelay()

	priors := make([]int, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			conn := domain.ConnID(fmt.Sprintf("c%d", i))
			priors[i] = len(r.Join(7, conn, domain.Identity{ID: domain.UserID(i + 1)}, &fakeConn{}))
		}(i)
	}
	wg.Wait()

	total := 0
	for _, p := range priors {
		total += p
	}
	if want := n * (n - 1) / 2; total != want {
		t.Errorf("sum of prior sizes = %d, want %d (one announcement per pair)", total, want)
	}
	if r.MemberCount(7) != n {
		t.Errorf("MemberCount = %d, want %d", r.MemberCount(7), n)
	}
}

func TestSendTo_TargetsOneMember(t *testing.T) {
	r := NewRelay()
	target := &fakeConn{}
	other := &fakeConn{}
	r.Join(7, "c1", domain.Identity{ID: 1}, target)
	r.Join(7, "c2", domain.Identity{ID: 2}, other)

	if err := r.SendTo(7, "c1", Frame("peer-joined")); err != nil {
		t.Fatalf("SendTo: %v", err)
	}
	if len(target.frames) != 1 {
		t.Errorf("target received %d frames, want 1", len(target.frames))
	}
	if len(other.frames) != 0 {
		t.Errorf("other member received %d frames, want 0", len(other.frames))
	}
}

func TestSendTo_DepartedMember(t *testing.T) {
	r := NewRelay()
	r.Join(7, "c1", domain.Identity{ID: 1}, &fakeConn{})
	r.Leave(7, "c1")

	if err := r.SendTo(7, "c1", Frame("peer-joined")); !errors.Is(err, ErrNotMember) {
		t.Errorf("SendTo after leave = %v, want ErrNotMember", err)
	}
}

func TestBroadcast_NeverEchoesToSender(t *testing.T) {
	r := NewRelay()
	sender := &fakeConn{}
	peer := &fakeConn{}
	r.Join(7, "c1", domain.Identity{ID: 1}, sender)
	r.Join(7, "c2", domain.Identity{ID: 2}, peer)

	res := r.Broadcast(7, "c1", Frame(`{"type":"offer"}`))

	if res.SentTo != 1 {
		t.Errorf("SentTo = %d, want 1", res.SentTo)
	}
	if len(sender.frames) != 0 {
		t.Errorf("sender received %d frames, want 0", len(sender.frames))
	}
	if len(peer.frames) != 1 {
		t.Errorf("peer received %d frames, want 1", len(peer.frames))
	}
}

func TestBroadcast_FansOutToAllOthers(t *testing.T) {
	r := NewRelay()
	conns := make([]*fakeConn, 4)
	for i := range conns {
		conns[i] = &fakeConn{}
		r.Join(7, domain.ConnID(string(rune('a'+i))), domain.Identity{ID: domain.UserID(i + 1)}, conns[i])
	}

	res := r.Broadcast(7, "a", Frame("candidate"))

	if res.SentTo != 3 {
		t.Errorf("SentTo = %d, want 3", res.SentTo)
	}
	for i := 1; i < 4; i++ {
		if len(conns[i].frames) != 1 {
			t.Errorf("conn %d received %d frames, want 1", i, len(conns[i].frames))
		}
	}
}

func TestBroadcast_RoomIsolation(t *testing.T) {
	r := NewRelay()
	inRoom := &fakeConn{}
	otherRoom := &fakeConn{}
	r.Join(7, "c1", domain.Identity{ID: 1}, &fakeConn{})
	r.Join(7, "c2", domain.Identity{ID: 2}, inRoom)
	r.Join(8, "c3", domain.Identity{ID: 3}, otherRoom)

	r.Broadcast(7, "c1", Frame("offer"))

	if len(otherRoom.frames) != 0 {
		t.Errorf("member of another room received %d frames, want 0", len(otherRoom.frames))
	}
}

func TestBroadcast_ReportsDropped(t *testing.T) {
	r := NewRelay()
	slow := &fakeConn{fail: true}
	r.Join(7, "c1", domain.Identity{ID: 1}, &fakeConn{})
	r.Join(7, "c2", domain.Identity{ID: 2}, slow)

	res := r.Broadcast(7, "c1", Frame("offer"))

	if res.SentTo != 0 {
		t.Errorf("SentTo = %d, want 0", res.SentTo)
	}
	if len(res.Dropped) != 1 || res.Dropped[0] != "c2" {
		t.Errorf("Dropped = %v, want [c2]", res.Dropped)
	}
}

func TestLeave_RemovesMember(t *testing.T) {
	r := NewRelay()
	gone := &fakeConn{}
	r.Join(7, "c1", domain.Identity{ID: 1}, &fakeConn{})
	r.Join(7, "c2", domain.Identity{ID: 2}, gone)

	r.Leave(7, "c2")
	r.Broadcast(7, "c1", Frame("offer"))

	if len(gone.frames) != 0 {
		t.Errorf("departed member received %d frames, want 0", len(gone.frames))
	}
	if r.MemberCount(7) != 1 {
		t.Errorf("MemberCount = %d, want 1", r.MemberCount(7))
	}
}

func TestLeave_EmptyRoomIsDropped(t *testing.T) {
	r := NewRelay()
	r.Join(7, "c1", domain.Identity{ID: 1}, &fakeConn{})
	r.Leave(7, "c1")

	if r.MemberCount(7) != 0 {
		t.Errorf("MemberCount = %d, want 0", r.MemberCount(7))
	}
	if got := r.Members(7); len(got) != 0 {
		t.Errorf("Members = %v, want empty", got)
	}
}
