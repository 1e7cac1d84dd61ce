package signal

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"
)

type fakeConn struct {
	frames chan []byte

	mu     sync.Mutex
	closed bool
}

func newFakeConn() *fakeConn {
	return &fakeConn{frames: make(chan []byte, 16)}
}

func (f *fakeConn) TrySend(data []byte) error {
	f.frames <- data
	return nil
}

func (f *fakeConn) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
}

func (f *fakeConn) recv(t *testing.T) ServerEvent {
	t.Helper()
	select {
	case data := <-f.frames:
		var evt ServerEvent
		if err := json.Unmarshal(data, &evt); err != nil {
			t.Fatalf("unmarshal frame %s: %v", data, err)
		}
		return evt
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for frame")
		return ServerEvent{}
	}
}

func (f *fakeConn) expectNone(t *testing.T) {
	t.Helper()
	select {
	case data := <-f.frames:
		t.Fatalf("unexpected frame delivered: %s", data)
	case <-time.After(50 * time.Millisecond):
	}
}

func startHub(t *testing.T) *Hub {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	h := NewHub()
	go h.Run(ctx)
	return h
}

func strptr(s string) *string { return &s }

func TestHub_AllocatesDistinctPeerIDs(t *testing.T) {
	h := startHub(t)

	a := h.Connect(newFakeConn())
	b := h.Connect(newFakeConn())
	if a == "" || b == "" {
		t.Fatalf("Connect returned empty id (a=%q b=%q)", a, b)
	}
	if a == b {
		t.Fatalf("peer ids collide: %q", a)
	}
}

func TestHub_JoinOfferDisconnectFlow(t *testing.T) {
	h := startHub(t)

	connA := newFakeConn()
	connB := newFakeConn()
	peerA := h.Connect(connA)
	peerB := h.Connect(connB)

	h.Dispatch(peerA, ClientEvent{Type: EventJoinRoom, RoomID: "R1", User: "alice"})
	snap := connA.recv(t)
	if snap.Type != EventRoomPeers || len(snap.Peers) != 0 {
		t.Fatalf("A snapshot=%+v, want empty room_peers", snap)
	}

	h.Dispatch(peerB, ClientEvent{Type: EventJoinRoom, RoomID: "R1", User: "bob"})
	snap = connB.recv(t)
	if snap.Type != EventRoomPeers || len(snap.Peers) != 1 || snap.Peers[0] != peerA {
		t.Fatalf("B snapshot=%+v, want [%s]", snap, peerA)
	}
	joined := connA.recv(t)
	if joined.Type != EventPeerJoined || joined.Peer != peerB || joined.User != "bob" {
		t.Fatalf("A notification=%+v, want peer_joined(%s)", joined, peerB)
	}

	h.Dispatch(peerB, ClientEvent{Type: EventOffer, Target: peerA, Signal: json.RawMessage(`{"sdp":"x"}`)})
	offer := connA.recv(t)
	if offer.Type != EventOffer || offer.From != peerB || string(offer.Signal) != `{"sdp":"x"}` {
		t.Fatalf("offer=%+v, want verbatim offer from %s", offer, peerB)
	}

	h.Disconnect(peerA)
	left := connB.recv(t)
	if left.Type != EventPeerLeft || left.Peer != peerA {
		t.Fatalf("B notification=%+v, want peer_left(%s)", left, peerA)
	}
}

func TestHub_CodeChangeSkipsSender(t *testing.T) {
	h := startHub(t)

	connA := newFakeConn()
	connB := newFakeConn()
	peerA := h.Connect(connA)
	peerB := h.Connect(connB)

	h.Dispatch(peerA, ClientEvent{Type: EventJoinRoom, RoomID: "R1"})
	connA.recv(t)
	h.Dispatch(peerB, ClientEvent{Type: EventJoinRoom, RoomID: "R1"})
	connB.recv(t)
	connA.recv(t)

	h.Dispatch(peerA, ClientEvent{Type: EventCodeChange, RoomID: "R1", Code: strptr("fmt.Println(42)")})
	edit := connB.recv(t)
	if edit.Type != EventCodeChange || edit.From != peerA || edit.Code != "fmt.Println(42)" {
		t.Fatalf("edit=%+v, want code_change from %s", edit, peerA)
	}
	connA.expectNone(t)
}

func TestHub_RelayToGonePeerIsSilent(t *testing.T) {
	h := startHub(t)

	connA := newFakeConn()
	peerA := h.Connect(connA)

	h.Dispatch(peerA, ClientEvent{Type: EventOffer, Target: "gone", Signal: json.RawMessage(`{}`)})
	connA.expectNone(t)
}

func TestHub_StoppedHubRefusesConnections(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	h := NewHub()
	go h.Run(ctx)
	cancel()
	<-h.done

	if id := h.Connect(newFakeConn()); id != "" {
		t.Fatalf("Connect on stopped hub returned %q, want empty", id)
	}
	// Dispatch and Disconnect must not block either.
	h.Dispatch("x", ClientEvent{Type: EventJoinRoom, RoomID: "r"})
	h.Disconnect("x")
}
