package signal

import (
	"github.com/rs/zerolog/log"
)

// MaxRoomMembers bounds a room to one interviewer and one candidate. The
// joiner-calls-existing tie-break only composes cleanly for two parties,
// so a third join is rejected outright.
const MaxRoomMembers = 2

// Core holds all signaling state: ordered room membership, the rooms each
// peer has joined, and peer liveness. It is not safe for concurrent use;
// the Hub owns it and runs every operation on a single goroutine.
//
// Every operation returns the notifications to deliver instead of
// delivering them, which keeps the handlers pure over (state, event).
type Core struct {
	rooms  map[string][]PeerID
	joined map[PeerID][]string
	labels map[PeerID]string
	live   map[PeerID]struct{}
}

func NewCore() *Core {
	return &Core{
		rooms:  make(map[string][]PeerID),
		joined: make(map[PeerID][]string),
		labels: make(map[PeerID]string),
		live:   make(map[PeerID]struct{}),
	}
}

// Connect registers a newly established connection under id.
func (c *Core) Connect(id PeerID) {
	c.live[id] = struct{}{}
	log.Debug().Str("module", "signal.core").Str("peer", string(id)).Msg("peer connected")
}

// Join adds the peer to the room's ordered member list. The joiner gets the
// room_peers snapshot first; members that were already present get
// peer_joined afterwards, so the new joiner initiates the offers.
// Re-joining a room the peer is already in only re-sends the snapshot.
func (c *Core) Join(id PeerID, roomID, user string) []Outbound {
	if _, ok := c.live[id]; !ok {
		return nil
	}
	if user != "" {
		c.labels[id] = user
	}

	members := c.rooms[roomID]
	others := make([]PeerID, 0, len(members))
	already := false
	for _, m := range members {
		if m == id {
			already = true
			continue
		}
		others = append(others, m)
	}

	snapshot := Outbound{To: id, Msg: ServerEvent{Type: EventRoomPeers, RoomID: roomID, Peers: others}}
	if already {
		return []Outbound{snapshot}
	}
	if len(members) >= MaxRoomMembers {
		log.Warn().Str("module", "signal.core").Str("peer", string(id)).Str("room", roomID).Msg("join rejected, room full")
		return []Outbound{{To: id, Msg: ServerEvent{Type: EventError, RoomID: roomID, Error: "room full"}}}
	}

	c.rooms[roomID] = append(members, id)
	c.joined[id] = append(c.joined[id], roomID)
	log.Info().Str("module", "signal.core").Str("peer", string(id)).Str("room", roomID).Int("members", len(members)+1).Msg("peer joined room")

	out := []Outbound{snapshot}
	for _, m := range others {
		out = append(out, Outbound{To: m, Msg: ServerEvent{Type: EventPeerJoined, RoomID: roomID, Peer: id, User: c.labels[id]}})
	}
	return out
}

// Relay forwards an opaque offer/answer/candidate body to the addressed
// peer, tagged with the sender. An unknown target is dropped silently;
// the client-side call setup is expected to time out.
func (c *Core) Relay(kind EventType, from, target PeerID, body []byte) []Outbound {
	if _, ok := c.live[target]; !ok {
		log.Debug().Str("module", "signal.core").Str("from", string(from)).Str("target", string(target)).Str("kind", string(kind)).Msg("relay target not connected, dropping")
		return nil
	}
	msg := ServerEvent{Type: kind, From: from}
	if kind == EventICECandidate {
		msg.Candidate = body
	} else {
		msg.Signal = body
	}
	return []Outbound{{To: target, Msg: msg}}
}

// BroadcastEdit mirrors a code delta to every member of the room except
// the sender. A sender alone in the room produces nothing.
func (c *Core) BroadcastEdit(roomID string, from PeerID, code string) []Outbound {
	var out []Outbound
	for _, m := range c.rooms[roomID] {
		if m == from {
			continue
		}
		out = append(out, Outbound{To: m, Msg: ServerEvent{Type: EventCodeChange, RoomID: roomID, From: from, Code: code}})
	}
	return out
}

// Disconnect removes the peer from every room it joined and tells each
// room's remaining members once. Rooms left empty are deleted. Unknown
// peers are a no-op, so the teardown path is safe to hit exactly once.
func (c *Core) Disconnect(id PeerID) []Outbound {
	if _, ok := c.live[id]; !ok {
		return nil
	}
	var out []Outbound
	for _, roomID := range c.joined[id] {
		remaining := removePeer(c.rooms[roomID], id)
		if len(remaining) == 0 {
			delete(c.rooms, roomID)
			continue
		}
		c.rooms[roomID] = remaining
		for _, m := range remaining {
			out = append(out, Outbound{To: m, Msg: ServerEvent{Type: EventPeerLeft, RoomID: roomID, Peer: id}})
		}
	}
	delete(c.joined, id)
	delete(c.labels, id)
	delete(c.live, id)
	log.Info().Str("module", "signal.core").Str("peer", string(id)).Msg("peer disconnected")
	return out
}

// Members returns the room's member list in join order.
func (c *Core) Members(roomID string) []PeerID {
	members := c.rooms[roomID]
	out := make([]PeerID, len(members))
	copy(out, members)
	return out
}

// Connected reports whether id belongs to a live connection.
func (c *Core) Connected(id PeerID) bool {
	_, ok := c.live[id]
	return ok
}

func removePeer(members []PeerID, id PeerID) []PeerID {
	out := members[:0]
	for _, m := range members {
		if m != id {
			out = append(out, m)
		}
	}
	return out
}
