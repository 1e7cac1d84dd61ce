// Package signal implements the real-time room-signaling core: who is
// connected to which room, WebRTC offer/answer/candidate relaying between
// two peers, and live code-editor mirroring.
package signal

import (
	"encoding/json"
	"errors"
	"fmt"
)

// PeerID identifies one live signaling connection. IDs are never reused;
// a reconnecting client gets a fresh one.
type PeerID string

type EventType string

const (
	// client -> server
	EventJoinRoom     EventType = "join_room"
	EventOffer        EventType = "offer"
	EventAnswer       EventType = "answer"
	EventICECandidate EventType = "ice_candidate"
	EventCodeChange   EventType = "code_change"

	// server -> client
	EventRoomPeers  EventType = "room_peers"
	EventPeerJoined EventType = "peer_joined"
	EventPeerLeft   EventType = "peer_left"
	EventError      EventType = "error"
)

var ErrMalformedEvent = errors.New("malformed event")

// ClientEvent is the decoded inbound frame. Signal and candidate bodies
// stay opaque; the core forwards them verbatim.
type ClientEvent struct {
	Type      EventType       `json:"type"`
	RoomID    string          `json:"roomId,omitempty"`
	User      string          `json:"user,omitempty"`
	Target    PeerID          `json:"target,omitempty"`
	Signal    json.RawMessage `json:"signal,omitempty"`
	Candidate json.RawMessage `json:"candidate,omitempty"`
	Code      *string         `json:"code,omitempty"`
}

// ParseClientEvent decodes and field-checks an inbound frame. Anything it
// rejects never reaches the core.
func ParseClientEvent(data []byte) (ClientEvent, error) {
	var e ClientEvent
	if err := json.Unmarshal(data, &e); err != nil {
		return ClientEvent{}, fmt.Errorf("%w: %v", ErrMalformedEvent, err)
	}
	if err := e.validate(); err != nil {
		return ClientEvent{}, err
	}
	return e, nil
}

func (e *ClientEvent) validate() error {
	switch e.Type {
	case EventJoinRoom:
		if e.RoomID == "" {
			return fmt.Errorf("%w: join_room missing roomId", ErrMalformedEvent)
		}
	case EventOffer, EventAnswer:
		if e.Target == "" {
			return fmt.Errorf("%w: %s missing target", ErrMalformedEvent, e.Type)
		}
		if len(e.Signal) == 0 {
			return fmt.Errorf("%w: %s missing signal", ErrMalformedEvent, e.Type)
		}
	case EventICECandidate:
		if e.Target == "" {
			return fmt.Errorf("%w: ice_candidate missing target", ErrMalformedEvent)
		}
		if len(e.Candidate) == 0 {
			return fmt.Errorf("%w: ice_candidate missing candidate", ErrMalformedEvent)
		}
	case EventCodeChange:
		if e.RoomID == "" {
			return fmt.Errorf("%w: code_change missing roomId", ErrMalformedEvent)
		}
		if e.Code == nil {
			return fmt.Errorf("%w: code_change missing code", ErrMalformedEvent)
		}
	default:
		return fmt.Errorf("%w: unknown event type %q", ErrMalformedEvent, e.Type)
	}
	return nil
}

// ServerEvent is the outbound frame shape shared by every notification the
// core emits. Peers and Code never carry omitempty: an empty snapshot must
// encode as [] and a cleared editor as "", or the client cannot apply them.
type ServerEvent struct {
	Type      EventType       `json:"type"`
	RoomID    string          `json:"roomId,omitempty"`
	Peers     []PeerID        `json:"peers"`
	Peer      PeerID          `json:"peer,omitempty"`
	User      string          `json:"user,omitempty"`
	From      PeerID          `json:"from,omitempty"`
	Signal    json.RawMessage `json:"signal,omitempty"`
	Candidate json.RawMessage `json:"candidate,omitempty"`
	Code      string          `json:"code"`
	Error     string          `json:"error,omitempty"`
}

// Outbound pairs a server event with the connection it must reach.
// Delivery order within a slice is significant: the joiner's room_peers
// snapshot precedes the peer_joined notifications it caused.
type Outbound struct {
	To  PeerID
	Msg ServerEvent
}
