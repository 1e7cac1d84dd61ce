package signal

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Conn is the transport endpoint the hub delivers to. Owned by the
// adapter; the adapter must Close() it.
type Conn interface {
	TrySend(data []byte) error
	Close()
}

type cmdKind int

const (
	cmdRegister cmdKind = iota
	cmdEvent
	cmdDisconnect
)

type command struct {
	kind  cmdKind
	peer  PeerID
	conn  Conn
	evt   ClientEvent
	reply chan PeerID
}

// Hub is the single-threaded reactor that owns the Core and the peer →
// connection table. All membership and relay handlers run on the Run
// goroutine, so the shared maps need no locking.
type Hub struct {
	core  *Core
	conns map[PeerID]Conn
	cmds  chan command
	done  chan struct{}
}

func NewHub() *Hub {
	return &Hub{
		core:  NewCore(),
		conns: make(map[PeerID]Conn),
		cmds:  make(chan command),
		done:  make(chan struct{}),
	}
}

// Run processes commands until ctx is cancelled. Events from a single
// connection arrive in order because each read pump posts sequentially;
// no ordering holds across connections.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			for id, conn := range h.conns {
				conn.Close()
				delete(h.conns, id)
			}
			log.Info().Str("module", "signal.hub").Msg("hub stopped")
			return
		case cmd := <-h.cmds:
			h.handle(cmd)
		}
	}
}

func (h *Hub) handle(cmd command) {
	switch cmd.kind {
	case cmdRegister:
		id := PeerID(uuid.NewString())
		h.core.Connect(id)
		h.conns[id] = cmd.conn
		cmd.reply <- id
	case cmdEvent:
		h.deliver(h.apply(cmd.peer, cmd.evt))
	case cmdDisconnect:
		h.deliver(h.core.Disconnect(cmd.peer))
		delete(h.conns, cmd.peer)
	}
}

func (h *Hub) apply(peer PeerID, evt ClientEvent) []Outbound {
	switch evt.Type {
	case EventJoinRoom:
		return h.core.Join(peer, evt.RoomID, evt.User)
	case EventOffer, EventAnswer:
		return h.core.Relay(evt.Type, peer, evt.Target, evt.Signal)
	case EventICECandidate:
		return h.core.Relay(evt.Type, peer, evt.Target, evt.Candidate)
	case EventCodeChange:
		return h.core.BroadcastEdit(evt.RoomID, peer, *evt.Code)
	}
	return nil
}

func (h *Hub) deliver(outs []Outbound) {
	for _, out := range outs {
		conn, ok := h.conns[out.To]
		if !ok {
			continue
		}
		data, err := json.Marshal(out.Msg)
		if err != nil {
			log.Error().Err(err).Str("module", "signal.hub").Msg("marshal server event")
			continue
		}
		if err := conn.TrySend(data); err != nil {
			// Best-effort delivery: a saturated signaling client loses
			// the frame rather than stalling the reactor.
			log.Warn().Err(err).Str("module", "signal.hub").Str("peer", string(out.To)).Str("type", string(out.Msg.Type)).Msg("dropping outbound frame")
		}
	}
}

// Connect allocates a peer identifier for a new transport connection and
// registers its delivery endpoint. Returns "" if the hub has stopped.
func (h *Hub) Connect(conn Conn) PeerID {
	reply := make(chan PeerID, 1)
	select {
	case h.cmds <- command{kind: cmdRegister, conn: conn, reply: reply}:
		return <-reply
	case <-h.done:
		return ""
	}
}

// Dispatch hands a validated client event to the reactor.
func (h *Hub) Dispatch(peer PeerID, evt ClientEvent) {
	select {
	case h.cmds <- command{kind: cmdEvent, peer: peer, evt: evt}:
	case <-h.done:
	}
}

// Disconnect runs the teardown path for peer. Safe to call once per
// connection; the adapter's read pump does so on exit.
func (h *Hub) Disconnect(peer PeerID) {
	select {
	case h.cmds <- command{kind: cmdDisconnect, peer: peer}:
	case <-h.done:
	}
}
