package signal

import (
	"context"
	"errors"

	"github.com/imelnik/peerview/internal/auth"
)

var (
	ErrRoomNotFound     = errors.New("room does not exist")
	ErrRoomNotPermitted = errors.New("not a participant of this room")
)

// RoomAuthorizer gates join_room events against the persistent room store.
// Any authenticated peer used to be able to join any string-named room;
// joins are now checked before they reach the reactor.
type RoomAuthorizer interface {
	Authorize(ctx context.Context, roomID string, id auth.Identity) error
}

// AuthorizeFunc adapts a function to RoomAuthorizer; tests use it for
// allow-all and deny-all behavior.
type AuthorizeFunc func(ctx context.Context, roomID string, id auth.Identity) error

func (f AuthorizeFunc) Authorize(ctx context.Context, roomID string, id auth.Identity) error {
	return f(ctx, roomID, id)
}
