package store

import (
	"context"
	"errors"

	"github.com/imelnik/peerview/internal/auth"
	"github.com/imelnik/peerview/internal/domain"
	"github.com/imelnik/peerview/internal/signal"
)

// RoomAccess authorizes signaling joins against the room collection: the
// room must exist and the caller must be its interviewer, its candidate,
// or an admin. It implements signal.RoomAuthorizer.
type RoomAccess struct {
	Rooms RoomStore
}

func (a *RoomAccess) Authorize(ctx context.Context, roomID string, id auth.Identity) error {
	room, err := a.Rooms.FindByID(ctx, domain.RoomID(roomID))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) || errors.Is(err, ErrBadID) {
			return signal.ErrRoomNotFound
		}
		return err
	}
	if !room.CanView(id.UserID, id.Role) {
		return signal.ErrRoomNotPermitted
	}
	return nil
}
