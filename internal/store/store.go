// Package store persists users and rooms in MongoDB and exposes the
// narrow interfaces the handlers and the signaling authorizer consume.
package store

import (
	"context"

	"github.com/imelnik/peerview/internal/domain"
)

type UserStore interface {
	Create(ctx context.Context, u *domain.User) error
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByID(ctx context.Context, id domain.UserID) (*domain.User, error)
}

type RoomStore interface {
	Create(ctx context.Context, r *domain.Room) error
	FindByID(ctx context.Context, id domain.RoomID) (*domain.Room, error)
	FindByInviteToken(ctx context.Context, token string) (*domain.Room, error)
	// ListByInterviewer returns the interviewer's rooms, newest first.
	ListByInterviewer(ctx context.Context, id domain.UserID) ([]domain.Room, error)
	Update(ctx context.Context, r *domain.Room) error
	Delete(ctx context.Context, id domain.RoomID) error
}

type Store struct {
	Users UserStore
	Rooms RoomStore
}
