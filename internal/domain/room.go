package domain

import (
	"fmt"
	"time"
)

const MaxRoomNameLen = 100

type RoomID string

type RoomStatus string

const (
	StatusPending   RoomStatus = "pending"
	StatusActive    RoomStatus = "active"
	StatusCompleted RoomStatus = "completed"
	StatusCancelled RoomStatus = "cancelled"
)

// ValidStatus reports whether s is one of the allowed room statuses.
func ValidStatus(s RoomStatus) bool {
	switch s {
	case StatusPending, StatusActive, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// Room is a persisted interview session pairing an interviewer with a
// candidate. The candidate slot stays empty until an invite is redeemed.
type Room struct {
	ID              RoomID     `json:"id"`
	Name            string     `json:"name"`
	Interviewer     UserID     `json:"interviewer"`
	Candidate       UserID     `json:"candidate,omitempty"`
	CandidateEmail  string     `json:"candidateEmail,omitempty"`
	InvitationToken string     `json:"-"`
	Task            string     `json:"task"`
	Status          RoomStatus `json:"status"`
	CreatedAt       time.Time  `json:"createdAt"`
	UpdatedAt       time.Time  `json:"updatedAt"`
}

// DefaultRoomName mirrors the fallback applied when a room is created
// without a name.
func DefaultRoomName(now time.Time) string {
	return fmt.Sprintf("interview room %d", now.UnixMilli())
}

// CanManage reports whether the user may update, delete or generate tasks
// for the room. Only the owning interviewer and admins qualify.
func (r *Room) CanManage(id UserID, role Role) bool {
	return r.Interviewer == id || role == RoleAdmin
}

// CanView additionally admits the assigned candidate.
func (r *Room) CanView(id UserID, role Role) bool {
	return r.CanManage(id, role) || (r.Candidate != "" && r.Candidate == id)
}
