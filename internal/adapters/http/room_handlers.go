package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/imelnik/peerview/internal/domain"
	"github.com/imelnik/peerview/internal/store"
	"github.com/imelnik/peerview/internal/tasks"
)

type createRoomRequest struct {
	Name           string `json:"name" binding:"omitempty,max=100"`
	CandidateEmail string `json:"candidateEmail" binding:"omitempty,email"`
}

type updateRoomRequest struct {
	Name   *string `json:"name" binding:"omitempty,max=100"`
	Status *string `json:"status"`
}

type generateTasksRequest struct {
	Topic      string `json:"topic" binding:"required"`
	Difficulty string `json:"difficulty" binding:"required"`
}

func (a *API) createRoom(c *gin.Context) {
	var req createRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": bindingErrors(err)})
		return
	}
	id := CurrentIdentity(c)

	name := req.Name
	if name == "" {
		name = domain.DefaultRoomName(time.Now())
	}
	room := &domain.Room{
		Name:        name,
		Interviewer: id.UserID,
		Status:      domain.StatusPending,
	}
	if req.CandidateEmail != "" {
		room.CandidateEmail = domain.NormalizeEmail(req.CandidateEmail)
		room.InvitationToken = uuid.NewString()
	}

	if err := a.Store.Rooms.Create(c.Request.Context(), room); err != nil {
		log.Error().Err(err).Str("module", "adapters.http").Msg("create room")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "server error while creating room."})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "room created successfully", "room": room})
}

func (a *API) getRoom(c *gin.Context) {
	room, ok := a.loadRoom(c)
	if !ok {
		return
	}
	id := CurrentIdentity(c)
	if !room.CanView(id.UserID, id.Role) {
		c.JSON(http.StatusForbidden, gin.H{"message": "not authorized to access this room."})
		return
	}
	c.JSON(http.StatusOK, room)
}

func (a *API) myRooms(c *gin.Context) {
	id := CurrentIdentity(c)
	rooms, err := a.Store.Rooms.ListByInterviewer(c.Request.Context(), id.UserID)
	if err != nil {
		log.Error().Err(err).Str("module", "adapters.http").Msg("list rooms")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "server error while fetching rooms."})
		return
	}
	if rooms == nil {
		rooms = []domain.Room{}
	}
	c.JSON(http.StatusOK, gin.H{"rooms": rooms})
}

func (a *API) updateRoom(c *gin.Context) {
	var req updateRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": bindingErrors(err)})
		return
	}

	room, ok := a.loadRoom(c)
	if !ok {
		return
	}
	id := CurrentIdentity(c)
	if !room.CanManage(id.UserID, id.Role) {
		c.JSON(http.StatusForbidden, gin.H{"message": "not authorized to update this room."})
		return
	}

	if req.Name != nil {
		room.Name = *req.Name
	}
	if req.Status != nil {
		status := domain.RoomStatus(*req.Status)
		if !domain.ValidStatus(status) {
			c.JSON(http.StatusBadRequest, gin.H{"message": "invalid status. allowed statuses are: pending, active, completed, cancelled"})
			return
		}
		room.Status = status
	}

	if err := a.Store.Rooms.Update(c.Request.Context(), room); err != nil {
		log.Error().Err(err).Str("module", "adapters.http").Str("room", string(room.ID)).Msg("update room")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "server error while updating room."})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "room updated successfully", "room": room})
}

func (a *API) deleteRoom(c *gin.Context) {
	room, ok := a.loadRoom(c)
	if !ok {
		return
	}
	id := CurrentIdentity(c)
	if !room.CanManage(id.UserID, id.Role) {
		c.JSON(http.StatusForbidden, gin.H{"message": "not authorized to delete this room."})
		return
	}
	if err := a.Store.Rooms.Delete(c.Request.Context(), room.ID); err != nil {
		log.Error().Err(err).Str("module", "adapters.http").Str("room", string(room.ID)).Msg("delete room")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "server error while deleting room."})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "room deleted successfully"})
}

func (a *API) generateTasks(c *gin.Context) {
	var req generateTasksRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "topic and difficulty are required."})
		return
	}

	room, ok := a.loadRoom(c)
	if !ok {
		return
	}
	id := CurrentIdentity(c)
	if !room.CanManage(id.UserID, id.Role) {
		c.JSON(http.StatusForbidden, gin.H{"message": "not authorized to generate tasks for this room."})
		return
	}
	if a.Tasks == nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "ai task generation is not configured on the server."})
		return
	}

	task, err := a.Tasks.GenerateTask(c.Request.Context(), req.Topic, req.Difficulty)
	if err != nil {
		log.Error().Err(err).Str("module", "adapters.http").Str("room", string(room.ID)).Msg("generate task")
		switch {
		case errors.Is(err, tasks.ErrBlocked):
			c.JSON(http.StatusBadRequest, gin.H{"message": "content generation blocked by ai safety/policy filters. try a different prompt or topic."})
		case errors.Is(err, tasks.ErrQuota):
			c.JSON(http.StatusTooManyRequests, gin.H{"message": "api quota exceeded for ai. please try again later."})
		case errors.Is(err, tasks.ErrEmptyResponse):
			c.JSON(http.StatusInternalServerError, gin.H{"message": "failed to generate tasks. ai response was empty."})
		case errors.Is(err, tasks.ErrNoTask):
			c.JSON(http.StatusInternalServerError, gin.H{"message": "ai generated a response, but no valid task could be extracted."})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"message": "server error while generating tasks with ai."})
		}
		return
	}

	room.Task = task
	if err := a.Store.Rooms.Update(c.Request.Context(), room); err != nil {
		log.Error().Err(err).Str("module", "adapters.http").Str("room", string(room.ID)).Msg("store generated task")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "server error while generating tasks with ai."})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "successfully generated 1 task.", "room": room})
}

// loadRoom fetches the :id room and writes the 400/404/500 response itself
// when the lookup fails.
func (a *API) loadRoom(c *gin.Context) (*domain.Room, bool) {
	roomID := domain.RoomID(c.Param("id"))
	room, err := a.Store.Rooms.FindByID(c.Request.Context(), roomID)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrBadID):
			c.JSON(http.StatusBadRequest, gin.H{"message": "invalid room id format."})
		case errors.Is(err, domain.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"message": "room not found."})
		default:
			log.Error().Err(err).Str("module", "adapters.http").Str("room", string(roomID)).Msg("fetch room")
			c.JSON(http.StatusInternalServerError, gin.H{"message": "server error while fetching room."})
		}
		return nil, false
	}
	return room, true
}
