package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"

	"github.com/imelnik/peerview/internal/auth"
	"github.com/imelnik/peerview/internal/domain"
)

type registerRequest struct {
	Name        string `json:"name" binding:"omitempty,min=2,max=50"`
	Email       string `json:"email" binding:"required,email"`
	Password    string `json:"password" binding:"required,min=6"`
	Role        string `json:"role" binding:"omitempty,oneof=interviewer candidate"`
	InviteToken string `json:"inviteToken"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type userResponse struct {
	ID    domain.UserID `json:"id"`
	Email string        `json:"email"`
	Name  string        `json:"name"`
	Role  domain.Role   `json:"role"`
}

func (a *API) register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": bindingErrors(err)})
		return
	}

	ctx := c.Request.Context()
	email := domain.NormalizeEmail(req.Email)

	if _, err := a.Store.Users.FindByEmail(ctx, email); err == nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "User with this email already exists."})
		return
	} else if !errors.Is(err, domain.ErrNotFound) {
		log.Error().Err(err).Str("module", "adapters.http").Msg("register: user lookup")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error during registration."})
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		log.Error().Err(err).Str("module", "adapters.http").Msg("register: hash password")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error during registration."})
		return
	}

	role := domain.Role(req.Role)
	if role == "" {
		role = domain.RoleCandidate
	}
	user := &domain.User{
		Name:         req.Name,
		Email:        email,
		PasswordHash: hash,
		Role:         role,
	}
	if err := a.Store.Users.Create(ctx, user); err != nil {
		if errors.Is(err, domain.ErrDuplicateEmail) {
			c.JSON(http.StatusBadRequest, gin.H{"message": "User with this email already exists."})
			return
		}
		log.Error().Err(err).Str("module", "adapters.http").Msg("register: create user")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error during registration."})
		return
	}

	var joinedRoomID *domain.RoomID
	if req.InviteToken != "" {
		joinedRoomID = a.redeemInvite(c, req.InviteToken, user)
	}

	token, err := a.Tokens.Issue(auth.Identity{UserID: user.ID, Email: user.Email, Name: user.Name, Role: user.Role})
	if err != nil {
		log.Error().Err(err).Str("module", "adapters.http").Msg("register: issue token")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error during registration."})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":      "User registered successfully!",
		"token":        token,
		"user":         userResponse{ID: user.ID, Email: user.Email, Name: user.Name, Role: user.Role},
		"joinedRoomId": joinedRoomID,
	})
}

// redeemInvite attaches the new user as a room's candidate when the invite
// token resolves, the invited email matches, and the slot is still free.
// Failures only log; registration itself still succeeds.
func (a *API) redeemInvite(c *gin.Context, token string, user *domain.User) *domain.RoomID {
	ctx := c.Request.Context()
	room, err := a.Store.Rooms.FindByInviteToken(ctx, token)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			log.Error().Err(err).Str("module", "adapters.http").Msg("register: invite lookup")
		}
		return nil
	}

	if room.CandidateEmail != user.Email {
		log.Warn().Str("module", "adapters.http").Str("invited", room.CandidateEmail).Str("registered", user.Email).Msg("invite email mismatch")
		return nil
	}
	if room.Candidate != "" {
		log.Warn().Str("module", "adapters.http").Str("room", string(room.ID)).Msg("invite candidate slot already taken")
		return nil
	}

	room.Candidate = user.ID
	room.InvitationToken = ""
	room.Status = domain.StatusPending
	if err := a.Store.Rooms.Update(ctx, room); err != nil {
		log.Error().Err(err).Str("module", "adapters.http").Str("room", string(room.ID)).Msg("register: attach candidate")
		return nil
	}
	return &room.ID
}

func (a *API) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": bindingErrors(err)})
		return
	}

	user, err := a.Store.Users.FindByEmail(c.Request.Context(), domain.NormalizeEmail(req.Email))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			c.JSON(http.StatusUnauthorized, gin.H{"message": "invalid credentials."})
			return
		}
		log.Error().Err(err).Str("module", "adapters.http").Msg("login: user lookup")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "server error during login."})
		return
	}
	if !auth.CheckPassword(user.PasswordHash, req.Password) {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "invalid credentials."})
		return
	}

	token, err := a.Tokens.Issue(auth.Identity{UserID: user.ID, Email: user.Email, Name: user.Name, Role: user.Role})
	if err != nil {
		log.Error().Err(err).Str("module", "adapters.http").Msg("login: issue token")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "server error during login."})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "login successful!",
		"token":   token,
		"user":    userResponse{ID: user.ID, Email: user.Email, Name: user.Name, Role: user.Role},
	})
}

func (a *API) profile(c *gin.Context) {
	id := CurrentIdentity(c)
	c.JSON(http.StatusOK, userResponse{ID: id.UserID, Email: id.Email, Name: id.Name, Role: id.Role})
}

// bindingErrors flattens validator failures into a field → message object.
func bindingErrors(err error) gin.H {
	out := gin.H{}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		for _, fe := range verrs {
			out[fe.Field()] = fieldMessage(fe)
		}
		return out
	}
	out["general"] = err.Error()
	return out
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fe.Field() + " is required."
	case "email":
		return "must be a valid email address."
	case "min":
		return "must be at least " + fe.Param() + " characters long."
	case "max":
		return "cannot be longer than " + fe.Param() + " characters."
	case "oneof":
		return "must be one of [" + fe.Param() + "]."
	default:
		return "is invalid."
	}
}
