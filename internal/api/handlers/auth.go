package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/portal-acara/server/internal/api/problem"
	"github.com/portal-acara/server/internal/auth"
	"github.com/portal-acara/server/internal/domain/approval"
	"github.com/portal-acara/server/internal/domain/users"
)

type AuthHandler struct {
	Users  *users.Service
	Tokens *auth.JWTManager
	Gate   *approval.Gate
	Env    string
}

func NewAuthHandler(usersService *users.Service, tokens *auth.JWTManager, gate *approval.Gate, env string) *AuthHandler {
	return &AuthHandler{Users: usersService, Tokens: tokens, Gate: gate, Env: env}
}

type registerRequest struct {
	Name     string `json:"name" validate:"required,max=255"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type authResponse struct {
	Token string   `json:"token"`
	User  userView `json:"user"`
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		problem.Write(w, r, http.StatusBadRequest, problem.TypeValidation, "Invalid request", err, h.Env)
		return
	}
	if err := validate.Struct(req); err != nil {
		writeValidationProblem(w, r, err, h.Env)
		return
	}

	user, err := h.Users.Register(r.Context(), users.RegisterParams{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		if errors.Is(err, users.ErrEmailTaken) {
			problem.Write(w, r, http.StatusConflict, problem.TypeConflict, "Email already registered", err, h.Env)
			return
		}
		problem.Write(w, r, http.StatusServiceUnavailable, problem.TypeServerError, "Service unavailable", err, h.Env)
		return
	}

	token, err := h.Tokens.Generate(user.ID, string(user.Role))
	if err != nil {
		problem.Write(w, r, http.StatusServiceUnavailable, problem.TypeServerError, "Service unavailable", err, h.Env)
		return
	}

	writeJSON(w, http.StatusCreated, authResponse{Token: token, User: newUserView(user, false)})
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		problem.Write(w, r, http.StatusBadRequest, problem.TypeValidation, "Invalid request", err, h.Env)
		return
	}
	if err := validate.Struct(req); err != nil {
		writeValidationProblem(w, r, err, h.Env)
		return
	}

	user, err := h.Users.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, users.ErrInvalidCredentials) {
			problem.Write(w, r, http.StatusUnauthorized, problem.TypeUnauthorized, "Invalid credentials", err, h.Env)
			return
		}
		problem.Write(w, r, http.StatusServiceUnavailable, problem.TypeServerError, "Service unavailable", err, h.Env)
		return
	}

	token, err := h.Tokens.Generate(user.ID, string(user.Role))
	if err != nil {
		problem.Write(w, r, http.StatusServiceUnavailable, problem.TypeServerError, "Service unavailable", err, h.Env)
		return
	}

	isOrganizer, err := h.Gate.IsOrganizer(r.Context(), user.ID)
	if err != nil {
		problem.Write(w, r, http.StatusServiceUnavailable, problem.TypeServerError, "Service unavailable", err, h.Env)
		return
	}

	writeJSON(w, http.StatusOK, authResponse{Token: token, User: newUserView(user, isOrganizer)})
}

// Me returns the authenticated profile. The organizer capability is derived
// from storage on every call, so an admin decision shows up on the next
// request without re-login.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r, h.Env)
	if !ok {
		return
	}

	user, err := h.Users.GetByID(r.Context(), actor.ID)
	if err != nil {
		if errors.Is(err, users.ErrNotFound) {
			problem.Write(w, r, http.StatusUnauthorized, problem.TypeUnauthorized, "Unauthorized", err, h.Env)
			return
		}
		problem.Write(w, r, http.StatusServiceUnavailable, problem.TypeServerError, "Service unavailable", err, h.Env)
		return
	}

	isOrganizer, err := h.Gate.IsOrganizer(r.Context(), user.ID)
	if err != nil {
		problem.Write(w, r, http.StatusServiceUnavailable, problem.TypeServerError, "Service unavailable", err, h.Env)
		return
	}

	writeJSON(w, http.StatusOK, newUserView(user, isOrganizer))
}

type updateProfileRequest struct {
	Name     *string `json:"name" validate:"omitempty,max=255"`
	Password *string `json:"password" validate:"omitempty,min=8"`
}

func (h *AuthHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r, h.Env)
	if !ok {
		return
	}

	var req updateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		problem.Write(w, r, http.StatusBadRequest, problem.TypeValidation, "Invalid request", err, h.Env)
		return
	}
	if err := validate.Struct(req); err != nil {
		writeValidationProblem(w, r, err, h.Env)
		return
	}

	user, err := h.Users.UpdateProfile(r.Context(), actor.ID, users.UpdateProfileParams{
		Name:     req.Name,
		Password: req.Password,
	})
	if err != nil {
		if errors.Is(err, users.ErrNotFound) {
			problem.Write(w, r, http.StatusNotFound, problem.TypeNotFound, "Not found", err, h.Env)
			return
		}
		problem.Write(w, r, http.StatusServiceUnavailable, problem.TypeServerError, "Service unavailable", err, h.Env)
		return
	}

	isOrganizer, err := h.Gate.IsOrganizer(r.Context(), user.ID)
	if err != nil {
		problem.Write(w, r, http.StatusServiceUnavailable, problem.TypeServerError, "Service unavailable", err, h.Env)
		return
	}

	writeJSON(w, http.StatusOK, newUserView(user, isOrganizer))
}
