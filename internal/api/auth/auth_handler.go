package auth

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/shop-api/internal/api/user"
)

type RegisterRequest struct {
	Email    string `json:"email" example:"alice@example.com"`
	Name     string `json:"name" example:"Alice"`
	Password string `json:"password" example:"P@ssw0rd1"`
}

type LoginRequest struct {
	Email    string `json:"email" example:"alice@example.com"`
	Password string `json:"password" example:"P@ssw0rd1"`
}

// AuthResponse is returned by both Register and Login on success.
type AuthResponse struct {
	Result bool   `json:"result" example:"true"`
	Token  string `json:"token" example:"eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9..."`
}

type Handler struct {
	users  *user.Service
	tokens *Service
	log    *logrus.Logger
}

func NewHandler(jwtSecret, issuer string, database *sql.DB, log *logrus.Logger) *Handler {
	return &Handler{
		users:  user.NewService(database),
		tokens: NewService(jwtSecret, issuer),
		log:    log,
	}
}

// Register godoc
// @Summary		Register a new user
// @Description	Create a user account and return a bearer token
// @Tags			auth
// @Accept			json
// @Produce		json
// @Param			user	body		RegisterRequest	true	"Registration data"
// @Success		200		{object}	AuthResponse	"Account created, token issued"
// @Failure		400		{object}	string			"Invalid request, duplicate email or validation errors"
// @Failure		500		{object}	string			"Internal server error"
// @Router			/AuthManagement/Register [post]
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	if req.Email == "" || req.Name == "" || req.Password == "" {
		h.writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	// Fast path only: the UNIQUE constraint on email decides races.
	existing, err := h.users.FindByEmail(r.Context(), req.Email)
	if err != nil {
		h.log.WithError(err).Error("checking existing user")
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if existing != nil {
		h.writeError(w, http.StatusBadRequest, "email already exists")
		return
	}

	newUser, err := h.users.Create(r.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		var verrs user.ValidationErrors
		switch {
		case errors.As(err, &verrs):
			h.writeErrors(w, http.StatusBadRequest, verrs)
		case errors.Is(err, user.ErrEmailTaken):
			h.writeError(w, http.StatusBadRequest, "email already exists")
		default:
			h.log.WithError(err).Error("creating user")
			h.writeError(w, http.StatusInternalServerError, "internal server error")
		}
		return
	}

	token, err := h.tokens.IssueToken(newUser)
	if err != nil {
		h.log.WithError(err).Error("issuing token")
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	h.writeJSON(w, http.StatusOK, AuthResponse{Result: true, Token: token})
}

// Login godoc
// @Summary		User login
// @Description	Authenticate with email and password and return a bearer token
// @Tags			auth
// @Accept			json
// @Produce		json
// @Param			credentials	body		LoginRequest	true	"Login credentials"
// @Success		200			{object}	AuthResponse	"Token issued"
// @Failure		400			{object}	string			"Invalid request or invalid authentication"
// @Failure		500			{object}	string			"Internal server error"
// @Router			/AuthManagement/Login [post]
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	if req.Email == "" || req.Password == "" {
		h.writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	existing, err := h.users.FindByEmail(r.Context(), req.Email)
	if err != nil {
		h.log.WithError(err).Error("finding user")
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	// Unknown email and wrong password answer identically so the response
	// can't be used to probe which accounts exist.
	if existing == nil {
		h.writeError(w, http.StatusBadRequest, "invalid authentication")
		return
	}
	if !h.users.CheckPassword(existing, req.Password) {
		h.writeError(w, http.StatusBadRequest, "invalid authentication")
		return
	}

	token, err := h.tokens.IssueToken(existing)
	if err != nil {
		h.log.WithError(err).Error("issuing token")
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	h.writeJSON(w, http.StatusOK, AuthResponse{Result: true, Token: token})
}

// Tokens exposes the token service for middleware wiring.
func (h *Handler) Tokens() *Service {
	return h.tokens
}

// Errors go over the wire as a bare JSON string or a flat JSON array of
// strings; there are no structured error codes.

func (h *Handler) writeJSON(w http.ResponseWriter, statusCode int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(body)
}

func (h *Handler) writeError(w http.ResponseWriter, statusCode int, message string) {
	h.writeJSON(w, statusCode, message)
}

func (h *Handler) writeErrors(w http.ResponseWriter, statusCode int, messages []string) {
	h.writeJSON(w, statusCode, messages)
}
