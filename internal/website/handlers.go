// Package website serves the HTTP endpoints for login, logout and the current user.
package website

import (
	"encoding/json"
	"errors"
	"mime"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/wolfeidau/sessionauth/internal/auth"
	"github.com/wolfeidau/sessionauth/internal/login"
	"github.com/wolfeidau/sessionauth/internal/models"
)

const maxBodyBytes = 64 * 1024

// loginRequest is accepted as JSON or as form fields.
type loginRequest struct {
	Email    string `json:"email" validate:"required,email,max=254"`
	Password string `json:"password" validate:"required,max=72"`
}

type userResponse struct {
	User *models.Profile `json:"user"`
}

type errorResponse struct {
	Error   string   `json:"error"`
	Details []string `json:"details,omitempty"`
}

// Handler serves the authentication endpoints.
type Handler struct {
	auth     *login.Authenticator
	validate *requestValidator
}

func NewHandler(authenticator *login.Authenticator) *Handler {
	return &Handler{
		auth:     authenticator,
		validate: newValidator(),
	}
}

// Login handles POST /login.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	req, err := decodeLoginRequest(w, r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	msgs, err := h.validate.Validate(req)
	if err != nil {
		h.internalError(w, r, err)
		return
	}
	if len(msgs) > 0 {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "validation failed", Details: msgs})
		return
	}

	ac := auth.FromContext(r.Context())
	ok, err := h.auth.Login(w, r, ac, req.Email, req.Password)
	if err != nil {
		h.internalError(w, r, err)
		return
	}
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "invalid credentials"})
		return
	}

	writeJSON(w, http.StatusOK, userResponse{User: ac.CurrentUser()})
}

// Logout handles POST /logout. It always succeeds.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	h.auth.Logout(w, r, auth.FromContext(r.Context()))
	w.WriteHeader(http.StatusNoContent)
}

// Me handles GET /api/me, it must be wrapped in auth.RequireAuth.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, userResponse{User: auth.FromContext(r.Context()).CurrentUser()})
}

func (h *Handler) internalError(w http.ResponseWriter, r *http.Request, err error) {
	zerolog.Ctx(r.Context()).Error().Err(err).Str("path", r.URL.Path).Msg("Request failed")
	writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal server error"})
}

func decodeLoginRequest(w http.ResponseWriter, r *http.Request) (*loginRequest, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "application/json" {
		var req loginRequest
		dec := json.NewDecoder(r.Body)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&req); err != nil {
			return nil, err
		}
		return &req, nil
	}

	if err := r.ParseForm(); err != nil {
		return nil, err
	}
	if len(r.PostForm) == 0 {
		return nil, errors.New("empty form")
	}

	return &loginRequest{
		Email:    r.PostForm.Get("email"),
		Password: r.PostForm.Get("password"),
	}, nil
}

func writeJSON(w http.ResponseWriter, code int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(body)
}
