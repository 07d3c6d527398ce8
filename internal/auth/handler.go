package auth

import (
	"crypto/subtle"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/getsentry/sentry-go"
	"github.com/google/uuid"

	"finance-serverless/internal/observability"
	"finance-serverless/internal/web"
)

const maxJSONBodyBytes = 1 << 20

type Handler struct {
	store          UserStore
	tokens         *TokenService
	logger         *observability.Logger
	expiresMinutes int
	adminKey       string
}

func NewHandler(store UserStore, tokens *TokenService, logger *observability.Logger, expiresMinutes int, adminKey string) *Handler {
	return &Handler{
		store:          store,
		tokens:         tokens,
		logger:         logger,
		expiresMinutes: expiresMinutes,
		adminKey:       strings.TrimSpace(adminKey),
	}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	AccessToken      string `json:"access_token"`
	ExpiresInMinutes int    `json:"expires_in_minutes"`
}

type registerRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type hashResponse struct {
	PasswordHash string `json:"passwordHash"`
	PasswordSalt string `json:"passwordSalt"`
	Algorithm    string `json:"algorithm"`
}

// A throwaway credential verified whenever the email is unknown, so that a
// login against a missing account costs the same as one against a wrong
// password and account existence stays unobservable.
var dummyHash, dummySalt = newDummyCredential()

func newDummyCredential() (string, string) {
	hash, salt, err := HashPassword(uuid.NewString())
	if err != nil {
		panic(err)
	}
	return hash, salt
}

// Login verifies an email/password pair and returns a fresh access token.
// Unknown email and wrong password answer identically.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBodyBytes)

	var body loginRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		web.WriteMessage(w, http.StatusBadRequest, "invalid json body")
		return
	}

	body.Email = strings.TrimSpace(strings.ToLower(body.Email))
	if body.Email == "" || body.Password == "" {
		web.WriteMessage(w, http.StatusBadRequest, "email and password are required")
		return
	}

	user, err := h.store.FindByEmail(r.Context(), body.Email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			_, _ = VerifyPassword(body.Password, dummyHash, dummySalt)
			h.logger.Warn("login_unknown_email", observability.Fields{"email": body.Email})
			web.WriteMessage(w, http.StatusUnauthorized, "invalid credentials")
			return
		}

		sentry.CaptureException(err)
		h.logger.Error("login_lookup_failed", observability.Fields{"error": err.Error()})
		web.WriteMessage(w, http.StatusInternalServerError, "internal server error")
		return
	}

	valid, err := VerifyPassword(body.Password, user.PasswordHash, user.PasswordSalt)
	if err != nil {
		sentry.CaptureException(err)
		h.logger.Error("stored_credential_unreadable", observability.Fields{"email": body.Email})
		web.WriteMessage(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if !valid {
		h.logger.Warn("login_wrong_password", observability.Fields{"email": body.Email})
		web.WriteMessage(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	token, err := h.tokens.Issue(user.ID, user.Email)
	if err != nil {
		sentry.CaptureException(err)
		h.logger.Error("token_issue_failed", observability.Fields{"error": err.Error()})
		web.WriteMessage(w, http.StatusInternalServerError, "internal server error")
		return
	}

	web.WriteJSON(w, http.StatusOK, loginResponse{
		AccessToken:      token,
		ExpiresInMinutes: h.expiresMinutes,
	})
}

// Register hashes a password and, when an email is supplied, stores the new
// credential record. The route is public at the gate but guarded by the
// configured admin key; without one the endpoint does not exist.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	if h.adminKey == "" {
		web.WriteMessage(w, http.StatusNotFound, "not found")
		return
	}

	providedKey := strings.TrimSpace(r.Header.Get("X-Admin-Key"))
	if subtle.ConstantTimeCompare([]byte(providedKey), []byte(h.adminKey)) != 1 {
		h.logger.Warn("register_bad_admin_key", observability.Fields{
			"ip": observability.ClientIP(r),
		})
		web.WriteMessage(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBodyBytes)

	var body registerRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		web.WriteMessage(w, http.StatusBadRequest, "invalid json body")
		return
	}

	body.Email = strings.TrimSpace(strings.ToLower(body.Email))
	if body.Password == "" {
		h.logger.Warn("register_without_password", nil)
		web.WriteMessage(w, http.StatusBadRequest, "password is required")
		return
	}

	hash, salt, err := HashPassword(body.Password)
	if err != nil {
		sentry.CaptureException(err)
		h.logger.Error("hash_password_failed", observability.Fields{"error": err.Error()})
		web.WriteMessage(w, http.StatusInternalServerError, "internal server error")
		return
	}

	if body.Email == "" {
		web.WriteJSON(w, http.StatusOK, hashResponse{
			PasswordHash: hash,
			PasswordSalt: salt,
			Algorithm:    HashAlgorithm,
		})
		return
	}

	user := User{
		Email:        body.Email,
		PasswordHash: hash,
		PasswordSalt: salt,
	}
	if err := h.store.Create(r.Context(), user); err != nil {
		if errors.Is(err, ErrUserExists) {
			web.WriteMessage(w, http.StatusConflict, "user already exists")
			return
		}

		sentry.CaptureException(err)
		h.logger.Error("create_user_failed", observability.Fields{"email": body.Email, "error": err.Error()})
		web.WriteMessage(w, http.StatusInternalServerError, "internal server error")
		return
	}

	h.logger.Info("user_created", observability.Fields{"email": body.Email})
	w.WriteHeader(http.StatusNoContent)
}
