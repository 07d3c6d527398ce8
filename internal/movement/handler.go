package movement

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/google/uuid"

	"finance-serverless/internal/auth"
	"finance-serverless/internal/observability"
	"finance-serverless/internal/web"
)

const maxJSONBodyBytes = 1 << 20

type Handler struct {
	store  Store
	logger *observability.Logger
}

func NewHandler(store Store, logger *observability.Logger) *Handler {
	return &Handler{store: store, logger: logger}
}

type movementInput struct {
	Type        string    `json:"type"`
	Category    string    `json:"category"`
	Amount      float64   `json:"amount"`
	Description string    `json:"description"`
	Date        time.Time `json:"date"`
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	identity, ok := callerIdentity(w, r)
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBodyBytes)

	var input movementInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		h.logger.Warn("movement_body_invalid", observability.Fields{"error": err.Error()})
		web.WriteMessage(w, http.StatusBadRequest, "invalid json body")
		return
	}

	id, err := uuid.NewV7()
	if err != nil {
		sentry.CaptureException(err)
		web.WriteMessage(w, http.StatusInternalServerError, "internal server error")
		return
	}

	m := Movement{
		ID:          id.String(),
		UserID:      identity.Subject,
		Type:        input.Type,
		Category:    input.Category,
		Amount:      input.Amount,
		Description: strings.TrimSpace(input.Description),
		Date:        input.Date,
	}
	if err := m.Normalize(time.Now()); err != nil {
		web.WriteMessage(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.store.Create(r.Context(), m); err != nil {
		sentry.CaptureException(err)
		h.logger.Error("create_movement_failed", observability.Fields{"error": err.Error()})
		web.WriteMessage(w, http.StatusInternalServerError, "error saving movement")
		return
	}

	web.WriteJSON(w, http.StatusCreated, m)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	identity, ok := callerIdentity(w, r)
	if !ok {
		return
	}

	movements, err := h.store.ListByUser(r.Context(), identity.Subject)
	if err != nil {
		sentry.CaptureException(err)
		h.logger.Error("list_movements_failed", observability.Fields{"error": err.Error()})
		web.WriteMessage(w, http.StatusInternalServerError, "internal server error")
		return
	}

	web.WriteJSON(w, http.StatusOK, movements)
}

func (h *Handler) ListByMonth(w http.ResponseWriter, r *http.Request) {
	identity, ok := callerIdentity(w, r)
	if !ok {
		return
	}

	monthRaw := r.URL.Query().Get("month")
	month, err := strconv.Atoi(monthRaw)
	if err != nil || month < 1 || month > 12 {
		h.logger.Warn("movement_month_invalid", observability.Fields{"month": monthRaw})
		web.WriteMessage(w, http.StatusBadRequest, "month must be a number between 1 and 12")
		return
	}

	movements, err := h.store.ListByUserAndMonth(r.Context(), identity.Subject, month)
	if err != nil {
		sentry.CaptureException(err)
		h.logger.Error("list_movements_by_month_failed", observability.Fields{"error": err.Error()})
		web.WriteMessage(w, http.StatusInternalServerError, "internal server error")
		return
	}

	web.WriteJSON(w, http.StatusOK, movements)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	identity, ok := callerIdentity(w, r)
	if !ok {
		return
	}

	id := strings.TrimSpace(r.URL.Query().Get("id"))
	if id == "" {
		web.WriteMessage(w, http.StatusBadRequest, "id is required")
		return
	}

	if err := h.store.Delete(r.Context(), id, identity.Subject); err != nil {
		if errors.Is(err, ErrNotFound) {
			web.WriteMessage(w, http.StatusNotFound, "movement not found")
			return
		}

		sentry.CaptureException(err)
		h.logger.Error("delete_movement_failed", observability.Fields{"error": err.Error()})
		web.WriteMessage(w, http.StatusInternalServerError, "internal server error")
		return
	}

	web.WriteMessage(w, http.StatusOK, "movement deleted")
}

// callerIdentity reads the identity the gate attached. A request that
// reaches a movement handler without one slipped past the gate, so the
// answer is a rejection, not a best guess.
func callerIdentity(w http.ResponseWriter, r *http.Request) (auth.Identity, bool) {
	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		web.WriteMessage(w, http.StatusUnauthorized, "unauthorized")
		return auth.Identity{}, false
	}
	return identity, true
}
