package movement

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"finance-serverless/internal/auth"
	"finance-serverless/internal/observability"
)

type fakeStore struct {
	movements []Movement
	err       error
}

func (f *fakeStore) Create(_ context.Context, m Movement) error {
	if f.err != nil {
		return f.err
	}
	f.movements = append(f.movements, m)
	return nil
}

func (f *fakeStore) ListByUser(_ context.Context, userID string) ([]Movement, error) {
	if f.err != nil {
		return nil, f.err
	}
	result := make([]Movement, 0)
	for _, m := range f.movements {
		if m.UserID == userID {
			result = append(result, m)
		}
	}
	return result, nil
}

func (f *fakeStore) ListByUserAndMonth(_ context.Context, userID string, month int) ([]Movement, error) {
	if f.err != nil {
		return nil, f.err
	}
	result := make([]Movement, 0)
	for _, m := range f.movements {
		if m.UserID == userID && int(m.Date.Month()) == month {
			result = append(result, m)
		}
	}
	return result, nil
}

func (f *fakeStore) Delete(_ context.Context, id, userID string) error {
	if f.err != nil {
		return f.err
	}
	for i, m := range f.movements {
		if m.ID == id && m.UserID == userID {
			f.movements = append(f.movements[:i], f.movements[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

func authenticated(req *http.Request, subject string) *http.Request {
	identity := auth.Identity{Subject: subject, Email: subject + "@b.com"}
	return req.WithContext(auth.WithIdentity(req.Context(), identity))
}

func newTestMovementHandler(store Store) *Handler {
	return NewHandler(store, observability.NewLogger())
}

func TestCreate_NormalizesAndStores(t *testing.T) {
	t.Parallel()

	store := &fakeStore{}
	handler := newTestMovementHandler(store)

	body := `{"type":"INCOME","category":"Yates","amount":-120.5,"description":" lunch money ","userId":"spoofed"}`
	req := authenticated(httptest.NewRequest(http.MethodPost, "/movements", strings.NewReader(body)), "user-1")

	rec := httptest.NewRecorder()
	handler.Create(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	require.Len(t, store.movements, 1)

	stored := store.movements[0]
	require.NotEmpty(t, stored.ID)
	require.Equal(t, "user-1", stored.UserID, "owner comes from the verified identity, not the body")
	require.Equal(t, TypeIncome, stored.Type)
	require.Equal(t, "otros", stored.Category)
	require.Equal(t, 120.5, stored.Amount)
	require.Equal(t, "lunch money", stored.Description)
	require.False(t, stored.Date.IsZero())

	var returned Movement
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &returned))
	require.Equal(t, stored.ID, returned.ID)
}

func TestCreate_InvalidType(t *testing.T) {
	t.Parallel()

	store := &fakeStore{}
	handler := newTestMovementHandler(store)

	req := authenticated(httptest.NewRequest(http.MethodPost, "/movements", strings.NewReader(`{"type":"transfer","amount":1}`)), "user-1")

	rec := httptest.NewRecorder()
	handler.Create(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Empty(t, store.movements)
}

func TestCreate_InvalidJSONBody(t *testing.T) {
	t.Parallel()

	handler := newTestMovementHandler(&fakeStore{})

	req := authenticated(httptest.NewRequest(http.MethodPost, "/movements", strings.NewReader(`{oops`)), "user-1")

	rec := httptest.NewRecorder()
	handler.Create(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreate_WithoutIdentity(t *testing.T) {
	t.Parallel()

	store := &fakeStore{}
	handler := newTestMovementHandler(store)

	req := httptest.NewRequest(http.MethodPost, "/movements", strings.NewReader(`{"type":"expense","amount":1}`))

	rec := httptest.NewRecorder()
	handler.Create(rec, req)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Empty(t, store.movements)
}

func TestList_OnlyOwnMovements(t *testing.T) {
	t.Parallel()

	store := &fakeStore{movements: []Movement{
		{ID: "m1", UserID: "user-1", Type: TypeExpense, Category: "comida", Amount: 10},
		{ID: "m2", UserID: "user-2", Type: TypeExpense, Category: "comida", Amount: 20},
	}}
	handler := newTestMovementHandler(store)

	req := authenticated(httptest.NewRequest(http.MethodGet, "/movements", nil), "user-1")

	rec := httptest.NewRecorder()
	handler.List(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var result []Movement
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	require.Len(t, result, 1)
	require.Equal(t, "m1", result[0].ID)
}

func TestListByMonth_InvalidMonth(t *testing.T) {
	t.Parallel()

	handler := newTestMovementHandler(&fakeStore{})

	for _, month := range []string{"", "0", "13", "abc"} {
		req := authenticated(httptest.NewRequest(http.MethodGet, "/movements/by-month?month="+month, nil), "user-1")

		rec := httptest.NewRecorder()
		handler.ListByMonth(rec, req)

		require.Equal(t, http.StatusBadRequest, rec.Code, "month %q", month)
	}
}

func timeInMonth(month int) time.Time {
	return time.Date(2026, time.Month(month), 15, 12, 0, 0, 0, time.UTC)
}

func TestListByMonth_FiltersByMonth(t *testing.T) {
	t.Parallel()

	march := Today(timeInMonth(3))
	june := Today(timeInMonth(6))
	store := &fakeStore{movements: []Movement{
		{ID: "m1", UserID: "user-1", Date: march},
		{ID: "m2", UserID: "user-1", Date: june},
		{ID: "m3", UserID: "user-2", Date: march},
	}}
	handler := newTestMovementHandler(store)

	req := authenticated(httptest.NewRequest(http.MethodGet, "/movements/by-month?month=3", nil), "user-1")

	rec := httptest.NewRecorder()
	handler.ListByMonth(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var result []Movement
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	require.Len(t, result, 1)
	require.Equal(t, "m1", result[0].ID)
}

func TestDelete_RequiresID(t *testing.T) {
	t.Parallel()

	handler := newTestMovementHandler(&fakeStore{})

	req := authenticated(httptest.NewRequest(http.MethodDelete, "/movements", nil), "user-1")

	rec := httptest.NewRecorder()
	handler.Delete(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDelete_UnknownOrForeignMovement(t *testing.T) {
	t.Parallel()

	store := &fakeStore{movements: []Movement{
		{ID: "m1", UserID: "user-2"},
	}}
	handler := newTestMovementHandler(store)

	req := authenticated(httptest.NewRequest(http.MethodDelete, "/movements?id=m1", nil), "user-1")

	rec := httptest.NewRecorder()
	handler.Delete(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Len(t, store.movements, 1, "another user's movement must not be deleted")
}

func TestDelete_Success(t *testing.T) {
	t.Parallel()

	store := &fakeStore{movements: []Movement{
		{ID: "m1", UserID: "user-1"},
	}}
	handler := newTestMovementHandler(store)

	req := authenticated(httptest.NewRequest(http.MethodDelete, "/movements?id=m1", nil), "user-1")

	rec := httptest.NewRecorder()
	handler.Delete(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Empty(t, store.movements)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, "movement deleted", body["response"])
}
