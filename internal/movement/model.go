package movement

import (
	"context"
	"errors"
	"strings"
	"time"
)

const (
	TypeIncome  = "income"
	TypeExpense = "expense"
)

const defaultCategory = "otros"

var validCategories = map[string]struct{}{
	"comida":          {},
	"transporte":      {},
	"entretenimiento": {},
	"servicios":       {},
	"otros":           {},
}

// Movements carry dates in the Bogota business timezone. Colombia does not
// observe daylight saving, so a fixed offset is safe.
var bogota = time.FixedZone("America/Bogota", -5*60*60)

var (
	ErrInvalidType = errors.New("type must be 'income' or 'expense'")
	ErrNotFound    = errors.New("movement not found")
)

type Movement struct {
	ID          string    `json:"id"`
	UserID      string    `json:"userId"`
	Type        string    `json:"type"`
	Category    string    `json:"category"`
	Amount      float64   `json:"amount"`
	Description string    `json:"description"`
	Date        time.Time `json:"date"`
}

// Normalize applies the model rules: type defaults to expense and is the
// only field that can make a movement invalid; unknown categories collapse
// to the default instead of failing; amounts are stored as absolute values;
// a zero date becomes today relative to now.
func (m *Movement) Normalize(now time.Time) error {
	switch strings.ToLower(strings.TrimSpace(m.Type)) {
	case TypeIncome:
		m.Type = TypeIncome
	case TypeExpense, "":
		m.Type = TypeExpense
	default:
		return ErrInvalidType
	}

	category := strings.ToLower(strings.TrimSpace(m.Category))
	if _, ok := validCategories[category]; !ok {
		category = defaultCategory
	}
	m.Category = category

	if m.Amount < 0 {
		m.Amount = -m.Amount
	}

	if m.Date.IsZero() {
		m.Date = Today(now)
	}

	return nil
}

// Today is the Bogota calendar date containing now.
func Today(now time.Time) time.Time {
	local := now.In(bogota)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, bogota)
}

// Store is the persistence collaborator for movements. Every operation is
// scoped to a single owner; rows of other users are invisible.
type Store interface {
	Create(ctx context.Context, m Movement) error
	ListByUser(ctx context.Context, userID string) ([]Movement, error)
	ListByUserAndMonth(ctx context.Context, userID string, month int) ([]Movement, error)
	Delete(ctx context.Context, id, userID string) error
}
