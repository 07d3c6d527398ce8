package movement

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, time.March, 10, 15, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		in      Movement
		want    Movement
		wantErr error
	}{
		{
			name: "income is case insensitive",
			in:   Movement{Type: " Income ", Category: "comida", Amount: 10, Date: now},
			want: Movement{Type: TypeIncome, Category: "comida", Amount: 10, Date: now},
		},
		{
			name: "empty type defaults to expense",
			in:   Movement{Category: "transporte", Amount: 5, Date: now},
			want: Movement{Type: TypeExpense, Category: "transporte", Amount: 5, Date: now},
		},
		{
			name:    "unknown type is rejected",
			in:      Movement{Type: "transfer", Amount: 5, Date: now},
			wantErr: ErrInvalidType,
		},
		{
			name: "unknown category collapses to default",
			in:   Movement{Type: "expense", Category: "yates", Amount: 5, Date: now},
			want: Movement{Type: TypeExpense, Category: "otros", Amount: 5, Date: now},
		},
		{
			name: "empty category collapses to default",
			in:   Movement{Type: "expense", Amount: 5, Date: now},
			want: Movement{Type: TypeExpense, Category: "otros", Amount: 5, Date: now},
		},
		{
			name: "category is lowered",
			in:   Movement{Type: "expense", Category: "Servicios", Amount: 5, Date: now},
			want: Movement{Type: TypeExpense, Category: "servicios", Amount: 5, Date: now},
		},
		{
			name: "negative amount becomes absolute",
			in:   Movement{Type: "expense", Category: "comida", Amount: -42.5, Date: now},
			want: Movement{Type: TypeExpense, Category: "comida", Amount: 42.5, Date: now},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			m := tt.in
			err := m.Normalize(now)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, m)
		})
	}
}

func TestNormalize_ZeroDateDefaultsToBogotaToday(t *testing.T) {
	t.Parallel()

	// 03:00 UTC on Jan 1 is still Dec 31 in Bogota.
	now := time.Date(2026, time.January, 1, 3, 0, 0, 0, time.UTC)

	m := Movement{Type: "expense", Amount: 1}
	require.NoError(t, m.Normalize(now))

	require.Equal(t, 2025, m.Date.Year())
	require.Equal(t, time.December, m.Date.Month())
	require.Equal(t, 31, m.Date.Day())
	require.Equal(t, 0, m.Date.Hour())
}

func TestToday_TruncatesToLocalMidnight(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, time.June, 15, 23, 59, 59, 0, time.UTC)
	today := Today(now)

	require.Equal(t, 5, today.In(time.UTC).Hour()) // midnight -05:00
	require.Equal(t, 15, today.Day())
	require.Equal(t, 0, today.Hour())
	require.Equal(t, 0, today.Minute())
}
