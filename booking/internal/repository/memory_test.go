package repository

import (
	"context"
	"testing"
	"time"

	"github.com/Astemirdum/table-booking/booking/internal/errs"
	"github.com/Astemirdum/table-booking/booking/internal/model"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var _ Repository = (*memory)(nil)
var _ Repository = (*repository)(nil)

func TestMemory_Tables(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	m := NewMemory(zap.NewNop())

	require.NoError(t, m.CreateTable(ctx, model.Table{ID: 1, Number: 5, Places: 4}))
	require.ErrorIs(t, m.CreateTable(ctx, model.Table{ID: 1, Number: 6, Places: 2}), errs.ErrTableExists)
	require.NoError(t, m.CreateTable(ctx, model.Table{ID: 2, Number: 7, Places: 2, IsVip: true}))

	tables, err := m.GetTables(ctx)
	require.NoError(t, err)
	require.Len(t, tables, 2)

	table, err := m.GetTable(ctx, 2)
	require.NoError(t, err)
	require.Equal(t, 7, table.Number)

	_, err = m.GetTable(ctx, 5)
	require.ErrorIs(t, err, errs.ErrNotFound)

	ok, err := m.TableExistsByNumber(ctx, 5)
	require.NoError(t, err)
	require.True(t, ok)
	ok, err = m.TableExistsByNumber(ctx, 1)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestMemory_Reservations(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	m := NewMemory(zap.NewNop())
	base := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	tick := 0
	m.now = func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Second)
	}

	for i, r := range []model.Reservation{
		{ID: "a", TableNumber: 5, Date: "2024-06-01", SlotTimeStart: "18:00", SlotTimeEnd: "19:00"},
		{ID: "b", TableNumber: 5, Date: "2024-06-02", SlotTimeStart: "18:00", SlotTimeEnd: "19:00"},
		{ID: "c", TableNumber: 6, Date: "2024-06-01", SlotTimeStart: "18:00", SlotTimeEnd: "19:00"},
		{ID: "d", TableNumber: 5, Date: "2024-06-01", SlotTimeStart: "19:00", SlotTimeEnd: "20:00"},
	} {
		require.NoError(t, m.CreateReservation(ctx, r), i)
	}

	items, err := m.ReservationsByTableAndDate(ctx, 5, "2024-06-01")
	require.NoError(t, err)
	require.Len(t, items, 2)
	require.Equal(t, "a", items[0].ID)
	require.Equal(t, "d", items[1].ID)

	all, total, err := m.GetReservations(ctx, 0, 0)
	require.NoError(t, err)
	require.Equal(t, 4, total)
	require.Len(t, all, 4)

	page, total, err := m.GetReservations(ctx, 2, 3)
	require.NoError(t, err)
	require.Equal(t, 4, total)
	require.Len(t, page, 1)
	require.Equal(t, "d", page[0].ID)

	empty, _, err := m.GetReservations(ctx, 3, 3)
	require.NoError(t, err)
	require.Empty(t, empty)
}

func TestMemory_Accounts(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	m := NewMemory(zap.NewNop())

	acc := model.Account{Email: "ann@example.com", FirstName: "Ann", LastName: "Lee", PasswordHash: "h"}
	require.NoError(t, m.CreateAccount(ctx, acc))
	require.ErrorIs(t, m.CreateAccount(ctx, acc), errs.ErrUserExists)

	got, err := m.GetAccount(ctx, acc.Email)
	require.NoError(t, err)
	require.False(t, got.Confirmed)

	require.NoError(t, m.ConfirmAccount(ctx, acc.Email))
	got, err = m.GetAccount(ctx, acc.Email)
	require.NoError(t, err)
	require.True(t, got.Confirmed)

	require.ErrorIs(t, m.ConfirmAccount(ctx, "nobody@example.com"), errs.ErrUserNotFound)
	_, err = m.GetAccount(ctx, "nobody@example.com")
	require.ErrorIs(t, err, errs.ErrUserNotFound)
}

func TestMemory_ContextDone(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	m := NewMemory(zap.NewNop())

	require.ErrorIs(t, m.CreateReservation(ctx, model.Reservation{ID: "x"}), context.Canceled)
	_, err := m.ReservationsByTableAndDate(ctx, 1, "2024-06-01")
	require.ErrorIs(t, err, context.Canceled)

	all, total, err := m.GetReservations(context.Background(), 0, 0)
	require.NoError(t, err)
	require.Zero(t, total)
	require.Empty(t, all)
}
