package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/Astemirdum/table-booking/booking/internal/errs"
	"github.com/Astemirdum/table-booking/booking/internal/model"
	"go.uber.org/zap"
)

// memory keeps every collection in process. Each call is atomic on its own;
// nothing spans calls, which matches the record-store contract the service
// is written against.
type memory struct {
	mu           sync.RWMutex
	tables       map[int]model.Table
	reservations []model.Reservation
	accounts     map[string]model.Account
	now          func() time.Time
	log          *zap.Logger
}

func NewMemory(log *zap.Logger) *memory {
	return &memory{
		tables:   map[int]model.Table{},
		accounts: map[string]model.Account{},
		now:      time.Now,
		log:      log.Named("memory"),
	}
}

func (m *memory) CreateTable(ctx context.Context, table model.Table) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.tables[table.ID]; ok {
		return errs.ErrTableExists
	}
	m.tables[table.ID] = table
	return nil
}

func (m *memory) GetTables(ctx context.Context) ([]model.Table, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	items := make([]model.Table, 0, len(m.tables))
	for _, t := range m.tables {
		items = append(items, t)
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].ID < items[j].ID
	})
	return items, nil
}

func (m *memory) GetTable(ctx context.Context, id int) (model.Table, error) {
	if err := ctx.Err(); err != nil {
		return model.Table{}, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	t, ok := m.tables[id]
	if !ok {
		return model.Table{}, errs.ErrNotFound
	}
	return t, nil
}

func (m *memory) TableExistsByNumber(ctx context.Context, number int) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, t := range m.tables {
		if t.Number == number {
			return true, nil
		}
	}
	return false, nil
}

func (m *memory) CreateReservation(ctx context.Context, rsv model.Reservation) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if rsv.CreatedAt.IsZero() {
		rsv.CreatedAt = m.now().UTC()
	}
	m.reservations = append(m.reservations, rsv)
	m.log.Debug("reservation stored", zap.String("id", rsv.ID))
	return nil
}

func (m *memory) ReservationsByTableAndDate(ctx context.Context, tableNumber int, date string) ([]model.Reservation, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var items []model.Reservation
	for _, r := range m.reservations {
		if r.TableNumber == tableNumber && r.Date == date {
			items = append(items, r)
		}
	}
	return items, nil
}

func (m *memory) GetReservations(ctx context.Context, page, size int) ([]model.Reservation, int, error) {
	if err := ctx.Err(); err != nil {
		return nil, 0, err
	}
	m.mu.RLock()
	items := make([]model.Reservation, len(m.reservations))
	copy(items, m.reservations)
	m.mu.RUnlock()

	sort.SliceStable(items, func(i, j int) bool {
		return items[i].CreatedAt.Before(items[j].CreatedAt)
	})
	total := len(items)
	if page > 0 && size > 0 {
		from := (page - 1) * size
		if from >= total {
			return []model.Reservation{}, total, nil
		}
		to := from + size
		if to > total {
			to = total
		}
		items = items[from:to]
	}
	return items, total, nil
}

func (m *memory) CreateAccount(ctx context.Context, acc model.Account) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.accounts[acc.Email]; ok {
		return errs.ErrUserExists
	}
	acc.CreatedAt = m.now().UTC()
	m.accounts[acc.Email] = acc
	return nil
}

func (m *memory) GetAccount(ctx context.Context, email string) (model.Account, error) {
	if err := ctx.Err(); err != nil {
		return model.Account{}, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	acc, ok := m.accounts[email]
	if !ok {
		return model.Account{}, errs.ErrUserNotFound
	}
	return acc, nil
}

func (m *memory) ConfirmAccount(ctx context.Context, email string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	acc, ok := m.accounts[email]
	if !ok {
		return errs.ErrUserNotFound
	}
	acc.Confirmed = true
	m.accounts[email] = acc
	return nil
}
