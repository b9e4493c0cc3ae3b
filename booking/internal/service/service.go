package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/Astemirdum/table-booking/booking/internal/errs"
	"github.com/Astemirdum/table-booking/booking/internal/lock"
	"github.com/Astemirdum/table-booking/booking/internal/model"
	"github.com/Astemirdum/table-booking/booking/internal/repository"
	"github.com/Astemirdum/table-booking/pkg/validate"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type Service struct {
	log       *zap.Logger
	repo      repository.Repository
	validator *validate.CustomValidator
	locker    lock.Locker
	events    Publisher
	newID     func() string
}

type Option func(*Service)

// WithLocker serialises admission per (table number, date). Without it two
// concurrent overlapping bookings may both be admitted.
func WithLocker(l lock.Locker) Option {
	return func(s *Service) {
		s.locker = l
	}
}

func WithPublisher(p Publisher) Option {
	return func(s *Service) {
		s.events = p
	}
}

func NewService(repo repository.Repository, log *zap.Logger, opts ...Option) *Service {
	s := &Service{
		log:       log.Named("service"),
		repo:      repo,
		validator: validate.NewCustomValidator(),
		newID:     uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ConflictError rejects a booking whose slot overlaps an existing
// reservation on the same table and date.
type ConflictError struct {
	TableNumber int
	Date        string
	Existing    model.Slot
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s: table %d on %s is already reserved for %s",
		errs.ErrSlotConflict, e.TableNumber, e.Date, e.Existing)
}

func (e *ConflictError) Unwrap() error {
	return errs.ErrSlotConflict
}

func (s *Service) CreateTable(ctx context.Context, req model.CreateTableRequest) (int, error) {
	if err := s.validator.Validate(req); err != nil {
		return 0, fmt.Errorf("%w: %s", errs.ErrInvalidInput, err.Error())
	}
	table := model.Table{
		ID:       req.ID,
		Number:   req.Number,
		Places:   req.Places,
		IsVip:    req.IsVip,
		MinOrder: req.MinOrder,
	}
	if err := s.repo.CreateTable(ctx, table); err != nil {
		if errors.Is(err, errs.ErrTableExists) {
			return 0, fmt.Errorf("%w: id %d", errs.ErrTableExists, req.ID)
		}
		return 0, storageErr(ctx, "create table", err)
	}
	return table.ID, nil
}

func (s *Service) GetTables(ctx context.Context) (model.ListTables, error) {
	tables, err := s.repo.GetTables(ctx)
	if err != nil {
		return model.ListTables{}, storageErr(ctx, "get tables", err)
	}
	if tables == nil {
		tables = []model.Table{}
	}
	return model.ListTables{Tables: tables}, nil
}

func (s *Service) GetTable(ctx context.Context, id int) (model.Table, error) {
	table, err := s.repo.GetTable(ctx, id)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return model.Table{}, fmt.Errorf("%w: id %d", errs.ErrTableNotFound, id)
		}
		return model.Table{}, storageErr(ctx, "get table", err)
	}
	return table, nil
}

// CreateReservation admits a booking when the table exists and the slot does
// not overlap any reservation on the same table and date, then stores it
// under a fresh id.
//
// The existence check, the overlap scan and the insert are separate store
// calls. Unless a Locker is configured, concurrent overlapping requests can
// all pass the scan before any of them is written.
func (s *Service) CreateReservation(ctx context.Context, req model.CreateReservationRequest) (string, error) {
	if err := s.validator.Validate(req); err != nil {
		return "", fmt.Errorf("%w: %s", errs.ErrInvalidInput, err.Error())
	}
	requested, err := model.ParseSlot(req.SlotTimeStart, req.SlotTimeEnd)
	if err != nil {
		return "", fmt.Errorf("%w: %s", errs.ErrInvalidInput, err.Error())
	}

	if s.locker != nil {
		unlock, err := s.locker.Lock(ctx, lock.Key(req.TableNumber, req.Date))
		if err != nil {
			return "", storageErr(ctx, "lock slot", err)
		}
		defer unlock()
	}

	exists, err := s.repo.TableExistsByNumber(ctx, req.TableNumber)
	if err != nil {
		return "", storageErr(ctx, "find table", err)
	}
	if !exists {
		return "", fmt.Errorf("%w: number %d", errs.ErrTableNotFound, req.TableNumber)
	}

	existing, err := s.repo.ReservationsByTableAndDate(ctx, req.TableNumber, req.Date)
	if err != nil {
		return "", storageErr(ctx, "scan reservations", err)
	}
	for _, rsv := range existing {
		slot, err := rsv.Slot()
		if err != nil {
			return "", fmt.Errorf("%w: reservation %s: %w", errs.ErrStorage, rsv.ID, err)
		}
		if requested.Overlaps(slot) {
			return "", &ConflictError{
				TableNumber: req.TableNumber,
				Date:        req.Date,
				Existing:    slot,
			}
		}
	}

	// past this point the record is either fully written or not at all
	if err = ctx.Err(); err != nil {
		return "", storageErr(ctx, "save reservation", err)
	}
	rsv := model.Reservation{
		ID:            s.newID(),
		TableNumber:   req.TableNumber,
		ClientName:    req.ClientName,
		PhoneNumber:   req.PhoneNumber,
		Date:          req.Date,
		SlotTimeStart: req.SlotTimeStart,
		SlotTimeEnd:   req.SlotTimeEnd,
	}
	if err = s.repo.CreateReservation(ctx, rsv); err != nil {
		return "", storageErr(ctx, "save reservation", err)
	}
	s.log.Debug("reservation created",
		zap.String("id", rsv.ID),
		zap.Int("tableNumber", rsv.TableNumber),
		zap.String("date", rsv.Date),
		zap.Stringer("slot", requested))

	s.publish(ctx, rsv)
	return rsv.ID, nil
}

// GetReservations returns every reservation unless both page (1-based) and
// size are positive.
func (s *Service) GetReservations(ctx context.Context, page, size int) (model.ListReservations, error) {
	if page < 0 || size < 0 {
		return model.ListReservations{}, fmt.Errorf("%w: page and size must not be negative", errs.ErrInvalidInput)
	}
	items, total, err := s.repo.GetReservations(ctx, page, size)
	if err != nil {
		return model.ListReservations{}, storageErr(ctx, "get reservations", err)
	}
	if items == nil {
		items = []model.Reservation{}
	}
	return model.ListReservations{
		Paging: model.Paging{
			Page:          page,
			PageSize:      size,
			TotalElements: total,
		},
		Reservations: items,
	}, nil
}

func (s *Service) publish(ctx context.Context, rsv model.Reservation) {
	if s.events == nil {
		return
	}
	if err := s.events.PublishReservationCreated(ctx, rsv); err != nil {
		s.log.Warn("publish reservation created", zap.String("id", rsv.ID), zap.Error(err))
	}
}

// storageErr classifies a failed store call: context expiry becomes
// ErrTimeout, anything else ErrStorage. The cause stays in the chain.
func storageErr(ctx context.Context, op string, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return fmt.Errorf("%w: %s: %w", errs.ErrTimeout, op, ctxErr)
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return fmt.Errorf("%w: %s: %w", errs.ErrTimeout, op, err)
	}
	return fmt.Errorf("%w: %s: %w", errs.ErrStorage, op, err)
}
