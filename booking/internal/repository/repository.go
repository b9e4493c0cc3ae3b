package repository

import (
	"context"

	"github.com/Astemirdum/table-booking/booking/internal/errs"
	"github.com/Astemirdum/table-booking/booking/internal/model"
	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

//go:generate go run github.com/golang/mock/mockgen -source=repository.go -destination=mocks/mock.go

type TableRepository interface {
	CreateTable(ctx context.Context, table model.Table) error
	GetTables(ctx context.Context) ([]model.Table, error)
	GetTable(ctx context.Context, id int) (model.Table, error)
	TableExistsByNumber(ctx context.Context, number int) (bool, error)
}

type ReservationRepository interface {
	CreateReservation(ctx context.Context, rsv model.Reservation) error
	ReservationsByTableAndDate(ctx context.Context, tableNumber int, date string) ([]model.Reservation, error)
	GetReservations(ctx context.Context, page, size int) ([]model.Reservation, int, error)
}

type AccountRepository interface {
	CreateAccount(ctx context.Context, acc model.Account) error
	GetAccount(ctx context.Context, email string) (model.Account, error)
	ConfirmAccount(ctx context.Context, email string) error
}

type Repository interface {
	TableRepository
	ReservationRepository
	AccountRepository
}

type repository struct {
	db  *pgxpool.Pool
	log *zap.Logger
}

func NewRepository(db *pgxpool.Pool, log *zap.Logger) (*repository, error) {
	return &repository{
		db:  db,
		log: log.Named("repo"),
	}, nil
}

const (
	tablesTableName       = `tables`
	reservationsTableName = `reservations`
	accountsTableName     = `accounts`
)

var (
	qb = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

	tableColumns       = []string{"id", "number", "places", "is_vip", "min_order"}
	reservationColumns = []string{"id", "table_number", "client_name", "phone_number", "date", "slot_time_start", "slot_time_end", "created_at"}
	accountColumns     = []string{"email", "first_name", "last_name", "password_hash", "confirmed", "created_at"}
)

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation
}

func (r *repository) CreateTable(ctx context.Context, table model.Table) error {
	q, args, err := qb.Insert(tablesTableName).
		Columns(tableColumns...).
		Values(table.ID, table.Number, table.Places, table.IsVip, table.MinOrder).
		ToSql()
	if err != nil {
		return err
	}
	if _, err = r.db.Exec(ctx, q, args...); err != nil {
		if isUniqueViolation(err) {
			return errs.ErrTableExists
		}
		r.log.Error("CreateTable", zap.String("q", q), zap.Any("args", args), zap.Error(err))
		return errors.Wrap(err, "insert table")
	}
	return nil
}

func (r *repository) GetTables(ctx context.Context) ([]model.Table, error) {
	q, args, err := qb.Select(tableColumns...).From(tablesTableName).ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := r.db.Query(ctx, q, args...)
	if err != nil {
		return nil, errors.Wrap(err, "select tables")
	}
	items, err := pgx.CollectRows(rows, pgx.RowToStructByName[model.Table])
	if err != nil {
		return nil, errors.Wrap(err, "collect tables")
	}
	return items, nil
}

func (r *repository) GetTable(ctx context.Context, id int) (model.Table, error) {
	q, args, err := qb.Select(tableColumns...).
		From(tablesTableName).
		Where(sq.Eq{"id": id}).
		Limit(1).
		ToSql()
	if err != nil {
		return model.Table{}, err
	}
	rows, err := r.db.Query(ctx, q, args...)
	if err != nil {
		return model.Table{}, errors.Wrap(err, "select table")
	}
	table, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[model.Table])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Table{}, errs.ErrNotFound
		}
		return model.Table{}, errors.Wrap(err, "collect table")
	}
	return table, nil
}

func (r *repository) TableExistsByNumber(ctx context.Context, number int) (bool, error) {
	q, args, err := qb.Select("1").
		Prefix("select exists(").
		From(tablesTableName).
		Where(sq.Eq{"number": number}).
		Suffix(")").
		ToSql()
	if err != nil {
		return false, err
	}
	var exists bool
	if err = r.db.QueryRow(ctx, q, args...).Scan(&exists); err != nil {
		return false, errors.Wrap(err, "table exists")
	}
	return exists, nil
}

// CreateReservation is a plain insert: the overlap check that precedes it
// runs in separate statements, see service.Service.CreateReservation.
func (r *repository) CreateReservation(ctx context.Context, rsv model.Reservation) error {
	q, args, err := qb.Insert(reservationsTableName).
		Columns(reservationColumns[:7]...).
		Values(rsv.ID, rsv.TableNumber, rsv.ClientName, rsv.PhoneNumber, rsv.Date, rsv.SlotTimeStart, rsv.SlotTimeEnd).
		ToSql()
	if err != nil {
		return err
	}
	if _, err = r.db.Exec(ctx, q, args...); err != nil {
		r.log.Error("CreateReservation", zap.String("q", q), zap.Any("args", args), zap.Error(err))
		return errors.Wrap(err, "insert reservation")
	}
	return nil
}

func (r *repository) ReservationsByTableAndDate(ctx context.Context, tableNumber int, date string) ([]model.Reservation, error) {
	q, args, err := qb.Select(reservationColumns...).
		From(reservationsTableName).
		Where(sq.Eq{"table_number": tableNumber, "date": date}).
		ToSql()
	if err != nil {
		return nil, err
	}
	r.log.Debug("ReservationsByTableAndDate", zap.String("query", q), zap.Any("args", args))
	rows, err := r.db.Query(ctx, q, args...)
	if err != nil {
		return nil, errors.Wrap(err, "select reservations")
	}
	items, err := pgx.CollectRows(rows, pgx.RowToStructByName[model.Reservation])
	if err != nil {
		return nil, errors.Wrap(err, "collect reservations")
	}
	return items, nil
}

func (r *repository) GetReservations(ctx context.Context, page, size int) ([]model.Reservation, int, error) {
	var total int
	if err := r.db.QueryRow(ctx, `select count(*) from `+reservationsTableName).Scan(&total); err != nil {
		return nil, 0, errors.Wrap(err, "count reservations")
	}

	sb := qb.Select(reservationColumns...).
		From(reservationsTableName).
		OrderBy("created_at", "id")
	if page > 0 && size > 0 {
		sb = sb.Limit(uint64(size)).Offset(uint64((page - 1) * size))
	}
	q, args, err := sb.ToSql()
	if err != nil {
		return nil, 0, err
	}
	rows, err := r.db.Query(ctx, q, args...)
	if err != nil {
		return nil, 0, errors.Wrap(err, "select reservations")
	}
	items, err := pgx.CollectRows(rows, pgx.RowToStructByName[model.Reservation])
	if err != nil {
		return nil, 0, errors.Wrap(err, "collect reservations")
	}
	return items, total, nil
}

func (r *repository) CreateAccount(ctx context.Context, acc model.Account) error {
	q, args, err := qb.Insert(accountsTableName).
		Columns(accountColumns[:5]...).
		Values(acc.Email, acc.FirstName, acc.LastName, acc.PasswordHash, acc.Confirmed).
		ToSql()
	if err != nil {
		return err
	}
	if _, err = r.db.Exec(ctx, q, args...); err != nil {
		if isUniqueViolation(err) {
			return errs.ErrUserExists
		}
		return errors.Wrap(err, "insert account")
	}
	return nil
}

func (r *repository) GetAccount(ctx context.Context, email string) (model.Account, error) {
	q, args, err := qb.Select(accountColumns...).
		From(accountsTableName).
		Where(sq.Eq{"email": email}).
		Limit(1).
		ToSql()
	if err != nil {
		return model.Account{}, err
	}
	rows, err := r.db.Query(ctx, q, args...)
	if err != nil {
		return model.Account{}, errors.Wrap(err, "select account")
	}
	acc, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[model.Account])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Account{}, errs.ErrUserNotFound
		}
		return model.Account{}, errors.Wrap(err, "collect account")
	}
	return acc, nil
}

func (r *repository) ConfirmAccount(ctx context.Context, email string) error {
	q, args, err := qb.Update(accountsTableName).
		Set("confirmed", true).
		Where(sq.Eq{"email": email}).
		ToSql()
	if err != nil {
		return err
	}
	tag, err := r.db.Exec(ctx, q, args...)
	if err != nil {
		return errors.Wrap(err, "confirm account")
	}
	if tag.RowsAffected() == 0 {
		return errs.ErrUserNotFound
	}
	return nil
}
