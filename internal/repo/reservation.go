// Package repo contains all database access logic for the ShareIt booking API.
// Each resource has its own file with an interface and a Postgres implementation;
// memory.go holds an in-process implementation of the same interfaces.
// No business logic lives here, only SQL, locking and type mapping.
package repo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/pkordes/shareit/backend/internal/domain"
)

// db is the minimal interface satisfied by *pgxpool.Pool, pgx.Conn, and pgx.Tx.
// Accepting this interface instead of *pgxpool.Pool directly allows integration
// tests to pass a transaction that is rolled back after each test. Begin on a
// pgx.Tx opens a savepoint, so Create still gets its own atomic unit.
type db interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
}

// Postgres error codes mapped to domain errors.
const (
	pgExclusionViolation  = "23P01"
	pgForeignKeyViolation = "23503"
)

// ReservationRepo defines the persistence operations for reservations.
// The service layer depends on this interface, not the concrete Postgres
// implementation, which allows the engine to be unit-tested with a mock.
type ReservationRepo interface {
	// FindConflicting returns a reservation of itemID whose interval overlaps iv.
	// policy decides whether REJECTED and CANCELLED reservations count.
	// Returns domain.ErrNotFound when there is no conflict.
	FindConflicting(ctx context.Context, itemID uuid.UUID, iv domain.Interval, policy domain.ConflictPolicy) (domain.Reservation, error)

	// GetByID retrieves a reservation by primary key, with OwnerID filled in.
	// Returns domain.ErrReservationNotFound if it does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (domain.Reservation, error)

	// ListByBooker returns the booker's reservations matching state at now.
	// StateAll is ordered by start ascending, every other state descending.
	ListByBooker(ctx context.Context, bookerID uuid.UUID, state domain.State, now time.Time, p domain.PaginationParams) ([]domain.Reservation, error)

	// ListByOwner is ListByBooker for reservations of items owned by ownerID.
	ListByOwner(ctx context.Context, ownerID uuid.UUID, state domain.State, now time.Time, p domain.PaginationParams) ([]domain.Reservation, error)

	// ListByItem returns every reservation of an item ordered by start ascending.
	ListByItem(ctx context.Context, itemID uuid.UUID) ([]domain.Reservation, error)

	// FindFinished returns the most recently ended APPROVED reservation of
	// itemID by bookerID that is over at now.
	// Returns domain.ErrNotFound if there is none.
	FindFinished(ctx context.Context, itemID, bookerID uuid.UUID, now time.Time) (domain.Reservation, error)

	// Create checks for conflicts under policy and inserts res as one atomic
	// unit. Of two concurrent overlapping creations at most one succeeds; the
	// other gets domain.ErrIntervalConflict.
	Create(ctx context.Context, res domain.Reservation, policy domain.ConflictPolicy) (domain.Reservation, error)

	// UpdateStatus moves a reservation from status from to status to.
	// Returns domain.ErrReservationNotFound if it does not exist and
	// domain.ErrIllegalTransition if its status is no longer from.
	UpdateStatus(ctx context.Context, id uuid.UUID, from, to domain.Status) (domain.Reservation, error)
}

// pgReservationRepo is the Postgres implementation of ReservationRepo.
type pgReservationRepo struct {
	db db
}

// NewReservationRepo constructs a ReservationRepo backed by the provided db connection.
// In production pass *pgxpool.Pool; in tests pass a pgx.Tx for rollback isolation.
func NewReservationRepo(db db) ReservationRepo {
	return &pgReservationRepo{db: db}
}

// selectReservation joins items so every read carries the current owner.
const selectReservation = `
	SELECT r.id, r.item_id, r.booker_id, i.owner_id, r.start_at, r.end_at, r.status, r.created_at, r.updated_at
	FROM reservations r
	JOIN items i ON i.id = r.item_id`

func (r *pgReservationRepo) FindConflicting(ctx context.Context, itemID uuid.UUID, iv domain.Interval, policy domain.ConflictPolicy) (domain.Reservation, error) {
	result, err := findConflicting(ctx, r.db, itemID, iv, policy)
	if err != nil {
		return domain.Reservation{}, fmt.Errorf("repo.ReservationRepo.FindConflicting: %w", err)
	}
	return result, nil
}

func findConflicting(ctx context.Context, q db, itemID uuid.UUID, iv domain.Interval, policy domain.ConflictPolicy) (domain.Reservation, error) {
	const sql = selectReservation + `
		WHERE r.item_id = @item_id
		  AND r.start_at < @end_at
		  AND @start_at < r.end_at
		  AND (@any_status OR r.status IN ('WAITING', 'APPROVED'))
		ORDER BY r.start_at, r.id
		LIMIT 1`

	args := pgx.NamedArgs{
		"item_id":    itemID,
		"start_at":   iv.Start,
		"end_at":     iv.End,
		"any_status": policy == domain.ConflictAnyStatus,
	}
	return scanReservation(q.QueryRow(ctx, sql, args))
}

func (r *pgReservationRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Reservation, error) {
	const q = selectReservation + `
		WHERE r.id = @id`

	result, err := scanReservation(r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id}))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.Reservation{}, fmt.Errorf("repo.ReservationRepo.GetByID: %w", domain.ErrReservationNotFound)
		}
		return domain.Reservation{}, fmt.Errorf("repo.ReservationRepo.GetByID: %w", err)
	}
	return result, nil
}

func (r *pgReservationRepo) ListByBooker(ctx context.Context, bookerID uuid.UUID, state domain.State, now time.Time, p domain.PaginationParams) ([]domain.Reservation, error) {
	rs, err := r.listBy(ctx, "r.booker_id", bookerID, state, now, p)
	if err != nil {
		return nil, fmt.Errorf("repo.ReservationRepo.ListByBooker: %w", err)
	}
	return rs, nil
}

func (r *pgReservationRepo) ListByOwner(ctx context.Context, ownerID uuid.UUID, state domain.State, now time.Time, p domain.PaginationParams) ([]domain.Reservation, error) {
	rs, err := r.listBy(ctx, "i.owner_id", ownerID, state, now, p)
	if err != nil {
		return nil, fmt.Errorf("repo.ReservationRepo.ListByOwner: %w", err)
	}
	return rs, nil
}

// listBy builds the listing query for one subject column. subjectCol is
// always one of two constants supplied by the callers above.
func (r *pgReservationRepo) listBy(ctx context.Context, subjectCol string, subjectID uuid.UUID, state domain.State, now time.Time, p domain.PaginationParams) ([]domain.Reservation, error) {
	filter, err := stateFilter(state)
	if err != nil {
		return nil, err
	}

	order := "r.start_at DESC, r.id DESC"
	if state.Ascending() {
		order = "r.start_at ASC, r.id ASC"
	}

	q := selectReservation + `
		WHERE ` + subjectCol + ` = @subject_id` + filter + `
		ORDER BY ` + order

	args := pgx.NamedArgs{"subject_id": subjectID, "now": now}
	if p.Paged() {
		q += `
		LIMIT @limit OFFSET @offset`
		args["limit"] = p.Limit
		args["offset"] = p.Offset()
	}

	rows, err := r.db.Query(ctx, q, args)
	if err != nil {
		return nil, err
	}
	return collectReservations(rows)
}

// stateFilter returns the extra WHERE fragment for a listing state.
// The time predicates mirror domain.Interval: [start_at, end_at) is half-open.
func stateFilter(state domain.State) (string, error) {
	switch state {
	case domain.StateAll:
		return "", nil
	case domain.StateWaiting:
		return ` AND r.status = 'WAITING'`, nil
	case domain.StateRejected:
		return ` AND r.status = 'REJECTED'`, nil
	case domain.StatePast:
		return ` AND r.end_at <= @now`, nil
	case domain.StateCurrent:
		return ` AND r.start_at <= @now AND r.end_at > @now`, nil
	case domain.StateFuture:
		return ` AND r.start_at > @now`, nil
	}
	return "", fmt.Errorf("%w: unknown state: %s", domain.ErrValidation, state)
}

func (r *pgReservationRepo) ListByItem(ctx context.Context, itemID uuid.UUID) ([]domain.Reservation, error) {
	const q = selectReservation + `
		WHERE r.item_id = @item_id
		ORDER BY r.start_at, r.id`

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{"item_id": itemID})
	if err != nil {
		return nil, fmt.Errorf("repo.ReservationRepo.ListByItem: %w", err)
	}
	rs, err := collectReservations(rows)
	if err != nil {
		return nil, fmt.Errorf("repo.ReservationRepo.ListByItem: %w", err)
	}
	return rs, nil
}

func (r *pgReservationRepo) FindFinished(ctx context.Context, itemID, bookerID uuid.UUID, now time.Time) (domain.Reservation, error) {
	const q = selectReservation + `
		WHERE r.item_id = @item_id
		  AND r.booker_id = @booker_id
		  AND r.status = 'APPROVED'
		  AND r.end_at <= @now
		ORDER BY r.end_at DESC
		LIMIT 1`

	args := pgx.NamedArgs{"item_id": itemID, "booker_id": bookerID, "now": now}
	result, err := scanReservation(r.db.QueryRow(ctx, q, args))
	if err != nil {
		return domain.Reservation{}, fmt.Errorf("repo.ReservationRepo.FindFinished: %w", err)
	}
	return result, nil
}

// Create runs the conflict check and the insert in one transaction.
// A transaction-scoped advisory lock keyed on the item serialises concurrent
// creations for the same item; the exclusion constraint on reservations is
// the backstop when another writer bypasses this path.
func (r *pgReservationRepo) Create(ctx context.Context, res domain.Reservation, policy domain.ConflictPolicy) (domain.Reservation, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return domain.Reservation{}, fmt.Errorf("repo.ReservationRepo.Create: begin: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	const lock = `SELECT pg_advisory_xact_lock(hashtextextended(@item_id::text, 0))`
	if _, err := tx.Exec(ctx, lock, pgx.NamedArgs{"item_id": res.ItemID.String()}); err != nil {
		return domain.Reservation{}, fmt.Errorf("repo.ReservationRepo.Create: lock: %w", err)
	}

	_, err = findConflicting(ctx, tx, res.ItemID, res.Interval(), policy)
	switch {
	case err == nil:
		return domain.Reservation{}, fmt.Errorf("repo.ReservationRepo.Create: %w", domain.ErrIntervalConflict)
	case !errors.Is(err, domain.ErrNotFound):
		return domain.Reservation{}, fmt.Errorf("repo.ReservationRepo.Create: conflict check: %w", err)
	}

	const q = `
		WITH ins AS (
			INSERT INTO reservations (item_id, booker_id, start_at, end_at, status)
			VALUES (@item_id, @booker_id, @start_at, @end_at, @status)
			RETURNING id, item_id, booker_id, start_at, end_at, status, created_at, updated_at
		)
		SELECT ins.id, ins.item_id, ins.booker_id, i.owner_id, ins.start_at, ins.end_at, ins.status, ins.created_at, ins.updated_at
		FROM ins
		JOIN items i ON i.id = ins.item_id`

	args := pgx.NamedArgs{
		"item_id":   res.ItemID,
		"booker_id": res.BookerID,
		"start_at":  res.Start,
		"end_at":    res.End,
		"status":    string(res.Status),
	}
	created, err := scanReservation(tx.QueryRow(ctx, q, args))
	if err != nil {
		return domain.Reservation{}, fmt.Errorf("repo.ReservationRepo.Create: %w", mapWriteError(err))
	}

	if err := tx.Commit(ctx); err != nil {
		return domain.Reservation{}, fmt.Errorf("repo.ReservationRepo.Create: commit: %w", mapWriteError(err))
	}
	return created, nil
}

// UpdateStatus is a compare-and-set on status. When no row matches, a second
// lookup tells a missing reservation apart from a lost race.
func (r *pgReservationRepo) UpdateStatus(ctx context.Context, id uuid.UUID, from, to domain.Status) (domain.Reservation, error) {
	const q = `
		WITH upd AS (
			UPDATE reservations
			SET status     = @to,
			    updated_at = now()
			WHERE id = @id
			  AND status = @from
			RETURNING id, item_id, booker_id, start_at, end_at, status, created_at, updated_at
		)
		SELECT upd.id, upd.item_id, upd.booker_id, i.owner_id, upd.start_at, upd.end_at, upd.status, upd.created_at, upd.updated_at
		FROM upd
		JOIN items i ON i.id = upd.item_id`

	args := pgx.NamedArgs{"id": id, "from": string(from), "to": string(to)}
	updated, err := scanReservation(r.db.QueryRow(ctx, q, args))
	if err == nil {
		return updated, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return domain.Reservation{}, fmt.Errorf("repo.ReservationRepo.UpdateStatus: %w", err)
	}

	current, err := r.GetByID(ctx, id)
	if err != nil {
		return domain.Reservation{}, fmt.Errorf("repo.ReservationRepo.UpdateStatus: %w", err)
	}
	return domain.Reservation{}, fmt.Errorf("repo.ReservationRepo.UpdateStatus: %w: status is %s, not %s",
		domain.ErrIllegalTransition, current.Status, from)
}

// mapWriteError converts constraint violations into domain errors.
func mapWriteError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgExclusionViolation:
			return domain.ErrIntervalConflict
		case pgForeignKeyViolation:
			return fmt.Errorf("%w: %s", domain.ErrNotFound, pgErr.ConstraintName)
		}
	}
	return err
}

// scanner is satisfied by both pgx.Row and pgx.Rows, allowing scanReservation
// to be reused for both QueryRow and Query calls.
type scanner interface {
	Scan(dest ...any) error
}

// scanReservation maps a single database row into a domain.Reservation.
// Returns domain.ErrNotFound when the row set is empty.
func scanReservation(s scanner) (domain.Reservation, error) {
	var (
		res                       domain.Reservation
		id, itemID, booker, owner pgtype.UUID
		status                    string
	)

	err := s.Scan(&id, &itemID, &booker, &owner, &res.Start, &res.End, &status, &res.CreatedAt, &res.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Reservation{}, domain.ErrNotFound
		}
		return domain.Reservation{}, err
	}

	res.ID = uuid.UUID(id.Bytes)
	res.ItemID = uuid.UUID(itemID.Bytes)
	res.BookerID = uuid.UUID(booker.Bytes)
	res.OwnerID = uuid.UUID(owner.Bytes)
	res.Status = domain.Status(status)
	if !res.Status.Valid() {
		return domain.Reservation{}, fmt.Errorf("reservation %s has unknown status %q", res.ID, status)
	}
	return res, nil
}

// collectReservations drains rows into a non-nil slice.
func collectReservations(rows pgx.Rows) ([]domain.Reservation, error) {
	defer rows.Close()

	out := []domain.Reservation{}
	for rows.Next() {
		res, err := scanReservation(rows)
		if err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		out = append(out, res)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return out, nil
}
