package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/pkordes/shareit/backend/internal/domain"
)

// ItemRepo is the read-only item lookup the booking engine depends on.
// The returned snapshot is valid for the duration of one engine operation.
type ItemRepo interface {
	// GetByID retrieves an item by primary key.
	// Returns domain.ErrItemNotFound if no item with that ID exists.
	GetByID(ctx context.Context, id uuid.UUID) (domain.Item, error)
}

// pgItemRepo is the Postgres implementation of ItemRepo.
type pgItemRepo struct {
	db db
}

// NewItemRepo constructs an ItemRepo backed by the provided db connection.
func NewItemRepo(db db) ItemRepo {
	return &pgItemRepo{db: db}
}

func (r *pgItemRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Item, error) {
	const q = `
		SELECT id, name, description, available, owner_id, created_at
		FROM items
		WHERE id = @id`

	var (
		it      domain.Item
		iid     pgtype.UUID
		ownerID pgtype.UUID
	)
	err := r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id}).
		Scan(&iid, &it.Name, &it.Description, &it.Available, &ownerID, &it.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Item{}, fmt.Errorf("repo.ItemRepo.GetByID: %w", domain.ErrItemNotFound)
		}
		return domain.Item{}, fmt.Errorf("repo.ItemRepo.GetByID: %w", err)
	}
	it.ID = uuid.UUID(iid.Bytes)
	it.OwnerID = uuid.UUID(ownerID.Bytes)
	return it, nil
}
