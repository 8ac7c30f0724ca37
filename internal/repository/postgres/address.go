package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/utafrali/addressbook/internal/domain"
	"github.com/utafrali/addressbook/pkg/database"
	apperrors "github.com/utafrali/addressbook/pkg/errors"
)

const (
	// lockIdentitySQL serializes appends per identity for the rest of the
	// transaction.
	lockIdentitySQL = `SELECT id FROM identities WHERE id = $1 FOR UPDATE`

	identityExistsSQL = `SELECT EXISTS(SELECT 1 FROM identities WHERE id = $1)`

	insertAddressSQL = `
		INSERT INTO addresses (id, user_id, house, apartment, category, full_address, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	listAddressesSQL = `
		SELECT id, user_id, house, apartment, category, full_address, created_at
		FROM addresses
		WHERE user_id = $1
		ORDER BY seq ASC`
)

// AddressRepository implements repository.AddressRepository using PostgreSQL.
type AddressRepository struct {
	db database.DBTX
}

// NewAddressRepository creates a new PostgreSQL-backed address repository.
func NewAddressRepository(db database.DBTX) *AddressRepository {
	return &AddressRepository{db: db}
}

// Append locks the owner's identity row, inserts the address and returns the
// owner's book, all in one transaction. The seq column orders the book.
func (r *AddressRepository) Append(ctx context.Context, a *domain.Address) (list []domain.Address, err error) {
	ctx, end := database.TraceQuery(ctx, "AppendAddress", insertAddressSQL)
	defer func() { end(err) }()

	err = database.InTx(ctx, r.db, func(tx pgx.Tx) error {
		var id string
		if err := tx.QueryRow(ctx, lockIdentitySQL, a.UserID).Scan(&id); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return apperrors.UserNotFound(a.UserID)
			}
			return fmt.Errorf("lock identity: %w", err)
		}

		if _, err := tx.Exec(ctx, insertAddressSQL,
			a.ID,
			a.UserID,
			a.House,
			a.Apartment,
			a.Category,
			a.FullAddress,
			a.CreatedAt,
		); err != nil {
			return fmt.Errorf("insert address: %w", err)
		}

		var err error
		list, err = listAddresses(ctx, tx, a.UserID)
		return err
	})
	if err != nil {
		return nil, err
	}

	return list, nil
}

// ListByUserID returns the user's addresses oldest first.
func (r *AddressRepository) ListByUserID(ctx context.Context, userID string) (list []domain.Address, err error) {
	ctx, end := database.TraceQuery(ctx, "ListAddresses", listAddressesSQL)
	defer func() { end(err) }()

	var exists bool
	if err = r.db.QueryRow(ctx, identityExistsSQL, userID).Scan(&exists); err != nil {
		return nil, fmt.Errorf("check identity: %w", err)
	}
	if !exists {
		return nil, apperrors.UserNotFound(userID)
	}

	return listAddresses(ctx, r.db, userID)
}

type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

func listAddresses(ctx context.Context, q querier, userID string) ([]domain.Address, error) {
	rows, err := q.Query(ctx, listAddressesSQL, userID)
	if err != nil {
		return nil, fmt.Errorf("list addresses: %w", err)
	}
	defer rows.Close()

	addresses := make([]domain.Address, 0)
	for rows.Next() {
		var a domain.Address
		if err := rows.Scan(
			&a.ID,
			&a.UserID,
			&a.House,
			&a.Apartment,
			&a.Category,
			&a.FullAddress,
			&a.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan address: %w", err)
		}
		addresses = append(addresses, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate addresses: %w", err)
	}

	return addresses, nil
}
