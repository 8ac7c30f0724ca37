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
	insertIdentitySQL = `
		INSERT INTO identities (id, username, password_hash, created_at)
		VALUES ($1, $2, $3, $4)`

	selectIdentityByIDSQL = `
		SELECT id, username, password_hash, created_at
		FROM identities
		WHERE id = $1`

	selectIdentityByUsernameSQL = `
		SELECT id, username, password_hash, created_at
		FROM identities
		WHERE username = $1`
)

// IdentityRepository implements repository.IdentityRepository using PostgreSQL.
type IdentityRepository struct {
	db database.DBTX
}

// NewIdentityRepository creates a new PostgreSQL-backed identity repository.
func NewIdentityRepository(db database.DBTX) *IdentityRepository {
	return &IdentityRepository{db: db}
}

// Create inserts a new identity. Username uniqueness is enforced by the
// identities_username_key constraint rather than a prior lookup.
func (r *IdentityRepository) Create(ctx context.Context, identity *domain.Identity) (err error) {
	ctx, end := database.TraceQuery(ctx, "CreateIdentity", insertIdentitySQL)
	defer func() { end(err) }()

	_, err = r.db.Exec(ctx, insertIdentitySQL,
		identity.ID,
		identity.Username,
		identity.PasswordHash,
		identity.CreatedAt,
	)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return apperrors.DuplicateIdentity(identity.Username)
		}
		return fmt.Errorf("insert identity: %w", err)
	}

	return nil
}

// GetByID retrieves an identity by its ID.
func (r *IdentityRepository) GetByID(ctx context.Context, id string) (*domain.Identity, error) {
	return r.scanIdentity(ctx, "GetIdentityByID", selectIdentityByIDSQL, id)
}

// GetByUsername retrieves an identity by its exact username.
func (r *IdentityRepository) GetByUsername(ctx context.Context, username string) (*domain.Identity, error) {
	return r.scanIdentity(ctx, "GetIdentityByUsername", selectIdentityByUsernameSQL, username)
}

func (r *IdentityRepository) scanIdentity(ctx context.Context, op, query string, arg string) (_ *domain.Identity, err error) {
	ctx, end := database.TraceQuery(ctx, op, query)
	defer func() {
		if errors.Is(err, apperrors.ErrNotFound) {
			end(nil)
			return
		}
		end(err)
	}()

	var i domain.Identity
	err = r.db.QueryRow(ctx, query, arg).Scan(
		&i.ID,
		&i.Username,
		&i.PasswordHash,
		&i.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("scan identity: %w", err)
	}

	return &i, nil
}
