package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/otakumart/checkout-api/internal/domain/user"
)

var _ user.Repository = (*UserRepository)(nil)

// UserRepository implements user.Repository backed by PostgreSQL. Addresses
// are embedded sub-documents in a JSONB column; entries written by older
// storefront builds may carry no id, which is why address resolution has a
// positional fallback.
type UserRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository returns a UserRepository that uses the given pool.
func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

// GetByID fetches one user by id.
func (r *UserRepository) GetByID(ctx context.Context, id string) (*user.User, error) {
	var (
		u         user.User
		addrsJSON []byte
	)
	err := r.pool.QueryRow(ctx,
		`SELECT id, email, name, role, addresses FROM users WHERE id = $1`, id).
		Scan(&u.ID, &u.Email, &u.Name, &u.Role, &addrsJSON)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, user.ErrNotFound
		}
		return nil, fmt.Errorf("getting user %q: %w", id, err)
	}
	if err := json.Unmarshal(addrsJSON, &u.Addresses); err != nil {
		return nil, fmt.Errorf("unmarshaling addresses for user %q: %w", id, err)
	}
	return &u, nil
}
