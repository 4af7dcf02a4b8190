package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v4"

	"retailforecast/models"
)

// ErrUserNotFound is returned when no user matches the login lookup.
var ErrUserNotFound = errors.New("user not found")

// UserRepository reads login identities from the users table.
type UserRepository struct {
	db Querier
}

func NewUserRepository(db Querier) *UserRepository {
	return &UserRepository{db: db}
}

// FindForLogin returns the user with the given email and role together with its password hash.
func (r *UserRepository) FindForLogin(ctx context.Context, email, role string) (models.User, string, error) {
	var (
		user         models.User
		passwordHash string
	)

	err := r.db.QueryRow(ctx, `
		SELECT id, name, email, password_hash, role, is_active, phone, assigned_shop_id, merchant_id, created_at, updated_at
		FROM users
		WHERE email = $1 AND role = $2`, email, role).Scan(
		&user.ID, &user.Name, &user.Email, &passwordHash, &user.Role, &user.IsActive,
		&user.Phone, &user.AssignedShopID, &user.MerchantID,
		&user.CreatedAt, &user.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.User{}, "", ErrUserNotFound
	}
	if err != nil {
		return models.User{}, "", fmt.Errorf("query user %s: %w", email, err)
	}
	return user, passwordHash, nil
}
