package repository

import (
	"context"

	"praytogether-backend/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// UserRepository handles database operations for users
type UserRepository struct {
	db *pgxpool.Pool
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *pgxpool.Pool) *UserRepository {
	return &UserRepository{db: db}
}

const userColumns = `id, email, COALESCE(password_hash, ''), provider, provider_subject, created_at, updated_at`

// Create inserts a user. Returns ErrDuplicate when the email is taken.
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (email, password_hash, provider, provider_subject)
		VALUES ($1, NULLIF($2, ''), $3, $4)
		RETURNING id, created_at, updated_at`

	err := r.db.QueryRow(
		ctx, query,
		user.Email,
		user.PasswordHash,
		user.Provider,
		user.ProviderSubject,
	).Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)

	return translate(err)
}

// GetByID retrieves a user by ID
func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return r.scanOne(ctx, query, id)
}

// GetByEmail retrieves a user by normalized email
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	return r.scanOne(ctx, query, email)
}

// GetByProviderSubject retrieves a user linked to an external identity
func (r *UserRepository) GetByProviderSubject(ctx context.Context, provider models.AuthProvider, subject string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE provider = $1 AND provider_subject = $2`
	return r.scanOne(ctx, query, provider, subject)
}

// LinkProvider attaches an external identity to an existing user
func (r *UserRepository) LinkProvider(ctx context.Context, id uuid.UUID, provider models.AuthProvider, subject string) error {
	query := `
		UPDATE users SET
			provider = $2,
			provider_subject = $3,
			updated_at = NOW()
		WHERE id = $1`

	tag, err := r.db.Exec(ctx, query, id, provider, subject)
	if err != nil {
		return translate(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *UserRepository) scanOne(ctx context.Context, query string, args ...interface{}) (*models.User, error) {
	user := &models.User{}
	err := r.db.QueryRow(ctx, query, args...).Scan(
		&user.ID,
		&user.Email,
		&user.PasswordHash,
		&user.Provider,
		&user.ProviderSubject,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, translate(err)
	}
	return user, nil
}
