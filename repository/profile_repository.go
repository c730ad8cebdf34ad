package repository

import (
	"context"

	"praytogether-backend/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ProfileRepository stores one profile document per user
type ProfileRepository struct {
	db *pgxpool.Pool
}

// NewProfileRepository creates a new profile repository
func NewProfileRepository(db *pgxpool.Pool) *ProfileRepository {
	return &ProfileRepository{db: db}
}

// GetByUID retrieves the profile of a user. Returns ErrNotFound when the user
// has none yet.
func (r *ProfileRepository) GetByUID(ctx context.Context, uid uuid.UUID) (*models.UserProfile, error) {
	profile := &models.UserProfile{}
	query := `
		SELECT uid, name, photo_url, bio, religion, country, city,
			preferred_language, preferred_bible_version,
			created_at, updated_at
		FROM user_profiles
		WHERE uid = $1`

	err := r.db.QueryRow(ctx, query, uid).Scan(
		&profile.UID,
		&profile.Name,
		&profile.PhotoURL,
		&profile.Bio,
		&profile.Religion,
		&profile.Country,
		&profile.City,
		&profile.PreferredLanguage,
		&profile.PreferredBibleVersion,
		&profile.CreatedAt,
		&profile.UpdatedAt,
	)

	if err != nil {
		return nil, translate(err)
	}

	return profile, nil
}

// Upsert writes the whole document. created_at is kept from the first write;
// both timestamps come from the caller so the returned profile is resolved.
func (r *ProfileRepository) Upsert(ctx context.Context, profile *models.UserProfile) error {
	query := `
		INSERT INTO user_profiles (
			uid, name, photo_url, bio, religion, country, city,
			preferred_language, preferred_bible_version,
			created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11
		)
		ON CONFLICT (uid) DO UPDATE SET
			name = EXCLUDED.name,
			photo_url = EXCLUDED.photo_url,
			bio = EXCLUDED.bio,
			religion = EXCLUDED.religion,
			country = EXCLUDED.country,
			city = EXCLUDED.city,
			preferred_language = EXCLUDED.preferred_language,
			preferred_bible_version = EXCLUDED.preferred_bible_version,
			updated_at = EXCLUDED.updated_at
		RETURNING created_at, updated_at`

	err := r.db.QueryRow(
		ctx, query,
		profile.UID,
		profile.Name,
		profile.PhotoURL,
		profile.Bio,
		profile.Religion,
		profile.Country,
		profile.City,
		profile.PreferredLanguage,
		profile.PreferredBibleVersion,
		profile.CreatedAt,
		profile.UpdatedAt,
	).Scan(&profile.CreatedAt, &profile.UpdatedAt)

	return translate(err)
}
