package repository

import (
	"context"

	"praytogether-backend/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// FileRepository handles database operations for uploaded profile photos
type FileRepository struct {
	db *pgxpool.Pool
}

const fileColumns = `id, user_id, filename, mime_type, size, storage_path, created_at`

// NewFileRepository creates a new file repository
func NewFileRepository(db *pgxpool.Pool) *FileRepository {
	return &FileRepository{db: db}
}

// Create creates a new file record. The caller assigns the ID so the storage
// path can be derived from it before the row exists.
func (r *FileRepository) Create(ctx context.Context, file *models.File) error {
	query := `
		INSERT INTO files (
			id, user_id, filename, mime_type, size, storage_path
		) VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at`

	err := r.db.QueryRow(
		ctx, query,
		file.ID,
		file.UserID,
		file.Filename,
		file.MimeType,
		file.Size,
		file.StoragePath,
	).Scan(&file.CreatedAt)

	return translate(err)
}

// GetByID loads a photo record. Returns ErrNotFound for unknown ids.
func (r *FileRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.File, error) {
	row := r.db.QueryRow(ctx, `SELECT `+fileColumns+` FROM files WHERE id = $1`, id)
	file, err := scanFile(row)
	if err != nil {
		return nil, translate(err)
	}
	return file, nil
}

// ListByUserID returns every photo the user uploaded, newest first
func (r *FileRepository) ListByUserID(ctx context.Context, userID uuid.UUID) ([]*models.File, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+fileColumns+`
		FROM files
		WHERE user_id = $1
		ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	files := make([]*models.File, 0)
	for rows.Next() {
		file, err := scanFile(rows)
		if err != nil {
			return nil, err
		}
		files = append(files, file)
	}
	return files, rows.Err()
}

// Delete removes a photo record. The stored object is the caller's concern.
func (r *FileRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM files WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanFile(row pgx.Row) (*models.File, error) {
	file := &models.File{}
	err := row.Scan(
		&file.ID,
		&file.UserID,
		&file.Filename,
		&file.MimeType,
		&file.Size,
		&file.StoragePath,
		&file.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return file, nil
}
