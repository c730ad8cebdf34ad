package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"praytogether-backend/logger"
	"praytogether-backend/models"
	"praytogether-backend/repository"
	"praytogether-backend/requestctx"
	"praytogether-backend/storage"

	"github.com/google/uuid"
)

// MaxPhotoSize is the largest accepted profile photo
const MaxPhotoSize = 5 * 1024 * 1024

// maxFilenameLength is the width of files.filename
const maxFilenameLength = 255

// ProfileRepository persists profile documents
type ProfileRepository interface {
	GetByUID(ctx context.Context, uid uuid.UUID) (*models.UserProfile, error)
	Upsert(ctx context.Context, profile *models.UserProfile) error
}

// FileRepository persists uploaded file records
type FileRepository interface {
	Create(ctx context.Context, file *models.File) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.File, error)
	ListByUserID(ctx context.Context, userID uuid.UUID) ([]*models.File, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// ProfileService reads and merge-saves user profiles
type ProfileService struct {
	profileRepo   ProfileRepository
	fileRepo      FileRepository
	storage       storage.Storage
	publicBaseURL string
	log           *logger.Logger
	now           func() time.Time
}

// ProfileServiceOption is a functional option for ProfileService
type ProfileServiceOption func(*ProfileService)

// WithProfileRepository sets the profile repository
func WithProfileRepository(repo ProfileRepository) ProfileServiceOption {
	return func(s *ProfileService) {
		s.profileRepo = repo
	}
}

// WithFileRepository sets the file repository
func WithFileRepository(repo FileRepository) ProfileServiceOption {
	return func(s *ProfileService) {
		s.fileRepo = repo
	}
}

// WithStorage sets the photo storage backend
func WithStorage(st storage.Storage) ProfileServiceOption {
	return func(s *ProfileService) {
		s.storage = st
	}
}

// WithPublicBaseURL sets the absolute URL prefix used for photo links
func WithPublicBaseURL(base string) ProfileServiceOption {
	return func(s *ProfileService) {
		s.publicBaseURL = strings.TrimRight(base, "/")
	}
}

// ProfileWithLogger sets the logger
func ProfileWithLogger(log *logger.Logger) ProfileServiceOption {
	return func(s *ProfileService) {
		s.log = log
	}
}

// ProfileWithClock overrides the time source for timestamps
func ProfileWithClock(now func() time.Time) ProfileServiceOption {
	return func(s *ProfileService) {
		s.now = now
	}
}

// NewProfileService creates a new profile service
func NewProfileService(opts ...ProfileServiceOption) *ProfileService {
	s := &ProfileService{
		log: logger.NewNop(),
		now: time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Get returns the user's profile, or nil when there is none
func (s *ProfileService) Get(ctx context.Context, uid uuid.UUID) (*models.UserProfile, error) {
	if s.profileRepo == nil {
		return nil, errors.New("profile repository not set")
	}

	profile, err := s.profileRepo.GetByUID(ctx, uid)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, storageErr("load profile", err)
	}
	return profile, nil
}

// IsNewUser reports whether the user has not created a profile yet
func (s *ProfileService) IsNewUser(ctx context.Context, uid uuid.UUID) (bool, error) {
	profile, err := s.Get(ctx, uid)
	if err != nil {
		return false, err
	}
	return profile == nil, nil
}

// Save merges update into the stored profile and writes the result. The
// first write fills language and Bible version defaults.
func (s *ProfileService) Save(ctx context.Context, uid uuid.UUID, update models.ProfileUpdate) (*models.UserProfile, error) {
	existing, err := s.Get(ctx, uid)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	var profile models.UserProfile
	if existing != nil {
		profile = *existing
	} else {
		profile = models.UserProfile{UID: uid, CreatedAt: now}
	}
	previousLanguage := profile.PreferredLanguage

	mergeProfile(&profile, update)

	if profile.PreferredLanguage == "" {
		profile.PreferredLanguage = models.DefaultLocale
	}
	if profile.PreferredBibleVersion == "" {
		profile.PreferredBibleVersion = models.DefaultBibleVersion(profile.PreferredLanguage)
	}
	// A language switch without an explicit version picks the new language's default
	if update.PreferredBibleVersion == nil && profile.PreferredLanguage != previousLanguage &&
		!models.BibleVersionMatchesLanguage(profile.PreferredBibleVersion, profile.PreferredLanguage) {
		profile.PreferredBibleVersion = models.DefaultBibleVersion(profile.PreferredLanguage)
	}
	if v, ok := models.FindBibleVersion(profile.PreferredBibleVersion); ok {
		profile.PreferredBibleVersion = v.ID
	}

	if err := validateStruct(requestctx.Locale(ctx), profile); err != nil {
		return nil, err
	}

	profile.UID = uid
	profile.UpdatedAt = now
	if err := s.profileRepo.Upsert(ctx, &profile); err != nil {
		s.log.Error("profile save failed", "user_id", uid, "error", err)
		return nil, storageErr("save profile", err)
	}

	s.log.Info("profile saved", "user_id", uid, "created", existing == nil)
	return &profile, nil
}

// mergeProfile copies every provided field. Empty strings clear optional fields.
func mergeProfile(p *models.UserProfile, u models.ProfileUpdate) {
	mergeOptional(&p.Name, u.Name)
	mergeOptional(&p.PhotoURL, u.PhotoURL)
	mergeOptional(&p.Bio, u.Bio)
	mergeOptional(&p.Country, u.Country)
	mergeOptional(&p.City, u.City)

	if u.Religion != nil {
		p.Religion = strings.TrimSpace(*u.Religion)
	}
	if u.PreferredLanguage != nil {
		p.PreferredLanguage = models.Locale(strings.ToLower(strings.TrimSpace(string(*u.PreferredLanguage))))
	}
	if u.PreferredBibleVersion != nil {
		p.PreferredBibleVersion = strings.TrimSpace(*u.PreferredBibleVersion)
	}
}

func mergeOptional(dst **string, src *string) {
	if src == nil {
		return
	}
	v := strings.TrimSpace(*src)
	if v == "" {
		*dst = nil
		return
	}
	*dst = &v
}

// PhotoUpload is a profile photo received from a client
type PhotoUpload struct {
	Filename string
	Size     int64
	Data     io.Reader
}

// PhotoResult describes a stored photo
type PhotoResult struct {
	File     *models.File
	PhotoURL string
	// Profile is the updated profile, or nil when the user has none yet
	Profile  *models.UserProfile
}

// SetPhoto stores an image and points the profile's photoURL at it. Users
// without a profile get the URL back to include in their first save.
func (s *ProfileService) SetPhoto(ctx context.Context, uid uuid.UUID, upload PhotoUpload) (*PhotoResult, error) {
	if s.storage == nil || s.fileRepo == nil {
		return nil, errors.New("photo storage not configured")
	}
	if !storage.IsImage(upload.Filename) {
		return nil, ErrInvalidFileType
	}
	if upload.Size > MaxPhotoSize {
		return nil, ErrFileTooLarge
	}

	filename := truncateFilename(upload.Filename)
	fileID := uuid.New()
	path, err := s.storage.Upload(ctx, fileID, filename, upload.Data)
	if err != nil {
		return nil, storageErr("upload photo", err)
	}

	file := &models.File{
		ID:          fileID,
		UserID:      uid,
		Filename:    filename,
		MimeType:    storage.ContentType(filename),
		Size:        upload.Size,
		StoragePath: path,
	}
	if err := s.fileRepo.Create(ctx, file); err != nil {
		_ = s.storage.Delete(ctx, path)
		return nil, storageErr("record photo", err)
	}

	result := &PhotoResult{
		File:     file,
		PhotoURL: fmt.Sprintf("%s/api/files/%s", s.publicBaseURL, fileID),
	}

	existing, err := s.Get(ctx, uid)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		profile, err := s.Save(ctx, uid, models.ProfileUpdate{PhotoURL: &result.PhotoURL})
		if err != nil {
			return nil, err
		}
		result.Profile = profile
		s.pruneOldPhotos(ctx, uid, fileID)
	}

	return result, nil
}

// pruneOldPhotos removes every photo of the user except keep. Failures are
// logged and leave the orphan in place.
func (s *ProfileService) pruneOldPhotos(ctx context.Context, uid, keep uuid.UUID) {
	files, err := s.fileRepo.ListByUserID(ctx, uid)
	if err != nil {
		s.log.Warn("listing old photos failed", "user_id", uid, "error", err)
		return
	}
	for _, f := range files {
		if f.ID == keep {
			continue
		}
		if err := s.storage.Delete(ctx, f.StoragePath); err != nil {
			s.log.Warn("deleting old photo failed", "file_id", f.ID, "error", err)
			continue
		}
		if err := s.fileRepo.Delete(ctx, f.ID); err != nil {
			s.log.Warn("deleting photo record failed", "file_id", f.ID, "error", err)
		}
	}
}

// OpenPhoto returns a stored photo and its content. The caller closes the reader.
func (s *ProfileService) OpenPhoto(ctx context.Context, id uuid.UUID) (*models.File, io.ReadCloser, error) {
	if s.storage == nil || s.fileRepo == nil {
		return nil, nil, errors.New("photo storage not configured")
	}

	file, err := s.fileRepo.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, nil, ErrNotFound
	}
	if err != nil {
		return nil, nil, storageErr("load photo", err)
	}

	rc, err := s.storage.Download(ctx, file.StoragePath)
	if errors.Is(err, storage.ErrObjectNotFound) {
		return nil, nil, ErrNotFound
	}
	if err != nil {
		return nil, nil, storageErr("read photo", err)
	}
	return file, rc, nil
}

// truncateFilename shortens name to maxFilenameLength characters, keeping the
// extension so the stored content type still resolves
func truncateFilename(name string) string {
	if utf8.RuneCountInString(name) <= maxFilenameLength {
		return name
	}
	ext := filepath.Ext(name)
	extLen := utf8.RuneCountInString(ext)
	if extLen >= maxFilenameLength {
		ext, extLen = "", 0
	}
	base := []rune(strings.TrimSuffix(name, ext))
	return string(base[:maxFilenameLength-extLen]) + ext
}
