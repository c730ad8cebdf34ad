package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"praytogether-backend/kvstore"
	"praytogether-backend/models"
	"praytogether-backend/repository"

	"github.com/google/generative-ai-go/genai"
	"github.com/google/uuid"
)

type fakeGenerator struct {
	mu       sync.Mutex
	response string
	err      error
	prompts  []string
	schemas  []*genai.Schema
}

func (f *fakeGenerator) GenerateJSON(ctx context.Context, prompt string, schema *genai.Schema) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.prompts = append(f.prompts, prompt)
	f.schemas = append(f.schemas, schema)
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return f.response, f.err
}

func (f *fakeGenerator) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.prompts)
}

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[uuid.UUID]*models.User
	err   error
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[uuid.UUID]*models.User)}
}

func (r *fakeUserRepo) Create(ctx context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	for _, u := range r.users {
		if u.Email == user.Email {
			return repository.ErrDuplicate
		}
	}
	user.ID = uuid.New()
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	cp := *user
	r.users[user.ID] = &cp
	return nil
}

func (r *fakeUserRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	u, ok := r.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	for _, u := range r.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeUserRepo) GetByProviderSubject(ctx context.Context, provider models.AuthProvider, subject string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Provider == provider && u.ProviderSubject != nil && *u.ProviderSubject == subject {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeUserRepo) LinkProvider(ctx context.Context, id uuid.UUID, provider models.AuthProvider, subject string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	u.Provider = provider
	u.ProviderSubject = &subject
	return nil
}

type fakeProfileRepo struct {
	mu       sync.Mutex
	profiles map[uuid.UUID]models.UserProfile
	err      error
}

func newFakeProfileRepo() *fakeProfileRepo {
	return &fakeProfileRepo{profiles: make(map[uuid.UUID]models.UserProfile)}
}

func (r *fakeProfileRepo) GetByUID(ctx context.Context, uid uuid.UUID) (*models.UserProfile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	p, ok := r.profiles[uid]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &p, nil
}

func (r *fakeProfileRepo) Upsert(ctx context.Context, profile *models.UserProfile) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	if existing, ok := r.profiles[profile.UID]; ok {
		profile.CreatedAt = existing.CreatedAt
	}
	r.profiles[profile.UID] = *profile
	return nil
}

func (r *fakeProfileRepo) IsNewUser(ctx context.Context, uid uuid.UUID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.profiles[uid]
	return !ok, nil
}

type fakeFileRepo struct {
	mu    sync.Mutex
	files map[uuid.UUID]models.File
}

func newFakeFileRepo() *fakeFileRepo {
	return &fakeFileRepo{files: make(map[uuid.UUID]models.File)}
}

func (r *fakeFileRepo) Create(ctx context.Context, file *models.File) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	file.CreatedAt = time.Now()
	r.files[file.ID] = *file
	return nil
}

func (r *fakeFileRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.File, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	f, ok := r.files[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &f, nil
}

func (r *fakeFileRepo) ListByUserID(ctx context.Context, userID uuid.UUID) ([]*models.File, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.File
	for _, f := range r.files {
		if f.UserID == userID {
			f := f
			out = append(out, &f)
		}
	}
	return out, nil
}

func (r *fakeFileRepo) Delete(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.files, id)
	return nil
}

// brokenKV fails every call, like a full or unreachable store
type brokenKV struct{}

var errBroken = errors.New("quota exceeded")

func (brokenKV) GetItem(ctx context.Context, key string) ([]byte, bool, error) {
	return nil, false, errBroken
}
func (brokenKV) SetItem(ctx context.Context, key string, value []byte) error { return errBroken }
func (brokenKV) RemoveItem(ctx context.Context, key string) error { return errBroken }
func (brokenKV) Close() error { return nil }

// removeFailKV behaves normally except that removals fail
type removeFailKV struct{ kvstore.Store }

func (*removeFailKV) RemoveItem(ctx context.Context, key string) error { return errBroken }

// writeFailKV reads from an empty store but refuses writes
type writeFailKV struct{ brokenKV }

func (writeFailKV) GetItem(ctx context.Context, key string) ([]byte, bool, error) {
	return nil, false, nil
}

type fakeOAuth struct {
	identity  *OAuthIdentity
	err       error
	lastNonce string
}

func (f *fakeOAuth) AuthCodeURL(state, nonce string) string {
	f.lastNonce = nonce
	return "https://accounts.example/auth?state=" + state
}

func (f *fakeOAuth) Exchange(ctx context.Context, code, nonce string) (*OAuthIdentity, error) {
	if f.err != nil {
		return nil, f.err
	}
	if nonce != f.lastNonce {
		return nil, errors.New("nonce mismatch")
	}
	return f.identity, nil
}

// fixedClock returns a clock frozen at t that advances only when told to
type fixedClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFixedClock(t time.Time) *fixedClock { return &fixedClock{t: t} }

func (c *fixedClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fixedClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}
