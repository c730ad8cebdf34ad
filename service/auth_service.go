package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"praytogether-backend/logger"
	"praytogether-backend/models"
	"praytogether-backend/repository"
	"praytogether-backend/requestctx"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const (
	sessionAudience    = "session"
	oauthStateAudience = "oauth_state"
	tokenIssuer        = "praytogether"
	oauthStateTTL      = 10 * time.Minute
	profileEditPath    = "/profile/edit"
)

// UserRepository persists accounts
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByProviderSubject(ctx context.Context, provider models.AuthProvider, subject string) (*models.User, error)
	LinkProvider(ctx context.Context, id uuid.UUID, provider models.AuthProvider, subject string) error
}

// NewUserChecker reports whether a user still has to create a profile
type NewUserChecker interface {
	IsNewUser(ctx context.Context, uid uuid.UUID) (bool, error)
}

// OAuthIdentity is the verified identity returned by an external provider
type OAuthIdentity struct {
	Subject       string
	Email         string
	EmailVerified bool
}

// OAuthProvider runs the authorization code flow against an identity provider
type OAuthProvider interface {
	AuthCodeURL(state, nonce string) string
	// Exchange trades the code for a verified identity. nonce must match the
	// one sent with AuthCodeURL.
	Exchange(ctx context.Context, code, nonce string) (*OAuthIdentity, error)
}

// Session is returned after a successful sign-in
type Session struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expiresAt"`
	User      *models.User `json:"user"`
	IsNewUser bool         `json:"isNewUser"`
	Redirect  string       `json:"redirect"`
}

type sessionClaims struct {
	jwt.RegisteredClaims
}

type oauthStateClaims struct {
	Redirect string `json:"redirect"`
	Nonce    string `json:"nonce"`
	jwt.RegisteredClaims
}

// AuthService handles password and Google sign-in and session tokens
type AuthService struct {
	userRepo  UserRepository
	profiles  NewUserChecker
	oauth     OAuthProvider
	jwtSecret []byte
	tokenTTL  time.Duration
	log       *logger.Logger
	now       func() time.Time
}

// AuthServiceOption is a functional option for AuthService
type AuthServiceOption func(*AuthService)

// WithUserRepository sets the user repository
func WithUserRepository(repo UserRepository) AuthServiceOption {
	return func(s *AuthService) {
		s.userRepo = repo
	}
}

// WithNewUserChecker sets the profile lookup used for isNewUser
func WithNewUserChecker(c NewUserChecker) AuthServiceOption {
	return func(s *AuthService) {
		s.profiles = c
	}
}

// WithOAuthProvider enables Google sign-in
func WithOAuthProvider(p OAuthProvider) AuthServiceOption {
	return func(s *AuthService) {
		s.oauth = p
	}
}

// WithJWT sets the signing secret and session lifetime
func WithJWT(secret string, ttl time.Duration) AuthServiceOption {
	return func(s *AuthService) {
		s.jwtSecret = []byte(secret)
		s.tokenTTL = ttl
	}
}

// AuthWithLogger sets the logger
func AuthWithLogger(log *logger.Logger) AuthServiceOption {
	return func(s *AuthService) {
		s.log = log
	}
}

// AuthWithClock overrides the time source for token timestamps
func AuthWithClock(now func() time.Time) AuthServiceOption {
	return func(s *AuthService) {
		s.now = now
	}
}

// NewAuthService creates a new auth service
func NewAuthService(opts ...AuthServiceOption) *AuthService {
	s := &AuthService{
		tokenTTL: 24 * time.Hour,
		log:      logger.NewNop(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Credentials is an email/password pair
type Credentials struct {
	Email    string `json:"email" validate:"required,email,max=320"`
	Password string `json:"password" validate:"required,min=6,max=72"`
	Redirect string `json:"redirect"`
}

// NormalizeEmail trims and lower-cases an address
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register creates a password account and signs it in
func (s *AuthService) Register(ctx context.Context, creds Credentials) (*Session, error) {
	creds.Email = NormalizeEmail(creds.Email)
	if err := validateStruct(requestctx.Locale(ctx), creds); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(creds.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Email:        creds.Email,
		PasswordHash: string(hash),
		Provider:     models.ProviderPassword,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrEmailTaken
		}
		return nil, storageErr("create user", err)
	}

	s.log.Info("user registered", "user_id", user.ID)
	return s.newSession(ctx, user, creds.Redirect)
}

// Login verifies a password and signs the user in
func (s *AuthService) Login(ctx context.Context, creds Credentials) (*Session, error) {
	email := NormalizeEmail(creds.Email)
	if email == "" || creds.Password == "" {
		return nil, ErrInvalidCredentials
	}

	user, err := s.userRepo.GetByEmail(ctx, email)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, storageErr("load user", err)
	}
	if user.PasswordHash == "" {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(creds.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return s.newSession(ctx, user, creds.Redirect)
}

// OAuthEnabled reports whether Google sign-in is configured
func (s *AuthService) OAuthEnabled() bool {
	return s.oauth != nil
}

// BeginOAuth returns the provider URL to send the browser to. The redirect
// target travels in the signed state.
func (s *AuthService) BeginOAuth(redirect string) (string, error) {
	if s.oauth == nil {
		return "", ErrOAuthDisabled
	}

	nonce, err := randomHex(16)
	if err != nil {
		return "", err
	}

	now := s.now()
	claims := oauthStateClaims{
		Redirect: SanitizeRedirect(redirect),
		Nonce:    nonce,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    tokenIssuer,
			Audience:  jwt.ClaimStrings{oauthStateAudience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(oauthStateTTL)),
		},
	}
	state, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("failed to sign oauth state: %w", err)
	}

	return s.oauth.AuthCodeURL(state, nonce), nil
}

// CompleteOAuth verifies the state, exchanges the code and signs the user in,
// creating or linking the account as needed
func (s *AuthService) CompleteOAuth(ctx context.Context, state, code string) (*Session, error) {
	if s.oauth == nil {
		return nil, ErrOAuthDisabled
	}

	claims := &oauthStateClaims{}
	if _, err := s.parse(state, oauthStateAudience, claims); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidOAuthState, err)
	}

	identity, err := s.oauth.Exchange(ctx, code, claims.Nonce)
	if err != nil {
		s.log.Warn("oauth exchange failed", "error", err)
		return nil, fmt.Errorf("%w: %v", ErrUnauthorized, err)
	}

	user, err := s.findOrCreateOAuthUser(ctx, identity)
	if err != nil {
		return nil, err
	}

	return s.newSession(ctx, user, claims.Redirect)
}

func (s *AuthService) findOrCreateOAuthUser(ctx context.Context, id *OAuthIdentity) (*models.User, error) {
	user, err := s.userRepo.GetByProviderSubject(ctx, models.ProviderGoogle, id.Subject)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, storageErr("load user", err)
	}

	email := NormalizeEmail(id.Email)
	if email == "" || !id.EmailVerified {
		return nil, fmt.Errorf("%w: google account has no verified email", ErrUnauthorized)
	}

	user, err = s.userRepo.GetByEmail(ctx, email)
	switch {
	case err == nil:
		if err := s.userRepo.LinkProvider(ctx, user.ID, models.ProviderGoogle, id.Subject); err != nil {
			return nil, storageErr("link provider", err)
		}
		user.Provider = models.ProviderGoogle
		user.ProviderSubject = &id.Subject
		s.log.Info("google account linked", "user_id", user.ID)
		return user, nil
	case !errors.Is(err, repository.ErrNotFound):
		return nil, storageErr("load user", err)
	}

	subject := id.Subject
	user = &models.User{
		Email:           email,
		Provider:        models.ProviderGoogle,
		ProviderSubject: &subject,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrEmailTaken
		}
		return nil, storageErr("create user", err)
	}
	s.log.Info("user registered", "user_id", user.ID, "provider", models.ProviderGoogle)
	return user, nil
}

// Authenticate validates a session token and returns its user id
func (s *AuthService) Authenticate(token string) (uuid.UUID, error) {
	if token == "" {
		return uuid.Nil, ErrUnauthorized
	}

	claims := &sessionClaims{}
	if _, err := s.parse(token, sessionAudience, claims); err != nil {
		return uuid.Nil, fmt.Errorf("%w: %v", ErrUnauthorized, err)
	}

	uid, err := uuid.Parse(claims.Subject)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: invalid subject", ErrUnauthorized)
	}
	return uid, nil
}

// Me returns the signed-in user and whether they still need a profile
func (s *AuthService) Me(ctx context.Context, uid uuid.UUID) (*models.User, bool, error) {
	user, err := s.userRepo.GetByID(ctx, uid)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, false, ErrUnauthorized
	}
	if err != nil {
		return nil, false, storageErr("load user", err)
	}

	isNew, err := s.isNewUser(ctx, uid)
	if err != nil {
		return nil, false, err
	}
	return user, isNew, nil
}

func (s *AuthService) parse(token, audience string, claims jwt.Claims) (*jwt.Token, error) {
	return jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return s.jwtSecret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithAudience(audience),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithTimeFunc(s.now),
	)
}

func (s *AuthService) newSession(ctx context.Context, user *models.User, redirect string) (*Session, error) {
	if len(s.jwtSecret) == 0 {
		return nil, errors.New("jwt secret not set")
	}

	now := s.now()
	expiresAt := now.Add(s.tokenTTL)
	claims := sessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    tokenIssuer,
			Subject:   user.ID.String(),
			Audience:  jwt.ClaimStrings{sessionAudience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.jwtSecret)
	if err != nil {
		return nil, fmt.Errorf("failed to sign session: %w", err)
	}

	isNew, err := s.isNewUser(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	target := SanitizeRedirect(redirect)
	if isNew {
		target = ProfileCompletionRedirect(target)
	}

	return &Session{
		Token:     token,
		ExpiresAt: expiresAt.UTC(),
		User:      user,
		IsNewUser: isNew,
		Redirect:  target,
	}, nil
}

func (s *AuthService) isNewUser(ctx context.Context, uid uuid.UUID) (bool, error) {
	if s.profiles == nil {
		return false, nil
	}
	return s.profiles.IsNewUser(ctx, uid)
}

// SanitizeRedirect keeps local paths and replaces anything else with "/"
func SanitizeRedirect(target string) string {
	target = strings.TrimSpace(target)
	if target == "" || !strings.HasPrefix(target, "/") ||
		strings.HasPrefix(target, "//") || strings.HasPrefix(target, "/\\") {
		return "/"
	}
	u, err := url.Parse(target)
	if err != nil || u.Scheme != "" || u.Host != "" || u.User != nil {
		return "/"
	}
	return target
}

// ProfileCompletionRedirect sends a new user to the profile form, then on to target
func ProfileCompletionRedirect(target string) string {
	return profileEditPath + "?redirectAfterProfile=" + url.QueryEscape(SanitizeRedirect(target))
}

func randomHex(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to read random bytes: %w", err)
	}
	return hex.EncodeToString(b), nil
}
