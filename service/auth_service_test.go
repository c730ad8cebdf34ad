package service

import (
	"context"
	"errors"
	"net/url"
	"testing"
	"time"

	"praytogether-backend/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testJWTSecret = "0123456789abcdef0123456789abcdef"

type authFixture struct {
	svc      *AuthService
	users    *fakeUserRepo
	profiles *fakeProfileRepo
	oauth    *fakeOAuth
	clock    *fixedClock
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()
	f := &authFixture{
		users:    newFakeUserRepo(),
		profiles: newFakeProfileRepo(),
		oauth: &fakeOAuth{identity: &OAuthIdentity{
			Subject:       "google-sub-1",
			Email:         "Maria@Example.com",
			EmailVerified: true,
		}},
		clock: newFixedClock(time.Now()),
	}
	f.svc = NewAuthService(
		WithUserRepository(f.users),
		WithNewUserChecker(f.profiles),
		WithOAuthProvider(f.oauth),
		WithJWT(testJWTSecret, time.Hour),
		AuthWithClock(f.clock.Now),
	)
	return f
}

func TestRegisterAndLogin(t *testing.T) {
	ctx := context.Background()

	t.Run("RegisterNormalizesEmail", func(t *testing.T) {
		f := newAuthFixture(t)

		session, err := f.svc.Register(ctx, Credentials{Email: "  Juan@Example.COM ", Password: "secret1", Redirect: "/saved-plans"})
		require.NoError(t, err)

		assert.Equal(t, "juan@example.com", session.User.Email)
		assert.Equal(t, models.ProviderPassword, session.User.Provider)
		assert.True(t, session.IsNewUser)
		assert.Equal(t, "/profile/edit?redirectAfterProfile=%2Fsaved-plans", session.Redirect)

		uid, err := f.svc.Authenticate(session.Token)
		require.NoError(t, err)
		assert.Equal(t, session.User.ID, uid)
	})

	t.Run("RegisterValidation", func(t *testing.T) {
		f := newAuthFixture(t)

		_, err := f.svc.Register(ctx, Credentials{Email: "not-an-email", Password: "12345"})

		var verr *ValidationError
		require.True(t, errors.As(err, &verr))
		assert.Len(t, verr.Violations, 2)
	})

	t.Run("DuplicateEmail", func(t *testing.T) {
		f := newAuthFixture(t)

		_, err := f.svc.Register(ctx, Credentials{Email: "a@example.com", Password: "secret1"})
		require.NoError(t, err)
		_, err = f.svc.Register(ctx, Credentials{Email: "A@example.com", Password: "secret2"})
		assert.True(t, errors.Is(err, ErrEmailTaken))
	})

	t.Run("Login", func(t *testing.T) {
		f := newAuthFixture(t)

		registered, err := f.svc.Register(ctx, Credentials{Email: "a@example.com", Password: "secret1"})
		require.NoError(t, err)
		_, err = f.svc.Login(ctx, Credentials{Email: "a@example.com", Password: "wrong-pass"})
		assert.True(t, errors.Is(err, ErrInvalidCredentials))
		_, err = f.svc.Login(ctx, Credentials{Email: "nobody@example.com", Password: "secret1"})
		assert.True(t, errors.Is(err, ErrInvalidCredentials))

		// with a profile the user is sent straight to the requested page
		f.profiles.profiles[registered.User.ID] = models.UserProfile{UID: registered.User.ID}
		session, err := f.svc.Login(ctx, Credentials{Email: "A@Example.com", Password: "secret1", Redirect: "https://evil.example/phish"})
		require.NoError(t, err)
		assert.False(t, session.IsNewUser)
		assert.Equal(t, "/", session.Redirect)
	})

	t.Run("GoogleOnlyAccountCannotUsePassword", func(t *testing.T) {
		f := newAuthFixture(t)
		sub := "sub"
		require.NoError(t, f.users.Create(ctx, &models.User{Email: "g@example.com", Provider: models.ProviderGoogle, ProviderSubject: &sub}))

		_, err := f.svc.Login(ctx, Credentials{Email: "g@example.com", Password: "anything"})
		assert.True(t, errors.Is(err, ErrInvalidCredentials))
	})
}

func TestAuthenticate(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	session, err := f.svc.Register(ctx, Credentials{Email: "a@example.com", Password: "secret1"})
	require.NoError(t, err)

	_, err = f.svc.Authenticate("")
	assert.True(t, errors.Is(err, ErrUnauthorized))

	_, err = f.svc.Authenticate("garbage")
	assert.True(t, errors.Is(err, ErrUnauthorized))

	other := NewAuthService(WithJWT("another-secret-another-secret-xx", time.Hour))
	_, err = other.Authenticate(session.Token)
	assert.True(t, errors.Is(err, ErrUnauthorized))

	f.clock.Advance(2 * time.Hour)
	_, err = f.svc.Authenticate(session.Token)
	assert.True(t, errors.Is(err, ErrUnauthorized))
}

func TestGoogleOAuth(t *testing.T) {
	ctx := context.Background()

	stateFrom := func(t *testing.T, authURL string) string {
		t.Helper()
		u, err := url.Parse(authURL)
		require.NoError(t, err)
		return u.Query().Get("state")
	}

	t.Run("CreatesUser", func(t *testing.T) {
		f := newAuthFixture(t)

		authURL, err := f.svc.BeginOAuth("/saved-plans")
		require.NoError(t, err)
		state := stateFrom(t, authURL)

		session, err := f.svc.CompleteOAuth(ctx, state, "code")
		require.NoError(t, err)
		assert.Equal(t, "maria@example.com", session.User.Email)
		assert.Equal(t, models.ProviderGoogle, session.User.Provider)
		assert.True(t, session.IsNewUser)
		assert.Equal(t, "/profile/edit?redirectAfterProfile=%2Fsaved-plans", session.Redirect)

		// second sign-in finds the same account
		authURL, err = f.svc.BeginOAuth("")
		require.NoError(t, err)
		again, err := f.svc.CompleteOAuth(ctx, stateFrom(t, authURL), "code")
		require.NoError(t, err)
		assert.Equal(t, session.User.ID, again.User.ID)
	})

	t.Run("LinksExistingPasswordAccount", func(t *testing.T) {
		f := newAuthFixture(t)
		registered, err := f.svc.Register(ctx, Credentials{Email: "maria@example.com", Password: "secret1"})
		require.NoError(t, err)

		authURL, err := f.svc.BeginOAuth("/")
		require.NoError(t, err)
		session, err := f.svc.CompleteOAuth(ctx, stateFrom(t, authURL), "code")
		require.NoError(t, err)
		assert.Equal(t, registered.User.ID, session.User.ID)
	})

	t.Run("UnverifiedEmailRejected", func(t *testing.T) {
		f := newAuthFixture(t)
		f.oauth.identity.EmailVerified = false

		authURL, err := f.svc.BeginOAuth("/")
		require.NoError(t, err)
		_, err = f.svc.CompleteOAuth(ctx, stateFrom(t, authURL), "code")
		assert.True(t, errors.Is(err, ErrUnauthorized))
	})

	t.Run("StateChecks", func(t *testing.T) {
		f := newAuthFixture(t)

		_, err := f.svc.CompleteOAuth(ctx, "forged", "code")
		assert.True(t, errors.Is(err, ErrInvalidOAuthState))

		// a session token is not a valid state
		session, err := f.svc.Register(ctx, Credentials{Email: "a@example.com", Password: "secret1"})
		require.NoError(t, err)
		_, err = f.svc.CompleteOAuth(ctx, session.Token, "code")
		assert.True(t, errors.Is(err, ErrInvalidOAuthState))

		// and a state is not a session token
		authURL, err := f.svc.BeginOAuth("/")
		require.NoError(t, err)
		_, err = f.svc.Authenticate(stateFrom(t, authURL))
		assert.True(t, errors.Is(err, ErrUnauthorized))

		f.clock.Advance(oauthStateTTL + time.Minute)
		_, err = f.svc.CompleteOAuth(ctx, stateFrom(t, authURL), "code")
		assert.True(t, errors.Is(err, ErrInvalidOAuthState))
	})

	t.Run("Disabled", func(t *testing.T) {
		svc := NewAuthService(WithJWT(testJWTSecret, time.Hour))
		assert.False(t, svc.OAuthEnabled())

		_, err := svc.BeginOAuth("/")
		assert.True(t, errors.Is(err, ErrOAuthDisabled))
		_, err = svc.CompleteOAuth(ctx, "state", "code")
		assert.True(t, errors.Is(err, ErrOAuthDisabled))
	})
}

func TestMe(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	session, err := f.svc.Register(ctx, Credentials{Email: "a@example.com", Password: "secret1"})
	require.NoError(t, err)

	user, isNew, err := f.svc.Me(ctx, session.User.ID)
	require.NoError(t, err)
	assert.Equal(t, "a@example.com", user.Email)
	assert.True(t, isNew)

	_, _, err = f.svc.Me(ctx, uuid.New())
	assert.True(t, errors.Is(err, ErrUnauthorized))
}

func TestSanitizeRedirect(t *testing.T) {
	cases := map[string]string{
		"":                      "/",
		"/":                     "/",
		"/saved-plans":          "/saved-plans",
		"/profile/edit?x=1":     "/profile/edit?x=1",
		"//evil.example":        "/",
		"/\\evil.example":       "/",
		"https://evil.example/": "/",
		"javascript:alert(1)":   "/",
		"saved-plans":           "/",
		"  /saved-plans  ":      "/saved-plans",
	}
	for in, want := range cases {
		assert.Equal(t, want, SanitizeRedirect(in), "input %q", in)
	}
}
