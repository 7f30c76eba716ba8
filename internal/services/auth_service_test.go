package services_test

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anjaswicak/test-fullstack/internal/apperr"
	"github.com/anjaswicak/test-fullstack/internal/models"
	"github.com/anjaswicak/test-fullstack/internal/pgtest"
	"github.com/anjaswicak/test-fullstack/internal/services"
)

func TestRegisterThenAuthenticate(t *testing.T) {
	db := pgtest.DB(t)
	svc := services.NewAuthService(db, testTokens())
	ctx := context.Background()

	user, err := svc.Register(ctx, "alice", "password1")
	require.NoError(t, err)
	assert.NotZero(t, user.ID)
	assert.Equal(t, "alice", user.Username)
	assert.NotEqual(t, "password1", user.PasswordHash)

	got, err := svc.Authenticate(ctx, "alice", "password1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, user.ID, got.ID)

	got, err = svc.Authenticate(ctx, "alice", "wrong")
	require.NoError(t, err)
	assert.Nil(t, got)

	got, err = svc.Authenticate(ctx, "nobody", "password1")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestRegisterThenLoginWithSameInput(t *testing.T) {
	cases := []struct {
		name   string
		input  string
		stored string
	}{
		{name: "surrounding spaces", input: " alice ", stored: "alice"},
		{name: "non-ascii", input: "ålice", stored: "ålice"},
		{name: "decomposed accent", input: "a\u030alice", stored: "ålice"},
		{name: "minimum length", input: "bob", stored: "bob"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			db := pgtest.DB(t)
			svc := services.NewAuthService(db, testTokens())
			ctx := context.Background()

			user, err := svc.Register(ctx, tc.input, "password1")
			require.NoError(t, err)
			assert.Equal(t, tc.stored, user.Username)

			got, err := svc.Authenticate(ctx, tc.input, "password1")
			require.NoError(t, err)
			require.NotNil(t, got)
			assert.Equal(t, user.ID, got.ID)

			pair, err := svc.Login(ctx, tc.input, "password1")
			require.NoError(t, err)
			assert.NotEmpty(t, pair.AccessToken)
		})
	}
}

func TestRegisterDuplicateUsername(t *testing.T) {
	db := pgtest.DB(t)
	svc := services.NewAuthService(db, testTokens())
	ctx := context.Background()

	_, err := svc.Register(ctx, "alice", "password1")
	require.NoError(t, err)

	_, err = svc.Register(ctx, "alice", "other")
	assert.ErrorIs(t, err, services.ErrUsernameTaken)
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))
}

func TestRegisterValidation(t *testing.T) {
	db := pgtest.DB(t)
	svc := services.NewAuthService(db, testTokens())
	ctx := context.Background()

	_, err := svc.Register(ctx, "", "password1")
	assert.ErrorIs(t, err, services.ErrCredentialsRequired)

	_, err = svc.Register(ctx, "alice", "")
	assert.ErrorIs(t, err, services.ErrCredentialsRequired)

	_, err = svc.Register(ctx, "al", "password1")
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))

	_, err = svc.Register(ctx, "alice", strings.Repeat("x", 73))
	assert.ErrorIs(t, err, services.ErrPasswordTooLong)
}

func TestLoginPersistsRefreshToken(t *testing.T) {
	db := pgtest.DB(t)
	svc := services.NewAuthService(db, testTokens())
	ctx := context.Background()
	register(t, db, "alice")

	_, err := svc.Login(ctx, "alice", "bad")
	assert.ErrorIs(t, err, services.ErrInvalidCredentials)

	_, err = svc.Login(ctx, "alice", "")
	assert.ErrorIs(t, err, services.ErrCredentialsRequired)

	pair, err := svc.Login(ctx, "alice", "alice-pass")
	require.NoError(t, err)
	assert.NotEmpty(t, pair.AccessToken)
	assert.NotEmpty(t, pair.RefreshToken)

	var stored models.RefreshToken
	require.NoError(t, db.First(&stored, "id = ?", pair.RefreshID).Error)
	assert.Nil(t, stored.RevokedAt)
	assert.WithinDuration(t, pair.RefreshExpiresAt, stored.ExpiresAt, time.Second)
}

func TestRefreshRotatesAndDetectsReuse(t *testing.T) {
	db := pgtest.DB(t)
	svc := services.NewAuthService(db, testTokens())
	ctx := context.Background()
	register(t, db, "alice")

	first, err := svc.Login(ctx, "alice", "alice-pass")
	require.NoError(t, err)

	second, err := svc.Refresh(ctx, first.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, first.RefreshID, second.RefreshID)

	var old models.RefreshToken
	require.NoError(t, db.First(&old, "id = ?", first.RefreshID).Error)
	require.NotNil(t, old.RevokedAt)
	require.NotNil(t, old.ReplacedBy)
	assert.Equal(t, second.RefreshID, *old.ReplacedBy)

	// Replaying the rotated token revokes the whole family.
	_, err = svc.Refresh(ctx, first.RefreshToken)
	assert.ErrorIs(t, err, services.ErrInvalidRefresh)

	_, err = svc.Refresh(ctx, second.RefreshToken)
	assert.ErrorIs(t, err, services.ErrInvalidRefresh)
}

func TestRefreshConcurrentSingleWinner(t *testing.T) {
	db := pgtest.DB(t)
	svc := services.NewAuthService(db, testTokens())
	ctx := context.Background()
	register(t, db, "alice")

	pair, err := svc.Login(ctx, "alice", "alice-pass")
	require.NoError(t, err)

	const callers = 4
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		wins int
	)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := svc.Refresh(ctx, pair.RefreshToken); err == nil {
				mu.Lock()
				wins++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, wins)
}

func TestRefreshRejectsBadTokens(t *testing.T) {
	db := pgtest.DB(t)
	svc := services.NewAuthService(db, testTokens())
	ctx := context.Background()
	register(t, db, "alice")

	_, err := svc.Refresh(ctx, "")
	assert.ErrorIs(t, err, services.ErrNoRefreshToken)

	_, err = svc.Refresh(ctx, "not-a-jwt")
	assert.ErrorIs(t, err, services.ErrInvalidRefresh)

	pair, err := svc.Login(ctx, "alice", "alice-pass")
	require.NoError(t, err)
	_, err = svc.Refresh(ctx, pair.AccessToken)
	assert.ErrorIs(t, err, services.ErrInvalidRefresh)
}

func TestLogoutRevokesRefreshToken(t *testing.T) {
	db := pgtest.DB(t)
	svc := services.NewAuthService(db, testTokens())
	ctx := context.Background()
	register(t, db, "alice")

	pair, err := svc.Login(ctx, "alice", "alice-pass")
	require.NoError(t, err)

	require.NoError(t, svc.Logout(ctx, pair.RefreshToken))
	_, err = svc.Refresh(ctx, pair.RefreshToken)
	assert.ErrorIs(t, err, services.ErrInvalidRefresh)

	assert.NoError(t, svc.Logout(ctx, ""))
	assert.NoError(t, svc.Logout(ctx, "garbage"))
}

func TestStaleCookieAfterLogoutKeepsOtherSessions(t *testing.T) {
	db := pgtest.DB(t)
	svc := services.NewAuthService(db, testTokens())
	ctx := context.Background()
	register(t, db, "alice")

	laptop, err := svc.Login(ctx, "alice", "alice-pass")
	require.NoError(t, err)
	phone, err := svc.Login(ctx, "alice", "alice-pass")
	require.NoError(t, err)

	require.NoError(t, svc.Logout(ctx, laptop.RefreshToken))
	_, err = svc.Refresh(ctx, laptop.RefreshToken)
	assert.ErrorIs(t, err, services.ErrInvalidRefresh)

	next, err := svc.Refresh(ctx, phone.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, phone.RefreshID, next.RefreshID)
}

func TestDeleteAccount(t *testing.T) {
	db := pgtest.DB(t)
	ctx := context.Background()
	auth := services.NewAuthService(db, testTokens())
	posts := services.NewPostService(db)
	social := services.NewSocialService(db)

	alice := register(t, db, "alice")
	bob := register(t, db, "bob")
	_, err := posts.Create(ctx, alice.ID, "bye")
	require.NoError(t, err)
	_, err = social.Follow(ctx, bob.ID, alice.ID)
	require.NoError(t, err)
	_, err = auth.Login(ctx, "alice", "alice-pass")
	require.NoError(t, err)

	assert.ErrorIs(t, auth.DeleteAccount(ctx, alice.ID, ""), services.ErrPasswordRequired)
	assert.ErrorIs(t, auth.DeleteAccount(ctx, alice.ID, "wrong"), services.ErrIncorrectPassword)
	require.NoError(t, auth.DeleteAccount(ctx, alice.ID, "alice-pass"))
	assert.ErrorIs(t, auth.DeleteAccount(ctx, alice.ID, "alice-pass"), services.ErrUserNotFound)

	for _, model := range []interface{}{&models.Post{}, &models.Follow{}, &models.RefreshToken{}} {
		var n int64
		require.NoError(t, db.Model(model).Count(&n).Error)
		assert.Zero(t, n)
	}
}
