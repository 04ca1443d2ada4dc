package session

import (
	"context"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sara-zarrad/dopaflow-frontend-sub000/internal/crmapi"
	"github.com/sara-zarrad/dopaflow-frontend-sub000/internal/domain"
)

func signed(t *testing.T, exp time.Time) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "7",
		ExpiresAt: jwt.NewNumericDate(exp),
	})
	s, err := tok.SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return s
}

func TestCheckToken(t *testing.T) {
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		token   string
		wantErr error
	}{
		{"empty", "", ErrNoToken},
		{"opaque token passes", "abc.def", nil},
		{"valid jwt", signed(t, now.Add(time.Hour)), nil},
		{"expired jwt", signed(t, now.Add(-time.Minute)), ErrTokenExpired},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckToken(tt.token, now)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
			assert.True(t, RequiresLogin(err))
		})
	}
}

func TestRequiresLogin(t *testing.T) {
	assert.True(t, RequiresLogin(&crmapi.APIError{StatusCode: http.StatusUnauthorized}))
	assert.False(t, RequiresLogin(&crmapi.APIError{StatusCode: http.StatusForbidden}))
	assert.False(t, RequiresLogin(errors.New("network down")))
}

type fakeDirectory struct {
	user  domain.User
	err   error
	calls int
}

func (f *fakeDirectory) CurrentUser(context.Context) (domain.User, error) {
	f.calls++
	return f.user, f.err
}

func TestProvider_Open(t *testing.T) {
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	dir := &fakeDirectory{user: domain.User{ID: 7, Username: "sara", Role: domain.RoleUser}}

	p := &Provider{
		Tokens: StaticToken(signed(t, now.Add(time.Hour))),
		Users:  dir,
		Now:    func() time.Time { return now },
	}

	sess, err := p.Open(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(7), sess.UserID())
	assert.Equal(t, now, sess.Opened)
	assert.Equal(t, 1, dir.calls)
}

func TestProvider_Open_ExpiredTokenSkipsLookup(t *testing.T) {
	now := time.Now()
	dir := &fakeDirectory{}
	p := &Provider{Tokens: StaticToken(signed(t, now.Add(-time.Hour))), Users: dir}

	_, err := p.Open(context.Background())
	assert.ErrorIs(t, err, ErrTokenExpired)
	assert.Zero(t, dir.calls)
}

func TestProvider_Open_LookupFailure(t *testing.T) {
	dir := &fakeDirectory{err: &crmapi.APIError{StatusCode: http.StatusUnauthorized, Message: "expired"}}
	p := &Provider{Tokens: StaticToken("opaque"), Users: dir}

	_, err := p.Open(context.Background())
	require.Error(t, err)
	assert.True(t, RequiresLogin(err))
}

func TestStaticToken(t *testing.T) {
	_, err := StaticToken("").Token(context.Background())
	assert.ErrorIs(t, err, ErrNoToken)

	tok, err := StaticToken("abc").Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "abc", tok)
}

func TestFileStore_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "token")
	store, err := NewFileStore(path)
	require.NoError(t, err)

	_, err = store.Token(context.Background())
	assert.ErrorIs(t, err, ErrNoToken)

	require.NoError(t, store.Save("  tok-123 \n"))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	tok, err := store.Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "tok-123", tok)

	require.NoError(t, store.Clear())
	require.NoError(t, store.Clear())
	_, err = store.Token(context.Background())
	assert.ErrorIs(t, err, ErrNoToken)
}

func TestFileStore_SaveRejectsEmpty(t *testing.T) {
	store, err := NewFileStore(filepath.Join(t.TempDir(), "token"))
	require.NoError(t, err)

	assert.ErrorIs(t, store.Save("   "), ErrNoToken)
}

func TestNewFileStore_ExpandsHome(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	store, err := NewFileStore("~/.dopaflow/token")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".dopaflow", "token"), store.Path)
}

// RedisStore needs a live server; set REDIS_TEST_URL to run it.
func TestRedisStore(t *testing.T) {
	url := os.Getenv("REDIS_TEST_URL")
	if url == "" {
		t.Skip("REDIS_TEST_URL not set")
	}
	opts, err := redis.ParseURL(url)
	require.NoError(t, err)
	client := redis.NewClient(opts)
	t.Cleanup(func() { _ = client.Close() })

	ctx := context.Background()
	store := NewRedisStore(client, time.Minute)

	id, err := store.Create(ctx, "tok-abc")
	require.NoError(t, err)

	tok, err := store.Source(id).Token(ctx)
	require.NoError(t, err)
	assert.Equal(t, "tok-abc", tok)

	require.NoError(t, store.Delete(ctx, id))
	_, err = store.Lookup(ctx, id)
	assert.ErrorIs(t, err, ErrNoToken)

	_, err = store.Create(ctx, "")
	assert.ErrorIs(t, err, ErrNoToken)
}
