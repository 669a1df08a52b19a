package session

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	models "cartcraft/model"
	"cartcraft/notify"
	"cartcraft/store"
)

var fixedNow = time.UnixMilli(1700000000000)

func newSession(t *testing.T, st store.Store) (*Session, *notify.Recorder) {
	t.Helper()
	rec := &notify.Recorder{}
	s, err := Open(context.Background(), st, rec,
		WithBcryptCost(bcrypt.MinCost),
		WithClock(func() time.Time { return fixedNow }))
	require.NoError(t, err)
	return s, rec
}

func storedUsers(t *testing.T, st store.Store) []models.User {
	t.Helper()
	var users []models.User
	require.NoError(t, store.GetJSON(context.Background(), st, store.KeyUsers, &users))
	return users
}

func TestSignup_LogsInAndPersists(t *testing.T) {
	st := store.NewMemoryStore()
	s, rec := newSession(t, st)
	ctx := context.Background()

	u, err := s.Signup(ctx, "Asha", "asha@example.com", "s3cret")
	require.NoError(t, err)
	assert.Equal(t, "1700000000000", u.ID)
	assert.NotEqual(t, "s3cret", u.Password)
	assert.Equal(t, "Welcome to CartCraft, Asha!", rec.Last().Message)

	cur, ok := s.Current()
	require.True(t, ok)
	assert.Equal(t, u, cur)

	users := storedUsers(t, st)
	require.Len(t, users, 1)
	assert.Equal(t, "asha@example.com", users[0].Email)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(users[0].Password), []byte("s3cret")))

	var persisted models.User
	require.NoError(t, store.GetJSON(ctx, st, store.KeyCurrentUser, &persisted))
	assert.Equal(t, u, persisted)
}

func TestSignup_DuplicateEmailChangesNothing(t *testing.T) {
	st := store.NewMemoryStore()
	s, rec := newSession(t, st)
	ctx := context.Background()

	_, err := s.Signup(ctx, "Asha", "asha@example.com", "s3cret")
	require.NoError(t, err)
	require.NoError(t, s.Logout(ctx))
	before := storedUsers(t, st)

	_, err = s.Signup(ctx, "Imposter", "asha@example.com", "other")
	assert.ErrorIs(t, err, ErrEmailTaken)
	assert.Equal(t, notify.Notice{Level: notify.Error, Message: "User with this email already exists"}, rec.Last())

	assert.Equal(t, before, storedUsers(t, st))
	assert.False(t, s.LoggedIn())
	_, err = st.Get(ctx, store.KeyCurrentUser)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestSignup_MissingFields(t *testing.T) {
	s, _ := newSession(t, store.NewMemoryStore())
	_, err := s.Signup(context.Background(), " ", "a@b.c", "pw")
	assert.ErrorIs(t, err, ErrMissingFields)
	_, err = s.Signup(context.Background(), "A", "a@b.c", "")
	assert.ErrorIs(t, err, ErrMissingFields)
	assert.False(t, s.LoggedIn())
}

func TestLogin(t *testing.T) {
	st := store.NewMemoryStore()
	s, rec := newSession(t, st)
	ctx := context.Background()

	_, err := s.Signup(ctx, "Ravi", "ravi@example.com", "pa55")
	require.NoError(t, err)
	require.NoError(t, s.Logout(ctx))

	_, err = s.Login(ctx, "ravi@example.com", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	assert.False(t, s.LoggedIn())
	assert.Equal(t, "Invalid email or password", rec.Last().Message)

	_, err = s.Login(ctx, "nobody@example.com", "pa55")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	assert.False(t, s.LoggedIn())

	// email match is exact
	_, err = s.Login(ctx, "RAVI@example.com", "pa55")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	u, err := s.Login(ctx, "ravi@example.com", "pa55")
	require.NoError(t, err)
	assert.Equal(t, "Ravi", u.Name)
	assert.True(t, s.LoggedIn())
	assert.Equal(t, "Welcome back, Ravi!", rec.Last().Message)
}

func TestLogin_EmptyRegistry(t *testing.T) {
	s, _ := newSession(t, store.NewMemoryStore())
	_, err := s.Login(context.Background(), "a@b.c", "x")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLoggedInRejectsLoginAndSignup(t *testing.T) {
	s, _ := newSession(t, store.NewMemoryStore())
	ctx := context.Background()
	_, err := s.Signup(ctx, "A", "a@example.com", "pw")
	require.NoError(t, err)

	_, err = s.Login(ctx, "a@example.com", "pw")
	assert.ErrorIs(t, err, ErrAlreadyLoggedIn)
	_, err = s.Signup(ctx, "B", "b@example.com", "pw")
	assert.ErrorIs(t, err, ErrAlreadyLoggedIn)

	cur, _ := s.Current()
	assert.Equal(t, "a@example.com", cur.Email)
}

func TestLogout_ClearsPersistedSession(t *testing.T) {
	st := store.NewMemoryStore()
	s, rec := newSession(t, st)
	ctx := context.Background()
	_, err := s.Signup(ctx, "A", "a@example.com", "pw")
	require.NoError(t, err)

	require.NoError(t, s.Logout(ctx))
	assert.False(t, s.LoggedIn())
	assert.Equal(t, "Logged out successfully", rec.Last().Message)

	reopened, _ := newSession(t, st)
	assert.False(t, reopened.LoggedIn())
}

func TestOpen_RestoresSession(t *testing.T) {
	st := store.NewMemoryStore()
	s, _ := newSession(t, st)
	u, err := s.Signup(context.Background(), "A", "a@example.com", "pw")
	require.NoError(t, err)

	reopened, _ := newSession(t, st)
	cur, ok := reopened.Current()
	require.True(t, ok)
	assert.Equal(t, u, cur)
}

func TestOpen_IgnoresCorruptSession(t *testing.T) {
	st := store.NewMemoryStore()
	require.NoError(t, st.Put(context.Background(), store.KeyCurrentUser, []byte(`"oops`)))

	s, _ := newSession(t, st)
	assert.False(t, s.LoggedIn())
}

func TestSignup_CorruptRegistryIsAnError(t *testing.T) {
	st := store.NewMemoryStore()
	require.NoError(t, st.Put(context.Background(), store.KeyUsers, []byte(`{`)))
	s, _ := newSession(t, st)

	_, err := s.Signup(context.Background(), "A", "a@example.com", "pw")
	assert.Error(t, err)
	assert.False(t, s.LoggedIn())
}

func TestPublicUserOmitsPassword(t *testing.T) {
	raw, err := json.Marshal(models.User{ID: "1", Name: "A", Email: "a@b.c", Password: "hash"}.Public())
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "hash")
}

// sessionWriteFails refuses writes of the current-user key.
type sessionWriteFails struct {
	store.Store
	fail bool
}

func (f *sessionWriteFails) Put(ctx context.Context, key string, value []byte) error {
	if f.fail && key == store.KeyCurrentUser {
		return errors.New("disk full")
	}
	return f.Store.Put(ctx, key, value)
}

func TestSignup_FailedLoginUndoesRegistration(t *testing.T) {
	st := &sessionWriteFails{Store: store.NewMemoryStore(), fail: true}
	s, _ := newSession(t, st)
	ctx := context.Background()

	_, err := s.Signup(ctx, "Asha", "asha@example.com", "s3cret")
	assert.Error(t, err)
	assert.False(t, s.LoggedIn())
	assert.Empty(t, storedUsers(t, st))

	st.fail = false
	u, err := s.Signup(ctx, "Asha", "asha@example.com", "s3cret")
	require.NoError(t, err)
	assert.Equal(t, []models.User{u}, storedUsers(t, st))
	assert.True(t, s.LoggedIn())
}
