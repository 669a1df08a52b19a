// Package session keeps the local user registry and the single logged-in user.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/crypto/bcrypt"

	models "cartcraft/model"
	"cartcraft/notify"
	"cartcraft/store"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailTaken         = errors.New("user with this email already exists")
	ErrAlreadyLoggedIn    = errors.New("already logged in")
	ErrMissingFields      = errors.New("name, email and password are required")
)

// Session is the LoggedOut / LoggedIn(user) state machine backed by a store.
type Session struct {
	mu      sync.Mutex
	current *models.User

	store    store.Store
	notifier notify.Notifier
	now      func() time.Time
	cost     int
}

type Option func(*Session)

// WithClock overrides the clock used for new user ids.
func WithClock(now func() time.Time) Option {
	return func(s *Session) { s.now = now }
}

// WithBcryptCost overrides the bcrypt cost; tests use bcrypt.MinCost.
func WithBcryptCost(cost int) Option {
	return func(s *Session) { s.cost = cost }
}

// Open restores the persisted session, if any.
func Open(ctx context.Context, st store.Store, n notify.Notifier, opts ...Option) (*Session, error) {
	if n == nil {
		n = notify.Discard{}
	}
	s := &Session{store: st, notifier: n, now: time.Now, cost: bcrypt.DefaultCost}
	for _, opt := range opts {
		opt(s)
	}

	raw, err := st.Get(ctx, store.KeyCurrentUser)
	switch {
	case errors.Is(err, store.ErrNotFound):
	case err != nil:
		return nil, fmt.Errorf("load session: %w", err)
	default:
		var u models.User
		if err := json.Unmarshal(raw, &u); err != nil || u.Email == "" {
			log.Printf("[session.open] ignoring unreadable session: %v", err)
			break
		}
		s.current = &u
	}
	return s, nil
}

// Login looks up a user by exact email and password.
func (s *Session) Login(ctx context.Context, email, password string) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current != nil {
		s.notifier.Notify(notify.Error, "You are already logged in")
		return models.User{}, ErrAlreadyLoggedIn
	}

	users, err := s.registry(ctx)
	if err != nil {
		return models.User{}, err
	}
	for _, u := range users {
		if u.Email != email {
			continue
		}
		if bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password)) != nil {
			break
		}
		if err := s.setCurrent(ctx, u); err != nil {
			return models.User{}, err
		}
		s.notifier.Notify(notify.Success, fmt.Sprintf("Welcome back, %s!", u.Name))
		return u, nil
	}

	s.notifier.Notify(notify.Error, "Invalid email or password")
	return models.User{}, ErrInvalidCredentials
}

// Signup registers a new user and logs them in. The email must not be registered yet.
func (s *Session) Signup(ctx context.Context, name, email, password string) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current != nil {
		s.notifier.Notify(notify.Error, "You are already logged in")
		return models.User{}, ErrAlreadyLoggedIn
	}
	if strings.TrimSpace(name) == "" || strings.TrimSpace(email) == "" || password == "" {
		s.notifier.Notify(notify.Error, "Please fill in all fields")
		return models.User{}, ErrMissingFields
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return models.User{}, fmt.Errorf("hash password: %w", err)
	}
	user := models.User{
		ID:       strconv.FormatInt(s.now().UnixMilli(), 10),
		Name:     name,
		Email:    email,
		Password: string(hash),
	}

	err = s.store.Update(ctx, store.KeyUsers, func(current []byte) ([]byte, error) {
		users, err := decodeUsers(current)
		if err != nil {
			return nil, err
		}
		for _, u := range users {
			if u.Email == email {
				return nil, ErrEmailTaken
			}
		}
		return json.Marshal(append(users, user))
	})
	if errors.Is(err, ErrEmailTaken) {
		s.notifier.Notify(notify.Error, "User with this email already exists")
		return models.User{}, err
	}
	if err != nil {
		return models.User{}, fmt.Errorf("save user: %w", err)
	}

	if err := s.setCurrent(ctx, user); err != nil {
		// undo the registration so the same email can sign up again
		if rbErr := s.unregister(ctx, user.ID); rbErr != nil {
			log.Printf("[session.signup] %s registered but not logged in: %v", email, rbErr)
		}
		return models.User{}, err
	}
	s.notifier.Notify(notify.Success, fmt.Sprintf("Welcome to CartCraft, %s!", name))
	return user, nil
}

// Logout clears the session in memory and in the store.
func (s *Session) Logout(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.store.Delete(ctx, store.KeyCurrentUser); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	s.current = nil
	s.notifier.Notify(notify.Success, "Logged out successfully")
	return nil
}

// Current returns the logged-in user.
func (s *Session) Current() (models.User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return models.User{}, false
	}
	return *s.current, true
}

func (s *Session) LoggedIn() bool {
	_, ok := s.Current()
	return ok
}

func (s *Session) setCurrent(ctx context.Context, u models.User) error {
	if err := store.PutJSON(ctx, s.store, store.KeyCurrentUser, u); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	s.current = &u
	return nil
}

func (s *Session) unregister(ctx context.Context, id string) error {
	return s.store.Update(ctx, store.KeyUsers, func(current []byte) ([]byte, error) {
		users, err := decodeUsers(current)
		if err != nil {
			return nil, err
		}
		kept := make([]models.User, 0, len(users))
		for _, u := range users {
			if u.ID != id {
				kept = append(kept, u)
			}
		}
		return json.Marshal(kept)
	})
}

func (s *Session) registry(ctx context.Context) ([]models.User, error) {
	raw, err := s.store.Get(ctx, store.KeyUsers)
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load users: %w", err)
	}
	return decodeUsers(raw)
}

func decodeUsers(raw []byte) ([]models.User, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var users []models.User
	if err := json.Unmarshal(raw, &users); err != nil {
		return nil, fmt.Errorf("decode users: %w", err)
	}
	return users, nil
}
