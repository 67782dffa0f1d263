package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"

	"github.com/SkanderGasmi/xrwvm-fullstack-developer-capstone/internal/domain"
)

const DefaultSessionTTL = 24 * time.Hour

// AuthService registers users and manages their server-side sessions.
type AuthService struct {
	users    domain.UserRepository
	sessions domain.SessionStore
	ttl      time.Duration
	cost     int
	now      func() time.Time

	dummyOnce sync.Once
	dummy     []byte
}

func NewAuthService(u domain.UserRepository, s domain.SessionStore, ttl time.Duration) *AuthService {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &AuthService{users: u, sessions: s, ttl: ttl, cost: bcrypt.DefaultCost, now: time.Now}
}

// WithHashCost lowers the bcrypt cost; tests use bcrypt.MinCost.
func (a *AuthService) WithHashCost(cost int) *AuthService {
	a.cost = cost
	return a
}

func (a *AuthService) SessionTTL() time.Duration { return a.ttl }

// Register creates the user and signs them in.
func (a *AuthService) Register(ctx context.Context, in domain.RegisterInput) (domain.Session, error) {
	in.UserName = strings.TrimSpace(in.UserName)
	if err := validateStruct(in); err != nil {
		return domain.Session{}, err
	}
	if _, err := a.users.UserByUsername(ctx, in.UserName); err == nil {
		return domain.Session{}, domain.ErrAlreadyRegistered
	} else if !errors.Is(err, domain.ErrNotFound) {
		return domain.Session{}, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), a.cost)
	if err != nil {
		return domain.Session{}, fmt.Errorf("hash password: %w", err)
	}
	u := domain.User{
		Username:     in.UserName,
		PasswordHash: string(hash),
		FirstName:    strings.TrimSpace(in.FirstName),
		LastName:     strings.TrimSpace(in.LastName),
		Email:        strings.TrimSpace(in.Email),
		CreatedAt:    a.now().UTC(),
	}
	id, err := a.users.CreateUser(ctx, u)
	if err != nil {
		if errors.Is(err, domain.ErrConflict) {
			// lost a race with a concurrent registration
			return domain.Session{}, domain.ErrAlreadyRegistered
		}
		return domain.Session{}, err
	}
	u.ID = id
	log.Info().Str("user", u.Username).Int64("user_id", id).Msg("user registered")
	return a.startSession(ctx, u)
}

// Login checks the credentials and opens a new session.
func (a *AuthService) Login(ctx context.Context, in domain.LoginInput) (domain.Session, error) {
	in.UserName = strings.TrimSpace(in.UserName)
	if err := validateStruct(in); err != nil {
		return domain.Session{}, err
	}
	u, err := a.users.UserByUsername(ctx, in.UserName)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			// spend the same time as a wrong password
			_ = bcrypt.CompareHashAndPassword(a.dummyHash(), []byte(in.Password))
			return domain.Session{}, domain.ErrInvalidCredentials
		}
		return domain.Session{}, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(in.Password)); err != nil {
		return domain.Session{}, domain.ErrInvalidCredentials
	}
	return a.startSession(ctx, u)
}

// Logout drops the session; unknown tokens are not an error.
func (a *AuthService) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	return a.sessions.Delete(ctx, token)
}

// Authenticate resolves a session token.
func (a *AuthService) Authenticate(ctx context.Context, token string) (domain.Session, error) {
	if strings.TrimSpace(token) == "" {
		return domain.Session{}, domain.ErrUnauthenticated
	}
	s, ok, err := a.sessions.Get(ctx, token)
	if err != nil {
		return domain.Session{}, err
	}
	if !ok {
		return domain.Session{}, domain.ErrSessionExpired
	}
	s.Token = token
	return s, nil
}

func (a *AuthService) startSession(ctx context.Context, u domain.User) (domain.Session, error) {
	s := domain.Session{
		Token:     uuid.NewString(),
		UserID:    u.ID,
		UserName:  u.Username,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		CreatedAt: a.now().UTC(),
	}
	if err := a.sessions.Create(ctx, s, a.ttl); err != nil {
		return domain.Session{}, fmt.Errorf("create session: %w", err)
	}
	return s, nil
}

func (a *AuthService) dummyHash() []byte {
	a.dummyOnce.Do(func() {
		a.dummy, _ = bcrypt.GenerateFromPassword([]byte("not-a-real-password"), a.cost)
	})
	return a.dummy
}
