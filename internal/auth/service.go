package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gofrs/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"

	"github.com/lynixdevs/urbanthreads/internal/profile"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrSessionExpired     = errors.New("session expired")
)

// RegisterInput carries the fields collected on the sign-up form.
type RegisterInput struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
}

type Service interface {
	Register(ctx context.Context, input RegisterInput) (*profile.Profile, error)
	Login(ctx context.Context, email, password string) (*Session, error)
	Logout(ctx context.Context, token uuid.UUID) error
	Authenticate(ctx context.Context, token uuid.UUID) (*profile.Profile, error)
}

type service struct {
	profiles   profile.Repository
	sessions   SessionRepository
	sessionTTL time.Duration
}

func NewService(profiles profile.Repository, sessions SessionRepository, sessionTTL time.Duration) Service {
	if sessionTTL <= 0 {
		sessionTTL = 24 * time.Hour
	}
	return &service{profiles: profiles, sessions: sessions, sessionTTL: sessionTTL}
}

func (s *service) Register(ctx context.Context, input RegisterInput) (*profile.Profile, error) {
	if input.Password == "" {
		return nil, errors.New("service: password cannot be empty")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		log.Error().Err(err).Msg("service: failed to hash password")
		return nil, fmt.Errorf("service: failed to hash password: %w", err)
	}

	p := &profile.Profile{
		Email:        input.Email,
		PasswordHash: string(hash),
		FirstName:    input.FirstName,
		LastName:     input.LastName,
		Role:         profile.RoleCustomer,
	}

	if err := s.profiles.Create(ctx, p); err != nil {
		if errors.Is(err, profile.ErrEmailExists) {
			return nil, profile.ErrEmailExists
		}
		log.Error().Err(err).Msg("service: failed to create profile")
		return nil, fmt.Errorf("service: failed to create profile: %w", err)
	}

	log.Info().Stringer("user_id", p.ID).Msg("service: profile registered")
	return p, nil
}

func (s *service) Login(ctx context.Context, email, password string) (*Session, error) {
	p, err := s.profiles.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, profile.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		log.Error().Err(err).Msg("service: failed to load profile for login")
		return nil, fmt.Errorf("service: failed to load profile for login: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(p.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	token, err := uuid.NewV4()
	if err != nil {
		return nil, fmt.Errorf("service: failed to generate session token: %w", err)
	}

	now := time.Now().UTC()
	session := &Session{
		Token:     token,
		UserID:    p.ID,
		CreatedAt: now,
		ExpiresAt: now.Add(s.sessionTTL),
	}

	if err := s.sessions.Create(ctx, session); err != nil {
		log.Error().Err(err).Stringer("user_id", p.ID).Msg("service: failed to create session")
		return nil, fmt.Errorf("service: failed to create session: %w", err)
	}

	log.Info().Stringer("user_id", p.ID).Msg("service: login succeeded")
	return session, nil
}

func (s *service) Logout(ctx context.Context, token uuid.UUID) error {
	if err := s.sessions.Delete(ctx, token); err != nil {
		log.Error().Err(err).Msg("service: failed to delete session")
		return fmt.Errorf("service: failed to delete session: %w", err)
	}
	return nil
}

// Authenticate resolves a bearer token into the owning profile. Expired
// sessions are deleted on sight.
func (s *service) Authenticate(ctx context.Context, token uuid.UUID) (*profile.Profile, error) {
	session, err := s.sessions.GetByToken(ctx, token)
	if err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("service: failed to load session: %w", err)
	}

	if session.Expired(time.Now().UTC()) {
		if err := s.sessions.Delete(ctx, token); err != nil {
			log.Warn().Err(err).Msg("service: failed to delete expired session")
		}
		return nil, ErrSessionExpired
	}

	p, err := s.profiles.GetByID(ctx, session.UserID)
	if err != nil {
		if errors.Is(err, profile.ErrNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("service: failed to load session profile: %w", err)
	}

	return p, nil
}
