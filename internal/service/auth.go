package service

import (
	"context"
	"fmt"
	"time"

	"mindgym-api/internal/dto"
	"mindgym-api/internal/model"
	"mindgym-api/internal/repository"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/v2/bson"
	"golang.org/x/crypto/bcrypt"
)

// SessionTTL is the absolute session lifetime. There is no sliding renewal:
// a session expires 30 days after issue no matter how active the user is.
const SessionTTL = 30 * 24 * time.Hour

// bcryptCost is deliberately above the library default; registration and
// login are allowed to be slow.
const bcryptCost = 12

type AuthService interface {
	// Register creates a user with the given credentials and issues a session.
	// Duplicate emails fail with repository.ErrEmailExists.
	Register(ctx context.Context, name, email, password string) (*dto.User, string, error)
	// Login verifies the password for the email and issues a fresh session.
	// Unknown emails fail with repository.ErrNotFound, bad passwords with
	// ErrUnauthenticated.
	Login(ctx context.Context, email, password string) (*dto.User, string, error)
	// ValidateSession resolves a session token to its sanitized user.
	// A session is valid up to and including its expiry instant.
	ValidateSession(ctx context.Context, token string) (*dto.User, error)
	// Logout revokes the session server-side. Unknown tokens are a no-op.
	Logout(ctx context.Context, token string) error
}

type authServiceImpl struct {
	userRepo    repository.UserRepository
	sessionRepo repository.SessionRepository
	log         zerolog.Logger
	now         func() time.Time
}

func NewAuthService(
	userRepo repository.UserRepository,
	sessionRepo repository.SessionRepository,
	log zerolog.Logger,
) AuthService {
	return &authServiceImpl{
		userRepo:    userRepo,
		sessionRepo: sessionRepo,
		log:         log,
		now:         time.Now,
	}
}

func (s *authServiceImpl) Register(ctx context.Context, name, email, password string) (*dto.User, string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return nil, "", fmt.Errorf("hash password: %w", err)
	}

	user := &model.User{
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
		HasPaid:      false,
	}
	// The unique email index decides Conflict; no pre-read, so concurrent
	// registrations of the same email cannot both win.
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, "", err
	}

	// User creation and session issue are two separate writes. A crash in
	// between leaves a registered user without a session, recovered by a
	// normal login.
	token, err := s.issue(ctx, user.ID)
	if err != nil {
		return nil, "", err
	}

	return sanitize(user), token, nil
}

func (s *authServiceImpl) Login(ctx context.Context, email, password string) (*dto.User, string, error) {
	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return nil, "", err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, "", ErrUnauthenticated
	}

	token, err := s.issue(ctx, user.ID)
	if err != nil {
		return nil, "", err
	}

	return sanitize(user), token, nil
}

func (s *authServiceImpl) ValidateSession(ctx context.Context, token string) (*dto.User, error) {
	if token == "" {
		return nil, ErrUnauthenticated
	}

	sessionID, err := bson.ObjectIDFromHex(token)
	if err != nil {
		return nil, ErrUnauthenticated
	}

	session, err := s.sessionRepo.FindByID(ctx, sessionID)
	if err != nil {
		if err == repository.ErrNotFound {
			return nil, ErrUnauthenticated
		}
		return nil, err
	}

	if session.ExpiredAt(s.now()) {
		return nil, ErrUnauthenticated
	}

	user, err := s.userRepo.FindByID(ctx, session.UserID)
	if err != nil {
		if err == repository.ErrNotFound {
			// Dangling user reference is a data-integrity violation, not a
			// plain auth failure.
			s.log.Error().
				Str("session_id", session.ID.Hex()).
				Str("user_id", session.UserID.Hex()).
				Msg("session references missing user")
			return nil, repository.ErrNotFound
		}
		return nil, err
	}

	return sanitize(user), nil
}

func (s *authServiceImpl) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	sessionID, err := bson.ObjectIDFromHex(token)
	if err != nil {
		return nil
	}
	return s.sessionRepo.Delete(ctx, sessionID)
}

func (s *authServiceImpl) issue(ctx context.Context, userID bson.ObjectID) (string, error) {
	now := s.now().UTC()
	session := &model.Session{
		UserID:    userID,
		CreatedAt: now,
		ExpiresAt: now.Add(SessionTTL),
	}
	if err := s.sessionRepo.Create(ctx, session); err != nil {
		return "", fmt.Errorf("issue session: %w", err)
	}

	return session.ID.Hex(), nil
}

func sanitize(u *model.User) *dto.User {
	return &dto.User{
		ID:      u.ID.Hex(),
		Name:    u.Name,
		Email:   u.Email,
		HasPaid: u.HasPaid,
	}
}
