package identity

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	jwtsvc "cloudstore/internal/pkg/jwt"
	"cloudstore/internal/pkg/upstream"
)

const minPasswordLength = 6

type tokenService interface {
	GenerateToken(userID, email string) (string, error)
	ValidateToken(tokenStr string) (*jwtsvc.Claims, error)
}

// LocalProvider keeps accounts in the application database and issues HS256
// access tokens. Verify re-reads the account on every call so deleted users
// lose access immediately.
type LocalProvider struct {
	db        *gorm.DB
	tokens    tokenService
	accessTTL time.Duration
	timeout   time.Duration
}

func NewLocalProvider(db *gorm.DB, tokens tokenService, accessTTL, timeout time.Duration) *LocalProvider {
	return &LocalProvider{db: db, tokens: tokens, accessTTL: accessTTL, timeout: timeout}
}

func (p *LocalProvider) SignUp(ctx context.Context, email, password, fullName string) (*User, error) {
	email = normalizeEmail(email)
	if email == "" || len(password) < minPasswordLength {
		return nil, ErrInvalidSignUp
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &User{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: string(hash),
		FullName:     strings.TrimSpace(fullName),
	}

	err = upstream.Call(ctx, p.timeout, func(ctx context.Context) error {
		return p.db.WithContext(ctx).Create(user).Error
	})
	if err != nil {
		if isUniqueConstraintError(err) {
			return nil, ErrEmailAlreadyExists
		}
		return nil, upstream.Failure("create user", err)
	}

	return user, nil
}

func (p *LocalProvider) SignInWithPassword(ctx context.Context, email, password string) (*Session, error) {
	user, err := p.findBy(ctx, "email = ?", normalizeEmail(email))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, upstream.Failure("load user", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	token, err := p.tokens.GenerateToken(user.ID, user.Email)
	if err != nil {
		return nil, err
	}

	return &Session{AccessToken: token, ExpiresIn: p.accessTTL, User: user}, nil
}

func (p *LocalProvider) Verify(ctx context.Context, token string) (*Principal, error) {
	if strings.TrimSpace(token) == "" {
		return nil, ErrUnauthenticated
	}

	claims, err := p.tokens.ValidateToken(token)
	if err != nil {
		return nil, ErrUnauthenticated
	}

	user, err := p.findBy(ctx, "id = ?", claims.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUnauthenticated
		}
		return nil, upstream.Failure("load user", err)
	}

	return &Principal{ID: user.ID, Email: user.Email}, nil
}

func (p *LocalProvider) findBy(ctx context.Context, query string, arg any) (*User, error) {
	var user User
	err := upstream.Call(ctx, p.timeout, func(ctx context.Context) error {
		return p.db.WithContext(ctx).Where(query, arg).First(&user).Error
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func isUniqueConstraintError(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}

	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate") || strings.Contains(msg, "unique constraint") || strings.Contains(msg, "unique failed")
}
