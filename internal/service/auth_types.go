package service

import (
	"context"
	"time"

	"golang.org/x/crypto/bcrypt"

	"avtosalon/internal/utils"
)

// EmailSender is the mail-relay boundary: deliver one verification code.
type EmailSender interface {
	SendVerificationCode(ctx context.Context, to, username string, code int) error
}

type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(hash, password string) bool
}

// TokenIssuer covers what the auth service needs from the token manager.
type TokenIssuer interface {
	IssueAccessToken(userID, email, role string) (string, time.Duration, error)
	IssueRefreshToken(userID, email, role string) (string, time.Duration, error)
	ParseRefreshToken(token string) (*utils.Claims, error)
}

type Clock interface {
	Now() time.Time
}

type RealClock struct{}

func (RealClock) Now() time.Time {
	return time.Now()
}

type BcryptPasswordHasher struct {
	Cost int
}

func (h BcryptPasswordHasher) Hash(password string) (string, error) {
	cost := h.Cost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(bytes), nil
}

func (h BcryptPasswordHasher) Verify(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
