package utils

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token has expired")
)

// Claims is the session claim set: the minimal identity payload both token
// kinds carry. Tokens are self-contained; nothing is tracked server-side.
type Claims struct {
	UserID string `json:"sub"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// TokenManager signs and verifies both token kinds. Access and refresh use
// distinct secrets so leaking one does not compromise the other.
type TokenManager struct {
	AccessSecret  []byte
	RefreshSecret []byte
	Issuer        string
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
}

func (m TokenManager) IssueAccessToken(userID, email, role string) (string, time.Duration, error) {
	return m.issue(userID, email, role, m.AccessSecret, m.accessTTL())
}

func (m TokenManager) IssueRefreshToken(userID, email, role string) (string, time.Duration, error) {
	return m.issue(userID, email, role, m.RefreshSecret, m.refreshTTL())
}

func (m TokenManager) ParseAccessToken(token string) (*Claims, error) {
	return m.parse(token, m.AccessSecret)
}

func (m TokenManager) ParseRefreshToken(token string) (*Claims, error) {
	return m.parse(token, m.RefreshSecret)
}

func (m TokenManager) issue(userID, email, role string, secret []byte, ttl time.Duration) (string, time.Duration, error) {
	now := time.Now()
	claims := Claims{
		UserID: userID,
		Email:  email,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    m.Issuer,
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(secret)
	if err != nil {
		return "", 0, err
	}
	return signed, ttl, nil
}

func (m TokenManager) parse(tokenString string, secret []byte) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrInvalidToken
	}
	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

func (m TokenManager) accessTTL() time.Duration {
	if m.AccessTTL > 0 {
		return m.AccessTTL
	}
	return 15 * time.Minute
}

func (m TokenManager) refreshTTL() time.Duration {
	if m.RefreshTTL > 0 {
		return m.RefreshTTL
	}
	return 15 * 24 * time.Hour
}
