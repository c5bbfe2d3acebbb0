package auth

import (
	"errors"
	"time"

	"school-cafe-api/apperr"
	"school-cafe-api/models"

	"github.com/golang-jwt/jwt/v5"
)

// Credentials issues and resolves opaque caller credentials.
type Credentials interface {
	Issue(u *models.User) (string, error)
	Resolve(token string) (Principal, error)
}

type Claims struct {
	UserID   uint            `json:"user_id"`
	Username string          `json:"username"`
	Role     models.UserRole `json:"role"`
	jwt.RegisteredClaims
}

// JWT signs HS256 tokens carrying the user id and role.
type JWT struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewJWT(secret string, ttl time.Duration) *JWT {
	return &JWT{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// Issue creates a signed token for the user.
func (j *JWT) Issue(u *models.User) (string, error) {
	now := j.now()
	claims := Claims{
		UserID:   u.ID,
		Username: u.Username,
		Role:     u.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(j.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(j.secret)
	if err != nil {
		return "", apperr.Wrap(err, apperr.Internal, "failed to sign token")
	}
	return signed, nil
}

// Resolve verifies the token and returns the caller it names.
func (j *JWT) Resolve(tokenStr string) (Principal, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		return j.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(j.now),
	)
	if err != nil || !token.Valid {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Principal{}, apperr.New(apperr.Unauthenticated, "Token expired")
		}
		return Principal{}, apperr.New(apperr.Unauthenticated, "Invalid or expired token")
	}
	if !claims.Role.Valid() || claims.UserID == 0 {
		return Principal{}, apperr.New(apperr.Unauthenticated, "Invalid or expired token")
	}
	return Principal{UserID: claims.UserID, Username: claims.Username, Role: claims.Role}, nil
}
