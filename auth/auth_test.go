package auth

import (
	"testing"
	"time"

	"school-cafe-api/apperr"
	"school-cafe-api/models"

	"github.com/golang-jwt/jwt/v5"
)

func TestJWT_IssueResolve(t *testing.T) {
	j := NewJWT("secret", time.Hour)
	u := &models.User{ID: 7, Username: "cook1", Role: models.RoleCook}

	token, err := j.Issue(u)
	if err != nil {
		t.Fatal(err)
	}
	p, err := j.Resolve(token)
	if err != nil {
		t.Fatal(err)
	}
	want := Principal{UserID: 7, Username: "cook1", Role: models.RoleCook}
	if p != want {
		t.Errorf("principal = %+v, want %+v", p, want)
	}
}

func TestJWT_ResolveRejects(t *testing.T) {
	j := NewJWT("secret", time.Hour)
	u := &models.User{ID: 7, Username: "anna", Role: models.RoleStudent}

	expired := NewJWT("secret", time.Hour)
	expired.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	expiredToken, _ := expired.Issue(u)

	otherKey, _ := NewJWT("other", time.Hour).Issue(u)

	badRole, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{UserID: 7, Role: "janitor"}).SignedString([]byte("secret"))

	tests := []struct {
		name  string
		token string
	}{
		{"garbage", "not-a-token"},
		{"empty", ""},
		{"wrong key", otherKey},
		{"expired", expiredToken},
		{"unknown role", badRole},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := j.Resolve(tt.token)
			if apperr.KindOf(err) != apperr.Unauthenticated {
				t.Errorf("expected unauthenticated, got %v", err)
			}
		})
	}
}

func TestRequire(t *testing.T) {
	cook := Principal{UserID: 1, Role: models.RoleCook}

	if err := Require(cook, models.RoleCook, models.RoleAdmin); err != nil {
		t.Errorf("cook rejected: %v", err)
	}
	err := Require(cook, models.RoleStudent)
	if apperr.KindOf(err) != apperr.Forbidden {
		t.Fatalf("expected forbidden, got %v", err)
	}
	if apperr.Message(err) != "Access denied. Required role(s): student" {
		t.Errorf("message = %q", apperr.Message(err))
	}
}

func TestPassword(t *testing.T) {
	hash, err := HashPassword("password123")
	if err != nil {
		t.Fatal(err)
	}
	if !CheckPassword(hash, "password123") {
		t.Error("correct password rejected")
	}
	if CheckPassword(hash, "password124") {
		t.Error("wrong password accepted")
	}
}
