package service

import (
	"context"
	"strings"

	"school-cafe-api/apperr"
	"school-cafe-api/auth"
	"school-cafe-api/models"
	"school-cafe-api/store"
)

// MaxTopUp is the largest single balance top-up.
var MaxTopUp = models.Rubles(10000)

const minPasswordLength = 6

type AccountService struct {
	base
	creds auth.Credentials
}

type RegisterInput struct {
	Username           string
	Password           string
	FullName           string
	Role               models.UserRole
	ClassName          string
	Allergies          string
	DietaryPreferences string
	Email              string
	Phone              string
}

// AuthResult is returned by Register and Authenticate.
type AuthResult struct {
	Token string             `json:"token"`
	User  models.UserSummary `json:"user"`
}

func (s *AccountService) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.FullName = strings.TrimSpace(in.FullName)
	if in.Username == "" || in.FullName == "" {
		return nil, apperr.New(apperr.Validation, "Username and full name are required")
	}
	if len(in.Password) < minPasswordLength {
		return nil, apperr.New(apperr.Validation, "Password must be at least %d characters", minPasswordLength)
	}
	if in.Role == "" {
		in.Role = models.RoleStudent
	}
	if !in.Role.Valid() {
		return nil, apperr.New(apperr.Validation, "Invalid role. Must be: student, cook, or admin")
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Username:           in.Username,
		PasswordHash:       hash,
		FullName:           in.FullName,
		Role:               in.Role,
		ClassName:          in.ClassName,
		Allergies:          in.Allergies,
		DietaryPreferences: in.DietaryPreferences,
		Email:              in.Email,
		Phone:              in.Phone,
	}
	if err := s.store.CreateUser(ctx, user); err != nil {
		return nil, err
	}
	s.log.Info("User registered", "user_id", user.ID, "username", user.Username, "role", user.Role)

	return s.issue(user)
}

func (s *AccountService) Authenticate(ctx context.Context, username, password string) (*AuthResult, error) {
	user, err := s.store.GetUserByUsername(ctx, strings.TrimSpace(username))
	if apperr.KindOf(err) == apperr.NotFound || (err == nil && !auth.CheckPassword(user.PasswordHash, password)) {
		s.log.Warn("Login failed", "username", username)
		return nil, apperr.New(apperr.Unauthenticated, "Invalid username or password")
	}
	if err != nil {
		return nil, err
	}
	return s.issue(user)
}

func (s *AccountService) issue(user *models.User) (*AuthResult, error) {
	token, err := s.creds.Issue(user)
	if err != nil {
		return nil, err
	}
	return &AuthResult{Token: token, User: models.NewUserSummary(user)}, nil
}

// Profile returns the caller's own record.
func (s *AccountService) Profile(ctx context.Context, p auth.Principal) (*models.User, error) {
	return s.store.GetUser(ctx, p.UserID)
}

// TopUp credits the calling student's balance and returns the new balance.
func (s *AccountService) TopUp(ctx context.Context, p auth.Principal, amount models.Money) (models.Money, error) {
	if err := auth.Require(p, models.RoleStudent); err != nil {
		return 0, err
	}
	if amount <= 0 || amount > MaxTopUp {
		return 0, apperr.New(apperr.Validation, "Amount must be greater than 0 and at most %s", MaxTopUp)
	}

	var balance models.Money
	err := s.store.Transaction(ctx, func(tx *store.Store) error {
		var err error
		balance, err = s.ledger.AdjustBalance(ctx, tx, p.UserID, amount)
		return err
	})
	if err != nil {
		return 0, err
	}

	s.log.Info("Balance topped up", "user_id", p.UserID, "amount", amount.String(), "balance", balance.String())
	return balance, nil
}
