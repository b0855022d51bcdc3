// Package service implements login and token validation. Tokens are HS256
// JWTs; the only claims the rest of the service trusts are the user ID and
// role.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"hadir/internal/audit"
	"hadir/internal/device"
	"hadir/internal/platform/middleware"
	"hadir/internal/user"
	id "hadir/pkg/domain"
	dErrors "hadir/pkg/domain-errors"
	"hadir/pkg/platform/sentinel"
	"hadir/pkg/requestcontext"
)

// Directory is the user lookup and mutation surface auth needs.
type Directory interface {
	FindByEmail(ctx context.Context, email string) (user.User, error)
	Save(ctx context.Context, u user.User) error
	SetPushToken(ctx context.Context, userID id.UserID, token string) error
}

// DeviceGate records which device a login came from. Implemented by the
// device service.
type DeviceGate interface {
	Verify(ctx context.Context, u user.User, deviceID, fingerprint string, action audit.DeviceAction) (device.Verification, error)
}

type Service struct {
	users      Directory
	devices    DeviceGate
	signingKey []byte
	ttl        time.Duration
	logger     *slog.Logger
}

func New(users Directory, devices DeviceGate, signingKey string, ttl time.Duration, logger *slog.Logger) *Service {
	return &Service{
		users:      users,
		devices:    devices,
		signingKey: []byte(signingKey),
		ttl:        ttl,
		logger:     logger,
	}
}

// Session is a successful login.
type Session struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
	User      user.User `json:"user"`
}

type claims struct {
	jwt.RegisteredClaims
	Role string `json:"role"`
}

// Login checks the password and issues a token. The same error covers an
// unknown email and a wrong password.
func (s *Service) Login(ctx context.Context, email, password string) (Session, error) {
	u, err := s.users.FindByEmail(ctx, email)
	if errors.Is(err, sentinel.ErrNotFound) {
		return Session{}, dErrors.New(dErrors.CodeUnauthorized, "invalid email or password")
	}
	if err != nil {
		return Session{}, dErrors.Wrap(err, dErrors.CodeInternal, "load user")
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return Session{}, dErrors.New(dErrors.CodeUnauthorized, "invalid email or password")
	}
	if u.Status != user.StatusActive {
		return Session{}, dErrors.New(dErrors.CodeForbidden, "account is inactive")
	}

	// Login is recorded against the device access log but never blocked on
	// device trust; gating happens at punch time.
	if deviceID := requestcontext.DeviceID(ctx); deviceID != "" && s.devices != nil {
		if _, err := s.devices.Verify(ctx, u, deviceID, requestcontext.DeviceFingerprint(ctx), audit.ActionLogin); err != nil {
			s.logger.WarnContext(ctx, "login device check failed",
				"user_id", u.ID, "device_id", deviceID, "error", err)
		}
	}

	now := requestcontext.Now(ctx)
	expiresAt := now.Add(s.ttl)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   u.ID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
		Role: string(u.Role),
	})
	signed, err := token.SignedString(s.signingKey)
	if err != nil {
		return Session{}, dErrors.Wrap(err, dErrors.CodeInternal, "sign token")
	}

	u.PasswordHash = ""
	return Session{Token: signed, ExpiresAt: expiresAt, User: u}, nil
}

// ValidateToken implements middleware.JWTValidator.
func (s *Service) ValidateToken(tokenString string) (*middleware.JWTClaims, error) {
	var c claims
	_, err := jwt.ParseWithClaims(tokenString, &c, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %q", t.Method.Alg())
		}
		return s.signingKey, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, err
	}
	userID, err := id.ParseUserID(c.Subject)
	if err != nil {
		return nil, err
	}
	return &middleware.JWTClaims{UserID: userID, Role: c.Role}, nil
}

// NewUserInput is the admin payload for account creation.
type NewUserInput struct {
	Email        string `json:"email" valid:"required,email"`
	Password     string `json:"password" valid:"required"`
	FirstName    string `json:"firstName" valid:"required"`
	LastName     string `json:"lastName" valid:"required"`
	EmployeeCode string `json:"employeeCode"`
	Role         string `json:"role"`
	BranchID     string `json:"branchId" valid:"required"`
	DepartmentID string `json:"departmentId"`
	ManagerID    string `json:"managerId"`
}

// CreateUser provisions an account with a bcrypt password hash. Admin only,
// enforced at the route.
func (s *Service) CreateUser(ctx context.Context, in NewUserInput) (user.User, error) {
	if len(in.Password) < 8 {
		return user.User{}, dErrors.New(dErrors.CodeValidation, "password must be at least 8 characters")
	}
	if _, err := s.users.FindByEmail(ctx, in.Email); err == nil {
		return user.User{}, dErrors.New(dErrors.CodeConflict, "email already registered")
	} else if !errors.Is(err, sentinel.ErrNotFound) {
		return user.User{}, dErrors.Wrap(err, dErrors.CodeInternal, "check email")
	}

	branchID, err := id.ParseBranchID(in.BranchID)
	if err != nil {
		return user.User{}, err
	}
	u := user.User{
		ID:           id.NewUserID(),
		Email:        in.Email,
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		EmployeeCode: in.EmployeeCode,
		Role:         user.RoleEmployee,
		Status:       user.StatusActive,
		BranchID:     branchID,
		CreatedAt:    requestcontext.Now(ctx),
	}
	switch user.Role(in.Role) {
	case user.RoleManager:
		u.Role = user.RoleManager
	case user.RoleAdmin:
		u.Role = user.RoleAdmin
	case user.RoleEmployee, "":
	default:
		return user.User{}, dErrors.Newf(dErrors.CodeValidation, "unknown role %q", in.Role)
	}
	if in.DepartmentID != "" {
		if u.DepartmentID, err = id.ParseDepartmentID(in.DepartmentID); err != nil {
			return user.User{}, err
		}
	}
	if in.ManagerID != "" {
		if u.ManagerID, err = id.ParseUserID(in.ManagerID); err != nil {
			return user.User{}, err
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return user.User{}, dErrors.Wrap(err, dErrors.CodeInternal, "hash password")
	}
	u.PasswordHash = string(hash)

	if err := s.users.Save(ctx, u); err != nil {
		return user.User{}, dErrors.Wrap(err, dErrors.CodeInternal, "save user")
	}
	u.PasswordHash = ""
	return u, nil
}

// UpdatePushToken stores the device push token delivered after login.
func (s *Service) UpdatePushToken(ctx context.Context, userID id.UserID, token string) error {
	if err := s.users.SetPushToken(ctx, userID, token); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeNotFound, "user not found")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "update push token")
	}
	return nil
}
