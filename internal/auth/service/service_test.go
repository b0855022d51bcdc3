package service

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"golang.org/x/crypto/bcrypt"

	"hadir/internal/user"
	userstore "hadir/internal/user/store"
	id "hadir/pkg/domain"
	dErrors "hadir/pkg/domain-errors"
)

type AuthSuite struct {
	suite.Suite

	users *userstore.Memory
	svc   *Service
	ctx   context.Context

	employee user.User
}

func TestAuthSuite(t *testing.T) {
	suite.Run(t, new(AuthSuite))
}

func (s *AuthSuite) SetupTest() {
	s.users = userstore.NewMemory()
	s.svc = New(s.users, nil, "test-signing-key", time.Hour, slog.Default())
	s.ctx = context.Background()

	hash, err := bcrypt.GenerateFromPassword([]byte("correct horse"), bcrypt.MinCost)
	s.Require().NoError(err)
	s.employee = user.User{
		ID:           id.NewUserID(),
		Email:        "omar@hadir.dev",
		PasswordHash: string(hash),
		FirstName:    "Omar",
		LastName:     "Farouk",
		Role:         user.RoleEmployee,
		Status:       user.StatusActive,
		BranchID:     id.NewBranchID(),
	}
	s.Require().NoError(s.users.Save(s.ctx, s.employee))
}

func (s *AuthSuite) TestLogin() {
	s.Run("valid credentials issue a token", func() {
		sess, err := s.svc.Login(s.ctx, "omar@hadir.dev", "correct horse")
		s.Require().NoError(err)
		s.NotEmpty(sess.Token)
		s.Equal(s.employee.ID, sess.User.ID)
		s.Empty(sess.User.PasswordHash)
		s.WithinDuration(time.Now().Add(time.Hour), sess.ExpiresAt, time.Minute)
	})

	s.Run("wrong password", func() {
		_, err := s.svc.Login(s.ctx, "omar@hadir.dev", "wrong")
		s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})

	s.Run("unknown email reads the same as a wrong password", func() {
		_, err := s.svc.Login(s.ctx, "nobody@hadir.dev", "correct horse")
		s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
		s.Contains(err.Error(), "invalid email or password")
	})

	s.Run("inactive account", func() {
		s.employee.Status = user.StatusInactive
		s.Require().NoError(s.users.Save(s.ctx, s.employee))
		defer func() {
			s.employee.Status = user.StatusActive
			s.Require().NoError(s.users.Save(s.ctx, s.employee))
		}()
		_, err := s.svc.Login(s.ctx, "omar@hadir.dev", "correct horse")
		s.True(dErrors.HasCode(err, dErrors.CodeForbidden))
	})
}

func (s *AuthSuite) TestValidateToken() {
	s.Run("round trip", func() {
		sess, err := s.svc.Login(s.ctx, "omar@hadir.dev", "correct horse")
		s.Require().NoError(err)
		claims, err := s.svc.ValidateToken(sess.Token)
		s.Require().NoError(err)
		s.Equal(s.employee.ID, claims.UserID)
		s.Equal(string(user.RoleEmployee), claims.Role)
	})

	s.Run("token signed with another key is rejected", func() {
		other := New(s.users, nil, "another-key", time.Hour, slog.Default())
		sess, err := other.Login(s.ctx, "omar@hadir.dev", "correct horse")
		s.Require().NoError(err)
		_, err = s.svc.ValidateToken(sess.Token)
		s.Error(err)
	})

	s.Run("garbage is rejected", func() {
		_, err := s.svc.ValidateToken("not.a.jwt")
		s.Error(err)
	})
}

func (s *AuthSuite) TestCreateUser() {
	input := func() NewUserInput {
		return NewUserInput{
			Email:     "nour@hadir.dev",
			Password:  "s3cret-enough",
			FirstName: "Nour",
			LastName:  "Adel",
			Role:      "MANAGER",
			BranchID:  id.NewBranchID().String(),
		}
	}

	s.Run("creates with a hashed password", func() {
		u, err := s.svc.CreateUser(s.ctx, input())
		s.Require().NoError(err)
		s.Equal(user.RoleManager, u.Role)
		s.Empty(u.PasswordHash)

		stored, err := s.users.FindByEmail(s.ctx, "nour@hadir.dev")
		s.Require().NoError(err)
		s.NoError(bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("s3cret-enough")))
	})

	s.Run("duplicate email conflicts", func() {
		in := input()
		in.Email = "omar@hadir.dev"
		_, err := s.svc.CreateUser(s.ctx, in)
		s.True(dErrors.HasCode(err, dErrors.CodeConflict))
	})

	s.Run("short password rejected", func() {
		in := input()
		in.Email = "short@hadir.dev"
		in.Password = "short"
		_, err := s.svc.CreateUser(s.ctx, in)
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.Run("unknown role rejected", func() {
		in := input()
		in.Email = "weird@hadir.dev"
		in.Role = "OVERLORD"
		_, err := s.svc.CreateUser(s.ctx, in)
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})
}

func (s *AuthSuite) TestUpdatePushToken() {
	s.Require().NoError(s.svc.UpdatePushToken(s.ctx, s.employee.ID, "expo-token-1"))
	stored, err := s.users.FindByID(s.ctx, s.employee.ID)
	s.Require().NoError(err)
	s.Equal("expo-token-1", stored.PushToken)

	err = s.svc.UpdatePushToken(s.ctx, id.NewUserID(), "expo-token-2")
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
}
