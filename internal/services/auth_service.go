package services

import (
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"cafecito/internal/domain"
	"cafecito/internal/repos"
)

type AuthService struct {
	Users *repos.UserRepo
}

func (s *AuthService) Login(sid, email, password string) (*domain.User, error) {
	u, err := s.Users.ByEmail(email)
	if err != nil {
		return nil, ErrBadCreds
	}
	if bcrypt.CompareHashAndPassword([]byte(u.Hash), []byte(password)) != nil {
		return nil, ErrBadCreds
	}
	if err := s.Users.BindSession(sid, u.ID); err != nil {
		return nil, err
	}
	return u, nil
}

// Register creates a USER account and logs the session in.
func (s *AuthService) Register(sid, name, email, password string) (*domain.User, error) {
	if existing, _ := s.Users.ByEmail(email); existing != nil {
		return nil, ErrEmailTaken
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), 12)
	if err != nil {
		return nil, err
	}
	id := "u-" + uuid.NewString()
	if err := s.Users.Create(id, strings.ToLower(email), name, string(hash), "USER"); err != nil {
		return nil, err
	}
	if err := s.Users.BindSession(sid, id); err != nil {
		return nil, err
	}
	return s.Users.ByID(id)
}

func (s *AuthService) Logout(sid string) error {
	return s.Users.UnbindSession(sid)
}

func (s *AuthService) CurrentUser(sid string) (*domain.User, error) {
	return s.Users.SessionUser(sid)
}
