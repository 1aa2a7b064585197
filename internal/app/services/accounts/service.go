package accounts

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/wareledger/wareledger/internal/app/domain/account"
	"github.com/wareledger/wareledger/internal/app/domain/audit"
	auditsvc "github.com/wareledger/wareledger/internal/app/services/audit"
	"github.com/wareledger/wareledger/internal/app/storage"
	apperrors "github.com/wareledger/wareledger/internal/errors"
	"github.com/wareledger/wareledger/internal/logging"
	"github.com/wareledger/wareledger/internal/session"
)

// InvalidCredentials is returned for any failed login.
const InvalidCredentials = "Неверное имя пользователя или пароль"

// Service authenticates users and manages user accounts.
type Service struct {
	users    storage.UserStore
	sessions session.Store
	audit    *auditsvc.Service
	log      *logging.Logger
}

// New constructs an accounts service.
func New(users storage.UserStore, sessions session.Store, audits *auditsvc.Service, log *logging.Logger) *Service {
	if log == nil {
		log = logging.NewDefault("accounts")
	}
	return &Service{users: users, sessions: sessions, audit: audits, log: log}
}

// Login is a successful authentication.
type Login struct {
	Token string
	User  session.User
}

// Login checks the credentials against the stored digest and opens a
// session.
func (s *Service) Login(ctx context.Context, username, password string) (Login, error) {
	if username == "" || password == "" {
		return Login{}, apperrors.Unauthorized(InvalidCredentials)
	}
	u, err := s.users.Authenticate(ctx, username, session.HashCredential(password))
	if errors.Is(err, storage.ErrNotFound) {
		return Login{}, apperrors.Unauthorized(InvalidCredentials)
	}
	if err != nil {
		return Login{}, err
	}

	snapshot := session.User{ID: u.ID, Username: u.Username, Admin: u.Admin}
	token, err := s.sessions.Create(ctx, snapshot)
	if err != nil {
		return Login{}, apperrors.Internal("could not open session", err)
	}
	s.log.WithContext(ctx).
		WithField("user_id", u.ID).
		WithField("admin", u.Admin).
		Info("user logged in")
	return Login{Token: token, User: snapshot}, nil
}

// Logout closes the session. Unknown tokens are ignored.
func (s *Service) Logout(ctx context.Context, token string) {
	if token == "" {
		return
	}
	s.sessions.Invalidate(ctx, token)
}

// Current resolves a session token.
func (s *Service) Current(ctx context.Context, token string) (session.User, bool) {
	return s.sessions.Resolve(ctx, token)
}

func (s *Service) ListUsers(ctx context.Context) ([]account.User, error) {
	return s.users.ListUsers(ctx)
}

func (s *Service) GetUser(ctx context.Context, id int64) (account.User, error) {
	u, err := s.users.GetUser(ctx, id)
	if errors.Is(err, storage.ErrNotFound) {
		return account.User{}, apperrors.NotFound("User not found")
	}
	return u, err
}

// CreateUser stores a new user with the digest of password.
func (s *Service) CreateUser(ctx context.Context, username, password string, admin bool) (int64, error) {
	if username == "" || password == "" {
		return 0, apperrors.Validation("Заполните все поля")
	}
	id, err := s.users.CreateUser(ctx, username, session.HashCredential(password), admin)
	if err != nil {
		return 0, err
	}
	s.log.WithField("user_id", id).WithField("admin", admin).Info("user created")
	return id, nil
}

// UserUpdate rewrites a user. A blank Password keeps the current one.
type UserUpdate struct {
	ID       int64
	Username string
	Admin    bool
	Password string
}

func (s *Service) UpdateUser(ctx context.Context, u UserUpdate) error {
	if u.Username == "" {
		return apperrors.Validation("Заполните все поля")
	}
	old, oldErr := s.users.GetUser(ctx, u.ID)
	if err := s.users.UpdateUser(ctx, u.ID, u.Username, u.Admin); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return apperrors.NotFound("User not found")
		}
		return err
	}

	password := strings.TrimSpace(u.Password)
	if password != "" {
		if err := s.users.UpdateUserPassword(ctx, u.ID, session.HashCredential(password)); err != nil {
			return err
		}
	}

	var parts []string
	if oldErr == nil && old.Username != u.Username {
		parts = append(parts, "Было: "+old.Username)
	}
	parts = append(parts, "Роль: "+account.User{Admin: u.Admin}.Role())
	if password != "" {
		parts = append(parts, "Пароль изменён")
	}
	s.record(ctx, auditsvc.Change{
		Action: audit.ActionEdit, EntityType: audit.EntityUser,
		EntityID: u.ID, EntityName: u.Username, Details: auditsvc.JoinDetails(parts...),
	})
	s.log.WithField("user_id", u.ID).Info("user updated")
	return nil
}

func (s *Service) DeleteUser(ctx context.Context, id int64) error {
	name := strconv.FormatInt(id, 10)
	if u, err := s.users.GetUser(ctx, id); err == nil {
		name = u.Username
	}
	if err := s.users.DeleteUser(ctx, id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return apperrors.NotFound("User not found")
		}
		return err
	}
	s.record(ctx, auditsvc.Change{
		Action: audit.ActionDelete, EntityType: audit.EntityUser,
		EntityID: id, EntityName: name,
	})
	s.log.WithField("user_id", id).Info("user deleted")
	return nil
}

func (s *Service) record(ctx context.Context, c auditsvc.Change) {
	if s.audit != nil {
		s.audit.Record(ctx, c)
	}
}
