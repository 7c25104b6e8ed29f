package auth

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"hrdesk/internal/domain/records"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrMasterRequired     = errors.New("master role required")
	ErrUnknownUser        = errors.New("unknown user")
)

type Mode int

const (
	ModeStandard Mode = iota
	ModeMaster
)

func ParseMode(value string) Mode {
	if strings.EqualFold(strings.TrimSpace(value), "master") {
		return ModeMaster
	}
	return ModeStandard
}

type Identity struct {
	Username string `json:"username"`
	Role     string `json:"role"`
}

type SeedUser struct {
	Username string
	Password string
	Role     string
}

// DefaultSeed is the first-run account pair.
func DefaultSeed(adminPassword, masterPassword string) []SeedUser {
	return []SeedUser{
		{Username: "admin", Password: adminPassword, Role: RoleAdmin},
		{Username: "master", Password: masterPassword, Role: RoleMaster},
	}
}

type Service struct {
	Store *records.Store
}

func NewService(store *records.Store) *Service {
	return &Service{Store: store}
}

func (s *Service) users(ctx context.Context) ([]records.User, error) {
	return records.Get[records.User](ctx, s.Store, records.Users)
}

// SeedDefaultUsers writes seed only when no user exists. A corrupt user
// collection is left alone and reported.
func (s *Service) SeedDefaultUsers(ctx context.Context, seed []SeedUser) (bool, error) {
	ctx, unlock := s.Store.Lock(ctx)
	defer unlock()
	users, err := s.users(ctx)
	if err != nil {
		return false, err
	}
	if len(users) > 0 {
		return false, nil
	}
	for _, su := range seed {
		hash, err := HashPassword(su.Password)
		if err != nil {
			return false, err
		}
		users = append(users, records.User{Username: su.Username, PasswordHash: hash, Role: su.Role})
	}
	if err := records.Set(ctx, s.Store, records.Users, users); err != nil {
		return false, err
	}
	return true, nil
}

// Authenticate matches username exactly and verifies the password. Master
// mode additionally requires the master role. A legacy hash that matches is
// replaced with bcrypt.
func (s *Service) Authenticate(ctx context.Context, username, password string, mode Mode) (Identity, error) {
	users, err := s.users(ctx)
	if err != nil && !errors.Is(err, records.ErrCorrupt) {
		return Identity{}, err
	}
	idx := indexOfUser(users, username)
	if idx < 0 {
		return Identity{}, ErrInvalidCredentials
	}
	user := users[idx]
	ok, upgrade := VerifyPassword(user.PasswordHash, password)
	if !ok {
		return Identity{}, ErrInvalidCredentials
	}
	if mode == ModeMaster && user.Role != RoleMaster {
		return Identity{}, ErrMasterRequired
	}
	if upgrade {
		if err := s.upgradeHash(ctx, user, password); err != nil {
			slog.Warn("password hash upgrade failed", "username", username, "err", err)
		}
	}
	return Identity{Username: user.Username, Role: user.Role}, nil
}

// upgradeHash replaces a legacy hash with bcrypt unless the stored hash
// changed since it was verified.
func (s *Service) upgradeHash(ctx context.Context, user records.User, password string) error {
	hash, err := HashPassword(password)
	if err != nil {
		return err
	}
	ctx, unlock := s.Store.Lock(ctx)
	defer unlock()
	users, err := s.users(ctx)
	if err != nil {
		return err
	}
	idx := indexOfUser(users, user.Username)
	if idx < 0 || users[idx].PasswordHash != user.PasswordHash {
		return nil
	}
	users[idx].PasswordHash = hash
	return records.Set(ctx, s.Store, records.Users, users)
}

// VerifyOwnPassword checks password against username's record only.
func (s *Service) VerifyOwnPassword(ctx context.Context, username, password string) error {
	users, err := s.users(ctx)
	if err != nil {
		return err
	}
	idx := indexOfUser(users, username)
	if idx < 0 {
		return ErrInvalidCredentials
	}
	if ok, _ := VerifyPassword(users[idx].PasswordHash, password); !ok {
		return ErrInvalidCredentials
	}
	return nil
}

// ConfirmPassword re-checks a password before a destructive action. The
// acting user's own password or any master password is accepted.
func (s *Service) ConfirmPassword(ctx context.Context, username, password string) error {
	users, err := s.users(ctx)
	if err != nil {
		return err
	}
	for _, user := range users {
		if user.Username != username && user.Role != RoleMaster {
			continue
		}
		if ok, _ := VerifyPassword(user.PasswordHash, password); ok {
			return nil
		}
	}
	return ErrInvalidCredentials
}

func (s *Service) SetPassword(ctx context.Context, username, password string) error {
	hash, err := HashPassword(password)
	if err != nil {
		return err
	}
	ctx, unlock := s.Store.Lock(ctx)
	defer unlock()
	users, err := s.users(ctx)
	if err != nil {
		return err
	}
	idx := indexOfUser(users, username)
	if idx < 0 {
		return ErrUnknownUser
	}
	users[idx].PasswordHash = hash
	return records.Set(ctx, s.Store, records.Users, users)
}

func (s *Service) Lookup(ctx context.Context, username string) (Identity, bool, error) {
	users, err := s.users(ctx)
	if err != nil {
		return Identity{}, false, err
	}
	idx := indexOfUser(users, username)
	if idx < 0 {
		return Identity{}, false, nil
	}
	return Identity{Username: users[idx].Username, Role: users[idx].Role}, true, nil
}

func indexOfUser(users []records.User, username string) int {
	for i, user := range users {
		if user.Username == username {
			return i
		}
	}
	return -1
}
