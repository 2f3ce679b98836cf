package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

const sessionTTL = 24 * time.Hour

// dummyHash keeps sign-in timing similar for unknown usernames
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("dummy"), bcrypt.DefaultCost)

// Manager handles user accounts and session tokens
type Manager struct {
	store  *SQLiteStore
	secret []byte
}

// NewManager creates an auth manager. The secret signs session tokens.
func NewManager(store *SQLiteStore, secret []byte) *Manager {
	return &Manager{store: store, secret: secret}
}

// EnsureDefaultAdmin creates the admin account on first start
func (m *Manager) EnsureDefaultAdmin(ctx context.Context) error {
	_, err := m.store.GetByUsername(ctx, "admin")
	if err == nil {
		return nil
	}
	if err != ErrUserNotFound {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte("admin"), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	admin := &User{
		ID:           uuid.NewString(),
		Username:     "admin",
		PasswordHash: string(hash),
		IsAdmin:      true,
		CreatedAt:    time.Now().UTC(),
	}
	if err := m.store.Create(ctx, admin); err != nil {
		return err
	}

	logrus.Warn("Created default admin user (username: admin, password: admin), change the password immediately")
	return nil
}

// CreateUser registers a new account
func (m *Manager) CreateUser(ctx context.Context, username, email, password string, isAdmin bool) (*User, error) {
	if username == "" {
		return nil, fmt.Errorf("username is required")
	}
	if len(password) < 8 {
		return nil, fmt.Errorf("password must be at least 8 characters")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &User{
		ID:           uuid.NewString(),
		Username:     username,
		Email:        email,
		PasswordHash: string(hash),
		IsAdmin:      isAdmin,
		CreatedAt:    time.Now().UTC(),
	}
	if err := m.store.Create(ctx, user); err != nil {
		return nil, err
	}

	logrus.WithField("username", username).Info("User created")
	return user, nil
}

// SignIn checks the credentials and returns the user with a session token
func (m *Manager) SignIn(ctx context.Context, username, password string) (*User, string, error) {
	user, err := m.store.GetByUsername(ctx, username)
	if err != nil {
		if err == ErrUserNotFound {
			// Burn a comparison so unknown and known usernames take
			// similar time
			bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, "", ErrInvalidCredentials
	}

	token, err := m.issueSession(user, time.Now())
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

// ChangePassword sets a new password after checking the old one
func (m *Manager) ChangePassword(ctx context.Context, userID, oldPassword, newPassword string) error {
	user, err := m.store.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(oldPassword)) != nil {
		return ErrInvalidCredentials
	}
	if len(newPassword) < 8 {
		return fmt.Errorf("password must be at least 8 characters")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	return m.store.UpdatePassword(ctx, userID, string(hash))
}

// ValidateSession verifies a session token and loads its user
func (m *Manager) ValidateSession(ctx context.Context, tokenString string) (*User, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return m.secret, nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil || !token.Valid {
		return nil, ErrInvalidSession
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrInvalidSession
	}
	userID, _ := claims["sub"].(string)
	if userID == "" {
		return nil, ErrInvalidSession
	}

	user, err := m.store.GetByID(ctx, userID)
	if err != nil {
		return nil, ErrInvalidSession
	}
	return user, nil
}

func (m *Manager) issueSession(user *User, now time.Time) (string, error) {
	claims := jwt.MapClaims{
		"sub":      user.ID,
		"username": user.Username,
		"isAdmin":  user.IsAdmin,
		"iat":      now.Unix(),
		"exp":      now.Add(sessionTTL).Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
}

// GetUser loads a user by id
func (m *Manager) GetUser(ctx context.Context, id string) (*User, error) {
	return m.store.GetByID(ctx, id)
}

// ListUsers lists all accounts
func (m *Manager) ListUsers(ctx context.Context) ([]*User, error) {
	return m.store.List(ctx)
}

// DeleteUser removes an account
func (m *Manager) DeleteUser(ctx context.Context, id string) error {
	return m.store.Delete(ctx, id)
}
