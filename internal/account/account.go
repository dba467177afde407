package account

import (
	"context"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/myaiplug/saasify/pkg/models"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrWeakPassword       = errors.New("password must be at least 8 characters")
	ErrInvalidEmail       = errors.New("invalid email address")
	ErrNotSignedIn        = errors.New("not signed in")
)

const sessionFile = "session.json"

// Store is the durable account backend.
type Store interface {
	CreateAccount(ctx context.Context, acct *models.Account, passwordHash, salt string) error
	GetAccountByEmail(ctx context.Context, email string) (*models.Account, string, string, error)
	GetAccount(ctx context.Context, id string) (*models.Account, error)
}

// sessionState is the session.json structure.
type sessionState struct {
	OwnerID    string    `json:"owner_id"`
	Email      string    `json:"email"`
	SignedInAt time.Time `json:"signed_in_at"`
}

// Manager resolves the current owner identity and handles sign-up and
// sign-in. The session survives process restarts via a state file in
// the config directory.
type Manager struct {
	store     Store
	configDir string
	log       *slog.Logger
}

func NewManager(store Store, configDir string, log *slog.Logger) *Manager {
	if log == nil {
		log = slog.Default()
	}
	return &Manager{store: store, configDir: configDir, log: log}
}

func (m *Manager) sessionPath() string {
	return filepath.Join(m.configDir, sessionFile)
}

func (m *Manager) SignUp(ctx context.Context, email, name, password string) (*models.Account, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if !strings.Contains(email, "@") {
		return nil, ErrInvalidEmail
	}
	if len(password) < 8 {
		return nil, ErrWeakPassword
	}

	salt, err := newSalt()
	if err != nil {
		return nil, fmt.Errorf("failed to generate salt: %w", err)
	}

	acct := &models.Account{
		ID:        uuid.New().String(),
		Email:     email,
		Name:      strings.TrimSpace(name),
		CreatedAt: time.Now(),
	}
	if err := m.store.CreateAccount(ctx, acct, hashPassword(password, salt), salt); err != nil {
		return nil, err
	}

	if err := m.writeSession(acct); err != nil {
		return nil, err
	}
	m.log.Info("account created", "owner", acct.ID, "email", acct.Email)
	return acct, nil
}

func (m *Manager) SignIn(ctx context.Context, email, password string) (*models.Account, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	acct, storedHash, salt, err := m.store.GetAccountByEmail(ctx, email)
	if err != nil {
		return nil, ErrInvalidCredentials
	}
	if !hmac.Equal([]byte(hashPassword(password, salt)), []byte(storedHash)) {
		return nil, ErrInvalidCredentials
	}

	if err := m.writeSession(acct); err != nil {
		return nil, err
	}
	m.log.Info("signed in", "owner", acct.ID)
	return acct, nil
}

func (m *Manager) SignOut() error {
	err := os.Remove(m.sessionPath())
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	return nil
}

// CurrentOwnerID returns the signed-in owner id, or empty when the
// session is anonymous. It never fails; a corrupt or missing session
// file simply reads as anonymous.
func (m *Manager) CurrentOwnerID() string {
	st, err := m.readSession()
	if err != nil {
		return ""
	}
	return st.OwnerID
}

// Current returns the signed-in account, or ErrNotSignedIn.
func (m *Manager) Current(ctx context.Context) (*models.Account, error) {
	st, err := m.readSession()
	if err != nil || st.OwnerID == "" {
		return nil, ErrNotSignedIn
	}
	acct, err := m.store.GetAccount(ctx, st.OwnerID)
	if err != nil {
		return nil, ErrNotSignedIn
	}
	return acct, nil
}

func (m *Manager) readSession() (*sessionState, error) {
	data, err := os.ReadFile(m.sessionPath())
	if err != nil {
		return nil, err
	}
	var st sessionState
	if err := json.Unmarshal(data, &st); err != nil {
		return nil, fmt.Errorf("failed to parse session file: %w", err)
	}
	return &st, nil
}

func (m *Manager) writeSession(acct *models.Account) error {
	if err := os.MkdirAll(m.configDir, 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	data, err := json.MarshalIndent(sessionState{
		OwnerID:    acct.ID,
		Email:      acct.Email,
		SignedInAt: time.Now(),
	}, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(m.sessionPath(), data, 0600); err != nil {
		return fmt.Errorf("failed to write session file: %w", err)
	}
	return nil
}

func newSalt() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

func hashPassword(password, salt string) string {
	sum := sha256.Sum256([]byte(salt + password))
	return hex.EncodeToString(sum[:])
}
