package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dukerupert/kidscoin/internal/model"
)

// ErrNoCredentials is returned by Load when nothing has been saved.
var ErrNoCredentials = errors.New("no stored credentials")

// Credentials is the persisted session: both tokens and the last known
// snapshot of the user.
type Credentials struct {
	AccessToken  string
	RefreshToken string
	User         model.User
}

// CredentialStore keeps the session under family-namespaced keys
// ("@kidscoin:token", "@kidscoin:refreshToken", "@kidscoin:user"). With a
// passphrase the tokens are sealed at rest.
type CredentialStore struct {
	db         *sql.DB
	namespace  string
	passphrase string
}

func NewCredentialStore(db *sql.DB, namespace, passphrase string) *CredentialStore {
	return &CredentialStore{db: db, namespace: namespace, passphrase: passphrase}
}

func (s *CredentialStore) key(name string) string {
	return s.namespace + ":" + name
}

func (s *CredentialStore) get(name string) (string, error) {
	var value string
	err := s.db.QueryRow(
		`SELECT value FROM local_state WHERE namespace = ? AND key = ?`,
		s.namespace, s.key(name),
	).Scan(&value)
	if err == sql.ErrNoRows {
		return "", ErrNoCredentials
	}
	if err != nil {
		return "", fmt.Errorf("get %q: %w", s.key(name), err)
	}
	return value, nil
}

func set(tx *sql.Tx, namespace, key, value string) error {
	_, err := tx.Exec(
		`INSERT INTO local_state (namespace, key, value, updated_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT(namespace, key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		namespace, key, value, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("set %q: %w", key, err)
	}
	return nil
}

func (s *CredentialStore) encodeToken(token string) (string, error) {
	if s.passphrase == "" || token == "" {
		return token, nil
	}
	return seal([]byte(token), s.passphrase)
}

func (s *CredentialStore) decodeToken(value string) (string, error) {
	if s.passphrase == "" || value == "" {
		return value, nil
	}
	b, err := unseal(value, s.passphrase)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Save replaces the stored session in one transaction.
func (s *CredentialStore) Save(c Credentials) error {
	access, err := s.encodeToken(c.AccessToken)
	if err != nil {
		return fmt.Errorf("seal access token: %w", err)
	}
	refresh, err := s.encodeToken(c.RefreshToken)
	if err != nil {
		return fmt.Errorf("seal refresh token: %w", err)
	}
	user, err := json.Marshal(c.User)
	if err != nil {
		return fmt.Errorf("marshal user: %w", err)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if err := set(tx, s.namespace, s.key("token"), access); err != nil {
		return err
	}
	if err := set(tx, s.namespace, s.key("refreshToken"), refresh); err != nil {
		return err
	}
	if err := set(tx, s.namespace, s.key("user"), string(user)); err != nil {
		return err
	}
	return tx.Commit()
}

// SaveUser updates only the cached user snapshot.
func (s *CredentialStore) SaveUser(u model.User) error {
	user, err := json.Marshal(u)
	if err != nil {
		return fmt.Errorf("marshal user: %w", err)
	}
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()
	if err := set(tx, s.namespace, s.key("user"), string(user)); err != nil {
		return err
	}
	return tx.Commit()
}

// Load returns the stored session, or ErrNoCredentials when there is no
// access token.
func (s *CredentialStore) Load() (Credentials, error) {
	raw, err := s.get("token")
	if err != nil {
		return Credentials{}, err
	}
	access, err := s.decodeToken(raw)
	if err != nil {
		return Credentials{}, fmt.Errorf("open access token: %w", err)
	}
	if access == "" {
		return Credentials{}, ErrNoCredentials
	}
	c := Credentials{AccessToken: access}

	raw, err = s.get("refreshToken")
	switch {
	case errors.Is(err, ErrNoCredentials):
	case err != nil:
		return Credentials{}, err
	default:
		if c.RefreshToken, err = s.decodeToken(raw); err != nil {
			return Credentials{}, fmt.Errorf("open refresh token: %w", err)
		}
	}

	raw, err = s.get("user")
	switch {
	case errors.Is(err, ErrNoCredentials):
	case err != nil:
		return Credentials{}, err
	default:
		if err := json.Unmarshal([]byte(raw), &c.User); err != nil {
			return Credentials{}, fmt.Errorf("decode user snapshot: %w", err)
		}
	}
	return c, nil
}

// Clear removes every key in the namespace.
func (s *CredentialStore) Clear() error {
	if _, err := s.db.Exec(`DELETE FROM local_state WHERE namespace = ?`, s.namespace); err != nil {
		return fmt.Errorf("clear %s: %w", s.namespace, err)
	}
	return nil
}
