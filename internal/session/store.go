package session

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/sara-zarrad/dopaflow-frontend-sub000/internal/crmapi"
)

// StaticToken is a token fixed at startup (CRM_API_TOKEN).
type StaticToken string

// Token implements crmapi.TokenSource.
func (t StaticToken) Token(context.Context) (string, error) {
	if t == "" {
		return "", ErrNoToken
	}
	return string(t), nil
}

// FileStore persists the CLI login token in a single 0600 file.
type FileStore struct {
	Path string
}

// NewFileStore expands a leading ~ in path.
func NewFileStore(path string) (*FileStore, error) {
	if strings.HasPrefix(path, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to resolve home directory: %w", err)
		}
		path = filepath.Join(home, strings.TrimPrefix(path, "~"))
	}
	if path == "" {
		return nil, errors.New("token file path is required")
	}
	return &FileStore{Path: path}, nil
}

// Token implements crmapi.TokenSource.
func (s *FileStore) Token(context.Context) (string, error) {
	raw, err := os.ReadFile(s.Path)
	if errors.Is(err, os.ErrNotExist) {
		return "", ErrNoToken
	}
	if err != nil {
		return "", fmt.Errorf("failed to read token file: %w", err)
	}
	token := strings.TrimSpace(string(raw))
	if token == "" {
		return "", ErrNoToken
	}
	return token, nil
}

// Save writes token, creating the parent directory.
func (s *FileStore) Save(token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return ErrNoToken
	}
	if err := os.MkdirAll(filepath.Dir(s.Path), 0o700); err != nil {
		return fmt.Errorf("failed to create token directory: %w", err)
	}
	if err := os.WriteFile(s.Path, []byte(token+"\n"), 0o600); err != nil {
		return fmt.Errorf("failed to write token file: %w", err)
	}
	return nil
}

// Clear removes the token file. A missing file is not an error.
func (s *FileStore) Clear() error {
	if err := os.Remove(s.Path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove token file: %w", err)
	}
	return nil
}

// RedisStore maps BFF session ids to bearer tokens with a sliding TTL.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStore creates a store whose entries expire after ttl of inactivity.
func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

func sessionKey(id string) string {
	return "dopaflow:session:" + id
}

// Create stores token under a fresh session id.
func (s *RedisStore) Create(ctx context.Context, token string) (string, error) {
	if token == "" {
		return "", ErrNoToken
	}
	id := uuid.NewString()
	if err := s.client.Set(ctx, sessionKey(id), token, s.ttl).Err(); err != nil {
		return "", fmt.Errorf("failed to store session: %w", err)
	}
	return id, nil
}

// Lookup returns the token of session id and extends its TTL.
func (s *RedisStore) Lookup(ctx context.Context, id string) (string, error) {
	if id == "" {
		return "", ErrNoToken
	}
	token, err := s.client.GetEx(ctx, sessionKey(id), s.ttl).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrNoToken
	}
	if err != nil {
		return "", fmt.Errorf("failed to load session: %w", err)
	}
	return token, nil
}

// Delete forgets session id.
func (s *RedisStore) Delete(ctx context.Context, id string) error {
	if err := s.client.Del(ctx, sessionKey(id)).Err(); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// Source returns a token source bound to session id.
func (s *RedisStore) Source(id string) crmapi.TokenSource {
	return crmapi.TokenFunc(func(ctx context.Context) (string, error) {
		return s.Lookup(ctx, id)
	})
}
