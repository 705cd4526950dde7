package services

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

// CompletionCache stores successful completions by key.
type CompletionCache interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Put(ctx context.Context, key, model, content string) error
}

// SQLCache keeps completions in the completions table opened by db.Open.
type SQLCache struct {
	db *sql.DB
}

func NewSQLCache(db *sql.DB) *SQLCache {
	return &SQLCache{db: db}
}

func (c *SQLCache) Get(ctx context.Context, key string) (string, bool, error) {
	var content string
	err := c.db.QueryRowContext(ctx, `SELECT content FROM completions WHERE key = ?;`, key).Scan(&content)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("lookup completion: %w", err)
	}
	return content, true, nil
}

func (c *SQLCache) Put(ctx context.Context, key, model, content string) error {
	if _, err := c.db.ExecContext(ctx, `
		INSERT INTO completions (key, model, content, created_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET content = excluded.content, created_at = excluded.created_at;
	`, key, model, content, time.Now().UTC()); err != nil {
		return fmt.Errorf("store completion: %w", err)
	}
	return nil
}

// MemoGenerator returns a stored completion when the same model has already
// answered the same prompt. Failures are never stored, and a broken cache
// only costs a fresh model call.
type MemoGenerator struct {
	next  Generator
	cache CompletionCache
}

func NewMemoGenerator(next Generator, cache CompletionCache) *MemoGenerator {
	return &MemoGenerator{next: next, cache: cache}
}

func (m *MemoGenerator) Model() string {
	return m.next.Model()
}

func (m *MemoGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	log := zerolog.Ctx(ctx)
	key := memoKey(m.next.Model(), prompt)

	content, ok, err := m.cache.Get(ctx, key)
	switch {
	case err != nil:
		log.Warn().Err(err).Msg("Completion cache lookup failed")
	case ok:
		log.Debug().Str("memo_key", key[:12]).Msg("Serving memoized completion")
		return content, nil
	}

	content, err = m.next.Generate(ctx, prompt)
	if err != nil {
		return "", err
	}
	if err := m.cache.Put(ctx, key, m.next.Model(), content); err != nil {
		log.Warn().Err(err).Msg("Failed to memoize completion")
	}
	return content, nil
}

func memoKey(model, prompt string) string {
	sum := sha256.Sum256([]byte(model + "\x00" + prompt))
	return hex.EncodeToString(sum[:])
}
