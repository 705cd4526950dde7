package db

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenInMemory(t *testing.T) {
	conn, err := Open(":memory:")
	require.NoError(t, err)
	defer conn.Close()

	_, err = conn.Exec(`INSERT INTO completions (key, model, content, created_at) VALUES ('k', 'm', 'c', CURRENT_TIMESTAMP)`)
	require.NoError(t, err)

	var content string
	require.NoError(t, conn.QueryRow(`SELECT content FROM completions WHERE key = 'k'`).Scan(&content))
	assert.Equal(t, "c", content)
}

func TestOpenFileIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "memo.db")

	first, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, first.Close())

	second, err := Open(path)
	require.NoError(t, err)
	defer second.Close()

	var n int
	require.NoError(t, second.QueryRow(`SELECT COUNT(*) FROM completions`).Scan(&n))
	assert.Zero(t, n)
}
