package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mal-ai/internal/db"
)

type countingGenerator struct {
	model   string
	calls   int
	content string
	err     error
}

func (g *countingGenerator) Model() string { return g.model }

func (g *countingGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	g.calls++
	if g.err != nil {
		return "", g.err
	}
	return g.content + ":" + prompt, nil
}

func newSQLCache(t *testing.T) *SQLCache {
	t.Helper()
	conn, err := db.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return NewSQLCache(conn)
}

func TestMemoGeneratorReusesCompletion(t *testing.T) {
	gen := &countingGenerator{model: "m1", content: "out"}
	memo := NewMemoGenerator(gen, newSQLCache(t))
	ctx := context.Background()

	first, err := memo.Generate(ctx, "p")
	require.NoError(t, err)
	second, err := memo.Generate(ctx, "p")
	require.NoError(t, err)

	assert.Equal(t, "out:p", first)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, gen.calls)

	_, err = memo.Generate(ctx, "other")
	require.NoError(t, err)
	assert.Equal(t, 2, gen.calls)
	assert.Equal(t, "m1", memo.Model())
}

func TestMemoGeneratorDoesNotStoreFailures(t *testing.T) {
	gen := &countingGenerator{model: "m1", err: ErrGenerationFailed}
	memo := NewMemoGenerator(gen, newSQLCache(t))
	ctx := context.Background()

	_, err := memo.Generate(ctx, "p")
	require.ErrorIs(t, err, ErrGenerationFailed)

	gen.err = nil
	gen.content = "recovered"
	got, err := memo.Generate(ctx, "p")
	require.NoError(t, err)
	assert.Equal(t, "recovered:p", got)
	assert.Equal(t, 2, gen.calls)
}

type brokenCache struct{}

func (brokenCache) Get(context.Context, string) (string, bool, error) {
	return "", false, errors.New("disk on fire")
}

func (brokenCache) Put(context.Context, string, string, string) error {
	return errors.New("disk on fire")
}

func TestMemoGeneratorSurvivesBrokenCache(t *testing.T) {
	gen := &countingGenerator{model: "m1", content: "out"}
	memo := NewMemoGenerator(gen, brokenCache{})

	got, err := memo.Generate(context.Background(), "p")
	require.NoError(t, err)
	assert.Equal(t, "out:p", got)
}

func TestMemoKeyDependsOnModel(t *testing.T) {
	assert.NotEqual(t, memoKey("a", "p"), memoKey("b", "p"))
	assert.NotEqual(t, memoKey("a", "bp"), memoKey("ab", "p"))
	assert.Len(t, memoKey("a", "p"), 64)
}
