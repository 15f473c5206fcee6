package redis

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/gregwiedeman/cat-validator-hate-guard/internal/guardrail/tests"
)

func setupTestRedis(t *testing.T) (*miniredis.Miniredis, *Registry) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	return mr, NewRegistry(client, "catvalidator-test")
}

func TestRedisRegistry(t *testing.T) {
	mr, registry := setupTestRedis(t)
	tests.RunRegistryTests(t, registry, mr.FlushAll)
}

func TestCreateConverges(t *testing.T) {
	mr, registry := setupTestRedis(t)
	ctx := context.Background()

	first, err := registry.Create(ctx, tests.SamplePolicy())
	require.NoError(t, err)
	second, err := registry.Create(ctx, tests.SamplePolicy())
	require.NoError(t, err)

	require.Equal(t, first, second)

	keys, err := mr.HKeys("catvalidator-test:guardrails")
	require.NoError(t, err)
	require.Len(t, keys, 1)
}

func TestListRejectsCorruptRecord(t *testing.T) {
	mr, registry := setupTestRedis(t)
	mr.HSet("catvalidator-test:guardrails", "broken", "{not json")

	_, err := registry.List(context.Background())
	require.Error(t, err)
}
