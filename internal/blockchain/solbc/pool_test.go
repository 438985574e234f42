package solbc

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNewPool_Validation(t *testing.T) {
	_, err := NewPool(nil, PoolOptions{}, zap.NewNop())
	assert.ErrorIs(t, err, ErrNoEndpoints)

	_, err = NewPool([]string{"http://a"}, PoolOptions{Strategy: "weighted"}, zap.NewNop())
	assert.ErrorIs(t, err, ErrUnknownStrategy)
}

func TestPool_RoundRobin(t *testing.T) {
	urls := []string{"http://a", "http://b", "http://c"}
	pool, err := NewPool(urls, PoolOptions{Strategy: StrategyRoundRobin}, zap.NewNop())
	require.NoError(t, err)

	var got []string
	for i := 0; i < 6; i++ {
		got = append(got, pool.Pick().URL)
	}
	assert.Equal(t, []string{"http://a", "http://b", "http://c", "http://a", "http://b", "http://c"}, got)
}

func TestPool_RandomCoversAllEndpoints(t *testing.T) {
	urls := []string{"http://a", "http://b", "http://c"}
	pool, err := NewPool(urls, PoolOptions{Strategy: StrategyRandom, Seed: 42}, zap.NewNop())
	require.NoError(t, err)

	seen := make(map[string]int)
	for i := 0; i < 300; i++ {
		seen[pool.Pick().URL]++
	}
	assert.Len(t, seen, 3)
}

func TestPool_Check(t *testing.T) {
	fake, srv := newFakeRPC(t)
	fake.on("getHealth", `"ok"`)

	pool, err := NewPool([]string{srv.URL}, PoolOptions{}, zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, 1, pool.Check(context.Background(), time.Second))
	assert.Equal(t, 1, fake.count("getHealth"))
}

func TestMaskURL(t *testing.T) {
	assert.Equal(t, "https://mainnet.helius-rpc.com", MaskURL("https://mainnet.helius-rpc.com/?api-key=secret"))
	assert.Equal(t, "invalid-url", MaskURL("not a url"))
}

func TestParseStrategy(t *testing.T) {
	s, err := ParseStrategy("")
	require.NoError(t, err)
	assert.Equal(t, StrategyRandom, s)

	s, err = ParseStrategy("round_robin")
	require.NoError(t, err)
	assert.Equal(t, StrategyRoundRobin, s)
}
