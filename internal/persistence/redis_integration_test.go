package persistence

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
)

type RedisKVSuite struct {
	suite.Suite
	ctx       context.Context
	container *tcredis.RedisContainer
	client    *redis.Client
}

func (s *RedisKVSuite) SetupSuite() {
	s.ctx = context.Background()

	var err error
	s.container, err = tcredis.Run(s.ctx,
		"docker.io/redis:7-alpine",
		testcontainers.WithWaitStrategy(
			wait.ForLog("* Ready to accept connections").
				WithOccurrence(1).
				WithStartupTimeout(time.Minute),
		),
	)
	require.NoError(s.T(), err, "Failed to start redis container")

	host, err := s.container.Host(s.ctx)
	require.NoError(s.T(), err)
	port, err := s.container.MappedPort(s.ctx, "6379/tcp")
	require.NoError(s.T(), err)

	s.client = redis.NewClient(&redis.Options{Addr: fmt.Sprintf("%s:%s", host, port.Port())})
	require.NoError(s.T(), s.client.Ping(s.ctx).Err())
}

func (s *RedisKVSuite) TearDownSuite() {
	if s.client != nil {
		_ = s.client.Close()
	}
	if s.container != nil {
		_ = s.container.Terminate(s.ctx)
	}
}

func (s *RedisKVSuite) SetupTest() {
	require.NoError(s.T(), s.client.FlushDB(s.ctx).Err())
}

func (s *RedisKVSuite) TestBackend() {
	exerciseKV(s.T(), NewRedisKV(s.client, "player-1:", zap.NewNop()))
}

func (s *RedisKVSuite) TestPrefixIsolatesPlayers() {
	one := NewSaver(NewRedisKV(s.client, "player-1:", zap.NewNop()), zap.NewNop())
	two := NewSaver(NewRedisKV(s.client, "player-2:", zap.NewNop()), zap.NewNop())

	s.Require().True(one.Save(s.ctx, midDay(s.T())))
	s.True(one.HasSave(s.ctx))
	s.False(two.HasSave(s.ctx))

	keys, err := s.client.Keys(s.ctx, "*").Result()
	s.Require().NoError(err)
	s.Equal([]string{"player-1:" + SaveKey}, keys)
}

func TestRedisKVSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration tests in short mode")
	}
	testcontainers.SkipIfProviderIsNotHealthy(t)
	suite.Run(t, new(RedisKVSuite))
}
