//go:build integration

package telemetry_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"convoy/internal/telemetry"
	"convoy/pkg/domain"
	"convoy/pkg/testutil/containers"
)

type RedisCacheSuite struct {
	suite.Suite
	redis *containers.RedisContainer
	cache *telemetry.Cache
}

func TestRedisCacheSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(RedisCacheSuite))
}

func (s *RedisCacheSuite) SetupSuite() {
	s.redis = containers.NewRedisContainer(s.T())
	s.cache = telemetry.NewCache(s.redis.Client, time.Minute)
}

func (s *RedisCacheSuite) SetupTest() {
	s.Require().NoError(s.redis.Client.FlushAll(context.Background()).Err())
}

func scoreOf(v float64) *float64 { return &v }

func (s *RedisCacheSuite) TestPutThenGet() {
	ctx := context.Background()
	end := time.Now().UTC()
	start := end.AddDate(0, 0, -90)

	want := []telemetry.DriverScore{
		{DriverID: domain.DriverID(uuid.New()), Score: scoreOf(71.5)},
		{DriverID: domain.DriverID(uuid.New()), Score: nil},
	}
	s.cache.Put(ctx, start, end, want)

	got, ok := s.cache.Get(ctx, start, end)
	s.Require().True(ok)
	s.Require().Len(got, 2)
	s.Equal(want[0].DriverID, got[0].DriverID)
	s.Require().NotNil(got[0].Score)
	s.InDelta(71.5, *got[0].Score, 0.001)
	s.Nil(got[1].Score)
}

func (s *RedisCacheSuite) TestMissOnDifferentWindow() {
	ctx := context.Background()
	end := time.Now().UTC()
	start := end.AddDate(0, 0, -90)

	s.cache.Put(ctx, start, end, []telemetry.DriverScore{})

	_, ok := s.cache.Get(ctx, start.AddDate(0, 0, -1), end)
	s.False(ok)
}

func (s *RedisCacheSuite) TestEntriesExpire() {
	ctx := context.Background()
	end := time.Now().UTC()
	start := end.AddDate(0, 0, -90)

	shortLived := telemetry.NewCache(s.redis.Client, 50*time.Millisecond)
	shortLived.Put(ctx, start, end, []telemetry.DriverScore{
		{DriverID: domain.DriverID(uuid.New()), Score: scoreOf(40)},
	})

	time.Sleep(120 * time.Millisecond)

	_, ok := shortLived.Get(ctx, start, end)
	s.False(ok)
}
