package redislock_test

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"fulfillment/internal/adapters/out/redislock"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"golang.org/x/sync/errgroup"
)

type LockerTestSuite struct {
	suite.Suite
	container testcontainers.Container
	client    *redis.Client
}

func (suite *LockerTestSuite) SetupSuite() {
	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections").WithStartupTimeout(30 * time.Second),
		},
		Started: true,
	})
	suite.Require().NoError(err)
	suite.container = container

	endpoint, err := container.Endpoint(ctx, "")
	suite.Require().NoError(err)
	suite.client = redis.NewClient(&redis.Options{Addr: endpoint})
}

func (suite *LockerTestSuite) SetupTest() {
	suite.Require().NoError(suite.client.FlushAll(context.Background()).Err())
}

func (suite *LockerTestSuite) TearDownSuite() {
	if suite.client != nil {
		_ = suite.client.Close()
	}
	if suite.container != nil {
		suite.Require().NoError(suite.container.Terminate(context.Background()))
	}
}

func (suite *LockerTestSuite) TestLock_ExcludesSecondHolder() {
	locker := redislock.New(suite.client)

	unlock, err := locker.Lock(context.Background(), "order:1", "variant:a")
	suite.Require().NoError(err)

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	_, err = locker.Lock(ctx, "variant:a")
	suite.ErrorIs(err, context.DeadlineExceeded)

	unlock()
	unlock()

	unlock, err = locker.Lock(context.Background(), "variant:a")
	suite.Require().NoError(err)
	unlock()
}

func (suite *LockerTestSuite) TestLock_FailedAcquireReleasesEarlierKeys() {
	locker := redislock.New(suite.client)

	unlockB, err := locker.Lock(context.Background(), "b")
	suite.Require().NoError(err)
	defer unlockB()

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Millisecond)
	defer cancel()
	_, err = locker.Lock(ctx, "a", "b")
	suite.Require().Error(err)

	n, err := suite.client.Exists(context.Background(), "fulfillment:lock:a").Result()
	suite.Require().NoError(err)
	suite.Zero(n)
}

func (suite *LockerTestSuite) TestUnlock_LeavesKeyTakenOverAfterExpiry() {
	ctx := context.Background()
	locker := redislock.New(suite.client, redislock.WithTTL(50*time.Millisecond))

	unlockFirst, err := locker.Lock(ctx, "order:1")
	suite.Require().NoError(err)
	time.Sleep(120 * time.Millisecond)

	unlockSecond, err := redislock.New(suite.client).Lock(ctx, "order:1")
	suite.Require().NoError(err)
	defer unlockSecond()

	unlockFirst()

	n, err := suite.client.Exists(ctx, "fulfillment:lock:order:1").Result()
	suite.Require().NoError(err)
	suite.Equal(int64(1), n)
}

func (suite *LockerTestSuite) TestLock_SerializesConcurrentHolders() {
	locker := redislock.New(suite.client, redislock.WithRetryDelay(time.Millisecond))
	var inside, maxInside atomic.Int32

	g, ctx := errgroup.WithContext(context.Background())
	for range 8 {
		g.Go(func() error {
			unlock, err := locker.Lock(ctx, "order:hot")
			if err != nil {
				return err
			}
			defer unlock()

			n := inside.Add(1)
			for {
				m := maxInside.Load()
				if n <= m || maxInside.CompareAndSwap(m, n) {
					break
				}
			}
			time.Sleep(5 * time.Millisecond)
			inside.Add(-1)
			return nil
		})
	}

	suite.Require().NoError(g.Wait())
	suite.Equal(int32(1), maxInside.Load())
}

func TestLockerTestSuite(t *testing.T) {
	suite.Run(t, new(LockerTestSuite))
}
