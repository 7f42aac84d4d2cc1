package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sysu-ecnc-dev/service-window/backend/internal/domain"
	"github.com/sysu-ecnc-dev/service-window/backend/internal/optimizer"
)

// 缓存未命中
var ErrMiss = errors.New("缓存未命中")

// SolutionCache 缓存固定种子的运行结果，相同输入和种子一定得到相同的解
type SolutionCache struct {
	rdb     *redis.Client
	ttl     time.Duration
	timeout time.Duration
}

func NewSolutionCache(rdb *redis.Client, ttl time.Duration, timeout time.Duration) *SolutionCache {
	return &SolutionCache{
		rdb:     rdb,
		ttl:     ttl,
		timeout: timeout,
	}
}

// Key 由输入、参数和种子计算缓存键
func Key(customers []domain.Customer, windowCount int, params optimizer.Parameters, seed int64) string {
	h := sha256.New()
	fmt.Fprintf(h, "w=%d;p=%d;g=%d;m=%g;s=%d;", windowCount, params.PopulationSize, params.Generations, params.MutationRate, seed)
	for _, c := range customers {
		fmt.Fprintf(h, "%d:%d,", c.ID, c.Duration)
	}
	return "solution_" + hex.EncodeToString(h.Sum(nil))
}

func (c *SolutionCache) Get(ctx context.Context, key string) (*optimizer.Solution, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	data, err := c.rdb.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrMiss
		}
		return nil, err
	}

	solution := &optimizer.Solution{}
	if err := json.Unmarshal(data, solution); err != nil {
		return nil, err
	}

	return solution, nil
}

func (c *SolutionCache) Set(ctx context.Context, key string, solution *optimizer.Solution) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	data, err := json.Marshal(solution)
	if err != nil {
		return err
	}

	return c.rdb.Set(ctx, key, data, c.ttl).Err()
}
