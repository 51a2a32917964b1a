package client

import (
	"context"

	"github.com/vibe-gaming/notes/internal/cache"
	"github.com/vibe-gaming/notes/internal/config"

	"github.com/hibiken/asynq"
)

// Enqueuer is the part of *asynq.Client the services depend on.
type Enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

func New(cfg config.Cache) *asynq.Client {
	return asynq.NewClient(RedisOptions(cfg))
}

func RedisOptions(cfg config.Cache) asynq.RedisConnOpt {
	var opts asynq.RedisConnOpt
	if cfg.Type == cache.RedisTypeCluster {
		opts = asynq.RedisClusterClientOpt{
			Addrs:    cfg.RedisCluster.Addresses,
			Password: cfg.RedisCluster.Password,
		}
	} else {
		opts = asynq.RedisClientOpt{
			Addr:     cfg.Redis.Address,
			Password: cfg.Redis.Password,
		}
	}
	return opts
}
