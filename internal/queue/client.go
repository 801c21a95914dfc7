package queue

import (
	"context"
	"errors"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/thinkfashz/osart/internal/config"
	"github.com/thinkfashz/osart/internal/constants"
	"github.com/thinkfashz/osart/internal/logger"

	"github.com/hibiken/asynq"
)

const (
	// DefaultQueue 默认队列名称
	DefaultQueue = constants.QueueDefault
	// CriticalQueue 到期停用等时效性任务
	CriticalQueue = constants.QueueCritical

	defaultConcurrency     = 10
	defaultDialTimeout     = 5 * time.Second
	defaultShutdownTimeout = 8 * time.Second
)

// Client 活动任务投递端，未启用时所有方法为空操作
type Client struct {
	inner *asynq.Client
	queue string
}

// NewClient 创建队列客户端
func NewClient(cfg *config.QueueConfig) (*Client, error) {
	if cfg == nil || !cfg.Enabled {
		return &Client{queue: CriticalQueue}, nil
	}
	return &Client{
		inner: asynq.NewClient(redisOpt(cfg)),
		queue: CriticalQueue,
	}, nil
}

// Enabled 是否连接了队列
func (c *Client) Enabled() bool {
	return c != nil && c.inner != nil
}

// Close 释放连接
func (c *Client) Close() error {
	if !c.Enabled() {
		return nil
	}
	return c.inner.Close()
}

// EnqueuePromotionExpire 在 delay 之后投递活动到期任务。
// 任务 ID 按活动固定，重复投递视为成功。
func (c *Client) EnqueuePromotionExpire(payload PromotionExpirePayload, delay time.Duration) error {
	if !c.Enabled() {
		return nil
	}
	task, err := NewPromotionExpireTask(payload)
	if err != nil {
		return err
	}
	info, err := c.inner.Enqueue(task,
		asynq.Queue(c.queue),
		asynq.ProcessIn(max(delay, 0)),
		asynq.TaskID(promotionExpireTaskID(payload.PromotionID)),
	)
	switch {
	case errors.Is(err, asynq.ErrTaskIDConflict):
		logger.Debugw("queue_task_already_scheduled", "promotion_id", payload.PromotionID)
		return nil
	case err != nil:
		return err
	}
	logger.Debugw("queue_task_enqueued", "task_id", info.ID, "queue", info.Queue, "process_at", info.NextProcessAt)
	return nil
}

// BuildServerConfig 生成消费端配置：连接参数、并发、队列权重和失败日志
func BuildServerConfig(cfg *config.QueueConfig) (asynq.RedisClientOpt, asynq.Config) {
	serverCfg := asynq.Config{
		Concurrency:     defaultConcurrency,
		Queues:          map[string]int{CriticalQueue: 6, DefaultQueue: 3},
		ShutdownTimeout: defaultShutdownTimeout,
		Logger:          logger.S(),
		ErrorHandler:    asynq.ErrorHandlerFunc(logTaskFailure),
	}
	if cfg != nil {
		if cfg.Concurrency > 0 {
			serverCfg.Concurrency = cfg.Concurrency
		}
		if len(cfg.Queues) > 0 {
			serverCfg.Queues = cfg.Queues
		}
	}
	return redisOpt(cfg), serverCfg
}

func logTaskFailure(ctx context.Context, task *asynq.Task, err error) {
	retried, _ := asynq.GetRetryCount(ctx)
	maxRetry, _ := asynq.GetMaxRetry(ctx)
	logger.Warnw("queue_task_failed",
		"type", task.Type(),
		"retried", retried,
		"max_retry", maxRetry,
		"error", err,
	)
}

func redisOpt(cfg *config.QueueConfig) asynq.RedisClientOpt {
	opt := asynq.RedisClientOpt{
		Addr:        "127.0.0.1:6379",
		DialTimeout: defaultDialTimeout,
	}
	if cfg == nil {
		return opt
	}
	host := strings.TrimSpace(cfg.Host)
	if host == "" {
		host = "127.0.0.1"
	}
	port := cfg.Port
	if port <= 0 {
		port = 6379
	}
	opt.Addr = net.JoinHostPort(host, strconv.Itoa(port))
	opt.Password = cfg.Password
	opt.DB = cfg.DB
	return opt
}
