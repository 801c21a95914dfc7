package worker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/thinkfashz/osart/internal/config"
	"github.com/thinkfashz/osart/internal/queue"

	"github.com/hibiken/asynq"
)

// ErrNothingToRun 队列与巡检均未启用
var ErrNothingToRun = errors.New("worker has nothing to run: queue disabled and sweep disabled")

// Service 异步任务与过期活动巡检服务
type Service struct {
	name          string
	server        *asynq.Server
	mux           *asynq.ServeMux
	consumer      *Consumer
	sweepInterval time.Duration
}

// NewService 创建 worker 服务
// 队列未启用时仅运行巡检；两者都未启用返回 ErrNothingToRun。
func NewService(cfg *config.Config, consumer *Consumer) (*Service, error) {
	if cfg == nil {
		return nil, errors.New("config is nil")
	}
	if consumer == nil {
		return nil, errors.New("consumer is nil")
	}
	svc := &Service{
		name:     "worker",
		consumer: consumer,
	}
	if cfg.Pricing.ExpireSweepSeconds > 0 {
		svc.sweepInterval = time.Duration(cfg.Pricing.ExpireSweepSeconds) * time.Second
	}
	if cfg.Queue.Enabled {
		opt, serverCfg := queue.BuildServerConfig(&cfg.Queue)
		svc.server = asynq.NewServer(opt, serverCfg)
		svc.mux = asynq.NewServeMux()
		consumer.Register(svc.mux)
	}
	if svc.server == nil && svc.sweepInterval <= 0 {
		return nil, ErrNothingToRun
	}
	return svc, nil
}

// Name 服务名称
func (s *Service) Name() string {
	if s == nil || s.name == "" {
		return "worker"
	}
	return s.name
}

// Start 启动服务，阻塞直到 ctx 结束。
// 不使用 asynq 的 Run：它只在收到系统信号时返回，退出由 ctx 驱动。
func (s *Service) Start(ctx context.Context) error {
	if s == nil || s.consumer == nil {
		return errors.New("worker not initialized")
	}
	if s.server == nil {
		s.runSweepLoop(ctx)
		return nil
	}
	if err := s.server.Start(s.mux); err != nil {
		return fmt.Errorf("start asynq server: %w", err)
	}
	if s.sweepInterval > 0 {
		go s.runSweepLoop(ctx)
	}
	<-ctx.Done()
	// Stop 可能早于 server.Start 执行，这里再关闭一次，已关闭时为空操作
	s.server.Shutdown()
	return nil
}

// Stop 停止服务
func (s *Service) Stop(ctx context.Context) error {
	if s == nil || s.server == nil {
		return nil
	}
	done := make(chan struct{})
	go func() {
		s.server.Shutdown()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("asynq shutdown: %w", ctx.Err())
	}
}

func (s *Service) runSweepLoop(ctx context.Context) {
	if s == nil || s.consumer == nil || s.sweepInterval <= 0 {
		return
	}
	s.consumer.sweepExpiredPromotions(ctx)

	ticker := time.NewTicker(s.sweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.consumer.sweepExpiredPromotions(ctx)
		}
	}
}
