package app

import (
	"errors"

	"github.com/thinkfashz/osart/internal/config"
	"github.com/thinkfashz/osart/internal/logger"
	"github.com/thinkfashz/osart/internal/provider"
	"github.com/thinkfashz/osart/internal/router"
	"github.com/thinkfashz/osart/internal/worker"

	"gorm.io/gorm"
)

// BuildRunner 构建服务运行器，返回的容器由调用方关闭
func BuildRunner(cfg *config.Config, db *gorm.DB, mode string) (*Runner, *provider.Container, error) {
	if cfg == nil {
		return nil, nil, errors.New("config is nil")
	}
	if db == nil {
		return nil, nil, errors.New("db is nil")
	}
	if !isValidMode(mode) {
		return nil, nil, errors.New("unknown mode: " + mode)
	}

	container := provider.NewContainer(cfg, db)

	var services []Service

	// 初始化 HTTP 服务
	if mode == ModeAll || mode == ModeAPI {
		engine := router.SetupRouter(cfg, container)
		httpService := NewHTTPService(cfg.Server.Addr(), engine)
		services = append(services, httpService)
	}

	// 初始化 Worker 服务（队列消费 + 过期活动巡检）
	if mode == ModeAll || mode == ModeWorker {
		consumer := worker.NewConsumer(container)
		workerService, err := worker.NewService(cfg, consumer)
		switch {
		case err == nil:
			services = append(services, workerService)
		case errors.Is(err, worker.ErrNothingToRun) && mode == ModeAll:
			logger.Infow("app_worker_skipped", "reason", err.Error())
		default:
			container.Close()
			return nil, nil, err
		}
	}

	if len(services) == 0 {
		container.Close()
		return nil, nil, errors.New("no services initialized (check mode and config)")
	}

	return NewRunner(services...), container, nil
}

// Run 应用启动入口
func Run(opts Options) error {
	opts = normalizeOptions(opts)
	if opts.Config == nil {
		return errors.New("config is nil")
	}

	runner, container, err := BuildRunner(opts.Config, opts.DB, opts.Mode)
	if err != nil {
		return err
	}
	defer container.Close()

	opts.Logger.Infow("app_start", "addr", opts.Config.Server.Addr(), "mode", opts.Mode)
	return RunWithOptions(runner, opts)
}
