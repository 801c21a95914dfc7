package worker

import (
	"context"

	"github.com/thinkfashz/osart/internal/logger"
	"github.com/thinkfashz/osart/internal/provider"
	"github.com/thinkfashz/osart/internal/queue"

	"github.com/hibiken/asynq"
)

// Consumer 异步任务消费者
type Consumer struct {
	*provider.Container
}

// NewConsumer 创建消费者
func NewConsumer(c *provider.Container) *Consumer {
	return &Consumer{
		Container: c,
	}
}

// Register 注册消费者
func (c *Consumer) Register(mux *asynq.ServeMux) {
	if c == nil || mux == nil {
		logger.Debugw("worker_register_skip_nil", "consumer_nil", c == nil, "mux_nil", mux == nil)
		return
	}
	mux.HandleFunc(queue.TaskPromotionExpire, c.handlePromotionExpire)
}

// handlePromotionExpire 到期任务只停用仍处于启用状态且已过结束时间的活动
// 报价时的时间窗口判断始终生效，任务失败不会影响价格正确性。
func (c *Consumer) handlePromotionExpire(ctx context.Context, task *asynq.Task) error {
	if c == nil || c.Container == nil || c.PromotionAdminService == nil || task == nil {
		logger.Debugw("worker_promotion_expire_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	payload, err := queue.ParsePromotionExpirePayload(task.Payload())
	if err != nil {
		logger.Warnw("worker_promotion_expire_payload_invalid", "error", err)
		// 载荷损坏重试无意义
		return asynq.SkipRetry
	}
	expired, err := c.PromotionAdminService.ExpirePromotion(ctx, payload.PromotionID)
	if err != nil {
		logger.Warnw("promotion_expire_failed", "promotion_id", payload.PromotionID, "error", err)
		return err
	}
	if !expired {
		logger.Debugw("worker_promotion_expire_skip", "promotion_id", payload.PromotionID)
		return nil
	}
	logger.Infow("worker_promotion_expired", "promotion_id", payload.PromotionID)
	return nil
}

// sweepExpiredPromotions 批量停用已过期活动，作为延迟任务丢失时的兜底
func (c *Consumer) sweepExpiredPromotions(ctx context.Context) {
	if c == nil || c.Container == nil || c.PromotionAdminService == nil {
		return
	}
	affected, err := c.PromotionAdminService.DeactivateExpired(ctx)
	if err != nil {
		logger.Warnw("worker_promotion_sweep_failed", "error", err)
		return
	}
	if affected > 0 {
		logger.Infow("worker_promotion_sweep_done", "deactivated", affected)
	}
}
