package queue

import (
	"encoding/json"
	"fmt"

	"github.com/thinkfashz/osart/internal/constants"

	"github.com/hibiken/asynq"
)

const (
	// TaskPromotionExpire 活动到期停用任务
	TaskPromotionExpire = constants.TaskPromotionExpire
)

// PromotionExpirePayload 活动到期任务载荷
type PromotionExpirePayload struct {
	PromotionID uint `json:"promotion_id"`
}

// NewPromotionExpireTask 创建活动到期任务
func NewPromotionExpireTask(payload PromotionExpirePayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskPromotionExpire, body), nil
}

// ParsePromotionExpirePayload 解析活动到期任务载荷
func ParsePromotionExpirePayload(body []byte) (PromotionExpirePayload, error) {
	var payload PromotionExpirePayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return PromotionExpirePayload{}, err
	}
	if payload.PromotionID == 0 {
		return PromotionExpirePayload{}, fmt.Errorf("promotion_id is required")
	}
	return payload, nil
}

func promotionExpireTaskID(promotionID uint) string {
	return fmt.Sprintf("promotion-expire-%d", promotionID)
}
