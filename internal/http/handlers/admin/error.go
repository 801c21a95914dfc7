package admin

import (
	handlershared "github.com/thinkfashz/osart/internal/http/handlers/shared"
	"github.com/thinkfashz/osart/internal/http/response"
	"github.com/thinkfashz/osart/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func requestLog(c *gin.Context) *zap.SugaredLogger {
	return handlershared.RequestLog(c)
}

func respondError(c *gin.Context, code int, key string, err error) {
	handlershared.RespondError(c, code, key, err)
}

func respondWithMappedError(c *gin.Context, err error, rules []handlershared.MappedHandlerError, fallbackKey string) {
	handlershared.RespondWithMappedError(c, err, rules, fallbackKey)
}

var pricingRuleErrorRules = []handlershared.MappedHandlerError{
	{Target: service.ErrPricingRuleNotFound, Code: response.CodeNotFound, Key: "error.pricing_rule_not_found"},
	{Target: service.ErrPricingRuleInvalid, Code: response.CodeBadRequest, Key: "error.pricing_rule_invalid"},
}

var promotionErrorRules = []handlershared.MappedHandlerError{
	{Target: service.ErrPromotionNotFound, Code: response.CodeNotFound, Key: "error.promotion_not_found"},
	{Target: service.ErrPromotionInvalid, Code: response.CodeBadRequest, Key: "error.promotion_invalid"},
	{Target: service.ErrPromotionTargetInvalid, Code: response.CodeBadRequest, Key: "error.promotion_target_invalid"},
}
