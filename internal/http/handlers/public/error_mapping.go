package public

import (
	handlershared "github.com/thinkfashz/osart/internal/http/handlers/shared"
	"github.com/thinkfashz/osart/internal/http/response"
	"github.com/thinkfashz/osart/internal/service"

	"github.com/gin-gonic/gin"
)

var priceQuoteErrorRules = []handlershared.MappedHandlerError{
	{Target: service.ErrProductNotFound, Code: response.CodeNotFound, Key: "error.product_not_found"},
	{Target: service.ErrVariantNotFound, Code: response.CodeNotFound, Key: "error.variant_not_found"},
}

func respondWithMappedError(c *gin.Context, err error, rules []handlershared.MappedHandlerError, fallbackKey string) {
	handlershared.RespondWithMappedError(c, err, rules, fallbackKey)
}
