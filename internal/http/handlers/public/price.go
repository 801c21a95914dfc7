package public

import (
	"strconv"
	"strings"

	handlershared "github.com/thinkfashz/osart/internal/http/handlers/shared"
	"github.com/thinkfashz/osart/internal/http/response"
	"github.com/thinkfashz/osart/internal/service"

	"github.com/gin-gonic/gin"
)

// GetProductPrice 获取商品报价
// GET /api/v1/public/products/:id/price?variant_id=&quantity=
func (h *Handler) GetProductPrice(c *gin.Context) {
	productID, ok := handlershared.ParseUintParam(c, "id")
	if !ok {
		return
	}
	variantID, ok := handlershared.ParseOptionalUintQuery(c, "variant_id")
	if !ok {
		return
	}
	quantity := 1
	if raw := strings.TrimSpace(c.Query("quantity")); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			respondError(c, response.CodeBadRequest, "error.bad_request", nil)
			return
		}
		quantity = parsed
	}

	quote, err := h.PricingService.CalculateFinalPrice(c.Request.Context(), service.PriceQuoteInput{
		ProductID: productID,
		VariantID: variantID,
		Quantity:  quantity,
	})
	if err != nil {
		respondWithMappedError(c, err, priceQuoteErrorRules, "error.price_calculate_failed")
		return
	}
	response.Success(c, quote)
}
