package httpserver

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"storefront/internal/domain"
	"storefront/internal/service/cart"
)

type updateLineRequest struct {
	Quantity *int `json:"quantity"`
	Silent   bool `json:"silent"`
}

// getCart refreshes the cart from the gateway. A failed refresh still
// answers with whatever the session holds.
func (h *handlers) getCart(c *gin.Context) {
	s := sessionFrom(c)
	s.Cart.Get(c.Request.Context())
	c.JSON(http.StatusOK, cartResponse{Result: domain.Succeeded(), cartView: toCartView(s.Cart.View())})
}

func (h *handlers) addLine(c *gin.Context) {
	var in cart.AddInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, err)
		return
	}
	s := sessionFrom(c)
	res := s.Cart.Add(c.Request.Context(), in)
	c.JSON(statusFor(res), cartResponse{Result: res, cartView: toCartView(s.Cart.View())})
}

func (h *handlers) updateLine(c *gin.Context) {
	var req updateLineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if req.Quantity == nil {
		res := domain.Failed(domain.ErrInvalidInput, "quantity is required")
		res.Fields = []string{"quantity"}
		c.JSON(http.StatusUnprocessableEntity, res)
		return
	}
	s := sessionFrom(c)
	res := s.Cart.UpdateQuantity(c.Request.Context(), c.Param("lineID"), *req.Quantity, req.Silent)
	c.JSON(statusFor(res), cartResponse{Result: res, cartView: toCartView(s.Cart.View())})
}

func (h *handlers) removeLine(c *gin.Context) {
	s := sessionFrom(c)
	res := s.Cart.Remove(c.Request.Context(), c.Param("lineID"), queryFlag(c, "silent"))
	c.JSON(statusFor(res), cartResponse{Result: res, cartView: toCartView(s.Cart.View())})
}
