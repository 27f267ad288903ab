package httpserver

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"storefront/internal/domain"
	"storefront/internal/notify"
	"storefront/internal/service/checkout"
)

// createCheckout starts a checkout. Line items default to the session cart
// and the email to the signed-in customer's.
func (h *handlers) createCheckout(c *gin.Context) {
	var p checkout.Params
	if err := c.ShouldBindJSON(&p); err != nil && !errors.Is(err, io.EOF) {
		badRequest(c, err)
		return
	}
	s := sessionFrom(c)
	if len(p.LineItems) == 0 {
		p.LineItems = checkout.LineItemsFromCart(s.Cart.Snapshot())
	}
	if p.Email == "" {
		if customer := s.Profile.Profile(); customer != nil {
			p.Email = customer.Email
		}
	}
	co, res := h.checkout.Create(c.Request.Context(), s.ID, p)
	c.JSON(statusFor(res), toCheckoutResponse(res, co, h.checkout.Creating(s.ID)))
}

func (h *handlers) lastCheckout(c *gin.Context) {
	s := sessionFrom(c)
	co := h.checkout.Last(s.ID)
	if co == nil {
		c.JSON(http.StatusNotFound, toCheckoutResponse(domain.Failed(domain.ErrNotFound, "no checkout yet"), nil, h.checkout.Creating(s.ID)))
		return
	}
	c.JSON(http.StatusOK, toCheckoutResponse(domain.Succeeded(), co, h.checkout.Creating(s.ID)))
}

// messages hands the pending banners to the client and clears them.
func (h *handlers) messages(c *gin.Context) {
	banners := []notify.Banner{}
	if h.banners != nil {
		if drained := h.banners.Drain(sessionFrom(c).ID); drained != nil {
			banners = drained
		}
	}
	c.JSON(http.StatusOK, gin.H{"messages": banners})
}
