package httpserver

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"storefront/internal/domain"
)

const msgCatalogUnknown = "Unknown error loading products"

func (h *handlers) frontPage(c *gin.Context) {
	first, ok := queryInt(c, "first", 0)
	if !ok {
		c.JSON(http.StatusBadRequest, domain.Failed(domain.ErrInvalidInput, "first must be a non-negative integer"))
		return
	}
	env := h.catalog.FrontPage(c.Request.Context(), first)
	if res := env.Result(nil, msgCatalogUnknown); !res.OK {
		c.JSON(readStatus(res), res)
		return
	}
	c.JSON(http.StatusOK, gin.H{"products": toProductSummaryViews(env.Res.Products())})
}

func (h *handlers) productHandles(c *gin.Context) {
	env := h.catalog.Handles(c.Request.Context())
	if res := env.Result(nil, msgCatalogUnknown); !res.OK {
		c.JSON(readStatus(res), res)
		return
	}
	handles := env.Res.Handles()
	if handles == nil {
		handles = []string{}
	}
	c.JSON(http.StatusOK, gin.H{"handles": handles})
}

func (h *handlers) product(c *gin.Context) {
	quantity, ok := queryInt(c, "quantity", 1)
	if !ok {
		c.JSON(http.StatusBadRequest, domain.Failed(domain.ErrInvalidInput, "quantity must be a non-negative integer"))
		return
	}
	env := h.catalog.Product(c.Request.Context(), c.Param("handle"))
	if res := env.Result(nil, msgCatalogUnknown); !res.OK {
		c.JSON(readStatus(res), res)
		return
	}
	p := env.Res.Product()
	if p == nil {
		c.JSON(http.StatusNotFound, domain.Failed(domain.ErrNotFound, "product not found"))
		return
	}
	c.JSON(http.StatusOK, gin.H{"product": toProductView(*p, quantity)})
}
