package httpserver

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"storefront/internal/domain"
	"storefront/internal/gateway"
	"storefront/internal/logger"
)

const msgBadBody = "invalid request body"

// statusFor maps an operation outcome to an HTTP status.
func statusFor(res domain.Result) int {
	switch {
	case res.OK:
		return http.StatusOK
	case errors.Is(res.Err, domain.ErrInvalidInput), errors.Is(res.Err, domain.ErrRejected):
		return http.StatusUnprocessableEntity
	case errors.Is(res.Err, domain.ErrNoCart):
		return http.StatusConflict
	case errors.Is(res.Err, domain.ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(res.Err, gateway.ErrMissingEndpoint), errors.Is(res.Err, gateway.ErrMissingToken):
		return http.StatusServiceUnavailable
	default:
		return http.StatusBadGateway
	}
}

// readStatus maps a failed catalog read. A rejected read is the gateway's
// fault, not the caller's.
func readStatus(res domain.Result) int {
	if errors.Is(res.Err, domain.ErrRejected) {
		return http.StatusBadGateway
	}
	return statusFor(res)
}

func badRequest(c *gin.Context, err error) {
	logger.FromGin(c).Debug("bad request body")
	_ = c.Error(err)
	c.JSON(http.StatusBadRequest, domain.Failed(domain.ErrInvalidInput, msgBadBody))
}

func unauthenticated(c *gin.Context) {
	c.JSON(http.StatusUnauthorized, domain.Failed(domain.ErrUnauthenticated, "not signed in"))
}

// queryFlag reads a boolean query parameter such as ?silent=1.
func queryFlag(c *gin.Context, name string) bool {
	v, err := strconv.ParseBool(c.Query(name))
	return err == nil && v
}

// queryInt reads a non-negative integer query parameter, returning def when absent.
func queryInt(c *gin.Context, name string, def int) (int, bool) {
	raw := c.Query(name)
	if raw == "" {
		return def, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}
