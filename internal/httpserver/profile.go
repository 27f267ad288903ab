package httpserver

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"storefront/internal/domain"
	"storefront/internal/logger"
	"storefront/internal/service/profile"
)

// getProfile makes sure the cached profile belongs to the current token and
// returns it. The first request after sign-in performs the fetch.
func (h *handlers) getProfile(c *gin.Context) {
	s := sessionFrom(c)
	ctx := c.Request.Context()
	tok := s.Auth.CurrentToken(ctx)
	if tok == "" {
		s.Profile.Clear()
		unauthenticated(c)
		return
	}
	s.Profile.Sync(ctx, tok)
	c.JSON(http.StatusOK, profileResponse{
		Result:  domain.Succeeded(),
		Profile: toProfileView(s.Profile.Profile()),
		Loading: s.Profile.Loading(),
	})
}

func (h *handlers) refreshProfile(c *gin.Context) {
	s := sessionFrom(c)
	ctx := c.Request.Context()
	tok := s.Auth.CurrentToken(ctx)
	if tok == "" {
		s.Profile.Clear()
		unauthenticated(c)
		return
	}
	s.Profile.Sync(ctx, tok)
	res := s.Profile.Refresh(ctx, queryFlag(c, "silent"))
	c.JSON(statusFor(res), profileResponse{
		Result:  res,
		Profile: toProfileView(s.Profile.Profile()),
		Loading: s.Profile.Loading(),
	})
}

// updateProfile saves account details. A password change yields a fresh
// token which replaces the stored one; when that re-login fails the session
// is signed out.
func (h *handlers) updateProfile(c *gin.Context) {
	var d profile.Details
	if err := c.ShouldBindJSON(&d); err != nil {
		badRequest(c, err)
		return
	}
	s := sessionFrom(c)
	ctx := c.Request.Context()
	tok := s.Auth.CurrentToken(ctx)
	if tok == "" {
		unauthenticated(c)
		return
	}

	res, fresh := s.Profile.UpdateDetails(ctx, tok, d)
	switch {
	case fresh != nil:
		if adopted := s.Auth.Adopt(ctx, *fresh); !adopted.OK {
			res = adopted
		}
	case errors.Is(res.Err, domain.ErrUnauthenticated):
		logger.FromGin(c).Info("signing out after failed re-login")
		s.Auth.Logout(ctx)
	}
	c.JSON(statusFor(res), profileResponse{
		Result:  res,
		Profile: toProfileView(s.Profile.Profile()),
		Loading: s.Profile.Loading(),
	})
}
