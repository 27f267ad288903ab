package httpserver

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"storefront/internal/domain"
	"storefront/internal/service/auth"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type recoverRequest struct {
	Email string `json:"email"`
}

func (h *handlers) createAccount(c *gin.Context) {
	var in auth.SignupInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, err)
		return
	}
	s := sessionFrom(c)
	res := s.Auth.CreateAccount(c.Request.Context(), in)
	c.JSON(statusFor(res), authResponse{Result: res, Session: s.Auth.Status(c.Request.Context())})
}

func (h *handlers) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	s := sessionFrom(c)
	res := s.Auth.Login(c.Request.Context(), req.Email, req.Password)
	c.JSON(statusFor(res), authResponse{Result: res, Session: s.Auth.Status(c.Request.Context())})
}

func (h *handlers) logout(c *gin.Context) {
	s := sessionFrom(c)
	res := s.Auth.Logout(c.Request.Context())
	c.JSON(statusFor(res), authResponse{Result: res, Session: s.Auth.Status(c.Request.Context())})
}

func (h *handlers) sessionStatus(c *gin.Context) {
	s := sessionFrom(c)
	c.JSON(http.StatusOK, s.Auth.Status(c.Request.Context()))
}

func (h *handlers) recoverAccount(c *gin.Context) {
	var req recoverRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	res := sessionFrom(c).Auth.Recover(c.Request.Context(), req.Email)
	c.JSON(statusFor(res), res)
}

func (h *handlers) resetPassword(c *gin.Context) {
	var in auth.ResetInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, err)
		return
	}
	s := sessionFrom(c)
	res := s.Auth.Reset(c.Request.Context(), in)
	c.JSON(statusFor(res), authResponse{Result: res, Session: s.Auth.Status(c.Request.Context())})
}

// accountDetails returns the editable account fields, read fresh from the gateway.
func (h *handlers) accountDetails(c *gin.Context) {
	s := sessionFrom(c)
	tok := s.Auth.CurrentToken(c.Request.Context())
	if tok == "" {
		unauthenticated(c)
		return
	}
	customer, res := s.Profile.AccountDetails(c.Request.Context(), tok)
	if !res.OK {
		c.JSON(statusFor(res), res)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "account": accountFields(customer)})
}

func accountFields(c *domain.Customer) gin.H {
	return gin.H{
		"firstName":        c.FirstName,
		"lastName":         c.LastName,
		"email":            c.Email,
		"phone":            c.Phone,
		"acceptsMarketing": c.AcceptsMarketing,
	}
}
