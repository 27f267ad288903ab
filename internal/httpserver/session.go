package httpserver

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	svcsession "storefront/internal/service/session"
)

type ctxKey string

const sessionCtxKey ctxKey = "session"

// sessionMiddleware resolves the browser session from its cookie, issuing a
// new ID when the cookie is missing or malformed. The cookie is re-sent on
// every request so its lifetime slides.
func sessionMiddleware(m *svcsession.Manager, cookie CookieConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		sid, err := c.Cookie(cookie.Name)
		if err != nil || !svcsession.ValidID(sid) {
			sid = svcsession.NewID()
		}
		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(cookie.Name, sid, int(cookie.MaxAge.Seconds()), "/", "", cookie.Secure, true)

		s := m.Get(c.Request.Context(), sid)
		ctx := context.WithValue(c.Request.Context(), sessionCtxKey, s)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

func sessionFrom(c *gin.Context) *svcsession.Session {
	s, _ := c.Request.Context().Value(sessionCtxKey).(*svcsession.Session)
	return s
}
