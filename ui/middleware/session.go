package middleware

import (
	"log"
	"net/http"

	"solardash/internal/session"

	"github.com/gin-gonic/gin"
)

const sessionKey = "session"

// EnsureSession is middleware that attaches the visitor's session to the request,
// creating one seeded with the default dataset when the cookie is missing or stale
func EnsureSession(manager *session.Manager, cookieName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess, created := manager.Resolve(session.IDFromRequest(c.Request, cookieName))
		if created {
			log.Printf("[EnsureSession] New session %s for %s", sess.ID, c.ClientIP())
			http.SetCookie(c.Writer, session.Cookie(cookieName, sess, manager.TTL()))
		}
		c.Set(sessionKey, sess)
		c.Next()
	}
}

// Session returns the session attached by EnsureSession
func Session(c *gin.Context) session.Session {
	v, _ := c.Get(sessionKey)
	sess, _ := v.(session.Session)
	return sess
}
