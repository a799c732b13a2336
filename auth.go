package main

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const (
	// sessionHeader carries a newly minted session token back to the client.
	// Clients that cannot set Authorization may also send the token in it.
	sessionHeader = "X-Funnel-Session"
	// sessionKey is the gin context key holding the session id.
	sessionKey = "session_id"
)

// dummyHash is a pre-computed bcrypt hash used when the admin username doesn't
// match. Running bcrypt against it (instead of returning early) keeps response
// time constant, preventing timing-based username enumeration.
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("dummy"), bcrypt.DefaultCost)

// sessionMiddleware resolves the visitor's session from a Bearer token (or the
// X-Funnel-Session header). Visitors without a valid token get a new session
// whose token is returned in X-Funnel-Session; funnel state saved under an
// expired session is simply no longer reachable.
func (h *Handler) sessionMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := strings.TrimPrefix(c.GetHeader("Authorization"), "Bearer ")
		if token == "" || token == c.GetHeader("Authorization") {
			token = c.GetHeader(sessionHeader)
		}

		if token != "" {
			if sessionID, err := h.sessions.parse(token); err == nil {
				c.Set(sessionKey, sessionID)
				c.Next()
				return
			}
			h.log.Debug("rejected session token")
		}

		sessionID, newToken, err := h.sessions.issue()
		if err != nil {
			h.log.Error("issue session", zap.Error(err))
			apiError(c, http.StatusInternalServerError, "failed to start session")
			c.Abort()
			return
		}
		c.Header(sessionHeader, newToken)
		c.Set(sessionKey, sessionID)
		c.Next()
	}
}

// adminMiddleware checks HTTP basic credentials against the configured admin
// user and bcrypt password hash.
func (h *Handler) adminMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, password, ok := c.Request.BasicAuth()
		if !ok {
			c.Header("WWW-Authenticate", `Basic realm="admin"`)
			apiError(c, http.StatusUnauthorized, "missing credentials")
			c.Abort()
			return
		}

		// Always run bcrypt so a wrong username costs the same as a wrong password.
		userOK := subtle.ConstantTimeCompare([]byte(user), []byte(h.adminUser)) == 1
		hashToCheck := string(dummyHash)
		if userOK {
			hashToCheck = h.adminPasswordHash
		}
		compareErr := bcrypt.CompareHashAndPassword([]byte(hashToCheck), []byte(password))

		if !userOK || compareErr != nil {
			apiError(c, http.StatusUnauthorized, "invalid credentials")
			c.Abort()
			return
		}
		c.Next()
	}
}
