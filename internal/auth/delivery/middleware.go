package delivery

import (
	"net/http"
	"strings"

	"faktury-backend/internal/auth/usecase"

	"github.com/gin-gonic/gin"
)

// SessionCookieName is the cookie carrying the signed session token
const SessionCookieName = "faktury_session"

// SessionMiddleware authenticates requests via the session cookie (or a
// Bearer header for non-browser clients). The session only identifies the
// user; provider tokens are never carried on requests.
func SessionMiddleware(authUsecase usecase.AuthUsecase) gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionToken, err := c.Cookie(SessionCookieName)
		if err != nil || sessionToken == "" {
			if authHeader := c.GetHeader("Authorization"); authHeader != "" {
				parts := strings.Split(authHeader, " ")
				if len(parts) == 2 && parts[0] == "Bearer" {
					sessionToken = parts[1]
				}
			}
		}

		if sessionToken == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
			c.Abort()
			return
		}

		userID, err := authUsecase.ValidateSession(sessionToken)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Session expired. Please log in again."})
			c.Abort()
			return
		}

		c.Set("userID", userID)
		c.Next()
	}
}
