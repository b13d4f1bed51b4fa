package delivery

import (
	"fmt"
	"log"
	"net/http"

	"faktury-backend/internal/auth/usecase"
	"faktury-backend/pkg/config"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	authUsecase usecase.AuthUsecase
	config      *config.Config
}

func NewAuthHandler(authUsecase usecase.AuthUsecase, cfg *config.Config) *AuthHandler {
	return &AuthHandler{
		authUsecase: authUsecase,
		config:      cfg,
	}
}

// Login returns the provider login URL for the frontend to redirect to
func (h *AuthHandler) Login(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"authUrl": h.authUsecase.GetAuthURL()})
}

// Callback handles the OAuth redirect, stores tokens and sets the session cookie
func (h *AuthHandler) Callback(c *gin.Context) {
	code := c.Query("code")
	if code == "" {
		c.String(http.StatusBadRequest, "Missing authorization code")
		return
	}

	sessionToken, err := h.authUsecase.HandleCallback(c.Request.Context(), code)
	if err != nil {
		log.Printf("[Auth] Callback error: %v", err)
		c.Header("Content-Type", "text/html; charset=utf-8")
		c.String(http.StatusInternalServerError, callbackPage(false, h.config.FrontendURL))
		return
	}

	c.SetCookie(SessionCookieName, sessionToken, int(h.config.SessionExpiry.Seconds()), "/", "", false, true)
	c.Header("Content-Type", "text/html; charset=utf-8")
	c.String(http.StatusOK, callbackPage(true, h.config.FrontendURL))
}

// Status reports whether a usable credential record exists
func (h *AuthHandler) Status(c *gin.Context) {
	authenticated, err := h.authUsecase.IsAuthenticated()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to check authentication status"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"isAuthenticated": authenticated})
}

// Logout clears stored tokens and the session cookie
func (h *AuthHandler) Logout(c *gin.Context) {
	if err := h.authUsecase.Logout(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to log out"})
		return
	}

	c.SetCookie(SessionCookieName, "", -1, "/", "", false, true)
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// callbackPage renders the popup-close page shown after the OAuth redirect
func callbackPage(success bool, frontendURL string) string {
	title := "Login Successful"
	heading := "Authentication successful!"
	message := "AUTH_SUCCESS"
	if !success {
		title = "Login Failed"
		heading = "Authentication failed"
		message = "AUTH_ERROR"
	}

	return fmt.Sprintf(`<html>
  <head><title>%s</title></head>
  <body>
    <h2>%s</h2>
    <p>You can close this window now.</p>
    <script>
      if (window.opener) {
        window.opener.postMessage({ type: '%s' }, '*');
        window.close();
      } else {
        window.location.href = '%s';
      }
    </script>
  </body>
</html>`, title, heading, message, frontendURL)
}
