package v1

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

var errMissingCredential = errors.New("missing credential")

func (h *Handler) attachCookie(c *gin.Context, name string, token string, maxAge time.Duration) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(name, token, int(maxAge.Seconds()), "/", "", h.config.IsProduction(), true)
}

func readCookie(c *gin.Context, name string) (string, error) {
	token, err := c.Cookie(name)
	if err != nil || token == "" {
		return "", errMissingCredential
	}

	return token, nil
}

// clearCookies expires every named cookie. Absent cookies are fine.
func (h *Handler) clearCookies(c *gin.Context, names ...string) {
	c.SetSameSite(http.SameSiteLaxMode)
	for _, name := range names {
		c.SetCookie(name, "", -1, "/", "", h.config.IsProduction(), true)
	}
}
