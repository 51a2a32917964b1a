package v1

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const userCtx = "userId"

// userIdentityMiddleware admits requests carrying a valid session cookie.
func (h *Handler) userIdentityMiddleware(c *gin.Context) {
	token, err := readCookie(c, h.config.Cookie.AuthName)
	if err != nil {
		errorResponse(c, errUnauthorized)
		return
	}

	id, err := h.services.Auth.Authenticate(token)
	if err != nil {
		errorResponse(c, errUnauthorized)
		return
	}

	c.Set(userCtx, id)
	c.Next()
}

func getUserUUID(c *gin.Context) (uuid.UUID, error) {
	v, ok := c.Get(userCtx)
	if !ok {
		return uuid.Nil, errors.New("user id not found")
	}

	id, ok := v.(uuid.UUID)
	if !ok {
		return uuid.Nil, errors.New("user id is of invalid type")
	}

	return id, nil
}
