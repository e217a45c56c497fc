package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yanqian/solar-dashboard/internal/domain/auth"
	apperrors "github.com/yanqian/solar-dashboard/pkg/errors"
)

// TokenValidator checks bearer tokens on write endpoints.
type TokenValidator interface {
	Validate(token string) (auth.Claims, error)
}

// authMiddleware is a pass-through when validator is nil.
func authMiddleware(validator TokenValidator) gin.HandlerFunc {
	if validator == nil {
		return func(c *gin.Context) { c.Next() }
	}
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			abortWithError(c, NewHTTPError(http.StatusUnauthorized, "unauthorized", "missing authorization header", nil))
			return
		}
		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			abortWithError(c, NewHTTPError(http.StatusUnauthorized, "unauthorized", "invalid authorization header", nil))
			return
		}
		claims, err := validator.Validate(strings.TrimSpace(parts[1]))
		if err != nil {
			if !apperrors.IsCode(err, apperrors.CodeInvalidToken) {
				abortWithError(c, NewHTTPError(http.StatusInternalServerError, "auth_failed", errMessage(err), err))
				return
			}
			abortWithError(c, fromAppError(err))
			return
		}
		setSubject(c, claims.Subject)
		c.Next()
	}
}
