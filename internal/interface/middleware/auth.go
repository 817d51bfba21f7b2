package middleware

import (
	"net/http"
	"slices"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-jwt-identity/internal/domain/entity"
	"github.com/oksasatya/go-jwt-identity/pkg/helpers"
	"github.com/oksasatya/go-jwt-identity/pkg/response"
)

// Gin context keys set by Bearer.
const (
	CtxClaimsKey = "claims"
	CtxUserIDKey = "userID"
)

// Bearer validates the Authorization: Bearer token and stores its claims and
// user id in the gin context. Every validation failure answers 401 "invalid token".
func Bearer(jwt *helpers.JWTManager, logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			response.Abort(c, http.StatusUnauthorized, "missing bearer token", nil)
			return
		}
		set, err := jwt.Validate(raw)
		if err != nil {
			if logger != nil {
				kind, _ := helpers.TokenKind(err)
				logger.WithFields(logrus.Fields{
					"kind":       kind,
					"request_id": c.GetString("request_id"),
				}).Warn("token rejected")
			}
			response.Abort(c, http.StatusUnauthorized, "invalid token", nil)
			return
		}

		uid, _ := entity.FirstClaim(set.Claims, entity.ClaimUserID)
		c.Set(CtxClaimsKey, set.Claims)
		c.Set(CtxUserIDKey, uid)
		c.Next()
	}
}

// RequireRole answers 403 unless the validated token carries role.
// It must run after Bearer.
func RequireRole(role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !slices.Contains(entity.ClaimValues(ClaimsFrom(c), entity.ClaimRoles), role) {
			response.Abort(c, http.StatusForbidden, "forbidden", nil)
			return
		}
		c.Next()
	}
}

// ClaimsFrom returns the claims stored by Bearer, or nil.
func ClaimsFrom(c *gin.Context) []entity.Claim {
	v, ok := c.Get(CtxClaimsKey)
	if !ok {
		return nil
	}
	claims, _ := v.([]entity.Claim)
	return claims
}

func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
