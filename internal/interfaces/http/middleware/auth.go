package middleware

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"pharos/internal/shared/logger"
	"pharos/internal/shared/utils"
)

// ContextKeyUserID is where the authenticated user's ID lands in the gin
// context. Handlers read it for audit attribution.
const ContextKeyUserID = "user_id"

type actorClaims struct {
	UserID uint `json:"user_id"`
	jwt.RegisteredClaims
}

// AuthMiddleware resolves the acting user from a bearer token. The trust
// layer does not manage accounts itself; the token comes from the upstream
// CRM and is verified with a shared secret so every entry can name its actor.
type AuthMiddleware struct {
	secret []byte
	logger logger.Interface
}

func NewAuthMiddleware(jwtSecret string, logger logger.Interface) *AuthMiddleware {
	return &AuthMiddleware{
		secret: []byte(jwtSecret),
		logger: logger,
	}
}

// RequireAuth rejects requests without a verifiable actor. PII-touching
// routes use this: an anonymous mutation would produce an unattributable
// audit entry.
func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, err := m.parseToken(c)
		if err != nil {
			m.logger.Warnw("rejected unauthenticated request",
				"path", c.Request.URL.Path, "error", err)
			utils.ErrorResponse(c, http.StatusUnauthorized, "invalid or missing authorization token")
			c.Abort()
			return
		}

		c.Set(ContextKeyUserID, claims.UserID)
		c.Next()
	}
}

func (m *AuthMiddleware) parseToken(c *gin.Context) (*actorClaims, error) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return nil, fmt.Errorf("missing authorization header")
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" {
		return nil, fmt.Errorf("invalid authorization header format")
	}

	claims := &actorClaims{}
	token, err := jwt.ParseWithClaims(parts[1], claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return m.secret, nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid || claims.UserID == 0 {
		return nil, fmt.Errorf("invalid token claims")
	}

	return claims, nil
}
