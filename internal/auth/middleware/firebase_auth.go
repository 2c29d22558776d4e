package middleware

import (
	"context"
	"net/http"
	"strings"

	"firebase.google.com/go/v4/auth"
	"github.com/gin-gonic/gin"

	authctx "github.com/atelier-arq/atelier-backend/internal/auth"
)

// TokenVerifier is satisfied by *auth.Client.
type TokenVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (*auth.Token, error)
}

// FirebaseAuthMiddleware validates Firebase ID tokens and extracts user info.
// EventSource clients cannot set headers, so a token query parameter is also
// accepted.
func FirebaseAuthMiddleware(verifier TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractToken(c)
		if token == "" {
			unauthorized(c, "missing authorization token")
			return
		}

		decoded, err := verifier.VerifyIDToken(c.Request.Context(), token)
		if err != nil {
			unauthorized(c, "invalid token")
			return
		}

		c.Set(authctx.CtxUID, decoded.UID)
		if email, ok := decoded.Claims["email"].(string); ok {
			c.Set(authctx.CtxEmail, email)
		}
		if name, ok := decoded.Claims["name"].(string); ok {
			c.Set(authctx.CtxName, name)
		}
		if pic, ok := decoded.Claims["picture"].(string); ok {
			c.Set(authctx.CtxPicture, pic)
		}
		c.Set("firebase_token", decoded)

		c.Next()
	}
}

func unauthorized(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"ok": false, "error": gin.H{
		"kind":    "unauthenticated",
		"message": msg,
	}})
}

func extractToken(c *gin.Context) string {
	bearerToken := c.GetHeader("Authorization")
	if len(bearerToken) > 7 && strings.HasPrefix(bearerToken, "Bearer ") {
		return bearerToken[7:]
	}
	return strings.TrimSpace(c.Query("access_token"))
}
