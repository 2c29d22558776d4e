package auth

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/atelier-arq/atelier-backend/internal/api/http/respond"
	usersdomain "github.com/atelier-arq/atelier-backend/internal/users/domain"
)

type UserEnsurer interface {
	EnsureUser(ctx context.Context, in usersdomain.UpsertUser) (*usersdomain.User, error)
}

// WithUser syncs the authenticated identity into the users table and stores
// the resulting actor. Deactivated users are rejected.
func WithUser(users UserEnsurer) gin.HandlerFunc {
	return func(c *gin.Context) {
		uid := UID(c)
		if uid == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"ok": false, "error": gin.H{
				"kind":    "unauthenticated",
				"message": "user not authenticated",
			}})
			return
		}

		first, last := splitName(c.GetString(CtxName))
		in := usersdomain.UpsertUser{
			ID:        uid,
			Email:     c.GetString(CtxEmail),
			FirstName: first,
			LastName:  last,
		}
		if pic := c.GetString(CtxPicture); pic != "" {
			in.ProfileImageURL = &pic
		}

		u, err := users.EnsureUser(c.Request.Context(), in)
		if err != nil {
			respond.Error(c, "ensure_user", err)
			c.Abort()
			return
		}
		if !u.IsActive {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"ok": false, "error": gin.H{
				"kind":    "permission",
				"message": "user is deactivated",
			}})
			return
		}

		c.Set(CtxUser, u)
		c.Set(CtxActor, usersdomain.Actor{UserID: u.ID, Role: u.Role})
		c.Next()
	}
}
