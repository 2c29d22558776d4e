package auth

import (
	"strings"

	"github.com/gin-gonic/gin"

	usersdomain "github.com/atelier-arq/atelier-backend/internal/users/domain"
)

// Gin context keys. Identity keys are set by the authentication middleware,
// the actor by WithUser.
const (
	CtxUID     = "auth_uid"
	CtxEmail   = "auth_email"
	CtxName    = "auth_name"
	CtxPicture = "auth_picture"
	CtxActor   = "actor"
	CtxUser    = "user"
)

// UID returns the identity-provider uid of the caller.
func UID(c *gin.Context) string {
	return strings.TrimSpace(c.GetString(CtxUID))
}

// ActorFrom returns the authenticated actor set by WithUser.
func ActorFrom(c *gin.Context) usersdomain.Actor {
	if v, ok := c.Get(CtxActor); ok {
		if a, ok := v.(usersdomain.Actor); ok {
			return a
		}
	}
	return usersdomain.Actor{}
}

// UserFrom returns the synced user record set by WithUser.
func UserFrom(c *gin.Context) *usersdomain.User {
	if v, ok := c.Get(CtxUser); ok {
		if u, ok := v.(*usersdomain.User); ok {
			return u
		}
	}
	return nil
}

// splitName turns a provider display name into first and last name.
func splitName(name string) (string, string) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", ""
	}
	first, last, _ := strings.Cut(name, " ")
	return first, strings.TrimSpace(last)
}
