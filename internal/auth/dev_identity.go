package auth

import (
	"strings"

	"github.com/gin-gonic/gin"
)

const devUID = "demo-user"

// DevIdentity trusts X-User-* headers instead of a verified token.
// Use this ONLY for development and tests.
func DevIdentity() gin.HandlerFunc {
	return func(c *gin.Context) {
		uid := strings.TrimSpace(c.GetHeader("X-User-Id"))
		if uid == "" {
			uid = devUID
		}
		c.Set(CtxUID, uid)
		c.Set(CtxEmail, strings.TrimSpace(c.GetHeader("X-User-Email")))
		c.Set(CtxName, strings.TrimSpace(c.GetHeader("X-User-Name")))
		c.Set(CtxPicture, strings.TrimSpace(c.GetHeader("X-User-Photo")))
		c.Next()
	}
}
