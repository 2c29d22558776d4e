package http

import "github.com/gin-gonic/gin"

func (h *Handler) Register(rg *gin.RouterGroup) {
	rg.GET("/me", h.me)
	rg.GET("/users", h.list)
	rg.GET("/users/:id", h.get)
	rg.PATCH("/users/:id/role", h.changeRole)
	rg.PATCH("/users/:id/active", h.setActive)
}
