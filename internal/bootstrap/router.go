package bootstrap

import (
	"log"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	httpapi "github.com/atelier-arq/atelier-backend/internal/api/http"
	"github.com/atelier-arq/atelier-backend/internal/api/http/middleware"
	"github.com/atelier-arq/atelier-backend/internal/auth"
	authmw "github.com/atelier-arq/atelier-backend/internal/auth/middleware"
	filehttp "github.com/atelier-arq/atelier-backend/internal/files/http"
	notifhttp "github.com/atelier-arq/atelier-backend/internal/notifications/http"
	"github.com/atelier-arq/atelier-backend/internal/notifications/hub"
	projecthttp "github.com/atelier-arq/atelier-backend/internal/projects/http"
	reporthttp "github.com/atelier-arq/atelier-backend/internal/reporting/http"
	searchhttp "github.com/atelier-arq/atelier-backend/internal/search/http"
	taskhttp "github.com/atelier-arq/atelier-backend/internal/tasks/http"
	timehttp "github.com/atelier-arq/atelier-backend/internal/timeentries/http"
	userhttp "github.com/atelier-arq/atelier-backend/internal/users/http"
)

type RouterDeps struct {
	ServiceName    string
	Version        string
	AllowedOrigins []string
	MaxUploadBytes int64
	Services       *Services
	Hub            *hub.Hub
	DB             httpapi.Pinger
	Redis          httpapi.Pinger
	// Verifier checks Firebase ID tokens. When nil, identity comes from the
	// X-User-* development headers.
	Verifier authmw.TokenVerifier
}

func BuildRouter(dep RouterDeps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	if len(dep.AllowedOrigins) > 0 {
		r.Use(cors.New(cors.Config{
			AllowOrigins:     dep.AllowedOrigins,
			AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", middleware.HeaderRequestID, "X-User-Id", "X-User-Email", "X-User-Name", "X-User-Photo"},
			ExposeHeaders:    []string{"Content-Disposition", middleware.HeaderRequestID},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	} else {
		log.Println("[warn] no CORS origins configured, cross-origin requests get no CORS headers")
	}

	healthHandler := httpapi.NewHealthHandler(dep.ServiceName, dep.Version, dep.DB, dep.Redis)
	healthHandler.RegisterRoutes(r)

	api := r.Group("/api/v1")
	if dep.Verifier != nil {
		api.Use(authmw.FirebaseAuthMiddleware(dep.Verifier))
	} else {
		api.Use(auth.DevIdentity())
	}
	api.Use(auth.WithUser(dep.Services.Users))

	svc := dep.Services
	userhttp.New(svc.Users).Register(api)
	reporthttp.New(svc.Reports).Register(api)
	timehttp.New(svc.Timer).Register(api)
	projecthttp.New(svc.Projects).Register(api.Group("/projects"))
	taskhttp.New(svc.Tasks).Register(api.Group("/tasks"))
	notifhttp.New(svc.Notifications, dep.Hub).Register(api.Group("/notifications"))
	filehttp.New(svc.Files, dep.MaxUploadBytes).Register(api.Group("/files"))
	searchhttp.New(svc.Search).Register(api.Group("/search"))

	return r
}
