package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/atelier-arq/atelier-backend/config"
	httpapi "github.com/atelier-arq/atelier-backend/internal/api/http"
	"github.com/atelier-arq/atelier-backend/internal/auth"
	authmw "github.com/atelier-arq/atelier-backend/internal/auth/middleware"
	"github.com/atelier-arq/atelier-backend/internal/bootstrap"
	"github.com/atelier-arq/atelier-backend/internal/notifications/bus"
	notifdomain "github.com/atelier-arq/atelier-backend/internal/notifications/domain"
	"github.com/atelier-arq/atelier-backend/internal/notifications/hub"
)

const serviceName = "atelier-backend"

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("[error] config: %v", err)
	}
	bootstrap.SetGinMode(cfg.App.Environment)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := bootstrap.OpenStore(ctx, &cfg.Database)
	if err != nil {
		log.Fatalf("[error] store: %v", err)
	}
	defer st.Close()

	objects, err := bootstrap.NewObjectStore(ctx, &cfg.Storage)
	if err != nil {
		log.Fatalf("[error] object storage: %v", err)
	}

	local := hub.New(hub.DefaultBuffer)
	var events notifdomain.Publisher = local
	var redisPinger httpapi.Pinger

	rdb, err := bootstrap.OpenRedis(ctx, &cfg.Redis)
	if err != nil {
		log.Fatalf("[error] redis: %v", err)
	}
	if rdb != nil {
		defer rdb.Close()
		b := bus.NewRedisBus(rdb, cfg.Redis.EventsChannel, local)
		events = b
		redisPinger = bootstrap.RedisPinger{Client: rdb}
		go func() {
			if err := b.Run(ctx); err != nil {
				log.Printf("[error] event bus stopped: %v", err)
			}
		}()
	} else {
		log.Println("[info] REDIS_ADDR not set, events are delivered in-process only")
	}

	var verifier authmw.TokenVerifier
	if cfg.Firebase.Enabled() {
		fb, err := auth.NewFirebaseVerifier(ctx, cfg.Firebase)
		if err != nil {
			log.Fatalf("[error] firebase: %v", err)
		}
		verifier = fb
	} else {
		log.Println("[warn] firebase credentials not set, trusting X-User-* headers")
	}

	router := bootstrap.BuildRouter(bootstrap.RouterDeps{
		ServiceName:    serviceName,
		Version:        cfg.App.Version,
		AllowedOrigins: cfg.Server.AllowedOrigins,
		MaxUploadBytes: cfg.Storage.MaxBytes,
		Services:       bootstrap.NewServices(cfg, st, objects, events),
		Hub:            local,
		DB:             st.DB,
		Redis:          redisPinger,
		Verifier:       verifier,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("[info] %s %s listening on :%s", serviceName, cfg.App.Version, cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("[error] listen: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("[info] shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("[error] shutdown: %v", err)
	}
}
