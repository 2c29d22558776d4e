package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/atelier-arq/atelier-backend/config"
	"github.com/atelier-arq/atelier-backend/internal/bootstrap"
	"github.com/atelier-arq/atelier-backend/internal/notifications/bus"
	notifdomain "github.com/atelier-arq/atelier-backend/internal/notifications/domain"
	notifsvc "github.com/atelier-arq/atelier-backend/internal/notifications/service"
	"github.com/atelier-arq/atelier-backend/internal/reminders"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("[error] config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := bootstrap.OpenStore(ctx, &cfg.Database)
	if err != nil {
		log.Fatalf("[error] store: %v", err)
	}
	defer st.Close()

	// The worker has no live connections of its own; reminders reach API
	// instances through Redis when it is configured.
	var events notifdomain.Publisher = notifdomain.Discard{}
	rdb, err := bootstrap.OpenRedis(ctx, &cfg.Redis)
	if err != nil {
		log.Fatalf("[error] redis: %v", err)
	}
	if rdb != nil {
		defer rdb.Close()
		events = bus.NewRedisBus(rdb, cfg.Redis.EventsChannel, notifdomain.Discard{})
	}

	notifications := notifsvc.NewNotificationService(st.Notifications, events)
	sched := reminders.NewScheduler(st.Tasks, notifications, cfg.ReportLocation())

	if len(os.Args) > 1 && os.Args[1] == "once" {
		n, err := sched.RunOnce(ctx)
		if err != nil {
			log.Fatalf("[error] reminders: %v", err)
		}
		log.Printf("[info] overdue reminders sent=%d", n)
		return
	}

	if err := sched.Start(ctx, cfg.Reminders.Schedule); err != nil {
		log.Fatalf("[error] %v", err)
	}
	<-ctx.Done()
	log.Println("[info] stopping reminder scheduler")
	sched.Stop()
}
