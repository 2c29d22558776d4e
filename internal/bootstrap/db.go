package bootstrap

import (
	"context"
	"fmt"
	"log"

	"github.com/jackc/pgx/v5/stdlib"

	"github.com/atelier-arq/atelier-backend/config"
	filerepo "github.com/atelier-arq/atelier-backend/internal/files/repository"
	filesvc "github.com/atelier-arq/atelier-backend/internal/files/service"
	notifrepo "github.com/atelier-arq/atelier-backend/internal/notifications/repository"
	notifsvc "github.com/atelier-arq/atelier-backend/internal/notifications/service"
	projectrepo "github.com/atelier-arq/atelier-backend/internal/projects/repository"
	projectsvc "github.com/atelier-arq/atelier-backend/internal/projects/service"
	"github.com/atelier-arq/atelier-backend/internal/storage"
	"github.com/atelier-arq/atelier-backend/internal/storage/memory"
	"github.com/atelier-arq/atelier-backend/internal/storage/postgres"
	taskrepo "github.com/atelier-arq/atelier-backend/internal/tasks/repository"
	tasksvc "github.com/atelier-arq/atelier-backend/internal/tasks/service"
	timerepo "github.com/atelier-arq/atelier-backend/internal/timeentries/repository"
	timesvc "github.com/atelier-arq/atelier-backend/internal/timeentries/service"
	userrepo "github.com/atelier-arq/atelier-backend/internal/users/repository"
	usersvc "github.com/atelier-arq/atelier-backend/internal/users/service"
)

type References interface {
	ProjectExists(ctx context.Context, id int64) (bool, error)
	TaskExists(ctx context.Context, id int64) (bool, error)
	UserExists(ctx context.Context, id string) (bool, error)
}

type Pinger interface {
	Ping(ctx context.Context) error
}

// Store groups the repositories of one backend behind the interfaces the
// services consume.
type Store struct {
	Tx            storage.Transactor
	Users         usersvc.Repository
	Projects      projectsvc.Repository
	Tasks         tasksvc.Repository
	TimeEntries   timesvc.Repository
	Notifications notifsvc.Repository
	Files         filesvc.Repository
	Refs          References
	DB            Pinger
	Close         func()
}

// OpenStore opens the backend selected by STORE_DRIVER. For postgres it runs
// pending migrations first when DB_MIGRATE is set.
func OpenStore(ctx context.Context, cfg *config.DatabaseConfig) (*Store, error) {
	switch cfg.Driver {
	case "memory":
		log.Println("[warn] using in-memory store; data is lost on restart")
		m := memory.New()
		return &Store{
			Tx:            m,
			Users:         m.Users(),
			Projects:      m.Projects(),
			Tasks:         m.Tasks(),
			TimeEntries:   m.TimeEntries(),
			Notifications: m.Notifications(),
			Files:         m.Files(),
			Refs:          m.References(),
			DB:            m,
			Close:         func() {},
		}, nil
	case "postgres":
		if cfg.Migrate {
			if err := postgres.Migrate(cfg.DSN); err != nil {
				return nil, err
			}
		}
		pool, err := postgres.OpenPool(ctx, cfg)
		if err != nil {
			return nil, err
		}
		sqlDB := stdlib.OpenDBFromPool(pool)
		return &Store{
			Tx:            postgres.NewTransactor(pool),
			Users:         userrepo.NewUserRepository(sqlDB),
			Projects:      projectrepo.NewProjectRepository(pool),
			Tasks:         taskrepo.NewTaskRepository(pool),
			TimeEntries:   timerepo.NewTimeEntryRepository(pool),
			Notifications: notifrepo.NewNotificationRepository(pool),
			Files:         filerepo.NewFileRepository(pool),
			Refs:          postgres.NewReferences(pool),
			DB:            pool,
			Close: func() {
				_ = sqlDB.Close()
				pool.Close()
			},
		}, nil
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Driver)
	}
}
