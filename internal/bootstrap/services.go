package bootstrap

import (
	"github.com/atelier-arq/atelier-backend/config"
	"github.com/atelier-arq/atelier-backend/internal/files/storage"
	filesvc "github.com/atelier-arq/atelier-backend/internal/files/service"
	notifdomain "github.com/atelier-arq/atelier-backend/internal/notifications/domain"
	notifsvc "github.com/atelier-arq/atelier-backend/internal/notifications/service"
	projectsvc "github.com/atelier-arq/atelier-backend/internal/projects/service"
	reportsvc "github.com/atelier-arq/atelier-backend/internal/reporting/service"
	"github.com/atelier-arq/atelier-backend/internal/search"
	tasksvc "github.com/atelier-arq/atelier-backend/internal/tasks/service"
	timesvc "github.com/atelier-arq/atelier-backend/internal/timeentries/service"
	usersvc "github.com/atelier-arq/atelier-backend/internal/users/service"
)

type Services struct {
	Users         *usersvc.UserService
	Projects      *projectsvc.ProjectService
	Tasks         *tasksvc.TaskService
	Timer         *timesvc.TimerService
	Notifications *notifsvc.NotificationService
	Files         *filesvc.FileService
	Reports       *reportsvc.ReportService
	Search        *search.Service
}

func NewServices(cfg *config.Config, st *Store, objects storage.ObjectStore, events notifdomain.Publisher) *Services {
	files := filesvc.NewFileService(st.Files, st.Refs, objects, events, cfg.Storage.MaxBytes)

	var ranker search.Ranker
	if cfg.LLM.OllamaURL != "" {
		ranker = search.NewOllamaRanker(cfg.LLM.OllamaURL, cfg.LLM.Model, cfg.LLM.Timeout)
	}

	return &Services{
		Users:         usersvc.NewUserService(st.Users),
		Projects:      projectsvc.NewProjectService(st.Tx, st.Projects, st.Tasks, events, files),
		Tasks:         tasksvc.NewTaskService(st.Tx, st.Tasks, st.Refs, st.Notifications, events, tasksvc.WithObjectCleaner(files)),
		Timer:         timesvc.NewTimerService(st.Tx, st.TimeEntries, st.Refs, events),
		Notifications: notifsvc.NewNotificationService(st.Notifications, events),
		Files:         files,
		Reports:       reportsvc.NewReportService(st.Tasks, st.Projects, st.Users, st.TimeEntries, cfg.ReportLocation()),
		Search:        search.NewService(st.Tasks, ranker, cfg.LLM.RPS),
	}
}
