package reporting

import (
	"strconv"
	"time"

	projectdomain "github.com/atelier-arq/atelier-backend/internal/projects/domain"
	taskdomain "github.com/atelier-arq/atelier-backend/internal/tasks/domain"
	usersdomain "github.com/atelier-arq/atelier-backend/internal/users/domain"
)

const noProjectName = "Sem projeto"

// Report is the sectioned dataset behind the PDF export. Every section is
// computed from the filtered task set.
type Report struct {
	ExportedAt     time.Time                    `json:"exportedAt"`
	Filter         Filter                       `json:"-"`
	Filters        []string                     `json:"filters"`
	TotalTasks     int                          `json:"totalTasks"`
	CompletedTasks int                          `json:"completedTasks"`
	Efficiency     int                          `json:"efficiency"`
	Projects       []ProjectSection             `json:"projects"`
	Users          []UserSummary                `json:"users"`
	ByStatus       []Count                      `json:"byStatus"`
	ByPriority     []Count                      `json:"byPriority"`
	Overdue        []taskdomain.TaskWithDetails `json:"overdue"`
}

// ProjectSection holds one project with its filtered tasks. Project is nil
// for the section of tasks without a project. Progress is computed over all
// of the project's tasks, not only the filtered ones.
type ProjectSection struct {
	Project  *projectdomain.Project       `json:"project"`
	Name     string                       `json:"name"`
	Progress int                          `json:"progress"`
	Tasks    []taskdomain.TaskWithDetails `json:"tasks"`
}

type UserSummary struct {
	User           usersdomain.User `json:"user"`
	TaskCount      int              `json:"taskCount"`
	CompletedCount int              `json:"completedCount"`
	CompletionRate int              `json:"completionRate"`
}

type Count struct {
	Key   string `json:"key"`
	Label string `json:"label"`
	Count int    `json:"count"`
}

// BuildReport applies f to tasks and sections the result. Task order inside a
// section follows the input order. Users without qualifying tasks are omitted.
func BuildReport(projects []projectdomain.Project, tasks []taskdomain.TaskWithDetails, users []usersdomain.User, f Filter, exportedAt time.Time) *Report {
	filtered := FilterTasks(tasks, f)

	r := &Report{
		ExportedAt: exportedAt,
		Filter:     f,
		TotalTasks: len(filtered),
		Projects:   []ProjectSection{},
		Users:      []UserSummary{},
		Overdue:    []taskdomain.TaskWithDetails{},
	}

	allByProject := make(map[int64][]taskdomain.Task)
	for _, t := range tasks {
		if t.ProjectID != nil {
			allByProject[*t.ProjectID] = append(allByProject[*t.ProjectID], t.Task)
		}
	}
	filteredByProject := make(map[int64][]taskdomain.TaskWithDetails)
	var orphans []taskdomain.TaskWithDetails
	for _, t := range filtered {
		if t.ProjectID == nil {
			orphans = append(orphans, t)
			continue
		}
		filteredByProject[*t.ProjectID] = append(filteredByProject[*t.ProjectID], t)
	}

	projectNames := make(map[int64]string, len(projects))
	for i := range projects {
		p := projects[i]
		projectNames[p.ID] = p.Name
		if f.ProjectID != nil && *f.ProjectID != p.ID {
			continue
		}
		sectionTasks := filteredByProject[p.ID]
		if sectionTasks == nil {
			sectionTasks = []taskdomain.TaskWithDetails{}
		}
		r.Projects = append(r.Projects, ProjectSection{
			Project:  &p,
			Name:     p.Name,
			Progress: ComputeProjectProgress(allByProject[p.ID]),
			Tasks:    sectionTasks,
		})
	}
	if len(orphans) > 0 {
		r.Projects = append(r.Projects, ProjectSection{Name: noProjectName, Tasks: orphans})
	}

	for _, u := range users {
		s := UserSummary{User: u}
		for _, t := range filtered {
			if t.AssignedUserID != nil && *t.AssignedUserID == u.ID {
				s.TaskCount++
				if t.Status == taskdomain.StatusDone {
					s.CompletedCount++
				}
			}
		}
		if s.TaskCount == 0 {
			continue
		}
		s.CompletionRate = Efficiency(s.CompletedCount, s.TaskCount)
		r.Users = append(r.Users, s)
	}

	statusCounts := make(map[taskdomain.Status]int)
	priorityCounts := make(map[taskdomain.Priority]int)
	for _, t := range filtered {
		statusCounts[t.Status]++
		priorityCounts[t.Priority]++
		if t.Overdue(exportedAt) {
			r.Overdue = append(r.Overdue, t)
		}
	}
	for _, s := range taskdomain.Statuses {
		r.ByStatus = append(r.ByStatus, Count{Key: string(s), Label: s.Label(), Count: statusCounts[s]})
	}
	for _, p := range taskdomain.Priorities {
		r.ByPriority = append(r.ByPriority, Count{Key: string(p), Label: p.Label(), Count: priorityCounts[p]})
	}
	r.CompletedTasks = statusCounts[taskdomain.StatusDone]
	r.Efficiency = Efficiency(r.CompletedTasks, r.TotalTasks)
	r.Filters = describeFilter(f, projectNames, users)
	return r
}

// StatusCount returns the count reported for s.
func (r *Report) StatusCount(s taskdomain.Status) int {
	for _, c := range r.ByStatus {
		if c.Key == string(s) {
			return c.Count
		}
	}
	return 0
}

// describeFilter renders the applied filters in pt-BR for the cover page.
func describeFilter(f Filter, projectNames map[int64]string, users []usersdomain.User) []string {
	if f.IsEmpty() {
		return []string{"Nenhum filtro aplicado"}
	}
	var out []string
	if !f.DateFrom.IsZero() {
		out = append(out, "De: "+FormatDate(f.DateFrom, f.DateFrom.Location()))
	}
	if !f.DateTo.IsZero() {
		out = append(out, "Até: "+FormatDate(f.DateTo, f.DateTo.Location()))
	}
	if f.Status != "" {
		out = append(out, "Status: "+f.Status.Label())
	}
	if f.Priority != "" {
		out = append(out, "Prioridade: "+f.Priority.Label())
	}
	if f.UserID != "" {
		name := f.UserID
		for _, u := range users {
			if u.ID == f.UserID {
				name = u.DisplayName()
				break
			}
		}
		out = append(out, "Responsável: "+name)
	}
	if f.ProjectID != nil {
		name, ok := projectNames[*f.ProjectID]
		if !ok {
			name = "#" + strconv.FormatInt(*f.ProjectID, 10)
		}
		out = append(out, "Projeto: "+name)
	}
	if f.SearchText != "" {
		out = append(out, "Busca: \""+f.SearchText+"\"")
	}
	return out
}
