package reporting

import (
	"math"

	projectdomain "github.com/atelier-arq/atelier-backend/internal/projects/domain"
	taskdomain "github.com/atelier-arq/atelier-backend/internal/tasks/domain"
	timedomain "github.com/atelier-arq/atelier-backend/internal/timeentries/domain"
)

type DashboardStats struct {
	TotalTasks     int     `json:"totalTasks"`
	CompletedTasks int     `json:"completedTasks"`
	ActiveProjects int     `json:"activeProjects"`
	TotalHours     float64 `json:"totalHours"`
	Efficiency     int     `json:"efficiency"`
}

type UserStats struct {
	TaskCount          int     `json:"taskCount"`
	CompletedTaskCount int     `json:"completedTaskCount"`
	HoursWorked        float64 `json:"hoursWorked"`
	Efficiency         int     `json:"efficiency"`
}

// Efficiency is completed/total as a rounded percentage, 0 when total is 0.
func Efficiency(completed, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(float64(completed) / float64(total) * 100))
}

// ComputeProjectProgress is the rounded share of concluida tasks, 0 for a
// project without tasks.
func ComputeProjectProgress(tasks []taskdomain.Task) int {
	return Efficiency(countDone(tasks), len(tasks))
}

func countDone(tasks []taskdomain.Task) int {
	n := 0
	for _, t := range tasks {
		if t.Status == taskdomain.StatusDone {
			n++
		}
	}
	return n
}

// hours converts summed entry minutes to hours.
func hours(entries []timedomain.TimeEntry) float64 {
	minutes := 0
	for _, e := range entries {
		minutes += e.Minutes()
	}
	return float64(minutes) / 60
}

func ComputeDashboard(tasks []taskdomain.Task, projects []projectdomain.Project, entries []timedomain.TimeEntry) DashboardStats {
	st := DashboardStats{
		TotalTasks:     len(tasks),
		CompletedTasks: countDone(tasks),
		TotalHours:     hours(entries),
	}
	for _, p := range projects {
		if p.Status == projectdomain.StatusActive {
			st.ActiveProjects++
		}
	}
	st.Efficiency = Efficiency(st.CompletedTasks, st.TotalTasks)
	return st
}

// ComputeUserStats expects tasks assigned to the user and the user's entries.
func ComputeUserStats(tasks []taskdomain.Task, entries []timedomain.TimeEntry) UserStats {
	st := UserStats{
		TaskCount:          len(tasks),
		CompletedTaskCount: countDone(tasks),
		HoursWorked:        hours(entries),
	}
	st.Efficiency = Efficiency(st.CompletedTaskCount, st.TaskCount)
	return st
}
