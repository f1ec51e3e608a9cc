// Package progress derives an intern's completion score and certificate
// eligibility from their task list and attendance count.
//
// The score is a weighted sum of task completion and capped attendance:
//
//	progress = round(completed/total * TaskWeight + min(attendance/capDays, 1) * (100 - TaskWeight))
//
// clamped to [0, 100]. An intern with no tasks earns no task credit.
package progress

import (
	"math"

	"github.com/yukikurage/intern-management-api/internal/models"
)

// Policy holds the tunable constants of the progress formula and the
// certificate eligibility thresholds.
type Policy struct {
	TaskWeight         float64
	AttendanceCapDays  int
	MinCompletionRatio float64
	MinAttendanceDays  int
}

// DefaultPolicy is the 80/20 weighting with a 30 day attendance cap and an
// 80% / 20 day eligibility bar.
func DefaultPolicy() Policy {
	return Policy{
		TaskWeight:         80,
		AttendanceCapDays:  30,
		MinCompletionRatio: 0.80,
		MinAttendanceDays:  20,
	}
}

// Normalize clamps out-of-range constants into usable values.
func (p Policy) Normalize() Policy {
	if p.TaskWeight < 0 {
		p.TaskWeight = 0
	}
	if p.TaskWeight > 100 {
		p.TaskWeight = 100
	}
	if p.AttendanceCapDays <= 0 {
		p.AttendanceCapDays = DefaultPolicy().AttendanceCapDays
	}
	if p.MinCompletionRatio < 0 {
		p.MinCompletionRatio = 0
	}
	if p.MinCompletionRatio > 1 {
		p.MinCompletionRatio = 1
	}
	if p.MinAttendanceDays < 0 {
		p.MinAttendanceDays = 0
	}
	return p
}

// Tally counts tasks by status.
type Tally struct {
	Total      int `json:"total_tasks"`
	Completed  int `json:"completed_tasks"`
	InProgress int `json:"in_progress_tasks"`
	Pending    int `json:"pending_tasks"`
}

// Count tallies a task list.
func Count(tasks []models.Task) Tally {
	t := Tally{Total: len(tasks)}
	for _, task := range tasks {
		switch {
		case task.Status == models.TaskStatusCompleted:
			t.Completed++
		case task.Status == models.TaskStatusInProgress:
			t.InProgress++
		case task.Status.NotStarted():
			t.Pending++
		}
	}
	return t
}

// CompletionRatio is completed/total, or 0 when there are no tasks.
func (t Tally) CompletionRatio() float64 {
	if t.Total == 0 {
		return 0
	}
	return float64(t.Completed) / float64(t.Total)
}

// Active is the number of tasks not yet completed.
func (t Tally) Active() int {
	return t.Total - t.Completed
}

// Compute returns the progress score in [0, 100].
func (p Policy) Compute(t Tally, attendance int) int {
	p = p.Normalize()

	taskComponent := t.CompletionRatio() * p.TaskWeight

	if attendance < 0 {
		attendance = 0
	}
	attendanceRatio := math.Min(float64(attendance)/float64(p.AttendanceCapDays), 1)
	attendanceComponent := attendanceRatio * (100 - p.TaskWeight)

	score := int(math.Round(taskComponent + attendanceComponent))
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

// IsEligible reports whether the intern qualifies for a certificate.
// An intern with no tasks is never eligible.
func (p Policy) IsEligible(t Tally, attendance int) bool {
	p = p.Normalize()
	if t.Total == 0 {
		return false
	}
	return t.CompletionRatio() >= p.MinCompletionRatio && attendance >= p.MinAttendanceDays
}

// Summary is the dashboard view of an intern's standing.
type Summary struct {
	Progress                 int  `json:"progress"`
	CompletedTasks           int  `json:"completed_tasks"`
	ActiveTasks              int  `json:"active_tasks"`
	TotalTasks               int  `json:"total_tasks"`
	AttendanceDays           int  `json:"attendance_days"`
	IsEligibleForCertificate bool `json:"is_eligible_for_certificate"`
}

// Summarize builds a Summary for a task list and attendance count.
func (p Policy) Summarize(tasks []models.Task, attendance int) Summary {
	t := Count(tasks)
	return Summary{
		Progress:                 p.Compute(t, attendance),
		CompletedTasks:           t.Completed,
		ActiveTasks:              t.Active(),
		TotalTasks:               t.Total,
		AttendanceDays:           attendance,
		IsEligibleForCertificate: p.IsEligible(t, attendance),
	}
}

// TeamStats aggregates a team's task list.
type TeamStats struct {
	Tally
	CompletionRate int `json:"completion_rate"`
}

// Team computes task statistics for a team.
func Team(tasks []models.Task) TeamStats {
	t := Count(tasks)
	return TeamStats{
		Tally:          t,
		CompletionRate: int(math.Round(t.CompletionRatio() * 100)),
	}
}
