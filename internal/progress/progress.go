// Package progress derives completion metrics from task collections. The same
// numbers must come out whether the input is an aggregate count query or an
// already-loaded task slice; callers pick whichever path is cheaper.
package progress

import (
	"math"
	"time"

	"github.com/shopspring/decimal"

	"github.com/taskhive/taskhive-backend/internal/repository"
	"github.com/taskhive/taskhive-backend/internal/types"
)

type Summary struct {
	Total      int `json:"total"`
	Completed  int `json:"completed"`
	Percentage int `json:"percentage"`
}

// Reduce computes a summary from a loaded task collection.
func Reduce(tasks []*repository.Task) Summary {
	completed := 0
	for _, t := range tasks {
		if t.Status == types.StatusDone {
			completed++
		}
	}
	return summarize(len(tasks), completed)
}

// FromCounts computes a summary from an aggregate count query. It must agree
// with Reduce over the same task set.
func FromCounts(counts *repository.StatusCounts) Summary {
	return summarize(counts.Total, counts.Done)
}

func summarize(total, completed int) Summary {
	return Summary{
		Total:      total,
		Completed:  completed,
		Percentage: percentage(completed, total),
	}
}

// percentage rounds half-up to the nearest integer; 0 when total is zero.
func percentage(completed, total int) int {
	if total == 0 {
		return 0
	}
	pct := decimal.NewFromInt(int64(completed) * 100).
		DivRound(decimal.NewFromInt(int64(total)), 0)
	return int(pct.IntPart())
}

// ProjectOverdue reports whether a project's end date has passed while the
// project is not completed.
func ProjectOverdue(p *repository.Project, now time.Time) bool {
	if p.EndDate == nil {
		return false
	}
	loc := p.EndDate.Location()
	return dateIn(*p.EndDate, loc).Before(dateIn(now, loc)) && p.Status != types.ProjectCompleted
}

// ProjectDaysRemaining returns the signed calendar-day count until the end
// date (negative when overdue), or nil when no end date is set.
func ProjectDaysRemaining(p *repository.Project, now time.Time) *int {
	if p.EndDate == nil {
		return nil
	}
	days := daysBetween(now, *p.EndDate)
	return &days
}

// TaskOverdue reports whether a task's due date has passed while the task is
// not in the terminal done state.
func TaskOverdue(t *repository.Task, now time.Time) bool {
	if t.DueDate == nil || t.Status == types.StatusDone {
		return false
	}
	loc := t.DueDate.Location()
	return dateIn(*t.DueDate, loc).Before(dateIn(now, loc))
}

func TaskDaysRemaining(t *repository.Task, now time.Time) *int {
	if t.DueDate == nil {
		return nil
	}
	days := daysBetween(now, *t.DueDate)
	return &days
}

// daysBetween counts whole calendar days from now to the deadline; "due
// today" is 0. Both ends are read on the deadline's calendar, so a date
// scanned in UTC and a clock in another zone cannot shift the count. Rounding
// absorbs the odd-length days DST introduces.
func daysBetween(now, deadline time.Time) int {
	loc := deadline.Location()
	return int(math.Round(dateIn(deadline, loc).Sub(dateIn(now, loc)).Hours() / 24))
}

// dateIn truncates t to midnight on loc's calendar.
func dateIn(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}
