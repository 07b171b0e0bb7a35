// Package board models the optimistic-update cycle behind the task board: a
// client moves or removes a card locally, fires the request, then either
// replaces its state wholesale with the server's answer or restores the
// snapshot taken before the speculative change. Everything here is a pure
// function of its inputs; no transport involved.
package board

import (
	"github.com/taskhive/taskhive-backend/internal/repository"
)

// State is the board's local view of a project's tasks.
type State struct {
	Tasks []repository.Task
}

// Outcome carries the server's answer to an in-flight mutation: an
// authoritative task list on success, an error otherwise. Exactly one side is
// set.
type Outcome struct {
	Tasks []*repository.Task
	Err   error
}

// Snapshot returns an independent copy of the state, taken immediately before
// a speculative change so a failed request can restore it.
func Snapshot(s State) State {
	tasks := make([]repository.Task, len(s.Tasks))
	copy(tasks, s.Tasks)
	return State{Tasks: tasks}
}

// ApplyMove speculatively sets a task's status in local state. Unknown task
// ids leave the state unchanged.
func ApplyMove(s State, taskID, newStatus string) State {
	next := Snapshot(s)
	for i := range next.Tasks {
		if next.Tasks[i].ID == taskID {
			next.Tasks[i].Status = newStatus
			break
		}
	}
	return next
}

// ApplyRemove speculatively drops a task from local state.
func ApplyRemove(s State, taskID string) State {
	next := State{Tasks: make([]repository.Task, 0, len(s.Tasks))}
	for _, t := range s.Tasks {
		if t.ID != taskID {
			next.Tasks = append(next.Tasks, t)
		}
	}
	return next
}

// Reconcile resolves an in-flight mutation. On success the server's task list
// replaces local state wholesale (never merged); on failure the pre-mutation
// snapshot is restored.
func Reconcile(snapshot State, outcome Outcome) State {
	if outcome.Err != nil {
		return snapshot
	}
	next := State{Tasks: make([]repository.Task, 0, len(outcome.Tasks))}
	for _, t := range outcome.Tasks {
		next.Tasks = append(next.Tasks, *t)
	}
	return next
}

// Columns groups the state's tasks by status for rendering.
func Columns(s State) map[string][]repository.Task {
	cols := make(map[string][]repository.Task)
	for _, t := range s.Tasks {
		cols[t.Status] = append(cols[t.Status], t)
	}
	return cols
}
