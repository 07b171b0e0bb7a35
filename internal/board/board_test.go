package board

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/taskhive/taskhive-backend/internal/repository"
	"github.com/taskhive/taskhive-backend/internal/types"
)

func boardState() State {
	return State{Tasks: []repository.Task{
		{ID: "t1", Status: types.StatusTodo, Title: "write docs"},
		{ID: "t2", Status: types.StatusInProgress, Title: "fix login"},
		{ID: "t3", Status: types.StatusDone, Title: "set up CI"},
	}}
}

func TestSnapshotIsIndependent(t *testing.T) {
	original := boardState()
	snap := Snapshot(original)

	original.Tasks[0].Status = types.StatusDone
	assert.Equal(t, types.StatusTodo, snap.Tasks[0].Status)
}

func TestApplyMove(t *testing.T) {
	state := boardState()
	next := ApplyMove(state, "t1", types.StatusInProgress)

	assert.Equal(t, types.StatusInProgress, next.Tasks[0].Status)
	// Input state untouched.
	assert.Equal(t, types.StatusTodo, state.Tasks[0].Status)
}

func TestApplyMoveUnknownTask(t *testing.T) {
	state := boardState()
	next := ApplyMove(state, "missing", types.StatusDone)
	assert.Equal(t, state, next)
}

func TestApplyRemove(t *testing.T) {
	state := boardState()
	next := ApplyRemove(state, "t2")

	assert.Len(t, next.Tasks, 2)
	for _, task := range next.Tasks {
		assert.NotEqual(t, "t2", task.ID)
	}
	assert.Len(t, state.Tasks, 3)
}

func TestReconcileSuccessReplacesWholesale(t *testing.T) {
	snap := Snapshot(boardState())

	// Server answer differs from anything the client predicted: t1 moved,
	// t3 gone, t4 appeared.
	outcome := Outcome{Tasks: []*repository.Task{
		{ID: "t1", Status: types.StatusDone},
		{ID: "t2", Status: types.StatusInProgress},
		{ID: "t4", Status: types.StatusTodo},
	}}

	next := Reconcile(snap, outcome)
	assert.Len(t, next.Tasks, 3)
	assert.Equal(t, "t4", next.Tasks[2].ID)
	assert.Equal(t, types.StatusDone, next.Tasks[0].Status)
}

func TestReconcileFailureRestoresSnapshot(t *testing.T) {
	state := boardState()
	snap := Snapshot(state)
	moved := ApplyMove(state, "t1", types.StatusDone)
	assert.Equal(t, types.StatusDone, moved.Tasks[0].Status)

	next := Reconcile(snap, Outcome{Err: errors.New("forbidden")})
	assert.Equal(t, snap, next)
	assert.Equal(t, types.StatusTodo, next.Tasks[0].Status)
}

func TestColumns(t *testing.T) {
	cols := Columns(boardState())

	assert.Len(t, cols[types.StatusTodo], 1)
	assert.Len(t, cols[types.StatusInProgress], 1)
	assert.Len(t, cols[types.StatusDone], 1)
	assert.Equal(t, "t1", cols[types.StatusTodo][0].ID)
}
