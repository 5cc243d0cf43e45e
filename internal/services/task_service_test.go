package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saaskit-io/saaskit/internal/models"
	apperrors "github.com/saaskit-io/saaskit/pkg/errors"
)

func TestTaskLifecycle(t *testing.T) {
	db := openTestDB(t)
	fixture := createTeam(t, db)
	svc, err := NewTaskService(db)
	require.NoError(t, err)

	ctx := context.Background()

	due := time.Now().Add(48 * time.Hour)
	task, err := svc.Create(ctx, fixture.tenant.ID, "write docs", nil, &due)
	require.NoError(t, err)
	assert.Equal(t, models.TaskTodo, task.Status)
	require.NotNil(t, task.DueDate)

	inProgress := models.TaskInProgress
	task, err = svc.Update(ctx, fixture.tenant.ID, task.ID, TaskUpdate{Status: &inProgress})
	require.NoError(t, err)
	assert.Equal(t, models.TaskInProgress, task.Status)

	done := models.TaskDone
	task, err = svc.Update(ctx, fixture.tenant.ID, task.ID, TaskUpdate{Status: &done, ClearDueDate: true})
	require.NoError(t, err)
	assert.Equal(t, models.TaskDone, task.Status)
	assert.Nil(t, task.DueDate)

	require.NoError(t, svc.Delete(ctx, fixture.tenant.ID, task.ID))
}

func TestTaskProjectAttachment(t *testing.T) {
	db := openTestDB(t)
	fixture := createTeam(t, db)
	projects, err := NewProjectService(db)
	require.NoError(t, err)
	svc, err := NewTaskService(db)
	require.NoError(t, err)

	ctx := context.Background()

	project, err := projects.Create(ctx, fixture.tenant.ID, "Board", "")
	require.NoError(t, err)

	t.Run("attach on create", func(t *testing.T) {
		task, err := svc.Create(ctx, fixture.tenant.ID, "attached", &project.ID, nil)
		require.NoError(t, err)
		require.NotNil(t, task.ProjectID)
		assert.Equal(t, project.ID, *task.ProjectID)
	})

	t.Run("foreign project rejected", func(t *testing.T) {
		other := createTenant(t, db, "Rival", "rival")
		foreign, err := projects.Create(ctx, other.ID, "Theirs", "")
		require.NoError(t, err)

		_, err = svc.Create(ctx, fixture.tenant.ID, "sneaky", &foreign.ID, nil)
		assert.Error(t, err)
	})

	t.Run("detach on update", func(t *testing.T) {
		task, err := svc.Create(ctx, fixture.tenant.ID, "detach me", &project.ID, nil)
		require.NoError(t, err)

		task, err = svc.Update(ctx, fixture.tenant.ID, task.ID, TaskUpdate{ClearProject: true})
		require.NoError(t, err)
		assert.Nil(t, task.ProjectID)
	})
}

func TestTaskListFilters(t *testing.T) {
	db := openTestDB(t)
	fixture := createTeam(t, db)
	svc, err := NewTaskService(db)
	require.NoError(t, err)

	ctx := context.Background()

	_, err = svc.Create(ctx, fixture.tenant.ID, "one", nil, nil)
	require.NoError(t, err)
	second, err := svc.Create(ctx, fixture.tenant.ID, "two", nil, nil)
	require.NoError(t, err)

	done := models.TaskDone
	_, err = svc.Update(ctx, fixture.tenant.ID, second.ID, TaskUpdate{Status: &done})
	require.NoError(t, err)

	all, err := svc.List(ctx, fixture.tenant.ID, TaskFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	todo := models.TaskTodo
	open, err := svc.List(ctx, fixture.tenant.ID, TaskFilter{Status: &todo})
	require.NoError(t, err)
	require.Len(t, open, 1)
	assert.Equal(t, "one", open[0].Title)
}

func TestTaskTenantScoping(t *testing.T) {
	db := openTestDB(t)
	fixture := createTeam(t, db)
	other := createTenant(t, db, "Rival", "rival")
	svc, err := NewTaskService(db)
	require.NoError(t, err)

	ctx := context.Background()

	task, err := svc.Create(ctx, fixture.tenant.ID, "private", nil, nil)
	require.NoError(t, err)

	_, err = svc.Get(ctx, other.ID, task.ID)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	title := "hijacked"
	_, err = svc.Update(ctx, other.ID, task.ID, TaskUpdate{Title: &title})
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}
