package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saaskit-io/saaskit/internal/models"
	apperrors "github.com/saaskit-io/saaskit/pkg/errors"
)

func TestProjectCRUD(t *testing.T) {
	db := openTestDB(t)
	fixture := createTeam(t, db)
	svc, err := NewProjectService(db)
	require.NoError(t, err)

	ctx := context.Background()

	project, err := svc.Create(ctx, fixture.tenant.ID, "Launch", "ship the thing")
	require.NoError(t, err)
	assert.Equal(t, "Launch", project.Name)

	_, err = svc.Create(ctx, fixture.tenant.ID, "  ", "")
	assert.Error(t, err)

	got, err := svc.Get(ctx, fixture.tenant.ID, project.ID)
	require.NoError(t, err)
	assert.Equal(t, project.ID, got.ID)

	name := "Launch v2"
	updated, err := svc.Update(ctx, fixture.tenant.ID, project.ID, ProjectUpdate{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "Launch v2", updated.Name)

	list, err := svc.List(ctx, fixture.tenant.ID)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	require.NoError(t, svc.Delete(ctx, fixture.tenant.ID, project.ID))
	assert.ErrorIs(t, svc.Delete(ctx, fixture.tenant.ID, project.ID), apperrors.ErrNotFound)
}

func TestProjectTenantScoping(t *testing.T) {
	db := openTestDB(t)
	fixture := createTeam(t, db)
	other := createTenant(t, db, "Rival", "rival")
	svc, err := NewProjectService(db)
	require.NoError(t, err)

	ctx := context.Background()

	project, err := svc.Create(ctx, fixture.tenant.ID, "Secret", "")
	require.NoError(t, err)

	_, err = svc.Get(ctx, other.ID, project.ID)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	err = svc.Delete(ctx, other.ID, project.ID)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestProjectDeleteDetachesTasks(t *testing.T) {
	db := openTestDB(t)
	fixture := createTeam(t, db)
	projects, err := NewProjectService(db)
	require.NoError(t, err)
	tasks, err := NewTaskService(db)
	require.NoError(t, err)

	ctx := context.Background()

	project, err := projects.Create(ctx, fixture.tenant.ID, "Doomed", "")
	require.NoError(t, err)

	task, err := tasks.Create(ctx, fixture.tenant.ID, "survives", &project.ID, nil)
	require.NoError(t, err)

	require.NoError(t, projects.Delete(ctx, fixture.tenant.ID, project.ID))

	var stored models.Task
	require.NoError(t, db.First(&stored, "id = ?", task.ID).Error)
	assert.Nil(t, stored.ProjectID)
}
