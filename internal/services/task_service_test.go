package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/teamhub-dev/teamhub/internal/models"
	"github.com/teamhub-dev/teamhub/internal/repository"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type taskServiceEnv struct {
	db             *gorm.DB
	service        *TaskService
	projectService *ProjectService
}

func setupTaskService(t *testing.T) taskServiceEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)

	err = db.AutoMigrate(
		&models.User{},
		&models.Project{},
		&models.ProjectMember{},
		&models.Task{},
	)
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() {
		sqlDB.Close()
	})

	taskRepo := repository.NewTaskRepository(db)
	projectRepo := repository.NewProjectRepository(db)
	userRepo := repository.NewUserRepository(db)

	return taskServiceEnv{
		db:             db,
		service:        NewTaskService(taskRepo, projectRepo, nil),
		projectService: NewProjectService(projectRepo, userRepo, nil),
	}
}

func (env taskServiceEnv) seedProject(t *testing.T) (*models.Project, *models.User) {
	t.Helper()
	owner := createServiceTestUser(t, env.db, "taskowner@example.com")
	project, err := env.projectService.CreateProject(CreateProjectInput{Name: "Apollo", OwnerID: owner.ID})
	require.NoError(t, err)
	return project, owner
}

func TestTaskService_CreateTaskDefaults(t *testing.T) {
	env := setupTaskService(t)
	project, owner := env.seedProject(t)

	task, err := env.service.CreateTask(context.Background(), CreateTaskInput{
		ProjectID: project.ID,
		CreatorID: owner.ID,
		Title:     "  Ship it  ",
	})
	require.NoError(t, err)
	require.Equal(t, "Ship it", task.Title)
	require.Equal(t, models.TaskStatusTodo, task.Status)
	require.Equal(t, models.TaskPriorityMedium, task.Priority)
	require.Nil(t, task.AssigneeID)
	require.Equal(t, owner.ID, task.Creator.ID)
}

func TestTaskService_CreateTaskRequiresTitle(t *testing.T) {
	env := setupTaskService(t)
	project, owner := env.seedProject(t)

	_, err := env.service.CreateTask(context.Background(), CreateTaskInput{
		ProjectID: project.ID,
		CreatorID: owner.ID,
		Title:     "   ",
	})
	require.ErrorIs(t, err, ErrTaskTitleRequired)
}

func TestTaskService_CreateTaskAssigneeMustBeMember(t *testing.T) {
	env := setupTaskService(t)
	project, owner := env.seedProject(t)
	outsider := createServiceTestUser(t, env.db, "outsider@example.com")

	_, err := env.service.CreateTask(context.Background(), CreateTaskInput{
		ProjectID:  project.ID,
		CreatorID:  owner.ID,
		Title:      "Assigned task",
		AssigneeID: &outsider.ID,
	})
	require.ErrorIs(t, err, ErrInvalidAssignee)

	// Owner is always assignable. Members become assignable once added.
	task, err := env.service.CreateTask(context.Background(), CreateTaskInput{
		ProjectID:  project.ID,
		CreatorID:  owner.ID,
		Title:      "Owner task",
		AssigneeID: &owner.ID,
	})
	require.NoError(t, err)
	require.Equal(t, owner.ID, *task.AssigneeID)

	_, err = env.projectService.AddMember(context.Background(), project.ID, outsider.ID)
	require.NoError(t, err)

	task, err = env.service.CreateTask(context.Background(), CreateTaskInput{
		ProjectID:  project.ID,
		CreatorID:  owner.ID,
		Title:      "Member task",
		AssigneeID: &outsider.ID,
	})
	require.NoError(t, err)
	require.Equal(t, outsider.ID, *task.AssigneeID)
}

func TestTaskService_UpdateTask(t *testing.T) {
	env := setupTaskService(t)
	project, owner := env.seedProject(t)

	task, err := env.service.CreateTask(context.Background(), CreateTaskInput{
		ProjectID:  project.ID,
		CreatorID:  owner.ID,
		Title:      "Original",
		AssigneeID: &owner.ID,
	})
	require.NoError(t, err)

	newTitle := "Renamed"
	status := models.TaskStatusInProgress
	updated, err := env.service.UpdateTask(context.Background(), task.ID, UpdateTaskInput{
		Title:  &newTitle,
		Status: &status,
	})
	require.NoError(t, err)
	require.Equal(t, "Renamed", updated.Title)
	require.Equal(t, models.TaskStatusInProgress, updated.Status)
	require.NotNil(t, updated.AssigneeID)

	// Clearing the assignee is an explicit operation, not an omitted field.
	updated, err = env.service.UpdateTask(context.Background(), task.ID, UpdateTaskInput{ClearAssignee: true})
	require.NoError(t, err)
	require.Nil(t, updated.AssigneeID)
}

func TestTaskService_UpdateTaskRevalidatesAssignee(t *testing.T) {
	env := setupTaskService(t)
	project, owner := env.seedProject(t)
	outsider := createServiceTestUser(t, env.db, "outsider@example.com")

	task, err := env.service.CreateTask(context.Background(), CreateTaskInput{
		ProjectID: project.ID,
		CreatorID: owner.ID,
		Title:     "Unassigned",
	})
	require.NoError(t, err)

	_, err = env.service.UpdateTask(context.Background(), task.ID, UpdateTaskInput{AssigneeID: &outsider.ID})
	require.ErrorIs(t, err, ErrInvalidAssignee)
}

func TestTaskService_DeleteTask(t *testing.T) {
	env := setupTaskService(t)
	project, owner := env.seedProject(t)

	task, err := env.service.CreateTask(context.Background(), CreateTaskInput{
		ProjectID: project.ID,
		CreatorID: owner.ID,
		Title:     "Doomed",
	})
	require.NoError(t, err)

	require.NoError(t, env.service.DeleteTask(context.Background(), task.ID))

	_, err = env.service.GetTask(task.ID)
	require.ErrorIs(t, err, ErrTaskNotFound)

	err = env.service.DeleteTask(context.Background(), task.ID)
	require.ErrorIs(t, err, ErrTaskNotFound)
}

func TestTaskService_ListAssignedTasks(t *testing.T) {
	env := setupTaskService(t)
	project, owner := env.seedProject(t)
	member := createServiceTestUser(t, env.db, "assignee@example.com")

	other, err := env.projectService.CreateProject(CreateProjectInput{Name: "Gemini", OwnerID: owner.ID})
	require.NoError(t, err)

	for _, projectID := range []uint64{project.ID, other.ID} {
		_, err := env.projectService.AddMember(context.Background(), projectID, member.ID)
		require.NoError(t, err)
	}

	for _, seed := range []struct {
		projectID uint64
		assignee  *uint64
		status    models.TaskStatus
	}{
		{project.ID, &member.ID, models.TaskStatusTodo},
		{other.ID, &member.ID, models.TaskStatusDone},
		{project.ID, &owner.ID, models.TaskStatusTodo},
	} {
		_, err := env.service.CreateTask(context.Background(), CreateTaskInput{
			ProjectID:  seed.projectID,
			CreatorID:  owner.ID,
			Title:      "Assigned",
			Status:     seed.status,
			AssigneeID: seed.assignee,
		})
		require.NoError(t, err)
	}

	result, err := env.service.ListAssignedTasks(member.ID, repository.TaskFilter{},
		repository.ListOptions{Page: 1, Limit: 10})
	require.NoError(t, err)
	require.Len(t, result.Data, 2)
	for _, task := range result.Data {
		require.Equal(t, member.ID, *task.AssigneeID)
	}

	status := models.TaskStatusDone
	result, err = env.service.ListAssignedTasks(member.ID, repository.TaskFilter{Status: &status},
		repository.ListOptions{Page: 1, Limit: 10})
	require.NoError(t, err)
	require.Len(t, result.Data, 1)
	require.Equal(t, other.ID, result.Data[0].ProjectID)

	// A caller-supplied assignee or project scope cannot widen the listing.
	result, err = env.service.ListAssignedTasks(member.ID,
		repository.TaskFilter{ProjectID: project.ID, AssigneeID: &owner.ID},
		repository.ListOptions{Page: 1, Limit: 10})
	require.NoError(t, err)
	require.Len(t, result.Data, 2)
}

func TestTaskService_UpdateTaskStatus(t *testing.T) {
	env := setupTaskService(t)
	project, owner := env.seedProject(t)

	task, err := env.service.CreateTask(context.Background(), CreateTaskInput{
		ProjectID: project.ID,
		CreatorID: owner.ID,
		Title:     "Kanban card",
	})
	require.NoError(t, err)

	updated, err := env.service.UpdateTaskStatus(context.Background(), task.ID, models.TaskStatusDone)
	require.NoError(t, err)
	require.Equal(t, models.TaskStatusDone, updated.Status)
	require.Equal(t, "Kanban card", updated.Title)

	_, err = env.service.UpdateTaskStatus(context.Background(), task.ID, models.TaskStatus("bogus"))
	require.ErrorIs(t, err, models.ErrValidation)
}

func TestTaskService_ListTasksFilters(t *testing.T) {
	env := setupTaskService(t)
	project, owner := env.seedProject(t)

	for _, status := range []models.TaskStatus{models.TaskStatusTodo, models.TaskStatusTodo, models.TaskStatusDone} {
		_, err := env.service.CreateTask(context.Background(), CreateTaskInput{
			ProjectID: project.ID,
			CreatorID: owner.ID,
			Title:     "Task " + string(status),
			Status:    status,
		})
		require.NoError(t, err)
	}

	status := models.TaskStatusTodo
	result, err := env.service.ListTasks(repository.TaskFilter{ProjectID: project.ID, Status: &status},
		repository.ListOptions{Page: 1, Limit: 10})
	require.NoError(t, err)
	require.Len(t, result.Data, 2)

	result, err = env.service.ListTasks(repository.TaskFilter{ProjectID: project.ID},
		repository.ListOptions{Page: 1, Limit: 10})
	require.NoError(t, err)
	require.Equal(t, int64(3), result.Pagination.Total)
}
