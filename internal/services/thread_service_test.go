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

func setupThreadService(t *testing.T) (*gorm.DB, *ThreadService) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)

	err = db.AutoMigrate(
		&models.User{},
		&models.Project{},
		&models.ProjectMember{},
		&models.Thread{},
		&models.Reply{},
	)
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() {
		sqlDB.Close()
	})

	return db, NewThreadService(repository.NewThreadRepository(db), nil)
}

func seedThreadProject(t *testing.T, db *gorm.DB) (*models.Project, *models.User) {
	t.Helper()
	author := createServiceTestUser(t, db, "author@example.com")
	project := &models.Project{Name: "Apollo", OwnerID: author.ID, IsActive: true}
	require.NoError(t, db.Create(project).Error)
	return project, author
}

func TestThreadService_CreateThread(t *testing.T) {
	db, service := setupThreadService(t)
	project, author := seedThreadProject(t, db)

	thread, err := service.CreateThread(context.Background(), CreateThreadInput{
		ProjectID: project.ID,
		AuthorID:  author.ID,
		Title:     "  Kickoff notes  ",
		Content:   "First discussion",
	})
	require.NoError(t, err)
	require.Equal(t, "Kickoff notes", thread.Title)
	require.Equal(t, author.ID, thread.Author.ID)

	_, err = service.CreateThread(context.Background(), CreateThreadInput{
		ProjectID: project.ID,
		AuthorID:  author.ID,
		Title:     "   ",
	})
	require.ErrorIs(t, err, ErrThreadTitleRequired)
}

func TestThreadService_Replies(t *testing.T) {
	db, service := setupThreadService(t)
	project, author := seedThreadProject(t, db)

	thread, err := service.CreateThread(context.Background(), CreateThreadInput{
		ProjectID: project.ID,
		AuthorID:  author.ID,
		Title:     "Kickoff",
	})
	require.NoError(t, err)

	reply, err := service.AddReply(context.Background(), thread.ID, author.ID, "On it")
	require.NoError(t, err)
	require.Equal(t, thread.ID, reply.ThreadID)

	_, err = service.AddReply(context.Background(), thread.ID, author.ID, "   ")
	require.ErrorIs(t, err, ErrReplyContentRequired)

	_, err = service.AddReply(context.Background(), 99999, author.ID, "Lost reply")
	require.ErrorIs(t, err, ErrThreadNotFound)

	full, err := service.GetThread(thread.ID)
	require.NoError(t, err)
	require.Len(t, full.Replies, 1)
	require.Equal(t, author.ID, full.Replies[0].Author.ID)
}

func TestThreadService_ListThreads(t *testing.T) {
	db, service := setupThreadService(t)
	project, author := seedThreadProject(t, db)

	for _, title := range []string{"First", "Second", "Third"} {
		_, err := service.CreateThread(context.Background(), CreateThreadInput{
			ProjectID: project.ID,
			AuthorID:  author.ID,
			Title:     title,
		})
		require.NoError(t, err)
	}

	result, err := service.ListThreads(project.ID, repository.ListOptions{Page: 1, Limit: 2})
	require.NoError(t, err)
	require.Len(t, result.Data, 2)
	require.Equal(t, int64(3), result.Pagination.Total)
	require.Equal(t, 2, result.Pagination.Pages)
}
