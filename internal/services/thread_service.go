package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/teamhub-dev/teamhub/internal/models"
	"github.com/teamhub-dev/teamhub/internal/realtime"
	"github.com/teamhub-dev/teamhub/internal/repository"
	"gorm.io/gorm"
)

var (
	ErrThreadNotFound       = errors.New("thread not found")
	ErrThreadTitleRequired  = errors.New("thread title is required")
	ErrReplyContentRequired = errors.New("reply content is required")
)

// ThreadService handles discussion threads and replies.
type ThreadService struct {
	threadRepo  repository.ThreadRepository
	broadcaster *realtime.Broadcaster
}

// NewThreadService creates a new ThreadService.
func NewThreadService(threadRepo repository.ThreadRepository, broadcaster *realtime.Broadcaster) *ThreadService {
	return &ThreadService{
		threadRepo:  threadRepo,
		broadcaster: broadcaster,
	}
}

// CreateThreadInput represents parameters to start a discussion thread.
type CreateThreadInput struct {
	ProjectID uint64
	AuthorID  uint64
	Title     string
	Content   string
}

// CreateThread starts a discussion thread in a project the caller can access.
func (s *ThreadService) CreateThread(ctx context.Context, input CreateThreadInput) (*models.Thread, error) {
	if strings.TrimSpace(input.Title) == "" {
		return nil, ErrThreadTitleRequired
	}

	thread := &models.Thread{
		ProjectID: input.ProjectID,
		AuthorID:  input.AuthorID,
		Title:     strings.TrimSpace(input.Title),
		Content:   input.Content,
	}

	if err := s.threadRepo.Create(thread); err != nil {
		return nil, fmt.Errorf("failed to create thread: %w", err)
	}

	created, err := s.threadRepo.FindByID(thread.ID, "Author")
	if err != nil {
		return nil, fmt.Errorf("failed to reload thread: %w", err)
	}

	s.broadcaster.Publish(ctx, thread.ProjectID, "thread.created", created)

	return created, nil
}

// ListThreads returns one page of a project's discussion threads.
func (s *ThreadService) ListThreads(projectID uint64, opts repository.ListOptions) (*repository.ListResult[models.Thread], error) {
	return s.threadRepo.ListForProject(projectID, opts)
}

// GetThread returns a thread with its author and replies expanded.
func (s *ThreadService) GetThread(threadID uint64) (*models.Thread, error) {
	thread, err := s.threadRepo.FindByID(threadID, "Author", "Replies", "Replies.Author")
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrThreadNotFound
		}
		return nil, fmt.Errorf("failed to find thread: %w", err)
	}
	return thread, nil
}

// AddReply appends a reply to a thread.
func (s *ThreadService) AddReply(ctx context.Context, threadID, authorID uint64, content string) (*models.Reply, error) {
	if strings.TrimSpace(content) == "" {
		return nil, ErrReplyContentRequired
	}

	thread, err := s.threadRepo.FindByID(threadID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrThreadNotFound
		}
		return nil, fmt.Errorf("failed to find thread: %w", err)
	}

	reply := &models.Reply{
		ThreadID: threadID,
		AuthorID: authorID,
		Content:  content,
	}

	if err := s.threadRepo.CreateReply(reply); err != nil {
		return nil, fmt.Errorf("failed to create reply: %w", err)
	}

	s.broadcaster.Publish(ctx, thread.ProjectID, "thread.reply_created", reply)

	return reply, nil
}
