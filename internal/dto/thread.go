package dto

import (
	"time"

	"github.com/teamhub-dev/teamhub/internal/models"
)

// ReplyDTO represents a reply in API responses
type ReplyDTO struct {
	ID        uint64    `json:"id"`
	ThreadID  uint64    `json:"thread_id"`
	AuthorID  uint64    `json:"author_id"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
	Author    *UserDTO  `json:"author,omitempty"`
}

// ThreadDTO represents a discussion thread in API responses
type ThreadDTO struct {
	ID        uint64     `json:"id"`
	ProjectID uint64     `json:"project_id"`
	AuthorID  uint64     `json:"author_id"`
	Title     string     `json:"title"`
	Content   string     `json:"content"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	Author    *UserDTO   `json:"author,omitempty"`
	Replies   []ReplyDTO `json:"replies,omitempty"`
}

// ToReplyDTO converts a Reply model to ReplyDTO
func ToReplyDTO(reply models.Reply) ReplyDTO {
	dto := ReplyDTO{
		ID:        reply.ID,
		ThreadID:  reply.ThreadID,
		AuthorID:  reply.AuthorID,
		Content:   reply.Content,
		CreatedAt: reply.CreatedAt,
	}
	if reply.Author.ID != 0 {
		author := ToUserDTO(reply.Author)
		dto.Author = &author
	}
	return dto
}

// ToThreadDTO converts a Thread model to ThreadDTO
func ToThreadDTO(thread models.Thread) ThreadDTO {
	dto := ThreadDTO{
		ID:        thread.ID,
		ProjectID: thread.ProjectID,
		AuthorID:  thread.AuthorID,
		Title:     thread.Title,
		Content:   thread.Content,
		CreatedAt: thread.CreatedAt,
		UpdatedAt: thread.UpdatedAt,
	}
	if thread.Author.ID != 0 {
		author := ToUserDTO(thread.Author)
		dto.Author = &author
	}
	if len(thread.Replies) > 0 {
		dto.Replies = make([]ReplyDTO, len(thread.Replies))
		for i, reply := range thread.Replies {
			dto.Replies[i] = ToReplyDTO(reply)
		}
	}
	return dto
}

// ToThreadDTOs converts a slice of threads
func ToThreadDTOs(threads []models.Thread) []ThreadDTO {
	dtos := make([]ThreadDTO, len(threads))
	for i, thread := range threads {
		dtos[i] = ToThreadDTO(thread)
	}
	return dtos
}
