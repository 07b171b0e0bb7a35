package service

import (
	"context"
	"fmt"
	"io"
	"log"
	"strings"

	"github.com/taskhive/taskhive-backend/internal/repository"
	"github.com/taskhive/taskhive-backend/internal/storage"
	"github.com/taskhive/taskhive-backend/internal/types"
)

// ============================================
// Comment Service
// ============================================

// Upload is one incoming file from a multipart request.
type Upload struct {
	Name     string
	Size     int64
	MimeType string
	Reader   io.Reader
}

type CommentService interface {
	Create(ctx context.Context, actor *types.Actor, taskID string, content *string, uploads []Upload) (*repository.Comment, error)
	ListByTask(ctx context.Context, actor *types.Actor, taskID string) ([]*repository.Comment, error)
	Thread(ctx context.Context, actor *types.Actor, taskID string) (*repository.Task, []*repository.Comment, error)
	Update(ctx context.Context, actor *types.Actor, commentID, content string) (*repository.Comment, error)
	Delete(ctx context.Context, actor *types.Actor, commentID string) error

	AttachToTask(ctx context.Context, actor *types.Actor, taskID string, upload Upload) (*repository.Attachment, error)
	ListTaskAttachments(ctx context.Context, actor *types.Actor, taskID string) ([]*repository.Attachment, error)
	DeleteAttachment(ctx context.Context, actor *types.Actor, attachmentID string) error
}

type commentService struct {
	commentRepo    repository.CommentRepository
	taskRepo       repository.TaskRepository
	attachmentRepo repository.AttachmentRepository
	projectRepo    repository.ProjectRepository
	access         AccessService
	files          storage.FileStore
	cleaner        *attachmentCleaner
}

func NewCommentService(
	commentRepo repository.CommentRepository,
	taskRepo repository.TaskRepository,
	attachmentRepo repository.AttachmentRepository,
	projectRepo repository.ProjectRepository,
	access AccessService,
	files storage.FileStore,
) CommentService {
	return &commentService{
		commentRepo:    commentRepo,
		taskRepo:       taskRepo,
		attachmentRepo: attachmentRepo,
		projectRepo:    projectRepo,
		access:         access,
		files:          files,
		cleaner: &attachmentCleaner{
			commentRepo:    commentRepo,
			attachmentRepo: attachmentRepo,
			files:          files,
		},
	}
}

// Create posts a comment on a task. Text is optional only when at least one
// attachment comes with it; a comment with neither is rejected.
func (s *commentService) Create(ctx context.Context, actor *types.Actor, taskID string, content *string, uploads []Upload) (*repository.Comment, error) {
	task, err := s.viewableTask(ctx, actor, taskID)
	if err != nil {
		return nil, err
	}

	trimmed := ""
	if content != nil {
		trimmed = strings.TrimSpace(*content)
	}
	if trimmed == "" && len(uploads) == 0 {
		return nil, fieldErr("content", "is required when no attachments are provided")
	}

	comment := &repository.Comment{
		TaskID:   task.ID,
		AuthorID: actor.ID,
	}
	if trimmed != "" {
		comment.Content = &trimmed
	}

	if err := s.commentRepo.Create(ctx, comment); err != nil {
		return nil, err
	}

	for _, upload := range uploads {
		attachment, err := s.storeAttachment(ctx, actor, repository.OwnerKindComment, comment.ID, upload)
		if err != nil {
			return nil, err
		}
		comment.Attachments = append(comment.Attachments, attachment)
	}

	// Re-read for the author join; attachments were built above.
	saved, err := s.commentRepo.FindByID(ctx, comment.ID)
	if err != nil || saved == nil {
		return comment, nil
	}
	saved.Attachments = comment.Attachments
	return saved, nil
}

func (s *commentService) ListByTask(ctx context.Context, actor *types.Actor, taskID string) ([]*repository.Comment, error) {
	task, err := s.viewableTask(ctx, actor, taskID)
	if err != nil {
		return nil, err
	}

	comments, err := s.commentRepo.FindByTaskID(ctx, task.ID)
	if err != nil {
		return nil, err
	}
	for _, comment := range comments {
		attachments, err := s.attachmentRepo.FindByOwner(ctx, repository.OwnerKindComment, comment.ID)
		if err != nil {
			return nil, err
		}
		comment.Attachments = attachments
	}
	return comments, nil
}

// Thread returns the task together with its full comment list, the shape a
// client re-renders after posting.
func (s *commentService) Thread(ctx context.Context, actor *types.Actor, taskID string) (*repository.Task, []*repository.Comment, error) {
	task, err := s.viewableTask(ctx, actor, taskID)
	if err != nil {
		return nil, nil, err
	}
	comments, err := s.ListByTask(ctx, actor, taskID)
	if err != nil {
		return nil, nil, err
	}
	return task, comments, nil
}

// Update edits comment text. Only the author may edit; the edit cannot leave
// an attachment-free comment without text.
func (s *commentService) Update(ctx context.Context, actor *types.Actor, commentID, content string) (*repository.Comment, error) {
	comment, err := s.commentRepo.FindByID(ctx, commentID)
	if err != nil {
		return nil, err
	}
	if comment == nil {
		return nil, ErrNotFound
	}
	if comment.AuthorID != actor.ID {
		return nil, ErrForbidden
	}

	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		attachments, err := s.attachmentRepo.FindByOwner(ctx, repository.OwnerKindComment, comment.ID)
		if err != nil {
			return nil, err
		}
		if len(attachments) == 0 {
			return nil, fieldErr("content", "is required when no attachments are provided")
		}
		comment.Content = nil
	} else {
		comment.Content = &trimmed
	}

	if err := s.commentRepo.Update(ctx, comment); err != nil {
		return nil, err
	}
	return comment, nil
}

// Delete removes a comment and its attachments. Authors delete their own
// comments; admins delete anyone's. File removal is best effort: a failed
// unlink never blocks the metadata delete, but is reported back wrapped in
// ErrStorage once the rows are gone.
func (s *commentService) Delete(ctx context.Context, actor *types.Actor, commentID string) error {
	comment, err := s.commentRepo.FindByID(ctx, commentID)
	if err != nil {
		return err
	}
	if comment == nil {
		return ErrNotFound
	}
	if comment.AuthorID != actor.ID && !actor.IsAdmin() {
		return ErrForbidden
	}

	cleanupFailed, err := s.cleaner.removeOwner(ctx, repository.OwnerKindComment, comment.ID)
	if err != nil {
		return err
	}

	if err := s.commentRepo.Delete(ctx, commentID); err != nil {
		return err
	}
	if cleanupFailed {
		return errFilesNotRemoved()
	}
	return nil
}

// AttachToTask uploads a file directly onto a task, outside any comment.
func (s *commentService) AttachToTask(ctx context.Context, actor *types.Actor, taskID string, upload Upload) (*repository.Attachment, error) {
	task, err := s.viewableTask(ctx, actor, taskID)
	if err != nil {
		return nil, err
	}
	return s.storeAttachment(ctx, actor, repository.OwnerKindTask, task.ID, upload)
}

func (s *commentService) ListTaskAttachments(ctx context.Context, actor *types.Actor, taskID string) ([]*repository.Attachment, error) {
	task, err := s.viewableTask(ctx, actor, taskID)
	if err != nil {
		return nil, err
	}
	return s.attachmentRepo.FindByOwner(ctx, repository.OwnerKindTask, task.ID)
}

// DeleteAttachment removes a single attachment, uploader or admin only. Same
// best-effort file policy as comment deletion.
func (s *commentService) DeleteAttachment(ctx context.Context, actor *types.Actor, attachmentID string) error {
	attachment, err := s.attachmentRepo.FindByID(ctx, attachmentID)
	if err != nil {
		return err
	}
	if attachment == nil {
		return ErrNotFound
	}
	if attachment.UploaderID != actor.ID && !actor.IsAdmin() {
		return ErrForbidden
	}

	var cleanupFailed bool
	if err := s.files.Delete(attachment.StoragePath); err != nil {
		log.Printf("[Comments] failed to remove file %s: %v", attachment.StoragePath, err)
		cleanupFailed = true
	}
	if err := s.attachmentRepo.Delete(ctx, attachmentID); err != nil {
		return err
	}
	if cleanupFailed {
		return fmt.Errorf("%w: attachment file could not be removed", ErrStorage)
	}
	return nil
}

func (s *commentService) viewableTask(ctx context.Context, actor *types.Actor, taskID string) (*repository.Task, error) {
	task, err := s.taskRepo.FindByID(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if task == nil {
		return nil, ErrNotFound
	}
	if !s.access.CanViewTask(ctx, actor, task) {
		return nil, ErrForbidden
	}
	return task, nil
}

func (s *commentService) storeAttachment(ctx context.Context, actor *types.Actor, ownerKind, ownerID string, upload Upload) (*repository.Attachment, error) {
	if upload.Name == "" {
		return nil, fieldErr("file", "filename is required")
	}

	path, err := s.files.Save(upload.Name, upload.Reader)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorage, err)
	}

	attachment := &repository.Attachment{
		OwnerKind:    ownerKind,
		OwnerID:      ownerID,
		Filename:     upload.Name,
		OriginalName: upload.Name,
		FileSize:     upload.Size,
		MimeType:     upload.MimeType,
		StoragePath:  path,
		UploaderID:   actor.ID,
	}
	if err := s.attachmentRepo.Create(ctx, attachment); err != nil {
		// Roll the file back so no orphan stays on disk.
		if rmErr := s.files.Delete(path); rmErr != nil {
			log.Printf("[Comments] failed to remove orphaned file %s: %v", path, rmErr)
		}
		return nil, err
	}
	return attachment, nil
}
