package service

import (
	"context"
	"fmt"
	"log"

	"github.com/taskhive/taskhive-backend/internal/repository"
	"github.com/taskhive/taskhive-backend/internal/storage"
)

// attachmentCleaner drops attachment rows and their files for an owner.
// Attachment rows are polymorphic and carry no FK, so every path that deletes
// an owner runs through here before dropping the owner's own row.
type attachmentCleaner struct {
	commentRepo    repository.CommentRepository
	attachmentRepo repository.AttachmentRepository
	files          storage.FileStore
}

// removeOwner removes every attachment of one owner. File removal is best
// effort: the rows always go, and a failed unlink is reported through the
// returned flag instead of blocking the delete.
func (c *attachmentCleaner) removeOwner(ctx context.Context, ownerKind, ownerID string) (bool, error) {
	attachments, err := c.attachmentRepo.FindByOwner(ctx, ownerKind, ownerID)
	if err != nil {
		return false, err
	}

	var cleanupFailed bool
	for _, attachment := range attachments {
		if err := c.files.Delete(attachment.StoragePath); err != nil {
			log.Printf("[Attachments] failed to remove file %s: %v", attachment.StoragePath, err)
			cleanupFailed = true
		}
		if err := c.attachmentRepo.Delete(ctx, attachment.ID); err != nil {
			return cleanupFailed, err
		}
	}
	return cleanupFailed, nil
}

// removeTask removes the attachments of a task and of every comment under it.
func (c *attachmentCleaner) removeTask(ctx context.Context, taskID string) (bool, error) {
	cleanupFailed, err := c.removeOwner(ctx, repository.OwnerKindTask, taskID)
	if err != nil {
		return cleanupFailed, err
	}

	comments, err := c.commentRepo.FindByTaskID(ctx, taskID)
	if err != nil {
		return cleanupFailed, err
	}
	for _, comment := range comments {
		failed, err := c.removeOwner(ctx, repository.OwnerKindComment, comment.ID)
		cleanupFailed = cleanupFailed || failed
		if err != nil {
			return cleanupFailed, err
		}
	}
	return cleanupFailed, nil
}

func errFilesNotRemoved() error {
	return fmt.Errorf("%w: some attachment files could not be removed", ErrStorage)
}
