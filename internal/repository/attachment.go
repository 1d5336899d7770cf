package repository

import (
	"context"
	"errors"
	"tush00nka/taskboard/internal/model"

	"gorm.io/gorm"
)

type AttachmentRepository interface {
	Create(ctx context.Context, attachment *model.Attachment) error
	FindByID(ctx context.Context, id string) (*model.Attachment, error)
	FindByTask(ctx context.Context, taskID uint) ([]model.Attachment, error)
	Delete(ctx context.Context, id string) error
}

type attachmentRepository struct {
	db *gorm.DB
}

func NewAttachmentRepository(db *gorm.DB) AttachmentRepository {
	return &attachmentRepository{db: db}
}

func (r *attachmentRepository) Create(ctx context.Context, attachment *model.Attachment) error {
	return r.db.WithContext(ctx).Create(attachment).Error
}

// FindByID returns model.ErrNotFound when no record has the id.
func (r *attachmentRepository) FindByID(ctx context.Context, id string) (*model.Attachment, error) {
	var attachment model.Attachment
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&attachment).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, model.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &attachment, nil
}

func (r *attachmentRepository) FindByTask(ctx context.Context, taskID uint) ([]model.Attachment, error) {
	attachments := []model.Attachment{}
	err := r.db.WithContext(ctx).
		Where("task_id = ?", taskID).
		Order("uploaded_at ASC").
		Find(&attachments).Error
	if err != nil {
		return nil, err
	}
	return attachments, nil
}

// Delete returns model.ErrNotFound when nothing was removed, so a
// concurrent second delete of the same id reports not found.
func (r *attachmentRepository) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.Attachment{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return model.ErrNotFound
	}
	return nil
}
