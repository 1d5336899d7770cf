package service

import (
	"context"
	"errors"
	"io"
	"tush00nka/taskboard/internal/model"
)

type AttachmentService interface {
	Upload(ctx context.Context, req UploadRequest) ([]model.Attachment, error)
	GetAttachment(ctx context.Context, id string) (*model.Attachment, error)
	ListForTask(ctx context.Context, taskID uint) ([]model.Attachment, error)
	Open(ctx context.Context, id string) (*Download, error)
	Delete(ctx context.Context, id string) error
}

// UploadRequest carries an unparsed multipart upload addressed to a task.
type UploadRequest struct {
	TaskID      uint
	UserID      uint
	ContentType string
	Body        io.Reader
}

// Download is an open attachment. The caller closes Content.
type Download struct {
	Attachment *model.Attachment
	Content    io.ReadCloser
	Size       int64
}

// EventPublisher receives attachment events after the store and the
// database agree on the change.
type EventPublisher interface {
	Publish(ctx context.Context, event model.AttachmentEvent) error
}

// Publishers fans an event out to every publisher and joins their errors.
type Publishers []EventPublisher

func (p Publishers) Publish(ctx context.Context, event model.AttachmentEvent) error {
	var errs []error
	for _, pub := range p {
		if pub == nil {
			continue
		}
		if err := pub.Publish(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
