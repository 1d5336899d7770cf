package service

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"path"
	"path/filepath"
	"strings"
	"time"
	"tush00nka/taskboard/internal/model"
	"tush00nka/taskboard/internal/pkg/multipart"
	"tush00nka/taskboard/internal/pkg/storage"
	"tush00nka/taskboard/internal/repository"

	"github.com/google/uuid"
	"pkt.systems/pslog"
)

const (
	defaultContentType = "application/octet-stream"
	maxExtensionLength = 16
)

type AttachmentOptions struct {
	MaxFileSize int64
	URLPrefix   string
}

// attachmentService implements AttachmentService.
type attachmentService struct {
	tasks       repository.TaskRepository
	attachments repository.AttachmentRepository
	store       storage.Store
	events      EventPublisher
	logger      pslog.Logger
	opts        AttachmentOptions
	now         func() time.Time
}

func NewAttachmentService(
	tasks repository.TaskRepository,
	attachments repository.AttachmentRepository,
	store storage.Store,
	events EventPublisher,
	logger pslog.Logger,
	opts AttachmentOptions,
) AttachmentService {
	if opts.MaxFileSize <= 0 {
		opts.MaxFileSize = DefaultMaxFileSize
	}
	if opts.URLPrefix == "" {
		opts.URLPrefix = "/uploads"
	}
	if events == nil {
		events = Publishers(nil)
	}

	return &attachmentService{
		tasks:       tasks,
		attachments: attachments,
		store:       store,
		events:      events,
		logger:      logger.With("component", "attachments"),
		opts:        opts,
		now:         time.Now,
	}
}

// Upload stores every file part of the request in body order. The first
// failing part stops the request; parts stored before it are kept.
func (s *attachmentService) Upload(ctx context.Context, req UploadRequest) ([]model.Attachment, error) {
	boundary, err := multipart.Boundary(req.ContentType)
	if err != nil {
		if errors.Is(err, multipart.ErrNotMultipart) {
			return nil, fmt.Errorf("%w: %v", model.ErrUnsupportedMediaType, err)
		}
		return nil, fmt.Errorf("%w: %v", model.ErrMalformedRequest, err)
	}

	if err := s.ensureTask(ctx, req.TaskID); err != nil {
		return nil, err
	}

	body, err := io.ReadAll(req.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %w", model.ErrInternal, err)
	}

	parts := multipart.Parse(body, boundary)
	if len(parts) == 0 {
		return nil, fmt.Errorf("%w: no files in request", model.ErrMalformedRequest)
	}

	created := make([]model.Attachment, 0, len(parts))
	for _, part := range parts {
		if err := ValidatePart(part, s.opts.MaxFileSize); err != nil {
			s.logger.Warn("attachment.upload.rejected",
				"task_id", req.TaskID, "filename", part.Filename, "size", len(part.Data), "stored_before", len(created))
			return nil, err
		}

		attachment, err := s.persist(ctx, req, part)
		if err != nil {
			return nil, err
		}
		created = append(created, *attachment)

		s.publish(ctx, model.EventAttachmentCreated, attachment)
	}

	return created, nil
}

func (s *attachmentService) ensureTask(ctx context.Context, taskID uint) error {
	ok, err := s.tasks.Exists(ctx, taskID)
	if err != nil {
		return fmt.Errorf("%w: look up task: %w", model.ErrInternal, err)
	}
	if !ok {
		return fmt.Errorf("%w: task %d", model.ErrNotFound, taskID)
	}
	return nil
}

// persist writes the part's bytes, then records them.
func (s *attachmentService) persist(ctx context.Context, req UploadRequest, part multipart.Part) (*model.Attachment, error) {
	now := s.now()
	storedName := StoredName(now, part.Filename)

	if err := s.store.Put(ctx, storedName, part.Data); err != nil {
		return nil, fmt.Errorf("%w: write %s: %w", model.ErrInternal, part.Filename, err)
	}

	contentType := part.ContentType
	if contentType == "" {
		contentType = defaultContentType
	}

	attachment := &model.Attachment{
		ID:         uuid.NewString(),
		TaskID:     req.TaskID,
		Name:       part.Filename,
		StoredName: storedName,
		URL:        path.Join(s.opts.URLPrefix, storedName),
		Type:       contentType,
		Size:       int64(len(part.Data)),
		UploadedBy: req.UserID,
		UploadedAt: now.UTC(),
	}

	if err := s.attachments.Create(ctx, attachment); err != nil {
		if rmErr := s.store.Remove(context.WithoutCancel(ctx), storedName); rmErr != nil {
			s.logger.Error("attachment.upload.orphaned", "stored_name", storedName, "error", rmErr)
		}
		return nil, fmt.Errorf("%w: record %s: %w", model.ErrInternal, part.Filename, err)
	}

	s.logger.Info("attachment.upload.stored",
		"id", attachment.ID, "task_id", attachment.TaskID, "stored_name", storedName, "size", attachment.Size)
	return attachment, nil
}

func (s *attachmentService) GetAttachment(ctx context.Context, id string) (*model.Attachment, error) {
	attachment, err := s.attachments.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return nil, fmt.Errorf("%w: attachment %s", model.ErrNotFound, id)
		}
		return nil, fmt.Errorf("%w: look up attachment: %w", model.ErrInternal, err)
	}
	return attachment, nil
}

func (s *attachmentService) ListForTask(ctx context.Context, taskID uint) ([]model.Attachment, error) {
	if err := s.ensureTask(ctx, taskID); err != nil {
		return nil, err
	}

	attachments, err := s.attachments.FindByTask(ctx, taskID)
	if err != nil {
		return nil, fmt.Errorf("%w: list attachments: %w", model.ErrInternal, err)
	}
	return attachments, nil
}

// Open fails with model.ErrNotFound when either the record or its file is
// missing.
func (s *attachmentService) Open(ctx context.Context, id string) (*Download, error) {
	attachment, err := s.GetAttachment(ctx, id)
	if err != nil {
		return nil, err
	}

	content, size, err := s.store.Open(ctx, attachment.StoredName)
	if err != nil {
		if errors.Is(err, storage.ErrNotExist) {
			s.logger.Warn("attachment.download.file_missing", "id", id, "stored_name", attachment.StoredName)
			return nil, fmt.Errorf("%w: file for attachment %s", model.ErrNotFound, id)
		}
		return nil, fmt.Errorf("%w: open %s: %w", model.ErrInternal, attachment.StoredName, err)
	}

	return &Download{Attachment: attachment, Content: content, Size: size}, nil
}

// Delete removes the file first and the record second.
func (s *attachmentService) Delete(ctx context.Context, id string) error {
	attachment, err := s.GetAttachment(ctx, id)
	if err != nil {
		return err
	}

	if err := s.store.Remove(ctx, attachment.StoredName); err != nil {
		return fmt.Errorf("%w: remove file: %w", model.ErrInternal, err)
	}

	if err := s.attachments.Delete(ctx, id); err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return fmt.Errorf("%w: attachment %s", model.ErrNotFound, id)
		}
		return fmt.Errorf("%w: delete record: %w", model.ErrInternal, err)
	}

	s.logger.Info("attachment.deleted", "id", id, "task_id", attachment.TaskID)
	s.publish(ctx, model.EventAttachmentDeleted, attachment)
	return nil
}

func (s *attachmentService) publish(ctx context.Context, eventType string, attachment *model.Attachment) {
	event := model.AttachmentEvent{
		Type:       eventType,
		TaskID:     attachment.TaskID,
		Attachment: attachment,
		Timestamp:  s.now().UTC(),
	}
	if err := s.events.Publish(ctx, event); err != nil {
		s.logger.Warn("attachment.event.publish_failed", "type", eventType, "id", attachment.ID, "error", err)
	}
}

// StoredName derives the on-disk name for an upload: upload time in
// milliseconds, a random suffix, and the client's extension when it is
// short and alphanumeric.
func StoredName(now time.Time, filename string) string {
	id := uuid.New()
	suffix := hex.EncodeToString(id[:6])
	return fmt.Sprintf("%d-%s%s", now.UnixMilli(), suffix, safeExtension(filename))
}

func safeExtension(filename string) string {
	filename = strings.ReplaceAll(filename, `\`, "/")
	ext := strings.ToLower(filepath.Ext(path.Base(filename)))
	if len(ext) < 2 || len(ext) > maxExtensionLength {
		return ""
	}
	for _, r := range ext[1:] {
		if (r < 'a' || r > 'z') && (r < '0' || r > '9') {
			return ""
		}
	}
	return ext
}
