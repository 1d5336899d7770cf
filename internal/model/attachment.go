package model

import "time"

// Attachment describes one stored file. Name and Type come from the
// uploading client and are only used for display and download headers.
// Size is the number of bytes actually written.
type Attachment struct {
	ID         string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	TaskID     uint      `gorm:"index;not null" json:"taskId"`
	Name       string    `gorm:"not null" json:"name"`
	StoredName string    `gorm:"uniqueIndex;not null" json:"storedName"`
	URL        string    `gorm:"not null" json:"url"`
	Type       string    `json:"type"`
	Size       int64     `gorm:"not null" json:"size"`
	UploadedBy uint      `gorm:"index" json:"uploadedBy"`
	UploadedAt time.Time `gorm:"not null" json:"uploadedAt"`
}

// Event types published when the set of attachments on a task changes.
const (
	EventAttachmentCreated = "attachment.created"
	EventAttachmentDeleted = "attachment.deleted"
)

// AttachmentEvent is broadcast to task subscribers.
type AttachmentEvent struct {
	Type       string      `json:"type"`
	TaskID     uint        `json:"taskId"`
	Attachment *Attachment `json:"attachment"`
	Timestamp  time.Time   `json:"timestamp"`
}
