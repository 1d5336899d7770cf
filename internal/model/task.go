package model

import "gorm.io/gorm"

// Task is the owning side of an attachment. Only the columns the
// attachment endpoints read are mapped here; the rest of the tasks table
// belongs to the task CRUD routes.
type Task struct {
	gorm.Model
	ProjectID uint   `json:"projectId"`
	Title     string `json:"title"`
}
