package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"tush00nka/taskboard/internal/model"

	"github.com/redis/go-redis/v9"
)

// EventRepository publishes attachment events on a per-task channel so
// other instances can relay them to their websocket clients.
type EventRepository interface {
	Publish(ctx context.Context, event model.AttachmentEvent) error
}

type eventRepository struct {
	rdb *redis.Client
}

func NewRedisClient(addr, password string, db int) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	if err := rdb.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return rdb, nil
}

func NewEventRepository(rdb *redis.Client) EventRepository {
	return &eventRepository{rdb: rdb}
}

// EventChannel is the pub/sub channel for a task's attachment events.
func EventChannel(taskID uint) string {
	return fmt.Sprintf("task:%d:attachments", taskID)
}

func (r *eventRepository) Publish(ctx context.Context, event model.AttachmentEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}
	return r.rdb.Publish(ctx, EventChannel(event.TaskID), data).Err()
}
