package queue

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const photoUploadKey = "queue:photo_uploads"

type PayloadType string

const (
	// PayloadBase64 carries the image bytes inline, base64-encoded.
	PayloadBase64 PayloadType = "base64"
	// PayloadFile carries a path to a staged file on transient local storage.
	PayloadFile PayloadType = "file"
)

type StagedPhoto struct {
	Type PayloadType `json:"type"`
	// Data is base64 content for inline payloads, a filesystem path otherwise.
	Data string `json:"data"`
}

// PhotoUploadJob asks the upload worker to push the staged photos to the
// image host and write the resulting ids/URLs back onto the profile.
type PhotoUploadJob struct {
	ProfileID uuid.UUID              `json:"profile_id"`
	Email     string                 `json:"email"`
	Photos    map[string]StagedPhoto `json:"photos"`
}

// ErrEmpty is returned by Dequeue when no job arrived within the poll window.
var ErrEmpty = errors.New("queue is empty")

// TaskQueue is the handoff between the request cycle and the upload worker.
// Enqueue returns as soon as the job is durably queued; delivery is
// at-least-once, so consumers must be idempotent.
type TaskQueue interface {
	Enqueue(ctx context.Context, job PhotoUploadJob) error
	// Dequeue blocks up to the poll window and returns ErrEmpty on timeout.
	Dequeue(ctx context.Context) (*PhotoUploadJob, error)
}

type redisTaskQueue struct {
	client *redis.Client
	poll   time.Duration
}

func NewRedisTaskQueue(client *redis.Client) TaskQueue {
	return &redisTaskQueue{
		client: client,
		poll:   5 * time.Second,
	}
}

func (q *redisTaskQueue) Enqueue(ctx context.Context, job PhotoUploadJob) error {
	payload, err := json.Marshal(job)
	if err != nil {
		return err
	}

	return q.client.LPush(ctx, photoUploadKey, payload).Err()
}

func (q *redisTaskQueue) Dequeue(ctx context.Context) (*PhotoUploadJob, error) {
	result, err := q.client.BRPop(ctx, q.poll, photoUploadKey).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrEmpty
		}
		return nil, err
	}

	// BRPop returns [key, value].
	if len(result) < 2 {
		return nil, ErrEmpty
	}

	var job PhotoUploadJob
	if err := json.Unmarshal([]byte(result[1]), &job); err != nil {
		return nil, err
	}

	return &job, nil
}
