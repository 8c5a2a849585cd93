package worker

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/nextgenbank/onboarding-api/internal/queue"
	"github.com/nextgenbank/onboarding-api/internal/repository"
	"github.com/nextgenbank/onboarding-api/pkg/storage"
)

const uploadFolder = "profiles"

// PhotoUploadWorker drains the photo-upload queue and pushes staged images to
// the image host, writing the resulting public id and URL back onto the
// profile. Write-backs are per-field and idempotent, so a redelivered job is
// harmless.
type PhotoUploadWorker struct {
	tasks   queue.TaskQueue
	repo    repository.ProfileRepository
	storage storage.ImageStorage
}

func NewPhotoUploadWorker(tasks queue.TaskQueue, repo repository.ProfileRepository, imageStorage storage.ImageStorage) *PhotoUploadWorker {
	return &PhotoUploadWorker{
		tasks:   tasks,
		repo:    repo,
		storage: imageStorage,
	}
}

// Start consumes jobs until the context is cancelled. Run it in a goroutine.
func (w *PhotoUploadWorker) Start(ctx context.Context) {
	for {
		job, err := w.tasks.Dequeue(ctx)
		if err != nil {
			if errors.Is(err, queue.ErrEmpty) {
				continue
			}
			if ctx.Err() != nil {
				return
			}
			log.Printf("photo upload worker: dequeue failed: %v", err)
			continue
		}

		w.Process(ctx, job)
	}
}

// Process uploads every photo in the job. On any failure it deletes the
// staged files it was handed and stops; fields that already uploaded keep
// their new values, there is no rollback and no retry.
func (w *PhotoUploadWorker) Process(ctx context.Context, job *queue.PhotoUploadJob) {
	for field, photo := range job.Photos {
		if err := w.uploadOne(ctx, job, field, photo); err != nil {
			log.Printf("failed to upload photos for profile %s (%s): %v", job.ProfileID, job.Email, err)
			w.cleanup(job)
			return
		}
		delete(job.Photos, field)
	}

	log.Printf("photos for profile %s (%s) uploaded successfully", job.ProfileID, job.Email)
}

func (w *PhotoUploadWorker) uploadOne(ctx context.Context, job *queue.PhotoUploadJob, field string, photo queue.StagedPhoto) error {
	var reader io.Reader

	switch photo.Type {
	case queue.PayloadBase64:
		content, err := base64.StdEncoding.DecodeString(photo.Data)
		if err != nil {
			return fmt.Errorf("invalid base64 payload for %s: %w", field, err)
		}
		reader = bytes.NewReader(content)

	case queue.PayloadFile:
		file, err := os.Open(photo.Data)
		if err != nil {
			return fmt.Errorf("failed to open staged file for %s: %w", field, err)
		}
		defer file.Close()
		reader = file

	default:
		return fmt.Errorf("unknown payload type %q for %s", photo.Type, field)
	}

	result, err := w.storage.UploadImage(ctx, reader, uploadFolder, fmt.Sprintf("%s_%s", job.ProfileID, field))
	if err != nil {
		return err
	}

	if err := w.repo.SetPhoto(ctx, job.ProfileID, field, result.PublicID, result.SecureURL); err != nil {
		return err
	}

	if photo.Type == queue.PayloadFile {
		os.Remove(photo.Data)
	}

	return nil
}

func (w *PhotoUploadWorker) cleanup(job *queue.PhotoUploadJob) {
	for _, photo := range job.Photos {
		if photo.Type == queue.PayloadFile {
			os.Remove(photo.Data)
		}
	}
}
