package service

import (
	"context"
	"sync"
	"time"

	"github.com/zata-zhangtao/SideBySide/internal/domain"
	"github.com/zata-zhangtao/SideBySide/internal/dto"
	"github.com/zata-zhangtao/SideBySide/internal/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// BatchImage is one uploaded image pending extraction.
type BatchImage struct {
	Filename string
	MimeType string
	Data     []byte
}

// BatchTracker holds in-flight and recently finished batch tasks. Task
// records live in process memory only and are pruned once their TTL
// after completion has passed.
type BatchTracker struct {
	mu    sync.RWMutex
	tasks map[string]*batchTask
	ttl   time.Duration
}

type batchTask struct {
	status      dto.BatchStatusResponse
	completedAt time.Time
}

// NewBatchTracker creates an empty tracker. ttl bounds how long finished
// task records remain pollable.
func NewBatchTracker(ttl time.Duration) *BatchTracker {
	return &BatchTracker{tasks: make(map[string]*batchTask), ttl: ttl}
}

func (t *BatchTracker) put(status dto.BatchStatusResponse) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.pruneLocked()

	task := &batchTask{status: status}
	if status.Status == dto.BatchStatusCompleted {
		task.completedAt = time.Now()
	}
	t.tasks[status.TaskID] = task
}

func (t *BatchTracker) get(taskID string) (dto.BatchStatusResponse, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.pruneLocked()

	task, ok := t.tasks[taskID]
	if !ok {
		return dto.BatchStatusResponse{}, false
	}
	return task.status, true
}

func (t *BatchTracker) pruneLocked() {
	cutoff := time.Now().Add(-t.ttl)
	for id, task := range t.tasks {
		if !task.completedAt.IsZero() && task.completedAt.Before(cutoff) {
			delete(t.tasks, id)
		}
	}
}

// BatchService runs multi-image extraction in the background and serves
// polled progress.
type BatchService interface {
	Submit(ctx context.Context, userID string, images []BatchImage) (*dto.BatchAcceptedResponse, error)
	Status(ctx context.Context, userID, taskID string) (*dto.BatchStatusResponse, error)
}

type batchService struct {
	extractor domain.VocabularyExtractor
	tracker   *BatchTracker
	maxImages int
}

// NewBatchService creates a new BatchService around a shared tracker.
func NewBatchService(extractor domain.VocabularyExtractor, tracker *BatchTracker, maxImages int) BatchService {
	return &batchService{extractor: extractor, tracker: tracker, maxImages: maxImages}
}

// Submit registers the task and returns immediately; the images are
// processed sequentially in a detached goroutine. A started batch always
// runs to completion.
func (s *batchService) Submit(ctx context.Context, userID string, images []BatchImage) (*dto.BatchAcceptedResponse, error) {
	if s.extractor == nil {
		return nil, domain.NewValidationError("image extraction is not configured")
	}
	if len(images) == 0 {
		return nil, domain.NewValidationError("no images provided")
	}
	if len(images) > s.maxImages {
		return nil, domain.NewValidationError("too many images in one batch")
	}

	taskID := uuid.NewString()
	s.tracker.put(dto.BatchStatusResponse{
		TaskID:    taskID,
		UserID:    userID,
		Total:     len(images),
		Status:    dto.BatchStatusProcessing,
		Results:   []dto.BatchItemResult{},
		StartedAt: time.Now().UTC().Format(time.RFC3339),
	})

	go s.process(taskID, images)

	logger.Get().Info("Batch extraction started",
		zap.String("task_id", taskID), zap.Int("total", len(images)))
	return &dto.BatchAcceptedResponse{
		TaskID:  taskID,
		Total:   len(images),
		Status:  dto.BatchStatusProcessing,
		Message: "batch accepted",
	}, nil
}

// process runs outside the request lifecycle, so it uses a fresh context.
// One bad image records its error and the loop moves on.
func (s *batchService) process(taskID string, images []BatchImage) {
	ctx := context.Background()
	log := logger.Get()

	status, ok := s.tracker.get(taskID)
	if !ok {
		return
	}

	for i, img := range images {
		status.CurrentImage = img.Filename
		s.tracker.put(status)

		item := dto.BatchItemResult{Filename: img.Filename, Index: i}
		candidates, err := s.extractor.ExtractFromImage(ctx, img.Data, img.MimeType)
		if err != nil {
			item.Status = "error"
			item.Error = err.Error()
			status.Errors++
			log.Warn("Batch image failed",
				zap.String("task_id", taskID), zap.String("filename", img.Filename), zap.Error(err))
		} else {
			item.Status = "ok"
			item.Words = candidatesToInputs(candidates)
			item.Count = len(item.Words)
		}

		status.Results = append(status.Results, item)
		status.Completed++
		s.tracker.put(status)
	}

	status.Status = dto.BatchStatusCompleted
	status.CurrentImage = ""
	status.CompletedAt = time.Now().UTC().Format(time.RFC3339)
	s.tracker.put(status)

	log.Info("Batch extraction finished",
		zap.String("task_id", taskID),
		zap.Int("completed", status.Completed),
		zap.Int("errors", status.Errors))
}

// Status returns the task's progress record. Tasks are private to their
// submitter.
func (s *batchService) Status(ctx context.Context, userID, taskID string) (*dto.BatchStatusResponse, error) {
	status, ok := s.tracker.get(taskID)
	if !ok {
		return nil, domain.NewNotFoundError("unknown task")
	}
	if status.UserID != userID {
		return nil, domain.NewPermissionError("task belongs to another user")
	}
	return &status, nil
}
