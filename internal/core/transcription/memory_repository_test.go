package transcription

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memoryRepository はテスト用のインメモリ Repository 実装。
// UpdateStatus / Claim はミューテックスで直列化され、本物のストアと同じく
// 原子的な条件付き更新として振る舞う。
type memoryRepository struct {
	mu   sync.Mutex
	jobs map[uuid.UUID]*Job
	seq  int
}

func newMemoryRepository() *memoryRepository {
	return &memoryRepository{jobs: make(map[uuid.UUID]*Job)}
}

func (r *memoryRepository) Create(ctx context.Context, sourceRef string) (*Job, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, job := range r.jobs {
		if job.SourceRef == sourceRef {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateRef, sourceRef)
		}
	}

	r.seq++
	now := time.Now().Add(time.Duration(r.seq) * time.Microsecond)
	job := &Job{
		ID:        uuid.New(),
		SourceRef: sourceRef,
		Status:    StatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
	r.jobs[job.ID] = job
	return copyJob(job), nil
}

func (r *memoryRepository) GetByID(ctx context.Context, id uuid.UUID) (*Job, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	job, ok := r.jobs[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrJobNotFound, id)
	}
	return copyJob(job), nil
}

func (r *memoryRepository) GetByRef(ctx context.Context, sourceRef string) (*Job, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, job := range r.jobs {
		if job.SourceRef == sourceRef {
			return copyJob(job), nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrJobNotFound, sourceRef)
}

func (r *memoryRepository) ListAll(ctx context.Context) ([]*Job, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	jobs := make([]*Job, 0, len(r.jobs))
	for _, job := range r.jobs {
		jobs = append(jobs, copyJob(job))
	}
	sort.Slice(jobs, func(i, j int) bool { return jobs[i].CreatedAt.After(jobs[j].CreatedAt) })
	return jobs, nil
}

func (r *memoryRepository) ListByStatus(ctx context.Context, status JobStatus) ([]*Job, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	jobs := make([]*Job, 0)
	for _, job := range r.jobs {
		if job.Status == status {
			jobs = append(jobs, copyJob(job))
		}
	}
	sort.Slice(jobs, func(i, j int) bool { return jobs[i].CreatedAt.After(jobs[j].CreatedAt) })
	return jobs, nil
}

func (r *memoryRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status JobStatus, resultText string) (*Job, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	job, ok := r.jobs[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrJobNotFound, id)
	}
	if !job.Status.CanTransitionTo(status) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, job.Status, status)
	}
	job.Status = status
	job.ResultText = resultText
	job.UpdatedAt = time.Now()
	return copyJob(job), nil
}

func (r *memoryRepository) Claim(ctx context.Context, id uuid.UUID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	job, ok := r.jobs[id]
	if !ok {
		return false, nil
	}
	if job.Status != StatusPending {
		return false, nil
	}
	job.Status = StatusProcessing
	job.UpdatedAt = time.Now()
	return true, nil
}

func copyJob(job *Job) *Job {
	c := *job
	return &c
}

var _ Repository = (*memoryRepository)(nil)

func TestMemoryRepository_UpdateStatusRejectsInvalidTransition(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryRepository()

	job, err := repo.Create(ctx, "s3://bucket/uploads/guard.mp3")
	require.NoError(t, err)

	// クレームを経ない終端書き込みは拒否される
	_, err = repo.UpdateStatus(ctx, job.ID, StatusCompleted, "text")
	assert.ErrorIs(t, err, ErrInvalidTransition)

	got, err := repo.GetByID(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusPending, got.Status)
	assert.Empty(t, got.ResultText)

	claimed, err := repo.Claim(ctx, job.ID)
	require.NoError(t, err)
	require.True(t, claimed)

	_, err = repo.UpdateStatus(ctx, job.ID, StatusCompleted, "text")
	require.NoError(t, err)

	// 終端状態からの遷移は常に拒否される
	_, err = repo.UpdateStatus(ctx, job.ID, StatusFailed, "")
	assert.ErrorIs(t, err, ErrInvalidTransition)
}
