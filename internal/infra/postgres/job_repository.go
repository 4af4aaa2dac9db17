package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/jinford/sonorize/internal/core/transcription"
	"github.com/jinford/sonorize/internal/infra/postgres/sqlc"
)

// uniqueViolation はPostgreSQLの一意制約違反のエラーコード
const uniqueViolation = "23505"

// JobRepository は文字起こしジョブの永続化アダプター
type JobRepository struct {
	q sqlc.Querier
}

// NewJobRepository は新しいジョブリポジトリを作成します
func NewJobRepository(q sqlc.Querier) *JobRepository {
	return &JobRepository{q: q}
}

var _ transcription.Repository = (*JobRepository)(nil)

// Create は status=PENDING の新規ジョブを作成します。
// source_ref の一意制約違反は ErrDuplicateRef にマップします。
func (r *JobRepository) Create(ctx context.Context, sourceRef string) (*transcription.Job, error) {
	row, err := r.q.CreateJob(ctx, sqlc.CreateJobParams{
		ID:        UUIDToPgtype(uuid.New()),
		SourceRef: sourceRef,
	})
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return nil, fmt.Errorf("%w: %s", transcription.ErrDuplicateRef, sourceRef)
		}
		return nil, fmt.Errorf("failed to create job: %w", err)
	}
	return toJob(row), nil
}

// GetByID はIDでジョブを取得します
func (r *JobRepository) GetByID(ctx context.Context, id uuid.UUID) (*transcription.Job, error) {
	row, err := r.q.GetJob(ctx, UUIDToPgtype(id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", transcription.ErrJobNotFound, id)
		}
		return nil, fmt.Errorf("failed to get job: %w", err)
	}
	return toJob(row), nil
}

// GetByRef は sourceRef でジョブを取得します
func (r *JobRepository) GetByRef(ctx context.Context, sourceRef string) (*transcription.Job, error) {
	row, err := r.q.GetJobBySourceRef(ctx, sourceRef)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", transcription.ErrJobNotFound, sourceRef)
		}
		return nil, fmt.Errorf("failed to get job by ref: %w", err)
	}
	return toJob(row), nil
}

// ListAll は全ジョブを作成日時の降順で取得します
func (r *JobRepository) ListAll(ctx context.Context) ([]*transcription.Job, error) {
	rows, err := r.q.ListJobs(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list jobs: %w", err)
	}
	jobs := make([]*transcription.Job, 0, len(rows))
	for _, row := range rows {
		jobs = append(jobs, toJob(row))
	}
	return jobs, nil
}

// ListByStatus は指定ステータスのジョブを作成日時の降順で取得します
func (r *JobRepository) ListByStatus(ctx context.Context, status transcription.JobStatus) ([]*transcription.Job, error) {
	rows, err := r.q.ListJobsByStatus(ctx, string(status))
	if err != nil {
		return nil, fmt.Errorf("failed to list jobs by status: %w", err)
	}
	jobs := make([]*transcription.Job, 0, len(rows))
	for _, row := range rows {
		jobs = append(jobs, toJob(row))
	}
	return jobs, nil
}

// UpdateStatus はジョブのステータスと本文を単一のUPDATE文で更新します。
// UPDATE の WHERE 句が状態機械を強制し、許可されない遷移では行がマッチしない。
func (r *JobRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status transcription.JobStatus, resultText string) (*transcription.Job, error) {
	row, err := r.q.UpdateJobStatus(ctx, sqlc.UpdateJobStatusParams{
		ID:         UUIDToPgtype(id),
		Status:     string(status),
		ResultText: StringToNullableText(resultText),
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// 行が無いのか、遷移が拒否されたのかを切り分ける
			current, getErr := r.q.GetJob(ctx, UUIDToPgtype(id))
			if getErr != nil {
				return nil, fmt.Errorf("%w: %s", transcription.ErrJobNotFound, id)
			}
			if !transcription.JobStatus(current.Status).CanTransitionTo(status) {
				return nil, fmt.Errorf("%w: %s -> %s", transcription.ErrInvalidTransition, current.Status, status)
			}
			// 行は存在し遷移も許可されるのに行がマッチしなかった場合は、
			// UPDATE と再読の間に並行更新が挟まっている
			return nil, fmt.Errorf("job %s was updated concurrently", id)
		}
		return nil, fmt.Errorf("failed to update job status: %w", err)
	}
	return toJob(row), nil
}

// Claim は status='PENDING' の行に限り PROCESSING へ更新する条件付きUPDATE。
// 行レベルの原子性に乗るため、並行するクレームのうち勝者は常に1つになる。
func (r *JobRepository) Claim(ctx context.Context, id uuid.UUID) (bool, error) {
	affected, err := r.q.ClaimJob(ctx, UUIDToPgtype(id))
	if err != nil {
		return false, fmt.Errorf("failed to claim job: %w", err)
	}
	return affected == 1, nil
}

func toJob(row sqlc.Job) *transcription.Job {
	return &transcription.Job{
		ID:         PgtypeToUUID(row.ID),
		SourceRef:  row.SourceRef,
		Status:     transcription.JobStatus(row.Status),
		ResultText: PgtextToString(row.ResultText),
		CreatedAt:  PgtypeToTime(row.CreatedAt),
		UpdatedAt:  PgtypeToTime(row.UpdatedAt),
	}
}
