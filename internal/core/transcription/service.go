package transcription

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
)

// Service は文字起こしジョブのライフサイクルを管理するユースケース層。
// 受付（重複排除）、状態遷移、ワーカー実行、PENDING ジョブの再駆動を担う。
type Service struct {
	repository  Repository
	storage     StorageGateway
	transcriber Transcriber
	dispatcher  Dispatcher

	validateSource bool
	logger         *slog.Logger
}

type serviceOptions struct {
	validateSource bool
	logger         *slog.Logger
}

// ServiceOption は Service のオプション設定
type ServiceOption func(*serviceOptions)

// WithServiceLogger は Service にロガーを設定する
func WithServiceLogger(logger *slog.Logger) ServiceOption {
	return func(o *serviceOptions) {
		o.logger = logger
	}
}

// WithSourceValidation は submit 時にストレージ上のオブジェクト存在確認を行う
func WithSourceValidation(enabled bool) ServiceOption {
	return func(o *serviceOptions) {
		o.validateSource = enabled
	}
}

// NewService は新しい Service を作成する
func NewService(
	repository Repository,
	storage StorageGateway,
	transcriber Transcriber,
	dispatcher Dispatcher,
	opts ...ServiceOption,
) *Service {
	options := serviceOptions{
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(&options)
	}
	if options.logger == nil {
		options.logger = slog.Default()
	}

	return &Service{
		repository:     repository,
		storage:        storage,
		transcriber:    transcriber,
		dispatcher:     dispatcher,
		validateSource: options.validateSource,
		logger:         options.logger,
	}
}

// Submit は音声リファレンスを受け付け、ジョブを作成して非同期実行を予約する。
// 同じ sourceRef が既に存在する場合は既存ジョブをそのまま返す（冪等）。
// 戻り値の created は新規作成されたかどうかを表す。
func (s *Service) Submit(ctx context.Context, sourceRef string) (*Job, bool, error) {
	if sourceRef == "" {
		return nil, false, fmt.Errorf("source ref is required")
	}

	existing, err := s.repository.GetByRef(ctx, sourceRef)
	if err == nil {
		s.logger.Info("既存ジョブを返却", "jobID", existing.ID, "sourceRef", sourceRef, "status", existing.Status)
		return existing, false, nil
	}
	if !errors.Is(err, ErrJobNotFound) {
		return nil, false, fmt.Errorf("failed to look up job by ref: %w", err)
	}

	if s.validateSource {
		exists, err := s.storage.Exists(ctx, sourceRef)
		if err != nil {
			return nil, false, fmt.Errorf("failed to check source object: %w", err)
		}
		if !exists {
			return nil, false, fmt.Errorf("%w: %s", ErrObjectNotFound, sourceRef)
		}
	}

	job, err := s.repository.Create(ctx, sourceRef)
	if err != nil {
		// 並行 submit と競合した場合は作成済みの方を返す
		if errors.Is(err, ErrDuplicateRef) {
			existing, lookupErr := s.repository.GetByRef(ctx, sourceRef)
			if lookupErr != nil {
				return nil, false, fmt.Errorf("failed to look up job after duplicate ref: %w", lookupErr)
			}
			return existing, false, nil
		}
		return nil, false, fmt.Errorf("failed to create job: %w", err)
	}

	s.logger.Info("ジョブを作成", "jobID", job.ID, "sourceRef", sourceRef)

	if err := s.dispatcher.Dispatch(job.ID); err != nil {
		// キュー飽和はエラーにしない。ジョブは PENDING のまま残り、
		// ReconcilePending で回収できる。
		s.logger.Warn("ディスパッチに失敗。ジョブはPENDINGのまま残ります", "jobID", job.ID, "error", err)
	}

	return job, true, nil
}

// Execute はディスパッチャのワーカーが1ジョブに対して実行する逐次プロトコル。
// コラボレータの失敗はすべてここで捕捉して FAILED に落とし、外へ伝播させない。
func (s *Service) Execute(ctx context.Context, jobID uuid.UUID) {
	claimed, err := s.repository.Claim(ctx, jobID)
	if err != nil {
		s.logger.Error("ジョブのクレームに失敗", "jobID", jobID, "error", err)
		return
	}
	if !claimed {
		// 既に他のワーカーに拾われたか終端状態。二重実行ガード。
		s.logger.Debug("ジョブはPENDINGではないためスキップ", "jobID", jobID)
		return
	}

	job, err := s.repository.GetByID(ctx, jobID)
	if err != nil {
		s.fail(ctx, jobID, fmt.Errorf("failed to load claimed job: %w", err))
		return
	}

	audio, err := s.storage.Fetch(ctx, job.SourceRef)
	if err != nil {
		s.fail(ctx, jobID, fmt.Errorf("failed to fetch audio object: %w", err))
		return
	}

	text, err := s.transcriber.Transcribe(ctx, job.SourceRef, audio)
	if err != nil {
		s.fail(ctx, jobID, fmt.Errorf("failed to transcribe audio: %w", err))
		return
	}

	if _, err := s.repository.UpdateStatus(ctx, jobID, StatusCompleted, text); err != nil {
		s.logger.Error("COMPLETEDへの更新に失敗", "jobID", jobID, "error", err)
		return
	}

	s.logger.Info("文字起こしが完了", "jobID", jobID, "sourceRef", job.SourceRef, "chars", len(text))
}

// fail はジョブを終端の FAILED に落とし、理由をログに残す。
// 失敗理由はAPIには公開しない。
func (s *Service) fail(ctx context.Context, jobID uuid.UUID, cause error) {
	s.logger.Error("ジョブ処理に失敗", "jobID", jobID, "error", cause)
	if _, err := s.repository.UpdateStatus(ctx, jobID, StatusFailed, ""); err != nil {
		s.logger.Error("FAILEDへの更新に失敗", "jobID", jobID, "error", err)
	}
}

// ReconcilePending は PENDING のまま残っているジョブをディスパッチャへ再投入し、
// 投入できた件数を返す。プロセス再起動でインメモリキューが失われた場合の回復経路。
// PROCESSING のジョブは対象外。処理中にクラッシュしたジョブは PROCESSING のまま残る。
func (s *Service) ReconcilePending(ctx context.Context) (int, error) {
	pending, err := s.repository.ListByStatus(ctx, StatusPending)
	if err != nil {
		return 0, fmt.Errorf("failed to list pending jobs: %w", err)
	}

	count := 0
	for _, job := range pending {
		if err := s.dispatcher.Dispatch(job.ID); err != nil {
			s.logger.Warn("再投入に失敗", "jobID", job.ID, "error", err)
			continue
		}
		count++
	}

	s.logger.Info("PENDINGジョブを再投入", "found", len(pending), "requeued", count)
	return count, nil
}

// GetJob はIDでジョブを取得する
func (s *Service) GetJob(ctx context.Context, id uuid.UUID) (*Job, error) {
	if id == uuid.Nil {
		return nil, fmt.Errorf("job ID is required")
	}
	job, err := s.repository.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrJobNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get job: %w", err)
	}
	return job, nil
}

// ListJobs は全ジョブを作成日時の降順で返す
func (s *Service) ListJobs(ctx context.Context) ([]*Job, error) {
	jobs, err := s.repository.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list jobs: %w", err)
	}
	return jobs, nil
}

// ListJobsByStatus は指定ステータスのジョブを作成日時の降順で返す
func (s *Service) ListJobsByStatus(ctx context.Context, status JobStatus) ([]*Job, error) {
	if !status.IsValid() {
		return nil, fmt.Errorf("invalid job status: %s", status)
	}
	jobs, err := s.repository.ListByStatus(ctx, status)
	if err != nil {
		return nil, fmt.Errorf("failed to list jobs by status: %w", err)
	}
	return jobs, nil
}

// IssueUpload は新規音声アップロード用の期限付き資格情報を発行する
func (s *Service) IssueUpload(ctx context.Context, fileName string) (*UploadCredential, error) {
	if fileName == "" {
		return nil, fmt.Errorf("file name is required")
	}
	cred, err := s.storage.IssueUploadCredential(ctx, fileName)
	if err != nil {
		return nil, fmt.Errorf("failed to issue upload credential: %w", err)
	}
	return cred, nil
}
