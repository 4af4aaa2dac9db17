package transcription

import (
	"context"

	"github.com/google/uuid"
)

// Repository はジョブの永続化層が満たすべきポート
type Repository interface {
	// Create は status=PENDING の新規ジョブを作成する。
	// sourceRef が既に存在する場合は ErrDuplicateRef を返す。
	Create(ctx context.Context, sourceRef string) (*Job, error)

	// GetByID はIDでジョブを取得する。存在しなければ ErrJobNotFound。
	GetByID(ctx context.Context, id uuid.UUID) (*Job, error)

	// GetByRef は sourceRef でジョブを取得する。存在しなければ ErrJobNotFound。
	GetByRef(ctx context.Context, sourceRef string) (*Job, error)

	// ListAll は全ジョブを作成日時の降順で返す
	ListAll(ctx context.Context) ([]*Job, error)

	// ListByStatus は指定ステータスのジョブを作成日時の降順で返す
	ListByStatus(ctx context.Context, status JobStatus) ([]*Job, error)

	// UpdateStatus はジョブのステータス（と COMPLETED 時の本文）を原子的に更新する。
	// 並行する読み手は更新前か更新後のジョブのどちらかのみを観測する。
	// CanTransitionTo が許可しない遷移は ErrInvalidTransition で拒否する。
	UpdateStatus(ctx context.Context, id uuid.UUID, status JobStatus, resultText string) (*Job, error)

	// Claim は status が PENDING の場合に限り PROCESSING へ遷移させ、
	// 遷移できたかを返す。単一文の条件付き更新であり check-then-set ではない。
	// これが二重実行を防ぐ唯一の並行制御機構になる。
	Claim(ctx context.Context, id uuid.UUID) (bool, error)
}
