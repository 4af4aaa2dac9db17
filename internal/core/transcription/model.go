package transcription

import (
	"time"

	"github.com/google/uuid"
)

// JobStatus は文字起こしジョブの状態を表す
type JobStatus string

const (
	// StatusPending は作成直後でまだワーカーに拾われていない状態
	StatusPending JobStatus = "PENDING"
	// StatusProcessing はワーカーが処理中の状態
	StatusProcessing JobStatus = "PROCESSING"
	// StatusCompleted は文字起こしが完了した終端状態
	StatusCompleted JobStatus = "COMPLETED"
	// StatusFailed は処理に失敗した終端状態
	StatusFailed JobStatus = "FAILED"
)

// IsValid はステータス値が既知のものかを返す
func (s JobStatus) IsValid() bool {
	switch s {
	case StatusPending, StatusProcessing, StatusCompleted, StatusFailed:
		return true
	}
	return false
}

// IsTerminal は終端状態（これ以上遷移しない状態）かを返す
func (s JobStatus) IsTerminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// CanTransitionTo は状態機械上で s から next への遷移が許可されるかを返す。
// PENDING → PROCESSING → {COMPLETED, FAILED} のみを許可し、終端状態からの
// 遷移と PENDING への巻き戻しは常に拒否する。
func (s JobStatus) CanTransitionTo(next JobStatus) bool {
	switch s {
	case StatusPending:
		return next == StatusProcessing
	case StatusProcessing:
		return next.IsTerminal()
	default:
		return false
	}
}

// Job は「この音声リファレンスを文字起こしする」という1単位の作業を表す
type Job struct {
	ID         uuid.UUID `json:"id"`
	SourceRef  string    `json:"sourceRef"`
	Status     JobStatus `json:"status"`
	ResultText string    `json:"resultText,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// UploadCredential はクライアントが音声を直接アップロードするための
// 期限付き資格情報と、アップロード完了後に submit へ渡す finalRef の組
type UploadCredential struct {
	UploadURL string    `json:"uploadUrl"`
	FinalRef  string    `json:"objectUrl"`
	ExpiresAt time.Time `json:"expiresAt"`
}
