package transcription

import "errors"

var (
	// ErrDuplicateRef は同一の sourceRef を持つジョブが既に存在する場合のエラー。
	// 呼び出し側は新規作成ではなく既存ジョブの返却にマップする。
	ErrDuplicateRef = errors.New("job already exists for source ref")

	// ErrJobNotFound は指定されたジョブが存在しない場合のエラー
	ErrJobNotFound = errors.New("job not found")

	// ErrObjectNotFound は参照先の音声オブジェクトがストレージに存在しない場合のエラー
	ErrObjectNotFound = errors.New("audio object not found")

	// ErrTransientStorage はストレージアクセスの一時的な失敗（ネットワーク断等）
	ErrTransientStorage = errors.New("transient storage error")

	// ErrTranscriptionFailed は音声認識モデルの呼び出しが失敗した場合のエラー
	ErrTranscriptionFailed = errors.New("transcription failed")

	// ErrQueueFull はディスパッチャのキューが飽和している場合のエラー
	ErrQueueFull = errors.New("dispatch queue is full")

	// ErrInvalidTransition は状態機械が許可しないステータス遷移を要求した場合のエラー。
	// 終端状態からの遷移やクレームを経ない終端書き込みがこれに当たる。
	ErrInvalidTransition = errors.New("invalid status transition")
)
