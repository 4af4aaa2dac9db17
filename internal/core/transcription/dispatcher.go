package transcription

import (
	"context"
	"log/slog"
	"sync"

	"github.com/google/uuid"
)

const (
	// DefaultWorkerCount はデフォルトの実行ワーカー数（I/O バウンド）
	DefaultWorkerCount = 4
	// DefaultQueueSize はデフォルトのディスパッチキュー長
	DefaultQueueSize = 256
)

// Dispatcher は submit の呼び出し元をブロックせずに Execute を走らせるポート。
// リトライ・バックオフ・優先度は持たず、投入順と実行順に保証はない。
type Dispatcher interface {
	// Dispatch はジョブを実行キューへ投入する。キュー飽和時は ErrQueueFull。
	Dispatch(jobID uuid.UUID) error
}

// ExecuteFunc はワーカーが1ジョブに対して実行する処理
type ExecuteFunc func(ctx context.Context, jobID uuid.UUID)

// PoolConfig はワーカープールの設定
type PoolConfig struct {
	// Workers は並行実行するワーカー数
	Workers int
	// QueueSize はディスパッチキューのバッファ長
	QueueSize int
}

// DefaultPoolConfig はデフォルトのプール設定を返す
func DefaultPoolConfig() *PoolConfig {
	return &PoolConfig{
		Workers:   DefaultWorkerCount,
		QueueSize: DefaultQueueSize,
	}
}

// Pool は Dispatcher の有界ワーカープール実装。
// プロセス内キューのため、未処理のままプロセスが落ちたジョブは
// PENDING に留まり ReconcilePending で回収される。
type Pool struct {
	config *PoolConfig
	logger *slog.Logger

	tasks chan uuid.UUID
	wg    sync.WaitGroup

	mu      sync.Mutex
	started bool
	stopped bool
}

// PoolOption は Pool のオプション設定
type PoolOption func(*Pool)

// WithPoolLogger は Pool にロガーを設定する
func WithPoolLogger(logger *slog.Logger) PoolOption {
	return func(p *Pool) {
		p.logger = logger
	}
}

// NewPool は新しいワーカープールを作成する。Start までワーカーは起動しないが、
// Dispatch されたジョブはキューに積まれる。
func NewPool(config *PoolConfig, opts ...PoolOption) *Pool {
	if config == nil {
		config = DefaultPoolConfig()
	}
	if config.Workers <= 0 {
		config.Workers = DefaultWorkerCount
	}
	if config.QueueSize <= 0 {
		config.QueueSize = DefaultQueueSize
	}

	p := &Pool{
		config: config,
		logger: slog.Default(),
		tasks:  make(chan uuid.UUID, config.QueueSize),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.logger == nil {
		p.logger = slog.Default()
	}
	return p
}

// Start はワーカーを起動する。各ワーカーはキューからジョブIDを取り出し
// execute を呼ぶ。ctx のキャンセルで新規タスクの取り出しを止める。
func (p *Pool) Start(ctx context.Context, execute ExecuteFunc) {
	p.mu.Lock()
	if p.started {
		p.mu.Unlock()
		return
	}
	p.started = true
	p.mu.Unlock()

	for i := 0; i < p.config.Workers; i++ {
		p.wg.Add(1)
		go func(worker int) {
			defer p.wg.Done()
			for {
				select {
				case <-ctx.Done():
					return
				case jobID, ok := <-p.tasks:
					if !ok {
						return
					}
					p.logger.Debug("ジョブ実行を開始", "jobID", jobID, "worker", worker)
					execute(ctx, jobID)
				}
			}
		}(i)
	}

	p.logger.Info("ディスパッチャを起動", "workers", p.config.Workers, "queueSize", p.config.QueueSize)
}

// Dispatch はジョブIDをキューへ投入する。ブロックせず、飽和時と停止後は ErrQueueFull を返す。
// 送信まで p.mu を保持し、Stop の close(p.tasks) と競合しないようにする。
// select は default 付きでブロックしないため、ロック保持時間はキュー投入1回分に収まる。
func (p *Pool) Dispatch(jobID uuid.UUID) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.stopped {
		return ErrQueueFull
	}

	select {
	case p.tasks <- jobID:
		return nil
	default:
		return ErrQueueFull
	}
}

// Stop は新規投入を締め切り、キューに残ったジョブの実行完了を待つ。
// ctx の期限までに完了しない場合はエラーを返す。
func (p *Pool) Stop(ctx context.Context) error {
	p.mu.Lock()
	if p.stopped {
		p.mu.Unlock()
		return nil
	}
	p.stopped = true
	// stopped と同じクリティカルセクションで閉じる。
	// Dispatch はロック下で送信するため、閉じたチャネルへの送信は起こらない。
	close(p.tasks)
	p.mu.Unlock()

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

var _ Dispatcher = (*Pool)(nil)
