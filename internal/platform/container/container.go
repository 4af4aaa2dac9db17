package container

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jinford/sonorize/internal/core/transcription"
	"github.com/jinford/sonorize/internal/infra/openai"
	"github.com/jinford/sonorize/internal/infra/postgres"
	"github.com/jinford/sonorize/internal/infra/postgres/sqlc"
	"github.com/jinford/sonorize/internal/infra/s3"
	"github.com/jinford/sonorize/internal/platform/config"
	"github.com/jinford/sonorize/internal/platform/database"
)

// stopTimeout は Close 時にワーカーのドレインを待つ上限
const stopTimeout = 30 * time.Second

// Container はアプリケーションの依存関係を保持する
type Container struct {
	Service    *transcription.Service
	Dispatcher *transcription.Pool
	Logger     *slog.Logger

	database *database.Database
}

type containerOptions struct {
	logger      *slog.Logger
	repository  transcription.Repository
	storage     transcription.StorageGateway
	transcriber transcription.Transcriber
}

// Option は Container 構築時のオプション
type Option func(*containerOptions)

// WithLogger はロガーを差し替える
func WithLogger(logger *slog.Logger) Option {
	return func(o *containerOptions) {
		o.logger = logger
	}
}

// WithRepository はジョブリポジトリを差し替える（テスト用）
func WithRepository(repo transcription.Repository) Option {
	return func(o *containerOptions) {
		o.repository = repo
	}
}

// WithStorageGateway はストレージゲートウェイを差し替える（テスト用）
func WithStorageGateway(storage transcription.StorageGateway) Option {
	return func(o *containerOptions) {
		o.storage = storage
	}
}

// WithTranscriber は文字起こしクライアントを差し替える（テスト用）
func WithTranscriber(transcriber transcription.Transcriber) Option {
	return func(o *containerOptions) {
		o.transcriber = transcriber
	}
}

// New は設定からコンテナを生成する。
// データベース接続・S3クライアント・OpenAIクライアントは
// ここで一度だけ構築し、各コンポーネントへ注入して共有する。
func New(ctx context.Context, cfg *config.Config, opts ...Option) (*Container, error) {
	options := containerOptions{logger: slog.Default()}
	for _, opt := range opts {
		opt(&options)
	}
	if options.logger == nil {
		options.logger = slog.Default()
	}

	var db *database.Database
	repository := options.repository
	if repository == nil {
		var err error
		db, err = database.New(ctx, database.ConnectionParams{
			Host:     cfg.Database.Host,
			Port:     cfg.Database.Port,
			User:     cfg.Database.User,
			Password: cfg.Database.Password,
			DBName:   cfg.Database.DBName,
			SSLMode:  cfg.Database.SSLMode,
		})
		if err != nil {
			return nil, fmt.Errorf("データベース初期化に失敗しました: %w", err)
		}
		repository = postgres.NewJobRepository(sqlc.New(db.Pool))
	}

	storage := options.storage
	if storage == nil {
		gateway, err := s3.NewGateway(s3.Config{
			Region:       cfg.S3.Region,
			Bucket:       cfg.S3.Bucket,
			Endpoint:     cfg.S3.Endpoint,
			UploadPrefix: cfg.S3.UploadPrefix,
			PresignTTL:   cfg.S3.PresignTTL,
		})
		if err != nil {
			if db != nil {
				db.Close()
			}
			return nil, fmt.Errorf("S3ゲートウェイ初期化に失敗しました: %w", err)
		}
		storage = gateway
	}

	transcriber := options.transcriber
	if transcriber == nil {
		client, err := openai.NewTranscriber(
			cfg.OpenAI.APIKey,
			openai.WithModel(cfg.OpenAI.TranscriptionModel),
			openai.WithTimeout(cfg.OpenAI.Timeout),
		)
		if err != nil {
			if db != nil {
				db.Close()
			}
			return nil, fmt.Errorf("OpenAIクライアント初期化に失敗しました: %w", err)
		}
		transcriber = client
	}

	dispatcher := transcription.NewPool(&transcription.PoolConfig{
		Workers:   cfg.Dispatcher.Workers,
		QueueSize: cfg.Dispatcher.QueueSize,
	}, transcription.WithPoolLogger(options.logger))

	service := transcription.NewService(
		repository,
		storage,
		transcriber,
		dispatcher,
		transcription.WithServiceLogger(options.logger),
		transcription.WithSourceValidation(cfg.S3.ValidateOnSubmit),
	)

	return &Container{
		Service:    service,
		Dispatcher: dispatcher,
		Logger:     options.logger,
		database:   db,
	}, nil
}

// Start はディスパッチャのワーカーを起動する
func (c *Container) Start(ctx context.Context) {
	c.Dispatcher.Start(ctx, c.Service.Execute)
}

// Close はワーカーをドレインし、内部リソースを解放する
func (c *Container) Close() {
	if c == nil {
		return
	}

	stopCtx, cancel := context.WithTimeout(context.Background(), stopTimeout)
	defer cancel()
	if err := c.Dispatcher.Stop(stopCtx); err != nil {
		c.Logger.Warn("ディスパッチャの停止がタイムアウトしました", "error", err)
	}

	if c.database != nil {
		c.database.Close()
	}
}
