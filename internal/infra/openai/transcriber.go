package openai

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"math"
	"path"
	"time"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"github.com/jinford/sonorize/internal/core/transcription"
)

const (
	// DefaultModel はデフォルトで使用する音声認識モデル
	DefaultModel = string(openai.AudioModelWhisper1)

	// DefaultTimeout はAPI呼び出しのデフォルトタイムアウト。
	// 長尺音声を考慮してチャット系より長めに取る。
	DefaultTimeout = 5 * time.Minute

	// MaxRetries はレート制限エラー時の最大リトライ回数
	MaxRetries = 3

	// BaseBackoff はExponential Backoffの基底時間
	BaseBackoff = 2 * time.Second

	// MaxBackoff はExponential Backoffの最大待機時間
	MaxBackoff = 32 * time.Second
)

// ErrAPIKeyNotSet はAPIキーが設定されていない場合のエラー
var ErrAPIKeyNotSet = errors.New("OpenAI API key not set: please set OPENAI_API_KEY environment variable")

// Transcriber は OpenAI の音声文字起こしAPIを使用した Transcriber 実装
type Transcriber struct {
	client  openai.Client
	model   string
	timeout time.Duration
}

type transcriberOptions struct {
	model   string
	timeout time.Duration
}

// TranscriberOption は Transcriber のオプション設定
type TranscriberOption func(*transcriberOptions)

// WithModel はモデル名を上書きする
func WithModel(model string) TranscriberOption {
	return func(o *transcriberOptions) {
		if model != "" {
			o.model = model
		}
	}
}

// WithTimeout はAPIコールのタイムアウトを上書きする
func WithTimeout(timeout time.Duration) TranscriberOption {
	return func(o *transcriberOptions) {
		if timeout > 0 {
			o.timeout = timeout
		}
	}
}

// NewTranscriber は新しい Transcriber を作成する
func NewTranscriber(apiKey string, opts ...TranscriberOption) (*Transcriber, error) {
	if apiKey == "" {
		return nil, ErrAPIKeyNotSet
	}

	options := transcriberOptions{
		model:   DefaultModel,
		timeout: DefaultTimeout,
	}
	for _, opt := range opts {
		opt(&options)
	}

	return &Transcriber{
		client:  openai.NewClient(option.WithAPIKey(apiKey)),
		model:   options.model,
		timeout: options.timeout,
	}, nil
}

var _ transcription.Transcriber = (*Transcriber)(nil)

// ModelName はモデル名を返す
func (t *Transcriber) ModelName() string {
	return t.model
}

// Transcribe は音声データを文字起こしする。
// レート制限（429）のみExponential Backoffでリトライし、
// それ以外の失敗は ErrTranscriptionFailed として即座に返す。
func (t *Transcriber) Transcribe(ctx context.Context, fileName string, audio []byte) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	var lastErr error
	for attempt := 0; attempt <= MaxRetries; attempt++ {
		if attempt > 0 {
			backoffDuration := time.Duration(math.Pow(2, float64(attempt-1))) * BaseBackoff
			if backoffDuration > MaxBackoff {
				backoffDuration = MaxBackoff
			}

			select {
			case <-ctx.Done():
				return "", fmt.Errorf("%w: %v", transcription.ErrTranscriptionFailed, ctx.Err())
			case <-time.After(backoffDuration):
			}
		}

		result, err := t.client.Audio.Transcriptions.New(ctx, openai.AudioTranscriptionNewParams{
			Model: openai.AudioModel(t.model),
			File:  openai.File(bytes.NewReader(audio), path.Base(fileName), "application/octet-stream"),
		})
		if err != nil {
			lastErr = err
			if isRateLimitError(err) {
				continue
			}
			return "", fmt.Errorf("%w: %v", transcription.ErrTranscriptionFailed, err)
		}

		return result.Text, nil
	}

	return "", fmt.Errorf("%w: max retries exceeded: %v", transcription.ErrTranscriptionFailed, lastErr)
}

func isRateLimitError(err error) bool {
	if err == nil {
		return false
	}

	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == 429
	}

	return false
}
