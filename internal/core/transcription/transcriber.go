package transcription

import "context"

// Transcriber は音声認識モデルへのポート。モデルの内部は関知せず、
// バイト列からテキストを得る不透明な関数として扱う。
type Transcriber interface {
	// Transcribe は音声データを文字起こしする。
	// 失敗した場合は ErrTranscriptionFailed を包んだエラーを返す。
	Transcribe(ctx context.Context, fileName string, audio []byte) (string, error)
}
