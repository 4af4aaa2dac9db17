package transcription

import "context"

// StorageGateway は外部オブジェクトストレージへのポート
type StorageGateway interface {
	// IssueUploadCredential は新規アップロード用の期限付き資格情報を発行する。
	// finalRef は同名ファイルの並行アップロードが衝突しないよう
	// グローバルに一意な名前（ランダムトークン接頭辞）で生成される。
	IssueUploadCredential(ctx context.Context, desiredName string) (*UploadCredential, error)

	// Fetch はリファレンスから音声の生バイト列を取得する。
	// オブジェクトが存在しない場合は ErrObjectNotFound、
	// ネットワーク等の一時障害は ErrTransientStorage を返す。
	Fetch(ctx context.Context, ref string) ([]byte, error)

	// Exists はオブジェクトの存在確認を行う
	Exists(ctx context.Context, ref string) (bool, error)
}
