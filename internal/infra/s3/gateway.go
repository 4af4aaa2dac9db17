package s3

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/session"
	awss3 "github.com/aws/aws-sdk-go/service/s3"
	"github.com/google/uuid"

	"github.com/jinford/sonorize/internal/core/transcription"
)

const (
	// DefaultUploadPrefix はアップロードオブジェクトを置くキー接頭辞
	DefaultUploadPrefix = "uploads/"
	// DefaultPresignTTL は署名付きURLのデフォルト有効期限
	DefaultPresignTTL = time.Hour
)

// Config はS3ゲートウェイの設定
type Config struct {
	Region       string
	Bucket       string
	Endpoint     string // MinIO等の互換ストレージ向け。空ならAWS標準
	UploadPrefix string
	PresignTTL   time.Duration
}

// Gateway はS3をバックエンドとする StorageGateway 実装
type Gateway struct {
	client       *awss3.S3
	bucket       string
	uploadPrefix string
	presignTTL   time.Duration
}

// NewGateway は新しいS3ゲートウェイを作成する。
// 資格情報はAWS SDKの標準チェーン（環境変数、プロファイル等）から解決される。
func NewGateway(cfg Config) (*Gateway, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("S3 bucket is required")
	}

	awsCfg := aws.NewConfig().WithRegion(cfg.Region)
	if cfg.Endpoint != "" {
		awsCfg = awsCfg.WithEndpoint(cfg.Endpoint).WithS3ForcePathStyle(true)
	}

	sess, err := session.NewSession(awsCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS session: %w", err)
	}

	uploadPrefix := cfg.UploadPrefix
	if uploadPrefix == "" {
		uploadPrefix = DefaultUploadPrefix
	}
	presignTTL := cfg.PresignTTL
	if presignTTL <= 0 {
		presignTTL = DefaultPresignTTL
	}

	return &Gateway{
		client:       awss3.New(sess),
		bucket:       cfg.Bucket,
		uploadPrefix: uploadPrefix,
		presignTTL:   presignTTL,
	}, nil
}

var _ transcription.StorageGateway = (*Gateway)(nil)

// IssueUploadCredential は署名付きPUT URLを発行する。
// オブジェクトキーはランダムトークンで一意化し、同名ファイルの
// 並行アップロードが衝突しないようにする。
func (g *Gateway) IssueUploadCredential(ctx context.Context, desiredName string) (*transcription.UploadCredential, error) {
	key := g.objectKey(desiredName)

	req, _ := g.client.PutObjectRequest(&awss3.PutObjectInput{
		Bucket: aws.String(g.bucket),
		Key:    aws.String(key),
	})
	req.SetContext(ctx)

	uploadURL, err := req.Presign(g.presignTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to presign upload URL: %w", err)
	}

	return &transcription.UploadCredential{
		UploadURL: uploadURL,
		FinalRef:  fmt.Sprintf("s3://%s/%s", g.bucket, key),
		ExpiresAt: time.Now().Add(g.presignTTL),
	}, nil
}

// Fetch はリファレンスから音声オブジェクトの生バイト列を取得する
func (g *Gateway) Fetch(ctx context.Context, ref string) ([]byte, error) {
	key, err := g.refToKey(ref)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", transcription.ErrObjectNotFound, err)
	}

	out, err := g.client.GetObjectWithContext(ctx, &awss3.GetObjectInput{
		Bucket: aws.String(g.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("%w: %s", transcription.ErrObjectNotFound, ref)
		}
		return nil, fmt.Errorf("%w: %v", transcription.ErrTransientStorage, err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", transcription.ErrTransientStorage, err)
	}
	return data, nil
}

// Exists はオブジェクトの存在確認を行う
func (g *Gateway) Exists(ctx context.Context, ref string) (bool, error) {
	key, err := g.refToKey(ref)
	if err != nil {
		return false, nil
	}

	_, err = g.client.HeadObjectWithContext(ctx, &awss3.HeadObjectInput{
		Bucket: aws.String(g.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		if isNotFound(err) {
			return false, nil
		}
		return false, fmt.Errorf("%w: %v", transcription.ErrTransientStorage, err)
	}
	return true, nil
}

// objectKey は拡張子を保ったままランダムトークンで一意なキーを生成する
func (g *Gateway) objectKey(desiredName string) string {
	return g.uploadPrefix + uuid.New().String() + path.Ext(desiredName)
}

// refToKey は "s3://<bucket>/<key>" 形式のリファレンスをキーに変換する。
// バケット接頭辞を持たない値はそのままキーとして扱う。
func (g *Gateway) refToKey(ref string) (string, error) {
	if ref == "" {
		return "", fmt.Errorf("empty ref")
	}

	prefix := fmt.Sprintf("s3://%s/", g.bucket)
	if strings.HasPrefix(ref, prefix) {
		key := strings.TrimPrefix(ref, prefix)
		if key == "" {
			return "", fmt.Errorf("ref has no object key: %s", ref)
		}
		return key, nil
	}
	if strings.HasPrefix(ref, "s3://") {
		return "", fmt.Errorf("ref points to a different bucket: %s", ref)
	}
	return ref, nil
}

func isNotFound(err error) bool {
	aerr, ok := err.(awserr.Error)
	if !ok {
		return false
	}
	switch aerr.Code() {
	case awss3.ErrCodeNoSuchKey, "NotFound":
		return true
	}
	if reqErr, ok := aerr.(awserr.RequestFailure); ok {
		return reqErr.StatusCode() == 404
	}
	return false
}
