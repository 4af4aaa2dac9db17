package s3

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testGateway(t *testing.T) *Gateway {
	t.Helper()
	g, err := NewGateway(Config{Region: "ap-northeast-1", Bucket: "sonorize-audios"})
	require.NoError(t, err)
	return g
}

func TestNewGateway_RequiresBucket(t *testing.T) {
	_, err := NewGateway(Config{Region: "ap-northeast-1"})
	require.Error(t, err)
}

func TestGateway_ObjectKeyIsUniqueAndKeepsExtension(t *testing.T) {
	g := testGateway(t)

	first := g.objectKey("meeting memo.mp3")
	second := g.objectKey("meeting memo.mp3")

	assert.NotEqual(t, first, second)
	assert.True(t, strings.HasPrefix(first, DefaultUploadPrefix))
	assert.True(t, strings.HasSuffix(first, ".mp3"))

	// 元のファイル名はキーに含めない（衝突と文字種の問題を避ける）
	assert.NotContains(t, first, "meeting")
}

func TestGateway_ObjectKeyWithoutExtension(t *testing.T) {
	g := testGateway(t)

	key := g.objectKey("rawaudio")
	assert.True(t, strings.HasPrefix(key, DefaultUploadPrefix))
	assert.NotContains(t, key[len(DefaultUploadPrefix):], ".")
}

func TestGateway_RefToKey(t *testing.T) {
	g := testGateway(t)

	key, err := g.refToKey("s3://sonorize-audios/uploads/abc.mp3")
	require.NoError(t, err)
	assert.Equal(t, "uploads/abc.mp3", key)

	// バケット接頭辞を持たない値はそのままキーとして扱う
	key, err = g.refToKey("uploads/raw.mp3")
	require.NoError(t, err)
	assert.Equal(t, "uploads/raw.mp3", key)

	_, err = g.refToKey("")
	require.Error(t, err)

	_, err = g.refToKey("s3://sonorize-audios/")
	require.Error(t, err)

	_, err = g.refToKey("s3://other-bucket/uploads/abc.mp3")
	require.Error(t, err)
}
