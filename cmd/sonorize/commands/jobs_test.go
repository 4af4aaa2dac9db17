package commands

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestTruncateString(t *testing.T) {
	t.Run("短い文字列はそのまま返す", func(t *testing.T) {
		assert.Equal(t, "short.mp3", truncateString("short.mp3", 50))
	})

	t.Run("長い文字列は省略記号付きで切り詰める", func(t *testing.T) {
		got := truncateString(strings.Repeat("a", 60), 50)
		assert.Equal(t, strings.Repeat("a", 47)+"...", got)
	})

	t.Run("マルチバイト文字を分断しない", func(t *testing.T) {
		got := truncateString(strings.Repeat("あ", 60), 50)
		assert.True(t, utf8.ValidString(got))
		assert.Equal(t, strings.Repeat("あ", 47)+"...", got)
	})

	t.Run("文字数はルーン単位で数える", func(t *testing.T) {
		// 10ルーン（バイト数は30）は maxLen=10 に収まる
		s := strings.Repeat("音", 10)
		assert.Equal(t, s, truncateString(s, 10))
	})

	t.Run("極端に小さいmaxLenでもパニックしない", func(t *testing.T) {
		assert.Equal(t, "あい", truncateString("あいうえお", 2))
		assert.Equal(t, "", truncateString("あいうえお", 0))
	})
}
