package document

import (
	"net/url"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Run("Should load plain text files", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "doc.txt")
		require.NoError(t, os.WriteFile(path, []byte("  고혈압은 혈압이 높은 상태입니다.  "), 0o644))

		text, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, "고혈압은 혈압이 높은 상태입니다.", text)
	})

	t.Run("Should load markdown files", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "doc.md")
		require.NoError(t, os.WriteFile(path, []byte("# 제목\n\n본문"), 0o644))

		text, err := Load(path)
		require.NoError(t, err)
		assert.Contains(t, text, "본문")
	})

	t.Run("Should extract visible text from html files", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "doc.html")
		page := `<html><head><script>var x=1;</script><style>p{}</style></head>
<body><h1>당뇨병 안내</h1><p>당뇨병은 관리하는 질병입니다.</p></body></html>`
		require.NoError(t, os.WriteFile(path, []byte(page), 0o644))

		text, err := Load(path)
		require.NoError(t, err)
		assert.Contains(t, text, "당뇨병 안내")
		assert.Contains(t, text, "관리하는 질병")
		assert.NotContains(t, text, "var x=1")
		assert.NotContains(t, text, "p{}")
	})

	t.Run("Should reject unsupported extensions", func(t *testing.T) {
		_, err := Load("archive.zip")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unsupported file type")
	})

	t.Run("Should fail on missing files", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "missing.txt"))
		assert.Error(t, err)
	})
}

func TestIsSupported(t *testing.T) {
	assert.True(t, IsSupported("a.txt"))
	assert.True(t, IsSupported("a.MD"))
	assert.True(t, IsSupported("a.pdf"))
	assert.True(t, IsSupported("dir/a.html"))
	assert.False(t, IsSupported("a.docx"))
	assert.False(t, IsSupported("a"))
}

func TestSanitizeUTF8(t *testing.T) {
	t.Run("Should pass valid strings through unchanged", func(t *testing.T) {
		assert.Equal(t, "한국어 텍스트", SanitizeUTF8("한국어 텍스트"))
	})

	t.Run("Should drop invalid bytes", func(t *testing.T) {
		assert.Equal(t, "ab", SanitizeUTF8("a\xffb"))
	})
}

func TestExtractLinks(t *testing.T) {
	base, _ := url.Parse("https://example.com/docs")

	page := `<html><body>
<a href="/docs/page1">one</a>
<a href="page2">two</a>
<a href="/docs/page1">dup</a>
<a href="https://other.com/x">external</a>
<a href="/style.css">asset</a>
<a href="#section">anchor</a>
</body></html>`

	links := ExtractLinks(page, base)
	assert.Equal(t, []string{
		"https://example.com/docs/page1",
		"https://example.com/page2",
	}, links)
}
