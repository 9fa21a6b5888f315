package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractDomain(t *testing.T) {
	tests := []struct {
		name     string
		url      string
		expected string
	}{
		{"full url", "https://www.youtube.com/watch?v=abc", "youtube.com"},
		{"no scheme", "github.com/golang/go", "github.com"},
		{"with port", "http://localhost:9528/api", "localhost"},
		{"subdomain kept", "https://docs.google.com/document/d/1", "docs.google.com"},
		{"uppercase host", "https://WWW.Example.COM/page", "example.com"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ExtractDomain(tt.url))
		})
	}
}

func TestExtractYouTubeID(t *testing.T) {
	tests := []struct {
		name     string
		url      string
		expected string
	}{
		{"watch url", "https://www.youtube.com/watch?v=dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"short link", "https://youtu.be/dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"embed", "https://www.youtube.com/embed/dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"shorts", "https://www.youtube.com/shorts/dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"no id", "https://www.youtube.com/feed/subscriptions", ""},
		{"other site", "https://vimeo.com/12345", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ExtractYouTubeID(tt.url))
		})
	}
}

func TestCleanText(t *testing.T) {
	assert.Equal(t, "hello world", CleanText("  hello \n\n  world  "))
	assert.Equal(t, "", CleanText(""))
	assert.Equal(t, "abc", CleanText("abc\x00\x01"))
}

func TestExtractKeywords(t *testing.T) {
	keywords := ExtractKeywords("The quick brown fox jumps over the lazy dog", 4)

	assert.Contains(t, keywords, "quick")
	assert.Contains(t, keywords, "brown")
	// 短词和停用词被过滤
	assert.NotContains(t, keywords, "the")
	assert.NotContains(t, keywords, "fox")

	// 去重
	keywords = ExtractKeywords("golang golang golang", 4)
	assert.Equal(t, []string{"golang"}, keywords)
}

func TestContainsAny(t *testing.T) {
	assert.True(t, ContainsAny("Watching YouTube videos", []string{"youtube", "netflix"}))
	assert.True(t, ContainsAny("VS CODE", []string{"code"}))
	assert.False(t, ContainsAny("Writing documentation", []string{"youtube", "netflix"}))
	assert.False(t, ContainsAny("anything", nil))
}

func TestTruncateString(t *testing.T) {
	assert.Equal(t, "short", TruncateString("short", 10))
	assert.Equal(t, "exact", TruncateString("exact", 5))
	assert.Equal(t, "long st...", TruncateString("long string here", 10))
	assert.Equal(t, "ab", TruncateString("abcdef", 2))
}

func TestFormatDuration(t *testing.T) {
	assert.Equal(t, "45s", FormatDuration(45))
	assert.Equal(t, "2m 15s", FormatDuration(135))
	assert.Equal(t, "1h 0m", FormatDuration(3600))
	assert.Equal(t, "2h 30m", FormatDuration(9000))
	assert.Equal(t, "0s", FormatDuration(0))
}

func TestTimeInRangeAt(t *testing.T) {
	day := time.Date(2026, 8, 20, 0, 0, 0, 0, time.UTC)
	at := func(hour, min int) time.Time {
		return day.Add(time.Duration(hour)*time.Hour + time.Duration(min)*time.Minute)
	}

	t.Run("same day range", func(t *testing.T) {
		in, err := timeInRangeAt(at(12, 0), "09:00", "18:00")
		require.NoError(t, err)
		assert.True(t, in)

		in, err = timeInRangeAt(at(20, 0), "09:00", "18:00")
		require.NoError(t, err)
		assert.False(t, in)
	})

	t.Run("cross midnight range", func(t *testing.T) {
		// 22:00-08:00 的免打扰时段
		in, err := timeInRangeAt(at(23, 30), "22:00", "08:00")
		require.NoError(t, err)
		assert.True(t, in)

		in, err = timeInRangeAt(at(3, 0), "22:00", "08:00")
		require.NoError(t, err)
		assert.True(t, in)

		in, err = timeInRangeAt(at(12, 0), "22:00", "08:00")
		require.NoError(t, err)
		assert.False(t, in)
	})

	t.Run("invalid format", func(t *testing.T) {
		_, err := timeInRangeAt(at(12, 0), "9am", "18:00")
		assert.Error(t, err)
	})
}

func TestHashBytes(t *testing.T) {
	h1 := HashBytes([]byte("hello"))
	h2 := HashBytes([]byte("hello"))
	h3 := HashBytes([]byte("world"))

	assert.Equal(t, h1, h2)
	assert.NotEqual(t, h1, h3)
	assert.Len(t, h1, 32)
}

func TestFormatBytes(t *testing.T) {
	assert.Equal(t, "512 B", FormatBytes(512))
	assert.Equal(t, "1.0 KB", FormatBytes(1024))
	assert.Equal(t, "1.5 MB", FormatBytes(1536*1024))
}
