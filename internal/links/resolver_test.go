package links_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/newsflowai/newsflow/internal/links"
)

func TestResolve(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "facebook l.php wrapper",
			in:   "https://l.facebook.com/l.php?u=https%3A%2F%2Fexample.com%2Fnews%2F1&h=AT0x",
			want: "https://example.com/news/1",
		},
		{
			name: "facebook plugin href wrapper",
			in:   "https://www.facebook.com/plugins/post.php?href=https%3A%2F%2Fexample.com%2Fpost",
			want: "https://example.com/post",
		},
		{
			name: "l.php without target passes through",
			in:   "https://l.facebook.com/l.php?h=AT0x",
			want: "https://l.facebook.com/l.php?h=AT0x",
		},
		{
			name: "t.co passes through",
			in:   "https://t.co/abc123",
			want: "https://t.co/abc123",
		},
		{
			name: "ordinary article url passes through",
			in:   "https://example.com/politics/story",
			want: "https://example.com/politics/story",
		},
		{
			name: "malformed input returned as-is",
			in:   "::definitely not a url::",
			want: "::definitely not a url::",
		},
		{
			name: "empty string",
			in:   "",
			want: "",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, links.Resolve(tt.in))
		})
	}
}

func TestResolve_Idempotent(t *testing.T) {
	t.Parallel()

	inputs := []string{
		"https://l.facebook.com/l.php?u=https%3A%2F%2Fexample.com%2Fnews%2F1",
		"https://example.com/plain",
		"https://www.facebook.com/plugins/post.php?href=https%3A%2F%2Fexample.com%2Fp",
	}

	for _, in := range inputs {
		once := links.Resolve(in)
		assert.Equal(t, once, links.Resolve(once), "resolve must be idempotent for %q", in)
	}
}
