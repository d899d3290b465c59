package security

import "testing"

// HTMLタグがすべて除去されることを検証
func TestSanitize_StripsAllTags(t *testing.T) {
	s := NewContentSanitizer()

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"プレーンテキストはそのまま", "A fun fact about Inception.", "A fun fact about Inception."},
		{"scriptタグは除去", `Fun <script>alert("xss")</script>fact`, "Fun fact"},
		{"強調タグも除去", "A <strong>fun</strong> fact", "A fun fact"},
		{"リンクはテキストのみ残る", `See <a href="https://example.com">here</a>`, "See here"},
		{"imgタグは完全除去", `Fact <img src="https://example.com/x.png">`, "Fact"},
		{"空文字列は空文字列", "", ""},
		{"前後の空白はトリム", "  fact  ", "fact"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := s.Sanitize(tt.input); got != tt.want {
				t.Errorf("Sanitize(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

// 同一入力に対して同一出力を返すこと（冪等性）を検証
func TestSanitize_Idempotent(t *testing.T) {
	s := NewContentSanitizer()

	input := `Fun <b>fact</b> about <script>x</script>movies`
	first := s.Sanitize(input)
	second := s.Sanitize(first)

	if first != second {
		t.Errorf("not idempotent: first = %q, second = %q", first, second)
	}
}
