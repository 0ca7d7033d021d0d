package extract

import "testing"

func TestNormalizeOutput(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "trailing whitespace",
			input: "hello   \nworld   \n",
			want:  "hello\nworld",
		},
		{
			name:  "multiple newlines",
			input: "hello\n\n\n\n\nworld",
			want:  "hello\n\nworld",
		},
		{
			name:  "crlf",
			input: "hello\r\nworld\r\n",
			want:  "hello\nworld",
		},
		{
			name:  "control characters",
			input: "hello\x00world\x01test",
			want:  "helloworldtest",
		},
		{
			name:  "surrounding whitespace",
			input: "\n\n  text  \n\n",
			want:  "text",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := normalizeOutput(tt.input); got != tt.want {
				t.Errorf("normalizeOutput(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestRenderMarkdownTable(t *testing.T) {
	tests := []struct {
		name string
		rows [][]string
		want string
	}{
		{
			name: "simple",
			rows: [][]string{{"Name", "Age"}, {"Ada", "36"}},
			want: "| Name | Age |\n| --- | --- |\n| Ada | 36 |\n",
		},
		{
			name: "ragged rows padded",
			rows: [][]string{{"A", "B", "C"}, {"1"}},
			want: "| A | B | C |\n| --- | --- | --- |\n| 1 |  |  |\n",
		},
		{
			name: "pipes and newlines escaped",
			rows: [][]string{{"a|b"}, {"x\ny"}},
			want: "| a\\|b |\n| --- |\n| x y |\n",
		},
		{
			name: "empty",
			rows: nil,
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := renderMarkdownTable(tt.rows); got != tt.want {
				t.Errorf("renderMarkdownTable() = %q, want %q", got, tt.want)
			}
		})
	}
}
