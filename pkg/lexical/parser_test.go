package lexical

import "testing"

func TestProjectTextPassThrough(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"plain string", "just some text"},
		{"empty string", ""},
		{"json but not lexical", `{"title":"x"}`},
		{"malformed lexical", `{"root": [not json]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ProjectText(tt.content); got != tt.content {
				t.Errorf("ProjectText(%q) = %q, want input back", tt.content, got)
			}
		})
	}
}

func TestProjectTextParagraphs(t *testing.T) {
	content := `{"root":{"type":"root","children":[
		{"type":"paragraph","children":[{"type":"text","text":"hello "},{"type":"text","text":"world"}]},
		{"type":"paragraph","children":[{"type":"text","text":"second"}]}
	]}}`

	want := "hello world\nsecond"
	if got := ProjectText(content); got != want {
		t.Errorf("ProjectText = %q, want %q", got, want)
	}
}

func TestProjectTextLists(t *testing.T) {
	content := `{"root":{"type":"root","children":[
		{"type":"list","listType":"number","children":[
			{"type":"listitem","children":[{"type":"text","text":"first"}]},
			{"type":"listitem","children":[{"type":"text","text":"second"}]}
		]},
		{"type":"list","listType":"check","children":[
			{"type":"listitem","checked":true,"children":[{"type":"text","text":"done"}]},
			{"type":"listitem","children":[{"type":"text","text":"todo"}]}
		]}
	]}}`

	want := "1. first\n2. second\n[x] done\n[ ] todo"
	if got := ProjectText(content); got != want {
		t.Errorf("ProjectText = %q, want %q", got, want)
	}
}

func TestProjectTextLinkKeepsOnlyText(t *testing.T) {
	content := `{"root":{"type":"root","children":[
		{"type":"paragraph","children":[
			{"type":"text","text":"see "},
			{"type":"link","url":"https://example.com","children":[{"type":"text","text":"the docs"}]}
		]}
	]}}`

	want := "see the docs"
	if got := ProjectText(content); got != want {
		t.Errorf("ProjectText = %q, want %q", got, want)
	}
}
