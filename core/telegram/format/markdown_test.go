package format

import "testing"

func TestEscapeMarkdownV1(t *testing.T) {
	got, err := EscapeMarkdown("a_b*c`d[e", MarkdownV1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := `a\_b\*c\` + "`" + `d\[e`
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestEscapeMarkdownV2(t *testing.T) {
	got, err := EscapeMarkdown("hello. (world)!", MarkdownV2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := `hello\. \(world\)\!`
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestEscapeMarkdownBackslash(t *testing.T) {
	got, err := EscapeMarkdown(`a\b`, MarkdownV2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != `a\\b` {
		t.Fatalf("got %q", got)
	}
}

func TestEscapeMarkdownUnknownVersion(t *testing.T) {
	if _, err := EscapeMarkdown("x", 3); err == nil {
		t.Fatal("expected error for unsupported version")
	}
}

func TestDerefHelpers(t *testing.T) {
	s := "custom"
	if got := DerefString(&s, "default"); got != "custom" {
		t.Fatalf("got %q", got)
	}
	if got := DerefString(nil, "default"); got != "default" {
		t.Fatalf("got %q", got)
	}
	n := 7
	if got := DerefInt(&n, 1); got != 7 {
		t.Fatalf("got %d", got)
	}
	if got := DerefInt(nil, 1); got != 1 {
		t.Fatalf("got %d", got)
	}
}
