package gen

import "testing"

func TestFormatDocComments(t *testing.T) {
	got := FormatDocComments("returns the current time", false)
	want := "// returns the current time\n"
	if got != want {
		t.Errorf("FormatDocComments() = %q, want %q", got, want)
	}
}

func TestFormatDocCommentsEmpty(t *testing.T) {
	if got := FormatDocComments("", false); got != "" {
		t.Errorf("FormatDocComments(\"\") = %q, want \"\"", got)
	}
}

func TestComment(t *testing.T) {
	got := Comment("line one", "line two")
	want := "// line one\n// line two\n"
	if got != want {
		t.Errorf("Comment() = %q, want %q", got, want)
	}
}
