package printer

import (
	"strings"
	"testing"
)

func TestFlushLineCleanLine(t *testing.T) {
	p := New()
	p.FlushLine("let x: int = 1;")
	if p.HasErrors() {
		t.Fatalf("clean line should not set has_errors")
	}
	if !strings.Contains(p.HTML(), "let x: int = 1;") {
		t.Fatalf("HTML missing flushed line")
	}
}

func TestFlushLineWithStagedError(t *testing.T) {
	p := New()
	p.StageError("Variable not in scope")
	p.FlushLine("y = 1;")
	if !p.HasErrors() {
		t.Fatalf("flushing a staged error should set has_errors")
	}
	html := p.HTML()
	if !strings.Contains(html, `<div class="error">y = 1;<span class="errortext">Variable not in scope</span></div>`) {
		t.Fatalf("HTML = %q, missing expected error wrapper", html)
	}
}

func TestFirstErrorWinsPerLine(t *testing.T) {
	p := New()
	p.StageError("first")
	p.StageError("second")
	if p.pendingError != "first" {
		t.Fatalf("pendingError = %q, want \"first\" (first-wins)", p.pendingError)
	}
}

func TestHasErrorsLatchesAcrossMultipleLines(t *testing.T) {
	p := New()
	p.FlushLine("clean;")
	p.StageError("oops")
	p.FlushLine("bad;")
	p.FlushLine("clean again;")
	if !p.HasErrors() {
		t.Fatalf("has_errors should stay true after a later clean line")
	}
}

func TestPendingErrorClearedAfterFlush(t *testing.T) {
	p := New()
	p.StageError("oops")
	p.FlushLine("bad;")
	if p.HasPendingError() {
		t.Fatalf("pendingError should be cleared after FlushLine")
	}
}

func TestEscapeOrderHandlesAmpersandFirst(t *testing.T) {
	got := Escape("a && b -> tuple<int>")
	want := "a &amp;&amp; b -&gt; tuple&lt;int&gt;"
	if got != want {
		t.Errorf("Escape() = %q, want %q", got, want)
	}
}

func TestIndentStringLevels(t *testing.T) {
	p := New()
	if p.IndentString() != "" {
		t.Errorf("level 0 indent should be empty")
	}
	p.Push()
	if p.IndentString() != "    " {
		t.Errorf("level 1 indent = %q, want 4 spaces", p.IndentString())
	}
	p.Push()
	if p.IndentString() != "        " {
		t.Errorf("level 2 indent = %q, want 8 spaces", p.IndentString())
	}
	if p.DedentedIndentString() != "    " {
		t.Errorf("dedented indent at level 2 = %q, want 4 spaces", p.DedentedIndentString())
	}
}

func TestLinkFunctionHeaders(t *testing.T) {
	html := "fn add(x: int) {\n"
	linked := LinkFunctionHeaders(html, "prog", []string{"add"})
	if !strings.Contains(linked, `fn <a href="graphs_prog_add.html">add</a>(`) {
		t.Fatalf("got %q", linked)
	}
}
