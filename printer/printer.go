// Package printer builds the annotated HTML listing the analyzer emits: an
// incremental text buffer wrapped in an HTML scaffold, with per-line error
// tooltips attached via a first-wins "pending error" slot.
package printer

import (
	"fmt"
	"strings"
)

const indentUnit = "    "

// Printer accumulates one source file's canonical listing. The analyzer
// drives it: visiting a sub-expression may StageError, and visiting the
// enclosing whole-line construct calls FlushLine to commit the line (with
// or without its error wrapper) and clear the slot.
type Printer struct {
	body         strings.Builder
	indentLevel  int
	pendingError string
	hasErrors    bool
}

// New returns an empty Printer at indent level 0.
func New() *Printer {
	return &Printer{}
}

// Push increases the indent level by one, for entering a block body.
func (p *Printer) Push() {
	p.indentLevel++
}

// Pop decreases the indent level by one, for leaving a block body.
func (p *Printer) Pop() {
	p.indentLevel--
}

// IndentString is the current indent prefix, 4 spaces per level.
func (p *Printer) IndentString() string {
	return strings.Repeat(indentUnit, p.indentLevel)
}

// DedentedIndentString is one level shallower than the current indent; used
// by the `for` header line, which prints aligned with the enclosing block
// while its body indents one level further (spec's documented quirk).
func (p *Printer) DedentedIndentString() string {
	if p.indentLevel == 0 {
		return ""
	}
	return strings.Repeat(indentUnit, p.indentLevel-1)
}

// StageError records msg as the pending error for the line under
// construction, but only if no error is already staged: first violation
// detected wins, matching the source's single-error-per-line behavior.
func (p *Printer) StageError(msg string) {
	if p.pendingError == "" {
		p.pendingError = msg
	}
}

// HasPendingError reports whether an error is currently staged.
func (p *Printer) HasPendingError() bool {
	return p.pendingError != ""
}

// FlushLine commits one whole printed line: code is the already-indented,
// already-HTML-escaped source text for that line (without trailing
// newline). If an error is staged, the line is wrapped in the hoverable
// error span; either way pendingError is cleared afterward and hasErrors
// latches true if an error was flushed.
func (p *Printer) FlushLine(code string) {
	if p.pendingError != "" {
		fmt.Fprintf(&p.body, `<div class="error">%s<span class="errortext">%s</span></div>`, code, p.pendingError)
		p.body.WriteByte('\n')
		p.hasErrors = true
		p.pendingError = ""
		return
	}
	p.body.WriteString(code)
	p.body.WriteByte('\n')
}

// Blank emits an empty line, e.g. after a function's closing brace.
func (p *Printer) Blank() {
	p.body.WriteByte('\n')
}

// HasErrors reports the sticky has_errors flag: true once any line has
// ever been flushed with a staged error.
func (p *Printer) HasErrors() bool {
	return p.hasErrors
}

// Escape applies the three HTML substitutions the listing requires:
// '<' -> "&lt;", '>' -> "&gt;", '&' -> "&amp;". Order matters: '&' must be
// escaped first so the other substitutions' own ampersands are not
// re-escaped.
func Escape(s string) string {
	s = strings.ReplaceAll(s, "&", "&amp;")
	s = strings.ReplaceAll(s, "<", "&lt;")
	s = strings.ReplaceAll(s, ">", "&gt;")
	return s
}

const htmlPreamble = `<html>
<head>
<style>
.error { text-decoration: underline; text-decoration-color: red; position: relative; }
.error .errortext { display: none; position: absolute; background: #333; color: #fff; padding: 2px 6px; border-radius: 4px; white-space: nowrap; z-index: 1; }
.error:hover .errortext { display: inline-block; }
</style>
</head>
<body>
<div class="w3-code"><pre>
`

const htmlPostamble = `</pre></div>
</body>
</html>
`

// HTML renders the complete listing document: the style/body scaffold
// wrapped around the accumulated, already-flushed body text.
func (p *Printer) HTML() string {
	var out strings.Builder
	out.WriteString(htmlPreamble)
	out.WriteString(p.body.String())
	out.WriteString(htmlPostamble)
	return out.String()
}

// LinkFunctionHeaders rewrites every occurrence of "fn NAME(" in html to
// hyperlink NAME to that function's graph bundle page, per spec §6's
// post-processing pass; the match is not limited to the start of a line. baseName is the source file's base name (without
// extension), used to build the graphs_BASE_FUNC.html target.
func LinkFunctionHeaders(html, baseName string, funcNames []string) string {
	for _, name := range funcNames {
		old := "fn " + name + "("
		new := fmt.Sprintf(`fn <a href="graphs_%s_%s.html">%s</a>(`, baseName, name, name)
		html = strings.ReplaceAll(html, old, new)
	}
	return html
}
