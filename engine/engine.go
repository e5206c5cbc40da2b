// Package engine is the programmatic entrypoint to the IPL analyzer: given
// one source file, it runs the parser, the static analyzer, and — if the
// file typechecks cleanly — the CFG and SDG builders for every function it
// declares.
package engine

import (
	"os"

	"github.com/pkg/errors"

	"github.com/iplang/iplanalyze/analyzer"
	"github.com/iplang/iplanalyze/ast"
	"github.com/iplang/iplanalyze/cfg"
	"github.com/iplang/iplanalyze/graph"
	"github.com/iplang/iplanalyze/parser"
	"github.com/iplang/iplanalyze/printer"
	"github.com/iplang/iplanalyze/sdg"
)

// FuncGraphs holds one function's rendered CFG and SDG.
type FuncGraphs struct {
	Name   string
	CFGDot string
	CFGPNG []byte
	CFGOk  bool // a PNG was produced (false when the "dot" binary is absent)
	SDGDot string
	SDGPNG []byte
	SDGOk  bool
}

// FileResult is everything produced by analyzing one source file.
type FileResult struct {
	Path      string
	HTML      string
	HasErrors bool
	Funcs     []FuncGraphs
}

// ProcessFile reads, parses and analyzes the file at path. A non-nil error
// means the file could not be read or failed to parse (spec status 3); the
// caller logs it to
// err.log and moves on to the next file. Graphs are only built when the
// analysis found no semantic errors (spec status 2 otherwise, graphs
// skipped for that file).
func ProcessFile(path string) (*FileResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading %s", path)
	}

	unit, err := parser.Parse(string(data))
	if err != nil {
		return nil, errors.Wrapf(err, "parsing %s", path)
	}

	res := analyzer.New().Analyze(unit)
	html := printer.LinkFunctionHeaders(res.HTML, BaseName(path), res.FuncNames)
	fr := &FileResult{Path: path, HTML: html, HasErrors: res.HasErrors}
	if res.HasErrors {
		return fr, nil
	}

	for _, c := range unit.Constructs {
		fd, ok := c.(*ast.FuncDefn)
		if !ok {
			continue
		}
		fr.Funcs = append(fr.Funcs, buildFuncGraphs(fd))
	}
	return fr, nil
}

func buildFuncGraphs(fd *ast.FuncDefn) FuncGraphs {
	fg := FuncGraphs{Name: fd.Name}

	cfgBuilder, _ := cfg.Build(fd)
	if dotText, err := cfgBuilder.DOT(fd.Name); err == nil {
		fg.CFGDot = dotText
	}
	if png, ok, err := graph.RenderPNG(fg.CFGDot); err == nil && ok {
		fg.CFGPNG = png
		fg.CFGOk = true
	}

	sdgResult := sdg.Build(fd)
	if dotText, err := sdgResult.G.DOT(fd.Name); err == nil {
		fg.SDGDot = dotText
	}
	if png, ok, err := graph.RenderPNG(fg.SDGDot); err == nil && ok {
		fg.SDGPNG = png
		fg.SDGOk = true
	}

	return fg
}
