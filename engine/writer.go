package engine

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
)

const graphsShimTemplate = `<html>
<head><title>%s</title></head>
<body>
<h2>%s</h2>
<h3>Control-flow graph</h3>
%s
<h3>Structural dependency graph</h3>
%s
</body>
</html>
`

// WriteOutput writes one file's analysis result under outDir, following
// spec.md §6's on-disk layout: output_BASENAME.html always; the per-function
// .gv/.png/graphs_*.html trio only when the file had no semantic errors.
func WriteOutput(outDir string, fr *FileResult) error {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return errors.Wrapf(err, "creating %s", outDir)
	}

	base := BaseName(fr.Path)
	htmlPath := filepath.Join(outDir, fmt.Sprintf("output_%s.html", base))
	if err := os.WriteFile(htmlPath, []byte(fr.HTML), 0o644); err != nil {
		return errors.Wrapf(err, "writing %s", htmlPath)
	}

	for _, fg := range fr.Funcs {
		if err := writeFuncGraphs(outDir, base, fg); err != nil {
			return err
		}
	}
	return nil
}

func writeFuncGraphs(outDir, base string, fg FuncGraphs) error {
	cfgGv := filepath.Join(outDir, fmt.Sprintf("cfgraph_%s_%s.gv", base, fg.Name))
	if err := os.WriteFile(cfgGv, []byte(fg.CFGDot), 0o644); err != nil {
		return errors.Wrapf(err, "writing %s", cfgGv)
	}
	cfgPNGImg := ""
	if fg.CFGOk {
		cfgPNG := filepath.Join(outDir, fmt.Sprintf("cfgraph_%s_%s.png", base, fg.Name))
		if err := os.WriteFile(cfgPNG, fg.CFGPNG, 0o644); err != nil {
			return errors.Wrapf(err, "writing %s", cfgPNG)
		}
		cfgPNGImg = fmt.Sprintf(`<img src="cfgraph_%s_%s.png">`, base, fg.Name)
	}

	sdgGv := filepath.Join(outDir, fmt.Sprintf("sdgraph_%s_%s.gv", base, fg.Name))
	if err := os.WriteFile(sdgGv, []byte(fg.SDGDot), 0o644); err != nil {
		return errors.Wrapf(err, "writing %s", sdgGv)
	}
	sdgPNGImg := ""
	if fg.SDGOk {
		sdgPNG := filepath.Join(outDir, fmt.Sprintf("sdgraph_%s_%s.png", base, fg.Name))
		if err := os.WriteFile(sdgPNG, fg.SDGPNG, 0o644); err != nil {
			return errors.Wrapf(err, "writing %s", sdgPNG)
		}
		sdgPNGImg = fmt.Sprintf(`<img src="sdgraph_%s_%s.png">`, base, fg.Name)
	}

	shimPath := filepath.Join(outDir, fmt.Sprintf("graphs_%s_%s.html", base, fg.Name))
	shim := fmt.Sprintf(graphsShimTemplate, fg.Name, fg.Name, cfgPNGImg, sdgPNGImg)
	if err := os.WriteFile(shimPath, []byte(shim), 0o644); err != nil {
		return errors.Wrapf(err, "writing %s", shimPath)
	}
	return nil
}

// BaseName strips a path's directory and extension, e.g. "dir/prog.ipl" ->
// "prog".
func BaseName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
