// Command iplanalyze is the IPL static analyzer and control-flow
// visualizer's command-line entrypoint.
package main

import (
	"os"

	"github.com/iplang/iplanalyze/engine/cli"
)

func main() {
	os.Exit(cli.Run(os.Stdin, os.Stdout, os.Stderr, os.Args))
}
