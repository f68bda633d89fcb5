package cli

import (
	"fmt"
	"os"

	"github.com/alecthomas/kong"
	"github.com/alecthomas/repr"

	"github.com/robinvdvleuten/beansql/errors"
	"github.com/robinvdvleuten/beansql/parser"
)

type ParseCmd struct {
	File string `help:"Ledger input file." arg:"" type:"existingfile"`
}

// Run parses a single file, without include splicing or booking, and dumps
// the directive tree. Useful for debugging grammar issues.
func (cmd *ParseCmd) Run(ctx *kong.Context, globals *Globals) error {
	src, err := os.ReadFile(cmd.File)
	if err != nil {
		return err
	}

	file, syntaxErrors := parser.Parse(cmd.File, src)
	if len(syntaxErrors) > 0 {
		renderer := errors.NewRenderer(nil)
		renderer.AddSource(cmd.File, src)
		errs := make([]error, len(syntaxErrors))
		for i, serr := range syntaxErrors {
			errs[i] = serr
		}
		_, _ = fmt.Fprintln(ctx.Stderr, renderer.RenderAll(errs))
		_, _ = fmt.Fprintln(ctx.Stderr)
		printError(ctx.Stderr, fmt.Sprintf("%d syntax error(s)", len(syntaxErrors)))
		return NewCommandError(1)
	}

	repr.Println(file)
	return nil
}
