package cli

import (
	"context"
	"io"

	"github.com/spf13/cobra"

	kleio "github.com/matzehuels/kle/pkg/io"
	"github.com/matzehuels/kle/pkg/kle"
)

// stdinArg names standard input as a layout source.
const stdinArg = "-"

// normalizeCommand creates the normalize command.
func (c *CLI) normalizeCommand() *cobra.Command {
	var out outputFlags
	var inFormat string

	cmd := &cobra.Command{
		Use:   "normalize [file|-]",
		Short: "Rewrite a layout in canonical form",
		Long: `Normalize reads a layout and writes it back in canonical row notation:
redundant properties are dropped and every legend uses the shortest
alignment. Normalizing twice gives the same result.

Without a file, or with "-", the layout is read from stdin.`,
		Example: `  kle normalize board.json -o board.json
  kle normalize board.yaml.gz --format json --compact
  cat board.json | kle normalize`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			prog := newProgress(loggerFromContext(ctx))

			kbd, err := c.readLayout(ctx, cmd.InOrStdin(), firstArg(args), inFormat)
			if err != nil {
				return err
			}
			if err := c.writeLayout(ctx, cmd.OutOrStdout(), kbd, out); err != nil {
				return err
			}
			prog.done(pluralize(len(kbd.Keys), "key") + " normalized")
			return nil
		},
	}

	out.register(cmd)
	cmd.Flags().StringVar(&inFormat, "input-format", "", "stdin format: json, yaml, cbor (default json)")
	return cmd
}

// readLayout reads a layout from path, or from stdin when path is empty or
// "-".
func (c *CLI) readLayout(ctx context.Context, stdin io.Reader, path, format string) (*kle.Keyboard, error) {
	if path != "" && path != stdinArg {
		loggerFromContext(ctx).Debug("reading layout", "path", path)
		return kleio.Import(ctx, path)
	}
	f := kleio.FormatJSON
	if format != "" {
		var err error
		if f, err = kleio.ParseFormat(format); err != nil {
			return nil, err
		}
	}
	return kleio.Read(ctx, stdin, f)
}

// writeLayout writes kbd as rows to the output file, or to stdout.
func (c *CLI) writeLayout(ctx context.Context, stdout io.Writer, kbd *kle.Keyboard, out outputFlags) error {
	opts, err := out.options(c.config)
	if err != nil {
		return err
	}
	if out.output == "" {
		return kleio.Write(ctx, stdout, kbd, opts)
	}
	if err := kleio.Export(ctx, kbd, out.output, opts); err != nil {
		return err
	}
	printSuccess("Wrote %s", pluralize(len(kbd.Keys), "key"))
	printFile(out.output)
	return nil
}

func firstArg(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return args[0]
}
