package cli

import (
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/kle/pkg/errors"
	kleio "github.com/matzehuels/kle/pkg/io"
	"github.com/matzehuels/kle/pkg/kle"
)

// convertCommand creates the convert command.
func (c *CLI) convertCommand() *cobra.Command {
	var (
		out       outputFlags
		inFormat  string
		toModel   bool
		fromModel bool
	)

	cmd := &cobra.Command{
		Use:   "convert <file|->",
		Short: "Convert a layout between formats or to the normalized model",
		Long: `Convert reads a layout and writes it in another format. Formats are
inferred from file names (.json, .kbd.json, .yaml, .yml, .cbor, each
optionally followed by .gz or .zst) unless --format is given.

With --model the normalized key model is written as JSON instead of rows:
one record per key with absolute positions and twelve legend slots. With
--from-model such a record is read back and serialized to rows.`,
		Example: `  kle convert board.json -o board.yaml
  kle convert board.json --model -o board.model.json
  kle convert board.model.json --from-model -o board.json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if toModel && fromModel {
				return errors.New(errors.ErrCodeInvalidInput, "--model and --from-model are mutually exclusive")
			}

			var kbd *kle.Keyboard
			var err error
			if fromModel {
				kbd, err = readModelFile(cmd.InOrStdin(), args[0])
			} else {
				kbd, err = c.readLayout(ctx, cmd.InOrStdin(), args[0], inFormat)
			}
			if err != nil {
				return err
			}

			if !toModel {
				return c.writeLayout(ctx, cmd.OutOrStdout(), kbd, out)
			}
			if out.output == "" {
				return kleio.WriteModel(cmd.OutOrStdout(), kbd)
			}
			if err := writeModelFile(out.output, kbd); err != nil {
				return err
			}
			printSuccess("Wrote model of %s", pluralize(len(kbd.Keys), "key"))
			printFile(out.output)
			return nil
		},
	}

	out.register(cmd)
	cmd.Flags().StringVar(&inFormat, "input-format", "", "stdin format: json, yaml, cbor (default json)")
	cmd.Flags().BoolVar(&toModel, "model", false, "write the normalized model instead of rows")
	cmd.Flags().BoolVar(&fromModel, "from-model", false, "read a normalized model instead of rows")
	return cmd
}

func readModelFile(stdin io.Reader, path string) (*kle.Keyboard, error) {
	if path == stdinArg {
		return kleio.ReadModel(stdin)
	}
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "model %s", path)
		}
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "open %s", path)
	}
	defer f.Close()
	return kleio.ReadModel(f)
}

func writeModelFile(path string, kbd *kle.Keyboard) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidPath, err, "create %s", path)
	}
	if err := kleio.WriteModel(f, kbd); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
