package cli

import (
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/matzehuels/kle/pkg/errors"
	"github.com/matzehuels/kle/pkg/integrations/gist"
	kleio "github.com/matzehuels/kle/pkg/io"
)

// fetchCommand creates the fetch command.
func (c *CLI) fetchCommand() *cobra.Command {
	var (
		out      outputFlags
		fileName string
		token    string
		save     bool
		refresh  bool
		noCache  bool
	)

	cmd := &cobra.Command{
		Use:   "fetch <gist>",
		Short: "Download a layout from a GitHub gist",
		Long: `Fetch downloads a layout saved by keyboard-layout-editor.com, which stores
layouts as GitHub gists. The gist may be given as an ID, a gist URL or an
editor URL such as http://www.keyboard-layout-editor.com/#/gists/<id>.

The layout is normalized and written to stdout, to --output, or with --save
to the gist's file name in the current directory. When a gist holds several
layout files, choose one with --file or interactively.

Responses are cached; set a token (--token, KLE_GITHUB_TOKEN or
github.token in the config) for higher API rate limits.`,
		Example: `  kle fetch 8f2b7c3d9e1a4b5c6d7e8f9a0b1c2d3e
  kle fetch https://gist.github.com/user/8f2b7c3d9e1a4b5c6d7e8f9a0b1c2d3e -o board.yaml
  kle fetch 8f2b7c3d9e1a4b5c6d7e8f9a0b1c2d3e --file planck.kbd.json --save`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := loggerFromContext(ctx)

			id, err := gist.ParseGistID(args[0])
			if err != nil {
				return err
			}

			cc, err := c.newCache(ctx, noCache)
			if err != nil {
				return err
			}
			defer cc.Close()

			if token == "" {
				token = c.config.GitHub.Token
			}
			client := gist.NewClient(cc, token, c.config.Cache.TTL)
			if u := c.config.GitHub.APIURL; u != "" {
				client.SetBaseURL(u)
			}

			sp := newSpinner(ctx, "Fetching gist "+id)
			sp.Start()
			g, err := client.Fetch(ctx, id, refresh)
			if err != nil {
				sp.StopWithError("Fetch failed")
				return err
			}
			sp.Stop()
			logger.Debug("fetched gist", "id", g.ID, "files", len(g.Files), "updated", g.UpdatedAt)

			file, err := chooseFile(g, fileName)
			if err != nil {
				return err
			}

			kbd, err := kleio.Read(ctx, strings.NewReader(file.Content), kleio.FormatJSON)
			if err != nil {
				return errors.Wrap(errors.GetCode(err), err, "%s", file.Filename)
			}
			printSuccess("Fetched %s", file.Filename)
			printFetchStats(len(g.LayoutFiles()), len(kbd.Keys))

			if save && out.output == "" {
				if err := errors.ValidatePath(file.Filename); err != nil {
					return err
				}
				out.output = file.Filename
			}
			return c.writeLayout(ctx, cmd.OutOrStdout(), kbd, out)
		},
	}

	out.register(cmd)
	cmd.Flags().StringVar(&fileName, "file", "", "layout file within the gist")
	cmd.Flags().StringVar(&token, "token", "", "GitHub token (default from KLE_GITHUB_TOKEN or config)")
	cmd.Flags().BoolVar(&save, "save", false, "write to the gist's file name in the current directory")
	cmd.Flags().BoolVar(&refresh, "refresh", false, "bypass cached responses")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	return cmd
}

// chooseFile selects the layout file to read: the named one, the only one,
// or one picked interactively.
func chooseFile(g *gist.Gist, name string) (*gist.File, error) {
	if name != "" {
		f, ok := g.File(name)
		if !ok {
			return nil, errors.New(errors.ErrCodeNotFound, "gist %s has no file %q", g.ID, name)
		}
		return &f, nil
	}

	files := g.LayoutFiles()
	switch len(files) {
	case 0:
		return nil, errors.New(errors.ErrCodeInvalidLayout, "gist %s has no layout files", g.ID)
	case 1:
		return &files[0], nil
	}

	if !interactive() {
		names := make([]string, len(files))
		for i, f := range files {
			names[i] = f.Filename
		}
		return nil, errors.New(errors.ErrCodeInvalidInput,
			"gist %s has %d layout files, choose one with --file: %s", g.ID, len(files), strings.Join(names, ", "))
	}

	f, err := pickFile("Select Layout", files)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "file picker")
	}
	if f == nil {
		return nil, errors.New(errors.ErrCodeInvalidInput, "no layout file selected")
	}
	return f, nil
}

// interactive reports whether a picker can be shown.
func interactive() bool {
	return isatty.IsTerminal(os.Stdin.Fd()) && isatty.IsTerminal(os.Stderr.Fd())
}
