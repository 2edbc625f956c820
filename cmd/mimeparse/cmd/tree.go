package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/gobwas/glob"
	"github.com/spf13/cobra"

	"github.com/zostay/go-mimestream/entity"
	"github.com/zostay/go-mimestream/storage"
)

// printTree writes one line per entity whose media type matches.
func printTree(w io.Writer, e *entity.Entity, match glob.Glob) error {
	return entity.Walker(func(depth, i int, part *entity.Entity) error {
		if !match.Match(part.MediaType) {
			return nil
		}

		line := strings.Repeat("  ", depth) + part.MediaType
		switch b := part.Body.(type) {
		case *entity.Multipart:
			line += fmt.Sprintf(" boundary=%q parts=%d", b.Boundary, len(b.Parts))
		case *entity.SingleBody:
			if fn, err := part.Header.GetFilename(); err == nil && fn != "" {
				line += fmt.Sprintf(" filename=%q", fn)
			}

			if b.Handle != nil {
				sum, err := digest(b.Handle)
				if err != nil {
					return err
				}
				line += fmt.Sprintf(" size=%d blake3=%s", b.Handle.Size(), sum)
			}
		}

		_, err := fmt.Fprintln(w, line)
		return err
	}).Walk(e)
}

func newTreeCmd(o *options) *cobra.Command {
	var pattern string
	cmd := &cobra.Command{
		Use:   "tree message",
		Short: "Print the entity tree of a message with body digests",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			match, err := compileMatch(pattern)
			if err != nil {
				return err
			}

			return o.withParser(cmd, func(cfg *Config, p storage.Provider) error {
				f, err := os.Open(args[0])
				if err != nil {
					return err
				}
				defer func() { _ = f.Close() }()

				e, err := parseEntity(f, cfg, p)
				if err != nil {
					return err
				}
				defer func() { _ = e.Release() }()

				return printTree(cmd.OutOrStdout(), e, match)
			})
		},
	}

	cmd.Flags().StringVar(&pattern, "match", "**", "only show entities whose media type matches this glob")
	return cmd
}
