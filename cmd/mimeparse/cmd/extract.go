package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/gobwas/glob"
	"github.com/spf13/cobra"

	"github.com/zostay/go-mimestream/entity"
	"github.com/zostay/go-mimestream/header/encoding"
	"github.com/zostay/go-mimestream/storage"
)

// extractor writes the single bodies of a tree into a directory.
type extractor struct {
	dir   string
	match glob.Glob
	utf8  bool
	out   io.Writer
	n     int
}

// fileName picks a file name for a part: the name it was sent with or a
// numbered one.
func (x *extractor) fileName(e *entity.Entity) string {
	x.n++
	if fn, err := e.Header.GetFilename(); err == nil {
		fn = filepath.Base(filepath.Clean("/" + fn))
		if fn != "/" && fn != "." {
			return fmt.Sprintf("%d-%s", x.n, fn)
		}
	}
	return fmt.Sprintf("part-%d", x.n)
}

func (x *extractor) reader(e *entity.Entity, r io.Reader) (io.Reader, error) {
	if !x.utf8 || !strings.HasPrefix(e.MediaType, "text/") {
		return r, nil
	}

	charset, err := e.Header.GetCharset()
	if err != nil || charset == "" || strings.EqualFold(charset, "utf-8") {
		return r, nil
	}
	return encoding.NewReader(charset, r)
}

func (x *extractor) extract(e *entity.Entity) error {
	return entity.Walker(func(_, _ int, part *entity.Entity) error {
		if !x.match.Match(part.MediaType) {
			return nil
		}

		sb := part.Body.(*entity.SingleBody)
		if sb.Handle == nil {
			return nil
		}

		rc, err := sb.Handle.Open()
		if err != nil {
			return err
		}
		defer func() { _ = rc.Close() }()

		r, err := x.reader(part, rc)
		if err != nil {
			return err
		}

		path := filepath.Join(x.dir, x.fileName(part))
		f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if err != nil {
			return err
		}

		if _, err := io.Copy(f, r); err != nil {
			_ = f.Close()
			return err
		}

		if err := f.Close(); err != nil {
			return err
		}

		sum, err := digest(sb.Handle)
		if err != nil {
			return err
		}

		_, err = fmt.Fprintf(x.out, "%s %s %s\n", sum, part.MediaType, path)
		return err
	}).WalkSingle(e)
}

func newExtractCmd(o *options) *cobra.Command {
	var (
		pattern string
		toUTF8  bool
	)
	cmd := &cobra.Command{
		Use:   "extract message dir",
		Short: "Write the decoded bodies of a message into a directory",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			match, err := compileMatch(pattern)
			if err != nil {
				return err
			}

			if err := os.MkdirAll(args[1], 0o755); err != nil {
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

				x := &extractor{dir: args[1], match: match, utf8: toUTF8, out: cmd.OutOrStdout()}
				return x.extract(e)
			})
		},
	}

	cmd.Flags().StringVar(&pattern, "match", "**", "only extract bodies whose media type matches this glob")
	cmd.Flags().BoolVar(&toUTF8, "utf8", false, "convert text bodies to UTF-8")
	return cmd
}
