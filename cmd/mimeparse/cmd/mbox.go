package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/emersion/go-mbox"
	"github.com/spf13/cobra"

	"github.com/zostay/go-mimestream/entity"
	"github.com/zostay/go-mimestream/storage"
)

// summarize writes one line for the message: its number, subject and the
// number of single bodies.
func summarize(w io.Writer, n int, e *entity.Entity) error {
	subject, err := e.Header.GetSubject()
	if err != nil {
		subject = "(no subject)"
	}

	bodies := 0
	_ = entity.Walker(func(_, _ int, _ *entity.Entity) error {
		bodies++
		return nil
	}).WalkSingle(e)

	_, err = fmt.Fprintf(w, "%d\t%s\t%s\t%d bodies\n", n, e.MediaType, subject, bodies)
	return err
}

func newMboxCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "mbox mailbox",
		Short: "Parse every message of an mbox file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return o.withParser(cmd, func(cfg *Config, p storage.Provider) error {
				f, err := os.Open(args[0])
				if err != nil {
					return err
				}
				defer func() { _ = f.Close() }()

				failed := 0
				mr := mbox.NewReader(f)
				for n := 1; ; n++ {
					r, err := mr.NextMessage()
					if errors.Is(err, io.EOF) {
						break
					} else if err != nil {
						return err
					}

					e, err := parseEntity(r, cfg, p)
					if err != nil {
						failed++
						fmt.Fprintf(cmd.ErrOrStderr(), "message %d: %v\n", n, err)
						continue
					}

					err = summarize(cmd.OutOrStdout(), n, e)
					_ = e.Release()
					if err != nil {
						return err
					}
				}

				if failed > 0 {
					return fmt.Errorf("%d messages could not be parsed", failed)
				}
				return nil
			})
		},
	}
}
