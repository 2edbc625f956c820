package cmd

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
	"github.com/spf13/cobra"

	"github.com/zostay/go-mimestream/storage"
)

// ErrRoundTrip is returned when a message is not written back byte for byte.
var ErrRoundTrip = errors.New("message changed in round trip")

// lineDiff writes a line-by-line diff of a and b, marking removed lines with
// "-" and added lines with "+".
func lineDiff(w io.Writer, a, b string) error {
	dmp := diffmatchpatch.New()
	ca, cb, lines := dmp.DiffLinesToChars(a, b)
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(ca, cb, false), lines)

	for _, d := range diffs {
		prefix := " "
		switch d.Type {
		case diffmatchpatch.DiffDelete:
			prefix = "-"
		case diffmatchpatch.DiffInsert:
			prefix = "+"
		}

		for _, line := range strings.SplitAfter(d.Text, "\n") {
			if line == "" {
				continue
			}
			if _, err := fmt.Fprintf(w, "%s%q\n", prefix, line); err != nil {
				return err
			}
		}
	}
	return nil
}

func newRoundtripCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "roundtrip message",
		Short: "Parse a message, write it back out and show any difference",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			original, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}

			return o.withParser(cmd, func(cfg *Config, p storage.Provider) error {
				e, err := parseEntity(bytes.NewReader(original), cfg, p)
				if err != nil {
					return err
				}
				defer func() { _ = e.Release() }()

				var buf bytes.Buffer
				if _, err := e.WriteTo(&buf); err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				if bytes.Equal(original, buf.Bytes()) {
					_, err := fmt.Fprintln(out, "identical")
					return err
				}

				if err := lineDiff(out, string(original), buf.String()); err != nil {
					return err
				}
				return ErrRoundTrip
			})
		},
	}
}
