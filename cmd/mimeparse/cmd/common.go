package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/gobwas/glob"
	"github.com/zeebo/blake3"

	"github.com/zostay/go-mimestream/entity"
	"github.com/zostay/go-mimestream/storage"
	"github.com/zostay/go-mimestream/stream"
)

// compileMatch compiles a glob over media types. The "/" separates type and
// subtype, so "text/*" matches every text type and "**" matches anything.
func compileMatch(pattern string) (glob.Glob, error) {
	g, err := glob.Compile(strings.ToLower(pattern), '/')
	if err != nil {
		return nil, fmt.Errorf("bad --match pattern %q: %w", pattern, err)
	}
	return g, nil
}

// digest returns the hex BLAKE3 digest of a stored body.
func digest(h storage.Handle) (string, error) {
	r, err := h.Open()
	if err != nil {
		return "", err
	}
	defer func() { _ = r.Close() }()

	hasher := blake3.New()
	if _, err := io.Copy(hasher, r); err != nil {
		return "", err
	}
	return fmt.Sprintf("%x", hasher.Sum(nil)), nil
}

// parseEntity parses a whole message into a tree with the configured
// options.
func parseEntity(r io.Reader, cfg *Config, p storage.Provider) (*entity.Entity, error) {
	b := entity.NewBuilder()
	b.Encoded = !cfg.Parser.DecodeTransferEncoding
	if err := stream.Parse(r, b, cfg.ParseOptions(p)...); err != nil {
		_ = b.Release()
		return nil, err
	}
	return b.Entity(), nil
}
