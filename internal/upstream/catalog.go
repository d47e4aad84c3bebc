package upstream

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"unicode"
)

// LicenseDirectories are the top-level directories of google/fonts, in the
// order they are searched.
var LicenseDirectories = []string{"ofl", "apache", "ufl"}

// Lookup answers whether a family is already in the catalog.
type Lookup interface {
	IsListed(ctx context.Context, family string) (bool, error)
}

// FamilyDirectory converts a family name to its google/fonts directory name:
// "Noto Sans JP" becomes "notosansjp".
func FamilyDirectory(family string) string {
	var b strings.Builder
	for _, r := range family {
		if r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)) {
			b.WriteRune(unicode.ToLower(r))
		}
	}
	return b.String()
}

// IsListed reports whether any license directory holds the family.
func (c *Client) IsListed(ctx context.Context, family string) (bool, error) {
	dir := FamilyDirectory(family)
	if dir == "" {
		return false, errors.New("family name has no usable characters")
	}
	if listed, ok := c.answers.Get(dir); ok {
		return listed, nil
	}
	for _, license := range LicenseDirectories {
		path := license + "/" + dir
		if err := c.budget.Acquire(ctx); err != nil {
			return false, err
		}
		_, _, resp, err := c.gh.Repositories.GetContents(ctx, c.owner, c.repo, path, nil)
		if resp != nil {
			c.budget.UpdateFromResponse(resp.Response)
		}
		switch {
		case err == nil:
			c.logger.Debug("family found upstream", "family", family, "path", path)
			c.answers.Add(dir, true)
			return true, nil
		case IsNotFound(err):
			continue
		default:
			return false, err
		}
	}
	c.logger.Debug("family not found upstream", "family", family)
	c.answers.Add(dir, false)
	return false, nil
}

// LazyClient defers token resolution and client construction to the first
// lookup, so runs with --skip-network never shell out to gh.
type LazyClient struct {
	get func() (*Client, error)
}

func NewLazyClient(logger *slog.Logger, token string, opts ...Option) *LazyClient {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &LazyClient{get: sync.OnceValues(func() (*Client, error) {
		ctx := context.Background()
		tok, source, err := ResolveAuthToken(ctx, token)
		if err != nil {
			return nil, err
		}
		if source == TokenNone {
			logger.Info("no GitHub token found; upstream lookups are unauthenticated")
		} else {
			logger.Debug("resolved GitHub token", "source", string(source))
		}
		return NewClient(ctx, tok, append([]Option{WithLogger(logger)}, opts...)...)
	})}
}

func (l *LazyClient) IsListed(ctx context.Context, family string) (bool, error) {
	c, err := l.get()
	if err != nil {
		return false, err
	}
	return c.IsListed(ctx, family)
}
