// Package upstream answers questions about the google/fonts repository on
// GitHub, such as whether a family has already been onboarded.
package upstream

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/go-github/v81/github"
	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/oauth2"
)

const (
	DefaultOwner = "google"
	DefaultRepo  = "fonts"

	answerCacheSize = 256
)

// Client looks up families in a GitHub-hosted font catalog.
type Client struct {
	gh     *github.Client
	budget *RequestBudget
	logger *slog.Logger
	owner  string
	repo   string
	// answers remembers IsListed results by family directory.
	answers *lru.Cache[string, bool]
}

type options struct {
	logger  *slog.Logger
	baseURL string
	owner   string
	repo    string
	budget  *RequestBudget
}

type Option func(*options)

// WithLogger logs one debug line per HTTP request and response.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithBaseURL points the client at another API root, e.g. a test server.
func WithBaseURL(u string) Option {
	return func(o *options) { o.baseURL = u }
}

// WithRepository overrides the catalog repository.
func WithRepository(owner, repo string) Option {
	return func(o *options) {
		o.owner = owner
		o.repo = repo
	}
}

func WithBudget(b *RequestBudget) Option {
	return func(o *options) { o.budget = b }
}

type loggingRoundTripper struct {
	base   http.RoundTripper
	logger *slog.Logger
}

func (t *loggingRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	start := time.Now()
	t.logger.Debug("github api request", "method", req.Method, "url", req.URL.String())
	resp, err := t.base.RoundTrip(req)
	dur := time.Since(start).Truncate(time.Millisecond)
	if err != nil {
		t.logger.Debug("github api error", "duration", dur, "error", err)
	} else {
		t.logger.Debug("github api response", "status", resp.StatusCode, "duration", dur)
	}
	return resp, err
}

// NewClient builds a client. An empty token means unauthenticated requests,
// which GitHub rate-limits much more aggressively.
func NewClient(ctx context.Context, token string, opts ...Option) (*Client, error) {
	if ctx == nil {
		return nil, fmt.Errorf("upstream client: ctx is nil")
	}
	o := &options{owner: DefaultOwner, repo: DefaultRepo}
	for _, apply := range opts {
		if apply != nil {
			apply(o)
		}
	}
	if o.logger == nil {
		o.logger = slog.New(slog.DiscardHandler)
	}
	if o.budget == nil {
		o.budget = NewRequestBudget()
	}

	transport := http.RoundTripper(&loggingRoundTripper{base: http.DefaultTransport, logger: o.logger})
	if token != "" {
		ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
		transport = &oauth2.Transport{Source: ts, Base: transport}
	}
	gh := github.NewClient(&http.Client{Transport: transport})

	if o.baseURL != "" {
		base := o.baseURL
		if !strings.HasSuffix(base, "/") {
			base += "/"
		}
		u, err := url.Parse(base)
		if err != nil {
			return nil, fmt.Errorf("upstream client: invalid base URL %q: %w", o.baseURL, err)
		}
		gh.BaseURL = u
	}

	answers, err := lru.New[string, bool](answerCacheSize)
	if err != nil {
		return nil, fmt.Errorf("upstream client: %w", err)
	}

	return &Client{gh: gh, budget: o.budget, logger: o.logger, owner: o.owner, repo: o.repo, answers: answers}, nil
}
