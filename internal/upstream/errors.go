package upstream

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/go-github/v81/github"
)

// IsNotFound reports whether err is a GitHub 404.
func IsNotFound(err error) bool {
	var er *github.ErrorResponse
	return errors.As(err, &er) && er.Response != nil && er.Response.StatusCode == http.StatusNotFound
}

// IsRateLimited reports whether err came from an exhausted rate limit.
func IsRateLimited(err error) bool {
	var rl *github.RateLimitError
	var arl *github.AbuseRateLimitError
	return errors.As(err, &rl) || errors.As(err, &arl)
}

// Describe renders err for a check message without the request URL, which
// may carry query parameters the user did not ask to see.
func Describe(err error) string {
	if err == nil {
		return "unknown error"
	}
	if IsRateLimited(err) {
		return "GitHub API rate limit exceeded; set GITHUB_TOKEN to raise it"
	}
	var er *github.ErrorResponse
	if errors.As(err, &er) {
		msg := strings.TrimSpace(er.Message)
		if msg == "" {
			msg = "request failed"
		}
		if er.Response != nil {
			code := er.Response.StatusCode
			return fmt.Sprintf("GitHub API %d %s: %s", code, http.StatusText(code), msg)
		}
		return "GitHub API: " + msg
	}
	s := strings.TrimSpace(err.Error())
	if scrubbed := scrubRequestLine(s); scrubbed != "" {
		return scrubbed
	}
	return s
}

// scrubRequestLine drops a leading "GET https://...: " from go-github and
// net/http error strings.
func scrubRequestLine(s string) string {
	for _, m := range []string{"GET ", "HEAD ", "POST ", "PUT ", "PATCH ", "DELETE "} {
		if !strings.HasPrefix(s, m) {
			continue
		}
		if i := strings.Index(s, "://"); i >= 0 {
			if j := strings.Index(s[i:], ": "); j >= 0 {
				return strings.TrimSpace(s[i+j+2:])
			}
		}
		if j := strings.Index(s, ": "); j >= 0 {
			return strings.TrimSpace(s[j+2:])
		}
		return ""
	}
	return ""
}
