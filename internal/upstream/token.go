package upstream

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"slices"
	"strings"
	"time"
)

// TokenSource records where a token came from, for debug logging.
type TokenSource string

const (
	TokenNone     TokenSource = ""
	TokenExplicit TokenSource = "explicit"
	TokenEnv      TokenSource = "env"
	TokenGHCLI    TokenSource = "gh"
)

// tokenEnvVars are consulted in order.
var tokenEnvVars = []string{"GITHUB_TOKEN", "GH_TOKEN"}

const ghTimeout = 5 * time.Second

// ResolveAuthToken picks the first token from: provided, the environment,
// then `gh auth token`. Finding none is not an error.
func ResolveAuthToken(ctx context.Context, provided string) (string, TokenSource, error) {
	if tok := strings.TrimSpace(provided); tok != "" {
		return tok, TokenExplicit, nil
	}
	for _, name := range tokenEnvVars {
		if tok := strings.TrimSpace(os.Getenv(name)); tok != "" {
			return tok, TokenEnv, nil
		}
	}
	tok, err := tokenFromGH(ctx)
	if err != nil || tok == "" {
		return "", TokenNone, err
	}
	return tok, TokenGHCLI, nil
}

func tokenFromGH(ctx context.Context) (string, error) {
	if _, err := exec.LookPath("gh"); err != nil {
		return "", nil
	}
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, ghTimeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, "gh", "auth", "token", "-h", "github.com")
	cmd.Env = append(slices.DeleteFunc(os.Environ(), func(kv string) bool {
		return strings.HasPrefix(kv, "GH_PAGER=")
	}), "GH_PAGER=cat")
	out, err := cmd.Output()
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		// Not logged in, or gh misconfigured: run unauthenticated.
		return "", nil
	}
	tok := strings.TrimSpace(string(out))
	if strings.ContainsAny(tok, " \t\r\n") {
		return "", errors.New("gh returned a malformed token")
	}
	return tok, nil
}
