// Package bridge runs checks implemented by external programs.
//
// The program is called with the font path as its last argument and prints
// one JSON object per line:
//
//	{"status": "FAIL", "code": "bad-thing", "message": "explanation"}
//
// No output means Pass.
package bridge

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"fontspector/internal/checkapi"
)

// MetadataCommand is the Check.Metadata key holding the argv prefix.
const MetadataCommand = "command"

const commandTimeout = 5 * time.Minute

type line struct {
	Status  string `json:"status"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// NewCheck builds a bridge check from a profile document declaration.
func NewCheck(id string, spec checkapi.ExternalCheckSpec) (checkapi.Check, error) {
	if len(spec.Command) == 0 || spec.Command[0] == "" {
		return checkapi.Check{}, fmt.Errorf("external check %s: empty command", id)
	}
	title := spec.Title
	if title == "" {
		title = id
	}
	appliesTo := spec.AppliesTo
	if appliesTo == "" {
		appliesTo = checkapi.FileTypeTTF.Tag
	}
	return checkapi.Check{
		ID:             id,
		Title:          title,
		Rationale:      spec.Rationale,
		AppliesTo:      appliesTo,
		Metadata:       map[string]any{MetadataCommand: spec.Command},
		Implementation: checkapi.CheckOne(Run),
	}, nil
}

// Run is the implementation shared by every bridge check; the command comes
// from the running check's metadata.
func Run(t *checkapi.Testable, cx *checkapi.Context) (checkapi.StatusList, error) {
	argv, err := commandFrom(cx.CheckMetadata)
	if err != nil {
		return nil, err
	}
	path, cleanup, err := onDisk(t)
	if err != nil {
		return nil, err
	}
	defer cleanup()

	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()
	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, argv[0], append(argv[1:], path)...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	runErr := cmd.Run()

	statuses, err := ParseOutput(&stdout)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", argv[0], err)
	}
	if runErr != nil && len(statuses) == 0 {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return nil, fmt.Errorf("%s: %w: %s", argv[0], runErr, msg)
		}
		return nil, fmt.Errorf("%s: %w", argv[0], runErr)
	}
	return statuses, nil
}

// ParseOutput decodes a stream of status objects.
func ParseOutput(r io.Reader) (checkapi.StatusList, error) {
	dec := json.NewDecoder(r)
	var out checkapi.StatusList
	for {
		var l line
		if err := dec.Decode(&l); err != nil {
			if errors.Is(err, io.EOF) {
				return out, nil
			}
			return nil, fmt.Errorf("malformed output: %w", err)
		}
		sev, err := checkapi.ParseStatusCode(l.Status)
		if err != nil {
			return nil, fmt.Errorf("malformed output: %w", err)
		}
		out = append(out, checkapi.Status{Severity: sev, Code: l.Code, Message: l.Message})
	}
}

func commandFrom(metadata any) ([]string, error) {
	m, ok := metadata.(map[string]any)
	if !ok {
		return nil, errors.New("bridge check has no command metadata")
	}
	var argv []string
	switch v := m[MetadataCommand].(type) {
	case []string:
		argv = v
	case []any:
		for _, a := range v {
			s, ok := a.(string)
			if !ok {
				return nil, fmt.Errorf("bridge command element %v is not a string", a)
			}
			argv = append(argv, s)
		}
	}
	if len(argv) == 0 {
		return nil, errors.New("bridge check has an empty command")
	}
	return argv, nil
}

// onDisk returns a path holding t's current contents, writing a temporary
// copy when t was never read from disk.
func onDisk(t *checkapi.Testable) (string, func(), error) {
	if t.Generation() == 0 {
		if _, err := os.Stat(t.Filename); err == nil {
			return t.Filename, func() {}, nil
		}
	}
	dir, err := os.MkdirTemp("", "fontspector-bridge-")
	if err != nil {
		return "", nil, err
	}
	cleanup := func() { _ = os.RemoveAll(dir) }
	path := filepath.Join(dir, t.Basename())
	if err := os.WriteFile(path, t.Contents(), 0o644); err != nil {
		cleanup()
		return "", nil, err
	}
	return path, cleanup, nil
}
