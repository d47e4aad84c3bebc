package engine

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	ignore "github.com/sabhiram/go-gitignore"

	"fontspector/internal/checkapi"
)

// IgnoreFileName lists patterns skipped when a directory is given as input.
const IgnoreFileName = ".fontspectorignore"

// Files inside these directories belong to the family of the parent directory.
var collapsedSubdirectories = []string{"article"}

var ErrNoInputs = errors.New("no input files")

// ExpandInputs turns the command-line inputs into a file list. Directories are
// walked recursively; hidden entries and paths matched by the directory's
// ignore file are skipped.
func ExpandInputs(inputs []string) ([]string, error) {
	var files []string
	seen := make(map[string]bool)
	add := func(path string) {
		path = filepath.Clean(path)
		if seen[path] {
			return
		}
		seen[path] = true
		files = append(files, path)
	}

	for _, in := range inputs {
		info, err := os.Stat(in)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil, checkapi.FileNotFoundError(in)
			}
			return nil, fmt.Errorf("stat %s: %w", in, err)
		}
		if !info.IsDir() {
			add(in)
			continue
		}
		walked, err := walkInputDirectory(in)
		if err != nil {
			return nil, err
		}
		for _, f := range walked {
			add(f)
		}
	}
	return files, nil
}

func walkInputDirectory(root string) ([]string, error) {
	var matcher *ignore.GitIgnore
	ignorePath := filepath.Join(root, IgnoreFileName)
	if _, err := os.Stat(ignorePath); err == nil {
		matcher, err = ignore.CompileIgnoreFile(ignorePath)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", ignorePath, err)
		}
	}

	var out []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if path == root {
			return nil
		}
		if strings.HasPrefix(d.Name(), ".") {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		if matcher != nil && matcher.MatchesPath(filepath.ToSlash(rel)) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.Type().IsRegular() {
			out = append(out, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", root, err)
	}
	return out, nil
}

// familyDirectory is the directory whose files form one collection with path.
func familyDirectory(path string) string {
	dir := filepath.Dir(path)
	if slices.Contains(collapsedSubdirectories, filepath.Base(dir)) {
		return filepath.Dir(dir)
	}
	return dir
}

// GroupInputs reads every file and groups them into one collection per
// family directory. Collections are ordered by directory; files keep their
// input order.
func GroupInputs(files []string) ([]*checkapi.TestableCollection, error) {
	if len(files) == 0 {
		return nil, ErrNoInputs
	}

	groups := make(map[string][]string)
	var dirs []string
	for _, f := range files {
		dir := familyDirectory(f)
		if _, ok := groups[dir]; !ok {
			dirs = append(dirs, dir)
		}
		groups[dir] = append(groups[dir], f)
	}
	slices.Sort(dirs)

	out := make([]*checkapi.TestableCollection, 0, len(dirs))
	for _, dir := range dirs {
		coll, err := checkapi.NewTestableCollectionFromFilenames(groups[dir], dir)
		if err != nil {
			return nil, fmt.Errorf("load files from %s: %w", dir, err)
		}
		out = append(out, coll)
	}
	return out, nil
}

// Testables flattens collections into the targets a plan iterates over:
// each collection followed by its files.
func Testables(collections []*checkapi.TestableCollection) []checkapi.TestableType {
	var out []checkapi.TestableType
	for _, c := range collections {
		out = append(out, c.CollectionAndFiles()...)
	}
	return out
}
