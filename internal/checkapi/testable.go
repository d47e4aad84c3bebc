package checkapi

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
)

// Testable is one file under test together with its bytes.
//
// A Testable is read-only while checks run; only the fix orchestrator calls Set.
type Testable struct {
	Filename string

	contents   []byte
	generation atomic.Uint64

	parseMu   sync.Mutex
	parsed    *TestFont
	parsedGen uint64
}

// NewTestable reads path from disk.
func NewTestable(path string) (*Testable, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, FileNotFoundError(path)
		}
		return nil, NewError(KindGeneral, path, err)
	}
	return &Testable{Filename: path, contents: b}, nil
}

// NewTestableWithContents wraps in-memory bytes; nothing is read from disk.
func NewTestableWithContents(filename string, contents []byte) *Testable {
	return &Testable{Filename: filename, contents: contents}
}

func (t *Testable) Basename() string {
	return filepath.Base(t.Filename)
}

// Extension returns the extension without the leading dot.
func (t *Testable) Extension() string {
	return strings.TrimPrefix(filepath.Ext(t.Filename), ".")
}

func (t *Testable) Contents() []byte {
	return t.contents
}

// Set replaces the contents. Parsed views of the old bytes are invalidated.
func (t *Testable) Set(contents []byte) {
	t.contents = contents
	t.generation.Add(1)
}

// Generation counts calls to Set.
func (t *Testable) Generation() uint64 {
	return t.generation.Load()
}

// Save writes the current contents back to Filename.
func (t *Testable) Save() error {
	return t.SaveAs(t.Filename)
}

func (t *Testable) SaveAs(path string) error {
	mode := fs.FileMode(0o644)
	if st, err := os.Stat(path); err == nil {
		mode = st.Mode().Perm()
	}
	if err := os.WriteFile(path, t.contents, mode); err != nil {
		return NewError(KindSave, path, err)
	}
	return nil
}

// TestableCollection is the set of files of one family, rooted at Directory.
type TestableCollection struct {
	Directory string
	Testables []*Testable
}

func NewTestableCollection(testables []*Testable, directory string) *TestableCollection {
	return &TestableCollection{Directory: directory, Testables: testables}
}

// NewTestableCollectionFromFilenames reads every path.
func NewTestableCollectionFromFilenames(paths []string, directory string) (*TestableCollection, error) {
	testables := make([]*Testable, 0, len(paths))
	for _, p := range paths {
		t, err := NewTestable(p)
		if err != nil {
			return nil, err
		}
		testables = append(testables, t)
	}
	return NewTestableCollection(testables, directory), nil
}

// GetFile returns the member with the given basename, or nil.
func (c *TestableCollection) GetFile(basename string) *Testable {
	for _, t := range c.Testables {
		if t.Basename() == basename {
			return t
		}
	}
	return nil
}

func (c *TestableCollection) Len() int { return len(c.Testables) }

// Filenames lists the member paths in order.
func (c *TestableCollection) Filenames() []string {
	out := make([]string, len(c.Testables))
	for i, t := range c.Testables {
		out[i] = t.Filename
	}
	return out
}

// CollectionAndFiles yields the collection itself followed by each member.
func (c *TestableCollection) CollectionAndFiles() []TestableType {
	out := make([]TestableType, 0, len(c.Testables)+1)
	out = append(out, CollectionTestable(c))
	for _, t := range c.Testables {
		out = append(out, SingleTestable(t))
	}
	return out
}

// TestableType is either a single Testable or a TestableCollection.
type TestableType struct {
	single     *Testable
	collection *TestableCollection
}

func SingleTestable(t *Testable) TestableType { return TestableType{single: t} }

func CollectionTestable(c *TestableCollection) TestableType {
	return TestableType{collection: c}
}

func (tt TestableType) IsSingle() bool { return tt.single != nil }

// Testable returns the single testable, or nil for a collection.
func (tt TestableType) Testable() *Testable { return tt.single }

// Collection returns the collection, or nil for a single testable.
func (tt TestableType) Collection() *TestableCollection { return tt.collection }

// Filename is empty for collections.
func (tt TestableType) Filename() string {
	if tt.single != nil {
		return tt.single.Filename
	}
	return ""
}
