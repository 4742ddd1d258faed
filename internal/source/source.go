// Package source loads the document a session starts from.
package source

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	apperrors "github.com/rebeliceyang/lazyjson/internal/errors"
	"github.com/rebeliceyang/lazyjson/internal/jsonb"
)

// Stdin is the path that selects standard input
const Stdin = "-"

// Source produces one JSON document
type Source interface {
	// Name is shown as the panel title
	Name() string
	Load(ctx context.Context, opts ...jsonb.DecodeOption) (*jsonb.Value, error)
}

// File reads a document from a path, or from standard input for "-"
type File struct {
	Path  string
	stdin io.Reader
}

// NewFile returns a source for path. An empty path means standard input.
func NewFile(path string) *File {
	if path == "" {
		path = Stdin
	}
	return &File{Path: path, stdin: os.Stdin}
}

// NewStdin returns a source reading the document from r
func NewStdin(r io.Reader) *File {
	return &File{Path: Stdin, stdin: r}
}

func (f *File) Name() string {
	if f.Path == Stdin {
		return "stdin"
	}
	return filepath.Base(f.Path)
}

func (f *File) Load(ctx context.Context, opts ...jsonb.DecodeOption) (*jsonb.Value, error) {
	if f.Path == Stdin {
		return Read(ctx, f.stdin, opts...)
	}

	file, err := os.Open(f.Path)
	if err != nil {
		return nil, apperrors.NewInputError(fmt.Sprintf("cannot open %s", f.Path), err)
	}
	defer file.Close()
	return Read(ctx, file, opts...)
}

// Read decodes everything r yields as one document
func Read(ctx context.Context, r io.Reader, opts ...jsonb.DecodeOption) (*jsonb.Value, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, apperrors.NewInputError("cannot read input", err)
	}
	return jsonb.Parse(string(data), opts...)
}

// Text is a source over an in-memory string
type Text struct {
	Title string
	Body  string
}

func (t Text) Name() string { return t.Title }

func (t Text) Load(_ context.Context, opts ...jsonb.DecodeOption) (*jsonb.Value, error) {
	return jsonb.Parse(t.Body, opts...)
}
