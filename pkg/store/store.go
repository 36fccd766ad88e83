/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: store.go
Description: Storage access for reports, release data and curated files. Everything goes
through an afs service so report sets can live on local disk or any afs-backed location
(gs://, s3://, mem://) without the pipeline knowing.
*/

package store

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"sort"
	"strings"

	"github.com/viant/afs"
	"github.com/viant/afs/storage"
	"github.com/viant/afs/url"
)

const fileMode os.FileMode = 0644

// Store reads and writes JSON documents
type Store struct {
	fs afs.Service
}

// New creates a store backed by the default afs service
func New() *Store {
	return &Store{fs: afs.New()}
}

// NewWithService creates a store over an existing afs service
func NewWithService(fs afs.Service) *Store {
	return &Store{fs: fs}
}

// Read returns the content at location
func (s *Store) Read(ctx context.Context, location string) ([]byte, error) {
	data, err := s.fs.DownloadWithURL(ctx, location)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", location, err)
	}
	return data, nil
}

// Write replaces the content at location
func (s *Store) Write(ctx context.Context, location string, data []byte) error {
	if err := s.fs.Upload(ctx, location, fileMode, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("failed to write %s: %w", location, err)
	}
	return nil
}

// Exists reports whether location exists
func (s *Store) Exists(ctx context.Context, location string) (bool, error) {
	return s.fs.Exists(ctx, location)
}

// ListJSON returns every .json file at or below location, sorted. A file
// location is returned as is.
func (s *Store) ListJSON(ctx context.Context, location string) ([]string, error) {
	object, err := s.fs.Object(ctx, location)
	if err != nil {
		return nil, fmt.Errorf("failed to stat %s: %w", location, err)
	}
	if !object.IsDir() {
		return []string{location}, nil
	}

	var files []string
	var visitor storage.OnVisit = func(ctx context.Context, baseURL, parent string, info os.FileInfo, reader io.Reader) (bool, error) {
		if info.IsDir() {
			return !strings.HasPrefix(info.Name(), "."), nil
		}
		if path.Ext(info.Name()) == ".json" {
			files = append(files, url.Join(baseURL, path.Join(parent, info.Name())))
		}
		return true, nil
	}
	if err := s.fs.Walk(ctx, location, visitor); err != nil {
		return nil, fmt.Errorf("failed to walk %s: %w", location, err)
	}

	sort.Strings(files)
	return files, nil
}

// Join appends path elements to a location
func Join(location string, elements ...string) string {
	return url.Join(location, elements...)
}
