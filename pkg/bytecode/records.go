// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package bytecode

import (
	"archive/zip"
	"io"
	"os"
	"path"
	"strings"

	"github.com/pkg/errors"

	"github.com/gomlx/opdispatch/pkg/support/xslices"
)

// RecordReader gives access to the named records of a bytecode archive.
//
// Names are relative to the archive root, e.g. "bytecode.pkl" or "data/0".
type RecordReader interface {
	// Record returns the contents of the record. It returns an error wrapping ErrMissingRecord if
	// there is no record with that name.
	Record(name string) ([]byte, error)

	// Records lists the names of all records, sorted.
	Records() []string
}

// MapRecords is a RecordReader over records held in memory.
type MapRecords map[string][]byte

var _ RecordReader = MapRecords(nil)

// Record implements RecordReader.
func (m MapRecords) Record(name string) ([]byte, error) {
	data, found := m[name]
	if !found {
		return nil, errors.Wrapf(ErrMissingRecord, "record %q", name)
	}
	return data, nil
}

// Records implements RecordReader.
func (m MapRecords) Records() []string {
	return xslices.SortedKeys(m)
}

// ZipRecords is a RecordReader over a zip archive.
//
// All records of the archive are stored under one top-level directory (the archive name), which is
// taken from the first entry of the zip and removed from the record names.
type ZipRecords struct {
	archive string
	files   map[string]*zip.File
	closer  io.Closer
}

var _ RecordReader = (*ZipRecords)(nil)

// OpenZip opens the bytecode archive in filePath. The returned ZipRecords must be closed.
func OpenZip(filePath string) (*ZipRecords, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open bytecode archive %q", filePath)
	}
	info, err := file.Stat()
	if err != nil {
		_ = file.Close()
		return nil, errors.Wrapf(err, "failed to stat bytecode archive %q", filePath)
	}
	records, err := NewZipRecords(file, info.Size())
	if err != nil {
		_ = file.Close()
		return nil, errors.WithMessagef(err, "bytecode archive %q", filePath)
	}
	records.closer = file
	return records, nil
}

// NewZipRecords reads the index of the zip archive in r, of the given size.
func NewZipRecords(r io.ReaderAt, size int64) (*ZipRecords, error) {
	zipReader, err := zip.NewReader(r, size)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create zip reader for bytecode archive")
	}
	if len(zipReader.File) == 0 {
		return nil, errors.Wrap(ErrMissingRecord, "empty bytecode archive")
	}
	z := &ZipRecords{files: make(map[string]*zip.File, len(zipReader.File))}
	first := zipReader.File[0].Name
	archive, _, found := strings.Cut(first, "/")
	if !found {
		return nil, errors.Errorf("bytecode archive entry %q is not under a top-level directory", first)
	}
	z.archive = archive
	prefix := archive + "/"
	for _, f := range zipReader.File {
		cleanPath := path.Clean(f.Name)
		if path.IsAbs(cleanPath) || strings.HasPrefix(cleanPath, "..") {
			return nil, errors.Errorf("invalid (malicious?) path in bytecode archive: %q (normalized to %q)",
				f.Name, cleanPath)
		}
		if f.FileInfo().IsDir() {
			continue
		}
		name, isUnderArchive := strings.CutPrefix(cleanPath, prefix)
		if !isUnderArchive {
			return nil, errors.Errorf("bytecode archive entry %q is not under the archive directory %q",
				f.Name, archive)
		}
		z.files[name] = f
	}
	return z, nil
}

// Archive returns the name of the top-level directory of the archive.
func (z *ZipRecords) Archive() string {
	return z.archive
}

// Record implements RecordReader.
func (z *ZipRecords) Record(name string) ([]byte, error) {
	f, found := z.files[name]
	if !found {
		return nil, errors.Wrapf(ErrMissingRecord, "record %q in archive %q", name, z.archive)
	}
	rc, err := f.Open()
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open record %q in archive %q", name, z.archive)
	}
	defer func() { _ = rc.Close() }()
	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read record %q in archive %q", name, z.archive)
	}
	return data, nil
}

// Records implements RecordReader.
func (z *ZipRecords) Records() []string {
	return xslices.SortedKeys(z.files)
}

// RecordSize returns the uncompressed size of the record, or false if it doesn't exist.
func (z *ZipRecords) RecordSize(name string) (uint64, bool) {
	f, found := z.files[name]
	if !found {
		return 0, false
	}
	return f.UncompressedSize64, true
}

// Close releases the underlying file, if ZipRecords was created with OpenZip.
func (z *ZipRecords) Close() error {
	if z.closer == nil {
		return nil
	}
	err := z.closer.Close()
	z.closer = nil
	return err
}
