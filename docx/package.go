// Package docx reads word-processing packages (.docx) into the document model.
//
// A package is a ZIP archive of XML parts. [Read] resolves the main document
// and its supporting parts (styles, numbering, notes, comments), walks the
// body with a [BodyReader] and returns a [model.Document] together with the
// warnings produced on the way.
package docx

import (
	"archive/zip"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// maxPartSize caps the uncompressed size of a single package member.
const maxPartSize = 100 << 20

var (
	// ErrPartNotFound is returned when a package member does not exist.
	ErrPartNotFound = errors.New("part not found in package")
	// ErrPartTooLarge is returned when a member exceeds the size cap.
	ErrPartTooLarge = errors.New("part exceeds maximum size")
)

// Package gives access to the members of a zip-based package.
type Package interface {
	Exists(name string) bool
	Read(name string) ([]byte, error)
	Write(name string, data []byte) error
	// Bytes returns the package re-encoded as a zip archive.
	Bytes() ([]byte, error)
}

// ZipPackage is a Package held in memory. All members are read eagerly when
// it is opened; writes replace members in memory until Bytes or Save.
type ZipPackage struct {
	names   []string
	entries map[string][]byte
}

// OpenFile reads the zip archive at path.
func OpenFile(path string) (*ZipPackage, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("opening ZIP archive: %w", err)
	}
	defer zr.Close()
	return fromZipReader(&zr.Reader)
}

// OpenBytes reads a zip archive held in memory.
func OpenBytes(data []byte) (*ZipPackage, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("opening ZIP archive: %w", err)
	}
	return fromZipReader(zr)
}

func fromZipReader(zr *zip.Reader) (*ZipPackage, error) {
	p := &ZipPackage{entries: make(map[string][]byte, len(zr.File))}
	for _, f := range zr.File {
		if f.FileInfo().IsDir() {
			continue
		}
		if f.UncompressedSize64 > maxPartSize {
			return nil, fmt.Errorf("%w: %s", ErrPartTooLarge, f.Name)
		}
		data, err := readEntry(f)
		if err != nil {
			return nil, err
		}
		if _, ok := p.entries[f.Name]; !ok {
			p.names = append(p.names, f.Name)
		}
		p.entries[f.Name] = data
	}
	return p, nil
}

func readEntry(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("open entry %s: %w", f.Name, err)
	}
	defer rc.Close()

	data, err := io.ReadAll(io.LimitReader(rc, maxPartSize+1))
	if err != nil {
		return nil, fmt.Errorf("read entry %s: %w", f.Name, err)
	}
	if len(data) > maxPartSize {
		return nil, fmt.Errorf("%w: %s", ErrPartTooLarge, f.Name)
	}
	return data, nil
}

// Exists reports whether the package has a member called name.
func (p *ZipPackage) Exists(name string) bool {
	_, ok := p.entries[name]
	return ok
}

// Read returns the contents of a member.
func (p *ZipPackage) Read(name string) ([]byte, error) {
	data, ok := p.entries[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrPartNotFound, name)
	}
	return data, nil
}

// Write adds or replaces a member.
func (p *ZipPackage) Write(name string, data []byte) error {
	if _, ok := p.entries[name]; !ok {
		p.names = append(p.names, name)
	}
	p.entries[name] = append([]byte(nil), data...)
	return nil
}

// Names returns the member names in archive order.
func (p *ZipPackage) Names() []string {
	return append([]string(nil), p.names...)
}

// Bytes encodes the package as a zip archive. Members keep their original
// order and new members follow in the order they were written.
func (p *ZipPackage) Bytes() ([]byte, error) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, name := range p.names {
		w, err := zw.Create(name)
		if err != nil {
			_ = zw.Close()
			return nil, fmt.Errorf("create zip entry %s: %w", name, err)
		}
		if _, err := w.Write(p.entries[name]); err != nil {
			_ = zw.Close()
			return nil, fmt.Errorf("write %s: %w", name, err)
		}
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("close zip writer: %w", err)
	}
	return buf.Bytes(), nil
}

// Save writes the package to path atomically: the archive is written to a
// temporary file in the same directory and then renamed.
func (p *ZipPackage) Save(path string) error {
	data, err := p.Bytes()
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".docx-save-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}
