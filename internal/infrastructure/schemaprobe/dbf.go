// Package schemaprobe reads source field names out of downloaded data.
// Shapefile attribute tables (.dbf) carry their field descriptors in the
// file header, so no full parse is needed.
package schemaprobe

import (
	"bytes"
	"context"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

const (
	dbfHeaderSize     = 32
	dbfDescriptorSize = 32
	// dbfTerminator ends the field descriptor array.
	dbfTerminator = 0x0D
)

// Introspector implements ports.SchemaIntrospector over local raw-data
// directories.
type Introspector struct{}

// NewIntrospector creates an Introspector.
func NewIntrospector() *Introspector {
	return &Introspector{}
}

// FieldNames returns the ordered field names of the dataset under dir. An
// explicit file is tried first; otherwise the directory is scanned for an
// attribute table.
func (i *Introspector) FieldNames(ctx context.Context, dir, file string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if file != "" {
		path := file
		if !filepath.IsAbs(path) {
			path = filepath.Join(dir, file)
		}
		if names, err := fieldNamesFromFile(path); err == nil {
			return names, nil
		}
	}

	dbf, err := findDBF(dir)
	if err != nil {
		return nil, err
	}
	return fieldNamesFromFile(dbf)
}

// findDBF locates the attribute table in a raw-data directory.
func findDBF(dir string) (string, error) {
	if dir == "" {
		return "", fmt.Errorf("no raw-data directory")
	}
	dirEntries, err := os.ReadDir(dir)
	if err != nil {
		return "", fmt.Errorf("reading raw-data directory: %w", err)
	}
	for _, e := range dirEntries {
		if e.IsDir() {
			continue
		}
		if strings.EqualFold(filepath.Ext(e.Name()), ".dbf") {
			return filepath.Join(dir, e.Name()), nil
		}
	}
	return "", fmt.Errorf("no attribute table found in %s", dir)
}

// fieldNamesFromFile reads field names from a file. A .shp path resolves
// to its sibling .dbf.
func fieldNamesFromFile(path string) ([]string, error) {
	if strings.EqualFold(filepath.Ext(path), ".shp") {
		path = strings.TrimSuffix(path, filepath.Ext(path)) + ".dbf"
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening attribute table: %w", err)
	}
	defer f.Close()

	return readDBFFieldNames(f)
}

// dbfHeader is the fixed 32-byte dBASE file header.
type dbfHeader struct {
	Version    byte
	Date       [3]byte
	NumRecords uint32
	HeaderSize uint16
	RecordSize uint16
	_          [20]byte
}

// readDBFFieldNames parses the dBASE header's field descriptor array.
func readDBFFieldNames(r io.Reader) ([]string, error) {
	var hdr dbfHeader
	if err := binary.Read(r, binary.LittleEndian, &hdr); err != nil {
		return nil, fmt.Errorf("reading dbf header: %w", err)
	}
	if hdr.HeaderSize < dbfHeaderSize+dbfDescriptorSize {
		return nil, fmt.Errorf("dbf header too small: %d bytes", hdr.HeaderSize)
	}

	numFields := (int(hdr.HeaderSize) - dbfHeaderSize - 1) / dbfDescriptorSize
	var names []string
	desc := make([]byte, dbfDescriptorSize)

	for i := 0; i < numFields; i++ {
		if _, err := io.ReadFull(r, desc[:1]); err != nil {
			return nil, fmt.Errorf("reading field descriptor: %w", err)
		}
		if desc[0] == dbfTerminator {
			break
		}
		if _, err := io.ReadFull(r, desc[1:]); err != nil {
			return nil, fmt.Errorf("reading field descriptor: %w", err)
		}
		// Field name: 11 bytes, NUL-padded.
		name := string(bytes.TrimRight(desc[:11], "\x00"))
		if name != "" {
			names = append(names, name)
		}
	}

	if len(names) == 0 {
		return nil, fmt.Errorf("attribute table has no fields")
	}
	return names, nil
}
