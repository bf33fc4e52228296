// Package archive loads CD+G data from plain files or from entries inside
// zip archives, the two ways karaoke tracks are usually distributed.
package archive

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"strings"

	"github.com/klauspost/compress/zip"
)

// ErrNoEntry is returned when a zip archive has no matching CD+G entry.
var ErrNoEntry = errors.New("archive: no cdg entry")

// maxEntrySize bounds the decompressed size of a zip entry. Real tracks are
// a few megabytes; anything larger is not CD+G data.
const maxEntrySize = 256 << 20

// Source identifies where track data came from.
type Source struct {
	Path  string
	Entry string
}

func (s Source) String() string {
	if s.Entry == "" {
		return s.Path
	}
	return s.Path + "#" + s.Entry
}

// Name returns the track name: the base name without its extension.
func (s Source) Name() string {
	base := path.Base(strings.ReplaceAll(s.Path, "\\", "/"))
	if s.Entry != "" {
		base = path.Base(s.Entry)
	}
	return strings.TrimSuffix(base, path.Ext(base))
}

// ParseSource splits "archive.zip#entry.cdg" into its parts. Paths without
// a '#' after a .zip suffix are returned unchanged.
func ParseSource(ref string) Source {
	if i := strings.LastIndex(ref, "#"); i > 0 && IsZip(ref[:i]) {
		return Source{Path: ref[:i], Entry: ref[i+1:]}
	}
	return Source{Path: ref}
}

// IsZip reports whether p names a zip archive.
func IsZip(p string) bool {
	return strings.EqualFold(path.Ext(p), ".zip")
}

// IsCDG reports whether p names a CD+G file.
func IsCDG(p string) bool {
	return strings.EqualFold(path.Ext(p), ".cdg")
}

// Load reads the bytes named by ref: a plain file, a zip archive (first
// .cdg entry) or "archive.zip#entry".
func Load(ref string) ([]byte, Source, error) {
	src := ParseSource(ref)
	if !IsZip(src.Path) {
		data, err := os.ReadFile(src.Path)
		if err != nil {
			return nil, src, fmt.Errorf("archive: read %s: %w", src.Path, err)
		}
		return data, src, nil
	}
	data, entry, err := LoadZip(src.Path, src.Entry)
	src.Entry = entry
	return data, src, err
}

// LoadZip reads an entry from a zip archive. When entry is empty the first
// entry with a .cdg extension is used. Entry names match case-insensitively.
func LoadZip(zipPath, entry string) ([]byte, string, error) {
	zr, err := zip.OpenReader(zipPath)
	if err != nil {
		return nil, "", fmt.Errorf("archive: open %s: %w", zipPath, err)
	}
	defer zr.Close()

	f := findEntry(zr.File, entry)
	if f == nil {
		if entry == "" {
			return nil, "", fmt.Errorf("%w in %s", ErrNoEntry, zipPath)
		}
		return nil, "", fmt.Errorf("%w %q in %s", ErrNoEntry, entry, zipPath)
	}

	rc, err := f.Open()
	if err != nil {
		return nil, f.Name, fmt.Errorf("archive: open entry %s: %w", f.Name, err)
	}
	defer rc.Close()

	data, err := io.ReadAll(io.LimitReader(rc, maxEntrySize+1))
	if err != nil {
		return nil, f.Name, fmt.Errorf("archive: read entry %s: %w", f.Name, err)
	}
	if len(data) > maxEntrySize {
		return nil, f.Name, fmt.Errorf("archive: entry %s exceeds %d bytes", f.Name, maxEntrySize)
	}
	return data, f.Name, nil
}

func findEntry(files []*zip.File, entry string) *zip.File {
	for _, f := range files {
		if f.FileInfo().IsDir() {
			continue
		}
		if entry == "" {
			if IsCDG(f.Name) {
				return f
			}
			continue
		}
		if strings.EqualFold(f.Name, entry) {
			return f
		}
	}
	return nil
}
