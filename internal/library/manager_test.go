package library

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/zip"

	"github.com/zsiec/cdg/cdg"
)

// presetTrack returns n packets starting with a memory preset.
func presetTrack(n int) []byte {
	buf := make([]byte, n*24)
	buf[0] = 0x09
	buf[1] = 1
	buf[4] = 3
	return buf
}

func writeFile(t *testing.T, dir, name string, data []byte) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, data, 0o644); err != nil {
		t.Fatal(err)
	}
	return p
}

func TestManagerLoadAndGet(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	p := writeFile(t, dir, "Hello World.cdg", presetTrack(48))

	m := NewManager(nil)
	tr, err := m.Load("", p)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if tr.Key != "Hello World" {
		t.Errorf("Key = %q", tr.Key)
	}
	if tr.LoadedAt.IsZero() {
		t.Error("LoadedAt should be set")
	}
	if !tr.Parser.IsOpen() || tr.Parser.FrameCount() != 4 {
		t.Errorf("parser open=%v frames=%d", tr.Parser.IsOpen(), tr.Parser.FrameCount())
	}

	got, err := m.Get("Hello World")
	if err != nil || got != tr {
		t.Errorf("Get = %v, %v", got, err)
	}
	if _, err := m.Get("nope"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get(nope) err = %v, want ErrNotFound", err)
	}
}

func TestManagerRejectsDuplicate(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	p := writeFile(t, dir, "a.cdg", presetTrack(12))

	m := NewManager(nil)
	if _, err := m.Load("song", p); err != nil {
		t.Fatal(err)
	}
	if _, err := m.Load("song", p); !errors.Is(err, ErrExists) {
		t.Errorf("duplicate Load err = %v, want ErrExists", err)
	}
}

func TestManagerRejectsEmpty(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	p := writeFile(t, dir, "empty.cdg", nil)

	m := NewManager(nil)
	if _, err := m.Load("", p); !errors.Is(err, cdg.ErrEmptyInput) {
		t.Errorf("err = %v, want ErrEmptyInput", err)
	}
	// The key is released so a later load may reuse it.
	writeFile(t, dir, "empty.cdg", presetTrack(12))
	if _, err := m.Load("", p); err != nil {
		t.Errorf("reload after failure: %v", err)
	}
}

func TestManagerRemoveAndList(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	m := NewManager(nil)
	for _, name := range []string{"c.cdg", "a.cdg", "b.cdg"} {
		if _, err := m.Load("", writeFile(t, dir, name, presetTrack(12))); err != nil {
			t.Fatal(err)
		}
	}
	list := m.List()
	if len(list) != 3 || list[0].Key != "a" || list[2].Key != "c" {
		t.Fatalf("List order wrong: %d tracks", len(list))
	}

	if !m.Remove("b") {
		t.Error("Remove(b) should report true")
	}
	if m.Remove("b") {
		t.Error("second Remove(b) should report false")
	}
	if len(m.List()) != 2 {
		t.Errorf("count after remove = %d, want 2", len(m.List()))
	}
}

func TestManagerScan(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	writeFile(t, dir, "one.cdg", presetTrack(24))
	writeFile(t, dir, "two.CDG", presetTrack(36))
	writeFile(t, dir, "empty.cdg", nil)
	writeFile(t, dir, "notes.txt", []byte("ignored"))
	if err := os.Mkdir(filepath.Join(dir, "sub.cdg"), 0o755); err != nil {
		t.Fatal(err)
	}

	var zbuf bytes.Buffer
	zw := zip.NewWriter(&zbuf)
	w, err := zw.Create("Zipped.cdg")
	if err != nil {
		t.Fatal(err)
	}
	w.Write(presetTrack(12))
	zw.Close()
	writeFile(t, dir, "three.zip", zbuf.Bytes())

	m := NewManager(nil, cdg.WithCompression(cdg.CodecZlib, 1))
	n, err := m.Scan(context.Background(), dir, 2)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if n != 3 {
		t.Errorf("loaded = %d, want 3", n)
	}
	if _, err := m.Get("Zipped"); err != nil {
		t.Errorf("zip entry not loaded: %v", err)
	}
	tr, err := m.Get("two")
	if err != nil {
		t.Fatal(err)
	}
	if tr.Parser.Stats().Level != 1 {
		t.Errorf("manager options not applied: level %d", tr.Parser.Stats().Level)
	}

	if _, err := m.Scan(context.Background(), filepath.Join(dir, "missing"), 1); err == nil {
		t.Error("Scan of a missing dir should fail")
	}
}
