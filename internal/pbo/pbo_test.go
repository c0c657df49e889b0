package pbo

import (
	"bytes"
	"crypto/sha1"
	"errors"
	"testing"
)

func TestWriteReadRoundTrip(t *testing.T) {
	p := New()
	p.SetProperty("prefix", "myaddon")
	p.SetProperty("author", "tester")
	p.AddFile("config.cpp", []byte("class CfgPatches {};"), 1000)
	p.AddFile("data/texture.paa", []byte{0x01, 0x02, 0x03}, 1001)

	var buf bytes.Buffer
	if err := Write(&buf, p); err != nil {
		t.Fatalf("Write: %v", err)
	}

	got, err := Read(&buf)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}

	if got.Properties["prefix"] != "myaddon" || got.Properties["author"] != "tester" {
		t.Fatalf("got properties %+v", got.Properties)
	}
	if len(got.Files) != 2 {
		t.Fatalf("got %d files, want 2", len(got.Files))
	}
}

func TestFilesAreSortedLowercase(t *testing.T) {
	p := New()
	p.AddFile("Zebra.sqf", []byte("z"), 0)
	p.AddFile("apple.sqf", []byte("a"), 0)
	p.AddFile("Banana.sqf", []byte("b"), 0)

	sorted := p.SortedFiles()
	names := []string{sorted[0].Header.Filename, sorted[1].Header.Filename, sorted[2].Header.Filename}
	want := []string{"apple.sqf", "Banana.sqf", "Zebra.sqf"}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("got order %v, want %v", names, want)
		}
	}
}

func TestReadRejectsBadChecksum(t *testing.T) {
	p := New()
	p.AddFile("a.txt", []byte("hello"), 0)
	var buf bytes.Buffer
	if err := Write(&buf, p); err != nil {
		t.Fatalf("Write: %v", err)
	}
	corrupt := buf.Bytes()
	corrupt[len(corrupt)-1] ^= 0xff
	if _, err := Read(bytes.NewReader(corrupt)); err == nil {
		t.Fatal("expected a checksum error")
	}
}

func TestReadRejectsUnsupportedMime(t *testing.T) {
	p := New()
	p.AddFile("a.txt", []byte("hello"), 0)
	var buf bytes.Buffer
	if err := Write(&buf, p); err != nil {
		t.Fatalf("Write: %v", err)
	}
	raw := buf.Bytes()
	// The mime word follows the empty-or-named cstring header; corrupt the
	// first file header's mime bytes (right after "a.txt\x00").
	idx := bytes.Index(raw, []byte("a.txt\x00")) + len("a.txt\x00")
	raw[idx] = 0xAB
	raw[idx+1] = 0xCD
	// Recompute the checksum so Read gets past it and reaches the mime check.
	sum := sha1.Sum(raw[:len(raw)-21])
	copy(raw[len(raw)-20:], sum[:])
	_, err := Read(bytes.NewReader(raw))
	var mimeErr *UnsupportedMimeError
	if !errors.As(err, &mimeErr) {
		t.Fatalf("got %v, want an unsupported mime error", err)
	}
}
