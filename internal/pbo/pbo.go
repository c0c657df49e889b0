// Package pbo implements the PBO container format: an ordered table of
// typed file headers (with an optional leading properties block)
// followed by the file bodies in the same order, and a trailing SHA-1
// checksum over everything that precedes it.
package pbo

import (
	"encoding/binary"
	"sort"
	"strings"
)

// Mime tags how a file's data block is stored.
type Mime uint32

const (
	// Blank is the mime used for ordinary, uncompressed file entries.
	Blank Mime = 0x00000000
	// Vers tags the header of the leading properties block; its
	// filename is empty and it carries no file data of its own.
	Vers Mime = 0x56657273
	// Cprs marks an entry whose data is LZSS-compressed; HEMTT never
	// writes this mime, but a PBO produced by other tools may contain it.
	Cprs Mime = 0x43707273
	// Enco marks an encrypted entry; also read-only here.
	Enco Mime = 0x456e6372
)

func (m Mime) String() string {
	switch m {
	case Blank:
		return "blank"
	case Vers:
		return "version"
	case Cprs:
		return "compressed"
	case Enco:
		return "encrypted"
	default:
		return "unknown"
	}
}

// Header precedes one File's data in the archive.
type Header struct {
	Filename     string
	Mime         Mime
	OriginalSize uint32
	Reserved     uint32
	Timestamp    uint32
	DataSize     uint32
}

// Bytes returns h's on-disk encoding: cstring filename followed by the
// five little-endian u32 fields, the same shape writeHeader emits. This
// is exported for internal/sign, which hashes the file table as a
// canonical byte view rather than re-deriving header layout itself.
func (h Header) Bytes() []byte {
	b := make([]byte, 0, len(h.Filename)+1+20)
	b = append(b, []byte(h.Filename)...)
	b = append(b, 0)
	var nums [20]byte
	binary.LittleEndian.PutUint32(nums[0:4], uint32(h.Mime))
	binary.LittleEndian.PutUint32(nums[4:8], h.OriginalSize)
	binary.LittleEndian.PutUint32(nums[8:12], h.Reserved)
	binary.LittleEndian.PutUint32(nums[12:16], h.Timestamp)
	binary.LittleEndian.PutUint32(nums[16:20], h.DataSize)
	return append(b, nums[:]...)
}

// File is one entry's header plus its body.
type File struct {
	Header Header
	Data   []byte
}

// PBO is the in-memory model of an archive: an ordered property map (the
// Vers-header key/value block) and an ordered sequence of files.
type PBO struct {
	PropertyKeys   []string // insertion order, preserved on write
	Properties     map[string]string
	Files          []File
	ExtensionAfter bool // unused placeholder kept for forward read/write symmetry
}

// New returns an empty PBO ready to have properties and files added.
func New() *PBO {
	return &PBO{Properties: make(map[string]string)}
}

// SetProperty sets key=value in the properties block, preserving first-set
// insertion order for deterministic output.
func (p *PBO) SetProperty(key, value string) {
	if _, exists := p.Properties[key]; !exists {
		p.PropertyKeys = append(p.PropertyKeys, key)
	}
	p.Properties[key] = value
}

// AddFile appends a file to the archive in its current (unsorted) order.
// SortedFiles applies the lexicographic-by-lowercase-name rule the writer
// actually uses; AddFile itself does not reorder anything, so callers
// that care about a specific disk order for reasons other than writing
// (e.g. preserving scan order for a manifest) are free to append in any
// order they like.
func (p *PBO) AddFile(name string, data []byte, timestamp uint32) {
	p.Files = append(p.Files, File{
		Header: Header{
			Filename:     name,
			Mime:         Blank,
			OriginalSize: uint32(len(data)),
			Timestamp:    timestamp,
			DataSize:     uint32(len(data)),
		},
		Data: data,
	})
}

// SortedFiles returns Files ordered by lowercased filename, the order the
// writer serializes them in.
func (p *PBO) SortedFiles() []File {
	out := make([]File, len(p.Files))
	copy(out, p.Files)
	sort.SliceStable(out, func(i, j int) bool {
		return strings.ToLower(out[i].Header.Filename) < strings.ToLower(out[j].Header.Filename)
	})
	return out
}

// FileTable returns the concatenated header bytes of the sorted file
// list, excluding the Vers properties header — the canonical "file
// table" view internal/sign hashes for its H1/H2 signature inputs.
func (p *PBO) FileTable() []byte {
	var b []byte
	for _, f := range p.SortedFiles() {
		b = append(b, f.Header.Bytes()...)
	}
	return b
}
