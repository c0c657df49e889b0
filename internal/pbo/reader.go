package pbo

import (
	"bufio"
	"bytes"
	"crypto/sha1"
	"encoding/binary"
	"io"
)

// Read parses a PBO archive from r.
func Read(r io.Reader) (*PBO, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	if len(data) < 21 {
		return nil, &TrailingDataError{Count: 0}
	}
	body := data[:len(data)-21]
	terminator := data[len(data)-21]
	checksum := data[len(data)-20:]

	if terminator != 0x00 {
		return nil, &TrailingDataError{Count: len(data) - len(body) - 20}
	}

	sum := sha1.Sum(body)
	if !bytes.Equal(sum[:], checksum) {
		return nil, &InvalidChecksumError{}
	}

	br := bufio.NewReader(bytes.NewReader(body))
	p := New()

	var headers []Header
	for {
		h, err := readHeader(br)
		if err != nil {
			return nil, err
		}
		if h.Mime == Vers {
			if err := readProperties(br, p); err != nil {
				return nil, err
			}
			continue
		}
		if h.Filename == "" && h.Mime == Blank && h.OriginalSize == 0 && h.DataSize == 0 && h.Timestamp == 0 {
			break
		}
		headers = append(headers, h)
	}

	for _, h := range headers {
		buf := make([]byte, h.DataSize)
		if _, err := io.ReadFull(br, buf); err != nil {
			return nil, err
		}
		p.Files = append(p.Files, File{Header: h, Data: buf})
	}

	return p, nil
}

func readHeader(r *bufio.Reader) (Header, error) {
	name, err := readCString(r)
	if err != nil {
		return Header{}, err
	}
	var b [20]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return Header{}, err
	}
	mimeVal := binary.LittleEndian.Uint32(b[0:4])
	mime := Mime(mimeVal)
	switch mime {
	case Blank, Vers, Cprs, Enco:
	default:
		return Header{}, &UnsupportedMimeError{Mime: mimeVal}
	}
	return Header{
		Filename:     name,
		Mime:         mime,
		OriginalSize: binary.LittleEndian.Uint32(b[4:8]),
		Reserved:     binary.LittleEndian.Uint32(b[8:12]),
		Timestamp:    binary.LittleEndian.Uint32(b[12:16]),
		DataSize:     binary.LittleEndian.Uint32(b[16:20]),
	}, nil
}

func readProperties(r *bufio.Reader, p *PBO) error {
	for {
		key, err := readCString(r)
		if err != nil {
			return err
		}
		if key == "" {
			return nil
		}
		value, err := readCString(r)
		if err != nil {
			return err
		}
		p.SetProperty(key, value)
	}
}

func readCString(r *bufio.Reader) (string, error) {
	s, err := r.ReadString(0)
	if err != nil {
		return "", err
	}
	return s[:len(s)-1], nil
}
