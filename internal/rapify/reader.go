package rapify

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"io"

	"github.com/BrettMayson/hemtt/internal/config"
)

// Derapify decodes a rapified byte stream back into a Config AST. The
// returned AST carries no source spans or file paths: it did not come
// from a parsed text file, so diagnostics raised against it (if any)
// cannot point back to source text the way a freshly parsed config can.
func Derapify(data []byte) (*config.Config, error) {
	r := bufio.NewReader(bytes.NewReader(data))

	var magic [4]byte
	if _, err := io.ReadFull(r, magic[:]); err != nil {
		return nil, formatErrorf(0, "reading magic: %v", err)
	}
	if magic != [4]byte{0, 'r', 'a', 'P'} {
		return nil, formatErrorf(0, "bad magic %x, want \\0raP", magic)
	}

	var zero, eight, enumOffset uint32
	if err := readU32(r, &zero); err != nil {
		return nil, formatErrorf(4, "reading reserved word: %v", err)
	}
	if err := readU32(r, &eight); err != nil {
		return nil, formatErrorf(8, "reading reserved word: %v", err)
	}
	if eight != 8 {
		return nil, formatErrorf(8, "reserved word is %d, want 8", eight)
	}
	if err := readU32(r, &enumOffset); err != nil {
		return nil, formatErrorf(12, "reading enum offset: %v", err)
	}
	_ = enumOffset // redundant with the trailing terminator; not needed for sequential decoding

	props, err := derapifyBody(r)
	if err != nil {
		return nil, err
	}
	return &config.Config{Properties: props}, nil
}

func readU32(r io.Reader, out *uint32) error {
	var b [4]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return err
	}
	*out = binary.LittleEndian.Uint32(b[:])
	return nil
}

func readI32(r io.Reader) (int32, error) {
	var u uint32
	if err := readU32(r, &u); err != nil {
		return 0, err
	}
	return int32(u), nil
}

func readI64(r io.Reader) (int64, error) {
	var b [8]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return 0, err
	}
	return int64(binary.LittleEndian.Uint64(b[:])), nil
}

func readF32(r io.Reader) (float32, error) {
	var u uint32
	if err := readU32(r, &u); err != nil {
		return 0, err
	}
	return mathFloat32frombits(u), nil
}

func derapifyBody(r *bufio.Reader) ([]config.Property, error) {
	n, err := readCompressedInt(r)
	if err != nil {
		return nil, formatErrorf(-1, "reading property count: %v", err)
	}
	props := make([]config.Property, 0, n)
	for i := uint32(0); i < n; i++ {
		p, err := derapifyProperty(r)
		if err != nil {
			return nil, err
		}
		props = append(props, p)
	}
	return props, nil
}

func derapifyProperty(r *bufio.Reader) (config.Property, error) {
	code, err := r.ReadByte()
	if err != nil {
		return config.Property{}, formatErrorf(-1, "reading property code: %v", err)
	}

	switch code {
	case codeDelete:
		name, err := readCString(r)
		if err != nil {
			return config.Property{}, err
		}
		return config.Property{Kind: config.PropDelete, Name: name}, nil

	case codeClassExternal:
		name, err := readCString(r)
		if err != nil {
			return config.Property{}, err
		}
		return config.Property{
			Kind:  config.PropClass,
			Name:  name,
			Class: &config.Class{Kind: config.ClassExternal, Name: name},
		}, nil

	case codeClassLocal:
		name, err := readCString(r)
		if err != nil {
			return config.Property{}, err
		}
		var offset uint32
		if err := readU32(r, &offset); err != nil {
			return config.Property{}, formatErrorf(-1, "reading class body offset for %q: %v", name, err)
		}
		children, err := derapifyBody(r)
		if err != nil {
			return config.Property{}, err
		}
		return config.Property{
			Kind: config.PropClass,
			Name: name,
			Class: &config.Class{
				Kind:       config.ClassLocal,
				Name:       name,
				Properties: children,
			},
		}, nil

	case codeEntry:
		return derapifyEntry(r)

	case codeArrayEntry:
		name, err := readCString(r)
		if err != nil {
			return config.Property{}, err
		}
		items, err := derapifyArray(r)
		if err != nil {
			return config.Property{}, err
		}
		return config.Property{
			Kind:  config.PropEntry,
			Name:  name,
			Value: config.Value{Kind: config.ValArray, Items: items},
		}, nil

	case codeArrayExpand:
		var tail [4]byte
		if _, err := io.ReadFull(r, tail[:]); err != nil {
			return config.Property{}, formatErrorf(-1, "reading array-expand tail: %v", err)
		}
		if tail != [4]byte{1, 0, 0, 0} {
			return config.Property{}, formatErrorf(-1, "unexpected array-expand tail %v, want [1 0 0 0]", tail)
		}
		name, err := readCString(r)
		if err != nil {
			return config.Property{}, err
		}
		items, err := derapifyArray(r)
		if err != nil {
			return config.Property{}, err
		}
		return config.Property{
			Kind:  config.PropEntry,
			Name:  name,
			Value: config.Value{Kind: config.ValArray, Items: items, ExpandAssign: true},
		}, nil

	default:
		return config.Property{}, formatErrorf(-1, "unknown property code 0x%02x", code)
	}
}

func derapifyEntry(r *bufio.Reader) (config.Property, error) {
	sub, err := r.ReadByte()
	if err != nil {
		return config.Property{}, formatErrorf(-1, "reading entry subcode: %v", err)
	}
	name, err := readCString(r)
	if err != nil {
		return config.Property{}, err
	}

	switch sub {
	case subStr:
		s, err := readCString(r)
		if err != nil {
			return config.Property{}, err
		}
		return config.Property{Kind: config.PropEntry, Name: name, Value: config.Value{Kind: config.ValStr, Str: s}}, nil

	case subFloat:
		f, err := readF32(r)
		if err != nil {
			return config.Property{}, formatErrorf(-1, "reading float for %q: %v", name, err)
		}
		return config.Property{Kind: config.PropEntry, Name: name, Value: config.Value{Kind: config.ValNumber, NumKind: config.NumFloat32, Float: f}}, nil

	case subInt32:
		i, err := readI32(r)
		if err != nil {
			return config.Property{}, formatErrorf(-1, "reading int32 for %q: %v", name, err)
		}
		return config.Property{Kind: config.PropEntry, Name: name, Value: config.Value{Kind: config.ValNumber, NumKind: config.NumInt32, Int: int64(i)}}, nil

	case subInt64:
		i, err := readI64(r)
		if err != nil {
			return config.Property{}, formatErrorf(-1, "reading int64 for %q: %v", name, err)
		}
		return config.Property{Kind: config.PropEntry, Name: name, Value: config.Value{Kind: config.ValNumber, NumKind: config.NumInt64, Int: i}}, nil

	case subExpression:
		expr, err := readCString(r)
		if err != nil {
			return config.Property{}, err
		}
		return config.Property{Kind: config.PropEntry, Name: name, Value: config.Value{Kind: config.ValExpression, Expression: expr}}, nil

	default:
		return config.Property{}, formatErrorf(-1, "unknown entry subcode 0x%02x for %q", sub, name)
	}
}

func derapifyArray(r *bufio.Reader) ([]config.Item, error) {
	n, err := readCompressedInt(r)
	if err != nil {
		return nil, formatErrorf(-1, "reading array length: %v", err)
	}
	items := make([]config.Item, 0, n)
	for i := uint32(0); i < n; i++ {
		item, err := derapifyItem(r)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, nil
}

func derapifyItem(r *bufio.Reader) (config.Item, error) {
	code, err := r.ReadByte()
	if err != nil {
		return config.Item{}, formatErrorf(-1, "reading array item code: %v", err)
	}
	switch code {
	case subStr:
		s, err := readCString(r)
		if err != nil {
			return config.Item{}, err
		}
		return config.Item{Kind: config.ItemStr, Str: s}, nil
	case subInt32:
		i, err := readI32(r)
		if err != nil {
			return config.Item{}, err
		}
		return config.Item{Kind: config.ItemNumber, IsInt: true, Int: int64(i)}, nil
	case subInt64:
		i, err := readI64(r)
		if err != nil {
			return config.Item{}, err
		}
		return config.Item{Kind: config.ItemNumber, IsInt: true, Int: i}, nil
	case subFloat:
		f, err := readF32(r)
		if err != nil {
			return config.Item{}, err
		}
		return config.Item{Kind: config.ItemNumber, Float: f}, nil
	case subArray:
		nested, err := derapifyArray(r)
		if err != nil {
			return config.Item{}, err
		}
		return config.Item{Kind: config.ItemArray, Array: nested}, nil
	default:
		return config.Item{}, formatErrorf(-1, "unknown array item code 0x%02x", code)
	}
}
