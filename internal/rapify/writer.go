package rapify

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/BrettMayson/hemtt/internal/config"
	"github.com/orcaman/writerseeker"
)

// Property type codes.
const (
	codeClassLocal    = 0x00
	codeEntry         = 0x01
	codeArrayEntry    = 0x02
	codeClassExternal = 0x03
	codeDelete        = 0x04
	codeArrayExpand   = 0x05
)

// Entry subcodes and array item codes.
const (
	subStr        = 0x00
	subFloat      = 0x01
	subInt32      = 0x02
	subExpression = 0x04
	subInt64      = 0x06
	subArray      = 0x03 // nested array inside an array, not named in the BNF but required for mixed item types
)

// headerLen is the fixed 16-byte preamble before class_body: magic(4) +
// u32(0) + u32(8) + u32(enum_offset).
const headerLen = 16

// Rapify serializes cfg to the game's binary rap format. Each nested
// local class's body is written inline, right after a u32 slot that is
// patched with the body's absolute file offset; since that offset always
// points at the next byte, a sequential decoder reads the body in place
// and can ignore the slot.
func Rapify(cfg *config.Config) ([]byte, error) {
	var ws writerseeker.WriterSeeker

	if _, err := ws.Write([]byte("\x00raP")); err != nil {
		return nil, err
	}
	if _, err := ws.Write([]byte{0, 0, 0, 0, 8, 0, 0, 0}); err != nil {
		return nil, err
	}
	// enum_offset placeholder, patched once the body length is known.
	enumOffsetPos, err := ws.Seek(0, io.SeekCurrent)
	if err != nil {
		return nil, err
	}
	if err := writeU32(&ws, 0); err != nil {
		return nil, err
	}

	bodyStart, err := ws.Seek(0, io.SeekCurrent)
	if err != nil {
		return nil, err
	}
	if bodyStart != headerLen {
		return nil, fmt.Errorf("rapify: internal offset mismatch: got %d want %d", bodyStart, headerLen)
	}

	if err := rapifyBody(&ws, cfg.Properties); err != nil {
		return nil, err
	}

	enumOffset, err := ws.Seek(0, io.SeekCurrent)
	if err != nil {
		return nil, err
	}
	if _, err := ws.Write([]byte{0, 0, 0, 0}); err != nil {
		return nil, err
	}

	if _, err := ws.Seek(enumOffsetPos, io.SeekStart); err != nil {
		return nil, err
	}
	if err := writeU32(&ws, uint32(enumOffset)); err != nil {
		return nil, err
	}
	if _, err := ws.Seek(0, io.SeekEnd); err != nil {
		return nil, err
	}

	r := ws.Reader()
	return io.ReadAll(r)
}

func writeU32(w io.Writer, v uint32) error {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	_, err := w.Write(b[:])
	return err
}

func writeI32(w io.Writer, v int32) error { return writeU32(w, uint32(v)) }

func writeI64(w io.Writer, v int64) error {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], uint64(v))
	_, err := w.Write(b[:])
	return err
}

func writeF32(w io.Writer, v float32) error {
	return writeU32(w, mathFloat32bits(v))
}

// rapifyBody writes compressed_int(n) followed by each property in order.
func rapifyBody(ws *writerseeker.WriterSeeker, props []config.Property) error {
	if err := writeCompressedInt(ws, uint32(len(props))); err != nil {
		return err
	}
	for _, p := range props {
		if err := rapifyProperty(ws, p); err != nil {
			return err
		}
	}
	return nil
}

func rapifyProperty(ws *writerseeker.WriterSeeker, p config.Property) error {
	switch p.Kind {
	case config.PropDelete:
		if _, err := ws.Write([]byte{codeDelete}); err != nil {
			return err
		}
		return writeCString(ws, p.Name)

	case config.PropMissingSemicolon:
		return fmt.Errorf("rapify: property %q is missing a trailing ';'", p.Name)

	case config.PropClass:
		return rapifyClass(ws, p.Class)

	case config.PropEntry:
		return rapifyEntry(ws, p)

	default:
		return fmt.Errorf("rapify: unknown property kind %d", p.Kind)
	}
}

func rapifyClass(ws *writerseeker.WriterSeeker, c *config.Class) error {
	if c.Kind == config.ClassExternal {
		if _, err := ws.Write([]byte{codeClassExternal}); err != nil {
			return err
		}
		return writeCString(ws, c.Name)
	}

	if _, err := ws.Write([]byte{codeClassLocal}); err != nil {
		return err
	}
	if err := writeCString(ws, c.Name); err != nil {
		return err
	}

	slotPos, err := ws.Seek(0, io.SeekCurrent)
	if err != nil {
		return err
	}
	if err := writeU32(ws, 0); err != nil {
		return err
	}

	bodyPos, err := ws.Seek(0, io.SeekCurrent)
	if err != nil {
		return err
	}
	if err := rapifyBody(ws, c.Properties); err != nil {
		return err
	}
	endPos, err := ws.Seek(0, io.SeekCurrent)
	if err != nil {
		return err
	}

	if _, err := ws.Seek(slotPos, io.SeekStart); err != nil {
		return err
	}
	if err := writeU32(ws, uint32(bodyPos)); err != nil {
		return err
	}
	_, err = ws.Seek(endPos, io.SeekStart)
	return err
}

func rapifyEntry(ws *writerseeker.WriterSeeker, p config.Property) error {
	v := p.Value
	switch v.Kind {
	case config.ValArray, config.ValUnexpectedArray:
		code := byte(codeArrayEntry)
		if v.ExpandAssign {
			if _, err := ws.Write([]byte{codeArrayExpand, 1, 0, 0, 0}); err != nil {
				return err
			}
		} else {
			if _, err := ws.Write([]byte{code}); err != nil {
				return err
			}
		}
		if err := writeCString(ws, p.Name); err != nil {
			return err
		}
		return rapifyArray(ws, v.Items)

	case config.ValStr:
		if _, err := ws.Write([]byte{codeEntry, subStr}); err != nil {
			return err
		}
		if err := writeCString(ws, p.Name); err != nil {
			return err
		}
		return writeCString(ws, v.Str)

	case config.ValNumber:
		return rapifyNumberEntry(ws, p.Name, v)

	case config.ValExpression:
		if _, err := ws.Write([]byte{codeEntry, subExpression}); err != nil {
			return err
		}
		if err := writeCString(ws, p.Name); err != nil {
			return err
		}
		return writeCString(ws, v.Expression)

	default:
		return fmt.Errorf("rapify: property %q has an invalid value and cannot be rapified", p.Name)
	}
}

func rapifyNumberEntry(ws *writerseeker.WriterSeeker, name string, v config.Value) error {
	var sub byte
	switch v.NumKind {
	case config.NumInt32:
		sub = subInt32
	case config.NumInt64:
		sub = subInt64
	case config.NumFloat32:
		sub = subFloat
	}
	if _, err := ws.Write([]byte{codeEntry, sub}); err != nil {
		return err
	}
	if err := writeCString(ws, name); err != nil {
		return err
	}
	switch v.NumKind {
	case config.NumInt32:
		return writeI32(ws, int32(v.Int))
	case config.NumInt64:
		return writeI64(ws, v.Int)
	case config.NumFloat32:
		return writeF32(ws, v.Float)
	}
	return fmt.Errorf("rapify: %q has an unknown numeric kind", name)
}

func rapifyArray(ws *writerseeker.WriterSeeker, items []config.Item) error {
	if err := writeCompressedInt(ws, uint32(len(items))); err != nil {
		return err
	}
	for _, item := range items {
		if err := rapifyItem(ws, item); err != nil {
			return err
		}
	}
	return nil
}

func rapifyItem(ws *writerseeker.WriterSeeker, item config.Item) error {
	switch item.Kind {
	case config.ItemStr:
		if _, err := ws.Write([]byte{subStr}); err != nil {
			return err
		}
		return writeCString(ws, item.Str)
	case config.ItemNumber:
		if item.IsInt {
			if item.Int >= -(1<<31) && item.Int < (1<<31) {
				if _, err := ws.Write([]byte{subInt32}); err != nil {
					return err
				}
				return writeI32(ws, int32(item.Int))
			}
			if _, err := ws.Write([]byte{subInt64}); err != nil {
				return err
			}
			return writeI64(ws, item.Int)
		}
		if _, err := ws.Write([]byte{subFloat}); err != nil {
			return err
		}
		return writeF32(ws, item.Float)
	case config.ItemArray:
		if _, err := ws.Write([]byte{subArray}); err != nil {
			return err
		}
		return rapifyArray(ws, item.Array)
	default:
		return fmt.Errorf("rapify: array item is invalid and cannot be rapified")
	}
}
