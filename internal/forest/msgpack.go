package forest

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"math"
)

// The artifact uses a small msgpack subset: nil, signed integers, float64,
// strings, arrays and maps with string keys.

type msgpackEncoder struct {
	w *bufio.Writer
}

func newMsgpackEncoder(w io.Writer) *msgpackEncoder {
	return &msgpackEncoder{w: bufio.NewWriter(w)}
}

func (e *msgpackEncoder) flush() error {
	return e.w.Flush()
}

func (e *msgpackEncoder) writeNil() error {
	return e.w.WriteByte(0xc0)
}

func (e *msgpackEncoder) writeInt(v int64) error {
	switch {
	case v >= 0 && v <= 0x7f:
		return e.w.WriteByte(byte(v))
	case v < 0 && v >= -32:
		return e.w.WriteByte(byte(int8(v)))
	case v >= math.MinInt32 && v <= math.MaxInt32:
		var buf [5]byte
		buf[0] = 0xd2
		binary.BigEndian.PutUint32(buf[1:], uint32(int32(v)))
		_, err := e.w.Write(buf[:])
		return err
	default:
		var buf [9]byte
		buf[0] = 0xd3
		binary.BigEndian.PutUint64(buf[1:], uint64(v))
		_, err := e.w.Write(buf[:])
		return err
	}
}

func (e *msgpackEncoder) writeFloat64(v float64) error {
	var buf [9]byte
	buf[0] = 0xcb
	binary.BigEndian.PutUint64(buf[1:], math.Float64bits(v))
	_, err := e.w.Write(buf[:])
	return err
}

func (e *msgpackEncoder) writeString(s string) error {
	n := len(s)
	var err error
	switch {
	case n <= 31:
		err = e.w.WriteByte(0xa0 | byte(n))
	case n <= math.MaxUint8:
		_, err = e.w.Write([]byte{0xd9, byte(n)})
	case n <= math.MaxUint16:
		err = e.writeLength(0xda, n, 2)
	default:
		err = e.writeLength(0xdb, n, 4)
	}
	if err != nil {
		return err
	}
	_, err = e.w.WriteString(s)
	return err
}

func (e *msgpackEncoder) writeArrayHeader(n int) error {
	switch {
	case n <= 15:
		return e.w.WriteByte(0x90 | byte(n))
	case n <= math.MaxUint16:
		return e.writeLength(0xdc, n, 2)
	default:
		return e.writeLength(0xdd, n, 4)
	}
}

func (e *msgpackEncoder) writeMapHeader(n int) error {
	switch {
	case n <= 15:
		return e.w.WriteByte(0x80 | byte(n))
	case n <= math.MaxUint16:
		return e.writeLength(0xde, n, 2)
	default:
		return e.writeLength(0xdf, n, 4)
	}
}

func (e *msgpackEncoder) writeLength(prefix byte, n, size int) error {
	buf := make([]byte, 1+size)
	buf[0] = prefix
	if size == 2 {
		binary.BigEndian.PutUint16(buf[1:], uint16(n))
	} else {
		binary.BigEndian.PutUint32(buf[1:], uint32(n))
	}
	_, err := e.w.Write(buf)
	return err
}

type msgpackDecoder struct {
	r *bufio.Reader
}

func newMsgpackDecoder(r io.Reader) *msgpackDecoder {
	return &msgpackDecoder{r: bufio.NewReader(r)}
}

// readNil consumes a nil marker if one is next and reports whether it did.
func (d *msgpackDecoder) readNil() (bool, error) {
	b, err := d.r.Peek(1)
	if err != nil {
		return false, err
	}
	if b[0] != 0xc0 {
		return false, nil
	}
	_, err = d.r.ReadByte()
	return true, err
}

func (d *msgpackDecoder) readInt() (int64, error) {
	b, err := d.r.ReadByte()
	if err != nil {
		return 0, err
	}
	switch {
	case b <= 0x7f:
		return int64(b), nil
	case b >= 0xe0:
		return int64(int8(b)), nil
	}
	switch b {
	case 0xcc:
		v, err := d.readN(1)
		return int64(v), err
	case 0xcd:
		v, err := d.readN(2)
		return int64(v), err
	case 0xce:
		v, err := d.readN(4)
		return int64(v), err
	case 0xcf:
		v, err := d.readN(8)
		if err == nil && v > math.MaxInt64 {
			return 0, fmt.Errorf("integer %d overflows int64", v)
		}
		return int64(v), err
	case 0xd0:
		v, err := d.readN(1)
		return int64(int8(v)), err
	case 0xd1:
		v, err := d.readN(2)
		return int64(int16(v)), err
	case 0xd2:
		v, err := d.readN(4)
		return int64(int32(v)), err
	case 0xd3:
		v, err := d.readN(8)
		return int64(v), err
	default:
		return 0, fmt.Errorf("expected integer, got msgpack prefix 0x%x", b)
	}
}

func (d *msgpackDecoder) readFloat64() (float64, error) {
	b, err := d.r.ReadByte()
	if err != nil {
		return 0, err
	}
	switch b {
	case 0xca:
		v, err := d.readN(4)
		return float64(math.Float32frombits(uint32(v))), err
	case 0xcb:
		v, err := d.readN(8)
		return math.Float64frombits(v), err
	default:
		if err := d.r.UnreadByte(); err != nil {
			return 0, err
		}
		v, err := d.readInt()
		if err != nil {
			return 0, fmt.Errorf("expected float: %w", err)
		}
		return float64(v), nil
	}
}

func (d *msgpackDecoder) readString() (string, error) {
	b, err := d.r.ReadByte()
	if err != nil {
		return "", err
	}
	var n uint64
	switch {
	case b >= 0xa0 && b <= 0xbf:
		n = uint64(b & 0x1f)
	case b == 0xd9:
		n, err = d.readN(1)
	case b == 0xda:
		n, err = d.readN(2)
	case b == 0xdb:
		n, err = d.readN(4)
	default:
		return "", fmt.Errorf("expected string, got msgpack prefix 0x%x", b)
	}
	if err != nil {
		return "", err
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(d.r, buf); err != nil {
		return "", err
	}
	return string(buf), nil
}

func (d *msgpackDecoder) readArrayHeader() (int, error) {
	b, err := d.r.ReadByte()
	if err != nil {
		return 0, err
	}
	switch {
	case b >= 0x90 && b <= 0x9f:
		return int(b & 0x0f), nil
	case b == 0xdc:
		n, err := d.readN(2)
		return int(n), err
	case b == 0xdd:
		n, err := d.readN(4)
		return int(n), err
	default:
		return 0, fmt.Errorf("expected array, got msgpack prefix 0x%x", b)
	}
}

func (d *msgpackDecoder) readMapHeader() (int, error) {
	b, err := d.r.ReadByte()
	if err != nil {
		return 0, err
	}
	switch {
	case b >= 0x80 && b <= 0x8f:
		return int(b & 0x0f), nil
	case b == 0xde:
		n, err := d.readN(2)
		return int(n), err
	case b == 0xdf:
		n, err := d.readN(4)
		return int(n), err
	default:
		return 0, fmt.Errorf("expected map, got msgpack prefix 0x%x", b)
	}
}

// readN reads a big-endian unsigned integer of size bytes.
func (d *msgpackDecoder) readN(size int) (uint64, error) {
	var buf [8]byte
	if _, err := io.ReadFull(d.r, buf[:size]); err != nil {
		return 0, err
	}
	switch size {
	case 1:
		return uint64(buf[0]), nil
	case 2:
		return uint64(binary.BigEndian.Uint16(buf[:2])), nil
	case 4:
		return uint64(binary.BigEndian.Uint32(buf[:4])), nil
	default:
		return binary.BigEndian.Uint64(buf[:8]), nil
	}
}
