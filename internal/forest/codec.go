package forest

import (
	"bytes"
	"fmt"
	"io"
)

const formatVersion = 1

// Encode writes the forest as a msgpack map:
//
//	{"version": 1, "features": n, "classes": [...], "trees": [[node...]...]}
//
// where each node is [feature, threshold, left, right, distribution|nil].
func Encode(w io.Writer, f *Forest) error {
	enc := newMsgpackEncoder(w)
	if err := enc.writeMapHeader(4); err != nil {
		return err
	}
	if err := enc.writeString("version"); err != nil {
		return err
	}
	if err := enc.writeInt(formatVersion); err != nil {
		return err
	}
	if err := enc.writeString("features"); err != nil {
		return err
	}
	if err := enc.writeInt(int64(f.features)); err != nil {
		return err
	}
	if err := enc.writeString("classes"); err != nil {
		return err
	}
	if err := enc.writeArrayHeader(len(f.classes)); err != nil {
		return err
	}
	for _, c := range f.classes {
		if err := enc.writeString(c); err != nil {
			return err
		}
	}
	if err := enc.writeString("trees"); err != nil {
		return err
	}
	if err := enc.writeArrayHeader(len(f.trees)); err != nil {
		return err
	}
	for _, t := range f.trees {
		if err := encodeTree(enc, t); err != nil {
			return err
		}
	}
	return enc.flush()
}

func encodeTree(enc *msgpackEncoder, t *Tree) error {
	if err := enc.writeArrayHeader(len(t.nodes)); err != nil {
		return err
	}
	for _, n := range t.nodes {
		if err := enc.writeArrayHeader(5); err != nil {
			return err
		}
		if err := enc.writeInt(int64(n.Feature)); err != nil {
			return err
		}
		if err := enc.writeFloat64(n.Threshold); err != nil {
			return err
		}
		if err := enc.writeInt(int64(n.Left)); err != nil {
			return err
		}
		if err := enc.writeInt(int64(n.Right)); err != nil {
			return err
		}
		if n.Value == nil {
			if err := enc.writeNil(); err != nil {
				return err
			}
			continue
		}
		if err := enc.writeArrayHeader(len(n.Value)); err != nil {
			return err
		}
		for _, p := range n.Value {
			if err := enc.writeFloat64(p); err != nil {
				return err
			}
		}
	}
	return nil
}

// Decode reads a forest written by Encode and checks its structure.
func Decode(r io.Reader) (*Forest, error) {
	dec := newMsgpackDecoder(r)
	fields, err := dec.readMapHeader()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	f := &Forest{}
	version := int64(-1)
	for i := 0; i < fields; i++ {
		key, err := dec.readString()
		if err != nil {
			return nil, fmt.Errorf("read field name: %w", err)
		}
		switch key {
		case "version":
			version, err = dec.readInt()
		case "features":
			var n int64
			n, err = dec.readInt()
			f.features = int(n)
		case "classes":
			f.classes, err = decodeClasses(dec)
		case "trees":
			f.trees, err = decodeTrees(dec)
		default:
			err = fmt.Errorf("unknown field %q", key)
		}
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", key, err)
		}
	}
	if version != formatVersion {
		return nil, fmt.Errorf("unsupported model format version %d", version)
	}
	if err := f.validate(); err != nil {
		return nil, err
	}
	return f, nil
}

func decodeClasses(dec *msgpackDecoder) ([]string, error) {
	n, err := dec.readArrayHeader()
	if err != nil {
		return nil, err
	}
	classes := make([]string, 0, n)
	for i := 0; i < n; i++ {
		c, err := dec.readString()
		if err != nil {
			return nil, err
		}
		classes = append(classes, c)
	}
	return classes, nil
}

func decodeTrees(dec *msgpackDecoder) ([]*Tree, error) {
	n, err := dec.readArrayHeader()
	if err != nil {
		return nil, err
	}
	trees := make([]*Tree, 0, n)
	for i := 0; i < n; i++ {
		count, err := dec.readArrayHeader()
		if err != nil {
			return nil, err
		}
		t := &Tree{nodes: make([]node, 0, count)}
		for j := 0; j < count; j++ {
			nd, err := decodeNode(dec)
			if err != nil {
				return nil, fmt.Errorf("tree %d node %d: %w", i, j, err)
			}
			t.nodes = append(t.nodes, nd)
		}
		trees = append(trees, t)
	}
	return trees, nil
}

func decodeNode(dec *msgpackDecoder) (node, error) {
	var nd node
	fields, err := dec.readArrayHeader()
	if err != nil {
		return nd, err
	}
	if fields != 5 {
		return nd, fmt.Errorf("expected 5 node fields, got %d", fields)
	}
	feature, err := dec.readInt()
	if err != nil {
		return nd, err
	}
	if nd.Threshold, err = dec.readFloat64(); err != nil {
		return nd, err
	}
	left, err := dec.readInt()
	if err != nil {
		return nd, err
	}
	right, err := dec.readInt()
	if err != nil {
		return nd, err
	}
	nd.Feature, nd.Left, nd.Right = int(feature), int(left), int(right)
	isNil, err := dec.readNil()
	if err != nil || isNil {
		return nd, err
	}
	n, err := dec.readArrayHeader()
	if err != nil {
		return nd, err
	}
	nd.Value = make([]float64, n)
	for i := range nd.Value {
		if nd.Value[i], err = dec.readFloat64(); err != nil {
			return nd, err
		}
	}
	return nd, nil
}

// validate rejects artifacts whose trees could index out of range or loop.
func (f *Forest) validate() error {
	if f.features <= 0 {
		return fmt.Errorf("invalid feature count %d", f.features)
	}
	if len(f.classes) == 0 {
		return fmt.Errorf("model has no classes")
	}
	if len(f.trees) == 0 {
		return fmt.Errorf("model has no trees")
	}
	for ti, t := range f.trees {
		if len(t.nodes) == 0 {
			return fmt.Errorf("tree %d is empty", ti)
		}
		for i, n := range t.nodes {
			if n.Feature == leafFeature {
				if len(n.Value) != len(f.classes) {
					return fmt.Errorf("tree %d leaf %d has %d class weights, expected %d", ti, i, len(n.Value), len(f.classes))
				}
				continue
			}
			if n.Feature < 0 || n.Feature >= f.features {
				return fmt.Errorf("tree %d node %d splits on feature %d", ti, i, n.Feature)
			}
			if n.Left <= i || n.Right <= i || n.Left >= len(t.nodes) || n.Right >= len(t.nodes) {
				return fmt.Errorf("tree %d node %d has invalid children %d/%d", ti, i, n.Left, n.Right)
			}
		}
	}
	return nil
}

// MarshalBinary implements encoding.BinaryMarshaler.
func (f *Forest) MarshalBinary() ([]byte, error) {
	var buf bytes.Buffer
	if err := Encode(&buf, f); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler.
func (f *Forest) UnmarshalBinary(data []byte) error {
	decoded, err := Decode(bytes.NewReader(data))
	if err != nil {
		return err
	}
	*f = *decoded
	return nil
}
