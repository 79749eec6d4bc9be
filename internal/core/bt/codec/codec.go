// Package codec stores behavior trees in a compact, versioned binary form.
//
//	magic "BTRE" | version u16 | node | xxhash64 u64
//	node := kind u8 | one u8 per field | [uvarint count | children...]
//
// All fixed-width integers are big endian. The checksum covers every byte
// before it.
package codec

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/cespare/xxhash/v2"

	"github.com/zeusync/btengine/internal/core/bt"
	"github.com/zeusync/btengine/internal/core/world"
	"github.com/zeusync/btengine/pkg/encoding"
)

const (
	Magic   = "BTRE"
	Version = uint16(1)

	// MaxDepth bounds nesting on decode.
	MaxDepth = 512

	headerSize  = len(Magic) + 2
	trailerSize = 8
	minNodeSize = 2
)

var (
	ErrBadMagic           = errors.New("codec: bad magic")
	ErrUnsupportedVersion = errors.New("codec: unsupported version")
	ErrChecksum           = errors.New("codec: checksum mismatch")
	ErrTruncated          = errors.New("codec: truncated input")
	ErrUnknownKind        = errors.New("codec: unknown node kind")
	ErrTrailingData       = errors.New("codec: trailing data after root")
	ErrTooDeep            = errors.New("codec: tree nested too deeply")
)

// Encode serializes root. The tree is validated first, so anything Encode
// accepts Decode gives back.
func Encode(root bt.Task) ([]byte, error) {
	if err := bt.Validate(root); err != nil {
		return nil, err
	}
	buf := make([]byte, 0, headerSize+bt.Count(root)*3+trailerSize)
	buf = append(buf, Magic...)
	buf = binary.BigEndian.AppendUint16(buf, Version)
	buf = appendNode(buf, root)
	return binary.BigEndian.AppendUint64(buf, xxhash.Sum64(buf)), nil
}

func appendNode(buf []byte, n bt.Task) []byte {
	buf = append(buf, byte(n.Kind()))
	switch v := n.(type) {
	case *bt.Sequence:
		return appendChildren(buf, v.Children())
	case *bt.Selector:
		return appendChildren(buf, v.Children())
	case *bt.IsOpen:
		return append(buf, byte(v.What))
	case *bt.IsHere:
		return append(buf, byte(v.Character), byte(v.Where))
	case *bt.MoveTo:
		return append(buf, byte(v.Mover), byte(v.Where))
	case *bt.Open:
		return append(buf, byte(v.Opener), byte(v.Target))
	case *bt.PickUp:
		return append(buf, byte(v.Character), byte(v.Target))
	}
	return buf
}

func appendChildren(buf []byte, children []bt.Task) []byte {
	buf = binary.AppendUvarint(buf, uint64(len(children)))
	for _, ch := range children {
		buf = appendNode(buf, ch)
	}
	return buf
}

// Decode parses data produced by Encode.
func Decode(data []byte) (bt.Task, error) {
	if len(data) >= len(Magic) && string(data[:len(Magic)]) != Magic {
		return nil, ErrBadMagic
	}
	if len(data) < headerSize+minNodeSize+trailerSize {
		return nil, ErrTruncated
	}
	if v := binary.BigEndian.Uint16(data[len(Magic):headerSize]); v != Version {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedVersion, v)
	}
	body := data[:len(data)-trailerSize]
	if xxhash.Sum64(body) != binary.BigEndian.Uint64(data[len(body):]) {
		return nil, ErrChecksum
	}

	d := decoder{buf: body, off: headerSize}
	root, err := d.node(0)
	if err != nil {
		return nil, err
	}
	if d.off != len(d.buf) {
		return nil, fmt.Errorf("%w: %d bytes", ErrTrailingData, len(d.buf)-d.off)
	}
	return root, nil
}

type decoder struct {
	buf []byte
	off int
}

func (d *decoder) readByte() (byte, error) {
	if d.off >= len(d.buf) {
		return 0, ErrTruncated
	}
	b := d.buf[d.off]
	d.off++
	return b, nil
}

func (d *decoder) readPair() (byte, byte, error) {
	a, err := d.readByte()
	if err != nil {
		return 0, 0, err
	}
	b, err := d.readByte()
	return a, b, err
}

func (d *decoder) node(depth int) (bt.Task, error) {
	if depth >= MaxDepth {
		return nil, ErrTooDeep
	}
	k, err := d.readByte()
	if err != nil {
		return nil, err
	}
	kind := bt.Kind(k)
	if !kind.Valid() {
		return nil, fmt.Errorf("%w: %d at offset %d", ErrUnknownKind, k, d.off-1)
	}

	if kind.Composite() {
		return d.composite(kind, depth)
	}

	switch kind {
	case bt.KindIsOpen:
		what, err := d.readByte()
		if err != nil {
			return nil, err
		}
		return leaf(bt.NewIsOpen(world.Thing(what)))
	case bt.KindIsHere:
		c, l, err := d.readPair()
		if err != nil {
			return nil, err
		}
		return leaf(bt.NewIsHere(world.Character(c), world.Location(l)))
	case bt.KindMoveTo:
		c, l, err := d.readPair()
		if err != nil {
			return nil, err
		}
		return leaf(bt.NewMoveTo(world.Character(c), world.Location(l)))
	case bt.KindOpen:
		c, th, err := d.readPair()
		if err != nil {
			return nil, err
		}
		return leaf(bt.NewOpen(world.Character(c), world.Thing(th)))
	case bt.KindPickUp:
		c, th, err := d.readPair()
		if err != nil {
			return nil, err
		}
		return leaf(bt.NewPickUp(world.Character(c), world.Thing(th)))
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownKind, kind)
}

// leaf drops the typed nil a failed constructor returns.
func leaf[T bt.Task](n T, err error) (bt.Task, error) {
	if err != nil {
		return nil, err
	}
	return n, nil
}

func (d *decoder) composite(kind bt.Kind, depth int) (bt.Task, error) {
	count, n := binary.Uvarint(d.buf[d.off:])
	if n <= 0 {
		return nil, ErrTruncated
	}
	d.off += n
	if count > uint64(len(d.buf)-d.off)/minNodeSize {
		return nil, fmt.Errorf("%w: %d children announced", ErrTruncated, count)
	}

	// decoded children are fresh nodes, so no ownership checks are needed
	children := make([]bt.Task, 0, count)
	for i := uint64(0); i < count; i++ {
		ch, err := d.node(depth + 1)
		if err != nil {
			return nil, err
		}
		children = append(children, ch)
	}
	if kind == bt.KindSelector {
		return bt.NewSelector(children...), nil
	}
	return bt.NewSequence(children...), nil
}

// Tree adapts a root node to encoding.Serializable.
type Tree struct {
	Root bt.Task
}

var _ encoding.Serializable[Tree] = (*Tree)(nil)

func (t *Tree) Serialize() ([]byte, error) {
	return Encode(t.Root)
}

func (t *Tree) Deserialize(data []byte) error {
	root, err := Decode(data)
	if err != nil {
		return err
	}
	t.Root = root
	return nil
}
