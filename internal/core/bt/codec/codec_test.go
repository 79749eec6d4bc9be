package codec

import (
	"encoding/binary"
	"testing"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeusync/btengine/internal/core/bt"
	"github.com/zeusync/btengine/internal/core/world"
)

func quest() bt.Task {
	return bt.NewSelector(
		bt.NewSequence(
			&bt.IsOpen{What: world.Chest},
			&bt.PickUp{Character: world.Knight, Target: world.Chest},
		),
		bt.NewSequence(
			&bt.PickUp{Character: world.Knight, Target: world.Potion},
			&bt.MoveTo{Mover: world.Knight, Where: world.Entrance},
			&bt.Open{Opener: world.Knight, Target: world.Gate},
			&bt.MoveTo{Mover: world.Knight, Where: world.Hallway},
			&bt.IsHere{Character: world.Merlin, Where: world.Hallway},
		),
		bt.NewSequence(),
	)
}

// seal wraps a node body in a valid header and checksum.
func seal(node ...byte) []byte {
	buf := append([]byte(Magic), 0, byte(Version))
	buf = append(buf, node...)
	return binary.BigEndian.AppendUint64(buf, xxhash.Sum64(buf))
}

func TestRoundTripPreservesEvaluation(t *testing.T) {
	root := quest()
	data, err := Encode(root)
	require.NoError(t, err)
	assert.Equal(t, Magic, string(data[:4]))

	decoded, err := Decode(data)
	require.NoError(t, err)
	assert.Equal(t, bt.Format(root), bt.Format(decoded))

	a, b := world.Castle(), world.Castle()
	okA, err := bt.Evaluate(root, a, nil)
	require.NoError(t, err)
	okB, err := bt.Evaluate(decoded, b, nil)
	require.NoError(t, err)
	assert.Equal(t, okA, okB)
	assert.Equal(t, a.Digest(), b.Digest())

	again, err := Encode(decoded)
	require.NoError(t, err)
	assert.Equal(t, data, again, "encoding is deterministic")
}

func TestLeafLayout(t *testing.T) {
	data, err := Encode(&bt.MoveTo{Mover: world.Merlin, Where: world.Entrance})
	require.NoError(t, err)
	assert.Equal(t, seal(byte(bt.KindMoveTo), byte(world.Merlin), byte(world.Entrance)), data)
}

func TestEncodeRejectsInvalidTrees(t *testing.T) {
	_, err := Encode(nil)
	assert.ErrorIs(t, err, bt.ErrNilTask)

	_, err = Encode(&bt.IsOpen{What: world.Thing(9)})
	assert.ErrorIs(t, err, bt.ErrOutOfDomain)
}

func TestDecodeCorruptInput(t *testing.T) {
	good, err := Encode(quest())
	require.NoError(t, err)

	flipped := append([]byte(nil), good...)
	flipped[8] ^= 0xFF

	badVersion := append([]byte(nil), good...)
	badVersion[5] = 9

	deep := make([]byte, 0, 2*MaxDepth+2)
	for i := 0; i < MaxDepth; i++ {
		deep = append(deep, byte(bt.KindSequence), 1)
	}
	deep = append(deep, byte(bt.KindIsOpen), byte(world.Gate))

	cases := []struct {
		name string
		data []byte
		want error
	}{
		{"empty", nil, ErrTruncated},
		{"short", []byte("BT"), ErrTruncated},
		{"header only", []byte("BTRE\x00\x01"), ErrTruncated},
		{"magic", append([]byte("XTRE"), good[4:]...), ErrBadMagic},
		{"version", badVersion, ErrUnsupportedVersion},
		{"checksum", flipped, ErrChecksum},
		{"unknown kind", seal(99, 0), ErrUnknownKind},
		{"invalid kind", seal(byte(bt.KindInvalid), 0), ErrUnknownKind},
		{"out of domain", seal(byte(bt.KindIsHere), byte(world.Knight), 77), bt.ErrOutOfDomain},
		{"missing field", seal(byte(bt.KindSequence), 1, byte(bt.KindMoveTo), 1), ErrTruncated},
		{"count too large", seal(byte(bt.KindSelector), 5, byte(bt.KindIsOpen), 1), ErrTruncated},
		{"trailing", seal(byte(bt.KindIsOpen), 1, 0), ErrTrailingData},
		{"too deep", seal(deep...), ErrTooDeep},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Decode(tc.data)
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestDecodeAcceptsMaxDepth(t *testing.T) {
	var node []byte
	for i := 0; i < MaxDepth-1; i++ {
		node = append(node, byte(bt.KindSequence), 1)
	}
	node = append(node, byte(bt.KindIsOpen), byte(world.Gate))

	root, err := Decode(seal(node...))
	require.NoError(t, err)
	assert.Equal(t, MaxDepth, bt.Count(root))
}

func TestTreeSerializable(t *testing.T) {
	src := Tree{Root: quest()}
	data, err := src.Serialize()
	require.NoError(t, err)

	var dst Tree
	require.NoError(t, dst.Deserialize(data))
	assert.Equal(t, bt.Format(src.Root), bt.Format(dst.Root))

	assert.Error(t, dst.Deserialize(data[:len(data)-1]))
	assert.NotNil(t, dst.Root, "failed decode leaves the previous root")
}

func TestDecodeWideTreeIsLinear(t *testing.T) {
	const width = 50000
	children := make([]bt.Task, width)
	for i := range children {
		children[i] = &bt.IsOpen{What: world.Gate}
	}
	data, err := Encode(bt.NewSequence(children...))
	require.NoError(t, err)

	start := time.Now()
	root, err := Decode(data)
	require.NoError(t, err)
	assert.Less(t, time.Since(start), 2*time.Second)

	require.Len(t, root.(*bt.Sequence).Children(), width)
	require.NoError(t, bt.Validate(root))
}
