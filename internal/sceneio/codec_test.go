package sceneio

import (
	"bytes"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"inksight/pkg/models"
)

func TestRoundTripLineItemAndOpaqueBlocks(t *testing.T) {
	blocks := []Block{
		{Tag: 9, Raw: []byte("vendor metadata block")},
		{Tag: LineItemTag, Stroke: &models.Stroke{
			ToolID: 2, Color: 0x000000,
			Points: []models.Point{
				{X: 1.5, Y: -2.25, Speed: 10, Direction: 90, Width: 3, Pressure: 128},
				{X: 4, Y: 5, Speed: 20, Direction: 0, Width: 3, Pressure: 200},
			},
		}},
		{Tag: 3, Raw: []byte{}},
	}

	var buf bytes.Buffer
	require.NoError(t, EncodeBlocks(&buf, blocks))

	decoded, err := DecodeBlocks(&buf)
	require.NoError(t, err)

	if diff := cmp.Diff(blocks, decoded); diff != "" {
		t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestDecodeEncodeIsByteIdentical(t *testing.T) {
	blocks := []Block{
		{Tag: 7, Raw: []byte{0x01, 0x02, 0x03}},
		{Tag: LineItemTag, Stroke: &models.Stroke{
			ToolID: 1, Color: 0xff00ff,
			Points: []models.Point{{X: 0, Y: 0, Pressure: 50}, {X: 10, Y: 10, Pressure: 60}},
		}},
	}

	var original bytes.Buffer
	require.NoError(t, EncodeBlocks(&original, blocks))

	decoded, err := DecodeBlocks(bytes.NewReader(original.Bytes()))
	require.NoError(t, err)

	var reencoded bytes.Buffer
	require.NoError(t, EncodeBlocks(&reencoded, decoded))

	require.True(t, bytes.Equal(original.Bytes(), reencoded.Bytes()), "encode(decode(x)) must equal x byte-for-byte")
}

func TestDecodeBlocksEmptyStream(t *testing.T) {
	blocks, err := DecodeBlocks(bytes.NewReader(nil))
	require.NoError(t, err)
	require.Empty(t, blocks)
}

func TestDecodeBlocksTruncatedHeaderIsError(t *testing.T) {
	_, err := DecodeBlocks(bytes.NewReader([]byte{1, 2, 3}))
	require.Error(t, err)
}

func TestDecodeBlocksTruncatedPayloadIsError(t *testing.T) {
	header := []byte{byte(LineItemTag), 100, 0, 0, 0} // claims 100 byte payload
	_, err := DecodeBlocks(bytes.NewReader(header))
	require.Error(t, err)
}
