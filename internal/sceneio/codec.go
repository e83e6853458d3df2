// Package sceneio reads and writes the tagged-block container a scene
// file is made of. One block kind (LineItemBlock) is understood and
// exposed as a mutable Stroke; every other kind passes through as an
// opaque byte payload so files containing block kinds this codec doesn't
// know about still round-trip byte-for-byte.
package sceneio

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	"inksight/pkg/models"
)

// BlockTag identifies a block's kind on the wire.
type BlockTag uint8

// LineItemTag is the only block kind this codec interprets; every other
// tag value is carried through opaque.
const LineItemTag BlockTag = 1

// Block is one entry in a scene file. Exactly one of Stroke or Raw is
// meaningful, selected by Tag: Stroke for LineItemTag, Raw otherwise.
type Block struct {
	Tag    BlockTag
	Stroke *models.Stroke // set iff Tag == LineItemTag
	Raw    []byte         // set iff Tag != LineItemTag
}

// IsLineItem reports whether the block carries an interpreted stroke.
func (b Block) IsLineItem() bool {
	return b.Tag == LineItemTag && b.Stroke != nil
}

// wire layout per block: tag(1) length(4, little endian, of the payload
// that follows) payload(length bytes).
//
// LineItemBlock payload: tool_id(4) color(4) point_count(4) then, per
// point: x(8 float64) y(8 float64) speed(4 int32) direction(4 int32)
// width(4 int32) pressure(4 int32).

// DecodeBlocks reads every block in r until EOF. A truncated final block
// is a read error; the caller makes no changes when this returns an
// error, per the containing component's contract.
func DecodeBlocks(r io.Reader) ([]Block, error) {
	var blocks []Block
	for {
		var header [5]byte
		_, err := io.ReadFull(r, header[:])
		if err == io.EOF {
			return blocks, nil
		}
		if err != nil {
			return nil, fmt.Errorf("read block header: %w", err)
		}
		tag := BlockTag(header[0])
		length := binary.LittleEndian.Uint32(header[1:])

		payload := make([]byte, length)
		if _, err := io.ReadFull(r, payload); err != nil {
			return nil, fmt.Errorf("read block payload (tag %d, len %d): %w", tag, length, err)
		}

		if tag == LineItemTag {
			stroke, err := decodeStrokePayload(payload)
			if err != nil {
				return nil, fmt.Errorf("decode line item block: %w", err)
			}
			blocks = append(blocks, Block{Tag: tag, Stroke: stroke})
			continue
		}
		blocks = append(blocks, Block{Tag: tag, Raw: payload})
	}
}

// EncodeBlocks writes blocks back out in the same wire format
// DecodeBlocks reads, so decode(encode(x)) == x for any block list
// produced by DecodeBlocks.
func EncodeBlocks(w io.Writer, blocks []Block) error {
	for _, b := range blocks {
		var payload []byte
		if b.Tag == LineItemTag {
			if b.Stroke == nil {
				return fmt.Errorf("line item block has no stroke")
			}
			payload = encodeStrokePayload(*b.Stroke)
		} else {
			payload = b.Raw
		}

		var header [5]byte
		header[0] = byte(b.Tag)
		binary.LittleEndian.PutUint32(header[1:], uint32(len(payload)))
		if _, err := w.Write(header[:]); err != nil {
			return fmt.Errorf("write block header: %w", err)
		}
		if _, err := w.Write(payload); err != nil {
			return fmt.Errorf("write block payload: %w", err)
		}
	}
	return nil
}

func decodeStrokePayload(payload []byte) (*models.Stroke, error) {
	r := bytes.NewReader(payload)
	var toolID, color, count uint32
	if err := binary.Read(r, binary.LittleEndian, &toolID); err != nil {
		return nil, err
	}
	if err := binary.Read(r, binary.LittleEndian, &color); err != nil {
		return nil, err
	}
	if err := binary.Read(r, binary.LittleEndian, &count); err != nil {
		return nil, err
	}

	points := make([]models.Point, count)
	for i := range points {
		var p models.Point
		if err := binary.Read(r, binary.LittleEndian, &p.X); err != nil {
			return nil, err
		}
		if err := binary.Read(r, binary.LittleEndian, &p.Y); err != nil {
			return nil, err
		}
		if err := binary.Read(r, binary.LittleEndian, &p.Speed); err != nil {
			return nil, err
		}
		if err := binary.Read(r, binary.LittleEndian, &p.Direction); err != nil {
			return nil, err
		}
		if err := binary.Read(r, binary.LittleEndian, &p.Width); err != nil {
			return nil, err
		}
		if err := binary.Read(r, binary.LittleEndian, &p.Pressure); err != nil {
			return nil, err
		}
		points[i] = p
	}

	return &models.Stroke{ToolID: toolID, Color: color, Points: points}, nil
}

func encodeStrokePayload(s models.Stroke) []byte {
	buf := &bytes.Buffer{}
	binary.Write(buf, binary.LittleEndian, s.ToolID)
	binary.Write(buf, binary.LittleEndian, s.Color)
	binary.Write(buf, binary.LittleEndian, uint32(len(s.Points)))
	for _, p := range s.Points {
		binary.Write(buf, binary.LittleEndian, p.X)
		binary.Write(buf, binary.LittleEndian, p.Y)
		binary.Write(buf, binary.LittleEndian, p.Speed)
		binary.Write(buf, binary.LittleEndian, p.Direction)
		binary.Write(buf, binary.LittleEndian, p.Width)
		binary.Write(buf, binary.LittleEndian, p.Pressure)
	}
	return buf.Bytes()
}
