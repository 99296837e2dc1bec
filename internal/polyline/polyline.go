// Package polyline implements the HERE flexible polyline encoding used for route geometry.
//
// Format: a version varint, a header varint (precision in the low four bits, the third
// dimension type in the next three, its precision above), then zig-zag encoded deltas
// for each coordinate. Every varint is emitted five bits per character.
package polyline

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

const (
	formatVersion    = 1
	// DefaultPrecision keeps five decimals, about one meter.
	DefaultPrecision = 5
	maxPrecision     = 15

	encodingTable = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789-_"
	chunkBits     = 5
	chunkMask     = 0x1F
	continueBit   = 0x20
	uint64Bits    = 64
)

// Decoding errors.
var (
	ErrEmpty              = errors.New("polyline is empty")
	ErrInvalidEncoding    = errors.New("invalid polyline encoding")
	ErrUnsupportedVersion = errors.New("unsupported polyline version")
	ErrInvalidPrecision   = errors.New("polyline precision out of range")
)

// Point is a decoded latitude/longitude pair.
type Point struct {
	Lat float64
	Lng float64
}

var decodingTable = func() [256]int8 {
	var table [256]int8
	for i := range table {
		table[i] = -1
	}
	for i := range len(encodingTable) {
		table[encodingTable[i]] = int8(i)
	}
	return table
}()

// Encode encodes points with the given number of decimal digits and no third dimension.
func Encode(points []Point, precision int) (string, error) {
	if precision < 0 || precision > maxPrecision {
		return "", fmt.Errorf("%w: %d", ErrInvalidPrecision, precision)
	}

	var b strings.Builder
	encodeUnsigned(&b, formatVersion)
	encodeUnsigned(&b, uint64(precision))

	multiplier := math.Pow10(precision)
	var lastLat, lastLng int64
	for _, p := range points {
		lat := int64(math.Round(p.Lat * multiplier))
		lng := int64(math.Round(p.Lng * multiplier))
		encodeSigned(&b, lat-lastLat)
		encodeSigned(&b, lng-lastLng)
		lastLat, lastLng = lat, lng
	}

	return b.String(), nil
}

// Decode decodes a flexible polyline. A third dimension, when present, is read and discarded.
func Decode(encoded string) ([]Point, error) {
	if encoded == "" {
		return nil, ErrEmpty
	}

	version, pos, err := decodeUnsigned(encoded, 0)
	if err != nil {
		return nil, err
	}
	if version != formatVersion {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedVersion, version)
	}

	header, pos, err := decodeUnsigned(encoded, pos)
	if err != nil {
		return nil, err
	}
	precision := int(header & 0x0F)
	thirdDim := (header >> 4) & 0x07 // precision of the third dimension is above bit 7 and unused

	multiplier := math.Pow10(precision)
	var (
		points           []Point
		lastLat, lastLng int64
		delta            int64
	)
	for pos < len(encoded) {
		if delta, pos, err = decodeSigned(encoded, pos); err != nil {
			return nil, err
		}
		lastLat += delta
		if delta, pos, err = decodeSigned(encoded, pos); err != nil {
			return nil, err
		}
		lastLng += delta
		if thirdDim != 0 {
			if _, pos, err = decodeSigned(encoded, pos); err != nil {
				return nil, err
			}
		}
		points = append(points, Point{
			Lat: float64(lastLat) / multiplier,
			Lng: float64(lastLng) / multiplier,
		})
	}

	if len(points) == 0 {
		return nil, ErrEmpty
	}

	return points, nil
}

func encodeUnsigned(b *strings.Builder, value uint64) {
	for value > chunkMask {
		b.WriteByte(encodingTable[(value&chunkMask)|continueBit])
		value >>= chunkBits
	}
	b.WriteByte(encodingTable[value])
}

func encodeSigned(b *strings.Builder, value int64) {
	unsigned := uint64(value) << 1
	if value < 0 {
		unsigned = ^unsigned
	}
	encodeUnsigned(b, unsigned)
}

func decodeUnsigned(encoded string, pos int) (uint64, int, error) {
	var (
		result uint64
		shift  uint
	)
	for pos < len(encoded) {
		chunk := decodingTable[encoded[pos]]
		if chunk < 0 {
			return 0, pos, fmt.Errorf("%w: unexpected character %q at %d", ErrInvalidEncoding, encoded[pos], pos)
		}
		pos++
		result |= uint64(chunk&chunkMask) << shift
		if chunk&continueBit == 0 {
			return result, pos, nil
		}
		shift += chunkBits
		if shift >= uint64Bits {
			return 0, pos, fmt.Errorf("%w: value overflow", ErrInvalidEncoding)
		}
	}
	return 0, pos, fmt.Errorf("%w: truncated value", ErrInvalidEncoding)
}

func decodeSigned(encoded string, pos int) (int64, int, error) {
	unsigned, pos, err := decodeUnsigned(encoded, pos)
	if err != nil {
		return 0, pos, err
	}
	if unsigned&1 != 0 {
		return ^int64(unsigned >> 1), pos, nil
	}
	return int64(unsigned >> 1), pos, nil
}
