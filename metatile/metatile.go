/*
Package metatile groups the cells of a tilemap into larger blocks, such as
2 by 2 cells, and stores the distinct blocks once together with an index per
block position.

The side file is written as a small header, the 4 byte magic "MTIL", the
block width and height in cells as one byte each and the number of block
columns, rows and distinct blocks as little-endian 16-bit values. The
distinct blocks follow, each as its tilemap words row-major, and finally the
16-bit block index for every block position row-major.
*/
package metatile

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"image"
	"io"
	"math"

	"github.com/bodgit/snestile/snes"
	"github.com/bodgit/snestile/tilemap"
)

const (
	// Extension is the file extension used when writing to disk
	Extension = ".meta"

	magic      = "MTIL"
	maxEntries = math.MaxUint16
)

// Set is the metatile table for a tilemap. It implements the
// encoding.BinaryMarshaler and encoding.BinaryUnmarshaler interfaces.
type Set struct {
	Size    image.Point
	Columns int
	Rows    int
	Blocks  [][]tilemap.Word
	Index   []uint16
}

func key(words []tilemap.Word) string {
	b := make([]byte, 2*len(words))
	for i, w := range words {
		binary.LittleEndian.PutUint16(b[2*i:], uint16(w))
	}
	return string(b)
}

// Build groups the cells of m into blocks of size cells. The map dimensions
// must be a multiple of the block size.
func Build(m *tilemap.Map, size image.Point) (*Set, error) {
	if size.X <= 0 || size.Y <= 0 || size.X > math.MaxUint8 || size.Y > math.MaxUint8 {
		return nil, fmt.Errorf("metatile: invalid size %v", size)
	}
	if m.Width%size.X != 0 || m.Height%size.Y != 0 {
		return nil, snes.FormatError(fmt.Sprintf("map of %dx%d cells doesn't divide into %dx%d metatiles", m.Width, m.Height, size.X, size.Y))
	}

	s := &Set{
		Size:    size,
		Columns: m.Width / size.X,
		Rows:    m.Height / size.Y,
	}

	seen := make(map[string]uint16)
	for by := 0; by < s.Rows; by++ {
		for bx := 0; bx < s.Columns; bx++ {
			words := make([]tilemap.Word, 0, size.X*size.Y)
			for y := 0; y < size.Y; y++ {
				for x := 0; x < size.X; x++ {
					words = append(words, m.At(bx*size.X+x, by*size.Y+y))
				}
			}

			k := key(words)
			i, ok := seen[k]
			if !ok {
				if len(s.Blocks) >= maxEntries {
					return nil, &snes.CapacityError{Resource: "metatiles", Count: len(s.Blocks) + 1, Max: maxEntries}
				}
				i = uint16(len(s.Blocks))
				seen[k] = i
				s.Blocks = append(s.Blocks, words)
			}
			s.Index = append(s.Index, i)
		}
	}

	return s, nil
}

// Map expands the set back into a tilemap.
func (s *Set) Map() *tilemap.Map {
	m := tilemap.New(s.Columns*s.Size.X, s.Rows*s.Size.Y)
	for by := 0; by < s.Rows; by++ {
		for bx := 0; bx < s.Columns; bx++ {
			words := s.Blocks[s.Index[by*s.Columns+bx]]
			for y := 0; y < s.Size.Y; y++ {
				for x := 0; x < s.Size.X; x++ {
					m.Set(bx*s.Size.X+x, by*s.Size.Y+y, words[y*s.Size.X+x])
				}
			}
		}
	}
	return m
}

// MarshalBinary encodes the set into binary form and returns the result
func (s *Set) MarshalBinary() ([]byte, error) {
	if len(s.Blocks) > maxEntries {
		return nil, fmt.Errorf("more than %d metatiles", maxEntries)
	}

	b := new(bytes.Buffer)
	b.WriteString(magic)
	b.WriteByte(byte(s.Size.X))
	b.WriteByte(byte(s.Size.Y))

	header := []uint16{uint16(s.Columns), uint16(s.Rows), uint16(len(s.Blocks))}
	if err := binary.Write(b, binary.LittleEndian, header); err != nil {
		return nil, err
	}

	for _, words := range s.Blocks {
		if err := binary.Write(b, binary.LittleEndian, words); err != nil {
			return nil, err
		}
	}

	if err := binary.Write(b, binary.LittleEndian, s.Index); err != nil {
		return nil, err
	}

	return b.Bytes(), nil
}

// UnmarshalBinary decodes the set from binary form
func (s *Set) UnmarshalBinary(b []byte) error {
	r := bytes.NewReader(b)

	var head [6]byte
	if _, err := io.ReadFull(r, head[:]); err != nil {
		return errors.New("insufficient data")
	}
	if string(head[:4]) != magic {
		return snes.FormatError("not a metatile file")
	}
	s.Size = image.Pt(int(head[4]), int(head[5]))

	var header [3]uint16
	if err := binary.Read(r, binary.LittleEndian, &header); err != nil {
		return errors.New("insufficient data")
	}
	s.Columns, s.Rows = int(header[0]), int(header[1])

	cells := s.Size.X * s.Size.Y
	s.Blocks = make([][]tilemap.Word, header[2])
	for i := range s.Blocks {
		s.Blocks[i] = make([]tilemap.Word, cells)
		if err := binary.Read(r, binary.LittleEndian, s.Blocks[i]); err != nil {
			return errors.New("insufficient data")
		}
	}

	s.Index = make([]uint16, s.Columns*s.Rows)
	if err := binary.Read(r, binary.LittleEndian, s.Index); err != nil {
		return errors.New("insufficient data")
	}
	for _, i := range s.Index {
		if int(i) >= len(s.Blocks) {
			return snes.FormatError("metatile index out of range")
		}
	}

	if r.Len() != 0 {
		return errors.New("too much data")
	}

	return nil
}
