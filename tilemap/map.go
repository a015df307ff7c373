package tilemap

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/bodgit/snestile/snes"
	"github.com/bodgit/snestile/tile"
	"github.com/gravestench/bitstream"
)

const wordBytes = 2

// Map is a grid of words indexed row-major by cell.
type Map struct {
	Width  int
	Height int
	Words  []Word
}

// New returns an empty map.
func New(width, height int) *Map {
	return &Map{
		Width:  width,
		Height: height,
		Words:  make([]Word, width*height),
	}
}

// At returns the word at cell (x, y).
func (m *Map) At(x, y int) Word {
	return m.Words[y*m.Width+x]
}

// Set replaces the word at cell (x, y).
func (m *Map) Set(x, y int, w Word) {
	m.Words[y*m.Width+x] = w
}

// Build packs every reference into a map of the given size. Cells without
// a reference are left as zero.
func Build(refs []tile.Ref, width, height, bpp int) (*Map, error) {
	m := New(width, height)
	for _, ref := range refs {
		if ref.X < 0 || ref.X >= width || ref.Y < 0 || ref.Y >= height {
			return nil, &snes.RangeError{Field: "cell", Value: ref.Y*width + ref.X, Max: width*height - 1}
		}
		w, err := Pack(ref, bpp)
		if err != nil {
			return nil, fmt.Errorf("cell (%d,%d): %w", ref.X, ref.Y, err)
		}
		m.Set(ref.X, ref.Y, w)
	}
	return m, nil
}

// Ordered returns the words in the order they are stored for the given
// layout.
func (m *Map) Ordered(layout Layout) ([]Word, error) {
	l, err := layout.Resolve(m.Width, m.Height)
	if err != nil {
		return nil, err
	}

	words := make([]Word, len(m.Words))
	for y := 0; y < m.Height; y++ {
		for x := 0; x < m.Width; x++ {
			words[l.Offset(m.Width, x, y)] = m.At(x, y)
		}
	}
	return words, nil
}

// Marshal serializes the map in the given layout.
func (m *Map) Marshal(layout Layout) ([]byte, error) {
	words, err := m.Ordered(layout)
	if err != nil {
		return nil, err
	}
	return MarshalWords(words), nil
}

// MarshalWords serializes words as they are.
func MarshalWords(words []Word) []byte {
	b := make([]byte, len(words)*wordBytes)
	for i, w := range words {
		binary.LittleEndian.PutUint16(b[i*wordBytes:], uint16(w))
	}
	return b
}

// Encode packs the references and serializes them in one step.
func Encode(refs []tile.Ref, width, height, bpp int, layout Layout) ([]byte, error) {
	m, err := Build(refs, width, height, bpp)
	if err != nil {
		return nil, err
	}
	return m.Marshal(layout)
}

// ReadWords reads little-endian words in file order until r is exhausted.
func ReadWords(r io.Reader) ([]Word, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	if len(b)%wordBytes != 0 {
		return nil, snes.FormatError("tilemap has an odd length")
	}

	stream := bitstream.ReaderFromBytes(b...)

	words := make([]Word, len(b)/wordBytes)
	for i := range words {
		v, err := stream.Next(wordBytes).Bytes().AsUInt16()
		if err != nil {
			return nil, err
		}
		words[i] = Word(v)
	}
	return words, nil
}

// Unmarshal is the inverse of Marshal.
func Unmarshal(b []byte, width, height int, layout Layout) (*Map, error) {
	if len(b) != width*height*wordBytes {
		return nil, snes.ConsistencyError(fmt.Sprintf("tilemap is %d bytes, expected %d for %dx%d cells", len(b), width*height*wordBytes, width, height))
	}

	l, err := layout.Resolve(width, height)
	if err != nil {
		return nil, err
	}

	words, err := ReadWords(bytes.NewReader(b))
	if err != nil {
		return nil, err
	}

	m := New(width, height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			m.Set(x, y, words[l.Offset(width, x, y)])
		}
	}
	return m, nil
}
