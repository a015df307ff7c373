package indexed

import (
	"bytes"
	"compress/zlib"
	"encoding/binary"
	"errors"
	"hash/crc32"
	"io"
)

// Encoder configures encoding indexed PNG images.
type Encoder struct {
	// Filter is applied to every scanline.
	Filter Filter
}

type encoder struct {
	w   io.Writer
	err error
}

func (e *encoder) writeChunk(typ string, b []byte) {
	if e.err != nil {
		return
	}

	var header [8]byte
	binary.BigEndian.PutUint32(header[:4], uint32(len(b)))
	copy(header[4:], typ)

	crc := crc32.NewIEEE()
	crc.Write(header[4:])
	crc.Write(b)

	var footer [4]byte
	binary.BigEndian.PutUint32(footer[:], crc.Sum32())

	for _, p := range [][]byte{header[:], b, footer[:]} {
		if _, e.err = e.w.Write(p); e.err != nil {
			return
		}
	}
}

// pack is the inverse of unpack.
func pack(dst, src []uint8, depth int) {
	perByte := 8 / depth
	mask := byte(1<<depth - 1)
	for i := range dst {
		dst[i] = 0
	}
	for x, v := range src {
		shift := uint(8 - depth*(x%perByte+1))
		dst[x/perByte] |= v & mask << shift
	}
}

func (enc *Encoder) pixels(m *Image) ([]byte, error) {
	stride := (m.Width*m.BitDepth + 7) / 8

	var b bytes.Buffer
	zw, err := zlib.NewWriterLevel(&b, zlib.BestCompression)
	if err != nil {
		return nil, err
	}

	prev := make([]byte, stride)
	cur := make([]byte, stride)
	out := make([]byte, 1+stride)
	for y := 0; y < m.Height; y++ {
		pack(cur, m.Indices[y*m.Width:(y+1)*m.Width], m.BitDepth)
		out[0] = byte(enc.Filter)
		if y == 0 {
			filter(enc.Filter, out[1:], cur, nil)
		} else {
			filter(enc.Filter, out[1:], cur, prev)
		}
		if _, err := zw.Write(out); err != nil {
			return nil, err
		}
		prev, cur = cur, prev
	}

	if err := zw.Close(); err != nil {
		return nil, err
	}
	return b.Bytes(), nil
}

// Encode writes m to w as an indexed PNG image.
func (enc *Encoder) Encode(w io.Writer, m *Image) error {
	switch m.BitDepth {
	case 1, 2, 4, 8:
	default:
		return errors.New("indexed: unsupported bit depth")
	}
	if len(m.Palette) == 0 || len(m.Palette) > maxPalette {
		return errors.New("indexed: bad palette length")
	}
	if len(m.Palette) > 1<<m.BitDepth {
		return errors.New("indexed: palette too large for bit depth")
	}
	if len(m.Indices) != m.Width*m.Height {
		return errors.New("indexed: wrong number of pixels")
	}
	if enc.Filter >= numFilters {
		return errors.New("indexed: bad filter type")
	}

	pixels, err := enc.pixels(m)
	if err != nil {
		return err
	}

	e := encoder{w: w}

	if _, e.err = w.Write(signature); e.err != nil {
		return e.err
	}

	var ihdr [13]byte
	binary.BigEndian.PutUint32(ihdr[0:4], uint32(m.Width))
	binary.BigEndian.PutUint32(ihdr[4:8], uint32(m.Height))
	ihdr[8] = byte(m.BitDepth)
	ihdr[9] = colorTypePaletted
	e.writeChunk("IHDR", ihdr[:])

	plte := make([]byte, 0, 3*len(m.Palette))
	trns := make([]byte, 0, len(m.Palette))
	last := -1
	for i, c := range m.Palette {
		plte = append(plte, c.R, c.G, c.B)
		trns = append(trns, c.A)
		if c.A != 0xff {
			last = i
		}
	}
	e.writeChunk("PLTE", plte)
	if last >= 0 {
		e.writeChunk("tRNS", trns[:last+1])
	}

	e.writeChunk("IDAT", pixels)
	e.writeChunk("IEND", nil)

	return e.err
}

// Encode writes m to w as an indexed PNG image with no scanline filtering.
func Encode(w io.Writer, m *Image) error {
	var e Encoder
	return e.Encode(w, m)
}
