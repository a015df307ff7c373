package indexed

import (
	"bytes"
	"compress/zlib"
	"encoding/binary"
	"errors"
	"fmt"
	"hash/crc32"
	"image/color"
	"io"

	"github.com/bodgit/snestile/snes"
)

var (
	errNotEnough   = snes.FormatError("not enough image data")
	errTooMuch     = snes.FormatError("too much image data")
	errBadFilter   = snes.FormatError("bad filter type")
	errBadChecksum = snes.FormatError("invalid chunk checksum")
	errNoHeader    = snes.FormatError("missing IHDR chunk")
	errNoPalette   = snes.FormatError("missing PLTE chunk")
)

func readFull(r io.Reader, b []byte) error {
	_, err := io.ReadFull(r, b)
	if err == io.EOF {
		err = io.ErrUnexpectedEOF
	}
	return err
}

type decoder struct {
	r io.Reader

	width, height int
	depth         int
	header        bool

	palette []color.NRGBA
	trns    []byte
	idat    bytes.Buffer

	tmp [13]byte
}

func (d *decoder) parseIHDR(b []byte) error {
	if len(b) != 13 {
		return snes.FormatError("bad IHDR length")
	}
	d.width = int(binary.BigEndian.Uint32(b[0:4]))
	d.height = int(binary.BigEndian.Uint32(b[4:8]))
	d.depth = int(b[8])

	if d.width <= 0 || d.height <= 0 || d.width > 1<<15 || d.height > 1<<15 {
		return snes.FormatError(fmt.Sprintf("invalid dimensions %dx%d", d.width, d.height))
	}
	if b[9] != colorTypePaletted {
		return snes.FormatError(fmt.Sprintf("color type %d is not indexed", b[9]))
	}
	if b[10] != 0 || b[11] != 0 {
		return snes.FormatError("unsupported compression or filter method")
	}
	if b[12] != 0 {
		return snes.FormatError("interlaced images are not supported")
	}
	switch d.depth {
	case 1, 2, 4, 8:
	default:
		return snes.FormatError(fmt.Sprintf("unsupported bit depth %d", d.depth))
	}
	d.header = true
	return nil
}

func (d *decoder) parsePLTE(b []byte) error {
	n := len(b) / 3
	if len(b)%3 != 0 || n == 0 {
		return snes.FormatError("bad PLTE length")
	}
	if n > maxPalette {
		return snes.FormatError(fmt.Sprintf("palette has %d entries, more than %d", n, maxPalette))
	}
	d.palette = make([]color.NRGBA, n)
	for i := range d.palette {
		d.palette[i] = color.NRGBA{b[3*i], b[3*i+1], b[3*i+2], 0xff}
	}
	return nil
}

func (d *decoder) readChunk() (string, error) {
	if err := readFull(d.r, d.tmp[:8]); err != nil {
		return "", err
	}
	length := binary.BigEndian.Uint32(d.tmp[:4])
	typ := string(d.tmp[4:8])
	if length > 1<<31-1 {
		return "", snes.FormatError("chunk too large")
	}

	data := make([]byte, length)
	if err := readFull(d.r, data); err != nil {
		return "", err
	}
	if err := readFull(d.r, d.tmp[8:12]); err != nil {
		return "", err
	}

	crc := crc32.NewIEEE()
	crc.Write(d.tmp[4:8])
	crc.Write(data)
	if crc.Sum32() != binary.BigEndian.Uint32(d.tmp[8:12]) {
		return "", errBadChecksum
	}

	switch typ {
	case "IHDR":
		return typ, d.parseIHDR(data)
	case "PLTE":
		return typ, d.parsePLTE(data)
	case "tRNS":
		d.trns = data
	case "IDAT":
		d.idat.Write(data)
	}
	return typ, nil
}

func (d *decoder) readChunks() error {
	sig := make([]byte, len(signature))
	if err := readFull(d.r, sig); err != nil {
		return err
	}
	if !bytes.Equal(sig, signature) {
		return snes.FormatError("not a PNG file")
	}

	for {
		typ, err := d.readChunk()
		if err != nil {
			return err
		}
		if typ == "IEND" {
			break
		}
	}

	if !d.header {
		return errNoHeader
	}
	if d.palette == nil {
		return errNoPalette
	}
	if len(d.trns) > len(d.palette) {
		return snes.FormatError("tRNS has more entries than PLTE")
	}
	for i, a := range d.trns {
		d.palette[i].A = a
	}
	return nil
}

func (d *decoder) rowBytes() int {
	return (d.width*d.depth + 7) / 8
}

func (d *decoder) decodePixels() (*Image, error) {
	zr, err := zlib.NewReader(&d.idat)
	if err != nil {
		return nil, snes.FormatError(fmt.Sprintf("bad pixel stream: %v", err))
	}
	defer zr.Close()

	raw, err := io.ReadAll(zr)
	if err != nil {
		return nil, snes.FormatError(fmt.Sprintf("bad pixel stream: %v", err))
	}

	stride := d.rowBytes()
	switch expected := d.height * (1 + stride); {
	case len(raw) < expected:
		return nil, errNotEnough
	case len(raw) > expected:
		return nil, errTooMuch
	}

	m := &Image{
		Width:    d.width,
		Height:   d.height,
		BitDepth: d.depth,
		Indices:  make([]uint8, d.width*d.height),
		Palette:  d.palette,
	}

	var prev []byte
	for y := 0; y < d.height; y++ {
		row := raw[y*(1+stride) : (y+1)*(1+stride)]
		cur := row[1:]
		if err := unfilter(Filter(row[0]), cur, prev); err != nil {
			return nil, err
		}
		if err := unpack(m.Indices[y*d.width:(y+1)*d.width], cur, d.depth, len(d.palette)); err != nil {
			return nil, err
		}
		prev = cur
	}

	return m, nil
}

// unpack expands one reconstructed row into one index per pixel, most
// significant bits first.
func unpack(dst, row []byte, depth, colors int) error {
	perByte := 8 / depth
	mask := byte(1<<depth - 1)
	for x := range dst {
		shift := uint(8 - depth*(x%perByte+1))
		v := row[x/perByte] >> shift & mask
		if int(v) >= colors {
			return snes.FormatError(fmt.Sprintf("palette index %d out of range", v))
		}
		dst[x] = v
	}
	return nil
}

func (d *decoder) decode(r io.Reader) (*Image, error) {
	d.r = r

	if err := d.readChunks(); err != nil {
		if errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, errNotEnough
		}
		return nil, err
	}

	return d.decodePixels()
}

// Decode reads an indexed PNG image from r.
func Decode(r io.Reader) (*Image, error) {
	var d decoder
	return d.decode(r)
}
