package palette

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"fmt"
	"image/color"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/bodgit/snestile/snes"
	"github.com/gravestench/bitstream"
)

const packedBytes = 2

// ReadBinary reads a sequence of little-endian packed colors.
func ReadBinary(r io.Reader) ([]color.NRGBA, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	if len(b)%packedBytes != 0 {
		return nil, snes.FormatError("binary palette has an odd length")
	}

	stream := bitstream.ReaderFromBytes(b...)

	colors := make([]color.NRGBA, len(b)/packedBytes)
	for i := range colors {
		v, err := stream.Next(packedBytes).Bytes().AsUInt16()
		if err != nil {
			return nil, err
		}
		r, g, b := snes.Color(v & 0x7fff).RGB()
		colors[i] = color.NRGBA{r, g, b, 0xff}
	}

	return colors, nil
}

// ReadText reads lines of three decimal R G B values. Blank lines and lines
// starting with # are skipped.
func ReadText(r io.Reader) ([]color.NRGBA, error) {
	var colors []color.NRGBA

	s := bufio.NewScanner(r)
	for n := 1; s.Scan(); n++ {
		line := strings.TrimSpace(s.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		fields := strings.Fields(line)
		if len(fields) < 3 {
			return nil, snes.FormatError(fmt.Sprintf("text palette line %d: expected R G B", n))
		}

		var rgb [3]uint8
		for i := range rgb {
			v, err := strconv.ParseUint(fields[i], 10, 8)
			if err != nil {
				return nil, snes.FormatError(fmt.Sprintf("text palette line %d: %v", n, err))
			}
			rgb[i] = uint8(v)
		}
		colors = append(colors, color.NRGBA{rgb[0], rgb[1], rgb[2], 0xff})
	}

	if err := s.Err(); err != nil {
		return nil, err
	}

	return colors, nil
}

// Load reads an external palette file, the format is chosen by the file
// extension: .pal for binary and .txt for text.
func Load(file string) ([]color.NRGBA, error) {
	f, err := os.Open(file)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(file)) {
	case ".pal":
		return ReadBinary(f)
	case ".txt":
		return ReadText(f)
	}

	return nil, fmt.Errorf("palette: %s: must be .pal or .txt", file)
}

// MarshalBinary encodes the palette as little-endian packed colors.
func (p *Palette) MarshalBinary() ([]byte, error) {
	b := new(bytes.Buffer)
	for _, e := range p.Entries {
		if err := binary.Write(b, binary.LittleEndian, uint16(e.Packed)); err != nil {
			return nil, err
		}
	}
	return b.Bytes(), nil
}

// WriteText writes a human-readable listing of the palette in GIMP palette
// format with the packed value appended to every color name.
func (p *Palette) WriteText(w io.Writer, name string) error {
	bw := bufio.NewWriter(w)

	fmt.Fprintf(bw, "GIMP Palette\nName: %s\nColumns: %d\n#\n", name, p.ColorsPerPartition)
	for i, e := range p.Entries {
		fmt.Fprintf(bw, "%3d %3d %3d\tcolor %d.%d $%04X\n", e.R, e.G, e.B, i/p.ColorsPerPartition, i%p.ColorsPerPartition, uint16(e.Packed))
	}

	return bw.Flush()
}
