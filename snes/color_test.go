package snes

import (
	"errors"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPack(t *testing.T) {
	t.Parallel()

	tables := []struct {
		r, g, b uint8
		want    Color
	}{
		{0, 0, 0, 0x0000},
		{0xff, 0xff, 0xff, 0x7fff},
		{0xff, 0, 0, 0x001f},
		{0, 0xff, 0, 0x03e0},
		{0, 0, 0xff, 0x7c00},
		{0x07, 0x07, 0x07, 0x0000},
		{0x08, 0x10, 0x18, 0x0c41},
	}

	for _, table := range tables {
		assert.Equal(t, table.want, Pack(table.r, table.g, table.b))
	}
}

func TestColorRGB(t *testing.T) {
	t.Parallel()

	r, g, b := Color(0x0c41).RGB()
	assert.Equal(t, uint8(0x08), r)
	assert.Equal(t, uint8(0x10), g)
	assert.Equal(t, uint8(0x18), b)

	assert.Equal(t, Color(0x7fff), FromColor(color.White))
	assert.Equal(t, Color(0x001f), Model.Convert(color.RGBA{0xff, 0, 0, 0}))

	_, _, _, a := Color(0).RGBA()
	assert.Equal(t, uint32(0xffff), a)
}

func TestBitDepth(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 4, ColorsPerPartition(2))
	assert.Equal(t, 16, ColorsPerPartition(4))
	assert.Equal(t, 256, ColorsPerPartition(8))
	assert.Equal(t, 0, ColorsPerPartition(3))
	assert.True(t, Partitioned(4))
	assert.False(t, Partitioned(8))
	assert.False(t, ValidBitDepth(1))
}

func TestErrors(t *testing.T) {
	t.Parallel()

	var err error = &CapacityError{Resource: "colors", Count: 17, Max: 16}
	assert.EqualError(t, err, "snes: too many colors: 17 exceeds the maximum of 16")

	var ce *CapacityError
	assert.True(t, errors.As(err, &ce))

	assert.EqualError(t, &CapacityError{Resource: "colors", Max: 16}, "snes: no colors")

	err = &RangeError{Field: "tile index", Value: 1024, Max: 1023}
	assert.EqualError(t, err, "snes: tile index 1024 out of range 0-1023")

	assert.EqualError(t, FormatError("bad signature"), "snes: invalid format: bad signature")
	assert.EqualError(t, ConsistencyError("map sizes differ"), "snes: inconsistent input: map sizes differ")
}
