package catalog

import (
	"sync"

	"github.com/klauspost/compress/zstd"
)

// Artifact blobs are stored zstd compressed. Tiles in particular are
// mostly zero bytes.

var encoders = sync.Pool{
	New: func() interface{} {
		enc, _ := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedBetterCompression))
		return enc
	},
}

var decoders = sync.Pool{
	New: func() interface{} {
		dec, _ := zstd.NewReader(nil)
		return dec
	},
}

func compress(b []byte) []byte {
	if b == nil {
		return nil
	}

	enc := encoders.Get().(*zstd.Encoder)
	defer encoders.Put(enc)

	return enc.EncodeAll(b, make([]byte, 0, len(b)/2))
}

func decompress(b []byte) ([]byte, error) {
	if b == nil {
		return nil, nil
	}

	dec := decoders.Get().(*zstd.Decoder)
	defer decoders.Put(dec)

	return dec.DecodeAll(b, nil)
}
