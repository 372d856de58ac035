// internal/safe/compression.go
package safe

import (
	"bytes"
	"fmt"
	"sync"

	"github.com/klauspost/compress/zstd"
)

// zstdMagic prefixes every zstd frame.
var zstdMagic = []byte{0x28, 0xB5, 0x2F, 0xFD}

// CompressionOptions controls when stored objects are zstd-compressed.
type CompressionOptions struct {
	MinSize int // objects smaller than this are stored raw
	Level   int // zstd.EncoderLevel: 1=fastest .. 4=best
}

func DefaultCompressionOptions() CompressionOptions {
	return CompressionOptions{MinSize: 1024, Level: 2}
}

// frameCodec compresses object payloads. Encoders and decoders are pooled
// since building one allocates its window.
type frameCodec struct {
	opts CompressionOptions

	encoders sync.Pool
	decoders sync.Pool
}

func newFrameCodec(opts CompressionOptions) (*frameCodec, error) {
	level := zstd.EncoderLevel(opts.Level)
	if level < zstd.SpeedFastest || level > zstd.SpeedBestCompression {
		return nil, fmt.Errorf("compression level %d out of range", opts.Level)
	}

	// Fail at construction instead of inside a pool New func.
	probe, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(level), zstd.WithEncoderConcurrency(1))
	if err != nil {
		return nil, fmt.Errorf("creating zstd encoder: %w", err)
	}
	probe.Close()

	fc := &frameCodec{opts: opts}
	fc.encoders.New = func() any {
		enc, _ := zstd.NewWriter(nil, zstd.WithEncoderLevel(level), zstd.WithEncoderConcurrency(1))
		return enc
	}
	fc.decoders.New = func() any {
		dec, _ := zstd.NewReader(nil, zstd.WithDecoderConcurrency(1))
		return dec
	}
	return fc, nil
}

// compress returns the payload to write and whether it is a zstd frame.
// Small payloads, and payloads a frame would not shrink, come back as is.
func (fc *frameCodec) compress(payload []byte) ([]byte, bool) {
	if len(payload) < fc.opts.MinSize {
		return payload, false
	}

	enc := fc.encoders.Get().(*zstd.Encoder)
	defer fc.encoders.Put(enc)

	out := enc.EncodeAll(payload, make([]byte, 0, len(payload)/2))
	if len(out) >= len(payload) {
		return payload, false
	}
	return out, true
}

func (fc *frameCodec) decompress(frame []byte) ([]byte, error) {
	if !bytes.HasPrefix(frame, zstdMagic) {
		return nil, fmt.Errorf("payload is not a zstd frame")
	}

	dec := fc.decoders.Get().(*zstd.Decoder)
	defer fc.decoders.Put(dec)

	return dec.DecodeAll(frame, nil)
}
