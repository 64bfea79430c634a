package store

import (
	"bytes"

	"github.com/klauspost/compress/zstd"
	"github.com/vmihailenco/msgpack/v5"
)

// Codec is an interface for encoding and decoding data.
// It is used to abstract away the underlying serialization format.
// The default codec is MessagePack, but other codecs can be implemented as needed.
type Codec interface {
	// Marshal encodes the given value into a byte slice.
	Marshal(v any) ([]byte, error)
	// Unmarshal decodes the given byte slice into the provided value.
	Unmarshal(data []byte, v any) error
}

// DefaultCodec is MessagePack.
var DefaultCodec Codec = msgpackCodec{}

type msgpackCodec struct{}

func (msgpackCodec) Marshal(v any) ([]byte, error) {
	return msgpack.Marshal(v)
}

// Unmarshal decodes integers as int64/uint64 and floats as float64, so
// decoded documents look like the ones that were stored.
func (msgpackCodec) Unmarshal(b []byte, v any) error {
	dec := msgpack.NewDecoder(bytes.NewReader(b))
	dec.UseLooseInterfaceDecoding(true)
	return dec.Decode(v)
}

var zstdMagic = []byte{0x28, 0xb5, 0x2f, 0xfd}

type zstdCodec struct {
	inner Codec
	enc   *zstd.Encoder
	dec   *zstd.Decoder
}

// NewZstdCodec compresses everything inner produces with zstd. Values that
// were written without compression are still decoded, so compression can be
// switched on for an existing store.
func NewZstdCodec(inner Codec) (Codec, error) {
	if inner == nil {
		inner = DefaultCodec
	}
	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return nil, err
	}
	dec, err := zstd.NewReader(nil)
	if err != nil {
		return nil, err
	}
	return &zstdCodec{inner: inner, enc: enc, dec: dec}, nil
}

func (c *zstdCodec) Marshal(v any) ([]byte, error) {
	raw, err := c.inner.Marshal(v)
	if err != nil {
		return nil, err
	}
	return c.enc.EncodeAll(raw, nil), nil
}

func (c *zstdCodec) Unmarshal(b []byte, v any) error {
	if !bytes.HasPrefix(b, zstdMagic) {
		return c.inner.Unmarshal(b, v)
	}
	raw, err := c.dec.DecodeAll(b, nil)
	if err != nil {
		return err
	}
	return c.inner.Unmarshal(raw, v)
}
