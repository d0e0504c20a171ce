package avro

import (
	"fmt"

	"github.com/linkedin/goavro/v2"
)

// Encoder wraps a goavro codec for one schema. The codec itself is safe for
// concurrent use.
type Encoder struct {
	codec *goavro.Codec
}

func NewEncoder(schema string) (*Encoder, error) {
	codec, err := goavro.NewCodec(schema)
	if err != nil {
		return nil, fmt.Errorf("create avro codec: %w", err)
	}
	return &Encoder{codec: codec}, nil
}

// NewOrderEventEncoder builds the encoder for OrderEventSchema.
func NewOrderEventEncoder() (*Encoder, error) {
	return NewEncoder(OrderEventSchema)
}

// Encode converts an order event into Avro binary.
func (e *Encoder) Encode(event OrderEvent) ([]byte, error) {
	binary, err := e.codec.BinaryFromNative(nil, event.Native())
	if err != nil {
		return nil, fmt.Errorf("encode avro binary: %w", err)
	}
	return binary, nil
}

// Decode converts Avro binary back into the native map form. Used by tests
// and by downstream consumers that share this package.
func (e *Encoder) Decode(data []byte) (map[string]interface{}, error) {
	native, _, err := e.codec.NativeFromBinary(data)
	if err != nil {
		return nil, fmt.Errorf("decode avro binary: %w", err)
	}
	record, ok := native.(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("avro payload is not a record")
	}
	return record, nil
}
