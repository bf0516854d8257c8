package link

import (
	"encoding"
	"fmt"

	grpcencoding "google.golang.org/grpc/encoding"
)

// CodecName is the gRPC content subtype of the packet codec.
const CodecName = "auvlink"

//nolint:gochecknoinits // gRPC looks codecs up in a process-wide registry.
func init() {
	grpcencoding.RegisterCodec(codec{})
}

// codec marshals messages through their binary marshaler methods.
type codec struct{}

func (codec) Marshal(v any) ([]byte, error) {
	m, ok := v.(encoding.BinaryMarshaler)
	if !ok {
		return nil, fmt.Errorf("%s codec: cannot marshal %T", CodecName, v)
	}

	return m.MarshalBinary()
}

func (codec) Unmarshal(data []byte, v any) error {
	u, ok := v.(encoding.BinaryUnmarshaler)
	if !ok {
		return fmt.Errorf("%s codec: cannot unmarshal into %T", CodecName, v)
	}

	return u.UnmarshalBinary(data)
}

func (codec) Name() string {
	return CodecName
}
