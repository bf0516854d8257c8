package packet

import (
	"errors"
	"fmt"
	"math"
	"time"

	"google.golang.org/protobuf/encoding/protowire"

	"github.com/oshokin/auv-alarm/internal/domain/alarm"
)

// Field numbers of the packet message.
const (
	fieldSequence protowire.Number = 1
	fieldX        protowire.Number = 2
	fieldY        protowire.Number = 3
	fieldError    protowire.Number = 4
	fieldSentAt   protowire.Number = 5
)

// fieldReplyPacket is the only field of the reply envelope.
const fieldReplyPacket protowire.Number = 1

var (
	// ErrSequenceOverflow is returned when a decoded sequence does not fit 16 bits.
	ErrSequenceOverflow = errors.New("sequence exceeds 16 bits")
	// errNilPacket is returned when encoding a nil packet.
	errNilPacket = errors.New("packet is nil")
)

// Packet is the status packet sent by the vehicle and the acknowledgment
// returned by the peer. In the outgoing direction Error holds the incident
// magnitude; inbound it holds the peer disposition code.
type Packet struct {
	// Sequence wraps modulo 2^16.
	Sequence uint16
	// X is the easting of the incident anchor, or zero.
	X float32
	// Y is the northing of the incident anchor, or zero.
	Y float32
	// Error is the magnitude or disposition code depending on direction.
	Error float64
	// SentAt is the vehicle session time of the status packet. Acknowledgments
	// echo it so the vehicle can measure round-trip latency.
	SentAt time.Duration
}

// Position returns the packet coordinates.
func (p *Packet) Position() alarm.Point {
	return alarm.Point{X: p.X, Y: p.Y}
}

// Clone returns a copy of the packet.
func (p *Packet) Clone() *Packet {
	if p == nil {
		return nil
	}

	cloned := *p

	return &cloned
}

// MarshalBinary encodes the packet. All fields are always written.
func (p *Packet) MarshalBinary() ([]byte, error) {
	if p == nil {
		return nil, errNilPacket
	}

	return p.append(make([]byte, 0, 32)), nil
}

func (p *Packet) append(b []byte) []byte {
	b = protowire.AppendTag(b, fieldSequence, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(p.Sequence))
	b = protowire.AppendTag(b, fieldX, protowire.Fixed32Type)
	b = protowire.AppendFixed32(b, math.Float32bits(p.X))
	b = protowire.AppendTag(b, fieldY, protowire.Fixed32Type)
	b = protowire.AppendFixed32(b, math.Float32bits(p.Y))
	b = protowire.AppendTag(b, fieldError, protowire.Fixed64Type)
	b = protowire.AppendFixed64(b, math.Float64bits(p.Error))
	b = protowire.AppendTag(b, fieldSentAt, protowire.VarintType)
	b = protowire.AppendVarint(b, protowire.EncodeZigZag(int64(p.SentAt)))

	return b
}

// UnmarshalBinary decodes a packet. Unknown fields are skipped.
//
//nolint:cyclop // One case per field reads better than a lookup table.
func (p *Packet) UnmarshalBinary(data []byte) error {
	*p = Packet{}

	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return fmt.Errorf("decode tag: %w", protowire.ParseError(n))
		}

		data = data[n:]

		switch {
		case num == fieldSequence && typ == protowire.VarintType:
			v, m := protowire.ConsumeVarint(data)
			if m < 0 {
				return fmt.Errorf("decode sequence: %w", protowire.ParseError(m))
			}

			if v > math.MaxUint16 {
				return fmt.Errorf("%w: %d", ErrSequenceOverflow, v)
			}

			p.Sequence = uint16(v)
			n = m
		case (num == fieldX || num == fieldY) && typ == protowire.Fixed32Type:
			v, m := protowire.ConsumeFixed32(data)
			if m < 0 {
				return fmt.Errorf("decode coordinate: %w", protowire.ParseError(m))
			}

			if num == fieldX {
				p.X = math.Float32frombits(v)
			} else {
				p.Y = math.Float32frombits(v)
			}

			n = m
		case num == fieldError && typ == protowire.Fixed64Type:
			v, m := protowire.ConsumeFixed64(data)
			if m < 0 {
				return fmt.Errorf("decode error: %w", protowire.ParseError(m))
			}

			p.Error = math.Float64frombits(v)
			n = m
		case num == fieldSentAt && typ == protowire.VarintType:
			v, m := protowire.ConsumeVarint(data)
			if m < 0 {
				return fmt.Errorf("decode sent_at: %w", protowire.ParseError(m))
			}

			p.SentAt = time.Duration(protowire.DecodeZigZag(v))
			n = m
		default:
			n = protowire.ConsumeFieldValue(num, typ, data)
			if n < 0 {
				return fmt.Errorf("skip field %d: %w", num, protowire.ParseError(n))
			}
		}

		data = data[n:]
	}

	return nil
}

// Reply is the controller's answer to a status packet. Ack is nil when the
// controller has no disposition to report.
type Reply struct {
	Ack *Packet
}

// MarshalBinary encodes the reply envelope.
func (r *Reply) MarshalBinary() ([]byte, error) {
	if r == nil || r.Ack == nil {
		return []byte{}, nil
	}

	b := protowire.AppendTag(nil, fieldReplyPacket, protowire.BytesType)

	return protowire.AppendBytes(b, r.Ack.append(nil)), nil
}

// UnmarshalBinary decodes the reply envelope.
func (r *Reply) UnmarshalBinary(data []byte) error {
	r.Ack = nil

	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return fmt.Errorf("decode tag: %w", protowire.ParseError(n))
		}

		data = data[n:]

		if num != fieldReplyPacket || typ != protowire.BytesType {
			n = protowire.ConsumeFieldValue(num, typ, data)
			if n < 0 {
				return fmt.Errorf("skip field %d: %w", num, protowire.ParseError(n))
			}

			data = data[n:]

			continue
		}

		raw, m := protowire.ConsumeBytes(data)
		if m < 0 {
			return fmt.Errorf("decode ack: %w", protowire.ParseError(m))
		}

		ack := new(Packet)
		if err := ack.UnmarshalBinary(raw); err != nil {
			return fmt.Errorf("decode ack: %w", err)
		}

		r.Ack = ack
		data = data[m:]
	}

	return nil
}
