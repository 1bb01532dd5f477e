package models

import (
	"errors"
	"fmt"
	"math"

	"google.golang.org/protobuf/encoding/protowire"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/durationpb"
	"google.golang.org/protobuf/types/known/timestamppb"
)

// Field numbers from proto/sample.proto
const (
	fieldName     protowire.Number = 1
	fieldTime     protowire.Number = 2
	fieldDuration protowire.Number = 3
	fieldTags     protowire.Number = 4
	fieldSubs     protowire.Number = 5
	fieldMeta     protowire.Number = 6

	fieldSubFlag  protowire.Number = 1
	fieldSubValue protowire.Number = 2
)

// ErrMalformed is returned when binary input cannot be decoded as a SampleMessage
var ErrMalformed = errors.New("malformed sample message")

var deterministic = proto.MarshalOptions{Deterministic: true}

// MarshalProto encodes the message in proto3 binary wire format
func (m *SampleMessage) MarshalProto() ([]byte, error) {
	var b []byte

	if m.Name != "" {
		b = protowire.AppendTag(b, fieldName, protowire.BytesType)
		b = protowire.AppendString(b, m.Name)
	}

	if m.Time != nil {
		raw, err := deterministic.Marshal(m.Time)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal time: %w", err)
		}
		b = appendMessage(b, fieldTime, raw)
	}

	if m.Duration != nil {
		raw, err := deterministic.Marshal(m.Duration)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal duration: %w", err)
		}
		b = appendMessage(b, fieldDuration, raw)
	}

	for _, tag := range m.Tags {
		b = protowire.AppendTag(b, fieldTags, protowire.BytesType)
		b = protowire.AppendString(b, tag)
	}

	for _, sub := range m.Subs {
		b = appendMessage(b, fieldSubs, sub.appendProto(nil))
	}

	if m.Meta != nil {
		b = appendMessage(b, fieldMeta, m.Meta.appendProto(nil))
	}

	return b, nil
}

func (s *SubMessage) appendProto(b []byte) []byte {
	if s == nil {
		return b
	}
	if s.Flag {
		b = protowire.AppendTag(b, fieldSubFlag, protowire.VarintType)
		b = protowire.AppendVarint(b, protowire.EncodeBool(s.Flag))
	}
	// -0.0 has non-zero bits and is kept
	if bits := math.Float32bits(s.Value); bits != 0 {
		b = protowire.AppendTag(b, fieldSubValue, protowire.Fixed32Type)
		b = protowire.AppendFixed32(b, bits)
	}
	return b
}

func appendMessage(b []byte, num protowire.Number, raw []byte) []byte {
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendBytes(b, raw)
}

// UnmarshalProto decodes a SampleMessage from proto3 binary wire format.
// Unknown fields are skipped.
func UnmarshalProto(b []byte) (*SampleMessage, error) {
	m := &SampleMessage{}

	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return nil, malformed(0, n)
		}
		b = b[n:]

		if typ != protowire.BytesType || num < fieldName || num > fieldMeta {
			n = protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return nil, malformed(num, n)
			}
			b = b[n:]
			continue
		}

		v, n := protowire.ConsumeBytes(b)
		if n < 0 {
			return nil, malformed(num, n)
		}
		b = b[n:]

		switch num {
		case fieldName:
			m.Name = string(v)
		case fieldTags:
			m.Tags = append(m.Tags, string(v))
		case fieldTime:
			ts := &timestamppb.Timestamp{}
			if err := proto.Unmarshal(v, ts); err != nil {
				return nil, fmt.Errorf("%w: time: %v", ErrMalformed, err)
			}
			m.Time = ts
		case fieldDuration:
			d := &durationpb.Duration{}
			if err := proto.Unmarshal(v, d); err != nil {
				return nil, fmt.Errorf("%w: duration: %v", ErrMalformed, err)
			}
			m.Duration = d
		case fieldSubs:
			sub, err := unmarshalSub(v)
			if err != nil {
				return nil, fmt.Errorf("subs[%d]: %w", len(m.Subs), err)
			}
			m.Subs = append(m.Subs, sub)
		case fieldMeta:
			sub, err := unmarshalSub(v)
			if err != nil {
				return nil, fmt.Errorf("meta: %w", err)
			}
			m.Meta = sub
		}
	}

	return m, nil
}

func unmarshalSub(b []byte) (*SubMessage, error) {
	s := &SubMessage{}

	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return nil, malformed(0, n)
		}
		b = b[n:]

		switch {
		case num == fieldSubFlag && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return nil, malformed(num, n)
			}
			s.Flag = protowire.DecodeBool(v)
			b = b[n:]
		case num == fieldSubValue && typ == protowire.Fixed32Type:
			v, n := protowire.ConsumeFixed32(b)
			if n < 0 {
				return nil, malformed(num, n)
			}
			s.Value = math.Float32frombits(v)
			b = b[n:]
		default:
			n = protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return nil, malformed(num, n)
			}
			b = b[n:]
		}
	}

	return s, nil
}

func malformed(num protowire.Number, n int) error {
	if num == 0 {
		return fmt.Errorf("%w: bad tag: %v", ErrMalformed, protowire.ParseError(n))
	}
	return fmt.Errorf("%w: field %d: %v", ErrMalformed, num, protowire.ParseError(n))
}
