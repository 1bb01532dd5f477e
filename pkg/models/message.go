package models

import (
	"strconv"
	"strings"
	"time"

	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/durationpb"
	"google.golang.org/protobuf/types/known/timestamppb"
)

// SampleMessage mirrors the SampleMessage schema in proto/sample.proto
type SampleMessage struct {
	Name     string
	Time     *timestamppb.Timestamp
	Duration *durationpb.Duration
	Tags     []string
	Subs     []*SubMessage
	Meta     *SubMessage
}

// SubMessage is the nested record carried in Subs and Meta
type SubMessage struct {
	Flag  bool
	Value float32
}

// String renders the message on a single line, fields in schema order.
// Absent optional fields are left out.
func (m *SampleMessage) String() string {
	if m == nil {
		return "<nil>"
	}

	var parts []string
	if m.Name != "" {
		parts = append(parts, "name:"+strconv.Quote(m.Name))
	}
	if m.Time != nil {
		parts = append(parts, "time:"+strconv.Quote(m.Time.AsTime().Format(time.RFC3339Nano)))
	}
	if m.Duration != nil {
		parts = append(parts, "duration:"+strconv.Quote(m.Duration.AsDuration().String()))
	}
	for _, tag := range m.Tags {
		parts = append(parts, "tags:"+strconv.Quote(tag))
	}
	for _, sub := range m.Subs {
		parts = append(parts, "subs:"+sub.String())
	}
	if m.Meta != nil {
		parts = append(parts, "meta:"+m.Meta.String())
	}

	return "SampleMessage{" + strings.Join(parts, " ") + "}"
}

// String always shows both fields, including zero values.
func (s *SubMessage) String() string {
	if s == nil {
		return "{}"
	}
	return "{flag:" + strconv.FormatBool(s.Flag) +
		" value:" + strconv.FormatFloat(float64(s.Value), 'g', -1, 32) + "}"
}

// Clone returns a deep copy of the message
func (m *SampleMessage) Clone() *SampleMessage {
	if m == nil {
		return nil
	}

	out := &SampleMessage{
		Name: m.Name,
		Meta: m.Meta.clone(),
	}
	if m.Time != nil {
		out.Time = proto.Clone(m.Time).(*timestamppb.Timestamp)
	}
	if m.Duration != nil {
		out.Duration = proto.Clone(m.Duration).(*durationpb.Duration)
	}
	if m.Tags != nil {
		out.Tags = append([]string(nil), m.Tags...)
	}
	if m.Subs != nil {
		out.Subs = make([]*SubMessage, len(m.Subs))
		for i, sub := range m.Subs {
			out.Subs[i] = sub.clone()
		}
	}
	return out
}

func (s *SubMessage) clone() *SubMessage {
	if s == nil {
		return nil
	}
	c := *s
	return &c
}
