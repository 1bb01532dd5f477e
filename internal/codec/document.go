package codec

import (
	"fmt"
	"time"

	"google.golang.org/protobuf/types/known/durationpb"
	"google.golang.org/protobuf/types/known/timestamppb"

	"github.com/user/hello-proto/pkg/models"
)

// document is the serialized shape used by the json, yaml and msgpack codecs
type document struct {
	Name     string         `json:"name,omitempty" yaml:"name,omitempty" msgpack:"name,omitempty"`
	Time     string         `json:"time,omitempty" yaml:"time,omitempty" msgpack:"time,omitempty"`
	Duration string         `json:"duration,omitempty" yaml:"duration,omitempty" msgpack:"duration,omitempty"`
	Tags     []string       `json:"tags,omitempty" yaml:"tags,omitempty" msgpack:"tags,omitempty"`
	Subs     []*subDocument `json:"subs,omitempty" yaml:"subs,omitempty" msgpack:"subs,omitempty"`
	Meta     *subDocument   `json:"meta,omitempty" yaml:"meta,omitempty" msgpack:"meta,omitempty"`
}

type subDocument struct {
	Flag  bool    `json:"flag" yaml:"flag" msgpack:"flag"`
	Value float32 `json:"value" yaml:"value" msgpack:"value"`
}

func fromMessage(msg *models.SampleMessage) *document {
	doc := &document{
		Name: msg.Name,
		Tags: msg.Tags,
		Meta: fromSub(msg.Meta),
	}
	if msg.Time != nil {
		doc.Time = msg.Time.AsTime().Format(time.RFC3339Nano)
	}
	if msg.Duration != nil {
		doc.Duration = msg.Duration.AsDuration().String()
	}
	for _, sub := range msg.Subs {
		if sub == nil {
			sub = &models.SubMessage{}
		}
		doc.Subs = append(doc.Subs, fromSub(sub))
	}
	return doc
}

func fromSub(sub *models.SubMessage) *subDocument {
	if sub == nil {
		return nil
	}
	return &subDocument{Flag: sub.Flag, Value: sub.Value}
}

func (d *document) toMessage() (*models.SampleMessage, error) {
	msg := &models.SampleMessage{
		Name: d.Name,
		Tags: d.Tags,
		Meta: d.Meta.toSub(),
	}
	if d.Time != "" {
		t, err := time.Parse(time.RFC3339Nano, d.Time)
		if err != nil {
			return nil, fmt.Errorf("invalid time %q: %w", d.Time, err)
		}
		msg.Time = timestamppb.New(t)
	}
	if d.Duration != "" {
		dur, err := time.ParseDuration(d.Duration)
		if err != nil {
			return nil, fmt.Errorf("invalid duration %q: %w", d.Duration, err)
		}
		msg.Duration = durationpb.New(dur)
	}
	for _, sub := range d.Subs {
		if sub == nil {
			sub = &subDocument{}
		}
		msg.Subs = append(msg.Subs, sub.toSub())
	}
	return msg, nil
}

func (s *subDocument) toSub() *models.SubMessage {
	if s == nil {
		return nil
	}
	return &models.SubMessage{Flag: s.Flag, Value: s.Value}
}
