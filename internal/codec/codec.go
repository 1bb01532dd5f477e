package codec

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/vmihailenco/msgpack/v5"
	"gopkg.in/yaml.v3"

	"github.com/user/hello-proto/pkg/models"
)

// Supported format names
const (
	FormatProto   = "proto"
	FormatJSON    = "json"
	FormatYAML    = "yaml"
	FormatMsgpack = "msgpack"
)

// ErrUnknownFormat is returned by New for an unsupported format name
var ErrUnknownFormat = errors.New("unknown codec format")

// Codec serializes sample messages for storage and publishing
type Codec interface {
	Name() string
	ContentType() string
	Extension() string
	Marshal(msg *models.SampleMessage) ([]byte, error)
	Unmarshal(data []byte) (*models.SampleMessage, error)
}

// New returns the codec for format. An empty format selects proto.
func New(format string) (Codec, error) {
	switch format {
	case "", FormatProto:
		return protoCodec{}, nil
	case FormatJSON:
		return documentCodec{
			name:        FormatJSON,
			contentType: "application/json",
			marshal:     json.Marshal,
			unmarshal:   json.Unmarshal,
		}, nil
	case FormatYAML:
		return documentCodec{
			name:        FormatYAML,
			contentType: "application/yaml",
			marshal:     yaml.Marshal,
			unmarshal:   yaml.Unmarshal,
		}, nil
	case FormatMsgpack:
		return documentCodec{
			name:        FormatMsgpack,
			contentType: "application/msgpack",
			marshal:     msgpack.Marshal,
			unmarshal:   msgpack.Unmarshal,
		}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

// Formats lists every supported format name
func Formats() []string {
	return []string{FormatJSON, FormatMsgpack, FormatProto, FormatYAML}
}

type protoCodec struct{}

func (protoCodec) Name() string        { return FormatProto }
func (protoCodec) ContentType() string { return "application/x-protobuf" }
func (protoCodec) Extension() string   { return "pb" }

func (protoCodec) Marshal(msg *models.SampleMessage) ([]byte, error) {
	return msg.MarshalProto()
}

func (protoCodec) Unmarshal(data []byte) (*models.SampleMessage, error) {
	return models.UnmarshalProto(data)
}

// documentCodec covers the text and map-based formats, which all encode the
// same tagged document struct.
type documentCodec struct {
	name        string
	contentType string
	marshal     func(v interface{}) ([]byte, error)
	unmarshal   func(data []byte, v interface{}) error
}

func (c documentCodec) Name() string        { return c.name }
func (c documentCodec) ContentType() string { return c.contentType }
func (c documentCodec) Extension() string   { return c.name }

func (c documentCodec) Marshal(msg *models.SampleMessage) ([]byte, error) {
	data, err := c.marshal(fromMessage(msg))
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s: %w", c.name, err)
	}
	return data, nil
}

func (c documentCodec) Unmarshal(data []byte) (*models.SampleMessage, error) {
	var doc document
	if err := c.unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to unmarshal %s: %w", c.name, err)
	}
	return doc.toMessage()
}
