package models

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/encoding/protowire"
	"google.golang.org/protobuf/testing/protocmp"
	"google.golang.org/protobuf/types/known/durationpb"
	"google.golang.org/protobuf/types/known/timestamppb"
)

func fullMessage() *SampleMessage {
	return &SampleMessage{
		Name:     "python",
		Time:     timestamppb.New(time.Date(2024, 3, 1, 12, 30, 0, 500, time.UTC)),
		Duration: durationpb.New(24 * time.Hour),
		Tags:     []string{"foo", "bar"},
		Subs: []*SubMessage{
			{Flag: true, Value: 42.1984},
			{Flag: false, Value: -42.1984},
		},
		Meta: &SubMessage{Flag: true, Value: 42.1984},
	}
}

func TestString(t *testing.T) {
	msg := &SampleMessage{
		Name: "Rust",
		Tags: []string{"rust", "proto"},
		Subs: []*SubMessage{{Flag: true, Value: 3.4}},
		Meta: &SubMessage{},
	}

	assert.Equal(t,
		`SampleMessage{name:"Rust" tags:"rust" tags:"proto" subs:{flag:true value:3.4} meta:{flag:false value:0}}`,
		msg.String())
}

func TestStringWithTimeAndDuration(t *testing.T) {
	s := fullMessage().String()

	assert.Contains(t, s, `time:"2024-03-01T12:30:00.0000005Z"`)
	assert.Contains(t, s, `duration:"24h0m0s"`)
	assert.Contains(t, s, `subs:{flag:false value:-42.1984}`)
}

func TestStringEmptyAndNil(t *testing.T) {
	assert.Equal(t, "SampleMessage{}", (&SampleMessage{}).String())

	var msg *SampleMessage
	assert.Equal(t, "<nil>", msg.String())
}

func TestProtoRoundTrip(t *testing.T) {
	testCases := []struct {
		name string
		msg  *SampleMessage
	}{
		{"empty", &SampleMessage{}},
		{"name and tags", &SampleMessage{Name: "Rust", Tags: []string{"rust", "proto"}}},
		{"zero meta", &SampleMessage{Name: "Rust", Meta: &SubMessage{}}},
		{"full", fullMessage()},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			data, err := tc.msg.MarshalProto()
			require.NoError(t, err)

			got, err := UnmarshalProto(data)
			require.NoError(t, err)

			if diff := cmp.Diff(tc.msg, got, protocmp.Transform()); diff != "" {
				t.Errorf("round trip mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestMarshalProtoWireLayout(t *testing.T) {
	msg := &SampleMessage{Name: "Rust", Meta: &SubMessage{}}

	data, err := msg.MarshalProto()
	require.NoError(t, err)

	// name (1, bytes) "Rust", then an empty meta (6, bytes)
	want := []byte{0x0a, 0x04, 'R', 'u', 's', 't', 0x32, 0x00}
	assert.Equal(t, want, data)
}

func TestMarshalProtoDeterministic(t *testing.T) {
	a, err := fullMessage().MarshalProto()
	require.NoError(t, err)
	b, err := fullMessage().MarshalProto()
	require.NoError(t, err)

	assert.Equal(t, a, b)
}

func TestUnmarshalSkipsUnknownFields(t *testing.T) {
	var b []byte
	b = protowire.AppendTag(b, 99, protowire.VarintType)
	b = protowire.AppendVarint(b, 7)
	b = protowire.AppendTag(b, fieldName, protowire.BytesType)
	b = protowire.AppendString(b, "Rust")
	b = protowire.AppendTag(b, 42, protowire.BytesType)
	b = protowire.AppendString(b, "ignored")

	msg, err := UnmarshalProto(b)
	require.NoError(t, err)
	assert.Equal(t, "Rust", msg.Name)
	assert.Nil(t, msg.Meta)
}

func TestUnmarshalMalformed(t *testing.T) {
	data, err := fullMessage().MarshalProto()
	require.NoError(t, err)

	testCases := []struct {
		name string
		data []byte
	}{
		{"truncated", data[:len(data)-3]},
		{"bad tag", []byte{0x00}},
		{"length overflow", []byte{0x0a, 0x10, 'R'}},
		{"bad sub", []byte{0x2a, 0x02, 0x15, 0x01}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := UnmarshalProto(tc.data)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrMalformed)
		})
	}
}

func TestClone(t *testing.T) {
	orig := fullMessage()
	c := orig.Clone()

	if diff := cmp.Diff(orig, c, protocmp.Transform()); diff != "" {
		t.Fatalf("clone mismatch (-want +got):\n%s", diff)
	}

	c.Tags[0] = "changed"
	c.Subs[0].Value = 1
	c.Meta.Flag = false
	c.Time.Seconds = 0

	assert.Equal(t, "foo", orig.Tags[0])
	assert.Equal(t, float32(42.1984), orig.Subs[0].Value)
	assert.True(t, orig.Meta.Flag)
	assert.NotZero(t, orig.Time.Seconds)

	var nilMsg *SampleMessage
	assert.Nil(t, nilMsg.Clone())
}
