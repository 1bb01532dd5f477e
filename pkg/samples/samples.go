// Package samples holds the fixed SampleMessage fixtures printed by the hello
// program. Every constructor returns a fresh value on each call.
package samples

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"google.golang.org/protobuf/types/known/durationpb"
	"google.golang.org/protobuf/types/known/timestamppb"

	"github.com/user/hello-proto/pkg/models"
)

// Variant names accepted by Lookup
const (
	VariantBasic  = "basic"
	VariantNested = "nested"
	VariantTimed  = "timed"
)

// ErrUnknownVariant is returned by Lookup for a name it does not know
var ErrUnknownVariant = errors.New("unknown sample variant")

// Builder produces a sample message. now is only read by variants that
// carry a timestamp.
type Builder func(now time.Time) *models.SampleMessage

var builders = map[string]Builder{
	VariantBasic:  func(time.Time) *models.SampleMessage { return Basic() },
	VariantNested: func(time.Time) *models.SampleMessage { return Nested() },
	VariantTimed:  Timed,
}

// Basic returns the message with only a name and tags set
func Basic() *models.SampleMessage {
	return &models.SampleMessage{
		Name: "Rust",
		Tags: []string{"rust", "proto"},
	}
}

// Nested returns the Basic message plus one sub-record and a zero-valued meta
func Nested() *models.SampleMessage {
	return &models.SampleMessage{
		Name: "Rust",
		Tags: []string{"rust", "proto"},
		Subs: []*models.SubMessage{
			{Flag: true, Value: 3.4},
		},
		Meta: &models.SubMessage{Flag: false, Value: 0.0},
	}
}

// Timed returns a message with every field set, stamped at now with a
// duration of one day.
func Timed(now time.Time) *models.SampleMessage {
	return &models.SampleMessage{
		Name:     "python",
		Time:     timestamppb.New(now),
		Duration: durationpb.New(24 * time.Hour),
		Tags:     []string{"foo", "bar"},
		Subs: []*models.SubMessage{
			{Flag: true, Value: 42.1984},
			{Flag: false, Value: -42.1984},
		},
		Meta: &models.SubMessage{Flag: true, Value: 42.1984},
	}
}

// Lookup resolves a variant name to its Builder
func Lookup(variant string) (Builder, error) {
	b, ok := builders[variant]
	if !ok {
		return nil, fmt.Errorf("%w: %q (known: %v)", ErrUnknownVariant, variant, Variants())
	}
	return b, nil
}

// Variants lists the known variant names in sorted order
func Variants() []string {
	names := make([]string, 0, len(builders))
	for name := range builders {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
