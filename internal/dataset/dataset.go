// Package dataset holds captured plate samples and their wire encoding.
//
// The payload is plain text so the existing web app can split it without
// a decoder:
//
//	(t0,t1,...);(lead0,lead1,...);(t0,t1,...);(trail0,trail1,...)
//
// Times are seconds since the pre-roll mark with four decimals, weights are
// grams with one decimal. The time series is repeated so lead and trail can
// be plotted as independent series.
package dataset

import (
	"strconv"
	"strings"
)

// Sample is one synchronized reading of both plates.
type Sample struct {
	Elapsed float64 // Seconds since the pre-roll mark
	Lead    float64 // Lead (front) plate, grams
	Trail   float64 // Trail (rear) plate, grams
}

// Buffer is an ordered capture. Insertion order is temporal order.
type Buffer struct {
	samples []Sample
}

// Append records s at the end of the buffer.
func (b *Buffer) Append(s Sample) {
	b.samples = append(b.samples, s)
}

// Len returns the number of recorded samples.
func (b *Buffer) Len() int {
	return len(b.samples)
}

// Reset empties the buffer, keeping its storage.
func (b *Buffer) Reset() {
	b.samples = b.samples[:0]
}

// Samples returns a copy of the recorded samples.
func (b *Buffer) Samples() []Sample {
	out := make([]Sample, len(b.samples))
	copy(out, b.samples)
	return out
}

// Encode renders samples in the wire format. An empty slice encodes as four
// empty groups: "();();();()".
func Encode(samples []Sample) []byte {
	// ~8 bytes per time, ~7 per weight, four groups
	var sb strings.Builder
	sb.Grow(len(samples)*30 + 12)

	writeGroup(&sb, samples, elapsedOf, 4)
	sb.WriteByte(';')
	writeGroup(&sb, samples, leadOf, 1)
	sb.WriteByte(';')
	writeGroup(&sb, samples, elapsedOf, 4)
	sb.WriteByte(';')
	writeGroup(&sb, samples, trailOf, 1)

	return []byte(sb.String())
}

func elapsedOf(s Sample) float64 { return s.Elapsed }
func leadOf(s Sample) float64    { return s.Lead }
func trailOf(s Sample) float64   { return s.Trail }

func writeGroup(sb *strings.Builder, samples []Sample, field func(Sample) float64, prec int) {
	var num [32]byte
	sb.WriteByte('(')
	for i, s := range samples {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.Write(strconv.AppendFloat(num[:0], field(s), 'f', prec, 64))
	}
	sb.WriteByte(')')
}
