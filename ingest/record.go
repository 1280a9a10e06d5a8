package ingest

import (
	"encoding/binary"
	"math"
)

// Kind tags the record shape stored in a Slice.
type Kind uint8

const (
	// KindInvalid is the zero Kind. No slice is ever tagged with it.
	KindInvalid Kind = iota

	// KindSample tags slices of Sample records.
	KindSample

	// KindTrade tags slices of Trade records.
	KindTrade
)

// Encoded sizes of each record shape in bytes.
const (
	sampleSize = 24 // id(4) pad(4) time(8) value(8)
	tradeSize  = 32 // id(4) side(1) pad(3) time(8) price(8) quantity(8)
)

var kindNames = [...]string{
	KindInvalid: "Invalid",
	KindSample:  "Sample",
	KindTrade:   "Trade",
}

// String returns the name of the record shape.
func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "Unknown"
}

// Size returns the encoded size of one record of this kind, or 0 for
// KindInvalid.
func (k Kind) Size() int {
	switch k {
	case KindSample:
		return sampleSize
	case KindTrade:
		return tradeSize
	default:
		return 0
	}
}

// Side is the aggressor side of a trade.
type Side int8

const (
	SideUnknown Side = 0
	SideBuy     Side = 1
	SideSell    Side = -1
)

// Sample is a single time/value observation of a series.
// Time is expressed in seconds.
type Sample struct {
	SeriesID uint32
	Time     float64
	Value    float64
}

// Trade is a single market print.
// Time is expressed in seconds.
type Trade struct {
	SeriesID uint32
	Time     float64
	Price    float64
	Quantity float64
	Side     Side
}

// Record is the closed set of record shapes a Bus can carry.
type Record interface {
	Sample | Trade
}

// SampleBatch is a columnar batch of samples for one series.
// Times and Values must have the same length.
type SampleBatch struct {
	SeriesID uint32
	Times    []float64
	Values   []float64
}

// kindOf returns the Kind tag for the record type T.
func kindOf[T Record]() Kind {
	var zero T
	switch any(zero).(type) {
	case Sample:
		return KindSample
	case Trade:
		return KindTrade
	default:
		return KindInvalid
	}
}

func putFloat(b []byte, v float64) {
	binary.LittleEndian.PutUint64(b, math.Float64bits(v))
}

func getFloat(b []byte) float64 {
	return math.Float64frombits(binary.LittleEndian.Uint64(b))
}

// encode writes records into buf using the fixed layout of their kind.
// buf must hold at least len(records)*kind.Size() bytes.
func encode[T Record](buf []byte, records []T) {
	switch rs := any(records).(type) {
	case []Sample:
		for i, r := range rs {
			b := buf[i*sampleSize : (i+1)*sampleSize]
			binary.LittleEndian.PutUint32(b[0:], r.SeriesID)
			binary.LittleEndian.PutUint32(b[4:], 0)
			putFloat(b[8:], r.Time)
			putFloat(b[16:], r.Value)
		}
	case []Trade:
		for i, r := range rs {
			b := buf[i*tradeSize : (i+1)*tradeSize]
			binary.LittleEndian.PutUint32(b[0:], r.SeriesID)
			b[4] = byte(r.Side)
			b[5], b[6], b[7] = 0, 0, 0
			putFloat(b[8:], r.Time)
			putFloat(b[16:], r.Price)
			putFloat(b[24:], r.Quantity)
		}
	}
}

// decode appends count records of kind stored in buf to dst.
func decode[T Record](dst []T, buf []byte, count int) []T {
	switch d := any(dst).(type) {
	case []Sample:
		for i := range count {
			b := buf[i*sampleSize : (i+1)*sampleSize]
			d = append(d, Sample{
				SeriesID: binary.LittleEndian.Uint32(b[0:]),
				Time:     getFloat(b[8:]),
				Value:    getFloat(b[16:]),
			})
		}
		return any(d).([]T)
	case []Trade:
		for i := range count {
			b := buf[i*tradeSize : (i+1)*tradeSize]
			d = append(d, Trade{
				SeriesID: binary.LittleEndian.Uint32(b[0:]),
				Side:     Side(int8(b[4])),
				Time:     getFloat(b[8:]),
				Price:    getFloat(b[16:]),
				Quantity: getFloat(b[24:]),
			})
		}
		return any(d).([]T)
	}
	return dst
}
