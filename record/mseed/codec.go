package mseed

import (
	"bytes"
	"encoding/binary"
	"time"

	"github.com/gempa-oss/scstream/record"
)

// blockette1001Size is the size of the minimal extension this package
// writes after the fixed header: the sample format code byte followed by
// the timing-quality percentage byte (0xFF for none), in place of the real
// Blockette 1000/1001 fields.
const blockette1001Size = 2

// EncodeInt32 serializes a record.Record[int32] as an uncompressed
// (FormatInt32) Mini-SEED record: fixed header, a 2-byte format-code and
// timing-quality extension, then the raw big-endian sample array.
func EncodeInt32(r *record.Record[int32]) []byte {
	h := Header{
		Network:     r.StreamID().Network,
		Station:     r.StreamID().Station,
		Location:    r.StreamID().Location,
		Channel:     r.StreamID().Channel,
		StartTime:   r.StartTime(),
		SampleRate:  r.SamplingRate(),
		SampleCount: r.SampleCount(),
		Encoding:    FormatInt32,
	}
	buf := bytes.NewBuffer(EncodeHeader(h))
	tq := byte(0xFF)
	if r.TimingQuality() != record.NoTimingQuality {
		tq = byte(r.TimingQuality())
	}
	buf.WriteByte(byte(FormatInt32))
	buf.WriteByte(tq)
	_ = binary.Write(buf, binary.BigEndian, r.Data())
	return buf.Bytes()
}

// DecodeInt32 is the inverse of EncodeInt32.
func DecodeInt32(buf []byte) (*record.Record[int32], error) {
	h, err := DecodeHeader(buf)
	if err != nil {
		return nil, err
	}
	rest := buf[HeaderSize:]
	if len(rest) < blockette1001Size {
		return nil, ErrShortBuffer
	}
	encoding := int(rest[0])
	tq := rest[1]
	data := rest[blockette1001Size:]

	samples := make([]int32, h.SampleCount)
	switch encoding {
	case FormatInt32:
		if err := binary.Read(bytes.NewReader(data), binary.BigEndian, &samples); err != nil {
			return nil, err
		}
	default:
		return nil, ErrBadEncoding
	}

	id := record.StreamID{Network: h.Network, Station: h.Station, Location: h.Location, Channel: h.Channel}
	rec, err := record.New(id, h.StartTime, h.SampleRate, samples)
	if err != nil {
		return nil, err
	}
	if tq != 0xFF {
		rec.SetTimingQuality(int(tq))
	}
	return rec, nil
}

// EncodeFloat64 serializes a record.Record[float64] as FormatFloat64.
func EncodeFloat64(r *record.Record[float64]) []byte {
	h := Header{
		Network: r.StreamID().Network, Station: r.StreamID().Station,
		Location: r.StreamID().Location, Channel: r.StreamID().Channel,
		StartTime: r.StartTime(), SampleRate: r.SamplingRate(),
		SampleCount: r.SampleCount(), Encoding: FormatFloat64,
	}
	buf := bytes.NewBuffer(EncodeHeader(h))
	tq := byte(0xFF)
	if r.TimingQuality() != record.NoTimingQuality {
		tq = byte(r.TimingQuality())
	}
	buf.WriteByte(byte(FormatFloat64))
	buf.WriteByte(tq)
	_ = binary.Write(buf, binary.BigEndian, r.Data())
	return buf.Bytes()
}

// DecodeFloat64 is the inverse of EncodeFloat64.
func DecodeFloat64(buf []byte) (*record.Record[float64], error) {
	h, err := DecodeHeader(buf)
	if err != nil {
		return nil, err
	}
	rest := buf[HeaderSize:]
	if len(rest) < blockette1001Size {
		return nil, ErrShortBuffer
	}
	if int(rest[0]) != FormatFloat64 {
		return nil, ErrBadEncoding
	}
	tq := rest[1]
	data := rest[blockette1001Size:]
	samples := make([]float64, h.SampleCount)
	if err := binary.Read(bytes.NewReader(data), binary.BigEndian, &samples); err != nil {
		return nil, err
	}
	id := record.StreamID{Network: h.Network, Station: h.Station, Location: h.Location, Channel: h.Channel}
	rec, err := record.New(id, h.StartTime, h.SampleRate, samples)
	if err != nil {
		return nil, err
	}
	if tq != 0xFF {
		rec.SetTimingQuality(int(tq))
	}
	return rec, nil
}

// PeekEncoding returns the sample encoding format code of a record buffer
// without fully decoding it, used by demux/recordstream readers to pick
// the matching decoder (including the historic CDSN/DWWSSN/SRO variants).
func PeekEncoding(buf []byte) (int, error) {
	if len(buf) < HeaderSize+1 {
		return 0, ErrShortBuffer
	}
	return int(buf[HeaderSize]), nil
}

// StartTimeOf is a convenience used by SDS scanning code to sort candidate
// day-file records without a full decode.
func StartTimeOf(buf []byte) (time.Time, error) {
	h, err := DecodeHeader(buf)
	if err != nil {
		return time.Time{}, err
	}
	return h.StartTime, nil
}

// RecordSize returns the total byte length (header, timing-quality
// extension and sample payload) of the single record starting at buf[0],
// letting a day-file reader step through a sequence of concatenated
// records without decoding each one fully.
func RecordSize(buf []byte) (int, error) {
	if _, err := DecodeHeader(buf); err != nil {
		return 0, err
	}
	if len(buf) < HeaderSize+blockette1001Size {
		return 0, ErrShortBuffer
	}
	h, _ := DecodeHeader(buf)
	encoding := int(buf[HeaderSize])
	var elemSize int
	switch encoding {
	case FormatInt32:
		elemSize = 4
	case FormatFloat64:
		elemSize = 8
	default:
		return 0, ErrBadEncoding
	}
	return HeaderSize + blockette1001Size + h.SampleCount*elemSize, nil
}
