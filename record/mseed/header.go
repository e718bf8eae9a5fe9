// Package mseed implements a Mini-SEED compatible encoder/decoder for the
// fixed header, native sample encodings, Steim1/Steim2 compression, and the
// historic CDSN/DWWSSN/SRO auxiliary decoders (spec.md §6).
package mseed

import (
	"bytes"
	"encoding/binary"
	"errors"
	"time"
)

// Sample encoding format codes, matching the SEED fixed-header "format
// flags" byte as referenced in spec.md §6.
const (
	FormatASCII   = 0
	FormatInt16   = 1
	FormatInt32   = 3
	FormatFloat32 = 4
	FormatFloat64 = 5
	FormatSteim1  = 10
	FormatSteim2  = 11
	FormatCDSN    = 16
	FormatSRO     = 30
	FormatDWWSSN  = 32
)

// HeaderSize is the fixed-length portion of a Mini-SEED fixed header.
const HeaderSize = 48

var (
	ErrShortBuffer = errors.New("mseed: buffer too short for fixed header")
	ErrBadEncoding = errors.New("mseed: unsupported or malformed sample encoding")
)

// fixedHeader mirrors the SEED data-record fixed section layout, decoded
// with encoding/binary the way go-gsf decodes its own fixed-width binary
// headers (decode/ping.go's ping_header_base pattern).
type fixedHeader struct {
	SequenceNumber [6]byte
	DataQuality    byte
	Reserved       byte
	Station        [5]byte
	Location       [2]byte
	Channel        [3]byte
	Network        [2]byte
	Year           uint16
	Day            uint16
	Hour           uint8
	Minute         uint8
	Second         uint8
	Unused         uint8
	Fracsec        uint16
	SampleCount    uint16
	SampleRateFac  int16
	SampleRateMult int16
	ActivityFlags  uint8
	IOFlags        uint8
	QualityFlags   uint8
	NumBlockettes  uint8
	TimeCorrection int32
	BeginData      uint16
	FirstBlockette uint16
}

// Header is the decoded, friendly form of the fixed header, which this
// package always writes as big-endian. DecodeHeader does not fill
// Encoding or TimingQuality and EncodeHeader does not write them; the
// codec functions carry both in a 2-byte extension after the fixed header.
type Header struct {
	Network       string
	Station       string
	Location      string
	Channel       string
	StartTime     time.Time
	SampleRate    float64
	SampleCount   int
	TimingQuality int // 0..100 or -1
	Encoding      int
}

func fixedASCII(b []byte) string {
	return string(bytes.TrimRight(b, " \x00"))
}

func putFixedASCII(dst []byte, s string) {
	for i := range dst {
		dst[i] = ' '
	}
	copy(dst, s)
}

// sampleRateFromFactors converts the SEED sample-rate factor/multiplier
// pair into a Hz value, per the SEED manual §8 encoding rules.
func sampleRateFromFactors(factor, multiplier int16) float64 {
	if factor == 0 {
		return 0
	}
	rate := 1.0
	if factor > 0 {
		rate = float64(factor)
	} else {
		rate = 1.0 / float64(-factor)
	}
	if multiplier > 0 {
		rate *= float64(multiplier)
	} else if multiplier < 0 {
		rate /= float64(-multiplier)
	}
	return rate
}

// factorsFromSampleRate picks an exact (factor, multiplier) representation
// when the rate is an integer or simple reciprocal, falling back to a
// multiplier-scaled approximation otherwise.
func factorsFromSampleRate(rate float64) (int16, int16) {
	if rate >= 1 && rate == float64(int64(rate)) && rate <= 32767 {
		return int16(rate), 1
	}
	if rate > 0 && rate < 1 {
		recip := 1 / rate
		if recip == float64(int64(recip)) && recip <= 32767 {
			return -int16(recip), 1
		}
	}
	// Scale by 1000 to retain 3 decimal digits of precision.
	return int16(rate * 1000), -1000
}

func btimeToTime(year, day uint16, hour, minute, second uint8, fracsec uint16) time.Time {
	// fracsec is in 1/10000ths of a second, per SEED BTIME.
	base := time.Date(int(year), time.January, 1, int(hour), int(minute), int(second), 0, time.UTC)
	base = base.AddDate(0, 0, int(day)-1)
	return base.Add(time.Duration(fracsec) * 100 * time.Microsecond)
}

func timeToBtime(t time.Time) (year, day uint16, hour, minute, second uint8, fracsec uint16) {
	t = t.UTC()
	year = uint16(t.Year())
	day = uint16(t.YearDay())
	hour = uint8(t.Hour())
	minute = uint8(t.Minute())
	second = uint8(t.Second())
	fracsec = uint16(t.Nanosecond() / 100000)
	return
}

// DecodeHeader parses the fixed 48-byte header from buf.
func DecodeHeader(buf []byte) (Header, error) {
	if len(buf) < HeaderSize {
		return Header{}, ErrShortBuffer
	}
	var fh fixedHeader
	if err := binary.Read(bytes.NewReader(buf[:HeaderSize]), binary.BigEndian, &fh); err != nil {
		return Header{}, err
	}
	start := btimeToTime(fh.Year, fh.Day, fh.Hour, fh.Minute, fh.Second, fh.Fracsec)
	if fh.Unused < 100 {
		start = start.Add(time.Duration(fh.Unused) * time.Microsecond)
	}
	return Header{
		Network:     fixedASCII(fh.Network[:]),
		Station:     fixedASCII(fh.Station[:]),
		Location:    fixedASCII(fh.Location[:]),
		Channel:     fixedASCII(fh.Channel[:]),
		StartTime:   start,
		SampleRate:  sampleRateFromFactors(fh.SampleRateFac, fh.SampleRateMult),
		SampleCount: int(fh.SampleCount),
	}, nil
}

// EncodeHeader writes the fixed 48-byte header for h.
func EncodeHeader(h Header) []byte {
	var fh fixedHeader
	fh.DataQuality = 'D'
	putFixedASCII(fh.Station[:], h.Station)
	putFixedASCII(fh.Location[:], h.Location)
	putFixedASCII(fh.Channel[:], h.Channel)
	putFixedASCII(fh.Network[:], h.Network)
	fh.Year, fh.Day, fh.Hour, fh.Minute, fh.Second, fh.Fracsec = timeToBtime(h.StartTime)
	// The BTIME alignment byte carries the microseconds below fracsec's
	// 100us resolution, so the start time round-trips exactly.
	fh.Unused = uint8(h.StartTime.Nanosecond() / 1000 % 100)
	fh.SampleCount = uint16(h.SampleCount)
	fh.SampleRateFac, fh.SampleRateMult = factorsFromSampleRate(h.SampleRate)
	fh.NumBlockettes = 1
	fh.BeginData = HeaderSize
	fh.FirstBlockette = HeaderSize

	buf := &bytes.Buffer{}
	_ = binary.Write(buf, binary.BigEndian, &fh)
	return buf.Bytes()
}
