package mseed

import (
	"encoding/binary"
	"errors"
)

// ErrSteim is returned when a Steim frame's nibble layout is inconsistent.
var ErrSteim = errors.New("mseed: malformed steim frame")

const steimFrameSize = 64
const steimWordsPerFrame = 16

// DecodeSteim1 decodes nFrames Steim1-compressed 64-byte frames into up to
// sampleCount int32 samples, following the classic Steim1 differencing
// scheme: each 32-bit word holds either four 8-bit, two 16-bit, or one
// 32-bit difference, selected by the per-word nibble in word 0 of each
// frame, and reconstructed by running-sum from an explicit first-sample
// anchor carried in frame 0.
func DecodeSteim1(buf []byte, sampleCount int) ([]int32, error) {
	return decodeSteim(buf, sampleCount, decodeSteim1Word)
}

// DecodeSteim2 decodes Steim2-compressed frames, which additionally pack
// 4-, 5-, 6-, 8-, 10-, 15-, or 30-bit differences per word depending on the
// 2-bit word selector and a secondary 2-bit sub-selector.
func DecodeSteim2(buf []byte, sampleCount int) ([]int32, error) {
	return decodeSteim(buf, sampleCount, decodeSteim2Word)
}

type wordDecoder func(word uint32, dnib byte) ([]int32, error)

func decodeSteim(buf []byte, sampleCount int, decode wordDecoder) ([]int32, error) {
	if len(buf)%steimFrameSize != 0 {
		return nil, ErrSteim
	}
	out := make([]int32, 0, sampleCount)
	nFrames := len(buf) / steimFrameSize

	var prevSample int32
	haveAnchor := false
	skipDiff := false

	for f := 0; f < nFrames && len(out) < sampleCount; f++ {
		frame := buf[f*steimFrameSize : (f+1)*steimFrameSize]
		nibbles := binary.BigEndian.Uint32(frame[0:4])

		words := make([]uint32, steimWordsPerFrame)
		for w := 0; w < steimWordsPerFrame; w++ {
			words[w] = binary.BigEndian.Uint32(frame[w*4 : w*4+4])
		}

		start := 0
		if f == 0 {
			// Word 1 holds the first sample of the frame, word 2 the last
			// (used for integrity checks this implementation does not
			// enforce); decoding begins at word 3.
			prevSample = int32(words[1])
			haveAnchor = true
			start = 3
			if sampleCount > 0 {
				// The first difference relates the first sample to the
				// previous record, so it is skipped.
				out = append(out, prevSample)
				skipDiff = true
			}
		}
		if !haveAnchor {
			return nil, ErrSteim
		}

		for w := start; w < steimWordsPerFrame && len(out) < sampleCount; w++ {
			dnib := byte((nibbles >> uint(2*(15-w))) & 0x3)
			if dnib == 0 {
				continue // non-data word (e.g. control/unused)
			}
			diffs, err := decode(words[w], dnib)
			if err != nil {
				return nil, err
			}
			for _, d := range diffs {
				if len(out) >= sampleCount {
					break
				}
				if skipDiff {
					skipDiff = false
					continue
				}
				prevSample += d
				out = append(out, prevSample)
			}
		}
	}
	return out, nil
}

func decodeSteim1Word(word uint32, dnib byte) ([]int32, error) {
	switch dnib {
	case 1: // four 8-bit differences
		out := make([]int32, 4)
		for i := 0; i < 4; i++ {
			out[i] = int32(int8(byte(word >> uint(24-8*i))))
		}
		return out, nil
	case 2: // two 16-bit differences
		out := make([]int32, 2)
		out[0] = int32(int16(uint16(word >> 16)))
		out[1] = int32(int16(uint16(word)))
		return out, nil
	case 3: // one 32-bit difference
		return []int32{int32(word)}, nil
	default:
		return nil, ErrSteim
	}
}

func decodeSteim2Word(word uint32, dnib byte) ([]int32, error) {
	switch dnib {
	case 1: // four 8-bit differences, same layout as Steim1
		return decodeSteim1Word(word, 1)
	case 2:
		sub := word >> 30
		switch sub {
		case 1: // one 30-bit difference
			return []int32{signExtend(word&0x3FFFFFFF, 30)}, nil
		case 2: // two 15-bit differences
			return []int32{
				signExtend((word>>15)&0x7FFF, 15),
				signExtend(word&0x7FFF, 15),
			}, nil
		case 3: // three 10-bit differences
			return []int32{
				signExtend((word>>20)&0x3FF, 10),
				signExtend((word>>10)&0x3FF, 10),
				signExtend(word&0x3FF, 10),
			}, nil
		default:
			return nil, ErrSteim
		}
	case 3:
		sub := word >> 30
		switch sub {
		case 0: // five 6-bit differences
			out := make([]int32, 5)
			for i := 0; i < 5; i++ {
				out[i] = signExtend((word>>uint(24-6*i))&0x3F, 6)
			}
			return out, nil
		case 1: // six 5-bit differences
			out := make([]int32, 6)
			for i := 0; i < 6; i++ {
				out[i] = signExtend((word>>uint(25-5*i))&0x1F, 5)
			}
			return out, nil
		case 2: // seven 4-bit differences
			out := make([]int32, 7)
			for i := 0; i < 7; i++ {
				out[i] = signExtend((word>>uint(24-4*i))&0xF, 4)
			}
			return out, nil
		default:
			return nil, ErrSteim
		}
	default:
		return nil, ErrSteim
	}
}

func signExtend(v uint32, bits uint) int32 {
	shift := 32 - bits
	return int32(v<<shift) >> shift
}
