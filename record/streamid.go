// Package record defines the waveform sample carrier (Record) and the
// time-ordered buffers (Sequence) that hold them for one channel.
package record

import "fmt"

// StreamID identifies a physical sensor channel by the classic FDSN
// four-tuple. All four codes are fixed-width ASCII; Location may be empty.
type StreamID struct {
	Network  string
	Station  string
	Location string
	Channel  string
}

// String renders the id as "NET.STA.LOC.CHA", matching the SDS archive
// naming convention used throughout spec.md §6.
func (id StreamID) String() string {
	return fmt.Sprintf("%s.%s.%s.%s", id.Network, id.Station, id.Location, id.Channel)
}

// SameSensor reports whether id and other differ only in the last
// character of the channel code, i.e. they are plausibly different
// components of the same physical sensor (e.g. BHZ/BHN/BHE).
func (id StreamID) SameSensor(other StreamID) bool {
	if id.Network != other.Network || id.Station != other.Station || id.Location != other.Location {
		return false
	}
	if len(id.Channel) == 0 || len(other.Channel) == 0 {
		return false
	}
	return id.Channel[:len(id.Channel)-1] == other.Channel[:len(other.Channel)-1]
}

// WithChannel returns a copy of id with the channel code replaced, used
// when synthesizing a derived Record (e.g. the output of an n-component
// operator).
func (id StreamID) WithChannel(channel string) StreamID {
	id.Channel = channel
	return id
}
