// Package processing implements the WaveformProcessor state machine and
// its derived consumers (pickers, amplitude and magnitude processors, the
// n-component operator), grounded on
// original_source/libs/seiscomp/processing/{processor,stream,
// timewindowprocessor}.h.
package processing

import "fmt"

// State is a WaveformProcessor's lifecycle stage, spec.md §3/§4.3:
// WaitingForData -> InProgress -> {Finished | Terminated}.
type State int

const (
	WaitingForData State = iota
	InProgress
	Finished
	Terminated
)

func (s State) String() string {
	switch s {
	case WaitingForData:
		return "WaitingForData"
	case InProgress:
		return "InProgress"
	case Finished:
		return "Finished"
	case Terminated:
		return "Terminated"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// TerminationCause is a closed enum naming why a processor moved to
// Terminated, spec.md §4.3.
type TerminationCause int

const (
	NoTermination TerminationCause = iota
	LowSNR
	BadTimeReference
	DataClipped
	MissingGain
	MissingResponse
	IncompleteData
	DataOutlier
	ProcessorError
	Unspecified
)

func (c TerminationCause) String() string {
	switch c {
	case NoTermination:
		return "NoTermination"
	case LowSNR:
		return "LowSNR"
	case BadTimeReference:
		return "BadTimeReference"
	case DataClipped:
		return "DataClipped"
	case MissingGain:
		return "MissingGain"
	case MissingResponse:
		return "MissingResponse"
	case IncompleteData:
		return "IncompleteData"
	case DataOutlier:
		return "DataOutlier"
	case ProcessorError:
		return "ProcessorError"
	case Unspecified:
		return "Unspecified"
	default:
		return fmt.Sprintf("TerminationCause(%d)", int(c))
	}
}
