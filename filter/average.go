package filter

// Average is a running-mean filter over the last timeSpan seconds of
// samples, ported from the circular-buffer sliding sum of average.cpp.
type Average[T Sample] struct {
	base
	timeSpan float64

	sampleCount int
	buffer      []T
	index       int
	firstSample bool
	lastSum     float64
}

func NewAverage[T Sample](timeSpan float64) *Average[T] {
	return &Average[T]{timeSpan: timeSpan, firstSample: true}
}

func (f *Average[T]) SetSamplingRate(hz float64) error {
	if err := f.setRate(hz); err != nil {
		return err
	}
	f.sampleCount = int(hz * f.timeSpan)
	if f.sampleCount < 1 {
		f.sampleCount = 1
	}
	f.buffer = make([]T, f.sampleCount)
	f.Reset()
	return nil
}

func (f *Average[T]) Apply(samples []T) {
	f.mustRate()
	if f.firstSample && len(samples) > 0 {
		for i := range f.buffer {
			f.buffer[i] = samples[0]
		}
		f.lastSum = float64(samples[0]) * float64(len(f.buffer))
		f.firstSample = false
	}
	for i, x := range samples {
		first := f.buffer[f.index]
		f.buffer[f.index] = x
		f.index++
		if f.index >= f.sampleCount {
			f.index = 0
		}
		f.lastSum = f.lastSum + float64(x) - float64(first)
		samples[i] = T(f.lastSum / float64(f.sampleCount))
	}
}

func (f *Average[T]) SetParameters(params []float64) int {
	if len(params) != 1 {
		return 1
	}
	if params[0] <= 0 {
		return -1
	}
	f.timeSpan = params[0]
	return len(params)
}

func (f *Average[T]) Reset() {
	f.firstSample = true
	f.lastSum = 0
	f.index = 0
}

func (f *Average[T]) Clone() Filter[T] {
	c := NewAverage[T](f.timeSpan)
	if f.rateSet {
		_ = c.SetSamplingRate(f.rate)
	}
	return c
}
