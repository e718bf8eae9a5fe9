package filter

// BiquadCoefficients holds one direct-form-2-transposed biquad stage's
// coefficients, normalized so a0 == 1, per spec.md §4.2.
type BiquadCoefficients struct {
	B0, B1, B2 float64
	A1, A2     float64
}

// Biquad is a single direct-form-2-transposed IIR stage that carries its
// state (w1, w2) across calls.
type Biquad[T Sample] struct {
	base
	coeff  BiquadCoefficients
	w1, w2 float64
}

// NewBiquad constructs a Biquad from explicit coefficients.
func NewBiquad[T Sample](c BiquadCoefficients) *Biquad[T] {
	return &Biquad[T]{coeff: c}
}

func (f *Biquad[T]) Apply(samples []T) {
	f.mustRate()
	c := f.coeff
	for i, x := range samples {
		in := float64(x)
		out := c.B0*in + f.w1
		f.w1 = c.B1*in - c.A1*out + f.w2
		f.w2 = c.B2*in - c.A2*out
		samples[i] = T(out)
	}
}

func (f *Biquad[T]) SetSamplingRate(hz float64) error { return f.setRate(hz) }

func (f *Biquad[T]) SetParameters(params []float64) int {
	if len(params) != 5 {
		return 5
	}
	f.coeff = BiquadCoefficients{B0: params[0], B1: params[1], B2: params[2], A1: params[3], A2: params[4]}
	return len(params)
}

func (f *Biquad[T]) Reset() { f.w1, f.w2 = 0, 0 }

func (f *Biquad[T]) Clone() Filter[T] {
	return &Biquad[T]{base: base{rate: f.rate, rateSet: f.rateSet}, coeff: f.coeff}
}

// BiquadCascade chains multiple Biquad stages, as Butterworth filters of
// order > 2 are realized (spec.md §4.2). Clone shares coefficient
// structure but resets state, matching the Biquad contract.
type BiquadCascade[T Sample] struct {
	base
	stages []*Biquad[T]
}

// NewBiquadCascade builds a cascade from the given per-stage coefficients.
func NewBiquadCascade[T Sample](coeffs []BiquadCoefficients) *BiquadCascade[T] {
	c := &BiquadCascade[T]{stages: make([]*Biquad[T], len(coeffs))}
	for i, co := range coeffs {
		c.stages[i] = NewBiquad[T](co)
	}
	return c
}

func (c *BiquadCascade[T]) Apply(samples []T) {
	c.mustRate()
	for _, s := range c.stages {
		s.Apply(samples)
	}
}

func (c *BiquadCascade[T]) SetSamplingRate(hz float64) error {
	if err := c.setRate(hz); err != nil {
		return err
	}
	for _, s := range c.stages {
		s.base = base{rate: hz, rateSet: true}
	}
	return nil
}

func (c *BiquadCascade[T]) SetParameters(params []float64) int {
	if len(params)%5 != 0 || len(params) == 0 {
		return -1
	}
	n := len(params) / 5
	c.stages = make([]*Biquad[T], n)
	for i := 0; i < n; i++ {
		c.stages[i] = NewBiquad[T](BiquadCoefficients{})
		c.stages[i].SetParameters(params[i*5 : i*5+5])
	}
	return len(params)
}

func (c *BiquadCascade[T]) Reset() {
	for _, s := range c.stages {
		s.Reset()
	}
}

func (c *BiquadCascade[T]) Clone() Filter[T] {
	coeffs := make([]BiquadCoefficients, len(c.stages))
	for i, s := range c.stages {
		coeffs[i] = s.coeff
	}
	clone := NewBiquadCascade[T](coeffs)
	clone.base = base{rate: c.rate, rateSet: c.rateSet}
	if c.rateSet {
		for _, s := range clone.stages {
			s.base = base{rate: c.rate, rateSet: true}
		}
	}
	return clone
}

// AddStage appends a configured stage to the cascade (used by Butterworth
// filter design below, which computes coefficients itself).
func (c *BiquadCascade[T]) AddStage(co BiquadCoefficients) {
	c.stages = append(c.stages, NewBiquad[T](co))
}

// StageCount reports the number of biquad stages, used by tests and the
// filter-expression parser's introspection.
func (c *BiquadCascade[T]) StageCount() int { return len(c.stages) }
