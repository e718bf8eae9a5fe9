package filter

import "math"

// coefficientsFromT0H computes the biquad that approximately inverts a
// seismometer's corner-period/damping response, following Kanamori and
// Rivera (2008) as referenced by iir/restitution.h. The header declares
// only the signature of coefficients_from_T0_h; no .cpp body was
// retrieved, so the pole placement (from the damped-oscillator
// characteristic equation, real poles when h >= 1) and the differentiator
// numerator below are a reconstruction from the documented physics rather
// than a verbatim port.
func coefficientsFromT0H(fsamp, gain, T0, h float64) (coeff BiquadCoefficients, ok bool) {
	if fsamp <= 0 || T0 <= 0 || gain == 0 {
		return BiquadCoefficients{}, false
	}
	dt := 1 / fsamp
	w0 := 2 * math.Pi / T0
	e := math.Exp(-h * w0 * dt)

	var a1, a2 float64
	if h < 1 {
		wd := w0 * math.Sqrt(1-h*h)
		a1 = -2 * e * math.Cos(wd*dt)
		a2 = e * e
	} else {
		wd := w0 * math.Sqrt(h*h-1)
		r1 := math.Exp((-h*w0 + wd) * dt)
		r2 := math.Exp((-h*w0 - wd) * dt)
		a1 = -(r1 + r2)
		a2 = r1 * r2
	}

	c0 := 1 / (dt * dt * gain)
	return BiquadCoefficients{B0: c0, B1: -2 * c0, B2: c0, A1: a1, A2: a2}, true
}

// RestitutionFilter removes a seismometer's instrument response in the
// time domain given its corner period T0, damping h and gain, optionally
// stabilized with a bandpass (restitution amplifies high and low
// frequency noise outside the instrument's useful band).
type RestitutionFilter[T Sample] struct {
	base
	T0, h, gain float64
	bpOrder     int
	bpFmin      float64
	bpFmax      float64
	hasBandpass bool

	core *BiquadCascade[T]
	bp   *ButterworthBandpass[T]
}

func NewRestitutionFilter[T Sample](T0, h, gain float64) *RestitutionFilter[T] {
	return &RestitutionFilter[T]{T0: T0, h: h, gain: gain}
}

func (f *RestitutionFilter[T]) SetBandpass(order int, fmin, fmax float64) {
	f.hasBandpass = true
	f.bpOrder, f.bpFmin, f.bpFmax = order, fmin, fmax
}

func (f *RestitutionFilter[T]) SetSamplingRate(hz float64) error {
	if err := f.setRate(hz); err != nil {
		return err
	}
	coeff, ok := coefficientsFromT0H(hz, f.gain, f.T0, f.h)
	if !ok {
		return ErrRateNotSet
	}
	f.core = NewBiquadCascade[T]([]BiquadCoefficients{coeff})
	if err := f.core.SetSamplingRate(hz); err != nil {
		return err
	}
	if f.hasBandpass {
		f.bp = NewButterworthBandpass[T](f.bpOrder, f.bpFmin, f.bpFmax)
		if err := f.bp.SetSamplingRate(hz); err != nil {
			return err
		}
	}
	return nil
}

func (f *RestitutionFilter[T]) Apply(samples []T) {
	f.mustRate()
	if f.bp != nil {
		f.bp.Apply(samples)
	}
	f.core.Apply(samples)
}

func (f *RestitutionFilter[T]) SetParameters(params []float64) int {
	if len(params) != 3 {
		return 3
	}
	f.T0, f.h, f.gain = params[0], params[1], params[2]
	return len(params)
}

func (f *RestitutionFilter[T]) Reset() {
	if f.core != nil {
		f.core.Reset()
	}
	if f.bp != nil {
		f.bp.Reset()
	}
}

func (f *RestitutionFilter[T]) Clone() Filter[T] {
	c := NewRestitutionFilter[T](f.T0, f.h, f.gain)
	if f.hasBandpass {
		c.SetBandpass(f.bpOrder, f.bpFmin, f.bpFmax)
	}
	if f.rateSet {
		_ = c.SetSamplingRate(f.rate)
	}
	return c
}
