package filter

import "strings"

// Registry maps case-insensitive filter-expression names to constructors,
// the "explicit string-keyed registration API" called for by spec.md §9's
// design notes in place of the original's macro-based
// REGISTER_INPLACE_FILTER/class-hierarchy registration.
type Registry[T Sample] struct {
	factories map[string]func() Filter[T]
}

func NewRegistry[T Sample]() *Registry[T] {
	return &Registry[T]{factories: make(map[string]func() Filter[T])}
}

// Register associates name (matched case-insensitively by Create/Parse)
// with a zero-value constructor; SetParameters is expected to fill in the
// real configuration afterward.
func (r *Registry[T]) Register(name string, factory func() Filter[T]) {
	r.factories[strings.ToUpper(name)] = factory
}

// Create instantiates a fresh, unconfigured filter by name.
func (r *Registry[T]) Create(name string) (Filter[T], bool) {
	f, ok := r.factories[strings.ToUpper(name)]
	if !ok {
		return nil, false
	}
	return f(), true
}

// DefaultRegistry registers the catalogue of spec.md §4.2's built-in
// filters under the names used by real filter expressions (e.g.
// "BW(4,0.5,5)" for a Butterworth bandpass).
func DefaultRegistry[T Sample]() *Registry[T] {
	r := NewRegistry[T]()
	r.Register("BW", func() Filter[T] { return NewButterworthBandpass[T](0, 0, 0) })
	r.Register("BW_LP", func() Filter[T] { return NewButterworthLowpass[T](0, 0) })
	r.Register("BW_HP", func() Filter[T] { return NewButterworthHighpass[T](0, 0) })
	r.Register("BW_BS", func() Filter[T] { return NewButterworthBandstop[T](0, 0, 0) })
	r.Register("BW_HP_LP", func() Filter[T] { return NewButterworthHighLowpass[T](0, 0, 0) })
	r.Register("STALTA", func() Filter[T] { return NewSTALTA[T](2, 50) })
	r.Register("STALTA2", func() Filter[T] { return NewSTALTA2[T](2, 50, 3, 1) })
	r.Register("AVG", func() Filter[T] { return NewAverage[T](1) })
	r.Register("MIN", func() Filter[T] { return NewMin[T](1) })
	r.Register("MAX", func() Filter[T] { return NewMax[T](1) })
	r.Register("CUTOFF", func() Filter[T] { return NewCutOff[T](T(1)) })
	r.Register("RND", func() Filter[T] { return NewRandomNormal[T](0, 1, 1) })
	r.Register("RUD", func() Filter[T] { return NewRandomUniform[T](0, 1, 1) })
	r.Register("BPENV", func() Filter[T] { return NewBandPassEnvelope[T](1, 1, 4) })
	r.Register("RESTITUTION", func() Filter[T] { return NewRestitutionFilter[T](1, 1, 1) })
	return r
}
