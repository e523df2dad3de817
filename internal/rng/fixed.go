package rng

// Fixed replays a scripted list of samples, cycling when exhausted,
// and counts how many samples were drawn. Not safe for concurrent use.
type Fixed struct {
	samples []float64
	next    int
	draws   int
}

// NewFixed creates a scripted source. It panics when no samples are given.
func NewFixed(samples ...float64) *Fixed {
	if len(samples) == 0 {
		panic("rng: NewFixed needs at least one sample")
	}
	return &Fixed{samples: samples}
}

// Float64 returns the next scripted sample.
func (f *Fixed) Float64() float64 {
	v := f.samples[f.next]
	f.next = (f.next + 1) % len(f.samples)
	f.draws++
	return v
}

// Draws returns the number of samples consumed so far.
func (f *Fixed) Draws() int {
	return f.draws
}

// FixedFactory hands every stream the same scripted source.
func FixedFactory(f *Fixed) Factory {
	return func(int) Source { return f }
}
