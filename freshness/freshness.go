package freshness

//go:generate stringer -type=Freshness

// Freshness says whether the output of some unit of work from a prior build
// can be reused (Fresh) or must be rebuilt (Dirty).
type Freshness int

const (
	Fresh Freshness = iota
	Dirty
)

// Combine joins two freshness values. Once dirty, always dirty.
func (f Freshness) Combine(other Freshness) Freshness {
	if f == Dirty || other == Dirty {
		return Dirty
	}
	return Fresh
}

// Combine folds all of fs together, starting from Fresh.
func Combine(fs ...Freshness) Freshness {
	acc := Fresh
	for _, f := range fs {
		acc = acc.Combine(f)
	}
	return acc
}
