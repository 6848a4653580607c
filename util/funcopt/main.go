package funcopt

type (
	// O is the interface implemented by functional options.
	O interface {
		Apply(t interface{}) error
	}

	// F wraps a function so it can be used as a functional option.
	F func(t interface{}) error
)

func (f F) Apply(t interface{}) error {
	return f(t)
}

// Apply applies the options to t, stopping at the first error.
func Apply(t interface{}, opts ...O) error {
	for _, opt := range opts {
		if err := opt.Apply(t); err != nil {
			return err
		}
	}
	return nil
}
