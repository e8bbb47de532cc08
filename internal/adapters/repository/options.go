package repository

import "time"

// Option applies a configuration option to the Directory.
type Option func(*Directory)

// WithClock sets the time source used to stamp assignments.
func WithClock(now func() time.Time) Option {
	return func(d *Directory) {
		if now != nil {
			d.now = now
		}
	}
}

// WithIDGenerator sets the function that produces assignment identifiers.
func WithIDGenerator(gen func() string) Option {
	return func(d *Directory) {
		if gen != nil {
			d.newID = gen
		}
	}
}
