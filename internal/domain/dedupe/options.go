package dedupe

// Option configures the in-memory deduper.
type Option func(*ring)

// WithMaxSize sets how many ids are remembered. Zero or less keeps every id.
func WithMaxSize(maxSize int) Option {
	return func(d *ring) {
		d.maxSize = maxSize
	}
}
