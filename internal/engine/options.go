package engine

type config struct {
	highWater int
}

// Option configures the resampler.
type Option func(*config)

// WithHighWater sets the number of queued input samples at which Full
// starts reporting true. Values below one are ignored.
func WithHighWater(samples int) Option {
	return func(cfg *config) {
		if samples > 0 {
			cfg.highWater = samples
		}
	}
}

func defaultConfig() config {
	return config{
		highWater: DefaultHighWater,
	}
}
