package scoring

// Option applies a configuration option to the Engine.
type Option func(*Engine)

// WithWeights sets the skill-fit and load-factor weights of the composite score.
// Negative weights and an all-zero pair are ignored.
func WithWeights(skill, load float64) Option {
	return func(e *Engine) {
		if skill < 0 || load < 0 || skill+load == 0 {
			return
		}
		e.skillWeight = skill
		e.loadWeight = load
	}
}

// WithTopN sets how many recommendations Recommend returns.
func WithTopN(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.topN = n
		}
	}
}
