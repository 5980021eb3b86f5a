package matching

// Defaults applied by NewMatcher when a Config field is left at its zero
// value.
const (
	DefaultMinSimilarity        = 0.7
	DefaultQuestionWeight       = 0.6
	DefaultCategoryWeight       = 0.2
	DefaultCloseDateWeight      = 0.2
	DefaultMaxCloseDateDiffDays = 7.0
	DefaultMatchLimit           = 5
	DefaultMinClusterSize       = 2
)

// Config tunes the similarity model. Weights are not normalized: when they
// do not sum to 1 the aggregate can leave [0,1], which is accepted as long
// as the threshold is configured against the same scale.
type Config struct {
	// MinSimilarity is the aggregate score a candidate pair must reach to
	// count as a match (0–1 under default weights).
	MinSimilarity float64
	// QuestionWeight, CategoryWeight and CloseDateWeight blend the three
	// sub-scores into the aggregate.
	QuestionWeight  float64
	CategoryWeight  float64
	CloseDateWeight float64
	// MaxCloseDateDiffDays is the window over which close-date proximity
	// decays linearly from 1 to 0.
	MaxCloseDateDiffDays float64
}

// DefaultConfig returns the fully populated default configuration.
func DefaultConfig() Config {
	return Config{
		MinSimilarity:        DefaultMinSimilarity,
		QuestionWeight:       DefaultQuestionWeight,
		CategoryWeight:       DefaultCategoryWeight,
		CloseDateWeight:      DefaultCloseDateWeight,
		MaxCloseDateDiffDays: DefaultMaxCloseDateDiffDays,
	}
}

func (c Config) withDefaults() Config {
	if c.MinSimilarity <= 0 || c.MinSimilarity > 1 {
		c.MinSimilarity = DefaultMinSimilarity
	}
	if c.QuestionWeight <= 0 {
		c.QuestionWeight = DefaultQuestionWeight
	}
	if c.CategoryWeight <= 0 {
		c.CategoryWeight = DefaultCategoryWeight
	}
	if c.CloseDateWeight <= 0 {
		c.CloseDateWeight = DefaultCloseDateWeight
	}
	if c.MaxCloseDateDiffDays <= 0 {
		c.MaxCloseDateDiffDays = DefaultMaxCloseDateDiffDays
	}
	return c
}
