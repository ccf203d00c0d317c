package engine

// DiffConfig holds the numeric and naming parameters of the explanation
// engine setters spec.md §4.5 step 3 lists (ratio metric name, max order, min
// support, min ratio, thread count), carried as a validated value rather
// than a sequence of setter calls. The outlier column name and attribute
// list are not part of it; runExplain sets those on the engine directly.
type DiffConfig struct {
	RatioMetric string
	MaxOrder    int
	MinSupport  float64
	MinRatio    float64
	Threads     int
}

// Validate rejects configurations the explanation engine cannot act on.
func (c DiffConfig) Validate() error {
	if c.RatioMetric == "" {
		return errf(ParseOrShapeError, "diff-config", "", "ratio metric name must not be empty")
	}
	if c.MaxOrder < 1 {
		return errf(ParseOrShapeError, "diff-config", "", "max order must be >= 1, got %d", c.MaxOrder)
	}
	return nil
}
