package suggest

// Engine runs all registered rules against an AnalysisContext and collects
// the resulting suggestions.
type Engine struct {
	rules []Rule
}

// NewEngine creates a new suggest engine with all built-in rules registered.
func NewEngine() *Engine {
	return &Engine{
		rules: []Rule{
			OversizedFiles,
			ApproachingFileBudget,
			LongFunctions,
			ComplexFiles,
			DebtConcentration,
			ImportHubs,
			ImportFanOut,
			MetricRegression,
		},
	}
}

// Run executes all registered rules against the given context and returns
// the collected suggestions sorted by impact score (highest first). A nil
// report yields no suggestions.
func (e *Engine) Run(ctx *AnalysisContext) []Suggestion {
	if ctx == nil || ctx.Report == nil {
		return nil
	}
	var all []Suggestion
	for _, rule := range e.rules {
		all = append(all, rule(ctx)...)
	}
	return RankSuggestions(all)
}
