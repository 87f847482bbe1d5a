package driven

// AdmissionMonitor is an externally owned load signal the engine consults
// before doing work. The engine only reads from it; implementations must be
// safe for concurrent use.
type AdmissionMonitor interface {
	// CognitiveOverload reports whether new ingestion should be deferred.
	CognitiveOverload() bool

	// AssessComplexity scores how demanding a query is, from 0 upwards.
	AssessComplexity(text string) float64
}
