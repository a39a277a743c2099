package services

// MetricsReporter receives business events from the application service.
type MetricsReporter interface {
	RecordApplicationStarted()
	RecordQuote(quote int)
	RecordValidationFailure(field string)
}

type noopMetrics struct{}

func (noopMetrics) RecordApplicationStarted()      {}
func (noopMetrics) RecordQuote(int)                {}
func (noopMetrics) RecordValidationFailure(string) {}

// NoopMetrics discards everything.
func NoopMetrics() MetricsReporter { return noopMetrics{} }
