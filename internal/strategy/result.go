package strategy

// Result is the output of one Run. Context carries a human readable message
// for alert sinks and is empty when there is nothing to report.
type Result struct {
	State     State          `json:"state"`
	Timestamp int64          `json:"timestamp"`
	Custom    map[string]any `json:"custom,omitempty"`
	Context   string         `json:"context,omitempty"`
}

// Float returns a numeric Custom entry.
func (r Result) Float(key string) (float64, bool) {
	v, ok := r.Custom[key].(float64)
	return v, ok
}
