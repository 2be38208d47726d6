package timeseries

// ComputeEWMA returns the exponentially weighted moving average of the
// series. alpha=1 reproduces the input; alpha near 0 approaches a constant
// at the first value. No minimum length: empty in, empty out.
func ComputeEWMA(values []float64, alpha float64) []float64 {
	if len(values) == 0 {
		return nil
	}
	out := make([]float64, len(values))
	out[0] = values[0]
	for i := 1; i < len(values); i++ {
		out[i] = alpha*values[i] + (1-alpha)*out[i-1]
	}
	return out
}
