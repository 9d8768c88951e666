package cluster

// mosBreakpoints are the upper edges of the Q bins scored 1..5.
var mosBreakpoints = [...]float64{0.0, 0.5, 0.6, 0.8, 0.9, 1.0}

// MOSFromQ maps the fair-share quality Q to a Mean Opinion Score in 1..5:
// the score is i such that breakpoint[i-1] < Q <= breakpoint[i]. Q <= 0
// scores 1 and Q > 1 scores 5.
func MOSFromQ(q float64) int {
	for i := 1; i < len(mosBreakpoints); i++ {
		if q <= mosBreakpoints[i] {
			return i
		}
	}
	return len(mosBreakpoints) - 1
}
