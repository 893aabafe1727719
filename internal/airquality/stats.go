package airquality

import "math"

// summary holds the descriptive statistics of a sample.
type summary struct {
	N    int
	Mean float64
	Std  *float64 // sample standard deviation; nil when N < 2
	Min  float64
	Max  float64
}

func summarize(values []float64) summary {
	s := summary{N: len(values)}
	if s.N == 0 {
		return s
	}

	s.Min, s.Max = values[0], values[0]
	var sum float64
	for _, v := range values {
		sum += v
		s.Min = math.Min(s.Min, v)
		s.Max = math.Max(s.Max, v)
	}
	s.Mean = sum / float64(s.N)

	if s.N > 1 {
		var sq float64
		for _, v := range values {
			d := v - s.Mean
			sq += d * d
		}
		std := math.Sqrt(sq / float64(s.N-1))
		s.Std = &std
	}
	return s
}

// meanOf averages the non-nil values; nil when every value is nil.
func meanOf(values []*float64) *float64 {
	var (
		sum float64
		n   int
	)
	for _, v := range values {
		if v == nil {
			continue
		}
		sum += *v
		n++
	}
	if n == 0 {
		return nil
	}
	m := sum / float64(n)
	return &m
}
