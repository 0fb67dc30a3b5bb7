package harness

import "time"

// LatencyBand is an advisory classification of response time. It never
// affects pass/fail.
type LatencyBand int

const (
	BandExcellent LatencyBand = iota // <100ms
	BandGood                         // <300ms
	BandAcceptable                   // <500ms
	BandSlow                         // >=500ms
)

func (b LatencyBand) String() string {
	switch b {
	case BandExcellent:
		return "EXCELLENT"
	case BandGood:
		return "GOOD"
	case BandAcceptable:
		return "ACCEPTABLE"
	default:
		return "SLOW"
	}
}

func ClassifyLatency(d time.Duration) LatencyBand {
	ms := d.Milliseconds()
	switch {
	case ms < 100:
		return BandExcellent
	case ms < 300:
		return BandGood
	case ms < 500:
		return BandAcceptable
	default:
		return BandSlow
	}
}
