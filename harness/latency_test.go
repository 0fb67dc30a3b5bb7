package harness

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLatencyBands(t *testing.T) {
	assert.Equal(t, BandExcellent, ClassifyLatency(50*time.Millisecond))
	assert.Equal(t, BandExcellent, ClassifyLatency(99*time.Millisecond))
	assert.Equal(t, BandGood, ClassifyLatency(100*time.Millisecond))
	assert.Equal(t, BandGood, ClassifyLatency(299*time.Millisecond))
	assert.Equal(t, BandAcceptable, ClassifyLatency(300*time.Millisecond))
	assert.Equal(t, BandAcceptable, ClassifyLatency(499*time.Millisecond))
	assert.Equal(t, BandSlow, ClassifyLatency(500*time.Millisecond))
	assert.Equal(t, BandSlow, ClassifyLatency(2*time.Second))
}

func TestLatencyBandNames(t *testing.T) {
	assert.Equal(t, "EXCELLENT", BandExcellent.String())
	assert.Equal(t, "GOOD", BandGood.String())
	assert.Equal(t, "ACCEPTABLE", BandAcceptable.String())
	assert.Equal(t, "SLOW", BandSlow.String())
}
