package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMeanMedianStdDev(t *testing.T) {
	nums := []float64{1, 2, 3, 4}

	assert := assert.New(t)
	assert.InDelta(2.5, Mean(nums), 0.001)
	assert.InDelta(2.5, Median(nums), 0.001)
	assert.InDelta(1.118, StdDev(nums), 0.001)

	assert.InDelta(3.0, Median([]int{1, 3, 7}), 0.001)
	assert.Equal(0.0, Mean([]int(nil)))
}

func TestEntropy(t *testing.T) {
	assert := assert.New(t)
	assert.InDelta(1.0, Entropy(map[string]int{"a": 5, "b": 5}), 0.001)
	assert.InDelta(0.0, Entropy(map[string]int{"a": 10}), 0.001)
	assert.InDelta(2.0, Entropy(map[int]int{1: 1, 2: 1, 3: 1, 4: 1}), 0.001)
	assert.Equal(0.0, Entropy(map[int]int{}))
}

func TestHistogram(t *testing.T) {
	hist := Histogram([]float64{0.5, 0.25, 0.5})
	assert.Equal(t, map[float64]int{0.5: 2, 0.25: 1}, hist)
}

func TestGetKeysSorted(t *testing.T) {
	keys := GetKeysSorted(map[string]int{"b": 1, "a": 2, "c": 3})
	assert.Equal(t, []string{"a", "b", "c"}, keys)
}
