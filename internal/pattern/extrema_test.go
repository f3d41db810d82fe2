package pattern

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLocalMaximaSimplePeaks(t *testing.T) {
	vals := []float64{1, 3, 1, 2, 5, 2, 1, 4, 1}

	assert.Equal(t, []int{1, 4, 7}, LocalMaxima(vals, 1))
	// A wider window keeps only the dominant peak.
	assert.Equal(t, []int{4}, LocalMaxima(vals, 2))
}

func TestLocalMinimaMirrorsMaxima(t *testing.T) {
	vals := []float64{5, 1, 5, 2, 5}

	assert.Equal(t, []int{1, 3}, LocalMinima(vals, 1))
	assert.Equal(t, []int{2}, LocalMaxima(vals, 1))
}

func TestLocalExtremaPlateau(t *testing.T) {
	// Ties count: every index of a flat plateau qualifies as long as the
	// window holds nothing strictly greater.
	vals := []float64{0, 1, 3, 3, 3, 1, 0}

	assert.Equal(t, []int{2, 3, 4}, LocalMaxima(vals, 1))
	assert.Equal(t, []int{2, 3, 4}, LocalMaxima(vals, 2))
}

func TestLocalExtremaBoundariesExcluded(t *testing.T) {
	// Monotone data peaks only at the edges, which never qualify.
	rising := []float64{1, 2, 3, 4, 5, 6, 7, 8}
	assert.Nil(t, LocalMaxima(rising, 2))
	assert.Nil(t, LocalMinima(rising, 2))

	// A genuine peak too close to the edge for the window is dropped too.
	edgePeak := []float64{1, 2, 9, 2, 1, 1, 1, 1, 1}
	assert.Equal(t, []int{2}, LocalMaxima(edgePeak, 2))
	assert.Nil(t, LocalMaxima(edgePeak, 3))
}

func TestLocalExtremaDegenerateInput(t *testing.T) {
	assert.Nil(t, LocalMaxima(nil, 1))
	assert.Nil(t, LocalMaxima([]float64{1, 2}, 1))
	assert.Nil(t, LocalMaxima([]float64{1, 2, 3, 4, 5}, 0))
	assert.Nil(t, LocalMinima([]float64{1, 2, 3, 4, 5}, -1))
	// Window wider than the data.
	assert.Nil(t, LocalMaxima([]float64{1, 5, 1}, 2))
}
