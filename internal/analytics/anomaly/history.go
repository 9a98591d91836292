package anomaly

import "github.com/procsight/procsight/internal/models"

// batchRing is a fixed-capacity circular buffer of sample batches, one
// batch per sampling pass. Appends are O(1); the oldest batch is
// evicted once the capacity is exceeded.
type batchRing struct {
	data     [][]models.ProcessMetrics
	head     int
	size     int
	capacity int
}

func newBatchRing(capacity int) *batchRing {
	return &batchRing{
		data:     make([][]models.ProcessMetrics, capacity),
		capacity: capacity,
	}
}

func (r *batchRing) push(batch []models.ProcessMetrics) {
	idx := (r.head + r.size) % r.capacity
	r.data[idx] = batch
	if r.size < r.capacity {
		r.size++
	} else {
		r.head = (r.head + 1) % r.capacity
	}
}

func (r *batchRing) len() int {
	return r.size
}

// snapshot returns the batches in chronological order. The outer slice
// is freshly allocated so callers cannot disturb ring internals.
func (r *batchRing) snapshot() [][]models.ProcessMetrics {
	out := make([][]models.ProcessMetrics, r.size)
	for i := 0; i < r.size; i++ {
		out[i] = r.data[(r.head+i)%r.capacity]
	}
	return out
}

// flatten returns one feature vector per sample across all batches, in
// batch order then intra-batch order.
func (r *batchRing) flatten() [][]float64 {
	var rows [][]float64
	for i := 0; i < r.size; i++ {
		for _, p := range r.data[(r.head+i)%r.capacity] {
			rows = append(rows, p.FeatureVector())
		}
	}
	return rows
}
