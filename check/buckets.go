package check

// frequency tracks how often an action occurs over a sliding window of fixed
// duration buckets. Old buckets rotate out lazily as time passes.
type frequency struct {
	buckets        []float32
	bucketDuration int64 // milliseconds
	lastShift      int64
}

func newFrequency(buckets int, bucketDuration int64) *frequency {
	return &frequency{
		buckets:        make([]float32, buckets),
		bucketDuration: bucketDuration,
	}
}

// add shifts the window to now and adds amount to the current bucket.
func (f *frequency) add(now int64, amount float32) {
	f.shift(now)
	f.buckets[0] += amount
}

// shift rotates buckets according to how much time passed since the last
// update. A backwards time jump resets the window.
func (f *frequency) shift(now int64) {
	if f.lastShift == 0 {
		f.lastShift = now
		return
	}
	if now < f.lastShift {
		clear(f.buckets)
		f.lastShift = now
		return
	}

	steps := int((now - f.lastShift) / f.bucketDuration)
	if steps <= 0 {
		return
	}
	if steps >= len(f.buckets) {
		clear(f.buckets)
	} else {
		copy(f.buckets[steps:], f.buckets[:len(f.buckets)-steps])
		for i := 0; i < steps; i++ {
			f.buckets[i] = 0
		}
	}
	f.lastShift += int64(steps) * f.bucketDuration
}

// score sums the window, weighting each older bucket by factor once more than
// the previous one. factor 1 is a plain sum.
func (f *frequency) score(factor float32) float32 {
	weight := float32(1)
	score := float32(0)
	for _, b := range f.buckets {
		score += b * weight
		weight *= factor
	}
	return score
}
