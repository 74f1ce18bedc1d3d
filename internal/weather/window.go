package weather

import (
	"sort"
	"time"
)

// Stride returns how many provider buckets make up one display step.
// When the bucket does not divide the step evenly the stride is rounded down, so the
// displayed points drift earlier by step mod bucket per point. Buckets larger than the
// step (e.g. whole-day sources) yield a stride of one.
func Stride(step, bucket time.Duration) int {
	if bucket <= 0 || step <= 0 {
		return 1
	}
	stride := int(step / bucket)
	if stride < 1 {
		return 1
	}
	return stride
}

// Window selects at most count points strictly after now, taking every Stride-th point.
// The whole sequence is searched, so a now close to midnight still finds tomorrow's points.
func Window(f Forecast, now time.Time, count int, step time.Duration) []ForecastPoint {
	if count <= 0 || len(f.Points) == 0 {
		return nil
	}

	start := sort.Search(len(f.Points), func(i int) bool {
		return f.Points[i].At.After(now)
	})

	stride := Stride(step, f.Bucket)
	window := make([]ForecastPoint, 0, count)
	for i := start; i < len(f.Points) && len(window) < count; i += stride {
		window = append(window, f.Points[i])
	}
	return window
}
