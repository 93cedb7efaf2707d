package renderer

// RenderStats tracks work done during a render
type RenderStats struct {
	TotalRays      int     // Rays composited
	TotalSamples   int64   // Field evaluations across all phases
	AverageSamples float64 // Field evaluations per ray
}

// finalize derives the average once the totals are complete
func (s *RenderStats) finalize() {
	if s.TotalRays > 0 {
		s.AverageSamples = float64(s.TotalSamples) / float64(s.TotalRays)
	}
}

// merge folds another stats block into this one
func (s *RenderStats) merge(other RenderStats) {
	s.TotalRays += other.TotalRays
	s.TotalSamples += other.TotalSamples
	s.finalize()
}
