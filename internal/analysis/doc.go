// Package analysis inspects the sampled series of a run.
//
// A disk that starts slightly out of equilibrium breathes: its mean radius
// oscillates around a settled value. [Spectrum] and [Dominant] find that
// oscillation in a uniformly sampled series:
//
//	series, _ := store.LoadSeries(id)
//	peak, _ := analysis.Dominant(series.Times, series.MeanRadius)
//	fmt.Printf("period %.3f\n", peak.Period())
package analysis
