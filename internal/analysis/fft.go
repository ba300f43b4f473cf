package analysis

import (
	"errors"
	"math"
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
	"gonum.org/v1/gonum/stat"
)

var (
	ErrShortSeries = errors.New("analysis: series needs at least 4 samples")
	ErrTimeAxis    = errors.New("analysis: time axis must be strictly increasing and uniformly spaced")
)

// spacingTolerance is the relative deviation allowed between sample
// intervals.
const spacingTolerance = 1e-4

// PowerSpectrum returns the magnitude of the first half of the DFT of data
// after removing its mean.
func PowerSpectrum(data []float64) []float64 {
	if len(data) == 0 {
		return nil
	}
	mean := stat.Mean(data, nil)
	centered := make([]float64, len(data))
	for i, v := range data {
		centered[i] = v - mean
	}

	coeffs := fft.FFTReal(centered)
	ps := make([]float64, len(coeffs)/2)
	for i := range ps {
		ps[i] = cmplx.Abs(coeffs[i])
	}
	return ps
}

// Peak is one bin of a spectrum.
type Peak struct {
	Frequency float64
	Power     float64
}

func (p Peak) Period() float64 {
	if p.Frequency == 0 {
		return math.Inf(1)
	}
	return 1 / p.Frequency
}

// Spectrum pairs each bin of PowerSpectrum(values) with its frequency.
// times must be strictly increasing and uniformly spaced. A shorter final
// interval, as left by a run whose step count is not a multiple of its
// sampling period, is dropped together with its sample.
func Spectrum(times, values []float64) ([]Peak, error) {
	if len(times) != len(values) {
		return nil, ErrShortSeries
	}
	times, values, err := uniform(times, values)
	if err != nil {
		return nil, err
	}

	step := times[1] - times[0]
	ps := PowerSpectrum(values)
	df := 1 / (step * float64(len(values)))
	peaks := make([]Peak, len(ps))
	for i, p := range ps {
		peaks[i] = Peak{Frequency: float64(i) * df, Power: p}
	}
	return peaks, nil
}

func uniform(times, values []float64) ([]float64, []float64, error) {
	if len(times) < 4 {
		return nil, nil, ErrShortSeries
	}
	for i := 1; i < len(times); i++ {
		if !(times[i] > times[i-1]) {
			return nil, nil, ErrTimeAxis
		}
	}

	n := len(times)
	step := times[1] - times[0]
	if last := times[n-1] - times[n-2]; last < step*(1-spacingTolerance) {
		times, values = times[:n-1], values[:n-1]
		if len(times) < 4 {
			return nil, nil, ErrShortSeries
		}
	}
	for i := 1; i < len(times); i++ {
		if math.Abs(times[i]-times[i-1]-step) > step*spacingTolerance {
			return nil, nil, ErrTimeAxis
		}
	}
	return times, values, nil
}

// Dominant returns the strongest non-zero frequency of the series.
func Dominant(times, values []float64) (Peak, error) {
	peaks, err := Spectrum(times, values)
	if err != nil {
		return Peak{}, err
	}
	best := Peak{}
	for _, p := range peaks[1:] {
		if p.Power > best.Power {
			best = p
		}
	}
	return best, nil
}
