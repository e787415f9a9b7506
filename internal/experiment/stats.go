package experiment

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// z95 is the two-sided 95% normal quantile.
const z95 = 1.96

// Series is a per-chunk summary of many runs of one agent.
type Series struct {
	Agent   string    `json:"agent"`
	Mean    []float64 `json:"mean"`
	StdDev  []float64 `json:"std_dev"`
	CI95    []float64 `json:"ci95"`
	Samples int       `json:"samples"`
}

// Summarize reduces runs (one slice of chunk rewards per instance and
// episode) to mean, standard deviation and 95% confidence half-width per
// chunk. With cumulative set each run is summed over chunks first. Runs
// may differ in length; each chunk uses the runs that reach it.
func Summarize(agent string, runs [][]float64, cumulative bool) Series {
	s := Series{Agent: agent, Samples: len(runs)}

	var longest int
	prepared := make([][]float64, len(runs))
	for i, run := range runs {
		prepared[i] = run
		if cumulative {
			prepared[i] = floats.CumSum(make([]float64, len(run)), run)
		}
		longest = max(longest, len(run))
	}

	values := make([]float64, 0, len(runs))
	for chunk := 0; chunk < longest; chunk++ {
		values = values[:0]
		for _, run := range prepared {
			if chunk < len(run) {
				values = append(values, run[chunk])
			}
		}

		mean, sd := meanStdDev(values)
		s.Mean = append(s.Mean, mean)
		s.StdDev = append(s.StdDev, sd)
		s.CI95 = append(s.CI95, z95*sd/math.Sqrt(float64(len(values))))
	}

	return s
}

// meanStdDev is stat.MeanStdDev with a zero deviation for a single sample.
func meanStdDev(values []float64) (float64, float64) {
	if len(values) < 2 {
		return stat.Mean(values, nil), 0
	}
	return stat.MeanStdDev(values, nil)
}

// AxisDiff returns how much the dual-axis series beats the single-axis one
// per chunk. Confidence intervals combine in quadrature.
func AxisDiff(single, dual Series) (Series, error) {
	if len(single.Mean) != len(dual.Mean) {
		return Series{}, fmt.Errorf("agent %s: single axis has %d chunks, dual axis has %d",
			dual.Agent, len(single.Mean), len(dual.Mean))
	}

	d := Series{
		Agent:   dual.Agent,
		Mean:    make([]float64, len(dual.Mean)),
		StdDev:  make([]float64, len(dual.Mean)),
		CI95:    make([]float64, len(dual.Mean)),
		Samples: min(single.Samples, dual.Samples),
	}
	floats.SubTo(d.Mean, dual.Mean, single.Mean)
	for i := range d.Mean {
		d.StdDev[i] = math.Hypot(single.StdDev[i], dual.StdDev[i])
		d.CI95[i] = math.Hypot(single.CI95[i], dual.CI95[i])
	}
	return d, nil
}

// Final returns the last chunk's mean and confidence half-width.
func (s Series) Final() (mean, ci float64) {
	if len(s.Mean) == 0 {
		return 0, 0
	}
	return s.Mean[len(s.Mean)-1], s.CI95[len(s.CI95)-1]
}
