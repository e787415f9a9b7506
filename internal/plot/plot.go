// Package plot renders experiment results as an HTML page of echarts charts.
package plot

import (
	"fmt"
	"io"
	"os"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/chrissnell/suntracker/internal/experiment"
)

// Options controls what goes on the page.
type Options struct {
	Title string

	// Comparison, when set, adds a chart of dual minus single axis reward
	// per agent.
	Comparison map[string]experiment.Series
}

// RewardChart draws each series' mean with dashed 95% confidence bounds.
func RewardChart(title, yName string, series []experiment.Series) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: title}),
		charts.WithTooltipOpts(opts.Tooltip{Trigger: "axis"}),
		charts.WithXAxisOpts(opts.XAxis{Name: "hour"}),
		charts.WithYAxisOpts(opts.YAxis{Name: yName}),
	)

	n := 0
	for _, s := range series {
		n = max(n, len(s.Mean))
	}
	hours := make([]string, n)
	for i := range hours {
		hours[i] = fmt.Sprintf("%d", i)
	}
	line.SetXAxis(hours)

	dashed := charts.WithLineStyleOpts(opts.LineStyle{Type: "dashed", Opacity: opts.Float(0.5)})
	for _, s := range series {
		mean := make([]opts.LineData, len(s.Mean))
		upper := make([]opts.LineData, len(s.Mean))
		lower := make([]opts.LineData, len(s.Mean))
		for i, m := range s.Mean {
			mean[i] = opts.LineData{Value: m}
			upper[i] = opts.LineData{Value: m + s.CI95[i]}
			lower[i] = opts.LineData{Value: m - s.CI95[i]}
		}
		line.AddSeries(s.Agent, mean)
		if s.Samples > 1 {
			line.AddSeries(s.Agent+" upper 95%", upper, dashed)
			line.AddSeries(s.Agent+" lower 95%", lower, dashed)
		}
	}
	return line
}

// EnergyChart draws the mean energy split by source for each agent.
func EnergyChart(agents []string, energy map[string]experiment.Energy) *charts.Bar {
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: "Energy by source"}),
		charts.WithTooltipOpts(opts.Tooltip{Trigger: "axis"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Wh per episode"}),
	)
	bar.SetXAxis(agents)

	sources := []struct {
		name string
		get  func(experiment.Energy) float64
	}{
		{"direct", func(e experiment.Energy) float64 { return e.Direct }},
		{"diffuse", func(e experiment.Energy) float64 { return e.Diffuse }},
		{"reflective", func(e experiment.Energy) float64 { return e.Reflective }},
		{"motion", func(e experiment.Energy) float64 { return -e.Motion }},
	}
	for _, src := range sources {
		data := make([]opts.BarData, len(agents))
		for i, a := range agents {
			data[i] = opts.BarData{Value: src.get(energy[a])}
		}
		bar.AddSeries(src.name, data)
	}
	return bar
}

// Render writes the page for res to w.
func Render(w io.Writer, res *experiment.Result, o Options) error {
	title := o.Title
	if title == "" {
		title = res.Name
	}

	series := make([]experiment.Series, 0, len(res.Agents))
	for _, a := range res.Agents {
		series = append(series, res.Series[a])
	}

	page := components.NewPage()
	page.SetPageTitle(title)
	page.AddCharts(RewardChart(title, "reward", series))

	if len(o.Comparison) > 0 {
		diffs := make([]experiment.Series, 0, len(o.Comparison))
		for _, a := range res.Agents {
			if d, ok := o.Comparison[a]; ok {
				diffs = append(diffs, d)
			}
		}
		page.AddCharts(RewardChart("Dual minus single axis", "reward difference", diffs))
	}

	if len(res.Energy) > 0 {
		page.AddCharts(EnergyChart(res.Agents, res.Energy))
	}

	return page.Render(w)
}

// WriteFile renders the page for res into the file at path.
func WriteFile(path string, res *experiment.Result, o Options) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("could not create plot file: %w", err)
	}
	if err := Render(f, res, o); err != nil {
		f.Close()
		return fmt.Errorf("could not render plot: %w", err)
	}
	return f.Close()
}
