// Package plot renders search results as standalone HTML charts with
// go-echarts.
package plot

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/go-echarts/go-echarts/v2/types"

	"github.com/kilianp07/berthalloc/core/simulation"
)

// Series is one named cost trajectory.
type Series struct {
	Name   string
	Values []float64
}

// FrontPoint is one Pareto front member.
type FrontPoint struct {
	Cost       float64
	Completion int
}

// Box is the sampled cost distribution of one solution.
type Box struct {
	Label   string
	Summary simulation.Summary
}

// Report groups the charts of one run. Empty sections are skipped.
type Report struct {
	Title        string
	Trajectories []Series
	Front        []FrontPoint
	Risk         []Box
}

var errEmpty = errors.New("plot: nothing to draw")

func globals(title, xName, yName string) []charts.GlobalOpts {
	return []charts.GlobalOpts{
		charts.WithInitializationOpts(opts.Initialization{PageTitle: title, Theme: types.ThemeWesteros}),
		charts.WithTitleOpts(opts.Title{Title: title}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Name: xName, SplitLine: &opts.SplitLine{Show: opts.Bool(true)}}),
		charts.WithYAxisOpts(opts.YAxis{Name: yName, SplitLine: &opts.SplitLine{Show: opts.Bool(true)}}),
	}
}

// TrajectoryChart draws best cost per iteration, one line per series.
func TrajectoryChart(title string, series []Series) (*charts.Line, error) {
	longest := 0
	for _, s := range series {
		longest = max(longest, len(s.Values))
	}
	if longest == 0 {
		return nil, errEmpty
	}
	x := make([]string, longest)
	for i := range x {
		x[i] = strconv.Itoa(i)
	}
	line := charts.NewLine()
	line.SetGlobalOptions(globals(title, "iteration", "best cost")...)
	line.SetXAxis(x)
	for _, s := range series {
		data := make([]opts.LineData, len(s.Values))
		for i, v := range s.Values {
			data[i] = opts.LineData{Value: v}
		}
		line.AddSeries(s.Name, data)
	}
	line.SetSeriesOptions(charts.WithLineChartOpts(opts.LineChart{ShowSymbol: opts.Bool(false)}))
	return line, nil
}

// FrontChart scatters the Pareto front in the cost/completion plane.
func FrontChart(title string, front []FrontPoint) (*charts.Scatter, error) {
	if len(front) == 0 {
		return nil, errEmpty
	}
	data := make([]opts.ScatterData, len(front))
	for i, p := range front {
		data[i] = opts.ScatterData{
			Value:      []float64{p.Cost, float64(p.Completion)},
			Symbol:     "circle",
			SymbolSize: 10,
		}
	}
	scatter := charts.NewScatter()
	scatter.SetGlobalOptions(globals(title, "total cost", "completion time")...)
	scatter.AddSeries("front", data).
		SetSeriesOptions(charts.WithLabelOpts(opts.Label{Show: opts.Bool(false)}))
	return scatter, nil
}

// RiskChart draws one box per solution from its five-number summary.
func RiskChart(title string, boxes []Box) (*charts.BoxPlot, error) {
	if len(boxes) == 0 {
		return nil, errEmpty
	}
	labels := make([]string, len(boxes))
	data := make([]opts.BoxPlotData, len(boxes))
	means := make([]opts.LineData, len(boxes))
	for i, b := range boxes {
		s := b.Summary
		labels[i] = b.Label
		data[i] = opts.BoxPlotData{Value: []float64{s.Min, s.Q1, s.Median, s.Q3, s.Max}}
		means[i] = opts.LineData{Value: s.Mean}
	}
	box := charts.NewBoxPlot()
	box.SetGlobalOptions(globals(title, "solution", "sampled cost")...)
	box.SetXAxis(labels).AddSeries("sampled cost", data)

	mean := charts.NewLine()
	mean.SetXAxis(labels).AddSeries("mean", means)
	box.Overlap(mean)
	return box, nil
}

// Render writes every non-empty section of r as one HTML page.
func Render(w io.Writer, r Report) error {
	page := components.NewPage()
	page.PageTitle = r.Title
	n := 0
	if c, err := TrajectoryChart(r.Title+": trajectory", r.Trajectories); err == nil {
		page.AddCharts(c)
		n++
	}
	if c, err := FrontChart(r.Title+": Pareto front", r.Front); err == nil {
		page.AddCharts(c)
		n++
	}
	if c, err := RiskChart(r.Title+": risk", r.Risk); err == nil {
		page.AddCharts(c)
		n++
	}
	if n == 0 {
		return errEmpty
	}
	return page.Render(w)
}

// RenderFile writes the report page to path.
func RenderFile(path string, r Report) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("plot: %w", err)
	}
	if err := Render(f, r); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
