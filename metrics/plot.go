package metrics

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
)

const (
	PerformanceChart  = "training_performance.html"
	DistributionChart = "score_distribution.html"
	distributionBins  = 100
)

// Charts holds the paths Plot wrote.
type Charts struct {
	Performance  string
	Distribution string
}

// Plot renders the moving-average reward against epsilon, and the score
// distribution, as html pages under dir.
func Plot(data *TrainingData, dir string, window int) (Charts, error) {
	if data.Episodes() == 0 {
		return Charts{}, fmt.Errorf("no episodes to plot")
	}
	if err := data.Validate(); err != nil {
		return Charts{}, err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return Charts{}, err
	}

	out := Charts{
		Performance:  filepath.Join(dir, PerformanceChart),
		Distribution: filepath.Join(dir, DistributionChart),
	}
	if err := render(out.Performance, performanceChart(data, window)); err != nil {
		return Charts{}, err
	}
	if err := render(out.Distribution, distributionChart(data.Rewards)); err != nil {
		return Charts{}, err
	}
	return out, nil
}

func render(path string, c components.Charter) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	page := components.NewPage()
	page.AddCharts(c)
	if err := page.Render(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func performanceChart(data *TrainingData, window int) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title: "Agent Performance vs. Exploration During Training",
		}),
		charts.WithInitializationOpts(opts.Initialization{
			Theme: "shine",
		}),
		charts.WithXAxisOpts(opts.XAxis{Name: "Episode"}),
		charts.WithYAxisOpts(opts.YAxis{Name: fmt.Sprintf("%d-Episode Avg Reward", window)}),
	)
	line.ExtendYAxis(opts.YAxis{Name: "Epsilon", Min: 0, Max: 1})

	n := data.Episodes()
	episodes := make([]string, 0, n)
	for i := 1; i <= n; i++ {
		episodes = append(episodes, fmt.Sprintf("%d", i))
	}
	line.SetXAxis(episodes)

	// The average for the window ending at episode i is plotted at i, so
	// the first window-1 episodes have no point.
	avg := MovingAverage(data.Rewards, window)
	rewards := make([]opts.LineData, n)
	for i := range rewards {
		rewards[i] = opts.LineData{Value: "-"}
	}
	for i, v := range avg {
		rewards[i+window-1] = opts.LineData{Value: v}
	}
	line.AddSeries("Avg. Reward", rewards)

	if len(data.Epsilons) > 0 {
		eps := make([]opts.LineData, 0, n)
		for _, v := range data.Epsilons {
			eps = append(eps, opts.LineData{Value: v})
		}
		line.AddSeries("Epsilon", eps,
			charts.WithLineChartOpts(opts.LineChart{YAxisIndex: 1}),
			charts.WithLineStyleOpts(opts.LineStyle{Type: "dashed"}),
		)
	}
	return line
}

func distributionChart(rewards []float64) *charts.Bar {
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title: "Distribution of Final Episode Scores (All Episodes)",
		}),
		charts.WithInitializationOpts(opts.Initialization{
			Theme: "shine",
		}),
		charts.WithXAxisOpts(opts.XAxis{Name: "Final Score"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Episodes"}),
	)

	edges, counts := Histogram(rewards, distributionBins)
	labels := make([]string, 0, len(counts))
	items := make([]opts.BarData, 0, len(counts))
	for i, c := range counts {
		labels = append(labels, fmt.Sprintf("%.0f", edges[i]))
		items = append(items, opts.BarData{Value: c})
	}
	bar.SetXAxis(labels).AddSeries("Frequency", items)
	return bar
}
