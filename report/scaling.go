package report

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"gonum.org/v1/gonum/stat"
)

// Measurement is the timing of a variant with a given worker count.
type Measurement struct {
	Workers int
	// Elapsed is the mean wall time over Runs repetitions.
	Elapsed time.Duration
	// StdDev is the sample standard deviation of the repetitions (0 for a
	// single run).
	StdDev time.Duration
	Runs   int
	// PeakRSS is the process peak resident set size in bytes after the runs
	// (0 when unknown).
	PeakRSS int64
}

// Summarize reduces repeated timings of one worker count to a Measurement.
func Summarize(workers int, samples []time.Duration) Measurement {
	m := Measurement{Workers: workers, Runs: len(samples)}
	if len(samples) == 0 {
		return m
	}

	xs := make([]float64, len(samples))
	for i, d := range samples {
		xs[i] = d.Seconds()
	}

	if len(xs) == 1 {
		m.Elapsed = samples[0]
		return m
	}

	mean, std := stat.MeanStdDev(xs, nil)
	m.Elapsed = fromSeconds(mean)
	m.StdDev = fromSeconds(std)
	return m
}

func fromSeconds(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}

// ScalingRow is one line of the scaling table.
type ScalingRow struct {
	Processors int
	Seconds    float64
	StdDev     float64
	Speedup    float64
	Efficiency float64
	PeakRSS    int64
}

// Scaling derives speedup and efficiency from measurements. The first
// measurement is the baseline T1: speedup = T1/Tp, efficiency = speedup/p.
// A row with zero elapsed time or zero workers gets zero speedup/efficiency.
func Scaling(ms []Measurement) []ScalingRow {
	rows := make([]ScalingRow, 0, len(ms))
	if len(ms) == 0 {
		return rows
	}

	t1 := ms[0].Elapsed.Seconds()
	for _, m := range ms {
		row := ScalingRow{
			Processors: m.Workers,
			Seconds:    m.Elapsed.Seconds(),
			StdDev:     m.StdDev.Seconds(),
			PeakRSS:    m.PeakRSS,
		}
		if row.Seconds > 0 {
			row.Speedup = t1 / row.Seconds
		}
		if m.Workers > 0 {
			row.Efficiency = row.Speedup / float64(m.Workers)
		}
		rows = append(rows, row)
	}
	return rows
}

// WriteScaling prints rows as an aligned table.
func WriteScaling(w io.Writer, rows []ScalingRow) error {
	tw := tabwriter.NewWriter(w, 0, 8, 2, ' ', 0)
	fmt.Fprintln(tw, "Processors\tTime\tStddev\tSpeedup\tEfficiency\tPeak RSS")
	for _, r := range rows {
		std := "-"
		if r.StdDev > 0 {
			std = fmt.Sprintf("%.2f", r.StdDev)
		}
		rss := "-"
		if r.PeakRSS > 0 {
			rss = fmt.Sprintf("%.1f MiB", float64(r.PeakRSS)/(1<<20))
		}
		fmt.Fprintf(tw, "%d\t%.2f\t%s\t%.2f\t%.2f\t%s\n", r.Processors, r.Seconds, std, r.Speedup, r.Efficiency, rss)
	}
	return tw.Flush()
}
