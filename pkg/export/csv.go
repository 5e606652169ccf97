package export

import (
	"encoding/csv"
	"io"
	"strconv"
	"strings"

	"github.com/kilianp07/berthalloc/core/bench"
	"github.com/kilianp07/berthalloc/core/simulation"
)

// Trajectory is one named cost trajectory.
type Trajectory struct {
	Name   string
	Values []float64
}

// Risk is the labelled risk profile of one solution.
type Risk struct {
	Label   string
	Profile simulation.Profile
}

func writeCSV(w io.Writer, header []string, rows [][]string) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, r := range rows {
		if err := cw.Write(r); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func itoa(i int) string      { return strconv.Itoa(i) }
func ftoa(f float64) string  { return strconv.FormatFloat(f, 'f', -1, 64) }
func ftoa3(f float64) string { return strconv.FormatFloat(f, 'f', 3, 64) }

// WriteAssignmentsCSV writes one row per allocated vessel.
func WriteAssignmentsCSV(w io.Writer, as []Assignment) error {
	rows := make([][]string, len(as))
	for i, a := range as {
		rows[i] = []string{itoa(a.Vessel), itoa(a.Berth), itoa(a.Start), itoa(a.End), itoa(a.Handling), itoa(a.Arrival), itoa(a.Deadline), ftoa(a.Cost)}
	}
	return writeCSV(w, []string{"vessel", "berth", "start", "end", "handling", "arrival", "deadline", "cost"}, rows)
}

// WriteSchedulesCSV writes one row per berth. Free intervals are written as
// start-end pairs separated by semicolons.
func WriteSchedulesCSV(w io.Writer, ss []Schedule) error {
	rows := make([][]string, len(ss))
	for i, s := range ss {
		vessels := make([]string, len(s.Vessels))
		for k, id := range s.Vessels {
			vessels[k] = itoa(id)
		}
		free := make([]string, len(s.Free))
		for k, iv := range s.Free {
			free[k] = itoa(iv.Start) + "-" + itoa(iv.End)
		}
		rows[i] = []string{itoa(s.Berth), itoa(s.Open), itoa(s.Close), strings.Join(vessels, ";"), strings.Join(free, ";"), ftoa3(s.Utilization), itoa(s.Completion)}
	}
	return writeCSV(w, []string{"berth", "open", "close", "vessels", "free", "utilization", "completion"}, rows)
}

// WriteTrajectoriesCSV writes one row per iteration and one column per
// trajectory. Shorter trajectories leave their cells empty.
func WriteTrajectoriesCSV(w io.Writer, ts []Trajectory) error {
	header := []string{"iteration"}
	longest := 0
	for _, t := range ts {
		header = append(header, t.Name)
		longest = max(longest, len(t.Values))
	}
	rows := make([][]string, longest)
	for i := range rows {
		row := []string{itoa(i)}
		for _, t := range ts {
			cell := ""
			if i < len(t.Values) {
				cell = ftoa(t.Values[i])
			}
			row = append(row, cell)
		}
		rows[i] = row
	}
	return writeCSV(w, header, rows)
}

// WriteFrontCSV writes one row per front member.
func WriteFrontCSV(w io.Writer, front []Solution) error {
	rows := make([][]string, len(front))
	for i, s := range front {
		rows[i] = []string{itoa(i), ftoa(s.Cost), itoa(s.Completion)}
	}
	return writeCSV(w, []string{"member", "cost", "completion"}, rows)
}

// WriteRiskCSV writes the summary of every risk profile.
func WriteRiskCSV(w io.Writer, rs []Risk) error {
	rows := make([][]string, len(rs))
	for i, r := range rs {
		s := r.Profile.Summary
		rows[i] = []string{r.Label, itoa(s.N), ftoa3(s.Mean), ftoa3(s.Std), ftoa3(s.Min), ftoa3(s.Q1), ftoa3(s.Median), ftoa3(s.Q3), ftoa3(s.P95), ftoa3(s.Max)}
	}
	return writeCSV(w, []string{"label", "samples", "mean", "std", "min", "q1", "median", "q3", "p95", "max"}, rows)
}

// WriteRiskSamplesCSV writes every sample, one row per sample index and one
// column per profile.
func WriteRiskSamplesCSV(w io.Writer, rs []Risk) error {
	ts := make([]Trajectory, len(rs))
	for i, r := range rs {
		ts[i] = Trajectory{Name: r.Label, Values: r.Profile.Samples}
	}
	return WriteTrajectoriesCSV(w, ts)
}

// WriteBenchCSV writes one row per benchmarked algorithm.
func WriteBenchCSV(w io.Writer, recs []bench.Record) error {
	rows := make([][]string, len(recs))
	for i, r := range recs {
		rows[i] = []string{r.Algorithm, itoa(r.Runs), ftoa3(r.CostBest), ftoa3(r.CostMean), ftoa3(r.CostStd), ftoa3(r.CostWorst), ftoa3(r.TimeMeanMs), ftoa3(r.TimeStdMs), strconv.FormatInt(r.BestSeed, 10)}
	}
	return writeCSV(w, []string{"algorithm", "runs", "cost_best", "cost_mean", "cost_std", "cost_worst", "time_mean_ms", "time_std_ms", "best_seed"}, rows)
}
