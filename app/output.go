package app

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/kilianp07/berthalloc/config"
	"github.com/kilianp07/berthalloc/core/bench"
	"github.com/kilianp07/berthalloc/core/fitness"
	"github.com/kilianp07/berthalloc/core/instance"
	"github.com/kilianp07/berthalloc/core/simulation"
	"github.com/kilianp07/berthalloc/infra/plot"
	"github.com/kilianp07/berthalloc/pkg/export"
)

// Output file names inside output.dir.
const (
	FileSolve        = "solve.json"
	FileBest         = "best.json"
	FileAssignments  = "assignments.csv"
	FileSchedules    = "schedules.csv"
	FileTrajectories = "trajectories.csv"
	FileFront        = "front.csv"
	FileRiskJSON     = "risk.json"
	FileRiskCSV      = "risk.csv"
	FileRiskSamples  = "risk_samples.csv"
	FileBenchJSON    = "bench.json"
	FileBenchCSV     = "bench.csv"
	FileReport       = "report.html"
)

type outputFile struct {
	name string
	fn   func(io.Writer) error
}

type runReport struct {
	RunID       string            `json:"run_id"`
	Algorithm   string            `json:"algorithm"`
	Best        export.Solution   `json:"best"`
	Front       []export.Solution `json:"front,omitempty"`
	Trajectory  []float64         `json:"trajectory"`
	Iterations  int               `json:"iterations"`
	Evaluations int               `json:"evaluations"`
	DurationMs  float64           `json:"duration_ms"`
	Meta        map[string]any    `json:"meta,omitempty"`
}

type riskReport struct {
	Label   string             `json:"label"`
	Summary simulation.Summary `json:"summary"`
}

type solveReport struct {
	Instance string             `json:"instance"`
	Dropped  []instance.Dropped `json:"dropped,omitempty"`
	Initial  export.Solution    `json:"initial"`
	Runs     []runReport        `json:"runs"`
	Risk     []riskReport       `json:"risk"`
}

func newSolveReport(out *Outcome) solveReport {
	rep := solveReport{
		Instance: out.Name,
		Dropped:  out.Dropped,
		Initial:  export.NewSolution("initial", out.Initial),
	}
	for _, r := range out.Results {
		rep.Runs = append(rep.Runs, runReport{
			RunID:       r.RunID,
			Algorithm:   r.Algorithm,
			Best:        export.NewSolution(r.Algorithm, r.Best),
			Front:       export.Front(r.Front),
			Trajectory:  r.Trajectory,
			Iterations:  r.Iterations,
			Evaluations: r.Evaluations,
			DurationMs:  float64(r.Duration) / float64(time.Millisecond),
			Meta:        r.Meta,
		})
	}
	for _, c := range out.Ranking {
		rep.Risk = append(rep.Risk, riskReport{Label: c.Label, Summary: c.Profile.Summary})
	}
	return rep
}

func (s *Service) writeSolve(out *Outcome) error {
	oc := s.cfg.Output
	if err := os.MkdirAll(oc.Dir, 0o755); err != nil {
		return err
	}
	best, ok := out.Best()
	if !ok {
		return nil
	}
	var (
		trajectories []export.Trajectory
		front        []export.Solution
	)
	for _, r := range out.Results {
		trajectories = append(trajectories, export.Trajectory{Name: r.Algorithm, Values: r.Trajectory})
		front = append(front, export.Front(r.Front)...)
	}

	if oc.Wants(config.FormatJSON) {
		if err := s.write(FileSolve, func(w io.Writer) error { return export.WriteJSON(w, newSolveReport(out)) }); err != nil {
			return err
		}
		if err := s.write(FileBest, func(w io.Writer) error {
			return export.WriteJSON(w, export.NewSolution(best.Algorithm, best.Best))
		}); err != nil {
			return err
		}
	}
	if oc.Wants(config.FormatCSV) {
		writes := []outputFile{
			{FileAssignments, func(w io.Writer) error { return export.WriteAssignmentsCSV(w, export.Assignments(best.Best)) }},
			{FileSchedules, func(w io.Writer) error { return export.WriteSchedulesCSV(w, export.Schedules(best.Best)) }},
			{FileTrajectories, func(w io.Writer) error { return export.WriteTrajectoriesCSV(w, trajectories) }},
		}
		if len(front) > 0 {
			writes = append(writes, outputFile{FileFront, func(w io.Writer) error { return export.WriteFrontCSV(w, front) }})
		}
		for _, wr := range writes {
			if err := s.write(wr.name, wr.fn); err != nil {
				return err
			}
		}
	}
	if err := s.writeRisk(out.Ranking); err != nil {
		return err
	}
	if !oc.Plot {
		return nil
	}
	rep := plot.Report{Title: fmt.Sprintf("%s: %d vessels", out.Name, len(out.Initial.Vessels))}
	for _, t := range trajectories {
		rep.Trajectories = append(rep.Trajectories, plot.Series{Name: t.Name, Values: t.Values})
	}
	for _, r := range out.Results {
		for _, m := range r.Front {
			rep.Front = append(rep.Front, plot.FrontPoint{Cost: fitness.TotalCost(m), Completion: fitness.CompleteTime(m)})
		}
	}
	for _, c := range out.Ranking {
		rep.Risk = append(rep.Risk, plot.Box{Label: c.Label, Summary: c.Profile.Summary})
	}
	return s.render(rep)
}

func (s *Service) writeRisk(cands []Candidate) error {
	if len(cands) == 0 {
		return nil
	}
	oc := s.cfg.Output
	if err := os.MkdirAll(oc.Dir, 0o755); err != nil {
		return err
	}
	risks := make([]export.Risk, len(cands))
	for i, c := range cands {
		risks[i] = export.Risk{Label: c.Label, Profile: c.Profile}
	}
	if oc.Wants(config.FormatJSON) {
		reports := make([]riskReport, len(cands))
		for i, c := range cands {
			reports[i] = riskReport{Label: c.Label, Summary: c.Profile.Summary}
		}
		if err := s.write(FileRiskJSON, func(w io.Writer) error { return export.WriteJSON(w, reports) }); err != nil {
			return err
		}
	}
	if oc.Wants(config.FormatCSV) {
		if err := s.write(FileRiskCSV, func(w io.Writer) error { return export.WriteRiskCSV(w, risks) }); err != nil {
			return err
		}
		if oc.RiskSamples {
			if err := s.write(FileRiskSamples, func(w io.Writer) error { return export.WriteRiskSamplesCSV(w, risks) }); err != nil {
				return err
			}
		}
	}
	return nil
}

func (s *Service) writeBench(rep bench.Report) error {
	oc := s.cfg.Output
	if err := os.MkdirAll(oc.Dir, 0o755); err != nil {
		return err
	}
	if oc.Wants(config.FormatJSON) {
		if err := s.write(FileBenchJSON, func(w io.Writer) error { return export.WriteJSON(w, rep) }); err != nil {
			return err
		}
	}
	if oc.Wants(config.FormatCSV) {
		if err := s.write(FileBenchCSV, func(w io.Writer) error { return export.WriteBenchCSV(w, rep.Records) }); err != nil {
			return err
		}
	}
	return nil
}

func (s *Service) render(rep plot.Report) error {
	path := filepath.Join(s.cfg.Output.Dir, FileReport)
	if err := plot.RenderFile(path, rep); err != nil {
		return fmt.Errorf("plot: %w", err)
	}
	s.log.Infof("wrote %s", path)
	return nil
}

func (s *Service) write(name string, fn func(io.Writer) error) (err error) {
	path := filepath.Join(s.cfg.Output.Dir, name)
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	if err := fn(f); err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	s.log.Debugf("wrote %s", path)
	return nil
}
