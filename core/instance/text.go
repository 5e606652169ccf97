package instance

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/kilianp07/berthalloc/core/model"
)

// TextForbidden is the handling value the flat text format uses for a berth
// that cannot serve a vessel.
const TextForbidden = 200

// ParseText reads the flat text format: vessel count, berth count, vessel
// arrivals, berth openings, one line of handling times per vessel, berth
// closings, vessel deadlines and vessel cost rates, one item per line.
// Blank lines are ignored.
func ParseText(r io.Reader) (*Data, error) {
	var lines []string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		if l := strings.TrimSpace(sc.Text()); l != "" {
			lines = append(lines, l)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("instance: read: %w", err)
	}
	if len(lines) < 2 {
		return nil, fmt.Errorf("instance: text needs at least 2 lines, got %d", len(lines))
	}
	nv, err := strconv.Atoi(lines[0])
	if err != nil || nv <= 0 {
		return nil, fmt.Errorf("instance: line 1: bad vessel count %q", lines[0])
	}
	nb, err := strconv.Atoi(lines[1])
	if err != nil || nb <= 0 {
		return nil, fmt.Errorf("instance: line 2: bad berth count %q", lines[1])
	}
	if want := 7 + nv; len(lines) < want {
		return nil, fmt.Errorf("instance: text needs %d lines for %d vessels, got %d", want, nv, len(lines))
	}

	p := &textParser{lines: lines}
	arrivals := p.ints(2, nv)
	openings := p.ints(3, nb)
	handling := make([][]int, nv)
	for i := range handling {
		handling[i] = p.ints(4+i, nb)
	}
	closings := p.ints(4+nv, nb)
	deadlines := p.ints(5+nv, nv)
	costs := p.floats(6+nv, nv)
	if p.err != nil {
		return nil, p.err
	}

	d := &Data{
		Berths:  make([]BerthData, nb),
		Vessels: make([]VesselData, nv),
	}
	for j := range d.Berths {
		d.Berths[j] = BerthData{Open: openings[j], Close: closings[j]}
	}
	for i := range d.Vessels {
		for j, h := range handling[i] {
			if h == TextForbidden || h < 0 {
				handling[i][j] = model.NotAllowed
			}
		}
		d.Vessels[i] = VesselData{
			Arrival:  arrivals[i],
			Deadline: deadlines[i],
			Cost:     costs[i],
			Handling: handling[i],
		}
	}
	return d, nil
}

// WriteText writes d in the flat text format.
func WriteText(w io.Writer, d *Data) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintln(bw, len(d.Vessels))
	fmt.Fprintln(bw, len(d.Berths))
	writeRow(bw, len(d.Vessels), func(i int) string { return strconv.Itoa(d.Vessels[i].Arrival) })
	writeRow(bw, len(d.Berths), func(j int) string { return strconv.Itoa(d.Berths[j].Open) })
	for _, v := range d.Vessels {
		writeRow(bw, len(v.Handling), func(j int) string {
			if v.Handling[j] <= 0 {
				return strconv.Itoa(TextForbidden)
			}
			return strconv.Itoa(v.Handling[j])
		})
	}
	writeRow(bw, len(d.Berths), func(j int) string { return strconv.Itoa(d.Berths[j].Close) })
	writeRow(bw, len(d.Vessels), func(i int) string { return strconv.Itoa(d.Vessels[i].Deadline) })
	writeRow(bw, len(d.Vessels), func(i int) string { return strconv.FormatFloat(d.Vessels[i].Cost, 'g', -1, 64) })
	return bw.Flush()
}

func writeRow(w io.Writer, n int, item func(int) string) {
	fields := make([]string, n)
	for i := range fields {
		fields[i] = item(i)
	}
	fmt.Fprintln(w, strings.Join(fields, " "))
}

// textParser keeps the first error so rows can be read back to back.
type textParser struct {
	lines []string
	err   error
}

func (p *textParser) fields(line, n int) []string {
	if p.err != nil {
		return nil
	}
	f := strings.Fields(p.lines[line])
	if len(f) != n {
		p.err = fmt.Errorf("instance: line %d: want %d values, got %d", line+1, n, len(f))
		return nil
	}
	return f
}

func (p *textParser) ints(line, n int) []int {
	f := p.fields(line, n)
	out := make([]int, n)
	for i, s := range f {
		v, err := strconv.Atoi(s)
		if err != nil && p.err == nil {
			p.err = fmt.Errorf("instance: line %d: %w", line+1, err)
		}
		out[i] = v
	}
	return out
}

func (p *textParser) floats(line, n int) []float64 {
	f := p.fields(line, n)
	out := make([]float64, n)
	for i, s := range f {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil && p.err == nil {
			p.err = fmt.Errorf("instance: line %d: %w", line+1, err)
		}
		out[i] = v
	}
	return out
}
