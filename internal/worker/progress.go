package worker

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"time"
)

// Outcome classifies a finished lookup.
type Outcome int

const (
	Exact     Outcome = iota // matched at the queried point
	Approx                   // matched at a non-zero probe offset
	Unmatched                // every probe missed
	Cancelled                // not looked up before the context ended
)

func (o Outcome) String() string {
	switch o {
	case Exact:
		return "exact"
	case Approx:
		return "approx"
	case Unmatched:
		return "unmatched"
	case Cancelled:
		return "cancelled"
	}
	return fmt.Sprintf("Outcome(%d)", int(o))
}

// Classify returns the outcome of r.
func Classify(r Result) Outcome {
	switch {
	case r.Err != nil:
		return Cancelled
	case len(r.Properties) == 0:
		return Unmatched
	case r.Probe.Exact():
		return Exact
	default:
		return Approx
	}
}

// Offset is the probe displacement an approximate match was found at.
type Offset struct {
	DX, DY float64
}

// OffsetCount is the number of approximate matches found at one offset.
type OffsetCount struct {
	Offset
	Count int
}

// Tally is a point-in-time view of a batch.
type Tally struct {
	Completed int
	Total     int
	Outcomes  [4]int // indexed by Outcome
	Offsets   map[Offset]int
	Slowest   Result
}

// Count returns the number of lookups with outcome o.
func (t Tally) Count(o Outcome) int {
	return t.Outcomes[o]
}

// Matched is Exact plus Approx.
func (t Tally) Matched() int {
	return t.Outcomes[Exact] + t.Outcomes[Approx]
}

// OffsetsByCount lists the offsets that produced approximate matches, most
// frequent first. Ties are ordered by DX then DY.
func (t Tally) OffsetsByCount() []OffsetCount {
	out := make([]OffsetCount, 0, len(t.Offsets))
	for off, n := range t.Offsets {
		out = append(out, OffsetCount{Offset: off, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		if out[i].DX != out[j].DX {
			return out[i].DX < out[j].DX
		}
		return out[i].DY < out[j].DY
	})
	return out
}

// Progress accumulates pool results into a Tally and, when given a writer,
// redraws a one-line status bar on it.
type Progress struct {
	mu       sync.Mutex
	out      io.Writer
	interval time.Duration // minimum time between redraws
	start    time.Time
	lastDraw time.Time
	tally    Tally
}

// NewProgress creates a tracker for total lookups. A nil w records without drawing.
func NewProgress(total int, w io.Writer) *Progress {
	return &Progress{
		out:      w,
		interval: 100 * time.Millisecond,
		start:    time.Now(),
		tally:    Tally{Total: total, Offsets: make(map[Offset]int)},
	}
}

// Observe records one finished lookup. It has the ProgressFunc signature and
// can be passed as Config.OnProgress.
func (p *Progress) Observe(completed, total int, r Result) {
	p.mu.Lock()
	defer p.mu.Unlock()

	t := &p.tally
	t.Completed = completed
	t.Total = total

	o := Classify(r)
	t.Outcomes[o]++
	if o == Approx {
		t.Offsets[Offset{DX: r.Probe.DX, DY: r.Probe.DY}]++
	}
	if o != Cancelled && r.Elapsed > t.Slowest.Elapsed {
		t.Slowest = r
	}

	if p.out == nil {
		return
	}
	now := time.Now()
	if completed < total && now.Sub(p.lastDraw) < p.interval {
		return
	}
	p.lastDraw = now
	fmt.Fprint(p.out, p.lineLocked(now))
}

// Snapshot returns a copy of the current tally.
func (p *Progress) Snapshot() Tally {
	p.mu.Lock()
	defer p.mu.Unlock()

	t := p.tally
	t.Offsets = make(map[Offset]int, len(p.tally.Offsets))
	for k, v := range p.tally.Offsets {
		t.Offsets[k] = v
	}
	return t
}

// Done draws the final state and ends the status line.
func (p *Progress) Done() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.out == nil {
		return
	}
	fmt.Fprintln(p.out, p.lineLocked(time.Now()))
}

// lineLocked renders the status bar. The caller holds p.mu.
func (p *Progress) lineLocked(now time.Time) string {
	t := p.tally
	elapsed := now.Sub(p.start)

	const width = 30
	filled := width
	if t.Total > 0 {
		filled = t.Completed * width / t.Total
	}

	var b strings.Builder
	fmt.Fprintf(&b, "\r[%s%s] %d/%d", strings.Repeat("█", filled), strings.Repeat("░", width-filled), t.Completed, t.Total)
	fmt.Fprintf(&b, " exact %d, approx %d, unmatched %d", t.Outcomes[Exact], t.Outcomes[Approx], t.Outcomes[Unmatched])
	if n := t.Outcomes[Cancelled]; n > 0 {
		fmt.Fprintf(&b, ", cancelled %d", n)
	}

	if secs := elapsed.Seconds(); secs > 0 && t.Completed > 0 {
		rate := float64(t.Completed) / secs
		fmt.Fprintf(&b, " | %.0f/s", rate)
		if t.Completed < t.Total {
			eta := time.Duration(float64(t.Total-t.Completed) / rate * float64(time.Second))
			fmt.Fprintf(&b, " ETA %s", eta.Round(time.Second))
		}
	}
	if t.Completed == t.Total {
		fmt.Fprintf(&b, " | done in %s", elapsed.Round(time.Millisecond))
	}
	return b.String()
}

// Summary describes the batch in one sentence for the log.
func (p *Progress) Summary() string {
	t := p.Snapshot()
	elapsed := time.Since(p.start).Round(time.Millisecond)

	s := fmt.Sprintf("Resolved %d/%d points (%d exact, %d via offset probe, %d unmatched",
		t.Matched(), t.Total, t.Outcomes[Exact], t.Outcomes[Approx], t.Outcomes[Unmatched])
	if n := t.Outcomes[Cancelled]; n > 0 {
		s += fmt.Sprintf(", %d cancelled", n)
	}
	return s + ") in " + elapsed.String()
}
