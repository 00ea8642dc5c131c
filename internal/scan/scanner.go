// Package scan runs frame searches across ranges of candidate origin seeds.
// A single creature record is searched once per origin seed; hits are the
// frames that survive the lead allow-list and the optional script predicate.
package scan

import (
	"context"
	"fmt"
	"runtime"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/shopspring/decimal"

	"github.com/solleo1989/framefinder/internal/filterscript"
	"github.com/solleo1989/framefinder/internal/frame"
	"github.com/solleo1989/framefinder/internal/pidiv"
	"github.com/solleo1989/framefinder/internal/rng"
)

// EngineVersion identifies the scan semantics; bump on any change to frame
// emission order or content.
const EngineVersion = "framefinder-1.0.0"

// ScanRequest describes a range scan: the creature's recorded data plus the
// contiguous origin-seed window to search.
type ScanRequest struct {
	Method      string   `json:"method"`
	Version     string   `json:"version"`
	PID         uint32   `json:"pid"`
	GenderRatio uint8    `json:"gender_ratio"`
	SeedStart   uint32   `json:"seed_start"`
	SeedEnd     uint32   `json:"seed_end"`
	Leads       []string `json:"leads,omitempty"`
	Script      string   `json:"script,omitempty"`
	Limit       int      `json:"limit,omitempty"`
	TimeoutMs   int      `json:"timeout_ms,omitempty"`
}

// Hit is one surviving frame, keyed by the origin seed it was found under.
type Hit struct {
	OriginSeed uint32 `json:"origin_seed"`
	FrameSeed  uint32 `json:"frame_seed"`
	ESV        uint16 `json:"esv"`
	Lead       string `json:"lead"`

	index int // emission position within its origin seed's sequence
}

// Summary aggregates a completed scan.
type Summary struct {
	TotalEvaluated uint64 `json:"total_evaluated"`
	HitsFound      int    `json:"hits_found"`
	HitRate        string `json:"hit_rate"`
	TimedOut       bool   `json:"timed_out,omitempty"`
}

// ScanResult is the complete outcome of one Scan call.
type ScanResult struct {
	Hits          []Hit       `json:"hits"`
	Summary       Summary     `json:"summary"`
	EngineVersion string      `json:"engine_version"`
	Echo          ScanRequest `json:"echo"`
}

type scanJob struct {
	start, end uint32
}

// Scanner performs parallel range scans. Safe for concurrent use.
type Scanner struct {
	workerCount int
}

// NewScanner sizes the worker pool to the available CPUs.
func NewScanner() *Scanner {
	return &Scanner{workerCount: runtime.GOMAXPROCS(0)}
}

// Scan searches every origin seed in [SeedStart, SeedEnd]. Hits are returned
// sorted by origin seed and emission position, so the result is deterministic
// regardless of worker interleaving; the Limit is applied after that ordering.
func (s *Scanner) Scan(ctx context.Context, req ScanRequest) (*ScanResult, error) {
	method, err := pidiv.ParseMethod(req.Method)
	if err != nil {
		return nil, ErrUnknownMethod
	}
	version, err := pidiv.ParseVersion(req.Version)
	if err != nil {
		return nil, ErrUnknownVersion
	}
	if req.SeedStart > req.SeedEnd {
		return nil, ErrInvalidRange
	}

	allowed, err := parseLeadFilter(req.Leads)
	if err != nil {
		return nil, err
	}

	var prog *filterscript.Program
	if req.Script != "" {
		prog, err = filterscript.Compile(req.Script)
		if err != nil {
			return nil, fmt.Errorf("invalid script: %w", err)
		}
	}

	if req.TimeoutMs > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(req.TimeoutMs)*time.Millisecond)
		defer cancel()
	}

	entity := pidiv.Entity{PID: req.PID, Version: version, GenderRatio: req.GenderRatio}

	jobs := make(chan scanJob, s.workerCount*2)
	results := make(chan []Hit, s.workerCount*2)

	var evaluated uint64
	var wg sync.WaitGroup
	for i := 0; i < s.workerCount; i++ {
		w := &worker{
			jobs:      jobs,
			results:   results,
			method:    method,
			entity:    entity,
			allowed:   allowed,
			prog:      prog,
			evaluated: &evaluated,
		}
		wg.Add(1)
		go w.run(ctx, &wg)
	}

	go generateJobs(ctx, jobs, req.SeedStart, req.SeedEnd)

	done := make(chan struct{})
	var hits []Hit
	go func() {
		defer close(done)
		for batch := range results {
			hits = append(hits, batch...)
		}
	}()

	wg.Wait()
	close(results)
	<-done

	sort.Slice(hits, func(i, j int) bool {
		if hits[i].OriginSeed != hits[j].OriginSeed {
			return hits[i].OriginSeed < hits[j].OriginSeed
		}
		return hits[i].index < hits[j].index
	})
	if req.Limit > 0 && len(hits) > req.Limit {
		hits = hits[:req.Limit]
	}
	if hits == nil {
		hits = []Hit{}
	}

	total := atomic.LoadUint64(&evaluated)
	return &ScanResult{
		Hits: hits,
		Summary: Summary{
			TotalEvaluated: total,
			HitsFound:      len(hits),
			HitRate:        hitRate(len(hits), total),
			TimedOut:       ctx.Err() == context.DeadlineExceeded,
		},
		EngineVersion: EngineVersion,
		Echo:          req,
	}, nil
}

// hitRate reports hits per evaluated seed as an exact decimal string.
func hitRate(hits int, evaluated uint64) string {
	if evaluated == 0 {
		return "0"
	}
	n := decimal.NewFromInt(int64(hits))
	d := decimal.NewFromInt(int64(evaluated))
	return n.DivRound(d, 9).String()
}

func parseLeadFilter(names []string) (map[frame.Lead]bool, error) {
	if len(names) == 0 {
		return nil, nil // nil means every lead is allowed
	}
	allowed := make(map[frame.Lead]bool, len(names))
	for _, name := range names {
		lead, err := frame.ParseLead(name)
		if err != nil {
			return nil, ErrInvalidLead
		}
		allowed[lead] = true
	}
	return allowed, nil
}

type worker struct {
	jobs      <-chan scanJob
	results   chan<- []Hit
	method    pidiv.Method
	entity    pidiv.Entity
	allowed   map[frame.Lead]bool
	prog      *filterscript.Program
	evaluated *uint64
}

func (w *worker) run(ctx context.Context, wg *sync.WaitGroup) {
	defer wg.Done()

	var eval *filterscript.Evaluator
	if w.prog != nil {
		eval = w.prog.Evaluator()
	}

	for {
		select {
		case job, ok := <-w.jobs:
			if !ok {
				return
			}
			w.processJob(ctx, job, eval)
		case <-ctx.Done():
			return
		}
	}
}

func (w *worker) processJob(ctx context.Context, job scanJob, eval *filterscript.Evaluator) {
	var batch []Hit
	for seed := job.start; ; seed++ {
		select {
		case <-ctx.Done():
			return
		default:
		}

		p := pidiv.Result{Type: w.method, OriginSeed: seed, RNG: rng.Standard}
		idx := 0
		for f := range frame.Find(p, w.entity) {
			if w.keep(f, eval) {
				batch = append(batch, Hit{
					OriginSeed: seed,
					FrameSeed:  f.Seed,
					ESV:        f.ESV,
					Lead:       f.Lead.String(),
					index:      idx,
				})
			}
			idx++
		}
		atomic.AddUint64(w.evaluated, 1)

		if seed == job.end {
			break
		}
	}
	if len(batch) > 0 {
		select {
		case w.results <- batch:
		case <-ctx.Done():
		}
	}
}

// keep applies the lead allow-list and the script predicate. A frame whose
// script evaluation errors is dropped.
func (w *worker) keep(f frame.Frame, eval *filterscript.Evaluator) bool {
	if w.allowed != nil && !w.allowed[f.Lead] {
		return false
	}
	if eval != nil {
		ok, err := eval.Keep(f.Seed, f.ESV, f.Lead.String())
		if err != nil || !ok {
			return false
		}
	}
	return true
}

// generateJobs slices the seed range into batches. Batch size trades channel
// traffic against load balance; the range arithmetic is careful about the
// wraparound at 0xFFFFFFFF.
func generateJobs(ctx context.Context, jobs chan<- scanJob, start, end uint32) {
	defer close(jobs)

	const batchSize = 4096
	cur := start
	for {
		batchEnd := cur + batchSize - 1
		if batchEnd < cur || batchEnd > end {
			batchEnd = end
		}
		select {
		case jobs <- scanJob{start: cur, end: batchEnd}:
		case <-ctx.Done():
			return
		}
		if batchEnd == end {
			return
		}
		cur = batchEnd + 1
	}
}
