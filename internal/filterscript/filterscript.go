// Package filterscript evaluates user-supplied JavaScript predicates over
// candidate frames. A scan request may carry a single expression such as
// `esv % 100 < 20 && lead === "none"`; frames for which it is falsy are
// dropped from the results.
package filterscript

import (
	"fmt"
	"time"

	"github.com/dop251/goja"
)

// evalTimeout bounds a single predicate evaluation. Scans evaluate the
// predicate per frame, so a runaway script must be cut off quickly.
const evalTimeout = 50 * time.Millisecond

// Program is a compiled predicate, safe to share across workers. Each worker
// obtains its own Evaluator since a goja runtime is single-threaded.
type Program struct {
	prog *goja.Program
	src  string
}

// Compile parses the predicate once. Compile errors surface here so request
// validation can reject bad scripts before any scan work starts.
func Compile(src string) (*Program, error) {
	prog, err := goja.Compile("filter", src, true)
	if err != nil {
		return nil, fmt.Errorf("compile filter script: %w", err)
	}
	return &Program{prog: prog, src: src}, nil
}

// Source returns the original predicate text.
func (p *Program) Source() string { return p.src }

// Evaluator runs a compiled predicate in its own sandboxed runtime. Not safe
// for concurrent use; create one per goroutine.
type Evaluator struct {
	vm   *goja.Runtime
	prog *goja.Program
}

// Evaluator creates a fresh runtime for the program. The runtime has no host
// access; only the per-frame globals are visible to the script.
func (p *Program) Evaluator() *Evaluator {
	return &Evaluator{vm: goja.New(), prog: p.prog}
}

// Keep evaluates the predicate against one frame. The value of the script's
// final expression, coerced to boolean, decides whether the frame is kept.
func (e *Evaluator) Keep(seed uint32, esv uint16, lead string) (bool, error) {
	e.vm.Set("seed", seed)
	e.vm.Set("esv", esv)
	e.vm.Set("lead", lead)

	timer := time.AfterFunc(evalTimeout, func() {
		e.vm.Interrupt("filter script timeout")
	})
	defer timer.Stop()

	v, err := e.vm.RunProgram(e.prog)
	if err != nil {
		return false, fmt.Errorf("run filter script: %w", err)
	}
	return v.ToBoolean(), nil
}
