package packetizer

import (
	"context"
	"log/slog"
	"runtime"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sys/cpu"

	"github.com/coregx/packetizer/deps"
	"github.com/coregx/packetizer/dfa/resource"
	"github.com/coregx/packetizer/mir"
)

// Backend creates the per-block state of a target: a fresh resource
// automaton and a policy bound to it. Implementations share their immutable
// tables between the automata they create.
type Backend interface {
	NewAutomaton() (*resource.Automaton, error)
	NewPolicy(tracker *resource.Automaton) Policy
}

// RunConfig configures Run.
type RunConfig struct {
	// Workers bounds the number of blocks packetized at once.
	// Zero or negative means runtime.GOMAXPROCS(0).
	Workers int

	// Logger receives per-block debug records. Nil discards them.
	Logger *slog.Logger

	// AliasAnalysis is passed to the dependence graph builder.
	AliasAnalysis deps.AliasAnalysis
}

// blockStats is one block's statistics slot. Each worker's Packetizer
// counts into its slot for every instruction it examines, so slots are
// padded to their own cache lines.
type blockStats struct {
	_     cpu.CacheLinePad
	stats Stats
	_     cpu.CacheLinePad
}

// Run packetizes the blocks of fn concurrently and returns the combined
// statistics.
//
// Every block gets its own automaton and policy from be. Blocks run to
// completion once started; ctx is checked before each block. The first
// error cancels the blocks that have not started and is returned.
func Run(ctx context.Context, fn *mir.Function, be Backend, cfg RunConfig) (Stats, error) {
	workers := cfg.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	slots := make([]blockStats, len(fn.Blocks))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, b := range fn.Blocks {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			tracker, err := be.NewAutomaton()
			if err != nil {
				return err
			}
			p := New(fn, tracker, be.NewPolicy(tracker),
				WithAliasAnalysis(cfg.AliasAnalysis),
				WithLogger(logger.With("worker_block", i)),
				withStats(&slots[i].stats))
			return p.PacketizeBlock(b)
		})
	}
	if err := g.Wait(); err != nil {
		return Stats{}, err
	}

	var total Stats
	for i := range slots {
		total.Add(slots[i].stats)
	}
	return total, nil
}
