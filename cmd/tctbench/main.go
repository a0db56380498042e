// Command tctbench drives a Tiered Commitment Tree through a synthetic
// workload — inserting commitments, closing blocks and epochs, forgetting a
// fraction of what was inserted, persisting to a storage backend, and
// rebuilding from that backend — reporting timings and a final root so the
// incremental-storage round trip can be sanity-checked against a
// from-scratch tree.
//
// Usage:
//
//	tctbench [flags]
//
// Flags:
//
//	--commitments      Total commitments to insert (default: 100000)
//	--block-size       Commitments per block before EndBlock (default: 256)
//	--epoch-size       Blocks per epoch before EndEpoch (default: 16)
//	--forget-fraction  Fraction of inserted commitments to forget (default: 0.5)
//	--backend          Storage backend: memory or pebble (default: memory)
//	--datadir          Pebble data directory, backend=pebble only
//	--verbosity        Log level 0-5 (default: 3)
//	--version          Print version and exit
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/penumbra-zone/tct/internal/telemetry"
	"github.com/penumbra-zone/tct/tct"
	"github.com/penumbra-zone/tct/tctstore"
)

// Build-time version info, overridable with ldflags:
//
//	go build -ldflags "-X main.version=v0.2.0 -X main.commit=abc1234"
var (
	version = "v0.1.0-dev"
	commit  = "unknown"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

// run is the actual entry point, returning an exit code. Accepts CLI
// arguments (without the program name) so it can be tested in isolation.
func run(args []string) int {
	cfg, exit, code := parseFlags(args)
	if exit {
		return code
	}

	log := telemetry.New(verbosityToLevel(cfg.Verbosity))
	telemetry.SetDefault(log)

	log.Info("tctbench starting",
		"version", version,
		"commitments", cfg.Commitments,
		"block_size", cfg.CommitmentsPerBlock,
		"epoch_size", cfg.BlocksPerEpoch,
		"forget_fraction", cfg.ForgetFraction,
		"backend", cfg.Backend,
	)

	kv, closeStore, err := openBackend(cfg)
	if err != nil {
		log.Error("failed to open storage backend", "error", err)
		return 1
	}
	defer closeStore()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := runWorkload(ctx, log, cfg, kv); err != nil {
		log.Error("workload failed", "error", err)
		return 1
	}

	log.Info("tctbench complete")
	return 0
}

func verbosityToLevel(v int) slog.Level {
	switch {
	case v <= 0:
		return slog.LevelError + 4 // effectively silent
	case v == 1:
		return slog.LevelError
	case v == 2:
		return slog.LevelWarn
	case v == 3:
		return slog.LevelInfo
	default:
		return slog.LevelDebug
	}
}

func openBackend(cfg config) (tctstore.KeyValueStore, func(), error) {
	switch cfg.Backend {
	case "memory":
		return tctstore.NewMemoryStore(), func() {}, nil
	case "pebble":
		ps, err := tctstore.OpenPebbleStore(cfg.DataDir)
		if err != nil {
			return nil, nil, fmt.Errorf("open pebble store at %s: %w", cfg.DataDir, err)
		}
		return ps, func() { _ = ps.Close() }, nil
	default:
		return nil, nil, fmt.Errorf("unknown backend %q (want memory or pebble)", cfg.Backend)
	}
}

// runWorkload builds a tree from cfg, persists it, rebuilds it, and
// verifies the two roots agree. ctx cancellation aborts the insertion loop
// early (a large --commitments run is otherwise uninterruptible).
func runWorkload(ctx context.Context, log *telemetry.Logger, cfg config, kv tctstore.KeyValueStore) error {
	reg := telemetry.DefaultRegistry
	insertTimer := reg.Histogram("tctbench_insert_ms")
	persistTimer := reg.Histogram("tctbench_persist_ms")
	rebuildTimer := reg.Histogram("tctbench_rebuild_ms")

	tree := tct.New()
	var inserted []tct.Commitment

	var inBlock uint64
	var blocksInEpoch uint64

	for i := uint64(0); i < cfg.Commitments; i++ {
		select {
		case <-ctx.Done():
			log.Warn("interrupted, stopping insertion early", "inserted", i)
			i = cfg.Commitments
			continue
		default:
		}

		c := tct.CommitmentFromUint64(i)
		t := telemetry.NewTimer(insertTimer)
		_, err := tree.Insert(tct.Keep, c)
		t.Stop()
		if err != nil {
			return fmt.Errorf("insert commitment %d: %w", i, err)
		}
		inserted = append(inserted, c)
		reg.Counter("tctbench_commitments_inserted").Inc()
		inBlock++

		if inBlock >= cfg.CommitmentsPerBlock {
			if err := tree.EndBlock(); err != nil {
				return fmt.Errorf("end block after commitment %d: %w", i, err)
			}
			reg.Counter("tctbench_blocks_closed").Inc()
			inBlock = 0
			blocksInEpoch++

			if blocksInEpoch >= cfg.BlocksPerEpoch {
				if err := tree.EndEpoch(); err != nil {
					return fmt.Errorf("end epoch after commitment %d: %w", i, err)
				}
				reg.Counter("tctbench_epochs_closed").Inc()
				blocksInEpoch = 0
			}
		}
	}
	if inBlock > 0 {
		if err := tree.EndBlock(); err != nil {
			return fmt.Errorf("end final block: %w", err)
		}
		reg.Counter("tctbench_blocks_closed").Inc()
	}

	forgetCount := int(float64(len(inserted)) * cfg.ForgetFraction)
	for i := 0; i < forgetCount; i++ {
		tree.Forget(inserted[i])
	}
	reg.Gauge("tctbench_forgotten").Set(int64(forgetCount))

	originalRoot := tree.Root()
	log.Info("tree built",
		"root", fmt.Sprintf("%x", originalRoot.Bytes()),
		"position", tree.Position(),
		"forgotten", tree.Forgotten(),
	)

	store := tctstore.New(kv)
	pt := telemetry.NewTimer(persistTimer)
	if err := tree.Persist(store); err != nil {
		return fmt.Errorf("persist tree: %w", err)
	}
	pt.Stop()

	rt := telemetry.NewTimer(rebuildTimer)
	rebuilt, err := tct.Rebuild(store)
	rt.Stop()
	if err != nil {
		return fmt.Errorf("rebuild tree: %w", err)
	}

	if !rebuilt.Root().Equal(originalRoot) {
		return fmt.Errorf("rebuilt root %x disagrees with original root %x", rebuilt.Root().Bytes(), originalRoot.Bytes())
	}
	log.Info("rebuild verified", "root", fmt.Sprintf("%x", rebuilt.Root().Bytes()))

	var lines []string
	reg.WriteProm(func(line string) { lines = append(lines, line) })
	for _, l := range lines {
		log.Debug("metric", "line", l)
	}
	fmt.Printf("root:            %x\n", originalRoot.Bytes())
	fmt.Printf("commitments:     %d\n", reg.Counter("tctbench_commitments_inserted").Value())
	fmt.Printf("blocks closed:   %d\n", reg.Counter("tctbench_blocks_closed").Value())
	fmt.Printf("epochs closed:   %d\n", reg.Counter("tctbench_epochs_closed").Value())
	fmt.Printf("forgotten:       %d\n", reg.Gauge("tctbench_forgotten").Value())
	fmt.Printf("insert mean ms:  %.4f\n", insertTimer.Mean())
	fmt.Printf("persist total:   %s\n", durationFromMean(persistTimer))
	fmt.Printf("rebuild total:   %s\n", durationFromMean(rebuildTimer))
	return nil
}

func durationFromMean(h *telemetry.Histogram) time.Duration {
	return time.Duration(h.Mean()) * time.Millisecond
}

// parseFlags parses CLI arguments into a config. Returns the config, whether
// the caller should exit immediately, and the exit code.
func parseFlags(args []string) (config, bool, int) {
	cfg := defaultConfig()
	fs := newFlagSet(&cfg)

	showVersion := fs.Bool("version", false, "print version and exit")

	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return cfg, true, 2
	}

	if *showVersion {
		fmt.Printf("tctbench %s (commit %s)\n", version, commit)
		return cfg, true, 0
	}

	return cfg, false, 0
}
