package main

import (
	"flag"
	"fmt"
	"strconv"
)

// flagSet wraps flag.FlagSet to add support for uint64 flags, which the
// standard flag package does not provide directly.
type flagSet struct {
	*flag.FlagSet
}

func newCustomFlagSet(name string) *flagSet {
	return &flagSet{FlagSet: flag.NewFlagSet(name, flag.ContinueOnError)}
}

func (fs *flagSet) Uint64Var(p *uint64, name string, value uint64, usage string) {
	fs.FlagSet.Var(&uint64Value{p: p}, name, usage)
	*p = value
}

type uint64Value struct {
	p *uint64
}

func (v *uint64Value) String() string {
	if v.p == nil {
		return "0"
	}
	return strconv.FormatUint(*v.p, 10)
}

func (v *uint64Value) Set(s string) error {
	n, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid uint64 value %q", s)
	}
	*v.p = n
	return nil
}

// config holds tctbench's resolved flags.
type config struct {
	Commitments     uint64
	CommitmentsPerBlock uint64
	BlocksPerEpoch  uint64
	ForgetFraction  float64
	Backend         string
	DataDir         string
	Verbosity       int
}

func defaultConfig() config {
	return config{
		Commitments:         100000,
		CommitmentsPerBlock: 256,
		BlocksPerEpoch:      16,
		ForgetFraction:      0.5,
		Backend:             "memory",
		DataDir:             "./tctbench-data",
		Verbosity:           3,
	}
}

func newFlagSet(cfg *config) *flagSet {
	fs := newCustomFlagSet("tctbench")
	fs.Uint64Var(&cfg.Commitments, "commitments", cfg.Commitments, "total commitments to insert")
	fs.Uint64Var(&cfg.CommitmentsPerBlock, "block-size", cfg.CommitmentsPerBlock, "commitments per block before calling EndBlock")
	fs.Uint64Var(&cfg.BlocksPerEpoch, "epoch-size", cfg.BlocksPerEpoch, "blocks per epoch before calling EndEpoch")
	fs.Float64Var(&cfg.ForgetFraction, "forget-fraction", cfg.ForgetFraction, "fraction of inserted commitments to forget afterward")
	fs.StringVar(&cfg.Backend, "backend", cfg.Backend, "storage backend: memory or pebble")
	fs.StringVar(&cfg.DataDir, "datadir", cfg.DataDir, "pebble data directory (backend=pebble only)")
	fs.IntVar(&cfg.Verbosity, "verbosity", cfg.Verbosity, "log level 0-5 (0=silent, 4-5=debug)")
	return fs
}
