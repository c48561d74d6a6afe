package main

import (
	"os"

	"github.com/2x3systems/nlce/libnlce/expand"
	"github.com/2x3systems/nlce/libnlce/lattice"
	"github.com/2x3systems/nlce/libnlce/symm"
	"github.com/2x3systems/nlce/nlce"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Config is a build run file.
type Config struct {
	Lattice  LatticeConfig `yaml:"lattice"`
	MaxSize  int           `yaml:"max_size"`
	Weighted bool          `yaml:"weighted"`
	Strict   bool          `yaml:"strict"`
	Workers  int           `yaml:"workers"`
	Catalog  string        `yaml:"catalog"` // badger db dir, omit for in-memory
	Export   string        `yaml:"export"`  // zstd export pathname
}

// LatticeConfig names the lattice to expand and which of its symmetries to apply.
type LatticeConfig struct {
	Kind      string `yaml:"kind"` // "chain", "square", or "bonds"
	Length    int    `yaml:"length"`
	Width     int    `yaml:"width"`
	Periodic  bool   `yaml:"periodic"`
	Symmetric bool   `yaml:"symmetric"` // chain reflection or square point group
	Bonds     string `yaml:"bonds"`
}

func DefaultConfig() Config {
	return Config{
		Lattice: LatticeConfig{
			Kind:      "chain",
			Length:    8,
			Periodic:  true,
			Symmetric: true,
		},
		MaxSize: 4,
	}
}

// LoadConfig reads a yaml run file over DefaultConfig.
func LoadConfig(pathname string) (Config, error) {
	cfg := DefaultConfig()
	buf, err := os.ReadFile(pathname)
	if err != nil {
		return cfg, err
	}
	if err = yaml.Unmarshal(buf, &cfg); err != nil {
		return cfg, errors.Wrapf(err, "parsing %q", pathname)
	}
	return cfg, nil
}

func (cfg *LatticeConfig) Build() (*nlce.Lattice, nlce.Symmetry, error) {
	switch cfg.Kind {
	case "chain":
		if cfg.Length < 1 || cfg.Length > nlce.MaxSites {
			return nil, nlce.Symmetry{}, errors.Wrapf(nlce.ErrTooManySites, "chain length %d", cfg.Length)
		}
		return lattice.Chain(cfg.Length, cfg.Periodic), symm.ChainGroup(cfg.Length, cfg.Periodic, cfg.Symmetric), nil
	case "square":
		if cfg.Length < 1 || cfg.Width < 1 || cfg.Length*cfg.Width > nlce.MaxSites {
			return nil, nlce.Symmetry{}, errors.Wrapf(nlce.ErrTooManySites, "%dx%d square lattice", cfg.Length, cfg.Width)
		}
		return lattice.Square(cfg.Length, cfg.Width, cfg.Periodic), symm.SquareGroup(cfg.Length, cfg.Width, cfg.Periodic, cfg.Symmetric), nil
	case "bonds":
		L, err := lattice.ParseBonds(cfg.Bonds)
		if err != nil {
			return nil, nlce.Symmetry{}, err
		}
		return L, symm.Trivial(L.NumSites), nil
	}
	return nil, nlce.Symmetry{}, errors.Wrapf(nlce.ErrBadLattice, "unknown lattice kind %q", cfg.Kind)
}

// Builder returns the expansion builder described by cfg.
func (cfg *Config) Builder() (*expand.Builder, error) {
	L, sym, err := cfg.Lattice.Build()
	if err != nil {
		return nil, err
	}
	if cfg.Weighted && !L.IsWeighted() {
		return nil, errors.Wrap(nlce.ErrBadLattice, "weighted expansion needs a lattice with bond weights")
	}
	return &expand.Builder{
		Lattice:  L,
		Symmetry: sym,
		Opts: expand.Opts{
			Workers:  cfg.Workers,
			Weighted: cfg.Weighted,
			Strict:   cfg.Strict,
		},
	}, nil
}
