// Package config loads execution options from a YAML file, layered
// under CLI flags the way the teacher layers its cobra flag set over
// an Options interface (internal/interp/options.go) — this is the one
// ambient concern the teacher's own CLI never needed (DWScript has no
// config file) but that a real batch-run interpreter binary carries.
package config

import (
	"fmt"
	"os"

	"github.com/goccy/go-yaml"

	"github.com/irvm/brilgo/internal/interp"
)

// File is the decoded shape of a `--config` YAML file. Every field is a
// pointer so Load can tell "absent from the file" apart from "present
// and false/zero" when layering CLI flags on top.
type File struct {
	GC           *bool `yaml:"gc"`
	DisableFree  *bool `yaml:"disable_free"`
	Trace        *bool `yaml:"trace"`
	Profile      *bool `yaml:"profile"`
	HotThreshold *int  `yaml:"hot_threshold"`
}

// Load reads and decodes a YAML options file from path.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	return &f, nil
}

// Merge produces an interp.ExecOptions by starting from f (if non-nil)
// and overriding with every flag value whose "set" sibling reports the
// flag was actually passed on the command line. Flags win over file
// values; the file fills in whatever flags left at their zero default.
func Merge(f *File, flags FlagOverrides) interp.ExecOptions {
	opts := interp.ExecOptions{}

	if f != nil {
		if f.GC != nil {
			opts.EnableGC = *f.GC
		}
		if f.DisableFree != nil {
			opts.DisableFreeFlag = *f.DisableFree
		}
		if f.Trace != nil {
			opts.EnableTrace = *f.Trace
		}
		if f.Profile != nil {
			opts.EnableProfile = *f.Profile
		}
		if f.HotThreshold != nil {
			opts.HotThresholdValue = *f.HotThreshold
		}
	}

	if flags.GCSet {
		opts.EnableGC = flags.GC
	}
	if flags.DisableFreeSet {
		opts.DisableFreeFlag = flags.DisableFree
	}
	if flags.TraceSet {
		opts.EnableTrace = flags.Trace
	}
	if flags.ProfileSet {
		opts.EnableProfile = flags.Profile
	}
	if flags.HotThresholdSet {
		opts.HotThresholdValue = flags.HotThreshold
	}

	return opts
}

// FlagOverrides carries the CLI's own flag values plus whether each was
// explicitly set, so Merge can distinguish "flag left at its default"
// from "flag explicitly set to its default value".
type FlagOverrides struct {
	GC              bool
	GCSet           bool
	DisableFree     bool
	DisableFreeSet  bool
	Trace           bool
	TraceSet        bool
	Profile         bool
	ProfileSet      bool
	HotThreshold    int
	HotThresholdSet bool
}
