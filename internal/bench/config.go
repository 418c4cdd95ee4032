// File: internal/bench/config.go
// Author: momentics <momentics@gmail.com>

package bench

import (
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/momentics/hioload-pool/api"
	"github.com/momentics/hioload-pool/buffer"
	"github.com/pkg/errors"
)

// Config drives a Runner.
type Config struct {
	Platform   string
	Iterations int
	Batch      int
	InnerLoop  int
	Sizes      []int
	Patterns   []Pattern
	Kinds      []Kind
	Seed       uint64
	OutDir     string
}

// DefaultConfig mirrors the reference measurement setup.
func DefaultConfig() Config {
	return Config{
		Platform:   "local",
		Iterations: 100,
		Batch:      100,
		InnerLoop:  1000,
		Sizes:      append([]int(nil), buffer.SizeClasses[:]...),
		Patterns:   AllPatterns(),
		Kinds:      AllKinds(),
		Seed:       42,
		OutDir:     "results",
	}
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	switch {
	case c.Platform == "":
		return errors.Wrap(api.ErrInvalidArgument, "platform label is empty")
	case strings.ContainsAny(c.Platform, `/\`):
		return errors.Wrapf(api.ErrInvalidArgument, "platform label %q contains a path separator", c.Platform)
	case c.Iterations <= 0:
		return errors.Wrapf(api.ErrInvalidArgument, "iterations must be positive, got %d", c.Iterations)
	case c.Batch <= 0:
		return errors.Wrapf(api.ErrInvalidArgument, "batch must be positive, got %d", c.Batch)
	case c.InnerLoop <= 0:
		return errors.Wrapf(api.ErrInvalidArgument, "inner loop must be positive, got %d", c.InnerLoop)
	case len(c.Sizes) == 0 || len(c.Patterns) == 0 || len(c.Kinds) == 0:
		return errors.Wrap(api.ErrInvalidArgument, "sizes, patterns and kinds must not be empty")
	}
	for _, s := range c.Sizes {
		if s <= 0 || s > 1<<30 {
			return errors.Wrapf(api.ErrInvalidArgument, "buffer size %d out of range", s)
		}
	}
	return nil
}

// Cases is the number of (kind, pattern, size) combinations.
func (c *Config) Cases() int {
	return len(c.Kinds) * len(c.Patterns) * len(c.Sizes)
}

// ParseSizes parses a comma separated list such as "8,64,1KiB,4kB".
func ParseSizes(s string) ([]int, error) {
	var out []int
	for _, f := range strings.Split(s, ",") {
		f = strings.TrimSpace(f)
		if f == "" {
			continue
		}
		n, err := humanize.ParseBytes(f)
		if err != nil {
			return nil, errors.Wrapf(err, "size %q", f)
		}
		out = append(out, int(n))
	}
	if len(out) == 0 {
		return nil, errors.Wrapf(api.ErrInvalidArgument, "no sizes in %q", s)
	}
	return out, nil
}
