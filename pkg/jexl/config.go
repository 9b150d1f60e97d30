package jexl

import (
	"fmt"
	"math/big"
	"os"

	"github.com/cwbudde/go-jexl/internal/arith"
	"github.com/goccy/go-yaml"
)

var roundingModes = map[string]big.RoundingMode{
	"toNearestEven": big.ToNearestEven,
	"toNearestAway": big.ToNearestAway,
	"towardZero":    big.ToZero,
	"awayFromZero":  big.AwayFromZero,
	"toward_zero":   big.ToZero,
	"up":            big.AwayFromZero,
	"down":          big.ToZero,
	"ceil":          big.ToPositiveInf,
	"floor":         big.ToNegativeInf,
}

// yamlConfig mirrors the Engine configuration surface (lenient, silent,
// debug, cache size, math context), the settings a host would otherwise
// wire up in code via Option values.
type yamlConfig struct {
	Lenient   *bool   `yaml:"lenient"`
	Silent    *bool   `yaml:"silent"`
	Debug     *bool   `yaml:"debug"`
	CacheSize *int    `yaml:"cacheSize"`
	MathCtx   *string `yaml:"mathContext"` // "precision:rounding", e.g. "64:toNearestEven"

	// Namespaces declares the prefixes a host must call RegisterNamespace
	// for before using the engine; YAML cannot carry Go function values,
	// so this only documents expected bindings and is not enforced.
	Namespaces []string `yaml:"namespaces"`
}

// FromYAML builds an Engine from a YAML config file at path, decoded with
// goccy/go-yaml and applied as the same Option values a caller could set
// up in code.
func FromYAML(path string) (*Engine, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("jexl: read config %s: %w", path, err)
	}
	var cfg yamlConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("jexl: parse config %s: %w", path, err)
	}

	var opts []Option
	if cfg.Lenient != nil {
		opts = append(opts, WithLenient(*cfg.Lenient))
	}
	if cfg.Silent != nil {
		opts = append(opts, WithSilent(*cfg.Silent))
	}
	if cfg.Debug != nil {
		opts = append(opts, WithDebug(*cfg.Debug))
	}
	if cfg.CacheSize != nil {
		opts = append(opts, WithCacheSize(*cfg.CacheSize))
	}
	if cfg.MathCtx != nil {
		mc, err := parseMathContext(*cfg.MathCtx)
		if err != nil {
			return nil, fmt.Errorf("jexl: config %s: %w", path, err)
		}
		opts = append(opts, WithMathContext(mc))
	}
	return New(opts...), nil
}

func parseMathContext(spec string) (arith.MathContext, error) {
	var precision uint
	var roundingName string
	n, err := fmt.Sscanf(spec, "%d:%s", &precision, &roundingName)
	if err != nil || n != 2 {
		return arith.MathContext{}, fmt.Errorf("invalid mathContext %q, want \"precision:rounding\"", spec)
	}
	rounding, ok := roundingModes[roundingName]
	if !ok {
		return arith.MathContext{}, fmt.Errorf("unknown rounding mode %q", roundingName)
	}
	return arith.MathContext{Precision: precision, Rounding: rounding}, nil
}
