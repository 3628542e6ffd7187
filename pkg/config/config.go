package config

import (
	"fmt"
	"sort"
	"strings"

	"github.com/xplshn/svimport/pkg/cli"
)

type Feature int

const (
	FeatWideLiterals Feature = iota
	FeatLocalDecls
	FeatProceduralAssign
	FeatCount
)

type Warning int

const (
	WarnImplicitConversion Warning = iota
	WarnIncDecWriteback
	WarnLiteralTruncation
	WarnCount
)

type Info struct {
	Name        string
	Enabled     bool
	Description string
}

type Config struct {
	Features   map[Feature]Info
	Warnings   map[Warning]Info
	FeatureMap map[string]Feature
	WarningMap map[string]Warning
	MaxErrors  int // 0 means no limit
	Color      bool
}

func NewConfig() *Config {
	cfg := &Config{
		Features:   make(map[Feature]Info),
		Warnings:   make(map[Warning]Info),
		FeatureMap: make(map[string]Feature),
		WarningMap: make(map[string]Warning),
		MaxErrors:  20,
		Color:      true,
	}

	features := map[Feature]Info{
		FeatWideLiterals:     {"wide-literals", true, "Lower integer literals of any width. When disabled, literals wider than 32 bits are rejected."},
		FeatLocalDecls:       {"local-decls", true, "Allow variable declarations at the start of begin/end blocks."},
		FeatProceduralAssign: {"procedural-assign", true, "Allow procedural continuous `assign` statements inside procedures."},
	}

	warnings := map[Warning]Info{
		WarnImplicitConversion: {"implicit-conversion", false, "Warn when an assignment converts its right-hand side to the target type."},
		WarnIncDecWriteback:    {"incdec-writeback", false, "Warn when ++/-- writes back with a blocking assignment inside a non-blocking context."},
		WarnLiteralTruncation:  {"literal-truncation", true, "Warn when a sized literal has more significant bits than its width."},
	}

	cfg.Features, cfg.Warnings = features, warnings
	for ft, info := range features {
		cfg.FeatureMap[info.Name] = ft
	}
	for wt, info := range warnings {
		cfg.WarningMap[info.Name] = wt
	}

	return cfg
}

func (c *Config) SetFeature(ft Feature, enabled bool) {
	if info, ok := c.Features[ft]; ok {
		info.Enabled = enabled
		c.Features[ft] = info
	}
}

func (c *Config) IsFeatureEnabled(ft Feature) bool { return c.Features[ft].Enabled }

func (c *Config) SetWarning(wt Warning, enabled bool) {
	if info, ok := c.Warnings[wt]; ok {
		info.Enabled = enabled
		c.Warnings[wt] = info
	}
}

func (c *Config) IsWarningEnabled(wt Warning) bool { return c.Warnings[wt].Enabled }

// WarningName returns the flag spelling of wt, as used in -W<name>.
func (c *Config) WarningName(wt Warning) string { return c.Warnings[wt].Name }

// ApplyFlag applies one gcc-style flag: -W<name>, -Wno-<name>, -Wall,
// -Wno-all, -F<name> or -Fno-<name>.
func (c *Config) ApplyFlag(flag string) error {
	trimmed := strings.TrimPrefix(flag, "-")
	isNo := strings.HasPrefix(trimmed, "Wno-") || strings.HasPrefix(trimmed, "Fno-")
	enable := !isNo

	var name string
	var isWarning bool

	switch {
	case strings.HasPrefix(trimmed, "W"):
		name = strings.TrimPrefix(trimmed, "W")
		isWarning = true
	case strings.HasPrefix(trimmed, "F"):
		name = strings.TrimPrefix(trimmed, "F")
	default:
		return fmt.Errorf("unrecognized flag '%s'", flag)
	}
	if isNo {
		name = strings.TrimPrefix(name, "no-")
	}

	if name == "all" && isWarning {
		for i := Warning(0); i < WarnCount; i++ {
			c.SetWarning(i, enable)
		}
		return nil
	}

	if isWarning {
		w, ok := c.WarningMap[name]
		if !ok {
			return fmt.Errorf("unknown warning '%s'", name)
		}
		c.SetWarning(w, enable)
		return nil
	}
	f, ok := c.FeatureMap[name]
	if !ok {
		return fmt.Errorf("unknown feature '%s'", name)
	}
	c.SetFeature(f, enable)
	return nil
}

// ProcessFlags applies the -W and -F flags reported by visitFlag, in two
// passes so -Wall/-Wno-all never override a more specific flag.
func (c *Config) ProcessFlags(visitFlag func(fn func(name string))) error {
	var errs []string
	isGroup := func(name string) bool { return strings.HasPrefix(name, "W") || strings.HasPrefix(name, "F") }
	isAll := func(name string) bool { return name == "Wall" || name == "Wno-all" }
	apply := func(name string) {
		if err := c.ApplyFlag("-" + name); err != nil {
			errs = append(errs, err.Error())
		}
	}
	visitFlag(func(name string) {
		if isAll(name) {
			apply(name)
		}
	})
	visitFlag(func(name string) {
		if isGroup(name) && !isAll(name) {
			apply(name)
		}
	})
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

// ProcessDirectiveFlags applies flags embedded in a source directive such as
// `// svimport: -Wno-literal-truncation -Fno-wide-literals`.
func (c *Config) ProcessDirectiveFlags(flagStr string) error {
	for _, flag := range strings.Fields(flagStr) {
		if err := c.ApplyFlag(flag); err != nil {
			return err
		}
	}
	return nil
}

// SetupFlagGroups registers the -W and -F flag groups on fs. The flags only
// record what was passed; ProcessFlags(fs.Visit) applies them.
func (c *Config) SetupFlagGroups(fs *cli.FlagSet) {
	var wall, wnoall bool
	fs.Bool(&wall, "Wall", "", false, "Enable all warnings.")
	fs.Bool(&wnoall, "Wno-all", "", false, "Disable all warnings.")

	warningFlags := make([]cli.FlagGroupEntry, 0, WarnCount)
	for i := Warning(0); i < WarnCount; i++ {
		info := c.Warnings[i]
		enabled, disabled := info.Enabled, false
		warningFlags = append(warningFlags, cli.FlagGroupEntry{
			Name: info.Name, Prefix: "W", Usage: info.Description, Enabled: &enabled, Disabled: &disabled,
		})
	}

	featureFlags := make([]cli.FlagGroupEntry, 0, FeatCount)
	for i := Feature(0); i < FeatCount; i++ {
		info := c.Features[i]
		enabled, disabled := info.Enabled, false
		featureFlags = append(featureFlags, cli.FlagGroupEntry{
			Name: info.Name, Prefix: "F", Usage: info.Description, Enabled: &enabled, Disabled: &disabled,
		})
	}

	fs.AddFlagGroup("Warning Flags", "warning", "Available Warnings:", warningFlags)
	fs.AddFlagGroup("Feature Flags", "feature", "Available Features:", featureFlags)
}

// Summary lists every feature and warning with its state, sorted by name.
func (c *Config) Summary() []string {
	var lines []string
	for _, info := range c.Features {
		lines = append(lines, fmt.Sprintf("feature %s=%v", info.Name, info.Enabled))
	}
	for _, info := range c.Warnings {
		lines = append(lines, fmt.Sprintf("warning %s=%v", info.Name, info.Enabled))
	}
	sort.Strings(lines)
	return lines
}
