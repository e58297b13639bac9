// Package color holds the color settings of kycflow output.
package color

import (
	"fmt"
	"os"
	"strconv"

	"github.com/fatih/color"
	"github.com/goccy/go-yaml"
	"github.com/goccy/go-yaml/lexer"
	"github.com/goccy/go-yaml/printer"
)

const envColor = "KYCFLOW_COLOR"

type Color = color.Color

// Config represents the color configuration of a single run.
type Config struct {
	enabled *bool // nil means "follow color.NoColor"

	pass *Color
	fail *Color
	skip *Color
	info *Color
}

// New creates a color configuration initialized from KYCFLOW_COLOR.
func New() *Config {
	c := &Config{
		pass: color.New(color.FgGreen),
		fail: color.New(color.FgHiRed),
		skip: color.New(color.FgYellow),
		info: color.New(color.FgCyan),
	}
	if v := os.Getenv(envColor); v != "" {
		if enabled, err := strconv.ParseBool(v); err == nil {
			c.SetEnabled(enabled)
		}
	}
	return c
}

// IsEnabled reports whether colored output is enabled.
func (c *Config) IsEnabled() bool {
	if c != nil && c.enabled != nil {
		return *c.enabled
	}
	return !color.NoColor
}

// SetEnabled forces colored output on or off.
func (c *Config) SetEnabled(enabled bool) {
	c.enabled = &enabled
	for _, cc := range []*Color{c.pass, c.fail, c.skip, c.info} {
		if enabled {
			cc.EnableColor()
		} else {
			cc.DisableColor()
		}
	}
}

func (c *Config) Pass() *Color { return c.pass }
func (c *Config) Fail() *Color { return c.fail }
func (c *Config) Skip() *Color { return c.skip }
func (c *Config) Info() *Color { return c.info }

// MarshalYAML marshals v to YAML, highlighting tokens when colors are enabled.
func (c *Config) MarshalYAML(v any) ([]byte, error) {
	b, err := yaml.Marshal(v)
	if err != nil {
		return nil, err
	}
	if !c.IsEnabled() {
		return b, nil
	}
	var p printer.Printer
	p.Bool = property(color.FgHiMagenta)
	p.Number = property(color.FgHiMagenta)
	p.MapKey = property(color.FgHiCyan)
	p.Anchor = property(color.FgHiYellow)
	p.Alias = property(color.FgHiYellow)
	p.String = property(color.FgHiGreen)
	p.Comment = property(color.FgHiBlack)
	return []byte(p.PrintTokens(lexer.Tokenize(string(b)))), nil
}

func property(attr color.Attribute) func() *printer.Property {
	return func() *printer.Property {
		return &printer.Property{
			Prefix: escape(attr),
			Suffix: escape(color.Reset),
		}
	}
}

func escape(attr color.Attribute) string {
	return fmt.Sprintf("\x1b[%dm", attr)
}
