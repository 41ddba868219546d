package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/go-playground/validator/v10"

	"github.com/speakeasy-api/schemaannotate/annotation"
)

// config is the resolved CLI configuration: defaults, then the TOML file,
// then flags.
type config struct {
	Input          string   `validate:"required"`
	Namespaces     []string `validate:"required,min=1,unique,dive,required,printascii,excludesall=/"`
	NamePrefix     string
	CandidateOrder string `validate:"oneof=nearest-first outermost-first"`
	SkipValidation bool
	LogLevel       string `validate:"oneof=error warn info debug"`
	Output         string `validate:"oneof=table yaml"`
	WriteResolved  string
	Color          string `validate:"oneof=auto always never"`
	MaxValueWidth  int    `validate:"gte=0"`
}

// annotate.toml key mapping.
type fileConfig struct {
	Input          string   `toml:"input"`
	Namespaces     []string `toml:"namespaces"`
	NamePrefix     string   `toml:"name_prefix"`
	CandidateOrder string   `toml:"candidate_order"`
	SkipValidation bool     `toml:"skip_validation"`
	LogLevel       string   `toml:"log_level"`
	Output         string   `toml:"output"`
	WriteResolved  string   `toml:"write_resolved"`
	Color          string   `toml:"color"`
	MaxValueWidth  int      `toml:"max_value_width"`
}

func defaultConfig() config {
	opts := annotation.DefaultOptions()
	return config{
		CandidateOrder: opts.CandidateOrder.String(),
		LogLevel:       opts.LogLevel,
		Output:         "table",
		Color:          "auto",
		MaxValueWidth:  60,
	}
}

// loadConfigFile overlays the keys present in the file at path onto cfg.
func loadConfigFile(path string, cfg config) (config, error) {
	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return config{}, fmt.Errorf("load annotate config: %w", err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return config{}, fmt.Errorf("load annotate config: unknown keys %s", strings.Join(keys, ", "))
	}

	if meta.IsDefined("input") {
		cfg.Input = strings.TrimSpace(raw.Input)
	}
	if meta.IsDefined("namespaces") {
		cfg.Namespaces = trimAll(raw.Namespaces)
	}
	if meta.IsDefined("name_prefix") {
		cfg.NamePrefix = strings.TrimSpace(raw.NamePrefix)
	}
	if meta.IsDefined("candidate_order") {
		cfg.CandidateOrder = strings.TrimSpace(raw.CandidateOrder)
	}
	if meta.IsDefined("skip_validation") {
		cfg.SkipValidation = raw.SkipValidation
	}
	if meta.IsDefined("log_level") {
		cfg.LogLevel = strings.ToLower(strings.TrimSpace(raw.LogLevel))
	}
	if meta.IsDefined("output") {
		cfg.Output = strings.TrimSpace(raw.Output)
	}
	if meta.IsDefined("write_resolved") {
		cfg.WriteResolved = strings.TrimSpace(raw.WriteResolved)
	}
	if meta.IsDefined("color") {
		cfg.Color = strings.TrimSpace(raw.Color)
	}
	if meta.IsDefined("max_value_width") {
		cfg.MaxValueWidth = raw.MaxValueWidth
	}
	return cfg, nil
}

func (c config) validate() error {
	err := validator.New(validator.WithRequiredStructEnabled()).Struct(c)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s: failed %q", fe.Namespace(), fe.Tag()))
	}
	return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
}

// options maps the configuration onto processing options.
func (c config) options() (annotation.Options, error) {
	opts := annotation.DefaultOptions()
	order, err := annotation.ParseCandidateOrder(c.CandidateOrder)
	if err != nil {
		return opts, err
	}
	opts.CandidateOrder = order
	opts.SkipValidation = c.SkipValidation
	opts.LogLevel = c.LogLevel
	return opts, nil
}

func trimAll(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		out = append(out, strings.TrimSpace(s))
	}
	return out
}
