package cli

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/aretw0/tendril"
	"github.com/aretw0/tendril/internal/config"
	"github.com/aretw0/tendril/internal/logging"
	"github.com/aretw0/tendril/pkg/adapters/file"
	loamAdapter "github.com/aretw0/tendril/pkg/adapters/loam"
	"github.com/aretw0/tendril/pkg/adapters/redis"
	"github.com/aretw0/tendril/pkg/observability"
	"github.com/aretw0/tendril/pkg/ports"
	"github.com/prometheus/client_golang/prometheus"
	"gopkg.in/yaml.v3"
)

// Options are the project-wide flags shared by every command.
type Options struct {
	Dir        string
	ConfigPath string
	Source     string
	Strict     *bool
	Debug      bool
	VarsFile   string
	Vars       []string
	Metrics    bool
}

// Project is an engine configured from tendril.yaml and the command line.
type Project struct {
	Config    config.Config
	Engine    *tendril.Engine
	Resources ports.ResourceResolver
	Logger    *slog.Logger
	Metrics   *observability.Metrics
	Registry  *prometheus.Registry
	Vars      map[string]any
}

// Open loads the configuration and builds the engine.
func Open(opts Options) (*Project, error) {
	dir := opts.Dir
	if dir == "" {
		dir = "."
	}
	cfgPath := opts.ConfigPath
	if cfgPath == "" {
		cfgPath = filepath.Join(dir, config.DefaultFile)
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, err
	}
	if opts.Source != "" {
		cfg.Source = config.Source(opts.Source)
	}
	if opts.Strict != nil {
		cfg.Strict = *opts.Strict
	}

	logger, err := createLogger(cfg.LogLevel, opts.Debug)
	if err != nil {
		return nil, err
	}

	scripts := cfg.Scripts
	if !filepath.IsAbs(scripts) {
		scripts = filepath.Join(dir, scripts)
	}
	resources, err := createResources(cfg, scripts)
	if err != nil {
		return nil, err
	}

	p := &Project{
		Config:    cfg,
		Resources: resources,
		Logger:    logger,
	}

	engineOpts := []tendril.Option{
		tendril.WithLogger(logger),
		tendril.WithResources(resources),
		tendril.WithStrict(cfg.Strict),
	}
	if opts.Debug {
		engineOpts = append(engineOpts, tendril.WithLifecycleHooks(observability.LogHooks(logger)))
	}
	if opts.Metrics {
		p.Registry = prometheus.NewRegistry()
		p.Metrics, err = observability.NewMetrics(p.Registry)
		if err != nil {
			return nil, fmt.Errorf("failed to register metrics: %w", err)
		}
		engineOpts = append(engineOpts, tendril.WithLifecycleHooks(p.Metrics.Hooks()))
	}
	p.Engine = tendril.New(engineOpts...)

	p.Vars, err = collectVars(cfg.Vars, opts.VarsFile, opts.Vars)
	if err != nil {
		return nil, err
	}

	logger.Debug("Project opened", "source", cfg.Source, "scripts", scripts, "strict", cfg.Strict)
	return p, nil
}

// VarsFor returns the variables a run of id starts with: script defaults from its
// metadata (loam only), then the project variables.
func (p *Project) VarsFor(ctx context.Context, id string) map[string]any {
	vars := make(map[string]any)
	if res, ok := p.Resources.(*loamAdapter.Resources); ok {
		if meta, err := res.Metadata(ctx, id); err == nil {
			for k, v := range meta.Vars {
				vars[k] = v
			}
		}
	}
	for k, v := range p.Vars {
		vars[k] = v
	}
	return vars
}

func createResources(cfg config.Config, scripts string) (ports.ResourceResolver, error) {
	switch cfg.Source {
	case config.SourceLoam:
		res, err := loamAdapter.Open(scripts)
		if err != nil {
			return nil, err
		}
		return res, nil
	case config.SourceRedis:
		var opts []redis.Option
		if cfg.Redis.Prefix != "" {
			opts = append(opts, redis.WithPrefix(cfg.Redis.Prefix))
		}
		return redis.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, opts...), nil
	case config.SourceFile, "":
		return file.New(scripts), nil
	}
	return nil, fmt.Errorf("unknown source %q (want file, loam or redis)", cfg.Source)
}

// createLogger configures the application logger.
// It writes to Stderr (to separate from Stdout output).
func createLogger(level string, debug bool) (*slog.Logger, error) {
	if debug {
		return logging.New(slog.LevelDebug), nil
	}
	lvl, err := config.ParseLevel(level)
	if err != nil {
		return nil, err
	}
	return logging.New(lvl), nil
}

// collectVars merges config variables, a variables file and name=value pairs, later wins.
func collectVars(base map[string]any, varsFile string, pairs []string) (map[string]any, error) {
	vars := make(map[string]any, len(base))
	for k, v := range base {
		vars[k] = v
	}
	if varsFile != "" {
		fileVars, err := config.LoadVars(varsFile)
		if err != nil {
			return nil, err
		}
		for k, v := range fileVars {
			vars[k] = v
		}
	}
	for _, pair := range pairs {
		name, raw, ok := strings.Cut(pair, "=")
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid variable %q: want name=value", pair)
		}
		vars[name] = parseValue(raw)
	}
	return vars, nil
}

// parseValue reads raw as a YAML scalar so numbers and booleans keep their type.
func parseValue(raw string) any {
	var v any
	if err := yaml.Unmarshal([]byte(raw), &v); err != nil || v == nil {
		return raw
	}
	switch v.(type) {
	case map[string]any, []any:
		return raw
	}
	return v
}
