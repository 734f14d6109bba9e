// Command constellation is a thin runner over the core library: it loads
// a compiled pipeline image or a raw IR graph, executes it against the
// bounded scheduler and resilience-wrapped runtime, and reports results
// or a suspended-execution record. Host module registration (the
// application-specific Evaluators a real deployment wires in) is left to
// embedders of the core packages; this binary only exercises the
// synthetic/built-in module surface. Grounded on the teacher's
// cmd-less service bootstrap (config.LoadConfig + logger.Init), adapted
// down from its component/DI lifecycle since Constellation has no
// HTTP/gRPC surface of its own to bring up.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"go.yaml.in/yaml/v3"

	"github.com/constellation-run/constellation/cache"
	"github.com/constellation-run/constellation/compilecache"
	"github.com/constellation-run/constellation/config"
	"github.com/constellation-run/constellation/hashing"
	"github.com/constellation-run/constellation/ir"
	"github.com/constellation-run/constellation/logger"
	"github.com/constellation-run/constellation/module"
	"github.com/constellation-run/constellation/pipelineimage"
	"github.com/constellation-run/constellation/runtime"
	"github.com/constellation-run/constellation/scheduler"
	"github.com/constellation-run/constellation/types"
)

// AppConfig is the service configuration loaded via config.LoadConfig
// (spec.md's ambient stack: env + YAML file, teacher's viper/godotenv
// layering).
type AppConfig struct {
	config.BaseConfig `yaml:",inline" mapstructure:",squash"`
	Logging           logger.Config `yaml:"logging" mapstructure:"logging"`
	MaxConcurrency    int           `yaml:"max_concurrency" mapstructure:"max_concurrency"`
	CacheSize         int           `yaml:"cache_size" mapstructure:"cache_size"`
	CacheTTL          time.Duration `yaml:"cache_ttl" mapstructure:"cache_ttl"`
}

func (c *AppConfig) ApplyDefaults() {
	c.BaseConfig.ApplyDefaults()
	c.Logging.ApplyDefaults()
	if c.MaxConcurrency <= 0 {
		c.MaxConcurrency = 8
	}
	if c.CacheSize <= 0 {
		c.CacheSize = 1024
	}
	if c.CacheTTL <= 0 {
		c.CacheTTL = 10 * time.Minute
	}
}

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "usage: constellation compile <graph.yaml> | constellation run <image.yaml> [inputs.yaml]")
		os.Exit(2)
	}

	cfg := &AppConfig{BaseConfig: config.BaseConfig{Name: "constellation"}}
	cfg.ApplyDefaults()
	if err := config.LoadConfig("constellation", cfg); err != nil {
		fmt.Fprintf(os.Stderr, "config: %v (continuing with defaults)\n", err)
	}
	log := logger.New(&cfg.Logging, cfg.Name)

	var err error
	switch os.Args[1] {
	case "compile":
		err = runCompile(log, cfg, os.Args[2:])
	case "run":
		err = runExecute(log, cfg, os.Args[2:])
	default:
		fmt.Fprintf(os.Stderr, "unknown subcommand %q\n", os.Args[1])
		os.Exit(2)
	}
	if err != nil {
		log.Error("command failed", map[string]interface{}{"error": err.Error()})
		os.Exit(1)
	}
}

func runCompile(log *logger.Logger, cfg *AppConfig, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("compile: need a graph.yaml path")
	}
	g, err := loadGraph(args[0])
	if err != nil {
		return err
	}

	backend := cache.NewMemoryBackend(cfg.CacheSize)
	cc := compilecache.New(backend, cfg.CacheTTL)
	structuralHash := hashing.Structural(g)

	img, hit, err := cc.Get(context.Background(), structuralHash, g, module.NewRegistry())
	if err != nil {
		return fmt.Errorf("compile: %w", err)
	}
	log.Info("compiled", map[string]interface{}{"structural_hash": structuralHash, "cache_hit": hit})

	out, err := pipelineimage.EncodeImage(img)
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}

func runExecute(log *logger.Logger, cfg *AppConfig, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("run: need an image.yaml path")
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}
	img, err := pipelineimage.DecodeImage(data)
	if err != nil {
		return err
	}

	inputs := map[string]types.Value{}
	if len(args) >= 2 {
		raw, err := os.ReadFile(args[1])
		if err != nil {
			return err
		}
		if err := yaml.Unmarshal(raw, &inputs); err != nil {
			return fmt.Errorf("run: decoding inputs: %w", err)
		}
	}

	engine := runtime.NewEngine(module.NewRegistry())
	sched := scheduler.NewBoundedScheduler(cfg.MaxConcurrency)
	defer sched.Shutdown(5 * time.Second)
	engine.Scheduler = sched

	executionID := uuid.NewString()

	outputs, suspended, err := engine.Run(context.Background(), executionID, img.DAG, inputs)
	if err != nil {
		return fmt.Errorf("run: %w", err)
	}
	if suspended != nil {
		out, encErr := pipelineimage.EncodeSuspended(suspended)
		if encErr != nil {
			return encErr
		}
		log.Warn("execution suspended on missing inputs", map[string]interface{}{"execution_id": executionID})
		fmt.Println(string(out))
		return nil
	}

	out, err := yaml.Marshal(outputs)
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}

func loadGraph(path string) (*ir.Graph, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	g := ir.NewGraph()
	if err := yaml.Unmarshal(data, g); err != nil {
		return nil, fmt.Errorf("decoding IR graph: %w", err)
	}
	return g, nil
}
