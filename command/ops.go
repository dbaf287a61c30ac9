package command

import (
	"context"
	"encoding/json"
	"os"
	"strings"
	"time"

	gcmd "github.com/goliatone/go-command"
	"github.com/goliatone/go-errors"

	"github.com/goliatone/go-questionpaper/paper"
)

// Generator renders and stores one paper.
type Generator interface {
	Generate(ctx context.Context, req paper.GenerateRequest) (paper.Record, error)
}

// BatchLoader loads generation requests from a source.
type BatchLoader func(ctx context.Context) ([]paper.GenerateRequest, error)

// BatchLimits bounds batch throughput.
type BatchLimits struct {
	MaxRequests int
	MinInterval time.Duration
}

// BatchCommand generates a set of papers from the CLI or on a schedule.
type BatchCommand struct {
	generator  Generator
	loader     BatchLoader
	cliConfig  gcmd.CLIConfig
	cronConfig gcmd.HandlerConfig
	limits     BatchLimits
	sleep      func(time.Duration)
}

type BatchOption func(*BatchCommand)

func WithBatchCLIConfig(cfg gcmd.CLIConfig) BatchOption {
	return func(cmd *BatchCommand) {
		cmd.cliConfig = cfg
	}
}

func WithBatchCronConfig(cfg gcmd.HandlerConfig) BatchOption {
	return func(cmd *BatchCommand) {
		cmd.cronConfig = cfg
	}
}

func WithBatchLimits(limits BatchLimits) BatchOption {
	return func(cmd *BatchCommand) {
		cmd.limits = limits
	}
}

// NewBatchCommand creates a batch generation CLI/Cron command.
func NewBatchCommand(generator Generator, loader BatchLoader, opts ...BatchOption) *BatchCommand {
	cmd := &BatchCommand{
		generator: generator,
		loader:    loader,
		cliConfig: gcmd.CLIConfig{
			Path:        []string{"papers-batch"},
			Description: "Generate question papers from a JSON batch file",
			Group:       "papers",
		},
		cronConfig: gcmd.HandlerConfig{Expression: "0 2 * * *"},
		sleep:      time.Sleep,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(cmd)
		}
	}
	return cmd
}

func (c *BatchCommand) CronHandler() func() error {
	return func() error {
		_, err := c.run(context.Background(), "")
		return err
	}
}

func (c *BatchCommand) CronOptions() gcmd.HandlerConfig {
	if c == nil {
		return gcmd.HandlerConfig{}
	}
	return c.cronConfig
}

func (c *BatchCommand) CLIHandler() any {
	return &batchCLI{cmd: c}
}

func (c *BatchCommand) CLIOptions() gcmd.CLIConfig {
	if c == nil {
		return gcmd.CLIConfig{}
	}
	return c.cliConfig
}

// RunFile generates every request in the JSON batch file at path.
func (c *BatchCommand) RunFile(ctx context.Context, path string) ([]paper.Record, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("batch file path is required", errors.CategoryValidation).
			WithTextCode("BATCH_FILE_REQUIRED")
	}
	return c.run(ctx, path)
}

func (c *BatchCommand) run(ctx context.Context, from string) ([]paper.Record, error) {
	if c == nil {
		return nil, errors.New("batch command is nil", errors.CategoryInternal).
			WithTextCode("BATCH_CMD_NIL")
	}
	if c.generator == nil {
		return nil, errors.New("batch generator is required", errors.CategoryValidation).
			WithTextCode("GENERATOR_REQUIRED")
	}

	requests, err := c.loadRequests(ctx, from)
	if err != nil {
		return nil, err
	}

	records := make([]paper.Record, 0, len(requests))
	for _, req := range requests {
		if c.limits.MaxRequests > 0 && len(records) >= c.limits.MaxRequests {
			break
		}
		record, err := c.generator.Generate(ctx, req)
		if err != nil {
			return records, err
		}
		records = append(records, record)
		if c.limits.MinInterval > 0 && c.sleep != nil {
			c.sleep(c.limits.MinInterval)
		}
	}
	return records, nil
}

func (c *BatchCommand) loadRequests(ctx context.Context, from string) ([]paper.GenerateRequest, error) {
	if strings.TrimSpace(from) != "" {
		return loadBatchFile(from)
	}
	if c.loader == nil {
		return nil, errors.New("batch loader not configured", errors.CategoryValidation).
			WithTextCode("LOADER_REQUIRED")
	}
	return c.loader(ctx)
}

type batchCLI struct {
	cmd  *BatchCommand
	From string `kong:"name='from',help='Path to a JSON array of generation requests'"`
}

func (c *batchCLI) Run() error {
	if c == nil || c.cmd == nil {
		return errors.New("batch command is required", errors.CategoryInternal).
			WithTextCode("BATCH_CMD_NIL")
	}
	_, err := c.cmd.run(context.Background(), c.From)
	return err
}

// loadBatchFile reads a JSON array whose items use the POST body format.
func loadBatchFile(path string) ([]paper.GenerateRequest, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryExternal, "read batch file failed").
			WithTextCode("BATCH_FILE_READ")
	}

	var items []json.RawMessage
	if err := json.Unmarshal(content, &items); err != nil {
		return nil, errors.Wrap(err, errors.CategoryValidation, "batch file invalid JSON").
			WithTextCode("BATCH_FILE_INVALID")
	}
	requests := make([]paper.GenerateRequest, 0, len(items))
	for _, item := range items {
		req, err := paper.DecodeGenerateRequest(item)
		if err != nil {
			return nil, paper.AsGoError(err)
		}
		requests = append(requests, req)
	}
	return requests, nil
}
