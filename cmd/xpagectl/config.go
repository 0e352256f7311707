package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/omeyang/xpage/pkg/config/xconf"
	"github.com/omeyang/xpage/pkg/observability/xlog"
	"github.com/omeyang/xpage/pkg/resilience/xbreaker"
	"github.com/omeyang/xpage/pkg/resilience/xretry"
	"github.com/omeyang/xpage/pkg/storage/xmongo"
)

// configSection 配置文件中读取的段。
const configSection = "xpage"

// settings 运行参数，来自配置文件和命令行。
type settings struct {
	URI      string        `koanf:"uri"`
	Database string        `koanf:"database"`
	Timeout  time.Duration `koanf:"timeout"`

	Log struct {
		Level  string `koanf:"level"`
		Format string `koanf:"format"`
		File   string `koanf:"file"`
	} `koanf:"log"`

	Retry struct {
		Attempts int           `koanf:"attempts"`
		Delay    time.Duration `koanf:"delay"`
	} `koanf:"retry"`

	Breaker struct {
		Enabled bool `koanf:"enabled"`
	} `koanf:"breaker"`

	SlowQuery struct {
		Threshold time.Duration `koanf:"threshold"`
	} `koanf:"slowQuery"`
}

func defaultSettings() settings {
	var s settings
	s.URI = defaultURI
	s.Timeout = defaultTimeout
	s.Log.Level = "warn"
	s.Log.Format = "text"
	return s
}

// decodeSettings 从配置读取 xpage 段，缺失的键保留默认值。
func decodeSettings(cfg xconf.Config) (settings, error) {
	s := defaultSettings()
	if !cfg.Exists(configSection) {
		return s, nil
	}
	if err := cfg.Unmarshal(configSection, &s); err != nil {
		return s, err
	}
	return s, nil
}

// loadSettings 合并配置文件与显式给出的全局参数。
func loadSettings(cmd *cli.Command) (settings, error) {
	s := defaultSettings()
	if path := cmd.String("config"); path != "" {
		cfg, err := xconf.New(path)
		if err != nil {
			return s, &usageError{msg: fmt.Sprintf("load config: %v", err)}
		}
		if s, err = decodeSettings(cfg); err != nil {
			return s, &usageError{msg: fmt.Sprintf("decode config: %v", err)}
		}
	}

	if cmd.IsSet("uri") || s.URI == "" {
		s.URI = cmd.String("uri")
	}
	if cmd.IsSet("database") {
		s.Database = cmd.String("database")
	}
	if cmd.IsSet("timeout") || s.Timeout <= 0 {
		s.Timeout = cmd.Duration("timeout")
	}
	if cmd.IsSet("log-level") {
		s.Log.Level = cmd.String("log-level")
	}
	if cmd.IsSet("log-format") {
		s.Log.Format = cmd.String("log-format")
	}

	if s.Database == "" {
		return s, &usageError{msg: "database is required (--database or xpage.database)"}
	}
	return s, nil
}

// buildLogger 日志写到 stderr 或轮转文件，stdout 只输出结果。
func buildLogger(s settings, stderr io.Writer) (xlog.Logger, func() error, error) {
	b := xlog.New().
		SetOutput(stderr).
		SetLevelString(s.Log.Level).
		SetFormat(s.Log.Format)
	if s.Log.File != "" {
		b = b.SetRotation(s.Log.File, xlog.RotateMaxBackups(3))
	}
	logger, cleanup, err := b.Build()
	if err != nil {
		return nil, nil, &usageError{msg: err.Error()}
	}
	return logger, cleanup, nil
}

// mongoOptions 将运行参数转换为 xmongo 选项。
func mongoOptions(s settings, logger xlog.Logger) []xmongo.Option {
	opts := []xmongo.Option{
		// 命令整体已有超时
		xmongo.WithQueryTimeout(0),
		xmongo.WithLogger(logger),
	}

	if s.SlowQuery.Threshold > 0 {
		opts = append(opts,
			xmongo.WithSlowQueryThreshold(s.SlowQuery.Threshold),
			xmongo.WithSlowQueryHook(func(ctx context.Context, info xmongo.SlowQueryInfo) {
				logger.Warn(ctx, "slow query",
					slog.String("collection", info.Collection),
					slog.String("operation", info.Operation),
					slog.Duration("duration", info.Duration),
				)
			}),
		)
	}

	if s.Retry.Attempts > 1 {
		backoff := xretry.NewExponentialBackoff()
		if s.Retry.Delay > 0 {
			backoff = xretry.NewExponentialBackoff(xretry.WithInitialDelay(s.Retry.Delay))
		}
		opts = append(opts, xmongo.WithRetry(xretry.NewRetryer(
			xretry.WithRetryPolicy(xretry.NewFixedRetry(s.Retry.Attempts)),
			xretry.WithBackoffPolicy(backoff),
			xretry.WithOnRetry(func(attempt int, err error) {
				logger.Warn(context.Background(), "retrying query", slog.Int("attempt", attempt), xlog.Err(err))
			}),
		)))
	}

	if s.Breaker.Enabled {
		opts = append(opts, xmongo.WithBreaker(xbreaker.NewBreaker("xpagectl",
			xbreaker.WithOnStateChange(func(name string, from, to xbreaker.State) {
				logger.Warn(context.Background(), "breaker state changed",
					slog.String("breaker", name),
					slog.String("from", from.String()),
					slog.String("to", to.String()),
				)
			}),
		)))
	}
	return opts
}
