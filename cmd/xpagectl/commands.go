package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/google/uuid"
	"github.com/urfave/cli/v3"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/omeyang/xpage/pkg/observability/xlog"
	"github.com/omeyang/xpage/pkg/observability/xmetrics"
	"github.com/omeyang/xpage/pkg/pagination/xpage"
	"github.com/omeyang/xpage/pkg/storage/xmongo"
	"github.com/omeyang/xpage/pkg/util/xjson"
)

// usageError 参数错误，退出码 2。
type usageError struct {
	msg string
}

func (e *usageError) Error() string { return e.msg }

func usageErrorf(format string, args ...any) error {
	return &usageError{msg: fmt.Sprintf(format, args...)}
}

// isCLIUsageError 识别 urfave/cli 自身产生的参数错误。
func isCLIUsageError(err error) bool {
	msg := err.Error()
	for _, prefix := range []string{
		"flag provided but not defined",
		"invalid value",
		"Required flag",
		"No help topic for",
		"flag needs an argument",
	} {
		if strings.Contains(msg, prefix) {
			return true
		}
	}
	return false
}

func createCommands() []*cli.Command {
	return []*cli.Command{
		createFindCommand(),
		createAggregateCommand(),
		createPingCommand(),
	}
}

func windowFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "collection",
			Aliases: []string{"C"},
			Usage:   "集合名",
		},
		&cli.Int64Flag{
			Name:  "page",
			Usage: "页码，从 1 开始",
			Value: xpage.DefaultPage,
		},
		&cli.Int64Flag{
			Name:  "limit",
			Usage: "每页条数",
			Value: xpage.DefaultLimit,
		},
	}
}

func createFindCommand() *cli.Command {
	return &cli.Command{
		Name:    "find",
		Aliases: []string{"f"},
		Usage:   "按条件分页查询",
		Flags: append(windowFlags(),
			&cli.StringFlag{Name: "filter", Usage: "过滤条件 (Extended JSON)", Value: "{}"},
			&cli.StringFlag{Name: "sort", Usage: "排序 (Extended JSON)，默认 {\"createdAt\":-1}"},
			&cli.StringFlag{Name: "select", Usage: "投影 (Extended JSON)，默认 {\"password\":0}"},
			&cli.StringSliceFlag{Name: "populate", Usage: "关联展开 path:from[:many]，可重复"},
		),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			q, err := findQueryFromFlags(cmd)
			if err != nil {
				return err
			}
			return withSession(ctx, cmd, func(ctx context.Context, sess *session) error {
				src, err := sess.source(cmd.String("collection"))
				if err != nil {
					return err
				}
				sess.logger.Debug(ctx, "find query", slog.String("query", xjson.Pretty(q)))
				res, err := xpage.Paginate(ctx, src, q, sess.pageOptions()...)
				if err != nil {
					return err
				}
				return sess.print(res)
			})
		},
	}
}

func createAggregateCommand() *cli.Command {
	return &cli.Command{
		Name:    "aggregate",
		Aliases: []string{"a"},
		Usage:   "分页执行聚合管道",
		Flags: append(windowFlags(),
			&cli.StringFlag{Name: "pipeline", Usage: "聚合管道 (Extended JSON 数组)", Value: "[]"},
			&cli.StringFlag{Name: "strategy", Usage: "分页策略 (facet/twocall)", Value: xpage.StrategyFacet.String()},
		),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			q, strategy, err := aggregateQueryFromFlags(cmd)
			if err != nil {
				return err
			}
			return withSession(ctx, cmd, func(ctx context.Context, sess *session) error {
				src, err := sess.source(cmd.String("collection"))
				if err != nil {
					return err
				}
				sess.logger.Debug(ctx, "aggregate query",
					slog.String("query", xjson.Pretty(q)),
					slog.String("strategy", strategy.String()),
				)
				opts := append(sess.pageOptions(), xpage.WithStrategy(strategy))
				res, err := xpage.PaginateAggregate(ctx, src, q, opts...)
				if err != nil {
					return err
				}
				return sess.print(res)
			})
		},
	}
}

func createPingCommand() *cli.Command {
	return &cli.Command{
		Name:  "ping",
		Usage: "检查数据库连接",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return withSession(ctx, cmd, func(ctx context.Context, sess *session) error {
				if err := sess.mongo.Health(ctx); err != nil {
					return err
				}
				return sess.print(map[string]any{
					"status":   "ok",
					"database": sess.settings.Database,
					"stats":    sess.mongo.Stats(),
				})
			})
		},
	}
}

func findQueryFromFlags(cmd *cli.Command) (xpage.Query, error) {
	if cmd.String("collection") == "" {
		return xpage.Query{}, usageErrorf("--collection is required")
	}
	q := xpage.Query{
		Page:  cmd.Int64("page"),
		Limit: cmd.Int64("limit"),
	}

	filter, err := parseDocument("filter", cmd.String("filter"))
	if err != nil {
		return q, err
	}
	q.Filter = filter

	if cmd.IsSet("sort") {
		if q.Sort, err = parseDocument("sort", cmd.String("sort")); err != nil {
			return q, err
		}
	}
	if cmd.IsSet("select") {
		if q.Select, err = parseDocument("select", cmd.String("select")); err != nil {
			return q, err
		}
	}
	for _, raw := range cmd.StringSlice("populate") {
		p, err := parsePopulate(raw)
		if err != nil {
			return q, err
		}
		q.Populate = append(q.Populate, p)
	}
	return q, nil
}

func aggregateQueryFromFlags(cmd *cli.Command) (xpage.AggregateQuery, xpage.Strategy, error) {
	if cmd.String("collection") == "" {
		return xpage.AggregateQuery{}, 0, usageErrorf("--collection is required")
	}
	strategy, err := xpage.ParseStrategy(cmd.String("strategy"))
	if err != nil {
		return xpage.AggregateQuery{}, 0, usageErrorf("--strategy: %v", err)
	}
	pipeline, err := parsePipeline(cmd.String("pipeline"))
	if err != nil {
		return xpage.AggregateQuery{}, 0, err
	}
	return xpage.AggregateQuery{
		Pipeline: pipeline,
		Page:     cmd.Int64("page"),
		Limit:    cmd.Int64("limit"),
	}, strategy, nil
}

// parseDocument 解析 Extended JSON 文档，保留键顺序。
func parseDocument(name, s string) (bson.D, error) {
	doc := bson.D{}
	if strings.TrimSpace(s) == "" {
		return doc, nil
	}
	if err := bson.UnmarshalExtJSON([]byte(s), false, &doc); err != nil {
		return nil, usageErrorf("--%s: %v", name, err)
	}
	return doc, nil
}

// parsePipeline 解析 Extended JSON 数组形式的管道。
func parsePipeline(s string) ([]bson.D, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	var wrapper struct {
		Pipeline []bson.D `bson:"pipeline"`
	}
	if err := bson.UnmarshalExtJSON([]byte(`{"pipeline":`+s+`}`), false, &wrapper); err != nil {
		return nil, usageErrorf("--pipeline: %v", err)
	}
	return wrapper.Pipeline, nil
}

// parsePopulate 解析 path:from[:many]。
func parsePopulate(raw string) (xpage.Populate, error) {
	parts := strings.Split(raw, ":")
	if len(parts) < 2 || len(parts) > 3 || parts[0] == "" || parts[1] == "" {
		return xpage.Populate{}, usageErrorf("--populate %q: want path:from[:many]", raw)
	}
	p := xpage.Populate{Path: parts[0], From: parts[1]}
	if len(parts) == 3 {
		if parts[2] != "many" {
			return xpage.Populate{}, usageErrorf("--populate %q: unknown modifier %q", raw, parts[2])
		}
		p.Many = true
	}
	return p, nil
}

// session 一次命令执行所需的连接、日志与观测。
type session struct {
	settings settings
	logger   xlog.Logger
	observer xmetrics.Observer
	mongo    xmongo.Mongo
	db       *mongo.Database
	cmd      *cli.Command
}

func (s *session) source(collection string) (xpage.Source, error) {
	if collection == "" {
		return nil, usageErrorf("--collection is required")
	}
	return s.mongo.Source(s.db.Collection(collection)), nil
}

func (s *session) pageOptions() []xpage.Option {
	return []xpage.Option{
		xpage.WithLogger(s.logger),
		xpage.WithObserver(s.observer),
	}
}

func (s *session) print(v any) error {
	return xjson.Encode(s.cmd.Root().Writer, v)
}

// withSession 加载配置、建立连接，执行 fn 后释放资源。
func withSession(ctx context.Context, cmd *cli.Command, fn func(context.Context, *session) error) (err error) {
	s, err := loadSettings(cmd)
	if err != nil {
		return err
	}

	logger, cleanup, err := buildLogger(s, cmd.Root().ErrWriter)
	if err != nil {
		return err
	}
	defer func() { _ = cleanup() }()

	ctx = xlog.ContextWithRunID(ctx, uuid.NewString())
	logger = logger.With(xlog.Component("xpagectl"))

	observer, err := xmetrics.NewOTelObserver(xmetrics.WithInstrumentationName("github.com/omeyang/xpage/cmd/xpagectl"))
	if err != nil {
		return err
	}

	client, err := mongo.Connect(options.Client().ApplyURI(s.URI))
	if err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	m, err := xmongo.New(client, append(mongoOptions(s, logger), xmongo.WithObserver(observer))...)
	if err != nil {
		_ = client.Disconnect(context.Background())
		return err
	}
	defer func() {
		if cerr := m.Close(context.Background()); cerr != nil {
			logger.Warn(context.Background(), "close client", xlog.Err(cerr))
		}
	}()

	ctx, cancel := context.WithTimeout(ctx, s.Timeout)
	defer cancel()

	logger.Debug(ctx, "command started",
		slog.String("command", cmd.Name),
		slog.String("database", s.Database),
	)
	err = fn(ctx, &session{
		settings: s,
		logger:   logger,
		observer: observer,
		mongo:    m,
		db:       client.Database(s.Database),
		cmd:      cmd,
	})
	if err != nil {
		logger.Error(ctx, "command failed", slog.String("command", cmd.Name), xlog.Err(err))
		return err
	}
	logger.Debug(ctx, "command finished", slog.String("command", cmd.Name))
	return nil
}

// setupSignalHandler 第一次信号取消命令，第二次强制退出（130 = 128 + SIGINT）。
func setupSignalHandler(cancel context.CancelFunc) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()

		<-sigCh
		signal.Stop(sigCh)
		os.Exit(130)
	}()
}
