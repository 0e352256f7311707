// xpagectl 是 xpage 分页查询的命令行客户端。
//
// 用法:
//
//	xpagectl [全局选项] <命令> [命令参数]
//
// 全局选项:
//
//	-c, --config      配置文件（YAML/JSON，读取 xpage 段）
//	-u, --uri         MongoDB 连接串 (默认: mongodb://localhost:27017)
//	-d, --database    数据库名
//	-t, --timeout     单次命令超时 (默认: 30s)
//	    --log-level   日志级别 (debug/info/warn/error)
//	    --log-format  日志格式 (text/json)
//
// 命令:
//
//	find        按条件分页查询集合
//	aggregate   分页执行聚合管道
//	ping        检查数据库连接
//
// 命令行参数优先于配置文件。过滤条件、排序、管道均为 MongoDB Extended JSON。
//
// 退出码:
//
//	0: 成功
//	1: 执行失败（连接、查询错误）
//	2: 参数错误
//
// 示例:
//
//	xpagectl -d shop find -C orders --filter '{"status":"paid"}' --page 2 --limit 20
//	xpagectl -d shop find -C orders --populate customer:customers
//	xpagectl -d shop aggregate -C orders --pipeline '[{"$match":{"status":"paid"}}]' --strategy twocall
//	xpagectl -c xpage.yaml ping
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/urfave/cli/v3"
)

const (
	defaultURI     = "mongodb://localhost:27017"
	defaultTimeout = 30 * time.Second
)

// 版本信息，通过 -ldflags "-X main.Version=..." 注入。
var (
	Version   = "0.1.0-dev"
	GitCommit = "unknown"
	BuildTime = "unknown"
)

func main() {
	os.Exit(run(os.Args))
}

func createApp() *cli.Command {
	return &cli.Command{
		Name:    "xpagectl",
		Usage:   "MongoDB 分页查询命令行客户端",
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", Version, GitCommit, BuildTime),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "配置文件路径",
			},
			&cli.StringFlag{
				Name:    "uri",
				Aliases: []string{"u"},
				Usage:   "MongoDB 连接串",
				Value:   defaultURI,
				Sources: cli.EnvVars("XPAGE_MONGO_URI"),
			},
			&cli.StringFlag{
				Name:    "database",
				Aliases: []string{"d"},
				Usage:   "数据库名",
			},
			&cli.DurationFlag{
				Name:    "timeout",
				Aliases: []string{"t"},
				Usage:   "命令超时时间",
				Value:   defaultTimeout,
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "日志级别 (debug/info/warn/error)",
				Value: "warn",
			},
			&cli.StringFlag{
				Name:  "log-format",
				Usage: "日志格式 (text/json)",
				Value: "text",
			},
		},
		Commands: createCommands(),
		// 由 run() 统一映射退出码
		ExitErrHandler: func(_ context.Context, _ *cli.Command, err error) {
			if _, ok := err.(cli.ExitCoder); ok {
				fmt.Fprintln(os.Stderr, err)
			}
		},
	}
}

func run(args []string) int {
	app := createApp()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	setupSignalHandler(cancel)

	return exitCode(app.Run(ctx, args))
}

// exitCode 错误到退出码的映射。
func exitCode(err error) int {
	if err == nil {
		return 0
	}
	var usageErr *usageError
	if errors.As(err, &usageErr) {
		fmt.Fprintf(os.Stderr, "参数错误: %v\n", usageErr)
		return 2
	}
	if isCLIUsageError(err) {
		return 2
	}
	fmt.Fprintf(os.Stderr, "错误: %v\n", err)
	return 1
}
