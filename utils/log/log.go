// Package log 配置进程范围的日志输出。
package log

import (
	"io"
	"os"

	logging "github.com/dep2p/log"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// init 初始化全局日志实例
func init() {
	// 设置JSON格式以便于解析
	logging.SetupLogging(logging.Config{
		Format: logging.JSONOutput,
		Stderr: true,
		Level:  logging.LevelInfo,
	})
}

// 日志级别名称到 dep2p/log 级别的映射
var levels = map[string]logging.LogLevel{
	"debug": logging.LevelDebug,
	"info":  logging.LevelInfo,
	"warn":  logging.LevelWarn,
	"error": logging.LevelError,
}

// Setup 按级别名称和日志文件配置日志。filename 为空时只输出到标准错误。
//
// 参数:
//   - level: debug、info、warn 或 error
//   - filename: 日志文件
//
// 返回值:
//   - error: 级别名称无效时返回错误
func Setup(level, filename string) error {
	lvl, ok := levels[level]
	if !ok {
		return errors.Errorf("unknown log level %q", level)
	}
	logging.SetupLogging(logging.Config{
		Format: logging.JSONOutput,
		Stderr: filename == "",
		File:   filename,
		Level:  lvl,
	})
	return nil
}

// NewAccessLogger 创建 HTTP 访问日志使用的 logrus 实例。w 为 nil 时输出到标准输出。
func NewAccessLogger(w io.Writer) *logrus.Logger {
	if w == nil {
		w = os.Stdout
	}
	l := logrus.New()
	l.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})
	l.SetLevel(logrus.InfoLevel)
	l.SetOutput(w)
	return l
}
