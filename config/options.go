// Package config 提供脚本解释器与验证服务的配置。
package config

import (
	"strings"

	"github.com/pkg/errors"

	"github.com/tomthoros/dash/script"
)

const Version = "0.1.0"

// Option 定义了一个函数类型，用于配置解释器
type Option func(*Options) error

// Options 是解释器与验证服务的配置
type Options struct {
	flags            script.ScriptFlags // 默认验证标志
	sigCacheSize     uint               // 签名缓存条目数
	execCacheMaxCost int64              // 执行缓存的最大开销（字节）
	databasePath     string             // 结论存储目录，为空时使用内存存储
	listenAddr       string             // HTTP API 监听地址
	logFile          string             // 日志文件，为空时只输出到标准错误
	logLevel         string             // 日志级别
}

// DefaultOptions 返回默认配置：标准验证标志加 DIP0020 操作码，内存存储。
func DefaultOptions() *Options {
	return &Options{
		flags:            script.StandardVerifyFlags | script.ScriptEnableDIP0020Opcodes,
		sigCacheSize:     50000,   // 签名缓存 5 万条
		execCacheMaxCost: 1 << 25, // 执行缓存 32MB
		databasePath:     "",
		listenAddr:       ":8081",
		logLevel:         "info",
	}
}

// ApplyOptions 应用给定的选项到 Options 对象
// 参数:
//   - opts: 可变参数,包含多个选项函数
//
// 返回值:
//   - error: 应用选项过程中的错误信息
func (opt *Options) ApplyOptions(opts ...Option) error {
	for _, o := range opts {
		if err := o(opt); err != nil {
			return err
		}
	}
	return nil
}

// New 在默认配置上应用选项
func New(opts ...Option) (*Options, error) {
	o := DefaultOptions()
	if err := o.ApplyOptions(opts...); err != nil {
		return nil, err
	}
	return o, nil
}

// GetFlags 获取默认验证标志
func (opt *Options) GetFlags() script.ScriptFlags {
	return opt.flags
}

// GetSigCacheSize 获取签名缓存条目数
func (opt *Options) GetSigCacheSize() uint {
	return opt.sigCacheSize
}

// GetExecCacheMaxCost 获取执行缓存的最大开销
func (opt *Options) GetExecCacheMaxCost() int64 {
	return opt.execCacheMaxCost
}

// GetDatabasePath 获取结论存储目录
func (opt *Options) GetDatabasePath() string {
	return opt.databasePath
}

// GetListenAddr 获取 HTTP API 监听地址
func (opt *Options) GetListenAddr() string {
	return opt.listenAddr
}

// GetLogFile 获取日志文件
func (opt *Options) GetLogFile() string {
	return opt.logFile
}

// GetLogLevel 获取日志级别
func (opt *Options) GetLogLevel() string {
	return opt.logLevel
}

// WithFlags 设置默认验证标志
func WithFlags(flags script.ScriptFlags) Option {
	return func(o *Options) error {
		o.flags = flags
		return nil
	}
}

// WithFlagsString 以名称列表设置默认验证标志，例如 "STANDARD,DIP0020_OPCODES"
func WithFlagsString(s string) Option {
	return func(o *Options) error {
		flags, err := script.ParseScriptFlags(s)
		if err != nil {
			return errors.Wrap(err, "parse verification flags")
		}
		o.flags = flags
		return nil
	}
}

// WithSigCacheSize 设置签名缓存条目数，0 表示不缓存
func WithSigCacheSize(size uint) Option {
	return func(o *Options) error {
		o.sigCacheSize = size
		return nil
	}
}

// WithExecCacheMaxCost 设置执行缓存的最大开销
func WithExecCacheMaxCost(cost int64) Option {
	return func(o *Options) error {
		if cost < 0 {
			return errors.Errorf("exec cache cost must not be negative: %d", cost)
		}
		o.execCacheMaxCost = cost
		return nil
	}
}

// WithDatabasePath 设置结论存储目录
func WithDatabasePath(path string) Option {
	return func(o *Options) error {
		o.databasePath = path
		return nil
	}
}

// WithListenAddr 设置 HTTP API 监听地址
func WithListenAddr(addr string) Option {
	return func(o *Options) error {
		if addr == "" {
			return errors.New("listen address must not be empty")
		}
		o.listenAddr = addr
		return nil
	}
}

// WithLogFile 设置日志文件
func WithLogFile(file string) Option {
	return func(o *Options) error {
		o.logFile = file
		return nil
	}
}

// 支持的日志级别
var logLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// WithLogLevel 设置日志级别：debug、info、warn 或 error
func WithLogLevel(level string) Option {
	return func(o *Options) error {
		level = strings.ToLower(strings.TrimSpace(level))
		if !logLevels[level] {
			return errors.Errorf("unknown log level %q", level)
		}
		o.logLevel = level
		return nil
	}
}
