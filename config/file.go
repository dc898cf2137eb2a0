package config

import (
	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"
)

// fileConfig 是 TOML 配置文件的结构。未出现的字段保留默认值。
//
// 示例:
//
//	flags = "STANDARD,DIP0020_OPCODES"
//
//	[cache]
//	signatures = 100000
//	exec_max_cost = 67108864
//
//	[database]
//	path = "/var/lib/dashscript"
//
//	[api]
//	listen = "127.0.0.1:8081"
//
//	[log]
//	level = "debug"
//	file = "dashscript.log"
type fileConfig struct {
	Flags *string `toml:"flags"`
	Cache struct {
		Signatures  *uint  `toml:"signatures"`
		ExecMaxCost *int64 `toml:"exec_max_cost"`
	} `toml:"cache"`
	Database struct {
		Path *string `toml:"path"`
	} `toml:"database"`
	API struct {
		Listen *string `toml:"listen"`
	} `toml:"api"`
	Log struct {
		Level *string `toml:"level"`
		File  *string `toml:"file"`
	} `toml:"log"`
}

// options 把文件中出现的字段转换为选项
func (fc *fileConfig) options() []Option {
	var opts []Option
	if fc.Flags != nil {
		opts = append(opts, WithFlagsString(*fc.Flags))
	}
	if fc.Cache.Signatures != nil {
		opts = append(opts, WithSigCacheSize(*fc.Cache.Signatures))
	}
	if fc.Cache.ExecMaxCost != nil {
		opts = append(opts, WithExecCacheMaxCost(*fc.Cache.ExecMaxCost))
	}
	if fc.Database.Path != nil {
		opts = append(opts, WithDatabasePath(*fc.Database.Path))
	}
	if fc.API.Listen != nil {
		opts = append(opts, WithListenAddr(*fc.API.Listen))
	}
	if fc.Log.Level != nil {
		opts = append(opts, WithLogLevel(*fc.Log.Level))
	}
	if fc.Log.File != nil {
		opts = append(opts, WithLogFile(*fc.Log.File))
	}
	return opts
}

// LoadFile 读取 TOML 配置文件并返回对应的选项
//
// 参数:
//   - path: 配置文件路径
//
// 返回值:
//   - []Option: 文件中出现的字段对应的选项
//   - error: 读取或解析失败，或文件包含未知字段时返回错误
func LoadFile(path string) ([]Option, error) {
	var fc fileConfig
	md, err := toml.DecodeFile(path, &fc)
	if err != nil {
		return nil, errors.Wrapf(err, "parse config %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, errors.Errorf("unknown config key %q in %s", undecoded[0].String(), path)
	}
	return fc.options(), nil
}

// DecodeString 解析 TOML 文本并返回对应的选项
func DecodeString(data string) ([]Option, error) {
	var fc fileConfig
	md, err := toml.Decode(data, &fc)
	if err != nil {
		return nil, errors.Wrap(err, "parse config")
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, errors.Errorf("unknown config key %q", undecoded[0].String())
	}
	return fc.options(), nil
}

// Load 从默认配置开始，依次应用配置文件和额外的选项。path 为空时跳过文件。
func Load(path string, opts ...Option) (*Options, error) {
	var all []Option
	if path != "" {
		fileOpts, err := LoadFile(path)
		if err != nil {
			return nil, err
		}
		all = append(all, fileOpts...)
	}
	all = append(all, opts...)
	return New(all...)
}
