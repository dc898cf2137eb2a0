package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tomthoros/dash/script"
)

// 测试默认配置
func TestDefaultOptions(t *testing.T) {
	o := DefaultOptions()
	assert.True(t, o.GetFlags().HasFlag(script.StandardVerifyFlags))
	assert.True(t, o.GetFlags().HasFlag(script.ScriptEnableDIP0020Opcodes))
	assert.Equal(t, uint(50000), o.GetSigCacheSize())
	assert.Equal(t, int64(1<<25), o.GetExecCacheMaxCost())
	assert.Empty(t, o.GetDatabasePath())
	assert.Equal(t, ":8081", o.GetListenAddr())
	assert.Equal(t, "info", o.GetLogLevel())
}

// 测试选项函数
func TestApplyOptions(t *testing.T) {
	o, err := New(
		WithFlagsString("P2SH,MINIMALDATA"),
		WithSigCacheSize(10),
		WithExecCacheMaxCost(1024),
		WithDatabasePath("/tmp/verdicts"),
		WithListenAddr("127.0.0.1:9000"),
		WithLogLevel(" DEBUG "),
		WithLogFile("x.log"),
	)
	require.NoError(t, err)
	assert.Equal(t, script.ScriptVerifyP2SH|script.ScriptVerifyMinimalData, o.GetFlags())
	assert.Equal(t, uint(10), o.GetSigCacheSize())
	assert.Equal(t, int64(1024), o.GetExecCacheMaxCost())
	assert.Equal(t, "/tmp/verdicts", o.GetDatabasePath())
	assert.Equal(t, "127.0.0.1:9000", o.GetListenAddr())
	assert.Equal(t, "debug", o.GetLogLevel())
	assert.Equal(t, "x.log", o.GetLogFile())

	o, err = New(WithFlags(script.ScriptVerifyNone))
	require.NoError(t, err)
	assert.Equal(t, script.ScriptVerifyNone, o.GetFlags())

	_, err = New(WithFlagsString("NOPE"))
	assert.Error(t, err)
	_, err = New(WithExecCacheMaxCost(-1))
	assert.Error(t, err)
	_, err = New(WithListenAddr(""))
	assert.Error(t, err)
	_, err = New(WithLogLevel("verbose"))
	assert.Error(t, err)
}

// 测试TOML配置文件
func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dashscript.toml")
	data := `
flags = "MANDATORY,DIP0020_OPCODES"

[cache]
signatures = 7

[api]
listen = "0.0.0.0:80"

[log]
level = "warn"
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	o, err := Load(path, WithSigCacheSize(9))
	require.NoError(t, err)
	assert.Equal(t, script.MandatoryVerifyFlags|script.ScriptEnableDIP0020Opcodes, o.GetFlags())
	// 命令行选项在文件之后应用
	assert.Equal(t, uint(9), o.GetSigCacheSize())
	assert.Equal(t, "0.0.0.0:80", o.GetListenAddr())
	assert.Equal(t, "warn", o.GetLogLevel())
	// 文件中未出现的字段保留默认值
	assert.Equal(t, int64(1<<25), o.GetExecCacheMaxCost())

	o, err = Load("")
	require.NoError(t, err)
	assert.Equal(t, DefaultOptions(), o)

	_, err = Load(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)
}

// 测试配置文件中的错误
func TestDecodeStringErrors(t *testing.T) {
	_, err := DecodeString(`unknown = 1`)
	assert.Error(t, err)

	_, err = DecodeString(`flags = `)
	assert.Error(t, err)

	opts, err := DecodeString(`flags = "BOGUS"`)
	require.NoError(t, err)
	_, err = New(opts...)
	assert.Error(t, err)

	opts, err = DecodeString(`[database]
path = "db"`)
	require.NoError(t, err)
	o, err := New(opts...)
	require.NoError(t, err)
	assert.Equal(t, "db", o.GetDatabasePath())
}
