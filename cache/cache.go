// Package cache 缓存脚本执行的结论，避免重复执行相同的程序。
package cache

import (
	"context"
	"encoding/binary"

	"github.com/dgraph-io/ristretto/v2"
	logging "github.com/dep2p/log"
	"github.com/minio/sha256-simd"
	"github.com/pkg/errors"
	"go.uber.org/fx"

	"github.com/tomthoros/dash/config"
	"github.com/tomthoros/dash/script"
)

var logger = logging.Logger("cache")

// 每个条目除栈数据外的固定开销
const entryOverhead = 64

// Entry 是一次执行的结论
type Entry struct {
	Success bool             // 是否成功
	Code    script.ErrorCode // 失败时的错误代码
	Stack   [][]byte         // 执行结束时的栈，VerifyScript 的结论不保存栈
}

// cost 返回条目在缓存中的开销
func (e *Entry) cost() int64 {
	c := int64(entryOverhead)
	for _, item := range e.Stack {
		c += int64(len(item)) + 8
	}
	return c
}

// ExecutionCache 是基于 ristretto 的执行结论缓存，可以并发使用
type ExecutionCache struct {
	cache *ristretto.Cache[string, *Entry]
}

// NewExecutionCache 创建执行缓存
//
// 参数:
//   - maxCost: 缓存的最大开销（字节），0 时返回的缓存不保存任何条目
//
// 返回值:
//   - *ExecutionCache: 执行缓存
//   - error: 创建失败时返回错误
func NewExecutionCache(maxCost int64) (*ExecutionCache, error) {
	if maxCost <= 0 {
		return &ExecutionCache{}, nil
	}
	c, err := ristretto.NewCache(&ristretto.Config[string, *Entry]{
		NumCounters:        maxCost / entryOverhead * 10, // 约为最大条目数的 10 倍
		MaxCost:            maxCost,
		BufferItems:        64,
		IgnoreInternalCost: true,
	})
	if err != nil {
		return nil, errors.Wrap(err, "create execution cache")
	}
	return &ExecutionCache{cache: c}, nil
}

// Key 计算执行的缓存键，覆盖标志、初始栈、程序和签名上下文
func Key(flags script.ScriptFlags, stack [][]byte, program, context []byte) string {
	h := sha256.New()
	var buf [8]byte

	binary.LittleEndian.PutUint32(buf[:4], uint32(flags))
	h.Write(buf[:4])

	writeBytes := func(b []byte) {
		binary.LittleEndian.PutUint64(buf[:], uint64(len(b)))
		h.Write(buf[:])
		h.Write(b)
	}

	binary.LittleEndian.PutUint64(buf[:], uint64(len(stack)))
	h.Write(buf[:])
	for _, item := range stack {
		writeBytes(item)
	}
	writeBytes(program)
	writeBytes(context)

	return string(h.Sum(nil))
}

// Get 查询缓存的结论
func (c *ExecutionCache) Get(key string) (*Entry, bool) {
	if c.cache == nil {
		return nil, false
	}
	return c.cache.Get(key)
}

// Set 保存结论。缓存可能拒绝条目，返回值表示是否被接受。
func (c *ExecutionCache) Set(key string, e *Entry) bool {
	if c.cache == nil || e == nil {
		return false
	}
	return c.cache.Set(key, e, e.cost())
}

// Wait 等待缓冲中的写入生效
func (c *ExecutionCache) Wait() {
	if c.cache != nil {
		c.cache.Wait()
	}
}

// Clear 清空缓存
func (c *ExecutionCache) Clear() {
	if c.cache != nil {
		c.cache.Clear()
	}
}

// Close 关闭缓存并停止后台 goroutine
func (c *ExecutionCache) Close() {
	if c.cache != nil {
		c.cache.Close()
	}
}

type NewExecutionCacheOutput struct {
	fx.Out
	Cache *ExecutionCache // 执行缓存实例
}

// NewFxExecutionCache 为 fx 应用创建执行缓存，并在停止时关闭
func NewFxExecutionCache(lc fx.Lifecycle, opts *config.Options) (out NewExecutionCacheOutput, err error) {
	c, err := NewExecutionCache(opts.GetExecCacheMaxCost())
	if err != nil {
		logger.Errorf("创建执行缓存失败: %v", err)
		return out, err
	}

	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			c.Close()
			return nil
		},
	})

	out.Cache = c
	return out, nil
}
