// Package verify 组合脚本引擎、签名检查器、缓存和结论存储，提供脚本验证服务。
package verify

import (
	"context"

	logging "github.com/dep2p/log"
	"github.com/minio/sha256-simd"
	"github.com/pkg/errors"

	"github.com/tomthoros/dash/cache"
	"github.com/tomthoros/dash/config"
	"github.com/tomthoros/dash/database"
	"github.com/tomthoros/dash/script"
	"github.com/tomthoros/dash/sign/ecdsa"
)

var logger = logging.Logger("verify")

// 结论的来源
const (
	SourceEngine = "engine" // 本次执行得到
	SourceCache  = "cache"  // 来自执行缓存
	SourceStore  = "store"  // 来自结论存储
)

// 缓存键的前缀，区分两种请求
const (
	evalKeyPrefix   = "e"
	verifyKeyPrefix = "v"
)

// EvalRequest 是在给定栈上执行单个脚本的请求
type EvalRequest struct {
	Stack   [][]byte           // 初始栈，栈底在前
	Script  []byte             // 要执行的脚本
	Flags   script.ScriptFlags // 验证标志
	Message []byte             // 签名上下文
}

// VerifyRequest 是验证签名脚本与公钥脚本的请求
type VerifyRequest struct {
	ScriptSig    []byte             // 签名脚本
	ScriptPubKey []byte             // 公钥脚本
	Flags        script.ScriptFlags // 验证标志
	Message      []byte             // 签名上下文
}

// Result 是一次请求的结论
type Result struct {
	Success bool             // 是否成功
	Code    script.ErrorCode // 错误代码，成功时为 ErrOK
	Stack   [][]byte         // 执行结束时的栈，只有 Evaluate 返回
	Source  string           // 结论的来源
}

// Service 是脚本验证服务，可以并发使用
type Service struct {
	flags     script.ScriptFlags
	sigCache  *script.SigCache
	execCache *cache.ExecutionCache
	store     *database.Store
}

// NewService 创建验证服务。execCache 和 store 可以为 nil。
//
// 参数:
//   - opts: 配置，提供默认标志和签名缓存大小
//   - execCache: 执行缓存
//   - store: 结论存储
//
// 返回值:
//   - *Service: 验证服务
func NewService(opts *config.Options, execCache *cache.ExecutionCache, store *database.Store) *Service {
	s := &Service{
		flags:     opts.GetFlags(),
		execCache: execCache,
		store:     store,
	}
	if size := opts.GetSigCacheSize(); size > 0 {
		s.sigCache = script.NewSigCache(size)
	}
	return s
}

// DefaultFlags 返回配置的默认验证标志
func (s *Service) DefaultFlags() script.ScriptFlags {
	return s.flags
}

// checker 为签名上下文创建签名检查器，有签名缓存时包装为缓存检查器
func (s *Service) checker(message []byte) script.SignatureChecker {
	c := ecdsa.NewChecker(message)
	if s.sigCache == nil {
		return c
	}
	return script.NewCachingChecker(c, s.sigCache, script.Hash(sha256.Sum256(message)))
}

// Evaluate 在请求的栈上执行脚本
//
// 处理逻辑:
//  1. 检查上下文是否已取消
//  2. 依次查询执行缓存和结论存储
//  3. 未命中时执行脚本，并记录结论
//
// 参数:
//   - ctx: 上下文
//   - req: 执行请求
//
// 返回值:
//   - *Result: 结论；脚本失败不是错误，由 Result.Code 给出
//   - error: 上下文已取消时返回错误
func (s *Service) Evaluate(ctx context.Context, req *EvalRequest) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.Wrap(err, "evaluate")
	}

	key := evalKeyPrefix + cache.Key(req.Flags, req.Stack, req.Script, req.Message)
	if r, ok := s.lookup(key); ok {
		return r, nil
	}

	stk := make([][]byte, len(req.Stack))
	copy(stk, req.Stack)
	ok, code := script.Evaluate(&stk, req.Script, req.Flags, s.checker(req.Message), script.SigVersionBase)

	r := &Result{Success: ok, Code: code, Stack: stk, Source: SourceEngine}
	s.record(key, r)
	return r, nil
}

// Verify 验证签名脚本与公钥脚本
//
// 参数:
//   - ctx: 上下文
//   - req: 验证请求
//
// 返回值:
//   - *Result: 结论；验证失败不是错误，由 Result.Code 给出
//   - error: 上下文已取消时返回错误
func (s *Service) Verify(ctx context.Context, req *VerifyRequest) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.Wrap(err, "verify")
	}

	key := verifyKeyPrefix + cache.Key(req.Flags, [][]byte{req.ScriptSig}, req.ScriptPubKey, req.Message)
	if r, ok := s.lookup(key); ok {
		return r, nil
	}

	err := script.VerifyScript(req.ScriptSig, req.ScriptPubKey, req.Flags, s.checker(req.Message))
	if err != nil {
		logger.Debugf("脚本验证失败: %v", err)
	}

	r := &Result{Success: err == nil, Code: script.ErrorCodeOf(err), Source: SourceEngine}
	s.record(key, r)
	return r, nil
}

// lookup 依次查询执行缓存和结论存储。存储中的结论会回填到执行缓存。
func (s *Service) lookup(key string) (*Result, bool) {
	if s.execCache != nil {
		if e, ok := s.execCache.Get(key); ok {
			return &Result{
				Success: e.Success,
				Code:    e.Code,
				Stack:   copyStack(e.Stack),
				Source:  SourceCache,
			}, true
		}
	}

	if s.store == nil {
		return nil, false
	}
	v, err := s.store.Get(key)
	if err != nil {
		if !errors.Is(err, database.ErrNotFound) {
			logger.Warnf("读取结论失败: %v", err)
		}
		return nil, false
	}

	code, ok := script.ParseErrorTag(v.Tag)
	if !ok {
		logger.Warnf("结论包含未知的错误标签: %s", v.Tag)
		return nil, false
	}
	stack, err := database.DecodeStack(v.Stack)
	if err != nil {
		logger.Warnf("解码结论失败: %v", err)
		return nil, false
	}

	r := &Result{Success: v.Success, Code: code, Stack: stack, Source: SourceStore}
	if s.execCache != nil {
		s.execCache.Set(key, &cache.Entry{Success: r.Success, Code: r.Code, Stack: copyStack(stack)})
	}
	return r, true
}

// record 把结论写入执行缓存和结论存储。写入失败只记录日志。
func (s *Service) record(key string, r *Result) {
	if s.execCache != nil {
		s.execCache.Set(key, &cache.Entry{Success: r.Success, Code: r.Code, Stack: copyStack(r.Stack)})
	}
	if s.store != nil {
		v := &database.Verdict{
			Success: r.Success,
			Tag:     r.Code.Tag(),
			Stack:   database.EncodeStack(r.Stack),
		}
		if err := s.store.Put(key, v); err != nil {
			logger.Warnf("保存结论失败: %v", err)
		}
	}
}

func copyStack(stack [][]byte) [][]byte {
	if stack == nil {
		return nil
	}
	out := make([][]byte, len(stack))
	for i, item := range stack {
		out[i] = append([]byte(nil), item...)
	}
	return out
}
