package verify

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx"
	"go.uber.org/fx/fxtest"

	"github.com/tomthoros/dash/cache"
	"github.com/tomthoros/dash/config"
	"github.com/tomthoros/dash/database"
	"github.com/tomthoros/dash/script"
	"github.com/tomthoros/dash/sign/ecdsa"
)

// newTestService 创建使用内存存储的服务
func newTestService(t *testing.T) (*Service, *cache.ExecutionCache, *database.Store) {
	opts := config.DefaultOptions()
	execCache, err := cache.NewExecutionCache(1 << 20)
	require.NoError(t, err)
	store, err := database.Open("")
	require.NoError(t, err)
	t.Cleanup(func() {
		execCache.Close()
		store.Close()
	})
	return NewService(opts, execCache, store), execCache, store
}

// 测试Evaluate执行字节操作脚本
func TestServiceEvaluate(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	flags := svc.DefaultFlags()

	r, err := svc.Evaluate(ctx, &EvalRequest{
		Stack:  [][]byte{[]byte("ab"), []byte("cd")},
		Script: script.MustParseAsm("CAT"),
		Flags:  flags,
	})
	require.NoError(t, err)
	assert.True(t, r.Success)
	assert.Equal(t, script.ErrOK, r.Code)
	assert.Equal(t, SourceEngine, r.Source)
	require.Len(t, r.Stack, 1)
	assert.Equal(t, []byte("abcd"), r.Stack[0])

	r, err = svc.Evaluate(ctx, &EvalRequest{
		Stack:  [][]byte{[]byte("ab"), {0x03}},
		Script: script.MustParseAsm("SPLIT"),
		Flags:  flags,
	})
	require.NoError(t, err)
	assert.False(t, r.Success)
	assert.Equal(t, script.ErrInvalidSplitRange, r.Code)

	r, err = svc.Evaluate(ctx, &EvalRequest{
		Stack:  [][]byte{[]byte("ab"), []byte("cd")},
		Script: script.MustParseAsm("CAT"),
		Flags:  script.StandardVerifyFlags,
	})
	require.NoError(t, err)
	assert.Equal(t, script.ErrDisabledOpcode, r.Code)
}

// 测试Evaluate不修改请求中的栈
func TestServiceEvaluateKeepsRequest(t *testing.T) {
	svc, _, _ := newTestService(t)
	stack := [][]byte{{0x01}, {0x02}}
	_, err := svc.Evaluate(context.Background(), &EvalRequest{
		Stack:  stack,
		Script: script.MustParseAsm("SWAP DROP"),
		Flags:  svc.DefaultFlags(),
	})
	require.NoError(t, err)
	assert.Equal(t, []byte{0x01}, stack[0])
	assert.Equal(t, []byte{0x02}, stack[1])
}

// 测试结论依次来自引擎、缓存和存储
func TestServiceVerdictSources(t *testing.T) {
	svc, execCache, store := newTestService(t)
	ctx := context.Background()
	req := &EvalRequest{
		Stack:  [][]byte{[]byte("abcd"), {0x02}},
		Script: script.MustParseAsm("SPLIT DROP"),
		Flags:  script.ScriptEnableDIP0020Opcodes,
	}

	r, err := svc.Evaluate(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, SourceEngine, r.Source)
	execCache.Wait()

	r, err = svc.Evaluate(ctx, req)
	require.NoError(t, err)
	assert.NotEqual(t, SourceEngine, r.Source)
	assert.True(t, r.Success)
	require.Len(t, r.Stack, 1)
	assert.Equal(t, []byte("ab"), r.Stack[0])

	execCache.Wait()
	execCache.Clear()
	execCache.Wait()

	r, err = svc.Evaluate(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, SourceStore, r.Source)
	assert.True(t, r.Success)
	require.Len(t, r.Stack, 1)
	assert.Equal(t, []byte("ab"), r.Stack[0])

	// 不同标志是不同的请求
	req.Flags = script.ScriptVerifyNone
	r, err = svc.Evaluate(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, SourceEngine, r.Source)
	assert.Equal(t, script.ErrDisabledOpcode, r.Code)

	n, err := store.Count()
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

// 测试Verify使用secp256k1签名
func TestServiceVerify(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	priv, err := ecdsa.GenerateKey()
	require.NoError(t, err)
	pubKey := ecdsa.PubKeyBytes(priv)
	pkScript, err := script.PayToPubKeyHashScript(script.Hash160(pubKey))
	require.NoError(t, err)

	message := []byte("tx")
	sig := ecdsa.Sign(priv, message, pkScript, script.SigHashAll)
	sigScript, err := script.NewScriptBuilder().AddData(sig).AddData(pubKey).Script()
	require.NoError(t, err)

	req := &VerifyRequest{
		ScriptSig:    sigScript,
		ScriptPubKey: pkScript,
		Flags:        svc.DefaultFlags(),
		Message:      message,
	}
	r, err := svc.Verify(ctx, req)
	require.NoError(t, err)
	assert.True(t, r.Success)
	assert.Equal(t, script.ErrOK, r.Code)
	assert.Nil(t, r.Stack)

	req.Message = []byte("other tx")
	r, err = svc.Verify(ctx, req)
	require.NoError(t, err)
	assert.False(t, r.Success)
	assert.Equal(t, script.ErrSigNullFail, r.Code)
	assert.Equal(t, SourceEngine, r.Source)
}

// 测试已取消的上下文
func TestServiceCanceledContext(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.Evaluate(ctx, &EvalRequest{Script: []byte{script.OP_1}})
	assert.ErrorIs(t, err, context.Canceled)
	_, err = svc.Verify(ctx, &VerifyRequest{ScriptPubKey: []byte{script.OP_1}})
	assert.ErrorIs(t, err, context.Canceled)
}

// 测试没有缓存和存储时服务仍然可用
func TestServiceWithoutStorage(t *testing.T) {
	opts, err := config.New(config.WithSigCacheSize(0))
	require.NoError(t, err)
	svc := NewService(opts, nil, nil)

	req := &EvalRequest{Script: script.MustParseAsm("1 2 ADD 3 EQUAL"), Flags: svc.DefaultFlags()}
	for i := 0; i < 2; i++ {
		r, err := svc.Evaluate(context.Background(), req)
		require.NoError(t, err)
		assert.True(t, r.Success)
		assert.Equal(t, SourceEngine, r.Source)
	}
}

// 测试fx模块的组装
func TestModule(t *testing.T) {
	var svc *Service
	app := fxtest.New(t,
		fx.Supply(config.DefaultOptions()),
		Module,
		fx.Populate(&svc),
	)
	app.RequireStart()
	defer app.RequireStop()

	require.NotNil(t, svc)
	r, err := svc.Evaluate(context.Background(), &EvalRequest{
		Stack:  [][]byte{{0x01}, {0x02}},
		Script: script.MustParseAsm("CAT 0x02 0x0102 EQUAL"),
		Flags:  svc.DefaultFlags(),
	})
	require.NoError(t, err)
	assert.True(t, r.Success)
}
