package cache

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tomthoros/dash/script"
)

// 测试缓存键区分每个输入
func TestKey(t *testing.T) {
	base := Key(script.ScriptVerifyP2SH, [][]byte{{1}, {2}}, []byte{script.OP_CAT}, nil)
	assert.Len(t, base, 32)
	assert.Equal(t, base, Key(script.ScriptVerifyP2SH, [][]byte{{1}, {2}}, []byte{script.OP_CAT}, nil))

	assert.NotEqual(t, base, Key(script.ScriptVerifyNone, [][]byte{{1}, {2}}, []byte{script.OP_CAT}, nil))
	assert.NotEqual(t, base, Key(script.ScriptVerifyP2SH, [][]byte{{1, 2}}, []byte{script.OP_CAT}, nil))
	assert.NotEqual(t, base, Key(script.ScriptVerifyP2SH, [][]byte{{1}, {2}, {}}, []byte{script.OP_CAT}, nil))
	assert.NotEqual(t, base, Key(script.ScriptVerifyP2SH, [][]byte{{1}, {2}}, []byte{script.OP_SPLIT}, nil))
	assert.NotEqual(t, base, Key(script.ScriptVerifyP2SH, [][]byte{{1}, {2}}, []byte{script.OP_CAT}, []byte("ctx")))

	// 栈元素边界参与哈希
	assert.NotEqual(t,
		Key(0, [][]byte{{1}}, []byte{2}, nil),
		Key(0, nil, []byte{1, 2}, nil))
}

// 测试缓存的读写
func TestExecutionCache(t *testing.T) {
	c, err := NewExecutionCache(1 << 20)
	require.NoError(t, err)
	defer c.Close()

	key := Key(0, nil, []byte{script.OP_1}, nil)
	_, ok := c.Get(key)
	assert.False(t, ok)

	entry := &Entry{Success: true, Code: script.ErrOK, Stack: [][]byte{{1}}}
	assert.True(t, c.Set(key, entry))
	c.Wait()

	got, ok := c.Get(key)
	require.True(t, ok)
	assert.Equal(t, entry, got)

	c.Clear()
	c.Wait()
	_, ok = c.Get(key)
	assert.False(t, ok)
}

// 测试开销为零的缓存不保存条目
func TestExecutionCacheDisabled(t *testing.T) {
	c, err := NewExecutionCache(0)
	require.NoError(t, err)

	assert.False(t, c.Set("k", &Entry{Success: true}))
	c.Wait()
	_, ok := c.Get("k")
	assert.False(t, ok)
	c.Clear()
	c.Close()
}

// 测试条目开销随栈大小增长
func TestEntryCost(t *testing.T) {
	small := &Entry{}
	large := &Entry{Stack: [][]byte{make([]byte, 100)}}
	assert.Equal(t, int64(entryOverhead), small.cost())
	assert.Equal(t, int64(entryOverhead+108), large.cost())
}
