package script

import (
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// hexToBytes 将十六进制字符串转换为字节切片，解析失败时 panic。只用于测试常量。
func hexToBytes(s string) []byte {
	b, err := hex.DecodeString(s)
	if err != nil {
		panic("invalid hex in source file: " + s)
	}
	return b
}

// 测试scriptNum的Bytes方法
func TestScriptNumBytes(t *testing.T) {
	tests := []struct {
		num        scriptNum
		serialized []byte
	}{
		{0, nil},
		{1, hexToBytes("01")},
		{-1, hexToBytes("81")},
		{127, hexToBytes("7f")},
		{-127, hexToBytes("ff")},
		{128, hexToBytes("8000")},
		{-128, hexToBytes("8080")},
		{129, hexToBytes("8100")},
		{-129, hexToBytes("8180")},
		{256, hexToBytes("0001")},
		{-256, hexToBytes("0081")},
		{32767, hexToBytes("ff7f")},
		{-32767, hexToBytes("ffff")},
		{32768, hexToBytes("008000")},
		{-32768, hexToBytes("008080")},
		{65535, hexToBytes("ffff00")},
		{-65535, hexToBytes("ffff80")},
		{524288, hexToBytes("000008")},
		{-524288, hexToBytes("000088")},
		{7340032, hexToBytes("000070")},
		{-7340032, hexToBytes("0000f0")},
		{8388608, hexToBytes("00008000")},
		{-8388608, hexToBytes("00008080")},
		{2147483647, hexToBytes("ffffff7f")},
		{-2147483647, hexToBytes("ffffffff")},

		// 超出 4 字节的运算结果
		{2147483648, hexToBytes("0000008000")},
		{-2147483648, hexToBytes("0000008080")},
		{4294967295, hexToBytes("ffffffff00")},
		{-4294967295, hexToBytes("ffffffff80")},
	}

	for _, test := range tests {
		assert.Equal(t, test.serialized, test.num.Bytes(), "num %d", test.num)
	}
}

// 测试MakeScriptNum函数
func TestMakeScriptNum(t *testing.T) {
	tests := []struct {
		serialized      []byte
		num             scriptNum
		numLen          int
		minimalEncoding bool
		code            ErrorCode
	}{
		{nil, 0, maxScriptNumLen, true, ErrOK},
		{hexToBytes("01"), 1, maxScriptNumLen, true, ErrOK},
		{hexToBytes("81"), -1, maxScriptNumLen, true, ErrOK},
		{hexToBytes("7f"), 127, maxScriptNumLen, true, ErrOK},
		{hexToBytes("ff"), -127, maxScriptNumLen, true, ErrOK},
		{hexToBytes("8000"), 128, maxScriptNumLen, true, ErrOK},
		{hexToBytes("8080"), -128, maxScriptNumLen, true, ErrOK},
		{hexToBytes("ffffff7f"), 2147483647, maxScriptNumLen, true, ErrOK},
		{hexToBytes("ffffffff"), -2147483647, maxScriptNumLen, true, ErrOK},
		{hexToBytes("ffffffff7f"), 549755813887, cltvMaxScriptNumLen, true, ErrOK},
		{hexToBytes("ffffffffff"), -549755813887, cltvMaxScriptNumLen, true, ErrOK},

		// 超过长度上限
		{hexToBytes("0000008000"), 0, maxScriptNumLen, true, ErrInvalidNumber},
		{hexToBytes("0000008080"), 0, maxScriptNumLen, true, ErrInvalidNumber},
		{hexToBytes("0000000001"), 0, maxScriptNumLen, false, ErrInvalidNumber},
		{hexToBytes("ffffffffffff"), 0, cltvMaxScriptNumLen, true, ErrInvalidNumber},

		// 非最小编码
		{hexToBytes("00"), 0, maxScriptNumLen, true, ErrInvalidNumber},
		{hexToBytes("80"), 0, maxScriptNumLen, true, ErrInvalidNumber},
		{hexToBytes("0100"), 0, maxScriptNumLen, true, ErrInvalidNumber},
		{hexToBytes("7f00"), 0, maxScriptNumLen, true, ErrInvalidNumber},
		{hexToBytes("800000"), 0, maxScriptNumLen, true, ErrInvalidNumber},
		{hexToBytes("ff7f80"), 0, maxScriptNumLen, true, ErrInvalidNumber},

		// 不要求最小编码时同样的字节可以解码
		{hexToBytes("00"), 0, maxScriptNumLen, false, ErrOK},
		{hexToBytes("80"), 0, maxScriptNumLen, false, ErrOK},
		{hexToBytes("0100"), 1, maxScriptNumLen, false, ErrOK},
		{hexToBytes("0180"), -1, maxScriptNumLen, false, ErrOK},
		{hexToBytes("ff7f80"), -32767, maxScriptNumLen, false, ErrOK},
	}

	for _, test := range tests {
		num, err := MakeScriptNum(test.serialized, test.minimalEncoding, test.numLen)
		if test.code != ErrOK {
			assert.Equal(t, test.code, ErrorCodeOf(err), "serialized %x", test.serialized)
			continue
		}
		require.NoError(t, err, "serialized %x", test.serialized)
		assert.Equal(t, test.num, num, "serialized %x", test.serialized)
	}
}

// 测试scriptNum的Int32方法
func TestScriptNumInt32(t *testing.T) {
	tests := []struct {
		in   scriptNum
		want int32
	}{
		{0, 0},
		{1, 1},
		{-1, -1},
		{2147483647, 2147483647},
		{-2147483648, -2147483648},
		{2147483648, 2147483647},
		{-2147483649, -2147483648},
		{9223372036854775807, 2147483647},
		{-9223372036854775808, -2147483648},
	}

	for _, test := range tests {
		assert.Equal(t, test.want, test.in.Int32(), "in %d", test.in)
	}
}

// 测试minimallyEncode函数
func TestMinimallyEncode(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"00", ""},
		{"80", ""},
		{"0000", ""},
		{"0080", ""},
		{"000080", ""},
		{"01", "01"},
		{"81", "81"},
		{"0100", "01"},
		{"0180", "81"},
		{"010000", "01"},
		{"01000080", "81"},
		{"ff00", "ff00"},
		{"ff80", "ff80"},
		{"ff0000", "ff00"},
		{"ff0080", "ff80"},
		{"0001", "0001"},
		{"000100", "0001"},
		{"05000080", "85"},
		{"abcdef00", "abcdef00"},
		{"abcdef0000", "abcdef00"},
	}

	for _, test := range tests {
		in := hexToBytes(test.in)
		orig := append([]byte(nil), in...)
		got := minimallyEncode(in)
		assert.Equal(t, test.want, hex.EncodeToString(got), "in %s", test.in)
		assert.Equal(t, orig, in, "input must not be modified")
		assert.True(t, isMinimallyEncoded(got, len(got)), "result %x", got)
	}
}

// 测试isMinimallyEncoded函数
func TestIsMinimallyEncoded(t *testing.T) {
	assert.True(t, isMinimallyEncoded(nil, maxScriptNumLen))
	assert.True(t, isMinimallyEncoded(hexToBytes("ffffff7f"), maxScriptNumLen))
	assert.False(t, isMinimallyEncoded(hexToBytes("ffffff7f00"), maxScriptNumLen))
	assert.False(t, isMinimallyEncoded(hexToBytes("0000008000"), maxScriptNumLen))
	assert.True(t, isMinimallyEncoded(hexToBytes("0000008000"), cltvMaxScriptNumLen))
	assert.False(t, isMinimallyEncoded(hexToBytes("00"), maxScriptNumLen))
	assert.False(t, isMinimallyEncoded(hexToBytes("80"), maxScriptNumLen))
}
