package script

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 测试ParseScriptFlags函数
func TestParseScriptFlags(t *testing.T) {
	tests := []struct {
		in      string
		want    ScriptFlags
		wantErr bool
	}{
		{"", ScriptVerifyNone, false},
		{"NONE", ScriptVerifyNone, false},
		{"P2SH", ScriptVerifyP2SH, false},
		{"p2sh, strictenc", ScriptVerifyP2SH | ScriptVerifyStrictEncoding, false},
		{"MINIMALDATA,DIP0020_OPCODES", ScriptVerifyMinimalData | ScriptEnableDIP0020Opcodes, false},
		{"STANDARD", StandardVerifyFlags, false},
		{"MANDATORY,CHECKDATASIG", MandatoryVerifyFlags | ScriptEnableCheckDataSig, false},
		{"P2SH,,", ScriptVerifyP2SH, false},
		{"P2SH,BOGUS", 0, true},
	}

	for _, tt := range tests {
		got, err := ParseScriptFlags(tt.in)
		if tt.wantErr {
			assert.Error(t, err, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}

// 测试ScriptFlags的String方法
func TestScriptFlagsString(t *testing.T) {
	assert.Equal(t, "NONE", ScriptVerifyNone.String())
	assert.Equal(t, "P2SH", ScriptVerifyP2SH.String())
	assert.Equal(t, "P2SH,MINIMALDATA", (ScriptVerifyP2SH | ScriptVerifyMinimalData).String())
	assert.Equal(t, "DIP0020_OPCODES,0x80000000", (ScriptEnableDIP0020Opcodes | 1<<31).String())

	// 字符串形式可以解析回同样的标志
	for _, flags := range []ScriptFlags{StandardVerifyFlags, MandatoryVerifyFlags, StandardVerifyFlags | ScriptEnableDIP0020Opcodes | ScriptEnableCheckDataSig} {
		parsed, err := ParseScriptFlags(flags.String())
		require.NoError(t, err)
		assert.Equal(t, flags, parsed)
	}
}

// 测试标志位相互独立
func TestScriptFlagBits(t *testing.T) {
	names := ScriptFlagNames()
	require.Len(t, names, len(scriptFlagNames))
	assert.IsIncreasing(t, names)

	var seen ScriptFlags
	for bit := range scriptFlagNames {
		assert.Zero(t, seen&bit, "flag %v overlaps", bit)
		seen |= bit
	}

	assert.True(t, StandardVerifyFlags.HasFlag(MandatoryVerifyFlags))
	assert.False(t, StandardVerifyFlags.HasFlag(ScriptEnableDIP0020Opcodes))
	assert.False(t, StandardVerifyFlags.HasFlag(ScriptVerifySigPushOnly))
}

// 测试错误代码的名称、标签和说明
func TestErrorCodeStrings(t *testing.T) {
	for c := ErrOK; c < numErrorCodes; c++ {
		assert.NotContains(t, c.String(), "Unknown ErrorCode", "code %d", int(c))
		assert.NotEmpty(t, c.Tag(), "code %d", int(c))
		if c != ErrUnknown {
			assert.NotEqual(t, "unknown error", c.Message(), "code %d", int(c))
		}

		parsed, ok := ParseErrorTag(c.Tag())
		assert.True(t, ok, "tag %s", c.Tag())
		assert.Equal(t, c, parsed, "tag %s", c.Tag())
	}
	assert.Equal(t, "unknown error", ErrUnknown.Message())

	assert.Equal(t, "ErrPushSize", ErrPushSize.String())
	assert.Equal(t, "PUSH_SIZE", ErrPushSize.Tag())
	assert.Equal(t, "SPLIT_RANGE", ErrInvalidSplitRange.Tag())
	assert.Equal(t, "Unknown ErrorCode (9999)", ErrorCode(9999).String())

	_, ok := ParseErrorTag("NO_SUCH_TAG")
	assert.False(t, ok)
}

// 测试ErrorCodeOf与IsErrorCode函数
func TestErrorCodeOf(t *testing.T) {
	assert.Equal(t, ErrOK, ErrorCodeOf(nil))
	assert.Equal(t, ErrUnknown, ErrorCodeOf(fmt.Errorf("plain error")))

	err := scriptError(ErrInvalidSplitRange, "out of range")
	assert.Equal(t, ErrInvalidSplitRange, ErrorCodeOf(err))
	assert.Equal(t, "out of range", err.Error())

	wrapped := fmt.Errorf("evaluating: %w", err)
	assert.Equal(t, ErrInvalidSplitRange, ErrorCodeOf(wrapped))
	assert.True(t, IsErrorCode(wrapped, ErrInvalidSplitRange))
	assert.False(t, IsErrorCode(wrapped, ErrPushSize))
	assert.False(t, IsErrorCode(nil, ErrOK))
}
