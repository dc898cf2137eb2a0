package script

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 测试VerifyScript的基本执行与标志组合
func TestVerifyScript(t *testing.T) {
	tests := []struct {
		name   string
		sig    string
		pubKey string
		flags  ScriptFlags
		code   ErrorCode
	}{
		{"true", "1", "", ScriptVerifyNone, ErrOK},
		{"false", "0", "", ScriptVerifyNone, ErrEvalFalse},
		{"empty stack", "", "", ScriptVerifyNone, ErrEvalFalse},
		{"stack carried over", "0x01aa", "0x01aa EQUAL", ScriptVerifyNone, ErrOK},
		{"op return", "1", "RETURN", ScriptVerifyNone, ErrOpReturn},
		{"conditional does not span scripts", "1 IF", "ENDIF 1", ScriptVerifyNone, ErrUnbalancedConditional},
		{"sig push only", "1 NOP", "", ScriptVerifySigPushOnly, ErrSigPushOnly},
		{"sig not push only allowed", "1 NOP", "", ScriptVerifyNone, ErrOK},
		{"clean stack requires p2sh", "1", "", ScriptVerifyCleanStack, ErrInvalidFlags},
		{"clean stack", "1", "", ScriptVerifyCleanStack | ScriptVerifyP2SH, ErrOK},
		{"dirty stack", "1 1", "", ScriptVerifyCleanStack | ScriptVerifyP2SH, ErrCleanStack},
		{"dirty stack allowed", "1 1", "", ScriptVerifyP2SH, ErrOK},
		{"cat in pubkey", "'a' 'b'", "CAT 'ab' EQUAL", ScriptEnableDIP0020Opcodes, ErrOK},
		{"cat disabled", "'a' 'b'", "CAT 'ab' EQUAL", ScriptVerifyP2SH, ErrDisabledOpcode},
	}

	for _, tt := range tests {
		err := VerifyScript(MustParseAsm(tt.sig), MustParseAsm(tt.pubKey), tt.flags, nil)
		assert.Equal(t, tt.code, ErrorCodeOf(err), "%s: %v", tt.name, err)
	}
}

// 测试pay-to-script-hash的验证
func TestVerifyScriptP2SH(t *testing.T) {
	redeem := MustParseAsm("SPLIT 'b' EQUALVERIFY 'a' EQUAL")
	pubKey, err := PayToScriptHashScript(redeem)
	require.NoError(t, err)

	good, err := NewScriptBuilder().AddData([]byte("ab")).AddInt64(1).AddData(redeem).Script()
	require.NoError(t, err)
	bad, err := NewScriptBuilder().AddData([]byte("ab")).AddInt64(0).AddData(redeem).Script()
	require.NoError(t, err)
	notPushOnly, err := NewScriptBuilder().AddData([]byte("ab")).AddInt64(1).AddData(redeem).AddOp(OP_NOP).Script()
	require.NoError(t, err)
	wrongRedeem, err := NewScriptBuilder().AddInt64(1).AddData(MustParseAsm("1")).Script()
	require.NoError(t, err)

	flags := ScriptVerifyP2SH | ScriptEnableDIP0020Opcodes
	tests := []struct {
		name  string
		sig   []byte
		flags ScriptFlags
		code  ErrorCode
	}{
		{"redeem script succeeds", good, flags, ErrOK},
		{"redeem script succeeds with clean stack", good, flags | ScriptVerifyCleanStack, ErrOK},
		{"redeem script fails", bad, flags, ErrEqualVerify},
		{"redeem script not evaluated without p2sh", bad, ScriptEnableDIP0020Opcodes, ErrOK},
		{"redeem script uses gated opcode", good, ScriptVerifyP2SH, ErrDisabledOpcode},
		{"signature script not push only", notPushOnly, flags, ErrSigPushOnly},
		{"hash mismatch", wrongRedeem, flags, ErrEvalFalse},
	}

	for _, tt := range tests {
		err := VerifyScript(tt.sig, pubKey, tt.flags, nil)
		assert.Equal(t, tt.code, ErrorCodeOf(err), "%s: %v", tt.name, err)
	}
}

// 测试testdata/script_tests.json中的脚本向量
//
// 每个向量的格式为 [scriptSig, scriptPubKey, flags, expected, comment]，
// 只有一个元素的数组是注释。
func TestScriptVectors(t *testing.T) {
	raw, err := os.ReadFile(filepath.Join("testdata", "script_tests.json"))
	require.NoError(t, err)

	var vectors [][]string
	require.NoError(t, json.Unmarshal(raw, &vectors))

	ran := 0
	for i, v := range vectors {
		if len(v) == 1 {
			continue
		}
		require.GreaterOrEqual(t, len(v), 4, "vector %d", i)

		scriptSig, err := ParseAsm(v[0])
		require.NoError(t, err, "vector %d: %q", i, v[0])
		scriptPubKey, err := ParseAsm(v[1])
		require.NoError(t, err, "vector %d: %q", i, v[1])
		flags, err := ParseScriptFlags(v[2])
		require.NoError(t, err, "vector %d: %q", i, v[2])
		want, ok := ParseErrorTag(v[3])
		require.True(t, ok, "vector %d: unknown tag %q", i, v[3])

		err = VerifyScript(scriptSig, scriptPubKey, flags, BaseSignatureChecker{})
		assert.Equal(t, want.Tag(), ErrorCodeOf(err).Tag(), "vector %d: %v: %v", i, v, err)
		ran++
	}
	assert.Greater(t, ran, 0)
}
