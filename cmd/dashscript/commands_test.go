package main

import (
	"bytes"
	"encoding/hex"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pterm/pterm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tomthoros/dash/script"
	"github.com/tomthoros/dash/sign/ecdsa"
)

func TestMain(m *testing.M) {
	pterm.DisableStyling()
	os.Exit(m.Run())
}

// runCmd 执行命令并返回输出
func runCmd(args ...string) (string, error) {
	var buf bytes.Buffer
	err := run(args, &buf)
	return buf.String(), err
}

// 测试eval子命令
func TestEvalCommand(t *testing.T) {
	out, err := runCmd("eval", "-script", "'ab' 'cd' CAT")
	require.NoError(t, err)
	assert.Contains(t, out, "61626364")
	assert.Contains(t, out, "OK")

	out, err = runCmd("eval", "-stack", "6162,03", "-hex", "7f")
	assert.Equal(t, scriptFailed, err)
	assert.Contains(t, out, "SPLIT_RANGE")

	out, err = runCmd("eval", "-script", "'ab' 'cd' CAT", "-flags", "STANDARD")
	assert.Equal(t, scriptFailed, err)
	assert.Contains(t, out, "DISABLED_OPCODE")

	_, err = runCmd("eval", "-script", "NOSUCHOP")
	assert.Error(t, err)
	_, err = runCmd("eval", "-script", "1", "-flags", "BOGUS")
	assert.Error(t, err)
	_, err = runCmd("eval", "-script", "1", "-stack", "zz")
	assert.Error(t, err)
}

// 测试eval子命令的单步跟踪
func TestEvalTrace(t *testing.T) {
	out, err := runCmd("eval", "-trace", "-script", "'abcd' 2 SPLIT DROP")
	require.NoError(t, err)
	assert.Contains(t, out, "0000: OP_DATA_4 0x61626364")
	assert.Contains(t, out, "0006: OP_SPLIT")
	assert.Contains(t, out, "0007: OP_DROP")
	assert.Contains(t, out, "OK")

	out, err = runCmd("eval", "-trace", "-script", "0")
	assert.Equal(t, scriptFailed, err)
	assert.Contains(t, out, "EVAL_FALSE")

	out, err = runCmd("eval", "-trace", "-script", "1 RETURN")
	assert.Equal(t, scriptFailed, err)
	assert.Contains(t, out, "OP_RETURN")
}

// 测试parseStackArg函数
func TestParseStackArg(t *testing.T) {
	stack, err := parseStackArg("")
	require.NoError(t, err)
	assert.Nil(t, stack)

	stack, err = parseStackArg("01, -,ff00")
	require.NoError(t, err)
	require.Len(t, stack, 3)
	assert.Equal(t, []byte{0x01}, stack[0])
	assert.Empty(t, stack[1])
	assert.Equal(t, []byte{0xff, 0x00}, stack[2])
}

// 测试disasm与asm子命令
func TestDisasmAndAsm(t *testing.T) {
	out, err := runCmd("asm", "'ab'", "SPLIT")
	require.NoError(t, err)
	assert.Equal(t, "0261627f\n", out)

	out, err = runCmd("disasm", "0261627f")
	require.NoError(t, err)
	assert.Equal(t, "6162 OP_SPLIT\n", out)

	out, err = runCmd("disasm", "-lines", "0261627f")
	require.NoError(t, err)
	assert.Equal(t, "0000: OP_DATA_2 0x6162\n0003: OP_SPLIT\n", out)

	_, err = runCmd("disasm", "4c")
	assert.Error(t, err)
	_, err = runCmd("disasm")
	assert.Error(t, err)
	_, err = runCmd("asm")
	assert.Error(t, err)
}

// 测试keygen、sign与verify子命令配合使用
func TestSignAndVerifyCommands(t *testing.T) {
	priv, err := ecdsa.GenerateKey()
	require.NoError(t, err)
	pubKey := ecdsa.PubKeyBytes(priv)
	keyHex := hex.EncodeToString(priv.Serialize())
	pubHex := hex.EncodeToString(pubKey)

	pkScript, err := script.PayToPubKeyHashScript(script.Hash160(pubKey))
	require.NoError(t, err)
	pkHex := hex.EncodeToString(pkScript)

	out, err := runCmd("sign", "-key", keyHex, "-hex", pkHex, "-message", "aabb")
	require.NoError(t, err)
	sigHex := strings.TrimSpace(out)

	sigAsm := "0x" + hex.EncodeToString([]byte{byte(len(sigHex) / 2)}) + " 0x" + sigHex + " 0x21 0x" + pubHex
	out, err = runCmd("verify", "-sig", sigAsm, "-pubkey-hex", pkHex, "-message", "aabb")
	require.NoError(t, err)
	assert.Contains(t, out, "OK")

	out, err = runCmd("verify", "-sig", sigAsm, "-pubkey-hex", pkHex, "-message", "aabc")
	assert.Equal(t, scriptFailed, err)
	assert.Contains(t, out, "NULLFAIL")

	// 数据签名
	out, err = runCmd("sign", "-key", keyHex, "-data", "6d7367")
	require.NoError(t, err)
	dataSig := strings.TrimSpace(out)
	out, err = runCmd("eval", "-stack", dataSig+",6d7367,"+pubHex, "-script", "CHECKDATASIG", "-flags", "STANDARD,CHECKDATASIG")
	require.NoError(t, err)
	assert.Contains(t, out, "OK")

	out, err = runCmd("keygen")
	require.NoError(t, err)
	assert.Contains(t, out, "private")
	assert.Contains(t, out, "hash160")

	_, err = runCmd("sign", "-key", "00")
	assert.Error(t, err)
	_, err = runCmd("sign", "-key", keyHex, "-hashtype", "256", "-script", "1")
	assert.Error(t, err)
}

// 测试命令分派
func TestRunDispatch(t *testing.T) {
	out, err := runCmd()
	assert.Equal(t, exitCode(2), err)
	assert.Contains(t, out, "usage")

	out, err = runCmd("help")
	require.NoError(t, err)
	assert.Contains(t, out, "commands")

	_, err = runCmd("nope")
	assert.Error(t, err)

	_, err = runCmd("eval", "-nosuchflag")
	assert.Error(t, err)
}

// 测试serve子命令的配置合并
func TestLoadServeOptions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dashscript.toml")
	require.NoError(t, os.WriteFile(path, []byte("[api]\nlisten = \"127.0.0.1:1\"\n[database]\npath = \"a\"\n"), 0o644))

	opts, err := loadServeOptions(path, "", "")
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:1", opts.GetListenAddr())
	assert.Equal(t, "a", opts.GetDatabasePath())

	opts, err = loadServeOptions(path, "127.0.0.1:2", "b")
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:2", opts.GetListenAddr())
	assert.Equal(t, "b", opts.GetDatabasePath())

	_, err = loadServeOptions(filepath.Join(t.TempDir(), "missing.toml"), "", "")
	assert.Error(t, err)
}
