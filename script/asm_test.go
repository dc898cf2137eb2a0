package script

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 测试ParseAsm函数
func TestParseAsm(t *testing.T) {
	tests := []struct {
		in      string
		want    []byte
		wantErr bool
	}{
		{"", nil, false},
		{"0", []byte{OP_0}, false},
		{"-1", []byte{OP_1NEGATE}, false},
		{"1 16", []byte{OP_1, OP_16}, false},
		{"17", []byte{OP_DATA_1, 0x11}, false},
		{"-2", []byte{OP_DATA_1, 0x82}, false},
		{"1000", []byte{OP_DATA_2, 0xe8, 0x03}, false},
		{"0x02 0x0102", []byte{0x02, 0x01, 0x02}, false},
		{"'abc'", []byte{OP_DATA_3, 'a', 'b', 'c'}, false},
		{"''", []byte{OP_0}, false},
		{"DUP OP_HASH160 equal", []byte{OP_DUP, OP_HASH160, OP_EQUAL}, false},
		{"CAT SPLIT NUM2BIN BIN2NUM", []byte{OP_CAT, OP_SPLIT, OP_NUM2BIN, OP_BIN2NUM}, false},
		{"NOP2 NOP3 TRUE FALSE", []byte{OP_CHECKLOCKTIMEVERIFY, OP_CHECKSEQUENCEVERIFY, OP_1, OP_0}, false},
		{"  1\t\n2  ", []byte{OP_1, OP_2}, false},
		{"0xzz", nil, true},
		{"0x123", nil, true},
		{"NOSUCHOP", nil, true},
		{"OP_UNKNOWN188", nil, true},
		{"99999999999999999999", nil, true},
	}

	for _, tt := range tests {
		got, err := ParseAsm(tt.in)
		if tt.wantErr {
			assert.Error(t, err, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}

// 测试MustParseAsm在解析失败时 panic
func TestMustParseAsm(t *testing.T) {
	assert.Equal(t, []byte{OP_1, OP_ADD}, MustParseAsm("1 ADD"))
	assert.Panics(t, func() { MustParseAsm("NOSUCHOP") })
}

// 测试汇编与反汇编的往返
func TestAsmDisasmRoundTrip(t *testing.T) {
	script := MustParseAsm("DUP HASH160 0x14 0x0102030405060708090a0b0c0d0e0f1011121314 EQUALVERIFY CHECKSIG")
	disasm, err := DisasmString(script)
	require.NoError(t, err)
	assert.Equal(t, "OP_DUP OP_HASH160 0102030405060708090a0b0c0d0e0f1011121314 OP_EQUALVERIFY OP_CHECKSIG", disasm)
}
