// 以编程方式构建脚本。

package script

import (
	"encoding/binary"
	"fmt"
)

const (
	// defaultScriptAlloc 是 ScriptBuilder 底层数组的默认初始容量。
	defaultScriptAlloc = 500
)

// scriptBuilderConfig 保存 ScriptBuilder 的初始化参数。
type scriptBuilderConfig struct {
	allocSize int
}

// defaultScriptBuilderConfig 返回默认的 scriptBuilderConfig。
func defaultScriptBuilderConfig() *scriptBuilderConfig {
	return &scriptBuilderConfig{
		allocSize: defaultScriptAlloc,
	}
}

// ScriptBuilderOpt 是 ScriptBuilder 的函数选项。
type ScriptBuilderOpt func(*scriptBuilderConfig)

// WithScriptAllocSize 设置底层数组的初始容量。
func WithScriptAllocSize(size int) ScriptBuilderOpt {
	return func(cfg *scriptBuilderConfig) {
		cfg.allocSize = size
	}
}

// ErrScriptNotCanonical 表示构建出的脚本不是规范形式（例如推送超过 MaxScriptElementSize 的数据）。
type ErrScriptNotCanonical string

// Error 实现 error 接口。
func (e ErrScriptNotCanonical) Error() string {
	return string(e)
}

// ScriptBuilder 构建脚本。推送数据时总是选择最小的推送形式，因此构建的脚本满足 ScriptVerifyMinimalData。
// 它不保证脚本能够成功执行，但会拒绝必然超过引擎限制的推送。
//
// 下面的代码构建一个 2-of-3 多重签名脚本：
//
//	builder := NewScriptBuilder()
//	builder.AddOp(OP_2).AddData(pubKey1).AddData(pubKey2)
//	builder.AddData(pubKey3).AddOp(OP_3)
//	builder.AddOp(OP_CHECKMULTISIG)
//	script, err := builder.Script()
type ScriptBuilder struct {
	script []byte
	err    error
}

// AddOp 在脚本末尾追加一个操作码。
func (b *ScriptBuilder) AddOp(opcode byte) *ScriptBuilder {
	return b.AddOps([]byte{opcode})
}

// AddOps 在脚本末尾追加多个操作码。
func (b *ScriptBuilder) AddOps(opcodes []byte) *ScriptBuilder {
	if b.err != nil {
		return b
	}

	if len(b.script)+len(opcodes) > MaxScriptSize {
		str := fmt.Sprintf("adding opcodes would exceed the maximum allowed "+
			"canonical script length of %d", MaxScriptSize)
		b.err = ErrScriptNotCanonical(str)
		return b
	}

	b.script = append(b.script, opcodes...)
	return b
}

// canonicalDataSize 返回 data 以最小推送形式编码后占用的字节数。
func canonicalDataSize(data []byte) int {
	dataLen := len(data)

	switch {
	case dataLen == 0:
		return 1
	case dataLen == 1 && data[0] >= 1 && data[0] <= 16:
		return 1
	case dataLen == 1 && data[0] == 0x81:
		return 1
	case dataLen < OP_PUSHDATA1:
		return 1 + dataLen
	case dataLen <= 0xff:
		return 2 + dataLen
	case dataLen <= 0xffff:
		return 3 + dataLen
	}

	return 5 + dataLen
}

// addData 以最小推送形式追加 data，不检查大小限制。
func (b *ScriptBuilder) addData(data []byte) *ScriptBuilder {
	dataLen := len(data)

	switch {
	case dataLen == 0:
		b.script = append(b.script, OP_0)
		return b
	case dataLen == 1 && data[0] >= 1 && data[0] <= 16:
		b.script = append(b.script, (OP_1-1)+data[0])
		return b
	case dataLen == 1 && data[0] == 0x81:
		b.script = append(b.script, OP_1NEGATE)
		return b
	case dataLen < OP_PUSHDATA1:
		b.script = append(b.script, byte(OP_DATA_1-1+dataLen))
	case dataLen <= 0xff:
		b.script = append(b.script, OP_PUSHDATA1, byte(dataLen))
	case dataLen <= 0xffff:
		buf := make([]byte, 2)
		binary.LittleEndian.PutUint16(buf, uint16(dataLen))
		b.script = append(b.script, OP_PUSHDATA2)
		b.script = append(b.script, buf...)
	default:
		buf := make([]byte, 4)
		binary.LittleEndian.PutUint32(buf, uint32(dataLen))
		b.script = append(b.script, OP_PUSHDATA4)
		b.script = append(b.script, buf...)
	}

	b.script = append(b.script, data...)
	return b
}

// AddFullData 追加数据推送，不检查元素大小上限。它只应用于构造故意违反限制的测试脚本。
func (b *ScriptBuilder) AddFullData(data []byte) *ScriptBuilder {
	if b.err != nil {
		return b
	}

	return b.addData(data)
}

// AddData 以最小推送形式追加数据。数据超过 MaxScriptElementSize 或使脚本超过 MaxScriptSize 时记录错误。
func (b *ScriptBuilder) AddData(data []byte) *ScriptBuilder {
	if b.err != nil {
		return b
	}

	dataSize := canonicalDataSize(data)
	if len(b.script)+dataSize > MaxScriptSize {
		str := fmt.Sprintf("adding %d bytes of data would exceed the "+
			"maximum allowed canonical script length of %d",
			dataSize, MaxScriptSize)
		b.err = ErrScriptNotCanonical(str)
		return b
	}

	if dataLen := len(data); dataLen > MaxScriptElementSize {
		str := fmt.Sprintf("adding a data element of %d bytes would "+
			"exceed the maximum allowed script element size of %d",
			dataLen, MaxScriptElementSize)
		b.err = ErrScriptNotCanonical(str)
		return b
	}

	return b.addData(data)
}

// AddInt64 追加一个整数。-1 和 0 到 16 使用专用操作码，其他值编码为数字后推送。
func (b *ScriptBuilder) AddInt64(val int64) *ScriptBuilder {
	if b.err != nil {
		return b
	}

	if len(b.script)+1 > MaxScriptSize {
		str := fmt.Sprintf("adding an integer would exceed the maximum "+
			"allow canonical script length of %d", MaxScriptSize)
		b.err = ErrScriptNotCanonical(str)
		return b
	}

	if val == 0 {
		b.script = append(b.script, OP_0)
		return b
	}
	if val == -1 || (val >= 1 && val <= 16) {
		b.script = append(b.script, byte((OP_1-1)+val))
		return b
	}

	return b.AddData(scriptNum(val).Bytes())
}

// Reset 清空脚本和错误。
func (b *ScriptBuilder) Reset() *ScriptBuilder {
	b.script = b.script[0:0]
	b.err = nil
	return b
}

// Script 返回构建的脚本，以及构建过程中遇到的第一个错误。
func (b *ScriptBuilder) Script() ([]byte, error) {
	return b.script, b.err
}

// NewScriptBuilder 创建脚本构建器。
func NewScriptBuilder(opts ...ScriptBuilderOpt) *ScriptBuilder {
	cfg := defaultScriptBuilderConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	return &ScriptBuilder{
		script: make([]byte, 0, cfg.allocSize),
	}
}
