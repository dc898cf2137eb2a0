// 将脚本字节解码为操作码和推送数据。

package script

import (
	"encoding/binary"
	"fmt"
)

// opcodeArrayRef 用于打破 opcodeArray 与操作码处理函数之间的初始化循环。
var opcodeArrayRef *[256]opcode

func init() {
	opcodeArrayRef = &opcodeArray
}

// ScriptTokenizer 逐个解码脚本中的操作码，不进行额外的内存分配。
//
// 每次调用 Next 解析一个操作码；成功后可以通过 Opcode 和 Data 取得操作码和推送数据。
// Next 返回 false 表示脚本已结束或遇到解析错误，此时可以通过 Err 取得错误。
type ScriptTokenizer struct {
	script    []byte
	version   uint16
	offset    int32
	opcodePos int32
	op        *opcode
	data      []byte
	err       error
}

// Done 在所有操作码都已解析或遇到解析错误时返回 true。
func (t *ScriptTokenizer) Done() bool {
	return t.err != nil || t.offset >= int32(len(t.script))
}

// Next 尝试解析下一个操作码并返回是否成功。
//
// 推送数据被截断，或 OP_PUSHDATA 的长度前缀超出脚本剩余部分时，解析失败并记录 ErrBadOpcode。
// 在脚本末尾调用不被视为错误，只返回 false。
func (t *ScriptTokenizer) Next() bool {
	if t.Done() {
		return false
	}

	// 初始值为 -1，因此第一个操作码的位置为 0。
	t.opcodePos++

	op := &opcodeArrayRef[t.script[t.offset]]
	switch {
	// OP_0、OP_1NEGATE、OP_1..OP_16 以及所有非推送操作码都没有附加数据。
	case op.length == 1:
		t.offset++
		t.op = op
		t.data = nil
		return true

	// OP_DATA_1..OP_DATA_75 的数据长度由操作码本身决定。
	case op.length > 1:
		script := t.script[t.offset:]
		if len(script) < op.length {
			str := fmt.Sprintf("opcode %s requires %d bytes, but script only "+
				"has %d remaining", op.name, op.length, len(script))
			t.err = scriptError(ErrBadOpcode, str)
			return false
		}

		t.offset += int32(op.length)
		t.op = op
		t.data = script[1:op.length]
		return true

	// OP_PUSHDATA1/2/4 之后是小端的长度前缀。
	case op.length < 0:
		script := t.script[t.offset+1:]
		if len(script) < -op.length {
			str := fmt.Sprintf("opcode %s requires %d bytes, but script only "+
				"has %d remaining", op.name, -op.length, len(script))
			t.err = scriptError(ErrBadOpcode, str)
			return false
		}

		var dataLen uint64
		switch op.length {
		case -1:
			dataLen = uint64(script[0])
		case -2:
			dataLen = uint64(binary.LittleEndian.Uint16(script[:2]))
		case -4:
			dataLen = uint64(binary.LittleEndian.Uint32(script[:4]))
		default:
			str := fmt.Sprintf("invalid opcode length %d", op.length)
			t.err = scriptError(ErrBadOpcode, str)
			return false
		}

		script = script[-op.length:]
		if dataLen > uint64(len(script)) {
			str := fmt.Sprintf("opcode %s pushes %d bytes, but script only "+
				"has %d remaining", op.name, dataLen, len(script))
			t.err = scriptError(ErrBadOpcode, str)
			return false
		}

		t.offset += 1 + int32(-op.length) + int32(dataLen)
		t.op = op
		t.data = script[:dataLen]
		return true
	}

	// 长度为零的操作码不存在。
	panic("unreachable")
}

// Script 返回分词器关联的完整脚本。
func (t *ScriptTokenizer) Script() []byte {
	return t.script
}

// ByteIndex 返回下一个待解析操作码在脚本中的字节偏移量。
func (t *ScriptTokenizer) ByteIndex() int32 {
	return t.offset
}

// OpcodePosition 返回当前操作码的序号。与 ByteIndex 不同，推送数据只计为一个位置。
// 尚未解析任何操作码时返回 -1。
func (t *ScriptTokenizer) OpcodePosition() int32 {
	return t.opcodePos
}

// Opcode 返回最近解析的操作码。
func (t *ScriptTokenizer) Opcode() byte {
	return t.op.value
}

// Data 返回最近解析的操作码附带的推送数据。
func (t *ScriptTokenizer) Data() []byte {
	return t.data
}

// Err 返回解析错误。只有遇到解析失败时才不为 nil。
func (t *ScriptTokenizer) Err() error {
	return t.err
}

// MakeScriptTokenizer 创建脚本分词器。目前只支持版本 0 的脚本，其他版本会立即设置错误。
func MakeScriptTokenizer(scriptVersion uint16, script []byte) ScriptTokenizer {
	var err error
	if scriptVersion != 0 {
		str := fmt.Sprintf("script version %d is not supported", scriptVersion)
		err = scriptError(ErrBadOpcode, str)
	}
	return ScriptTokenizer{
		version:   scriptVersion,
		script:    script,
		err:       err,
		opcodePos: -1,
	}
}

// checkMinimalPush 检查数据推送是否使用了最小的推送形式。
//
// 参数:
//   - data: 推送的数据
//   - opcode: 推送数据使用的操作码
//
// 返回值:
//   - error: 存在更短的推送形式时返回 ErrMinimalData
func checkMinimalPush(data []byte, opcode byte) error {
	dataLen := len(data)
	switch {
	case dataLen == 0 && opcode != OP_0:
		str := fmt.Sprintf("zero length data push is encoded with opcode %s "+
			"instead of OP_0", opcodeArrayRef[opcode].name)
		return scriptError(ErrMinimalData, str)
	case dataLen == 1 && data[0] >= 1 && data[0] <= 16:
		if opcode != OP_1+data[0]-1 {
			str := fmt.Sprintf("data push of the value %d encoded with opcode "+
				"%s instead of OP_%d", data[0], opcodeArrayRef[opcode].name, data[0])
			return scriptError(ErrMinimalData, str)
		}
	case dataLen == 1 && data[0] == 0x81:
		if opcode != OP_1NEGATE {
			str := fmt.Sprintf("data push of the value -1 encoded with opcode "+
				"%s instead of OP_1NEGATE", opcodeArrayRef[opcode].name)
			return scriptError(ErrMinimalData, str)
		}
	case dataLen <= 75:
		if int(opcode) != dataLen {
			str := fmt.Sprintf("data push of %d bytes encoded with opcode %s "+
				"instead of OP_DATA_%d", dataLen, opcodeArrayRef[opcode].name, dataLen)
			return scriptError(ErrMinimalData, str)
		}
	case dataLen <= 255:
		if opcode != OP_PUSHDATA1 {
			str := fmt.Sprintf("data push of %d bytes encoded with opcode %s "+
				"instead of OP_PUSHDATA1", dataLen, opcodeArrayRef[opcode].name)
			return scriptError(ErrMinimalData, str)
		}
	case dataLen <= 65535:
		if opcode != OP_PUSHDATA2 {
			str := fmt.Sprintf("data push of %d bytes encoded with opcode %s "+
				"instead of OP_PUSHDATA2", dataLen, opcodeArrayRef[opcode].name)
			return scriptError(ErrMinimalData, str)
		}
	}
	return nil
}
