// 数字编解码：栈上的数字以带符号位的小端字节序表示。

package script

import "fmt"

const (
	maxInt32 = 1<<31 - 1
	minInt32 = -1 << 31

	// maxScriptNumLen 是算术操作码（以及 OP_SPLIT 的位置参数）解释为整数时允许的最大字节数。
	maxScriptNumLen = 4

	// cltvMaxScriptNumLen 是锁定时间操作码解释为整数时允许的最大字节数。
	// 锁定时间是 uint32，而 4 字节的有符号数最多只能表示 2^31-1，因此需要 5 个字节。
	cltvMaxScriptNumLen = 5
)

// scriptNum 是脚本中被解释为整数的栈元素。
//
// 数字操作码的输入被限制在 maxScriptNumLen 字节以内，但运算结果可能超出这个范围。
// 结果以 int64 保存并按原样推回栈上；只有当它再次被当作数字读取时，MakeScriptNum 才会拒绝它。
// 例如两个 2^31-1 相加的结果可以交给 OP_VERIFY，但不能再作为 OP_SUB 的输入。
type scriptNum int64

// checkMinimalDataEncoding 检查数字是否以最少的字节数编码。负零 [0x80] 也被视为非最小编码。
func checkMinimalDataEncoding(v []byte) error {
	if len(v) == 0 {
		return nil
	}

	// 最高字节（去掉符号位）为零时，只有在次高字节的最高位被占用的情况下才是必需的，
	// 例如 +-255 编码为 0xff00 / 0xff80。
	if v[len(v)-1]&0x7f == 0 {
		if len(v) == 1 || v[len(v)-2]&0x80 == 0 {
			str := fmt.Sprintf("numeric value encoded as %x is not minimally encoded", v)
			return scriptError(ErrInvalidNumber, str)
		}
	}

	return nil
}

// isMinimallyEncoded 返回字节序列是否是不超过 maxLen 字节的最小编码数字。
func isMinimallyEncoded(v []byte, maxLen int) bool {
	if len(v) > maxLen {
		return false
	}
	return checkMinimalDataEncoding(v) == nil
}

// minimallyEncode 返回与 v 数值相同的最小编码。返回的切片总是新分配的，不会修改 v。
func minimallyEncode(v []byte) []byte {
	if len(v) == 0 {
		return nil
	}

	last := v[len(v)-1]
	if last&0x7f != 0 {
		return append([]byte(nil), v...)
	}

	// 单个 0x00 或 0x80 都是零。
	if len(v) == 1 {
		return nil
	}

	if v[len(v)-2]&0x80 != 0 {
		return append([]byte(nil), v...)
	}

	// 找到最高的非零字节，把符号位移到它上面；若它的最高位已被占用，则多保留一个字节存放符号。
	for i := len(v) - 1; i > 0; i-- {
		if v[i-1] == 0 {
			continue
		}
		if v[i-1]&0x80 != 0 {
			out := make([]byte, i+1)
			copy(out, v[:i])
			out[i] = last
			return out
		}
		out := make([]byte, i)
		copy(out, v[:i])
		out[i-1] |= last
		return out
	}

	return nil
}

// Bytes 返回数字的小端带符号位编码。零编码为空切片。
//
//	   127 -> [0x7f]
//	  -127 -> [0xff]
//	   128 -> [0x80 0x00]
//	  -128 -> [0x80 0x80]
//	   256 -> [0x00 0x01]
//	 32768 -> [0x00 0x80 0x00]
//	-32768 -> [0x00 0x80 0x80]
func (n scriptNum) Bytes() []byte {
	if n == 0 {
		return nil
	}

	isNegative := n < 0
	// 取绝对值时使用 uint64，以便 math.MinInt64 也能正确编码。
	abs := uint64(n)
	if isNegative {
		abs = uint64(-n)
	}

	result := make([]byte, 0, 9)
	for abs > 0 {
		result = append(result, byte(abs&0xff))
		abs >>= 8
	}

	// 最高字节的最高位已被使用时，追加一个字节来表示符号。
	if result[len(result)-1]&0x80 != 0 {
		extraByte := byte(0x00)
		if isNegative {
			extraByte = 0x80
		}
		result = append(result, extraByte)
	} else if isNegative {
		result[len(result)-1] |= 0x80
	}

	return result
}

// Int32 返回截断到 int32 范围内的值：超出上限返回 maxInt32，低于下限返回 minInt32。
func (n scriptNum) Int32() int32 {
	if n > maxInt32 {
		return maxInt32
	}

	if n < minInt32 {
		return minInt32
	}

	return int32(n)
}

// MakeScriptNum 将字节序列解码为数字。
//
// 参数:
//   - v: 小端带符号位编码的数字
//   - requireMinimal: 是否要求最小编码（由 ScriptVerifyMinimalData 控制）
//   - scriptNumLen: 允许的最大字节数，决定了可表示的数值范围
//
// 返回值:
//   - scriptNum: 解码得到的数字
//   - error: 超过长度上限或不是最小编码时返回 ErrInvalidNumber
func MakeScriptNum(v []byte, requireMinimal bool, scriptNumLen int) (scriptNum, error) {
	if len(v) > scriptNumLen {
		str := fmt.Sprintf("numeric value encoded as %x is %d bytes which "+
			"exceeds the max allowed of %d", v, len(v), scriptNumLen)
		return 0, scriptError(ErrInvalidNumber, str)
	}

	if requireMinimal {
		if err := checkMinimalDataEncoding(v); err != nil {
			return 0, err
		}
	}

	if len(v) == 0 {
		return 0, nil
	}

	var result int64
	for i, val := range v {
		result |= int64(val) << uint8(8*i)
	}

	// 最高字节的最高位是符号位。
	if v[len(v)-1]&0x80 != 0 {
		result &= ^(int64(0x80) << uint8(8*(len(v)-1)))
		return scriptNum(-result), nil
	}

	return scriptNum(result), nil
}
