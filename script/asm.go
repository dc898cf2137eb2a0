// 脚本汇编：把测试向量和命令行使用的文本格式转换为脚本字节。

package script

import (
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
)

// ParseAsm 解析以空白分隔的脚本文本。支持的记号:
//   - 十进制整数（可带负号）：-1 和 0 到 16 编码为对应的操作码，其他值编码为数字推送
//   - 0x 开头的十六进制：原样插入脚本，不加推送前缀
//   - 单引号包围的字符串：作为数据推送
//   - 操作码名称，可以省略 OP_ 前缀，例如 "DUP" 或 "OP_DUP"
//
// 参数:
//   - asm: 脚本文本，例如 "0x02 0x0102 SPLIT"
//
// 返回值:
//   - []byte: 脚本字节
//   - error: 遇到无法识别的记号时返回错误
func ParseAsm(asm string) ([]byte, error) {
	var script []byte
	for _, word := range strings.Fields(asm) {
		switch {
		case isDecimal(word):
			n, err := strconv.ParseInt(word, 10, 64)
			if err != nil {
				return nil, fmt.Errorf("invalid number %q: %w", word, err)
			}
			script = appendInt(script, n)

		case strings.HasPrefix(word, "0x") && len(word) > 2:
			raw, err := hex.DecodeString(word[2:])
			if err != nil {
				return nil, fmt.Errorf("invalid hex token %q: %w", word, err)
			}
			script = append(script, raw...)

		case len(word) >= 2 && strings.HasPrefix(word, "'") && strings.HasSuffix(word, "'"):
			script = append(script, pushEncoding([]byte(word[1:len(word)-1]))...)

		default:
			op, ok := lookupOpcodeName(word)
			if !ok {
				return nil, fmt.Errorf("unknown opcode or token %q", word)
			}
			script = append(script, op)
		}
	}
	return script, nil
}

// MustParseAsm 与 ParseAsm 相同，但解析失败时 panic。只用于常量脚本和测试。
func MustParseAsm(asm string) []byte {
	script, err := ParseAsm(asm)
	if err != nil {
		panic(err)
	}
	return script
}

// isDecimal 返回记号是否为十进制整数。
func isDecimal(word string) bool {
	digits := strings.TrimPrefix(word, "-")
	if digits == "" {
		return false
	}
	for _, r := range digits {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// appendInt 追加整数：-1 和 0 到 16 使用专用操作码，其他值以原始推送编码。
func appendInt(script []byte, n int64) []byte {
	switch {
	case n == 0:
		return append(script, OP_0)
	case n == -1 || (n >= 1 && n <= 16):
		return append(script, byte((OP_1-1)+n))
	}
	return append(script, pushEncoding(scriptNum(n).Bytes())...)
}

// lookupOpcodeName 按名称查找操作码，名称可以省略 OP_ 前缀。
func lookupOpcodeName(word string) (byte, bool) {
	name := strings.ToUpper(word)
	if !strings.HasPrefix(name, "OP_") {
		name = "OP_" + name
	}
	op, ok := OpcodeByName[name]
	return op, ok
}
