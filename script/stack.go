// 脚本执行使用的值栈。

package script

import (
	"encoding/hex"
	"fmt"
)

// asBool 将栈元素解释为布尔值。任意非零字节为真，但负零（最后一个字节为 0x80，其余为零）为假。
// 布尔解释没有长度限制，与数字解码无关。
func asBool(t []byte) bool {
	for i := range t {
		if t[i] != 0 {
			if i == len(t)-1 && t[i] == 0x80 {
				return false
			}
			return true
		}
	}
	return false
}

// fromBool 将布尔值转换为栈元素：真为 {1}，假为空。
func fromBool(v bool) []byte {
	if v {
		return []byte{1}
	}
	return nil
}

// stack 是字节串栈。元素可能被多个位置共享，修改前必须先复制。
//
// 容器本身不执行大小策略，只记录自上次 resetPushWatermark 以来推入的最长元素，由引擎在每个操作码之后检查。
type stack struct {
	stk               [][]byte
	verifyMinimalData bool
	maxPushed         int
}

// Depth 返回栈上的元素数量。
func (s *stack) Depth() int32 {
	return int32(len(s.stk))
}

// resetPushWatermark 清除推入元素长度的记录。
func (s *stack) resetPushWatermark() {
	s.maxPushed = 0
}

// pushWatermark 返回自上次 resetPushWatermark 以来推入的最长元素的长度。
func (s *stack) pushWatermark() int {
	return s.maxPushed
}

// PushByteArray 将元素压入栈顶。
//
// 栈变换: [... x1 x2] -> [... x1 x2 data]
func (s *stack) PushByteArray(so []byte) {
	if len(so) > s.maxPushed {
		s.maxPushed = len(so)
	}
	s.stk = append(s.stk, so)
}

// PushInt 将数字编码后压入栈顶。
//
// 栈变换: [... x1 x2] -> [... x1 x2 int]
func (s *stack) PushInt(val scriptNum) {
	s.PushByteArray(val.Bytes())
}

// PushBool 将布尔值编码后压入栈顶。
//
// 栈变换: [... x1 x2] -> [... x1 x2 bool]
func (s *stack) PushBool(val bool) {
	s.PushByteArray(fromBool(val))
}

// PopByteArray 弹出并返回栈顶元素。
//
// 栈变换: [... x1 x2 x3] -> [... x1 x2]
func (s *stack) PopByteArray() ([]byte, error) {
	return s.nipN(0)
}

// PopInt 弹出栈顶元素并按 maxScriptNumLen 解码为数字。
//
// 栈变换: [... x1 x2 x3] -> [... x1 x2]
func (s *stack) PopInt() (scriptNum, error) {
	so, err := s.PopByteArray()
	if err != nil {
		return 0, err
	}

	return MakeScriptNum(so, s.verifyMinimalData, maxScriptNumLen)
}

// PopBool 弹出栈顶元素并解释为布尔值。
//
// 栈变换: [... x1 x2 x3] -> [... x1 x2]
func (s *stack) PopBool() (bool, error) {
	so, err := s.PopByteArray()
	if err != nil {
		return false, err
	}

	return asBool(so), nil
}

// PeekByteArray 返回从栈顶数起第 idx 个元素（0 为栈顶），不将其移除。
func (s *stack) PeekByteArray(idx int32) ([]byte, error) {
	sz := int32(len(s.stk))
	if idx < 0 || idx >= sz {
		str := fmt.Sprintf("index %d is invalid for stack size %d", idx, sz)
		return nil, scriptError(ErrInvalidStackOperation, str)
	}

	return s.stk[sz-idx-1], nil
}

// PeekInt 返回第 idx 个元素解码后的数字，不将其移除。
func (s *stack) PeekInt(idx int32) (scriptNum, error) {
	so, err := s.PeekByteArray(idx)
	if err != nil {
		return 0, err
	}

	return MakeScriptNum(so, s.verifyMinimalData, maxScriptNumLen)
}

// PeekBool 返回第 idx 个元素的布尔值，不将其移除。
func (s *stack) PeekBool(idx int32) (bool, error) {
	so, err := s.PeekByteArray(idx)
	if err != nil {
		return false, err
	}

	return asBool(so), nil
}

// nipN 移除并返回第 idx 个元素。
//
// 栈变换:
//
//	nipN(0): [... x1 x2 x3] -> [... x1 x2]
//	nipN(1): [... x1 x2 x3] -> [... x1 x3]
//	nipN(2): [... x1 x2 x3] -> [... x2 x3]
func (s *stack) nipN(idx int32) ([]byte, error) {
	sz := int32(len(s.stk))
	if idx < 0 || idx > sz-1 {
		str := fmt.Sprintf("index %d is invalid for stack size %d", idx, sz)
		return nil, scriptError(ErrInvalidStackOperation, str)
	}

	so := s.stk[sz-idx-1]
	if idx == 0 {
		s.stk = s.stk[:sz-1]
	} else if idx == sz-1 {
		s1 := make([][]byte, sz-1)
		copy(s1, s.stk[1:])
		s.stk = s1
	} else {
		s1 := s.stk[sz-idx : sz]
		s.stk = s.stk[:sz-idx-1]
		s.stk = append(s.stk, s1...)
	}
	return so, nil
}

// NipN 移除第 idx 个元素并丢弃。
func (s *stack) NipN(idx int32) error {
	_, err := s.nipN(idx)
	return err
}

// Tuck 将栈顶元素复制一份插入到次顶元素之下。
//
// 栈变换: [... x1 x2] -> [... x2 x1 x2]
func (s *stack) Tuck() error {
	so2, err := s.PopByteArray()
	if err != nil {
		return err
	}
	so1, err := s.PopByteArray()
	if err != nil {
		return err
	}
	s.PushByteArray(so2)
	s.PushByteArray(so1)
	s.PushByteArray(so2)

	return nil
}

// DropN 移除栈顶的 n 个元素。
//
// 栈变换:
//
//	DropN(1): [... x1 x2] -> [... x1]
//	DropN(2): [... x1 x2] -> [...]
func (s *stack) DropN(n int32) error {
	if n < 1 {
		return fmt.Errorf("attempt to drop %d items from stack", n)
	}
	if n > s.Depth() {
		str := fmt.Sprintf("attempt to drop %d items from stack of size %d", n, s.Depth())
		return scriptError(ErrInvalidStackOperation, str)
	}

	s.stk = s.stk[:len(s.stk)-int(n)]
	return nil
}

// DupN 复制栈顶的 n 个元素。
//
// 栈变换:
//
//	DupN(1): [... x1 x2] -> [... x1 x2 x2]
//	DupN(2): [... x1 x2] -> [... x1 x2 x1 x2]
func (s *stack) DupN(n int32) error {
	if n < 1 {
		return fmt.Errorf("attempt to dup %d stack items", n)
	}
	if n > s.Depth() {
		str := fmt.Sprintf("attempt to dup %d items from stack of size %d", n, s.Depth())
		return scriptError(ErrInvalidStackOperation, str)
	}

	// 按相同顺序逐个复制第 n-1 个元素。
	for i := n; i > 0; i-- {
		so, err := s.PeekByteArray(n - 1)
		if err != nil {
			return err
		}
		s.PushByteArray(so)
	}
	return nil
}

// RotN 将栈顶 3n 个元素向左轮转 n 组。
//
// 栈变换:
//
//	RotN(1): [... x1 x2 x3] -> [... x2 x3 x1]
//	RotN(2): [... x1 x2 x3 x4 x5 x6] -> [... x3 x4 x5 x6 x1 x2]
func (s *stack) RotN(n int32) error {
	if n < 1 {
		return fmt.Errorf("attempt to rotate %d stack items", n)
	}
	if 3*n > s.Depth() {
		str := fmt.Sprintf("attempt to rotate %d items on stack of size %d", 3*n, s.Depth())
		return scriptError(ErrInvalidStackOperation, str)
	}

	entry := 3*n - 1
	for i := n; i > 0; i-- {
		so, err := s.nipN(entry)
		if err != nil {
			return err
		}
		s.PushByteArray(so)
	}
	return nil
}

// SwapN 交换栈顶的两组 n 个元素。
//
// 栈变换:
//
//	SwapN(1): [... x1 x2] -> [... x2 x1]
//	SwapN(2): [... x1 x2 x3 x4] -> [... x3 x4 x1 x2]
func (s *stack) SwapN(n int32) error {
	if n < 1 {
		return fmt.Errorf("attempt to swap %d stack items", n)
	}
	if 2*n > s.Depth() {
		str := fmt.Sprintf("attempt to swap %d items on stack of size %d", 2*n, s.Depth())
		return scriptError(ErrInvalidStackOperation, str)
	}

	entry := 2*n - 1
	for i := n; i > 0; i-- {
		so, err := s.nipN(entry)
		if err != nil {
			return err
		}
		s.PushByteArray(so)
	}
	return nil
}

// OverN 将栈顶之下的 n 个元素复制到栈顶。
//
// 栈变换:
//
//	OverN(1): [... x1 x2 x3] -> [... x1 x2 x3 x2]
//	OverN(2): [... x1 x2 x3 x4] -> [... x1 x2 x3 x4 x1 x2]
func (s *stack) OverN(n int32) error {
	if n < 1 {
		return fmt.Errorf("attempt to perform over on %d stack items", n)
	}
	if 2*n > s.Depth() {
		str := fmt.Sprintf("attempt to perform over on %d items on stack of size %d", 2*n, s.Depth())
		return scriptError(ErrInvalidStackOperation, str)
	}

	entry := 2*n - 1
	for ; n > 0; n-- {
		so, err := s.PeekByteArray(entry)
		if err != nil {
			return err
		}
		s.PushByteArray(so)
	}
	return nil
}

// PickN 将第 n 个元素复制到栈顶。
//
// 栈变换:
//
//	PickN(0): [x1 x2 x3] -> [x1 x2 x3 x3]
//	PickN(1): [x1 x2 x3] -> [x1 x2 x3 x2]
//	PickN(2): [x1 x2 x3] -> [x1 x2 x3 x1]
func (s *stack) PickN(n int32) error {
	so, err := s.PeekByteArray(n)
	if err != nil {
		return err
	}
	s.PushByteArray(so)

	return nil
}

// RollN 将第 n 个元素移动到栈顶。
//
// 栈变换:
//
//	RollN(0): [x1 x2 x3] -> [x1 x2 x3]
//	RollN(1): [x1 x2 x3] -> [x1 x3 x2]
//	RollN(2): [x1 x2 x3] -> [x2 x3 x1]
func (s *stack) RollN(n int32) error {
	so, err := s.nipN(n)
	if err != nil {
		return err
	}

	s.PushByteArray(so)

	return nil
}

// String 以十六进制转储的形式返回栈内容，栈底在前。
func (s *stack) String() string {
	var result string
	for _, stack := range s.stk {
		if len(stack) == 0 {
			result += "00000000  <empty>\n"
		}
		result += hex.Dump(stack)
	}

	return result
}
