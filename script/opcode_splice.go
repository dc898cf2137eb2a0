package script

import "fmt"

// requireDepth 检查主栈上至少有 n 个元素。
func (vm *Engine) requireDepth(op *opcode, n int32) error {
	if vm.dstack.Depth() < n {
		str := fmt.Sprintf("%s requires %d stack items, but stack only has %d",
			op.name, n, vm.dstack.Depth())
		return scriptError(ErrInvalidStackOperation, str)
	}
	return nil
}

// opcodeCat 连接栈顶两个元素。结果超过 MaxScriptElementSize 时失败，此时不会分配结果。
//
// 栈变换: [... x1 x2] -> [... x1x2]
func opcodeCat(op *opcode, data []byte, vm *Engine) error {
	if err := vm.requireDepth(op, 2); err != nil {
		return err
	}

	b, err := vm.dstack.PopByteArray()
	if err != nil {
		return err
	}
	a, err := vm.dstack.PopByteArray()
	if err != nil {
		return err
	}

	if len(a)+len(b) > MaxScriptElementSize {
		str := fmt.Sprintf("concatenated size %d exceeds max allowed size %d",
			len(a)+len(b), MaxScriptElementSize)
		return scriptError(ErrPushSize, str)
	}

	c := make([]byte, 0, len(a)+len(b))
	c = append(c, a...)
	c = append(c, b...)
	vm.dstack.PushByteArray(c)
	return nil
}

// opcodeSplit 在栈顶给出的位置拆分次顶元素。
//
// 位置参数先按数字解码（最多 4 字节），解码失败报告为 ErrUnknown；
// 之后位置为负或大于被拆分值的长度时报告 ErrInvalidSplitRange。
//
// 栈变换: [... x n] -> [... x[:n] x[n:]]
func opcodeSplit(op *opcode, data []byte, vm *Engine) error {
	if err := vm.requireDepth(op, 2); err != nil {
		return err
	}

	rawPos, err := vm.dstack.PopByteArray()
	if err != nil {
		return err
	}
	pos, err := MakeScriptNum(rawPos, vm.dstack.verifyMinimalData, maxScriptNumLen)
	if err != nil {
		str := fmt.Sprintf("%s position %x is not a valid number: %v", op.name, rawPos, err)
		return scriptError(ErrUnknown, str)
	}

	x, err := vm.dstack.PopByteArray()
	if err != nil {
		return err
	}

	// 负数按无符号数比较，必然超出范围。
	if uint64(pos) > uint64(len(x)) {
		str := fmt.Sprintf("%s position %d is out of range for value of length %d",
			op.name, pos, len(x))
		return scriptError(ErrInvalidSplitRange, str)
	}

	n := int(pos)
	vm.dstack.PushByteArray(append([]byte(nil), x[:n]...))
	vm.dstack.PushByteArray(append([]byte(nil), x[n:]...))
	return nil
}

// opcodeNum2Bin 将数字编码为指定长度的字节串，符号位放在最后一个字节。
//
// 栈变换: [... num size] -> [... bin]
func opcodeNum2Bin(op *opcode, data []byte, vm *Engine) error {
	if err := vm.requireDepth(op, 2); err != nil {
		return err
	}

	size, err := vm.dstack.PopInt()
	if err != nil {
		return err
	}

	// 负数按无符号数比较，必然超过上限。
	if uint64(size) > MaxScriptElementSize {
		str := fmt.Sprintf("requested encoding size %d exceeds max allowed size %d",
			size, MaxScriptElementSize)
		return scriptError(ErrPushSize, str)
	}

	rawNum, err := vm.dstack.PopByteArray()
	if err != nil {
		return err
	}

	num := minimallyEncode(rawNum)
	if len(num) > int(size) {
		str := fmt.Sprintf("value %x cannot be encoded in %d bytes", rawNum, size)
		return scriptError(ErrImpossibleEncoding, str)
	}

	if len(num) == int(size) {
		vm.dstack.PushByteArray(num)
		return nil
	}

	var signBit byte
	if len(num) > 0 {
		signBit = num[len(num)-1] & 0x80
		num[len(num)-1] &= 0x7f
	}

	result := make([]byte, int(size))
	copy(result, num)
	result[len(result)-1] = signBit
	vm.dstack.PushByteArray(result)
	return nil
}

// opcodeBin2Num 将字节串转换为最小编码的数字。结果超过 4 字节时失败。
//
// 栈变换: [... bin] -> [... num]
func opcodeBin2Num(op *opcode, data []byte, vm *Engine) error {
	if err := vm.requireDepth(op, 1); err != nil {
		return err
	}

	raw, err := vm.dstack.PopByteArray()
	if err != nil {
		return err
	}

	num := minimallyEncode(raw)
	if !isMinimallyEncoded(num, maxScriptNumLen) {
		str := fmt.Sprintf("value %x is not a number within the valid range", raw)
		return scriptError(ErrInvalidNumberRange, str)
	}

	vm.dstack.PushByteArray(num)
	return nil
}

// opcodeSize 推送栈顶元素的长度，不移除栈顶元素。
//
// 栈变换: [... x] -> [... x len(x)]
func opcodeSize(op *opcode, data []byte, vm *Engine) error {
	so, err := vm.dstack.PeekByteArray(0)
	if err != nil {
		return err
	}

	vm.dstack.PushInt(scriptNum(len(so)))
	return nil
}
