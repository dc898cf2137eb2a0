package script

import (
	"bytes"
	"fmt"
)

// bitwiseOp 对栈顶两个等长元素逐字节应用 fn，结果替换这两个元素。
func bitwiseOp(op *opcode, vm *Engine, fn func(a, b byte) byte) error {
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

	if len(a) != len(b) {
		str := fmt.Sprintf("%s operands have different sizes %d and %d",
			op.name, len(a), len(b))
		return scriptError(ErrInvalidOperandSize, str)
	}

	result := make([]byte, len(a))
	for i := range a {
		result[i] = fn(a[i], b[i])
	}
	vm.dstack.PushByteArray(result)
	return nil
}

// opcodeAnd 对栈顶两个等长元素按位与。
//
// 栈变换: [... x1 x2] -> [... x1&x2]
func opcodeAnd(op *opcode, data []byte, vm *Engine) error {
	return bitwiseOp(op, vm, func(a, b byte) byte { return a & b })
}

// opcodeOr 对栈顶两个等长元素按位或。
//
// 栈变换: [... x1 x2] -> [... x1|x2]
func opcodeOr(op *opcode, data []byte, vm *Engine) error {
	return bitwiseOp(op, vm, func(a, b byte) byte { return a | b })
}

// opcodeXor 对栈顶两个等长元素按位异或。
//
// 栈变换: [... x1 x2] -> [... x1^x2]
func opcodeXor(op *opcode, data []byte, vm *Engine) error {
	return bitwiseOp(op, vm, func(a, b byte) byte { return a ^ b })
}

// opcodeEqual 比较栈顶两个元素是否逐字节相等。
//
// 栈变换: [... x1 x2] -> [... bool]
func opcodeEqual(op *opcode, data []byte, vm *Engine) error {
	if err := vm.requireDepth(op, 2); err != nil {
		return err
	}

	a, err := vm.dstack.PopByteArray()
	if err != nil {
		return err
	}
	b, err := vm.dstack.PopByteArray()
	if err != nil {
		return err
	}

	vm.dstack.PushBool(bytes.Equal(a, b))
	return nil
}

// opcodeEqualVerify 是 OP_EQUAL 之后紧跟 OP_VERIFY。
//
// 栈变换: [... x1 x2] -> [...]
func opcodeEqualVerify(op *opcode, data []byte, vm *Engine) error {
	if err := opcodeEqual(op, data, vm); err != nil {
		return err
	}
	return abstractVerify(op, vm, ErrEqualVerify)
}
