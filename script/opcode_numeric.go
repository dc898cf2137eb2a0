package script

import "fmt"

// unaryNumOp 将栈顶元素解码为数字，应用 fn 后替换栈顶元素。
func unaryNumOp(op *opcode, vm *Engine, fn func(scriptNum) scriptNum) error {
	if err := vm.requireDepth(op, 1); err != nil {
		return err
	}

	m, err := vm.dstack.PopInt()
	if err != nil {
		return err
	}

	vm.dstack.PushInt(fn(m))
	return nil
}

// binaryNumOp 将栈顶两个元素解码为数字 a（次顶）和 b（栈顶），应用 fn 后替换这两个元素。
// 先检查栈深度，再按 a、b 的顺序解码。
func binaryNumOp(op *opcode, vm *Engine, fn func(a, b scriptNum) (scriptNum, error)) error {
	if err := vm.requireDepth(op, 2); err != nil {
		return err
	}

	a, err := vm.dstack.PeekInt(1)
	if err != nil {
		return err
	}
	b, err := vm.dstack.PeekInt(0)
	if err != nil {
		return err
	}

	result, err := fn(a, b)
	if err != nil {
		return err
	}

	if err := vm.dstack.DropN(2); err != nil {
		return err
	}
	vm.dstack.PushInt(result)
	return nil
}

// boolNum 将布尔值转换为数字 1 或 0。
func boolNum(v bool) scriptNum {
	if v {
		return 1
	}
	return 0
}

// opcode1Add 将栈顶数字加一。
//
// 栈变换: [... x] -> [... x+1]
func opcode1Add(op *opcode, data []byte, vm *Engine) error {
	return unaryNumOp(op, vm, func(m scriptNum) scriptNum { return m + 1 })
}

// opcode1Sub 将栈顶数字减一。
//
// 栈变换: [... x] -> [... x-1]
func opcode1Sub(op *opcode, data []byte, vm *Engine) error {
	return unaryNumOp(op, vm, func(m scriptNum) scriptNum { return m - 1 })
}

// opcodeNegate 对栈顶数字取反。
//
// 栈变换: [... x] -> [... -x]
func opcodeNegate(op *opcode, data []byte, vm *Engine) error {
	return unaryNumOp(op, vm, func(m scriptNum) scriptNum { return -m })
}

// opcodeAbs 取栈顶数字的绝对值。
//
// 栈变换: [... x] -> [... abs(x)]
func opcodeAbs(op *opcode, data []byte, vm *Engine) error {
	return unaryNumOp(op, vm, func(m scriptNum) scriptNum {
		if m < 0 {
			return -m
		}
		return m
	})
}

// opcodeNot 在栈顶数字为 0 时推送 1，否则推送 0。
//
// 栈变换: [... x] -> [... !x]
func opcodeNot(op *opcode, data []byte, vm *Engine) error {
	return unaryNumOp(op, vm, func(m scriptNum) scriptNum { return boolNum(m == 0) })
}

// opcode0NotEqual 在栈顶数字不为 0 时推送 1，否则推送 0。
//
// 栈变换: [... x] -> [... x!=0]
func opcode0NotEqual(op *opcode, data []byte, vm *Engine) error {
	return unaryNumOp(op, vm, func(m scriptNum) scriptNum { return boolNum(m != 0) })
}

// opcodeAdd 将栈顶两个数字相加。
//
// 栈变换: [... x1 x2] -> [... x1+x2]
func opcodeAdd(op *opcode, data []byte, vm *Engine) error {
	return binaryNumOp(op, vm, func(a, b scriptNum) (scriptNum, error) { return a + b, nil })
}

// opcodeSub 用次顶数字减去栈顶数字。
//
// 栈变换: [... x1 x2] -> [... x1-x2]
func opcodeSub(op *opcode, data []byte, vm *Engine) error {
	return binaryNumOp(op, vm, func(a, b scriptNum) (scriptNum, error) { return a - b, nil })
}

// opcodeDiv 用次顶数字除以栈顶数字，结果向零截断。
//
// 栈变换: [... x1 x2] -> [... x1/x2]
func opcodeDiv(op *opcode, data []byte, vm *Engine) error {
	return binaryNumOp(op, vm, func(a, b scriptNum) (scriptNum, error) {
		if b == 0 {
			return 0, scriptError(ErrDivByZero, "division by zero")
		}
		return a / b, nil
	})
}

// opcodeMod 取次顶数字除以栈顶数字的余数，余数与被除数同号。
//
// 栈变换: [... x1 x2] -> [... x1%x2]
func opcodeMod(op *opcode, data []byte, vm *Engine) error {
	return binaryNumOp(op, vm, func(a, b scriptNum) (scriptNum, error) {
		if b == 0 {
			return 0, scriptError(ErrModByZero, "modulo by zero")
		}
		return a % b, nil
	})
}

// opcodeBoolAnd 在两个数字都不为 0 时推送 1。
//
// 栈变换: [... x1 x2] -> [... x1&&x2]
func opcodeBoolAnd(op *opcode, data []byte, vm *Engine) error {
	return binaryNumOp(op, vm, func(a, b scriptNum) (scriptNum, error) {
		return boolNum(a != 0 && b != 0), nil
	})
}

// opcodeBoolOr 在任一数字不为 0 时推送 1。
//
// 栈变换: [... x1 x2] -> [... x1||x2]
func opcodeBoolOr(op *opcode, data []byte, vm *Engine) error {
	return binaryNumOp(op, vm, func(a, b scriptNum) (scriptNum, error) {
		return boolNum(a != 0 || b != 0), nil
	})
}

// opcodeNumEqual 在两个数字相等时推送 1。
//
// 栈变换: [... x1 x2] -> [... x1==x2]
func opcodeNumEqual(op *opcode, data []byte, vm *Engine) error {
	return binaryNumOp(op, vm, func(a, b scriptNum) (scriptNum, error) {
		return boolNum(a == b), nil
	})
}

// opcodeNumEqualVerify 是 OP_NUMEQUAL 之后紧跟 OP_VERIFY。
//
// 栈变换: [... x1 x2] -> [...]
func opcodeNumEqualVerify(op *opcode, data []byte, vm *Engine) error {
	if err := opcodeNumEqual(op, data, vm); err != nil {
		return err
	}
	return abstractVerify(op, vm, ErrNumEqualVerify)
}

// opcodeNumNotEqual 在两个数字不相等时推送 1。
//
// 栈变换: [... x1 x2] -> [... x1!=x2]
func opcodeNumNotEqual(op *opcode, data []byte, vm *Engine) error {
	return binaryNumOp(op, vm, func(a, b scriptNum) (scriptNum, error) {
		return boolNum(a != b), nil
	})
}

// opcodeLessThan 在次顶数字小于栈顶数字时推送 1。
//
// 栈变换: [... x1 x2] -> [... x1<x2]
func opcodeLessThan(op *opcode, data []byte, vm *Engine) error {
	return binaryNumOp(op, vm, func(a, b scriptNum) (scriptNum, error) {
		return boolNum(a < b), nil
	})
}

// opcodeGreaterThan 在次顶数字大于栈顶数字时推送 1。
//
// 栈变换: [... x1 x2] -> [... x1>x2]
func opcodeGreaterThan(op *opcode, data []byte, vm *Engine) error {
	return binaryNumOp(op, vm, func(a, b scriptNum) (scriptNum, error) {
		return boolNum(a > b), nil
	})
}

// opcodeLessThanOrEqual 在次顶数字小于等于栈顶数字时推送 1。
//
// 栈变换: [... x1 x2] -> [... x1<=x2]
func opcodeLessThanOrEqual(op *opcode, data []byte, vm *Engine) error {
	return binaryNumOp(op, vm, func(a, b scriptNum) (scriptNum, error) {
		return boolNum(a <= b), nil
	})
}

// opcodeGreaterThanOrEqual 在次顶数字大于等于栈顶数字时推送 1。
//
// 栈变换: [... x1 x2] -> [... x1>=x2]
func opcodeGreaterThanOrEqual(op *opcode, data []byte, vm *Engine) error {
	return binaryNumOp(op, vm, func(a, b scriptNum) (scriptNum, error) {
		return boolNum(a >= b), nil
	})
}

// opcodeMin 推送两个数字中较小的一个。
//
// 栈变换: [... x1 x2] -> [... min(x1, x2)]
func opcodeMin(op *opcode, data []byte, vm *Engine) error {
	return binaryNumOp(op, vm, func(a, b scriptNum) (scriptNum, error) {
		if a < b {
			return a, nil
		}
		return b, nil
	})
}

// opcodeMax 推送两个数字中较大的一个。
//
// 栈变换: [... x1 x2] -> [... max(x1, x2)]
func opcodeMax(op *opcode, data []byte, vm *Engine) error {
	return binaryNumOp(op, vm, func(a, b scriptNum) (scriptNum, error) {
		if a > b {
			return a, nil
		}
		return b, nil
	})
}

// opcodeWithin 在 x 满足 min <= x < max 时推送 1。
//
// 栈变换: [... x min max] -> [... bool]
func opcodeWithin(op *opcode, data []byte, vm *Engine) error {
	if err := vm.requireDepth(op, 3); err != nil {
		return err
	}

	x, err := vm.dstack.PeekInt(2)
	if err != nil {
		return err
	}
	minVal, err := vm.dstack.PeekInt(1)
	if err != nil {
		return err
	}
	maxVal, err := vm.dstack.PeekInt(0)
	if err != nil {
		return err
	}

	if err := vm.dstack.DropN(3); err != nil {
		return fmt.Errorf("drop %s operands: %w", op.name, err)
	}
	vm.dstack.PushBool(minVal <= x && x < maxVal)
	return nil
}
