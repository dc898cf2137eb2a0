package script

import "fmt"

// opcodeToAltStack 将主栈栈顶元素移到备用栈。
//
// 主栈变换: [... x1 x2 x3] -> [... x1 x2]
// 备用栈变换: [... y1 y2 y3] -> [... y1 y2 y3 x3]
func opcodeToAltStack(op *opcode, data []byte, vm *Engine) error {
	so, err := vm.dstack.PopByteArray()
	if err != nil {
		return err
	}
	vm.astack.PushByteArray(so)

	return nil
}

// opcodeFromAltStack 将备用栈栈顶元素移回主栈。
//
// 主栈变换: [... x1 x2 x3] -> [... x1 x2 x3 y3]
// 备用栈变换: [... y1 y2 y3] -> [... y1 y2]
func opcodeFromAltStack(op *opcode, data []byte, vm *Engine) error {
	if vm.astack.Depth() < 1 {
		str := fmt.Sprintf("%s requires a non-empty alt stack", op.name)
		return scriptError(ErrInvalidAltStackOperation, str)
	}

	so, err := vm.astack.PopByteArray()
	if err != nil {
		return err
	}
	vm.dstack.PushByteArray(so)

	return nil
}

// opcode2Drop 移除栈顶两个元素。
//
// 栈变换: [... x1 x2 x3] -> [... x1]
func opcode2Drop(op *opcode, data []byte, vm *Engine) error {
	return vm.dstack.DropN(2)
}

// opcode2Dup 复制栈顶两个元素。
//
// 栈变换: [... x1 x2 x3] -> [... x1 x2 x3 x2 x3]
func opcode2Dup(op *opcode, data []byte, vm *Engine) error {
	return vm.dstack.DupN(2)
}

// opcode3Dup 复制栈顶三个元素。
//
// 栈变换: [... x1 x2 x3] -> [... x1 x2 x3 x1 x2 x3]
func opcode3Dup(op *opcode, data []byte, vm *Engine) error {
	return vm.dstack.DupN(3)
}

// opcode2Over 复制栈顶之下的两个元素到栈顶。
//
// 栈变换: [... x1 x2 x3 x4] -> [... x1 x2 x3 x4 x1 x2]
func opcode2Over(op *opcode, data []byte, vm *Engine) error {
	return vm.dstack.OverN(2)
}

// opcode2Rot 将第五、六个元素移到栈顶。
//
// 栈变换: [... x1 x2 x3 x4 x5 x6] -> [... x3 x4 x5 x6 x1 x2]
func opcode2Rot(op *opcode, data []byte, vm *Engine) error {
	return vm.dstack.RotN(2)
}

// opcode2Swap 交换栈顶的两对元素。
//
// 栈变换: [... x1 x2 x3 x4] -> [... x3 x4 x1 x2]
func opcode2Swap(op *opcode, data []byte, vm *Engine) error {
	return vm.dstack.SwapN(2)
}

// opcodeIfDup 在栈顶元素为真时复制它。
//
// 栈变换（x1 为真）: [... x1] -> [... x1 x1]
// 栈变换（x1 为假）: [... x1] -> [... x1]
func opcodeIfDup(op *opcode, data []byte, vm *Engine) error {
	so, err := vm.dstack.PeekByteArray(0)
	if err != nil {
		return err
	}

	if asBool(so) {
		vm.dstack.PushByteArray(so)
	}

	return nil
}

// opcodeDepth 推送执行前的栈深度。
//
// 栈变换: [... x1 x2] -> [... x1 x2 2]
func opcodeDepth(op *opcode, data []byte, vm *Engine) error {
	vm.dstack.PushInt(scriptNum(vm.dstack.Depth()))
	return nil
}

// opcodeDrop 移除栈顶元素。
//
// 栈变换: [... x1 x2 x3] -> [... x1 x2]
func opcodeDrop(op *opcode, data []byte, vm *Engine) error {
	return vm.dstack.DropN(1)
}

// opcodeDup 复制栈顶元素。
//
// 栈变换: [... x1 x2 x3] -> [... x1 x2 x3 x3]
func opcodeDup(op *opcode, data []byte, vm *Engine) error {
	return vm.dstack.DupN(1)
}

// opcodeNip 移除栈顶之下的元素。
//
// 栈变换: [... x1 x2 x3] -> [... x1 x3]
func opcodeNip(op *opcode, data []byte, vm *Engine) error {
	return vm.dstack.NipN(1)
}

// opcodeOver 复制次顶元素到栈顶。
//
// 栈变换: [... x1 x2 x3] -> [... x1 x2 x3 x2]
func opcodeOver(op *opcode, data []byte, vm *Engine) error {
	return vm.dstack.OverN(1)
}

// popStackIndex 弹出 OP_PICK/OP_ROLL 的索引参数，并检查它是否落在剩余元素的范围内。
func popStackIndex(op *opcode, vm *Engine) (int32, error) {
	if vm.dstack.Depth() < 2 {
		str := fmt.Sprintf("%s requires at least 2 stack items", op.name)
		return 0, scriptError(ErrInvalidStackOperation, str)
	}

	val, err := vm.dstack.PopInt()
	if err != nil {
		return 0, err
	}

	if val < 0 || val >= scriptNum(vm.dstack.Depth()) {
		str := fmt.Sprintf("%s index %d is invalid for stack size %d",
			op.name, val, vm.dstack.Depth())
		return 0, scriptError(ErrInvalidStackOperation, str)
	}
	return val.Int32(), nil
}

// opcodePick 将栈顶给出的索引处的元素复制到栈顶。
//
// 栈变换: [xn ... x2 x1 x0 n] -> [xn ... x2 x1 x0 xn]
func opcodePick(op *opcode, data []byte, vm *Engine) error {
	n, err := popStackIndex(op, vm)
	if err != nil {
		return err
	}

	return vm.dstack.PickN(n)
}

// opcodeRoll 将栈顶给出的索引处的元素移到栈顶。
//
// 栈变换: [xn ... x2 x1 x0 n] -> [... x2 x1 x0 xn]
func opcodeRoll(op *opcode, data []byte, vm *Engine) error {
	n, err := popStackIndex(op, vm)
	if err != nil {
		return err
	}

	return vm.dstack.RollN(n)
}

// opcodeRot 将第三个元素移到栈顶。
//
// 栈变换: [... x1 x2 x3] -> [... x2 x3 x1]
func opcodeRot(op *opcode, data []byte, vm *Engine) error {
	return vm.dstack.RotN(1)
}

// opcodeSwap 交换栈顶两个元素。
//
// 栈变换: [... x1 x2] -> [... x2 x1]
func opcodeSwap(op *opcode, data []byte, vm *Engine) error {
	return vm.dstack.SwapN(1)
}

// opcodeTuck 将栈顶元素复制到次顶元素之下。
//
// 栈变换: [... x1 x2] -> [... x2 x1 x2]
func opcodeTuck(op *opcode, data []byte, vm *Engine) error {
	return vm.dstack.Tuck()
}
