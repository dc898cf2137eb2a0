package script

import "fmt"

// opcodeDisabled 是永久禁用的操作码的处理函数。引擎在分派前已经拒绝这些操作码，这里只是保底。
func opcodeDisabled(op *opcode, data []byte, vm *Engine) error {
	str := fmt.Sprintf("attempt to execute disabled opcode %s", op.name)
	return scriptError(ErrDisabledOpcode, str)
}

// opcodeReserved 是保留操作码的处理函数。只有在执行时才会失败。
func opcodeReserved(op *opcode, data []byte, vm *Engine) error {
	str := fmt.Sprintf("attempt to execute reserved opcode %s", op.name)
	return scriptError(ErrBadOpcode, str)
}

// opcodeReservedConditional 是 OP_VERIF 和 OP_VERNOTIF 的处理函数。
// 它们位于 IF 系列的字节范围内，因此即使在未执行的分支中也会失败。
func opcodeReservedConditional(op *opcode, data []byte, vm *Engine) error {
	str := fmt.Sprintf("attempt to execute reserved opcode %s", op.name)
	return scriptError(ErrBadOpcode, str)
}

// opcodeInvalid 是未定义操作码的处理函数。
func opcodeInvalid(op *opcode, data []byte, vm *Engine) error {
	str := fmt.Sprintf("attempt to execute invalid opcode %s", op.name)
	return scriptError(ErrBadOpcode, str)
}

// opcodeFalse 推送空值。
func opcodeFalse(op *opcode, data []byte, vm *Engine) error {
	vm.dstack.PushByteArray(nil)
	return nil
}

// opcodePushData 推送操作码附带的数据。
func opcodePushData(op *opcode, data []byte, vm *Engine) error {
	vm.dstack.PushByteArray(data)
	return nil
}

// opcode1Negate 推送 -1。
func opcode1Negate(op *opcode, data []byte, vm *Engine) error {
	vm.dstack.PushInt(scriptNum(-1))
	return nil
}

// opcodeN 推送 OP_1 到 OP_16 对应的数字。
func opcodeN(op *opcode, data []byte, vm *Engine) error {
	vm.dstack.PushInt(scriptNum(op.value - (OP_1 - 1)))
	return nil
}

// opcodeNop 是 OP_NOP、OP_NOP1 以及 OP_NOP4 到 OP_NOP10 的处理函数。
// 设置 ScriptDiscourageUpgradableNops 时，保留给软分叉的 NOP 会失败。
func opcodeNop(op *opcode, data []byte, vm *Engine) error {
	if op.value != OP_NOP && vm.hasFlag(ScriptDiscourageUpgradableNops) {
		str := fmt.Sprintf("%s reserved for soft-fork upgrades", op.name)
		return scriptError(ErrDiscourageUpgradableNops, str)
	}
	return nil
}

// popIfBool 为 OP_IF/OP_NOTIF 弹出条件值。空栈视为条件块不平衡。
func popIfBool(vm *Engine) (bool, error) {
	if vm.dstack.Depth() < 1 {
		return false, scriptError(ErrUnbalancedConditional,
			"OP_IF or OP_NOTIF executed on an empty stack")
	}
	return vm.dstack.PopBool()
}

// opcodeIf 开始一个条件块。
//
// 在执行中的分支里，它弹出栈顶元素并根据其真假决定是否执行 IF 部分；
// 在未执行的分支里，它不读取栈，只把整个条件块标记为跳过。
//
// 栈变换: [... bool] -> [...]
func opcodeIf(op *opcode, data []byte, vm *Engine) error {
	condVal := OpCondFalse
	if vm.isBranchExecuting() {
		ok, err := popIfBool(vm)
		if err != nil {
			return err
		}
		if ok {
			condVal = OpCondTrue
		}
	} else {
		condVal = OpCondSkip
	}
	vm.condStack = append(vm.condStack, condVal)
	return nil
}

// opcodeNotIf 与 opcodeIf 相同，但条件取反。
//
// 栈变换: [... bool] -> [...]
func opcodeNotIf(op *opcode, data []byte, vm *Engine) error {
	condVal := OpCondFalse
	if vm.isBranchExecuting() {
		ok, err := popIfBool(vm)
		if err != nil {
			return err
		}
		if !ok {
			condVal = OpCondTrue
		}
	} else {
		condVal = OpCondSkip
	}
	vm.condStack = append(vm.condStack, condVal)
	return nil
}

// opcodeElse 翻转当前条件块的执行状态。被跳过的条件块保持跳过。
func opcodeElse(op *opcode, data []byte, vm *Engine) error {
	if len(vm.condStack) == 0 {
		str := fmt.Sprintf("encountered opcode %s with no matching opcode to begin conditional execution", op.name)
		return scriptError(ErrUnbalancedConditional, str)
	}

	conditionalIdx := len(vm.condStack) - 1
	switch vm.condStack[conditionalIdx] {
	case OpCondTrue:
		vm.condStack[conditionalIdx] = OpCondFalse
	case OpCondFalse:
		vm.condStack[conditionalIdx] = OpCondTrue
	case OpCondSkip:
	}
	return nil
}

// opcodeEndif 结束当前条件块。
func opcodeEndif(op *opcode, data []byte, vm *Engine) error {
	if len(vm.condStack) == 0 {
		str := fmt.Sprintf("encountered opcode %s with no matching opcode to begin conditional execution", op.name)
		return scriptError(ErrUnbalancedConditional, str)
	}

	vm.condStack = vm.condStack[:len(vm.condStack)-1]
	return nil
}

// abstractVerify 弹出栈顶元素，为假时返回给定的错误代码。
func abstractVerify(op *opcode, vm *Engine, c ErrorCode) error {
	verified, err := vm.dstack.PopBool()
	if err != nil {
		return err
	}

	if !verified {
		str := fmt.Sprintf("%s failed", op.name)
		return scriptError(c, str)
	}
	return nil
}

// opcodeVerify 要求栈顶元素为真并将其移除。
//
// 栈变换: [... bool] -> [...]
func opcodeVerify(op *opcode, data []byte, vm *Engine) error {
	return abstractVerify(op, vm, ErrVerify)
}

// opcodeReturn 立即使脚本失败。
func opcodeReturn(op *opcode, data []byte, vm *Engine) error {
	return scriptError(ErrOpReturn, "script returned early")
}

// sequenceLockTimeDisabled 是序列号中表示禁用相对锁定时间的位。
const sequenceLockTimeDisabled = 1 << 31

// peekLockTime 读取锁定时间操作码的参数。参数最多 5 字节，不能为负，且保留在栈上。
func peekLockTime(vm *Engine) (int64, error) {
	so, err := vm.dstack.PeekByteArray(0)
	if err != nil {
		return 0, err
	}
	n, err := MakeScriptNum(so, vm.dstack.verifyMinimalData, cltvMaxScriptNumLen)
	if err != nil {
		return 0, err
	}
	if n < 0 {
		str := fmt.Sprintf("negative lock time: %d", n)
		return 0, scriptError(ErrNegativeLockTime, str)
	}
	return int64(n), nil
}

// opcodeCheckLockTimeVerify 验证交易的锁定时间不早于栈顶给出的值。
// 未设置 ScriptVerifyCheckLockTimeVerify 时它表现为 OP_NOP2。
//
// 栈变换: [... locktime] -> [... locktime]
func opcodeCheckLockTimeVerify(op *opcode, data []byte, vm *Engine) error {
	if !vm.hasFlag(ScriptVerifyCheckLockTimeVerify) {
		if vm.hasFlag(ScriptDiscourageUpgradableNops) {
			return scriptError(ErrDiscourageUpgradableNops,
				"OP_NOP2 reserved for soft-fork upgrades")
		}
		return nil
	}

	lockTime, err := peekLockTime(vm)
	if err != nil {
		return err
	}

	if !checkLockTime(vm.checker, lockTime) {
		str := fmt.Sprintf("lock time requirement %d not satisfied", lockTime)
		return scriptError(ErrUnsatisfiedLockTime, str)
	}
	return nil
}

// opcodeCheckSequenceVerify 验证输入的相对锁定时间不早于栈顶给出的值。
// 未设置 ScriptVerifyCheckSequenceVerify 时它表现为 OP_NOP3；参数设置了禁用位时它也不做检查。
//
// 栈变换: [... sequence] -> [... sequence]
func opcodeCheckSequenceVerify(op *opcode, data []byte, vm *Engine) error {
	if !vm.hasFlag(ScriptVerifyCheckSequenceVerify) {
		if vm.hasFlag(ScriptDiscourageUpgradableNops) {
			return scriptError(ErrDiscourageUpgradableNops,
				"OP_NOP3 reserved for soft-fork upgrades")
		}
		return nil
	}

	sequence, err := peekLockTime(vm)
	if err != nil {
		return err
	}

	if sequence&sequenceLockTimeDisabled != 0 {
		return nil
	}

	if !checkSequence(vm.checker, sequence) {
		str := fmt.Sprintf("sequence requirement %d not satisfied", sequence)
		return scriptError(ErrUnsatisfiedLockTime, str)
	}
	return nil
}
