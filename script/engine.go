// 脚本执行引擎。

package script

import (
	"fmt"
	"strings"

	logging "github.com/dep2p/log"
)

var logger = logging.Logger("script")

// 这些是脚本执行的资源上限。
const (
	// MaxScriptSize 是脚本允许的最大字节数。
	MaxScriptSize = 10000

	// MaxScriptElementSize 是栈元素允许的最大字节数。
	MaxScriptElementSize = 520

	// MaxOpsPerScript 是单个脚本允许执行的最大非推送操作码数量。
	MaxOpsPerScript = 201

	// MaxStackSize 是主栈与备用栈元素总数的上限。
	MaxStackSize = 1000

	// MaxPubKeysPerMultiSig 是 CHECKMULTISIG 允许的最大公钥数量。
	MaxPubKeysPerMultiSig = 20
)

// SigVersion 标识签名检查所处的脚本上下文。
type SigVersion int

const (
	// SigVersionBase 是普通脚本的签名上下文。
	SigVersionBase SigVersion = 0
)

// Engine 是脚本执行引擎。它按顺序执行脚本中的操作码，维护主栈、备用栈和条件执行状态。
//
// Engine 不是并发安全的，但不持有任何全局状态，多个 Engine 可以在不同的 goroutine 中同时运行。
type Engine struct {
	script      []byte
	tokenizer   ScriptTokenizer
	lastCodeSep int32
	dstack      stack
	astack      stack
	condStack   []int
	numOps      int
	flags       ScriptFlags
	checker     SignatureChecker
	sigVersion  SigVersion
}

// hasFlag 返回引擎是否设置了给定的标志。
func (vm *Engine) hasFlag(flag ScriptFlags) bool {
	return vm.flags&flag == flag
}

// isBranchExecuting 返回当前是否处于执行中的分支。
func (vm *Engine) isBranchExecuting() bool {
	if len(vm.condStack) == 0 {
		return true
	}
	return vm.condStack[len(vm.condStack)-1] == OpCondTrue
}

// executeOpcode 对一个已解码的操作码执行分派前的检查，然后在需要时调用其处理函数。
//
// 检查顺序是共识的一部分：推送大小、操作计数、永久禁用、DIP0020 门控均在分支是否执行之前进行；
// 最小推送只检查实际执行的推送。
func (vm *Engine) executeOpcode(op *opcode, data []byte) error {
	if len(data) > MaxScriptElementSize {
		str := fmt.Sprintf("element size %d exceeds max allowed size %d",
			len(data), MaxScriptElementSize)
		return scriptError(ErrPushSize, str)
	}

	if op.value > OP_16 {
		vm.numOps++
		if vm.numOps > MaxOpsPerScript {
			str := fmt.Sprintf("exceeded max operation limit of %d", MaxOpsPerScript)
			return scriptError(ErrOpCount, str)
		}
	}

	if isAlwaysDisabledOpcode(op.value) {
		str := fmt.Sprintf("attempt to execute disabled opcode %s", op.name)
		return scriptError(ErrDisabledOpcode, str)
	}

	if isDIP0020Opcode(op.value) && !vm.hasFlag(ScriptEnableDIP0020Opcodes) {
		str := fmt.Sprintf("attempt to execute disabled opcode %s", op.name)
		return scriptError(ErrDisabledOpcode, str)
	}

	executing := vm.isBranchExecuting()
	if !executing && !isConditionalOpcode(op.value) {
		return nil
	}

	if executing && op.value <= OP_PUSHDATA4 && vm.hasFlag(ScriptVerifyMinimalData) {
		if err := checkMinimalPush(data, op.value); err != nil {
			return err
		}
	}

	return op.opfunc(op, data, vm)
}

// checkLimits 检查每个操作码执行后必须满足的条件：栈元素总数和新推入元素的大小。
func (vm *Engine) checkLimits() error {
	if combined := vm.dstack.Depth() + vm.astack.Depth(); combined > MaxStackSize {
		str := fmt.Sprintf("combined stack size %d > max allowed %d",
			combined, MaxStackSize)
		return scriptError(ErrStackSize, str)
	}

	for _, s := range []*stack{&vm.dstack, &vm.astack} {
		if size := s.pushWatermark(); size > MaxScriptElementSize {
			str := fmt.Sprintf("element size %d exceeds max allowed size %d",
				size, MaxScriptElementSize)
			return scriptError(ErrPushSize, str)
		}
	}
	return nil
}

// finish 在脚本结束时检查条件块是否全部闭合。
func (vm *Engine) finish() error {
	if len(vm.condStack) != 0 {
		return scriptError(ErrUnbalancedConditional,
			"end of script reached in conditional execution")
	}
	return nil
}

// Step 执行下一个操作码。
//
// 返回值:
//   - done: 脚本是否已经执行完毕（包括出错的情况）
//   - err: 执行失败时的脚本错误
func (vm *Engine) Step() (done bool, err error) {
	if vm.tokenizer.Done() {
		if err := vm.tokenizer.Err(); err != nil {
			return true, err
		}
		return true, vm.finish()
	}

	if !vm.tokenizer.Next() {
		return true, vm.tokenizer.Err()
	}

	vm.dstack.resetPushWatermark()
	vm.astack.resetPushWatermark()

	op := &opcodeArray[vm.tokenizer.Opcode()]
	if err := vm.executeOpcode(op, vm.tokenizer.Data()); err != nil {
		return true, err
	}

	if err := vm.checkLimits(); err != nil {
		return true, err
	}

	if vm.tokenizer.Done() {
		return true, vm.finish()
	}
	return false, nil
}

// Execute 执行整个脚本。它不检查栈顶元素的真假，判定结果由 CheckErrorCondition 完成。
func (vm *Engine) Execute() error {
	for {
		done, err := vm.Step()
		if err != nil {
			return err
		}
		if done {
			return nil
		}
	}
}

// CheckErrorCondition 检查执行结束后的判定条件：栈不能为空，栈顶元素必须为真。
func (vm *Engine) CheckErrorCondition() error {
	if vm.dstack.Depth() < 1 {
		return scriptError(ErrEvalFalse,
			"stack empty at end of script execution")
	}

	v, err := vm.dstack.PeekBool(0)
	if err != nil {
		return err
	}
	if !v {
		return scriptError(ErrEvalFalse,
			"false stack entry at end of script execution")
	}
	return nil
}

// GetStack 返回主栈的内容，栈底在前。
func (vm *Engine) GetStack() [][]byte {
	return vm.dstack.stk
}

// SetStack 替换主栈的内容，栈底在前。
func (vm *Engine) SetStack(data [][]byte) {
	vm.dstack.stk = data
}

// GetAltStack 返回备用栈的内容，栈底在前。
func (vm *Engine) GetAltStack() [][]byte {
	return vm.astack.stk
}

// DisasmPC 返回下一个待执行操作码的反汇编，格式为 "偏移量: 操作码"。
func (vm *Engine) DisasmPC() (string, error) {
	offset := vm.tokenizer.ByteIndex()
	tokenizer := MakeScriptTokenizer(0, vm.script[offset:])
	if !tokenizer.Next() {
		if err := tokenizer.Err(); err != nil {
			return "", err
		}
		return "", scriptError(ErrUnknown, "end of script")
	}

	var buf strings.Builder
	buf.WriteString(fmt.Sprintf("%04x: ", offset))
	disasmOpcode(&buf, tokenizer.op, tokenizer.Data(), false)
	return buf.String(), nil
}

// subScript 返回从最后一个已执行的 OP_CODESEPARATOR 之后到脚本结尾的部分。
func (vm *Engine) subScript() []byte {
	return vm.script[vm.lastCodeSep:]
}

// NewEngine 创建脚本执行引擎。
//
// 参数:
//   - script: 要执行的脚本
//   - stk: 初始主栈，栈底在前
//   - flags: 验证标志
//   - checker: 签名检查器，nil 表示所有签名检查都失败
//   - sigVersion: 签名上下文
//
// 返回值:
//   - *Engine: 执行引擎
//   - error: 脚本超过 MaxScriptSize 时返回 ErrScriptSize
func NewEngine(script []byte, stk [][]byte, flags ScriptFlags, checker SignatureChecker, sigVersion SigVersion) (*Engine, error) {
	if len(script) > MaxScriptSize {
		str := fmt.Sprintf("script size %d is larger than max allowed size %d",
			len(script), MaxScriptSize)
		return nil, scriptError(ErrScriptSize, str)
	}

	if checker == nil {
		checker = BaseSignatureChecker{}
	}

	vm := &Engine{
		script:     script,
		tokenizer:  MakeScriptTokenizer(0, script),
		flags:      flags,
		checker:    checker,
		sigVersion: sigVersion,
	}
	vm.dstack.stk = stk
	vm.dstack.verifyMinimalData = vm.hasFlag(ScriptVerifyMinimalData)
	vm.astack.verifyMinimalData = vm.dstack.verifyMinimalData
	return vm, nil
}

// EvalScript 在给定的栈上执行脚本，不检查栈顶元素的真假。
//
// 成功时 *stk 被替换为执行后的主栈；失败时 *stk 的内容没有定义。
//
// 参数:
//   - stk: 输入输出栈，栈底在前
//   - script: 要执行的脚本
//   - flags: 验证标志
//   - checker: 签名检查器
//   - sigVersion: 签名上下文
//
// 返回值:
//   - error: 执行失败时返回 Error，可以通过 ErrorCodeOf 取得错误代码
func EvalScript(stk *[][]byte, script []byte, flags ScriptFlags, checker SignatureChecker, sigVersion SigVersion) error {
	vm, err := NewEngine(script, *stk, flags, checker, sigVersion)
	if err != nil {
		logger.Debugf("脚本执行失败: %v", err)
		return err
	}

	if err := vm.Execute(); err != nil {
		logger.Debugf("脚本执行失败: %v", err)
		*stk = vm.GetStack()
		return err
	}

	*stk = vm.GetStack()
	return nil
}

// Evaluate 执行脚本并给出判定：执行成功且栈顶元素为真时返回 (true, ErrOK)。
//
// 参数:
//   - stk: 输入输出栈，栈底在前
//   - script: 要执行的脚本
//   - flags: 验证标志
//   - checker: 签名检查器
//   - sigVersion: 签名上下文
//
// 返回值:
//   - bool: 是否通过
//   - ErrorCode: 失败时的错误代码，成功时为 ErrOK
func Evaluate(stk *[][]byte, script []byte, flags ScriptFlags, checker SignatureChecker, sigVersion SigVersion) (bool, ErrorCode) {
	if err := EvalScript(stk, script, flags, checker, sigVersion); err != nil {
		return false, ErrorCodeOf(err)
	}

	s := stack{stk: *stk}
	if s.Depth() < 1 {
		return false, ErrEvalFalse
	}
	if top, _ := s.PeekBool(0); !top {
		return false, ErrEvalFalse
	}
	return true, ErrOK
}
