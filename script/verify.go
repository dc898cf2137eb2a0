package script

// VerifyScript 验证签名脚本是否满足公钥脚本。
//
// 处理逻辑:
//  1. ScriptVerifySigPushOnly 下要求签名脚本只包含推送操作码
//  2. 在空栈上执行签名脚本，再在得到的栈上执行公钥脚本，栈顶必须为真
//  3. ScriptVerifyP2SH 下，若公钥脚本是 pay-to-script-hash，则签名脚本必须只包含推送操作码，
//     并在签名脚本执行后的栈上执行其最后推送的赎回脚本，栈顶必须为真
//  4. ScriptVerifyCleanStack 下要求最终栈上恰好剩余一个元素；该标志必须与 ScriptVerifyP2SH 一起使用
//
// 参数:
//   - scriptSig: 签名脚本
//   - scriptPubKey: 公钥脚本
//   - flags: 验证标志
//   - checker: 签名检查器
//
// 返回值:
//   - error: 验证失败时返回 Error
func VerifyScript(scriptSig, scriptPubKey []byte, flags ScriptFlags, checker SignatureChecker) error {
	if flags.HasFlag(ScriptVerifyCleanStack) && !flags.HasFlag(ScriptVerifyP2SH) {
		return scriptError(ErrInvalidFlags,
			"invalid flags combination: CLEANSTACK requires P2SH")
	}

	if flags.HasFlag(ScriptVerifySigPushOnly) && !IsPushOnly(scriptSig) {
		return scriptError(ErrSigPushOnly,
			"signature script is not push only")
	}

	var stk [][]byte
	if err := EvalScript(&stk, scriptSig, flags, checker, SigVersionBase); err != nil {
		return err
	}

	var savedStack [][]byte
	if flags.HasFlag(ScriptVerifyP2SH) {
		savedStack = make([][]byte, len(stk))
		copy(savedStack, stk)
	}

	if err := EvalScript(&stk, scriptPubKey, flags, checker, SigVersionBase); err != nil {
		return err
	}
	if err := checkVerdict(stk); err != nil {
		return err
	}

	if flags.HasFlag(ScriptVerifyP2SH) && IsPayToScriptHash(scriptPubKey) {
		if !IsPushOnly(scriptSig) {
			return scriptError(ErrSigPushOnly,
				"pay to script hash is not push only")
		}

		stk = savedStack
		// 公钥脚本已经对栈顶执行过 OP_HASH160，栈不可能为空。
		redeemScript := stk[len(stk)-1]
		stk = stk[:len(stk)-1]

		if err := EvalScript(&stk, redeemScript, flags, checker, SigVersionBase); err != nil {
			return err
		}
		if err := checkVerdict(stk); err != nil {
			return err
		}
	}

	if flags.HasFlag(ScriptVerifyCleanStack) && len(stk) != 1 {
		return scriptError(ErrCleanStack,
			"stack must contain exactly one item after execution")
	}

	return nil
}

// checkVerdict 检查执行后的栈：栈不能为空，栈顶元素必须为真。
func checkVerdict(stk [][]byte) error {
	if len(stk) == 0 {
		return scriptError(ErrEvalFalse,
			"stack empty at end of script execution")
	}
	if !asBool(stk[len(stk)-1]) {
		return scriptError(ErrEvalFalse,
			"false stack entry at end of script execution")
	}
	return nil
}
