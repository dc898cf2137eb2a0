package script

import (
	"bytes"
	"crypto/sha1"
	"fmt"
	"hash"

	"github.com/minio/sha256-simd"
	"golang.org/x/crypto/ripemd160"
)

// calcHash 用给定的哈希算法计算 buf 的摘要。
func calcHash(buf []byte, hasher hash.Hash) []byte {
	hasher.Write(buf)
	return hasher.Sum(nil)
}

// hash160 计算 RIPEMD160(SHA256(buf))。
func hash160(buf []byte) []byte {
	h := sha256.Sum256(buf)
	return calcHash(h[:], ripemd160.New())
}

// hash256 计算 SHA256(SHA256(buf))。
func hash256(buf []byte) []byte {
	first := sha256.Sum256(buf)
	second := sha256.Sum256(first[:])
	return second[:]
}

// hashOp 弹出栈顶元素，推送 fn 计算的摘要。
func hashOp(op *opcode, vm *Engine, fn func([]byte) []byte) error {
	if err := vm.requireDepth(op, 1); err != nil {
		return err
	}

	buf, err := vm.dstack.PopByteArray()
	if err != nil {
		return err
	}

	vm.dstack.PushByteArray(fn(buf))
	return nil
}

// opcodeRipemd160 将栈顶元素替换为其 RIPEMD160 摘要。
//
// 栈变换: [... x1] -> [... ripemd160(x1)]
func opcodeRipemd160(op *opcode, data []byte, vm *Engine) error {
	return hashOp(op, vm, func(buf []byte) []byte {
		return calcHash(buf, ripemd160.New())
	})
}

// opcodeSha1 将栈顶元素替换为其 SHA1 摘要。
//
// 栈变换: [... x1] -> [... sha1(x1)]
func opcodeSha1(op *opcode, data []byte, vm *Engine) error {
	return hashOp(op, vm, func(buf []byte) []byte {
		h := sha1.Sum(buf)
		return h[:]
	})
}

// opcodeSha256 将栈顶元素替换为其 SHA256 摘要。
//
// 栈变换: [... x1] -> [... sha256(x1)]
func opcodeSha256(op *opcode, data []byte, vm *Engine) error {
	return hashOp(op, vm, func(buf []byte) []byte {
		h := sha256.Sum256(buf)
		return h[:]
	})
}

// opcodeHash160 将栈顶元素替换为 RIPEMD160(SHA256(x))。
//
// 栈变换: [... x1] -> [... ripemd160(sha256(x1))]
func opcodeHash160(op *opcode, data []byte, vm *Engine) error {
	return hashOp(op, vm, hash160)
}

// opcodeHash256 将栈顶元素替换为 SHA256(SHA256(x))。
//
// 栈变换: [... x1] -> [... sha256(sha256(x1))]
func opcodeHash256(op *opcode, data []byte, vm *Engine) error {
	return hashOp(op, vm, hash256)
}

// opcodeCodeSeparator 记录当前位置，签名检查使用的脚本代码从这里之后开始。
func opcodeCodeSeparator(op *opcode, data []byte, vm *Engine) error {
	vm.lastCodeSep = vm.tokenizer.ByteIndex()
	return nil
}

// pushEncoding 返回 data 作为一次数据推送时的原始编码。与 ScriptBuilder 不同，
// 它不会把小整数替换为 OP_1..OP_16，空数据编码为单个 0x00。
func pushEncoding(data []byte) []byte {
	n := len(data)
	var buf []byte
	switch {
	case n < OP_PUSHDATA1:
		buf = make([]byte, 0, 1+n)
		buf = append(buf, byte(n))
	case n <= 0xff:
		buf = make([]byte, 0, 2+n)
		buf = append(buf, OP_PUSHDATA1, byte(n))
	case n <= 0xffff:
		buf = make([]byte, 0, 3+n)
		buf = append(buf, OP_PUSHDATA2, byte(n), byte(n>>8))
	default:
		buf = make([]byte, 0, 5+n)
		buf = append(buf, OP_PUSHDATA4, byte(n), byte(n>>8), byte(n>>16), byte(n>>24))
	}
	return append(buf, data...)
}

// removeOpcodeByData 从脚本中删除所有与 data 的推送编码完全相同、且起始于操作码边界的片段。
// 没有匹配时返回原脚本。
func removeOpcodeByData(script []byte, data []byte) []byte {
	pattern := pushEncoding(data)

	var result []byte
	found := false
	pc, pc2 := 0, 0
	for {
		result = append(result, script[pc2:pc]...)
		for len(script)-pc >= len(pattern) && bytes.Equal(script[pc:pc+len(pattern)], pattern) {
			pc += len(pattern)
			found = true
		}
		pc2 = pc

		if pc >= len(script) {
			break
		}
		tokenizer := MakeScriptTokenizer(0, script[pc:])
		if !tokenizer.Next() {
			break
		}
		pc += int(tokenizer.ByteIndex())
	}

	if !found {
		return script
	}
	return append(result, script[pc2:]...)
}

// opcodeCheckSig 验证次顶元素是栈顶公钥对当前脚本代码的签名。
//
// 签名和公钥的编码先按标志检查；检查失败且签名非空时，ScriptVerifyNullFail 使其成为错误。
//
// 栈变换: [... signature pubkey] -> [... bool]
func opcodeCheckSig(op *opcode, data []byte, vm *Engine) error {
	if err := vm.requireDepth(op, 2); err != nil {
		return err
	}

	pubKey, err := vm.dstack.PeekByteArray(0)
	if err != nil {
		return err
	}
	sig, err := vm.dstack.PeekByteArray(1)
	if err != nil {
		return err
	}

	scriptCode := removeOpcodeByData(vm.subScript(), sig)

	if err := vm.checkSignatureEncoding(sig); err != nil {
		return err
	}
	if err := vm.checkPubKeyEncoding(pubKey); err != nil {
		return err
	}

	valid := vm.checker.CheckSig(sig, pubKey, scriptCode, vm.sigVersion)
	if !valid && len(sig) > 0 && vm.hasFlag(ScriptVerifyNullFail) {
		str := "signature not empty on failed checksig"
		return scriptError(ErrSigNullFail, str)
	}

	if err := vm.dstack.DropN(2); err != nil {
		return err
	}
	vm.dstack.PushBool(valid)
	return nil
}

// opcodeCheckSigVerify 是 OP_CHECKSIG 之后紧跟 OP_VERIFY。
//
// 栈变换: [... signature pubkey] -> [...]
func opcodeCheckSigVerify(op *opcode, data []byte, vm *Engine) error {
	if err := opcodeCheckSig(op, data, vm); err != nil {
		return err
	}
	return abstractVerify(op, vm, ErrCheckSigVerify)
}

// opcodeCheckMultiSig 验证 m-of-n 多重签名。
//
// 签名必须与公钥按相同顺序排列。由于历史原因，它会多弹出一个元素，
// ScriptVerifyNullDummy 要求这个元素为空。
//
// 栈变换:
// [... dummy [sig ...] numsigs [pubkey ...] numpubkeys] -> [... bool]
func opcodeCheckMultiSig(op *opcode, data []byte, vm *Engine) error {
	i := int32(1)
	if err := vm.requireDepth(op, i); err != nil {
		return err
	}

	numKeys, err := vm.dstack.PeekInt(i - 1)
	if err != nil {
		return err
	}
	if numKeys < 0 || numKeys > MaxPubKeysPerMultiSig {
		str := fmt.Sprintf("number of pubkeys %d is out of range [0, %d]",
			numKeys, MaxPubKeysPerMultiSig)
		return scriptError(ErrPubKeyCount, str)
	}
	keysCount := int32(numKeys)

	vm.numOps += int(keysCount)
	if vm.numOps > MaxOpsPerScript {
		str := fmt.Sprintf("exceeded max operation limit of %d", MaxOpsPerScript)
		return scriptError(ErrOpCount, str)
	}

	i++
	ikey := i
	// ikey2 是清理栈时需要保持为空的签名之前的元素个数（公钥加上计数）。
	ikey2 := keysCount + 2
	i += keysCount
	if err := vm.requireDepth(op, i); err != nil {
		return err
	}

	numSigs, err := vm.dstack.PeekInt(i - 1)
	if err != nil {
		return err
	}
	if numSigs < 0 || numSigs > numKeys {
		str := fmt.Sprintf("number of signatures %d is out of range [0, %d]",
			numSigs, numKeys)
		return scriptError(ErrSigCount, str)
	}
	sigsCount := int32(numSigs)

	i++
	isig := i
	i += sigsCount
	if err := vm.requireDepth(op, i); err != nil {
		return err
	}

	scriptCode := vm.subScript()
	for k := int32(0); k < sigsCount; k++ {
		sig, err := vm.dstack.PeekByteArray(isig + k - 1)
		if err != nil {
			return err
		}
		scriptCode = removeOpcodeByData(scriptCode, sig)
	}

	success := true
	for success && sigsCount > 0 {
		sig, err := vm.dstack.PeekByteArray(isig - 1)
		if err != nil {
			return err
		}
		pubKey, err := vm.dstack.PeekByteArray(ikey - 1)
		if err != nil {
			return err
		}

		if err := vm.checkSignatureEncoding(sig); err != nil {
			return err
		}
		if err := vm.checkPubKeyEncoding(pubKey); err != nil {
			return err
		}

		if vm.checker.CheckSig(sig, pubKey, scriptCode, vm.sigVersion) {
			isig++
			sigsCount--
		}
		ikey++
		keysCount--

		// 剩余的签名比剩余的公钥多时不可能成功。
		if sigsCount > keysCount {
			success = false
		}
	}

	// 移除全部参数。失败时，ScriptVerifyNullFail 要求所有签名为空。
	for ; i > 1; i-- {
		if !success && vm.hasFlag(ScriptVerifyNullFail) && ikey2 == 0 {
			top, err := vm.dstack.PeekByteArray(0)
			if err != nil {
				return err
			}
			if len(top) > 0 {
				str := "not all signatures empty on failed checkmultisig"
				return scriptError(ErrSigNullFail, str)
			}
		}
		if ikey2 > 0 {
			ikey2--
		}
		if err := vm.dstack.DropN(1); err != nil {
			return err
		}
	}

	dummy, err := vm.dstack.PopByteArray()
	if err != nil {
		return err
	}
	if vm.hasFlag(ScriptVerifyNullDummy) && len(dummy) != 0 {
		str := fmt.Sprintf("multisig dummy argument has length %d instead of 0", len(dummy))
		return scriptError(ErrSigNullDummy, str)
	}

	vm.dstack.PushBool(success)
	return nil
}

// opcodeCheckMultiSigVerify 是 OP_CHECKMULTISIG 之后紧跟 OP_VERIFY。
//
// 栈变换:
// [... dummy [sig ...] numsigs [pubkey ...] numpubkeys] -> [...]
func opcodeCheckMultiSigVerify(op *opcode, data []byte, vm *Engine) error {
	if err := opcodeCheckMultiSig(op, data, vm); err != nil {
		return err
	}
	return abstractVerify(op, vm, ErrCheckMultiSigVerify)
}

// opcodeCheckDataSig 验证签名是公钥对任意消息的 SHA256 摘要的签名。
// 需要 ScriptEnableCheckDataSig 标志，否则与未定义的操作码相同。
//
// 栈变换: [... signature message pubkey] -> [... bool]
func opcodeCheckDataSig(op *opcode, data []byte, vm *Engine) error {
	if !vm.hasFlag(ScriptEnableCheckDataSig) {
		return opcodeInvalid(op, data, vm)
	}

	if err := vm.requireDepth(op, 3); err != nil {
		return err
	}

	pubKey, err := vm.dstack.PeekByteArray(0)
	if err != nil {
		return err
	}
	message, err := vm.dstack.PeekByteArray(1)
	if err != nil {
		return err
	}
	sig, err := vm.dstack.PeekByteArray(2)
	if err != nil {
		return err
	}

	if err := vm.checkDataSignatureEncoding(sig); err != nil {
		return err
	}
	if err := vm.checkPubKeyEncoding(pubKey); err != nil {
		return err
	}

	valid := false
	if len(sig) > 0 {
		valid = verifyDataSig(vm.checker, sig, pubKey, sha256.Sum256(message))
	}
	if !valid && len(sig) > 0 && vm.hasFlag(ScriptVerifyNullFail) {
		return scriptError(ErrSigNullFail, "signature not empty on failed checkdatasig")
	}

	if err := vm.dstack.DropN(3); err != nil {
		return err
	}
	vm.dstack.PushBool(valid)
	return nil
}

// opcodeCheckDataSigVerify 是 OP_CHECKDATASIG 之后紧跟 OP_VERIFY。
//
// 栈变换: [... signature message pubkey] -> [...]
func opcodeCheckDataSigVerify(op *opcode, data []byte, vm *Engine) error {
	if err := opcodeCheckDataSig(op, data, vm); err != nil {
		return err
	}
	return abstractVerify(op, vm, ErrCheckDataSigVerify)
}
