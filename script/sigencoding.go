// 签名与公钥的编码规则。

package script

import (
	"fmt"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
)

// 签名哈希类型。
const (
	SigHashAll          = 0x01
	SigHashNone         = 0x02
	SigHashSingle       = 0x03
	SigHashAnyOneCanPay = 0x80
)

// isValidSignatureEncoding 检查带哈希类型字节的签名是否为严格的 DER 编码：
//
//	0x30 [total-length] 0x02 [R-length] [R] 0x02 [S-length] [S] [sighash]
//
// R 和 S 必须是非负的、没有多余前导零的大端整数。
func isValidSignatureEncoding(sig []byte) bool {
	// 最短的签名是 R 和 S 各一个字节，最长的是各 33 字节。
	if len(sig) < 9 || len(sig) > 73 {
		return false
	}

	if sig[0] != 0x30 {
		return false
	}

	// 总长度不包括 0x30、长度字节本身和末尾的哈希类型字节。
	if int(sig[1]) != len(sig)-3 {
		return false
	}

	lenR := int(sig[3])
	if 5+lenR >= len(sig) {
		return false
	}

	lenS := int(sig[5+lenR])
	if lenR+lenS+7 != len(sig) {
		return false
	}

	if sig[2] != 0x02 {
		return false
	}
	if lenR == 0 {
		return false
	}
	if sig[4]&0x80 != 0 {
		return false
	}
	if lenR > 1 && sig[4] == 0x00 && sig[5]&0x80 == 0 {
		return false
	}

	if sig[lenR+4] != 0x02 {
		return false
	}
	if lenS == 0 {
		return false
	}
	if sig[lenR+6]&0x80 != 0 {
		return false
	}
	if lenS > 1 && sig[lenR+6] == 0x00 && sig[lenR+7]&0x80 == 0 {
		return false
	}

	return true
}

// isLowS 返回带哈希类型字节的 DER 签名的 S 值是否不大于曲线阶的一半。调用前签名必须已通过编码检查。
func isLowS(sig []byte) bool {
	lenR := int(sig[3])
	lenS := int(sig[5+lenR])
	sBytes := sig[6+lenR : 6+lenR+lenS]
	for len(sBytes) > 0 && sBytes[0] == 0x00 {
		sBytes = sBytes[1:]
	}
	if len(sBytes) > 32 {
		return false
	}

	var s secp256k1.ModNScalar
	if overflow := s.SetByteSlice(sBytes); overflow {
		return false
	}
	return !s.IsOverHalfOrder()
}

// isDefinedHashType 返回签名末尾的哈希类型（去掉 ANYONECANPAY 位后）是否为 ALL、NONE 或 SINGLE。
func isDefinedHashType(sig []byte) bool {
	if len(sig) == 0 {
		return false
	}
	hashType := sig[len(sig)-1] &^ SigHashAnyOneCanPay
	return hashType >= SigHashAll && hashType <= SigHashSingle
}

// checkSignatureEncoding 根据标志检查交易签名的编码。空签名总是允许的，它可以用来让检查失败。
func (vm *Engine) checkSignatureEncoding(sig []byte) error {
	if len(sig) == 0 {
		return nil
	}

	strict := ScriptVerifyDERSignatures | ScriptVerifyLowS | ScriptVerifyStrictEncoding
	if vm.flags&strict != 0 && !isValidSignatureEncoding(sig) {
		str := fmt.Sprintf("signature %x is not canonically DER encoded", sig)
		return scriptError(ErrSigDER, str)
	}

	if vm.hasFlag(ScriptVerifyLowS) && !isLowS(sig) {
		str := fmt.Sprintf("signature %x has a high S value", sig)
		return scriptError(ErrSigHighS, str)
	}

	if vm.hasFlag(ScriptVerifyStrictEncoding) && !isDefinedHashType(sig) {
		str := fmt.Sprintf("signature %x has an undefined hash type", sig)
		return scriptError(ErrSigHashType, str)
	}

	return nil
}

// checkDataSignatureEncoding 检查 OP_CHECKDATASIG 使用的签名。这类签名没有哈希类型字节。
func (vm *Engine) checkDataSignatureEncoding(sig []byte) error {
	if len(sig) == 0 {
		return nil
	}

	// 补一个占位的哈希类型字节，复用交易签名的 DER 检查。
	withHashType := make([]byte, len(sig)+1)
	copy(withHashType, sig)
	withHashType[len(sig)] = SigHashAll

	strict := ScriptVerifyDERSignatures | ScriptVerifyLowS | ScriptVerifyStrictEncoding
	if vm.flags&strict != 0 && !isValidSignatureEncoding(withHashType) {
		str := fmt.Sprintf("data signature %x is not canonically DER encoded", sig)
		return scriptError(ErrSigDER, str)
	}

	if vm.hasFlag(ScriptVerifyLowS) && !isLowS(withHashType) {
		str := fmt.Sprintf("data signature %x has a high S value", sig)
		return scriptError(ErrSigHighS, str)
	}

	return nil
}

// isCompressedOrUncompressedPubKey 返回公钥是否为 33 字节压缩格式或 65 字节非压缩格式。
func isCompressedOrUncompressedPubKey(pubKey []byte) bool {
	if len(pubKey) < 33 {
		return false
	}
	switch pubKey[0] {
	case 0x04:
		return len(pubKey) == 65
	case 0x02, 0x03:
		return len(pubKey) == 33
	}
	return false
}

// checkPubKeyEncoding 在 ScriptVerifyStrictEncoding 下检查公钥格式。
func (vm *Engine) checkPubKeyEncoding(pubKey []byte) error {
	if vm.hasFlag(ScriptVerifyStrictEncoding) && !isCompressedOrUncompressedPubKey(pubKey) {
		str := fmt.Sprintf("public key %x is neither compressed nor uncompressed", pubKey)
		return scriptError(ErrPubKeyType, str)
	}
	return nil
}
