// 签名检查器接口。引擎只负责签名与公钥的编码规则，密码学验证交给外部实现。

package script

// SignatureChecker 验证交易签名。实现必须是确定性的，并且可以被多个引擎并发调用。
type SignatureChecker interface {
	// CheckSig 验证 sig（末尾带哈希类型字节）是否是 pubKey 对 scriptCode 所在上下文的有效签名。
	CheckSig(sig, pubKey, scriptCode []byte, sigVersion SigVersion) bool
}

// LockTimeChecker 是签名检查器的可选能力，用于 OP_CHECKLOCKTIMEVERIFY 和 OP_CHECKSEQUENCEVERIFY。
// 检查器没有实现该接口时，锁定时间检查总是失败。
type LockTimeChecker interface {
	CheckLockTime(lockTime int64) bool
	CheckSequence(sequence int64) bool
}

// DataSignatureChecker 是签名检查器的可选能力，用于 OP_CHECKDATASIG。
// hash 是被签名消息的 SHA256 摘要；sig 是不带哈希类型字节的 DER 签名。
type DataSignatureChecker interface {
	VerifyDataSig(sig, pubKey []byte, hash [32]byte) bool
}

// BaseSignatureChecker 是一个所有检查都失败的检查器。适用于不涉及签名的脚本。
type BaseSignatureChecker struct{}

// CheckSig 总是返回 false。
func (BaseSignatureChecker) CheckSig(sig, pubKey, scriptCode []byte, sigVersion SigVersion) bool {
	return false
}

// CheckLockTime 总是返回 false。
func (BaseSignatureChecker) CheckLockTime(lockTime int64) bool {
	return false
}

// CheckSequence 总是返回 false。
func (BaseSignatureChecker) CheckSequence(sequence int64) bool {
	return false
}

// VerifyDataSig 总是返回 false。
func (BaseSignatureChecker) VerifyDataSig(sig, pubKey []byte, hash [32]byte) bool {
	return false
}

// checkLockTime 使用检查器的 LockTimeChecker 能力验证锁定时间。
func checkLockTime(c SignatureChecker, lockTime int64) bool {
	ltc, ok := c.(LockTimeChecker)
	return ok && ltc.CheckLockTime(lockTime)
}

// checkSequence 使用检查器的 LockTimeChecker 能力验证相对锁定时间。
func checkSequence(c SignatureChecker, sequence int64) bool {
	ltc, ok := c.(LockTimeChecker)
	return ok && ltc.CheckSequence(sequence)
}

// verifyDataSig 使用检查器的 DataSignatureChecker 能力验证数据签名。
func verifyDataSig(c SignatureChecker, sig, pubKey []byte, hash [32]byte) bool {
	dsc, ok := c.(DataSignatureChecker)
	return ok && dsc.VerifyDataSig(sig, pubKey, hash)
}
