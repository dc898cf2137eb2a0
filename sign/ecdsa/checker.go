// Package ecdsa 提供基于 secp256k1 的签名检查器和签名工具。
package ecdsa

import (
	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	dcrecdsa "github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"
	logging "github.com/dep2p/log"
	"github.com/minio/sha256-simd"

	"github.com/tomthoros/dash/script"
)

var logger = logging.Logger("ecdsa")

const (
	// LockTimeThreshold 以下的锁定时间是区块高度，以上是 Unix 时间戳。
	LockTimeThreshold = 500000000

	// SequenceFinal 是最终序列号，此时锁定时间不生效。
	SequenceFinal = 0xffffffff

	sequenceLockTimeDisableFlag = 1 << 31
	sequenceLockTimeTypeFlag    = 1 << 22
	sequenceLockTimeMask        = 0x0000ffff
)

// Checker 是 secp256k1 签名检查器。它实现 script.SignatureChecker、
// script.LockTimeChecker 和 script.DataSignatureChecker。
//
// 签名摘要是 sha256(sha256(message || scriptCode || hashType))，
// 其中 message 是调用方提供的交易上下文。
type Checker struct {
	message  []byte // 被签名的上下文
	lockTime int64  // 交易锁定时间
	sequence int64  // 输入序列号
	version  int32  // 交易版本
}

// CheckerOption 配置 Checker
type CheckerOption func(*Checker)

// WithLockTime 设置交易锁定时间
func WithLockTime(lockTime int64) CheckerOption {
	return func(c *Checker) {
		c.lockTime = lockTime
	}
}

// WithSequence 设置输入序列号
func WithSequence(sequence int64) CheckerOption {
	return func(c *Checker) {
		c.sequence = sequence
	}
}

// WithVersion 设置交易版本。相对锁定时间只对版本 2 及以上生效。
func WithVersion(version int32) CheckerOption {
	return func(c *Checker) {
		c.version = version
	}
}

// NewChecker 创建签名检查器
//
// 参数:
//   - message: 签名覆盖的交易上下文
//   - opts: 锁定时间等可选配置
//
// 返回值:
//   - *Checker: 签名检查器；默认序列号为 SequenceFinal，版本为 1
func NewChecker(message []byte, opts ...CheckerOption) *Checker {
	c := &Checker{
		message:  append([]byte(nil), message...),
		sequence: SequenceFinal,
		version:  1,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Message 返回检查器的签名上下文
func (c *Checker) Message() []byte {
	return c.message
}

// SignatureHash 计算交易签名的摘要
//
// 参数:
//   - message: 交易上下文
//   - scriptCode: 执行 OP_CHECKSIG 时的脚本代码
//   - hashType: 签名的哈希类型字节
//
// 返回值:
//   - [32]byte: 双重 SHA256 摘要
func SignatureHash(message, scriptCode []byte, hashType byte) [32]byte {
	buf := make([]byte, 0, len(message)+len(scriptCode)+1)
	buf = append(buf, message...)
	buf = append(buf, scriptCode...)
	buf = append(buf, hashType)
	first := sha256.Sum256(buf)
	return sha256.Sum256(first[:])
}

// CheckSig 验证带哈希类型字节的交易签名
func (c *Checker) CheckSig(sig, pubKey, scriptCode []byte, sigVersion script.SigVersion) bool {
	if len(sig) == 0 {
		return false
	}
	hashType := sig[len(sig)-1]
	hash := SignatureHash(c.message, scriptCode, hashType)
	return verify(sig[:len(sig)-1], pubKey, hash[:])
}

// VerifyDataSig 验证对任意消息摘要的签名
func (c *Checker) VerifyDataSig(sig, pubKey []byte, hash [32]byte) bool {
	return verify(sig, pubKey, hash[:])
}

// CheckLockTime 检查交易的锁定时间是否满足脚本要求的 lockTime
//
// 处理逻辑:
//  1. 两者必须同为区块高度或同为时间戳
//  2. 脚本要求的值不能超过交易的锁定时间
//  3. 输入序列号为最终值时锁定时间不生效，检查失败
func (c *Checker) CheckLockTime(lockTime int64) bool {
	if (c.lockTime < LockTimeThreshold) != (lockTime < LockTimeThreshold) {
		return false
	}
	if lockTime > c.lockTime {
		return false
	}
	return c.sequence != SequenceFinal
}

// CheckSequence 检查输入的相对锁定时间是否满足脚本要求的 sequence
func (c *Checker) CheckSequence(sequence int64) bool {
	if c.version < 2 {
		return false
	}
	if c.sequence&sequenceLockTimeDisableFlag != 0 {
		return false
	}

	const mask = sequenceLockTimeTypeFlag | sequenceLockTimeMask
	txMasked := c.sequence & mask
	reqMasked := sequence & mask

	if (txMasked < sequenceLockTimeTypeFlag) != (reqMasked < sequenceLockTimeTypeFlag) {
		return false
	}
	return reqMasked <= txMasked
}

// verify 验证 DER 签名。公钥或签名无法解析时返回 false。
func verify(derSig, pubKey, hash []byte) bool {
	pk, err := secp256k1.ParsePubKey(pubKey)
	if err != nil {
		logger.Debugf("解析公钥失败: %v", err)
		return false
	}
	sig, err := dcrecdsa.ParseDERSignature(derSig)
	if err != nil {
		logger.Debugf("解析签名失败: %v", err)
		return false
	}
	return sig.Verify(hash, pk)
}
