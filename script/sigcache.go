// 签名缓存，避免重复验证相同的签名。

package script

import (
	"bytes"
	"encoding/binary"
	"sync"

	"github.com/minio/sha256-simd"
)

// HashSize 是缓存键的字节数。
const HashSize = 32

// Hash 是 SHA256 摘要。
type Hash [HashSize]byte

// sigCacheEntry 是 SigCache 中的一个条目。命中时还会比较签名和公钥，确保完全匹配。
type sigCacheEntry struct {
	sig    []byte
	pubKey []byte
}

// SigCache 缓存已经验证通过的签名，满时随机驱逐条目。只有有效的签名才会被加入缓存。
//
// 驱逐依赖 map 迭代的随机起点。攻击者要控制驱逐哪个条目，需要对键的哈希函数进行原像攻击。
type SigCache struct {
	sync.RWMutex
	validSigs  map[Hash]sigCacheEntry
	maxEntries uint
}

// NewSigCache 创建最多容纳 maxEntries 个条目的签名缓存。maxEntries 为 0 时缓存不保存任何条目。
func NewSigCache(maxEntries uint) *SigCache {
	return &SigCache{
		validSigs:  make(map[Hash]sigCacheEntry, maxEntries),
		maxEntries: maxEntries,
	}
}

// Exists 返回键 sigHash 下是否缓存了公钥 pubKey 的签名 sig。并发安全。
func (s *SigCache) Exists(sigHash Hash, sig []byte, pubKey []byte) bool {
	s.RLock()
	entry, ok := s.validSigs[sigHash]
	s.RUnlock()

	return ok && bytes.Equal(entry.pubKey, pubKey) && bytes.Equal(entry.sig, sig)
}

// Add 在键 sigHash 下缓存公钥 pubKey 的有效签名 sig。缓存已满时随机驱逐一个条目。并发安全。
func (s *SigCache) Add(sigHash Hash, sig []byte, pubKey []byte) {
	s.Lock()
	defer s.Unlock()

	if s.maxEntries == 0 {
		return
	}

	if uint(len(s.validSigs)+1) > s.maxEntries {
		for sigEntry := range s.validSigs {
			delete(s.validSigs, sigEntry)
			break
		}
	}
	s.validSigs[sigHash] = sigCacheEntry{
		sig:    append([]byte(nil), sig...),
		pubKey: append([]byte(nil), pubKey...),
	}
}

// Len 返回缓存中的条目数。
func (s *SigCache) Len() int {
	s.RLock()
	defer s.RUnlock()
	return len(s.validSigs)
}

// CachingChecker 包装一个签名检查器，用 SigCache 记住验证通过的签名。
//
// context 标识被包装的检查器所验证的签名数据（例如交易摘要）；不同上下文的签名不会互相命中。
// 锁定时间检查直接转发给被包装的检查器。
type CachingChecker struct {
	checker SignatureChecker
	cache   *SigCache
	context Hash
}

// NewCachingChecker 创建带缓存的签名检查器。
//
// 参数:
//   - checker: 被包装的检查器
//   - cache: 共享的签名缓存
//   - context: 被签名数据的标识
//
// 返回值:
//   - *CachingChecker: 带缓存的检查器
func NewCachingChecker(checker SignatureChecker, cache *SigCache, context Hash) *CachingChecker {
	return &CachingChecker{checker: checker, cache: cache, context: context}
}

// sigKey 计算交易签名的缓存键。
func (c *CachingChecker) sigKey(scriptCode []byte, sigVersion SigVersion) Hash {
	buf := make([]byte, 0, HashSize+len(scriptCode)+9)
	buf = append(buf, 's')
	buf = append(buf, c.context[:]...)
	buf = binary.LittleEndian.AppendUint64(buf, uint64(sigVersion))
	buf = append(buf, scriptCode...)
	return sha256.Sum256(buf)
}

// CheckSig 先查询缓存，未命中时调用被包装的检查器，验证通过后加入缓存。
func (c *CachingChecker) CheckSig(sig, pubKey, scriptCode []byte, sigVersion SigVersion) bool {
	key := c.sigKey(scriptCode, sigVersion)
	if c.cache.Exists(key, sig, pubKey) {
		return true
	}

	if !c.checker.CheckSig(sig, pubKey, scriptCode, sigVersion) {
		return false
	}
	c.cache.Add(key, sig, pubKey)
	return true
}

// VerifyDataSig 先查询缓存，未命中时调用被包装检查器的数据签名能力。
func (c *CachingChecker) VerifyDataSig(sig, pubKey []byte, hash [32]byte) bool {
	buf := make([]byte, 0, 1+HashSize)
	buf = append(buf, 'd')
	buf = append(buf, hash[:]...)
	key := Hash(sha256.Sum256(buf))
	if c.cache.Exists(key, sig, pubKey) {
		return true
	}

	if !verifyDataSig(c.checker, sig, pubKey, hash) {
		return false
	}
	c.cache.Add(key, sig, pubKey)
	return true
}

// CheckLockTime 转发给被包装的检查器。
func (c *CachingChecker) CheckLockTime(lockTime int64) bool {
	return checkLockTime(c.checker, lockTime)
}

// CheckSequence 转发给被包装的检查器。
func (c *CachingChecker) CheckSequence(sequence int64) bool {
	return checkSequence(c.checker, sequence)
}
