package ecdsa

import (
	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	dcrecdsa "github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"
	"github.com/minio/sha256-simd"
	"github.com/pkg/errors"
)

// GenerateKey 生成新的 secp256k1 私钥
func GenerateKey() (*secp256k1.PrivateKey, error) {
	priv, err := secp256k1.GeneratePrivateKey()
	if err != nil {
		logger.Errorf("生成私钥失败: %v", err)
		return nil, errors.Wrap(err, "generate private key")
	}
	return priv, nil
}

// PrivateKeyFromBytes 从 32 字节的标量构造私钥
func PrivateKeyFromBytes(b []byte) (*secp256k1.PrivateKey, error) {
	if len(b) != secp256k1.PrivKeyBytesLen {
		return nil, errors.Errorf("private key must be %d bytes, got %d", secp256k1.PrivKeyBytesLen, len(b))
	}
	return secp256k1.PrivKeyFromBytes(b), nil
}

// PubKeyBytes 返回私钥对应的压缩公钥
func PubKeyBytes(priv *secp256k1.PrivateKey) []byte {
	return priv.PubKey().SerializeCompressed()
}

// Sign 为交易上下文生成带哈希类型字节的签名，可直接放入签名脚本
//
// 参数:
//   - priv: 私钥
//   - message: 交易上下文，需与验证时 NewChecker 的参数一致
//   - scriptCode: 验证时 OP_CHECKSIG 看到的脚本代码
//   - hashType: 哈希类型
//
// 返回值:
//   - []byte: 低 S 的 DER 签名加哈希类型字节
func Sign(priv *secp256k1.PrivateKey, message, scriptCode []byte, hashType byte) []byte {
	hash := SignatureHash(message, scriptCode, hashType)
	sig := dcrecdsa.Sign(priv, hash[:])
	return append(sig.Serialize(), hashType)
}

// SignData 为 OP_CHECKDATASIG 生成对 data 的签名（不带哈希类型字节）
func SignData(priv *secp256k1.PrivateKey, data []byte) []byte {
	hash := sha256.Sum256(data)
	return dcrecdsa.Sign(priv, hash[:]).Serialize()
}
