package script

import (
	"fmt"
	"strings"
)

// IsPayToPubKeyHash 返回脚本是否为标准的 pay-to-pubkey-hash 脚本。
func IsPayToPubKeyHash(script []byte) bool {
	return isPubKeyHashScript(script)
}

// IsPayToScriptHash 返回脚本是否为 pay-to-script-hash 脚本：
// OP_HASH160 <20 字节哈希> OP_EQUAL。
func IsPayToScriptHash(script []byte) bool {
	return isScriptHashScript(script)
}

// IsPushOnly 返回脚本是否只包含推送操作码（包括 OP_1NEGATE、OP_RESERVED 和 OP_1 到 OP_16）。
// 无法解析的脚本不是只推送脚本。
func IsPushOnly(script []byte) bool {
	tokenizer := MakeScriptTokenizer(0, script)
	for tokenizer.Next() {
		if tokenizer.Opcode() > OP_16 {
			return false
		}
	}
	return tokenizer.Err() == nil
}

// PushedData 返回脚本中所有推送的数据。脚本包含非推送操作码时只返回推送部分，解析失败时返回错误。
func PushedData(script []byte) ([][]byte, error) {
	var data [][]byte
	tokenizer := MakeScriptTokenizer(0, script)
	for tokenizer.Next() {
		if tokenizer.Opcode() <= OP_PUSHDATA4 {
			data = append(data, tokenizer.Data())
		}
	}
	if err := tokenizer.Err(); err != nil {
		return nil, err
	}
	return data, nil
}

// DisasmString 将脚本反汇编为单行字符串。
// 解析失败时，返回的字符串包含失败位置之前的反汇编结果并附加 "[error]"，同时返回解析错误。
func DisasmString(script []byte) (string, error) {
	var disbuf strings.Builder
	tokenizer := MakeScriptTokenizer(0, script)
	if tokenizer.Next() {
		disasmOpcode(&disbuf, tokenizer.op, tokenizer.Data(), true)
	}
	for tokenizer.Next() {
		disbuf.WriteByte(' ')
		disasmOpcode(&disbuf, tokenizer.op, tokenizer.Data(), true)
	}
	if tokenizer.Err() != nil {
		if tokenizer.ByteIndex() != 0 {
			disbuf.WriteByte(' ')
		}
		disbuf.WriteString("[error]")
	}
	return disbuf.String(), tokenizer.Err()
}

// DisasmLines 将脚本反汇编为每个操作码一行的详细格式，每行以字节偏移量开头。
func DisasmLines(script []byte) ([]string, error) {
	var lines []string
	tokenizer := MakeScriptTokenizer(0, script)
	offset := int32(0)
	for tokenizer.Next() {
		var buf strings.Builder
		buf.WriteString(fmt.Sprintf("%04x: ", offset))
		disasmOpcode(&buf, tokenizer.op, tokenizer.Data(), false)
		lines = append(lines, buf.String())
		offset = tokenizer.ByteIndex()
	}
	return lines, tokenizer.Err()
}

// PayToPubKeyHashScript 构建支付到 20 字节公钥哈希的脚本。
func PayToPubKeyHashScript(pubKeyHash []byte) ([]byte, error) {
	return NewScriptBuilder(WithScriptAllocSize(25)).
		AddOp(OP_DUP).AddOp(OP_HASH160).
		AddData(pubKeyHash).
		AddOp(OP_EQUALVERIFY).AddOp(OP_CHECKSIG).
		Script()
}

// PayToScriptHashScript 构建支付到赎回脚本哈希的脚本。
func PayToScriptHashScript(redeemScript []byte) ([]byte, error) {
	return NewScriptBuilder(WithScriptAllocSize(23)).
		AddOp(OP_HASH160).
		AddData(hash160(redeemScript)).
		AddOp(OP_EQUAL).
		Script()
}

// MultiSigScript 构建 m-of-n 多重签名脚本。
func MultiSigScript(pubKeys [][]byte, nRequired int) ([]byte, error) {
	if nRequired < 0 || nRequired > len(pubKeys) || len(pubKeys) > MaxPubKeysPerMultiSig {
		return nil, ErrScriptNotCanonical("invalid multisig parameters")
	}

	builder := NewScriptBuilder().AddInt64(int64(nRequired))
	for _, key := range pubKeys {
		builder.AddData(key)
	}
	builder.AddInt64(int64(len(pubKeys)))
	builder.AddOp(OP_CHECKMULTISIG)

	return builder.Script()
}

// Hash160 返回 RIPEMD160(SHA256(buf))。
func Hash160(buf []byte) []byte {
	return hash160(buf)
}
