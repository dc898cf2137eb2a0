package script

// isPubKeyHashScript 返回脚本是否为 pay-to-pubkey-hash 脚本：
// OP_DUP OP_HASH160 <20 字节哈希> OP_EQUALVERIFY OP_CHECKSIG。
func isPubKeyHashScript(script []byte) bool {
	return extractPubKeyHash(script) != nil
}

// extractPubKeyHash 从 pay-to-pubkey-hash 脚本中取出公钥哈希。脚本不是这种形式时返回 nil。
func extractPubKeyHash(script []byte) []byte {
	if len(script) == 25 &&
		script[0] == OP_DUP &&
		script[1] == OP_HASH160 &&
		script[2] == OP_DATA_20 &&
		script[23] == OP_EQUALVERIFY &&
		script[24] == OP_CHECKSIG {

		return script[3:23]
	}

	return nil
}

// isScriptHashScript 返回脚本是否为 pay-to-script-hash 脚本。
// 判定只看字节形式，与 OP_DATA_20 是否为最小推送无关。
func isScriptHashScript(script []byte) bool {
	return extractScriptHash(script) != nil
}

// extractScriptHash 从 pay-to-script-hash 脚本中取出脚本哈希。脚本不是这种形式时返回 nil。
func extractScriptHash(script []byte) []byte {
	if len(script) == 23 &&
		script[0] == OP_HASH160 &&
		script[1] == OP_DATA_20 &&
		script[22] == OP_EQUAL {

		return script[2:22]
	}

	return nil
}
