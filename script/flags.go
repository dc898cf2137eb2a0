// 定义脚本验证标志，以及策略层使用的预设组合。

package script

import (
	"fmt"
	"sort"
	"strings"
)

// ScriptFlags 是控制脚本执行行为的标志位掩码。每一位相互独立。
type ScriptFlags uint32

const (
	// ScriptVerifyP2SH 在 VerifyScript 中评估 pay-to-script-hash 的赎回脚本。
	ScriptVerifyP2SH ScriptFlags = 1 << iota

	// ScriptVerifyStrictEncoding 要求签名哈希类型已定义，公钥为压缩或非压缩格式。
	ScriptVerifyStrictEncoding

	// ScriptVerifyDERSignatures 要求签名为严格的 DER 编码。
	ScriptVerifyDERSignatures

	// ScriptVerifyLowS 要求签名的 S 值不大于曲线阶的一半。
	ScriptVerifyLowS

	// ScriptVerifyNullDummy 要求 CHECKMULTISIG 的额外参数为空。
	ScriptVerifyNullDummy

	// ScriptVerifySigPushOnly 要求签名脚本只包含推送操作码。
	ScriptVerifySigPushOnly

	// ScriptVerifyMinimalData 要求数据推送使用最小形式，数字使用最小编码。
	ScriptVerifyMinimalData

	// ScriptDiscourageUpgradableNops 使保留给软分叉的 NOP 操作码执行时失败。
	ScriptDiscourageUpgradableNops

	// ScriptVerifyCleanStack 要求 VerifyScript 结束时栈上恰好剩余一个元素。必须与 P2SH 一起使用。
	ScriptVerifyCleanStack

	// ScriptVerifyCheckLockTimeVerify 将 OP_NOP2 解释为 OP_CHECKLOCKTIMEVERIFY。
	ScriptVerifyCheckLockTimeVerify

	// ScriptVerifyCheckSequenceVerify 将 OP_NOP3 解释为 OP_CHECKSEQUENCEVERIFY。
	ScriptVerifyCheckSequenceVerify

	// ScriptVerifyNullFail 要求签名检查失败时签名为空。
	ScriptVerifyNullFail

	// ScriptEnableDIP0020Opcodes 启用字节操作与算术操作码：
	// CAT、SPLIT、AND、OR、XOR、DIV、MOD、NUM2BIN、BIN2NUM。
	ScriptEnableDIP0020Opcodes

	// ScriptEnableCheckDataSig 启用 OP_CHECKDATASIG 和 OP_CHECKDATASIGVERIFY。
	ScriptEnableCheckDataSig
)

const (
	// ScriptVerifyNone 不启用任何标志。
	ScriptVerifyNone ScriptFlags = 0

	// MandatoryVerifyFlags 是共识强制的标志。不满足这些标志的脚本是无效的。
	MandatoryVerifyFlags = ScriptVerifyP2SH

	// StandardVerifyFlags 是中继策略使用的标志。
	StandardVerifyFlags = MandatoryVerifyFlags |
		ScriptVerifyDERSignatures |
		ScriptVerifyStrictEncoding |
		ScriptVerifyMinimalData |
		ScriptVerifyNullDummy |
		ScriptDiscourageUpgradableNops |
		ScriptVerifyCleanStack |
		ScriptVerifyNullFail |
		ScriptVerifyCheckLockTimeVerify |
		ScriptVerifyCheckSequenceVerify |
		ScriptVerifyLowS
)

// scriptFlagNames 是每个标志位在测试向量和配置文件中使用的名称。
var scriptFlagNames = map[ScriptFlags]string{
	ScriptVerifyP2SH:                "P2SH",
	ScriptVerifyStrictEncoding:      "STRICTENC",
	ScriptVerifyDERSignatures:       "DERSIG",
	ScriptVerifyLowS:                "LOW_S",
	ScriptVerifyNullDummy:           "NULLDUMMY",
	ScriptVerifySigPushOnly:         "SIGPUSHONLY",
	ScriptVerifyMinimalData:         "MINIMALDATA",
	ScriptDiscourageUpgradableNops:  "DISCOURAGE_UPGRADABLE_NOPS",
	ScriptVerifyCleanStack:          "CLEANSTACK",
	ScriptVerifyCheckLockTimeVerify: "CHECKLOCKTIMEVERIFY",
	ScriptVerifyCheckSequenceVerify: "CHECKSEQUENCEVERIFY",
	ScriptVerifyNullFail:            "NULLFAIL",
	ScriptEnableDIP0020Opcodes:      "DIP0020_OPCODES",
	ScriptEnableCheckDataSig:        "CHECKDATASIG",
}

// flagPresets 是可以在标志字符串中直接引用的预设组合。
var flagPresets = map[string]ScriptFlags{
	"NONE":      ScriptVerifyNone,
	"MANDATORY": MandatoryVerifyFlags,
	"STANDARD":  StandardVerifyFlags,
}

// HasFlag 返回是否设置了给定的标志。
func (f ScriptFlags) HasFlag(flag ScriptFlags) bool {
	return f&flag == flag
}

// String 以逗号分隔的名称列表返回标志，未知的位以十六进制表示。
func (f ScriptFlags) String() string {
	if f == 0 {
		return "NONE"
	}

	var names []string
	rest := f
	for bit := ScriptFlags(1); bit != 0; bit <<= 1 {
		if f&bit == 0 {
			continue
		}
		if name, ok := scriptFlagNames[bit]; ok {
			names = append(names, name)
			rest &^= bit
		}
	}
	if rest != 0 {
		names = append(names, fmt.Sprintf("0x%x", uint32(rest)))
	}
	return strings.Join(names, ",")
}

// ParseScriptFlags 解析逗号分隔的标志名称列表。
// 除单独的标志名外，还接受预设名称 NONE、MANDATORY 和 STANDARD。空字符串表示不启用任何标志。
//
// 参数:
//   - s: 标志字符串，例如 "P2SH,STRICTENC" 或 "STANDARD,DIP0020_OPCODES"
//
// 返回值:
//   - ScriptFlags: 解析得到的标志
//   - error: 如果包含未知名称，返回错误
func ParseScriptFlags(s string) (ScriptFlags, error) {
	var flags ScriptFlags
	for _, word := range strings.Split(s, ",") {
		word = strings.ToUpper(strings.TrimSpace(word))
		if word == "" {
			continue
		}
		if preset, ok := flagPresets[word]; ok {
			flags |= preset
			continue
		}
		found := false
		for bit, name := range scriptFlagNames {
			if name == word {
				flags |= bit
				found = true
				break
			}
		}
		if !found {
			return 0, fmt.Errorf("unknown script verification flag %q", word)
		}
	}
	return flags, nil
}

// ScriptFlagNames 返回所有已知标志名称，按字母顺序排列。
func ScriptFlagNames() []string {
	names := make([]string, 0, len(scriptFlagNames))
	for _, name := range scriptFlagNames {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
