// 定义脚本解释器的错误分类。
//
// 错误种类是共识的一部分：一致性测试和其他实现都依赖于在给定故障下选择的确切错误代码，
// 因此这里的枚举是封闭的，新增代码只能追加在末尾。

package script

import (
	"errors"
	"fmt"
)

// ErrorCode 标识一种脚本验证失败。
type ErrorCode int

// 这些常量是脚本执行期间可能出现的所有错误种类。
const (
	// ErrOK 表示没有错误。它不会出现在 Error 值中，仅用于 Evaluate 的成功返回。
	ErrOK ErrorCode = iota

	// ErrUnknown 是无法归入其他类别的失败。OP_SPLIT 的位置参数无法解码时也使用它。
	ErrUnknown

	// ErrEvalFalse 表示脚本执行完成，但栈为空或栈顶元素为 false。
	ErrEvalFalse

	// ErrOpReturn 表示执行了 OP_RETURN。
	ErrOpReturn

	// ErrScriptSize 表示脚本超过 MaxScriptSize。
	ErrScriptSize

	// ErrPushSize 表示推送或生成的元素超过 MaxScriptElementSize。
	ErrPushSize

	// ErrOpCount 表示非推送操作码数量超过 MaxOpsPerScript。
	ErrOpCount

	// ErrStackSize 表示主栈与备用栈的元素总数超过 MaxStackSize。
	ErrStackSize

	// ErrSigCount 表示 CHECKMULTISIG 的签名数量为负或大于公钥数量。
	ErrSigCount

	// ErrPubKeyCount 表示 CHECKMULTISIG 的公钥数量为负或超过上限。
	ErrPubKeyCount

	// ErrInvalidOperandSize 表示按位操作的两个操作数长度不同。
	ErrInvalidOperandSize

	// ErrInvalidNumberRange 表示 OP_BIN2NUM 的结果不是有效范围内的数字。
	ErrInvalidNumberRange

	// ErrImpossibleEncoding 表示 OP_NUM2BIN 无法把数字放入请求的字节数。
	ErrImpossibleEncoding

	// ErrInvalidSplitRange 表示 OP_SPLIT 的位置为负或大于被拆分值的长度。
	ErrInvalidSplitRange

	// ErrInvalidNumber 表示被解释为数字的栈元素过长或不是最小编码。
	ErrInvalidNumber

	// ErrVerify 表示 OP_VERIFY 失败。
	ErrVerify

	// ErrEqualVerify 表示 OP_EQUALVERIFY 失败。
	ErrEqualVerify

	// ErrCheckMultiSigVerify 表示 OP_CHECKMULTISIGVERIFY 失败。
	ErrCheckMultiSigVerify

	// ErrCheckSigVerify 表示 OP_CHECKSIGVERIFY 失败。
	ErrCheckSigVerify

	// ErrCheckDataSigVerify 表示 OP_CHECKDATASIGVERIFY 失败。
	ErrCheckDataSigVerify

	// ErrNumEqualVerify 表示 OP_NUMEQUALVERIFY 失败。
	ErrNumEqualVerify

	// ErrBadOpcode 表示操作码无法解析（推送数据被截断）或是未知/保留的操作码。
	ErrBadOpcode

	// ErrDisabledOpcode 表示使用了被禁用的操作码。
	ErrDisabledOpcode

	// ErrInvalidStackOperation 表示主栈上的操作数不足。
	ErrInvalidStackOperation

	// ErrInvalidAltStackOperation 表示备用栈上的操作数不足。
	ErrInvalidAltStackOperation

	// ErrUnbalancedConditional 表示 IF/ELSE/ENDIF 嵌套不平衡。
	ErrUnbalancedConditional

	// ErrNegativeLockTime 表示锁定时间参数为负。
	ErrNegativeLockTime

	// ErrUnsatisfiedLockTime 表示锁定时间要求未满足。
	ErrUnsatisfiedLockTime

	// ErrSigHashType 表示签名的哈希类型未定义。
	ErrSigHashType

	// ErrSigDER 表示签名不是严格的 DER 编码。
	ErrSigDER

	// ErrMinimalData 表示数据推送没有使用最小的推送形式。
	ErrMinimalData

	// ErrSigPushOnly 表示签名脚本包含非推送操作码。
	ErrSigPushOnly

	// ErrSigHighS 表示签名的 S 值大于曲线阶的一半。
	ErrSigHighS

	// ErrSigNullDummy 表示 CHECKMULTISIG 的额外参数不为空。
	ErrSigNullDummy

	// ErrPubKeyType 表示公钥既不是压缩格式也不是非压缩格式。
	ErrPubKeyType

	// ErrCleanStack 表示执行后栈上留有多余元素。
	ErrCleanStack

	// ErrSigNullFail 表示签名检查失败时签名不为空。
	ErrSigNullFail

	// ErrDiscourageUpgradableNops 表示执行了保留给软分叉升级的 NOP。
	ErrDiscourageUpgradableNops

	// ErrDivByZero 表示 OP_DIV 的除数为零。
	ErrDivByZero

	// ErrModByZero 表示 OP_MOD 的除数为零。
	ErrModByZero

	// ErrInvalidFlags 表示验证标志的组合无效（例如 CLEANSTACK 未搭配 P2SH）。
	ErrInvalidFlags

	// numErrorCodes 是错误代码的数量，必须保持在最后。
	numErrorCodes
)

// errorCodeStrings 是错误代码到 Go 风格名称的映射。
var errorCodeStrings = map[ErrorCode]string{
	ErrOK:                       "ErrOK",
	ErrUnknown:                  "ErrUnknown",
	ErrEvalFalse:                "ErrEvalFalse",
	ErrOpReturn:                 "ErrOpReturn",
	ErrScriptSize:               "ErrScriptSize",
	ErrPushSize:                 "ErrPushSize",
	ErrOpCount:                  "ErrOpCount",
	ErrStackSize:                "ErrStackSize",
	ErrSigCount:                 "ErrSigCount",
	ErrPubKeyCount:              "ErrPubKeyCount",
	ErrInvalidOperandSize:       "ErrInvalidOperandSize",
	ErrInvalidNumberRange:       "ErrInvalidNumberRange",
	ErrImpossibleEncoding:       "ErrImpossibleEncoding",
	ErrInvalidSplitRange:        "ErrInvalidSplitRange",
	ErrInvalidNumber:            "ErrInvalidNumber",
	ErrVerify:                   "ErrVerify",
	ErrEqualVerify:              "ErrEqualVerify",
	ErrCheckMultiSigVerify:      "ErrCheckMultiSigVerify",
	ErrCheckSigVerify:           "ErrCheckSigVerify",
	ErrCheckDataSigVerify:       "ErrCheckDataSigVerify",
	ErrNumEqualVerify:           "ErrNumEqualVerify",
	ErrBadOpcode:                "ErrBadOpcode",
	ErrDisabledOpcode:           "ErrDisabledOpcode",
	ErrInvalidStackOperation:    "ErrInvalidStackOperation",
	ErrInvalidAltStackOperation: "ErrInvalidAltStackOperation",
	ErrUnbalancedConditional:    "ErrUnbalancedConditional",
	ErrNegativeLockTime:         "ErrNegativeLockTime",
	ErrUnsatisfiedLockTime:      "ErrUnsatisfiedLockTime",
	ErrSigHashType:              "ErrSigHashType",
	ErrSigDER:                   "ErrSigDER",
	ErrMinimalData:              "ErrMinimalData",
	ErrSigPushOnly:              "ErrSigPushOnly",
	ErrSigHighS:                 "ErrSigHighS",
	ErrSigNullDummy:             "ErrSigNullDummy",
	ErrPubKeyType:               "ErrPubKeyType",
	ErrCleanStack:               "ErrCleanStack",
	ErrSigNullFail:              "ErrSigNullFail",
	ErrDiscourageUpgradableNops: "ErrDiscourageUpgradableNops",
	ErrDivByZero:                "ErrDivByZero",
	ErrModByZero:                "ErrModByZero",
	ErrInvalidFlags:             "ErrInvalidFlags",
}

// errorCodeTags 是错误代码到测试向量中使用的标签（例如 "PUSH_SIZE"）的映射。
var errorCodeTags = map[ErrorCode]string{
	ErrOK:                       "OK",
	ErrUnknown:                  "UNKNOWN_ERROR",
	ErrEvalFalse:                "EVAL_FALSE",
	ErrOpReturn:                 "OP_RETURN",
	ErrScriptSize:               "SCRIPT_SIZE",
	ErrPushSize:                 "PUSH_SIZE",
	ErrOpCount:                  "OP_COUNT",
	ErrStackSize:                "STACK_SIZE",
	ErrSigCount:                 "SIG_COUNT",
	ErrPubKeyCount:              "PUBKEY_COUNT",
	ErrInvalidOperandSize:       "INVALID_OPERAND_SIZE",
	ErrInvalidNumberRange:       "INVALID_NUMBER_RANGE",
	ErrImpossibleEncoding:       "IMPOSSIBLE_ENCODING",
	ErrInvalidSplitRange:        "SPLIT_RANGE",
	ErrInvalidNumber:            "INVALID_NUMBER",
	ErrVerify:                   "VERIFY",
	ErrEqualVerify:              "EQUALVERIFY",
	ErrCheckMultiSigVerify:      "CHECKMULTISIGVERIFY",
	ErrCheckSigVerify:           "CHECKSIGVERIFY",
	ErrCheckDataSigVerify:       "CHECKDATASIGVERIFY",
	ErrNumEqualVerify:           "NUMEQUALVERIFY",
	ErrBadOpcode:                "BAD_OPCODE",
	ErrDisabledOpcode:           "DISABLED_OPCODE",
	ErrInvalidStackOperation:    "INVALID_STACK_OPERATION",
	ErrInvalidAltStackOperation: "INVALID_ALTSTACK_OPERATION",
	ErrUnbalancedConditional:    "UNBALANCED_CONDITIONAL",
	ErrNegativeLockTime:         "NEGATIVE_LOCKTIME",
	ErrUnsatisfiedLockTime:      "UNSATISFIED_LOCKTIME",
	ErrSigHashType:              "SIG_HASHTYPE",
	ErrSigDER:                   "SIG_DER",
	ErrMinimalData:              "MINIMALDATA",
	ErrSigPushOnly:              "SIG_PUSHONLY",
	ErrSigHighS:                 "SIG_HIGH_S",
	ErrSigNullDummy:             "SIG_NULLDUMMY",
	ErrPubKeyType:               "PUBKEYTYPE",
	ErrCleanStack:               "CLEANSTACK",
	ErrSigNullFail:              "NULLFAIL",
	ErrDiscourageUpgradableNops: "DISCOURAGE_UPGRADABLE_NOPS",
	ErrDivByZero:                "DIV_BY_ZERO",
	ErrModByZero:                "MOD_BY_ZERO",
	ErrInvalidFlags:             "INVALID_FLAGS",
}

// errorCodeMessages 是错误代码到面向用户的说明文字的映射。
var errorCodeMessages = map[ErrorCode]string{
	ErrOK:                       "No error",
	ErrEvalFalse:                "Script evaluated without error but finished with a false/empty top stack element",
	ErrOpReturn:                 "OP_RETURN was encountered",
	ErrScriptSize:               "Script is too big",
	ErrPushSize:                 "Push value size limit exceeded",
	ErrOpCount:                  "Operation limit exceeded",
	ErrStackSize:                "Stack size limit exceeded",
	ErrSigCount:                 "Signature count negative or greater than pubkey count",
	ErrPubKeyCount:              "Pubkey count negative or limit exceeded",
	ErrInvalidOperandSize:       "Invalid operand size",
	ErrInvalidNumberRange:       "Given operand is not a number within the valid range [-2^31...2^31]",
	ErrImpossibleEncoding:       "The requested encoding is impossible to satisfy",
	ErrInvalidSplitRange:        "Invalid OP_SPLIT range",
	ErrInvalidNumber:            "Numeric operand is not minimally encoded or exceeds the allowed length",
	ErrVerify:                   "Script failed an OP_VERIFY operation",
	ErrEqualVerify:              "Script failed an OP_EQUALVERIFY operation",
	ErrCheckMultiSigVerify:      "Script failed an OP_CHECKMULTISIGVERIFY operation",
	ErrCheckSigVerify:           "Script failed an OP_CHECKSIGVERIFY operation",
	ErrCheckDataSigVerify:       "Script failed an OP_CHECKDATASIGVERIFY operation",
	ErrNumEqualVerify:           "Script failed an OP_NUMEQUALVERIFY operation",
	ErrBadOpcode:                "Opcode missing or not understood",
	ErrDisabledOpcode:           "Attempted to use a disabled opcode",
	ErrInvalidStackOperation:    "Operation not valid with the current stack size",
	ErrInvalidAltStackOperation: "Operation not valid with the current altstack size",
	ErrUnbalancedConditional:    "Invalid OP_IF construction",
	ErrNegativeLockTime:         "Negative locktime",
	ErrUnsatisfiedLockTime:      "Locktime requirement not satisfied",
	ErrSigHashType:              "Signature hash type missing or not understood",
	ErrSigDER:                   "Non-canonical DER signature",
	ErrMinimalData:              "Data push larger than necessary",
	ErrSigPushOnly:              "Only non-push operators allowed in signatures",
	ErrSigHighS:                 "Non-canonical signature: S value is unnecessarily high",
	ErrSigNullDummy:             "Dummy CHECKMULTISIG argument must be zero",
	ErrPubKeyType:               "Public key is neither compressed or uncompressed",
	ErrCleanStack:               "Extra items left on stack after execution",
	ErrSigNullFail:              "Signature must be zero for failed CHECK(MULTI)SIG operation",
	ErrDiscourageUpgradableNops: "NOPx reserved for soft-fork upgrades",
	ErrDivByZero:                "Division by zero error",
	ErrModByZero:                "Modulo by zero error",
	ErrInvalidFlags:             "Invalid combination of script verification flags",
}

// String 以可读形式返回错误代码。
func (e ErrorCode) String() string {
	if s := errorCodeStrings[e]; s != "" {
		return s
	}
	return fmt.Sprintf("Unknown ErrorCode (%d)", int(e))
}

// Tag 返回测试向量和 API 响应中使用的错误标签，例如 "SPLIT_RANGE"。
func (e ErrorCode) Tag() string {
	if s := errorCodeTags[e]; s != "" {
		return s
	}
	return "UNKNOWN_ERROR"
}

// Message 返回错误代码的说明文字，例如 "Attempted to use a disabled opcode"。
func (e ErrorCode) Message() string {
	if s := errorCodeMessages[e]; s != "" {
		return s
	}
	return "unknown error"
}

// ParseErrorTag 将测试向量中的错误标签转换为错误代码。
//
// 参数:
//   - tag: 错误标签，例如 "PUSH_SIZE"
//
// 返回值:
//   - ErrorCode: 对应的错误代码
//   - bool: 标签是否已知
func ParseErrorTag(tag string) (ErrorCode, bool) {
	for code, t := range errorCodeTags {
		if t == tag {
			return code, true
		}
	}
	return ErrUnknown, false
}

// Error 标识脚本相关的错误。它包含错误代码和更具体的描述。
// 调用者可以通过 errors.As 取得错误代码，以编程方式区分失败种类。
type Error struct {
	ErrorCode   ErrorCode // 错误种类
	Description string    // 人类可读的描述
}

// Error 满足 error 接口并打印人类可读的错误。
func (e Error) Error() string {
	return e.Description
}

// scriptError 使用给定的错误代码和描述创建 Error。
func scriptError(c ErrorCode, desc string) Error {
	return Error{ErrorCode: c, Description: desc}
}

// ErrorCodeOf 返回错误携带的错误代码。nil 返回 ErrOK，非脚本错误返回 ErrUnknown。
func ErrorCodeOf(err error) ErrorCode {
	if err == nil {
		return ErrOK
	}
	var serr Error
	if errors.As(err, &serr) {
		return serr.ErrorCode
	}
	return ErrUnknown
}

// IsErrorCode 返回 err 是否为携带给定错误代码的脚本错误。
func IsErrorCode(err error, c ErrorCode) bool {
	var serr Error
	return errors.As(err, &serr) && serr.ErrorCode == c
}
