// 操作码定义与分派表。

package script

import (
	"encoding/hex"
	"fmt"
	"strings"
)

// opcode 描述一个操作码：它的值、名称、长度和执行函数。
//
// length 为 1 表示没有附加数据；大于 1 表示操作码本身加上固定长度的数据（OP_DATA_n）；
// 负数表示其后跟随 -length 字节的小端长度前缀（OP_PUSHDATA1/2/4）。
type opcode struct {
	value  byte                                 // 操作码的值
	name   string                               // 操作码的名称
	length int                                  // 操作码的长度
	opfunc func(*opcode, []byte, *Engine) error // 操作码的执行函数
}

// 这些常量是脚本中使用的全部操作码。
const (
	OP_0                   = 0x00 // 推送空值
	OP_FALSE               = 0x00 // OP_0 的别名
	OP_DATA_1              = 0x01
	OP_DATA_2              = 0x02
	OP_DATA_3              = 0x03
	OP_DATA_4              = 0x04
	OP_DATA_5              = 0x05
	OP_DATA_6              = 0x06
	OP_DATA_7              = 0x07
	OP_DATA_8              = 0x08
	OP_DATA_9              = 0x09
	OP_DATA_10             = 0x0a
	OP_DATA_11             = 0x0b
	OP_DATA_12             = 0x0c
	OP_DATA_13             = 0x0d
	OP_DATA_14             = 0x0e
	OP_DATA_15             = 0x0f
	OP_DATA_16             = 0x10
	OP_DATA_17             = 0x11
	OP_DATA_18             = 0x12
	OP_DATA_19             = 0x13
	OP_DATA_20             = 0x14
	OP_DATA_21             = 0x15
	OP_DATA_22             = 0x16
	OP_DATA_23             = 0x17
	OP_DATA_24             = 0x18
	OP_DATA_25             = 0x19
	OP_DATA_26             = 0x1a
	OP_DATA_27             = 0x1b
	OP_DATA_28             = 0x1c
	OP_DATA_29             = 0x1d
	OP_DATA_30             = 0x1e
	OP_DATA_31             = 0x1f
	OP_DATA_32             = 0x20
	OP_DATA_33             = 0x21
	OP_DATA_34             = 0x22
	OP_DATA_35             = 0x23
	OP_DATA_36             = 0x24
	OP_DATA_37             = 0x25
	OP_DATA_38             = 0x26
	OP_DATA_39             = 0x27
	OP_DATA_40             = 0x28
	OP_DATA_41             = 0x29
	OP_DATA_42             = 0x2a
	OP_DATA_43             = 0x2b
	OP_DATA_44             = 0x2c
	OP_DATA_45             = 0x2d
	OP_DATA_46             = 0x2e
	OP_DATA_47             = 0x2f
	OP_DATA_48             = 0x30
	OP_DATA_49             = 0x31
	OP_DATA_50             = 0x32
	OP_DATA_51             = 0x33
	OP_DATA_52             = 0x34
	OP_DATA_53             = 0x35
	OP_DATA_54             = 0x36
	OP_DATA_55             = 0x37
	OP_DATA_56             = 0x38
	OP_DATA_57             = 0x39
	OP_DATA_58             = 0x3a
	OP_DATA_59             = 0x3b
	OP_DATA_60             = 0x3c
	OP_DATA_61             = 0x3d
	OP_DATA_62             = 0x3e
	OP_DATA_63             = 0x3f
	OP_DATA_64             = 0x40
	OP_DATA_65             = 0x41
	OP_DATA_66             = 0x42
	OP_DATA_67             = 0x43
	OP_DATA_68             = 0x44
	OP_DATA_69             = 0x45
	OP_DATA_70             = 0x46
	OP_DATA_71             = 0x47
	OP_DATA_72             = 0x48
	OP_DATA_73             = 0x49
	OP_DATA_74             = 0x4a
	OP_DATA_75             = 0x4b
	OP_PUSHDATA1           = 0x4c // 后跟 1 字节长度
	OP_PUSHDATA2           = 0x4d // 后跟 2 字节小端长度
	OP_PUSHDATA4           = 0x4e // 后跟 4 字节小端长度
	OP_1NEGATE             = 0x4f // 推送 -1
	OP_RESERVED            = 0x50
	OP_1                   = 0x51 // 推送 1
	OP_TRUE                = 0x51 // OP_1 的别名
	OP_2                   = 0x52
	OP_3                   = 0x53
	OP_4                   = 0x54
	OP_5                   = 0x55
	OP_6                   = 0x56
	OP_7                   = 0x57
	OP_8                   = 0x58
	OP_9                   = 0x59
	OP_10                  = 0x5a
	OP_11                  = 0x5b
	OP_12                  = 0x5c
	OP_13                  = 0x5d
	OP_14                  = 0x5e
	OP_15                  = 0x5f
	OP_16                  = 0x60
	OP_NOP                 = 0x61
	OP_VER                 = 0x62
	OP_IF                  = 0x63
	OP_NOTIF               = 0x64
	OP_VERIF               = 0x65
	OP_VERNOTIF            = 0x66
	OP_ELSE                = 0x67
	OP_ENDIF               = 0x68
	OP_VERIFY              = 0x69
	OP_RETURN              = 0x6a
	OP_TOALTSTACK          = 0x6b
	OP_FROMALTSTACK        = 0x6c
	OP_2DROP               = 0x6d
	OP_2DUP                = 0x6e
	OP_3DUP                = 0x6f
	OP_2OVER               = 0x70
	OP_2ROT                = 0x71
	OP_2SWAP               = 0x72
	OP_IFDUP               = 0x73
	OP_DEPTH               = 0x74
	OP_DROP                = 0x75
	OP_DUP                 = 0x76
	OP_NIP                 = 0x77
	OP_OVER                = 0x78
	OP_PICK                = 0x79
	OP_ROLL                = 0x7a
	OP_ROT                 = 0x7b
	OP_SWAP                = 0x7c
	OP_TUCK                = 0x7d
	OP_CAT                 = 0x7e
	OP_SPLIT               = 0x7f
	OP_NUM2BIN             = 0x80
	OP_BIN2NUM             = 0x81
	OP_SIZE                = 0x82
	OP_INVERT              = 0x83
	OP_AND                 = 0x84
	OP_OR                  = 0x85
	OP_XOR                 = 0x86
	OP_EQUAL               = 0x87
	OP_EQUALVERIFY         = 0x88
	OP_RESERVED1           = 0x89
	OP_RESERVED2           = 0x8a
	OP_1ADD                = 0x8b
	OP_1SUB                = 0x8c
	OP_2MUL                = 0x8d
	OP_2DIV                = 0x8e
	OP_NEGATE              = 0x8f
	OP_ABS                 = 0x90
	OP_NOT                 = 0x91
	OP_0NOTEQUAL           = 0x92
	OP_ADD                 = 0x93
	OP_SUB                 = 0x94
	OP_MUL                 = 0x95
	OP_DIV                 = 0x96
	OP_MOD                 = 0x97
	OP_LSHIFT              = 0x98
	OP_RSHIFT              = 0x99
	OP_BOOLAND             = 0x9a
	OP_BOOLOR              = 0x9b
	OP_NUMEQUAL            = 0x9c
	OP_NUMEQUALVERIFY      = 0x9d
	OP_NUMNOTEQUAL         = 0x9e
	OP_LESSTHAN            = 0x9f
	OP_GREATERTHAN         = 0xa0
	OP_LESSTHANOREQUAL     = 0xa1
	OP_GREATERTHANOREQUAL  = 0xa2
	OP_MIN                 = 0xa3
	OP_MAX                 = 0xa4
	OP_WITHIN              = 0xa5
	OP_RIPEMD160           = 0xa6
	OP_SHA1                = 0xa7
	OP_SHA256              = 0xa8
	OP_HASH160             = 0xa9
	OP_HASH256             = 0xaa
	OP_CODESEPARATOR       = 0xab
	OP_CHECKSIG            = 0xac
	OP_CHECKSIGVERIFY      = 0xad
	OP_CHECKMULTISIG       = 0xae
	OP_CHECKMULTISIGVERIFY = 0xaf
	OP_NOP1                = 0xb0
	OP_NOP2                = 0xb1
	OP_CHECKLOCKTIMEVERIFY = 0xb1
	OP_NOP3                = 0xb2
	OP_CHECKSEQUENCEVERIFY = 0xb2
	OP_NOP4                = 0xb3
	OP_NOP5                = 0xb4
	OP_NOP6                = 0xb5
	OP_NOP7                = 0xb6
	OP_NOP8                = 0xb7
	OP_NOP9                = 0xb8
	OP_NOP10               = 0xb9
	OP_CHECKDATASIG        = 0xba
	OP_CHECKDATASIGVERIFY  = 0xbb
	OP_INVALIDOPCODE       = 0xff
)

// 条件执行状态。
const (
	OpCondFalse = 0 // 分支未执行
	OpCondTrue  = 1 // 分支正在执行
	OpCondSkip  = 2 // 外层分支未执行，整个条件块被跳过
)

// opcodeArray 保存全部 256 个操作码的定义，执行时按字节值直接索引。
var opcodeArray = [256]opcode{
	// 数据推送操作码
	OP_0:         {OP_0, "OP_0", 1, opcodeFalse},
	OP_DATA_1:    {OP_DATA_1, "OP_DATA_1", 2, opcodePushData},
	OP_DATA_2:    {OP_DATA_2, "OP_DATA_2", 3, opcodePushData},
	OP_DATA_3:    {OP_DATA_3, "OP_DATA_3", 4, opcodePushData},
	OP_DATA_4:    {OP_DATA_4, "OP_DATA_4", 5, opcodePushData},
	OP_DATA_5:    {OP_DATA_5, "OP_DATA_5", 6, opcodePushData},
	OP_DATA_6:    {OP_DATA_6, "OP_DATA_6", 7, opcodePushData},
	OP_DATA_7:    {OP_DATA_7, "OP_DATA_7", 8, opcodePushData},
	OP_DATA_8:    {OP_DATA_8, "OP_DATA_8", 9, opcodePushData},
	OP_DATA_9:    {OP_DATA_9, "OP_DATA_9", 10, opcodePushData},
	OP_DATA_10:   {OP_DATA_10, "OP_DATA_10", 11, opcodePushData},
	OP_DATA_11:   {OP_DATA_11, "OP_DATA_11", 12, opcodePushData},
	OP_DATA_12:   {OP_DATA_12, "OP_DATA_12", 13, opcodePushData},
	OP_DATA_13:   {OP_DATA_13, "OP_DATA_13", 14, opcodePushData},
	OP_DATA_14:   {OP_DATA_14, "OP_DATA_14", 15, opcodePushData},
	OP_DATA_15:   {OP_DATA_15, "OP_DATA_15", 16, opcodePushData},
	OP_DATA_16:   {OP_DATA_16, "OP_DATA_16", 17, opcodePushData},
	OP_DATA_17:   {OP_DATA_17, "OP_DATA_17", 18, opcodePushData},
	OP_DATA_18:   {OP_DATA_18, "OP_DATA_18", 19, opcodePushData},
	OP_DATA_19:   {OP_DATA_19, "OP_DATA_19", 20, opcodePushData},
	OP_DATA_20:   {OP_DATA_20, "OP_DATA_20", 21, opcodePushData},
	OP_DATA_21:   {OP_DATA_21, "OP_DATA_21", 22, opcodePushData},
	OP_DATA_22:   {OP_DATA_22, "OP_DATA_22", 23, opcodePushData},
	OP_DATA_23:   {OP_DATA_23, "OP_DATA_23", 24, opcodePushData},
	OP_DATA_24:   {OP_DATA_24, "OP_DATA_24", 25, opcodePushData},
	OP_DATA_25:   {OP_DATA_25, "OP_DATA_25", 26, opcodePushData},
	OP_DATA_26:   {OP_DATA_26, "OP_DATA_26", 27, opcodePushData},
	OP_DATA_27:   {OP_DATA_27, "OP_DATA_27", 28, opcodePushData},
	OP_DATA_28:   {OP_DATA_28, "OP_DATA_28", 29, opcodePushData},
	OP_DATA_29:   {OP_DATA_29, "OP_DATA_29", 30, opcodePushData},
	OP_DATA_30:   {OP_DATA_30, "OP_DATA_30", 31, opcodePushData},
	OP_DATA_31:   {OP_DATA_31, "OP_DATA_31", 32, opcodePushData},
	OP_DATA_32:   {OP_DATA_32, "OP_DATA_32", 33, opcodePushData},
	OP_DATA_33:   {OP_DATA_33, "OP_DATA_33", 34, opcodePushData},
	OP_DATA_34:   {OP_DATA_34, "OP_DATA_34", 35, opcodePushData},
	OP_DATA_35:   {OP_DATA_35, "OP_DATA_35", 36, opcodePushData},
	OP_DATA_36:   {OP_DATA_36, "OP_DATA_36", 37, opcodePushData},
	OP_DATA_37:   {OP_DATA_37, "OP_DATA_37", 38, opcodePushData},
	OP_DATA_38:   {OP_DATA_38, "OP_DATA_38", 39, opcodePushData},
	OP_DATA_39:   {OP_DATA_39, "OP_DATA_39", 40, opcodePushData},
	OP_DATA_40:   {OP_DATA_40, "OP_DATA_40", 41, opcodePushData},
	OP_DATA_41:   {OP_DATA_41, "OP_DATA_41", 42, opcodePushData},
	OP_DATA_42:   {OP_DATA_42, "OP_DATA_42", 43, opcodePushData},
	OP_DATA_43:   {OP_DATA_43, "OP_DATA_43", 44, opcodePushData},
	OP_DATA_44:   {OP_DATA_44, "OP_DATA_44", 45, opcodePushData},
	OP_DATA_45:   {OP_DATA_45, "OP_DATA_45", 46, opcodePushData},
	OP_DATA_46:   {OP_DATA_46, "OP_DATA_46", 47, opcodePushData},
	OP_DATA_47:   {OP_DATA_47, "OP_DATA_47", 48, opcodePushData},
	OP_DATA_48:   {OP_DATA_48, "OP_DATA_48", 49, opcodePushData},
	OP_DATA_49:   {OP_DATA_49, "OP_DATA_49", 50, opcodePushData},
	OP_DATA_50:   {OP_DATA_50, "OP_DATA_50", 51, opcodePushData},
	OP_DATA_51:   {OP_DATA_51, "OP_DATA_51", 52, opcodePushData},
	OP_DATA_52:   {OP_DATA_52, "OP_DATA_52", 53, opcodePushData},
	OP_DATA_53:   {OP_DATA_53, "OP_DATA_53", 54, opcodePushData},
	OP_DATA_54:   {OP_DATA_54, "OP_DATA_54", 55, opcodePushData},
	OP_DATA_55:   {OP_DATA_55, "OP_DATA_55", 56, opcodePushData},
	OP_DATA_56:   {OP_DATA_56, "OP_DATA_56", 57, opcodePushData},
	OP_DATA_57:   {OP_DATA_57, "OP_DATA_57", 58, opcodePushData},
	OP_DATA_58:   {OP_DATA_58, "OP_DATA_58", 59, opcodePushData},
	OP_DATA_59:   {OP_DATA_59, "OP_DATA_59", 60, opcodePushData},
	OP_DATA_60:   {OP_DATA_60, "OP_DATA_60", 61, opcodePushData},
	OP_DATA_61:   {OP_DATA_61, "OP_DATA_61", 62, opcodePushData},
	OP_DATA_62:   {OP_DATA_62, "OP_DATA_62", 63, opcodePushData},
	OP_DATA_63:   {OP_DATA_63, "OP_DATA_63", 64, opcodePushData},
	OP_DATA_64:   {OP_DATA_64, "OP_DATA_64", 65, opcodePushData},
	OP_DATA_65:   {OP_DATA_65, "OP_DATA_65", 66, opcodePushData},
	OP_DATA_66:   {OP_DATA_66, "OP_DATA_66", 67, opcodePushData},
	OP_DATA_67:   {OP_DATA_67, "OP_DATA_67", 68, opcodePushData},
	OP_DATA_68:   {OP_DATA_68, "OP_DATA_68", 69, opcodePushData},
	OP_DATA_69:   {OP_DATA_69, "OP_DATA_69", 70, opcodePushData},
	OP_DATA_70:   {OP_DATA_70, "OP_DATA_70", 71, opcodePushData},
	OP_DATA_71:   {OP_DATA_71, "OP_DATA_71", 72, opcodePushData},
	OP_DATA_72:   {OP_DATA_72, "OP_DATA_72", 73, opcodePushData},
	OP_DATA_73:   {OP_DATA_73, "OP_DATA_73", 74, opcodePushData},
	OP_DATA_74:   {OP_DATA_74, "OP_DATA_74", 75, opcodePushData},
	OP_DATA_75:   {OP_DATA_75, "OP_DATA_75", 76, opcodePushData},
	OP_PUSHDATA1: {OP_PUSHDATA1, "OP_PUSHDATA1", -1, opcodePushData},
	OP_PUSHDATA2: {OP_PUSHDATA2, "OP_PUSHDATA2", -2, opcodePushData},
	OP_PUSHDATA4: {OP_PUSHDATA4, "OP_PUSHDATA4", -4, opcodePushData},

	// 常量推送与保留操作码
	OP_1NEGATE:  {OP_1NEGATE, "OP_1NEGATE", 1, opcode1Negate},
	OP_RESERVED: {OP_RESERVED, "OP_RESERVED", 1, opcodeReserved},
	OP_1:        {OP_1, "OP_1", 1, opcodeN},
	OP_2:        {OP_2, "OP_2", 1, opcodeN},
	OP_3:        {OP_3, "OP_3", 1, opcodeN},
	OP_4:        {OP_4, "OP_4", 1, opcodeN},
	OP_5:        {OP_5, "OP_5", 1, opcodeN},
	OP_6:        {OP_6, "OP_6", 1, opcodeN},
	OP_7:        {OP_7, "OP_7", 1, opcodeN},
	OP_8:        {OP_8, "OP_8", 1, opcodeN},
	OP_9:        {OP_9, "OP_9", 1, opcodeN},
	OP_10:       {OP_10, "OP_10", 1, opcodeN},
	OP_11:       {OP_11, "OP_11", 1, opcodeN},
	OP_12:       {OP_12, "OP_12", 1, opcodeN},
	OP_13:       {OP_13, "OP_13", 1, opcodeN},
	OP_14:       {OP_14, "OP_14", 1, opcodeN},
	OP_15:       {OP_15, "OP_15", 1, opcodeN},
	OP_16:       {OP_16, "OP_16", 1, opcodeN},

	// 控制操作码
	OP_NOP:      {OP_NOP, "OP_NOP", 1, opcodeNop},
	OP_VER:      {OP_VER, "OP_VER", 1, opcodeReserved},
	OP_IF:       {OP_IF, "OP_IF", 1, opcodeIf},
	OP_NOTIF:    {OP_NOTIF, "OP_NOTIF", 1, opcodeNotIf},
	OP_VERIF:    {OP_VERIF, "OP_VERIF", 1, opcodeReservedConditional},
	OP_VERNOTIF: {OP_VERNOTIF, "OP_VERNOTIF", 1, opcodeReservedConditional},
	OP_ELSE:     {OP_ELSE, "OP_ELSE", 1, opcodeElse},
	OP_ENDIF:    {OP_ENDIF, "OP_ENDIF", 1, opcodeEndif},
	OP_VERIFY:   {OP_VERIFY, "OP_VERIFY", 1, opcodeVerify},
	OP_RETURN:   {OP_RETURN, "OP_RETURN", 1, opcodeReturn},

	// 栈操作码
	OP_TOALTSTACK:   {OP_TOALTSTACK, "OP_TOALTSTACK", 1, opcodeToAltStack},
	OP_FROMALTSTACK: {OP_FROMALTSTACK, "OP_FROMALTSTACK", 1, opcodeFromAltStack},
	OP_2DROP:        {OP_2DROP, "OP_2DROP", 1, opcode2Drop},
	OP_2DUP:         {OP_2DUP, "OP_2DUP", 1, opcode2Dup},
	OP_3DUP:         {OP_3DUP, "OP_3DUP", 1, opcode3Dup},
	OP_2OVER:        {OP_2OVER, "OP_2OVER", 1, opcode2Over},
	OP_2ROT:         {OP_2ROT, "OP_2ROT", 1, opcode2Rot},
	OP_2SWAP:        {OP_2SWAP, "OP_2SWAP", 1, opcode2Swap},
	OP_IFDUP:        {OP_IFDUP, "OP_IFDUP", 1, opcodeIfDup},
	OP_DEPTH:        {OP_DEPTH, "OP_DEPTH", 1, opcodeDepth},
	OP_DROP:         {OP_DROP, "OP_DROP", 1, opcodeDrop},
	OP_DUP:          {OP_DUP, "OP_DUP", 1, opcodeDup},
	OP_NIP:          {OP_NIP, "OP_NIP", 1, opcodeNip},
	OP_OVER:         {OP_OVER, "OP_OVER", 1, opcodeOver},
	OP_PICK:         {OP_PICK, "OP_PICK", 1, opcodePick},
	OP_ROLL:         {OP_ROLL, "OP_ROLL", 1, opcodeRoll},
	OP_ROT:          {OP_ROT, "OP_ROT", 1, opcodeRot},
	OP_SWAP:         {OP_SWAP, "OP_SWAP", 1, opcodeSwap},
	OP_TUCK:         {OP_TUCK, "OP_TUCK", 1, opcodeTuck},

	// 拼接操作码
	OP_CAT:     {OP_CAT, "OP_CAT", 1, opcodeCat},
	OP_SPLIT:   {OP_SPLIT, "OP_SPLIT", 1, opcodeSplit},
	OP_NUM2BIN: {OP_NUM2BIN, "OP_NUM2BIN", 1, opcodeNum2Bin},
	OP_BIN2NUM: {OP_BIN2NUM, "OP_BIN2NUM", 1, opcodeBin2Num},
	OP_SIZE:    {OP_SIZE, "OP_SIZE", 1, opcodeSize},

	// 按位逻辑操作码
	OP_INVERT:      {OP_INVERT, "OP_INVERT", 1, opcodeDisabled},
	OP_AND:         {OP_AND, "OP_AND", 1, opcodeAnd},
	OP_OR:          {OP_OR, "OP_OR", 1, opcodeOr},
	OP_XOR:         {OP_XOR, "OP_XOR", 1, opcodeXor},
	OP_EQUAL:       {OP_EQUAL, "OP_EQUAL", 1, opcodeEqual},
	OP_EQUALVERIFY: {OP_EQUALVERIFY, "OP_EQUALVERIFY", 1, opcodeEqualVerify},
	OP_RESERVED1:   {OP_RESERVED1, "OP_RESERVED1", 1, opcodeReserved},
	OP_RESERVED2:   {OP_RESERVED2, "OP_RESERVED2", 1, opcodeReserved},

	// 数值操作码
	OP_1ADD:               {OP_1ADD, "OP_1ADD", 1, opcode1Add},
	OP_1SUB:               {OP_1SUB, "OP_1SUB", 1, opcode1Sub},
	OP_2MUL:               {OP_2MUL, "OP_2MUL", 1, opcodeDisabled},
	OP_2DIV:               {OP_2DIV, "OP_2DIV", 1, opcodeDisabled},
	OP_NEGATE:             {OP_NEGATE, "OP_NEGATE", 1, opcodeNegate},
	OP_ABS:                {OP_ABS, "OP_ABS", 1, opcodeAbs},
	OP_NOT:                {OP_NOT, "OP_NOT", 1, opcodeNot},
	OP_0NOTEQUAL:          {OP_0NOTEQUAL, "OP_0NOTEQUAL", 1, opcode0NotEqual},
	OP_ADD:                {OP_ADD, "OP_ADD", 1, opcodeAdd},
	OP_SUB:                {OP_SUB, "OP_SUB", 1, opcodeSub},
	OP_MUL:                {OP_MUL, "OP_MUL", 1, opcodeDisabled},
	OP_DIV:                {OP_DIV, "OP_DIV", 1, opcodeDiv},
	OP_MOD:                {OP_MOD, "OP_MOD", 1, opcodeMod},
	OP_LSHIFT:             {OP_LSHIFT, "OP_LSHIFT", 1, opcodeDisabled},
	OP_RSHIFT:             {OP_RSHIFT, "OP_RSHIFT", 1, opcodeDisabled},
	OP_BOOLAND:            {OP_BOOLAND, "OP_BOOLAND", 1, opcodeBoolAnd},
	OP_BOOLOR:             {OP_BOOLOR, "OP_BOOLOR", 1, opcodeBoolOr},
	OP_NUMEQUAL:           {OP_NUMEQUAL, "OP_NUMEQUAL", 1, opcodeNumEqual},
	OP_NUMEQUALVERIFY:     {OP_NUMEQUALVERIFY, "OP_NUMEQUALVERIFY", 1, opcodeNumEqualVerify},
	OP_NUMNOTEQUAL:        {OP_NUMNOTEQUAL, "OP_NUMNOTEQUAL", 1, opcodeNumNotEqual},
	OP_LESSTHAN:           {OP_LESSTHAN, "OP_LESSTHAN", 1, opcodeLessThan},
	OP_GREATERTHAN:        {OP_GREATERTHAN, "OP_GREATERTHAN", 1, opcodeGreaterThan},
	OP_LESSTHANOREQUAL:    {OP_LESSTHANOREQUAL, "OP_LESSTHANOREQUAL", 1, opcodeLessThanOrEqual},
	OP_GREATERTHANOREQUAL: {OP_GREATERTHANOREQUAL, "OP_GREATERTHANOREQUAL", 1, opcodeGreaterThanOrEqual},
	OP_MIN:                {OP_MIN, "OP_MIN", 1, opcodeMin},
	OP_MAX:                {OP_MAX, "OP_MAX", 1, opcodeMax},
	OP_WITHIN:             {OP_WITHIN, "OP_WITHIN", 1, opcodeWithin},

	// 密码学操作码
	OP_RIPEMD160:           {OP_RIPEMD160, "OP_RIPEMD160", 1, opcodeRipemd160},
	OP_SHA1:                {OP_SHA1, "OP_SHA1", 1, opcodeSha1},
	OP_SHA256:              {OP_SHA256, "OP_SHA256", 1, opcodeSha256},
	OP_HASH160:             {OP_HASH160, "OP_HASH160", 1, opcodeHash160},
	OP_HASH256:             {OP_HASH256, "OP_HASH256", 1, opcodeHash256},
	OP_CODESEPARATOR:       {OP_CODESEPARATOR, "OP_CODESEPARATOR", 1, opcodeCodeSeparator},
	OP_CHECKSIG:            {OP_CHECKSIG, "OP_CHECKSIG", 1, opcodeCheckSig},
	OP_CHECKSIGVERIFY:      {OP_CHECKSIGVERIFY, "OP_CHECKSIGVERIFY", 1, opcodeCheckSigVerify},
	OP_CHECKMULTISIG:       {OP_CHECKMULTISIG, "OP_CHECKMULTISIG", 1, opcodeCheckMultiSig},
	OP_CHECKMULTISIGVERIFY: {OP_CHECKMULTISIGVERIFY, "OP_CHECKMULTISIGVERIFY", 1, opcodeCheckMultiSigVerify},

	// 升级保留与锁定时间操作码
	OP_NOP1:                {OP_NOP1, "OP_NOP1", 1, opcodeNop},
	OP_CHECKLOCKTIMEVERIFY: {OP_CHECKLOCKTIMEVERIFY, "OP_CHECKLOCKTIMEVERIFY", 1, opcodeCheckLockTimeVerify},
	OP_CHECKSEQUENCEVERIFY: {OP_CHECKSEQUENCEVERIFY, "OP_CHECKSEQUENCEVERIFY", 1, opcodeCheckSequenceVerify},
	OP_NOP4:                {OP_NOP4, "OP_NOP4", 1, opcodeNop},
	OP_NOP5:                {OP_NOP5, "OP_NOP5", 1, opcodeNop},
	OP_NOP6:                {OP_NOP6, "OP_NOP6", 1, opcodeNop},
	OP_NOP7:                {OP_NOP7, "OP_NOP7", 1, opcodeNop},
	OP_NOP8:                {OP_NOP8, "OP_NOP8", 1, opcodeNop},
	OP_NOP9:                {OP_NOP9, "OP_NOP9", 1, opcodeNop},
	OP_NOP10:               {OP_NOP10, "OP_NOP10", 1, opcodeNop},

	// 数据签名操作码
	OP_CHECKDATASIG:       {OP_CHECKDATASIG, "OP_CHECKDATASIG", 1, opcodeCheckDataSig},
	OP_CHECKDATASIGVERIFY: {OP_CHECKDATASIGVERIFY, "OP_CHECKDATASIGVERIFY", 1, opcodeCheckDataSigVerify},

	// 未定义的操作码
	0xbc:             {0xbc, "OP_UNKNOWN188", 1, opcodeInvalid},
	0xbd:             {0xbd, "OP_UNKNOWN189", 1, opcodeInvalid},
	0xbe:             {0xbe, "OP_UNKNOWN190", 1, opcodeInvalid},
	0xbf:             {0xbf, "OP_UNKNOWN191", 1, opcodeInvalid},
	0xc0:             {0xc0, "OP_UNKNOWN192", 1, opcodeInvalid},
	0xc1:             {0xc1, "OP_UNKNOWN193", 1, opcodeInvalid},
	0xc2:             {0xc2, "OP_UNKNOWN194", 1, opcodeInvalid},
	0xc3:             {0xc3, "OP_UNKNOWN195", 1, opcodeInvalid},
	0xc4:             {0xc4, "OP_UNKNOWN196", 1, opcodeInvalid},
	0xc5:             {0xc5, "OP_UNKNOWN197", 1, opcodeInvalid},
	0xc6:             {0xc6, "OP_UNKNOWN198", 1, opcodeInvalid},
	0xc7:             {0xc7, "OP_UNKNOWN199", 1, opcodeInvalid},
	0xc8:             {0xc8, "OP_UNKNOWN200", 1, opcodeInvalid},
	0xc9:             {0xc9, "OP_UNKNOWN201", 1, opcodeInvalid},
	0xca:             {0xca, "OP_UNKNOWN202", 1, opcodeInvalid},
	0xcb:             {0xcb, "OP_UNKNOWN203", 1, opcodeInvalid},
	0xcc:             {0xcc, "OP_UNKNOWN204", 1, opcodeInvalid},
	0xcd:             {0xcd, "OP_UNKNOWN205", 1, opcodeInvalid},
	0xce:             {0xce, "OP_UNKNOWN206", 1, opcodeInvalid},
	0xcf:             {0xcf, "OP_UNKNOWN207", 1, opcodeInvalid},
	0xd0:             {0xd0, "OP_UNKNOWN208", 1, opcodeInvalid},
	0xd1:             {0xd1, "OP_UNKNOWN209", 1, opcodeInvalid},
	0xd2:             {0xd2, "OP_UNKNOWN210", 1, opcodeInvalid},
	0xd3:             {0xd3, "OP_UNKNOWN211", 1, opcodeInvalid},
	0xd4:             {0xd4, "OP_UNKNOWN212", 1, opcodeInvalid},
	0xd5:             {0xd5, "OP_UNKNOWN213", 1, opcodeInvalid},
	0xd6:             {0xd6, "OP_UNKNOWN214", 1, opcodeInvalid},
	0xd7:             {0xd7, "OP_UNKNOWN215", 1, opcodeInvalid},
	0xd8:             {0xd8, "OP_UNKNOWN216", 1, opcodeInvalid},
	0xd9:             {0xd9, "OP_UNKNOWN217", 1, opcodeInvalid},
	0xda:             {0xda, "OP_UNKNOWN218", 1, opcodeInvalid},
	0xdb:             {0xdb, "OP_UNKNOWN219", 1, opcodeInvalid},
	0xdc:             {0xdc, "OP_UNKNOWN220", 1, opcodeInvalid},
	0xdd:             {0xdd, "OP_UNKNOWN221", 1, opcodeInvalid},
	0xde:             {0xde, "OP_UNKNOWN222", 1, opcodeInvalid},
	0xdf:             {0xdf, "OP_UNKNOWN223", 1, opcodeInvalid},
	0xe0:             {0xe0, "OP_UNKNOWN224", 1, opcodeInvalid},
	0xe1:             {0xe1, "OP_UNKNOWN225", 1, opcodeInvalid},
	0xe2:             {0xe2, "OP_UNKNOWN226", 1, opcodeInvalid},
	0xe3:             {0xe3, "OP_UNKNOWN227", 1, opcodeInvalid},
	0xe4:             {0xe4, "OP_UNKNOWN228", 1, opcodeInvalid},
	0xe5:             {0xe5, "OP_UNKNOWN229", 1, opcodeInvalid},
	0xe6:             {0xe6, "OP_UNKNOWN230", 1, opcodeInvalid},
	0xe7:             {0xe7, "OP_UNKNOWN231", 1, opcodeInvalid},
	0xe8:             {0xe8, "OP_UNKNOWN232", 1, opcodeInvalid},
	0xe9:             {0xe9, "OP_UNKNOWN233", 1, opcodeInvalid},
	0xea:             {0xea, "OP_UNKNOWN234", 1, opcodeInvalid},
	0xeb:             {0xeb, "OP_UNKNOWN235", 1, opcodeInvalid},
	0xec:             {0xec, "OP_UNKNOWN236", 1, opcodeInvalid},
	0xed:             {0xed, "OP_UNKNOWN237", 1, opcodeInvalid},
	0xee:             {0xee, "OP_UNKNOWN238", 1, opcodeInvalid},
	0xef:             {0xef, "OP_UNKNOWN239", 1, opcodeInvalid},
	0xf0:             {0xf0, "OP_UNKNOWN240", 1, opcodeInvalid},
	0xf1:             {0xf1, "OP_UNKNOWN241", 1, opcodeInvalid},
	0xf2:             {0xf2, "OP_UNKNOWN242", 1, opcodeInvalid},
	0xf3:             {0xf3, "OP_UNKNOWN243", 1, opcodeInvalid},
	0xf4:             {0xf4, "OP_UNKNOWN244", 1, opcodeInvalid},
	0xf5:             {0xf5, "OP_UNKNOWN245", 1, opcodeInvalid},
	0xf6:             {0xf6, "OP_UNKNOWN246", 1, opcodeInvalid},
	0xf7:             {0xf7, "OP_UNKNOWN247", 1, opcodeInvalid},
	0xf8:             {0xf8, "OP_UNKNOWN248", 1, opcodeInvalid},
	0xf9:             {0xf9, "OP_UNKNOWN249", 1, opcodeInvalid},
	0xfa:             {0xfa, "OP_UNKNOWN250", 1, opcodeInvalid},
	0xfb:             {0xfb, "OP_UNKNOWN251", 1, opcodeInvalid},
	0xfc:             {0xfc, "OP_UNKNOWN252", 1, opcodeInvalid},
	0xfd:             {0xfd, "OP_UNKNOWN253", 1, opcodeInvalid},
	0xfe:             {0xfe, "OP_UNKNOWN254", 1, opcodeInvalid},
	OP_INVALIDOPCODE: {OP_INVALIDOPCODE, "OP_INVALIDOPCODE", 1, opcodeInvalid},
}

// opcodeOnelineRepls 是单行反汇编时替换的操作码名称。
var opcodeOnelineRepls = map[string]string{
	"OP_1NEGATE": "-1",
	"OP_0":       "0",
	"OP_1":       "1",
	"OP_2":       "2",
	"OP_3":       "3",
	"OP_4":       "4",
	"OP_5":       "5",
	"OP_6":       "6",
	"OP_7":       "7",
	"OP_8":       "8",
	"OP_9":       "9",
	"OP_10":      "10",
	"OP_11":      "11",
	"OP_12":      "12",
	"OP_13":      "13",
	"OP_14":      "14",
	"OP_15":      "15",
	"OP_16":      "16",
}

// OpcodeByName 是操作码名称到操作码值的映射，包含 OP_FALSE、OP_TRUE、OP_NOP2 和 OP_NOP3 等别名。
var OpcodeByName = make(map[string]byte)

func init() {
	for _, op := range opcodeArray {
		if strings.HasPrefix(op.name, "OP_UNKNOWN") {
			continue
		}
		OpcodeByName[op.name] = op.value
	}
	OpcodeByName["OP_FALSE"] = OP_FALSE
	OpcodeByName["OP_TRUE"] = OP_TRUE
	OpcodeByName["OP_NOP2"] = OP_CHECKLOCKTIMEVERIFY
	OpcodeByName["OP_NOP3"] = OP_CHECKSEQUENCEVERIFY
}

// OpcodeName 返回操作码的名称。
func OpcodeName(value byte) string {
	return opcodeArray[value].name
}

// isConditionalOpcode 返回操作码是否属于 IF 系列（OP_IF 到 OP_ENDIF）。
// 这些操作码即使位于未执行的分支中也会被处理。
func isConditionalOpcode(value byte) bool {
	return value >= OP_IF && value <= OP_ENDIF
}

// isAlwaysDisabledOpcode 返回操作码是否被永久禁用。无论是否执行、无论标志如何都会失败。
func isAlwaysDisabledOpcode(value byte) bool {
	switch value {
	case OP_INVERT, OP_2MUL, OP_2DIV, OP_MUL, OP_LSHIFT, OP_RSHIFT:
		return true
	}
	return false
}

// isDIP0020Opcode 返回操作码是否需要 ScriptEnableDIP0020Opcodes 标志才能出现在脚本中。
func isDIP0020Opcode(value byte) bool {
	switch value {
	case OP_CAT, OP_SPLIT, OP_AND, OP_OR, OP_XOR, OP_DIV, OP_MOD, OP_NUM2BIN, OP_BIN2NUM:
		return true
	}
	return false
}

// disasmOpcode 将操作码及其数据写入 buf。
//
// compact 为 true 时输出单行格式：小整数显示为数字，推送数据显示为十六进制；
// 否则输出完整的操作码名称，PUSHDATA 还会附带长度前缀。
func disasmOpcode(buf *strings.Builder, op *opcode, data []byte, compact bool) {
	opcodeName := op.name
	if compact {
		if replName, ok := opcodeOnelineRepls[opcodeName]; ok {
			opcodeName = replName
		}

		switch {
		case op.length == 1:
			buf.WriteString(opcodeName)
		default:
			buf.WriteString(hex.EncodeToString(data))
		}
		return
	}

	buf.WriteString(opcodeName)

	switch op.length {
	case 1:
		return
	case -1:
		buf.WriteString(fmt.Sprintf(" 0x%02x", len(data)))
	case -2:
		buf.WriteString(fmt.Sprintf(" 0x%04x", len(data)))
	case -4:
		buf.WriteString(fmt.Sprintf(" 0x%08x", len(data)))
	}

	buf.WriteString(fmt.Sprintf(" 0x%02x", data))
}
