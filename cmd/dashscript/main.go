// dashscript 执行、验证和反汇编 Dash 脚本，或者启动 HTTP API 服务。
//
// 用法:
//
//	dashscript eval    -script "'ab' 'cd' CAT" [-stack hex,hex] [-flags STANDARD,DIP0020_OPCODES] [-trace]
//	dashscript verify  -sig "<asm>" -pubkey "<asm>" [-flags ...] [-message hex]
//	dashscript disasm  [-lines] <hex>
//	dashscript asm     <asm>
//	dashscript keygen
//	dashscript sign    -key hex -script "<asm>" [-message hex] [-data hex]
//	dashscript serve   [-config dashscript.toml] [-listen :8081] [-db dir]
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/pkg/errors"
	"github.com/pterm/pterm"
)

// exitCode 是脚本失败等需要非零退出码但无需再打印的错误
type exitCode int

func (e exitCode) Error() string {
	return fmt.Sprintf("exit status %d", int(e))
}

const usage = `usage: dashscript <command> [flags]

commands:
  eval     evaluate a script on an initial stack
  verify   verify a signature script against a public key script
  disasm   disassemble a hex script
  asm      assemble a script to hex
  keygen   generate a secp256k1 key pair
  sign     sign a script code or data with a private key
  serve    run the HTTP API
`

// run 分派子命令
func run(args []string, w io.Writer) error {
	if len(args) == 0 {
		fmt.Fprint(w, usage)
		return exitCode(2)
	}

	switch args[0] {
	case "eval":
		return runEval(args[1:], w)
	case "verify":
		return runVerify(args[1:], w)
	case "disasm":
		return runDisasm(args[1:], w)
	case "asm":
		return runAsm(args[1:], w)
	case "keygen":
		return runKeygen(args[1:], w)
	case "sign":
		return runSign(args[1:], w)
	case "serve":
		return runServe(args[1:], w)
	case "help", "-h", "-help", "--help":
		fmt.Fprint(w, usage)
		return nil
	default:
		fmt.Fprint(w, usage)
		return errors.Errorf("unknown command %q", args[0])
	}
}

func main() {
	err := run(os.Args[1:], os.Stdout)
	if err == nil {
		return
	}

	var code exitCode
	if errors.As(err, &code) {
		os.Exit(int(code))
	}
	pterm.Error.Println(err)
	os.Exit(1)
}
