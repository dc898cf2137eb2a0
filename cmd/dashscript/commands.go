package main

import (
	"encoding/hex"
	"flag"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/pterm/pterm"
	"go.uber.org/fx"

	"github.com/tomthoros/dash/api"
	"github.com/tomthoros/dash/config"
	"github.com/tomthoros/dash/script"
	"github.com/tomthoros/dash/sign/ecdsa"
	"github.com/tomthoros/dash/utils/log"
	"github.com/tomthoros/dash/verify"
)

const defaultFlags = "STANDARD,DIP0020_OPCODES"

// scriptFailed 是脚本执行失败时的退出码
const scriptFailed = exitCode(2)

// newFlagSet 创建出错时返回错误而不是退出进程的参数集
func newFlagSet(name string, w io.Writer) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(w)
	return fs
}

// parseScriptArg 解析脚本参数：hexStr 非空时按十六进制解析，否则按汇编解析
func parseScriptArg(asm, hexStr string) ([]byte, error) {
	if hexStr != "" {
		b, err := hex.DecodeString(hexStr)
		return b, errors.Wrap(err, "decode script hex")
	}
	return script.ParseAsm(asm)
}

// parseStackArg 解析逗号分隔的十六进制栈元素，栈底在前。空元素用 "" 或 "-" 表示。
func parseStackArg(s string) ([][]byte, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	stack := make([][]byte, len(parts))
	for i, p := range parts {
		p = strings.TrimSpace(p)
		if p == "-" {
			p = ""
		}
		b, err := hex.DecodeString(p)
		if err != nil {
			return nil, errors.Wrapf(err, "decode stack item %d", i)
		}
		stack[i] = b
	}
	return stack, nil
}

// renderStack 以表格输出栈，栈顶在最后一行
func renderStack(w io.Writer, title string, stack [][]byte) error {
	fmt.Fprintf(w, "%s (%d items)\n", title, len(stack))
	if len(stack) == 0 {
		return nil
	}
	data := pterm.TableData{{"#", "Size", "Hex"}}
	for i, item := range stack {
		data = append(data, []string{strconv.Itoa(i), strconv.Itoa(len(item)), hex.EncodeToString(item)})
	}
	return pterm.DefaultTable.WithHasHeader().WithData(data).WithWriter(w).Render()
}

// renderVerdict 输出结论
func renderVerdict(w io.Writer, code script.ErrorCode) {
	if code == script.ErrOK {
		pterm.Success.WithWriter(w).Println("OK")
		return
	}
	pterm.Error.WithWriter(w).Printfln("%s: %s", code.Tag(), code.Message())
}

// runEval 实现 eval 子命令
func runEval(args []string, w io.Writer) error {
	fs := newFlagSet("eval", w)
	asm := fs.String("script", "", "script in assembly form")
	hexScript := fs.String("hex", "", "script in hex form (overrides -script)")
	stackArg := fs.String("stack", "", "comma separated hex stack items, bottom first")
	flagsArg := fs.String("flags", defaultFlags, "verification flags")
	message := fs.String("message", "", "hex signing context")
	trace := fs.Bool("trace", false, "print the stack after every opcode")
	if err := fs.Parse(args); err != nil {
		return err
	}

	program, err := parseScriptArg(*asm, *hexScript)
	if err != nil {
		return err
	}
	stack, err := parseStackArg(*stackArg)
	if err != nil {
		return err
	}
	flags, err := script.ParseScriptFlags(*flagsArg)
	if err != nil {
		return err
	}
	msg, err := hex.DecodeString(*message)
	if err != nil {
		return errors.Wrap(err, "decode message hex")
	}
	checker := ecdsa.NewChecker(msg)

	if *trace {
		return traceScript(w, program, stack, flags, checker)
	}

	ok, code := script.Evaluate(&stack, program, flags, checker, script.SigVersionBase)
	if err := renderStack(w, "stack", stack); err != nil {
		return err
	}
	renderVerdict(w, code)
	if !ok {
		return scriptFailed
	}
	return nil
}

// traceScript 单步执行脚本，每一步后输出栈
func traceScript(w io.Writer, program []byte, stack [][]byte, flags script.ScriptFlags, checker script.SignatureChecker) error {
	vm, err := script.NewEngine(program, stack, flags, checker, script.SigVersionBase)
	if err != nil {
		renderVerdict(w, script.ErrorCodeOf(err))
		return scriptFailed
	}

	for {
		pc, pcErr := vm.DisasmPC()
		done, err := vm.Step()
		if pcErr == nil {
			if rerr := renderStack(w, pc, vm.GetStack()); rerr != nil {
				return rerr
			}
		}
		if err != nil {
			renderVerdict(w, script.ErrorCodeOf(err))
			return scriptFailed
		}
		if done {
			break
		}
	}

	if err := vm.CheckErrorCondition(); err != nil {
		renderVerdict(w, script.ErrorCodeOf(err))
		return scriptFailed
	}
	renderVerdict(w, script.ErrOK)
	return nil
}

// runVerify 实现 verify 子命令
func runVerify(args []string, w io.Writer) error {
	fs := newFlagSet("verify", w)
	sigAsm := fs.String("sig", "", "signature script in assembly form")
	sigHex := fs.String("sig-hex", "", "signature script in hex form")
	pkAsm := fs.String("pubkey", "", "public key script in assembly form")
	pkHex := fs.String("pubkey-hex", "", "public key script in hex form")
	flagsArg := fs.String("flags", defaultFlags, "verification flags")
	message := fs.String("message", "", "hex signing context")
	if err := fs.Parse(args); err != nil {
		return err
	}

	scriptSig, err := parseScriptArg(*sigAsm, *sigHex)
	if err != nil {
		return err
	}
	scriptPubKey, err := parseScriptArg(*pkAsm, *pkHex)
	if err != nil {
		return err
	}
	flags, err := script.ParseScriptFlags(*flagsArg)
	if err != nil {
		return err
	}
	msg, err := hex.DecodeString(*message)
	if err != nil {
		return errors.Wrap(err, "decode message hex")
	}

	err = script.VerifyScript(scriptSig, scriptPubKey, flags, ecdsa.NewChecker(msg))
	renderVerdict(w, script.ErrorCodeOf(err))
	if err != nil {
		return scriptFailed
	}
	return nil
}

// runDisasm 实现 disasm 子命令
func runDisasm(args []string, w io.Writer) error {
	fs := newFlagSet("disasm", w)
	lines := fs.Bool("lines", false, "one opcode per line with offsets")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return errors.New("disasm takes exactly one hex script")
	}

	program, err := hex.DecodeString(fs.Arg(0))
	if err != nil {
		return errors.Wrap(err, "decode script hex")
	}

	if *lines {
		out, err := script.DisasmLines(program)
		for _, line := range out {
			fmt.Fprintln(w, line)
		}
		return err
	}

	text, err := script.DisasmString(program)
	fmt.Fprintln(w, text)
	return err
}

// runAsm 实现 asm 子命令
func runAsm(args []string, w io.Writer) error {
	if len(args) == 0 {
		return errors.New("asm takes a script")
	}
	program, err := script.ParseAsm(strings.Join(args, " "))
	if err != nil {
		return err
	}
	fmt.Fprintln(w, hex.EncodeToString(program))
	return nil
}

// runKeygen 实现 keygen 子命令
func runKeygen(args []string, w io.Writer) error {
	fs := newFlagSet("keygen", w)
	if err := fs.Parse(args); err != nil {
		return err
	}

	priv, err := ecdsa.GenerateKey()
	if err != nil {
		return err
	}
	pubKey := ecdsa.PubKeyBytes(priv)
	return pterm.DefaultTable.WithData(pterm.TableData{
		{"private", hex.EncodeToString(priv.Serialize())},
		{"public", hex.EncodeToString(pubKey)},
		{"hash160", hex.EncodeToString(script.Hash160(pubKey))},
	}).WithWriter(w).Render()
}

// runSign 实现 sign 子命令。给出 -data 时生成 OP_CHECKDATASIG 使用的签名。
func runSign(args []string, w io.Writer) error {
	fs := newFlagSet("sign", w)
	keyHex := fs.String("key", "", "hex private key")
	asm := fs.String("script", "", "script code in assembly form")
	hexScript := fs.String("hex", "", "script code in hex form")
	message := fs.String("message", "", "hex signing context")
	data := fs.String("data", "", "hex data to sign for OP_CHECKDATASIG")
	hashType := fs.Uint("hashtype", uint(script.SigHashAll), "signature hash type")
	if err := fs.Parse(args); err != nil {
		return err
	}

	rawKey, err := hex.DecodeString(*keyHex)
	if err != nil {
		return errors.Wrap(err, "decode key hex")
	}
	priv, err := ecdsa.PrivateKeyFromBytes(rawKey)
	if err != nil {
		return err
	}

	if *data != "" {
		raw, err := hex.DecodeString(*data)
		if err != nil {
			return errors.Wrap(err, "decode data hex")
		}
		fmt.Fprintln(w, hex.EncodeToString(ecdsa.SignData(priv, raw)))
		return nil
	}

	if *hashType > 0xff {
		return errors.Errorf("hash type %d does not fit in a byte", *hashType)
	}
	scriptCode, err := parseScriptArg(*asm, *hexScript)
	if err != nil {
		return err
	}
	msg, err := hex.DecodeString(*message)
	if err != nil {
		return errors.Wrap(err, "decode message hex")
	}
	fmt.Fprintln(w, hex.EncodeToString(ecdsa.Sign(priv, msg, scriptCode, byte(*hashType))))
	return nil
}

// runServe 实现 serve 子命令，阻塞直到收到退出信号
func runServe(args []string, w io.Writer) error {
	fs := newFlagSet("serve", w)
	path := fs.String("config", "", "TOML config file")
	listen := fs.String("listen", "", "listen address (overrides config)")
	db := fs.String("db", "", "verdict database dir (overrides config)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	opts, err := loadServeOptions(*path, *listen, *db)
	if err != nil {
		return err
	}
	if err := log.Setup(opts.GetLogLevel(), opts.GetLogFile()); err != nil {
		return err
	}

	pterm.Info.WithWriter(w).Printfln("dashscript %s listening on %s", config.Version, opts.GetListenAddr())
	app := fx.New(
		fx.NopLogger,
		fx.Supply(opts),
		verify.Module,
		api.Module,
	)
	if err := app.Err(); err != nil {
		return errors.Wrap(err, "build application")
	}
	app.Run()
	return nil
}

// loadServeOptions 读取配置文件，再应用命令行覆盖
func loadServeOptions(path, listen, db string) (*config.Options, error) {
	var overrides []config.Option
	if listen != "" {
		overrides = append(overrides, config.WithListenAddr(listen))
	}
	if db != "" {
		overrides = append(overrides, config.WithDatabasePath(db))
	}
	return config.Load(path, overrides...)
}
