// Package api 提供脚本执行与验证的 HTTP JSON 接口。
package api

import (
	"encoding/hex"
	"net/http"
	"runtime/debug"

	logging "github.com/dep2p/log"
	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/tomthoros/dash/api/pkg/gins/middleware"
	"github.com/tomthoros/dash/script"
	"github.com/tomthoros/dash/verify"
)

var logger = logging.Logger("api")

const version = "v1"

// evaluateRequest 是 /v1/evaluate 的请求体
type evaluateRequest struct {
	Stack     []string `json:"stack"`      // 十六进制编码的初始栈，栈底在前
	Script    string   `json:"script"`     // 汇编形式的脚本
	ScriptHex string   `json:"script_hex"` // 十六进制形式的脚本，优先于 script
	Flags     string   `json:"flags"`      // 标志名称列表，为空时使用服务的默认标志
	Message   string   `json:"message"`    // 十六进制编码的签名上下文
}

// verifyRequest 是 /v1/verify 的请求体
type verifyRequest struct {
	ScriptSig       string `json:"script_sig"`
	ScriptSigHex    string `json:"script_sig_hex"`
	ScriptPubKey    string `json:"script_pubkey"`
	ScriptPubKeyHex string `json:"script_pubkey_hex"`
	Flags           string `json:"flags"`
	Message         string `json:"message"`
}

// scriptResponse 是执行与验证接口的响应数据
type scriptResponse struct {
	Success bool     `json:"success"`
	Error   string   `json:"error"`   // 错误标签，成功时为 "OK"
	Message string   `json:"message"` // 错误说明
	Stack   []string `json:"stack"`   // 十六进制编码的最终栈
	Source  string   `json:"source"`  // 结论来源：engine、cache 或 store
}

func recover400(c *gin.Context) {
	c.JSON(http.StatusNotFound, HandleResult(0, "接口地址不存在,请确认后再重试"))
}

func recover500(c *gin.Context) {
	defer func() {
		if r := recover(); r != nil {
			logger.Errorf("panic: %v\n%s", r, debug.Stack())
			c.AbortWithStatusJSON(http.StatusInternalServerError, HandleResult(0, "接口异常,请确认后再重试"))
		}
	}()
	c.Next()
}

// badRequest 返回请求无效的响应
func badRequest(ctx *gin.Context, err error) {
	ctx.JSON(http.StatusBadRequest, HandleResult(0, err.Error()))
}

// parseScript 解析脚本：十六进制形式优先，否则按汇编解析
func parseScript(asm, hexStr string) ([]byte, error) {
	if hexStr != "" {
		b, err := hex.DecodeString(hexStr)
		return b, errors.Wrap(err, "decode script hex")
	}
	b, err := script.ParseAsm(asm)
	return b, errors.Wrap(err, "parse script")
}

// parseFlags 解析标志，为空时使用默认值
func parseFlags(s string, def script.ScriptFlags) (script.ScriptFlags, error) {
	if s == "" {
		return def, nil
	}
	flags, err := script.ParseScriptFlags(s)
	return flags, errors.Wrap(err, "parse flags")
}

// parseMessage 解析十六进制编码的签名上下文
func parseMessage(s string) ([]byte, error) {
	b, err := hex.DecodeString(s)
	return b, errors.Wrap(err, "decode message hex")
}

// newResponse 把服务的结论转换为响应数据
func newResponse(r *verify.Result) *scriptResponse {
	resp := &scriptResponse{
		Success: r.Success,
		Error:   r.Code.Tag(),
		Stack:   []string{},
		Source:  r.Source,
	}
	if !r.Success {
		resp.Message = r.Code.Message()
	}
	for _, item := range r.Stack {
		resp.Stack = append(resp.Stack, hex.EncodeToString(item))
	}
	return resp
}

// handler 持有路由处理函数使用的服务
type handler struct {
	svc *verify.Service
}

// evaluate 处理 POST /v1/evaluate
func (h *handler) evaluate(ctx *gin.Context) {
	var req evaluateRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		badRequest(ctx, errors.Wrap(err, "参数解析错误"))
		return
	}

	program, err := parseScript(req.Script, req.ScriptHex)
	if err != nil {
		badRequest(ctx, err)
		return
	}
	flags, err := parseFlags(req.Flags, h.svc.DefaultFlags())
	if err != nil {
		badRequest(ctx, err)
		return
	}
	message, err := parseMessage(req.Message)
	if err != nil {
		badRequest(ctx, err)
		return
	}
	stack := make([][]byte, len(req.Stack))
	for i, s := range req.Stack {
		if stack[i], err = hex.DecodeString(s); err != nil {
			badRequest(ctx, errors.Wrapf(err, "decode stack item %d", i))
			return
		}
	}

	r, err := h.svc.Evaluate(ctx.Request.Context(), &verify.EvalRequest{
		Stack:   stack,
		Script:  program,
		Flags:   flags,
		Message: message,
	})
	if err != nil {
		ctx.JSON(http.StatusServiceUnavailable, HandleResult(0, err.Error()))
		return
	}
	ctx.JSON(http.StatusOK, HandleResult(1, newResponse(r)))
}

// verify 处理 POST /v1/verify
func (h *handler) verify(ctx *gin.Context) {
	var req verifyRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		badRequest(ctx, errors.Wrap(err, "参数解析错误"))
		return
	}

	scriptSig, err := parseScript(req.ScriptSig, req.ScriptSigHex)
	if err != nil {
		badRequest(ctx, err)
		return
	}
	scriptPubKey, err := parseScript(req.ScriptPubKey, req.ScriptPubKeyHex)
	if err != nil {
		badRequest(ctx, err)
		return
	}
	flags, err := parseFlags(req.Flags, h.svc.DefaultFlags())
	if err != nil {
		badRequest(ctx, err)
		return
	}
	message, err := parseMessage(req.Message)
	if err != nil {
		badRequest(ctx, err)
		return
	}

	r, err := h.svc.Verify(ctx.Request.Context(), &verify.VerifyRequest{
		ScriptSig:    scriptSig,
		ScriptPubKey: scriptPubKey,
		Flags:        flags,
		Message:      message,
	})
	if err != nil {
		ctx.JSON(http.StatusServiceUnavailable, HandleResult(0, err.Error()))
		return
	}
	ctx.JSON(http.StatusOK, HandleResult(1, newResponse(r)))
}

// disasm 处理 GET /v1/disasm?script=<hex>
func (h *handler) disasm(ctx *gin.Context) {
	program, err := hex.DecodeString(ctx.Query("script"))
	if err != nil {
		badRequest(ctx, errors.Wrap(err, "decode script hex"))
		return
	}

	text, err := script.DisasmString(program)
	if err != nil {
		badRequest(ctx, errors.Wrapf(err, "disassemble %q", text))
		return
	}
	lines, _ := script.DisasmLines(program)

	ctx.JSON(http.StatusOK, HandleResult(1, gin.H{
		"asm":   text,
		"lines": lines,
	}))
}

// flags 处理 GET /v1/flags
func (h *handler) flags(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, HandleResult(1, gin.H{
		"flags":   script.ScriptFlagNames(),
		"default": h.svc.DefaultFlags().String(),
	}))
}

// NewRouter 创建 API 路由
//
// 参数:
//   - svc: 验证服务
//   - accessLog: 访问日志，为 nil 时输出到标准输出
//
// 返回值:
//   - *gin.Engine: 路由
func NewRouter(svc *verify.Service, accessLog *logrus.Logger) *gin.Engine {
	if accessLog == nil {
		accessLog = logrus.StandardLogger()
	}

	r := gin.New()

	// log中间件
	r.Use(middleware.Logger(accessLog))

	// 500错误
	r.Use(recover500)

	//处理404 请求
	r.NoRoute(recover400)

	h := &handler{svc: svc}
	v1 := r.Group(version)
	{
		v1.POST("/evaluate", h.evaluate)
		v1.POST("/verify", h.verify)
		v1.GET("/disasm", h.disasm)
		v1.GET("/flags", h.flags)
	}

	return r
}
