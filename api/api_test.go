package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx"
	"go.uber.org/fx/fxtest"

	"github.com/tomthoros/dash/config"
	"github.com/tomthoros/dash/script"
	"github.com/tomthoros/dash/utils/log"
	"github.com/tomthoros/dash/verify"
)

// testResponse 是解码后的响应
type testResponse struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// newTestRouter 创建不带缓存和存储的路由
func newTestRouter(t *testing.T) http.Handler {
	opts, err := config.New()
	require.NoError(t, err)
	return NewRouter(verify.NewService(opts, nil, nil), log.NewAccessLogger(io.Discard))
}

// do 发送请求并解码响应
func do(t *testing.T, h http.Handler, method, path string, payload interface{}) (int, testResponse) {
	var reader io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	var resp testResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), w.Body.String())
	return w.Code, resp
}

// decodeScript 解码执行与验证接口的响应数据
func decodeScript(t *testing.T, resp testResponse) scriptResponse {
	var sr scriptResponse
	require.NoError(t, json.Unmarshal(resp.Data, &sr))
	return sr
}

// 测试/v1/evaluate接口
func TestEvaluate(t *testing.T) {
	h := newTestRouter(t)

	status, resp := do(t, h, http.MethodPost, "/v1/evaluate", body{
		"stack":  []string{"6162", "6364"},
		"script": "CAT",
	})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, 1, resp.Code)
	sr := decodeScript(t, resp)
	assert.True(t, sr.Success)
	assert.Equal(t, "OK", sr.Error)
	assert.Empty(t, sr.Message)
	assert.Equal(t, []string{"61626364"}, sr.Stack)
	assert.Equal(t, "engine", sr.Source)

	// 脚本失败仍是成功处理的请求
	status, resp = do(t, h, http.MethodPost, "/v1/evaluate", body{
		"stack":      []string{"6162", "03"},
		"script_hex": fmt.Sprintf("%02x", script.OP_SPLIT),
	})
	require.Equal(t, http.StatusOK, status)
	sr = decodeScript(t, resp)
	assert.False(t, sr.Success)
	assert.Equal(t, "SPLIT_RANGE", sr.Error)
	assert.Equal(t, script.ErrInvalidSplitRange.Message(), sr.Message)

	// 显式标志覆盖默认值
	_, resp = do(t, h, http.MethodPost, "/v1/evaluate", body{
		"stack":  []string{"6162", "6364"},
		"script": "CAT",
		"flags":  "STANDARD",
	})
	assert.Equal(t, "DISABLED_OPCODE", decodeScript(t, resp).Error)
}

// 测试/v1/evaluate的参数错误
func TestEvaluateBadRequest(t *testing.T) {
	h := newTestRouter(t)

	tests := []struct {
		name string
		req  interface{}
	}{
		{"bad asm", body{"script": "NOSUCHOP"}},
		{"bad hex script", body{"script_hex": "zz"}},
		{"bad flags", body{"script": "1", "flags": "BOGUS"}},
		{"bad stack", body{"script": "1", "stack": []string{"x"}}},
		{"bad message", body{"script": "1", "message": "q"}},
		{"bad json", "not an object"},
	}

	for _, tt := range tests {
		status, resp := do(t, h, http.MethodPost, "/v1/evaluate", tt.req)
		assert.Equal(t, http.StatusBadRequest, status, tt.name)
		assert.Equal(t, 0, resp.Code, tt.name)
	}
}

// 测试/v1/verify接口
func TestVerify(t *testing.T) {
	h := newTestRouter(t)

	status, resp := do(t, h, http.MethodPost, "/v1/verify", body{
		"script_sig":    "'ab' 'cd'",
		"script_pubkey": "CAT 'abcd' EQUAL",
		"flags":         "P2SH,DIP0020_OPCODES",
	})
	require.Equal(t, http.StatusOK, status)
	sr := decodeScript(t, resp)
	assert.True(t, sr.Success)
	assert.Empty(t, sr.Stack)

	_, resp = do(t, h, http.MethodPost, "/v1/verify", body{
		"script_sig":    "1",
		"script_pubkey": "",
		"flags":         "CLEANSTACK",
	})
	sr = decodeScript(t, resp)
	assert.False(t, sr.Success)
	assert.Equal(t, "INVALID_FLAGS", sr.Error)

	status, _ = do(t, h, http.MethodPost, "/v1/verify", body{"script_pubkey_hex": "0"})
	assert.Equal(t, http.StatusBadRequest, status)
}

// 测试/v1/disasm接口
func TestDisasm(t *testing.T) {
	h := newTestRouter(t)

	status, resp := do(t, h, http.MethodGet, "/v1/disasm?script=017e7e", nil)
	require.Equal(t, http.StatusOK, status)
	var data struct {
		Asm   string   `json:"asm"`
		Lines []string `json:"lines"`
	}
	require.NoError(t, json.Unmarshal(resp.Data, &data))
	assert.Equal(t, "7e OP_CAT", data.Asm)
	assert.Equal(t, []string{"0000: OP_DATA_1 0x7e", "0002: OP_CAT"}, data.Lines)

	status, _ = do(t, h, http.MethodGet, "/v1/disasm?script=zz", nil)
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = do(t, h, http.MethodGet, "/v1/disasm?script=4c", nil)
	assert.Equal(t, http.StatusBadRequest, status)
}

// 测试/v1/flags接口与未知路由
func TestFlagsAndNotFound(t *testing.T) {
	h := newTestRouter(t)

	status, resp := do(t, h, http.MethodGet, "/v1/flags", nil)
	require.Equal(t, http.StatusOK, status)
	var data struct {
		Flags   []string `json:"flags"`
		Default string   `json:"default"`
	}
	require.NoError(t, json.Unmarshal(resp.Data, &data))
	assert.Contains(t, data.Flags, "DIP0020_OPCODES")
	assert.Contains(t, data.Default, "DIP0020_OPCODES")

	status, resp = do(t, h, http.MethodGet, "/v1/nope", nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, 0, resp.Code)
}

// 测试fx应用启动后通过网络提供服务
func TestServerModule(t *testing.T) {
	opts, err := config.New(config.WithListenAddr("127.0.0.1:0"))
	require.NoError(t, err)

	var srv *Server
	app := fxtest.New(t,
		fx.Supply(opts),
		verify.Module,
		Module,
		fx.Populate(&srv),
	)
	app.RequireStart()
	defer app.RequireStop()

	require.NotNil(t, srv.Addr())
	url := fmt.Sprintf("http://%s/v1/flags", srv.Addr())
	req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, url, nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

// body 是请求体的简写
type body map[string]interface{}
