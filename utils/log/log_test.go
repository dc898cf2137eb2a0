package log

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

// 测试Setup对日志级别的校验
func TestSetup(t *testing.T) {
	for level := range levels {
		assert.NoError(t, Setup(level, ""), level)
	}
	assert.Error(t, Setup("verbose", ""))
	assert.NoError(t, Setup("info", ""))
}

// 测试访问日志写入指定的输出
func TestNewAccessLogger(t *testing.T) {
	var buf bytes.Buffer
	l := NewAccessLogger(&buf)
	l.WithField("Status", 200).Info("request")
	assert.Contains(t, buf.String(), "Status=200")
	assert.Contains(t, buf.String(), "request")

	assert.NotNil(t, NewAccessLogger(nil))
}
