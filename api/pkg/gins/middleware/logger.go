package middleware

import (
	"fmt"
	"math"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// Logger 返回记录每个请求的访问日志中间件
func Logger(log *logrus.Logger) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		startTime := time.Now().UTC()

		// 处理请求
		ctx.Next()

		stopTime := time.Since(startTime)
		spendTime := fmt.Sprintf("%d ms", int(math.Ceil(float64(stopTime.Nanoseconds())/1000000.0)))
		dataSize := ctx.Writer.Size()
		if dataSize < 0 {
			dataSize = 0
		}

		log.WithFields(logrus.Fields{
			"Status":    ctx.Writer.Status(),
			"SpendTime": spendTime,
			"Ip":        ctx.ClientIP(),
			"Uri":       ctx.Request.RequestURI,
			"Method":    ctx.Request.Method,
			"Agent":     ctx.Request.UserAgent(),
			"Size":      dataSize,
		}).Info("request")
	}
}
