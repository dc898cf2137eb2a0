// 定义api错误返回

package api

// CODE提示信息
var statusText = map[int]string{
	0: "操作失败",
	1: "操作成功",
}

// ResultObject 是所有接口的响应结构
type ResultObject struct {
	Code    int         `json:"code"`    // 1 表示请求被处理，0 表示请求无效
	Message string      `json:"message"` // 提示信息
	Data    interface{} `json:"data"`    // 响应数据
}

// HandleResult 处理响应结果
func HandleResult(code int, result interface{}) ResultObject {
	return ResultObject{
		Code:    code,
		Message: statusText[code],
		Data:    result,
	}
}
