package httpclient

import "fmt"

// User-facing messages logged by the error handlers.
const (
	MessageRequestFailed = "请求出错"
	MessageNetworkError  = "网络请求错误"
	MessageNoResponse    = "服务器未响应"
)

var statusMessages = map[int]string{
	400: "请求错误",
	401: "未授权，请登录",
	403: "拒绝访问",
	404: "请求地址出错",
	408: "请求超时",
	500: "服务器内部错误",
	501: "服务未实现",
	502: "网关错误",
	503: "服务不可用",
	504: "网关超时",
	505: "HTTP版本不支持",
}

// StatusMessage maps an HTTP status to its human-readable message.
func StatusMessage(status int) string {
	if msg, ok := statusMessages[status]; ok {
		return msg
	}
	return fmt.Sprintf("未知错误%d", status)
}

func messageOrDefault(msg string) string {
	if msg == "" {
		return MessageRequestFailed
	}
	return msg
}
