package assistant

import (
	"krishisahay/internal/domain/language"
)

// Translate 语言间文本转换。mixed 输入原样返回（生成式后端自行
// 处理 code-mixing）。当前为占位直通实现，接入真正的翻译服务时
// 只需替换此函数。
func Translate(text string, from, to language.Code) string {
	if from == to || from == language.Mixed {
		return text
	}
	return text
}
