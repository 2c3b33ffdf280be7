package language

import (
	"strings"
	"unicode"
)

// Code 语言码（ISO-639）或合成码 mixed / auto。
type Code string

const (
	Auto  Code = "auto"
	Mixed Code = "mixed"

	English   Code = "en"
	Hindi     Code = "hi"
	Telugu    Code = "te"
	Tamil     Code = "ta"
	Bengali   Code = "bn"
	Marathi   Code = "mr"
	Gujarati  Code = "gu"
	Kannada   Code = "kn"
	Malayalam Code = "ml"
	Odia      Code = "or"
	Punjabi   Code = "pa"
	Assamese  Code = "as"
	Urdu      Code = "ur"
)

// Router 语言路由器。纯函数，无状态，同一输入总是得到同一结果。
type Router struct{}

// NewRouter 创建路由器。
func NewRouter() *Router {
	return &Router{}
}

// Resolve 将 (hint, text) 解析为最终语言码。
//
//   - 具体语言码的 hint 直接采信（翻译是占位行为，脚本分歧不改变路由）
//   - hint == mixed 时无条件返回 mixed（用户声明的意图优先）
//   - hint == auto 时按脚本检测 + 转写关键词分类
//
// 结果永远非空，也永远不是 auto。
func (r *Router) Resolve(hint Code, text string) Code {
	switch hint {
	case Mixed:
		return Mixed
	case Auto, "":
		return Detect(text)
	default:
		return hint
	}
}

// Detect 对文本做脚本检测与转写关键词分类。空文本或纯标点/数字
// 文本返回 en。
func Detect(text string) Code {
	var (
		present  []Code
		hasLatin bool
	)
	seen := make(map[Code]bool)

	for _, c := range text {
		if !hasLatin && unicode.IsLetter(c) && c < 0x0080 {
			hasLatin = true
			continue
		}
		for _, sr := range scriptRanges {
			if c >= sr.Lo && c <= sr.Hi {
				if !seen[sr.Code] {
					seen[sr.Code] = true
					present = append(present, sr.Code)
				}
				break
			}
		}
	}

	scripts := len(present)
	if hasLatin {
		scripts++
	}

	// 多脚本共存即 code-mixing
	if scripts >= 2 {
		return Mixed
	}

	// 拉丁字母 + 某种语言的转写关键词也视为 code-mixing
	if hasLatin {
		lower := strings.ToLower(text)
		for _, words := range translitKeywords {
			for _, w := range words {
				if strings.Contains(lower, w) {
					return Mixed
				}
			}
		}
	}

	if len(present) == 1 {
		return present[0]
	}
	return English
}

// InstructionClause 返回该语言对应的 system instruction 从句。
// mixed 有专属从句，未知语言码退回英文。
func InstructionClause(code Code) string {
	if code == Mixed {
		return mixedClause
	}
	if clause, ok := instructionClauses[code]; ok {
		return clause
	}
	return "Respond in English."
}

// Supported 判断是否为受支持的语言码（不含 auto）。
func Supported(code Code) bool {
	if code == English || code == Mixed {
		return true
	}
	_, ok := instructionClauses[code]
	return ok
}
