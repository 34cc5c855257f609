package parser

import (
	"regexp"
	"strings"
)

// 文本归一化正则，包级编译一次
var (
	controlCharsRe  = regexp.MustCompile("[\x00-\x08\x0b\x0c\x0e-\x1f]")
	wrappedHyphenRe = regexp.MustCompile(`(\w)-\n(\w)`)
	multiNewlineRe  = regexp.MustCompile(`\n{3,}`)
	multiSpaceRe    = regexp.MustCompile(`[ \t]{2,}`)
)

// CleanText 归一化PDF或粘贴来源的原始文本:
// 统一换行符、去除控制字符、修复换行断词、段落内单换行转为空格。
// 空段落分隔（连续两个换行）被保留，用于章节探测。
func CleanText(text string) string {
	if text == "" {
		return ""
	}

	t := strings.ReplaceAll(text, "\r\n", "\n")
	t = strings.ReplaceAll(t, "\r", "\n")
	t = controlCharsRe.ReplaceAllString(t, "")

	// 修复PDF提取常见的行尾连字断词: "distri-\nbuted" -> "distributed"
	t = wrappedHyphenRe.ReplaceAllString(t, "$1$2")

	// 3个以上连续换行压缩为段落分隔
	t = multiNewlineRe.ReplaceAllString(t, "\n\n")

	// 段落内的单换行转为空格，段落分隔用占位符保护
	t = strings.ReplaceAll(t, "\n\n", "\x00")
	t = strings.ReplaceAll(t, "\n", " ")
	t = strings.ReplaceAll(t, "\x00", "\n\n")

	t = multiSpaceRe.ReplaceAllString(t, " ")

	return strings.TrimSpace(t)
}
