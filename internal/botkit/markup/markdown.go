package markup

import (
	"fmt"
	"strings"
)

// Спец символы MarkdownV2, которые телеграм требует экранировать в обычном тексте
var replacer = strings.NewReplacer(
	"_", "\\_", "*", "\\*", "[", "\\[", "]", "\\]",
	"(", "\\(", ")", "\\)", "~", "\\~", "`", "\\`",
	">", "\\>", "#", "\\#", "+", "\\+", "-", "\\-",
	"=", "\\=", "|", "\\|", "{", "\\{", "}", "\\}",
	".", "\\.", "!", "\\!", "\\", "\\\\",
)

// Внутри `code` и ссылок экранируются только эти
var codeReplacer = strings.NewReplacer("`", "\\`", "\\", "\\\\")
var linkReplacer = strings.NewReplacer(")", "\\)", "\\", "\\\\")

func EscapeForMarkdown(src string) string {
	return replacer.Replace(src)
}

func Bold(src string) string {
	return "*" + EscapeForMarkdown(src) + "*"
}

func Code(src string) string {
	return "`" + codeReplacer.Replace(src) + "`"
}

func Link(text, url string) string {
	return fmt.Sprintf("[%s](%s)", EscapeForMarkdown(text), linkReplacer.Replace(url))
}
