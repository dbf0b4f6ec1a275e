package format

import "strings"

const mdV2Specials = "_*[]()~`>#+-=|{}.!"

var mdV2Replacer = buildEscaper(mdV2Specials)

var mdV1Replacer = buildEscaper("_*`[")

func buildEscaper(specials string) *strings.Replacer {
	pairs := make([]string, 0, len(specials)*2)
	for _, r := range specials {
		pairs = append(pairs, string(r), `\`+string(r))
	}
	return strings.NewReplacer(pairs...)
}

// EscapeMarkdownV2 escapes the characters Telegram treats as MarkdownV2
// syntax so arbitrary user text renders literally.
func EscapeMarkdownV2(text string) string {
	return mdV2Replacer.Replace(text)
}

// EscapeMarkdown escapes legacy Markdown (V1) special characters.
func EscapeMarkdown(text string) string {
	return mdV1Replacer.Replace(text)
}
