package notify

import "github.com/microcosm-cc/bluemonday"

// telegramPolicy allows only the HTML subset Telegram accepts in messages,
// everything else is stripped and stray angle brackets are escaped
var telegramPolicy = func() *bluemonday.Policy {
	p := bluemonday.NewPolicy()
	p.AllowElements("b", "strong", "i", "em", "u", "ins", "s", "strike", "del", "code", "pre", "tg-spoiler")
	p.AllowAttrs("href").OnElements("a")
	p.AllowURLSchemes("http", "https", "tg")
	return p
}()

// stripPolicy removes markup entirely, leaving escaped text content
var stripPolicy = bluemonday.StrictPolicy()

// SanitizeHTML makes arbitrary feed text safe for Telegram HTML parse mode
func SanitizeHTML(text string) string {
	return telegramPolicy.Sanitize(text)
}

// PlainText strips all markup from text, still safe for HTML parse mode
func PlainText(text string) string {
	return stripPolicy.Sanitize(text)
}
