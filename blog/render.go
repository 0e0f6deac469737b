package blog

import (
	"fmt"
	"regexp"
)

// 1x1 transparent gif served while the real image loads lazily.
const lazyPlaceholder = "data:image/gif;base64,R0lGODlhAQABAIAAAP///wAAACH5BAEAAAAALAAAAAABAAEAAAICRAEAOw=="

var (
	imgSrcRe  = regexp.MustCompile(`(?i)(<img[^>]*?)src=["']([^"']*)["']`)
	youtubeRe = regexp.MustCompile(`\[youtube:(.*?)\]`)
)

const youtubeEmbed = `<div class="video"><iframe width="560" height="315" title="YouTube embed" src="about:blank" data-src="https://www.youtube-nocookie.com/embed/%s?modestbranding=1&amp;hd=1&amp;rel=0&amp;theme=light" allowfullscreen></iframe></div>`

// RenderContent prepares stored post HTML for display: every <img> gets a
// placeholder src with the real URL moved to data-src for lazy loading, and
// [youtube:ID] tokens expand into privacy-friendly embed iframes. Pure
// string transform, no I/O.
func RenderContent(html string) string {
	if html == "" {
		return html
	}
	result := imgSrcRe.ReplaceAllString(html,
		`${1}src="`+lazyPlaceholder+`" data-src="${2}"`)
	result = youtubeRe.ReplaceAllStringFunc(result, func(m string) string {
		id := youtubeRe.FindStringSubmatch(m)[1]
		return fmt.Sprintf(youtubeEmbed, id)
	})
	return result
}
