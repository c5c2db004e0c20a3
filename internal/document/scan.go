package document

import (
	"fmt"
	"strings"

	"golang.org/x/net/html"
)

// voidElements cannot have content, so they cannot be substitution targets.
var voidElements = map[string]bool{
	"area": true, "base": true, "br": true, "col": true, "embed": true,
	"hr": true, "img": true, "input": true, "link": true, "meta": true,
	"source": true, "track": true, "wbr": true,
}

// hasReference reports whether a tagName element has attr equal to value.
func hasReference(content, tagName, attr, value string) bool {
	z := html.NewTokenizer(strings.NewReader(content))
	for {
		switch z.Next() {
		case html.ErrorToken:
			return false
		case html.StartTagToken, html.SelfClosingTagToken:
			name, hasAttr := z.TagName()
			if string(name) != tagName {
				continue
			}
			if v, ok := attrValue(z, hasAttr, attr); ok && v == value {
				return true
			}
		}
	}
}

// findElementContent returns the byte range between the start and end tags
// of the element whose id attribute equals id.
func findElementContent(content, id string) (start, end int, err error) {
	z := html.NewTokenizer(strings.NewReader(content))

	offset := 0
	depth := 0
	target := ""

	for {
		tt := z.Next()
		size := len(z.Raw())

		switch tt {
		case html.ErrorToken:
			if target != "" {
				return 0, 0, fmt.Errorf("%w: #%s has no closing </%s>", ErrElementNotFound, id, target)
			}
			return 0, 0, fmt.Errorf("%w: #%s", ErrElementNotFound, id)

		case html.StartTagToken:
			name, hasAttr := z.TagName()
			tag := string(name)
			if target != "" {
				if tag == target {
					depth++
				}
				break
			}
			if v, ok := attrValue(z, hasAttr, "id"); ok && v == id {
				if voidElements[tag] {
					return 0, 0, fmt.Errorf("%w: <%s id=%q>", ErrNotContainer, tag, id)
				}
				target = tag
				depth = 1
				start = offset + size
			}

		case html.SelfClosingTagToken:
			if target != "" {
				break
			}
			name, hasAttr := z.TagName()
			if v, ok := attrValue(z, hasAttr, "id"); ok && v == id {
				return 0, 0, fmt.Errorf("%w: self-closing <%s id=%q>", ErrNotContainer, name, id)
			}

		case html.EndTagToken:
			if target == "" {
				break
			}
			name, _ := z.TagName()
			if string(name) == target {
				depth--
				if depth == 0 {
					return start, offset, nil
				}
			}
		}

		offset += size
	}
}

// attrValue scans the current tag's attributes for key.
func attrValue(z *html.Tokenizer, hasAttr bool, key string) (string, bool) {
	for hasAttr {
		k, v, more := z.TagAttr()
		if string(k) == key {
			return string(v), true
		}
		hasAttr = more
	}
	return "", false
}
