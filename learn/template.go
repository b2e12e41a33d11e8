package learn

import (
	"net/url"
	"path"
	"regexp"
	"strings"
)

// Placeholder tokens used in generalized URL templates.
const (
	IDToken   = "{id}"
	SlugToken = "{slug}"
)

var (
	digitRun  = regexp.MustCompile(`\d+`)
	allDigits = regexp.MustCompile(`^\d+$`)
	hasLetter = regexp.MustCompile(`[A-Za-z]`)
	shortExt  = regexp.MustCompile(`^\.[A-Za-z]{2,5}$`)
)

// GeneralizeURL turns a product URL into a path template: numeric segments
// and digit runs become {id}, the trailing slug segment becomes {slug}.
//
//	https://shop.com/products/blue-shoe-123   → /products/{slug}
//	https://shop.com/p/98765                  → /p/{id}
//	https://shop.com/c-12/item-55.html        → /c-{id}/{slug}.html
func GeneralizeURL(rawURL string) string {
	p := rawURL
	if u, err := url.Parse(rawURL); err == nil && (u.Scheme != "" || u.Host != "") {
		p = u.Path
	}
	if p == "" {
		return "/"
	}

	trailing := strings.HasSuffix(p, "/")
	segments := strings.Split(strings.Trim(p, "/"), "/")

	last := len(segments) - 1
	for i, seg := range segments {
		switch {
		case seg == "":
		case allDigits.MatchString(seg):
			segments[i] = IDToken
		case i == last && hasLetter.MatchString(seg):
			ext := path.Ext(seg)
			if !shortExt.MatchString(ext) {
				ext = ""
			}
			segments[i] = SlugToken + ext
		default:
			segments[i] = digitRun.ReplaceAllString(seg, IDToken)
		}
	}

	out := "/" + strings.Join(segments, "/")
	if trailing && out != "/" {
		out += "/"
	}
	return out
}

// MostFrequentTemplate generalizes every URL and returns the template seen
// most often. Ties go to the template seen first.
func MostFrequentTemplate(urls []string) string {
	counts := make(map[string]int)
	var order []string
	for _, u := range urls {
		t := GeneralizeURL(u)
		if counts[t] == 0 {
			order = append(order, t)
		}
		counts[t]++
	}

	best := ""
	for _, t := range order {
		if counts[t] > counts[best] {
			best = t
		}
	}
	return best
}

// TemplateRegexp compiles a template into a regexp matching absolute URLs
// whose path fits the template.
func TemplateRegexp(template string) (*regexp.Regexp, error) {
	var b strings.Builder
	b.WriteString(`^https?://[^/]+`)
	rest := template
	for rest != "" {
		i := strings.Index(rest, "{")
		if i < 0 {
			b.WriteString(regexp.QuoteMeta(rest))
			break
		}
		b.WriteString(regexp.QuoteMeta(rest[:i]))
		rest = rest[i:]
		switch {
		case strings.HasPrefix(rest, IDToken):
			b.WriteString(`\d+`)
			rest = rest[len(IDToken):]
		case strings.HasPrefix(rest, SlugToken):
			b.WriteString(`[^/]+?`)
			rest = rest[len(SlugToken):]
		default:
			b.WriteString(regexp.QuoteMeta("{"))
			rest = rest[1:]
		}
	}
	b.WriteString(`(?:[?#].*)?$`)
	return regexp.Compile(b.String())
}
