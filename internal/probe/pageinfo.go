package probe

import (
	"context"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/net/html"

	"github.com/consolehq/sitemonitor/internal/domain"
)

// pageInfoBodyLimit caps how much of the page we read for metadata; the
// interesting tags live in <head>.
const pageInfoBodyLimit = 1 << 20

// PageInfoProbe fetches the target page and extracts its metadata
// (title, meta description/keywords, favicon, open-graph image). It is
// best-effort enrichment: a page that cannot be fetched or parsed must
// never make a reachable site look down.
type PageInfoProbe struct {
	Client    *http.Client
	UserAgent string
}

func NewPageInfoProbe(timeout time.Duration, userAgent string) *PageInfoProbe {
	return &PageInfoProbe{
		Client:    &http.Client{Timeout: timeout},
		UserAgent: userAgent,
	}
}

func (p *PageInfoProbe) Kind() Kind { return KindPageInfo }

func (p *PageInfoProbe) Run(ctx context.Context, target string) Outcome {
	start := time.Now()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return failedOutcome(err)
	}
	if p.UserAgent != "" {
		req.Header.Set("User-Agent", p.UserAgent)
	}

	resp, err := p.Client.Do(req)
	if err != nil {
		return failedOutcome(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return Outcome{State: StateFailed, Err: "page fetch returned " + resp.Status}
	}

	info := parsePage(io.LimitReader(resp.Body, pageInfoBodyLimit))
	info.LoadTimeMS = time.Since(start).Seconds() * 1000
	if info.Charset == "" {
		info.Charset = charsetFromContentType(resp.Header.Get("Content-Type"))
	}
	return Outcome{State: StateSuccess, PageInfo: info}
}

func parsePage(r io.Reader) *domain.PageInfoResult {
	info := &domain.PageInfoResult{}
	z := html.NewTokenizer(r)
	inTitle := false

	for {
		tt := z.Next()
		switch tt {
		case html.ErrorToken:
			// io.EOF or malformed markup; keep whatever we got
			return info
		case html.TextToken:
			if inTitle && info.Title == "" {
				info.Title = strings.TrimSpace(string(z.Text()))
			}
		case html.StartTagToken, html.SelfClosingTagToken:
			tok := z.Token()
			switch tok.Data {
			case "title":
				inTitle = tt == html.StartTagToken
			case "html":
				if v := attr(tok, "lang"); v != "" {
					info.Language = v
				}
			case "meta":
				applyMeta(info, tok)
			case "link":
				rel := strings.ToLower(attr(tok, "rel"))
				if (rel == "icon" || rel == "shortcut icon") && info.Favicon == "" {
					info.Favicon = attr(tok, "href")
				}
			case "body":
				// metadata lives in <head>; stop early
				return info
			}
		case html.EndTagToken:
			if tok := z.Token(); tok.Data == "title" {
				inTitle = false
			}
		}
	}
}

func applyMeta(info *domain.PageInfoResult, tok html.Token) {
	name := strings.ToLower(attr(tok, "name"))
	prop := strings.ToLower(attr(tok, "property"))
	content := attr(tok, "content")

	switch {
	case name == "description":
		info.Description = content
	case name == "keywords":
		for _, k := range strings.Split(content, ",") {
			if k = strings.TrimSpace(k); k != "" {
				info.Keywords = append(info.Keywords, k)
			}
		}
	case name == "generator":
		info.Generator = content
	case prop == "og:image":
		info.OGImage = content
	}
	if cs := attr(tok, "charset"); cs != "" {
		info.Charset = strings.ToLower(cs)
	}
}

func attr(tok html.Token, key string) string {
	for _, a := range tok.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func charsetFromContentType(ct string) string {
	for _, part := range strings.Split(ct, ";") {
		part = strings.TrimSpace(strings.ToLower(part))
		if cs, ok := strings.CutPrefix(part, "charset="); ok {
			return cs
		}
	}
	return ""
}
