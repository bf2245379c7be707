package registry

import (
	"io"
	"net/http"
	"net/url"

	html2md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/e14z/mcpcrawl/cache"
	"github.com/mackee/go-readability"
	"github.com/morikuni/failure/v2"
)

func fetchHTML(pageURL *url.URL, forceUpdate bool) (string, error) {
	htmlCache := cache.New[string]("html")

	return htmlCache.GetOrSet(pageURL.String(), func() (string, error) {
		req, err := http.NewRequest(http.MethodGet, pageURL.String(), nil)
		if err != nil {
			return "", failure.Wrap(err)
		}

		// Set user agent to avoid being blocked
		req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36")

		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			return "", failure.Wrap(err)
		}
		defer resp.Body.Close()

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return "", failure.Wrap(err)
		}

		return string(body), nil
	}, forceUpdate)
}

// FetchWebpage fetches a package homepage and converts it to markdown for
// the analysis text corpus, with cache support. When conversion fails the
// raw HTML is returned rather than nothing.
func FetchWebpage(pageURL *url.URL, forceUpdate bool) (string, error) {
	content, err := fetchHTML(pageURL, forceUpdate)
	if err != nil {
		return "", err
	}

	md, err := markdown(pageURL, content)
	if err != nil {
		return content, nil
	}

	return md, nil
}

func markdown(pageURL *url.URL, body string) (string, error) {
	// Convert HTML to Markdown using readability first
	article, err := readability.Extract(body, readability.DefaultOptions())
	if err != nil {
		return "", err
	}

	if article.Root != nil {
		return readability.ToMarkdown(article.Root), nil
	}

	// If readability fails, use html2md as a fallback
	converter := html2md.NewConverter(pageURL.Host, true, &html2md.Options{})
	md, err := converter.ConvertString(body)
	if err != nil {
		return "", err
	}
	return md, nil
}
