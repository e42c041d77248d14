// Package corpus loads mining input from a JSONL article dump, stripping
// any HTML markup embedded in article content.
package corpus

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"

	"github.com/newsgraph/querycore/pkg/querycore/miner"
)

// record is the on-disk shape of one corpus line.
type record struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// LoadJSONL reads newline-delimited JSON article records from r, stripping
// HTML tags from content. A line that fails to parse is skipped with its
// error collected rather than aborting the whole load.
func LoadJSONL(r io.Reader) ([]miner.Article, []error) {
	var articles []miner.Article
	var warnings []error

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	line := 0
	for scanner.Scan() {
		line++
		raw := strings.TrimSpace(scanner.Text())
		if raw == "" {
			continue
		}

		var rec record
		if err := json.Unmarshal([]byte(raw), &rec); err != nil {
			warnings = append(warnings, fmt.Errorf("corpus: line %d: %w", line, err))
			continue
		}

		articles = append(articles, miner.Article{
			Title:   stripHTML(rec.Title),
			Content: stripHTML(rec.Content),
		})
	}
	if err := scanner.Err(); err != nil {
		warnings = append(warnings, fmt.Errorf("corpus: scan: %w", err))
	}

	return articles, warnings
}

// stripHTML extracts the text nodes of s, discarding any markup. Content
// with no markup passes through unchanged; unparseable content falls back
// to the original string rather than being dropped.
func stripHTML(s string) string {
	if !strings.ContainsRune(s, '<') {
		return s
	}

	doc, err := html.Parse(strings.NewReader(s))
	if err != nil {
		return s
	}

	var buf strings.Builder
	var extractText func(*html.Node)
	extractText = func(n *html.Node) {
		if n.Type == html.TextNode {
			buf.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			extractText(c)
		}
	}
	extractText(doc)

	return strings.TrimSpace(buf.String())
}
