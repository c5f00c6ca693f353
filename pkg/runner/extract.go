package runner

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/entrhq/wizardrunner/pkg/wizard"
)

// maxResultTextLength bounds the extracted text so results stay well
// inside downstream payload limits.
const maxResultTextLength = 4000

// extractResults reads the terminal page per the wizard's declared
// results rule. A rule with a selector limits extraction to that
// element; otherwise the whole page body is used.
func extractResults(html, pageURL, pageTitle string, rule *wizard.ResultsRule) (*Results, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("failed to parse results page: %w", err)
	}

	results := &Results{
		PageURL:   pageURL,
		PageTitle: pageTitle,
	}

	doc.Find("h1, h2, h3").Each(func(_ int, s *goquery.Selection) {
		if heading := collapseWhitespace(s.Text()); heading != "" {
			results.Headings = append(results.Headings, heading)
		}
	})

	var selection *goquery.Selection
	if rule != nil && rule.Selector != "" {
		selection = doc.Find(rule.Locator())
		if selection.Length() == 0 {
			return nil, fmt.Errorf("results selector %q matched nothing", rule.Locator())
		}
	} else {
		selection = doc.Find("body")
	}

	text := collapseWhitespace(selection.Text())
	if len(text) > maxResultTextLength {
		text = text[:maxResultTextLength]
	}
	results.Text = text

	return results, nil
}

// collapseWhitespace trims and squeezes runs of whitespace to single
// spaces, since rendered page text is full of layout newlines.
func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
