package nlp

import (
	"fmt"
	"strings"

	"github.com/jdkato/prose/v2"
)

// commonNounTags are the Penn Treebank tags kept by CommonNouns. Proper nouns are excluded.
var commonNounTags = map[string]bool{
	"NN":  true,
	"NNS": true,
}

// CommonNouns POS-tags text and returns its common nouns in order of first appearance, lowercased
// and de-duplicated.
func CommonNouns(text string) ([]string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, nil
	}
	doc, err := prose.NewDocument(text,
		prose.WithExtraction(false),
		prose.WithSegmentation(false),
	)
	if err != nil {
		return nil, fmt.Errorf("pos tag: %w", err)
	}
	seen := map[string]bool{}
	var out []string
	for _, tok := range doc.Tokens() {
		if !commonNounTags[tok.Tag] {
			continue
		}
		w := strings.ToLower(strings.Trim(tok.Text, ".,!?;:\"'()"))
		if w == "" || seen[w] {
			continue
		}
		seen[w] = true
		out = append(out, w)
	}
	return out, nil
}

// UnionTerms merges lists keeping first-seen order; comparison is case-insensitive and blanks drop.
func UnionTerms(lists ...[]string) []string {
	seen := map[string]bool{}
	var out []string
	for _, list := range lists {
		for _, term := range list {
			term = strings.TrimSpace(term)
			key := strings.ToLower(term)
			if key == "" || seen[key] {
				continue
			}
			seen[key] = true
			out = append(out, term)
		}
	}
	return out
}
