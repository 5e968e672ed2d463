package partselect

import (
	"net/url"
	"regexp"
	"sort"
	"strings"

	"appliancebot/internal/domain"

	"golang.org/x/net/html"
)

// HTML parsing for PartSelect catalog pages. Parsing tolerates missing
// optional fields: a part without a listed price gets the unavailable
// sentinel instead of failing the whole fetch.

func parseDocument(markup string) (*html.Node, error) {
	return html.Parse(strings.NewReader(markup))
}

var (
	partSelectNumberPattern   = regexp.MustCompile(`PartSelect\s*#:\s*([A-Za-z0-9-]+)`)
	manufacturerNumberPattern = regexp.MustCompile(`Manufacturer\s*#:\s*([A-Za-z0-9-]+)`)
	pricePattern              = regexp.MustCompile(`\$\s*[\d,]+(?:\.\d{2})?`)
	docSizePattern            = regexp.MustCompile(`\(([\d.]+\s*[KMG]B)\)`)
)

// parseParts extracts part records from a parts listing page. Records live
// in elements carrying the "nf__part" class with the title link inside.
func parseParts(doc *html.Node, baseURL string) []domain.Part {
	var parts []domain.Part

	for _, container := range findAll(doc, func(n *html.Node) bool {
		return n.Type == html.ElementNode && hasClassToken(n, "nf__part")
	}) {
		title := findFirst(container, func(n *html.Node) bool {
			return n.Type == html.ElementNode && n.Data == "a" && hasClassSubstring(n, "title")
		})
		if title == nil {
			continue
		}

		part := domain.Part{
			Name:  textContent(title),
			URL:   resolveURL(baseURL, attr(title, "href")),
			Price: domain.PriceUnavailable,
		}

		containerText := textContent(container)
		if m := partSelectNumberPattern.FindStringSubmatch(containerText); m != nil {
			part.PartSelectNumber = m[1]
		}
		if m := manufacturerNumberPattern.FindStringSubmatch(containerText); m != nil {
			part.ManufacturerNumber = m[1]
		}

		if priceNode := findFirst(container, func(n *html.Node) bool {
			return n.Type == html.ElementNode && hasClassSubstring(n, "price")
		}); priceNode != nil {
			if m := pricePattern.FindString(textContent(priceNode)); m != "" {
				part.Price = strings.ReplaceAll(m, " ", "")
			}
		}

		if descNode := findFirst(container, func(n *html.Node) bool {
			return n.Type == html.ElementNode &&
				(hasClassSubstring(n, "description") || hasClassSubstring(n, "part-note"))
		}); descNode != nil {
			part.Description = textContent(descNode)
		}

		if part.Name != "" {
			parts = append(parts, part)
		}
	}

	return parts
}

// rankParts orders parts by relevance to the search query: query terms in
// the name score highest, mounting accessories are pushed down, and more
// complete records win ties.
func rankParts(parts []domain.Part, query string) []domain.Part {
	terms := strings.Fields(strings.ToLower(query))

	score := func(p domain.Part) int {
		s := 0
		name := strings.ToLower(p.Name)
		for _, t := range terms {
			if strings.Contains(name, t) {
				s += 5
			}
		}
		for _, accessory := range []string{"base", "housing", "cap", "mount"} {
			if strings.Contains(name, accessory) {
				s -= 3
			}
		}
		if p.PartSelectNumber != "" {
			s++
		}
		if p.Price != domain.PriceUnavailable {
			s++
		}
		if p.Description != "" {
			s++
		}
		return s
	}

	sort.SliceStable(parts, func(i, j int) bool {
		return score(parts[i]) > score(parts[j])
	})
	return parts
}

// parseManuals extracts downloadable document links from a model page:
// anchors pointing at PDFs or carrying manual/guide wording.
func parseManuals(doc *html.Node, baseURL string) []domain.ManualDoc {
	var manuals []domain.ManualDoc
	seen := make(map[string]bool)

	for _, anchor := range findAll(doc, func(n *html.Node) bool {
		if n.Type != html.ElementNode || n.Data != "a" {
			return false
		}
		href := strings.ToLower(attr(n, "href"))
		label := strings.ToLower(textContent(n))
		return strings.Contains(href, ".pdf") ||
			strings.Contains(label, "manual") || strings.Contains(label, "guide")
	}) {
		href := attr(anchor, "href")
		if href == "" || seen[href] {
			continue
		}
		seen[href] = true

		label := strings.TrimSpace(textContent(anchor))
		doc := domain.ManualDoc{
			Title:   strings.TrimSpace(docSizePattern.ReplaceAllString(label, "")),
			DocType: classifyDocType(label),
			URL:     resolveURL(baseURL, href),
		}
		if m := docSizePattern.FindStringSubmatch(label); m != nil {
			doc.Size = m[1]
		}
		if doc.Title != "" {
			manuals = append(manuals, doc)
		}
	}

	return manuals
}

func classifyDocType(label string) string {
	lower := strings.ToLower(label)
	switch {
	case strings.Contains(lower, "install"):
		return "Installation Manual"
	case strings.Contains(lower, "care"):
		return "Care Guide"
	case strings.Contains(lower, "owner"), strings.Contains(lower, "use"):
		return "Owner's Manual"
	default:
		return "Manual"
	}
}

// parseSymptoms extracts symptom troubleshooting links from a model page.
func parseSymptoms(doc *html.Node, baseURL string) []domain.SymptomLink {
	var symptoms []domain.SymptomLink
	seen := make(map[string]bool)

	for _, anchor := range findAll(doc, func(n *html.Node) bool {
		return n.Type == html.ElementNode && n.Data == "a" &&
			strings.Contains(attr(n, "href"), "/Symptoms/")
	}) {
		href := attr(anchor, "href")
		label := strings.TrimSpace(textContent(anchor))
		if label == "" || seen[href] {
			continue
		}
		seen[href] = true
		symptoms = append(symptoms, domain.SymptomLink{
			Symptom: label,
			URL:     resolveURL(baseURL, href),
		})
	}

	return symptoms
}

// Node helpers

func attr(n *html.Node, name string) string {
	for _, a := range n.Attr {
		if a.Key == name {
			return a.Val
		}
	}
	return ""
}

// hasClassToken matches a whole class name.
func hasClassToken(n *html.Node, class string) bool {
	for _, c := range strings.Fields(attr(n, "class")) {
		if c == class {
			return true
		}
	}
	return false
}

// hasClassSubstring matches a fragment inside any class name, which keeps
// the parser working across the catalog's BEM suffix variations.
func hasClassSubstring(n *html.Node, fragment string) bool {
	for _, c := range strings.Fields(attr(n, "class")) {
		if strings.Contains(c, fragment) {
			return true
		}
	}
	return false
}

func findAll(root *html.Node, pred func(*html.Node) bool) []*html.Node {
	var nodes []*html.Node
	var traverse func(*html.Node)
	traverse = func(n *html.Node) {
		if pred(n) {
			nodes = append(nodes, n)
			return // do not descend into a match
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			traverse(c)
		}
	}
	traverse(root)
	return nodes
}

func findFirst(root *html.Node, pred func(*html.Node) bool) *html.Node {
	var found *html.Node
	var traverse func(*html.Node) bool
	traverse = func(n *html.Node) bool {
		if pred(n) {
			found = n
			return true
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if traverse(c) {
				return true
			}
		}
		return false
	}
	traverse(root)
	return found
}

func textContent(n *html.Node) string {
	var sb strings.Builder
	var traverse func(*html.Node)
	traverse = func(node *html.Node) {
		if node.Type == html.TextNode {
			sb.WriteString(node.Data)
			sb.WriteString(" ")
		}
		for c := node.FirstChild; c != nil; c = c.NextSibling {
			traverse(c)
		}
	}
	traverse(n)
	return strings.Join(strings.Fields(sb.String()), " ")
}

func resolveURL(baseURL, href string) string {
	if href == "" {
		return ""
	}
	base, err := url.Parse(baseURL)
	if err != nil {
		return href
	}
	ref, err := url.Parse(href)
	if err != nil {
		return href
	}
	return base.ResolveReference(ref).String()
}
