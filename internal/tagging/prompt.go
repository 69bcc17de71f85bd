package tagging

import (
	"fmt"
	"strings"

	"github.com/phantomos-app/phantomos-backend/pkg/db/models"
)

const systemPrompt = `You map merchandise products to game IP assets for a licensing catalog.
You reply with JSON only: no prose, no markdown fences, no commentary.
Only use asset ids from the provided candidate list. Confidence is an integer 0-100.`

func buildSinglePrompt(product *models.Product, candidates []Candidate, examples []Example) string {
	var b strings.Builder

	writeGameIPContext(&b, candidates)
	writeExamples(&b, examples)

	b.WriteString("Product to tag:\n")
	writeProduct(&b, product)
	b.WriteString("\n")

	writeCandidates(&b, candidates)

	b.WriteString(`Reply with a JSON array of suggestions, strongest first:
[{"assetId": "<candidate id>", "assetName": "<candidate name>", "confidence": 0-100, "reason": "<short reason>"}]
Return [] if nothing fits.`)
	return b.String()
}

func buildBatchPrompt(products []*models.Product, candidates []Candidate, examples []Example) string {
	var b strings.Builder

	writeGameIPContext(&b, candidates)
	writeExamples(&b, examples)

	b.WriteString("Products to tag:\n")
	for _, product := range products {
		fmt.Fprintf(&b, "- productId: %s\n", product.ID)
		writeProduct(&b, product)
	}
	b.WriteString("\n")

	writeCandidates(&b, candidates)

	b.WriteString(`Reply with a JSON array, one entry per product:
[{"productId": "<product id>", "suggestions": [{"assetId": "<candidate id>", "assetName": "<candidate name>", "confidence": 0-100, "reason": "<short reason>"}]}]
Use an empty suggestions array for products nothing fits.`)
	return b.String()
}

func writeGameIPContext(b *strings.Builder, candidates []Candidate) {
	seen := map[string]bool{}
	names := []string{}
	for _, c := range candidates {
		if c.GameIPName == "" || seen[c.GameIPName] {
			continue
		}
		seen[c.GameIPName] = true
		names = append(names, c.GameIPName)
	}
	if len(names) == 0 {
		return
	}
	fmt.Fprintf(b, "Game IPs in this catalog: %s\n\n", strings.Join(names, ", "))
}

func writeExamples(b *strings.Builder, examples []Example) {
	if len(examples) == 0 {
		return
	}
	b.WriteString("Previously confirmed mappings:\n")
	for _, ex := range examples {
		fmt.Fprintf(b, "- %q (%s) -> %s\n", ex.ProductName, ex.Category, ex.AssetName)
	}
	b.WriteString("\n")
}

func writeProduct(b *strings.Builder, product *models.Product) {
	fmt.Fprintf(b, "  name: %s\n", product.Name)
	if product.Description != nil && *product.Description != "" {
		fmt.Fprintf(b, "  description: %s\n", *product.Description)
	}
	if product.SKU != nil && *product.SKU != "" {
		fmt.Fprintf(b, "  sku: %s\n", *product.SKU)
	}
	fmt.Fprintf(b, "  category: %s\n", product.Category)
	if len(product.Tags) > 0 {
		fmt.Fprintf(b, "  tags: %s\n", strings.Join(product.Tags, ", "))
	}
}

func writeCandidates(b *strings.Builder, candidates []Candidate) {
	b.WriteString("Candidate assets:\n")
	for _, c := range candidates {
		fmt.Fprintf(b, "- id: %s | name: %s | type: %s | ip: %s", c.ID, c.Name, c.AssetType, c.GameIPName)
		if c.Description != nil && *c.Description != "" {
			fmt.Fprintf(b, " | %s", *c.Description)
		}
		b.WriteString("\n")
	}
	b.WriteString("\n")
}
