package textproc

import (
	"github.com/pwojcik-dev/orderscan/internal/entity"
)

// Merge reconciles aggregated groups into final semantic units. OCR line
// segmentation splits one logical field (a product table, a multi-line
// address) across groups the first pass cannot relate, so this second pass
// folds them back together:
//
//   - a products_header group opens a "products" group that swallows every
//     immediately following product group's properties into Items, stopping
//     at the first non-product group;
//   - consecutive delivery_address groups, or any group whose text starts
//     with a postal code, are concatenated into one with properties
//     union-merged;
//   - everything else passes through unchanged.
func Merge(groups []entity.SemanticGroup) []entity.SemanticGroup {
	var merged []entity.SemanticGroup
	var cur *entity.SemanticGroup
	inProducts := false

	for _, g := range groups {
		if g.Type == entity.CatProductsHeader {
			inProducts = true
			merged = append(merged, entity.SemanticGroup{
				Type:       entity.CatProducts,
				Text:       g.Text,
				Confidence: g.Confidence,
			})
			cur = &merged[len(merged)-1]
			continue
		}

		if inProducts {
			if g.Type == entity.CatProduct {
				cur.Items = append(cur.Items, copyProps(g.Properties))
				cur.Text += "\n" + g.Text
				continue
			}
			inProducts = false
			cur = nil
		}

		if cur != nil && cur.Type == entity.CatDeliveryAddress &&
			(g.Type == entity.CatDeliveryAddress || rePostalCode.MatchString(g.Text)) {
			cur.Text += "\n" + g.Text
			for k, v := range g.Properties {
				cur.Properties[k] = v
			}
			continue
		}

		merged = append(merged, entity.SemanticGroup{
			Type:       g.Type,
			Subtype:    g.Subtype,
			Text:       g.Text,
			Confidence: g.Confidence,
			Properties: copyProps(g.Properties),
		})
		cur = &merged[len(merged)-1]
	}
	return merged
}

func copyProps(src map[string]string) map[string]string {
	if src == nil {
		return map[string]string{}
	}
	dst := make(map[string]string, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}
