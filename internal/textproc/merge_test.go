package textproc

import (
	"testing"

	"github.com/pwojcik-dev/orderscan/internal/entity"
)

func TestMerge(t *testing.T) {
	t.Run("products header swallows following products", func(t *testing.T) {
		groups := []entity.SemanticGroup{
			{Type: entity.CatProductsHeader, Text: "Lp. Nazwa Ilość szt", Confidence: 92},
			{Type: entity.CatProduct, Text: "Mąka 10 szt", Properties: map[string]string{"name": "Mąka", "quantity": "10", "unit": "szt"}},
			{Type: entity.CatProduct, Text: "Cukier 5 kg", Properties: map[string]string{"name": "Cukier", "quantity": "5", "unit": "kg"}},
			{Type: entity.CatDeliveryDate, Text: "Termin dostawy: 01.02.2024"},
		}
		merged := Merge(groups)
		if len(merged) != 2 {
			t.Fatalf("merged = %d, want 2", len(merged))
		}
		p := merged[0]
		if p.Type != entity.CatProducts {
			t.Fatalf("type = %s, want %s", p.Type, entity.CatProducts)
		}
		if len(p.Items) != 2 {
			t.Fatalf("items = %d, want 2", len(p.Items))
		}
		if p.Items[1]["name"] != "Cukier" {
			t.Errorf("item name = %q", p.Items[1]["name"])
		}
		if merged[1].Type != entity.CatDeliveryDate {
			t.Errorf("trailing group = %s", merged[1].Type)
		}
	})

	t.Run("second products table opens a new group", func(t *testing.T) {
		groups := []entity.SemanticGroup{
			{Type: entity.CatProductsHeader, Text: "h1"},
			{Type: entity.CatProduct, Text: "a 1 szt", Properties: map[string]string{"name": "a"}},
			{Type: entity.CatUnknown, Text: "przerwa"},
			{Type: entity.CatProductsHeader, Text: "h2"},
			{Type: entity.CatProduct, Text: "b 2 kg", Properties: map[string]string{"name": "b"}},
		}
		merged := Merge(groups)
		if len(merged) != 3 {
			t.Fatalf("merged = %d, want 3", len(merged))
		}
		if len(merged[0].Items) != 1 || len(merged[2].Items) != 1 {
			t.Errorf("items = %d, %d", len(merged[0].Items), len(merged[2].Items))
		}
	})

	t.Run("address fragments concatenate", func(t *testing.T) {
		groups := []entity.SemanticGroup{
			{Type: entity.CatDeliveryAddress, Subtype: "street", Text: "ul. Polna 1", Properties: map[string]string{"address": "ul. Polna 1"}},
			{Type: entity.CatDeliveryAddress, Subtype: "postal", Text: "00-950 Warszawa", Properties: map[string]string{"address": "00-950 Warszawa"}},
		}
		merged := Merge(groups)
		if len(merged) != 1 {
			t.Fatalf("merged = %d, want 1", len(merged))
		}
		if merged[0].Text != "ul. Polna 1\n00-950 Warszawa" {
			t.Errorf("text = %q", merged[0].Text)
		}
	})

	t.Run("postal text joins a preceding address even when unclassified", func(t *testing.T) {
		groups := []entity.SemanticGroup{
			{Type: entity.CatDeliveryAddress, Subtype: "street", Text: "ul. Polna 1"},
			{Type: entity.CatUnknown, Text: "00-950 Warszawa"},
		}
		merged := Merge(groups)
		if len(merged) != 1 {
			t.Fatalf("merged = %d, want 1", len(merged))
		}
	})

	t.Run("unrelated groups pass through", func(t *testing.T) {
		groups := []entity.SemanticGroup{
			{Type: entity.CatOrderNumber, Text: "Nr zamówienia / data zamówienia: 1 / 01.01.2024"},
			{Type: entity.CatDeliveryDate, Text: "Termin dostawy: 02.01.2024"},
		}
		merged := Merge(groups)
		if len(merged) != 2 {
			t.Fatalf("merged = %d, want 2", len(merged))
		}
	})

	t.Run("mutating merged properties does not touch input", func(t *testing.T) {
		src := map[string]string{"address": "ul. Polna 1"}
		groups := []entity.SemanticGroup{
			{Type: entity.CatDeliveryAddress, Text: "ul. Polna 1", Properties: src},
		}
		merged := Merge(groups)
		merged[0].Properties["address"] = "changed"
		if src["address"] != "ul. Polna 1" {
			t.Error("input properties mutated")
		}
	})
}
