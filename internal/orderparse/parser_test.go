package orderparse

import (
	"strings"
	"testing"
)

const orderFixture = `                    ZAMÓWIENIE
Nr zamówienia / data zamówienia: 4500123456 / 15.03.2024

Zamawiający:
Firma Testowa Sp. z o.o.

Dostawca:
Hurtownia Spożywcza MAX
ul. Przemysłowa 15, 00-950 Warszawa
Kod dostawcy: DST-4481

Miejsce dostawy: Magazyn Centralny
ul. Składowa 7, Pruszków
Nr telefonu: 22 123 45 67

Data dostawy: 20.03.2024, godz. 08:30
Prosimy o wystawienie faktury VAT.
____________________________________
Poz.  Nazwa towaru            Ilość  J.m.  Cena jedn.  Wartość
0010 Mąka pszenna luz 100 SZT 4,50/SZT 450,00
0020 Cukier biały 50 KG 3,20/KG 160,00
Ilość pozycji na zamówieniu: 2

Całk. wart. netto PLN 10 800,00
`

func TestExtractFullDocument(t *testing.T) {
	e := NewExtractor(nil)
	order, warnings, err := e.Extract(strings.Split(orderFixture, "\n"))
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if len(warnings) != 0 {
		t.Errorf("warnings = %v, want none", warnings)
	}

	if order.OrderNumber != "4500123456" {
		t.Errorf("OrderNumber = %q", order.OrderNumber)
	}
	if order.OrderDate != "2024-03-15" {
		t.Errorf("OrderDate = %q", order.OrderDate)
	}
	if order.DeliveryDate != "2024-03-20" {
		t.Errorf("DeliveryDate = %q", order.DeliveryDate)
	}
	if order.DeliveryTime != "08:30" {
		t.Errorf("DeliveryTime = %q", order.DeliveryTime)
	}
	if order.DeliveryPlace != "Magazyn Centralny ul. Składowa 7, Pruszków" {
		t.Errorf("DeliveryPlace = %q", order.DeliveryPlace)
	}

	if order.Supplier.Name != "Hurtownia Spożywcza MAX" {
		t.Errorf("Supplier.Name = %q", order.Supplier.Name)
	}
	if order.Supplier.Address != "ul. Przemysłowa 15, 00-950 Warszawa" {
		t.Errorf("Supplier.Address = %q", order.Supplier.Address)
	}
	if order.Supplier.Code != "DST-4481" {
		t.Errorf("Supplier.Code = %q", order.Supplier.Code)
	}

	if len(order.Items) != 2 {
		t.Fatalf("items = %d, want 2", len(order.Items))
	}
	it := order.Items[0]
	if it.Position != "0010" || it.Name != "Mąka pszenna luz" || it.Quantity != 100 || string(it.Unit) != "szt" {
		t.Errorf("item[0] = %+v", it)
	}
	if it.UnitPrice == nil || *it.UnitPrice != 4.5 {
		t.Errorf("item[0].UnitPrice = %v", it.UnitPrice)
	}
	if it.TotalPrice == nil || *it.TotalPrice != 450 {
		t.Errorf("item[0].TotalPrice = %v", it.TotalPrice)
	}

	if order.TotalValue == nil || *order.TotalValue != 10800 {
		t.Errorf("TotalValue = %v", order.TotalValue)
	}
}

func TestExtractTotalWithoutThousandsSpace(t *testing.T) {
	e := NewExtractor(nil)
	order, _, err := e.Extract([]string{
		"Nr zamówienia / data zamówienia: 7 / 01.01.2024",
		"Całk. wart. netto PLN 10800,00",
	})
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if order.TotalValue == nil || *order.TotalValue != 10800 {
		t.Errorf("TotalValue = %v", order.TotalValue)
	}
}

func TestExtractMissingFieldsWarns(t *testing.T) {
	e := NewExtractor(nil)
	order, warnings, err := e.Extract([]string{"Dokument bez znanych pól"})
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if order == nil {
		t.Fatal("order is nil")
	}
	want := []string{
		"brak numeru zamówienia",
		"brak daty zamówienia",
		"brak daty dostawy",
		"brak miejsca dostawy",
		"brak pozycji zamówienia",
	}
	if len(warnings) != len(want) {
		t.Fatalf("warnings = %v", warnings)
	}
	for i, w := range want {
		if warnings[i] != w {
			t.Errorf("warning[%d] = %q, want %q", i, warnings[i], w)
		}
	}
}

func TestExtractItemRowMismatchSkipped(t *testing.T) {
	e := NewExtractor(nil)
	order, _, err := e.Extract([]string{
		"Nr zamówienia / data zamówienia: 7 / 01.01.2024",
		"____________",
		"Poz. Nazwa Ilość",
		"0010 Mąka pszenna luz 100 SZT 4,50/SZT 450,00",
		"wiersz który nie jest pozycją",
		"0020 Cukier biały 50 KG 3,20/KG 160,00",
		"Ilość pozycji na zamówieniu: 2",
	})
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if len(order.Items) != 2 {
		t.Errorf("items = %d, want 2", len(order.Items))
	}
}

func TestExtractPanicReturnsPartial(t *testing.T) {
	e := NewExtractor(nil)
	e.itemsFn = func(s *scan) { panic("tabela niezgodna z formatem") }

	order, _, err := e.Extract([]string{
		"Nr zamówienia / data zamówienia: 4500123456 / 15.03.2024",
	})
	if err != nil {
		t.Fatalf("anchored document should return partial result, got %v", err)
	}
	if order.OrderNumber != "4500123456" {
		t.Errorf("OrderNumber = %q", order.OrderNumber)
	}
}

func TestExtractPanicWithoutAnchorFails(t *testing.T) {
	e := NewExtractor(nil)
	e.itemsFn = func(s *scan) { panic("tabela niezgodna z formatem") }

	order, _, err := e.Extract([]string{"nic do zakotwiczenia"})
	if err == nil {
		t.Fatal("want error for unanchored failed extraction")
	}
	if order != nil {
		t.Errorf("order = %+v, want nil", order)
	}
}

func TestValidateItemPriceWarnings(t *testing.T) {
	e := NewExtractor(nil)
	_, warnings, err := e.Extract([]string{
		"Nr zamówienia / data zamówienia: 7 / 01.01.2024",
		"____________",
		"Poz. Nazwa Ilość",
		"0010 Mąka pszenna luz 100 SZT 4,50/SZT 450,00",
		"Ilość pozycji na zamówieniu: 1",
	})
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	for _, w := range warnings {
		if strings.Contains(w, "ceny jednostkowej") || strings.Contains(w, "wartości całkowitej") {
			t.Errorf("unexpected price warning: %q", w)
		}
	}
}
