package domain

import (
	"encoding/json"
	"errors"
	"math"
	"testing"
)

func TestNumberUnmarshalAcceptsNumbersStringsAndNull(t *testing.T) {
	var p struct {
		A Number `json:"a"`
		B Number `json:"b"`
		C Number `json:"c"`
		D Number `json:"d"`
	}
	if err := json.Unmarshal([]byte(`{"a":12.5,"b":"10","c":"abc","d":null}`), &p); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if p.A.Float() != 12.5 {
		t.Fatalf("expected 12.5, got %v", p.A.Float())
	}
	if p.B.Float() != 10 {
		t.Fatalf("expected string number to parse, got %v", p.B.Float())
	}
	if !math.IsNaN(p.C.Float()) {
		t.Fatalf("expected NaN for non-numeric text, got %v", p.C.Float())
	}
	if !math.IsNaN(p.D.Float()) {
		t.Fatalf("expected NaN for null, got %v", p.D.Float())
	}
}

func TestNumberMarshalKeepsUnparseableText(t *testing.T) {
	out, err := json.Marshal(Product{ID: 1, Name: "Pen", Description: "Blue", Price: NumberFromString("abc"), Quantity: NumberFromInt(3)})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	want := `{"id":1,"name":"Pen","description":"Blue","price":"abc","quantity":3}`
	if string(out) != want {
		t.Fatalf("unexpected json:\n got %s\nwant %s", out, want)
	}
}

func TestNumberFormat2(t *testing.T) {
	cases := map[string]string{
		"35":   "35.00",
		"12.5": "12.50",
		" 7.5": "7.50",
		"abc":  "NaN",
	}
	for in, want := range cases {
		if got := NumberFromString(in).Format2(); got != want {
			t.Fatalf("Format2(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestNumberScanAndValue(t *testing.T) {
	var n Number
	if err := n.Scan([]byte("42")); err != nil {
		t.Fatalf("scan bytes: %v", err)
	}
	if n.Float() != 42 {
		t.Fatalf("expected 42, got %v", n.Float())
	}
	v, err := n.Value()
	if err != nil || v != "42" {
		t.Fatalf("unexpected value %v err=%v", v, err)
	}
	if err := n.Scan(struct{}{}); err == nil {
		t.Fatal("expected scan error for unsupported type")
	}
}

func TestProductFormToProduct(t *testing.T) {
	p, err := ProductForm{ID: " 7 ", Name: " Bolt ", Description: "Steel Bolt", Price: "0.25", Quantity: "100"}.ToProduct()
	if err != nil {
		t.Fatalf("to product: %v", err)
	}
	if p.ID != 7 || p.Name != "Bolt" || p.Price.Float() != 0.25 || p.Quantity.Float() != 100 {
		t.Fatalf("unexpected product: %+v", p)
	}

	cases := []struct {
		name string
		form ProductForm
		want error
	}{
		{"missing id", ProductForm{Name: "n", Description: "d", Price: "1", Quantity: "1"}, ErrProductInvalidID},
		{"decimal id", ProductForm{ID: "1.5", Name: "n", Description: "d", Price: "1", Quantity: "1"}, ErrProductInvalidID},
		{"blank name", ProductForm{ID: "1", Name: "  ", Description: "d", Price: "1", Quantity: "1"}, ErrProductNameRequired},
		{"blank description", ProductForm{ID: "1", Name: "n", Price: "1", Quantity: "1"}, ErrProductDescriptionRequired},
		{"negative price", ProductForm{ID: "1", Name: "n", Description: "d", Price: "-1", Quantity: "1"}, ErrProductInvalidPrice},
		{"text price", ProductForm{ID: "1", Name: "n", Description: "d", Price: "abc", Quantity: "1"}, ErrProductInvalidPrice},
		{"fractional quantity", ProductForm{ID: "1", Name: "n", Description: "d", Price: "1", Quantity: "2.5"}, ErrProductInvalidQuantity},
		{"negative quantity", ProductForm{ID: "1", Name: "n", Description: "d", Price: "1", Quantity: "-2"}, ErrProductInvalidQuantity},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := tc.form.ToProduct(); !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestFormFromProductRoundTrip(t *testing.T) {
	in := Product{ID: 3, Name: "Marker", Description: "Permanent black marker", Price: NumberFromFloat(50), Quantity: NumberFromInt(30)}
	out, err := FormFromProduct(in).ToProduct()
	if err != nil {
		t.Fatalf("round trip: %v", err)
	}
	if out != in {
		t.Fatalf("round trip mismatch: got %+v want %+v", out, in)
	}
}

func TestNumberFloatEdgeSpellings(t *testing.T) {
	cases := []struct {
		in   string
		want float64
	}{
		{"1e400", math.Inf(1)},
		{"-1e400", math.Inf(-1)},
		{"Infinity", math.Inf(1)},
		{"-Infinity", math.Inf(-1)},
		{"inf", math.NaN()},
		{"+Inf", math.NaN()},
		{"infinity", math.NaN()},
		{"NaN", math.NaN()},
		{"", math.NaN()},
	}
	for _, tc := range cases {
		got := NumberFromString(tc.in).Float()
		if math.IsNaN(tc.want) {
			if !math.IsNaN(got) {
				t.Fatalf("Float(%q) = %v, want NaN", tc.in, got)
			}
			continue
		}
		if got != tc.want {
			t.Fatalf("Float(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
	if got := NumberFromString("1e400").Format2(); got != "Infinity" {
		t.Fatalf("expected Infinity, got %q", got)
	}
}

func TestProductUnmarshalLenientID(t *testing.T) {
	var products []Product
	body := `[{"id":1,"name":"Nut","description":"hex","price":0.1,"quantity":5},
		{"id":"2","name":"Bolt","description":"m6","price":"0.25","quantity":1},
		{"id":3.0,"name":"Washer","description":"flat","price":1,"quantity":1},
		{"id":"abc","name":"Odd","description":"bad id","price":1,"quantity":1},
		{"name":"NoID","description":"missing","price":1,"quantity":1}]`
	if err := json.Unmarshal([]byte(body), &products); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	want := []int64{1, 2, 3, 0, 0}
	if len(products) != len(want) {
		t.Fatalf("expected %d products, got %d", len(want), len(products))
	}
	for i, id := range want {
		if products[i].ID != id {
			t.Fatalf("product %d: expected id %d, got %d", i, id, products[i].ID)
		}
	}
	if products[1].Name != "Bolt" || products[1].Price.Float() != 0.25 {
		t.Fatalf("expected remaining fields to decode, got %+v", products[1])
	}
}
