package service

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/sandeepkv93/invotrac/internal/domain"
)

func TestExportCSVWritesHeaderAndRowsInOrder(t *testing.T) {
	rows := []domain.Product{
		{ID: 2, Name: "Bolt, M6", Description: `hex "bolt"`, Price: domain.NumberFromFloat(0.25), Quantity: domain.NumberFromInt(100)},
		{ID: 1, Name: "Nut", Description: "hex nut", Price: domain.NumberFromString("abc"), Quantity: domain.NumberFromInt(50)},
	}
	var buf bytes.Buffer
	if err := ExportCSV(&buf, rows); err != nil {
		t.Fatalf("export: %v", err)
	}
	want := strings.Join([]string{
		"id,name,description,price,quantity",
		`2,"Bolt, M6","hex ""bolt""",0.25,100`,
		"1,Nut,hex nut,NaN,50",
		"",
	}, "\n")
	if buf.String() != want {
		t.Fatalf("unexpected csv:\n%s\nwant:\n%s", buf.String(), want)
	}
}

func TestExportCSVEmptyRowsWritesHeaderOnly(t *testing.T) {
	var buf bytes.Buffer
	if err := ExportCSV(&buf, nil); err != nil {
		t.Fatalf("export: %v", err)
	}
	if buf.String() != "id,name,description,price,quantity\n" {
		t.Fatalf("unexpected csv %q", buf.String())
	}
}

func TestExportObjectKey(t *testing.T) {
	at := time.Date(2026, 3, 4, 5, 6, 7, 0, time.FixedZone("X", 3600))
	id := uuid.MustParse("00000000-0000-0000-0000-000000000001")
	got := exportObjectKey(at, id)
	if got != "exports/20260304T040607Z-00000000-0000-0000-0000-000000000001.csv" {
		t.Fatalf("unexpected key %q", got)
	}
}
