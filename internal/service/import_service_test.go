package service

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"

	"go.uber.org/mock/gomock"

	"github.com/sandeepkv93/invotrac/internal/client"
	"github.com/sandeepkv93/invotrac/internal/domain"
	servicegomock "github.com/sandeepkv93/invotrac/internal/service/gomock"
)

func TestImporterCreatesValidRowsAndReportsFailures(t *testing.T) {
	ctrl := gomock.NewController(t)
	gateway := servicegomock.NewMockProductGateway(ctrl)
	gateway.EXPECT().Create(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, p domain.Product) (domain.Product, error) {
		if p.ID == 3 {
			return domain.Product{}, &client.APIError{StatusCode: http.StatusBadRequest, Detail: "Product with this ID already exists"}
		}
		return p, nil
	}).Times(3)

	input := strings.Join([]string{
		"quantity,price,description,name,id",
		"100,0.25,m6 bolt,Bolt,1",
		"50,0.10,hex nut,Nut,2",
		"5,1.5,spring,Spring,3",
		"5,-1,bad price,Broken,4",
		"x,1,bad qty,Broken,5",
	}, "\n")

	im := NewImporter(NewInventoryService(gateway, nil, 0, nil, testLogger()), 0, 2, testLogger())
	report, err := im.Import(context.Background(), strings.NewReader(input))
	if err != nil {
		t.Fatalf("import: %v", err)
	}

	if report.Total != 5 || report.Created != 2 {
		t.Fatalf("expected 5 rows with 2 created, got total=%d created=%d", report.Total, report.Created)
	}
	if len(report.Failures) != 3 {
		t.Fatalf("expected 3 failures, got %+v", report.Failures)
	}
	if want := (RowFailure{Line: 4, ID: "3", Reason: "Product with this ID already exists"}); report.Failures[0] != want {
		t.Fatalf("expected %+v, got %+v", want, report.Failures[0])
	}
	if f := report.Failures[1]; f.Line != 5 || f.Reason != domain.ErrProductInvalidPrice.Error() {
		t.Fatalf("expected invalid price on line 5, got %+v", f)
	}
	if f := report.Failures[2]; f.Line != 6 || f.Reason != domain.ErrProductInvalidQuantity.Error() {
		t.Fatalf("expected invalid quantity on line 6, got %+v", f)
	}
}

func TestImporterRejectsMissingColumn(t *testing.T) {
	ctrl := gomock.NewController(t)
	im := NewImporter(servicegomock.NewMockProductGateway(ctrl), 0, 1, testLogger())

	_, err := im.Import(context.Background(), strings.NewReader("id,name,price,quantity\n1,a,1,1\n"))
	if !errors.Is(err, ErrImportMissingColumn) {
		t.Fatalf("expected ErrImportMissingColumn, got %v", err)
	}
	if !strings.Contains(err.Error(), "description") {
		t.Fatalf("expected missing column name in error, got %v", err)
	}
}

func TestImporterRejectsEmptyFile(t *testing.T) {
	ctrl := gomock.NewController(t)
	im := NewImporter(servicegomock.NewMockProductGateway(ctrl), 0, 1, testLogger())

	_, err := im.Import(context.Background(), strings.NewReader(""))
	if !errors.Is(err, ErrImportEmpty) {
		t.Fatalf("expected ErrImportEmpty, got %v", err)
	}
}

func TestImporterStopsOnCancelledContext(t *testing.T) {
	ctrl := gomock.NewController(t)
	gateway := servicegomock.NewMockProductGateway(ctrl)
	im := NewImporter(gateway, 1, 1, testLogger())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := im.Import(ctx, strings.NewReader("id,name,description,price,quantity\n1,a,b,1,1\n"))
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
