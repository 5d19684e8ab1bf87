package importer

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/freshdepot/backend-go/internal/domain"
	"github.com/freshdepot/backend-go/internal/repository/memory"
)

func newTestService() (*Service, *memory.ProductRepository, *memory.LotRepository, *memory.SalesRepository) {
	products := memory.NewProductRepository()
	lots := memory.NewLotRepository()
	sales := memory.NewSalesRepository()
	return NewService(products, lots, sales), products, lots, sales
}

const productsCSV = `name,sku,category,pack_size,lead_time_days,moq,unit_cost,shelf_life_days
Greek Yogurt 500g,YOG-500,dairy,6,5,12,1.20,21
Sourdough Loaf,BRD-001,bakery,1,2,5,2.50,
Broken Row,BAD-001,misc,x,2,5,2.50,10
`

func TestImportProducts(t *testing.T) {
	ctx := context.Background()
	svc, products, _, _ := newTestService()

	result, err := svc.ImportProducts(ctx, strings.NewReader(productsCSV))
	require.NoError(t, err)
	assert.Equal(t, 2, result.Imported)
	assert.Equal(t, 1, result.Skipped)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "line 4")

	list, _ := products.List(ctx)
	require.Len(t, list, 2)

	var yogurt domain.Product
	for _, p := range list {
		if p.SKU == "YOG-500" {
			yogurt = p
		}
	}
	assert.Equal(t, 6, yogurt.PackSize)
	assert.Equal(t, 21, yogurt.ShelfLifeDays)
	assert.Equal(t, 12.0, yogurt.MOQ)
}

func TestImportLotsAndSales(t *testing.T) {
	ctx := context.Background()
	svc, products, lots, sales := newTestService()

	product := domain.Product{Name: "Greek Yogurt 500g", SKU: "YOG-500"}
	require.NoError(t, products.Create(ctx, &product))

	lotsCSV := `sku,lot_number,status,quantity_remaining,received_qty,received_date,expiry_date
YOG-500,L-100,available,48,48,2025-03-01,2025-03-22
YOG-500,L-101,damaged,0,24,2025-02-15,
NOPE-01,L-102,available,10,10,,
`
	result, err := svc.ImportLots(ctx, strings.NewReader(lotsCSV))
	require.NoError(t, err)
	assert.Equal(t, 2, result.Imported)
	assert.Equal(t, 1, result.Skipped)

	stored, _ := lots.ListByProduct(ctx, product.ID)
	require.Len(t, stored, 2)
	require.NotNil(t, stored[0].ExpiryDate)
	assert.Equal(t, "2025-03-22", stored[0].ExpiryDate.Format("2006-01-02"))
	assert.Nil(t, stored[1].ExpiryDate)

	salesCSV := `sku,month,quantity_sold
YOG-500,2025-02,120
YOG-500,2025-02,150
YOG-500,2025-13,10
`
	salesResult, err := svc.ImportSales(ctx, strings.NewReader(salesCSV))
	require.NoError(t, err)
	assert.Equal(t, 2, salesResult.Imported)
	assert.Equal(t, 1, salesResult.Skipped)

	// The duplicate month upserted rather than duplicating.
	records, _ := sales.ListByProduct(ctx, product.ID)
	require.Len(t, records, 1)
	assert.Equal(t, 150.0, records[0].QuantitySold)
}
