package sync

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Mantenimiento-api/internal/domain/entity"
	"github.com/jhoicas/Mantenimiento-api/internal/infrastructure/qbo"
)

func TestPullRefrescaTokensDeVersion(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.addCompany("c1", "Acme Corp")
	require.True(t, h.orch.SyncCompany(ctx, "c1").Success)

	// Otro cliente actualizó el customer en QBO: el token remoto avanzó.
	company, _ := h.companies.GetByID(ctx, "c1")
	remote, err := h.client.GetCustomer(ctx, company.ExternalID)
	require.NoError(t, err)
	remote.CompanyName = "Acme Corporation S.A.S."
	_, err = h.client.UpdateCustomer(ctx, remote)
	require.NoError(t, err)

	report := h.orch.Pull(ctx)
	require.Equal(t, 0, report.Failed(), "%s", report.Summary())

	refreshed, _ := h.companies.GetByID(ctx, "c1")
	assert.Equal(t, "1", refreshed.ExternalVersion, "el pull adopta el token vigente en QBO")
}

func TestPullReportaCustomerSinContraparte(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	_, err := h.client.CreateCustomer(ctx, &qbo.Customer{DisplayName: "Cliente Manual", Active: true})
	require.NoError(t, err)

	report := h.orch.Pull(ctx)

	require.Len(t, report.Results, 1)
	res := report.Results[0]
	assert.False(t, res.Success)
	assert.Equal(t, CodeUnmatched, res.ErrorCode, "un customer creado a mano en la consola no se adivina")
	assert.Contains(t, res.ErrorMessage, "Cliente Manual")
}

func TestPullImportaFacturaPorTokenDeMemo(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.addCompany("c1", "Acme Corp")
	require.True(t, h.orch.SyncCompany(ctx, "c1").Success)
	h.addLocation("l1", "c1", "Planta Norte", true)
	require.True(t, h.orch.SyncLocation(ctx, "l1").Success)

	// Factura emitida por otro sistema contra la empresa padre, con el token de
	// sede en el memo (el CustomerRef solo no alcanza para resolver la sede).
	company, _ := h.companies.GetByID(ctx, "c1")
	_, err := h.client.CreateInvoice(ctx, &qbo.Invoice{
		CustomerRef:  qbo.Ref{Value: company.ExternalID},
		CustomerMemo: &qbo.MemoRef{Value: qbo.BuildCustomerMemo("Servicio trimestral", "l1")},
		TxnDate:      "2026-02-15",
		Line: []qbo.Line{{
			LineNum: 1, Description: "Inspección general", Amount: decimal.RequireFromString("450.00"),
			DetailType: qbo.DetailTypeSalesItem,
			SalesItemLineDetail: &qbo.SalesItemLineDetail{
				Qty: decimal.NewFromInt(3), UnitPrice: decimal.RequireFromString("150.00"),
			},
		}},
	})
	require.NoError(t, err)

	report := h.orch.Pull(ctx)
	require.Equal(t, 0, report.Failed(), "%s", report.Summary())

	imported := findImported(t, h)
	assert.Equal(t, "l1", imported.LocationID, "la sede se recupera del token del memo")
	assert.Equal(t, "c1", imported.CompanyID)
	assert.Equal(t, "Servicio trimestral", imported.CustomerNote, "la nota se guarda sin el token")
	assert.Equal(t, entity.InvoiceStatusSent, imported.Status, "recién emitida: Balance == TotalAmt")
	assert.True(t, imported.GrandTotal.Equal(decimal.RequireFromString("450.00")))
	assert.NotEmpty(t, imported.ExternalDocNumber)
}

func TestPullImportaFacturaPorCustomerRefDeSede(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.addLocation("l1", "", "Bodega Central", false)
	require.True(t, h.orch.SyncLocation(ctx, "l1").Success)

	// Memo editado a mano: sin token. El CustomerRef apunta directo a la sede,
	// así que el fallback resuelve sin ambigüedad.
	loc, _ := h.locations.GetByID(ctx, "l1")
	_, err := h.client.CreateInvoice(ctx, &qbo.Invoice{
		CustomerRef:  qbo.Ref{Value: loc.ExternalID},
		CustomerMemo: &qbo.MemoRef{Value: "nota sin token"},
		Line: []qbo.Line{{
			LineNum: 1, Amount: decimal.RequireFromString("80.00"), DetailType: qbo.DetailTypeSalesItem,
			SalesItemLineDetail: &qbo.SalesItemLineDetail{Qty: decimal.NewFromInt(1), UnitPrice: decimal.RequireFromString("80.00")},
		}},
	})
	require.NoError(t, err)

	report := h.orch.Pull(ctx)
	require.Equal(t, 0, report.Failed(), "%s", report.Summary())
	assert.Equal(t, "l1", findImported(t, h).LocationID)
}

func TestPullFacturaIrresolubleQuedaUnmatched(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.addCompany("c1", "Acme Corp")
	require.True(t, h.orch.SyncCompany(ctx, "c1").Success)

	// CustomerRef a la empresa padre y memo sin token: muchas sedes posibles,
	// ninguna elegible. No se adivina.
	company, _ := h.companies.GetByID(ctx, "c1")
	_, err := h.client.CreateInvoice(ctx, &qbo.Invoice{
		CustomerRef: qbo.Ref{Value: company.ExternalID},
		Line: []qbo.Line{{
			LineNum: 1, Amount: decimal.RequireFromString("10.00"), DetailType: qbo.DetailTypeSalesItem,
			SalesItemLineDetail: &qbo.SalesItemLineDetail{Qty: decimal.NewFromInt(1), UnitPrice: decimal.RequireFromString("10.00")},
		}},
	})
	require.NoError(t, err)

	report := h.orch.Pull(ctx)

	var invoiceResults []Result
	for _, res := range report.Results {
		if res.EntityType == EntityInvoice {
			invoiceResults = append(invoiceResults, res)
		}
	}
	require.Len(t, invoiceResults, 1)
	assert.Equal(t, CodeUnmatched, invoiceResults[0].ErrorCode)
}

func TestPullActualizaEstadoDeFacturaEnlazada(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.addCompany("c1", "Acme Corp")
	require.True(t, h.orch.SyncCompany(ctx, "c1").Success)
	h.addLocation("l1", "c1", "Planta Norte", true)
	require.True(t, h.orch.SyncLocation(ctx, "l1").Success)
	invoiceFixture(h, "i1", "l1", "c1")
	require.True(t, h.orch.SyncInvoice(ctx, "i1").Success)

	// La factura se anuló desde la consola QBO: el pull debe adoptar el estado
	// remoto (TotalAmt=0, Balance=0 → void) y el token vigente.
	stored, _ := h.invoices.GetByID(ctx, "i1")
	_, err := h.client.VoidInvoice(ctx, stored.ExternalID, stored.ExternalVersion)
	require.NoError(t, err)

	report := h.orch.Pull(ctx)
	require.Equal(t, 0, report.Failed(), "%s", report.Summary())

	refreshed, _ := h.invoices.GetByID(ctx, "i1")
	assert.Equal(t, entity.InvoiceStatusVoid, refreshed.Status, "TotalAmt=0 y Balance=0 en QBO → void local")
	assert.True(t, refreshed.GrandTotal.IsZero(), "QBO manda sobre el dinero: el total remoto se adopta")
	assert.Equal(t, "1", refreshed.ExternalVersion, "el token avanza al valor vigente")
}

func findImported(t *testing.T, h *harness) *entity.Invoice {
	t.Helper()
	require.Len(t, h.invoices.items, 1, "debe haberse importado exactamente una factura")
	for _, inv := range h.invoices.items {
		return inv
	}
	return nil
}
