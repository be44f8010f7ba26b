package qbo_test

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Mantenimiento-api/internal/domain"
	"github.com/jhoicas/Mantenimiento-api/internal/domain/entity"
	"github.com/jhoicas/Mantenimiento-api/internal/infrastructure/qbo"
)

func testCompany() *entity.Company {
	return &entity.Company{
		ID:        "co-1",
		Name:      "Acme S.A.",
		LegalName: "Acme Sociedad Anónima",
		Email:     "pagos@acme.co",
		Phone:     "+57 601 555 1234",
		BillingAddress: entity.Address{
			Line1:      "Calle 100 # 8-60",
			City:       "Bogotá",
			State:      "DC",
			PostalCode: "110111",
			Country:    "CO",
		},
		IsActive:        true,
		ExternalID:      "77",
		ExternalVersion: "3",
	}
}

func testLocation(billWithParent bool) *entity.Location {
	return &entity.Location{
		ID:        "loc-1",
		CompanyID: "co-1",
		Name:      "Bodega Norte",
		ServiceAddress: entity.Address{
			Line1: "Autopista Norte Km 21",
			City:  "Chía",
			State: "CUN",
		},
		BillWithParent:  billWithParent,
		ExternalID:      "88",
		ExternalVersion: "1",
	}
}

func testLines() []*entity.InvoiceLine {
	return []*entity.InvoiceLine{
		{
			ID: "l-1", InvoiceID: "inv-1", LineNumber: 1,
			Description: "Mantenimiento preventivo HVAC",
			Quantity:    decimal.NewFromInt(3),
			UnitPrice:   decimal.RequireFromString("120000.50"),
		},
		{
			ID: "l-2", InvoiceID: "inv-1", LineNumber: 2,
			Description:        "Repuesto filtro",
			Quantity:           decimal.NewFromInt(2),
			UnitPrice:          decimal.NewFromInt(45000),
			ExternalItemRef:    "item-9",
			ExternalTaxCodeRef: "tax-19",
		},
	}
}

// ── Company → Customer ────────────────────────────────────────────────────────

// TestCompanyToCustomer_RoundTrip mapea una empresa al payload y la reconstruye
// con el parser inbound: los campos poblados sobreviven exactos y los ausentes
// siguen ausentes (nunca se convierten en strings vacíos).
func TestCompanyToCustomer_RoundTrip(t *testing.T) {
	m := qbo.NewMapper("COP")
	company := testCompany()

	cust, err := m.CompanyToCustomer(company, false)
	require.NoError(t, err)

	got := qbo.CompanyFromCustomer(cust)
	assert.Equal(t, company.Name, got.Name)
	assert.Equal(t, company.LegalName, got.LegalName)
	assert.Equal(t, company.Email, got.Email)
	assert.Equal(t, company.Phone, got.Phone)
	assert.Equal(t, company.BillingAddress, got.BillingAddress)
	assert.Equal(t, company.IsActive, got.IsActive)
}

// TestCompanyToCustomer_DireccionVaciaSeOmite una dirección en blanco debe
// producir BillAddr ausente, no un bloque con strings vacíos.
func TestCompanyToCustomer_DireccionVaciaSeOmite(t *testing.T) {
	m := qbo.NewMapper("")
	company := testCompany()
	company.BillingAddress = entity.Address{}
	company.Email = ""
	company.Phone = ""

	cust, err := m.CompanyToCustomer(company, false)
	require.NoError(t, err)
	assert.Nil(t, cust.BillAddr, "BillAddr vacío debe omitirse por completo")
	assert.Nil(t, cust.PrimaryEmailAddr)
	assert.Nil(t, cust.PrimaryPhone)

	got := qbo.CompanyFromCustomer(cust)
	assert.True(t, got.BillingAddress.IsEmpty(), "ausente debe seguir ausente tras el round-trip")
}

func TestCompanyToCustomer_LegalNameFallback(t *testing.T) {
	m := qbo.NewMapper("")
	company := testCompany()
	company.LegalName = ""

	cust, err := m.CompanyToCustomer(company, false)
	require.NoError(t, err)
	assert.Equal(t, company.Name, cust.CompanyName, "CompanyName cae a Name cuando no hay razón social")
}

func TestCompanyToCustomer_UpdateAdjuntaTokens(t *testing.T) {
	m := qbo.NewMapper("")
	cust, err := m.CompanyToCustomer(testCompany(), true)
	require.NoError(t, err)
	assert.Equal(t, "77", cust.ID)
	assert.Equal(t, "3", cust.SyncToken)
}

// TestCompanyToCustomer_UpdateSinVersionEsErrorDeContrato un update sin
// ExternalVersion debe fallar en local, antes de cualquier llamada de red.
func TestCompanyToCustomer_UpdateSinVersionEsErrorDeContrato(t *testing.T) {
	m := qbo.NewMapper("")
	company := testCompany()
	company.ExternalVersion = ""

	_, err := m.CompanyToCustomer(company, true)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrMissingExternalID))
}

// ── Location → Customer ───────────────────────────────────────────────────────

func TestLocationToCustomer_SubCustomer(t *testing.T) {
	m := qbo.NewMapper("")
	loc := testLocation(true)
	parent := testCompany()

	cust, err := m.LocationToCustomer(loc, parent, false)
	require.NoError(t, err)

	assert.Equal(t, "Acme S.A.: Bodega Norte", cust.DisplayName)
	require.NotNil(t, cust.Job)
	assert.True(t, *cust.Job)
	require.NotNil(t, cust.ParentRef)
	assert.Equal(t, parent.ExternalID, cust.ParentRef.Value)
	require.NotNil(t, cust.BillWithParent, "BillWithParent viaja siempre, también cuando es false")
	assert.True(t, *cust.BillWithParent)
}

// TestLocationToCustomer_UpdateMantieneTriada en update los tres campos de
// jerarquía (Job, ParentRef, BillWithParent) viajan igual que en create.
func TestLocationToCustomer_UpdateMantieneTriada(t *testing.T) {
	m := qbo.NewMapper("")
	loc := testLocation(false)

	cust, err := m.LocationToCustomer(loc, testCompany(), true)
	require.NoError(t, err)
	assert.Equal(t, "88", cust.ID)
	assert.Equal(t, "1", cust.SyncToken)
	require.NotNil(t, cust.Job)
	require.NotNil(t, cust.ParentRef)
	require.NotNil(t, cust.BillWithParent)
	assert.False(t, *cust.BillWithParent)
}

func TestLocationToCustomer_Standalone(t *testing.T) {
	m := qbo.NewMapper("")
	loc := testLocation(false)
	loc.CompanyID = ""

	cust, err := m.LocationToCustomer(loc, nil, false)
	require.NoError(t, err)
	assert.Equal(t, "Bodega Norte", cust.DisplayName)
	assert.Nil(t, cust.Job)
	assert.Nil(t, cust.ParentRef)
	assert.Nil(t, cust.BillWithParent)
}

func TestLocationToCustomer_PadreSinExternalID(t *testing.T) {
	m := qbo.NewMapper("")
	parent := testCompany()
	parent.ExternalID = ""

	_, err := m.LocationToCustomer(testLocation(true), parent, false)
	assert.Error(t, err, "una sede con padre sin sincronizar no puede mapearse")
}

// ── Invoice → payload ─────────────────────────────────────────────────────────

func testInvoice() *entity.Invoice {
	return &entity.Invoice{
		ID:           "inv-1",
		LocationID:   "loc-1",
		CompanyID:    "co-1",
		Status:       entity.InvoiceStatusDraft,
		TxnDate:      time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC),
		DueDate:      time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC),
		CustomerNote: "Visita del 1 de agosto",
	}
}

// TestInvoiceToPayload_FacturaAlPadre con billWithParent=true el CustomerRef
// es el ExternalID del padre, BillAddr la dirección de facturación del padre y
// ShipAddr SIEMPRE la dirección de servicio de la sede.
func TestInvoiceToPayload_FacturaAlPadre(t *testing.T) {
	m := qbo.NewMapper("COP")
	loc := testLocation(true)
	parent := testCompany()

	payload, err := m.InvoiceToPayload(testInvoice(), testLines(), loc, parent, false)
	require.NoError(t, err)

	assert.Equal(t, parent.ExternalID, payload.CustomerRef.Value)
	require.NotNil(t, payload.BillAddr)
	assert.Equal(t, parent.BillingAddress.Line1, payload.BillAddr.Line1)
	require.NotNil(t, payload.ShipAddr)
	assert.Equal(t, loc.ServiceAddress.Line1, payload.ShipAddr.Line1,
		"ShipAddr debe ser la dirección de servicio aunque se facture al padre")
}

func TestInvoiceToPayload_FacturaALaSede(t *testing.T) {
	m := qbo.NewMapper("COP")
	loc := testLocation(false)

	payload, err := m.InvoiceToPayload(testInvoice(), testLines(), loc, testCompany(), false)
	require.NoError(t, err)

	assert.Equal(t, loc.ExternalID, payload.CustomerRef.Value)
	require.NotNil(t, payload.BillAddr)
	assert.Equal(t, loc.ServiceAddress.Line1, payload.BillAddr.Line1)
	require.NotNil(t, payload.ShipAddr)
	assert.Equal(t, loc.ServiceAddress.Line1, payload.ShipAddr.Line1)
}

// TestInvoiceToPayload_PadreNoSincronizadoCaeALaSede si billWithParent=true
// pero el padre no tiene ExternalID, se factura a la sede (segunda rama).
func TestInvoiceToPayload_PadreNoSincronizadoCaeALaSede(t *testing.T) {
	m := qbo.NewMapper("")
	loc := testLocation(true)
	parent := testCompany()
	parent.ExternalID = ""

	payload, err := m.InvoiceToPayload(testInvoice(), testLines(), loc, parent, false)
	require.NoError(t, err)
	assert.Equal(t, loc.ExternalID, payload.CustomerRef.Value)
}

// TestInvoiceToPayload_SinDestinoEsError sin ninguna referencia disponible el
// mapeo falla en seco: nunca un payload degradado.
func TestInvoiceToPayload_SinDestinoEsError(t *testing.T) {
	m := qbo.NewMapper("")
	loc := testLocation(false)
	loc.ExternalID = ""
	loc.ExternalVersion = ""

	_, err := m.InvoiceToPayload(testInvoice(), testLines(), loc, nil, false)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrBillingTargetUnresolved))
}

// TestInvoiceToPayload_MontosRecalculados el Amount de cada línea debe ser
// Qty×UnitPrice recalculado en el mapeo, no un subtotal almacenado.
func TestInvoiceToPayload_MontosRecalculados(t *testing.T) {
	m := qbo.NewMapper("")
	lines := testLines()

	payload, err := m.InvoiceToPayload(testInvoice(), lines, testLocation(false), testCompany(), false)
	require.NoError(t, err)
	require.Len(t, payload.Line, 2)

	assert.True(t, payload.Line[0].Amount.Equal(decimal.RequireFromString("360001.50")),
		"3 × 120000.50 = 360001.50, obtuvo %s", payload.Line[0].Amount)
	assert.Equal(t, 1, payload.Line[0].LineNum)
	assert.Equal(t, qbo.DetailTypeSalesItem, payload.Line[0].DetailType)

	assert.True(t, payload.Line[1].Amount.Equal(decimal.NewFromInt(90000)))
	require.NotNil(t, payload.Line[1].SalesItemLineDetail.ItemRef)
	assert.Equal(t, "item-9", payload.Line[1].SalesItemLineDetail.ItemRef.Value)
	require.NotNil(t, payload.Line[1].SalesItemLineDetail.TaxCodeRef)
	assert.Equal(t, "tax-19", payload.Line[1].SalesItemLineDetail.TaxCodeRef.Value)
}

func TestInvoiceToPayload_MemoIncluyeTokenDeSede(t *testing.T) {
	m := qbo.NewMapper("")
	payload, err := m.InvoiceToPayload(testInvoice(), testLines(), testLocation(false), nil, false)
	require.NoError(t, err)

	require.NotNil(t, payload.CustomerMemo)
	assert.Equal(t, "Visita del 1 de agosto (Location ID: loc-1)", payload.CustomerMemo.Value)

	locID, ok := qbo.ExtractLocationID(payload.CustomerMemo.Value)
	require.True(t, ok)
	assert.Equal(t, "loc-1", locID)
	assert.Equal(t, "Visita del 1 de agosto", qbo.StripLocationToken(payload.CustomerMemo.Value))
}

func TestInvoiceToPayload_UpdateSinTokensEsErrorDeContrato(t *testing.T) {
	m := qbo.NewMapper("")
	inv := testInvoice() // sin ExternalID/ExternalVersion

	_, err := m.InvoiceToPayload(inv, testLines(), testLocation(false), nil, true)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrMissingExternalID))
}

// ── Inbound ───────────────────────────────────────────────────────────────────

func TestParseCustomerName_SubCustomer(t *testing.T) {
	job := true
	parsed := qbo.ParseCustomerName(&qbo.Customer{DisplayName: "Acme: Planta: Línea 2", Job: &job})
	assert.Equal(t, "Acme", parsed.ParentName)
	assert.Equal(t, "Planta: Línea 2", parsed.LocationName, "solo se parte en la primera ocurrencia")
	assert.False(t, parsed.MalformedSub)
}

// TestParseCustomerName_SubSinSeparador un Sub-Customer declarado sin el
// separador es un warning de calidad de datos, no un fallo.
func TestParseCustomerName_SubSinSeparador(t *testing.T) {
	job := true
	parsed := qbo.ParseCustomerName(&qbo.Customer{DisplayName: "SedeManual", Job: &job})
	assert.True(t, parsed.MalformedSub)
	assert.Equal(t, "SedeManual", parsed.LocationName)
}

func TestInferInvoiceStatus(t *testing.T) {
	cases := []struct {
		name     string
		total    string
		balance  string
		expected string
	}{
		{"pagada", "100", "0", entity.InvoiceStatusPaid},
		{"anulada", "0", "0", entity.InvoiceStatusVoid},
		{"enviada con saldo", "100", "40", entity.InvoiceStatusSent},
		{"enviada saldo completo", "100", "100", entity.InvoiceStatusSent},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := qbo.InferInvoiceStatus(
				decimal.RequireFromString(tc.total),
				decimal.RequireFromString(tc.balance),
			)
			assert.Equal(t, tc.expected, got)
		})
	}
}

func TestExtractLocationID_SinToken(t *testing.T) {
	_, ok := qbo.ExtractLocationID("nota sin token")
	assert.False(t, ok, "sin token el caller debe caer al camino por CustomerRef")
}
