package qbo

import (
	"context"
	"net/http"
	"strconv"
	"sync"

	"github.com/shopspring/decimal"
)

// Asegura que MemoryClient implementa Client.
var _ Client = (*MemoryClient)(nil)

// MemoryClient implementación en memoria del puerto Client. Reproduce las
// reglas de QBO que le importan al motor: asigna Ids, arranca el SyncToken en
// "0" y lo avanza en cada escritura, rechaza DisplayNames duplicados (fault
// 6240) y SyncTokens viejos (fault 5010). Se usa en modo dev (el motor corre
// completo sin tocar la red) y en los tests del orquestador.
type MemoryClient struct {
	mu        sync.Mutex
	customers map[string]*Customer
	invoices  map[string]*Invoice
	nextID    int

	// FailCustomerCreate fuerza un error en CreateCustomer por DisplayName.
	// Permite simular caídas parciales en tests de batch.
	FailCustomerCreate map[string]error
	// FailInvoiceCreate idem para CreateInvoice, por CustomerRef.
	FailInvoiceCreate map[string]error
}

// NewMemoryClient construye el cliente en memoria vacío.
func NewMemoryClient() *MemoryClient {
	return &MemoryClient{
		customers:          make(map[string]*Customer),
		invoices:           make(map[string]*Invoice),
		nextID:             1,
		FailCustomerCreate: make(map[string]error),
		FailInvoiceCreate:  make(map[string]error),
	}
}

func (m *MemoryClient) allocID() string {
	id := strconv.Itoa(m.nextID)
	m.nextID++
	return id
}

func bumpToken(token string) string {
	n, err := strconv.Atoi(token)
	if err != nil {
		return "1"
	}
	return strconv.Itoa(n + 1)
}

func copyCustomer(c *Customer) *Customer {
	cp := *c
	return &cp
}

func copyInvoice(i *Invoice) *Invoice {
	cp := *i
	cp.Line = append([]Line(nil), i.Line...)
	return &cp
}

// CreateCustomer asigna Id y SyncToken "0"; rechaza nombres duplicados.
func (m *MemoryClient) CreateCustomer(_ context.Context, cust *Customer) (*Customer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.FailCustomerCreate[cust.DisplayName]; err != nil {
		return nil, err
	}
	for _, existing := range m.customers {
		if existing.DisplayName == cust.DisplayName {
			return nil, &APIError{
				StatusCode: http.StatusBadRequest,
				FaultCode:  faultCodeDuplicateName,
				Message:    "Duplicate Name Exists Error",
				Detail:     cust.DisplayName,
			}
		}
	}

	stored := copyCustomer(cust)
	stored.ID = m.allocID()
	stored.SyncToken = "0"
	m.customers[stored.ID] = stored
	return copyCustomer(stored), nil
}

// UpdateCustomer valida el SyncToken y lo avanza; el nuevo valor lo dicta la
// "respuesta", nunca el caller.
func (m *MemoryClient) UpdateCustomer(_ context.Context, cust *Customer) (*Customer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	existing, ok := m.customers[cust.ID]
	if !ok {
		return nil, &APIError{StatusCode: http.StatusBadRequest, FaultCode: "610", Message: "Object Not Found", Detail: cust.ID}
	}
	if existing.SyncToken != cust.SyncToken {
		return nil, &APIError{StatusCode: http.StatusBadRequest, FaultCode: faultCodeStaleObject, Message: "Stale Object Error", Detail: cust.ID}
	}

	stored := copyCustomer(cust)
	stored.SyncToken = bumpToken(existing.SyncToken)
	m.customers[cust.ID] = stored
	return copyCustomer(stored), nil
}

// GetCustomer lee por Id.
func (m *MemoryClient) GetCustomer(_ context.Context, id string) (*Customer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	cust, ok := m.customers[id]
	if !ok {
		return nil, &APIError{StatusCode: http.StatusBadRequest, FaultCode: "610", Message: "Object Not Found", Detail: id}
	}
	return copyCustomer(cust), nil
}

// QueryCustomers snapshot de customers.
func (m *MemoryClient) QueryCustomers(_ context.Context) ([]*Customer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]*Customer, 0, len(m.customers))
	for _, cust := range m.customers {
		out = append(out, copyCustomer(cust))
	}
	return out, nil
}

// CustomerDisplayNames nombres tomados.
func (m *MemoryClient) CustomerDisplayNames(_ context.Context) (map[string]bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	names := make(map[string]bool, len(m.customers))
	for _, cust := range m.customers {
		names[cust.DisplayName] = true
	}
	return names, nil
}

// CreateInvoice asigna Id, DocNumber y SyncToken "0"; calcula TotalAmt y deja
// Balance = TotalAmt (recién emitida, nada cobrado).
func (m *MemoryClient) CreateInvoice(_ context.Context, inv *Invoice) (*Invoice, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.FailInvoiceCreate[inv.CustomerRef.Value]; err != nil {
		return nil, err
	}
	if _, ok := m.customers[inv.CustomerRef.Value]; !ok {
		return nil, &APIError{StatusCode: http.StatusBadRequest, FaultCode: "610", Message: "Object Not Found", Detail: "CustomerRef " + inv.CustomerRef.Value}
	}

	stored := copyInvoice(inv)
	stored.ID = m.allocID()
	stored.DocNumber = "MEM-" + stored.ID
	stored.SyncToken = "0"
	stored.TotalAmt = sumLines(stored.Line)
	stored.Balance = stored.TotalAmt
	m.invoices[stored.ID] = stored
	return copyInvoice(stored), nil
}

// UpdateInvoice valida el SyncToken y lo avanza.
func (m *MemoryClient) UpdateInvoice(_ context.Context, inv *Invoice) (*Invoice, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	existing, ok := m.invoices[inv.ID]
	if !ok {
		return nil, &APIError{StatusCode: http.StatusBadRequest, FaultCode: "610", Message: "Object Not Found", Detail: inv.ID}
	}
	if existing.SyncToken != inv.SyncToken {
		return nil, &APIError{StatusCode: http.StatusBadRequest, FaultCode: faultCodeStaleObject, Message: "Stale Object Error", Detail: inv.ID}
	}

	stored := copyInvoice(inv)
	stored.DocNumber = existing.DocNumber
	stored.SyncToken = bumpToken(existing.SyncToken)
	stored.TotalAmt = sumLines(stored.Line)
	stored.Balance = stored.TotalAmt
	m.invoices[inv.ID] = stored
	return copyInvoice(stored), nil
}

// VoidInvoice deja la factura en cero, como hace QBO al anular.
func (m *MemoryClient) VoidInvoice(_ context.Context, id, syncToken string) (*Invoice, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	existing, ok := m.invoices[id]
	if !ok {
		return nil, &APIError{StatusCode: http.StatusBadRequest, FaultCode: "610", Message: "Object Not Found", Detail: id}
	}
	if existing.SyncToken != syncToken {
		return nil, &APIError{StatusCode: http.StatusBadRequest, FaultCode: faultCodeStaleObject, Message: "Stale Object Error", Detail: id}
	}

	existing.TotalAmt = decimal.Zero
	existing.Balance = decimal.Zero
	existing.PrivateNote = "Voided"
	existing.SyncToken = bumpToken(existing.SyncToken)
	return copyInvoice(existing), nil
}

// QueryInvoices snapshot de facturas.
func (m *MemoryClient) QueryInvoices(_ context.Context) ([]*Invoice, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]*Invoice, 0, len(m.invoices))
	for _, inv := range m.invoices {
		out = append(out, copyInvoice(inv))
	}
	return out, nil
}

func sumLines(lines []Line) decimal.Decimal {
	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(l.Amount)
	}
	return total
}
