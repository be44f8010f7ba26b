package qbo

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// ── Credenciales ──────────────────────────────────────────────────────────────

// Credentials credencial bearer ya emitida para un realm QBO. La adquisición
// OAuth queda fuera de este motor: se asume un token válido. Las credenciales
// se construyen e inyectan por batch/request; no hay singleton compartido, así
// dos batches concurrentes con realms distintos no se contaminan entre sí.
type Credentials struct {
	RealmID     string
	AccessToken string
}

// Configured informa si hay credencial utilizable.
func (c Credentials) Configured() bool {
	return c.RealmID != "" && c.AccessToken != ""
}

// ── Puerto (interfaz) ─────────────────────────────────────────────────────────

// Client define el puerto de salida hacia QuickBooks Online. La implementación
// real usa el API REST v3; MemoryClient sirve para dev y tests. El orquestador
// depende solo de esta interfaz.
type Client interface {
	CreateCustomer(ctx context.Context, cust *Customer) (*Customer, error)
	UpdateCustomer(ctx context.Context, cust *Customer) (*Customer, error)
	GetCustomer(ctx context.Context, id string) (*Customer, error)
	// QueryCustomers devuelve el snapshot de customers del realm (para el pull
	// y el validador de jerarquía).
	QueryCustomers(ctx context.Context) ([]*Customer, error)
	// CustomerDisplayNames devuelve los DisplayNames ya tomados en el realm.
	// Se consulta ANTES de cada create para aplicar el helper de unicidad.
	CustomerDisplayNames(ctx context.Context) (map[string]bool, error)

	CreateInvoice(ctx context.Context, inv *Invoice) (*Invoice, error)
	UpdateInvoice(ctx context.Context, inv *Invoice) (*Invoice, error)
	VoidInvoice(ctx context.Context, id, syncToken string) (*Invoice, error)
	QueryInvoices(ctx context.Context) ([]*Invoice, error)
}

// ── Errores del API ───────────────────────────────────────────────────────────

// Códigos de fault QBO que el motor distingue.
const (
	faultCodeDuplicateName = "6240" // Duplicate Name Exists Error
	faultCodeStaleObject   = "5010" // Stale Object Error (SyncToken viejo)
)

// APIError fault devuelto por QBO (o error de transporte con status HTTP).
type APIError struct {
	StatusCode int
	FaultCode  string
	Message    string
	Detail     string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("qbo: HTTP %d fault %s: %s (%s)", e.StatusCode, e.FaultCode, e.Message, e.Detail)
}

// IsDuplicateName rechazo por DisplayName duplicado.
func (e *APIError) IsDuplicateName() bool { return e.FaultCode == faultCodeDuplicateName }

// IsStaleSyncToken rechazo por SyncToken viejo: otro cliente ya escribió.
func (e *APIError) IsStaleSyncToken() bool { return e.FaultCode == faultCodeStaleObject }

// IsAuth credencial inválida o expirada.
func (e *APIError) IsAuth() bool { return e.StatusCode == http.StatusUnauthorized || e.StatusCode == http.StatusForbidden }

// IsTransient errores que ameritan reintento con backoff (rate limit, 5xx).
func (e *APIError) IsTransient() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= 500
}

// ── Implementación HTTP ───────────────────────────────────────────────────────

const (
	baseURLSandbox = "https://sandbox-quickbooks.api.intuit.com"
	baseURLProd    = "https://quickbooks.api.intuit.com"
)

// Asegura que HTTPClient implementa Client.
var _ Client = (*HTTPClient)(nil)

// HTTPClient implementa Client contra el API REST v3 de QBO usando net/http de
// la stdlib. Timeout generoso: el API puede tardar y además aplica rate limit.
type HTTPClient struct {
	httpClient   *http.Client
	baseURL      string
	creds        Credentials
	minorVersion string
}

// HTTPClientOptions opciones del cliente real.
type HTTPClientOptions struct {
	Sandbox      bool
	BaseURL      string // override explícito (tests de integración)
	MinorVersion string
}

// NewHTTPClient construye el cliente REST para un realm concreto.
func NewHTTPClient(creds Credentials, opts HTTPClientOptions) *HTTPClient {
	base := opts.BaseURL
	if base == "" {
		if opts.Sandbox {
			base = baseURLSandbox
		} else {
			base = baseURLProd
		}
	}
	return &HTTPClient{
		httpClient:   &http.Client{Timeout: 60 * time.Second},
		baseURL:      base,
		creds:        creds,
		minorVersion: opts.MinorVersion,
	}
}

// entityEnvelope envoltura de respuesta de create/update/read.
type entityEnvelope struct {
	Customer *Customer `json:"Customer,omitempty"`
	Invoice  *Invoice  `json:"Invoice,omitempty"`
	Fault    *fault    `json:"Fault,omitempty"`
}

// queryEnvelope envoltura de respuesta de /query.
type queryEnvelope struct {
	QueryResponse struct {
		Customer []*Customer `json:"Customer,omitempty"`
		Invoice  []*Invoice  `json:"Invoice,omitempty"`
	} `json:"QueryResponse"`
	Fault *fault `json:"Fault,omitempty"`
}

type fault struct {
	Type  string `json:"type"`
	Error []struct {
		Message string `json:"Message"`
		Detail  string `json:"Detail"`
		Code    string `json:"code"`
	} `json:"Error"`
}

func (f *fault) toAPIError(status int) *APIError {
	apiErr := &APIError{StatusCode: status}
	if len(f.Error) > 0 {
		apiErr.FaultCode = f.Error[0].Code
		apiErr.Message = f.Error[0].Message
		apiErr.Detail = f.Error[0].Detail
	}
	return apiErr
}

func (c *HTTPClient) endpoint(resource string, params url.Values) string {
	if params == nil {
		params = url.Values{}
	}
	if c.minorVersion != "" {
		params.Set("minorversion", c.minorVersion)
	}
	u := fmt.Sprintf("%s/v3/company/%s/%s", c.baseURL, c.creds.RealmID, resource)
	if q := params.Encode(); q != "" {
		u += "?" + q
	}
	return u
}

// do ejecuta la petición y decodifica la envoltura. Cualquier status no-2xx se
// traduce a *APIError para que la política de reintentos pueda clasificarlo.
func (c *HTTPClient) do(ctx context.Context, method, rawURL string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("serializar payload: %w", err)
		}
		reader = bytes.NewReader(buf)
	}
	req, err := http.NewRequestWithContext(ctx, method, rawURL, reader)
	if err != nil {
		return fmt.Errorf("construir request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.creds.AccessToken)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("llamada QBO: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("leer respuesta QBO: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var env entityEnvelope
		if jsonErr := json.Unmarshal(raw, &env); jsonErr == nil && env.Fault != nil {
			return env.Fault.toAPIError(resp.StatusCode)
		}
		return &APIError{StatusCode: resp.StatusCode, Message: http.StatusText(resp.StatusCode), Detail: string(raw)}
	}
	if out != nil {
		if err := json.Unmarshal(raw, out); err != nil {
			return fmt.Errorf("decodificar respuesta QBO: %w", err)
		}
	}
	return nil
}

func (c *HTTPClient) postEntity(ctx context.Context, resource string, body interface{}) (*entityEnvelope, error) {
	var env entityEnvelope
	if err := c.do(ctx, http.MethodPost, c.endpoint(resource, nil), body, &env); err != nil {
		return nil, err
	}
	return &env, nil
}

func (c *HTTPClient) query(ctx context.Context, stmt string) (*queryEnvelope, error) {
	params := url.Values{}
	params.Set("query", stmt)
	var env queryEnvelope
	if err := c.do(ctx, http.MethodGet, c.endpoint("query", params), nil, &env); err != nil {
		return nil, err
	}
	return &env, nil
}

// CreateCustomer crea un Customer/Sub-Customer.
func (c *HTTPClient) CreateCustomer(ctx context.Context, cust *Customer) (*Customer, error) {
	env, err := c.postEntity(ctx, "customer", cust)
	if err != nil {
		return nil, err
	}
	if env.Customer == nil {
		return nil, fmt.Errorf("respuesta QBO sin Customer")
	}
	return env.Customer, nil
}

// UpdateCustomer actualización sparse con Id+SyncToken obligatorios.
func (c *HTTPClient) UpdateCustomer(ctx context.Context, cust *Customer) (*Customer, error) {
	return c.CreateCustomer(ctx, cust) // mismo endpoint; QBO distingue por la presencia de Id
}

// GetCustomer lee un customer por Id.
func (c *HTTPClient) GetCustomer(ctx context.Context, id string) (*Customer, error) {
	var env entityEnvelope
	if err := c.do(ctx, http.MethodGet, c.endpoint("customer/"+url.PathEscape(id), nil), nil, &env); err != nil {
		return nil, err
	}
	if env.Customer == nil {
		return nil, fmt.Errorf("respuesta QBO sin Customer")
	}
	return env.Customer, nil
}

// QueryCustomers snapshot de todos los customers del realm.
func (c *HTTPClient) QueryCustomers(ctx context.Context) ([]*Customer, error) {
	env, err := c.query(ctx, "select * from Customer maxresults 1000")
	if err != nil {
		return nil, err
	}
	return env.QueryResponse.Customer, nil
}

// CustomerDisplayNames nombres ya tomados en el realm.
func (c *HTTPClient) CustomerDisplayNames(ctx context.Context) (map[string]bool, error) {
	customers, err := c.QueryCustomers(ctx)
	if err != nil {
		return nil, err
	}
	names := make(map[string]bool, len(customers))
	for _, cust := range customers {
		names[cust.DisplayName] = true
	}
	return names, nil
}

// CreateInvoice crea una factura.
func (c *HTTPClient) CreateInvoice(ctx context.Context, inv *Invoice) (*Invoice, error) {
	env, err := c.postEntity(ctx, "invoice", inv)
	if err != nil {
		return nil, err
	}
	if env.Invoice == nil {
		return nil, fmt.Errorf("respuesta QBO sin Invoice")
	}
	return env.Invoice, nil
}

// UpdateInvoice actualización con Id+SyncToken obligatorios.
func (c *HTTPClient) UpdateInvoice(ctx context.Context, inv *Invoice) (*Invoice, error) {
	return c.CreateInvoice(ctx, inv)
}

// VoidInvoice anula la factura en QBO (nunca se borra en duro).
func (c *HTTPClient) VoidInvoice(ctx context.Context, id, syncToken string) (*Invoice, error) {
	params := url.Values{}
	params.Set("operation", "void")
	body := map[string]string{"Id": id, "SyncToken": syncToken}
	var env entityEnvelope
	if err := c.do(ctx, http.MethodPost, c.endpoint("invoice", params), body, &env); err != nil {
		return nil, err
	}
	if env.Invoice == nil {
		return nil, fmt.Errorf("respuesta QBO sin Invoice")
	}
	return env.Invoice, nil
}

// QueryInvoices snapshot de facturas del realm (para el pull).
func (c *HTTPClient) QueryInvoices(ctx context.Context) ([]*Invoice, error) {
	env, err := c.query(ctx, "select * from Invoice maxresults 1000")
	if err != nil {
		return nil, err
	}
	return env.QueryResponse.Invoice, nil
}
