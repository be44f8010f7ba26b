package sync

import (
	"context"
	"errors"

	"github.com/jhoicas/Mantenimiento-api/internal/domain"
	"github.com/jhoicas/Mantenimiento-api/internal/domain/entity"
	domqbo "github.com/jhoicas/Mantenimiento-api/internal/domain/qbo"
	"github.com/jhoicas/Mantenimiento-api/internal/domain/repository"
	"github.com/jhoicas/Mantenimiento-api/internal/infrastructure/qbo"
	"github.com/jhoicas/Mantenimiento-api/pkg/logger"
)

// Orchestrator motor de sincronización con QBO. Máquina de estados por entidad
// sobre la presencia de ExternalID:
//
//	Unsynced → (create OK)     → Synced(externalId, version de la respuesta)
//	Synced   → (cambio local)  → Synced (update; la versión la dicta QBO)
//	Synced   → (desactivación) → Synced con Active=false (nunca vuelve a Unsynced)
//
// Cada sync de entidad es una unidad de trabajo independiente: no hay locks
// entre entidades; la dependencia padre-antes-que-hijo se impone con el mapa
// companyID→externalID del batch, no con un lock. Ninguna transacción local se
// mantiene abierta a través de una llamada de red.
//
// La credencial se construye e inyecta por instancia (una por request/batch):
// batches concurrentes con realms distintos no comparten estado mutable.
type Orchestrator struct {
	companies repository.CompanyRepository
	locations repository.LocationRepository
	invoices  repository.InvoiceRepository
	client    qbo.Client
	mapper    *qbo.Mapper
	creds     qbo.Credentials
	retry     RetryPolicy
	log       *logger.Logger
}

// NewOrchestrator construye el orquestador con todas sus dependencias.
func NewOrchestrator(
	companies repository.CompanyRepository,
	locations repository.LocationRepository,
	invoices repository.InvoiceRepository,
	client qbo.Client,
	mapper *qbo.Mapper,
	creds qbo.Credentials,
	retry RetryPolicy,
	log *logger.Logger,
) *Orchestrator {
	return &Orchestrator{
		companies: companies,
		locations: locations,
		invoices:  invoices,
		client:    client,
		mapper:    mapper,
		creds:     creds,
		retry:     retry,
		log:       log,
	}
}

// notConfigured chequeo fatal previo a cualquier operación.
func (o *Orchestrator) notConfigured() *Error {
	if !o.creds.Configured() {
		return newError(CodeNotConfigured, "sin credencial QBO (realm/token); el sync no puede ejecutarse")
	}
	return nil
}

// ── Empresas ──────────────────────────────────────────────────────────────────

// SyncCompany sincroniza una empresa puntual (camino on-demand).
func (o *Orchestrator) SyncCompany(ctx context.Context, companyID string) Result {
	if cfgErr := o.notConfigured(); cfgErr != nil {
		return failResult(EntityCompany, companyID, cfgErr)
	}
	company, err := o.companies.GetByID(ctx, companyID)
	if err != nil || company == nil {
		return failResult(EntityCompany, companyID, newError(CodeNotFound, "empresa %s no encontrada", companyID))
	}
	return o.syncCompanyEntity(ctx, company)
}

// syncCompanyEntity núcleo del sync de empresa. Lee ExternalID/Version en el
// momento de construir el payload y escribe de vuelta solo con respuesta
// confirmada cuyo Id coincide con el enviado.
func (o *Orchestrator) syncCompanyEntity(ctx context.Context, company *entity.Company) Result {
	if company.IsSynced() {
		payload, err := o.mapper.CompanyToCustomer(company, true)
		if err != nil {
			return failResult(EntityCompany, company.ID, wrapError(CodeMissingExternalID, err, "empresa %s", company.ID))
		}
		resp, syncErr := o.callUpdateCustomer(ctx, payload, "empresa "+company.ID)
		if syncErr != nil {
			return failResult(EntityCompany, company.ID, syncErr)
		}
		if saveErr := o.companies.SaveExternalLink(ctx, company.ID, resp.ID, resp.SyncToken); saveErr != nil {
			return failResult(EntityCompany, company.ID, wrapError(CodeUpdateFailed, saveErr, "persistir enlace de empresa %s", company.ID))
		}
		o.log.Info().Str("company", company.ID).Str("qbo_id", resp.ID).Str("sync_token", resp.SyncToken).Msg("empresa actualizada en QBO")
		return okResult(EntityCompany, company.ID, resp.ID, resp.SyncToken)
	}

	payload, err := o.mapper.CompanyToCustomer(company, false)
	if err != nil {
		return failResult(EntityCompany, company.ID, wrapError(CodeCreateFailed, err, "mapear empresa %s", company.ID))
	}
	resp, syncErr := o.createCustomerUnique(ctx, payload, "empresa "+company.ID)
	if syncErr != nil {
		return failResult(EntityCompany, company.ID, syncErr)
	}
	if saveErr := o.companies.SaveExternalLink(ctx, company.ID, resp.ID, resp.SyncToken); saveErr != nil {
		return failResult(EntityCompany, company.ID, wrapError(CodeCreateFailed, saveErr, "persistir enlace de empresa %s", company.ID))
	}
	o.log.Info().Str("company", company.ID).Str("qbo_id", resp.ID).Msg("empresa creada en QBO")
	return okResult(EntityCompany, company.ID, resp.ID, resp.SyncToken)
}

// ── Sedes ─────────────────────────────────────────────────────────────────────

// SyncLocation sincroniza una sede puntual. El padre se resuelve desde el
// repositorio; si no está sincronizado se falla en local sin llamada de red.
func (o *Orchestrator) SyncLocation(ctx context.Context, locationID string) Result {
	if cfgErr := o.notConfigured(); cfgErr != nil {
		return failResult(EntityLocation, locationID, cfgErr)
	}
	loc, err := o.locations.GetByID(ctx, locationID)
	if err != nil || loc == nil {
		return failResult(EntityLocation, locationID, newError(CodeNotFound, "sede %s no encontrada", locationID))
	}

	var parent *entity.Company
	if loc.HasParent() {
		parent, err = o.companies.GetByID(ctx, loc.CompanyID)
		if err != nil || parent == nil {
			return failResult(EntityLocation, loc.ID, newError(CodeNotFound, "empresa padre %s de la sede %s no encontrada", loc.CompanyID, loc.ID))
		}
		if !parent.IsSynced() {
			return failResult(EntityLocation, loc.ID, o.parentNotSynced(loc))
		}
	}
	return o.syncLocationEntity(ctx, loc, parent)
}

func (o *Orchestrator) parentNotSynced(loc *entity.Location) *Error {
	// Contexto completo (qué padre, qué sede): un re-run tras sincronizar al
	// padre debe funcionar sin que el operador tenga que adivinar nada.
	return newError(CodeParentNotSynced,
		"la sede %s (%q) depende de la empresa %s que aún no tiene ExternalID; sincronice la empresa y re-ejecute",
		loc.ID, loc.Name, loc.CompanyID)
}

func (o *Orchestrator) syncLocationEntity(ctx context.Context, loc *entity.Location, parent *entity.Company) Result {
	update := loc.IsSynced()
	payload, err := o.mapper.LocationToCustomer(loc, parent, update)
	if err != nil {
		code := CodeCreateFailed
		if errors.Is(err, domain.ErrMissingExternalID) {
			code = CodeMissingExternalID
		}
		return failResult(EntityLocation, loc.ID, wrapError(code, err, "mapear sede %s", loc.ID))
	}

	parentExternalID := ""
	if payload.ParentRef != nil {
		parentExternalID = payload.ParentRef.Value
	}

	var resp *qbo.Customer
	var syncErr *Error
	if update {
		resp, syncErr = o.callUpdateCustomer(ctx, payload, "sede "+loc.ID)
	} else {
		resp, syncErr = o.createCustomerUnique(ctx, payload, "sede "+loc.ID)
	}
	if syncErr != nil {
		return failResult(EntityLocation, loc.ID, syncErr)
	}

	if saveErr := o.locations.SaveExternalLink(ctx, loc.ID, resp.ID, resp.SyncToken, parentExternalID); saveErr != nil {
		return failResult(EntityLocation, loc.ID, wrapError(CodeUpdateFailed, saveErr, "persistir enlace de sede %s", loc.ID))
	}
	o.log.Info().Str("location", loc.ID).Str("qbo_id", resp.ID).Bool("update", update).Msg("sede sincronizada en QBO")
	return okResult(EntityLocation, loc.ID, resp.ID, resp.SyncToken)
}

// ── Batch ─────────────────────────────────────────────────────────────────────

// SyncAll sincroniza todas las entidades pendientes: empresas ESTRICTAMENTE
// antes que sedes. El mapa companyID→externalID se construye una vez por batch
// a partir de los resultados recién completados (no de datos almacenados
// potencialmente viejos), así una empresa creada en este mismo batch queda
// disponible de inmediato para sus sedes.
//
// Un batch abandonado por cancelación entre entidades conserva el estado de lo
// ya completado; nunca se cancela a mitad del sync de UNA entidad.
func (o *Orchestrator) SyncAll(ctx context.Context) *BatchReport {
	report := &BatchReport{}
	if cfgErr := o.notConfigured(); cfgErr != nil {
		report.add(failResult(EntityCompany, "", cfgErr))
		return report
	}

	companies, err := o.companies.ListPendingSync(ctx)
	if err != nil {
		report.add(failResult(EntityCompany, "", wrapError(CodeCreateFailed, err, "listar empresas pendientes")))
		return report
	}

	parentExternal := make(map[string]string, len(companies))
	for _, company := range companies {
		if ctx.Err() != nil {
			return report
		}
		res := o.syncCompanyEntity(ctx, company)
		report.add(res)
		if res.Success {
			parentExternal[company.ID] = res.ExternalID
		}
	}

	locations, err := o.locations.ListPendingSync(ctx)
	if err != nil {
		report.add(failResult(EntityLocation, "", wrapError(CodeCreateFailed, err, "listar sedes pendientes")))
		return report
	}

	for _, loc := range locations {
		if ctx.Err() != nil {
			return report
		}
		report.add(o.syncLocationInBatch(ctx, loc, parentExternal))
	}

	o.log.Info().Str("summary", report.Summary()).Int("failed", report.Failed()).Msg("batch de sync terminado")
	return report
}

// syncLocationInBatch resuelve el padre primero contra el mapa del batch y
// después contra el repositorio (empresas sincronizadas en batches previos).
// Un padre sin ExternalID falla EN LOCAL, sin llamada de red.
func (o *Orchestrator) syncLocationInBatch(ctx context.Context, loc *entity.Location, parentExternal map[string]string) Result {
	var parent *entity.Company
	if loc.HasParent() {
		stored, err := o.companies.GetByID(ctx, loc.CompanyID)
		if err != nil || stored == nil {
			return failResult(EntityLocation, loc.ID, newError(CodeNotFound, "empresa padre %s de la sede %s no encontrada", loc.CompanyID, loc.ID))
		}
		if extID, inBatch := parentExternal[loc.CompanyID]; inBatch {
			// El resultado del batch manda sobre lo almacenado.
			stored.ExternalID = extID
		}
		if stored.ExternalID == "" {
			return failResult(EntityLocation, loc.ID, o.parentNotSynced(loc))
		}
		parent = stored
	}
	return o.syncLocationEntity(ctx, loc, parent)
}

// ── Facturas ──────────────────────────────────────────────────────────────────

// SyncInvoice sincroniza una factura. El destino de facturación (padre o sede)
// se deriva aquí, en el momento del sync, a partir de Location.BillWithParent:
// nunca se almacena, así un cambio del flag entre la creación local y el primer
// sync no deja un destino viejo.
func (o *Orchestrator) SyncInvoice(ctx context.Context, invoiceID string) Result {
	if cfgErr := o.notConfigured(); cfgErr != nil {
		return failResult(EntityInvoice, invoiceID, cfgErr)
	}
	inv, lines, err := o.invoices.GetWithLines(ctx, invoiceID)
	if err != nil || inv == nil {
		return failResult(EntityInvoice, invoiceID, newError(CodeNotFound, "factura %s no encontrada", invoiceID))
	}
	loc, err := o.locations.GetByID(ctx, inv.LocationID)
	if err != nil || loc == nil {
		return failResult(EntityInvoice, inv.ID, newError(CodeNotFound, "sede %s de la factura %s no encontrada", inv.LocationID, inv.ID))
	}

	var parent *entity.Company
	if loc.HasParent() {
		parent, err = o.companies.GetByID(ctx, loc.CompanyID)
		if err != nil || parent == nil {
			return failResult(EntityInvoice, inv.ID, newError(CodeNotFound, "empresa padre %s no encontrada", loc.CompanyID))
		}
	}

	// Anulación: en QBO nunca hay borrado duro, solo void.
	if inv.Status == entity.InvoiceStatusVoid || inv.Status == entity.InvoiceStatusCancelled {
		return o.voidInvoiceEntity(ctx, inv)
	}

	update := inv.IsSynced()
	payload, err := o.mapper.InvoiceToPayload(inv, lines, loc, parent, update)
	if err != nil {
		code := CodeCreateFailed
		switch {
		case errors.Is(err, domain.ErrBillingTargetUnresolved):
			code = CodeBillingTargetUnresolved
		case errors.Is(err, domain.ErrMissingExternalID):
			code = CodeMissingExternalID
		}
		return failResult(EntityInvoice, inv.ID, wrapError(code, err, "mapear factura %s", inv.ID))
	}

	var resp *qbo.Invoice
	callErr := o.retry.Do(ctx, func() error {
		var opErr error
		if update {
			resp, opErr = o.client.UpdateInvoice(ctx, payload)
		} else {
			resp, opErr = o.client.CreateInvoice(ctx, payload)
		}
		return opErr
	})
	if callErr != nil {
		failCode := CodeCreateFailed
		if update {
			failCode = CodeUpdateFailed
		}
		return failResult(EntityInvoice, inv.ID, classifyCallError(callErr, failCode, "factura "+inv.ID))
	}
	if update && resp.ID != payload.ID {
		// Protección contra carreras: solo se escribe de vuelta si la respuesta
		// corresponde al Id que se envió.
		return failResult(EntityInvoice, inv.ID, newError(CodeUpdateFailed, "factura %s: la respuesta QBO trae Id %s distinto al enviado %s", inv.ID, resp.ID, payload.ID))
	}

	if saveErr := o.invoices.SaveExternalLink(ctx, inv.ID, resp.ID, resp.SyncToken, resp.DocNumber); saveErr != nil {
		return failResult(EntityInvoice, inv.ID, wrapError(CodeCreateFailed, saveErr, "persistir enlace de factura %s", inv.ID))
	}
	o.log.Info().Str("invoice", inv.ID).Str("qbo_id", resp.ID).Str("doc_number", resp.DocNumber).Msg("factura sincronizada en QBO")
	return okResult(EntityInvoice, inv.ID, resp.ID, resp.SyncToken)
}

// voidInvoiceEntity empuja la anulación. Una factura nunca sincronizada no
// tiene nada que anular en QBO: no-op exitoso.
func (o *Orchestrator) voidInvoiceEntity(ctx context.Context, inv *entity.Invoice) Result {
	if !inv.IsSynced() {
		return okResult(EntityInvoice, inv.ID, "", "")
	}
	var resp *qbo.Invoice
	callErr := o.retry.Do(ctx, func() error {
		var opErr error
		resp, opErr = o.client.VoidInvoice(ctx, inv.ExternalID, inv.ExternalVersion)
		return opErr
	})
	if callErr != nil {
		return failResult(EntityInvoice, inv.ID, classifyCallError(callErr, CodeVoidFailed, "anular factura "+inv.ID))
	}
	if saveErr := o.invoices.SaveExternalLink(ctx, inv.ID, resp.ID, resp.SyncToken, resp.DocNumber); saveErr != nil {
		return failResult(EntityInvoice, inv.ID, wrapError(CodeVoidFailed, saveErr, "persistir enlace de factura %s", inv.ID))
	}
	o.log.Info().Str("invoice", inv.ID).Str("qbo_id", resp.ID).Msg("factura anulada en QBO")
	return okResult(EntityInvoice, inv.ID, resp.ID, resp.SyncToken)
}

// ── Helpers de customers ──────────────────────────────────────────────────────

// createCustomerUnique aplica el helper de unicidad ANTES de la llamada de
// creación (QBO rechaza DisplayNames duplicados de plano) y, si aun así llega
// un rechazo por duplicado (carrera con otro cliente), relee los nombres y
// reintenta UNA sola vez antes de reportar.
func (o *Orchestrator) createCustomerUnique(ctx context.Context, payload *qbo.Customer, label string) (*qbo.Customer, *Error) {
	desired := payload.DisplayName
	taken, err := o.fetchDisplayNames(ctx)
	if err != nil {
		return nil, classifyCallError(err, CodeCreateFailed, label+": consultar nombres tomados")
	}
	payload.DisplayName = domqbo.BuildUniqueDisplayName(desired, taken)

	resp, callErr := o.callCreateCustomer(ctx, payload)
	if callErr == nil {
		return resp, nil
	}

	classified := classifyCallError(callErr, CodeCreateFailed, label)
	if classified.Code != CodeDuplicateName {
		return nil, classified
	}

	// Carrera perdida: otro cliente tomó el nombre entre la consulta y el
	// create. El sufijo se rederiva desde el nombre deseado original para no
	// acumular "(2) (2)".
	taken, err = o.fetchDisplayNames(ctx)
	if err != nil {
		return nil, classifyCallError(err, CodeCreateFailed, label+": reconsultar nombres tomados")
	}
	payload.DisplayName = domqbo.BuildUniqueDisplayName(desired, taken)
	resp, callErr = o.callCreateCustomer(ctx, payload)
	if callErr != nil {
		return nil, classifyCallError(callErr, CodeCreateFailed, label)
	}
	return resp, nil
}

func (o *Orchestrator) fetchDisplayNames(ctx context.Context) (map[string]bool, error) {
	var names map[string]bool
	err := o.retry.Do(ctx, func() error {
		var opErr error
		names, opErr = o.client.CustomerDisplayNames(ctx)
		return opErr
	})
	return names, err
}

func (o *Orchestrator) callCreateCustomer(ctx context.Context, payload *qbo.Customer) (*qbo.Customer, error) {
	var resp *qbo.Customer
	err := o.retry.Do(ctx, func() error {
		var opErr error
		resp, opErr = o.client.CreateCustomer(ctx, payload)
		return opErr
	})
	return resp, err
}

func (o *Orchestrator) callUpdateCustomer(ctx context.Context, payload *qbo.Customer, label string) (*qbo.Customer, *Error) {
	var resp *qbo.Customer
	callErr := o.retry.Do(ctx, func() error {
		var opErr error
		resp, opErr = o.client.UpdateCustomer(ctx, payload)
		return opErr
	})
	if callErr != nil {
		return nil, classifyCallError(callErr, CodeUpdateFailed, label)
	}
	if resp.ID != payload.ID {
		// Solo se escribe de vuelta si la respuesta corresponde al Id enviado:
		// protege los tokens de versión frente a un batch concurrente.
		return nil, newError(CodeUpdateFailed, "%s: la respuesta QBO trae Id %s distinto al enviado %s", label, resp.ID, payload.ID)
	}
	return resp, nil
}
