package sync

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Mantenimiento-api/internal/domain/entity"
	"github.com/jhoicas/Mantenimiento-api/internal/infrastructure/qbo"
)

// Pull trae el estado remoto y lo reconcilia contra el Entity Store. La
// correspondencia se resuelve en este orden:
//
//  1. por ExternalID (enlace bidireccional ya establecido),
//  2. por el token "(Location ID: ...)" incrustado en el CustomerMemo
//     (registros remotos anteriores al enlace bidireccional),
//  3. por CustomerRef, solo cuando apunta sin ambigüedad a una sede.
//
// El memo es una pista best-effort, no una clave garantizada: pudo editarse a
// mano en la consola QBO. QBO manda sobre el dinero; el estado local de la
// factura se recalcula con la heurística (TotalAmt, Balance).
func (o *Orchestrator) Pull(ctx context.Context) *BatchReport {
	report := &BatchReport{}
	if cfgErr := o.notConfigured(); cfgErr != nil {
		report.add(failResult(EntityCompany, "", cfgErr))
		return report
	}

	var customers []*qbo.Customer
	err := o.retry.Do(ctx, func() error {
		var opErr error
		customers, opErr = o.client.QueryCustomers(ctx)
		return opErr
	})
	if err != nil {
		report.add(failResult(EntityCompany, "", classifyCallError(err, CodeUpdateFailed, "consultar customers QBO")))
		return report
	}

	byID := make(map[string]*qbo.Customer, len(customers))
	for _, cust := range customers {
		byID[cust.ID] = cust
	}

	for _, cust := range customers {
		if ctx.Err() != nil {
			return report
		}
		report.add(o.reconcileCustomer(ctx, cust, byID))
	}

	var invoices []*qbo.Invoice
	err = o.retry.Do(ctx, func() error {
		var opErr error
		invoices, opErr = o.client.QueryInvoices(ctx)
		return opErr
	})
	if err != nil {
		report.add(failResult(EntityInvoice, "", classifyCallError(err, CodeUpdateFailed, "consultar facturas QBO")))
		return report
	}

	for _, remote := range invoices {
		if ctx.Err() != nil {
			return report
		}
		report.add(o.reconcileInvoice(ctx, remote))
	}

	o.log.Info().Str("summary", report.Summary()).Msg("pull de QBO terminado")
	return report
}

// reconcileCustomer aplica un customer remoto sobre el Entity Store.
func (o *Orchestrator) reconcileCustomer(ctx context.Context, cust *qbo.Customer, byID map[string]*qbo.Customer) Result {
	// Un nodo a profundidad 3 jamás se sincroniza automáticamente.
	if err := qbo.ValidateHierarchyDepth(cust, byID); err != nil {
		return failResult(EntityLocation, cust.ID, wrapError(CodeHierarchyTooDeep, err, "customer remoto %s", cust.ID))
	}

	isSub := cust.Job != nil && *cust.Job
	if isSub {
		parsed := qbo.ParseCustomerName(cust)
		if parsed.MalformedSub {
			// Dato remoto creado a mano: warning de calidad, no fallo duro.
			o.log.Warn().Str("qbo_id", cust.ID).Str("display_name", cust.DisplayName).
				Msg("sub-customer sin separador en el DisplayName; se usa el nombre completo como sede")
		}
		loc, err := o.locations.GetByExternalID(ctx, cust.ID)
		if err != nil || loc == nil {
			return failResult(EntityLocation, cust.ID, newError(CodeUnmatched, "sub-customer remoto %s (%q) sin sede local", cust.ID, cust.DisplayName))
		}
		parentRef := ""
		if cust.ParentRef != nil {
			parentRef = cust.ParentRef.Value
		}
		// Refresca el token de versión y el espejo del padre remoto.
		if saveErr := o.locations.SaveExternalLink(ctx, loc.ID, cust.ID, cust.SyncToken, parentRef); saveErr != nil {
			return failResult(EntityLocation, loc.ID, wrapError(CodeUpdateFailed, saveErr, "refrescar enlace de sede %s", loc.ID))
		}
		return okResult(EntityLocation, loc.ID, cust.ID, cust.SyncToken)
	}

	company, err := o.companies.GetByExternalID(ctx, cust.ID)
	if err != nil || company == nil {
		// Puede ser una sede standalone sincronizada como top-level.
		if loc, locErr := o.locations.GetByExternalID(ctx, cust.ID); locErr == nil && loc != nil {
			if saveErr := o.locations.SaveExternalLink(ctx, loc.ID, cust.ID, cust.SyncToken, ""); saveErr != nil {
				return failResult(EntityLocation, loc.ID, wrapError(CodeUpdateFailed, saveErr, "refrescar enlace de sede %s", loc.ID))
			}
			return okResult(EntityLocation, loc.ID, cust.ID, cust.SyncToken)
		}
		return failResult(EntityCompany, cust.ID, newError(CodeUnmatched, "customer remoto %s (%q) sin empresa local", cust.ID, cust.DisplayName))
	}
	if saveErr := o.companies.SaveExternalLink(ctx, company.ID, cust.ID, cust.SyncToken); saveErr != nil {
		return failResult(EntityCompany, company.ID, wrapError(CodeUpdateFailed, saveErr, "refrescar enlace de empresa %s", company.ID))
	}
	return okResult(EntityCompany, company.ID, cust.ID, cust.SyncToken)
}

// reconcileInvoice aplica una factura remota sobre el Entity Store.
func (o *Orchestrator) reconcileInvoice(ctx context.Context, remote *qbo.Invoice) Result {
	status := qbo.InferInvoiceStatus(remote.TotalAmt, remote.Balance)

	// 1. Enlace bidireccional ya establecido. QBO manda sobre el dinero:
	// además del estado se adopta el total remoto.
	if inv, err := o.invoices.GetByExternalID(ctx, remote.ID); err == nil && inv != nil {
		inv.Status = status
		inv.GrandTotal = remote.TotalAmt
		inv.UpdatedAt = time.Now()
		if updErr := o.invoices.Update(ctx, inv); updErr != nil {
			return failResult(EntityInvoice, inv.ID, wrapError(CodeUpdateFailed, updErr, "actualizar estado de factura %s", inv.ID))
		}
		if saveErr := o.invoices.SaveExternalLink(ctx, inv.ID, remote.ID, remote.SyncToken, remote.DocNumber); saveErr != nil {
			return failResult(EntityInvoice, inv.ID, wrapError(CodeUpdateFailed, saveErr, "refrescar enlace de factura %s", inv.ID))
		}
		return okResult(EntityInvoice, inv.ID, remote.ID, remote.SyncToken)
	}

	// 2. Factura remota anterior al enlace: recuperar la sede por el memo.
	loc := o.resolveInvoiceLocation(ctx, remote)
	if loc == nil {
		return failResult(EntityInvoice, remote.ID, newError(CodeUnmatched,
			"factura remota %s (doc %s) sin sede resoluble: memo sin token y CustomerRef ambiguo", remote.ID, remote.DocNumber))
	}

	imported := o.importRemoteInvoice(remote, loc, status)
	lines := importRemoteLines(imported.ID, remote.Line)
	if err := o.invoices.Create(ctx, imported, lines); err != nil {
		return failResult(EntityInvoice, remote.ID, wrapError(CodeCreateFailed, err, "importar factura remota %s", remote.ID))
	}
	if saveErr := o.invoices.SaveExternalLink(ctx, imported.ID, remote.ID, remote.SyncToken, remote.DocNumber); saveErr != nil {
		return failResult(EntityInvoice, imported.ID, wrapError(CodeCreateFailed, saveErr, "enlazar factura importada %s", imported.ID))
	}
	o.log.Info().Str("invoice", imported.ID).Str("qbo_id", remote.ID).Str("location", loc.ID).Msg("factura remota importada")
	return okResult(EntityInvoice, imported.ID, remote.ID, remote.SyncToken)
}

// resolveInvoiceLocation sede de una factura remota: primero el token del memo,
// después CustomerRef cuando apunta directo a una sede. Un CustomerRef que
// apunta a una empresa padre es ambiguo (compartido por muchas sedes) y no se
// adivina.
func (o *Orchestrator) resolveInvoiceLocation(ctx context.Context, remote *qbo.Invoice) *entity.Location {
	if remote.CustomerMemo != nil {
		if locID, ok := qbo.ExtractLocationID(remote.CustomerMemo.Value); ok {
			if loc, err := o.locations.GetByID(ctx, locID); err == nil && loc != nil {
				return loc
			}
		}
	}
	if loc, err := o.locations.GetByExternalID(ctx, remote.CustomerRef.Value); err == nil && loc != nil {
		return loc
	}
	return nil
}

func (o *Orchestrator) importRemoteInvoice(remote *qbo.Invoice, loc *entity.Location, status string) *entity.Invoice {
	now := time.Now()
	inv := &entity.Invoice{
		ID:         uuid.New().String(),
		LocationID: loc.ID,
		CompanyID:  loc.CompanyID,
		Status:     status,
		GrandTotal: remote.TotalAmt,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if remote.CustomerMemo != nil {
		inv.CustomerNote = qbo.StripLocationToken(remote.CustomerMemo.Value)
	}
	if t, err := time.Parse(qbo.DateFormat, remote.TxnDate); err == nil {
		inv.TxnDate = t
	}
	if t, err := time.Parse(qbo.DateFormat, remote.DueDate); err == nil {
		inv.DueDate = t
	}
	subtotal := decimal.Zero
	for _, l := range remote.Line {
		subtotal = subtotal.Add(l.Amount)
	}
	inv.Subtotal = subtotal
	inv.TaxTotal = remote.TotalAmt.Sub(subtotal)
	return inv
}

func importRemoteLines(invoiceID string, remoteLines []qbo.Line) []*entity.InvoiceLine {
	lines := make([]*entity.InvoiceLine, 0, len(remoteLines))
	for i, l := range remoteLines {
		if l.DetailType != qbo.DetailTypeSalesItem || l.SalesItemLineDetail == nil {
			continue
		}
		lineNum := l.LineNum
		if lineNum == 0 {
			lineNum = i + 1
		}
		line := &entity.InvoiceLine{
			ID:          uuid.New().String(),
			InvoiceID:   invoiceID,
			LineNumber:  lineNum,
			Description: l.Description,
			Quantity:    l.SalesItemLineDetail.Qty,
			UnitPrice:   l.SalesItemLineDetail.UnitPrice,
		}
		if l.SalesItemLineDetail.ItemRef != nil {
			line.ExternalItemRef = l.SalesItemLineDetail.ItemRef.Value
		}
		if l.SalesItemLineDetail.TaxCodeRef != nil {
			line.ExternalTaxCodeRef = l.SalesItemLineDetail.TaxCodeRef.Value
		}
		lines = append(lines, line)
	}
	return lines
}
