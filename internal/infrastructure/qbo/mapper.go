package qbo

import (
	"fmt"

	"github.com/jhoicas/Mantenimiento-api/internal/domain"
	"github.com/jhoicas/Mantenimiento-api/internal/domain/entity"
	domqbo "github.com/jhoicas/Mantenimiento-api/internal/domain/qbo"
)

// Mapper traduce entidades locales a payloads QBO y viceversa. Es puro y sin
// estado mutable: nunca modifica las entidades, solo produce/consume DTOs.
type Mapper struct {
	currency string // código ISO para CurrencyRef (ej: "USD", "COP")
}

// NewMapper construye el traductor. currency vacío omite CurrencyRef.
func NewMapper(currency string) *Mapper {
	return &Mapper{currency: currency}
}

// addressPayload convierte una dirección local al bloque QBO, o nil si está
// vacía (omitir el bloque completo, nunca enviar strings vacíos).
func addressPayload(a entity.Address) *PhysicalAddress {
	if a.IsEmpty() {
		return nil
	}
	return &PhysicalAddress{
		Line1:                  a.Line1,
		City:                   a.City,
		CountrySubDivisionCode: a.State,
		PostalCode:             a.PostalCode,
		Country:                a.Country,
	}
}

func phonePayload(phone string) *Telephone {
	if phone == "" {
		return nil
	}
	return &Telephone{FreeFormNumber: phone}
}

func emailPayload(email string) *EmailAddress {
	if email == "" {
		return nil
	}
	return &EmailAddress{Address: email}
}

// attachUpdateTokens adjunta Id+SyncToken en modo update. Su ausencia es una
// violación de contrato del caller: error local, jamás un create silencioso.
func attachUpdateTokens(externalID, externalVersion string, setID func(string), setToken func(string)) error {
	if externalID == "" || externalVersion == "" {
		return domain.ErrMissingExternalID
	}
	setID(externalID)
	setToken(externalVersion)
	return nil
}

// CompanyToCustomer mapea una empresa a un Customer top-level.
// update=true exige ExternalID/ExternalVersion presentes.
func (m *Mapper) CompanyToCustomer(c *entity.Company, update bool) (*Customer, error) {
	cust := &Customer{
		DisplayName:      c.Name,
		CompanyName:      c.CompanyName(),
		PrimaryPhone:     phonePayload(c.Phone),
		PrimaryEmailAddr: emailPayload(c.Email),
		BillAddr:         addressPayload(c.BillingAddress),
		Active:           c.IsActive,
	}
	if update {
		if err := attachUpdateTokens(c.ExternalID, c.ExternalVersion,
			func(s string) { cust.ID = s }, func(s string) { cust.SyncToken = s }); err != nil {
			return nil, fmt.Errorf("empresa %s: %w", c.ID, err)
		}
	}
	return cust, nil
}

// LocationToCustomer mapea una sede a su forma QBO:
//
//   - Con empresa padre → Sub-Customer: DisplayName "{Padre}: {Sede}",
//     Job=true, ParentRef y BillWithParent viajan SIEMPRE (también en update)
//     porque cualquiera de los tres puede cambiar por separado.
//   - Sin padre → Customer top-level con los campos de la sede.
//
// parent puede ser nil solo para sedes standalone. Una sede con padre cuyo
// padre no tiene ExternalID es un error local (el orquestador lo reporta como
// PARENT_NOT_SYNCED antes de llegar aquí).
func (m *Mapper) LocationToCustomer(loc *entity.Location, parent *entity.Company, update bool) (*Customer, error) {
	cust := &Customer{
		PrimaryPhone:     phonePayload(loc.Phone),
		PrimaryEmailAddr: emailPayload(loc.Email),
		BillAddr:         addressPayload(loc.ServiceAddress),
		Active:           !loc.Inactive,
	}

	if loc.HasParent() {
		if parent == nil || parent.ExternalID == "" {
			return nil, fmt.Errorf("sede %s: la empresa padre %s no tiene ExternalID", loc.ID, loc.CompanyID)
		}
		job := true
		bwp := loc.BillWithParent
		cust.DisplayName = domqbo.BuildDisplayName(parent.Name, loc.Name)
		cust.Job = &job
		cust.ParentRef = &Ref{Value: parent.ExternalID}
		cust.BillWithParent = &bwp
	} else {
		cust.DisplayName = loc.Name
	}

	if update {
		if err := attachUpdateTokens(loc.ExternalID, loc.ExternalVersion,
			func(s string) { cust.ID = s }, func(s string) { cust.SyncToken = s }); err != nil {
			return nil, fmt.Errorf("sede %s: %w", loc.ID, err)
		}
	}
	return cust, nil
}

// InvoiceToPayload mapea una factura local a la factura QBO.
//
// La resolución del CustomerRef es una decisión de dos ramas evaluada en el
// momento del sync (nunca almacenada):
//
//	billWithParent && padre sincronizado → se factura a la empresa padre
//	en otro caso                         → se factura a la propia sede
//
// Si ninguna referencia está disponible el mapeo falla en seco: una factura
// jamás se sincroniza contra un cliente adivinado o vacío.
//
// BillAddr es la dirección de facturación del padre cuando se factura al
// padre, si no la dirección de servicio. ShipAddr es SIEMPRE la dirección de
// servicio de la sede: es lo que permite que una factura consolidada muestre
// qué sitio fue atendido.
func (m *Mapper) InvoiceToPayload(inv *entity.Invoice, lines []*entity.InvoiceLine, loc *entity.Location, parent *entity.Company, update bool) (*Invoice, error) {
	payload := &Invoice{
		ShipAddr:     addressPayload(loc.ServiceAddress),
		CustomerMemo: &MemoRef{Value: BuildCustomerMemo(inv.CustomerNote, loc.ID)},
		PrivateNote:  inv.PrivateNote,
	}

	switch {
	case loc.BillWithParent && parent != nil && parent.ExternalID != "":
		payload.CustomerRef = Ref{Value: parent.ExternalID}
		payload.BillAddr = addressPayload(parent.BillingAddress)
	case loc.ExternalID != "":
		payload.CustomerRef = Ref{Value: loc.ExternalID}
		payload.BillAddr = addressPayload(loc.ServiceAddress)
	default:
		return nil, fmt.Errorf("factura %s (sede %s): %w", inv.ID, loc.ID, domain.ErrBillingTargetUnresolved)
	}

	if !inv.TxnDate.IsZero() {
		payload.TxnDate = inv.TxnDate.Format(DateFormat)
	}
	if !inv.DueDate.IsZero() {
		payload.DueDate = inv.DueDate.Format(DateFormat)
	}
	if m.currency != "" {
		payload.CurrencyRef = &Ref{Value: m.currency}
	}

	payload.Line = make([]Line, 0, len(lines))
	for _, l := range lines {
		line := Line{
			LineNum:     l.LineNumber,
			Description: l.Description,
			Amount:      l.Amount(), // Qty×UnitPrice recalculado, no el subtotal almacenado
			DetailType:  DetailTypeSalesItem,
			SalesItemLineDetail: &SalesItemLineDetail{
				Qty:       l.Quantity,
				UnitPrice: l.UnitPrice,
			},
		}
		if l.ExternalItemRef != "" {
			line.SalesItemLineDetail.ItemRef = &Ref{Value: l.ExternalItemRef}
		}
		if l.ExternalTaxCodeRef != "" {
			line.SalesItemLineDetail.TaxCodeRef = &Ref{Value: l.ExternalTaxCodeRef}
		}
		payload.Line = append(payload.Line, line)
	}

	if update {
		if err := attachUpdateTokens(inv.ExternalID, inv.ExternalVersion,
			func(s string) { payload.ID = s }, func(s string) { payload.SyncToken = s }); err != nil {
			return nil, fmt.Errorf("factura %s: %w", inv.ID, err)
		}
	}
	return payload, nil
}
