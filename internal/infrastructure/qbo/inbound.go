package qbo

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Mantenimiento-api/internal/domain/entity"
	domqbo "github.com/jhoicas/Mantenimiento-api/internal/domain/qbo"
)

// locationIDPattern token que el outbound incrusta en CustomerMemo para que el
// pull pueda recuperar a qué sede pertenece una factura cuando el CustomerRef
// apunta a la empresa padre (compartida por muchas sedes).
var locationIDPattern = regexp.MustCompile(`\(Location ID: ([^)]+)\)`)

// BuildCustomerMemo añade el token "(Location ID: <id>)" después de la nota
// del cliente. Es el mecanismo de reconciliación best-effort del pull; el
// camino por CustomerRef sigue existiendo como fallback.
func BuildCustomerMemo(customerNote, locationID string) string {
	token := "(Location ID: " + locationID + ")"
	if customerNote == "" {
		return token
	}
	return customerNote + " " + token
}

// ExtractLocationID recupera el ID de sede incrustado en un CustomerMemo.
// ok=false si el memo no contiene el token (factura creada en la consola de
// QBO o memo editado a mano): el caller debe caer al camino por CustomerRef.
func ExtractLocationID(memo string) (locationID string, ok bool) {
	m := locationIDPattern.FindStringSubmatch(memo)
	if m == nil {
		return "", false
	}
	return strings.TrimSpace(m[1]), true
}

// StripLocationToken devuelve la nota del cliente sin el token de sede.
func StripLocationToken(memo string) string {
	return strings.TrimSpace(locationIDPattern.ReplaceAllString(memo, ""))
}

// ParsedCustomerName resultado de interpretar el DisplayName de un customer remoto.
type ParsedCustomerName struct {
	ParentName   string
	LocationName string
	// MalformedSub true cuando el customer se declara Sub-Customer (Job) pero su
	// DisplayName no contiene el separador ": ". Es un warning de calidad de
	// datos (registro creado a mano en la consola QBO), no un fallo duro.
	MalformedSub bool
}

// ParseCustomerName recupera {parentName, locationName} de un Sub-Customer.
// Solo intenta partir el nombre cuando el registro se declara Job; para
// customers top-level el DisplayName completo es el nombre.
func ParseCustomerName(cust *Customer) ParsedCustomerName {
	isSub := cust.Job != nil && *cust.Job
	if !isSub {
		return ParsedCustomerName{LocationName: cust.DisplayName}
	}
	parent, location, ok := domqbo.SplitDisplayName(cust.DisplayName)
	return ParsedCustomerName{
		ParentName:   parent,
		LocationName: location,
		MalformedSub: !ok,
	}
}

// CompanyFromCustomer reconstruye los campos locales de una empresa a partir
// del payload QBO. No muta entidades existentes: devuelve un valor fresco que
// el orquestador decide cómo aplicar. Campos ausentes quedan ausentes, nunca
// se convierten en strings vacíos por un bloque de dirección en blanco.
func CompanyFromCustomer(cust *Customer) *entity.Company {
	c := &entity.Company{
		Name:            cust.DisplayName,
		IsActive:        cust.Active,
		ExternalID:      cust.ID,
		ExternalVersion: cust.SyncToken,
	}
	if cust.CompanyName != "" && cust.CompanyName != cust.DisplayName {
		c.LegalName = cust.CompanyName
	}
	if cust.PrimaryPhone != nil {
		c.Phone = cust.PrimaryPhone.FreeFormNumber
	}
	if cust.PrimaryEmailAddr != nil {
		c.Email = cust.PrimaryEmailAddr.Address
	}
	if cust.BillAddr != nil {
		c.BillingAddress = entity.Address{
			Line1:      cust.BillAddr.Line1,
			City:       cust.BillAddr.City,
			State:      cust.BillAddr.CountrySubDivisionCode,
			PostalCode: cust.BillAddr.PostalCode,
			Country:    cust.BillAddr.Country,
		}
	}
	return c
}

// InferInvoiceStatus deduce el estado local a partir de (TotalAmt, Balance).
// QBO es la fuente de verdad del dinero; este estado es una conveniencia de
// presentación y NUNCA debe usarse para decidir reglas de negocio locales.
//
//	Balance==0 && Total>0 → paid
//	Total==0 && Balance==0 → void
//	resto                  → sent
//
// Heurística aproximada; queda abierta la pregunta de si existen facturas de
// $0 no anuladas que necesiten un cuarto caso.
func InferInvoiceStatus(totalAmt, balance decimal.Decimal) string {
	switch {
	case balance.IsZero() && totalAmt.GreaterThan(decimal.Zero):
		return entity.InvoiceStatusPaid
	case totalAmt.IsZero() && balance.IsZero():
		return entity.InvoiceStatusVoid
	default:
		return entity.InvoiceStatusSent
	}
}
