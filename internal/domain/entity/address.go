package entity

// Address dirección postal usada tanto para facturación (Company) como para
// el sitio de servicio (Location). Los nombres de campo siguen la convención
// de QuickBooks (State = CountrySubDivisionCode).
type Address struct {
	Line1      string
	City       string
	State      string
	PostalCode string
	Country    string
}

// IsEmpty informa si todos los campos de la dirección están vacíos.
// QBO trata distinto un bloque de dirección vacío que uno ausente: si está
// vacía, el mapper debe omitir el bloque por completo, nunca enviar strings vacíos.
func (a Address) IsEmpty() bool {
	return a.Line1 == "" && a.City == "" && a.State == "" && a.PostalCode == "" && a.Country == ""
}
