package sync

import "fmt"

// EntityType tipo de entidad sincronizada.
type EntityType string

const (
	EntityCompany  EntityType = "company"
	EntityLocation EntityType = "location"
	EntityInvoice  EntityType = "invoice"
)

// Result desenlace del sync de UNA entidad. Un batch nunca lanza por el fallo
// de una entidad individual: acumula un Result por entrada para que el caller
// reporte éxito parcial ("8 de 10 sedes sincronizadas; 2 bloqueadas por padre").
type Result struct {
	EntityType      EntityType `json:"entityType"`
	EntityID        string     `json:"entityId"`
	Success         bool       `json:"success"`
	ExternalID      string     `json:"externalId,omitempty"`
	ExternalVersion string     `json:"externalVersion,omitempty"`
	Err             *Error     `json:"-"`
	ErrorCode       string     `json:"errorCode,omitempty"`
	ErrorMessage    string     `json:"errorMessage,omitempty"`
}

func okResult(t EntityType, id, externalID, externalVersion string) Result {
	return Result{EntityType: t, EntityID: id, Success: true, ExternalID: externalID, ExternalVersion: externalVersion}
}

func failResult(t EntityType, id string, err *Error) Result {
	return Result{EntityType: t, EntityID: id, Err: err, ErrorCode: err.Code, ErrorMessage: err.Message}
}

// BatchReport agregado de resultados de un batch, consumible por la capa de
// auditoría/notificaciones para mostrarle el éxito parcial a un operador.
type BatchReport struct {
	Results []Result `json:"results"`
}

func (r *BatchReport) add(res Result) {
	r.Results = append(r.Results, res)
}

// Succeeded cantidad de entidades sincronizadas.
func (r *BatchReport) Succeeded() int {
	n := 0
	for _, res := range r.Results {
		if res.Success {
			n++
		}
	}
	return n
}

// Failed cantidad de entidades con error.
func (r *BatchReport) Failed() int {
	return len(r.Results) - r.Succeeded()
}

// Summary resumen humano del batch, por tipo de entidad.
func (r *BatchReport) Summary() string {
	type tally struct{ ok, total int }
	byType := map[EntityType]*tally{}
	order := []EntityType{}
	for _, res := range r.Results {
		t, exists := byType[res.EntityType]
		if !exists {
			t = &tally{}
			byType[res.EntityType] = t
			order = append(order, res.EntityType)
		}
		t.total++
		if res.Success {
			t.ok++
		}
	}
	out := ""
	for i, et := range order {
		if i > 0 {
			out += "; "
		}
		t := byType[et]
		out += fmt.Sprintf("%s: %d/%d", et, t.ok, t.total)
	}
	if out == "" {
		return "sin entidades pendientes"
	}
	return out
}
