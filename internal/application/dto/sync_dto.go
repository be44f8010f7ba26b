package dto

import "github.com/jhoicas/Mantenimiento-api/internal/application/sync"

// SyncReportResponse resultado de un batch de sync o de un pull, consumible
// por el frontend de operación: éxito parcial con un renglón por entidad.
type SyncReportResponse struct {
	Summary   string        `json:"summary"`
	Succeeded int           `json:"succeeded"`
	Failed    int           `json:"failed"`
	Results   []sync.Result `json:"results"`
}

// FromBatchReport arma la respuesta HTTP a partir del reporte del orquestador.
func FromBatchReport(r *sync.BatchReport) SyncReportResponse {
	return SyncReportResponse{
		Summary:   r.Summary(),
		Succeeded: r.Succeeded(),
		Failed:    r.Failed(),
		Results:   r.Results,
	}
}
