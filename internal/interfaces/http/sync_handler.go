package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Mantenimiento-api/internal/application/dto"
	"github.com/jhoicas/Mantenimiento-api/internal/application/sync"
)

// SyncHandler expone el orquestador de sincronización QBO.
//
// Los batches responden 200 también con fallos parciales: el cuerpo trae un
// resultado por entidad y el caller decide qué re-lanzar. Solo el sync puntual
// de una entidad traduce su fallo a un status HTTP.
type SyncHandler struct {
	orch *sync.Orchestrator
}

// NewSyncHandler construye el handler.
func NewSyncHandler(orch *sync.Orchestrator) *SyncHandler {
	return &SyncHandler{orch: orch}
}

// SyncAll empuja todas las entidades pendientes (empresas antes que sedes).
func (h *SyncHandler) SyncAll(c *fiber.Ctx) error {
	report := h.orch.SyncAll(c.Context())
	return c.JSON(dto.FromBatchReport(report))
}

// Pull trae el estado remoto y lo reconcilia con el Entity Store.
func (h *SyncHandler) Pull(c *fiber.Ctx) error {
	report := h.orch.Pull(c.Context())
	return c.JSON(dto.FromBatchReport(report))
}

// SyncCompany sincroniza una empresa puntual.
func (h *SyncHandler) SyncCompany(c *fiber.Ctx) error {
	return respondSyncResult(c, h.orch.SyncCompany(c.Context(), c.Params("id")))
}

// SyncLocation sincroniza una sede puntual.
func (h *SyncHandler) SyncLocation(c *fiber.Ctx) error {
	return respondSyncResult(c, h.orch.SyncLocation(c.Context(), c.Params("id")))
}

// SyncInvoice sincroniza una factura puntual.
func (h *SyncHandler) SyncInvoice(c *fiber.Ctx) error {
	return respondSyncResult(c, h.orch.SyncInvoice(c.Context(), c.Params("id")))
}

// respondSyncResult mapea el código de la taxonomía de sync a un status HTTP.
func respondSyncResult(c *fiber.Ctx, res sync.Result) error {
	if res.Success {
		return c.JSON(res)
	}
	status := fiber.StatusBadGateway // fallo del lado QBO
	switch res.ErrorCode {
	case sync.CodeNotFound:
		status = fiber.StatusNotFound
	case sync.CodeNotConfigured:
		status = fiber.StatusServiceUnavailable
	case sync.CodeParentNotSynced, sync.CodeMissingExternalID,
		sync.CodeBillingTargetUnresolved, sync.CodeHierarchyTooDeep,
		sync.CodeStaleVersion, sync.CodeDuplicateName:
		status = fiber.StatusConflict
	}
	return c.Status(status).JSON(res)
}
