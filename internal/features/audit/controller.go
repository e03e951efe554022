package audit

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
)

type AuditController struct {
	Service AuditService
}

func NewAuditController(service AuditService) *AuditController {
	return &AuditController{Service: service}
}

// List godoc
// @Summary List audit records
// @Description List audit records, newest first, with optional filters
// @Tags audit
// @Produce json
// @Param page query int false "Page number"
// @Param limit query int false "Page size"
// @Router /api/audit [get]
func (c *AuditController) List(ctx *fiber.Ctx) error {
	page, _ := strconv.ParseInt(ctx.Query("page", "1"), 10, 64)
	limit, _ := strconv.ParseInt(ctx.Query("limit", "20"), 10, 64)

	filters := map[string]interface{}{
		"action":        ctx.Query("action"),
		"resource_type": ctx.Query("resource_type"),
		"resource_id":   ctx.Query("resource_id"),
		"actor_id":      ctx.Query("actor_id"),
	}

	records, err := c.Service.ListRecords(ctx.UserContext(), filters, page, limit)
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	return ctx.JSON(fiber.Map{
		"data":  records,
		"page":  page,
		"limit": limit,
	})
}
