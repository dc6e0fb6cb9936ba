package admin

import (
	"strconv"
	"strings"

	"github.com/voucherhub/internal/http/response"
	"github.com/voucherhub/internal/repository"

	"github.com/gin-gonic/gin"
)

// GetAuditLogs 获取审计日志列表（仅 ADMIN）
func (h *Handler) GetAuditLogs(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = normalizePagination(page, pageSize)

	filter := repository.AuditLogListFilter{
		Page:     page,
		PageSize: pageSize,
		Action:   strings.TrimSpace(c.Query("action")),
		Object:   strings.TrimSpace(c.Query("object")),
	}
	if raw := c.Query("actor_id"); raw != "" {
		actorID, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			respondError(c, response.CodeBadRequest, "bad request", err)
			return
		}
		filter.ActorID = uint(actorID)
	}
	from, err := parseTimeNullable(c.Query("created_from"))
	if err != nil {
		respondError(c, response.CodeBadRequest, "invalid created_from", err)
		return
	}
	filter.CreatedFrom = from
	to, err := parseTimeNullable(c.Query("created_to"))
	if err != nil {
		respondError(c, response.CodeBadRequest, "invalid created_to", err)
		return
	}
	filter.CreatedTo = to

	logs, total, err := h.AuditService.ListForAdmin(filter)
	if err != nil {
		respondError(c, response.CodeInternal, "audit log fetch failed", err)
		return
	}

	pagination := response.Pagination{
		Page:      page,
		PageSize:  pageSize,
		Total:     total,
		TotalPage: (total + int64(pageSize) - 1) / int64(pageSize),
	}
	response.SuccessWithPage(c, logs, pagination)
}
