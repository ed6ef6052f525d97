package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"dealer-portal-api/models"
	"dealer-portal-api/services"
)

type AuditController struct {
	audit *services.AuditService
}

func NewAuditController(audit *services.AuditService) *AuditController {
	return &AuditController{audit: audit}
}

// List returns audit records newest first. At most one filter applies:
// user, module, action, entity (type+id) or a from/to date range.
func (ctl *AuditController) List(c *gin.Context) {
	var (
		logs []models.AuditLog
		err  error
	)

	switch {
	case c.Query("user_id") != "":
		logs, err = ctl.audit.GetByUser(c.Query("user_id"))
	case c.Query("module") != "":
		logs, err = ctl.audit.GetByModule(c.Query("module"))
	case c.Query("action") != "":
		logs, err = ctl.audit.GetByAction(c.Query("action"))
	case c.Query("entity_type") != "" && c.Query("entity_id") != "":
		logs, err = ctl.audit.GetByEntity(c.Query("entity_type"), c.Query("entity_id"))
	case c.Query("from") != "" && c.Query("to") != "":
		var from, to time.Time
		from, err = time.Parse("2006-01-02", c.Query("from"))
		if err == nil {
			to, err = time.Parse("2006-01-02", c.Query("to"))
		}
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Dates must be YYYY-MM-DD"})
			return
		}
		// Inclusive end date.
		logs, err = ctl.audit.GetByDateRange(from, to.Add(24*time.Hour-time.Nanosecond))
	default:
		logs, err = ctl.audit.GetAll()
	}
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"logs":  logs,
		"total": len(logs),
	})
}
