package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"dealer-portal-api/middleware"
	"dealer-portal-api/services"
)

type DashboardController struct {
	pcc *services.PCCService
}

func NewDashboardController(pcc *services.PCCService) *DashboardController {
	return &DashboardController{pcc: pcc}
}

// Stats returns dashboard statistics. Dealer users see their own dealer's
// numbers; manufacturer staff see the whole network.
func (ctl *DashboardController) Stats(c *gin.Context) {
	user := middleware.CurrentUser(c)

	dealerID := ""
	if user.IsDealer() && user.DealerID != nil {
		dealerID = *user.DealerID
	}

	stats, err := ctl.pcc.DashboardStats(dealerID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"stats": stats})
}
