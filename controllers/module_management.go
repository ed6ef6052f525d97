package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"dealer-portal-api/middleware"
	"dealer-portal-api/models"
	"dealer-portal-api/services"
)

type ModuleController struct {
	flags *services.FeatureFlagService
}

func NewModuleController(flags *services.FeatureFlagService) *ModuleController {
	return &ModuleController{flags: flags}
}

// List returns every module flag with its display metadata.
func (ctl *ModuleController) List(c *gin.Context) {
	flags, err := ctl.flags.GetAllFlags()
	if err != nil {
		respondError(c, err)
		return
	}

	type moduleView struct {
		models.FeatureFlag
		Name        string `json:"name"`
		Description string `json:"description"`
	}
	modules := make([]moduleView, 0, len(models.ModuleKeys))
	for _, key := range models.ModuleKeys {
		flag := flags[key]
		info, _ := models.GetModuleInfo(key)
		modules = append(modules, moduleView{
			FeatureFlag: flag,
			Name:        info.Name,
			Description: info.Description,
		})
	}

	c.JSON(http.StatusOK, gin.H{"modules": modules})
}

type SetModuleRequest struct {
	Enabled *bool  `json:"enabled" binding:"required"`
	Reason  string `json:"reason"`
}

// Set toggles one module flag.
func (ctl *ModuleController) Set(c *gin.Context) {
	var req SetModuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	key := c.Param("key")
	if err := ctl.flags.SetFlag(key, *req.Enabled, middleware.CurrentUser(c), req.Reason); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"module_key": key,
		"enabled":    *req.Enabled,
		"message":    "Module updated",
	})
}
