package controller

import (
	"errors"
	"otos_backend/internal/service"
	"otos_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type CalibrationController struct {
	CalibrationService *service.CalibrationService
}

func NewCalibrationController(calibrationService *service.CalibrationService) *CalibrationController {
	return &CalibrationController{CalibrationService: calibrationService}
}

// RecalibrateCategory godoc
// @Summary Recalibrate one category's difficulty coefficients
// @Description Recomputes coefficients from accumulated answer statistics.
// @Description Admin only.
// @Tags calibration
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "Category id"
// @Success 200 {object} util.Response{data=service.CalibrationReport} "Success"
// @Failure 404 {object} util.Response "Not found"
// @Router /api/admin/calibration/categories/{id} [post]
func (c *CalibrationController) RecalibrateCategory(ctx *gin.Context) {
	report, err := c.CalibrationService.RecalibrateCategory(util.MustParseUint(ctx.Param("id")))
	if err != nil {
		if errors.Is(err, util.ErrCategoryNotFound) {
			util.NotFound(ctx)
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Success(ctx, report)
}

// RecalibrateAll godoc
// @Summary Recalibrate every utbk category
// @Tags calibration
// @Produce  json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=[]service.CalibrationReport} "Success"
// @Router /api/admin/calibration/run [post]
func (c *CalibrationController) RecalibrateAll(ctx *gin.Context) {
	reports, err := c.CalibrationService.RecalibrateAllUTBK()
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, reports)
}
