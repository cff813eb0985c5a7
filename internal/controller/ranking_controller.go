package controller

import (
	"otos_backend/internal/service"
	"otos_backend/internal/util"
	"strconv"

	"github.com/gin-gonic/gin"
)

type RankingController struct {
	RankingService *service.RankingService
}

func NewRankingController(rankingService *service.RankingService) *RankingController {
	return &RankingController{RankingService: rankingService}
}

// GetOverallRanking godoc
// @Summary Overall leaderboard
// @Description Students ranked by mean score across all submitted sessions
// @Tags rankings
// @Produce  json
// @Security ApiKeyAuth
// @Param   limit query int false "Max entries" default(50)
// @Success 200 {object} util.Response{data=[]repository.RankingRow} "Success"
// @Router /api/rankings/overall [get]
func (c *RankingController) GetOverallRanking(ctx *gin.Context) {
	rows, err := c.RankingService.OverallAverage(ctx.Request.Context(), limitParam(ctx))
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, rows)
}

// GetCategoryRanking godoc
// @Summary Category leaderboard
// @Description Ranked by best score, or by average with mode=average
// @Tags rankings
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "Category id"
// @Param   mode query string false "best or average" default(best)
// @Param   limit query int false "Max entries" default(50)
// @Success 200 {object} util.Response{data=[]repository.RankingRow} "Success"
// @Router /api/rankings/categories/{id} [get]
func (c *RankingController) GetCategoryRanking(ctx *gin.Context) {
	categoryID := util.MustParseUint(ctx.Param("id"))
	limit := limitParam(ctx)

	var err error
	var rows interface{}
	if ctx.DefaultQuery("mode", "best") == "average" {
		rows, err = c.RankingService.CategoryAverage(ctx.Request.Context(), categoryID, limit)
	} else {
		rows, err = c.RankingService.CategoryBest(ctx.Request.Context(), categoryID, limit)
	}
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, rows)
}

// GetPackageRanking godoc
// @Summary Package leaderboard
// @Description Students ranked by best submitted score for one package
// @Tags rankings
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "Package id"
// @Param   limit query int false "Max entries" default(50)
// @Success 200 {object} util.Response{data=[]repository.RankingRow} "Success"
// @Router /api/rankings/packages/{id} [get]
func (c *RankingController) GetPackageRanking(ctx *gin.Context) {
	rows, err := c.RankingService.PackageBest(ctx.Request.Context(), util.MustParseUint(ctx.Param("id")), limitParam(ctx))
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, rows)
}

func limitParam(ctx *gin.Context) int {
	limit, _ := strconv.Atoi(ctx.DefaultQuery("limit", "50"))
	return limit
}
