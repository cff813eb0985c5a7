package controller

import (
	"errors"
	"otos_backend/internal/model"
	"otos_backend/internal/service"
	"otos_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type PackageController struct {
	PackageService *service.PackageService
}

func NewPackageController(packageService *service.PackageService) *PackageController {
	return &PackageController{PackageService: packageService}
}

// CreatePackage godoc
// @Summary Create a tryout package
// @Tags packages
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   body body service.PackageRequest true "Package"
// @Success 201 {object} util.Response{data=model.TryoutPackage} "Created"
// @Failure 400 {object} util.Response "Invalid request"
// @Router /api/packages [post]
func (c *PackageController) CreatePackage(ctx *gin.Context) {
	var req service.PackageRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	pkg, err := c.PackageService.Create(req)
	if err != nil {
		if errors.Is(err, util.ErrCategoryNotFound) {
			util.NotFound(ctx)
		} else {
			util.BadRequest(ctx, err.Error())
		}
		return
	}
	util.Created(ctx, pkg)
}

// ListPackages godoc
// @Summary List tryout packages
// @Description Students and visitors only see published packages
// @Tags packages
// @Produce  json
// @Security ApiKeyAuth
// @Param   page query int false "Page" default(1)
// @Param   limit query int false "Page size" default(20)
// @Success 200 {object} util.Response{data=util.PageResponse} "Success"
// @Router /api/packages [get]
func (c *PackageController) ListPackages(ctx *gin.Context) {
	page, limit := pagination(ctx)

	claims := util.GetUserFromContext(ctx)
	publishedOnly := claims == nil || !claims.Role.CanManageContent()

	pkgs, total, err := c.PackageService.List(page, limit, publishedOnly)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, util.PageResponse{List: pkgs, Total: total, Page: page, Limit: limit})
}

// GetPackage godoc
// @Summary Get one package with its category allocation
// @Tags packages
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "Package id"
// @Success 200 {object} util.Response{data=model.TryoutPackage} "Success"
// @Failure 404 {object} util.Response "Not found"
// @Router /api/packages/{id} [get]
func (c *PackageController) GetPackage(ctx *gin.Context) {
	pkg, err := c.PackageService.GetByID(util.MustParseUint(ctx.Param("id")))
	if err != nil {
		if errors.Is(err, util.ErrPackageNotFound) {
			util.NotFound(ctx)
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}

	claims := util.GetUserFromContext(ctx)
	if !pkg.IsPublished && (claims == nil || !claims.Role.CanManageContent()) {
		util.NotFound(ctx)
		return
	}
	if claims != nil && claims.Role == model.Visitor && !pkg.IsFreeForVisitors {
		util.Forbidden(ctx)
		return
	}
	util.Success(ctx, pkg)
}

// UpdatePackage godoc
// @Summary Update a package and its category allocation
// @Tags packages
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "Package id"
// @Param   body body service.PackageRequest true "Fields to change"
// @Success 200 {object} util.Response{data=model.TryoutPackage} "Success"
// @Failure 404 {object} util.Response "Not found"
// @Router /api/packages/{id} [put]
func (c *PackageController) UpdatePackage(ctx *gin.Context) {
	var req service.PackageRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	pkg, err := c.PackageService.Update(util.MustParseUint(ctx.Param("id")), req)
	if err != nil {
		switch {
		case errors.Is(err, util.ErrPackageNotFound), errors.Is(err, util.ErrCategoryNotFound):
			util.NotFound(ctx)
		default:
			util.BadRequest(ctx, err.Error())
		}
		return
	}
	util.Success(ctx, pkg)
}

// GetPackageReadiness godoc
// @Summary Check whether a package can be taken
// @Description Verifies publication, the 1000-point budget and question
// @Description availability; editors use this before publishing
// @Tags packages
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "Package id"
// @Success 200 {object} util.Response{data=object} "Success"
// @Failure 404 {object} util.Response "Not found"
// @Router /api/packages/{id}/readiness [get]
func (c *PackageController) GetPackageReadiness(ctx *gin.Context) {
	pkg, err := c.PackageService.GetByID(util.MustParseUint(ctx.Param("id")))
	if err != nil {
		if errors.Is(err, util.ErrPackageNotFound) {
			util.NotFound(ctx)
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}

	ready := true
	reason := ""
	if err := c.PackageService.CanBeTaken(pkg); err != nil {
		if !errors.Is(err, util.ErrPackageNotReady) {
			util.LogInternalError(ctx, err)
			return
		}
		ready = false
		reason = err.Error()
	}
	util.Success(ctx, gin.H{"packageId": pkg.ID, "ready": ready, "reason": reason})
}

// DeletePackage godoc
// @Summary Delete a package
// @Tags packages
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "Package id"
// @Success 200 {object} util.Response "Success"
// @Failure 404 {object} util.Response "Not found"
// @Router /api/packages/{id} [delete]
func (c *PackageController) DeletePackage(ctx *gin.Context) {
	if err := c.PackageService.Delete(util.MustParseUint(ctx.Param("id"))); err != nil {
		if errors.Is(err, util.ErrPackageNotFound) {
			util.NotFound(ctx)
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Success(ctx, nil)
}
