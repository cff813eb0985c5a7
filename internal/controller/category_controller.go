package controller

import (
	"errors"
	"otos_backend/internal/service"
	"otos_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type CategoryController struct {
	CategoryService *service.CategoryService
}

func NewCategoryController(categoryService *service.CategoryService) *CategoryController {
	return &CategoryController{CategoryService: categoryService}
}

// CreateCategory godoc
// @Summary Create a question category
// @Tags categories
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   body body service.CategoryRequest true "Category"
// @Success 201 {object} util.Response{data=model.Category} "Created"
// @Failure 400 {object} util.Response "Invalid request"
// @Router /api/categories [post]
func (c *CategoryController) CreateCategory(ctx *gin.Context) {
	var req service.CategoryRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	category, err := c.CategoryService.Create(req)
	if err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	util.Created(ctx, category)
}

// ListCategories godoc
// @Summary List categories
// @Tags categories
// @Produce  json
// @Security ApiKeyAuth
// @Param   page query int false "Page" default(1)
// @Param   limit query int false "Page size" default(20)
// @Success 200 {object} util.Response{data=util.PageResponse} "Success"
// @Router /api/categories [get]
func (c *CategoryController) ListCategories(ctx *gin.Context) {
	page, limit := pagination(ctx)
	categories, total, err := c.CategoryService.List(page, limit)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, util.PageResponse{List: categories, Total: total, Page: page, Limit: limit})
}

// GetCategory godoc
// @Summary Get one category
// @Tags categories
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "Category id"
// @Success 200 {object} util.Response{data=model.Category} "Success"
// @Failure 404 {object} util.Response "Not found"
// @Router /api/categories/{id} [get]
func (c *CategoryController) GetCategory(ctx *gin.Context) {
	category, err := c.CategoryService.GetByID(util.MustParseUint(ctx.Param("id")))
	if err != nil {
		if errors.Is(err, util.ErrCategoryNotFound) {
			util.NotFound(ctx)
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Success(ctx, category)
}

// UpdateCategory godoc
// @Summary Update a category
// @Tags categories
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "Category id"
// @Param   body body service.CategoryRequest true "Fields to change"
// @Success 200 {object} util.Response{data=model.Category} "Success"
// @Failure 404 {object} util.Response "Not found"
// @Router /api/categories/{id} [put]
func (c *CategoryController) UpdateCategory(ctx *gin.Context) {
	var req service.CategoryRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	category, err := c.CategoryService.Update(util.MustParseUint(ctx.Param("id")), req)
	if err != nil {
		if errors.Is(err, util.ErrCategoryNotFound) {
			util.NotFound(ctx)
		} else {
			util.BadRequest(ctx, err.Error())
		}
		return
	}
	util.Success(ctx, category)
}

// DeleteCategory godoc
// @Summary Delete a category and its questions
// @Tags categories
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "Category id"
// @Success 200 {object} util.Response "Success"
// @Failure 404 {object} util.Response "Not found"
// @Router /api/categories/{id} [delete]
func (c *CategoryController) DeleteCategory(ctx *gin.Context) {
	if err := c.CategoryService.Delete(util.MustParseUint(ctx.Param("id"))); err != nil {
		if errors.Is(err, util.ErrCategoryNotFound) {
			util.NotFound(ctx)
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Success(ctx, nil)
}

// GetWeightReport godoc
// @Summary Custom-weight completeness check
// @Description Reports whether the category's custom weights sum to 100
// @Tags categories
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "Category id"
// @Success 200 {object} util.Response{data=service.WeightReport} "Success"
// @Failure 404 {object} util.Response "Not found"
// @Router /api/categories/{id}/weight-report [get]
func (c *CategoryController) GetWeightReport(ctx *gin.Context) {
	report, err := c.CategoryService.WeightReport(util.MustParseUint(ctx.Param("id")))
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
