package controller

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"otos_backend/internal/service"
	"otos_backend/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type QuestionController struct {
	QuestionService *service.QuestionService
}

func NewQuestionController(questionService *service.QuestionService) *QuestionController {
	return &QuestionController{QuestionService: questionService}
}

// CreateQuestion godoc
// @Summary Create a question with its choices
// @Tags questions
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   body body service.QuestionRequest true "Question"
// @Success 201 {object} util.Response{data=model.Question} "Created"
// @Failure 400 {object} util.Response "Invalid request"
// @Failure 404 {object} util.Response "Category not found"
// @Router /api/questions [post]
func (c *QuestionController) CreateQuestion(ctx *gin.Context) {
	var req service.QuestionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	question, err := c.QuestionService.Create(req)
	if err != nil {
		if errors.Is(err, util.ErrCategoryNotFound) {
			util.NotFound(ctx)
		} else {
			util.BadRequest(ctx, err.Error())
		}
		return
	}
	util.Created(ctx, question)
}

// ListQuestions godoc
// @Summary List questions
// @Tags questions
// @Produce  json
// @Security ApiKeyAuth
// @Param   categoryId query int false "Filter by category"
// @Param   page query int false "Page" default(1)
// @Param   limit query int false "Page size" default(20)
// @Success 200 {object} util.Response{data=util.PageResponse} "Success"
// @Router /api/questions [get]
func (c *QuestionController) ListQuestions(ctx *gin.Context) {
	page, limit := pagination(ctx)
	categoryID := util.MustParseUint(ctx.Query("categoryId"))

	questions, total, err := c.QuestionService.ListByCategory(categoryID, page, limit)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, util.PageResponse{List: questions, Total: total, Page: page, Limit: limit})
}

// GetQuestion godoc
// @Summary Get one question with choices
// @Tags questions
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "Question id"
// @Success 200 {object} util.Response{data=model.Question} "Success"
// @Failure 404 {object} util.Response "Not found"
// @Router /api/questions/{id} [get]
func (c *QuestionController) GetQuestion(ctx *gin.Context) {
	question, err := c.QuestionService.GetByID(util.MustParseUint(ctx.Param("id")))
	if err != nil {
		if errors.Is(err, util.ErrQuestionNotFound) {
			util.NotFound(ctx)
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Success(ctx, question)
}

// UpdateQuestion godoc
// @Summary Update a question, replacing its choices
// @Tags questions
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "Question id"
// @Param   body body service.QuestionRequest true "Question"
// @Success 200 {object} util.Response{data=model.Question} "Success"
// @Failure 404 {object} util.Response "Not found"
// @Router /api/questions/{id} [put]
func (c *QuestionController) UpdateQuestion(ctx *gin.Context) {
	var req service.QuestionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	question, err := c.QuestionService.Update(util.MustParseUint(ctx.Param("id")), req)
	if err != nil {
		if errors.Is(err, util.ErrQuestionNotFound) {
			util.NotFound(ctx)
		} else {
			util.BadRequest(ctx, err.Error())
		}
		return
	}
	util.Success(ctx, question)
}

// DeleteQuestion godoc
// @Summary Delete a question and its choices
// @Tags questions
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "Question id"
// @Success 200 {object} util.Response "Success"
// @Failure 404 {object} util.Response "Not found"
// @Router /api/questions/{id} [delete]
func (c *QuestionController) DeleteQuestion(ctx *gin.Context) {
	if err := c.QuestionService.Delete(util.MustParseUint(ctx.Param("id"))); err != nil {
		if errors.Is(err, util.ErrQuestionNotFound) {
			util.NotFound(ctx)
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Success(ctx, nil)
}

// UploadImage godoc
// @Summary Attach an illustration to a question
// @Description Accepts a multipart image, compresses it and stores it
// @Tags questions
// @Accept  multipart/form-data
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "Question id"
// @Param   image formData file true "Image file"
// @Success 200 {object} util.Response{data=model.Question} "Success"
// @Failure 400 {object} util.Response "Invalid file"
// @Failure 404 {object} util.Response "Not found"
// @Router /api/questions/{id}/image [post]
func (c *QuestionController) UploadImage(ctx *gin.Context) {
	file, err := ctx.FormFile("image")
	if err != nil {
		util.BadRequest(ctx, "image file is required")
		return
	}

	src, err := file.Open()
	if err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	mimeType, err := util.ValidateMimeType(src, []string{util.MimeImage})
	src.Close()
	if err != nil || !util.IsImage(mimeType) {
		util.BadRequest(ctx, "uploaded file is not an image")
		return
	}

	tmpPath := filepath.Join(os.TempDir(), uuid.New().String()+strings.ToLower(filepath.Ext(file.Filename)))
	if err := ctx.SaveUploadedFile(file, tmpPath); err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	defer os.Remove(tmpPath)

	question, err := c.QuestionService.AttachImage(ctx.Request.Context(), util.MustParseUint(ctx.Param("id")), tmpPath, file.Filename)
	if err != nil {
		if errors.Is(err, util.ErrQuestionNotFound) {
			util.NotFound(ctx)
		} else {
			util.BadRequest(ctx, err.Error())
		}
		return
	}
	util.Success(ctx, question)
}
