package controller

import (
	"errors"
	"otos_backend/internal/model"
	"otos_backend/internal/service"
	"otos_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type TestController struct {
	TestService    *service.TestSessionService
	PackageService *service.PackageService
}

func NewTestController(testService *service.TestSessionService, packageService *service.PackageService) *TestController {
	return &TestController{TestService: testService, PackageService: packageService}
}

// StartTest godoc
// @Summary Start a test session
// @Description Starts an attempt on a category set or a tryout package
// @Tags tests
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   body body service.StartTestRequest true "Test scope"
// @Success 201 {object} util.Response{data=model.TestSession} "Created"
// @Failure 400 {object} util.Response "Invalid scope"
// @Failure 409 {object} util.Response "Attempt already in progress"
// @Router /api/tests [post]
func (c *TestController) StartTest(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	var req service.StartTestRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	if req.TryoutPackageID != nil && claims.Role == model.Visitor {
		pkg, err := c.PackageService.GetByID(*req.TryoutPackageID)
		if err != nil {
			util.NotFound(ctx)
			return
		}
		if !c.PackageService.AccessibleBy(pkg, claims.Role) {
			util.Forbidden(ctx)
			return
		}
	}

	session, err := c.TestService.Start(claims.UserID, req)
	if err != nil {
		switch {
		case errors.Is(err, util.ErrTestInProgress):
			util.Conflict(ctx, err.Error())
		case errors.Is(err, util.ErrPackageNotFound), errors.Is(err, util.ErrCategoryNotFound):
			util.NotFound(ctx)
		case errors.Is(err, util.ErrPackageNotReady), errors.Is(err, util.ErrScopeRequired):
			util.BadRequest(ctx, err.Error())
		default:
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Created(ctx, session)
}

// swagger:model AnswerRequest
type AnswerRequest struct {
	QuestionID       uint `json:"questionId" binding:"required"`
	SelectedChoiceID uint `json:"selectedChoiceId" binding:"required"`
}

// SubmitAnswer godoc
// @Summary Record an answer
// @Description Saves or replaces the answer for one question. If the time
// @Description limit has elapsed the session is auto-submitted and the final
// @Description result is returned instead.
// @Tags tests
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "Session id"
// @Param   body body AnswerRequest true "Answer"
// @Success 200 {object} util.Response{data=service.AnswerResult} "Success"
// @Failure 400 {object} util.Response "Question or choice out of scope"
// @Failure 403 {object} util.Response "Not the session owner"
// @Failure 409 {object} util.Response "Already submitted"
// @Router /api/tests/{id}/answers [post]
func (c *TestController) SubmitAnswer(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	var req AnswerRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	result, err := c.TestService.RecordAnswer(claims.UserID, util.MustParseUint(ctx.Param("id")), req.QuestionID, req.SelectedChoiceID)
	if err != nil {
		c.testError(ctx, err)
		return
	}
	util.Success(ctx, result)
}

// ResumeTest godoc
// @Summary Resume an interrupted session
// @Description Returns the position of the first unanswered question
// @Tags tests
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "Session id"
// @Success 200 {object} util.Response{data=service.ResumeResult} "Success"
// @Failure 403 {object} util.Response "Not the session owner"
// @Failure 409 {object} util.Response "Already submitted"
// @Router /api/tests/{id}/resume [get]
func (c *TestController) ResumeTest(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	result, err := c.TestService.ResumePosition(claims.UserID, util.MustParseUint(ctx.Param("id")))
	if err != nil {
		c.testError(ctx, err)
		return
	}
	util.Success(ctx, result)
}

// SubmitTest godoc
// @Summary Submit a session for scoring
// @Tags tests
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "Session id"
// @Success 200 {object} util.Response{data=service.SubmitResult} "Success"
// @Failure 403 {object} util.Response "Not the session owner"
// @Failure 409 {object} util.Response "Already submitted"
// @Router /api/tests/{id}/submit [post]
func (c *TestController) SubmitTest(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	result, err := c.TestService.Submit(claims.UserID, util.MustParseUint(ctx.Param("id")))
	if err != nil {
		c.testError(ctx, err)
		return
	}
	util.Success(ctx, result)
}

// GetTestResult godoc
// @Summary Session result with answer review
// @Tags tests
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "Session id"
// @Success 200 {object} util.Response{data=service.SessionResult} "Success"
// @Failure 403 {object} util.Response "Not the session owner"
// @Router /api/tests/{id}/result [get]
func (c *TestController) GetTestResult(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	result, err := c.TestService.GetResult(claims.UserID, util.MustParseUint(ctx.Param("id")))
	if err != nil {
		c.testError(ctx, err)
		return
	}
	util.Success(ctx, result)
}

// ListMyTests godoc
// @Summary List the caller's sessions
// @Tags tests
// @Produce  json
// @Security ApiKeyAuth
// @Param   page query int false "Page" default(1)
// @Param   limit query int false "Page size" default(20)
// @Success 200 {object} util.Response{data=util.PageResponse} "Success"
// @Router /api/tests [get]
func (c *TestController) ListMyTests(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	page, limit := pagination(ctx)
	sessions, total, err := c.TestService.ListByStudent(claims.UserID, page, limit)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, util.PageResponse{List: sessions, Total: total, Page: page, Limit: limit})
}

// RecalculateTest godoc
// @Summary Recompute a session's score
// @Description Re-runs scoring against current weights without changing
// @Description submission state. Admin only.
// @Tags tests
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "Session id"
// @Success 200 {object} util.Response{data=object} "Success"
// @Failure 404 {object} util.Response "Not found"
// @Router /api/admin/tests/{id}/recalculate [post]
func (c *TestController) RecalculateTest(ctx *gin.Context) {
	id := util.MustParseUint(ctx.Param("id"))
	score, err := c.TestService.Recalculate(id)
	if err != nil {
		if errors.Is(err, util.ErrTestNotFound) {
			util.NotFound(ctx)
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Success(ctx, gin.H{"sessionId": id, "score": score})
}

func (c *TestController) testError(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, util.ErrTestNotFound):
		util.NotFound(ctx)
	case errors.Is(err, util.ErrPermissionDenied):
		util.Forbidden(ctx)
	case errors.Is(err, util.ErrTestSubmitted):
		util.Conflict(ctx, err.Error())
	case errors.Is(err, util.ErrQuestionNotInScope), errors.Is(err, util.ErrChoiceNotInQuest):
		util.BadRequest(ctx, err.Error())
	default:
		util.LogInternalError(ctx, err)
	}
}
