package handlers

import (
	"log/slog"
	"net/http"

	"github.com/SscSPs/koperasi_backend/internal/core/domain"
	portssvc "github.com/SscSPs/koperasi_backend/internal/core/ports/services"
	"github.com/SscSPs/koperasi_backend/internal/dto"
	"github.com/SscSPs/koperasi_backend/internal/middleware"
	"github.com/gin-gonic/gin"
)

const workflowTypeKey = "workflowType"

// workflowHandler handles HTTP requests for every workflow type. The type comes from the URL slug.
type workflowHandler struct {
	workflowService portssvc.WorkflowSvcFacade
}

func newWorkflowHandler(ws portssvc.WorkflowSvcFacade) *workflowHandler {
	return &workflowHandler{workflowService: ws}
}

// registerWorkflowRoutes registers the approval routes under /workflows/:workflow.
func registerWorkflowRoutes(rg *gin.RouterGroup, workflowService portssvc.WorkflowSvcFacade) {
	h := newWorkflowHandler(workflowService)

	wf := rg.Group("/workflows/:workflow", resolveWorkflowType)
	{
		wf.POST("/draft", h.createDraft)
		wf.PUT("/draft/:id", h.updateDraft)
		wf.DELETE("/draft/:id", h.deleteDraft)
		wf.POST("/bulk-approve", h.bulkApprove)
		wf.POST("/:id/submit", h.submit)
		wf.POST("/:id/approve", h.approve)
		wf.DELETE("/my/:id", h.cancel)
		wf.GET("/my", h.listMine)
		wf.GET("/pending", h.listPending)
		wf.GET("/:id", h.getInstance)
	}
}

// resolveWorkflowType maps the :workflow slug to its type or aborts with 404.
func resolveWorkflowType(c *gin.Context) {
	wfType, ok := domain.WorkflowTypeFromSlug(c.Param("workflow"))
	if !ok {
		respondError(c, domain.ErrUnknownWorkflow, "Resolve workflow")
		c.Abort()
		return
	}
	c.Set(workflowTypeKey, wfType)
	c.Next()
}

func workflowTypeOf(c *gin.Context) domain.WorkflowType {
	return c.MustGet(workflowTypeKey).(domain.WorkflowType)
}

// createDraft godoc
// @Summary Create a draft
// @Description Creates a DRAFT instance of the workflow owned by the caller and assigns its human number.
// @Tags workflows
// @Accept json
// @Produce json
// @Param workflow path string true "Workflow slug, e.g. deposit-applications"
// @Param draft body dto.WorkflowDraftRequest true "Draft fields"
// @Success 201 {object} dto.MutationResponse{data=dto.WorkflowInstanceResponse}
// @Failure 400 {object} dto.ErrorResponse
// @Failure 401 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Security BearerAuth
// @Router /workflows/{workflow}/draft [post]
func (h *workflowHandler) createDraft(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	var req dto.WorkflowDraftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err, "CreateDraft")
		return
	}

	inst, err := h.workflowService.CreateDraft(c.Request.Context(), workflowTypeOf(c), actor.UserID, req)
	if err != nil {
		respondError(c, err, "CreateDraft")
		return
	}

	middleware.GetLoggerFromCtx(c.Request.Context()).Info("Draft created", slog.String("instance_id", inst.InstanceID), slog.String("human_number", inst.HumanNumber))
	c.JSON(http.StatusCreated, dto.MutationResponse{Message: "Draft berhasil dibuat", Data: dto.ToWorkflowInstanceResponse(inst)})
}

// updateDraft godoc
// @Summary Update a draft
// @Description Replaces the editable fields of the caller's draft.
// @Tags workflows
// @Accept json
// @Produce json
// @Param workflow path string true "Workflow slug"
// @Param id path string true "Instance ID"
// @Param draft body dto.WorkflowDraftRequest true "Draft fields"
// @Success 200 {object} dto.MutationResponse{data=dto.WorkflowInstanceResponse}
// @Failure 400 {object} dto.ErrorResponse
// @Failure 401 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Security BearerAuth
// @Router /workflows/{workflow}/draft/{id} [put]
func (h *workflowHandler) updateDraft(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id", domain.ErrInstanceNotFound, "UpdateDraft")
	if !ok {
		return
	}
	var req dto.WorkflowDraftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err, "UpdateDraft")
		return
	}

	inst, err := h.workflowService.UpdateDraft(c.Request.Context(), workflowTypeOf(c), id, actor.UserID, req)
	if err != nil {
		respondError(c, err, "UpdateDraft")
		return
	}
	c.JSON(http.StatusOK, dto.MutationResponse{Message: "Draft berhasil diperbarui", Data: dto.ToWorkflowInstanceResponse(inst)})
}

// deleteDraft godoc
// @Summary Delete a draft
// @Tags workflows
// @Produce json
// @Param workflow path string true "Workflow slug"
// @Param id path string true "Instance ID"
// @Success 200 {object} dto.MutationResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 401 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Security BearerAuth
// @Router /workflows/{workflow}/draft/{id} [delete]
func (h *workflowHandler) deleteDraft(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id", domain.ErrInstanceNotFound, "DeleteDraft")
	if !ok {
		return
	}
	if err := h.workflowService.DeleteDraft(c.Request.Context(), workflowTypeOf(c), id, actor.UserID); err != nil {
		respondError(c, err, "DeleteDraft")
		return
	}
	c.JSON(http.StatusOK, dto.MutationResponse{Message: "Draft berhasil dihapus", Data: gin.H{"instanceID": id}})
}

// submit godoc
// @Summary Submit a draft
// @Description Sends the caller's draft to the first approval step.
// @Tags workflows
// @Produce json
// @Param workflow path string true "Workflow slug"
// @Param id path string true "Instance ID"
// @Success 200 {object} dto.MutationResponse{data=dto.WorkflowInstanceResponse}
// @Failure 400 {object} dto.ErrorResponse
// @Failure 401 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Security BearerAuth
// @Router /workflows/{workflow}/{id}/submit [post]
func (h *workflowHandler) submit(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id", domain.ErrInstanceNotFound, "Submit")
	if !ok {
		return
	}
	inst, err := h.workflowService.Submit(c.Request.Context(), workflowTypeOf(c), id, actor.UserID)
	if err != nil {
		respondError(c, err, "Submit")
		return
	}
	c.JSON(http.StatusOK, dto.MutationResponse{Message: "Pengajuan berhasil dikirim", Data: dto.ToWorkflowInstanceResponse(inst)})
}

// approve godoc
// @Summary Decide the current step
// @Description Approves or rejects the step the instance is waiting on. The caller must hold the step's role.
// @Tags workflows
// @Accept json
// @Produce json
// @Param workflow path string true "Workflow slug"
// @Param id path string true "Instance ID"
// @Param decision body dto.ApprovalRequest true "Decision"
// @Success 200 {object} dto.MutationResponse{data=dto.WorkflowInstanceResponse}
// @Failure 400 {object} dto.ErrorResponse
// @Failure 401 {object} dto.ErrorResponse
// @Failure 403 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Security BearerAuth
// @Router /workflows/{workflow}/{id}/approve [post]
func (h *workflowHandler) approve(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id", domain.ErrInstanceNotFound, "ProcessApproval")
	if !ok {
		return
	}
	var req dto.ApprovalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err, "ProcessApproval")
		return
	}

	inst, err := h.workflowService.ProcessApproval(c.Request.Context(), workflowTypeOf(c), id, actor, req.Decision, req.Notes)
	if err != nil {
		respondError(c, err, "ProcessApproval")
		return
	}

	msg := "Pengajuan berhasil disetujui"
	if req.Decision == domain.DecisionRejected {
		msg = "Pengajuan berhasil ditolak"
	}
	c.JSON(http.StatusOK, dto.MutationResponse{Message: msg, Data: dto.ToWorkflowInstanceResponse(inst)})
}

// bulkApprove godoc
// @Summary Decide many instances at once
// @Description Applies one decision to every listed instance. Each item succeeds or fails on its own.
// @Tags workflows
// @Accept json
// @Produce json
// @Param workflow path string true "Workflow slug"
// @Param request body dto.BulkApprovalRequest true "IDs and decision"
// @Success 200 {object} dto.BulkApprovalResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 401 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Security BearerAuth
// @Router /workflows/{workflow}/bulk-approve [post]
func (h *workflowHandler) bulkApprove(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	var req dto.BulkApprovalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err, "BulkProcess")
		return
	}

	res, err := h.workflowService.BulkProcess(c.Request.Context(), workflowTypeOf(c), req.IDs, actor, req.Decision, req.Notes)
	if err != nil {
		respondError(c, err, "BulkProcess")
		return
	}
	c.JSON(http.StatusOK, dto.BulkApprovalResponse{
		Message: "Pemrosesan massal selesai",
		Success: res.Success,
		Failed:  res.Failed,
	})
}

// cancel godoc
// @Summary Cancel an instance
// @Description Withdraws the caller's instance while it is still in a cancellable step.
// @Tags workflows
// @Produce json
// @Param workflow path string true "Workflow slug"
// @Param id path string true "Instance ID"
// @Success 200 {object} dto.MutationResponse{data=dto.WorkflowInstanceResponse}
// @Failure 400 {object} dto.ErrorResponse
// @Failure 401 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Security BearerAuth
// @Router /workflows/{workflow}/my/{id} [delete]
func (h *workflowHandler) cancel(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id", domain.ErrInstanceNotFound, "Cancel")
	if !ok {
		return
	}
	inst, err := h.workflowService.Cancel(c.Request.Context(), workflowTypeOf(c), id, actor.UserID)
	if err != nil {
		respondError(c, err, "Cancel")
		return
	}
	c.JSON(http.StatusOK, dto.MutationResponse{Message: "Pengajuan berhasil dibatalkan", Data: dto.ToWorkflowInstanceResponse(inst)})
}

// getInstance godoc
// @Summary Get an instance
// @Description Returns the instance with its approval ledger and history.
// @Tags workflows
// @Produce json
// @Param workflow path string true "Workflow slug"
// @Param id path string true "Instance ID"
// @Success 200 {object} dto.WorkflowDetailResponse
// @Failure 401 {object} dto.ErrorResponse
// @Failure 403 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Security BearerAuth
// @Router /workflows/{workflow}/{id} [get]
func (h *workflowHandler) getInstance(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id", domain.ErrInstanceNotFound, "GetInstance")
	if !ok {
		return
	}
	detail, err := h.workflowService.GetInstance(c.Request.Context(), workflowTypeOf(c), id, actor)
	if err != nil {
		respondError(c, err, "GetInstance")
		return
	}
	c.JSON(http.StatusOK, dto.ToWorkflowDetailResponse(detail))
}

// listMine godoc
// @Summary List my instances
// @Tags workflows
// @Produce json
// @Param workflow path string true "Workflow slug"
// @Param limit query int false "Page size" default(20)
// @Param nextToken query string false "Token from the previous page"
// @Success 200 {object} dto.ListWorkflowInstancesResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 401 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Security BearerAuth
// @Router /workflows/{workflow}/my [get]
func (h *workflowHandler) listMine(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	var params dto.ListParams
	if err := c.ShouldBindQuery(&params); err != nil {
		badRequest(c, err, "ListMyInstances")
		return
	}

	items, next, err := h.workflowService.ListMyInstances(c.Request.Context(), workflowTypeOf(c), actor.UserID, params)
	if err != nil {
		respondError(c, err, "ListMyInstances")
		return
	}
	c.JSON(http.StatusOK, dto.ToListWorkflowInstancesResponse(items, next))
}

// listPending godoc
// @Summary List instances awaiting my decision
// @Description Lists instances waiting on a step one of the caller's roles may decide.
// @Tags workflows
// @Produce json
// @Param workflow path string true "Workflow slug"
// @Param limit query int false "Page size" default(20)
// @Param nextToken query string false "Token from the previous page"
// @Success 200 {object} dto.ListWorkflowInstancesResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 401 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Security BearerAuth
// @Router /workflows/{workflow}/pending [get]
func (h *workflowHandler) listPending(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	var params dto.ListParams
	if err := c.ShouldBindQuery(&params); err != nil {
		badRequest(c, err, "ListPendingApprovals")
		return
	}

	items, next, err := h.workflowService.ListPendingApprovals(c.Request.Context(), workflowTypeOf(c), actor, params)
	if err != nil {
		respondError(c, err, "ListPendingApprovals")
		return
	}
	c.JSON(http.StatusOK, dto.ToListWorkflowInstancesResponse(items, next))
}
