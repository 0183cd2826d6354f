package http

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/innotechjsc-company/hanotexapp-sub006/internal/http/middleware"
	"github.com/innotechjsc-company/hanotexapp-sub006/internal/model"
	"github.com/innotechjsc-company/hanotexapp-sub006/internal/service"
)

type Handler struct {
	proposals   *service.ProposalService
	negotiation *service.NegotiationService
	steps       *service.ContractStepService
	logs        *service.ContractLogService
	contracts   *service.ContractService
	log         zerolog.Logger
}

func NewHandler(
	proposals *service.ProposalService,
	negotiation *service.NegotiationService,
	steps *service.ContractStepService,
	logs *service.ContractLogService,
	contracts *service.ContractService,
	log zerolog.Logger,
) *Handler {
	return &Handler{
		proposals:   proposals,
		negotiation: negotiation,
		steps:       steps,
		logs:        logs,
		contracts:   contracts,
		log:         log,
	}
}

func (h *Handler) Register(router *gin.Engine, authMiddleware gin.HandlerFunc) {
	protected := router.Group("/")
	protected.Use(authMiddleware)

	protected.POST("/proposals", h.createProposal)
	protected.GET("/proposals", h.listProposals)
	protected.GET("/proposals/:id", h.getProposal)
	protected.POST("/proposals/:id/cancel", h.cancelProposal)
	protected.POST("/proposal/:kind/accept", h.acceptProposal)

	protected.POST("/negotiation/send-offer", h.sendOffer)
	protected.POST("/negotiation/accept-offer", h.acceptOffer)
	protected.POST("/negotiation/reject-offer", h.rejectOffer)
	protected.POST("/negotiation/retry-formation", h.retryFormation)
	protected.GET("/negotiation/messages", h.listMessages)

	protected.POST("/contract-step/start", h.startStep)
	protected.POST("/contract-step/approve", h.approveStep)
	protected.GET("/contract-step/list", h.listSteps)

	protected.POST("/contract/confirm-log", h.confirmLog)
	protected.GET("/contracts/:id", h.getContract)
	protected.GET("/contracts/export", h.exportContracts)
	protected.GET("/contracts/:id/documents/presign", h.presignDocument)
}

func respond(c *gin.Context, status int, payload gin.H) {
	body := gin.H{"success": true}
	for key, value := range payload {
		body[key] = value
	}
	c.JSON(status, body)
}

func fail(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"success": false, "error": message})
}

type createProposalRequest struct {
	Kind         string   `json:"kind" binding:"required"`
	ReceiverID   string   `json:"receiver_id" binding:"required"`
	TechnologyID *string  `json:"technology_id"`
	ProjectID    *string  `json:"project_id"`
	DemandID     *string  `json:"demand_id"`
	Terms        string   `json:"terms"`
	Amount       *float64 `json:"amount"`
}

func (h *Handler) createProposal(c *gin.Context) {
	principal, found := middleware.MustPrincipal(c)
	if !found {
		fail(c, http.StatusUnauthorized, "missing principal")
		return
	}

	var req createProposalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}

	kind, valid := model.ParseProposalKind(req.Kind)
	if !valid {
		fail(c, http.StatusBadRequest, "invalid kind")
		return
	}
	receiverID, err := uuid.Parse(strings.TrimSpace(req.ReceiverID))
	if err != nil {
		fail(c, http.StatusBadRequest, "invalid receiver_id")
		return
	}

	input := service.CreateProposalInput{
		Kind:       kind,
		ReceiverID: receiverID,
		Terms:      req.Terms,
		Principal:  principal,
	}
	if req.Amount != nil {
		input.Amount = *req.Amount
	}
	if input.TechnologyID, err = parseOptionalID(req.TechnologyID); err != nil {
		fail(c, http.StatusBadRequest, "invalid technology_id")
		return
	}
	if input.ProjectID, err = parseOptionalID(req.ProjectID); err != nil {
		fail(c, http.StatusBadRequest, "invalid project_id")
		return
	}
	if input.DemandID, err = parseOptionalID(req.DemandID); err != nil {
		fail(c, http.StatusBadRequest, "invalid demand_id")
		return
	}

	proposal, err := h.proposals.Create(c.Request.Context(), input)
	if err != nil {
		h.handleError(c, err)
		return
	}
	respond(c, http.StatusCreated, gin.H{"proposal": proposal})
}

func (h *Handler) listProposals(c *gin.Context) {
	principal, found := middleware.MustPrincipal(c)
	if !found {
		fail(c, http.StatusUnauthorized, "missing principal")
		return
	}

	input := service.ListProposalsInput{
		Page:      queryInt(c, "page"),
		PerPage:   queryInt(c, "per_page"),
		Principal: principal,
	}
	if raw := c.Query("kind"); raw != "" {
		kind, valid := model.ParseProposalKind(raw)
		if !valid {
			fail(c, http.StatusBadRequest, "invalid kind")
			return
		}
		input.Kind = &kind
	}
	if raw := c.Query("status"); raw != "" {
		status := model.ProposalStatus(raw)
		input.Status = &status
	}

	proposals, total, err := h.proposals.List(c.Request.Context(), input)
	if err != nil {
		h.handleError(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"proposals": proposals, "total": total})
}

func (h *Handler) getProposal(c *gin.Context) {
	principal, found := middleware.MustPrincipal(c)
	if !found {
		fail(c, http.StatusUnauthorized, "missing principal")
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		fail(c, http.StatusBadRequest, "invalid proposal id")
		return
	}

	proposal, err := h.proposals.Get(c.Request.Context(), id, principal)
	if err != nil {
		h.handleError(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"proposal": proposal})
}

func (h *Handler) cancelProposal(c *gin.Context) {
	principal, found := middleware.MustPrincipal(c)
	if !found {
		fail(c, http.StatusUnauthorized, "missing principal")
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		fail(c, http.StatusBadRequest, "invalid proposal id")
		return
	}

	proposal, err := h.proposals.Cancel(c.Request.Context(), id, principal)
	if err != nil {
		h.handleError(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"proposal": proposal})
}

type acceptProposalRequest struct {
	ProposalID string `json:"proposal_id" binding:"required"`
	Message    string `json:"message"`
}

func (h *Handler) acceptProposal(c *gin.Context) {
	principal, found := middleware.MustPrincipal(c)
	if !found {
		fail(c, http.StatusUnauthorized, "missing principal")
		return
	}

	kind, valid := model.ParseProposalKind(c.Param("kind"))
	if !valid {
		fail(c, http.StatusBadRequest, "invalid kind")
		return
	}

	var req acceptProposalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}
	proposalID, err := uuid.Parse(strings.TrimSpace(req.ProposalID))
	if err != nil {
		fail(c, http.StatusBadRequest, "invalid proposal_id")
		return
	}

	result, err := h.proposals.Accept(c.Request.Context(), service.AcceptProposalInput{
		ProposalID: proposalID,
		Kind:       kind,
		Message:    req.Message,
		Principal:  principal,
	})
	if err != nil {
		h.handleError(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{
		"proposal":            result.Proposal,
		"negotiating_message": result.Message,
		"offer":               result.Offer,
	})
}

type sendOfferRequest struct {
	ProposalID string  `json:"proposal_id" binding:"required"`
	Message    string  `json:"message" binding:"required"`
	Price      float64 `json:"price" binding:"required"`
	Content    string  `json:"content" binding:"required"`
}

func (h *Handler) sendOffer(c *gin.Context) {
	principal, found := middleware.MustPrincipal(c)
	if !found {
		fail(c, http.StatusUnauthorized, "missing principal")
		return
	}

	var req sendOfferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}
	proposalID, err := uuid.Parse(strings.TrimSpace(req.ProposalID))
	if err != nil {
		fail(c, http.StatusBadRequest, "invalid proposal_id")
		return
	}

	result, err := h.negotiation.SendOffer(c.Request.Context(), service.SendOfferInput{
		ProposalID: proposalID,
		Message:    req.Message,
		Price:      req.Price,
		Content:    req.Content,
		Principal:  principal,
	})
	if err != nil {
		h.handleError(c, err)
		return
	}
	respond(c, http.StatusCreated, gin.H{
		"negotiating_message": result.Message,
		"offer":               result.Offer,
	})
}

type offerRequest struct {
	OfferID string `json:"offer_id" binding:"required"`
}

func (h *Handler) acceptOffer(c *gin.Context) {
	principal, found := middleware.MustPrincipal(c)
	if !found {
		fail(c, http.StatusUnauthorized, "missing principal")
		return
	}

	var req offerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}
	offerID, err := uuid.Parse(strings.TrimSpace(req.OfferID))
	if err != nil {
		fail(c, http.StatusBadRequest, "invalid offer_id")
		return
	}

	result, err := h.negotiation.AcceptOffer(c.Request.Context(), offerID, principal)
	if err != nil {
		h.handleError(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{
		"offer":    result.Offer,
		"proposal": result.Proposal,
		"contract": result.Contract,
	})
}

func (h *Handler) rejectOffer(c *gin.Context) {
	principal, found := middleware.MustPrincipal(c)
	if !found {
		fail(c, http.StatusUnauthorized, "missing principal")
		return
	}

	var req offerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}
	offerID, err := uuid.Parse(strings.TrimSpace(req.OfferID))
	if err != nil {
		fail(c, http.StatusBadRequest, "invalid offer_id")
		return
	}

	offer, err := h.negotiation.RejectOffer(c.Request.Context(), offerID, principal)
	if err != nil {
		h.handleError(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"offer": offer})
}

func (h *Handler) retryFormation(c *gin.Context) {
	principal, found := middleware.MustPrincipal(c)
	if !found {
		fail(c, http.StatusUnauthorized, "missing principal")
		return
	}

	var req offerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}
	offerID, err := uuid.Parse(strings.TrimSpace(req.OfferID))
	if err != nil {
		fail(c, http.StatusBadRequest, "invalid offer_id")
		return
	}

	contract, err := h.negotiation.RetryFormation(c.Request.Context(), offerID, principal)
	if err != nil {
		h.handleError(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"contract": contract})
}

func (h *Handler) listMessages(c *gin.Context) {
	principal, found := middleware.MustPrincipal(c)
	if !found {
		fail(c, http.StatusUnauthorized, "missing principal")
		return
	}

	proposalID, err := uuid.Parse(strings.TrimSpace(c.Query("proposal_id")))
	if err != nil {
		fail(c, http.StatusBadRequest, "invalid proposal_id")
		return
	}

	messages, total, err := h.negotiation.ListMessages(
		c.Request.Context(), proposalID, queryInt(c, "page"), queryInt(c, "per_page"), principal,
	)
	if err != nil {
		h.handleError(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"messages": messages, "total": total})
}

type startStepRequest struct {
	ContractID   string   `json:"contract_id" binding:"required"`
	Step         string   `json:"step" binding:"required"`
	ContractFile *string  `json:"contract_file"`
	Attachments  []string `json:"attachments"`
	Notes        *string  `json:"notes"`
}

func (h *Handler) startStep(c *gin.Context) {
	principal, found := middleware.MustPrincipal(c)
	if !found {
		fail(c, http.StatusUnauthorized, "missing principal")
		return
	}

	var req startStepRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}
	contractID, err := uuid.Parse(strings.TrimSpace(req.ContractID))
	if err != nil {
		fail(c, http.StatusBadRequest, "invalid contract_id")
		return
	}
	step, valid := model.ParseStepKind(req.Step)
	if !valid {
		fail(c, http.StatusBadRequest, "invalid step")
		return
	}

	created, err := h.steps.Start(c.Request.Context(), service.StartStepInput{
		ContractID:   contractID,
		Step:         step,
		ContractFile: req.ContractFile,
		Attachments:  req.Attachments,
		Notes:        req.Notes,
		Principal:    principal,
	})
	if err != nil {
		h.handleError(c, err)
		return
	}
	respond(c, http.StatusCreated, gin.H{"contract_step": created})
}

type approveStepRequest struct {
	StepID   string  `json:"step_id" binding:"required"`
	Decision string  `json:"decision" binding:"required"`
	Party    *string `json:"party"`
	Note     *string `json:"note"`
}

func (h *Handler) approveStep(c *gin.Context) {
	principal, found := middleware.MustPrincipal(c)
	if !found {
		fail(c, http.StatusUnauthorized, "missing principal")
		return
	}

	var req approveStepRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}
	stepID, err := uuid.Parse(strings.TrimSpace(req.StepID))
	if err != nil {
		fail(c, http.StatusBadRequest, "invalid step_id")
		return
	}
	decision, valid := model.ParseDecision(req.Decision)
	if !valid {
		fail(c, http.StatusBadRequest, "invalid decision")
		return
	}

	input := service.ApproveStepInput{
		StepID:    stepID,
		Decision:  decision,
		Note:      req.Note,
		Principal: principal,
	}
	if req.Party != nil {
		party, valid := model.ParseParty(*req.Party)
		if !valid {
			fail(c, http.StatusBadRequest, "invalid party")
			return
		}
		input.Party = &party
	}

	updated, err := h.steps.Approve(c.Request.Context(), input)
	if err != nil {
		h.handleError(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"contract_step": updated})
}

func (h *Handler) listSteps(c *gin.Context) {
	if _, found := middleware.MustPrincipal(c); !found {
		fail(c, http.StatusUnauthorized, "missing principal")
		return
	}

	input := service.ListStepsInput{
		Page:    queryInt(c, "page"),
		PerPage: queryInt(c, "per_page"),
	}
	if raw := c.Query("contract_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			fail(c, http.StatusBadRequest, "invalid contract_id")
			return
		}
		input.ContractID = &id
	}
	if raw := c.Query("step"); raw != "" {
		step, valid := model.ParseStepKind(raw)
		if !valid {
			fail(c, http.StatusBadRequest, "invalid step")
			return
		}
		input.Step = &step
	}
	if raw := c.Query("status"); raw != "" {
		status := model.StepStatus(raw)
		input.Status = &status
	}

	steps, total, err := h.steps.List(c.Request.Context(), input)
	if err != nil {
		h.handleError(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"contract_steps": steps, "total": total})
}

type confirmLogRequest struct {
	ContractLogID  string  `json:"contract_log_id" binding:"required"`
	Status         *string `json:"status"`
	Reason         *string `json:"reason"`
	IsDoneContract *bool   `json:"is_done_contract"`
	ContractID     *string `json:"contract_id"`
}

func (h *Handler) confirmLog(c *gin.Context) {
	principal, found := middleware.MustPrincipal(c)
	if !found {
		fail(c, http.StatusUnauthorized, "missing principal")
		return
	}

	var req confirmLogRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}
	logID, err := uuid.Parse(strings.TrimSpace(req.ContractLogID))
	if err != nil {
		fail(c, http.StatusBadRequest, "invalid contract_log_id")
		return
	}

	input := service.ConfirmLogInput{
		LogID:          logID,
		Reason:         req.Reason,
		IsDoneContract: req.IsDoneContract,
		Principal:      principal,
	}
	if req.Status != nil {
		status := model.ContractLogStatus(*req.Status)
		switch status {
		case model.ContractLogStatusPending, model.ContractLogStatusCompleted, model.ContractLogStatusCancelled:
		default:
			fail(c, http.StatusBadRequest, "invalid status")
			return
		}
		input.Status = &status
	}
	if input.ContractID, err = parseOptionalID(req.ContractID); err != nil {
		fail(c, http.StatusBadRequest, "invalid contract_id")
		return
	}

	result, err := h.logs.Confirm(c.Request.Context(), input)
	if err != nil {
		h.handleError(c, err)
		return
	}
	payload := gin.H{"contract_log": result.Log}
	if result.Proposal != nil {
		payload["proposal"] = result.Proposal
	}
	respond(c, http.StatusOK, payload)
}

func (h *Handler) getContract(c *gin.Context) {
	principal, found := middleware.MustPrincipal(c)
	if !found {
		fail(c, http.StatusUnauthorized, "missing principal")
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		fail(c, http.StatusBadRequest, "invalid contract id")
		return
	}

	contract, err := h.contracts.Get(c.Request.Context(), id, principal)
	if err != nil {
		h.handleError(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"contract": contract})
}

func (h *Handler) exportContracts(c *gin.Context) {
	principal, found := middleware.MustPrincipal(c)
	if !found {
		fail(c, http.StatusUnauthorized, "missing principal")
		return
	}

	result, err := h.contracts.Export(c.Request.Context(), principal)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.Header("Content-Disposition", "attachment; filename=\""+result.FileName+"\"")
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", result.Content)
}

func (h *Handler) presignDocument(c *gin.Context) {
	principal, found := middleware.MustPrincipal(c)
	if !found {
		fail(c, http.StatusUnauthorized, "missing principal")
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		fail(c, http.StatusBadRequest, "invalid contract id")
		return
	}

	url, err := h.contracts.PresignDocument(c.Request.Context(), id, c.Query("key"), principal)
	if err != nil {
		h.handleError(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"url": url})
}

func (h *Handler) handleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidInput),
		errors.Is(err, service.ErrUnresolvedParties),
		errors.Is(err, service.ErrPartyUndetermined),
		errors.Is(err, service.ErrMissingRelatedProposal):
		fail(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrPermissionDenied):
		fail(c, http.StatusForbidden, err.Error())
	case errors.Is(err, service.ErrNotFound):
		fail(c, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrConflict):
		fail(c, http.StatusConflict, err.Error())
	default:
		h.log.Error().Err(err).Str("path", c.FullPath()).Msg("request failed")
		fail(c, http.StatusInternalServerError, "internal error")
	}
}

func parseOptionalID(raw *string) (*uuid.UUID, error) {
	if raw == nil || strings.TrimSpace(*raw) == "" {
		return nil, nil
	}
	id, err := uuid.Parse(strings.TrimSpace(*raw))
	if err != nil {
		return nil, err
	}
	return &id, nil
}

func queryInt(c *gin.Context, name string) int {
	value, err := strconv.Atoi(c.Query(name))
	if err != nil || value < 0 {
		return 0
	}
	return value
}
