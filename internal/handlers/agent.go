package handlers

import (
	"strconv"

	"taxgate/internal/models"
	"taxgate/internal/repositories"
	"taxgate/internal/utils"
	"taxgate/internal/utils/pagination"
	"taxgate/internal/utils/response"
	"taxgate/internal/validation"

	"github.com/gofiber/fiber/v2"
)

// AgentHandler manages the POS agents a bank operates. The active agent
// count feeds the submission overview.
type AgentHandler struct {
	agentRepo repositories.POSAgentRepository
}

func NewAgentHandler(agentRepo repositories.POSAgentRepository) *AgentHandler {
	return &AgentHandler{agentRepo: agentRepo}
}

// Register adds a POS agent under the authenticated bank
func (h *AgentHandler) Register(c *fiber.Ctx) error {
	claims, err := utils.GetUserClaims(c)
	if err != nil {
		return response.Unauthorized(c)
	}

	var input struct {
		Name       string `json:"name"`
		Phone      string `json:"phone"`
		TerminalID string `json:"terminal_id"`
	}
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	v := validation.New()
	v.Required("name", input.Name)
	v.Phone("phone", input.Phone)
	v.Required("terminal_id", input.TerminalID)
	if !v.Valid() {
		return response.ValidationFailed(c, v.Errors)
	}

	agent := &models.POSAgent{
		BankID:     claims.UserID,
		Name:       input.Name,
		Phone:      input.Phone,
		TerminalID: input.TerminalID,
		Status:     "active",
	}
	if err := h.agentRepo.Create(agent); err != nil {
		return response.ServerError(c, "Failed to register agent")
	}

	return response.Created(c, "Agent registered", agent)
}

// List returns the bank's agents with pagination
func (h *AgentHandler) List(c *fiber.Ctx) error {
	claims, err := utils.GetUserClaims(c)
	if err != nil {
		return response.Unauthorized(c)
	}

	p := pagination.ParseFromRequest(c)

	agents, total, err := h.agentRepo.ListByBank(claims.UserID, p.Offset, p.Limit)
	if err != nil {
		return response.ServerError(c, "Failed to load agents")
	}

	p.Total = total
	return c.JSON(pagination.Response(p, agents))
}

// Deactivate retires an agent so it no longer counts as active
func (h *AgentHandler) Deactivate(c *fiber.Ctx) error {
	claims, err := utils.GetUserClaims(c)
	if err != nil {
		return response.Unauthorized(c)
	}

	agentID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid agent ID")
	}

	agent, err := h.agentRepo.GetByID(uint(agentID))
	if err != nil {
		return response.NotFound(c, "Agent not found")
	}
	if agent.BankID != claims.UserID {
		return response.Forbidden(c, "Agent belongs to another bank")
	}

	agent.Status = "inactive"
	if err := h.agentRepo.Update(agent); err != nil {
		return response.ServerError(c, "Failed to deactivate agent")
	}

	return response.Success(c, "Agent deactivated", agent)
}
