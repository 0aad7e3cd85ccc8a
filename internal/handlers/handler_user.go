package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	portssvc "github.com/sharedsaver/shared_saver_app/internal/core/ports/services"
	"github.com/sharedsaver/shared_saver_app/internal/dto"
)

// userHandler handles HTTP requests related to users.
type userHandler struct {
	userService portssvc.UserSvcFacade
}

// newUserHandler creates a new userHandler.
func newUserHandler(us portssvc.UserSvcFacade) *userHandler {
	return &userHandler{userService: us}
}

// registerUserRoutes registers routes related to users.
func registerUserRoutes(rg *gin.RouterGroup, userService portssvc.UserSvcFacade) {
	h := newUserHandler(userService)

	users := rg.Group("/users")
	{
		users.GET("/me", h.getMe)
		users.GET("/me/summary", h.getMySummary)
		users.DELETE("/me", h.deleteMe)
	}
}

// getMe godoc
// @Summary Get the caller's profile
// @Tags users
// @Produce  json
// @Success 200 {object} dto.UserResponse
// @Failure 401 {object} ErrorResponse
// @Security BearerAuth
// @Router /users/me [get]
func (h *userHandler) getMe(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	user, err := h.userService.GetUserByID(c.Request.Context(), userID)
	if err != nil {
		respondServiceError(c, err, "Failed to retrieve user")
		return
	}
	c.JSON(http.StatusOK, dto.ToUserResponse(user))
}

// getMySummary godoc
// @Summary Get the caller's savings and loan position
// @Description Sums balances across all the caller's accounts and their outstanding loan principal
// @Tags users
// @Produce  json
// @Success 200 {object} dto.UserSummaryResponse
// @Failure 401 {object} ErrorResponse
// @Security BearerAuth
// @Router /users/me/summary [get]
func (h *userHandler) getMySummary(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	user, err := h.userService.GetUserByID(c.Request.Context(), userID)
	if err != nil {
		respondServiceError(c, err, "Failed to retrieve user")
		return
	}
	savings, err := h.userService.TotalSavings(c.Request.Context(), userID)
	if err != nil {
		respondServiceError(c, err, "Failed to compute savings")
		return
	}
	loans, err := h.userService.TotalLoans(c.Request.Context(), userID)
	if err != nil {
		respondServiceError(c, err, "Failed to compute loans")
		return
	}

	c.JSON(http.StatusOK, dto.UserSummaryResponse{
		UserID:       user.UserID,
		FullName:     user.FullName(),
		TotalSavings: savings,
		TotalLoans:   loans,
	})
}

// deleteMe godoc
// @Summary Delete the caller's account
// @Description Soft-deletes the user; ledger history is retained
// @Tags users
// @Success 204 "No Content"
// @Failure 401 {object} ErrorResponse
// @Security BearerAuth
// @Router /users/me [delete]
func (h *userHandler) deleteMe(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	if err := h.userService.DeleteUser(c.Request.Context(), userID, userID); err != nil {
		respondServiceError(c, err, "Failed to delete user")
		return
	}
	c.Status(http.StatusNoContent)
}
