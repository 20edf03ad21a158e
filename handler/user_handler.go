package handler

import (
	"encoding/json"
	"go-auth-api/common"
	"go-auth-api/model"
	"go-auth-api/service"
	"net/http"
	"strconv"
)

type UserHandler struct {
	userService *service.UserService
}

func NewUserHandler(userService *service.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// Me godoc
// @Summary      Return the authenticated user
// @Tags         user
// @Produce      json
// @Success      200  {object}  model.User
// @Failure      401  {object}  common.AppError
// @Security     BearerAuth
// @Router       /api/v1/user/me [get]
func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) *common.AppError {
	user := CurrentUser(r.Context())
	if user == nil {
		return common.NewAppError(http.StatusUnauthorized, "Unauthorized or invalid token", nil)
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	json.NewEncoder(w).Encode(user)
	return nil
}

// ListUsers godoc
// @Summary      List all users
// @Tags         admin
// @Produce      json
// @Success      200  {array}   model.User
// @Failure      403  {object}  common.AppError
// @Security     BearerAuth
// @Router       /api/v1/admin/users [get]
func (h *UserHandler) ListUsers(w http.ResponseWriter, r *http.Request) *common.AppError {
	users, err := h.userService.ListUsers()
	if err != nil {
		return common.NewAppError(http.StatusInternalServerError, "Error listing users", err)
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	json.NewEncoder(w).Encode(users)
	return nil
}

// UpdateUserRole godoc
// @Summary      Update a user's role
// @Tags         admin
// @Accept       json
// @Produce      json
// @Param        id      path  int                          true "User ID"
// @Param        request body  model.UpdateUserRoleRequest  true "Role payload"
// @Success      204
// @Failure      403  {object}  common.AppError
// @Security     BearerAuth
// @Router       /api/v1/admin/users/{id}/role [put]
func (h *UserHandler) UpdateUserRole(w http.ResponseWriter, r *http.Request) *common.AppError {
	userID, appErr := pathID(r)
	if appErr != nil {
		return appErr
	}

	var req model.UpdateUserRoleRequest
	if !common.ValidateAndDecode(w, r, &req) {
		return nil
	}

	if err := h.userService.UpdateUserRole(userID, req.Role); err != nil {
		return common.NewAppError(http.StatusInternalServerError, "Error updating user role", err)
	}

	w.WriteHeader(http.StatusNoContent)
	return nil
}

// DisableUser godoc
// @Summary      Disable a user account
// @Tags         admin
// @Produce      json
// @Param        id  path  int  true "User ID"
// @Success      204
// @Failure      403  {object}  common.AppError
// @Security     BearerAuth
// @Router       /api/v1/admin/users/{id}/disable [put]
func (h *UserHandler) DisableUser(w http.ResponseWriter, r *http.Request) *common.AppError {
	userID, appErr := pathID(r)
	if appErr != nil {
		return appErr
	}

	if err := h.userService.SetUserDisabled(userID, true); err != nil {
		return common.NewAppError(http.StatusInternalServerError, "Error disabling user", err)
	}

	w.WriteHeader(http.StatusNoContent)
	return nil
}

// DeleteUser godoc
// @Summary      Delete a user account
// @Tags         admin
// @Produce      json
// @Param        id  path  int  true "User ID"
// @Success      204
// @Failure      403  {object}  common.AppError
// @Security     BearerAuth
// @Router       /api/v1/admin/users/{id} [delete]
func (h *UserHandler) DeleteUser(w http.ResponseWriter, r *http.Request) *common.AppError {
	userID, appErr := pathID(r)
	if appErr != nil {
		return appErr
	}

	if err := h.userService.DeleteUser(userID); err != nil {
		return common.NewAppError(http.StatusInternalServerError, "Error deleting user", err)
	}

	w.WriteHeader(http.StatusNoContent)
	return nil
}

func pathID(r *http.Request) (int, *common.AppError) {
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		return 0, common.NewAppError(http.StatusBadRequest, "Invalid user id", err)
	}
	return id, nil
}
