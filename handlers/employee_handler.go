package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/ibartley/employee-api/app"
	"github.com/ibartley/employee-api/middleware"
	"github.com/ibartley/employee-api/store"
	"github.com/ibartley/employee-api/utils"
)

// CreateEmployeeRequest is the request body for POST /employees
type CreateEmployeeRequest struct {
	Name string `json:"employeeName" validate:"required"`
	ID   string `json:"employeeId" validate:"required"`
}

// ListEmployeesHandler handles GET /employees. Any correctly scoped
// reader sees the full collection.
func ListEmployeesHandler(deps *app.Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_ = utils.WriteJSON(w, http.StatusOK, deps.Employees.List())
	}
}

// CreateEmployeeHandler handles POST /employees
func CreateEmployeeHandler(deps *app.Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		requestID := chimiddleware.GetReqID(ctx)

		var req CreateEmployeeRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			_ = utils.WriteBadRequest(w, "Invalid request body")
			return
		}

		// Field presence is checked before uniqueness
		if err := utils.ValidateStruct(req); err != nil {
			_ = utils.WriteBadRequest(w, "Missing employeeName or employeeId")
			return
		}

		identity := middleware.GetIdentityFromContext(ctx)
		if identity == "" {
			// Route wiring guarantees the gate ran first
			deps.Logger.Error("identity missing from context",
				zap.String("request_id", requestID))
			_ = utils.WriteUnauthorized(w, "Authentication required")
			return
		}

		emp, err := deps.Employees.Create(req.Name, req.ID, identity)
		if err != nil {
			if errors.Is(err, store.ErrDuplicateID) {
				_ = utils.WriteConflict(w, "Employee ID already exists")
				return
			}
			deps.Logger.Error("employee create failed",
				zap.String("request_id", requestID),
				zap.Error(err))
			_ = utils.WriteInternalServerError(w, "")
			return
		}

		deps.Logger.Info("employee created",
			zap.String("request_id", requestID),
			zap.String("employee_id", emp.ID),
			zap.String("created_by", emp.CreatedBy))

		_ = utils.WriteJSON(w, http.StatusCreated, emp)
	}
}
