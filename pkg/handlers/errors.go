package handlers

import (
	"errors"
	"net/http"

	"github.com/techxudo-devs/techxudo-oms-server/pkg/services"
	"github.com/techxudo-devs/techxudo-oms-server/pkg/utils"
)

// writeServiceError 把服务层哨兵错误映射为HTTP状态码
// 未识别的错误一律按基础设施故障处理（500）
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, services.ErrValidation):
		utils.WriteValidationErrorResponse(w, err.Error(), "")
	case errors.Is(err, services.ErrNotFound):
		utils.WriteNotFoundResponse(w, err.Error())
	case errors.Is(err, services.ErrExpired):
		utils.WriteGoneResponse(w, err.Error())
	case errors.Is(err, services.ErrConflict):
		utils.WriteConflictResponse(w, err.Error())
	case errors.Is(err, services.ErrForbidden):
		utils.WriteForbiddenResponse(w, err.Error())
	case errors.Is(err, services.ErrDependency):
		utils.WriteErrorResponseWithCode(w, http.StatusBadGateway, "DEPENDENCY_FAILURE", err.Error(), "")
	default:
		utils.WriteInternalServerErrorResponse(w, "An unexpected error occurred")
	}
}
