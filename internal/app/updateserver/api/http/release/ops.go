package release

import (
	"net/http"

	"github.com/danielgtaylor/huma/v2"
)

func (h *Handler) checkOp() huma.Operation {
	return huma.Operation{
		OperationID: "release-check",
		Method:      http.MethodGet,
		Path:        "/v1.1/{channel}/{version}/{platform}/{platform_version}/{test}/{unique_id}",
		Summary:     "Проверка обновления",
		Description: "Возвращает последний выпуск канала для платформы клиента",
		Tags:        []string{"release"},
		Middlewares: h.middleware,
	}
}
