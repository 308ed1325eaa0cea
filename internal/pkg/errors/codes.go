package errors

import "net/http"

const (
	CodeInvalidHierarchyRequest = "INVALID_HIERARCHY_REQUEST"
	CodeTransportFailure        = "TRANSPORT_FAILURE"
	CodeMalformedResponse       = "MALFORMED_RESPONSE"
	CodeValidationError         = "VALIDATION_ERROR"
)

// Таксономия ошибок движка drill-down
var (
	// ErrInvalidHierarchyRequest - разрыв в пути drill-down (ошибка вызывающего кода)
	ErrInvalidHierarchyRequest = New(
		CodeInvalidHierarchyRequest,
		"Invalid hierarchy request",
		http.StatusBadRequest,
	)

	// ErrTransportFailure - запрос к сервису измерений или к потоку не удался
	ErrTransportFailure = New(
		CodeTransportFailure,
		"Upstream request failed",
		http.StatusBadGateway,
	)

	// ErrMalformedResponse - ответ не массив или без ожидаемых полей
	ErrMalformedResponse = New(
		CodeMalformedResponse,
		"Malformed upstream response",
		http.StatusBadGateway,
	)

	// ErrValidation - ошибка, показываемая пользователю
	ErrValidation = New(
		CodeValidationError,
		"Validation failed",
		http.StatusUnprocessableEntity,
	)

	// ErrYearRequired - фильтр времени отправлен без года
	ErrYearRequired = New(
		CodeValidationError,
		"Tahun harus dipilih",
		http.StatusUnprocessableEntity,
	)
)

var (
	ErrSessionNotFound = New(
		"SESSION_NOT_FOUND",
		"Explorer session not found",
		http.StatusNotFound,
	)

	ErrNodeNotFound = New(
		"NODE_NOT_FOUND",
		"Drill node not found",
		http.StatusNotFound,
	)

	// ErrTreeRebuilt - раскрытие завершилось после перестроения дерева
	ErrTreeRebuilt = New(
		"TREE_REBUILT",
		"Drill tree was rebuilt",
		http.StatusConflict,
	)

	ErrInvalidDimension = New(
		"INVALID_DIMENSION",
		"Invalid dimension",
		http.StatusBadRequest,
	)

	ErrWarehouseDisabled = New(
		"WAREHOUSE_DISABLED",
		"Warehouse endpoints are disabled",
		http.StatusNotFound,
	)

	ErrDatabaseError = New(
		"DATABASE_ERROR",
		"Database operation failed",
		http.StatusInternalServerError,
	)

	ErrCacheError = New(
		"CACHE_ERROR",
		"Cache operation failed",
		http.StatusInternalServerError,
	)

	ErrInvalidRequest = New(
		"INVALID_REQUEST",
		"Invalid request parameters",
		http.StatusBadRequest,
	)

	ErrInternalServer = New(
		"INTERNAL_SERVER_ERROR",
		"Internal server error",
		http.StatusInternalServerError,
	)
)
