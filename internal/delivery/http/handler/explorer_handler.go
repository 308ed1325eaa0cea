package handler

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hotspot-olap/internal/domain"
	"github.com/hotspot-olap/internal/pkg/errors"
	"github.com/hotspot-olap/internal/pkg/utils"
	"github.com/hotspot-olap/internal/pkg/validator"
	"github.com/hotspot-olap/internal/usecase"
	"github.com/hotspot-olap/internal/usecase/dto"
)

// ExplorerHandler - обработчик сессий обозревателя drill-down
type ExplorerHandler struct {
	explorerUC *usecase.ExplorerUseCase
	logger     *zap.Logger
}

// NewExplorerHandler - создание нового ExplorerHandler
func NewExplorerHandler(explorerUC *usecase.ExplorerUseCase, logger *zap.Logger) *ExplorerHandler {
	return &ExplorerHandler{
		explorerUC: explorerUC,
		logger:     logger,
	}
}

// CreateSession godoc
// @Summary Создать сессию обозревателя
// @Description Загружает уровень островов под фильтрами и при необходимости раскрывает путь
// @Tags Explorer
// @Accept json
// @Produce json
// @Param request body dto.CreateSessionRequest false "Фильтры и начальный путь"
// @Success 201 {object} utils.SuccessResponse{data=dto.SessionResponse}
// @Failure 400 {object} utils.ErrorResponse
// @Failure 422 {object} utils.ErrorResponse
// @Router /api/v1/explorer/sessions [post]
func (h *ExplorerHandler) CreateSession(c *fiber.Ctx) error {
	var req dto.CreateSessionRequest
	if err := parseBody(c, &req); err != nil {
		return utils.SendError(c, err)
	}

	result, err := h.explorerUC.CreateSession(c.UserContext(), req)
	if err != nil {
		return utils.SendError(c, err)
	}

	c.Status(fiber.StatusCreated)
	return utils.SendSuccess(c, result, &utils.Meta{
		Total:      len(result.Tree),
		Generation: result.Generation,
	})
}

// GetSession godoc
// @Summary Состояние сессии
// @Tags Explorer
// @Produce json
// @Param id path string true "ID сессии"
// @Success 200 {object} utils.SuccessResponse{data=dto.SessionResponse}
// @Failure 404 {object} utils.ErrorResponse
// @Router /api/v1/explorer/sessions/{id} [get]
func (h *ExplorerHandler) GetSession(c *fiber.Ctx) error {
	id, err := sessionID(c)
	if err != nil {
		return utils.SendError(c, err)
	}

	result, err := h.explorerUC.GetSession(c.UserContext(), id)
	if err != nil {
		return utils.SendError(c, err)
	}

	return utils.SendSuccess(c, result, &utils.Meta{Generation: result.Generation})
}

// DeleteSession godoc
// @Summary Удалить сессию
// @Tags Explorer
// @Param id path string true "ID сессии"
// @Success 204
// @Failure 404 {object} utils.ErrorResponse
// @Router /api/v1/explorer/sessions/{id} [delete]
func (h *ExplorerHandler) DeleteSession(c *fiber.Ctx) error {
	id, err := sessionID(c)
	if err != nil {
		return utils.SendError(c, err)
	}

	if err := h.explorerUC.DeleteSession(c.UserContext(), id); err != nil {
		return utils.SendError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// ApplyFilters godoc
// @Summary Применить фильтры
// @Description Сохраняет фильтры, сбрасывает фокус и перестраивает дерево
// @Tags Explorer
// @Accept json
// @Produce json
// @Param id path string true "ID сессии"
// @Param request body dto.FiltersRequest true "Фильтры"
// @Success 200 {object} utils.SuccessResponse{data=dto.SessionResponse}
// @Failure 404 {object} utils.ErrorResponse
// @Failure 422 {object} utils.ErrorResponse
// @Router /api/v1/explorer/sessions/{id}/filters [put]
func (h *ExplorerHandler) ApplyFilters(c *fiber.Ctx) error {
	id, err := sessionID(c)
	if err != nil {
		return utils.SendError(c, err)
	}

	var req dto.FiltersRequest
	if err := parseBody(c, &req); err != nil {
		return utils.SendError(c, err)
	}

	result, err := h.explorerUC.ApplyFilters(c.UserContext(), id, req)
	if err != nil {
		return utils.SendError(c, err)
	}

	return utils.SendSuccess(c, result, &utils.Meta{
		Total:      len(result.Tree),
		Generation: result.Generation,
	})
}

// Toggle godoc
// @Summary Раскрыть или свернуть узел
// @Tags Explorer
// @Produce json
// @Param id path string true "ID сессии"
// @Param node path int true "ID узла"
// @Success 200 {object} utils.SuccessResponse{data=dto.ToggleResponse}
// @Failure 404 {object} utils.ErrorResponse
// @Router /api/v1/explorer/sessions/{id}/nodes/{node}/toggle [post]
func (h *ExplorerHandler) Toggle(c *fiber.Ctx) error {
	id, err := sessionID(c)
	if err != nil {
		return utils.SendError(c, err)
	}
	node, err := strconv.ParseUint(c.Params("node"), 10, 64)
	if err != nil || node == 0 {
		return utils.SendError(c, errors.ErrInvalidRequest.WithMessage("invalid node id %q", c.Params("node")))
	}

	result, err := h.explorerUC.Toggle(c.UserContext(), id, domain.NodeID(node))
	if err != nil {
		return utils.SendError(c, err)
	}

	return utils.SendSuccess(c, result, &utils.Meta{
		Total:      len(result.Node.Children),
		Generation: result.Generation,
	})
}

// MapView godoc
// @Summary Данные карты для активного уровня
// @Description Агрегаты, пороги, легенда и видимые полигоны
// @Tags Explorer
// @Produce json
// @Param id path string true "ID сессии"
// @Success 200 {object} utils.SuccessResponse{data=dto.MapResponse}
// @Failure 404 {object} utils.ErrorResponse
// @Router /api/v1/explorer/sessions/{id}/map [get]
func (h *ExplorerHandler) MapView(c *fiber.Ctx) error {
	id, err := sessionID(c)
	if err != nil {
		return utils.SendError(c, err)
	}

	result, err := h.explorerUC.MapView(c.UserContext(), id)
	if err != nil {
		return utils.SendError(c, err)
	}

	return utils.SendSuccess(c, result, &utils.Meta{
		Total:  len(result.View.Features),
		Source: result.View.Source,
	})
}

// GetTime godoc
// @Summary Состояние фильтра времени
// @Tags Time
// @Produce json
// @Param id path string true "ID сессии"
// @Success 200 {object} utils.SuccessResponse{data=dto.TimeFilterResponse}
// @Failure 404 {object} utils.ErrorResponse
// @Router /api/v1/explorer/sessions/{id}/time [get]
func (h *ExplorerHandler) GetTime(c *fiber.Ctx) error {
	id, err := sessionID(c)
	if err != nil {
		return utils.SendError(c, err)
	}

	result, err := h.explorerUC.GetTime(c.UserContext(), id)
	if err != nil {
		return utils.SendError(c, err)
	}
	return utils.SendSuccess(c, result, nil)
}

// OpenTime godoc
// @Summary Открыть список уровня времени
// @Tags Time
// @Accept json
// @Produce json
// @Param id path string true "ID сессии"
// @Param request body dto.OpenTimeRequest true "Уровень и узел"
// @Success 200 {object} utils.SuccessResponse{data=dto.TimeFilterResponse}
// @Failure 404 {object} utils.ErrorResponse
// @Failure 422 {object} utils.ErrorResponse
// @Router /api/v1/explorer/sessions/{id}/time/open [post]
func (h *ExplorerHandler) OpenTime(c *fiber.Ctx) error {
	id, err := sessionID(c)
	if err != nil {
		return utils.SendError(c, err)
	}

	var req dto.OpenTimeRequest
	if err := parseBody(c, &req); err != nil {
		return utils.SendError(c, err)
	}

	result, err := h.explorerUC.OpenTime(c.UserContext(), id, req)
	if err != nil {
		return utils.SendError(c, err)
	}
	return utils.SendSuccess(c, result, nil)
}

// SetTime godoc
// @Summary Выбрать значение уровня времени
// @Description Сбрасывает более мелкие уровни и загружает варианты следующего
// @Tags Time
// @Accept json
// @Produce json
// @Param id path string true "ID сессии"
// @Param level path string true "tahun | semester | kuartal | bulan | hari"
// @Param request body dto.SetTimeRequest true "Значение; пустое - все"
// @Success 200 {object} utils.SuccessResponse{data=dto.TimeFilterResponse}
// @Failure 404 {object} utils.ErrorResponse
// @Failure 422 {object} utils.ErrorResponse
// @Router /api/v1/explorer/sessions/{id}/time/{level} [put]
func (h *ExplorerHandler) SetTime(c *fiber.Ctx) error {
	id, err := sessionID(c)
	if err != nil {
		return utils.SendError(c, err)
	}

	var req dto.SetTimeRequest
	if err := parseBody(c, &req); err != nil {
		return utils.SendError(c, err)
	}

	result, err := h.explorerUC.SetTime(c.UserContext(), id, c.Params("level"), req)
	if err != nil {
		return utils.SendError(c, err)
	}
	return utils.SendSuccess(c, result, nil)
}

// SubmitTime godoc
// @Summary Применить фильтр времени
// @Tags Time
// @Produce json
// @Param id path string true "ID сессии"
// @Success 200 {object} utils.SuccessResponse{data=dto.SessionResponse}
// @Failure 404 {object} utils.ErrorResponse
// @Failure 422 {object} utils.ErrorResponse
// @Router /api/v1/explorer/sessions/{id}/time/submit [post]
func (h *ExplorerHandler) SubmitTime(c *fiber.Ctx) error {
	id, err := sessionID(c)
	if err != nil {
		return utils.SendError(c, err)
	}

	result, err := h.explorerUC.SubmitTime(c.UserContext(), id)
	if err != nil {
		return utils.SendError(c, err)
	}
	return utils.SendSuccess(c, result, &utils.Meta{Generation: result.Generation})
}

// DimensionOptions godoc
// @Summary Варианты фильтра confidence / satelite
// @Tags Explorer
// @Produce json
// @Param dimension path string true "confidence | satelite | location"
// @Param tahun query string false "Год"
// @Param confidence query string false "Confidence"
// @Param satelite query string false "Спутник"
// @Success 200 {object} utils.SuccessResponse{data=dto.DimensionOptionsResponse}
// @Failure 400 {object} utils.ErrorResponse
// @Router /api/v1/explorer/dimensions/{dimension} [get]
func (h *ExplorerHandler) DimensionOptions(c *fiber.Ctx) error {
	var req dto.FiltersRequest
	if err := c.QueryParser(&req); err != nil {
		return utils.SendError(c, errors.ErrInvalidRequest.WithMessage("invalid query parameters"))
	}
	if err := validator.Validate(&req); err != nil {
		return utils.SendError(c, errors.ErrValidation.WithDetails(validator.FieldErrors(err)))
	}

	result, err := h.explorerUC.DimensionOptions(c.UserContext(), c.Params("dimension"), req)
	if err != nil {
		return utils.SendError(c, err)
	}

	return utils.SendSuccess(c, result, &utils.Meta{Total: len(result.Options)})
}

func sessionID(c *fiber.Ctx) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return uuid.Nil, errors.ErrInvalidRequest.WithMessage("invalid session id")
	}
	return id, nil
}

// parseBody decodes and validates a JSON body; an empty body leaves req zero.
func parseBody(c *fiber.Ctx, req interface{}) error {
	if len(c.Body()) > 0 {
		if err := c.BodyParser(req); err != nil {
			return errors.ErrInvalidRequest.WithMessage("invalid request body")
		}
	}
	if err := validator.Validate(req); err != nil {
		return errors.ErrValidation.WithDetails(validator.FieldErrors(err))
	}
	return nil
}
