package handler

import (
	"net/url"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/hotspot-olap/internal/pkg/utils"
	"github.com/hotspot-olap/internal/usecase"
)

// QueryHandler - эталонный сервис измерений поверх хранилища. Отвечает в
// формате внешнего сервиса (без обёртки data/meta), чтобы olapapi.Client мог
// работать с ним напрямую.
type QueryHandler struct {
	queryUC *usecase.QueryUseCase
	logger  *zap.Logger
}

// NewQueryHandler - создание нового QueryHandler
func NewQueryHandler(queryUC *usecase.QueryUseCase, logger *zap.Logger) *QueryHandler {
	return &QueryHandler{
		queryUC: queryUC,
		logger:  logger,
	}
}

// Dimension godoc
// @Summary Агрегаты по измерению
// @Description location, confidence, satelite - массив [label, count]; time - массив {value, label}
// @Tags Warehouse
// @Produce json
// @Param dimension path string true "location | time | confidence | satelite"
// @Param pulau query string false "Остров"
// @Param provinsi query string false "Провинция"
// @Param kota query string false "Кабупатен / кота"
// @Param kecamatan query string false "Район"
// @Param desa query string false "Деревня"
// @Param tahun query string false "Год"
// @Param semester query string false "Семестр"
// @Param kuartal query string false "Квартал"
// @Param bulan query string false "Месяц"
// @Param hari query string false "День недели"
// @Param confidence query string false "Confidence, через запятую"
// @Param satelite query string false "Спутники, через запятую"
// @Param point query string false "Оставить одну метку"
// @Success 200 {array} interface{}
// @Failure 400 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Router /api/query/{dimension} [get]
func (h *QueryHandler) Dimension(c *fiber.Ctx) error {
	result, err := h.queryUC.Dimension(c.UserContext(), c.Params("dimension"), queryValues(c))
	if err != nil {
		return utils.SendError(c, err)
	}
	return c.JSON(result.Body())
}

// Hotspots godoc
// @Summary Поток точек hotspot
// @Description GeoJSON FeatureCollection точек, отфильтрованных как /api/query
// @Tags Warehouse
// @Produce json
// @Param tahun query string false "Год"
// @Param confidence query string false "Confidence, через запятую"
// @Param satelite query string false "Спутники, через запятую"
// @Success 200 {object} interface{}
// @Failure 404 {object} utils.ErrorResponse
// @Router /api/hotspot [get]
func (h *QueryHandler) Hotspots(c *fiber.Ctx) error {
	result, err := h.queryUC.Hotspots(c.UserContext(), queryValues(c))
	if err != nil {
		return utils.SendError(c, err)
	}
	return c.JSON(result)
}

func queryValues(c *fiber.Ctx) url.Values {
	values := url.Values{}
	c.Context().QueryArgs().VisitAll(func(key, value []byte) {
		values.Add(string(key), string(value))
	})
	return values
}
