package handlers

import (
	"encoding/json"
	"log"
	"sync/atomic"

	"pattern-mapper/internal/pattern/loader"
	"pattern-mapper/internal/pattern/models"

	"github.com/gofiber/fiber/v3"
)

// ============================================================
// Pattern Handler
// ============================================================

// Ключ fiber locals с id текущей загрузки
const LoadIDKey = "loadid"

type PatternHandler struct {
	builder *loader.Builder
	logger  *log.Logger
	loads   atomic.Int64
}

func NewPatternHandler(builder *loader.Builder, logger *log.Logger) *PatternHandler {
	if logger == nil {
		logger = log.Default()
	}
	return &PatternHandler{builder: builder, logger: logger}
}

type patternRequest struct {
	Settings json.RawMessage     `json:"settings"`
	Shapes   []*models.ShapeInfo `json:"shapes"`
}

type specReport struct {
	Index     int    `json:"index"`
	Kind      string `json:"kind"`
	GroupName string `json:"groupname,omitempty"`
	Error     string `json:"error,omitempty"`
}

// Loads возвращает число собранных паттернов.
func (h *PatternHandler) Loads() int64 {
	return h.loads.Load()
}

// BuildPattern собирает паттерн из присланных настроек и фигур.
// Каждый запрос это полная загрузка, между запросами ничего не хранится.
func (h *PatternHandler) BuildPattern(c fiber.Ctx) error {
	body, err := requestJSON(c)
	if err != nil {
		h.logger.Printf("[PATTERN] bad body: %v", err)
		return c.Status(400).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}

	var req patternRequest
	if err := json.Unmarshal(body, &req); err != nil {
		h.logger.Printf("[PATTERN] decode request: %v", err)
		return c.Status(400).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}
	settings, err := decodeSettings(req.Settings)
	if err != nil {
		h.logger.Printf("[PATTERN] %v", err)
		return c.Status(400).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	load, err := h.builder.Load(settings, req.Shapes)
	if err != nil {
		h.logger.Printf("[PATTERN] load failed: %v", err)
		return c.Status(400).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
	h.loads.Add(1)
	c.Locals(LoadIDKey, load.ID)
	c.Set("X-Load-Id", load.ID)

	return c.JSON(load.Output(h.logger))
}

// CheckSettings классифицирует спеки групп без сборки.
func (h *PatternHandler) CheckSettings(c fiber.Ctx) error {
	body, err := requestJSON(c)
	if err != nil {
		return c.Status(400).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}
	settings, err := decodeSettings(body)
	if err != nil {
		return c.Status(400).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	reports := make([]specReport, 0, len(settings.Groups))
	valid := true
	for i, spec := range settings.Groups {
		r := specReport{Index: i, Kind: string(spec.Kind()), GroupName: spec.Base().GroupName}
		if err := models.ValidateSpec(spec); err != nil {
			r.Error = err.Error()
			valid = false
		}
		reports = append(reports, r)
	}
	return c.JSON(fiber.Map{
		"valid": valid,
		"specs": reports,
	})
}

// requestJSON возвращает тело как JSON, YAML и TOML конвертируются.
func requestJSON(c fiber.Ctx) ([]byte, error) {
	data, err := models.ToJSON(models.SettingsFormat(c.Get(fiber.HeaderContentType)), c.Body())
	if err != nil {
		return nil, err
	}
	if data == nil {
		return []byte("{}"), nil
	}
	return data, nil
}

func decodeSettings(raw json.RawMessage) (*models.PatternSettings, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return &models.PatternSettings{}, nil
	}
	return models.ParseSettings(raw)
}
