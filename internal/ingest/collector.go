package ingest

import (
	"fmt"

	"github.com/velinovaa/go-alerts-aggregator/internal/models"
)

// Collector накапливает нефатальные диагностики по одному сообщению в ходе
// конвейера. Значение протягивается через этапы явно (не глобальный
// аккумулятор) и целиком сохраняется вместе с сообщением — операторы
// разбирают проблемы качества данных постфактум, без перезапуска конвейера.
type Collector struct {
	entries []models.IngestError
}

// NewCollector создаёт пустой коллектор.
func NewCollector() *Collector {
	return &Collector{}
}

// Warn — деградация, сообщение всё ещё полезно (промах геокодера).
func (c *Collector) Warn(stage, format string, args ...any) {
	c.add(models.IngestLevelWarning, stage, format, args...)
}

// Error — этап не удался, конвейер продолжает с частичными данными.
func (c *Collector) Error(stage, format string, args ...any) {
	c.add(models.IngestLevelError, stage, format, args...)
}

// Exception — неожиданный сбой (паника, ошибка вне таксономии).
func (c *Collector) Exception(stage, format string, args ...any) {
	c.add(models.IngestLevelException, stage, format, args...)
}

func (c *Collector) add(level models.IngestErrorLevel, stage, format string, args ...any) {
	c.entries = append(c.entries, models.IngestError{
		Level:  level,
		Stage:  stage,
		Detail: fmt.Sprintf(format, args...),
	})
}

// Entries возвращает накопленные диагностики в порядке возникновения.
func (c *Collector) Entries() []models.IngestError {
	return c.entries
}
