// Пакет retention — сводная таблица удержания (версия × момент)
// и выбор лучшей версии по фиксированному моменту.
package retention

import (
	"github.com/bigkaa/prodplan/internal/domain/model"
)

// DefaultKey — момент, по которому по умолчанию выбирается лучшая версия.
const DefaultKey = model.Retention30s

// Cell — ячейка сводной таблицы. Present=false — данных нет.
type Cell struct {
	Value   model.RetentionValue
	Present bool
}

// Grid — плотная таблица 5 версий × 4 момента.
type Grid struct {
	cells [len(model.Versions)][len(model.RetentionTimes)]Cell
}

// ComputeGrid строит таблицу по измерениям записи.
func ComputeGrid(record *model.VideoRecord) Grid {
	return GridFromTests(record.Tests)
}

// GridFromTests строит таблицу по списку измерений. При повторе пары
// (версия, момент) побеждает последнее измерение. Неизвестные версии
// и моменты пропускаются.
func GridFromTests(tests []model.TestMeasurement) Grid {
	var g Grid
	for _, m := range tests {
		vi, ti := m.Version.Index(), m.RetentionTime.Index()
		if vi < 0 || ti < 0 {
			continue
		}
		g.cells[vi][ti] = Cell{Value: m.RetentionValue, Present: true}
	}
	return g
}

// Cell возвращает ячейку таблицы. ok=false для неизвестной версии или момента.
func (g Grid) Cell(v model.Version, t model.RetentionTime) (Cell, bool) {
	vi, ti := v.Index(), t.Index()
	if vi < 0 || ti < 0 {
		return Cell{}, false
	}
	return g.cells[vi][ti], true
}

// Number возвращает числовое значение ячейки, если оно есть.
func (g Grid) Number(v model.Version, t model.RetentionTime) (float64, bool) {
	c, ok := g.Cell(v, t)
	if !ok || !c.Present || !c.Value.Numeric {
		return 0, false
	}
	return c.Value.Number, true
}

// Winner — лучшая версия по моменту.
type Winner struct {
	Version model.Version
	Value   float64
}

// BestVersion выбирает версию с наибольшим числовым значением в момент key.
// Версии просматриваются в порядке V1..V5, при равенстве остаётся первая.
// ok=false, если ни у одной версии нет числового значения.
func BestVersion(g Grid, key model.RetentionTime) (Winner, bool) {
	var best Winner
	found := false
	for _, v := range model.Versions {
		n, ok := g.Number(v, key)
		if !ok {
			continue
		}
		if !found || n > best.Value {
			best = Winner{Version: v, Value: n}
			found = true
		}
	}
	return best, found
}
