package retention

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/bigkaa/prodplan/internal/domain/model"
)

// Prometheus-метрики мемоизации сводных таблиц.
var (
	memoHitsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pp_retention_memo_hits_total",
		Help: "Количество попаданий в кэш сводных таблиц удержания.",
	})
	memoMissesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pp_retention_memo_misses_total",
		Help: "Количество промахов кэша сводных таблиц удержания.",
	})
)

// Entry — сводная таблица одной записи.
type Entry struct {
	ID              int64
	CompilationName string
	Grid            Grid
}

// Memo — кэш сводных таблиц по содержимому набора записей.
// Одинаковый набор (id и измерения) не пересчитывается.
type Memo struct {
	cache *lru.Cache[string, []Entry]
}

// NewMemo создаёт кэш на size наборов.
func NewMemo(size int) (*Memo, error) {
	cache, err := lru.New[string, []Entry](size)
	if err != nil {
		return nil, fmt.Errorf("создание кэша сводных таблиц: %w", err)
	}
	return &Memo{cache: cache}, nil
}

// Entries возвращает сводные таблицы для набора записей.
func (m *Memo) Entries(records []model.VideoRecord) []Entry {
	key := Fingerprint(records)
	if entries, ok := m.cache.Get(key); ok {
		memoHitsTotal.Inc()
		return entries
	}
	memoMissesTotal.Inc()

	entries := make([]Entry, 0, len(records))
	for i := range records {
		entries = append(entries, Entry{
			ID:              records[i].ID,
			CompilationName: records[i].CompilationName,
			Grid:            ComputeGrid(&records[i]),
		})
	}
	m.cache.Add(key, entries)
	return entries
}

// Fingerprint вычисляет отпечаток набора записей по id, названию и измерениям.
func Fingerprint(records []model.VideoRecord) string {
	h := sha256.New()
	var buf [8]byte
	for i := range records {
		r := &records[i]
		binary.BigEndian.PutUint64(buf[:], uint64(r.ID))
		h.Write(buf[:])
		h.Write([]byte(r.CompilationName))
		h.Write([]byte{0})
		for _, m := range r.Tests {
			fmt.Fprintf(h, "%s|%s|%s|%t;", m.Version, m.RetentionTime, m.RetentionValue.Raw, m.RetentionValue.Numeric)
		}
		h.Write([]byte{0xff})
	}
	return hex.EncodeToString(h.Sum(nil))
}

// ReportRow — строка отчёта: таблица записи и её лучшая версия.
type ReportRow struct {
	Entry
	Winner    Winner
	HasWinner bool
}

// Report — отчёт по удержанию для набора записей.
type Report struct {
	Key  model.RetentionTime
	Rows []ReportRow
}

// BuildReport ранжирует версии каждой записи по моменту key.
func BuildReport(entries []Entry, key model.RetentionTime) Report {
	rep := Report{Key: key, Rows: make([]ReportRow, 0, len(entries))}
	for _, e := range entries {
		w, ok := BestVersion(e.Grid, key)
		rep.Rows = append(rep.Rows, ReportRow{Entry: e, Winner: w, HasWinner: ok})
	}
	return rep
}
