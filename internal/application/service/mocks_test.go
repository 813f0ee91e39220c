package service

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/wmartinez/presupuestos/internal/application/port"
	"github.com/wmartinez/presupuestos/internal/domain/entity"
	"github.com/wmartinez/presupuestos/internal/quote"
)

type logEntry struct {
	level string
	msg   string
}

type mockLogger struct {
	mu      sync.Mutex
	entries []logEntry
}

func (l *mockLogger) log(level, msg string) {
	l.mu.Lock()
	l.entries = append(l.entries, logEntry{level: level, msg: msg})
	l.mu.Unlock()
}

func (l *mockLogger) Info(msg string, keysAndValues ...interface{})  { l.log("info", msg) }
func (l *mockLogger) Warn(msg string, keysAndValues ...interface{})  { l.log("warn", msg) }
func (l *mockLogger) Error(msg string, keysAndValues ...interface{}) { l.log("error", msg) }

func (l *mockLogger) count(level string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	n := 0
	for _, e := range l.entries {
		if e.level == level {
			n++
		}
	}
	return n
}

type mockCounter struct {
	mu       sync.Mutex
	value    int
	saves    int
	loadFunc func(ctx context.Context) (int, error)
}

func (m *mockCounter) Load(ctx context.Context) (int, error) {
	if m.loadFunc != nil {
		return m.loadFunc(ctx)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.value, nil
}

func (m *mockCounter) Save(ctx context.Context, next int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.value = next
	m.saves++
	return nil
}

type mockQuoteRepo struct {
	mu         sync.Mutex
	records    map[int]*entity.QuoteRecord
	createFunc func(ctx context.Context, record *entity.QuoteRecord) error
	listCalls  int
}

func newMockQuoteRepo() *mockQuoteRepo {
	return &mockQuoteRepo{records: make(map[int]*entity.QuoteRecord)}
}

func (m *mockQuoteRepo) Create(ctx context.Context, record *entity.QuoteRecord) error {
	if m.createFunc != nil {
		if err := m.createFunc(ctx, record); err != nil {
			return err
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.records[record.Number]; ok {
		return fmt.Errorf("duplicate number %d", record.Number)
	}
	record.ID = int64(len(m.records) + 1)
	m.records[record.Number] = record
	return nil
}

func (m *mockQuoteRepo) GetByNumber(ctx context.Context, number int) (*entity.QuoteRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if r, ok := m.records[number]; ok {
		return r, nil
	}
	return nil, fmt.Errorf("quote %d: %w", number, port.ErrNotFound)
}

func (m *mockQuoteRepo) List(ctx context.Context, limit, offset int) ([]*entity.QuoteRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listCalls++
	var all []*entity.QuoteRecord
	for _, r := range m.records {
		all = append(all, r)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Number > all[j].Number })
	if offset >= len(all) {
		return nil, nil
	}
	all = all[offset:]
	if len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}

func (m *mockQuoteRepo) MaxNumber(ctx context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	max := 0
	for n := range m.records {
		if n > max {
			max = n
		}
	}
	return max, nil
}

func (m *mockQuoteRepo) Count(ctx context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.records), nil
}

type mockFileStorage struct {
	mu    sync.Mutex
	files map[string][]byte
}

func newMockFileStorage() *mockFileStorage {
	return &mockFileStorage{files: make(map[string][]byte)}
}

func (m *mockFileStorage) Save(ctx context.Context, path string, content []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.files[path] = content
	return nil
}

func (m *mockFileStorage) Create(ctx context.Context, path string, content []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.files[path]; ok {
		return fmt.Errorf("file %s: %w", path, port.ErrAlreadyExists)
	}
	m.files[path] = content
	return nil
}

func (m *mockFileStorage) Read(ctx context.Context, path string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if c, ok := m.files[path]; ok {
		return c, nil
	}
	return nil, fmt.Errorf("file %s: %w", path, port.ErrNotFound)
}

func (m *mockFileStorage) Exists(ctx context.Context, path string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.files[path]
	return ok
}

func (m *mockFileStorage) Delete(ctx context.Context, path string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.files, path)
	return nil
}

func (m *mockFileStorage) GetFullPath(relativePath string) string {
	return "/downloads/" + relativePath
}

type mockTxManager struct {
	calls int
}

func (m *mockTxManager) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	m.calls++
	return fn(ctx)
}

type mockAssetLoader struct {
	loadFunc func(ctx context.Context, path string) (*quote.Image, error)
}

func (m *mockAssetLoader) LoadImage(ctx context.Context, path string) (*quote.Image, error) {
	if m.loadFunc != nil {
		return m.loadFunc(ctx, path)
	}
	return &quote.Image{Name: "fondo", Type: "PNG", Data: []byte{1}}, nil
}

type mockComposer struct {
	calls       int
	composeFunc func(ctx context.Context, form entity.QuoteForm, number int, background *quote.Image) (*quote.Document, error)
}

func (m *mockComposer) Compose(ctx context.Context, form entity.QuoteForm, number int, background *quote.Image) (*quote.Document, error) {
	m.calls++
	if m.composeFunc != nil {
		return m.composeFunc(ctx, form, number, background)
	}
	return &quote.Document{Content: []byte(fmt.Sprintf("%%PDF-%d", number)), Pages: 1}, nil
}

type mockInspector struct {
	report *port.DocumentReport
	err    error
}

func (m *mockInspector) Inspect(ctx context.Context, content []byte) (*port.DocumentReport, error) {
	return m.report, m.err
}

type mockExporter struct {
	rows    int
	records []*entity.QuoteRecord
}

func (m *mockExporter) Export(ctx context.Context, records []*entity.QuoteRecord) ([]byte, error) {
	m.rows = len(records)
	m.records = records
	return []byte("xlsx"), nil
}
