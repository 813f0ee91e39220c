package container

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/wmartinez/presupuestos/internal/domain/entity"
)

func testConfig(t *testing.T) *Config {
	t.Helper()
	dir := t.TempDir()

	img := image.NewRGBA(image.Rect(0, 0, 21, 30))
	for x := 0; x < 21; x++ {
		img.Set(x, 0, color.RGBA{R: 200, A: 255})
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	background := filepath.Join(dir, "fondo.png")
	require.NoError(t, os.WriteFile(background, buf.Bytes(), 0644))

	cfg := DefaultConfig()
	cfg.Database.Path = filepath.Join(dir, "data", "quotes.db")
	cfg.Storage.DownloadsDir = filepath.Join(dir, "downloads")
	cfg.Quote.BackgroundPath = background
	return cfg
}

func form() entity.QuoteForm {
	return entity.QuoteForm{
		ClientName:  "Acme",
		Date:        entity.QuoteDate{Day: "05", Month: "Mayo", Year: "2024"},
		Price:       "$500",
		Includes:    "materiales",
		Description: "Pintura de fachada\nLimpieza final",
	}
}

func TestNewContainer_Validation(t *testing.T) {
	_, err := NewContainer(nil, zap.NewNop())
	assert.Error(t, err)

	_, err = NewContainer(DefaultConfig(), nil)
	assert.Error(t, err)

	cfg := DefaultConfig()
	cfg.Counter.Backend = "etcd"
	_, err = NewContainer(cfg, zap.NewNop())
	assert.Error(t, err)
}

func TestContainer_StartGenerateClose(t *testing.T) {
	cfg := testConfig(t)
	c, err := NewContainer(cfg, zap.NewNop())
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, c.Start(ctx))
	assert.True(t, c.Ready())
	assert.Error(t, c.Start(ctx), "second start")

	n, err := c.QuoteService().NextNumber(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	res, err := c.QuoteService().Generate(ctx, form(), entity.ModeFinal)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Number)
	assert.True(t, res.Persisted)
	assert.FileExists(t, filepath.Join(cfg.Storage.DownloadsDir, res.FileName))

	n, err = c.Counter().Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	page, err := c.RegisterService().List(ctx, 10, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, page.Total)

	healthy, details := c.HealthReport(ctx)
	assert.True(t, healthy, "%v", details)

	require.NoError(t, c.Close())
	assert.False(t, c.Ready())
	assert.Error(t, c.Close())
	assert.Error(t, c.Start(ctx))
}

func TestContainer_CounterSurvivesRestart(t *testing.T) {
	cfg := testConfig(t)
	ctx := context.Background()

	for want := 1; want <= 2; want++ {
		c, err := NewContainer(cfg, zap.NewNop())
		require.NoError(t, err)
		require.NoError(t, c.Start(ctx))

		res, err := c.QuoteService().Generate(ctx, form(), entity.ModeFinal)
		require.NoError(t, err)
		assert.Equal(t, want, res.Number)

		require.NoError(t, c.Close())
	}
}

func TestContainer_HealthReportsMissingBackground(t *testing.T) {
	cfg := testConfig(t)
	c, err := NewContainer(cfg, zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, c.Start(context.Background()))
	t.Cleanup(func() { _ = c.Close() })

	require.NoError(t, os.Remove(cfg.Quote.BackgroundPath))

	status := c.Health(context.Background())
	assert.False(t, status.Overall)
	assert.False(t, status.Components["background"].Healthy)
	assert.True(t, status.Components["database"].Healthy)
}

func TestProvideCounter_RedisUnavailableFallsBackToMemory(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	cfg := &CounterConfig{
		Backend:   entity.CounterBackendRedis,
		Key:       entity.DefaultCounterKey,
		Default:   5,
		RedisAddr: "127.0.0.1:1",
	}

	bundle, err := ProvideCounter(context.Background(), cfg, nil, zap.New(core))
	require.NoError(t, err)
	assert.Equal(t, entity.CounterBackendMemory, bundle.Backend)
	assert.Nil(t, bundle.redis)
	assert.Equal(t, 1, logs.Len())

	n, err := bundle.Counter.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 5, n)
}

func TestProvideCounter_SQLiteRequiresDatabase(t *testing.T) {
	_, err := ProvideCounter(context.Background(), &CounterConfig{
		Backend: entity.CounterBackendSQLite,
		Key:     entity.DefaultCounterKey,
		Default: 1,
	}, nil, zap.NewNop())
	assert.Error(t, err)
}

func TestConvertToZapFields(t *testing.T) {
	fields := convertToZapFields("number", 3, 42, "skipped", "error", errors.New("boom"), "dangling")
	require.Len(t, fields, 2)
	assert.Equal(t, "number", fields[0].Key)
	assert.Equal(t, "error", fields[1].Key)
	assert.Equal(t, zapcore.ErrorType, fields[1].Type)
}
