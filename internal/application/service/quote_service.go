package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/wmartinez/presupuestos/internal/application/port"
	"github.com/wmartinez/presupuestos/internal/domain/entity"
	"github.com/wmartinez/presupuestos/internal/domain/workflow"
	"github.com/wmartinez/presupuestos/internal/quote"
)

// User-facing messages for the error slot
const (
	AssetLoadMessage    = "No se pudo cargar la imagen de fondo del presupuesto. Intente nuevamente."
	RenderFailedMessage = "No se pudo generar el PDF del presupuesto."
)

const defaultAssetTimeout = 10 * time.Second

var (
	ErrGenerationInProgress = errors.New("a quote is already being generated")
	ErrInvalidMode          = errors.New("invalid generation mode")
)

// Composer renders a validated form into a document
type Composer interface {
	Compose(ctx context.Context, form entity.QuoteForm, number int, background *quote.Image) (*quote.Document, error)
}

// QuoteConfig holds the generation settings
type QuoteConfig struct {
	BackgroundPath string
	AssetTimeout   time.Duration
}

// GenerateResult is the outcome of a successful generation request
type GenerateResult struct {
	Mode         string
	State        workflow.State
	Number       int
	FileName     string
	Content      []byte
	Pages        int
	DroppedLines int
	Persisted    bool // the final document reached the register and the download store
}

// StatusView is a snapshot of the form state
type StatusView struct {
	State      workflow.State `json:"state"`
	LastError  string         `json:"last_error,omitempty"`
	NextNumber int            `json:"next_number"`
	InFlight   bool           `json:"in_flight"`
}

// QuoteService runs generation requests against the quote template
type QuoteService interface {
	// Generate validates form and renders it. ModeFinal also consumes the document number.
	Generate(ctx context.Context, form entity.QuoteForm, mode string) (*GenerateResult, error)

	// NextNumber returns the number the next finalized quote will carry
	NextNumber(ctx context.Context) (int, error)

	// Status returns the state of the last request and the error slot
	Status(ctx context.Context) StatusView
}

type quoteServiceImpl struct {
	validator *quote.FieldValidator
	slot      *quote.ErrorSlot
	composer  Composer
	assets    port.AssetLoader
	inspector port.DocumentInspector
	counter   port.CounterStore
	quotes    port.QuoteRepository
	files     port.FileStorage
	txManager port.TransactionManager
	cfg       QuoteConfig
	logger    Logger

	inFlight  atomic.Bool
	mu        sync.RWMutex
	lastState workflow.State
}

// NewQuoteService creates a new QuoteService. inspector may be nil.
func NewQuoteService(
	slot *quote.ErrorSlot,
	composer Composer,
	assets port.AssetLoader,
	inspector port.DocumentInspector,
	counter port.CounterStore,
	quotes port.QuoteRepository,
	files port.FileStorage,
	txManager port.TransactionManager,
	cfg QuoteConfig,
	logger Logger,
) QuoteService {
	if cfg.AssetTimeout <= 0 {
		cfg.AssetTimeout = defaultAssetTimeout
	}
	return &quoteServiceImpl{
		validator: quote.NewFieldValidator(slot),
		slot:      slot,
		composer:  composer,
		assets:    assets,
		inspector: inspector,
		counter:   counter,
		quotes:    quotes,
		files:     files,
		txManager: txManager,
		cfg:       cfg,
		logger:    logger,
		lastState: workflow.StateIdle,
	}
}

// Generate drives one request through the generation state machine
func (s *quoteServiceImpl) Generate(ctx context.Context, form entity.QuoteForm, mode string) (*GenerateResult, error) {
	if mode != entity.ModePreview && mode != entity.ModeFinal {
		return nil, fmt.Errorf("%w: %q", ErrInvalidMode, mode)
	}

	m := workflow.NewGenerationMachine()
	if err := m.Fire(ctx, workflow.TriggerSubmit); err != nil {
		return nil, err
	}

	if err := s.validator.Validate(form); err != nil {
		_ = m.Fire(ctx, workflow.TriggerReject)
		s.record(m.State())
		s.logger.Info("Quote rejected", "mode", mode, "error", err)
		return nil, err
	}

	// one composition at a time; a concurrent request is refused, not queued
	if !s.inFlight.CompareAndSwap(false, true) {
		s.logger.Warn("Quote generation refused, another request is in progress", "mode", mode)
		return nil, ErrGenerationInProgress
	}
	defer s.inFlight.Store(false)

	if err := m.Fire(ctx, workflow.TriggerAccept); err != nil {
		return nil, err
	}

	number, err := s.nextNumber(ctx)
	if err != nil {
		return nil, s.fail(ctx, m, fmt.Errorf("failed to load document number: %w", err))
	}

	background, err := s.loadBackground(ctx)
	if err != nil {
		return nil, s.fail(ctx, m, err)
	}

	doc, err := s.composer.Compose(ctx, form, number, background)
	if err != nil {
		return nil, s.fail(ctx, m, err)
	}

	result := &GenerateResult{
		Mode:         mode,
		Number:       number,
		Content:      doc.Content,
		Pages:        doc.Pages,
		DroppedLines: doc.DroppedLines,
	}
	s.inspect(ctx, result)

	if err := m.Fire(ctx, workflow.TriggerRender); err != nil {
		return nil, s.fail(ctx, m, err)
	}

	if mode == entity.ModePreview {
		if err := m.Fire(ctx, workflow.TriggerPreview); err != nil {
			return nil, err
		}
		s.slot.Clear()
		s.record(m.State())
		result.State = m.State()

		s.logger.Info("Quote preview rendered",
			"number", number,
			"pages", result.Pages,
			"dropped_lines", result.DroppedLines)
		return result, nil
	}

	result.FileName = quote.FileName(number, form.ClientName)
	result.Persisted = s.finalize(ctx, form, result)

	if err := m.Fire(ctx, workflow.TriggerFinalize); err != nil {
		return nil, err
	}
	s.slot.Clear()
	s.record(m.State())
	result.State = m.State()

	s.logger.Info("Quote finalized",
		"number", number,
		"file_name", result.FileName,
		"pages", result.Pages,
		"dropped_lines", result.DroppedLines,
		"persisted", result.Persisted)

	return result, nil
}

// loadBackground waits for the template image at most AssetTimeout
func (s *quoteServiceImpl) loadBackground(ctx context.Context) (*quote.Image, error) {
	actx, cancel := context.WithTimeout(ctx, s.cfg.AssetTimeout)
	defer cancel()

	img, err := s.assets.LoadImage(actx, s.cfg.BackgroundPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", quote.ErrAssetLoad, err)
	}
	return img, nil
}

// inspect replaces the page count with the one read back from the output
func (s *quoteServiceImpl) inspect(ctx context.Context, result *GenerateResult) {
	if s.inspector == nil {
		return
	}

	report, err := s.inspector.Inspect(ctx, result.Content)
	if err != nil {
		s.logger.Warn("Rendered quote could not be inspected", "number", result.Number, "error", err)
		return
	}
	if !report.Validated {
		s.logger.Warn("Rendered quote failed validation", "number", result.Number)
	}
	if report.Pages > 0 {
		result.Pages = report.Pages
	}
}

// finalize registers the document, stores it and advances the counter in one
// transaction. The register row goes first so a number that is already taken fails
// before any file is touched, and an existing file is never replaced. Storage failures
// do not fail the request: the counter still advances past every registered number.
func (s *quoteServiceImpl) finalize(ctx context.Context, form entity.QuoteForm, result *GenerateResult) bool {
	next := result.Number + 1

	record := &entity.QuoteRecord{
		Number:       result.Number,
		ClientName:   form.ClientName,
		QuoteDate:    form.Date.String(),
		Price:        form.Price,
		Includes:     form.Includes,
		FileName:     result.FileName,
		Pages:        result.Pages,
		DroppedLines: result.DroppedLines,
		CreatedAt:    time.Now(),
	}

	created := false
	err := s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		if err := s.quotes.Create(txCtx, record); err != nil {
			return fmt.Errorf("failed to register quote: %w", err)
		}
		if err := s.files.Create(txCtx, result.FileName, result.Content); err != nil {
			return fmt.Errorf("failed to store document: %w", err)
		}
		created = true
		return s.counter.Save(txCtx, next)
	})
	if err == nil {
		return true
	}

	s.logger.Warn("Quote could not be persisted, advancing counter only",
		"number", result.Number,
		"error", err)

	// only a file written by this request may be removed
	if created {
		if delErr := s.files.Delete(ctx, result.FileName); delErr != nil {
			s.logger.Error("Failed to remove unregistered document", "file_name", result.FileName, "error", delErr)
		}
	}

	if max, maxErr := s.quotes.MaxNumber(ctx); maxErr == nil && max >= next {
		next = max + 1
	}
	if err := s.counter.Save(ctx, next); err != nil {
		s.logger.Error("Failed to advance document counter", "next", next, "error", err)
	}
	return false
}

func (s *quoteServiceImpl) fail(ctx context.Context, m workflow.StateMachine, err error) error {
	_ = m.Fire(ctx, workflow.TriggerFail)
	s.record(m.State())

	if errors.Is(err, quote.ErrAssetLoad) {
		s.slot.Set(AssetLoadMessage)
	} else {
		s.slot.Set(RenderFailedMessage)
	}

	s.logger.Error("Quote generation failed", "state", m.State(), "path", m.Path(), "error", err)
	return err
}

func (s *quoteServiceImpl) record(state workflow.State) {
	s.mu.Lock()
	s.lastState = state
	s.mu.Unlock()
}

// NextNumber returns the number the next finalized quote will carry
func (s *quoteServiceImpl) NextNumber(ctx context.Context) (int, error) {
	return s.nextNumber(ctx)
}

// nextNumber loads the counter and moves it past the register when it lags behind,
// as after a restart on the memory backend or while the store is degraded
func (s *quoteServiceImpl) nextNumber(ctx context.Context) (int, error) {
	n, err := s.counter.Load(ctx)
	if err != nil {
		return 0, err
	}

	max, err := s.quotes.MaxNumber(ctx)
	if err != nil {
		s.logger.Warn("Failed to read register for number check", "error", err)
		return n, nil
	}
	if max >= n {
		s.logger.Warn("Document counter behind register, skipping registered numbers",
			"counter", n,
			"next", max+1)
		return max + 1, nil
	}
	return n, nil
}

// Status returns the state of the last request and the error slot
func (s *quoteServiceImpl) Status(ctx context.Context) StatusView {
	s.mu.RLock()
	state := s.lastState
	s.mu.RUnlock()

	next, err := s.nextNumber(ctx)
	if err != nil {
		s.logger.Warn("Failed to load next number for status", "error", err)
	}

	return StatusView{
		State:      state,
		LastError:  s.slot.Message(),
		NextNumber: next,
		InFlight:   s.inFlight.Load(),
	}
}
