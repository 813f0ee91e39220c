package http

import (
	"errors"
	"mime"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/wmartinez/presupuestos/internal/application/port"
	"github.com/wmartinez/presupuestos/internal/application/service"
	"github.com/wmartinez/presupuestos/internal/domain/entity"
	"github.com/wmartinez/presupuestos/internal/quote"
	"github.com/wmartinez/presupuestos/pkg/utils"
)

const (
	contentTypePDF  = "application/pdf"
	contentTypePNG  = "image/png"
	contentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

	headerQuoteNumber  = "X-Quote-Number"
	headerQuotePages   = "X-Quote-Pages"
	headerDroppedLines = "X-Quote-Dropped-Lines"
)

// Handlers contains all HTTP request handlers
type Handlers struct {
	quoteService    service.QuoteService
	registerService service.RegisterService
	thumbnails      port.Thumbnailer
	health          HealthReporter
	logger          Logger
}

// NewHandlers creates a new Handlers instance
func NewHandlers(
	quoteService service.QuoteService,
	registerService service.RegisterService,
	thumbnails port.Thumbnailer,
	health HealthReporter,
	logger Logger,
) *Handlers {
	return &Handlers{
		quoteService:    quoteService,
		registerService: registerService,
		thumbnails:      thumbnails,
		health:          health,
		logger:          logger,
	}
}

// Response represents a standard JSON response
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status     string      `json:"status"`
	Timestamp  string      `json:"timestamp"`
	Version    string      `json:"version"`
	Components interface{} `json:"components,omitempty"`
}

// QuoteDateRequest is the three-part date of the form
type QuoteDateRequest struct {
	Day   string `json:"day" form:"day"`
	Month string `json:"month" form:"month"`
	Year  string `json:"year" form:"year"`
}

// QuoteRequest is the form body of a generation request, JSON or url-encoded
type QuoteRequest struct {
	ClientName  string           `json:"client_name" form:"client_name"`
	Date        QuoteDateRequest `json:"date" form:"-"`
	Day         string           `json:"-" form:"day"`
	Month       string           `json:"-" form:"month"`
	Year        string           `json:"-" form:"year"`
	Price       string           `json:"price" form:"price"`
	Includes    string           `json:"includes" form:"includes"`
	Description string           `json:"description" form:"description"`
}

// ToForm applies the input filters of the form: day up to two digits, year up to
// four digits, month letters only
func (r QuoteRequest) ToForm() entity.QuoteForm {
	date := r.Date
	if date == (QuoteDateRequest{}) {
		date = QuoteDateRequest{Day: r.Day, Month: r.Month, Year: r.Year}
	}

	return entity.QuoteForm{
		ClientName: utils.SanitizeString(r.ClientName),
		Date: entity.QuoteDate{
			Day:   utils.DigitsOnly(date.Day, 2),
			Month: utils.LettersOnly(date.Month),
			Year:  utils.DigitsOnly(date.Year, 4),
		},
		Price:       utils.SanitizeString(r.Price),
		Includes:    utils.SanitizeString(r.Includes),
		Description: r.Description,
	}
}

// ListQuotesRequest represents query parameters for listing quotes
type ListQuotesRequest struct {
	Limit  int `form:"limit"`
	Offset int `form:"offset"`
}

// HealthCheck handles GET /health
func (h *Handlers) HealthCheck(c *gin.Context) {
	response := HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Version:   "1.0.0",
	}

	status := http.StatusOK
	if h.health != nil {
		healthy, details := h.health.HealthReport(c.Request.Context())
		response.Components = details
		if !healthy {
			response.Status = "unhealthy"
			status = http.StatusServiceUnavailable
		}
	}

	c.JSON(status, Response{
		Success: status == http.StatusOK,
		Data:    response,
	})
}

// GeneratePreview handles POST /api/quotes/preview
func (h *Handlers) GeneratePreview(c *gin.Context) {
	h.generate(c, entity.ModePreview)
}

// GenerateFinal handles POST /api/quotes
func (h *Handlers) GenerateFinal(c *gin.Context) {
	h.generate(c, entity.ModeFinal)
}

func (h *Handlers) generate(c *gin.Context, mode string) {
	var req QuoteRequest
	if err := c.ShouldBind(&req); err != nil {
		h.logger.Warn("Invalid quote request", "error", err)
		c.JSON(http.StatusBadRequest, Response{
			Success: false,
			Error:   "invalid request body",
		})
		return
	}

	result, err := h.quoteService.Generate(c.Request.Context(), req.ToForm(), mode)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.Header(headerQuoteNumber, strconv.Itoa(result.Number))
	c.Header(headerQuotePages, strconv.Itoa(result.Pages))
	c.Header(headerDroppedLines, strconv.Itoa(result.DroppedLines))

	if mode == entity.ModePreview {
		if c.Query("format") == "png" {
			h.writeThumbnail(c, result)
			return
		}
		c.Header("Content-Disposition", "inline")
		c.Data(http.StatusOK, contentTypePDF, result.Content)
		return
	}

	c.Header("Content-Disposition", attachment(result.FileName))
	c.Data(http.StatusOK, contentTypePDF, result.Content)
}

func (h *Handlers) writeThumbnail(c *gin.Context, result *service.GenerateResult) {
	if h.thumbnails == nil {
		c.JSON(http.StatusNotImplemented, Response{
			Success: false,
			Error:   "thumbnails are not available",
		})
		return
	}

	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 || page > result.Pages {
		c.JSON(http.StatusBadRequest, Response{
			Success: false,
			Error:   "invalid page",
		})
		return
	}

	img, err := h.thumbnails.Render(c.Request.Context(), result.Content, page)
	if err != nil {
		h.logger.Error("Failed to render thumbnail", "error", err, "page", page)
		c.JSON(http.StatusInternalServerError, Response{
			Success: false,
			Error:   service.RenderFailedMessage,
		})
		return
	}

	c.Data(http.StatusOK, contentTypePNG, img)
}

// NextNumber handles GET /api/quotes/next-number
func (h *Handlers) NextNumber(c *gin.Context) {
	n, err := h.quoteService.NextNumber(c.Request.Context())
	if err != nil {
		h.logger.Error("Failed to get next number", "error", err)
		c.JSON(http.StatusInternalServerError, Response{
			Success: false,
			Error:   "failed to read document number",
		})
		return
	}

	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    gin.H{"next_number": n},
	})
}

// Status handles GET /api/quotes/status
func (h *Handlers) Status(c *gin.Context) {
	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    h.quoteService.Status(c.Request.Context()),
	})
}

// ListQuotes handles GET /api/quotes
func (h *Handlers) ListQuotes(c *gin.Context) {
	var req ListQuotesRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.logger.Warn("Invalid query parameters", "error", err)
		c.JSON(http.StatusBadRequest, Response{
			Success: false,
			Error:   "invalid query parameters",
		})
		return
	}

	page, err := h.registerService.List(c.Request.Context(), req.Limit, req.Offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, Response{
			Success: false,
			Error:   "failed to list quotes",
		})
		return
	}

	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    page,
	})
}

// DownloadQuote handles GET /api/quotes/:number/download
func (h *Handlers) DownloadQuote(c *gin.Context) {
	number, err := strconv.Atoi(c.Param("number"))
	if err != nil || number < 1 {
		c.JSON(http.StatusBadRequest, Response{
			Success: false,
			Error:   "invalid quote number",
		})
		return
	}

	record, content, err := h.registerService.Download(c.Request.Context(), number)
	if errors.Is(err, port.ErrNotFound) {
		c.JSON(http.StatusNotFound, Response{
			Success: false,
			Error:   "quote not found",
		})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, Response{
			Success: false,
			Error:   "failed to read quote",
		})
		return
	}

	c.Header("Content-Disposition", attachment(record.FileName))
	c.Data(http.StatusOK, contentTypePDF, content)
}

// ExportRegister handles GET /api/quotes/register.xlsx
func (h *Handlers) ExportRegister(c *gin.Context) {
	out, err := h.registerService.Export(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, Response{
			Success: false,
			Error:   "failed to export register",
		})
		return
	}

	c.Header("Content-Disposition", attachment("Presupuestos.xlsx"))
	c.Data(http.StatusOK, contentTypeXLSX, out)
}

// writeError maps generation errors to status codes and user messages
func (h *Handlers) writeError(c *gin.Context, err error) {
	var missing *quote.MissingFieldsError
	switch {
	case errors.As(err, &missing):
		c.JSON(http.StatusUnprocessableEntity, Response{
			Success: false,
			Error:   missing.UserMessage(),
			Data:    gin.H{"fields": missing.Fields},
		})
	case errors.Is(err, service.ErrGenerationInProgress):
		c.JSON(http.StatusConflict, Response{
			Success: false,
			Error:   "ya se está generando un presupuesto",
		})
	case errors.Is(err, service.ErrInvalidMode):
		c.JSON(http.StatusBadRequest, Response{
			Success: false,
			Error:   err.Error(),
		})
	case errors.Is(err, quote.ErrAssetLoad):
		c.JSON(http.StatusInternalServerError, Response{
			Success: false,
			Error:   service.AssetLoadMessage,
		})
	default:
		h.logger.Error("Quote generation failed", "error", err)
		c.JSON(http.StatusInternalServerError, Response{
			Success: false,
			Error:   service.RenderFailedMessage,
		})
	}
}

// attachment builds a Content-Disposition value, RFC 2231 encoding non-ASCII names
func attachment(fileName string) string {
	return mime.FormatMediaType("attachment", map[string]string{"filename": fileName})
}
