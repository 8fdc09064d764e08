// internal/handler/print_handler.go
package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Belorder/Printer/internal/receipt"
	"github.com/Belorder/Printer/internal/service"
	"github.com/Belorder/Printer/internal/transport"
	"github.com/Belorder/Printer/internal/transport/serialport"
	"github.com/Belorder/Printer/internal/transport/tcp"
	"github.com/Belorder/Printer/internal/transport/usb"
	"github.com/Belorder/Printer/internal/utils"
)

// PrintRequest is the print submission payload. The target section only
// needs the fields that match the chosen transport.
type PrintRequest struct {
	Transport string           `json:"transport" binding:"required,oneof=bluetooth tcp serial usb"`
	Target    PrintTarget      `json:"target"`
	Records   []receipt.Record `json:"records" binding:"required,min=1"`
}

// PrintTarget addresses the printer for wired transports.
type PrintTarget struct {
	Host      string `json:"host,omitempty"`
	Port      string `json:"port,omitempty"`
	Device    string `json:"device,omitempty"`
	BaudRate  int    `json:"baud_rate,omitempty"`
	VendorID  string `json:"vendor_id,omitempty"`
	ProductID string `json:"product_id,omitempty"`
}

// PrintHandler handles print submission requests
type PrintHandler struct {
	printService   *service.PrintService
	printerService *service.PrinterService
	eventBus       *EventBus
	logger         *utils.ServiceLogger
	zapLogger      *zap.Logger
}

// NewPrintHandler creates a new print handler
func NewPrintHandler(
	printService *service.PrintService,
	printerService *service.PrinterService,
	eventBus *EventBus,
	logger *zap.Logger,
) *PrintHandler {
	return &PrintHandler{
		printService:   printService,
		printerService: printerService,
		eventBus:       eventBus,
		logger:         utils.NewServiceLogger(logger, "print-handler"),
		zapLogger:      logger,
	}
}

// RegisterRoutes registers print routes
func (h *PrintHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.POST("/print", h.Print)
}

// Print encodes the submitted records and sends them over the requested
// transport. Wired transports are opened for the one job and closed again;
// bluetooth reuses the standing session.
func (h *PrintHandler) Print(c *gin.Context) {
	var req PrintRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid print request", err)
		return
	}

	ctx := c.Request.Context()

	t, target, cleanup, err := h.openTransport(ctx, &req)
	if err != nil {
		h.respondTransportError(c, err)
		return
	}
	if cleanup != nil {
		defer cleanup()
	}

	job, err := h.printService.Print(ctx, t, req.Transport, target, req.Records)
	PublishJobEvent(h.eventBus, job)
	if err != nil {
		h.respondTransportError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Print job completed", job)
}

// openTransport resolves the request to a ready transport. The returned
// cleanup closes one-shot wired connections; it is nil for bluetooth.
func (h *PrintHandler) openTransport(ctx context.Context, req *PrintRequest) (transport.Transport, string, func(), error) {
	switch req.Transport {
	case "bluetooth":
		session := h.printerService.Session()
		return session, session.Printer().DisplayName(), nil, nil

	case "tcp":
		t, err := tcp.New(&tcp.Config{
			Host: req.Target.Host,
			Port: req.Target.Port,
		}, h.zapLogger)
		if err != nil {
			return nil, "", nil, err
		}
		if err := t.Connect(ctx); err != nil {
			return nil, "", nil, err
		}
		target := fmt.Sprintf("%s:%s", req.Target.Host, req.Target.Port)
		return t, target, func() { t.Close() }, nil

	case "serial":
		t := serialport.New(&serialport.Config{
			Port:     req.Target.Device,
			BaudRate: req.Target.BaudRate,
		}, h.zapLogger)
		if err := t.Connect(ctx); err != nil {
			return nil, "", nil, err
		}
		return t, req.Target.Device, func() { t.Close() }, nil

	case "usb":
		t := usb.New(&usb.Config{
			VendorID:  req.Target.VendorID,
			ProductID: req.Target.ProductID,
		}, h.zapLogger)
		if err := t.Connect(ctx); err != nil {
			return nil, "", nil, err
		}
		target := fmt.Sprintf("%s:%s", req.Target.VendorID, req.Target.ProductID)
		return t, target, func() { t.Close() }, nil
	}

	return nil, "", nil, fmt.Errorf("unsupported transport %q", req.Transport)
}

func (h *PrintHandler) respondTransportError(c *gin.Context, err error) {
	h.logger.Error("Print request failed", zap.Error(err))

	switch {
	case errors.Is(err, transport.ErrInvalidPort):
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid printer port", err)
	case errors.Is(err, transport.ErrDeviceNotReady):
		utils.ErrorResponse(c, http.StatusConflict, "Printer is busy or not ready", err)
	case errors.Is(err, transport.ErrNotConnected):
		utils.ErrorResponse(c, http.StatusConflict, "No printer connected", err)
	case errors.Is(err, transport.ErrConnectionTimeout):
		utils.ErrorResponse(c, http.StatusGatewayTimeout, "Printer did not respond in time", err)
	case errors.Is(err, transport.ErrWriteFailed):
		utils.ErrorResponse(c, http.StatusServiceUnavailable, "Failed to write to printer", err)
	default:
		utils.ErrorResponse(c, http.StatusServiceUnavailable, "Print failed", err)
	}
}
