// internal/handler/printer_handler.go
package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Belorder/Printer/internal/service"
	"github.com/Belorder/Printer/internal/transport"
	"github.com/Belorder/Printer/internal/utils"
)

// PrinterHandler handles printer discovery and connection requests
type PrinterHandler struct {
	printerService *service.PrinterService
	logger         *utils.ServiceLogger
}

// NewPrinterHandler creates a new printer handler
func NewPrinterHandler(printerService *service.PrinterService, logger *zap.Logger) *PrinterHandler {
	return &PrinterHandler{
		printerService: printerService,
		logger:         utils.NewServiceLogger(logger, "printer-handler"),
	}
}

// RegisterRoutes registers printer routes
func (h *PrinterHandler) RegisterRoutes(router *gin.RouterGroup) {
	printers := router.Group("/printers")
	{
		printers.POST("/scan", h.ScanPrinters)
		printers.GET("", h.ListPrinters)
		printers.POST("/:printer_id/connect", h.ConnectPrinter)
		printers.POST("/disconnect", h.DisconnectPrinter)
	}
}

// ScanPrinters runs one discovery pass and returns the updated candidate list.
func (h *PrinterHandler) ScanPrinters(c *gin.Context) {
	if err := h.printerService.Scan(c.Request.Context()); err != nil {
		h.logger.Error("Printer scan failed", zap.Error(err))
		utils.ErrorResponse(c, http.StatusServiceUnavailable, "Scan failed", err)
		return
	}

	printers := h.printerService.Printers()
	utils.SuccessResponse(c, http.StatusOK, "Scan completed", gin.H{
		"printers": printers,
		"count":    len(printers),
	})
}

// ListPrinters returns printers discovered so far, best candidates first.
func (h *PrinterHandler) ListPrinters(c *gin.Context) {
	printers := h.printerService.Printers()
	utils.SuccessResponse(c, http.StatusOK, "Printers retrieved", gin.H{
		"printers": printers,
		"count":    len(printers),
	})
}

// ConnectPrinter establishes a session with the requested printer.
func (h *PrinterHandler) ConnectPrinter(c *gin.Context) {
	printerID := c.Param("printer_id")
	if printerID == "" {
		utils.ErrorResponse(c, http.StatusBadRequest, "printer_id is required", nil)
		return
	}

	printer, err := h.printerService.Connect(c.Request.Context(), printerID)
	if err != nil {
		h.logger.Error("Printer connect failed",
			zap.String("printer_id", printerID),
			zap.Error(err))

		switch {
		case errors.Is(err, transport.ErrDeviceNotReady):
			utils.ErrorResponse(c, http.StatusConflict, "A connection attempt is already in progress", err)
		case errors.Is(err, transport.ErrConnectionTimeout):
			utils.ErrorResponse(c, http.StatusGatewayTimeout, "Printer did not respond in time", err)
		default:
			utils.ErrorResponse(c, http.StatusServiceUnavailable, "Failed to connect to printer", err)
		}
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Printer connected", printer)
}

// DisconnectPrinter tears down the current session.
func (h *PrinterHandler) DisconnectPrinter(c *gin.Context) {
	if err := h.printerService.Disconnect(); err != nil {
		if errors.Is(err, transport.ErrNotConnected) {
			utils.ErrorResponse(c, http.StatusConflict, "No printer connected", err)
			return
		}
		h.logger.Error("Printer disconnect failed", zap.Error(err))
		utils.ErrorResponse(c, http.StatusInternalServerError, "Failed to disconnect printer", err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Printer disconnected", nil)
}
