// internal/service/print_service.go
package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/encoding/traditionalchinese"

	"github.com/Belorder/Printer/internal/config"
	"github.com/Belorder/Printer/internal/model"
	"github.com/Belorder/Printer/internal/receipt"
	"github.com/Belorder/Printer/internal/transport"
)

// charsets maps configuration names to the printer code pages this service
// can encode into. A nil entry means the text is sent as UTF-8 bytes.
var charsets = map[string]encoding.Encoding{
	"PC437": charmap.CodePage437,
	"PC850": charmap.CodePage850,
	"PC852": charmap.CodePage852,
	"PC858": charmap.CodePage858,
	"GBK":   simplifiedchinese.GBK,
	"BIG5":  traditionalchinese.Big5,
	"SJIS":  japanese.ShiftJIS,
	"UTF8":  nil,
}

// PrintService turns record lists into printer byte streams and submits them
// over whichever transport the caller selected.
type PrintService struct {
	config   *config.Config
	resolver receipt.ImageResolver
	logger   *zap.Logger
}

// NewPrintService creates the print service with the default image resolver.
func NewPrintService(cfg *config.Config, logger *zap.Logger) *PrintService {
	return &PrintService{
		config:   cfg,
		resolver: receipt.ResolveImage,
		logger:   logger.With(zap.String("service", "print")),
	}
}

// Print encodes the records and pushes the resulting stream through the
// transport. The returned job records the outcome either way.
func (s *PrintService) Print(
	ctx context.Context,
	t transport.Transport,
	transportName string,
	target string,
	records []receipt.Record,
) (*model.PrintJob, error) {
	job := &model.PrintJob{
		ID:        uuid.New(),
		Transport: transportName,
		Target:    target,
		Blocks:    len(records),
		CreatedAt: time.Now(),
	}

	stream, err := s.encode(records)
	if err != nil {
		job.Status = model.JobStatusFailed
		job.Error = err.Error()
		return job, fmt.Errorf("encode records: %w", err)
	}
	job.Bytes = len(stream)

	submitCtx, cancel := context.WithTimeout(ctx, s.config.Printer.SubmitTimeout)
	defer cancel()

	started := time.Now()
	err = t.Submit(submitCtx, stream)
	elapsed := time.Since(started)
	job.Duration = elapsed.String()

	if err != nil {
		job.Status = model.JobStatusFailed
		job.Error = err.Error()
		s.logger.Error("Print job failed",
			zap.String("job_id", job.ID.String()),
			zap.String("transport", transportName),
			zap.Error(err))
		return job, err
	}

	job.Status = model.JobStatusCompleted
	s.logger.Info("Print job completed",
		zap.String("job_id", job.ID.String()),
		zap.String("transport", transportName),
		zap.Int("bytes", job.Bytes),
		zap.Duration("duration", elapsed))
	return job, nil
}

// encode assembles the ticket and serializes it to one flat stream using the
// configured character set.
func (s *PrintService) encode(records []receipt.Record) ([]byte, error) {
	ticket := receipt.BuildTicket(records, s.resolver, s.logger)
	ticket.FeedLinesOnTail = s.config.Printer.FeedLinesOnTail

	enc, err := s.encoderFor(s.config.Printer.Charset)
	if err != nil {
		return nil, err
	}

	chunks, err := ticket.Serialize(enc)
	if err != nil {
		return nil, err
	}
	return transport.Flatten(chunks), nil
}

func (s *PrintService) encoderFor(charset string) (*encoding.Encoder, error) {
	enc, ok := charsets[strings.ToUpper(charset)]
	if !ok {
		return nil, fmt.Errorf("unsupported charset %q", charset)
	}
	if enc == nil {
		return nil, nil
	}
	return enc.NewEncoder(), nil
}
