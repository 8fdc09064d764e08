// internal/service/print_service_test.go
package service

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/Belorder/Printer/internal/config"
	"github.com/Belorder/Printer/internal/model"
	"github.com/Belorder/Printer/internal/receipt"
)

// fakeTransport records the submitted stream.
type fakeTransport struct {
	stream []byte
	err    error
}

func (f *fakeTransport) Submit(ctx context.Context, stream []byte) error {
	f.stream = append([]byte(nil), stream...)
	return f.err
}

func testConfig() *config.Config {
	return &config.Config{
		Printer: config.PrinterConfig{
			Charset:         "PC437",
			FeedLinesOnTail: 3,
			SubmitTimeout:   5 * time.Second,
		},
	}
}

func TestPrint_Completed(t *testing.T) {
	svc := NewPrintService(testConfig(), zap.NewNop())
	tr := &fakeTransport{}

	records := []receipt.Record{
		{Type: receipt.RecordText, Value: "hello"},
	}

	job, err := svc.Print(context.Background(), tr, "tcp", "127.0.0.1:9100", records)
	if err != nil {
		t.Fatalf("Print failed: %v", err)
	}

	if job.Status != model.JobStatusCompleted {
		t.Errorf("Expected completed status, got %s", job.Status)
	}
	if job.Transport != "tcp" || job.Target != "127.0.0.1:9100" {
		t.Errorf("Job should record its delivery route, got %s/%s", job.Transport, job.Target)
	}
	if job.Bytes != len(tr.stream) {
		t.Errorf("Job byte count %d should match the submitted stream %d", job.Bytes, len(tr.stream))
	}

	// The stream must open with the device reset.
	if !bytes.HasPrefix(tr.stream, []byte{0x1B, 0x40}) {
		t.Errorf("Stream should start with the initialize command, got % X", tr.stream[:4])
	}
}

func TestPrint_TransportFailure(t *testing.T) {
	svc := NewPrintService(testConfig(), zap.NewNop())
	tr := &fakeTransport{err: errors.New("link down")}

	records := []receipt.Record{{Type: receipt.RecordText, Value: "x"}}

	job, err := svc.Print(context.Background(), tr, "serial", "/dev/ttyUSB0", records)
	if err == nil {
		t.Fatal("Expected transport failure to propagate")
	}
	if job.Status != model.JobStatusFailed {
		t.Errorf("Expected failed status, got %s", job.Status)
	}
	if job.Error == "" {
		t.Error("Failed job should record the error")
	}
}

func TestPrint_UnsupportedCharset(t *testing.T) {
	cfg := testConfig()
	cfg.Printer.Charset = "EBCDIC"
	svc := NewPrintService(cfg, zap.NewNop())

	records := []receipt.Record{{Type: receipt.RecordText, Value: "x"}}

	job, err := svc.Print(context.Background(), &fakeTransport{}, "tcp", "t", records)
	if err == nil {
		t.Fatal("Expected unsupported charset to fail")
	}
	if job.Status != model.JobStatusFailed {
		t.Errorf("Expected failed status, got %s", job.Status)
	}
}

func TestEncoderFor(t *testing.T) {
	svc := NewPrintService(testConfig(), zap.NewNop())

	for _, charset := range []string{"PC437", "pc850", "GBK", "BIG5", "SJIS"} {
		enc, err := svc.encoderFor(charset)
		if err != nil {
			t.Errorf("Charset %q should be supported: %v", charset, err)
		}
		if enc == nil {
			t.Errorf("Charset %q should yield an encoder", charset)
		}
	}

	enc, err := svc.encoderFor("UTF8")
	if err != nil {
		t.Fatalf("UTF8 should be supported: %v", err)
	}
	if enc != nil {
		t.Error("UTF8 should pass text through without an encoder")
	}

	if _, err := svc.encoderFor("KLINGON"); err == nil {
		t.Error("Unknown charsets should be rejected")
	}
}
