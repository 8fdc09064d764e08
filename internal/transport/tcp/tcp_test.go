package tcp

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/Belorder/Printer/internal/transport"
)

func TestNew_InvalidPort(t *testing.T) {
	cases := []string{"", "abc", "0", "70000", "-1"}
	for _, port := range cases {
		_, err := New(&Config{Host: "127.0.0.1", Port: port}, zap.NewNop())
		if !errors.Is(err, transport.ErrInvalidPort) {
			t.Errorf("Port %q should be rejected with ErrInvalidPort, got %v", port, err)
		}
	}
}

func TestNew_ValidPort(t *testing.T) {
	tr, err := New(&Config{Host: "127.0.0.1", Port: "9100"}, zap.NewNop())
	if err != nil {
		t.Fatalf("New failed for a valid port: %v", err)
	}
	if tr.IsOpen() {
		t.Error("A fresh transport should not report open")
	}
}

func TestSubmit_NotConnected(t *testing.T) {
	tr, err := New(&Config{Host: "127.0.0.1", Port: "9100"}, zap.NewNop())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	err = tr.Submit(context.Background(), []byte{0x1B, 0x40})
	if !errors.Is(err, transport.ErrNotConnected) {
		t.Errorf("Submit before Connect should fail with ErrNotConnected, got %v", err)
	}
}

func TestSubmit_DeliversStreamWithTrailer(t *testing.T) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("Failed to start listener: %v", err)
	}
	defer listener.Close()

	received := make(chan []byte, 1)
	go func() {
		conn, err := listener.Accept()
		if err != nil {
			return
		}
		defer conn.Close()

		conn.SetReadDeadline(time.Now().Add(2 * time.Second))
		buf := make([]byte, 4096)
		var data []byte
		for {
			n, err := conn.Read(buf)
			data = append(data, buf[:n]...)
			if err != nil || bytes.HasSuffix(data, transport.CutTrailer) {
				break
			}
		}
		received <- data
	}()

	_, portStr, _ := net.SplitHostPort(listener.Addr().String())
	tr, err := New(&Config{Host: "127.0.0.1", Port: portStr}, zap.NewNop())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	ctx := context.Background()
	if err := tr.Connect(ctx); err != nil {
		t.Fatalf("Connect failed: %v", err)
	}
	defer tr.Close()

	stream := []byte{0x1B, 0x40, 'h', 'i'}
	if err := tr.Submit(ctx, stream); err != nil {
		t.Fatalf("Submit failed: %v", err)
	}

	select {
	case data := <-received:
		want := transport.WithCutTrailer(stream)
		if !bytes.Equal(data, want) {
			t.Errorf("Expected % X on the wire, got % X", want, data)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Printer side never received the stream")
	}
}

func TestStats_ConcurrentWithSubmit(t *testing.T) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("Failed to start listener: %v", err)
	}
	defer listener.Close()

	go func() {
		conn, err := listener.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		io.Copy(io.Discard, conn)
	}()

	_, portStr, _ := net.SplitHostPort(listener.Addr().String())
	tr, err := New(&Config{Host: "127.0.0.1", Port: portStr, SubmitTimeout: 5 * time.Second}, zap.NewNop())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	ctx := context.Background()
	if err := tr.Connect(ctx); err != nil {
		t.Fatalf("Connect failed: %v", err)
	}
	defer tr.Close()

	stop := make(chan struct{})
	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-stop:
					return
				default:
					tr.Stats()
				}
			}
		}()
	}

	stream := bytes.Repeat([]byte{0xAB}, 1024)
	const jobs = 5
	for i := 0; i < jobs; i++ {
		if err := tr.Submit(ctx, stream); err != nil {
			t.Fatalf("Submit %d failed: %v", i, err)
		}
	}

	close(stop)
	wg.Wait()

	stats := tr.Stats()
	if stats.JobCount != jobs {
		t.Errorf("Expected %d completed jobs, got %d", jobs, stats.JobCount)
	}
	want := int64(jobs * len(transport.WithCutTrailer(stream)))
	if stats.BytesWritten != want {
		t.Errorf("Expected %d bytes written, got %d", want, stats.BytesWritten)
	}
	if stats.ErrorCount != 0 {
		t.Errorf("Expected no errors, got %d", stats.ErrorCount)
	}
}

func TestConnect_Refused(t *testing.T) {
	// Grab a port and close it so nothing listens there.
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("Failed to start listener: %v", err)
	}
	_, portStr, _ := net.SplitHostPort(listener.Addr().String())
	listener.Close()

	tr, err := New(&Config{Host: "127.0.0.1", Port: portStr, DialTimeout: time.Second}, zap.NewNop())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	if err := tr.Connect(context.Background()); err == nil {
		tr.Close()
		t.Error("Connect to a closed port should fail")
	}
}
