// Package collector implements a minimal OTLP trace receiver. It accepts
// export requests over OTLP/HTTP and OTLP/gRPC and hands the decoded traces
// to a Handler, which makes it a local stand-in for Arize or Phoenix.
package collector

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/klauspost/compress/gzip"
	"go.opentelemetry.io/collector/pdata/ptrace"
	"go.opentelemetry.io/collector/pdata/ptrace/ptraceotlp"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

// TracesPath is the OTLP/HTTP path for trace exports.
const TracesPath = "/v1/traces"

const (
	contentTypeProtobuf = "application/x-protobuf"
	contentTypeJSON     = "application/json"

	maxRequestBytes = 32 << 20
)

// Request is a decoded trace export request.
type Request struct {
	// Header holds the HTTP headers or gRPC metadata sent with the request,
	// with canonicalised keys.
	Header http.Header
	Traces ptrace.Traces
}

// Handler consumes received traces. An error is reported back to the sender.
type Handler func(ctx context.Context, req Request) error

// Receiver accepts OTLP trace exports.
type Receiver struct {
	ptraceotlp.UnimplementedGRPCServer

	handler Handler
	log     *slog.Logger
}

// NewReceiver creates a receiver passing each export request to h.
func NewReceiver(h Handler, log *slog.Logger) *Receiver {
	return &Receiver{handler: h, log: log}
}

// RegisterRoutes adds the OTLP/HTTP trace endpoint to m.
func (r *Receiver) RegisterRoutes(m *mux.Router) {
	m.HandleFunc(TracesPath, r.handleHTTP).Methods(http.MethodPost)
}

// NewGRPCServer creates a gRPC server with the receiver registered as the
// OTLP trace service.
func (r *Receiver) NewGRPCServer(opts ...grpc.ServerOption) *grpc.Server {
	s := grpc.NewServer(opts...)
	ptraceotlp.RegisterGRPCServer(s, r)
	return s
}

// Export implements the OTLP/gRPC trace service.
func (r *Receiver) Export(ctx context.Context, req ptraceotlp.ExportRequest) (ptraceotlp.ExportResponse, error) {
	header := http.Header{}
	if md, ok := metadata.FromIncomingContext(ctx); ok {
		for k, vs := range md {
			for _, v := range vs {
				header.Add(k, v)
			}
		}
	}

	if err := r.handler(ctx, Request{Header: header, Traces: req.Traces()}); err != nil {
		r.log.Warn("Failed to handle traces", "error", err)
		return ptraceotlp.NewExportResponse(), status.Error(codes.Unavailable, err.Error())
	}
	return ptraceotlp.NewExportResponse(), nil
}

func (r *Receiver) handleHTTP(w http.ResponseWriter, req *http.Request) {
	contentType, _, err := mime.ParseMediaType(req.Header.Get("Content-Type"))
	if err != nil || (contentType != contentTypeProtobuf && contentType != contentTypeJSON) {
		http.Error(w, "unsupported content type", http.StatusUnsupportedMediaType)
		return
	}

	body, err := readBody(req)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	exportReq := ptraceotlp.NewExportRequest()
	if contentType == contentTypeJSON {
		err = exportReq.UnmarshalJSON(body)
	} else {
		err = exportReq.UnmarshalProto(body)
	}
	if err != nil {
		http.Error(w, fmt.Sprintf("decode export request: %v", err), http.StatusBadRequest)
		return
	}

	if err := r.handler(req.Context(), Request{Header: req.Header.Clone(), Traces: exportReq.Traces()}); err != nil {
		r.log.Warn("Failed to handle traces", "error", err)
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
		return
	}

	resp := ptraceotlp.NewExportResponse()
	var out []byte
	if contentType == contentTypeJSON {
		out, err = resp.MarshalJSON()
	} else {
		out, err = resp.MarshalProto()
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", contentType)
	_, _ = w.Write(out)
}

func readBody(req *http.Request) ([]byte, error) {
	var rdr io.Reader = http.MaxBytesReader(nil, req.Body, maxRequestBytes)

	switch enc := req.Header.Get("Content-Encoding"); enc {
	case "", "identity":
	case "gzip":
		gz, err := gzip.NewReader(rdr)
		if err != nil {
			return nil, fmt.Errorf("open gzip body: %w", err)
		}
		defer gz.Close()
		rdr = io.LimitReader(gz, maxRequestBytes)
	default:
		return nil, errors.New("unsupported content encoding: " + enc)
	}

	body, err := io.ReadAll(rdr)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	return body, nil
}
