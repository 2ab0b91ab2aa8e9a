package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/joseph-ayodele/invoice-assets/internal/common"
	"github.com/joseph-ayodele/invoice-assets/internal/invoice"
)

const extractionServiceName = "invoiceassets.v1.ExtractionService"

// ExtractionServiceServer takes and returns google.protobuf.Struct payloads so
// the service needs no generated message types.
type ExtractionServiceServer interface {
	// Extract parses {"text": ..., "tables": [...]} into bill info.
	Extract(context.Context, *structpb.Struct) (*structpb.Struct, error)
	// ScanFile parses the server-local document at {"path": ...}.
	ScanFile(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

func RegisterExtractionServiceServer(s grpc.ServiceRegistrar, srv ExtractionServiceServer) {
	s.RegisterService(&ExtractionServiceDesc, srv)
}

func extractHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ExtractionServiceServer).Extract(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + extractionServiceName + "/Extract"}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(ExtractionServiceServer).Extract(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

func scanFileHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ExtractionServiceServer).ScanFile(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + extractionServiceName + "/ScanFile"}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(ExtractionServiceServer).ScanFile(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

var ExtractionServiceDesc = grpc.ServiceDesc{
	ServiceName: extractionServiceName,
	HandlerType: (*ExtractionServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Extract", Handler: extractHandler},
		{MethodName: "ScanFile", Handler: scanFileHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "invoiceassets/v1/extraction.proto",
}

type ExtractionService struct {
	scanner Scanner
	logger  *slog.Logger
}

func NewExtractionService(scanner Scanner, logger *slog.Logger) *ExtractionService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ExtractionService{scanner: scanner, logger: logger}
}

func (s *ExtractionService) Extract(_ context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req extractRequest
	if err := decodeStruct(in, &req); err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "decode request: %v", err)
	}
	if strings.TrimSpace(req.Text) == "" && len(req.Tables) == 0 {
		return nil, common.InvalidArgumentError("text or tables is required")
	}
	return encodeStruct(invoice.ExtractWithTables(req.Text, req.Tables))
}

func (s *ExtractionService) ScanFile(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	if s.scanner == nil {
		return nil, status.Error(codes.Unavailable, "scanner not configured")
	}
	path := strings.TrimSpace(in.GetFields()["path"].GetStringValue())
	if path == "" {
		return nil, common.InvalidArgumentError("path is required")
	}

	start := time.Now()
	res, err := s.scanner.Scan(ctx, path)
	if err != nil {
		s.logger.Warn("grpc.scan.failed", "path", path, "error", err)
		return nil, common.ToGRPCError(err)
	}
	if res.Bill.Degraded() {
		return nil, common.ToGRPCError(common.ErrDegradedBill)
	}
	s.logger.Info("grpc.scan.ok", "path", path, "items", len(res.Bill.Assets), "elapsed_ms", time.Since(start).Milliseconds())
	return encodeStruct(scanResponse{
		RawText:       res.Text.Text,
		ExtractedInfo: groupBill(res.Bill),
		Method:        res.Text.Method,
		Pages:         res.Text.Pages,
		Cached:        res.Cached,
	})
}

func decodeStruct(in *structpb.Struct, dst any) error {
	b, err := protojson.Marshal(in)
	if err != nil {
		return err
	}
	return json.Unmarshal(b, dst)
}

func encodeStruct(v any) (*structpb.Struct, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, common.InternalErrorf("encode response: %v", err)
	}
	out := &structpb.Struct{}
	if err := protojson.Unmarshal(b, out); err != nil {
		return nil, common.InternalErrorf("encode response: %v", err)
	}
	return out, nil
}
