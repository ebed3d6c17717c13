package server

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/ppiankov/wellwatch/internal/guard"
	"github.com/ppiankov/wellwatch/internal/scorer"
)

// Server implements wellwatch.v1.RiskService over a Guard.
type Server struct {
	guard      *guard.Guard
	logger     *slog.Logger
	grpcServer *grpc.Server
	health     *health.Server
}

// New creates a gRPC server around g. A nil logger discards request logs.
func New(g *guard.Guard, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	s := &Server{
		guard:  g,
		logger: logger,
		health: health.NewServer(),
	}
	s.grpcServer = grpc.NewServer(grpc.ChainUnaryInterceptor(s.logUnary))

	RegisterRiskServiceServer(s.grpcServer, s)
	healthpb.RegisterHealthServer(s.grpcServer, s.health)
	s.health.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_SERVING)
	return s
}

// ServeOn serves on the given listener until stopped.
func (s *Server) ServeOn(lis net.Listener) error {
	s.logger.Info("grpc listening", "addr", lis.Addr().String())
	return s.grpcServer.Serve(lis)
}

// GracefulStop marks the service not serving and drains in-flight calls.
func (s *Server) GracefulStop() {
	s.health.Shutdown()
	s.grpcServer.GracefulStop()
}

// Analyze implements the Analyze RPC.
func (s *Server) Analyze(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	msg, err := guard.MessageFromMap(structToMap(req))
	if err != nil {
		return nil, toStatus(err)
	}
	return respond(s.guard.CheckMessage(ctx, msg))
}

// AnalyzeConversation implements the AnalyzeConversation RPC.
func (s *Server) AnalyzeConversation(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	conv, err := guard.ConversationFromMap(structToMap(req))
	if err != nil {
		return nil, toStatus(err)
	}
	return respond(s.guard.Conversation(ctx, conv.SessionID, conv.Locale, conv.Messages))
}

// EndSession implements the EndSession RPC.
func (s *Server) EndSession(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	conv, err := guard.ConversationFromMap(structToMap(req))
	if err != nil {
		return nil, toStatus(err)
	}
	if conv.SessionID == "" {
		return nil, status.Error(codes.InvalidArgument, "session_id is required")
	}
	return respond(s.guard.EndSession(ctx, conv.SessionID, conv.Locale))
}

func respond(v any) (*structpb.Struct, error) {
	out, err := ToStruct(v)
	if err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	return out, nil
}

func toStatus(err error) error {
	if errors.Is(err, scorer.ErrInvalidInputKind) {
		return status.Error(codes.InvalidArgument, err.Error())
	}
	return status.Error(codes.Internal, err.Error())
}

// logUnary logs method, status code and latency. Request bodies are never
// logged.
func (s *Server) logUnary(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	start := time.Now()
	resp, err := handler(ctx, req)
	level := slog.LevelDebug
	if err != nil {
		level = slog.LevelWarn
	}
	s.logger.Log(ctx, level, "grpc request",
		"method", info.FullMethod,
		"code", status.Code(err).String(),
		"duration", time.Since(start),
	)
	return resp, err
}
