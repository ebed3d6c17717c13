package server

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "wellwatch.v1.RiskService"

// Full method names.
const (
	MethodAnalyze             = "/" + ServiceName + "/Analyze"
	MethodAnalyzeConversation = "/" + ServiceName + "/AnalyzeConversation"
	MethodEndSession          = "/" + ServiceName + "/EndSession"
)

// RiskServiceServer is the server API for wellwatch.v1.RiskService.
// Requests and responses are google.protobuf.Struct values carrying the
// same JSON documents as the HTTP API.
type RiskServiceServer interface {
	Analyze(context.Context, *structpb.Struct) (*structpb.Struct, error)
	AnalyzeConversation(context.Context, *structpb.Struct) (*structpb.Struct, error)
	EndSession(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

// RiskServiceDesc describes wellwatch.v1.RiskService for grpc.Server.
var RiskServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*RiskServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Analyze", Handler: unaryHandler(MethodAnalyze, RiskServiceServer.Analyze)},
		{MethodName: "AnalyzeConversation", Handler: unaryHandler(MethodAnalyzeConversation, RiskServiceServer.AnalyzeConversation)},
		{MethodName: "EndSession", Handler: unaryHandler(MethodEndSession, RiskServiceServer.EndSession)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "wellwatch/v1/risk.proto",
}

// RegisterRiskServiceServer registers srv on s.
func RegisterRiskServiceServer(s grpc.ServiceRegistrar, srv RiskServiceServer) {
	s.RegisterService(&RiskServiceDesc, srv)
}

type unaryMethod func(RiskServiceServer, context.Context, *structpb.Struct) (*structpb.Struct, error)

func unaryHandler(fullMethod string, call unaryMethod) func(any, context.Context, func(any) error, grpc.UnaryServerInterceptor) (any, error) {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(RiskServiceServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(RiskServiceServer), ctx, req.(*structpb.Struct))
		}
		return interceptor(ctx, in, info, handler)
	}
}
