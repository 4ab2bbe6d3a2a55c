package pricerd

import (
	"context"
	"encoding/json"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/GoSim-25-26J-441/pricing-core/pkg/logger"
	"github.com/GoSim-25-26J-441/pricing-core/pkg/utils"
)

const pricingServiceName = "pricing.v1.PricingService"

// PricingServer is the gRPC pricing service. Messages are
// google.protobuf.Struct documents with the same fields as the HTTP API.
type PricingServer interface {
	CreateRun(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetRun(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Price(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

// PricingServiceDesc describes pricing.v1.PricingService for grpc.Server.
var PricingServiceDesc = grpc.ServiceDesc{
	ServiceName: pricingServiceName,
	HandlerType: (*PricingServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "CreateRun", Handler: unaryHandler("CreateRun", PricingServer.CreateRun)},
		{MethodName: "GetRun", Handler: unaryHandler("GetRun", PricingServer.GetRun)},
		{MethodName: "Price", Handler: unaryHandler("Price", PricingServer.Price)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "pricing/v1/pricing.proto",
}

// RegisterPricingServer registers srv on s.
func RegisterPricingServer(s grpc.ServiceRegistrar, srv PricingServer) {
	s.RegisterService(&PricingServiceDesc, srv)
}

type pricingMethod func(PricingServer, context.Context, *structpb.Struct) (*structpb.Struct, error)

func unaryHandler(name string, call pricingMethod) grpc.MethodHandler {
	fullMethod := "/" + pricingServiceName + "/" + name
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(PricingServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(PricingServer), ctx, req.(*structpb.Struct))
		}
		return interceptor(ctx, in, info, handler)
	}
}

// PricingClient calls pricing.v1.PricingService.
type PricingClient struct {
	cc grpc.ClientConnInterface
}

func NewPricingClient(cc grpc.ClientConnInterface) *PricingClient {
	return &PricingClient{cc: cc}
}

func (c *PricingClient) CreateRun(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, "CreateRun", in, opts)
}

func (c *PricingClient) GetRun(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, "GetRun", in, opts)
}

func (c *PricingClient) Price(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, "Price", in, opts)
}

func (c *PricingClient) invoke(ctx context.Context, method string, in *structpb.Struct, opts []grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, "/"+pricingServiceName+"/"+method, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

// PricingGRPCServer implements PricingServer on top of the run store,
// executor and pricer shared with the HTTP API.
type PricingGRPCServer struct {
	store    *RunStore
	Executor *RunExecutor
	pricer   *Pricer
}

func NewPricingGRPCServer(store *RunStore, executor *RunExecutor, pricer *Pricer) *PricingGRPCServer {
	return &PricingGRPCServer{
		store:    store,
		Executor: executor,
		pricer:   pricer,
	}
}

func (s *PricingGRPCServer) CreateRun(_ context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req scenarioRequest
	if err := fromStruct(in, &req); err != nil {
		return nil, err
	}
	started, err := createAndStart(s.store, s.Executor, req)
	if err != nil {
		return nil, statusError(err)
	}

	logger.Info("run created (gRPC)", "run_id", started.Run.ID)
	return toStruct(map[string]any{"run": started.Run})
}

func (s *PricingGRPCServer) GetRun(_ context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	runID := in.GetFields()["run_id"].GetStringValue()
	if runID == "" {
		return nil, statusError(ErrRunIDMissing)
	}
	rec, ok := s.store.Get(runID)
	if !ok {
		return nil, status.Error(codes.NotFound, "run not found")
	}

	resp := map[string]any{"run": rec.Run}
	if rec.Results != nil {
		resp["results"] = rec.Results
	}
	return toStruct(resp)
}

func (s *PricingGRPCServer) Price(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req scenarioRequest
	if err := fromStruct(in, &req); err != nil {
		return nil, err
	}
	scenario, err := req.resolve()
	if err != nil {
		return nil, statusError(err)
	}

	jobID := utils.GenerateJobID()
	options, err := s.pricer.PriceScenario(ctx, scenario, nil)
	if err != nil {
		logger.Warn("pricing request failed", "job_id", jobID, "error", err)
		return nil, statusError(err)
	}
	return toStruct(map[string]any{"job_id": jobID, "options": options})
}

func statusError(err error) error {
	return status.Error(grpcCodeFor(err), err.Error())
}

// fromStruct decodes a Struct into v through its JSON form. Numbers travel
// as doubles, so seeds above 2^53 must be sent in scenario_yaml.
func fromStruct(in *structpb.Struct, v any) error {
	data, err := in.MarshalJSON()
	if err != nil {
		return status.Errorf(codes.InvalidArgument, "invalid request: %v", err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return status.Errorf(codes.InvalidArgument, "invalid request: %v", err)
	}
	return nil
}

func toStruct(v any) (*structpb.Struct, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "encode response: %v", err)
	}
	out := new(structpb.Struct)
	if err := out.UnmarshalJSON(data); err != nil {
		return nil, status.Errorf(codes.Internal, "encode response: %v", err)
	}
	return out, nil
}
