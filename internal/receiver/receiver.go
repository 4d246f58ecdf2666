package receiver

import (
	"net"

	coltracepb "go.opentelemetry.io/proto/otlp/collector/trace/v1"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	_ "google.golang.org/grpc/encoding/gzip"
)

const DefaultAddress = ":4317"

// Event is one activity notification, e.g. a text edit or a selection
// change, delivered by an editor as an OTLP span.
type Event struct {
	Kind        string
	Source      string
	TimestampMs int64
}

type OTLPReceiver struct {
	server  *grpc.Server
	ch      chan<- *Event
	address string
	logger  *zap.Logger
}

type server struct {
	coltracepb.UnimplementedTraceServiceServer
	ch     chan<- *Event
	logger *zap.Logger
}

type Option func(*OTLPReceiver)

func NewOLTPReceiver(options ...Option) *OTLPReceiver {
	receiver := &OTLPReceiver{
		server:  grpc.NewServer(),
		address: DefaultAddress,
		logger:  zap.NewNop(),
	}

	for _, option := range options {
		option(receiver)
	}

	coltracepb.RegisterTraceServiceServer(receiver.server, &server{
		ch:     receiver.ch,
		logger: receiver.logger,
	})
	return receiver
}

func WithChannel(ch chan<- *Event) Option {
	return func(receiver *OTLPReceiver) {
		receiver.ch = ch
	}
}

func WithAddress(address string) Option {
	return func(receiver *OTLPReceiver) {
		receiver.address = address
	}
}

func WithLogger(logger *zap.Logger) Option {
	return func(receiver *OTLPReceiver) {
		receiver.logger = logger
	}
}

func (o *OTLPReceiver) Start() (net.Listener, <-chan error) {
	ch := make(chan error, 1)

	lis, err := net.Listen("tcp", o.address)
	if err != nil {
		ch <- err

		return nil, ch
	}

	o.logger.Info("otlp receiver listening", zap.String("addr", lis.Addr().String()))

	go func() {
		ch <- o.server.Serve(lis)
	}()

	return lis, ch
}

func (o *OTLPReceiver) Stop() {
	o.server.Stop()
}
