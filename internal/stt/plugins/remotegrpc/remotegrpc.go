// Package remotegrpc bridges session audio to an external
// transcription service over gRPC. It invokes the remote methods
// directly by fully-qualified name rather than through generated
// service stubs, using the well-known wrapper types as request and
// response framing so no project-specific .proto schema is required.
package remotegrpc

import (
	"context"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/keepalive"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/coldaine/coldvox-go/internal/resilience"
	"github.com/coldaine/coldvox-go/internal/stt"
	"github.com/coldaine/coldvox-go/internal/trace"
)

const streamAudioMethod = "/coldvox.RemoteTranscription/StreamAudio"

// Plugin streams raw PCM to a remote transcription service and
// surfaces its responses as TranscriptionEvents. Opening the stream
// and each send/receive in ProcessAudio go through a circuit breaker
// so a flapping remote does not stall the session controller;
// Finalize's close-and-receive does not.
type Plugin struct {
	addr string
	conn *grpc.ClientConn
	cb   *resilience.Breaker

	stream grpc.ClientStream
	buf    []byte
}

// New constructs a remotegrpc Plugin targeting addr (host:port).
func New(addr string) *Plugin {
	return &Plugin{
		addr: addr,
		cb:   resilience.New(resilience.DefaultConfig()),
	}
}

func (p *Plugin) Info() stt.Info {
	return stt.Info{
		Name: "remotegrpc",
		Capabilities: stt.Capabilities{
			Streaming:       true,
			RequiresNetwork: true,
		},
	}
}

func (p *Plugin) IsAvailable(ctx context.Context) bool {
	return p.cb.State() != resilience.Open
}

func (p *Plugin) Initialize(ctx context.Context, cfg stt.Config) error {
	conn, err := grpc.NewClient(p.addr,
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithKeepaliveParams(keepalive.ClientParameters{
			Time:                10 * time.Second,
			Timeout:             3 * time.Second,
			PermitWithoutStream: true,
		}),
		grpc.WithUnaryInterceptor(trace.UnaryClientInterceptor()),
		grpc.WithStreamInterceptor(trace.StreamClientInterceptor()),
	)
	if err != nil {
		return err
	}
	p.conn = conn
	return nil
}

func (p *Plugin) Begin(ctx context.Context, sessionID uint64) error {
	return p.withBreaker(func() error {
		streamDesc := &grpc.StreamDesc{StreamName: "StreamAudio", ClientStreams: true, ServerStreams: true}
		stream, err := p.conn.NewStream(ctx, streamDesc, streamAudioMethod)
		if err != nil {
			return err
		}
		p.stream = stream
		return nil
	})
}

func (p *Plugin) ProcessAudio(ctx context.Context, samples []int16) (*stt.TranscriptionEvent, error) {
	if p.stream == nil {
		return nil, nil
	}
	p.buf = p.buf[:0]
	for _, s := range samples {
		p.buf = append(p.buf, byte(s), byte(s>>8))
	}

	var text string
	err := p.withBreaker(func() error {
		if err := p.stream.SendMsg(&wrapperspb.BytesValue{Value: p.buf}); err != nil {
			return err
		}
		resp := new(wrapperspb.StringValue)
		if err := p.stream.RecvMsg(resp); err != nil {
			return err
		}
		text = resp.GetValue()
		return nil
	})
	if err != nil || text == "" {
		return nil, err
	}
	return &stt.TranscriptionEvent{Kind: stt.Partial, Text: text}, nil
}

func (p *Plugin) Finalize(ctx context.Context) (*stt.TranscriptionEvent, error) {
	if p.stream == nil {
		return nil, nil
	}
	defer func() { p.stream = nil }()

	if err := p.stream.CloseSend(); err != nil {
		return nil, err
	}
	resp := new(wrapperspb.StringValue)
	if err := p.stream.RecvMsg(resp); err != nil {
		return nil, nil
	}
	if resp.GetValue() == "" {
		return nil, nil
	}
	return &stt.TranscriptionEvent{Kind: stt.Final, Text: resp.GetValue()}, nil
}

func (p *Plugin) Reset(ctx context.Context) error {
	p.stream = nil
	return nil
}

// Close releases the underlying connection.
func (p *Plugin) Close() error {
	if p.conn == nil {
		return nil
	}
	return p.conn.Close()
}

func (p *Plugin) withBreaker(fn func() error) error {
	if err := p.cb.Allow(); err != nil {
		return err
	}
	err := fn()
	if err != nil && isTransient(err) {
		p.cb.Failure()
	} else if err == nil {
		p.cb.Success()
	}
	return err
}

func isTransient(err error) bool {
	s, ok := status.FromError(err)
	if !ok {
		return true
	}
	switch s.Code() {
	case codes.Unavailable, codes.DeadlineExceeded, codes.ResourceExhausted:
		return true
	default:
		return false
	}
}
