package main

import (
	"context"
	"log"
	"strconv"
	"sync/atomic"
	"time"

	"kgms-backend/infrastructure/config"
	"kgms-backend/infrastructure/di"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	chiadapter "github.com/awslabs/aws-lambda-go-api-proxy/chi"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// apiProxy serves the REST router from API Gateway HTTP API events. The
// container outlives invocations, so its cleanup hook is never run.
type apiProxy struct {
	adapter *chiadapter.ChiLambdaV2
	logger  *zap.Logger
	warm    atomic.Bool
}

func newAPIProxy(ctx context.Context) (*apiProxy, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, err
	}
	container, _, err := di.InitializeContainer(ctx, cfg)
	if err != nil {
		return nil, err
	}
	mux, ok := container.Handler.(*chi.Mux)
	if !ok {
		log.Fatalf("unexpected handler type %T", container.Handler)
	}
	return &apiProxy{adapter: chiadapter.NewV2(mux), logger: container.Logger}, nil
}

func (p *apiProxy) handle(ctx context.Context, req events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error) {
	start := time.Now()
	cold := !p.warm.Swap(true)

	resp, err := p.adapter.ProxyWithContextV2(ctx, req)
	if resp.Headers == nil {
		resp.Headers = map[string]string{}
	}
	resp.Headers["X-Cold-Start"] = strconv.FormatBool(cold)
	if id := req.RequestContext.RequestID; id != "" {
		resp.Headers["X-Request-ID"] = id
	}

	fields := []zap.Field{
		zap.String("method", req.RequestContext.HTTP.Method),
		zap.String("path", req.RequestContext.HTTP.Path),
		zap.String("request_id", req.RequestContext.RequestID),
		zap.Int("status", resp.StatusCode),
		zap.Bool("cold_start", cold),
		zap.Duration("duration", time.Since(start)),
	}
	if err != nil {
		p.logger.Error("Proxying API Gateway event failed", append(fields, zap.Error(err))...)
	} else {
		p.logger.Info("Handled API Gateway event", fields...)
	}
	return resp, err
}

func main() {
	started := time.Now()
	proxy, err := newAPIProxy(context.Background())
	if err != nil {
		log.Fatalf("failed to start: %v", err)
	}
	proxy.logger.Info("Lambda initialized", zap.Duration("init", time.Since(started)))
	lambda.Start(proxy.handle)
}
