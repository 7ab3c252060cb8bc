package tracing

import (
	"fmt"
	"io"

	"github.com/opentracing/opentracing-go"
	"github.com/uber/jaeger-client-go"
	jaegercfg "github.com/uber/jaeger-client-go/config"
)

// InitTracer 构造上报到 Jaeger agent 的 tracer。
// sampler 取值 (0,1) 用概率采样，其余折算成 const 全采/不采；
// 是否设为全局 tracer 由调用方决定（main 里注入）。
func InitTracer(serviceName, endpoint string, sampler float64) (opentracing.Tracer, io.Closer, error) {
	if serviceName == "" {
		serviceName = "berrymart"
	}

	samplerCfg := &jaegercfg.SamplerConfig{
		Type:  jaeger.SamplerTypeConst,
		Param: 1,
	}
	switch {
	case sampler <= 0:
		samplerCfg.Param = 0
	case sampler < 1:
		samplerCfg.Type = jaeger.SamplerTypeProbabilistic
		samplerCfg.Param = sampler
	}

	cfg := &jaegercfg.Configuration{
		ServiceName: serviceName,
		Sampler:     samplerCfg,
		Reporter: &jaegercfg.ReporterConfig{
			LogSpans:           true,
			LocalAgentHostPort: endpoint,
		},
	}

	tracer, closer, err := cfg.NewTracer(jaegercfg.Logger(jaeger.StdLogger))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to init jaeger tracer: %w", err)
	}
	return tracer, closer, nil
}
