// Package kafkax holds the kafka-go helpers shared by publishers.
package kafkax

import (
	"context"
	"strings"

	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
)

// SplitBrokers parses a comma separated KAFKA_BROKERS value. Empty input gives nil.
func SplitBrokers(raw string) []string {
	var out []string
	for _, addr := range strings.Split(raw, ",") {
		if addr = strings.TrimSpace(addr); addr != "" {
			out = append(out, addr)
		}
	}
	return out
}

// InjectTraceHeaders adds the W3C trace headers for ctx, replacing any already present.
func InjectTraceHeaders(ctx context.Context, headers []kafka.Header) []kafka.Header {
	hc := headerCarrier(headers)
	otel.GetTextMapPropagator().Inject(ctx, &hc)
	return hc
}

type headerCarrier []kafka.Header

var _ propagation.TextMapCarrier = (*headerCarrier)(nil)

func (hc *headerCarrier) Get(key string) string {
	if i := hc.index(key); i >= 0 {
		return string((*hc)[i].Value)
	}
	return ""
}

func (hc *headerCarrier) Set(key, value string) {
	if i := hc.index(key); i >= 0 {
		(*hc)[i].Value = []byte(value)
		return
	}
	*hc = append(*hc, kafka.Header{Key: key, Value: []byte(value)})
}

func (hc *headerCarrier) Keys() []string {
	keys := make([]string, len(*hc))
	for i, h := range *hc {
		keys[i] = h.Key
	}
	return keys
}

func (hc *headerCarrier) index(key string) int {
	for i, h := range *hc {
		if h.Key == key {
			return i
		}
	}
	return -1
}
