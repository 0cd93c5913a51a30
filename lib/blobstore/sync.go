package blobstore

import (
	"bytes"
	"context"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("dugout.lib.blobstore")

// Sync mirrors every blob under prefix from src into dst, skipping
// keys whose bytes already match. Returns the number of blobs copied.
// Last writer wins within a key; there is no delete propagation.
func Sync(ctx context.Context, src, dst Store, prefix string) (int, error) {
	ctx, span := tracer.Start(ctx, "Sync")
	defer span.End()
	span.SetAttributes(attribute.String("prefix", prefix))

	keys, err := src.List(ctx, prefix)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return 0, err
	}

	copied := 0
	for _, key := range keys {
		data, err := src.Get(ctx, key)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return copied, err
		}

		exists, err := dst.Exists(ctx, key)
		if err != nil {
			return copied, err
		}
		if exists {
			existing, err := dst.Get(ctx, key)
			if err != nil {
				return copied, err
			}
			if bytes.Equal(existing, data) {
				continue
			}
		}

		err = dst.Put(ctx, key, data)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return copied, err
		}
		slog.DebugContext(ctx, "synced blob", "key", key, "bytes", len(data))
		copied++
	}

	span.SetAttributes(attribute.Int("copied", copied))
	return copied, nil
}
