package middleware

import (
	"io"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/utils"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Tracing starts a server span per request and stores it in the user context, so
// service spans become its children.
func Tracing(tracer trace.Tracer) fiber.Handler {
	return func(c *fiber.Ctx) error {
		// Ctx strings alias fasthttp buffers that are reused once the handler
		// returns, while spans are exported later.
		method := utils.CopyString(c.Method())
		ctx, span := tracer.Start(c.UserContext(), "HTTP "+method+" "+c.Path(),
			trace.WithSpanKind(trace.SpanKindServer),
		)
		defer span.End()

		span.SetAttributes(
			attribute.String("http.method", method),
			attribute.String("http.url", utils.CopyString(c.OriginalURL())),
			attribute.String("http.user_agent", utils.CopyString(c.Get(fiber.HeaderUserAgent))),
		)

		c.SetUserContext(ctx)
		err := c.Next()

		status := c.Response().StatusCode()
		span.SetAttributes(attribute.Int("http.status_code", status))
		if status >= fiber.StatusInternalServerError {
			span.SetStatus(codes.Error, "server error")
		}
		return err
	}
}

// accessLogFormat renders one JSON object per request, using the same keys as
// the application's slog output.
const accessLogFormat = `{"time":"${time}","level":"INFO","msg":"HTTP request",` +
	`"method":"${method}","path":"${path}","status":${status},"latency":"${latency}",` +
	`"remote_ip":"${ip}","request_id":"${locals:requestid}","trace_id":"${trace_id}"}` + "\n"

// RequestLogger writes an access log line per request through fiber's logger
// middleware. ${trace_id} resolves from the span started by Tracing.
func RequestLogger(output io.Writer) fiber.Handler {
	return logger.New(logger.Config{
		Format:     accessLogFormat,
		TimeFormat: time.RFC3339Nano,
		TimeZone:   "UTC",
		Output:     output,
		CustomTags: map[string]logger.LogFunc{
			"trace_id": func(buf logger.Buffer, c *fiber.Ctx, _ *logger.Data, _ string) (int, error) {
				sc := trace.SpanContextFromContext(c.UserContext())
				if !sc.IsValid() {
					return 0, nil
				}
				return buf.WriteString(sc.TraceID().String())
			},
		},
	})
}
