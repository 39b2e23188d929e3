// Package reqctx holds request-scoped values: request metadata set by the
// request id middleware and the veterinarian id set by auth middleware.
//
// Keys are unexported; use the typed getters and setters:
//
//	ctx = reqctx.WithRequestMeta(ctx, &reqctx.RequestMeta{RequestID: id})
//	ctx = reqctx.WithVeterinarianID(ctx, claims.VeterinarianID)
//
//	vetID, ok := reqctx.VeterinarianIDFromContext(ctx)
//
// LogHandler copies both onto every slog record logged with the context.
package reqctx
