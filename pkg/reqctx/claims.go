package reqctx

import "context"

// WithVeterinarianID stores the authenticated veterinarian in the context.
func WithVeterinarianID(ctx context.Context, id int64) context.Context {
	return context.WithValue(ctx, keyVeterinarian, id)
}

// VeterinarianIDFromContext returns the authenticated veterinarian id.
// Returns 0, false if the request is not authenticated.
func VeterinarianIDFromContext(ctx context.Context) (int64, bool) {
	id, ok := ctx.Value(keyVeterinarian).(int64)
	return id, ok && id > 0
}

