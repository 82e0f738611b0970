package services

import "context"

// persistentContext keeps request values but drops cancellation, so a write
// that has started is not abandoned when the client goes away.
func persistentContext(ctx context.Context) context.Context {
	if ctx == nil {
		return context.Background()
	}
	return context.WithoutCancel(ctx)
}
