package shared

import "context"

type actorIDKey struct{}

// WithActorID returns a context carrying the acting user's ID. Set once per
// request after authentication so lower layers can act on the caller's
// behalf without threading identity through every signature.
func WithActorID(ctx context.Context, userID uint) context.Context {
	return context.WithValue(ctx, actorIDKey{}, userID)
}

// ActorIDFromContext returns the acting user's ID, if one was set
func ActorIDFromContext(ctx context.Context) (uint, bool) {
	userID, ok := ctx.Value(actorIDKey{}).(uint)
	if !ok || userID == 0 {
		return 0, false
	}
	return userID, true
}
