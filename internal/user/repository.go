package user

import "context"

// Repository stores one JSON document per user.
// Service depends ONLY on this interface.
type Repository interface {
	// GetDoc returns (nil, nil) when the user has no document yet.
	GetDoc(ctx context.Context, uid string) (map[string]any, error)
	SaveDoc(ctx context.Context, uid string, doc map[string]any) error
}
