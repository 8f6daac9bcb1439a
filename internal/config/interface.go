package config

import "context"

// Loader translates an on-disk configuration into the agnostic model.
// Implementations own all knowledge of the source format; a load error
// means the document was not syntactically well-formed.
type Loader interface {
	Load(ctx context.Context, path string) (*RawConfig, error)
}
