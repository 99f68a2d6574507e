package schema

import (
	_ "embed"
	"sync"
)

//go:embed default.cue
var defaultCUE string

// Default returns the built-in profile schema.
// The result is shared; callers must not mutate it.
var Default = sync.OnceValue(func() *Schema {
	return MustCompile("default.cue", defaultCUE)
})
