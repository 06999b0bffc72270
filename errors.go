package medirag

import "errors"

// ErrDetachedStore indicates an operation that needs an open store on a
// database opened with WithDetachedStore.
var ErrDetachedStore = errors.New("store is detached")
