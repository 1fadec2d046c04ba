package pip

import (
	"lspinstall/internal/process"
	"lspinstall/internal/result"
)

// resolveFirst tries each candidate in order and returns the first one whose
// attempt succeeds. Later candidates are never tried once one succeeds.
func resolveFirst(candidates []string, attempt func(candidate string) result.Result[process.Output], logger Logger) result.Optional[string] {
	for _, candidate := range candidates {
		r := attempt(candidate)
		if r.IsSuccess() {
			logger.Debugf("resolved interpreter %s", candidate)
			return result.Some(candidate)
		}
		logger.Debugf("interpreter %s failed: %v", candidate, r.Err())
	}
	return result.None[string]()
}
