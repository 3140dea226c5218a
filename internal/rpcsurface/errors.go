package rpcsurface

import (
	"errors"

	"github.com/mtreilly/mdkb/internal/aidispatch"
	"github.com/mtreilly/mdkb/internal/importer"
	"github.com/mtreilly/mdkb/internal/plugin"
	"github.com/mtreilly/mdkb/internal/store"
)

// kind maps an internal error to the bare spec.md §7 error-kind string
// every handler failure surfaces as RPCError.Message.
func kind(err error) string {
	if k, ok := plugin.Kind(err); ok {
		return k
	}
	switch {
	case errors.Is(err, store.ErrNotFound):
		return "not_found"
	case errors.Is(err, store.ErrAlreadyExists):
		return "already_exists"
	case errors.Is(err, aidispatch.ErrProviderDisabled):
		return "provider_disabled"
	case errors.Is(err, aidispatch.ErrNoKey):
		return "no_key"
	case errors.Is(err, importer.ErrInvalidMergeStrategy):
		return err.Error()
	case errors.Is(err, importer.ErrRepoTargetAmbiguous):
		return err.Error()
	default:
		return "invalid_request: " + err.Error()
	}
}
