package rpcsurface

import (
	"context"
	"encoding/json"

	"github.com/mtreilly/mdkb/internal/plugin"
)

// plugins_list/_call are an operational extension of spec.md §6's method
// table: the table names anchors_*/ai_run/etc. as the caller-facing surface
// but never defines how a caller outside the host process inspects or
// drives the plugin host it also specifies (§4.7) — this RPC surface is the
// only caller-facing entry point in the architecture, so plugin lifecycle
// is reached through it rather than left unreachable.

func handlePluginsList(ctx context.Context, sf *Surface, _ json.RawMessage) (interface{}, error) {
	descriptors, err := sf.Store.ListPlugins(ctx)
	if err != nil {
		return nil, err
	}
	return descriptors, nil
}

type pluginsCallParams struct {
	Name   string          `json:"name"`
	Method string          `json:"method"`
	Params json.RawMessage `json:"params,omitempty"`
}

// handlePluginsCall looks up the plugin's DB-backed permission grant and
// forwards method+params to the running child as one JSON-RPC 2.0 line,
// per spec.md §4.7 step 1's "must be enabled and hold permissions.core.call".
func handlePluginsCall(ctx context.Context, sf *Surface, raw json.RawMessage) (interface{}, error) {
	var p pluginsCallParams
	if err := decodeParams(raw, &p); err != nil {
		return nil, err
	}

	row, err := sf.Store.PluginByName(ctx, p.Name)
	if err != nil {
		return nil, err
	}
	perms := plugin.ParsePermissions(row.Enabled, row.Permissions)

	inner := Request{JSONRPC: "2.0", ID: json.RawMessage(`1`), Method: p.Method, Params: p.Params}
	line, err := json.Marshal(inner)
	if err != nil {
		return nil, err
	}

	result, err := sf.Plugins.CallRaw(ctx, p.Name, perms, string(line))
	if err != nil {
		return nil, err
	}
	return result, nil
}

func init() {
	methodTable["plugins_list"] = handlePluginsList
	methodTable["plugins_call"] = handlePluginsCall
}
