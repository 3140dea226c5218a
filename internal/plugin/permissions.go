package plugin

import "encoding/json"

// permissionDoc mirrors the JSON shape stored in plugin.permissions,
// grounded on original_source/src-tauri/src/plugins/mod.rs's Capabilities
// struct, reshaped into the nested permission tree spec.md §4.7 describes
// (core.call, fs.read/write/roots, net.request/domains, db.query/write,
// ai.invoke, scanner.register).
type permissionDoc struct {
	Core struct {
		Call bool `json:"call"`
	} `json:"core"`
	FS struct {
		Read  bool     `json:"read"`
		Write bool     `json:"write"`
		Roots []string `json:"roots"`
	} `json:"fs"`
	Net struct {
		Request bool     `json:"request"`
		Domains []string `json:"domains"`
	} `json:"net"`
	DB struct {
		Query bool `json:"query"`
		Write bool `json:"write"`
	} `json:"db"`
	AI struct {
		Invoke bool `json:"invoke"`
	} `json:"ai"`
	Scanner struct {
		Register bool `json:"register"`
	} `json:"scanner"`
}

// ParsePermissions decodes a plugin row's raw permissions JSON, combined
// with its enabled flag, into the Permissions the gate checks against
// (spec.md §4.7 step 1: "plugin must be enabled=1 and have
// permissions.core.call=true").
func ParsePermissions(enabled bool, raw string) Permissions {
	var doc permissionDoc
	_ = json.Unmarshal([]byte(raw), &doc)

	return Permissions{
		CoreCall:        enabled && doc.Core.Call,
		FSRead:          doc.FS.Read,
		FSWrite:         doc.FS.Write,
		NetRequest:      doc.Net.Request,
		DBQuery:         doc.DB.Query,
		DBWrite:         doc.DB.Write,
		AIInvoke:        doc.AI.Invoke,
		ScannerRegister: doc.Scanner.Register,
		NetDomains:      doc.Net.Domains,
		FSRoots:         doc.FS.Roots,
	}
}
