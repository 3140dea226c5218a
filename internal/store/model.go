// model.go defines the row types shared across the store's per-entity files.
//
// Grounded on the entity list in spec.md §3 and original_source/src-tauri/src/commands.rs's
// struct shapes (GraphDoc, SearchHit, ProviderRow). Kept as plain structs with
// json tags rather than a generated ORM layer, matching the teacher's own
// internal/store/store.go approach of hand-written row structs.
package store

// Repo is a directory root under management.
type Repo struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	Path      string `json:"path"`
	Settings  string `json:"settings"` // raw JSON
	CreatedAt int64  `json:"created_at"`
	UpdatedAt int64  `json:"updated_at"`
}

// Folder is a materialized-path node in a repo's directory tree.
type Folder struct {
	ID       int64
	RepoID   int64
	ParentID *int64
	Path     string
	Slug     string
}

// DocBlob is an immutable content-addressed payload.
type DocBlob struct {
	ID        int64
	Content   []byte
	SizeBytes int64
	Encoding  string
	Mime      string
}

// Doc is a Markdown document.
type Doc struct {
	ID                int64  `json:"id"`
	RepoID            int64  `json:"repo_id"`
	FolderID          int64  `json:"folder_id"`
	Slug              string `json:"slug"`
	Title             string `json:"title"`
	CurrentVersionID  *int64 `json:"current_version_id"`
	IsDeleted         bool   `json:"is_deleted"`
	SizeBytes         int64  `json:"size_bytes"`
	LineCount         int64  `json:"line_count"`
	CreatedAt         int64  `json:"created_at"`
	UpdatedAt         int64  `json:"updated_at"`
}

// DocVersion is one point in a doc's history.
type DocVersion struct {
	ID        int64
	DocID     int64
	BlobID    int64
	Hash      string
	Message   string
	CreatedAt int64
}

// DocAsset is a binary attachment of a doc.
type DocAsset struct {
	ID        int64
	DocID     int64
	Filename  string
	Mime      string
	SizeBytes int64
	BlobID    int64
	CreatedAt int64
}

// Link is a wiki-link edge, possibly dangling (ToDocID == nil).
type Link struct {
	ID        int64  `json:"id"`
	RepoID    int64  `json:"repo_id"`
	FromDocID int64  `json:"from_doc_id"`
	ToDocID   *int64 `json:"to_doc_id"`
	ToSlug    string `json:"to_slug"`
	Type      string `json:"type"`
	LineStart int    `json:"line_start"`
	LineEnd   int    `json:"line_end"`
}

// Provenance is the unified sidecar for anchors, import records, and other
// origin annotations.
type Provenance struct {
	ID         int64
	EntityType string
	EntityID   int64
	Source     string
	Meta       string // raw JSON
	CreatedAt  int64
}

// Provider is an AI backend descriptor.
type Provider struct {
	Name      string
	Kind      string // "local" | "remote"
	Enabled   bool
	Config    string // raw JSON
	CreatedAt int64
	UpdatedAt int64
}

// Plugin is a sandboxed extension descriptor.
type Plugin struct {
	ID          int64
	Name        string
	Version     string
	Kind        string
	Manifest    string
	Permissions string // raw JSON
	Enabled     bool
	CreatedAt   int64
	UpdatedAt   int64
}

// AiTrace records one ai_run invocation.
type AiTrace struct {
	ID           int64
	RepoID       int64
	DocID        int64
	AnchorID     string
	Provider     string
	Request      string // raw JSON
	Response     string // raw JSON
	InputTokens  int64
	OutputTokens int64
	CostUSD      float64
	CreatedAt    int64
}

// ScanJob tracks one scan-repo invocation.
type ScanJob struct {
	ID         int64
	RepoID     int64
	Status     string // "running" | "success" | "error"
	Stats      string // raw JSON
	StartedAt  int64
	FinishedAt *int64
}

// DocMeta is Doc without the body, returned by listing operations that must
// not pull blob content into memory.
type DocMeta struct {
	ID        int64
	Slug      string
	Title     string
	SizeBytes int64
	UpdatedAt int64
}
