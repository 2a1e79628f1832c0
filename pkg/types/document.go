package types

// DateLayout is the format of Metadata.DateAdded.
const DateLayout = "2006-01-02"

// Metadata describes where a record came from. It travels with the content
// to the knowledge base and comes back on search results.
type Metadata struct {
	// Source is the file name the content was extracted from.
	Source string `json:"source" yaml:"source"`

	// Category is the user-supplied label given at ingestion time.
	Category string `json:"category" yaml:"category"`

	// DateAdded is the ingestion date in DateLayout.
	DateAdded string `json:"date_added" yaml:"date_added"`

	// FileType is the lower-case file extension including the dot.
	FileType string `json:"file_type,omitempty" yaml:"file_type,omitempty"`

	// UploadedVia is set to "web_interface" for records submitted through
	// the web upload form.
	UploadedVia string `json:"uploaded_via,omitempty" yaml:"uploaded_via,omitempty"`
}

// Record is one document submitted to a knowledge base. It is built once
// per successfully extracted file and not kept after the insert.
type Record struct {
	Content  string   `json:"content" yaml:"content"`
	Metadata Metadata `json:"metadata" yaml:"metadata"`
}

// SearchResult is a single hit returned by a knowledge-base search.
type SearchResult struct {
	Content  string   `json:"content" yaml:"content"`
	Metadata Metadata `json:"metadata" yaml:"metadata"`

	// Relevance is the service-reported score; higher is better. Zero when
	// the service does not report one.
	Relevance float64 `json:"relevance" yaml:"relevance"`
}

// EmbeddingModel is the embedding configuration sent when a knowledge base
// is created.
type EmbeddingModel struct {
	ModelName string `json:"model_name" yaml:"model_name"`
	Provider  string `json:"provider" yaml:"provider"`
}
