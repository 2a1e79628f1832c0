package types

import "time"

// KBBackend selects the knowledge-base service implementation.
type KBBackend string

const (
	BackendMindsDB KBBackend = "mindsdb"
	BackendSQLite  KBBackend = "sqlite"
)

// PDFBackend selects the capability used to pull per-page text out of PDFs.
type PDFBackend string

const (
	PDFNative    PDFBackend = "native"
	PDFPdftotext PDFBackend = "pdftotext"
	PDFNone      PDFBackend = "none"
)

// Config is the contents of config.yaml. Field names match the keys written
// by the default-config bootstrap so existing files keep working.
type Config struct {
	// AIProvider selects the summarizer: groq, ollama, or gemini.
	AIProvider string `json:"ai_provider" yaml:"ai_provider" mapstructure:"ai_provider"`

	GroqAPIKey string `json:"groq_api_key" yaml:"groq_api_key" mapstructure:"groq_api_key"`
	GroqModel  string `json:"groq_model" yaml:"groq_model" mapstructure:"groq_model"`

	GeminiAPIKey string `json:"gemini_api_key" yaml:"gemini_api_key" mapstructure:"gemini_api_key"`
	GeminiModel  string `json:"gemini_model" yaml:"gemini_model" mapstructure:"gemini_model"`

	OllamaURL   string `json:"ollama_url" yaml:"ollama_url" mapstructure:"ollama_url"`
	OllamaModel string `json:"ollama_model" yaml:"ollama_model" mapstructure:"ollama_model"`

	// MindsDBURL is the base URL of the MindsDB HTTP API.
	MindsDBURL string `json:"mindsdb_url" yaml:"mindsdb_url" mapstructure:"mindsdb_url"`

	// KBName is the default knowledge base used when --kb-name is not given.
	KBName string `json:"kb_name" yaml:"kb_name" mapstructure:"kb_name"`

	// KBBackend selects mindsdb (remote) or sqlite (local file under DataDir).
	KBBackend KBBackend `json:"kb_backend" yaml:"kb_backend" mapstructure:"kb_backend"`

	// DataDir holds the sqlite backend database.
	DataDir string `json:"data_dir" yaml:"data_dir" mapstructure:"data_dir"`

	// EmbeddingModel and EmbeddingProvider are passed to the service when a
	// knowledge base is created.
	EmbeddingModel    string `json:"embedding_model" yaml:"embedding_model" mapstructure:"embedding_model"`
	EmbeddingProvider string `json:"embedding_provider" yaml:"embedding_provider" mapstructure:"embedding_provider"`

	HuggingFaceAPIToken string `json:"huggingface_api_token" yaml:"huggingface_api_token" mapstructure:"huggingface_api_token"`

	PDFBackend PDFBackend `json:"pdf_backend" yaml:"pdf_backend" mapstructure:"pdf_backend"`

	// RequestTimeout bounds every HTTP call to the knowledge base and LLM APIs.
	RequestTimeout time.Duration `json:"request_timeout" yaml:"request_timeout" mapstructure:"request_timeout"`
}
