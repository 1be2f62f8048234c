package api

import "context"

// Role identifies the author of a Message
type Role string

const (
	RoleSystem    Role = "system"
	RoleDeveloper Role = "developer"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is a single entry of the conversation sent to a model backend
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Options is a free-form bag of provider specific tuning options (e.g. "temperature").
// The evaluation core passes it to the backend unmodified.
type Options map[string]any

// ToolHandler executes a tool invocation requested by the model.
// args are the decoded JSON arguments chosen by the model.
type ToolHandler func(ctx context.Context, args map[string]any) (any, error)

// Tool is a function the model may decide to invoke
type Tool struct {
	// Name is the function name exposed to the model
	Name string
	// Description tells the model when the tool should be called
	Description string
	// Schema is a JSON schema (map[string]interface{}) describing the tool arguments
	Schema map[string]any
	// Handler is invoked by the backend with the arguments selected by the model
	Handler ToolHandler
}

// Backend is the model-calling capability the evaluation core depends on.
// This interface must be implemented by library consumers.
// Gemini, OpenAI and Claude implementations are provided in the gemini, openai and claude subpackages.
//
// Returning an error means the call itself failed (network, auth, provider error).
// A backend that ran but has nothing usable to return signals it with a nil map
// (StructuredComplete) or an empty slice (ToolComplete) and a nil error.
type Backend interface {
	// Complete generates free text for the given messages
	Complete(ctx context.Context, model string, messages []Message, opts Options) (string, error)

	// StructuredComplete generates structured data conforming to the provided JSON schema.
	// Returns nil when the model output could not be parsed.
	StructuredComplete(ctx context.Context, model string, messages []Message, schema map[string]any, opts Options) (map[string]any, error)

	// ToolComplete lets the model call the given tools and returns the handler results
	// in the order the model issued the calls. The list may be empty.
	ToolComplete(ctx context.Context, model string, messages []Message, tools []Tool, opts Options) ([]any, error)
}

// ModerationCategories contains all supported moderation category names
// These are developer-friendly names that map to Google Cloud Natural Language API categories
var ModerationCategories = []string{
	"Toxic",
	"Derogatory",
	"Violent",
	"Sexual",
	"Insult",
	"Profanity",
	"DeathHarmTragedy",
	"FirearmsWeapons",
	"PublicSafety",
	"Health",
	"ReligionBelief",
	"IllicitDrugs",
	"WarConflict",
	"Finance",
	"Politics",
	"Legal",
}

// ModerationCategory represents a safety category with confidence score
type ModerationCategory struct {
	Name       string  `json:"name"`
	Confidence float64 `json:"confidence"`
}

// ModerationResult represents the result of content moderation
type ModerationResult struct {
	Categories []ModerationCategory `json:"categories"`
}

// ModerationProvider is an interface for content moderation
// A Google Cloud Natural Language implementation is provided in the gemini subpackage
type ModerationProvider interface {
	// Moderate analyzes content for safety and returns moderation results
	Moderate(ctx context.Context, content string) (*ModerationResult, error)
}
