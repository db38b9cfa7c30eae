package engine

// Message is one turn of a chat exchange with a backend.
type Message struct {
	Role    string
	Content string
}

// Schema constrains the top-level shape of a structured chat response.
// Backends that support response formats receive it; others rely on the
// prompt alone. Only one level of properties is expressed; nested shapes
// are spelled out in the prompt instead.
type Schema struct {
	Type       string
	Properties map[string]SchemaProperty
	Required   []string
}

// SchemaProperty describes a single top-level field of a Schema.
type SchemaProperty struct {
	Type        string
	Description string
}

// PullProgress is one progress update during a model download.
type PullProgress struct {
	Status    string
	Total     int64
	Completed int64
}
