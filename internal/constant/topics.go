package constant

// Event-bus topic names.
const (
	TopicIngestFile = "ingest.file"
)
