package dto

// IngestDocumentMessage is the payload published on the ingest topic
type IngestDocumentMessage struct {
	RelativePath string `json:"relative_path" validate:"required"`
	Content      string `json:"content"`
}

type IngestResult struct {
	RelativePath string
	Chunks       int
	Err          error
}
