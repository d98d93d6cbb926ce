package commonModels

import (
	"strconv"
	"time"
)

// metadata keys shared by every vector store backend
const (
	MetaOwnerId     = "owner_id"
	MetaFilename    = "filename"
	MetaChunkIndex  = "chunk_index"
	MetaContentType = "content_type"
	MetaUniqueId    = "unique_id"
	MetaContent     = "content"
)

type Document struct {
	OwnerId     string    `json:"owner_id"`
	Filename    string    `json:"filename"`
	ContentType string    `json:"content_type"`
	UploadedAt  time.Time `json:"uploaded_at"`
}

type DocChunk struct {
	OwnerId        string `json:"owner_id"`
	SourceFilename string `json:"filename"`
	ChunkIndex     int    `json:"chunk_index"`
	ContentType    string `json:"content_type"`
	Text           string `json:"content"`
	UniqueId       string `json:"unique_id"`
}

// Metadata is the filterable part of a chunk in the flat string form the stores keep.
func (c DocChunk) Metadata() map[string]string {
	return map[string]string{
		MetaOwnerId:     c.OwnerId,
		MetaFilename:    c.SourceFilename,
		MetaChunkIndex:  strconv.Itoa(c.ChunkIndex),
		MetaContentType: c.ContentType,
		MetaUniqueId:    c.UniqueId,
	}
}

type ChunkMetadata struct {
	OwnerId     string  `json:"owner_id"`
	Filename    string  `json:"filename"`
	ChunkIndex  int     `json:"chunk_index"`
	ContentType string  `json:"content_type"`
	UniqueId    string  `json:"unique_id"`
	Score       float32 `json:"score"`
}

// RetrievalResult holds parallel slices ordered most similar first.
type RetrievalResult struct {
	Documents []string
	Metadata  []ChunkMetadata
}

func (r RetrievalResult) Len() int {
	return len(r.Documents)
}

func (r *RetrievalResult) Append(doc string, meta ChunkMetadata) {
	r.Documents = append(r.Documents, doc)
	r.Metadata = append(r.Metadata, meta)
}

type ModelDescriptor struct {
	Id             string `json:"id"`
	ShortName      string `json:"short_name"`
	DisplayName    string `json:"display_name"`
	Developer      string `json:"developer"`
	ParameterCount string `json:"parameter_count"`
	Language       string `json:"language"`
	Description    string `json:"description"`
}

const ProTier = "Pro"

type QueryRequest struct {
	Query     string
	OwnerId   string
	Tier      string
	Model     string
	AgentMode bool
}

type QueryResponse struct {
	ModelUsed string `json:"model_used"`
	Response  string `json:"response"`
}

type StreamEventType string

const (
	StreamToken StreamEventType = "token"
	StreamDone  StreamEventType = "done"
	StreamError StreamEventType = "error"
)

type StreamEvent struct {
	Type      StreamEventType
	Text      string
	ModelUsed string
}

type UploadRequest struct {
	OwnerId     string
	Filename    string
	ContentType string
	Path        string
}

type UploadResult struct {
	Filename string `json:"filename"`
	Chunks   int    `json:"chunks"`
}

type PurgeResult struct {
	Purged  bool `json:"purged"`
	Deleted int  `json:"deleted"`
}
