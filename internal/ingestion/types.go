// Package ingestion defines the request/response types for the document
// upload endpoint.
package ingestion

// UploadRequest is the JSON body accepted by the documents endpoint.
type UploadRequest struct {
	Name    string `json:"name"`
	Content string `json:"content"`
}

// DocumentResponse is returned to the caller after a document is indexed.
type DocumentResponse struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	WordCount int    `json:"word_count"`
}
