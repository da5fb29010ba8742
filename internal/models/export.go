package models

import (
	"encoding/json"
	"fmt"
)

// maxImportDocuments caps a single bulk import request.
const maxImportDocuments = 1000

// maxDocumentAttributesBytes caps the encoded attribute payload per document.
const maxDocumentAttributesBytes = 65536

// ImportDocumentsRequest is the payload for bulk-loading documents into one collection.
type ImportDocumentsRequest struct {
	Documents []Document `json:"documents"`
}

// Validate prepares every document for collection and enforces the batch
// limits. Failures wrap ErrInvalidDocument.
func (r *ImportDocumentsRequest) Validate(collection string) error {
	if err := r.validate(collection); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidDocument, err)
	}

	return nil
}

func (r *ImportDocumentsRequest) validate(collection string) error {
	if err := ValidateCollectionName(collection); err != nil {
		return err
	}

	if len(r.Documents) == 0 {
		return fmt.Errorf("documents must not be empty")
	}

	if len(r.Documents) > maxImportDocuments {
		return fmt.Errorf("too many documents: %d exceeds limit of %d", len(r.Documents), maxImportDocuments)
	}

	for i := range r.Documents {
		doc := &r.Documents[i]
		if err := doc.PrepareForCollection(collection); err != nil {
			return fmt.Errorf("document %d: %w", i, err)
		}

		data, err := json.Marshal(doc.Attributes)
		if err != nil {
			return fmt.Errorf("document %d: invalid attributes: %w", i, err)
		}

		if len(data) > maxDocumentAttributesBytes {
			return fmt.Errorf("document %d: %w", i, ErrFieldTooLong("attributes", maxDocumentAttributesBytes))
		}
	}

	return nil
}

// ImportResult summarises the outcome of a bulk import.
type ImportResult struct {
	Collection string `json:"collection"`
	Imported   int    `json:"imported"`
}
