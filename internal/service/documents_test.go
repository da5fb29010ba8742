package service

import (
	"context"
	"errors"
	"testing"

	"github.com/persistorai/namedgraph/internal/models"
)

func TestDocumentService_ImportDocuments(t *testing.T) {
	var gotCollection string
	var gotDocs []models.Document

	writer := &mockWriter{
		putDocuments: func(_ context.Context, collection string, docs []models.Document) (int, error) {
			gotCollection, gotDocs = collection, docs
			return len(docs), nil
		},
	}
	queue := &recordingQueue{}
	svc := NewDocumentService(writer, queue, testLogger())

	res, err := svc.ImportDocuments(context.Background(), "E", models.ImportDocumentsRequest{
		Documents: []models.Document{{Key: "1", From: "V/a", To: "V/b"}},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if res.Imported != 1 || res.Collection != "E" {
		t.Errorf("result = %+v", res)
	}

	if gotCollection != "E" || len(gotDocs) != 1 || gotDocs[0].ID != "E/1" {
		t.Errorf("writer got %q %+v", gotCollection, gotDocs)
	}

	if types := queue.types(); len(types) != 1 || types[0] != EventDocumentsImported {
		t.Errorf("events = %v", types)
	}
}

func TestDocumentService_ImportDocumentsErrors(t *testing.T) {
	called := false
	storeErr := errors.New("disk full")

	writer := &mockWriter{
		putDocuments: func(context.Context, string, []models.Document) (int, error) {
			called = true
			return 0, storeErr
		},
	}
	queue := &recordingQueue{}
	svc := NewDocumentService(writer, queue, testLogger())

	if _, err := svc.ImportDocuments(context.Background(), "E", models.ImportDocumentsRequest{}); err == nil {
		t.Error("expected validation error for empty request")
	}

	if called {
		t.Error("writer called for invalid request")
	}

	_, err := svc.ImportDocuments(context.Background(), "E", models.ImportDocumentsRequest{
		Documents: []models.Document{{Key: "1"}},
	})
	if !errors.Is(err, storeErr) {
		t.Errorf("error = %v, want %v", err, storeErr)
	}

	if len(queue.types()) != 0 {
		t.Errorf("unexpected events %v", queue.types())
	}
}
