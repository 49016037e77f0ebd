package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
)

// Indexer pushes newly published items into Elasticsearch so the public
// browse pages pick them up. Only paid items are ever indexed.
type Indexer struct {
	BaseURL string
}

func NewIndexer(baseURL string) *Indexer {
	return &Indexer{BaseURL: baseURL}
}

func (ix *Indexer) IndexPublished(ctx context.Context, index string, doc map[string]interface{}) error {
	idValue, ok := doc["id"]
	if !ok {
		return fmt.Errorf("missing id field in document")
	}
	id := fmt.Sprintf("%v", idValue)

	body, _ := json.Marshal(doc)
	req, err := http.NewRequestWithContext(
		ctx,
		"PUT",
		fmt.Sprintf("%s/%s/_doc/%s", ix.BaseURL, index, id),
		bytes.NewBuffer(body),
	)
	if err != nil {
		return err
	}

	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("failed to index document: %s", resp.Status)
	}

	log.Printf("Indexed %s/%s", index, id)
	return nil
}
