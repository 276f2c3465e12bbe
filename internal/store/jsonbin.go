package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// DefaultJSONBinURL is the hosted document-store endpoint the bot was
// originally deployed against.
const DefaultJSONBinURL = "https://api.jsonbin.io/v3"

// JSONBinBackend keeps the document in a single remote JSON bin.
// Reads go through GET {base}/b/{bin}/latest, which wraps the document in
// a {"record": ...} envelope; writes PUT the document back as-is.
type JSONBinBackend struct {
	baseURL    string
	binID      string
	apiKey     string
	httpClient *http.Client
}

func NewJSONBinBackend(baseURL, binID, apiKey string) *JSONBinBackend {
	if baseURL == "" {
		baseURL = DefaultJSONBinURL
	}
	return &JSONBinBackend{
		baseURL: baseURL,
		binID:   binID,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

func (b *JSONBinBackend) Fetch(ctx context.Context) ([]byte, error) {
	url := fmt.Sprintf("%s/b/%s/latest", b.baseURL, b.binID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("X-Master-Key", b.apiKey)

	resp, err := b.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("jsonbin fetch returned status %d", resp.StatusCode)
	}

	var envelope struct {
		Record json.RawMessage `json:"record"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return nil, err
	}
	if len(envelope.Record) == 0 {
		return nil, fmt.Errorf("jsonbin response missing record envelope")
	}
	return envelope.Record, nil
}

func (b *JSONBinBackend) Put(ctx context.Context, raw []byte) error {
	url := fmt.Sprintf("%s/b/%s", b.baseURL, b.binID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, url, bytes.NewReader(raw))
	if err != nil {
		return err
	}
	req.Header.Set("X-Master-Key", b.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := b.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("jsonbin put returned status %d: %s", resp.StatusCode, body)
	}
	return nil
}
