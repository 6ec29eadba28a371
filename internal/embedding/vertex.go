package embedding

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/spf13/afero"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const (
	// VertexScope is the OAuth scope needed for Vertex AI
	VertexScope = "https://www.googleapis.com/auth/cloud-platform"

	defaultVertexLocation = "us-central1"
	defaultVertexModel    = "text-embedding-005"
	vertexMaxChars        = 10000
)

// VertexProvider embeds file content with a Vertex AI text embedding model
type VertexProvider struct {
	fs         afero.Fs
	modality   Modality
	endpoint   string
	httpClient *http.Client
}

type vertexRequest struct {
	Instances []vertexInstance `json:"instances"`
}

type vertexInstance struct {
	TaskType string `json:"task_type,omitempty"`
	Content  string `json:"content"`
}

type vertexResponse struct {
	Predictions []struct {
		Embeddings struct {
			Values []float32 `json:"values"`
		} `json:"embeddings"`
	} `json:"predictions"`
}

// NewVertexProvider creates a provider authenticated with application default
// credentials
func NewVertexProvider(ctx context.Context, fs afero.Fs, modality Modality, project, location, model string) (*VertexProvider, error) {
	if project == "" {
		return nil, fmt.Errorf("vertex project is required")
	}
	tokenSource, err := google.DefaultTokenSource(ctx, VertexScope)
	if err != nil {
		return nil, fmt.Errorf("failed to get token source: %w", err)
	}
	return NewVertexProviderWithClient(fs, modality, VertexEndpoint(project, location, model), oauth2.NewClient(ctx, tokenSource)), nil
}

// NewVertexProviderWithClient creates a provider that posts to endpoint with client
func NewVertexProviderWithClient(fs afero.Fs, modality Modality, endpoint string, client *http.Client) *VertexProvider {
	return &VertexProvider{fs: fs, modality: modality, endpoint: endpoint, httpClient: client}
}

// VertexEndpoint builds the predict URL for a publisher model
func VertexEndpoint(project, location, model string) string {
	if location == "" {
		location = defaultVertexLocation
	}
	if model == "" {
		model = defaultVertexModel
	}
	return fmt.Sprintf(
		"https://%s-aiplatform.googleapis.com/v1/projects/%s/locations/%s/publishers/google/models/%s:predict",
		location, project, location, model,
	)
}

func (p *VertexProvider) Modality() Modality { return p.modality }

func (p *VertexProvider) Embed(ctx context.Context, path string) Result {
	text, err := readText(p.fs, path)
	if err != nil {
		return Fail(p.modality, err)
	}
	vec, err := p.embedText(ctx, text)
	if err != nil {
		return Fail(p.modality, err)
	}
	return Ok(vec)
}

func (p *VertexProvider) embedText(ctx context.Context, text string) ([]float64, error) {
	reqBody, err := json.Marshal(vertexRequest{
		Instances: []vertexInstance{{
			TaskType: "SEMANTIC_SIMILARITY",
			Content:  truncateRunes(text, vertexMaxChars),
		}},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint, bytes.NewReader(reqBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("API request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("API error (status %d): %s", resp.StatusCode, string(body))
	}

	var out vertexResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	if len(out.Predictions) == 0 || len(out.Predictions[0].Embeddings.Values) == 0 {
		return nil, fmt.Errorf("no embeddings returned")
	}

	values := out.Predictions[0].Embeddings.Values
	vec := make([]float64, len(values))
	for i, v := range values {
		vec[i] = float64(v)
	}
	return vec, nil
}

func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
