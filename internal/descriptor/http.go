package descriptor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// maxDescriptorSize bounds how much of a response body is read.
const maxDescriptorSize = 4 << 20

// ErrTooLarge is returned for response bodies over maxDescriptorSize.
var ErrTooLarge = errors.New("descriptor: too large")

// HTTPSource fetches descriptors from a server laid out as
// {BaseURL}/{shape}.json and {BaseURL}/consts.json.
type HTTPSource struct {
	BaseURL string
	Client  *http.Client
}

// NewHTTPSource returns a source with a bounded client timeout.
func NewHTTPSource(baseURL string) *HTTPSource {
	return &HTTPSource{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Client:  &http.Client{Timeout: 30 * time.Second},
	}
}

func (h *HTTPSource) get(ctx context.Context, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, h.BaseURL+"/"+path, nil)
	if err != nil {
		return nil, fmt.Errorf("descriptor: build request: %w", err)
	}
	client := h.Client
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("descriptor: fetch %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("descriptor: fetch %s: status %s", path, resp.Status)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxDescriptorSize+1))
	if err != nil {
		return nil, fmt.Errorf("descriptor: read %s: %w", path, err)
	}
	if len(data) > maxDescriptorSize {
		return nil, fmt.Errorf("%w: %s exceeds %d bytes", ErrTooLarge, path, maxDescriptorSize)
	}
	return data, nil
}

func (h *HTTPSource) Geometry(ctx context.Context, shape string) (Geometry, error) {
	if !ValidName(shape) {
		return Geometry{}, fmt.Errorf("%w: shape %q", ErrNotFound, shape)
	}
	name := shape + ".json"
	data, err := h.get(ctx, name)
	if err != nil {
		return Geometry{}, err
	}
	return DecodeGeometry(name, data)
}

func (h *HTTPSource) Consts(ctx context.Context) (Consts, error) {
	data, err := h.get(ctx, "consts.json")
	if err != nil {
		return nil, err
	}
	return DecodeConsts("consts.json", data)
}

// Names reads the shape list served at {BaseURL}/.
func (h *HTTPSource) Names(ctx context.Context) ([]string, error) {
	data, err := h.get(ctx, "")
	if err != nil {
		return nil, err
	}
	var names []string
	if err := json.Unmarshal(data, &names); err != nil {
		return nil, fmt.Errorf("descriptor: shape list: %w", err)
	}
	return names, nil
}
