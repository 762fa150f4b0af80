package stores

import (
	"context"
	"net/url"
	"sync"
	"time"

	"github.com/plant-decor/KLTN-PlantDecor-Mobile/clients"
	"github.com/plant-decor/KLTN-PlantDecor-Mobile/common/logger"
	"github.com/plant-decor/KLTN-PlantDecor-Mobile/models"
	"go.uber.org/zap"
)

const (
	msgDesignFailed       = "Could not generate the design. Please try again."
	msgDesignResultFailed = "Could not load the design result"
)

// DesignState is the view of the design flow.
type DesignState struct {
	Current      *models.DesignResult  `json:"currentResult,omitempty"`
	History      []models.DesignResult `json:"history"`
	IsGenerating bool                  `json:"isGenerating"`
	Error        string                `json:"error,omitempty"`
}

// DesignStore tracks design generation requests and their results, newest
// first. Concurrent generations are not blocked; IsGenerating stays set until
// the last one finishes.
type DesignStore struct {
	mu       sync.Mutex
	state    DesignState
	inFlight int
	api      *clients.APIClient
	timeout  time.Duration
	log      *zap.Logger
}

// NewDesignStore creates a store whose uploads use timeout instead of the
// client default.
func NewDesignStore(api *clients.APIClient, timeout time.Duration, log *zap.Logger) *DesignStore {
	return &DesignStore{
		api:     api,
		timeout: timeout,
		log:     log,
	}
}

// Snapshot returns a copy of the state safe to read without the lock.
func (d *DesignStore) Snapshot() DesignState {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := d.state
	out.History = append([]models.DesignResult(nil), d.state.History...)
	if d.state.Current != nil {
		cur := *d.state.Current
		out.Current = &cur
	}
	return out
}

// ValidateDesignRequest checks the request against its validate tags.
func ValidateDesignRequest(req models.DesignRequest) error {
	return clients.ValidateStruct(req)
}

// GenerateDesign uploads the room photo with the extended design timeout.
// Invalid requests are rejected before any network call.
func (d *DesignStore) GenerateDesign(ctx context.Context, req models.DesignRequest) (*models.DesignResult, error) {
	if err := ValidateDesignRequest(req); err != nil {
		d.mu.Lock()
		d.state.Error = err.Error()
		d.mu.Unlock()
		return nil, err
	}

	d.mu.Lock()
	d.inFlight++
	d.state.IsGenerating = true
	d.state.Error = ""
	d.mu.Unlock()

	fileName := req.RoomImage.FileName
	if fileName == "" {
		fileName = "room.jpg"
	}
	contentType := req.RoomImage.ContentType
	if contentType == "" {
		contentType = "image/jpeg"
	}

	var result models.DesignResult
	call, err := clients.MultipartRequest("/ai/design",
		clients.FormFile{Field: "roomImage", FileName: fileName, ContentType: contentType, Data: req.RoomImage.Data},
		clients.FormField{Name: "roomType", Value: string(req.RoomType)},
		clients.FormField{Name: "style", Value: string(req.Style)},
		clients.FormField{Name: "budget", Value: string(req.Budget)},
		clients.FormField{Name: "preferences", Value: req.Preferences},
	)
	if err == nil {
		call.Timeout = d.timeout
		err = d.api.Do(ctx, call, &result)
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	d.inFlight--
	d.state.IsGenerating = d.inFlight > 0
	if err != nil {
		d.state.Error = clients.UserMessage(err, msgDesignFailed)
		return nil, err
	}
	d.state.Current = &result
	d.state.History = append([]models.DesignResult{result}, d.state.History...)
	out := result
	return &out, nil
}

// FetchDesignResult loads one design and makes it current.
func (d *DesignStore) FetchDesignResult(ctx context.Context, id string) error {
	var result models.DesignResult
	if err := d.api.Get(ctx, "/ai/design/"+url.PathEscape(id), nil, &result); err != nil {
		d.mu.Lock()
		d.state.Error = clients.UserMessage(err, msgDesignResultFailed)
		d.mu.Unlock()
		return err
	}
	d.mu.Lock()
	d.state.Current = &result
	d.mu.Unlock()
	return nil
}

// FetchHistory is best-effort: failures are logged and the history is kept.
func (d *DesignStore) FetchHistory(ctx context.Context) {
	var history []models.DesignResult
	if err := d.api.Get(ctx, "/ai/design", nil, &history); err != nil {
		logger.For(ctx, d.log).Warn("failed to fetch design history", zap.Error(err))
		return
	}
	d.mu.Lock()
	d.state.History = history
	d.mu.Unlock()
}

// ClearCurrentResult drops the current result; history is kept.
func (d *DesignStore) ClearCurrentResult() {
	d.mu.Lock()
	d.state.Current = nil
	d.mu.Unlock()
}

// ClearError drops the last failure message.
func (d *DesignStore) ClearError() {
	d.mu.Lock()
	d.state.Error = ""
	d.mu.Unlock()
}
