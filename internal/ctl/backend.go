package ctl

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/okian/parley/internal/adapters/export"
	"github.com/okian/parley/internal/adapters/repository"
	service "github.com/okian/parley/internal/app"
	"github.com/okian/parley/pkg/logger"
)

// Backend answers CLI queries. Values are JSON encodable.
type Backend interface {
	State(ctx context.Context, eventID string) (any, error)
	Report(ctx context.Context, eventID string, round int) (any, error)
	Workbook(ctx context.Context, eventID string, round int, w io.Writer) error
	Leaderboard(ctx context.Context, eventID string) (any, error)
	CaseRange(ctx context.Context, caseID string) (any, error)
	Close(ctx context.Context)
}

// LocalBackend scores a fixture in process.
type LocalBackend struct {
	svc   *service.Service
	store *repository.MemoryStore
}

// NewLocalBackend loads the fixture at path and scores it as of now.
func NewLocalBackend(ctx context.Context, path string, now func() time.Time, opts ...service.Option) (*LocalBackend, error) {
	f, err := repository.LoadFixture(path)
	if err != nil {
		return nil, err
	}
	store, err := repository.NewMemoryStore(repository.WithFixture(f))
	if err != nil {
		return nil, err
	}
	opts = append([]service.Option{
		service.WithStore(store),
		service.WithClock(now),
		service.WithLogger(logger.Named("parleyctl")),
	}, opts...)
	svc := service.New(opts...)
	if err := svc.Start(ctx); err != nil {
		return nil, err
	}
	return &LocalBackend{svc: svc, store: store}, nil
}

func (b *LocalBackend) State(ctx context.Context, eventID string) (any, error) {
	return b.svc.State(ctx, eventID)
}

func (b *LocalBackend) Report(ctx context.Context, eventID string, round int) (any, error) {
	return b.svc.Report(ctx, eventID, round)
}

func (b *LocalBackend) Workbook(ctx context.Context, eventID string, round int, w io.Writer) error {
	rep, err := b.svc.Report(ctx, eventID, round)
	if err != nil {
		return err
	}
	return export.WriteXLSX(w, rep)
}

func (b *LocalBackend) Leaderboard(ctx context.Context, eventID string) (any, error) {
	return b.svc.Leaderboard(ctx, eventID)
}

func (b *LocalBackend) CaseRange(ctx context.Context, caseID string) (any, error) {
	return b.svc.CaseRange(ctx, caseID)
}

func (b *LocalBackend) Close(ctx context.Context) { b.svc.Stop(ctx) }

// RemoteBackend reads from a running parley server.
type RemoteBackend struct {
	baseURL string
	client  *http.Client
}

// NewRemoteBackend targets the server at baseURL.
func NewRemoteBackend(baseURL string, timeout time.Duration) *RemoteBackend {
	return &RemoteBackend{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

func (b *RemoteBackend) State(ctx context.Context, eventID string) (any, error) {
	return b.getJSON(ctx, "/events/"+url.PathEscape(eventID)+"/state")
}

func (b *RemoteBackend) Report(ctx context.Context, eventID string, round int) (any, error) {
	return b.getJSON(ctx, roundPath(eventID, round, "report"))
}

func (b *RemoteBackend) Workbook(ctx context.Context, eventID string, round int, w io.Writer) error {
	resp, err := b.get(ctx, roundPath(eventID, round, "report.xlsx"))
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if _, err := io.Copy(w, resp.Body); err != nil {
		return fmt.Errorf("read workbook: %w", err)
	}
	return nil
}

func (b *RemoteBackend) Leaderboard(ctx context.Context, eventID string) (any, error) {
	return b.getJSON(ctx, "/events/"+url.PathEscape(eventID)+"/leaderboard")
}

func (b *RemoteBackend) CaseRange(ctx context.Context, caseID string) (any, error) {
	return b.getJSON(ctx, "/cases/"+url.PathEscape(caseID)+"/range")
}

func (b *RemoteBackend) Close(context.Context) { b.client.CloseIdleConnections() }

func roundPath(eventID string, round int, leaf string) string {
	return "/events/" + url.PathEscape(eventID) + "/rounds/" + strconv.Itoa(round) + "/" + leaf
}

// get performs a GET and turns non-2xx answers into a RemoteError.
func (b *RemoteBackend) get(ctx context.Context, path string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, b.baseURL+path, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	resp, err := b.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRemoteRead, err)
	}
	if resp.StatusCode/100 == 2 {
		return resp, nil
	}
	defer resp.Body.Close()
	rerr := &RemoteError{Status: resp.StatusCode}
	body, _ := io.ReadAll(resp.Body)
	if err := json.Unmarshal(body, rerr); err != nil || rerr.Message == "" {
		rerr.Message = http.StatusText(resp.StatusCode)
	}
	return nil, rerr
}

func (b *RemoteBackend) getJSON(ctx context.Context, path string) (json.RawMessage, error) {
	resp, err := b.get(ctx, path)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRemoteRead, err)
	}
	return json.RawMessage(body), nil
}
