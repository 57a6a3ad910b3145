package echo_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	app "github.com/mohammadpnp/household-import/internal/application/importer"
	domain "github.com/mohammadpnp/household-import/internal/domain/household"
	httpecho "github.com/mohammadpnp/household-import/internal/interfaces/http/echo"
)

type fakeProgressService struct {
	current   domain.ImportProgress
	err       error
	cancelErr error
	dismissed string
}

func (f *fakeProgressService) Current(ctx context.Context, userID string) (domain.ImportProgress, error) {
	if f.err != nil {
		return domain.ImportProgress{}, f.err
	}
	return f.current, nil
}

func (f *fakeProgressService) Dismiss(ctx context.Context, userID string) error {
	f.dismissed = userID
	return nil
}

func (f *fakeProgressService) Cancel(ctx context.Context, userID string) error {
	return f.cancelErr
}

type fakeListRuns struct {
	got app.ListRunsInput
}

func (f *fakeListRuns) Execute(ctx context.Context, in app.ListRunsInput) ([]app.RunOutput, error) {
	f.got = in
	return []app.RunOutput{{RunID: "run-1", Status: "completed"}}, nil
}

type fakeHub struct {
	served chan *domain.ImportProgress
}

func (f *fakeHub) Serve(userID string, conn *websocket.Conn, initial *domain.ImportProgress) {
	if initial != nil {
		_ = conn.WriteJSON(map[string]any{"event": domain.EventImportProgress, "data": initial})
	}
	f.served <- initial
	_ = conn.Close()
}

func newProgressServer(service *fakeProgressService, runs *fakeListRuns, hub *fakeHub) *echo.Echo {
	e := echo.New()
	httpecho.RegisterRoutes(e, httpecho.Handlers{
		Progress: httpecho.NewProgressHandler(service, runs, hub, nil),
	})
	return e
}

func request(e *echo.Echo, method, path, user string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	req.Header.Set(httpecho.HeaderUserID, user)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestProgressHandlerCurrent(t *testing.T) {
	t.Parallel()

	service := &fakeProgressService{current: domain.ImportProgress{RunID: "run-1", ProcessedRecords: 3, TotalRecords: 4, Percentage: 75}}
	e := newProgressServer(service, &fakeListRuns{}, &fakeHub{})

	rec := request(e, http.MethodGet, "/api/v1/imports/households/progress", "user-1")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var got struct {
		Data domain.ImportProgress `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("unexpected json: %v", err)
	}
	if got.Data.Percentage != 75 || got.Data.ProcessedRecords != 3 {
		t.Fatalf("unexpected progress: %#v", got.Data)
	}
}

func TestProgressHandlerCurrentNotFound(t *testing.T) {
	t.Parallel()

	e := newProgressServer(&fakeProgressService{err: app.ErrProgressMissing}, &fakeListRuns{}, &fakeHub{})

	rec := request(e, http.MethodGet, "/api/v1/imports/households/progress", "user-1")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestProgressHandlerDismiss(t *testing.T) {
	t.Parallel()

	service := &fakeProgressService{}
	e := newProgressServer(service, &fakeListRuns{}, &fakeHub{})

	rec := request(e, http.MethodDelete, "/api/v1/imports/households/progress", "user-7")
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
	if service.dismissed != "user-7" {
		t.Fatalf("expected user-7 to be dismissed, got %q", service.dismissed)
	}
}

func TestProgressHandlerCancel(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		err  error
		want int
	}{
		{name: "running", want: http.StatusAccepted},
		{name: "nothing running", err: app.ErrRunNotFound, want: http.StatusNotFound},
		{name: "failure", err: errors.New("boom"), want: http.StatusInternalServerError},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			e := newProgressServer(&fakeProgressService{cancelErr: tc.err}, &fakeListRuns{}, &fakeHub{})
			rec := request(e, http.MethodPost, "/api/v1/imports/households/cancel", "user-1")
			if rec.Code != tc.want {
				t.Fatalf("expected %d, got %d", tc.want, rec.Code)
			}
		})
	}
}

func TestProgressHandlerRuns(t *testing.T) {
	t.Parallel()

	runs := &fakeListRuns{}
	e := newProgressServer(&fakeProgressService{}, runs, &fakeHub{})

	rec := request(e, http.MethodGet, "/api/v1/imports/households/runs?limit=5", "user-1")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if runs.got.Limit != 5 || runs.got.UserID != "user-1" {
		t.Fatalf("unexpected input: %#v", runs.got)
	}
}

func TestProgressHandlerStreamSendsSnapshot(t *testing.T) {
	t.Parallel()

	service := &fakeProgressService{current: domain.ImportProgress{RunID: "run-1", ProcessedRecords: 1}}
	hub := &fakeHub{served: make(chan *domain.ImportProgress, 1)}
	srv := httptest.NewServer(newProgressServer(service, &fakeListRuns{}, hub))
	defer srv.Close()

	header := http.Header{}
	header.Set(httpecho.HeaderUserID, "user-1")
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/v1/imports/households/progress/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, header)
	if err != nil {
		t.Fatalf("dial failed: %v", err)
	}
	defer conn.Close()

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var frame struct {
		Event string                `json:"event"`
		Data  domain.ImportProgress `json:"data"`
	}
	if err := conn.ReadJSON(&frame); err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if frame.Event != domain.EventImportProgress || frame.Data.RunID != "run-1" {
		t.Fatalf("unexpected frame: %#v", frame)
	}

	select {
	case initial := <-hub.served:
		if initial == nil {
			t.Fatal("expected snapshot to be handed to the hub")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("hub was not called")
	}
}
