package camera

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"sync"
	"testing"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()

	srv := httptest.NewTLSServer(handler)
	t.Cleanup(srv.Close)

	u, err := url.Parse(srv.URL)
	if err != nil {
		t.Fatal(err)
	}

	port, err := strconv.Atoi(u.Port())
	if err != nil {
		t.Fatal(err)
	}

	return New(u.Hostname(), port, testLogger())
}

func apiIndexHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		index := map[string][]apiEndpoint{
			"ver100": {
				{Path: "/ccapi/ver100/shooting/control/shutterbutton", Post: true},
				{Path: "/ccapi/ver100/deviceinformation", Get: true},
			},
			"ver110": {
				{
					Path: "/ccapi/ver100/shooting/control/shutterbutton/manual",
					Post: true,
				},
			},
		}

		_ = json.NewEncoder(w).Encode(index)
	}
}

func TestConnectPrefersManualShutter(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/ccapi/", apiIndexHandler())

	c := newTestClient(t, mux)

	err := c.Connect(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	want := "/ccapi/ver100/shooting/control/shutterbutton/manual"

	if c.shutterPath != want {
		t.Errorf("Expected %s, but got: %s", want, c.shutterPath)
	}
}

func TestConnectNoShutterEndpoint(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/ccapi/", func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string][]apiEndpoint{
			"ver100": {{Path: "/ccapi/ver100/deviceinformation", Get: true}},
		})
	})

	c := newTestClient(t, mux)

	err := c.Connect(context.Background())
	if !errors.Is(err, errNoShutterEndpoint) {
		t.Fatalf("Expected errNoShutterEndpoint, but got: %v", err)
	}
}

func TestFindShutterEndpoint(t *testing.T) {
	cases := []struct {
		name  string
		index map[string][]apiEndpoint
		want  string
	}{
		{
			name: "manual preferred over regular",
			index: map[string][]apiEndpoint{
				"ver100": {
					{Path: "/ccapi/ver100/shooting/control/shutterbutton", Post: true},
					{
						Path: "/ccapi/ver100/shooting/control/shutterbutton/manual",
						Post: true,
					},
				},
			},
			want: "/ccapi/ver100/shooting/control/shutterbutton/manual",
		},
		{
			name: "regular when no manual exists",
			index: map[string][]apiEndpoint{
				"ver100": {
					{Path: "/ccapi/ver100/shooting/control/shutterbutton", Post: true},
				},
			},
			want: "/ccapi/ver100/shooting/control/shutterbutton",
		},
		{
			name: "get-only endpoints are ignored",
			index: map[string][]apiEndpoint{
				"ver100": {
					{Path: "/ccapi/ver100/shooting/control/shutterbutton", Get: true},
				},
			},
			want: "",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := findShutterEndpoint(tc.index)
			if got != tc.want {
				t.Errorf("Expected %q, but got: %q", tc.want, got)
			}
		})
	}
}

func TestTriggerPressAndRelease(t *testing.T) {
	var (
		mu      sync.Mutex
		actions []shutterAction
	)

	mux := http.NewServeMux()
	mux.HandleFunc("/ccapi/", apiIndexHandler())
	mux.HandleFunc(
		"/ccapi/ver100/shooting/control/shutterbutton/manual",
		func(w http.ResponseWriter, r *http.Request) {
			var a shutterAction

			_ = json.NewDecoder(r.Body).Decode(&a)

			mu.Lock()
			actions = append(actions, a)
			mu.Unlock()

			w.WriteHeader(http.StatusOK)
		},
	)

	c := newTestClient(t, mux)

	err := c.Trigger(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	mu.Lock()
	defer mu.Unlock()

	if len(actions) != 2 {
		t.Fatalf("Expected press and release, but got %d actions", len(actions))
	}

	if actions[0].Action != "full_press" || actions[0].AF {
		t.Errorf("Expected a full_press without autofocus, but got: %+v", actions[0])
	}

	if actions[1].Action != "release" {
		t.Errorf("Expected a release, but got: %+v", actions[1])
	}
}

func TestTriggerRetriesWithAutofocus(t *testing.T) {
	var (
		mu      sync.Mutex
		actions []shutterAction
	)

	mux := http.NewServeMux()
	mux.HandleFunc("/ccapi/", apiIndexHandler())
	mux.HandleFunc(
		"/ccapi/ver100/shooting/control/shutterbutton/manual",
		func(w http.ResponseWriter, r *http.Request) {
			var a shutterAction

			_ = json.NewDecoder(r.Body).Decode(&a)

			mu.Lock()
			actions = append(actions, a)
			count := len(actions)
			mu.Unlock()

			// fail the first press so the autofocus retry kicks in
			if count == 1 {
				w.WriteHeader(http.StatusBadRequest)
				return
			}

			w.WriteHeader(http.StatusOK)
		},
	)

	c := newTestClient(t, mux)

	err := c.Trigger(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	mu.Lock()
	defer mu.Unlock()

	if len(actions) != 3 {
		t.Fatalf("Expected 3 actions, but got: %d", len(actions))
	}

	if !actions[1].AF || actions[1].Action != "full_press" {
		t.Errorf(
			"Expected the retry to enable autofocus, but got: %+v",
			actions[1],
		)
	}
}

func TestMetadata(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc(
		"/ccapi/ver100/deviceinformation",
		func(w http.ResponseWriter, _ *http.Request) {
			_ = json.NewEncoder(w).Encode(deviceInformation{
				ProductName: "Canon EOS R6",
			})
		},
	)
	mux.HandleFunc(
		"/ccapi/ver100/shooting/settings",
		func(w http.ResponseWriter, _ *http.Request) {
			_ = json.NewEncoder(w).Encode(shootingSettings{
				Av:  settingValue{Value: "f8.0"},
				Tv:  settingValue{Value: "1/60"},
				ISO: settingValue{Value: "100"},
			})
		},
	)

	c := newTestClient(t, mux)

	meta, err := c.Metadata(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	if meta.Model != "Canon EOS R6" {
		t.Errorf("Expected the camera model, but got: %q", meta.Model)
	}

	if meta.Av != "f8.0" || meta.Tv != "1/60" || meta.ISO != "100" {
		t.Errorf("Expected the exposure settings, but got: %+v", meta)
	}
}

func TestPollEvents(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc(
		"/ccapi/ver110/event/polling",
		func(w http.ResponseWriter, _ *http.Request) {
			_ = json.NewEncoder(w).Encode(eventResponse{
				AddedContents: []string{"100CANON/IMG_0042.JPG"},
			})
		},
	)

	c := newTestClient(t, mux)

	res, err := c.PollEvents(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	if len(res.AddedFiles) != 1 || res.AddedFiles[0] != "100CANON/IMG_0042.JPG" {
		t.Errorf("Expected the added file, but got: %+v", res.AddedFiles)
	}
}

func TestBusyStatusMapsToErrCameraBusy(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc(
		"/ccapi/ver110/event/polling",
		func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		},
	)

	c := newTestClient(t, mux)

	_, err := c.PollEvents(context.Background())
	if !errors.Is(err, ErrCameraBusy) {
		t.Fatalf("Expected ErrCameraBusy, but got: %v", err)
	}
}

func TestTransportFailureMapsToErrDisconnected(t *testing.T) {
	srv := httptest.NewTLSServer(http.NotFoundHandler())

	u, err := url.Parse(srv.URL)
	if err != nil {
		t.Fatal(err)
	}

	port, _ := strconv.Atoi(u.Port())
	c := New(u.Hostname(), port, testLogger())

	// a closed server refuses the connection
	srv.Close()

	_, err = c.PollEvents(context.Background())
	if !errors.Is(err, ErrDisconnected) {
		t.Fatalf("Expected ErrDisconnected, but got: %v", err)
	}
}

func TestConnectedFalseWhenUnreachable(t *testing.T) {
	srv := httptest.NewTLSServer(http.NotFoundHandler())

	u, _ := url.Parse(srv.URL)
	port, _ := strconv.Atoi(u.Port())
	c := New(u.Hostname(), port, testLogger())

	srv.Close()

	if c.Connected(context.Background()) {
		t.Error("Expected Connected to report false for a dead server")
	}
}
