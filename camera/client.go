// Package camera speaks CCAPI to a Canon camera over HTTPS and provides
// the completion waiter used by the capture loop.
package camera

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/ayoisaiah/lapse/internal/models"
)

const (
	connectTimeout  = 5 * time.Second
	shutterTimeout  = 5 * time.Second
	metadataTimeout = 5 * time.Second

	// pressSettle is the pause between shutter press and release.
	pressSettle = 500 * time.Millisecond
)

// Controller is the camera surface the capture session depends on.
type Controller interface {
	EventFeed

	// Trigger releases the shutter once (press + release).
	Trigger(ctx context.Context) error
	// Connected reports whether the camera answers on its API root.
	Connected(ctx context.Context) bool
	// Metadata snapshots the camera model and exposure settings.
	Metadata(ctx context.Context) (models.CameraMetadata, error)
}

// Client is a CCAPI HTTP client.
type Client struct {
	baseURL     string
	httpClient  *http.Client
	shutterPath string
	log         *slog.Logger
}

type shutterAction struct {
	AF     bool   `json:"af"`
	Action string `json:"action"`
}

// apiEndpoint is one entry in the CCAPI index.
type apiEndpoint struct {
	Path string `json:"path"`
	Get  bool   `json:"get"`
	Post bool   `json:"post"`
}

// New returns a client for the camera at the given address. The camera
// serves a self-signed certificate, so verification is disabled.
func New(ip string, port int, logger *slog.Logger) *Client {
	return &Client{
		baseURL: fmt.Sprintf("https://%s:%d", ip, port),
		httpClient: &http.Client{
			Transport: &http.Transport{
				TLSClientConfig: &tls.Config{
					//nolint:gosec // camera certs are always self-signed
					InsecureSkipVerify: true,
				},
			},
		},
		log: logger,
	}
}

// Connect fetches the CCAPI index and locates the shutter button
// endpoint, preferring the manual variant.
func (c *Client) Connect(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	body, err := c.get(ctx, "/ccapi/")
	if err != nil {
		return err
	}

	var index map[string][]apiEndpoint

	err = json.Unmarshal(body, &index)
	if err != nil {
		return err
	}

	c.shutterPath = findShutterEndpoint(index)
	if c.shutterPath == "" {
		return errNoShutterEndpoint
	}

	c.log.Info("connected to camera",
		slog.String("base_url", c.baseURL),
		slog.String("shutter_path", c.shutterPath),
	)

	return nil
}

// findShutterEndpoint picks the shutter control path from the CCAPI
// index. The manual endpoint skips autofocus handling and is preferred.
func findShutterEndpoint(index map[string][]apiEndpoint) string {
	var manual, regular string

	for _, endpoints := range index {
		for _, e := range endpoints {
			if !e.Post || !strings.Contains(e.Path, "shutterbutton") {
				continue
			}

			if strings.Contains(e.Path, "manual") {
				manual = e.Path
			} else if regular == "" {
				regular = e.Path
			}
		}
	}

	if manual != "" {
		return manual
	}

	return regular
}

// Connected reports whether the camera answers on its API root.
func (c *Client) Connected(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	_, err := c.get(ctx, "/ccapi/")

	return err == nil
}

// Trigger takes a single photo using the press/release sequence. A
// failed press is retried with autofocus enabled, and a failed release
// attempts stuck-shutter recovery so the next shot is not blocked.
func (c *Client) Trigger(ctx context.Context) error {
	if c.shutterPath == "" {
		err := c.Connect(ctx)
		if err != nil {
			return err
		}
	}

	ctx, cancel := context.WithTimeout(ctx, shutterTimeout+pressSettle)
	defer cancel()

	err := c.postShutter(ctx, shutterAction{AF: false, Action: "full_press"})
	if err != nil {
		c.log.Warn("shutter press failed, retrying with autofocus",
			slog.Any("error", err),
		)

		err = c.postShutter(ctx, shutterAction{AF: true, Action: "full_press"})
		if err != nil {
			return err
		}
	}

	time.Sleep(pressSettle)

	err = c.postShutter(ctx, shutterAction{AF: false, Action: "release"})
	if err != nil {
		c.log.Warn("shutter release failed, attempting recovery",
			slog.Any("error", err),
		)

		return c.releaseStuckShutter(ctx)
	}

	return nil
}

// releaseStuckShutter tries the known release payload variants until one
// succeeds.
func (c *Client) releaseStuckShutter(ctx context.Context) error {
	payloads := []shutterAction{
		{AF: false, Action: "release"},
		{Action: "release"},
	}

	for _, p := range payloads {
		if err := c.postShutter(ctx, p); err == nil {
			return nil
		}
	}

	return errStuckShutter
}

func (c *Client) postShutter(ctx context.Context, action shutterAction) error {
	payload, err := json.Marshal(action)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		c.baseURL+c.shutterPath,
		bytes.NewReader(payload),
	)
	if err != nil {
		return err
	}

	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return classifyTransportErr(err)
	}

	defer resp.Body.Close()

	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		if resp.StatusCode == http.StatusServiceUnavailable {
			return ErrCameraBusy
		}

		return errShutterPress.Fmt(resp.StatusCode)
	}

	return nil
}

type shootingSettings struct {
	Av  settingValue `json:"av"`
	Tv  settingValue `json:"tv"`
	ISO settingValue `json:"iso"`
}

type settingValue struct {
	Value string `json:"value"`
}

type deviceInformation struct {
	ProductName string `json:"productname"`
}

// Metadata snapshots the camera model and exposure settings for report
// enrichment. Partial data is returned on a partial failure.
func (c *Client) Metadata(ctx context.Context) (models.CameraMetadata, error) {
	ctx, cancel := context.WithTimeout(ctx, metadataTimeout)
	defer cancel()

	var meta models.CameraMetadata

	body, err := c.get(ctx, "/ccapi/ver100/deviceinformation")
	if err != nil {
		return meta, err
	}

	var info deviceInformation

	err = json.Unmarshal(body, &info)
	if err != nil {
		return meta, err
	}

	meta.Model = info.ProductName

	body, err = c.get(ctx, "/ccapi/ver100/shooting/settings")
	if err != nil {
		return meta, err
	}

	var settings shootingSettings

	err = json.Unmarshal(body, &settings)
	if err != nil {
		return meta, err
	}

	meta.Av = settings.Av.Value
	meta.Tv = settings.Tv.Value
	meta.ISO = settings.ISO.Value

	return meta, nil
}

type eventResponse struct {
	AddedContents []string `json:"addedcontents"`
}

// PollEvents issues one long poll against the camera event feed. The
// camera holds the request for ~30 seconds and answers early when an
// event (such as a finished file) occurs; an empty response means the
// camera-side timeout expired without events.
func (c *Client) PollEvents(ctx context.Context) (*PollResult, error) {
	body, err := c.get(ctx, "/ccapi/ver110/event/polling?timeout=long")
	if err != nil {
		return nil, err
	}

	var events eventResponse

	err = json.Unmarshal(body, &events)
	if err != nil {
		return nil, err
	}

	return &PollResult{AddedFiles: events.AddedContents}, nil
}

func (c *Client) get(ctx context.Context, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodGet,
		c.baseURL+path,
		nil,
	)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, classifyTransportErr(err)
	}

	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, classifyTransportErr(err)
	}

	switch {
	case resp.StatusCode == http.StatusOK:
		return body, nil
	case resp.StatusCode == http.StatusServiceUnavailable:
		return nil, ErrCameraBusy
	default:
		return nil, errUnexpectedStatus.Fmt(resp.StatusCode)
	}
}

// classifyTransportErr maps transport failures to ErrDisconnected while
// leaving context cancellation untouched so callers can tell a
// cancelled wait from a dead link.
func classifyTransportErr(err error) error {
	if ctxErr := contextCause(err); ctxErr != nil {
		return ctxErr
	}

	return fmt.Errorf("%w: %w", ErrDisconnected, err)
}

func contextCause(err error) error {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return context.DeadlineExceeded
	case errors.Is(err, context.Canceled):
		return context.Canceled
	default:
		return nil
	}
}
