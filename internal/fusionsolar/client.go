package fusionsolar

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"
)

const (
	// DefaultBaseURL is the European northbound endpoint.
	DefaultBaseURL = "https://eu5.fusionsolar.huawei.com/"

	apiPrefix = "thirdData/"

	// tokenHeader carries the session token on every authenticated call.
	tokenHeader = "XSRF-TOKEN"

	defaultHTTPTimeout = 30 * time.Second
)

// Config defines runtime configuration for the northbound client.
type Config struct {
	Username string
	Password string

	// BaseURL overrides DefaultBaseURL, mainly for tests.
	BaseURL string
}

// Client talks to the FusionSolar northbound interface.
//
// A Client is not safe for concurrent use: the bridge runs a single
// linear pipeline per invocation and the session token is set once by
// Login.
type Client struct {
	baseURL  string
	username string
	password string
	http     *http.Client
	token    string
}

// NewClient constructs a northbound client. No network activity
// happens until Login.
func NewClient(cfg Config) *Client {
	baseURL := strings.TrimSpace(cfg.BaseURL)
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	return &Client{
		baseURL:  baseURL,
		username: cfg.Username,
		password: cfg.Password,
		http:     &http.Client{Timeout: defaultHTTPTimeout},
	}
}

// Login acquires a northbound session. The session token arrives as a
// response header and is attached to every subsequent call.
func (c *Client) Login(ctx context.Context) error {
	body := map[string]string{
		"userName":   c.username,
		"systemCode": c.password,
	}
	resp, err := c.post(ctx, "login", body)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrLoginFailed, err)
	}
	defer resp.Body.Close()

	if err := decodeEnvelope(resp.Body, nil); err != nil {
		return fmt.Errorf("%w: %w", ErrLoginFailed, err)
	}

	token := resp.Header.Get(tokenHeader)
	if token == "" {
		return fmt.Errorf("%w: no session token in response", ErrLoginFailed)
	}
	c.token = token
	return nil
}

// Logout releases the session. Safe to call when Login never
// succeeded; the token is cleared either way.
func (c *Client) Logout(ctx context.Context) error {
	if c.token == "" {
		return nil
	}
	token := c.token
	c.token = ""

	resp, err := c.post(ctx, "logout", map[string]string{"xsrfToken": token})
	if err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	defer resp.Body.Close()
	return decodeEnvelope(resp.Body, nil)
}

// ListPlants fetches plant identities (code and name only, no devices).
func (c *Client) ListPlants(ctx context.Context) ([]*Plant, error) {
	var data []struct {
		StationCode string `json:"stationCode"`
		StationName string `json:"stationName"`
	}
	if err := c.postJSON(ctx, "getStationList", map[string]any{}, &data); err != nil {
		return nil, fmt.Errorf("list plants: %w", err)
	}

	plants := make([]*Plant, 0, len(data))
	for _, station := range data {
		plants = append(plants, &Plant{
			Code: station.StationCode,
			Name: station.StationName,
		})
	}
	return plants, nil
}

// ListDevices fetches the device list for all given plants and
// populates each plant's device collection in place. Devices are
// classified by capability from their northbound type ID.
func (c *Client) ListDevices(ctx context.Context, plants []*Plant) error {
	if len(plants) == 0 {
		return nil
	}

	byCode := make(map[string]*Plant, len(plants))
	codes := make([]string, 0, len(plants))
	for _, plant := range plants {
		byCode[plant.Code] = plant
		codes = append(codes, plant.Code)
	}

	var data []struct {
		ID          int64  `json:"id"`
		DevName     string `json:"devName"`
		DevTypeID   int64  `json:"devTypeId"`
		StationCode string `json:"stationCode"`
	}
	body := map[string]any{"stationCodes": strings.Join(codes, ",")}
	if err := c.postJSON(ctx, "getDevList", body, &data); err != nil {
		return fmt.Errorf("list devices: %w", err)
	}

	for _, entry := range data {
		plant, ok := byCode[entry.StationCode]
		if !ok {
			continue
		}
		plant.AddDevice(&Device{
			ID:           entry.ID,
			Name:         entry.DevName,
			TypeID:       entry.DevTypeID,
			Capabilities: CapabilitiesForType(entry.DevTypeID),
		})
	}
	return nil
}

// PlantRealtime fetches current plant-level readings in one bulk call.
func (c *Client) PlantRealtime(ctx context.Context, plants map[string]*Plant) ([]PlantReading, error) {
	if len(plants) == 0 {
		return nil, nil
	}

	codes := make([]string, 0, len(plants))
	for code := range plants {
		codes = append(codes, code)
	}
	sort.Strings(codes)

	var data []struct {
		StationCode string         `json:"stationCode"`
		DataItemMap map[string]any `json:"dataItemMap"`
	}
	body := map[string]any{"stationCodes": strings.Join(codes, ",")}
	if err := c.postJSON(ctx, "getStationRealKpi", body, &data); err != nil {
		return nil, fmt.Errorf("plant realtime: %w", err)
	}

	readings := make([]PlantReading, 0, len(data))
	for _, entry := range data {
		plant, ok := plants[entry.StationCode]
		if !ok {
			continue
		}
		readings = append(readings, PlantReading{Plant: plant, Items: entry.DataItemMap})
	}
	return readings, nil
}

// DeviceRealtime fetches current device-level readings. The northbound
// interface requires one call per device type, so devices are grouped
// internally; the result is returned flat.
func (c *Client) DeviceRealtime(ctx context.Context, devices map[int64]*Device) ([]DeviceReading, error) {
	byType := make(map[int64][]*Device)
	for _, device := range devices {
		byType[device.TypeID] = append(byType[device.TypeID], device)
	}

	typeIDs := make([]int64, 0, len(byType))
	for typeID := range byType {
		typeIDs = append(typeIDs, typeID)
	}
	sort.Slice(typeIDs, func(i, j int) bool { return typeIDs[i] < typeIDs[j] })

	var readings []DeviceReading
	for _, typeID := range typeIDs {
		group := byType[typeID]
		sort.Slice(group, func(i, j int) bool { return group[i].ID < group[j].ID })

		ids := make([]string, 0, len(group))
		byID := make(map[int64]*Device, len(group))
		for _, device := range group {
			ids = append(ids, strconv.FormatInt(device.ID, 10))
			byID[device.ID] = device
		}

		var data []struct {
			DevID       int64          `json:"devId"`
			DataItemMap map[string]any `json:"dataItemMap"`
		}
		body := map[string]any{
			"devIds":    strings.Join(ids, ","),
			"devTypeId": typeID,
		}
		if err := c.postJSON(ctx, "getDevRealKpi", body, &data); err != nil {
			return nil, fmt.Errorf("device realtime (type %d): %w", typeID, err)
		}

		for _, entry := range data {
			device, ok := byID[entry.DevID]
			if !ok {
				continue
			}
			readings = append(readings, DeviceReading{Device: device, Items: entry.DataItemMap})
		}
	}
	return readings, nil
}

// postJSON issues an authenticated call and decodes the envelope data.
func (c *Client) postJSON(ctx context.Context, path string, body any, out any) error {
	if c.token == "" {
		return ErrNotLoggedIn
	}
	resp, err := c.post(ctx, path, body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	return decodeEnvelope(resp.Body, out)
}

func (c *Client) post(ctx context.Context, path string, body any) (*http.Response, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}

	endpoint := c.baseURL + apiPrefix + strings.TrimPrefix(path, "/")
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set(tokenHeader, c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		return nil, fmt.Errorf("fusionsolar http %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return resp, nil
}

// decodeEnvelope decodes the northbound response wrapper and unwraps
// its data payload into out (which may be nil).
func decodeEnvelope(r io.Reader, out any) error {
	var wrapper struct {
		Success  bool            `json:"success"`
		FailCode int             `json:"failCode"`
		Message  string          `json:"message"`
		Data     json.RawMessage `json:"data"`
	}
	if err := json.NewDecoder(r).Decode(&wrapper); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	if wrapper.FailCode != 0 || !wrapper.Success {
		return APIError{Code: wrapper.FailCode, Msg: wrapper.Message}
	}
	if out == nil || len(wrapper.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(wrapper.Data, out); err != nil {
		return fmt.Errorf("decode data: %w", err)
	}
	return nil
}
