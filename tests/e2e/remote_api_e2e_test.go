//go:build e2e

package e2e

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"os"
	"strings"
	"testing"
	"time"
)

func TestRemoteAPI_MainEndpoints(t *testing.T) {
	baseURL := strings.TrimRight(envOr("E2E_BASE_URL", "http://localhost:8080"), "/")
	definitionID := envOr("E2E_DEFINITION_ID", "demo")
	mapID := "e2e-" + time.Now().UTC().Format("20060102150405")
	client := &http.Client{Timeout: 20 * time.Second}
	mapURL := baseURL + "/api/maps/" + mapID

	t.Run("unknown map is 404", func(t *testing.T) {
		status, body := mustJSON(t, client, http.MethodGet, baseURL+"/api/maps/does-not-exist", nil)
		if status != http.StatusNotFound {
			t.Fatalf("expected 404, got %d body=%s", status, string(body))
		}
		if code := errorCode(body); code != "map_not_found" {
			t.Fatalf("expected map_not_found, got %q", code)
		}
	})

	t.Run("load map", func(t *testing.T) {
		status, body := mustJSON(t, client, http.MethodPost, baseURL+"/api/maps", map[string]any{
			"map_id":        mapID,
			"definition_id": definitionID,
		})
		if status != http.StatusCreated {
			t.Fatalf("load status=%d body=%s", status, string(body))
		}
		var summary map[string]any
		if err := json.Unmarshal(body, &summary); err != nil {
			t.Fatalf("unmarshal summary: %v body=%s", err, string(body))
		}
		if summary["map_id"] != mapID {
			t.Fatalf("unexpected summary: %v", summary)
		}

		status, body = mustJSON(t, client, http.MethodPost, baseURL+"/api/maps", map[string]any{
			"map_id":        mapID,
			"definition_id": definitionID,
		})
		if status != http.StatusConflict {
			t.Fatalf("second load status=%d body=%s", status, string(body))
		}
	})

	t.Run("tiles and region", func(t *testing.T) {
		status, body := mustJSON(t, client, http.MethodGet, mapURL+"/tiles?x=1&y=3", nil)
		if status != http.StatusOK {
			t.Fatalf("tile status=%d body=%s", status, string(body))
		}
		var tile map[string]any
		if err := json.Unmarshal(body, &tile); err != nil {
			t.Fatalf("unmarshal tile: %v body=%s", err, string(body))
		}
		if tile["name"] != "gold" || tile["width"] != float64(2) {
			t.Fatalf("expected the 2x2 gold tile, got %v", tile)
		}

		status, body = mustJSON(t, client, http.MethodGet, mapURL+"/tiles?x=7&y=0", nil)
		if status != http.StatusNotFound || errorCode(body) != "no_tile" {
			t.Fatalf("void cell: status=%d body=%s", status, string(body))
		}

		status, body = mustJSON(t, client, http.MethodGet, mapURL+"/region?x=0&y=0&w=3&h=3", nil)
		if status != http.StatusOK {
			t.Fatalf("region status=%d body=%s", status, string(body))
		}
		var region map[string]any
		if err := json.Unmarshal(body, &region); err != nil {
			t.Fatalf("unmarshal region: %v body=%s", err, string(body))
		}
		if len(asSlice(region["tiles"])) == 0 {
			t.Fatalf("expected tiles in region")
		}
	})

	t.Run("occupy move harvest snapshot", func(t *testing.T) {
		status, body := mustJSON(t, client, http.MethodPost, mapURL+"/occupants", map[string]any{
			"occupant_id": "peasant",
			"x":           2,
			"y":           4,
			"blocking":    true,
			"intent":      "move",
		})
		if status != http.StatusCreated {
			t.Fatalf("place status=%d body=%s", status, string(body))
		}

		status, body = mustJSON(t, client, http.MethodPost, mapURL+"/occupants", map[string]any{
			"occupant_id": "footman",
			"x":           2,
			"y":           4,
		})
		if status != http.StatusConflict || errorCode(body) != "already_occupied" {
			t.Fatalf("double place: status=%d body=%s", status, string(body))
		}

		status, body = mustJSON(t, client, http.MethodPost, mapURL+"/occupants/peasant/move", map[string]any{
			"x":      3,
			"y":      4,
			"intent": "move",
		})
		if status != http.StatusOK {
			t.Fatalf("move status=%d body=%s", status, string(body))
		}

		status, body = mustJSON(t, client, http.MethodPost, mapURL+"/harvest", map[string]any{
			"x":      3,
			"y":      0,
			"amount": 20,
		})
		if status != http.StatusOK {
			t.Fatalf("harvest status=%d body=%s", status, string(body))
		}
		var harvested map[string]any
		if err := json.Unmarshal(body, &harvested); err != nil {
			t.Fatalf("unmarshal harvest: %v body=%s", err, string(body))
		}
		if harvested["harvested"] != float64(20) || harvested["remaining"] != float64(30) {
			t.Fatalf("unexpected harvest: %v", harvested)
		}

		status, body = mustJSON(t, client, http.MethodPost, mapURL+"/snapshots", nil)
		if status != http.StatusCreated {
			t.Fatalf("snapshot status=%d body=%s", status, string(body))
		}

		status, body = mustJSON(t, client, http.MethodDelete, mapURL+"/occupants/peasant", nil)
		if status != http.StatusOK {
			t.Fatalf("remove status=%d body=%s", status, string(body))
		}

		status, kpiBody := mustJSON(t, client, http.MethodGet, baseURL+"/ops/kpi", nil)
		if status != http.StatusOK {
			t.Fatalf("kpi status=%d body=%s", status, string(kpiBody))
		}
		var kpi map[string]any
		if err := json.Unmarshal(kpiBody, &kpi); err != nil {
			t.Fatalf("unmarshal kpi: %v body=%s", err, string(kpiBody))
		}
		if _, ok := kpi["operation_total"]; !ok {
			t.Fatalf("expected operation_total in kpi response")
		}
	})
}

func mustJSON(t *testing.T, client *http.Client, method, url string, body map[string]any) (int, []byte) {
	t.Helper()
	status, respBody, err := doRequest(client, method, url, body)
	if err != nil {
		t.Fatalf("%s %s request failed: %v", method, url, err)
	}
	return status, respBody
}

func doRequest(client *http.Client, method, url string, body map[string]any) (int, []byte, error) {
	var payloadBytes []byte
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return 0, nil, err
		}
		payloadBytes = b
	}

	var lastStatus int
	var lastBody []byte
	var lastErr error
	for attempt := 0; attempt < 3; attempt++ {
		var payload io.Reader
		if len(payloadBytes) > 0 {
			payload = bytes.NewReader(payloadBytes)
		}
		req, err := http.NewRequest(method, url, payload)
		if err != nil {
			return 0, nil, err
		}
		if body != nil {
			req.Header.Set("Content-Type", "application/json")
		}
		resp, err := client.Do(req)
		if err != nil {
			lastErr = err
			time.Sleep(time.Duration(attempt+1) * 200 * time.Millisecond)
			continue
		}
		respBody, readErr := io.ReadAll(resp.Body)
		resp.Body.Close()
		if readErr != nil {
			lastErr = readErr
			time.Sleep(time.Duration(attempt+1) * 200 * time.Millisecond)
			continue
		}
		lastStatus, lastBody, lastErr = resp.StatusCode, respBody, nil
		if resp.StatusCode >= 500 {
			time.Sleep(time.Duration(attempt+1) * 200 * time.Millisecond)
			continue
		}
		return resp.StatusCode, respBody, nil
	}
	if lastErr != nil {
		return 0, nil, lastErr
	}
	return lastStatus, lastBody, nil
}

func errorCode(body []byte) string {
	var resp map[string]any
	if err := json.Unmarshal(body, &resp); err != nil {
		return ""
	}
	code, _ := asMap(resp["error"])["code"].(string)
	return code
}

func envOr(k, def string) string {
	v := strings.TrimSpace(os.Getenv(k))
	if v == "" {
		return def
	}
	return v
}

func asMap(v any) map[string]any {
	if m, ok := v.(map[string]any); ok {
		return m
	}
	return map[string]any{}
}

func asSlice(v any) []any {
	if s, ok := v.([]any); ok {
		return s
	}
	return nil
}
