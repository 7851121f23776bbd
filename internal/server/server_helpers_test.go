package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func startGame(t *testing.T, ts *httptest.Server, username string, goal int) map[string]any {
	t.Helper()
	resp := doRequest(t, ts, http.MethodPost, "/api/game/start", map[string]any{
		"username":   username,
		"goal_score": goal,
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected status %d, got %d", http.StatusCreated, resp.StatusCode)
	}
	return decodeBody(t, resp)
}

func sendEvent(t *testing.T, ts *httptest.Server, payload map[string]any) *http.Response {
	t.Helper()
	return doRequest(t, ts, http.MethodPost, "/api/events", payload)
}

func sendGift(t *testing.T, ts *httptest.Server, username, team string, value int) map[string]any {
	t.Helper()
	resp := sendEvent(t, ts, map[string]any{
		"type":       "gift",
		"username":   username,
		"team":       team,
		"gift_name":  "Crown",
		"gift_value": value,
	})
	if resp.StatusCode != http.StatusAccepted {
		t.Fatalf("expected status %d, got %d", http.StatusAccepted, resp.StatusCode)
	}
	return decodeBody(t, resp)
}

func doRequest(t *testing.T, ts *httptest.Server, method, path string, payload any) *http.Response {
	t.Helper()
	var body *bytes.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("marshal payload: %v", err)
		}
		body = bytes.NewReader(data)
	} else {
		body = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, ts.URL+path, body)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	t.Cleanup(func() {
		_ = resp.Body.Close()
	})
	return resp
}

func decodeBody(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	return body
}

func assertNumber(t *testing.T, body map[string]any, key string, want float64) {
	t.Helper()
	got, ok := body[key].(float64)
	if !ok || got != want {
		t.Fatalf("expected %s=%v, got %#v", key, want, body[key])
	}
}
