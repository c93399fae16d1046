package orders

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/tableside/backoffice/internal/domain"
)

func newTestServer(t *testing.T) (*httptest.Server, *fixture) {
	t.Helper()

	f := newFixture(t)
	handler := NewHandler(f.service, slog.New(slog.NewTextHandler(io.Discard, nil)))

	mux := http.NewServeMux()
	mux.HandleFunc("POST /orders", handler.HandleCreate)
	mux.HandleFunc("GET /orders", handler.HandleList)
	mux.HandleFunc("GET /orders/open", handler.HandleListOpen)
	mux.HandleFunc("GET /orders/serve-status", handler.HandleServeStatus)
	mux.HandleFunc("GET /orders/by-status", handler.HandleListByStatus)
	mux.HandleFunc("GET /orders/range", handler.HandleListRange)
	mux.HandleFunc("GET /orders/{id}", handler.HandleGet)
	mux.HandleFunc("PUT /orders/{id}", handler.HandleUpdate)
	mux.HandleFunc("DELETE /orders/{id}", handler.HandleDelete)
	mux.HandleFunc("PUT /orders/{id}/ready", handler.HandleSetReady)

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server, f
}

func doRequest(t *testing.T, method, url, body string) *http.Response {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, url, reader)
	if err != nil {
		t.Fatalf("failed to build request: %v", err)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decodeBody(t *testing.T, resp *http.Response, into any) {
	t.Helper()
	if err := json.NewDecoder(resp.Body).Decode(into); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
}

func TestHandler_Create(t *testing.T) {
	t.Run("returns 201 with the new order", func(t *testing.T) {
		server, _ := newTestServer(t)

		resp := doRequest(t, http.MethodPost, server.URL+"/orders",
			`{"user_id":"waiter-1","table_id":"table-2"}`)

		if resp.StatusCode != http.StatusCreated {
			t.Fatalf("expected 201, got %d", resp.StatusCode)
		}
		var order domain.Order
		decodeBody(t, resp, &order)
		if order.ID == "" || order.Status != domain.OrderStatusOpen {
			t.Errorf("unexpected order: %+v", order)
		}
	})

	t.Run("returns 404 for an unknown waiter", func(t *testing.T) {
		server, _ := newTestServer(t)

		resp := doRequest(t, http.MethodPost, server.URL+"/orders",
			`{"user_id":"nobody","table_id":"table-2"}`)

		if resp.StatusCode != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", resp.StatusCode)
		}
		var body map[string]string
		decodeBody(t, resp, &body)
		if body["error"] != "user not found" {
			t.Errorf("unexpected error message: %q", body["error"])
		}
	})

	t.Run("returns 400 for a malformed body", func(t *testing.T) {
		server, _ := newTestServer(t)

		resp := doRequest(t, http.MethodPost, server.URL+"/orders", `{`)

		if resp.StatusCode != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", resp.StatusCode)
		}
	})
}

func TestHandler_Update(t *testing.T) {
	t.Run("returns 400 for an unknown status", func(t *testing.T) {
		server, f := newTestServer(t)
		order, _ := f.service.Create(context.Background(), "waiter-1", "table-2")

		resp := doRequest(t, http.MethodPut, server.URL+"/orders/"+order.ID,
			`{"user_id":"waiter-1","table_id":"table-2","status":"DONE"}`)

		if resp.StatusCode != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", resp.StatusCode)
		}
	})

	t.Run("returns 404 for an unknown dish", func(t *testing.T) {
		server, f := newTestServer(t)
		order, _ := f.service.Create(context.Background(), "waiter-1", "table-2")

		resp := doRequest(t, http.MethodPut, server.URL+"/orders/"+order.ID,
			`{"user_id":"waiter-1","table_id":"table-2","status":"OPEN","items":[{"dish_id":"dish-404","quantity":1}]}`)

		if resp.StatusCode != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", resp.StatusCode)
		}
		var body map[string]string
		decodeBody(t, resp, &body)
		if body["error"] != "dish not found" {
			t.Errorf("unexpected error message: %q", body["error"])
		}
	})

	t.Run("closes an order end to end", func(t *testing.T) {
		server, f := newTestServer(t)
		order, _ := f.service.Create(context.Background(), "waiter-1", "table-2")
		f.clock.now = f.clock.now.Add(30 * time.Minute)

		resp := doRequest(t, http.MethodPut, server.URL+"/orders/"+order.ID,
			`{"user_id":"waiter-1","table_id":"table-2","status":"CLOSED","total_price":"19.98","items":[{"dish_id":"dish-5","quantity":2,"ready":true}]}`)

		if resp.StatusCode != http.StatusOK {
			t.Fatalf("expected 200, got %d", resp.StatusCode)
		}
		var updated domain.Order
		decodeBody(t, resp, &updated)
		if updated.Status != domain.OrderStatusClosed {
			t.Errorf("expected CLOSED, got %s", updated.Status)
		}
		if updated.Duration == nil {
			t.Error("expected duration in the response")
		}
		if f.tables.tables["table-2"].Occupied {
			t.Error("expected the table to be released")
		}
	})
}

func TestHandler_SetReady(t *testing.T) {
	server, f := newTestServer(t)
	order, _ := f.service.Create(context.Background(), "waiter-1", "table-2")

	resp := doRequest(t, http.MethodPut, server.URL+"/orders/"+order.ID+"/ready", `{"ready":true}`)

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var updated domain.Order
	decodeBody(t, resp, &updated)
	if !updated.ReadyToServe {
		t.Error("expected ready_to_serve to be true")
	}
}

func TestHandler_Delete(t *testing.T) {
	t.Run("reports false for an unknown order", func(t *testing.T) {
		server, _ := newTestServer(t)

		resp := doRequest(t, http.MethodDelete, server.URL+"/orders/missing", "")

		if resp.StatusCode != http.StatusOK {
			t.Fatalf("expected 200, got %d", resp.StatusCode)
		}
		var body map[string]bool
		decodeBody(t, resp, &body)
		if body["deleted"] {
			t.Error("expected deleted=false")
		}
	})

	t.Run("reports true for an existing order", func(t *testing.T) {
		server, f := newTestServer(t)
		order, _ := f.service.Create(context.Background(), "waiter-1", "table-2")

		resp := doRequest(t, http.MethodDelete, server.URL+"/orders/"+order.ID, "")

		if resp.StatusCode != http.StatusOK {
			t.Fatalf("expected 200, got %d", resp.StatusCode)
		}
		var body map[string]bool
		decodeBody(t, resp, &body)
		if !body["deleted"] {
			t.Error("expected deleted=true")
		}
	})
}

func TestHandler_Get(t *testing.T) {
	t.Run("returns 404 for an unknown order", func(t *testing.T) {
		server, _ := newTestServer(t)

		resp := doRequest(t, http.MethodGet, server.URL+"/orders/missing", "")

		if resp.StatusCode != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", resp.StatusCode)
		}
	})

	t.Run("returns the order", func(t *testing.T) {
		server, f := newTestServer(t)
		order, _ := f.service.Create(context.Background(), "waiter-1", "table-2")

		resp := doRequest(t, http.MethodGet, server.URL+"/orders/"+order.ID, "")

		if resp.StatusCode != http.StatusOK {
			t.Fatalf("expected 200, got %d", resp.StatusCode)
		}
		var got domain.Order
		decodeBody(t, resp, &got)
		if got.ID != order.ID {
			t.Errorf("expected order %s, got %s", order.ID, got.ID)
		}
	})
}

func TestHandler_ListRange(t *testing.T) {
	t.Run("returns 400 for a malformed date", func(t *testing.T) {
		server, _ := newTestServer(t)

		resp := doRequest(t, http.MethodGet,
			server.URL+"/orders/range?start=yesterday&end=2024-01-11&status=CLOSED", "")

		if resp.StatusCode != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", resp.StatusCode)
		}
	})

	t.Run("returns 400 for a missing status", func(t *testing.T) {
		server, _ := newTestServer(t)

		resp := doRequest(t, http.MethodGet,
			server.URL+"/orders/range?start=2024-01-10&end=2024-01-11", "")

		if resp.StatusCode != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", resp.StatusCode)
		}
	})

	t.Run("returns orders in the window", func(t *testing.T) {
		server, f := newTestServer(t)
		order, _ := f.service.Create(context.Background(), "waiter-1", "table-2")

		in := baseUpdate()
		in.Status = domain.OrderStatusClosed
		if _, err := f.service.Update(context.Background(), order.ID, in); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		resp := doRequest(t, http.MethodGet,
			server.URL+"/orders/range?start=2024-01-10&end=2024-01-10&status=CLOSED", "")

		if resp.StatusCode != http.StatusOK {
			t.Fatalf("expected 200, got %d", resp.StatusCode)
		}
		var got []domain.Order
		decodeBody(t, resp, &got)
		if len(got) != 1 || got[0].ID != order.ID {
			t.Errorf("unexpected result: %+v", got)
		}
	})
}

func TestHandler_ServeStatus(t *testing.T) {
	server, f := newTestServer(t)
	order, _ := f.service.Create(context.Background(), "waiter-1", "table-2")

	resp := doRequest(t, http.MethodGet, server.URL+"/orders/serve-status", "")

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var statuses []domain.ServeStatus
	decodeBody(t, resp, &statuses)
	if len(statuses) != 1 || statuses[0].OrderID != order.ID {
		t.Errorf("unexpected statuses: %+v", statuses)
	}
}
