package client

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rmax-ai/streamsim/pkg/simulation"
)

func segmentFailurePayload(t *testing.T) simulation.Payload {
	t.Helper()
	b := simulation.NewBuilder()
	if err := b.SetField("url", "http://src.test/live.m3u8"); err != nil {
		t.Fatal(err)
	}
	if err := b.SelectVariant(simulation.VariantSegmentFailure); err != nil {
		t.Fatal(err)
	}
	if err := b.SetField("segmentFailureFrequency", "3"); err != nil {
		t.Fatal(err)
	}
	p, err := b.BuildPayload()
	if err != nil {
		t.Fatal(err)
	}
	return p
}

func TestClient_Submit(t *testing.T) {
	tests := []struct {
		name         string
		serverStatus int
		serverBody   string
		wantURL      string
		wantErr      bool
		wantStatus   int
	}{
		{
			name:         "Accepted",
			serverStatus: http.StatusOK,
			serverBody:   `{"generatedUrl":"localhost:8000/stream/uid_abc"}`,
			wantURL:      "localhost:8000/stream/uid_abc",
		},
		{
			name:         "Created",
			serverStatus: http.StatusCreated,
			serverBody:   `{"generatedUrl":"http://proxy.test/stream/uid_1"}`,
			wantURL:      "http://proxy.test/stream/uid_1",
		},
		{
			name:         "ServerError",
			serverStatus: http.StatusInternalServerError,
			serverBody:   `boom`,
			wantErr:      true,
			wantStatus:   http.StatusInternalServerError,
		},
		{
			name:         "Unprocessable",
			serverStatus: http.StatusUnprocessableEntity,
			serverBody:   `{"detail":"bad"}`,
			wantErr:      true,
			wantStatus:   http.StatusUnprocessableEntity,
		},
		{
			name:         "MissingURL",
			serverStatus: http.StatusOK,
			serverBody:   `{"status":"ok"}`,
			wantErr:      true,
			wantStatus:   http.StatusOK,
		},
		{
			name:         "MalformedBody",
			serverStatus: http.StatusOK,
			serverBody:   `not json`,
			wantErr:      true,
			wantStatus:   http.StatusOK,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotBody []byte
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.Method != http.MethodPost {
					t.Errorf("Expected method POST, got %s", r.Method)
				}
				if ct := r.Header.Get("Content-Type"); ct != "application/json" {
					t.Errorf("Expected Content-Type application/json, got %s", ct)
				}
				gotBody, _ = io.ReadAll(r.Body)

				w.WriteHeader(tt.serverStatus)
				w.Write([]byte(tt.serverBody))
			}))
			defer server.Close()

			c := NewClient(server.URL + "/generateurl")
			got, err := c.Submit(context.Background(), segmentFailurePayload(t))

			if (err != nil) != tt.wantErr {
				t.Fatalf("Submit() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				var sfe *SubmissionFailedError
				if !errors.As(err, &sfe) {
					t.Fatalf("error = %T, want *SubmissionFailedError", err)
				}
				if sfe.StatusCode != tt.wantStatus {
					t.Errorf("StatusCode = %d, want %d", sfe.StatusCode, tt.wantStatus)
				}
				if got != "" {
					t.Errorf("Submit() returned URL %q on failure", got)
				}
				return
			}
			if got != tt.wantURL {
				t.Errorf("Submit() = %q, want %q", got, tt.wantURL)
			}

			want := `{"url":"http://src.test/live.m3u8","simulate":"segmentFailure","segmentFailureFrequency":3,"segmentFailureCode":404}`
			if string(gotBody) != want {
				t.Errorf("request body = %s, want %s", gotBody, want)
			}
		})
	}
}

func TestClient_SubmitUnreachable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	endpoint := server.URL
	server.Close()

	c := NewClient(endpoint, WithTimeout(time.Second))
	_, err := c.Submit(context.Background(), segmentFailurePayload(t))

	var sfe *SubmissionFailedError
	if !errors.As(err, &sfe) {
		t.Fatalf("error = %v, want *SubmissionFailedError", err)
	}
	if sfe.StatusCode != 0 {
		t.Errorf("StatusCode = %d, want 0 for network failure", sfe.StatusCode)
	}
	if sfe.Unwrap() == nil {
		t.Error("expected wrapped network error")
	}
}

func TestClient_SubmitSendsOnlyVariantFields(t *testing.T) {
	var decoded map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&decoded)
		json.NewEncoder(w).Encode(GenerateResponse{GeneratedURL: "http://proxy.test/stream/uid_x"})
	}))
	defer server.Close()

	b := simulation.NewBuilder()
	_ = b.SetField("url", "http://src.test/a.m3u8")
	_ = b.SetField("delay", "5")
	_ = b.SetField("segmentFailureFrequency", "2")
	_ = b.SelectVariant(simulation.VariantDropPacket)
	_ = b.SetField("dropAfterPlaylists", "4")
	p, err := b.BuildPayload()
	if err != nil {
		t.Fatal(err)
	}

	if _, err := NewClient(server.URL).Submit(context.Background(), p); err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if len(decoded) != 3 {
		t.Errorf("server received %v, want url, simulate, dropAfterPlaylists only", decoded)
	}
	if decoded["dropAfterPlaylists"] != float64(4) {
		t.Errorf("dropAfterPlaylists = %v, want 4", decoded["dropAfterPlaylists"])
	}
}

func TestNewClient_DefaultEndpoint(t *testing.T) {
	if got := NewClient("").Endpoint(); got != DefaultEndpoint {
		t.Errorf("Endpoint() = %q, want %q", got, DefaultEndpoint)
	}
}
