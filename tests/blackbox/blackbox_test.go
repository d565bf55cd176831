package blackbox

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"syscall"
	"testing"
	"time"
)

// findFreePort picks an available TCP port on localhost.
func findFreePort(t *testing.T) int {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer ln.Close()
	_, portStr, err := net.SplitHostPort(ln.Addr().String())
	if err != nil {
		t.Fatalf("split: %v", err)
	}
	var port int
	fmt.Sscanf(portStr, "%d", &port)
	return port
}

func projectRootFromThisFile(t *testing.T) string {
	t.Helper()
	_, thisFile, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatal("runtime.Caller failed")
	}
	// this file: <root>/tests/blackbox/blackbox_test.go
	return filepath.Dir(filepath.Dir(filepath.Dir(thisFile)))
}

func buildBinary(t *testing.T) string {
	t.Helper()
	binPath := filepath.Join(t.TempDir(), "answerd")
	cmd := exec.Command("go", "build", "-o", binPath, "./cmd/answerd")
	cmd.Dir = projectRootFromThisFile(t)
	cmd.Env = append(os.Environ(), "CGO_ENABLED=0")
	out, err := cmd.CombinedOutput()
	if err != nil {
		t.Fatalf("go build failed: %v\n%s", err, string(out))
	}
	return binPath
}

// fakeModelServer implements just enough of the OpenAI-compatible surface
// for the server backend: model listing for warmup and completions for
// generation. It records the prompts it saw.
type fakeModelServer struct {
	mu      sync.Mutex
	prompts []string
}

func (f *fakeModelServer) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /v1/models", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"object":"list","data":[{"id":"fake-model","object":"model"}]}`)
	})
	mux.HandleFunc("POST /v1/completions", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Prompt string `json:"prompt"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		f.mu.Lock()
		f.prompts = append(f.prompts, req.Prompt)
		f.mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"id":"cmpl-1","object":"text_completion","model":"fake-model","choices":[{"index":0,"text":"The sky is blue.","finish_reason":"stop"}]}`)
	})
	return mux
}

func waitReady(t *testing.T, base string) {
	t.Helper()
	deadline := time.Now().Add(15 * time.Second)
	for time.Now().Before(deadline) {
		resp, err := http.Get(base + "/readyz")
		if err == nil {
			resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return
			}
		}
		time.Sleep(100 * time.Millisecond)
	}
	t.Fatal("server never became ready")
}

func TestEndToEndServerBackend(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping blackbox test in short mode")
	}
	bin := buildBinary(t)

	fake := &fakeModelServer{}
	upstream := httptest.NewServer(fake.handler())
	defer upstream.Close()

	port := findFreePort(t)
	base := fmt.Sprintf("http://127.0.0.1:%d", port)
	cmd := exec.Command(bin,
		"--addr", fmt.Sprintf("127.0.0.1:%d", port),
		"--backend", "server",
		"--server-url", upstream.URL+"/v1",
		"--checkpoint", "fake-model",
		"--log-level", "off",
	)
	cmd.Stdout = os.Stderr
	cmd.Stderr = os.Stderr
	if err := cmd.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}
	defer func() {
		_ = cmd.Process.Signal(syscall.SIGTERM)
		done := make(chan struct{})
		go func() { _ = cmd.Wait(); close(done) }()
		select {
		case <-done:
		case <-time.After(10 * time.Second):
			_ = cmd.Process.Kill()
		}
	}()

	waitReady(t, base)

	// Happy path
	body := `{"input_prompt":"What color is the sky?","context":"The sky is blue."}`
	resp, err := http.Post(base+"/api", "application/json", bytes.NewBufferString(body))
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	b, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status=%d body=%s", resp.StatusCode, b)
	}
	var out map[string]any
	if err := json.Unmarshal(b, &out); err != nil {
		t.Fatalf("json: %v", err)
	}
	if s, ok := out["response"].(string); !ok || s == "" {
		t.Fatalf("response missing or not a string: %s", b)
	}

	// The upstream model must have seen both inputs in one prompt.
	fake.mu.Lock()
	if len(fake.prompts) != 1 {
		fake.mu.Unlock()
		t.Fatalf("upstream saw %d prompts", len(fake.prompts))
	}
	p := fake.prompts[0]
	fake.mu.Unlock()
	if !strings.Contains(p, "What color is the sky?") || !strings.Contains(p, "The sky is blue.") {
		t.Fatalf("upstream prompt missing inputs:\n%s", p)
	}

	// Missing field -> 400
	resp, err = http.Post(base+"/api", "application/json", bytes.NewBufferString(`{"input_prompt":"q"}`))
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("missing field status=%d", resp.StatusCode)
	}

	// Wrong method -> non-2xx
	resp, err = http.Get(base + "/api")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode < 300 {
		t.Fatalf("GET /api status=%d", resp.StatusCode)
	}

	// Status surface
	resp, err = http.Get(base + "/status")
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	b, _ = io.ReadAll(resp.Body)
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status=%d", resp.StatusCode)
	}
	var st struct {
		State         string `json:"state"`
		Backend       string `json:"backend"`
		RequestsTotal uint64 `json:"requests_total"`
	}
	if err := json.Unmarshal(b, &st); err != nil {
		t.Fatalf("json: %v", err)
	}
	if st.State != "ready" || st.Backend != "server" || st.RequestsTotal != 1 {
		t.Fatalf("unexpected status: %s", b)
	}
}
