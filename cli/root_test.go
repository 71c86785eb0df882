package cli

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vex/engine"
	"vex/protocol"
	"vex/tool"
	"vex/ui"
)

func TestSystemPromptMentionsWorkspaceRoot(t *testing.T) {
	p := systemPrompt("/home/x/proj")
	assert.Contains(t, p, "/home/x/proj")
	assert.Contains(t, p, "vex")
}

// fakeOpenAIServer replies to any POST with a single SSE text chunk then
// finish_reason stop, mirroring protocol's OpenAI wire shape (stream/parser_test.go).
func fakeOpenAIServer(t *testing.T, reply string) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		fmt.Fprintf(w, "data: {\"id\":\"1\",\"choices\":[{\"index\":0,\"delta\":{\"content\":%q}}]}\n\n", reply)
		fmt.Fprint(w, "data: {\"id\":\"1\",\"choices\":[{\"index\":0,\"finish_reason\":\"stop\",\"delta\":{}}]}\n\n")
		fmt.Fprint(w, "data: [DONE]\n\n")
	}))
}

func TestRunOneShotPrintsReplyAndDeniesApprovals(t *testing.T) {
	srv := fakeOpenAIServer(t, "hello from the model")
	defer srv.Close()

	ws, err := tool.NewWorkspace(t.TempDir())
	require.NoError(t, err)
	dispatcher := tool.NewDispatcher(ws)
	uiChan := ui.NewChannel(64)

	opts := engine.DefaultOptions(true)
	eng := engine.New(srv.URL, protocol.OpenAI, "local/test", "system", tool.Catalog(), dispatcher, srv.Client(), opts, uiChan)

	stdout := captureStdout(t, func() {
		err := runOneShot(context.Background(), eng, uiChan, "hi")
		require.NoError(t, err)
	})
	assert.Contains(t, stdout, "hello from the model")
}

func captureStdout(t *testing.T, fn func()) string {
	old := os.Stdout
	r, w, err := os.Pipe()
	require.NoError(t, err)
	os.Stdout = w
	defer func() { os.Stdout = old }()

	fn()

	require.NoError(t, w.Close())
	var buf bytes.Buffer
	_, err = buf.ReadFrom(r)
	require.NoError(t, err)
	return strings.TrimSpace(buf.String())
}
