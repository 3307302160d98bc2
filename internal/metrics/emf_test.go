package metrics

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"testing"
	"time"
)

func captureOutput(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	SetOutput(&buf)
	t.Cleanup(func() { SetOutput(os.Stdout) })
	return &buf
}

func TestRecorder_FlushOutput(t *testing.T) {
	buf := captureOutput(t)

	rec := New("IdeaStudio")
	rec.Dimension("Operation", "ideas")
	rec.Metric("LatencyMs", 1234.5, UnitMilliseconds)
	rec.Metric("CallCount", 1, UnitCount)
	rec.Property("ideaId", "idea-abc")
	rec.Flush()

	var doc map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &doc); err != nil {
		t.Fatalf("failed to parse EMF output as JSON: %v\nOutput: %s", err, buf.String())
	}

	awsMap, ok := doc["_aws"].(map[string]interface{})
	if !ok {
		t.Fatal("missing _aws directive in EMF output")
	}
	if _, ok := awsMap["Timestamp"]; !ok {
		t.Error("missing Timestamp in _aws directive")
	}

	cwArr, ok := awsMap["CloudWatchMetrics"].([]interface{})
	if !ok || len(cwArr) == 0 {
		t.Fatal("CloudWatchMetrics should be a non-empty array")
	}
	cw := cwArr[0].(map[string]interface{})
	if cw["Namespace"] != "IdeaStudio" {
		t.Errorf("expected namespace IdeaStudio, got %v", cw["Namespace"])
	}

	if doc["Operation"] != "ideas" {
		t.Errorf("expected Operation=ideas, got %v", doc["Operation"])
	}
	if doc["LatencyMs"] != 1234.5 {
		t.Errorf("expected LatencyMs=1234.5, got %v", doc["LatencyMs"])
	}
	if doc["ideaId"] != "idea-abc" {
		t.Errorf("expected ideaId=idea-abc, got %v", doc["ideaId"])
	}
}

func TestRecorder_EmptyFlush(t *testing.T) {
	buf := captureOutput(t)

	New("IdeaStudio").Dimension("Operation", "noop").Flush()

	if buf.Len() != 0 {
		t.Errorf("expected no output for empty recorder, got %q", buf.String())
	}
}

func TestOperation(t *testing.T) {
	buf := captureOutput(t)

	Operation("script", "success", 250*time.Millisecond)

	var doc map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &doc); err != nil {
		t.Fatalf("failed to parse EMF output: %v", err)
	}
	if doc["Operation"] != "script" || doc["Outcome"] != "success" {
		t.Errorf("unexpected dimensions: %v", doc)
	}
	if doc["LatencyMs"] != float64(250) {
		t.Errorf("expected LatencyMs=250, got %v", doc["LatencyMs"])
	}
	if doc["Calls"] != float64(1) {
		t.Errorf("expected Calls=1, got %v", doc["Calls"])
	}
}

func TestSetOutput_Discard(t *testing.T) {
	SetOutput(io.Discard)
	t.Cleanup(func() { SetOutput(os.Stdout) })

	// Must not panic or write anywhere observable.
	Operation("ideas", "failure", time.Second)
}
