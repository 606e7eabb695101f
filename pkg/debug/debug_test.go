package debug

import (
	"bytes"
	"strings"
	"testing"
	"time"
)

func TestLog_EnabledAndDisabled(t *testing.T) {
	var buf bytes.Buffer
	SetEnabled(true)
	SetOutput(&buf)
	defer SetEnabled(false)

	Log("loaded %d nodes", 3)
	LogTiming("tick", time.Millisecond)
	LogIf(false, "hidden")
	LogIf(true, "filled %d", 2)
	LogEnterExit("render")()
	Dump("canvas", struct{ W, H int }{600, 600})

	out := buf.String()
	for _, want := range []string{"loaded 3 nodes", "tick took", "filled 2", "-> render", "<- render", "canvas: struct { W int; H int } = {W:600 H:600}"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "hidden") {
		t.Error("LogIf(false) wrote output")
	}

	buf.Reset()
	SetEnabled(false)
	Log("nothing")
	if buf.Len() != 0 {
		t.Errorf("disabled logger wrote %q", buf.String())
	}
}
