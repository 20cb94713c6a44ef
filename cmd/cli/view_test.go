package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anstrom/scandeck/internal/tab"
	"github.com/anstrom/scandeck/internal/views"
)

const sampleXML = `<?xml version="1.0" encoding="UTF-8"?>
<nmaprun scanner="nmap" args="nmap -T4 -F 10.0.0.1-2" start="1700000000" startstr="Tue Nov 14 22:13:20 2023" version="7.94">
<host><status state="up"/>
<address addr="10.0.0.1" addrtype="ipv4"/>
<hostnames><hostname name="web01" type="user"/></hostnames>
<ports>
<port protocol="tcp" portid="22"><state state="open"/><service name="ssh"/></port>
<port protocol="tcp" portid="80"><state state="open"/><service name="http" product="nginx"/></port>
</ports>
</host>
<host><status state="up"/>
<address addr="10.0.0.2" addrtype="ipv4"/>
<ports>
<port protocol="tcp" portid="80"><state state="open"/><service name="http"/></port>
</ports>
</host>
<runstats><finished time="1700000010" timestr="Tue Nov 14 22:13:30 2023"/><hosts up="2" down="0" total="2"/></runstats>
</nmaprun>`

func writeSample(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "lab.xml")
	require.NoError(t, os.WriteFile(path, []byte(sampleXML), 0o600))
	return path
}

func loadSample(t *testing.T, path string) *tab.Controller {
	t.Helper()
	c := tab.NewController(path, tab.Options{})
	require.NoError(t, c.LoadFile(path))
	return c
}

func TestRenderViewReport(t *testing.T) {
	c := loadSample(t, writeSample(t))

	var buf bytes.Buffer
	require.NoError(t, renderView(&buf, c, nil, nil, false))
	out := buf.String()

	assert.Contains(t, out, "nmap -T4 -F 10.0.0.1-2")
	assert.Contains(t, out, "2 up, 0 down")
	assert.Contains(t, out, "web01")
	assert.Contains(t, out, "10.0.0.2")
	assert.Contains(t, out, "80/tcp")
	assert.Contains(t, out, "ssh")
}

func TestRenderViewSelections(t *testing.T) {
	c := loadSample(t, writeSample(t))

	t.Run("single host", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, renderView(&buf, c, []string{"web01"}, nil, false))
		assert.Contains(t, buf.String(), "nginx")
		assert.NotContains(t, buf.String(), "10.0.0.2")
	})

	t.Run("unknown host", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, renderView(&buf, c, []string{"nope"}, nil, false))
		assert.Contains(t, buf.String(), "No matching hosts.")
	})

	t.Run("service as json", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, renderView(&buf, c, nil, []string{"http"}, true))

		var view views.ServiceView
		require.NoError(t, json.Unmarshal(buf.Bytes(), &view))
		assert.Equal(t, views.ModeSingle, view.Mode)
		assert.Len(t, view.Rows, 2)
		assert.ElementsMatch(t, []string{"web01", "10.0.0.2"}, view.Pages)
	})

	t.Run("several services", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, renderView(&buf, c, nil, []string{"http", "ssh"}, false))
		assert.Contains(t, buf.String(), "http\n")
		assert.Contains(t, buf.String(), "ssh\n")
	})
}

func TestRenderViewJSONReport(t *testing.T) {
	c := loadSample(t, writeSample(t))

	var buf bytes.Buffer
	require.NoError(t, renderView(&buf, c, nil, nil, true))

	var report struct {
		Hosts    []json.RawMessage          `json:"hosts"`
		Services map[string]json.RawMessage `json:"services"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &report))
	assert.Len(t, report.Hosts, 2)
	assert.Contains(t, report.Services, "http")
	assert.Contains(t, report.Services, "ssh")
}

func TestApplyCommentsPersists(t *testing.T) {
	path := writeSample(t)
	c := loadSample(t, path)

	require.NoError(t, applyComments(c, []string{"web01=patched on monday", " 10.0.0.2 =a=b"}))
	assert.Equal(t, tab.StateLoadedChanged, c.State())
	require.NoError(t, c.Save(path))

	reloaded := loadSample(t, path)
	d, err := reloaded.Details("web01")
	require.NoError(t, err)
	assert.Equal(t, "patched on monday", d.Host.Comment)

	d, err = reloaded.Details("10.0.0.2")
	require.NoError(t, err)
	assert.Equal(t, "a=b", d.Host.Comment)
}

func TestApplyCommentsRejectsBadInput(t *testing.T) {
	c := loadSample(t, writeSample(t))

	tests := []string{"no-separator", "=text only", "ghost=text"}
	for _, pair := range tests {
		assert.Error(t, applyComments(c, []string{pair}), pair)
	}
}
