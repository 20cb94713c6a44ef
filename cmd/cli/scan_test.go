package cli

import (
	"bytes"
	"context"
	stderrors "errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/anstrom/scandeck/internal/config"
	"github.com/anstrom/scandeck/internal/process/mocks"
	"github.com/anstrom/scandeck/internal/profiles"
	"github.com/anstrom/scandeck/internal/tab"
)

func scanConfig() *config.Config {
	cfg := config.Default()
	cfg.Scanner.PollInterval = 10 * time.Millisecond
	return cfg
}

func TestExecuteScan(t *testing.T) {
	ctrl := gomock.NewController(t)
	launcher := mocks.NewMockLauncher(ctrl)
	handle := mocks.NewMockHandle(ctrl)
	xmlPath := writeSample(t)

	launcher.EXPECT().Launch("nmap -T4 -F 10.0.0.1-2").Return(handle, nil)
	handle.EXPECT().Alive().Return(false, nil).AnyTimes()
	handle.EXPECT().Output().Return("Nmap done: 2 IP addresses (2 hosts up)").AnyTimes()
	handle.EXPECT().ErrorOutput().Return("").AnyTimes()
	handle.EXPECT().XMLOutputFile().Return(xmlPath).AnyTimes()
	handle.EXPECT().Cleanup()

	savePath := filepath.Join(t.TempDir(), "saved.xml")
	scanSave = savePath
	t.Cleanup(func() { scanSave = "" })

	opts := tab.Options{Launcher: launcher, Profiles: profiles.NewStore("")}
	req := tab.Request{Target: "10.0.0.1-2", Profile: "Quick scan"}

	report, err := executeScan(context.Background(), scanConfig(), opts, req)
	require.NoError(t, err)

	assert.Equal(t, 2, report.Session.HostsUp)
	assert.Equal(t, "Quick scan", report.Session.ProfileName)
	assert.Len(t, report.Hosts, 2)
	assert.ElementsMatch(t, []string{"http", "ssh"}, report.services)
	assert.Len(t, report.Services["http"], 2)
	assert.Zero(t, report.unknown)
	assert.Equal(t, savePath, report.savedTo)
	assert.Equal(t, uuid.Nil, report.archiveID)

	saved, err := os.ReadFile(savePath)
	require.NoError(t, err)
	assert.Equal(t, sampleXML, string(saved))
}

func TestExecuteScanLaunchFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	launcher := mocks.NewMockLauncher(ctrl)
	launcher.EXPECT().Launch("nmap -sn 10.0.0.1").Return(nil, stderrors.New("exec: no such file"))

	opts := tab.Options{Launcher: launcher, Profiles: profiles.NewStore("")}
	req := tab.Request{Target: "10.0.0.1", Profile: "Ping scan"}

	_, err := executeScan(context.Background(), scanConfig(), opts, req)
	assert.ErrorContains(t, err, "no such file")
}

func TestExecuteScanTimeoutKillsProcess(t *testing.T) {
	ctrl := gomock.NewController(t)
	launcher := mocks.NewMockLauncher(ctrl)
	handle := mocks.NewMockHandle(ctrl)

	launcher.EXPECT().Launch("nmap -p 1-65535 10.0.0.1").Return(handle, nil)
	handle.EXPECT().Alive().Return(true, nil).AnyTimes()
	handle.EXPECT().Output().Return("Starting Nmap").AnyTimes()
	handle.EXPECT().Kill().Return(nil)
	handle.EXPECT().Cleanup()

	opts := tab.Options{Launcher: launcher, Profiles: profiles.NewStore("")}
	req := tab.Request{Target: "10.0.0.1", Command: "nmap -p 1-65535 10.0.0.1"}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := executeScan(ctx, scanConfig(), opts, req)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestExecuteScanArchiveDisabled(t *testing.T) {
	ctrl := gomock.NewController(t)
	launcher := mocks.NewMockLauncher(ctrl)
	handle := mocks.NewMockHandle(ctrl)

	launcher.EXPECT().Launch(gomock.Any()).Return(handle, nil)
	handle.EXPECT().Alive().Return(false, nil).AnyTimes()
	handle.EXPECT().Output().Return("").AnyTimes()
	handle.EXPECT().ErrorOutput().Return("").AnyTimes()
	handle.EXPECT().XMLOutputFile().Return(writeSample(t)).AnyTimes()
	handle.EXPECT().Cleanup()

	scanArchive = true
	t.Cleanup(func() { scanArchive = false })

	opts := tab.Options{Launcher: launcher, Profiles: profiles.NewStore("")}
	_, err := executeScan(context.Background(), scanConfig(), opts, tab.Request{Target: "10.0.0.1", Profile: "Quick scan"})
	assert.ErrorContains(t, err, "archive is disabled")
}

func TestTerminalSurfaceFollow(t *testing.T) {
	id := uuid.New()

	t.Run("prints only new output", func(t *testing.T) {
		var buf bytes.Buffer
		s := newTerminalSurface(&buf, true)
		s.OutputChanged(id, "Starting Nmap\n")
		s.OutputChanged(id, "Starting Nmap\nDiscovered open port 22/tcp\n")
		s.OutputChanged(id, "Starting Nmap\nDiscovered open port 22/tcp\n")
		assert.Equal(t, "Starting Nmap\nDiscovered open port 22/tcp\n", buf.String())
	})

	t.Run("reprints after a reset", func(t *testing.T) {
		var buf bytes.Buffer
		s := newTerminalSurface(&buf, true)
		s.OutputChanged(id, "first run\n")
		s.OutputChanged(id, "")
		s.OutputChanged(id, "second run\n")
		assert.Equal(t, "first run\nsecond run\n", buf.String())
	})

	t.Run("silent without follow", func(t *testing.T) {
		var buf bytes.Buffer
		s := newTerminalSurface(&buf, false)
		s.OutputChanged(id, "Starting Nmap\n")
		assert.Empty(t, buf.String())
	})

	t.Run("prompts are always shown", func(t *testing.T) {
		var buf bytes.Buffer
		s := newTerminalSurface(&buf, false)
		s.Prompt(id, tab.Prompt{Kind: tab.PromptError, Title: "Parse error", Text: "bad xml"})
		assert.Equal(t, "\nParse error\nbad xml\n", buf.String())
	})
}
