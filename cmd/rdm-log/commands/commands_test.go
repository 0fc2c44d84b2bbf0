package commands

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rdm-protocol/rdm-go/pkg/host"
	"github.com/rdm-protocol/rdm-go/pkg/log"
	"github.com/rdm-protocol/rdm-go/pkg/rdm"
)

var testTime = time.Date(2026, 3, 14, 20, 15, 32, 123456000, time.UTC)

func createTestLogFile(t *testing.T, events []log.Event) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test"+log.CaptureExt)

	logger, err := log.NewFileLogger(path)
	if err != nil {
		t.Fatalf("failed to create logger: %v", err)
	}
	for _, e := range events {
		logger.Log(e)
	}
	logger.Close()
	return path
}

func sampleEvents() []log.Event {
	req := rdm.NewRequest(rdm.NewUID(0x4744, 1), rdm.NewUID(0x7a70, 1), 3, rdm.CommandClassSet, rdm.SubDeviceRoot, rdm.PIDDeviceLabel, []byte("x"))
	nack := rdm.NackWith(rdm.NackUnknownPID)
	rc := uint8(host.RCOK)

	return []log.Event{
		{
			Timestamp: testTime, SessionID: "session-aaaa", Direction: log.DirectionIn,
			Layer: log.LayerHost, Category: log.CategoryMessage, Source: "127.0.0.1:5000",
			Host: &log.HostEvent{Command: uint16(host.CmdRDMRequest), PayloadSize: 27},
		},
		{
			Timestamp: testTime.Add(time.Millisecond), SessionID: "session-aaaa", Direction: log.DirectionIn,
			Layer: log.LayerResponder, Category: log.CategoryMessage, Source: "7a70:00000001",
			RDM: log.NewRDMEvent(req, nil),
		},
		{
			Timestamp: testTime.Add(2 * time.Millisecond), SessionID: "session-aaaa", Direction: log.DirectionOut,
			Layer: log.LayerResponder, Category: log.CategoryMessage, Source: "7a70:00000001",
			RDM: log.NewRDMEvent(req, &nack),
		},
		{
			Timestamp: testTime.Add(3 * time.Millisecond), SessionID: "session-aaaa", Direction: log.DirectionOut,
			Layer: log.LayerHost, Category: log.CategoryMessage,
			Host: &log.HostEvent{Command: uint16(host.CmdRDMRequest), PayloadSize: 28, Result: &rc},
		},
		{
			Timestamp: testTime.Add(time.Second), SessionID: "session-bbbb",
			Layer: log.LayerResponder, Category: log.CategoryState, Source: "7a70:00000001",
			StateChange: &log.StateChangeEvent{Entity: log.StateEntityModel, OldState: "moving-light", NewState: "dimmer", Reason: "activate"},
		},
		{
			Timestamp: testTime.Add(2 * time.Second), SessionID: "session-bbbb",
			Layer: log.LayerBus, Category: log.CategoryError,
			Error: &log.ErrorEventData{Layer: log.LayerBus, Message: "checksum mismatch", Context: "rx"},
		},
	}
}

func TestRunView(t *testing.T) {
	path := createTestLogFile(t, sampleEvents())

	var buf bytes.Buffer
	if err := RunView(path, FilterOptions{}, &buf); err != nil {
		t.Fatalf("RunView: %v", err)
	}
	out := buf.String()

	for _, want := range []string{
		"2026-03-14T20:15:32.123456Z [session-] IN  HOST Host (127.0.0.1:5000)",
		"RDM_REQUEST  27 bytes",
		"SET DEVICE_LABEL  4744:00000001 -> 7a70:00000001  tn=3 pdl=1",
		"Result: NACK UNKNOWN_PID",
		"RDM_REQUEST  28 bytes  OK",
		`MODEL: "moving-light" -> "dimmer" (activate)`,
		"BUS error: checksum mismatch",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("view output missing %q\n%s", want, out)
		}
	}
}

func TestRunViewFiltered(t *testing.T) {
	path := createTestLogFile(t, sampleEvents())

	var buf bytes.Buffer
	err := RunView(path, FilterOptions{PID: "device_label", Direction: "out"}, &buf)
	if err != nil {
		t.Fatalf("RunView: %v", err)
	}
	if n := strings.Count(buf.String(), " RDM"); n != 1 {
		t.Errorf("got %d RDM events, want 1\n%s", n, buf.String())
	}
	if strings.Contains(buf.String(), "HOST") {
		t.Error("host events should be filtered out")
	}
}

func TestFilterOptionsErrors(t *testing.T) {
	for _, opts := range []FilterOptions{
		{Layer: "wire"},
		{Direction: "sideways"},
		{Category: "snapshot"},
		{PID: "NOT_A_PID"},
		{TimeStart: "yesterday"},
		{TimeEnd: "tomorrow"},
	} {
		if _, err := opts.Build(); err == nil {
			t.Errorf("Build(%+v) succeeded, want error", opts)
		}
	}
}

func TestRunFilterBySession(t *testing.T) {
	path := createTestLogFile(t, sampleEvents())
	outPath := filepath.Join(t.TempDir(), "filtered"+log.CaptureExt)

	var msg bytes.Buffer
	if err := RunFilter(path, outPath, FilterOptions{SessionID: "session-bbbb"}, &msg); err != nil {
		t.Fatalf("RunFilter: %v", err)
	}
	if !strings.Contains(msg.String(), "Filtered 2 events") {
		t.Errorf("message = %q", msg.String())
	}

	reader, err := log.NewReader(outPath)
	if err != nil {
		t.Fatalf("open output: %v", err)
	}
	defer reader.Close()

	count := 0
	for {
		event, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("Next: %v", err)
		}
		if event.SessionID != "session-bbbb" {
			t.Errorf("unexpected session %q", event.SessionID)
		}
		count++
	}
	if count != 2 {
		t.Errorf("count = %d, want 2", count)
	}
}

func TestRunExportJSONL(t *testing.T) {
	path := createTestLogFile(t, sampleEvents())

	var buf bytes.Buffer
	if err := RunExport(path, "jsonl", "", FilterOptions{Layer: "responder"}, &buf); err != nil {
		t.Fatalf("RunExport: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("got %d lines, want 3", len(lines))
	}
	var first map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &first); err != nil {
		t.Fatalf("line 0 is not JSON: %v", err)
	}
	if first["SessionID"] != "session-aaaa" {
		t.Errorf("SessionID = %v", first["SessionID"])
	}
}

func TestRunExportCSV(t *testing.T) {
	path := createTestLogFile(t, sampleEvents())
	outPath := filepath.Join(t.TempDir(), "out.csv")

	if err := RunExport(path, "csv", outPath, FilterOptions{}, io.Discard); err != nil {
		t.Fatalf("RunExport: %v", err)
	}

	rows := readCSV(t, outPath)
	if len(rows) != 7 {
		t.Fatalf("got %d rows, want 7", len(rows))
	}
	if strings.Join(rows[0], ",") != strings.Join(csvHeader, ",") {
		t.Errorf("header = %v", rows[0])
	}
	nack := rows[3]
	if nack[6] != "RDM" || nack[7] != "SET DEVICE_LABEL" || nack[8] != "NACK UNKNOWN_PID" {
		t.Errorf("nack row = %v", nack)
	}
	state := rows[5]
	if state[7] != "MODEL" || state[8] != "dimmer" {
		t.Errorf("state row = %v", state)
	}
}

func TestRunExportUnknownFormat(t *testing.T) {
	path := createTestLogFile(t, sampleEvents())
	if err := RunExport(path, "xml", "", FilterOptions{}, io.Discard); err == nil {
		t.Error("expected error for unknown format")
	}
}

func TestRunStats(t *testing.T) {
	path := createTestLogFile(t, sampleEvents())

	stats, err := Collect(path)
	if err != nil {
		t.Fatalf("Collect: %v", err)
	}
	if stats.TotalEvents != 6 {
		t.Errorf("TotalEvents = %d", stats.TotalEvents)
	}
	if len(stats.Sessions) != 2 {
		t.Errorf("Sessions = %d", len(stats.Sessions))
	}
	if stats.RequestsByPID[rdm.PIDDeviceLabel] != 1 {
		t.Errorf("RequestsByPID = %v", stats.RequestsByPID)
	}
	if stats.Nacks[rdm.NackUnknownPID] != 1 {
		t.Errorf("Nacks = %v", stats.Nacks)
	}
	if stats.HostCommands[host.CmdRDMRequest] != 1 {
		t.Errorf("HostCommands = %v", stats.HostCommands)
	}
	if stats.Errors != 1 {
		t.Errorf("Errors = %d", stats.Errors)
	}

	var buf bytes.Buffer
	if err := RunStats(path, &buf); err != nil {
		t.Fatalf("RunStats: %v", err)
	}
	for _, want := range []string{"Total Events: 6", "Duration:   2s", "DEVICE_LABEL:", "UNKNOWN_PID:", "Errors: 1"} {
		if !strings.Contains(buf.String(), want) {
			t.Errorf("stats output missing %q\n%s", want, buf.String())
		}
	}
}

func TestRunStatsMissingFile(t *testing.T) {
	if err := RunStats(filepath.Join(t.TempDir(), "missing.rlog"), io.Discard); err == nil {
		t.Error("expected error for missing file")
	}
}

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	rows, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	if err != nil {
		t.Fatalf("parse csv: %v", err)
	}
	return rows
}
