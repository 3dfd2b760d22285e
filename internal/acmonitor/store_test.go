package acmonitor

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestStoreRoundTrip(t *testing.T) {
	store := NewStore(t.TempDir(), testLogger())

	state := NewSessionState()
	state.Online["Alice"] = &DriverSession{MessageID: "1", Car: "cobra"}
	state.Laps["Alice"] = map[string]*LapRecord{
		"cobra": {Time: "01:23:456", TimeMS: 83456, Cuts: 0},
	}
	state.Naughties["Bob"] = map[string]*LapRecord{
		"gt40": {Time: "01:10:000", TimeMS: 70000, Cuts: 2},
	}
	state.TrackName = "Monza"
	state.TrackDirectory = "monza"
	state.TrackMessageID = "999"
	state.Carset = "GT Legends"

	if err := store.SaveAndArchive(state, "2023-01-05.12:30:00."); err != nil {
		t.Fatal(err)
	}

	reloaded, err := store.Load()

	if err != nil {
		t.Fatal(err)
	}

	if !reflect.DeepEqual(state, reloaded) {
		t.Errorf("expected reloaded state to equal the saved one.\nsaved:    %#v\nreloaded: %#v", state, reloaded)
	}
}

func TestStoreLoadMissingSnapshot(t *testing.T) {
	store := NewStore(t.TempDir(), testLogger())

	state, err := store.Load()

	if err != nil {
		t.Fatalf("expected a missing snapshot not to be an error, got %v", err)
	}

	if state != nil {
		t.Errorf("expected nil state for a missing snapshot")
	}
}

func TestStoreArchiveCopy(t *testing.T) {
	dir := t.TempDir()
	store := NewStore(dir, testLogger())

	state := NewSessionState()
	state.TrackDirectory = "monza"

	if err := store.SaveAndArchive(state, "2023-01-05.12:30:00."); err != nil {
		t.Fatal(err)
	}

	expectedPath := filepath.Join(dir, "archive", "2023-01-05.12:30:00.monza.json")

	if state.ArchivePath != expectedPath {
		t.Errorf("expected archive path %q, got %q", expectedPath, state.ArchivePath)
	}

	if _, err := os.Stat(state.ArchivePath); err != nil {
		t.Errorf("expected archive copy to exist: %v", err)
	}

	canonical, err := ioutil.ReadFile(store.StatePath())

	if err != nil {
		t.Fatal(err)
	}

	archived, err := ioutil.ReadFile(state.ArchivePath)

	if err != nil {
		t.Fatal(err)
	}

	if string(canonical) != string(archived) {
		t.Errorf("expected the archive to be a byte copy of the snapshot")
	}
}

func TestStoreArchiveSkippedWithoutTimestamp(t *testing.T) {
	dir := t.TempDir()
	store := NewStore(dir, testLogger())

	state := NewSessionState()
	state.TrackDirectory = "monza"
	state.ArchivePath = "stale"

	if err := store.SaveAndArchive(state, ""); err != nil {
		t.Fatal(err)
	}

	if state.ArchivePath != "" {
		t.Errorf("expected archive path to be blanked without a timestamp, got %q", state.ArchivePath)
	}

	entries, err := ioutil.ReadDir(filepath.Join(dir, "archive"))

	if err != nil {
		t.Fatal(err)
	}

	if len(entries) != 0 {
		t.Errorf("expected no archive files, found %d", len(entries))
	}
}

func TestStoreNoTempFileLeftBehind(t *testing.T) {
	dir := t.TempDir()
	store := NewStore(dir, testLogger())

	if err := store.SaveAndArchive(NewSessionState(), ""); err != nil {
		t.Fatal(err)
	}

	if _, err := os.Stat(store.StatePath() + ".tmp"); !os.IsNotExist(err) {
		t.Errorf("expected the temp file to have been renamed away")
	}
}
