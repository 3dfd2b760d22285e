package acmonitor

import (
	"errors"
	"fmt"
	"testing"
)

var errTransport = errors.New("transport failure")

// fakeMessenger records calls and fails on demand.
type fakeMessenger struct {
	failSend   bool
	failEdit   bool
	failDelete bool

	sent    []string
	edited  map[string]string
	deleted []string

	nextID int
}

func newFakeMessenger() *fakeMessenger {
	return &fakeMessenger{edited: make(map[string]string)}
}

func (f *fakeMessenger) Send(content string) (string, error) {
	if f.failSend {
		return "", errTransport
	}

	f.nextID++
	f.sent = append(f.sent, content)

	return fmt.Sprintf("msg-%d", f.nextID), nil
}

func (f *fakeMessenger) Edit(messageID string, content string) error {
	if f.failEdit {
		return errTransport
	}

	f.edited[messageID] = content

	return nil
}

func (f *fakeMessenger) Delete(messageID string) error {
	if f.failDelete {
		return errTransport
	}

	f.deleted = append(f.deleted, messageID)

	return nil
}

func testDispatcher(activity, leaderboard Messenger) *Dispatcher {
	return NewDispatcher(&Config{
		ServerName:      "Test Server",
		OneLapPerDriver: true,
	}, activity, leaderboard, testLogger())
}

func TestNotifyJoin(t *testing.T) {
	messenger := newFakeMessenger()
	dispatcher := testDispatcher(messenger, nil)

	session := &DriverSession{Car: "Shelby Cobra"}
	dispatcher.NotifyJoin("Alice", session)

	if session.MessageID != "msg-1" {
		t.Errorf("expected the message id to be stored on the session, got %q", session.MessageID)
	}

	if len(messenger.sent) != 1 || messenger.sent[0] != "Alice is on Test Server!\nShelby Cobra" {
		t.Errorf("unexpected join message: %#v", messenger.sent)
	}
}

func TestNotifyJoinWithoutCar(t *testing.T) {
	messenger := newFakeMessenger()
	dispatcher := testDispatcher(messenger, nil)

	dispatcher.NotifyJoin("Alice", &DriverSession{})

	if messenger.sent[0] != "Alice is on Test Server!" {
		t.Errorf("unexpected join message: %q", messenger.sent[0])
	}
}

func TestNotifyJoinSendFailure(t *testing.T) {
	messenger := newFakeMessenger()
	messenger.failSend = true
	dispatcher := testDispatcher(messenger, nil)

	session := &DriverSession{}
	dispatcher.NotifyJoin("Alice", session)

	if session.MessageID != "" {
		t.Errorf("expected no message id after a failed send, got %q", session.MessageID)
	}
}

func TestNotifyJoinDisabled(t *testing.T) {
	dispatcher := testDispatcher(nil, nil)

	// must not panic with messaging disabled
	dispatcher.NotifyJoin("Alice", &DriverSession{})
	dispatcher.NotifyLeave("Alice", "msg-1")
	dispatcher.NotifyLeaderboard(NewSessionState())
}

func TestNotifyLeave(t *testing.T) {
	messenger := newFakeMessenger()
	dispatcher := testDispatcher(messenger, nil)

	dispatcher.NotifyLeave("Alice", "msg-7")

	if len(messenger.deleted) != 1 || messenger.deleted[0] != "msg-7" {
		t.Errorf("expected message msg-7 to be deleted, got %#v", messenger.deleted)
	}

	// no id, nothing to delete
	dispatcher.NotifyLeave("Bob", "")

	if len(messenger.deleted) != 1 {
		t.Errorf("expected no delete without a message id")
	}
}

func TestNotifyLeaveDeleteFailureSwallowed(t *testing.T) {
	messenger := newFakeMessenger()
	messenger.failDelete = true
	dispatcher := testDispatcher(messenger, nil)

	// must not panic or propagate
	dispatcher.NotifyLeave("Alice", "msg-7")
}

func TestNotifyLeaderboardSendsFreshMessage(t *testing.T) {
	messenger := newFakeMessenger()
	dispatcher := testDispatcher(nil, messenger)

	state := leaderboardState()

	if changed := dispatcher.NotifyLeaderboard(state); !changed {
		t.Error("expected a fresh send to report a changed message id")
	}

	if state.TrackMessageID != "msg-1" {
		t.Errorf("expected the new message id to be stored, got %q", state.TrackMessageID)
	}
}

func TestNotifyLeaderboardEditsInPlace(t *testing.T) {
	messenger := newFakeMessenger()
	dispatcher := testDispatcher(nil, messenger)

	state := leaderboardState()
	state.TrackMessageID = "msg-1"

	if changed := dispatcher.NotifyLeaderboard(state); changed {
		t.Error("expected an in-place edit to report no id change")
	}

	if _, ok := messenger.edited["msg-1"]; !ok {
		t.Error("expected the existing message to be edited")
	}

	if len(messenger.sent) != 0 {
		t.Error("expected no new message to be sent")
	}
}

func TestNotifyLeaderboardEditFallsBackToSend(t *testing.T) {
	messenger := newFakeMessenger()
	messenger.failEdit = true
	dispatcher := testDispatcher(nil, messenger)

	state := leaderboardState()
	state.TrackMessageID = "msg-stale"

	if changed := dispatcher.NotifyLeaderboard(state); !changed {
		t.Error("expected the fallback send to report a changed message id")
	}

	if state.TrackMessageID != "msg-1" {
		t.Errorf("expected the fallback message id to replace the stale one, got %q", state.TrackMessageID)
	}
}

func TestNotifyLeaderboardTotalFailureKeepsStaleID(t *testing.T) {
	messenger := newFakeMessenger()
	messenger.failEdit = true
	messenger.failSend = true
	dispatcher := testDispatcher(nil, messenger)

	state := leaderboardState()
	state.TrackMessageID = "msg-stale"

	if changed := dispatcher.NotifyLeaderboard(state); changed {
		t.Error("expected a total failure to report no change")
	}

	if state.TrackMessageID != "msg-stale" {
		t.Errorf("expected the stale id to be kept for the next attempt, got %q", state.TrackMessageID)
	}
}
