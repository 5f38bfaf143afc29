package device

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/hearthline/hearth-core/internal/infrastructure/logging"
)

// notifyRecorder captures notifications emitted by the service.
type notifyRecorder struct {
	successes []string
	failures  []string
}

func (r *notifyRecorder) Success(_ context.Context, _, message string) {
	r.successes = append(r.successes, message)
}

func (r *notifyRecorder) Failure(_ context.Context, _, message string) {
	r.failures = append(r.failures, message)
}

// roomSet is a RoomChecker backed by a fixed owner/room set.
type roomSet map[string]bool

func (rs roomSet) ExistsForOwner(_ context.Context, userID, roomID string) (bool, error) {
	return rs[userID+"/"+roomID], nil
}

// stateRecorder captures recorded power transitions.
type stateRecorder struct {
	events []bool
}

func (s *stateRecorder) WriteDeviceState(_, _, _ string, isOn bool) {
	s.events = append(s.events, isOn)
}

func testLogger() *logging.Logger {
	return &logging.Logger{Logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
}

func testService(t *testing.T, rooms RoomChecker, recorder StateRecorder) (*Service, *notifyRecorder) {
	t.Helper()

	rec := &notifyRecorder{}
	repo := NewSQLiteRepository(testDB(t))
	return NewService(repo, rooms, rec, recorder, testLogger()), rec
}

func TestService_AddDevice(t *testing.T) {
	rooms := roomSet{"usr-1/rm-1": true}
	svc, rec := testService(t, rooms, nil)
	ctx := context.Background()

	d := svc.AddDevice(ctx, "usr-1", "  Ceiling Light  ", IconBulb, "rm-1")
	if d == nil {
		t.Fatal("AddDevice() = nil, want device")
	}
	if d.Name != "Ceiling Light" {
		t.Errorf("Name = %q, want trimmed Ceiling Light", d.Name)
	}
	if d.IsOn {
		t.Error("new device should start off")
	}
	if len(rec.successes) != 1 {
		t.Errorf("success notifications = %d, want 1", len(rec.successes))
	}
}

func TestService_AddDevice_Failures(t *testing.T) {
	rooms := roomSet{"usr-1/rm-1": true, "usr-2/rm-9": true}
	svc, rec := testService(t, rooms, nil)
	ctx := context.Background()

	tests := []struct {
		name       string
		deviceName string
		icon       Icon
		roomID     string
	}{
		{"empty name", "", IconBulb, "rm-1"},
		{"unknown icon", "Lamp", Icon("laser"), "rm-1"},
		{"missing room", "Lamp", IconBulb, ""},
		{"unknown room", "Lamp", IconBulb, "rm-404"},
		{"other account's room", "Lamp", IconBulb, "rm-9"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			failuresBefore := len(rec.failures)

			if d := svc.AddDevice(ctx, "usr-1", tt.deviceName, tt.icon, tt.roomID); d != nil {
				t.Errorf("AddDevice() = %+v, want nil", d)
			}
			if len(rec.failures) != failuresBefore+1 {
				t.Error("failed add should emit a failure notification")
			}
		})
	}

	if devices := svc.GetDevices(ctx, "usr-1"); len(devices) != 0 {
		t.Errorf("devices persisted after failed adds: %v", devices)
	}
}

func TestService_ToggleDevice_SilentOnSuccess(t *testing.T) {
	rooms := roomSet{"usr-1/rm-1": true}
	recorder := &stateRecorder{}
	svc, rec := testService(t, rooms, recorder)
	ctx := context.Background()

	d := svc.AddDevice(ctx, "usr-1", "Lamp", IconBulb, "rm-1")
	if d == nil {
		t.Fatal("AddDevice() = nil")
	}
	successesAfterAdd := len(rec.successes)

	got, ok := svc.ToggleDevice(ctx, "usr-1", d.ID, true)
	if !ok {
		t.Fatal("ToggleDevice() = false, want true")
	}
	if !got.IsOn {
		t.Error("device should be on after toggling on")
	}

	// Success is silent: no new notification.
	if len(rec.successes) != successesAfterAdd {
		t.Errorf("toggle emitted a success notification: %v", rec.successes)
	}

	// The transition was recorded for history.
	if len(recorder.events) != 1 || recorder.events[0] != true {
		t.Errorf("recorded events = %v, want [true]", recorder.events)
	}
}

func TestService_ToggleDevice_Idempotent(t *testing.T) {
	rooms := roomSet{"usr-1/rm-1": true}
	svc, _ := testService(t, rooms, nil)
	ctx := context.Background()

	d := svc.AddDevice(ctx, "usr-1", "Lamp", IconBulb, "rm-1")
	if d == nil {
		t.Fatal("AddDevice() = nil")
	}

	for i := 0; i < 2; i++ {
		got, ok := svc.ToggleDevice(ctx, "usr-1", d.ID, true)
		if !ok {
			t.Fatalf("ToggleDevice() #%d = false, want true", i+1)
		}
		if !got.IsOn {
			t.Fatalf("toggle #%d to the same value changed state: is_on = false", i+1)
		}
	}

	if got := svc.GetDevice(ctx, "usr-1", d.ID); got == nil || !got.IsOn {
		t.Error("device should still be on after repeated identical toggles")
	}
}

func TestService_ToggleDevice_FailureNotifies(t *testing.T) {
	svc, rec := testService(t, nil, nil)

	got, ok := svc.ToggleDevice(context.Background(), "usr-1", "dev-missing", true)
	if ok || got != nil {
		t.Errorf("ToggleDevice() = %+v, %v, want nil, false", got, ok)
	}
	if len(rec.failures) != 1 {
		t.Errorf("failure notifications = %d, want 1", len(rec.failures))
	}
}

func TestService_UpdateDevice_RoomMoveChecksOwnership(t *testing.T) {
	rooms := roomSet{"usr-1/rm-1": true, "usr-1/rm-2": true, "usr-2/rm-9": true}
	svc, _ := testService(t, rooms, nil)
	ctx := context.Background()

	d := svc.AddDevice(ctx, "usr-1", "Lamp", IconBulb, "rm-1")
	if d == nil {
		t.Fatal("AddDevice() = nil")
	}

	// Move to an owned room succeeds.
	owned := "rm-2"
	if ok := svc.UpdateDevice(ctx, "usr-1", d.ID, Patch{RoomID: &owned}); !ok {
		t.Error("UpdateDevice() to owned room = false, want true")
	}

	// Move to another account's room is rejected.
	foreign := "rm-9"
	if ok := svc.UpdateDevice(ctx, "usr-1", d.ID, Patch{RoomID: &foreign}); ok {
		t.Error("UpdateDevice() to foreign room = true, want false")
	}

	got := svc.GetDevice(ctx, "usr-1", d.ID)
	if got == nil || got.RoomID != "rm-2" {
		t.Errorf("RoomID = %v, want rm-2 after rejected move", got)
	}
}

func TestService_UpdateDevice_PartialMerge(t *testing.T) {
	rooms := roomSet{"usr-1/rm-1": true}
	svc, _ := testService(t, rooms, nil)
	ctx := context.Background()

	d := svc.AddDevice(ctx, "usr-1", "Lamp", IconBulb, "rm-1")
	if d == nil {
		t.Fatal("AddDevice() = nil")
	}

	newIcon := IconFan
	if ok := svc.UpdateDevice(ctx, "usr-1", d.ID, Patch{Icon: &newIcon}); !ok {
		t.Fatal("UpdateDevice() = false, want true")
	}

	got := svc.GetDevice(ctx, "usr-1", d.ID)
	if got.Name != "Lamp" {
		t.Errorf("Name = %q, want unchanged Lamp", got.Name)
	}
	if got.Icon != IconFan {
		t.Errorf("Icon = %q, want fan", got.Icon)
	}
	if got.RoomID != "rm-1" {
		t.Errorf("RoomID = %q, want unchanged rm-1", got.RoomID)
	}
}

func TestService_DeleteDevice(t *testing.T) {
	rooms := roomSet{"usr-1/rm-1": true}
	svc, rec := testService(t, rooms, nil)
	ctx := context.Background()

	d := svc.AddDevice(ctx, "usr-1", "Lamp", IconBulb, "rm-1")
	if d == nil {
		t.Fatal("AddDevice() = nil")
	}

	if ok := svc.DeleteDevice(ctx, "usr-1", d.ID); !ok {
		t.Error("DeleteDevice() = false, want true")
	}
	if ok := svc.DeleteDevice(ctx, "usr-1", d.ID); ok {
		t.Error("second DeleteDevice() = true, want false")
	}
	if len(rec.failures) != 1 {
		t.Errorf("failure notifications = %d, want 1", len(rec.failures))
	}
}
