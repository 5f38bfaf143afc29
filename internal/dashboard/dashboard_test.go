package dashboard

import (
	"context"
	"errors"
	"testing"

	"github.com/hearthline/hearth-core/internal/device"
	"github.com/hearthline/hearth-core/internal/room"
)

type fakeRooms struct {
	rooms []room.Room
	err   error
}

func (f fakeRooms) ListByOwner(context.Context, string) ([]room.Room, error) {
	return f.rooms, f.err
}

type fakeDevices struct {
	devices []device.Device
	err     error
}

func (f fakeDevices) ListByOwner(context.Context, string) ([]device.Device, error) {
	return f.devices, f.err
}

func TestCompose_JoinsDevicesToRooms(t *testing.T) {
	rooms := []room.Room{
		{ID: "rm-1", Name: "Bedroom", Icon: room.IconBed},
		{ID: "rm-2", Name: "Kitchen", Icon: room.IconCookingPot},
	}
	devices := []device.Device{
		{ID: "dev-1", RoomID: "rm-1", Name: "Lamp", IsOn: true},
		{ID: "dev-2", RoomID: "rm-2", Name: "Oven"},
		{ID: "dev-3", RoomID: "rm-1", Name: "Fan", IsOn: true},
	}

	svc := NewService(fakeRooms{rooms: rooms}, fakeDevices{devices: devices})
	view, err := svc.Compose(context.Background(), "usr-1")
	if err != nil {
		t.Fatalf("Compose() error = %v", err)
	}

	if view.RoomCount != 2 || view.DeviceCount != 3 || view.ActiveCount != 2 {
		t.Errorf("counts = %d/%d/%d, want 2/3/2",
			view.RoomCount, view.DeviceCount, view.ActiveCount)
	}

	if len(view.Rooms) != 2 {
		t.Fatalf("len(Rooms) = %d, want 2", len(view.Rooms))
	}
	if got := len(view.Rooms[0].Devices); got != 2 {
		t.Errorf("Bedroom devices = %d, want 2", got)
	}
	if got := len(view.Rooms[1].Devices); got != 1 {
		t.Errorf("Kitchen devices = %d, want 1", got)
	}
	if len(view.Unassigned) != 0 {
		t.Errorf("Unassigned = %v, want empty", view.Unassigned)
	}
}

func TestCompose_EveryDeviceAppearsExactlyOnce(t *testing.T) {
	rooms := []room.Room{
		{ID: "rm-1", Name: "Bedroom"},
		{ID: "rm-2", Name: "Kitchen"},
		{ID: "rm-3", Name: "Empty Room"},
	}
	devices := []device.Device{
		{ID: "dev-1", RoomID: "rm-1"},
		{ID: "dev-2", RoomID: "rm-2"},
		{ID: "dev-3", RoomID: "rm-deleted"},
		{ID: "dev-4", RoomID: "rm-1"},
		{ID: "dev-5", RoomID: ""},
	}

	svc := NewService(fakeRooms{rooms: rooms}, fakeDevices{devices: devices})
	view, err := svc.Compose(context.Background(), "usr-1")
	if err != nil {
		t.Fatalf("Compose() error = %v", err)
	}

	seen := map[string]int{}
	for _, rv := range view.Rooms {
		for _, d := range rv.Devices {
			seen[d.ID]++
		}
	}
	for _, d := range view.Unassigned {
		seen[d.ID]++
	}

	for _, d := range devices {
		if seen[d.ID] != 1 {
			t.Errorf("device %s appears %d times, want exactly 1", d.ID, seen[d.ID])
		}
	}
	if len(seen) != len(devices) {
		t.Errorf("view holds %d devices, want %d", len(seen), len(devices))
	}
}

func TestCompose_DanglingRoomLandsInUnassigned(t *testing.T) {
	rooms := []room.Room{{ID: "rm-1", Name: "Bedroom"}}
	devices := []device.Device{
		{ID: "dev-1", RoomID: "rm-1"},
		{ID: "dev-2", RoomID: "rm-deleted", IsOn: true},
	}

	svc := NewService(fakeRooms{rooms: rooms}, fakeDevices{devices: devices})
	view, err := svc.Compose(context.Background(), "usr-1")
	if err != nil {
		t.Fatalf("Compose() error = %v", err)
	}

	if len(view.Unassigned) != 1 || view.Unassigned[0].ID != "dev-2" {
		t.Errorf("Unassigned = %v, want [dev-2]", view.Unassigned)
	}
	// Dangling devices still count as active.
	if view.ActiveCount != 1 {
		t.Errorf("ActiveCount = %d, want 1", view.ActiveCount)
	}
}

func TestCompose_EmptyAccount(t *testing.T) {
	svc := NewService(fakeRooms{rooms: []room.Room{}}, fakeDevices{devices: []device.Device{}})

	view, err := svc.Compose(context.Background(), "usr-1")
	if err != nil {
		t.Fatalf("Compose() error = %v", err)
	}

	if view.Rooms == nil || view.Unassigned == nil {
		t.Error("view slices should be empty, not nil")
	}
	if view.RoomCount != 0 || view.DeviceCount != 0 {
		t.Errorf("counts = %d/%d, want 0/0", view.RoomCount, view.DeviceCount)
	}
}

func TestCompose_RoomWithNoDevices(t *testing.T) {
	rooms := []room.Room{{ID: "rm-1", Name: "Bedroom"}}

	svc := NewService(fakeRooms{rooms: rooms}, fakeDevices{devices: []device.Device{}})
	view, err := svc.Compose(context.Background(), "usr-1")
	if err != nil {
		t.Fatalf("Compose() error = %v", err)
	}

	if view.Rooms[0].Devices == nil {
		t.Error("empty room's device list should be empty slice, not nil")
	}
}

func TestCompose_PropagatesErrors(t *testing.T) {
	roomErr := errors.New("rooms failed")
	deviceErr := errors.New("devices failed")

	tests := []struct {
		name    string
		rooms   fakeRooms
		devices fakeDevices
		wantErr error
	}{
		{"room source fails", fakeRooms{err: roomErr}, fakeDevices{}, roomErr},
		{"device source fails", fakeRooms{}, fakeDevices{err: deviceErr}, deviceErr},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewService(tt.rooms, tt.devices)
			if _, err := svc.Compose(context.Background(), "usr-1"); !errors.Is(err, tt.wantErr) {
				t.Errorf("Compose() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}
