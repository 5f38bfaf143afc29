// Package dashboard composes rooms and devices into the panel view.
//
// The view joins each device to its room by room ID. Devices whose
// room no longer exists are not dropped: they land in the Unassigned
// group so they stay visible and toggleable until reassigned.
package dashboard

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/hearthline/hearth-core/internal/device"
	"github.com/hearthline/hearth-core/internal/room"
)

// RoomSource lists an account's rooms.
type RoomSource interface {
	ListByOwner(ctx context.Context, userID string) ([]room.Room, error)
}

// DeviceSource lists an account's devices.
type DeviceSource interface {
	ListByOwner(ctx context.Context, userID string) ([]device.Device, error)
}

// RoomView is a room with the devices assigned to it.
type RoomView struct {
	room.Room
	Devices []device.Device `json:"devices"`
}

// View is the composed control panel state for one account.
type View struct {
	Rooms      []RoomView      `json:"rooms"`
	Unassigned []device.Device `json:"unassigned"`

	RoomCount   int `json:"room_count"`
	DeviceCount int `json:"device_count"`
	ActiveCount int `json:"active_count"` // devices currently on
}

// Service builds dashboard views from the room and device stores.
type Service struct {
	rooms   RoomSource
	devices DeviceSource
}

// NewService creates a dashboard service.
func NewService(rooms RoomSource, devices DeviceSource) *Service {
	return &Service{rooms: rooms, devices: devices}
}

// Compose fetches rooms and devices concurrently and joins them.
// Every device appears exactly once: under its room when the room
// exists, otherwise under Unassigned. Room and device order follows
// the stores (oldest first).
func (s *Service) Compose(ctx context.Context, userID string) (*View, error) {
	var (
		rooms   []room.Room
		devices []device.Device
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		rooms, err = s.rooms.ListByOwner(gctx, userID)
		if err != nil {
			return fmt.Errorf("loading rooms: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		devices, err = s.devices.ListByOwner(gctx, userID)
		if err != nil {
			return fmt.Errorf("loading devices: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	byRoom := make(map[string][]device.Device, len(rooms))
	known := make(map[string]bool, len(rooms))
	for _, rm := range rooms {
		known[rm.ID] = true
	}

	view := &View{
		Rooms:       make([]RoomView, 0, len(rooms)),
		Unassigned:  []device.Device{},
		RoomCount:   len(rooms),
		DeviceCount: len(devices),
	}

	for _, d := range devices {
		if d.IsOn {
			view.ActiveCount++
		}
		if known[d.RoomID] {
			byRoom[d.RoomID] = append(byRoom[d.RoomID], d)
		} else {
			view.Unassigned = append(view.Unassigned, d)
		}
	}

	for _, rm := range rooms {
		devs := byRoom[rm.ID]
		if devs == nil {
			devs = []device.Device{}
		}
		view.Rooms = append(view.Rooms, RoomView{Room: rm, Devices: devs})
	}

	return view, nil
}
