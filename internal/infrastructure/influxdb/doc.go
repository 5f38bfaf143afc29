// Package influxdb provides optional time-series storage for Hearth.
//
// It wraps the official influxdb-client-go v2 library for recording
// device state history and entity activity events. The integration is
// opt-in; when disabled in config, Connect returns ErrDisabled and the
// rest of the system runs without it.
//
// # Usage
//
//	client, err := influxdb.Connect(cfg.InfluxDB)
//	if err != nil {
//	    // disabled or unreachable; state history is skipped
//	}
//	defer client.Close()
//
//	client.WriteDeviceState("dev-3f2a91c4", "rm-7b01d2ee", "usr-a1b2c3d4", true)
//
// # Thread Safety
//
// All methods are safe for concurrent use from multiple goroutines.
// The underlying write API uses non-blocking batched writes; async
// write errors surface through SetOnError.
package influxdb
