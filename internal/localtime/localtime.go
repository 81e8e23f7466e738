// Package localtime renders instants as the wall clock of a remote location, using
// only that location's UTC offset.
package localtime

import "time"

const (
	// Layout is the full date and time shown for a location.
	Layout = "Mon, Jan 02, 2006 - 03:04 PM"
	// ClockLayout is used for sunrise and sunset.
	ClockLayout = "03:04 PM"
)

// LocalWallClock shifts epochSeconds so that formatting the result in the device zone
// yields the wall clock at the target location. The device offset is subtracted because
// the device zone re-applies it when the instant is rendered.
func LocalWallClock(epochSeconds int64, targetUTCOffsetSeconds, deviceUTCOffsetSeconds int32) time.Time {
	displayEpoch := epochSeconds + int64(targetUTCOffsetSeconds) - int64(deviceUTCOffsetSeconds)
	return time.Unix(displayEpoch, 0).In(deviceZone(deviceUTCOffsetSeconds))
}

// DeviceOffset returns the UTC offset of loc at the given instant. A nil loc means time.Local.
func DeviceOffset(loc *time.Location, at time.Time) int32 {
	if loc == nil {
		loc = time.Local
	}
	_, offset := at.In(loc).Zone()
	return int32(offset)
}

// Format renders t with Layout.
func Format(t time.Time) string {
	return t.Format(Layout)
}

// FormatClock renders t with ClockLayout.
func FormatClock(t time.Time) string {
	return t.Format(ClockLayout)
}

func deviceZone(offset int32) *time.Location {
	return time.FixedZone("device", int(offset))
}
