package localtime

import (
	"testing"
	"time"
)

func TestLocalWallClock_EpochShiftThenFormat(t *testing.T) {
	const (
		epoch  int64 = 1630256400
		target int32 = 3600
		device int32 = -18000
	)
	got := LocalWallClock(epoch, target, device)

	if got.Unix() != 1630278000 {
		t.Fatalf("display epoch = %d, want 1630278000", got.Unix())
	}
	want := time.Unix(1630278000, 0).In(time.FixedZone("", int(device)))
	if Format(got) != Format(want) {
		t.Errorf("Format() = %q, want %q", Format(got), Format(want))
	}
	if got := Format(got); got != "Sun, Aug 29, 2021 - 06:00 PM" {
		t.Errorf("Format() = %q, want %q", got, "Sun, Aug 29, 2021 - 06:00 PM")
	}
}

func TestLocalWallClock_IndependentOfDeviceZone(t *testing.T) {
	const epoch int64 = 1630256400
	targets := []int32{-36000, -18000, 0, 3600, 19800, 45900}
	devices := []int32{-43200, -25200, -18000, 0, 3600, 32400, 50400}
	for _, target := range targets {
		want := Format(time.Unix(epoch, 0).In(time.FixedZone("target", int(target))))
		for _, device := range devices {
			if got := Format(LocalWallClock(epoch, target, device)); got != want {
				t.Errorf("LocalWallClock(target=%d, device=%d) = %q, want %q", target, device, got, want)
			}
		}
	}
}

func TestLocalWallClock_ExtremeValuesNoOverflow(t *testing.T) {
	got := LocalWallClock(4102444800, 50400, -43200)
	if got.Unix() != 4102444800+50400+43200 {
		t.Errorf("display epoch = %d", got.Unix())
	}
}

func TestDeviceOffset(t *testing.T) {
	ny, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Skipf("tzdata unavailable: %v", err)
	}
	summer := time.Date(2021, 8, 29, 12, 0, 0, 0, time.UTC)
	winter := time.Date(2021, 1, 15, 12, 0, 0, 0, time.UTC)
	if got := DeviceOffset(ny, summer); got != -14400 {
		t.Errorf("DeviceOffset(summer) = %d, want -14400", got)
	}
	if got := DeviceOffset(ny, winter); got != -18000 {
		t.Errorf("DeviceOffset(winter) = %d, want -18000", got)
	}
	if got := DeviceOffset(time.UTC, summer); got != 0 {
		t.Errorf("DeviceOffset(UTC) = %d, want 0", got)
	}
}

func TestFormatClock(t *testing.T) {
	tm := LocalWallClock(1630215000, 3600, 0)
	if got := FormatClock(tm); got != "06:30 AM" {
		t.Errorf("FormatClock() = %q, want 06:30 AM", got)
	}
}
