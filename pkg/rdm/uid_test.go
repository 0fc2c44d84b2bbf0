package rdm

import (
	"errors"
	"testing"
)

func TestParseUID(t *testing.T) {
	tests := []struct {
		in      string
		want    UID
		wantErr bool
	}{
		{in: "7a70:00000001", want: NewUID(0x7a70, 1)},
		{in: "FFFF:FFFFFFFF", want: BroadcastUID},
		{in: " 0001:0000abcd ", want: NewUID(0x0001, 0xabcd)},
		{in: "7a70", wantErr: true},
		{in: "7a70:", wantErr: true},
		{in: "17a70:00000001", wantErr: true},
		{in: "7a70:zz", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseUID(tt.in)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidUID) {
					t.Fatalf("ParseUID(%q) error = %v, want ErrInvalidUID", tt.in, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseUID(%q) failed: %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("ParseUID(%q) = %s, want %s", tt.in, got, tt.want)
			}
		})
	}
}

func TestUIDString(t *testing.T) {
	u := NewUID(0x7a70, 0x12345678)
	if got := u.String(); got != "7a70:12345678" {
		t.Errorf("String() = %q", got)
	}
	if u.ManufacturerID() != 0x7a70 || u.DeviceID() != 0x12345678 {
		t.Errorf("parts = %04x:%08x", u.ManufacturerID(), u.DeviceID())
	}
}

func TestUIDRequiresAction(t *testing.T) {
	self := NewUID(0x7a70, 1)

	tests := []struct {
		name string
		dest UID
		want bool
	}{
		{"self", self, true},
		{"broadcast", BroadcastUID, true},
		{"own vendorcast", VendorcastUID(0x7a70), true},
		{"other vendorcast", VendorcastUID(0x4f4c), false},
		{"other device", NewUID(0x7a70, 2), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.dest.RequiresAction(self); got != tt.want {
				t.Errorf("RequiresAction = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestUIDInRange(t *testing.T) {
	u := NewUID(0x7a70, 0x100)
	if !u.InRange(UID{}, BroadcastUID) {
		t.Error("expected full range to contain UID")
	}
	if !u.InRange(u, u) {
		t.Error("expected single-UID range to contain UID")
	}
	if u.InRange(NewUID(0x7a70, 0x101), BroadcastUID) {
		t.Error("lower bound above UID should exclude it")
	}
	if u.InRange(UID{}, NewUID(0x7a70, 0xff)) {
		t.Error("upper bound below UID should exclude it")
	}
}

func TestUIDTextRoundTrip(t *testing.T) {
	u := NewUID(0x4f4c, 0xdeadbeef)
	text, err := u.MarshalText()
	if err != nil {
		t.Fatalf("MarshalText failed: %v", err)
	}
	var back UID
	if err := back.UnmarshalText(text); err != nil {
		t.Fatalf("UnmarshalText failed: %v", err)
	}
	if back != u {
		t.Errorf("round trip = %s, want %s", back, u)
	}
}
