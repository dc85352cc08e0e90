package record

import "testing"

func TestNewCode(t *testing.T) {
	tests := []struct {
		name    string
		b       byte
		wantErr bool
	}{
		{"digit", '0', false},
		{"lower", 'a', false},
		{"upper", 'Z', false},
		{"punct", '@', true},
		{"space", ' ', true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewCode(tt.b)
			if (err != nil) != tt.wantErr {
				t.Fatalf("NewCode(%q) error = %v, wantErr %v", tt.b, err, tt.wantErr)
			}
		})
	}
}

func TestNewValue(t *testing.T) {
	if _, err := NewValue([]byte("hello")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := NewValue([]byte{'a', 0x1E, 'b'}); err == nil {
		t.Fatalf("expected error for embedded 0x1E")
	}
	if _, err := NewValue([]byte{'a', 0x1F, 'b'}); err == nil {
		t.Fatalf("expected error for embedded 0x1F")
	}
}

func TestNewTag(t *testing.T) {
	tests := []struct {
		in      string
		wantErr bool
	}{
		{"003@", false},
		{"028A", false},
		{"212Z", false},
		{"312A", true}, // slot 0 must be [012]
		{"0X3A", true}, // slot 1 must be digit
		{"00aA", true}, // slot 2 must be digit
		{"003a", true}, // slot 3 must be [A-Z@]
		{"00", true},
	}
	for _, tt := range tests {
		_, err := NewTag(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("NewTag(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
		}
	}
}

func TestNewOccurrence(t *testing.T) {
	tests := []struct {
		in      string
		wantErr bool
		absent  bool
	}{
		{"", false, true},
		{"00", false, false},
		{"01", false, false},
		{"003", false, false},
		{"0", true, false},
		{"0000", true, false},
		{"1a", true, false},
	}
	for _, tt := range tests {
		occ, err := NewOccurrence(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("NewOccurrence(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if err == nil && occ.IsAbsent() != tt.absent {
			t.Errorf("NewOccurrence(%q).IsAbsent() = %v, want %v", tt.in, occ.IsAbsent(), tt.absent)
		}
	}
	zero, _ := NewOccurrence("00")
	if !zero.IsZero() {
		t.Errorf(`NewOccurrence("00").IsZero() = false, want true`)
	}
}
