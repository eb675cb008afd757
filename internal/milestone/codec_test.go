package milestone

import "testing"

func TestEncode(t *testing.T) {
	tests := []struct {
		name string
		note string
		want string
	}{
		{"plain note", "before refactor", "Milestone: before refactor"},
		{"empty note", "", "Milestone: No note provided"},
		{"blank note", "   ", "Milestone: No note provided"},
		{"trims whitespace", "  wip  ", "Milestone: wip"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Encode(tt.note); got != tt.want {
				t.Errorf("Encode(%q) = %q, want %q", tt.note, got, tt.want)
			}
		})
	}
}

func TestIsMilestoneSubject(t *testing.T) {
	// Every Encode output must be accepted.
	for _, note := range []string{"", "fix parser", "a", "  spaced  "} {
		subject := Encode(note)
		if !IsMilestoneSubject(subject) {
			t.Errorf("IsMilestoneSubject rejected Encode output %q", subject)
		}
	}

	// Unrelated subjects must be rejected.
	for _, subject := range []string{
		"fix: crash on empty input",
		"Merge branch 'main'",
		"milestone: lowercase prefix",
		"Milestone:",
		"Milestone:   ",
		"",
	} {
		if IsMilestoneSubject(subject) {
			t.Errorf("IsMilestoneSubject accepted %q", subject)
		}
	}
}

func TestDecode_RoundTrip(t *testing.T) {
	line := "a1b2c3d4e5f6|~|" + Encode("checkpoint before merge") + "|~|2026-08-25|~|2026-08-25 14:30:05"

	records := Decode(line)
	if len(records) != 1 {
		t.Fatalf("Expected 1 record, got %d", len(records))
	}

	rec := records[0]
	if rec.Hash != "a1b2c3d4e5f6" {
		t.Errorf("Expected hash a1b2c3d4e5f6, got %q", rec.Hash)
	}
	if rec.Message != "checkpoint before merge" {
		t.Errorf("Expected message 'checkpoint before merge', got %q", rec.Message)
	}
	if rec.Date != "2026-08-25" {
		t.Errorf("Expected date 2026-08-25, got %q", rec.Date)
	}
	if rec.Time != "14:30:05" {
		t.Errorf("Expected time 14:30:05, got %q", rec.Time)
	}
}

func TestDecode_EmptyNoteRoundTrip(t *testing.T) {
	line := "deadbeef|~|" + Encode("") + "|~|2026-01-02|~|2026-01-02 09:00:00"

	records := Decode(line)
	if len(records) != 1 {
		t.Fatalf("Expected 1 record, got %d", len(records))
	}
	if records[0].Message != DefaultNote {
		t.Errorf("Expected default note %q, got %q", DefaultNote, records[0].Message)
	}
}

func TestDecode_NoteContainingDelimiter(t *testing.T) {
	// A note carrying the field delimiter splits into extra fields;
	// the subject must be reassembled, not truncated.
	note := "step 1|~|step 2"
	line := "a1b2c3d4|~|" + Encode(note) + "|~|2026-08-25|~|2026-08-25 14:30:05"

	records := Decode(line)
	if len(records) != 1 {
		t.Fatalf("Expected 1 record, got %d", len(records))
	}

	rec := records[0]
	if rec.Message != note {
		t.Errorf("Expected message %q, got %q", note, rec.Message)
	}
	if rec.Date != "2026-08-25" {
		t.Errorf("Expected date 2026-08-25, got %q", rec.Date)
	}
	if rec.Time != "14:30:05" {
		t.Errorf("Expected time 14:30:05, got %q", rec.Time)
	}
}

func TestDecode_DropsMalformedLines(t *testing.T) {
	raw := "aaa|~|Milestone: one|~|2026-03-01|~|2026-03-01 10:00:00\n" +
		"bbb|~|Milestone: two|~|2026-03-01\n" + // missing date-time field
		"ccc|~|Milestone: three|~|2026-02-28|~|2026-02-28 23:59:59\n" +
		"ddd|~|Milestone: four|~|2026-02-27|~|2026-02-27 08:15:30"

	records := Decode(raw)
	if len(records) != 3 {
		t.Fatalf("Expected 3 records, got %d", len(records))
	}
	for _, rec := range records {
		if rec.Message == "two" {
			t.Error("Malformed line was not dropped")
		}
	}
}

func TestDecode_PreservesOrder(t *testing.T) {
	raw := "c1|~|Milestone: newest|~|2026-05-03|~|2026-05-03 12:00:00\n" +
		"c2|~|Milestone: middle|~|2026-05-02|~|2026-05-02 12:00:00\n" +
		"c3|~|Milestone: oldest|~|2026-05-01|~|2026-05-01 12:00:00"

	records := Decode(raw)
	if len(records) != 3 {
		t.Fatalf("Expected 3 records, got %d", len(records))
	}
	want := []string{"newest", "middle", "oldest"}
	for i, msg := range want {
		if records[i].Message != msg {
			t.Errorf("Position %d: expected %q, got %q", i, msg, records[i].Message)
		}
	}
}

func TestDecode_SkipsNonMilestoneSubjects(t *testing.T) {
	raw := "aaa|~|fix: unrelated commit|~|2026-03-01|~|2026-03-01 10:00:00\n" +
		"bbb|~|Milestone: kept|~|2026-03-01|~|2026-03-01 11:00:00"

	records := Decode(raw)
	if len(records) != 1 {
		t.Fatalf("Expected 1 record, got %d", len(records))
	}
	if records[0].Message != "kept" {
		t.Errorf("Expected message 'kept', got %q", records[0].Message)
	}
}

func TestDecode_EmptyInput(t *testing.T) {
	if records := Decode(""); len(records) != 0 {
		t.Errorf("Expected empty slice for empty input, got %d records", len(records))
	}
	if records := Decode("\n\n"); len(records) != 0 {
		t.Errorf("Expected empty slice for blank input, got %d records", len(records))
	}
	if Decode("") == nil {
		t.Error("Decode must return an empty slice, not nil")
	}
}
