package milestone

import "strings"

const (
	// SubjectPrefix marks a commit as a milestone. Branch scoping is
	// done with history queries (upstream..HEAD), not by embedding the
	// branch name in the subject.
	SubjectPrefix = "Milestone: "

	// DefaultNote is substituted when the user supplies no note.
	DefaultNote = "No note provided"

	// FieldDelimiter separates the fields of one log line. It never
	// appears in hashes or formatted dates, so a line with extra
	// fields means the subject itself contained the delimiter; Decode
	// rejoins those middle fields to recover the subject intact.
	FieldDelimiter = "|~|"

	// fieldsPerLine is hash, subject, short date, full date-time.
	fieldsPerLine = 4
)

// LogFormat is the git pretty-format producing lines Decode understands:
// full hash, subject, short date, and the full date-time rendered with
// --date=format:'%Y-%m-%d %H:%M:%S'.
const LogFormat = "%H" + FieldDelimiter + "%s" + FieldDelimiter + "%as" + FieldDelimiter + "%ad"

// Encode builds the commit subject for a milestone note. An empty or
// blank note becomes DefaultNote so every milestone has a readable
// message.
func Encode(note string) string {
	note = strings.TrimSpace(note)
	if note == "" {
		note = DefaultNote
	}
	return SubjectPrefix + note
}

// IsMilestoneSubject reports whether a commit subject was produced by
// Encode. It accepts every Encode output and nothing else.
func IsMilestoneSubject(subject string) bool {
	return strings.HasPrefix(subject, SubjectPrefix) &&
		strings.TrimSpace(strings.TrimPrefix(subject, SubjectPrefix)) != ""
}

// Decode parses delimiter-separated log output into records, preserving
// input order (newest-first, matching the log query). Malformed lines
// (fewer than four fields) and non-milestone subjects are dropped
// silently; empty input yields an empty slice, never an error.
func Decode(raw string) []Record {
	records := []Record{}
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		fields := strings.Split(line, FieldDelimiter)
		if len(fields) < fieldsPerLine {
			continue
		}

		// The hash is first and the two date fields are last; anything
		// between them is the subject, rejoined in case the note itself
		// contained the delimiter.
		subject := strings.Join(fields[1:len(fields)-2], FieldDelimiter)
		if !IsMilestoneSubject(subject) {
			continue
		}

		records = append(records, Record{
			Hash:    fields[0],
			Message: strings.TrimPrefix(subject, SubjectPrefix),
			Date:    fields[len(fields)-2],
			Time:    timeOfDay(fields[len(fields)-1]),
		})
	}
	return records
}

// timeOfDay extracts the HH:MM:SS portion from a "YYYY-MM-DD HH:MM:SS"
// field: the second whitespace-separated token.
func timeOfDay(dateTime string) string {
	parts := strings.Fields(dateTime)
	if len(parts) < 2 {
		return ""
	}
	return parts[1]
}
