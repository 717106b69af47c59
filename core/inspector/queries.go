package inspector

import (
	"regexp"
	"strings"

	"batch-run-inspector/core/spec"
)

var literalEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`)

// streamFilter limits a query to one job's log stream
func streamFilter(logStream string) string {
	return `| filter @logStream = "` + literalEscaper.Replace(logStream) + `"`
}

// markerFilter keeps lines containing marker verbatim
func markerFilter(marker string) string {
	pattern := strings.ReplaceAll(regexp.QuoteMeta(marker), "/", `\/`)
	return "| filter @message like /" + pattern + "/"
}

func parseClause(f spec.FieldMarker) string {
	return "| parse @message " + f.Pattern() + " as " + f.Name
}

// TaskOutcomeQuery builds the query selecting task completion lines of a log stream
func TaskOutcomeQuery(p *spec.Profile, logStream string) string {
	tc := p.TaskCompletion
	lines := []string{
		"fields @message, @logStream",
		streamFilter(logStream),
		markerFilter(tc.Marker),
	}

	if tc.Parse == spec.ParseLocal {
		lines = append(lines, "| display "+spec.MessageField)
		return strings.Join(lines, "\n")
	}

	for _, f := range tc.Fields {
		lines = append(lines, parseClause(f))
	}
	lines = append(lines, "| display "+strings.Join(tc.FieldNames(), ", "))

	return strings.Join(lines, "\n")
}

// ChildSubmissionQuery builds the query listing child job ids announced in a log stream.
// Repeated announcements of the same id collapse to the latest ingested line.
func ChildSubmissionQuery(p *spec.Profile, logStream string) string {
	id := p.ChildSubmission.IDField
	lines := []string{
		"fields @message, @logStream",
		streamFilter(logStream),
		markerFilter(p.ChildSubmission.Marker),
		parseClause(id),
		"| stats latest(@ingestionTime) by " + id.Name,
		"| display " + id.Name,
	}
	return strings.Join(lines, "\n")
}
